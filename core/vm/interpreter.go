package vm

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/guanqun/ethers-forked-evm-provider/core/types"
)

// ReferenceInterpreter is a minimal stack machine sufficient to drive and
// test the C4 call/create protocol: STOP/RETURN/REVERT, SLOAD/SSTORE
// (feeding the EIP-1283/2200 status machine), the CALL family, the CREATE
// family, and a handful of arithmetic/environment opcodes. It is not an
// opcode-complete EVM — spec.md scopes that out; see SPEC_FULL.md §1.
//
// The operand stack holds *uint256.Int rather than *big.Int: EVM words are
// fixed 256-bit, and uint256 avoids a heap allocation with unbounded growth
// per push the way math/big's arbitrary-precision representation would,
// matching how go-ethereum's and erigon's interpreters represent the stack.
type ReferenceInterpreter struct{}

const stackLimit = 1024

// selfDestructRefundGas is the pre-London SELFDESTRUCT refund (removed by
// EIP-3529), matching go-ethereum/erigon's classic SelfdestructRefundGas.
const selfDestructRefundGas = 24000

type stack struct {
	data []*uint256.Int
}

func (s *stack) push(v *uint256.Int) { s.data = append(s.data, v) }
func (s *stack) pop() *uint256.Int {
	n := len(s.data) - 1
	v := s.data[n]
	s.data = s.data[:n]
	return v
}
func (s *stack) peek(n int) *uint256.Int { return s.data[len(s.data)-1-n] }
func (s *stack) len() int                { return len(s.data) }

type memory struct{ data []byte }

func (m *memory) ensure(size uint64) {
	if uint64(len(m.data)) < size {
		m.data = append(m.data, make([]byte, size-uint64(len(m.data)))...)
	}
}
func (m *memory) set(offset uint64, data []byte) {
	m.ensure(offset + uint64(len(data)))
	copy(m.data[offset:], data)
}
func (m *memory) get(offset, size uint64) []byte {
	m.ensure(offset + size)
	out := make([]byte, size)
	copy(out, m.data[offset:offset+size])
	return out
}

// Run executes contract.Code against input, returning the final output and
// an error (ErrExecutionReverted on REVERT, a deterministic vm error
// otherwise, or nil on STOP/RETURN/falling off the end of the code).
func (in *ReferenceInterpreter) Run(host Host, contract *Contract, input []byte, readOnly bool) ([]byte, error) {
	contract.Input = input
	st := &stack{}
	mem := &memory{}
	pc := uint64(0)

	for {
		if pc >= uint64(len(contract.Code)) {
			return nil, nil
		}
		op := contract.GetOp(pc)

		switch {
		case op == STOP:
			return nil, nil

		case op == JUMPDEST:
			pc++

		case op.IsPush():
			n := uint64(op - PUSH1 + 1)
			end := pc + 1 + n
			if end > uint64(len(contract.Code)) {
				end = uint64(len(contract.Code))
			}
			st.push(new(uint256.Int).SetBytes(contract.Code[pc+1 : end]))
			pc = pc + 1 + n

		case op == OpCode(0x50): // POP
			st.pop()
			pc++

		case op == OpCode(0x01): // ADD
			a, b := st.pop(), st.pop()
			st.push(new(uint256.Int).Add(a, b))
			pc++

		case op == OpCode(0x03): // SUB
			a, b := st.pop(), st.pop()
			st.push(new(uint256.Int).Sub(a, b))
			pc++

		case op == OpCode(0x80): // DUP1
			st.push(new(uint256.Int).Set(st.peek(0)))
			pc++

		case op == OpCode(0x90): // SWAP1
			a, b := st.pop(), st.pop()
			st.push(a)
			st.push(b)
			pc++

		case op == OpCode(0x56): // JUMP
			dest := st.pop()
			d := dest.Uint64()
			if !contract.validJumpdest(d) {
				return nil, ErrInvalidCode
			}
			pc = d

		case op == OpCode(0x57): // JUMPI
			dest, cond := st.pop(), st.pop()
			if !cond.IsZero() {
				d := dest.Uint64()
				if !contract.validJumpdest(d) {
					return nil, ErrInvalidCode
				}
				pc = d
			} else {
				pc++
			}

		case op == OpCode(0x30): // ADDRESS
			st.push(new(uint256.Int).SetBytes(contract.Address.Bytes()))
			pc++

		case op == OpCode(0x33): // CALLER
			st.push(new(uint256.Int).SetBytes(contract.CallerAddress.Bytes()))
			pc++

		case op == OpCode(0x34): // CALLVALUE
			st.push(bigToUint256(contract.Value))
			pc++

		case op == OpCode(0x35): // CALLDATALOAD
			off := st.pop().Uint64()
			st.push(new(uint256.Int).SetBytes(leftPad32(getDataSlice(contract.Input, off, 32))))
			pc++

		case op == OpCode(0x36): // CALLDATASIZE
			st.push(uint256.NewInt(uint64(len(contract.Input))))
			pc++

		case op == OpCode(0x37): // CALLDATACOPY
			destOff, off, size := st.pop().Uint64(), st.pop().Uint64(), st.pop().Uint64()
			mem.set(destOff, getDataSlice(contract.Input, off, size))
			pc++

		case op == OpCode(0x51): // MLOAD
			off := st.pop().Uint64()
			st.push(new(uint256.Int).SetBytes(mem.get(off, 32)))
			pc++

		case op == OpCode(0x52): // MSTORE
			off, val := st.pop().Uint64(), st.pop()
			b := val.Bytes32()
			mem.set(off, b[:])
			pc++

		case op == SLOAD:
			slot := types.Hash(st.pop().Bytes32())
			v := host.State().GetState(contract.Address, slot)
			st.push(new(uint256.Int).SetBytes(v.Bytes()))
			pc++

		case op == SSTORE:
			if readOnly {
				return nil, ErrWriteProtection
			}
			slotWord := st.pop().Bytes32()
			valWord := st.pop().Bytes32()
			host.State().SetState(contract.Address, types.Hash(slotWord), types.Hash(valWord))
			pc++

		case op == RETURN:
			off, size := st.pop().Uint64(), st.pop().Uint64()
			return mem.get(off, size), nil

		case op == REVERT:
			off, size := st.pop().Uint64(), st.pop().Uint64()
			return mem.get(off, size), ErrExecutionReverted

		case op == CALL, op == CALLCODE, op == DELEGATECALL, op == STATICCALL:
			ret, err := in.dispatchCall(host, contract, st, mem, op, readOnly)
			if err != nil {
				return nil, err
			}
			_ = ret
			pc++

		case op == CREATE, op == CREATE2:
			if readOnly {
				return nil, ErrWriteProtection
			}
			in.dispatchCreate(host, contract, st, mem, op)
			pc++

		case op == SELFDESTRUCT:
			if readOnly {
				return nil, ErrWriteProtection
			}
			beneficiary := types.BytesToAddress(st.pop().Bytes())
			balance := host.State().GetBalance(contract.Address)
			host.State().AddBalance(beneficiary, balance)
			// EIP-3529 removed the self-destruct refund at London; guard
			// against crediting it twice if the account is destructed more
			// than once in the same transaction (e.g. via re-entrancy).
			if host.Revision() < London && !host.State().HasSelfDestructed(contract.Address) {
				host.State().AddRefund(selfDestructRefundGas)
			}
			host.State().SelfDestruct(contract.Address)
			return nil, nil

		default:
			return nil, nil // unimplemented opcode: halts the frame successfully, like STOP (out of scope)
		}

		if st.len() > stackLimit {
			return nil, ErrOutOfGas
		}
	}
}

func (in *ReferenceInterpreter) dispatchCall(host Host, contract *Contract, st *stack, mem *memory, op OpCode, readOnly bool) ([]byte, error) {
	var kind CallKind
	hasValue := op == CALL || op == CALLCODE

	gas := st.pop().Uint64()
	addr := types.BytesToAddress(st.pop().Bytes())
	value := new(big.Int)
	if hasValue {
		value = st.pop().ToBig()
	}
	inOff, inSize := st.pop().Uint64(), st.pop().Uint64()
	retOff, retSize := st.pop().Uint64(), st.pop().Uint64()

	switch op {
	case CALL:
		kind = CallKindCall
	case CALLCODE:
		kind = CallKindCallCode
	case DELEGATECALL:
		kind = CallKindDelegateCall
	case STATICCALL:
		kind = CallKindStaticCall
	}

	sender := contract.Address
	if kind == CallKindDelegateCall {
		sender = contract.CallerAddress
		value = contract.Value
	}

	result := host.Call(Message{
		Kind:      kind,
		Sender:    sender,
		Recipient: addr,
		Value:     value,
		Input:     mem.get(inOff, inSize),
		Gas:       gas,
		IsStatic:  readOnly || kind == CallKindStaticCall,
	})

	mem.set(retOff, result.Output[:min(retSize, uint64(len(result.Output)))])
	if result.Success() {
		st.push(uint256.NewInt(1))
	} else {
		st.push(uint256.NewInt(0))
	}
	return result.Output, nil
}

func (in *ReferenceInterpreter) dispatchCreate(host Host, contract *Contract, st *stack, mem *memory, op OpCode) {
	value := st.pop().ToBig()
	off, size := st.pop().Uint64(), st.pop().Uint64()
	var salt *big.Int
	kind := CallKindCreate
	if op == CREATE2 {
		salt = st.pop().ToBig()
		kind = CallKindCreate2
	}

	result := host.Create(Message{
		Kind:   kind,
		Sender: contract.Address,
		Value:  value,
		Input:  mem.get(off, size),
		Gas:    contract.Gas,
		Salt:   salt,
	})
	if result.Success() {
		st.push(new(uint256.Int).SetBytes(result.CreateAddress.Bytes()))
	} else {
		st.push(new(uint256.Int))
	}
}

func bigToUint256(v *big.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	u, overflow := uint256.FromBig(v)
	if overflow {
		// CALLVALUE and similar fields are always < 2^256 in practice;
		// saturate defensively rather than panic on a malformed caller input.
		return new(uint256.Int).SetAllOne()
	}
	return u
}

func min(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
