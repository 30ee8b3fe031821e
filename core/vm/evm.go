package vm

import (
	"math/big"

	"github.com/guanqun/ethers-forked-evm-provider/core/state"
	"github.com/guanqun/ethers-forked-evm-provider/core/types"
	"github.com/guanqun/ethers-forked-evm-provider/crypto"
)

// CallKind identifies which of the six message-passing opcodes produced a
// Message, since each has distinct value-transfer and static-propagation
// rules. Grounded on original_source/src/akula/evm.rs's CallKind enum.
type CallKind int

const (
	CallKindCall CallKind = iota
	CallKindCallCode
	CallKindDelegateCall
	CallKindStaticCall
	CallKindCreate
	CallKindCreate2
)

const maxCallDepth = 1024
const maxCodeSize = 24576 // EIP-170

// Message is one unit of execution: a top-level transaction, or a nested
// CALL/CREATE message raised by the interpreter.
type Message struct {
	Kind      CallKind
	Depth     int
	Sender    types.Address
	Recipient types.Address // ignored for Create/Create2
	Value     *big.Int
	Input     []byte
	Gas       uint64
	IsStatic  bool
	Salt      *big.Int // Create2 only
}

// CallResult is what call()/create() return to their caller (either the
// top-level Execute() entry point, or the interpreter servicing a nested
// CALL/CREATE opcode).
type CallResult struct {
	Err           error // nil on success; ErrExecutionReverted on revert
	GasLeft       uint64
	Output        []byte
	CreateAddress types.Address // set only on a successful Create/Create2
}

// Success reports whether the message completed without error or revert.
func (r CallResult) Success() bool { return r.Err == nil }

// Reverted reports whether the message explicitly reverted (distinct from
// running out of gas or hitting another deterministic error).
func (r CallResult) Reverted() bool { return r.Err == ErrExecutionReverted }

// Interpreter executes contract bytecode, calling back into the EVM (as a
// Host, C5) for CALL/CREATE/SLOAD/SSTORE/environment opcodes. A full
// opcode-complete interpreter is out of scope for this spec; EVM ships one
// minimal reference implementation (interpreter.go) sufficient to drive and
// test the call/create protocol end-to-end.
type Interpreter interface {
	Run(host Host, contract *Contract, input []byte, readOnly bool) ([]byte, error)
}

// BlockContext carries the pinned block environment opcodes like
// COINBASE/TIMESTAMP/NUMBER/BASEFEE/DIFFICULTY read from.
type BlockContext struct {
	Header  types.PartialHeader
	ChainID uint64
	GetHash func(number uint64) types.Hash
}

// EVM is the driver (C4): it owns the IntraBlockState, the active
// revision, and dispatches Call/Create, enforcing depth, gas, and the
// snapshot/revert bracket around every message.
type EVM struct {
	state       *state.IntraBlockState
	block       BlockContext
	revision    Revision
	interpreter Interpreter
}

func New(s *state.IntraBlockState, block BlockContext, revision Revision, interpreter Interpreter) *EVM {
	return &EVM{state: s, block: block, revision: revision, interpreter: interpreter}
}

func (e *EVM) State() *state.IntraBlockState { return e.state }
func (e *EVM) Revision() Revision            { return e.revision }
func (e *EVM) BlockContext() BlockContext    { return e.block }

// Call executes msg against an existing account (CALL/CALLCODE/
// DELEGATECALL/STATICCALL), grounded step-by-step on
// original_source/src/akula/evm.rs::call.
func (e *EVM) Call(msg Message) CallResult {
	if msg.Depth > maxCallDepth {
		return CallResult{Err: ErrDepth, GasLeft: msg.Gas}
	}

	snapshot := e.state.Snapshot()
	transfersValue := msg.Kind == CallKindCall || msg.Kind == CallKindCallCode
	staticViolation := msg.IsStatic && transfersValue && msg.Value.Sign() != 0

	if staticViolation {
		return CallResult{Err: ErrWriteProtection, GasLeft: msg.Gas}
	}

	if transfersValue && msg.Value.Sign() != 0 {
		if e.state.GetBalance(msg.Sender).Cmp(msg.Value) < 0 {
			return CallResult{Err: ErrInsufficientBalance, GasLeft: msg.Gas}
		}
	}

	// EIP-161: touch the recipient of a plain Call even on a zero-value,
	// no-code message so an empty account that was merely touched is
	// still swept at transaction end. Per SPEC_FULL.md §9 this applies to
	// the Call kind (including when msg.IsStatic is true, i.e. a static
	// context reached via a nested plain CALL), but NOT to the StaticCall
	// kind (the STATICCALL opcode itself never touches).
	if msg.Kind == CallKindCall {
		if !e.state.Exist(msg.Recipient) {
			e.state.CreateAccount(msg.Recipient)
		} else {
			e.state.Touch(msg.Recipient)
		}
	}

	if transfersValue && msg.Value.Sign() != 0 {
		e.state.SubBalance(msg.Sender, msg.Value)
		e.state.AddBalance(msg.Recipient, msg.Value)
	}

	codeAddr := msg.Recipient
	if IsPrecompile(codeAddr, e.revision) {
		out, gasLeft, err := RunPrecompile(codeAddr, msg.Input, msg.Gas, e.revision)
		if err != nil {
			e.state.RevertToSnapshot(snapshot)
			return CallResult{Err: err, GasLeft: 0}
		}
		return CallResult{GasLeft: gasLeft, Output: out}
	}

	code := e.state.GetCode(codeAddr)
	if len(code) == 0 {
		return CallResult{GasLeft: msg.Gas}
	}

	execAddr := msg.Recipient
	callerAddr := msg.Sender
	if msg.Kind == CallKindDelegateCall || msg.Kind == CallKindCallCode {
		execAddr = msg.Sender // storage/self context stays the caller's
	}
	contract := NewContract(callerAddr, execAddr, msg.Value, msg.Gas)
	contract.Code = code
	contract.Input = msg.Input

	readOnly := msg.IsStatic || msg.Kind == CallKindStaticCall
	out, err := e.interpreter.Run(&hostView{e, msg.Depth}, contract, msg.Input, readOnly)
	if err != nil {
		e.state.RevertToSnapshot(snapshot)
		if err == ErrExecutionReverted {
			return CallResult{Err: err, GasLeft: contract.Gas, Output: out}
		}
		return CallResult{Err: err, GasLeft: 0}
	}
	return CallResult{GasLeft: contract.Gas, Output: out}
}

// Create executes a CREATE/CREATE2 message, grounded on
// original_source/src/akula/evm.rs::create.
func (e *EVM) Create(msg Message) CallResult {
	if msg.Depth > maxCallDepth {
		return CallResult{Err: ErrDepth, GasLeft: msg.Gas}
	}
	if msg.IsStatic {
		return CallResult{Err: ErrWriteProtection, GasLeft: msg.Gas}
	}
	if msg.Value.Sign() != 0 && e.state.GetBalance(msg.Sender).Cmp(msg.Value) < 0 {
		return CallResult{Err: ErrInsufficientBalance, GasLeft: msg.Gas}
	}

	nonce := e.state.GetNonce(msg.Sender)
	e.state.SetNonce(msg.Sender, nonce+1)

	var newAddr types.Address
	if msg.Kind == CallKindCreate2 {
		newAddr = create2Address(msg.Sender, msg.Salt, msg.Input)
	} else {
		newAddr = createAddress(msg.Sender, nonce)
	}

	// EIP-2929: the contract address being created is warm from the moment
	// of creation, same as an existing recipient would be (SPEC_FULL.md §3).
	e.state.AddAddressToAccessList(newAddr)

	snapshot := e.state.Snapshot()

	if accountCollision(e.state, newAddr) {
		e.state.RevertToSnapshot(snapshot)
		return CallResult{Err: ErrContractAddressCollision, GasLeft: 0}
	}

	e.state.CreateAccount(newAddr)
	if e.revision >= SpuriousDragon {
		e.state.SetNonce(newAddr, 1)
	}
	if msg.Value.Sign() != 0 {
		e.state.SubBalance(msg.Sender, msg.Value)
		e.state.AddBalance(newAddr, msg.Value)
	}

	contract := NewContract(msg.Sender, newAddr, msg.Value, msg.Gas)
	contract.Code = msg.Input // init code

	out, err := e.interpreter.Run(&hostView{e, msg.Depth}, contract, nil, false)
	if err != nil {
		e.state.RevertToSnapshot(snapshot)
		if err == ErrExecutionReverted {
			return CallResult{Err: err, GasLeft: contract.Gas, Output: out}
		}
		return CallResult{Err: err, GasLeft: 0}
	}

	if e.revision >= London && len(out) > 0 && out[0] == 0xef {
		e.state.RevertToSnapshot(snapshot)
		return CallResult{Err: ErrInvalidCode, GasLeft: 0}
	}
	if e.revision >= SpuriousDragon && len(out) > maxCodeSize {
		e.state.RevertToSnapshot(snapshot)
		return CallResult{Err: ErrMaxCodeSizeExceeded, GasLeft: 0}
	}

	depositCost := uint64(len(out)) * 200
	if !contract.UseGas(depositCost) {
		e.state.RevertToSnapshot(snapshot)
		return CallResult{Err: ErrCodeStoreOutOfGas, GasLeft: 0}
	}
	e.state.SetCode(newAddr, out)

	return CallResult{GasLeft: contract.Gas, CreateAddress: newAddr}
}

// accountCollision reports whether newAddr already holds a live contract
// or a non-zero nonce — CREATE2 redeploy-at-same-address protection
// (EIP-684, Design Notes: incarnation barrier).
func accountCollision(s *state.IntraBlockState, addr types.Address) bool {
	if s.GetNonce(addr) != 0 {
		return true
	}
	codeHash := s.GetCodeHash(addr)
	return !codeHash.IsZero() && codeHash != types.EmptyCodeHash
}

// createAddress derives the CREATE address: keccak256(rlp([sender, nonce]))[12:].
func createAddress(sender types.Address, nonce uint64) types.Address {
	rlp := rlpEncodeList(rlpEncodeBytes(sender.Bytes()), rlpEncodeUint(nonce))
	return types.BytesToAddress(crypto.Keccak256(rlp)[12:])
}

// create2Address derives the CREATE2 address: keccak256(0xff || sender ||
// salt || keccak256(initcode))[12:].
func create2Address(sender types.Address, salt *big.Int, initcode []byte) types.Address {
	saltBytes := make([]byte, 32)
	salt.FillBytes(saltBytes)
	codeHash := crypto.Keccak256(initcode)
	buf := make([]byte, 0, 1+20+32+32)
	buf = append(buf, 0xff)
	buf = append(buf, sender.Bytes()...)
	buf = append(buf, saltBytes...)
	buf = append(buf, codeHash...)
	return types.BytesToAddress(crypto.Keccak256(buf)[12:])
}
