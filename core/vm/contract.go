package vm

import (
	"math/big"

	"github.com/guanqun/ethers-forked-evm-provider/core/types"
)

// Contract is the EVM's view of the code object currently executing,
// grounded on wyf-ACCEPT-eth2030/pkg/core/vm/contract.go — kept close to
// verbatim, since bytecode/gas bookkeeping is untouched by this spec.
type Contract struct {
	CallerAddress types.Address
	Address       types.Address
	Code          []byte
	CodeHash      types.Hash
	Input         []byte
	Gas           uint64
	Value         *big.Int

	jumpdests map[uint64]bool
}

func NewContract(caller, addr types.Address, value *big.Int, gas uint64) *Contract {
	return &Contract{CallerAddress: caller, Address: addr, Value: value, Gas: gas}
}

func (c *Contract) GetOp(n uint64) OpCode {
	if n < uint64(len(c.Code)) {
		return OpCode(c.Code[n])
	}
	return STOP
}

func (c *Contract) UseGas(gas uint64) bool {
	if c.Gas < gas {
		return false
	}
	c.Gas -= gas
	return true
}

func (c *Contract) validJumpdest(dest uint64) bool {
	if dest >= uint64(len(c.Code)) {
		return false
	}
	if OpCode(c.Code[dest]) != JUMPDEST {
		return false
	}
	return c.isCode(dest)
}

func (c *Contract) isCode(pos uint64) bool {
	if c.jumpdests == nil {
		c.jumpdests = make(map[uint64]bool)
		c.analyzeJumpdests()
	}
	return c.jumpdests[pos]
}

func (c *Contract) analyzeJumpdests() {
	for i := uint64(0); i < uint64(len(c.Code)); i++ {
		op := OpCode(c.Code[i])
		if op == JUMPDEST {
			c.jumpdests[i] = true
		}
		if op.IsPush() {
			i += uint64(op - PUSH1 + 1)
		}
	}
}
