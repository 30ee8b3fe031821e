// Package executor implements the top-level entry point (Execute): given a
// pinned backend, a block context, and a transaction-shaped message, it
// decides whether the message is a call or a contract creation and drives
// the core/vm EVM accordingly.
package executor

import (
	"context"
	"math/big"

	"github.com/guanqun/ethers-forked-evm-provider/core/state"
	"github.com/guanqun/ethers-forked-evm-provider/core/types"
	"github.com/guanqun/ethers-forked-evm-provider/core/vm"
)

// defaultChainID is used only when the caller leaves TxContext.ChainID at
// zero. SPEC_FULL.md §9: chain_id is a caller-supplied field, not a
// hardcoded constant; this is merely its fallback for convenience.
const defaultChainID = 1

// TxContext is the transaction-shaped message passed to Execute. A nil
// Recipient means contract creation (original_source/src/akula/evm.rs::
// execute: "a transaction without a recipient is a creation").
type TxContext struct {
	Sender    types.Address
	Recipient *types.Address
	Value     *big.Int
	Input     []byte
	GasLimit  uint64

	// Gas price fields (§6): GasPrice services legacy/EIP-2930 transactions;
	// GasFeeCap/GasTipCap service EIP-1559. Exactly one pairing is used,
	// selected by TxType.
	TxType     TxType
	GasPrice   *big.Int
	GasFeeCap  *big.Int
	GasTipCap  *big.Int

	ChainID uint64 // 0 => defaultChainID
}

// TxType selects which effective-gas-price formula applies.
type TxType int

const (
	TxTypeLegacy TxType = iota
	TxTypeAccessList    // EIP-2930
	TxTypeDynamicFee    // EIP-1559
)

// EffectiveGasPrice implements the three formulas of spec.md §6, grounded
// on original_source/src/akula/utils.rs::get_effective_gas_price.
func (tx TxContext) EffectiveGasPrice(baseFee *big.Int) *big.Int {
	switch tx.TxType {
	case TxTypeDynamicFee:
		tip := new(big.Int).Sub(tx.GasFeeCap, baseFee)
		if tip.Cmp(tx.GasTipCap) > 0 {
			tip = tx.GasTipCap
		}
		return new(big.Int).Add(baseFee, tip)
	default: // Legacy, AccessList: price is fixed by the sender
		return new(big.Int).Set(tx.GasPrice)
	}
}

// Result is the outcome of a top-level Execute call.
type Result struct {
	vm.CallResult
	Logs        []types.Log
	RefundCounter uint64
}

// Execute runs tx against backend pinned at block, under revision rev, and
// returns the outcome. The IntraBlockState overlay built here is always
// discarded — nothing is written back to backend (spec.md §1: "execute
// transactions/calls without mutating the remote chain").
func Execute(ctx context.Context, backend state.StateBackend, block vm.BlockContext, rev vm.Revision, tx TxContext) (Result, error) {
	if tx.ChainID == 0 {
		tx.ChainID = defaultChainID
		block.ChainID = defaultChainID
	} else {
		block.ChainID = tx.ChainID
	}

	s := state.New(ctx, backend)
	s.SetLondon(rev >= vm.London)

	// EIP-2929: the sender and every currently-active precompile are warm
	// from the first instruction (SPEC_FULL.md §3). The recipient of a Call
	// is warmed below once it's known; the recipient of a Create is warmed
	// by EVM.Create itself once the contract address is derived.
	s.AddAddressToAccessList(tx.Sender)
	for _, p := range vm.PrecompileAddresses(rev) {
		s.AddAddressToAccessList(p)
	}

	evm := vm.New(s, block, rev, &vm.ReferenceInterpreter{})

	// is_static on the synthesized root message mirrors original_source's
	// convention: a zero sender (a probe / eth_call-style read with no
	// signer) executes as a static context even at the top level.
	isStatic := tx.Sender.IsZero()

	var result vm.CallResult
	if tx.Recipient == nil {
		result = evm.Create(vm.Message{
			Kind:     vm.CallKindCreate,
			Sender:   tx.Sender,
			Value:    valueOrZero(tx.Value),
			Input:    tx.Input,
			Gas:      tx.GasLimit,
			IsStatic: isStatic,
		})
	} else {
		s.AddAddressToAccessList(*tx.Recipient)
		result = evm.Call(vm.Message{
			Kind:      vm.CallKindCall,
			Sender:    tx.Sender,
			Recipient: *tx.Recipient,
			Value:     valueOrZero(tx.Value),
			Input:     tx.Input,
			Gas:       tx.GasLimit,
			IsStatic:  isStatic,
		})
	}

	s.Finalize()

	// spec.md §4.3 finalize_transaction: the refund counter is capped at
	// gas_used/5 post-London (EIP-3529) or gas_used/2 before it.
	gasUsed := tx.GasLimit - result.GasLeft
	refundCap := gasUsed / 2
	if rev >= vm.London {
		refundCap = gasUsed / 5
	}
	refund := s.Refund()
	if refund > refundCap {
		refund = refundCap
	}

	return Result{CallResult: result, Logs: s.Logs(), RefundCounter: refund}, nil
}

func valueOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
