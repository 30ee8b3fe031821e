package vm

import "errors"

// Deterministic EVM execution errors (C4/C5). These are reported through
// CallResult.Err, never through Execute()'s error return, which is
// reserved for backend I/O failures (see SPEC_FULL.md §5).
var (
	ErrOutOfGas                 = errors.New("vm: out of gas")
	ErrCodeStoreOutOfGas        = errors.New("vm: contract creation code storage out of gas")
	ErrDepth                    = errors.New("vm: max call depth exceeded")
	ErrInsufficientBalance      = errors.New("vm: insufficient balance for transfer")
	ErrContractAddressCollision = errors.New("vm: contract address collision")
	ErrExecutionReverted        = errors.New("vm: execution reverted")
	ErrMaxCodeSizeExceeded      = errors.New("vm: max code size exceeded")
	ErrInvalidCode              = errors.New("vm: invalid code: must not begin with 0xef")
	ErrWriteProtection          = errors.New("vm: write protection (static call)")
	ErrNonceUintOverflow        = errors.New("vm: nonce uint64 overflow")
	ErrNotPrecompile            = errors.New("vm: address is not a precompiled contract")
)
