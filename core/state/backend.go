// Package state implements the intra-block state overlay (C3): a
// snapshot/revert journal layered on top of a pinned, read-only
// StateBackend (C1).
package state

import (
	"context"

	"github.com/guanqun/ethers-forked-evm-provider/core/types"
)

// StateBackend is the read-only view of chain state pinned at one block.
// Every method may cross a network boundary; callers pass a context so a
// remote implementation can cancel/time out. Go has ordinary blocking I/O,
// so the Rust original's interrupt/resume coroutine loop collapses here
// into a plain synchronous call against this interface (see SPEC_FULL.md §1
// and Design Notes on the async-read translation).
type StateBackend interface {
	// ReadAccount returns the account at addr, or (Account{}, false, nil) if
	// the address has never been touched.
	ReadAccount(ctx context.Context, addr types.Address) (types.Account, bool, error)

	// ReadCode returns the contract code for the given code hash.
	ReadCode(ctx context.Context, codeHash types.Hash) ([]byte, error)

	// ReadStorage returns the value at (addr, incarnation, slot), or the
	// zero hash if never written.
	ReadStorage(ctx context.Context, addr types.Address, incarnation uint64, slot types.Hash) (types.Hash, error)

	// PreviousIncarnation returns the incarnation the address had the last
	// time it held code, or 0 if it never did. IntraBlockState gives a
	// (re)created contract the next incarnation after this one, so a CREATE2
	// redeploy at the same address does not see the earlier storage.
	PreviousIncarnation(ctx context.Context, addr types.Address) (uint64, error)

	// ReadBlockHeader returns the header for the given block number, used
	// to service the BLOCKHASH opcode family.
	ReadBlockHeader(ctx context.Context, number uint64) (types.PartialHeader, bool, error)
}
