package state

import (
	"math/big"

	"github.com/guanqun/ethers-forked-evm-provider/core/types"
)

// StorageStatus classifies a storage slot's net change across the whole
// transaction, per EIP-1283/2200. The exact mapping — including emitting
// ModifiedAgain even when the final value equals the original — is
// preserved deliberately; see SPEC_FULL.md §9.
type StorageStatus int

const (
	StorageUnchanged StorageStatus = iota
	StorageAdded
	StorageModified
	StorageDeleted
	StorageModifiedAgain
)

// committedValue is the three-way view of one storage slot required to
// compute StorageStatus: the value the backend holds (initial), the
// transaction-start value (original; this overlay serves one transaction,
// so it is set equal to initial when the slot is loaded and writes never
// change it), and the live value (current).
type committedValue struct {
	initial types.Hash
	original types.Hash
	current  types.Hash
}

// object is the in-memory overlay for one account: the account fields plus
// its touched storage slots, mirroring original_source's akula::Object.
type object struct {
	address types.Address

	exists      bool // false for an account synthesized on first touch
	nonce       uint64
	balance     *big.Int
	code        []byte
	codeHash    types.Hash
	incarnation uint64

	selfDestructed bool
	newlyCreated   bool // set by CreateAccount this tx (CREATE/CREATE2 target or a new Call recipient); read by Exist

	storage map[types.Hash]*committedValue
}

func newObject(addr types.Address) *object {
	return &object{
		address:  addr,
		balance:  new(big.Int),
		codeHash: types.EmptyCodeHash,
		storage:  make(map[types.Hash]*committedValue),
	}
}

func (o *object) empty() bool {
	return o.nonce == 0 && o.balance.Sign() == 0 && o.codeHash == types.EmptyCodeHash
}

// loadedValue returns the three-way view for slot, loading it from the
// backend-pinned `initial` value (via load, supplied by the caller) on
// first touch. original and current both start equal to initial: within a
// single Execute() call original is the transaction-start value, which for
// a freshly loaded slot is the same as the backend's pinned value.
func (o *object) loadedValue(slot types.Hash, load func() types.Hash) *committedValue {
	if cv, ok := o.storage[slot]; ok {
		return cv
	}
	v := load()
	cv := &committedValue{initial: v, original: v, current: v}
	o.storage[slot] = cv
	return cv
}

// setCurrent changes only the live value — used by journal reverts, which
// must not disturb original/initial.
func (o *object) setCurrent(slot, value types.Hash) {
	if cv, ok := o.storage[slot]; ok {
		cv.current = value
	}
}

// storageStatus computes the EIP-1283/2200 status of writing newValue to a
// slot currently at (original, current). The mapping is preserved exactly,
// including reporting ModifiedAgain rather than Unchanged when newValue
// equals original but current had already diverged from original earlier
// in the same transaction (SPEC_FULL.md §9).
func storageStatus(original, current, newValue types.Hash) StorageStatus {
	if current == newValue {
		return StorageUnchanged
	}
	if original == current {
		switch {
		case original.IsZero():
			return StorageAdded
		case newValue.IsZero():
			return StorageDeleted
		default:
			return StorageModified
		}
	}
	return StorageModifiedAgain
}
