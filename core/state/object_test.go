package state

import (
	"testing"

	"github.com/guanqun/ethers-forked-evm-provider/core/types"
)

func TestStorageStatus(t *testing.T) {
	zero := types.Hash{}
	one := types.BytesToHash([]byte{1})
	two := types.BytesToHash([]byte{2})

	cases := []struct {
		name               string
		original, current, next types.Hash
		want               StorageStatus
	}{
		{"no-op rewrite", one, one, one, StorageUnchanged},
		{"fresh zero->nonzero", zero, zero, one, StorageAdded},
		{"fresh nonzero->zero", one, one, zero, StorageDeleted},
		{"fresh nonzero->nonzero", one, one, two, StorageModified},
		{"already-dirtied, set back to original", one, two, one, StorageModifiedAgain},
		{"already-dirtied, set to a third value", one, two, zero, StorageModifiedAgain},
		{"already-dirtied, no further change", one, two, two, StorageUnchanged},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := storageStatus(c.original, c.current, c.next)
			if got != c.want {
				t.Fatalf("storageStatus(%v, %v, %v) = %v, want %v", c.original, c.current, c.next, got, c.want)
			}
		})
	}
}
