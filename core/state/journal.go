package state

import (
	"math/big"

	"github.com/guanqun/ethers-forked-evm-provider/core/types"
)

// journalEntry is one reversible mutation of IntraBlockState. The journal is
// a flat, tagged, append-only vector of entries (Design Notes: "journal as a
// flat vector of tagged entries, not a tree") — reverting a snapshot walks
// entries back-to-front and undoes each one, rather than rebuilding state
// from a diff tree.
type journalEntry interface {
	revert(s *IntraBlockState)
	dirtied() (types.Address, bool)
}

type journal struct {
	entries []journalEntry
	dirties map[types.Address]int // address -> number of dirtying entries
}

func newJournal() *journal {
	return &journal{dirties: make(map[types.Address]int)}
}

func (j *journal) append(entry journalEntry) {
	j.entries = append(j.entries, entry)
	if addr, ok := entry.dirtied(); ok {
		j.dirties[addr]++
	}
}

// length returns the current snapshot id: the number of entries so far.
func (j *journal) length() int {
	return len(j.entries)
}

// revertTo undoes every entry appended since snapshot id `id`, in reverse
// order.
func (j *journal) revertTo(s *IntraBlockState, id int) {
	for i := len(j.entries) - 1; i >= id; i-- {
		j.entries[i].revert(s)
		if addr, ok := j.entries[i].dirtied(); ok {
			if j.dirties[addr]--; j.dirties[addr] == 0 {
				delete(j.dirties, addr)
			}
		}
	}
	j.entries = j.entries[:id]
}

// --- concrete journal entries ---

type createObjectChange struct {
	account types.Address
}

func (c createObjectChange) revert(s *IntraBlockState) {
	delete(s.objects, c.account)
}
func (c createObjectChange) dirtied() (types.Address, bool) { return c.account, true }

type balanceChange struct {
	account types.Address
	prev    *big.Int
}

func (c balanceChange) revert(s *IntraBlockState) {
	s.objects[c.account].balance = c.prev
}
func (c balanceChange) dirtied() (types.Address, bool) { return c.account, true }

type nonceChange struct {
	account types.Address
	prev    uint64
}

func (c nonceChange) revert(s *IntraBlockState) {
	s.objects[c.account].nonce = c.prev
}
func (c nonceChange) dirtied() (types.Address, bool) { return c.account, true }

type codeChange struct {
	account            types.Address
	prevCode, prevHash []byte
}

func (c codeChange) revert(s *IntraBlockState) {
	o := s.objects[c.account]
	o.code = c.prevCode
	o.codeHash = types.BytesToHash(c.prevHash)
}
func (c codeChange) dirtied() (types.Address, bool) { return c.account, true }

type storageChange struct {
	account      types.Address
	slot, prev   types.Hash
}

func (c storageChange) revert(s *IntraBlockState) {
	s.objects[c.account].setCurrent(c.slot, c.prev)
}
func (c storageChange) dirtied() (types.Address, bool) { return c.account, true }

type selfDestructChange struct {
	account      types.Address
	prevDestruct bool
	prevBalance  *big.Int
}

func (c selfDestructChange) revert(s *IntraBlockState) {
	o := s.objects[c.account]
	o.selfDestructed = c.prevDestruct
	o.balance = c.prevBalance
}
func (c selfDestructChange) dirtied() (types.Address, bool) { return c.account, true }

type refundChange struct {
	prev uint64
}

func (c refundChange) revert(s *IntraBlockState) { s.refund = c.prev }
func (c refundChange) dirtied() (types.Address, bool) { return types.Address{}, false }

type touchChange struct {
	account types.Address
}

func (c touchChange) revert(s *IntraBlockState) {}
func (c touchChange) dirtied() (types.Address, bool) { return c.account, true }

type accessListAddAccountChange struct {
	address types.Address
}

func (c accessListAddAccountChange) revert(s *IntraBlockState) {
	s.accessList.deleteAddress(c.address)
}
func (c accessListAddAccountChange) dirtied() (types.Address, bool) { return types.Address{}, false }

type accessListAddSlotChange struct {
	address types.Address
	slot    types.Hash
}

func (c accessListAddSlotChange) revert(s *IntraBlockState) {
	s.accessList.deleteSlot(c.address, c.slot)
}
func (c accessListAddSlotChange) dirtied() (types.Address, bool) { return types.Address{}, false }

type logChange struct {
	account types.Address
}

func (c logChange) revert(s *IntraBlockState) {
	logs := s.logs[c.account]
	s.logs[c.account] = logs[:len(logs)-1]
}
func (c logChange) dirtied() (types.Address, bool) { return types.Address{}, false }
