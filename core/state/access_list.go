package state

import "github.com/guanqun/ethers-forked-evm-provider/core/types"

// accessList tracks the EIP-2929 warm/cold set for the current transaction:
// addresses and (address, slot) pairs touched so far this call stack.
type accessList struct {
	addresses map[types.Address]int // address -> index into slots, -1 if address-only
	slots     []map[types.Hash]struct{}
}

func newAccessList() *accessList {
	return &accessList{addresses: make(map[types.Address]int)}
}

// containsAddress reports whether addr is warm.
func (al *accessList) containsAddress(addr types.Address) bool {
	_, ok := al.addresses[addr]
	return ok
}

// contains reports whether (addr, slot) is warm, and separately whether
// addr alone is warm.
func (al *accessList) contains(addr types.Address, slot types.Hash) (addressPresent, slotPresent bool) {
	idx, ok := al.addresses[addr]
	if !ok {
		return false, false
	}
	if idx == -1 {
		return true, false
	}
	_, slotPresent = al.slots[idx][slot]
	return true, slotPresent
}

// addAddress marks addr warm. Returns true if it was cold.
func (al *accessList) addAddress(addr types.Address) bool {
	if al.containsAddress(addr) {
		return false
	}
	al.addresses[addr] = -1
	return true
}

// addSlot marks (addr, slot) warm. Returns whether the address and the slot
// were each newly added.
func (al *accessList) addSlot(addr types.Address, slot types.Hash) (addrChanged, slotChanged bool) {
	idx, ok := al.addresses[addr]
	if !ok || idx == -1 {
		al.slots = append(al.slots, map[types.Hash]struct{}{slot: {}})
		al.addresses[addr] = len(al.slots) - 1
		return !ok, true
	}
	if _, ok := al.slots[idx][slot]; ok {
		return false, false
	}
	al.slots[idx][slot] = struct{}{}
	return false, true
}

// deleteSlot removes (addr, slot) — used only to revert a journal entry.
func (al *accessList) deleteSlot(addr types.Address, slot types.Hash) {
	idx := al.addresses[addr]
	delete(al.slots[idx], slot)
}

// deleteAddress removes addr entirely — used only to revert a journal entry.
func (al *accessList) deleteAddress(addr types.Address) {
	delete(al.addresses, addr)
}
