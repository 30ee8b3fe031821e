package state

import (
	"context"
	"math/big"

	"github.com/guanqun/ethers-forked-evm-provider/core/types"
	"github.com/guanqun/ethers-forked-evm-provider/crypto"
)

// IntraBlockState is the mutable overlay (C3) the EVM driver executes
// against: a snapshot/revert journal of account and storage writes, backed
// by a read-only, pinned StateBackend. Capability surface grounded on
// wyf-ACCEPT-eth2030's core/state/statedb.go StateDB interface, adapted to
// this spec's exact storage-status and touch semantics.
type IntraBlockState struct {
	backend StateBackend
	ctx     context.Context

	objects map[types.Address]*object
	journal *journal

	accessList *accessList
	refund     uint64
	isLondon   bool // gates the EIP-3529 storage-clear refund amount

	logs        map[types.Address][]types.Log
	logSize     uint

	// nextIncarnation tracks the incarnation a freshly (re)created contract
	// should use, derived from the backend's PreviousIncarnation the first
	// time an address is touched in this overlay.
	nextIncarnation map[types.Address]uint64
}

// New creates an IntraBlockState pinned to backend, fresh (no prior writes).
func New(ctx context.Context, backend StateBackend) *IntraBlockState {
	return &IntraBlockState{
		backend:         backend,
		ctx:             ctx,
		objects:         make(map[types.Address]*object),
		journal:         newJournal(),
		accessList:      newAccessList(),
		logs:            make(map[types.Address][]types.Log),
		nextIncarnation: make(map[types.Address]uint64),
	}
}

// getOrLoad returns the in-memory object for addr, synthesizing one from
// the backend (or from nothing, if the backend has never seen it) on first
// touch. The returned object is never nil.
func (s *IntraBlockState) getOrLoad(addr types.Address) *object {
	if o, ok := s.objects[addr]; ok {
		return o
	}
	o := newObject(addr)
	acct, found, err := s.backend.ReadAccount(s.ctx, addr)
	if err == nil && found {
		o.exists = true
		o.nonce = acct.Nonce
		o.balance = new(big.Int).Set(acct.Balance)
		o.codeHash = acct.CodeHash
		o.incarnation = acct.Incarnation
	}
	s.objects[addr] = o
	return o
}

// SetLondon pins whether the EIP-3529 (London) reduced storage-clear refund
// schedule applies to every SetState call this overlay services. The caller
// (executor.Execute) sets this once, immediately after New, from the active
// Revision — core/state has no dependency on core/vm's Revision type.
func (s *IntraBlockState) SetLondon(isLondon bool) { s.isLondon = isLondon }

// Exist reports whether addr has ever been touched, either pre-existing in
// the backend or created this transaction.
func (s *IntraBlockState) Exist(addr types.Address) bool {
	o := s.getOrLoad(addr)
	return o.exists || o.newlyCreated
}

// Empty implements the EIP-161 predicate used by the EVM driver to decide
// whether to delete a touched-but-empty account at transaction end.
func (s *IntraBlockState) Empty(addr types.Address) bool {
	o := s.getOrLoad(addr)
	return o.empty()
}

func (s *IntraBlockState) GetBalance(addr types.Address) *big.Int {
	return new(big.Int).Set(s.getOrLoad(addr).balance)
}

func (s *IntraBlockState) AddBalance(addr types.Address, amount *big.Int) {
	if amount.Sign() == 0 {
		s.touch(addr)
		return
	}
	o := s.getOrLoad(addr)
	s.journal.append(balanceChange{account: addr, prev: new(big.Int).Set(o.balance)})
	o.balance = new(big.Int).Add(o.balance, amount)
}

func (s *IntraBlockState) SubBalance(addr types.Address, amount *big.Int) {
	if amount.Sign() == 0 {
		s.touch(addr)
		return
	}
	o := s.getOrLoad(addr)
	s.journal.append(balanceChange{account: addr, prev: new(big.Int).Set(o.balance)})
	o.balance = new(big.Int).Sub(o.balance, amount)
}

func (s *IntraBlockState) GetNonce(addr types.Address) uint64 {
	return s.getOrLoad(addr).nonce
}

func (s *IntraBlockState) SetNonce(addr types.Address, nonce uint64) {
	o := s.getOrLoad(addr)
	s.journal.append(nonceChange{account: addr, prev: o.nonce})
	o.nonce = nonce
}

func (s *IntraBlockState) GetCodeHash(addr types.Address) types.Hash {
	return s.getOrLoad(addr).codeHash
}

func (s *IntraBlockState) GetCode(addr types.Address) []byte {
	o := s.getOrLoad(addr)
	if o.code != nil {
		return o.code
	}
	if o.codeHash.IsZero() || o.codeHash == types.EmptyCodeHash {
		return nil
	}
	code, err := s.backend.ReadCode(s.ctx, o.codeHash)
	if err != nil {
		return nil
	}
	o.code = code
	return code
}

func (s *IntraBlockState) GetCodeSize(addr types.Address) int {
	return len(s.GetCode(addr))
}

func (s *IntraBlockState) SetCode(addr types.Address, code []byte) {
	o := s.getOrLoad(addr)
	hash := crypto.Keccak256Hash(code)
	s.journal.append(codeChange{account: addr, prevCode: o.code, prevHash: o.codeHash.Bytes()})
	o.code = code
	o.codeHash = hash
}

// GetIncarnation returns the incarnation a newly created contract at addr
// should use: one more than PreviousIncarnation, so a CREATE2 redeploy at
// the same address never reuses storage-slot identity with an earlier
// deployment (Design Notes: incarnation barrier).
func (s *IntraBlockState) GetIncarnation(addr types.Address) uint64 {
	if inc, ok := s.nextIncarnation[addr]; ok {
		return inc
	}
	prev, _ := s.backend.PreviousIncarnation(s.ctx, addr)
	inc := prev + 1
	s.nextIncarnation[addr] = inc
	return inc
}

// CreateAccount marks addr as created this transaction (a CREATE/CREATE2
// target, or the implicit creation of an account receiving value for the
// first time). Existing balance (e.g. pre-funded by an earlier transfer in
// this same transaction) is preserved.
func (s *IntraBlockState) CreateAccount(addr types.Address) {
	o := s.getOrLoad(addr)
	if o.newlyCreated {
		return
	}
	s.journal.append(createObjectChange{account: addr})
	preservedBalance := o.balance
	fresh := newObject(addr)
	fresh.balance = preservedBalance
	fresh.newlyCreated = true
	fresh.incarnation = s.GetIncarnation(addr)
	s.objects[addr] = fresh
}

// --- storage ---

func (s *IntraBlockState) GetState(addr types.Address, slot types.Hash) types.Hash {
	o := s.getOrLoad(addr)
	cv := o.loadedValue(slot, func() types.Hash {
		v, err := s.backend.ReadStorage(s.ctx, addr, o.incarnation, slot)
		if err != nil {
			return types.Hash{}
		}
		return v
	})
	return cv.current
}

// GetCommittedState returns the transaction-start value of a slot, ignoring
// any writes made so far this transaction.
func (s *IntraBlockState) GetCommittedState(addr types.Address, slot types.Hash) types.Hash {
	o := s.getOrLoad(addr)
	cv := o.loadedValue(slot, func() types.Hash {
		v, err := s.backend.ReadStorage(s.ctx, addr, o.incarnation, slot)
		if err != nil {
			return types.Hash{}
		}
		return v
	})
	return cv.original
}

// SetState writes slot := value, applies the EIP-1283/2200/3529 refund delta
// for the write via AddRefund/SubRefund, and returns the resulting storage
// status for callers/tests that want to inspect it.
func (s *IntraBlockState) SetState(addr types.Address, slot, value types.Hash) StorageStatus {
	o := s.getOrLoad(addr)
	cv := o.loadedValue(slot, func() types.Hash {
		v, err := s.backend.ReadStorage(s.ctx, addr, o.incarnation, slot)
		if err != nil {
			return types.Hash{}
		}
		return v
	})
	st := storageStatus(cv.original, cv.current, value)
	s.applySStoreRefund(cv.original, cv.current, value)
	s.journal.append(storageChange{account: addr, slot: slot, prev: cv.current})
	cv.current = value
	return st
}

// Gas constants from EIP-2200; sstoreClearsScheduleRefund is reduced by
// EIP-3529 at London (15000 -> 4800).
const (
	sstoreSetGas                     = 20000
	sstoreResetGas                   = 5000
	sloadGasEIP2200                  = 800
	sstoreClearsScheduleRefund       = 15000
	sstoreClearsScheduleRefundLondon = 4800
)

// applySStoreRefund credits/debits the refund counter for one SSTORE, given
// the slot's transaction-start value (original), its value before this write
// (current), and the value being written (value). Ported from go-ethereum's
// gasSStoreEIP2200 refund half (the gas-cost half does not apply here since
// this interpreter does not meter per-opcode gas; see SPEC_FULL.md §1).
func (s *IntraBlockState) applySStoreRefund(original, current, value types.Hash) {
	if current == value {
		return // no-op write
	}

	clearsRefund := uint64(sstoreClearsScheduleRefund)
	if s.isLondon {
		clearsRefund = sstoreClearsScheduleRefundLondon
	}

	if original == current {
		// First write to this slot this transaction.
		if !original.IsZero() && value.IsZero() {
			s.AddRefund(clearsRefund)
		}
		return
	}

	// Slot already dirtied earlier this transaction.
	if !original.IsZero() {
		if current.IsZero() {
			s.SubRefund(clearsRefund) // undo the refund granted when it was cleared
		}
		if value.IsZero() {
			s.AddRefund(clearsRefund) // re-clearing it now
		}
	}
	if original == value {
		if original.IsZero() {
			s.AddRefund(sstoreSetGas - sloadGasEIP2200)
		} else {
			s.AddRefund(sstoreResetGas - sloadGasEIP2200)
		}
	}
}

// --- refund counter (EIP-3529 capped by the caller at call(s) final gas use) ---

func (s *IntraBlockState) AddRefund(gas uint64) {
	s.journal.append(refundChange{prev: s.refund})
	s.refund += gas
}

// SubRefund decreases the refund counter. Per akula's saturating-arithmetic
// convention (Design Notes: saturating numeric overflow), this never
// underflows past zero.
func (s *IntraBlockState) SubRefund(gas uint64) {
	s.journal.append(refundChange{prev: s.refund})
	if gas > s.refund {
		s.refund = 0
		return
	}
	s.refund -= gas
}

func (s *IntraBlockState) Refund() uint64 { return s.refund }

// --- self-destruct ---

func (s *IntraBlockState) HasSelfDestructed(addr types.Address) bool {
	return s.getOrLoad(addr).selfDestructed
}

func (s *IntraBlockState) SelfDestruct(addr types.Address) {
	o := s.getOrLoad(addr)
	s.journal.append(selfDestructChange{
		account:      addr,
		prevDestruct: o.selfDestructed,
		prevBalance:  new(big.Int).Set(o.balance),
	})
	o.selfDestructed = true
	o.balance = new(big.Int)
}

// --- touch (EIP-161) ---

// touch marks addr as touched without dirtying any of its fields; the
// driver uses this for the "recipient of a zero-value CALL" case (touch on
// static Call, not on StaticCall — SPEC_FULL.md §9), so an empty account
// that was merely touched still gets swept at transaction end.
func (s *IntraBlockState) touch(addr types.Address) {
	s.getOrLoad(addr)
	s.journal.append(touchChange{account: addr})
}

func (s *IntraBlockState) Touch(addr types.Address) { s.touch(addr) }

// --- access list (EIP-2929) ---

func (s *IntraBlockState) AddressInAccessList(addr types.Address) bool {
	return s.accessList.containsAddress(addr)
}

func (s *IntraBlockState) SlotInAccessList(addr types.Address, slot types.Hash) (addressOk, slotOk bool) {
	return s.accessList.contains(addr, slot)
}

func (s *IntraBlockState) AddAddressToAccessList(addr types.Address) {
	if s.accessList.addAddress(addr) {
		s.journal.append(accessListAddAccountChange{address: addr})
	}
}

func (s *IntraBlockState) AddSlotToAccessList(addr types.Address, slot types.Hash) {
	addrChanged, slotChanged := s.accessList.addSlot(addr, slot)
	if addrChanged {
		s.journal.append(accessListAddAccountChange{address: addr})
	}
	if slotChanged {
		s.journal.append(accessListAddSlotChange{address: addr, slot: slot})
	}
}

// --- logs ---

func (s *IntraBlockState) AddLog(log types.Log) {
	s.journal.append(logChange{account: log.Address})
	s.logs[log.Address] = append(s.logs[log.Address], log)
	s.logSize++
}

func (s *IntraBlockState) Logs() []types.Log {
	var all []types.Log
	for _, logs := range s.logs {
		all = append(all, logs...)
	}
	return all
}

// --- snapshot / revert ---

// Snapshot returns an id that RevertToSnapshot can later return state to.
func (s *IntraBlockState) Snapshot() int {
	return s.journal.length()
}

// RevertToSnapshot undoes every mutation made since id was obtained.
func (s *IntraBlockState) RevertToSnapshot(id int) {
	s.journal.revertTo(s, id)
}

// Finalize sweeps EIP-161 empty-and-touched accounts and self-destructed
// accounts, called once at the end of a top-level Execute(). It does not
// write back to the backend (the overlay is always discarded); it is only
// used to compute the final account set for tests/diff inspection.
func (s *IntraBlockState) Finalize() {
	for addr, o := range s.objects {
		if o.selfDestructed || (o.empty() && s.journal.dirties[addr] > 0) {
			delete(s.objects, addr)
		}
	}
}
