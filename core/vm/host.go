package vm

import "github.com/guanqun/ethers-forked-evm-provider/core/state"

// Host is the glue surface (C5) the Interpreter uses to reach the rest of
// the system: state reads/writes, and recursive Call/Create dispatch.
//
// original_source/src/akula/evm.rs's inner execute() function ran as a
// suspend/resume interrupt loop: the interpreter yielded an interrupt enum
// (AccountExists, GetBalance, Call, Create, ...) and the driver resumed it
// with the answer once the (possibly async) backend read completed. Go has
// ordinary goroutine-blocking I/O, so that loop collapses here into a plain
// interface the interpreter calls directly — no generator or channel
// machinery needed (SPEC_FULL.md §1, Design Notes on the async-read
// translation).
type Host interface {
	State() *state.IntraBlockState
	Revision() Revision
	BlockContext() BlockContext
	Call(msg Message) CallResult
	Create(msg Message) CallResult
}

// hostView binds the calling frame's depth so nested Call/Create issued by
// the interpreter automatically increment it by one.
type hostView struct {
	evm   *EVM
	depth int
}

func (h *hostView) State() *state.IntraBlockState { return h.evm.State() }
func (h *hostView) Revision() Revision            { return h.evm.Revision() }
func (h *hostView) BlockContext() BlockContext    { return h.evm.BlockContext() }

func (h *hostView) Call(msg Message) CallResult {
	msg.Depth = h.depth + 1
	return h.evm.Call(msg)
}

func (h *hostView) Create(msg Message) CallResult {
	msg.Depth = h.depth + 1
	return h.evm.Create(msg)
}
