package backend

import (
	"context"

	"github.com/guanqun/ethers-forked-evm-provider/core/types"
	"github.com/guanqun/ethers-forked-evm-provider/log"
)

// Mux layers a Local snapshot store in front of a Remote archive client:
// every read tries Local first, falls back to Remote on a miss, and
// opportunistically persists a Remote hit back to Local. Grounded on
// original_source/src/state_muxer.rs's StateMuxer, which supports the same
// three configurations this type collapses to by construction:
//   - Local == nil:             all-remote
//   - Local != nil, writeThrough: remote-with-local-write-through ("tee")
//   - Remote == nil:            local-only
type Mux struct {
	Local        *Local
	Remote       *Remote
	WriteThrough bool

	log log.Logger
}

func NewMux(local *Local, remote *Remote, writeThrough bool) *Mux {
	return &Mux{Local: local, Remote: remote, WriteThrough: writeThrough, log: log.New("backend.mux")}
}

func (m *Mux) ReadAccount(ctx context.Context, addr types.Address) (types.Account, bool, error) {
	if m.Local != nil {
		if acct, ok, err := m.Local.ReadAccount(ctx, addr); err == nil && ok {
			return acct, true, nil
		}
	}
	if m.Remote == nil {
		return types.Account{}, false, nil
	}
	acct, ok, err := m.Remote.ReadAccount(ctx, addr)
	if err != nil || !ok {
		return acct, ok, err
	}
	if m.Local != nil && m.WriteThrough {
		if err := m.Local.WriteAccount(addr, acct); err != nil {
			m.log.Warn("write-through account failed", "addr", addr.Hex(), "err", err)
		}
	}
	return acct, true, nil
}

func (m *Mux) ReadCode(ctx context.Context, codeHash types.Hash) ([]byte, error) {
	if m.Local != nil {
		if code, found, err := m.Local.readCode(ctx, codeHash); err == nil && found {
			return code, nil
		}
	}
	if m.Remote == nil {
		return nil, nil
	}
	code, err := m.Remote.ReadCode(ctx, codeHash)
	if err != nil || code == nil {
		return code, err
	}
	if m.Local != nil && m.WriteThrough {
		if err := m.Local.WriteCode(codeHash, code); err != nil {
			m.log.Warn("write-through code failed", "hash", codeHash.Hex(), "err", err)
		}
	}
	return code, nil
}

func (m *Mux) ReadStorage(ctx context.Context, addr types.Address, incarnation uint64, slot types.Hash) (types.Hash, error) {
	if m.Local != nil {
		if v, found, err := m.Local.readStorage(ctx, addr, incarnation, slot); err == nil && found {
			return v, nil
		}
	}
	if m.Remote == nil {
		return types.Hash{}, nil
	}
	v, err := m.Remote.ReadStorage(ctx, addr, incarnation, slot)
	if err != nil {
		return types.Hash{}, err
	}
	if m.Local != nil && m.WriteThrough && !v.IsZero() {
		if err := m.Local.WriteStorage(addr, incarnation, slot, v); err != nil {
			m.log.Warn("write-through storage failed", "addr", addr.Hex(), "err", err)
		}
	}
	return v, nil
}

func (m *Mux) PreviousIncarnation(ctx context.Context, addr types.Address) (uint64, error) {
	if m.Local != nil {
		if inc, err := m.Local.PreviousIncarnation(ctx, addr); err == nil && inc > 0 {
			return inc, nil
		}
	}
	if m.Remote == nil {
		return 0, nil
	}
	return m.Remote.PreviousIncarnation(ctx, addr)
}

func (m *Mux) ReadBlockHeader(ctx context.Context, number uint64) (types.PartialHeader, bool, error) {
	if m.Local != nil {
		if h, ok, err := m.Local.ReadBlockHeader(ctx, number); err == nil && ok {
			return h, true, nil
		}
	}
	if m.Remote == nil {
		return types.PartialHeader{}, false, nil
	}
	h, ok, err := m.Remote.ReadBlockHeader(ctx, number)
	if err != nil || !ok {
		return h, ok, err
	}
	if m.Local != nil && m.WriteThrough {
		if err := m.Local.WriteBlockHeader(h); err != nil {
			m.log.Warn("write-through header failed", "number", number, "err", err)
		}
	}
	return h, true, nil
}
