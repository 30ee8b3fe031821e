package vm

import (
	"github.com/guanqun/ethers-forked-evm-provider/core/types"
)

// PrecompiledContract is the interface every native precompile (C2)
// implements: RequiredGas reports the cost for a given input before Run is
// attempted, matching original_source's precompiled.rs gas/run split.
type PrecompiledContract interface {
	RequiredGas(input []byte, rev Revision) uint64
	Run(input []byte) ([]byte, error)
}

// precompiles is the full table indexed by address-as-uint8 (1..9); table
// entries beyond numberOfPrecompiles(rev) are gated out by IsPrecompile, not
// by removing entries, so RunPrecompile can be called uniformly.
var precompiles = map[byte]PrecompiledContract{
	1: &ecrecoverContract{},
	2: &sha256Contract{},
	3: &ripemd160Contract{},
	4: &identityContract{},
	5: &modexpContract{},
	6: &bn254AddContract{},
	7: &bn254MulContract{},
	8: &bn254PairingContract{},
	9: &blake2FContract{},
}

// RunPrecompile executes the precompile at addr (already verified active by
// IsPrecompile) against input with gas available, pricing it for rev.
// Returns remaining gas.
func RunPrecompile(addr types.Address, input []byte, gas uint64, rev Revision) ([]byte, uint64, error) {
	p, ok := precompiles[addr[19]]
	if !ok {
		return nil, gas, ErrNotPrecompile
	}
	cost := p.RequiredGas(input, rev)
	if gas < cost {
		return nil, 0, ErrOutOfGas
	}
	out, err := p.Run(input)
	return out, gas - cost, err
}

// PrecompileAddresses returns every precompiled-contract address active at
// rev, used by the driver to pre-warm the EIP-2929 access list at the start
// of a transaction (SPEC_FULL.md §3).
func PrecompileAddresses(rev Revision) []types.Address {
	n := numberOfPrecompiles(rev)
	out := make([]types.Address, n)
	for i := 0; i < n; i++ {
		out[i][19] = byte(i + 1)
	}
	return out
}

// --- shared helpers, grounded on wyf-ACCEPT-eth2030/pkg/core/vm/precompiles.go ---

func wordCount(size int) uint64 {
	if size == 0 {
		return 0
	}
	return uint64((size + 31) / 32)
}

func padRight(data []byte, minLen int) []byte {
	if len(data) >= minLen {
		return data
	}
	padded := make([]byte, minLen)
	copy(padded, data)
	return padded
}

func getDataSlice(data []byte, offset, length uint64) []byte {
	result := make([]byte, length)
	if length == 0 || offset >= uint64(len(data)) {
		return result
	}
	end := offset + length
	if end > uint64(len(data)) {
		end = uint64(len(data))
	}
	copy(result, data[offset:end])
	return result
}

func leftPad32(b []byte) []byte {
	out := make([]byte, 32)
	if len(b) > 32 {
		b = b[len(b)-32:]
	}
	copy(out[32-len(b):], b)
	return out
}
