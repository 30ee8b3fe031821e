package vm

// Revision identifies a hard fork / protocol ruleset. The driver supports
// every revision from Frontier through Shanghai inclusive (spec.md §6); no
// Cancun-and-later behavior (blob precompile, transient storage, EOF) is in
// scope.
type Revision int

const (
	Frontier Revision = iota
	Homestead
	TangerineWhistle // EIP-150
	SpuriousDragon   // EIP-161/170
	Byzantium
	Constantinople
	Petersburg
	Istanbul
	MuirGlacier
	Berlin
	London
	Shanghai
)

func (r Revision) String() string {
	switch r {
	case Frontier:
		return "Frontier"
	case Homestead:
		return "Homestead"
	case TangerineWhistle:
		return "TangerineWhistle"
	case SpuriousDragon:
		return "SpuriousDragon"
	case Byzantium:
		return "Byzantium"
	case Constantinople:
		return "Constantinople"
	case Petersburg:
		return "Petersburg"
	case Istanbul:
		return "Istanbul"
	case MuirGlacier:
		return "MuirGlacier"
	case Berlin:
		return "Berlin"
	case London:
		return "London"
	case Shanghai:
		return "Shanghai"
	default:
		return "Unknown"
	}
}

// numberOfPrecompiles returns how many of the low-address precompiles
// (0x01.. in order) are active at rev, mirroring
// original_source/src/akula/evm.rs::number_of_precompiles.
func numberOfPrecompiles(rev Revision) int {
	switch {
	case rev < Byzantium:
		return 4 // ecrecover, sha256, ripemd160, identity
	case rev < Istanbul:
		return 8 // + modexp, bn128 add/mul/pairing (EIP-198, EIP-196/197)
	default:
		return 9 // + blake2f (EIP-152)
	}
}

// IsPrecompile reports whether addr is an active precompiled contract at
// rev, per original_source's is_precompiled: addresses 0x00..01 through
// 0x00..numberOfPrecompiles(rev), inclusive; the zero address and anything
// past the active count are not precompiles.
func IsPrecompile(addr [20]byte, rev Revision) bool {
	for i := 0; i < 19; i++ {
		if addr[i] != 0 {
			return false
		}
	}
	n := addr[19]
	return n >= 1 && int(n) <= numberOfPrecompiles(rev)
}
