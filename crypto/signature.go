package crypto

import (
	"math/big"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// secp256k1N is the order of the secp256k1 curve group.
var secp256k1N, _ = new(big.Int).SetString("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141", 16)
var secp256k1HalfN = new(big.Int).Rsh(secp256k1N, 1)

// ValidSignatureValues mirrors original_source's is_valid_signature: r and s
// must be non-zero and strictly less than the curve order; when
// homestead is true (Homestead and later), s must additionally be at most
// half the curve order (EIP-2, the low-S requirement).
func ValidSignatureValues(r, s *big.Int, homestead bool) bool {
	if r.Sign() <= 0 || s.Sign() <= 0 {
		return false
	}
	if r.Cmp(secp256k1N) >= 0 || s.Cmp(secp256k1N) >= 0 {
		return false
	}
	if homestead && s.Cmp(secp256k1HalfN) > 0 {
		return false
	}
	return true
}

// Ecrecover recovers the 20-byte address that produced sig over hash. sig is
// the 65-byte [R || S || V] signature with V in {0, 1}. Delegates to
// go-ethereum's audited secp256k1 implementation — the teacher's own
// crypto/secp256k1.go substitutes stdlib P-256 and hardcodes V, so it cannot
// actually recover a key (see DESIGN.md).
func Ecrecover(hash, sig []byte) ([]byte, error) {
	pub, err := gethcrypto.Ecrecover(hash, sig)
	if err != nil {
		return nil, err
	}
	return Keccak256(pub[1:])[12:], nil
}
