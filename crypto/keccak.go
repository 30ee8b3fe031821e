// Package crypto wires the EVM driver's cryptographic primitives —
// Keccak-256, ecrecover signature validity, and BN254 pairing — to real
// ecosystem libraries rather than hand-rolled implementations.
package crypto

import (
	"golang.org/x/crypto/sha3"

	"github.com/guanqun/ethers-forked-evm-provider/core/types"
)

// Keccak256 returns the Keccak-256 digest of the concatenation of data.
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, b := range data {
		h.Write(b)
	}
	return h.Sum(nil)
}

// Keccak256Hash is Keccak256 wrapped as a types.Hash.
func Keccak256Hash(data ...[]byte) types.Hash {
	return types.BytesToHash(Keccak256(data...))
}
