package vm

import (
	"crypto/sha256"

	"golang.org/x/crypto/ripemd160"
)

// sha256Contract is precompile 0x02.
type sha256Contract struct{}

func (c *sha256Contract) RequiredGas(input []byte, rev Revision) uint64 {
	return 60 + 12*wordCount(len(input))
}

func (c *sha256Contract) Run(input []byte) ([]byte, error) {
	h := sha256.Sum256(input)
	return h[:], nil
}

// ripemd160Contract is precompile 0x03.
type ripemd160Contract struct{}

func (c *ripemd160Contract) RequiredGas(input []byte, rev Revision) uint64 {
	return 600 + 120*wordCount(len(input))
}

func (c *ripemd160Contract) Run(input []byte) ([]byte, error) {
	h := ripemd160.New()
	h.Write(input)
	return leftPad32(h.Sum(nil)), nil
}

// identityContract is precompile 0x04 (datacopy).
type identityContract struct{}

func (c *identityContract) RequiredGas(input []byte, rev Revision) uint64 {
	return 15 + 3*wordCount(len(input))
}

func (c *identityContract) Run(input []byte) ([]byte, error) {
	out := make([]byte, len(input))
	copy(out, input)
	return out, nil
}
