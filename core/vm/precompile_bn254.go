package vm

import (
	"github.com/guanqun/ethers-forked-evm-provider/crypto"
)

// bn254AddContract is precompile 0x06 (EIP-196). Gas was 500 at Byzantium,
// reduced to 150 by EIP-1108 at Istanbul.
type bn254AddContract struct{}

func (c *bn254AddContract) RequiredGas(input []byte, rev Revision) uint64 {
	if rev >= Istanbul {
		return 150
	}
	return 500
}

func (c *bn254AddContract) Run(input []byte) ([]byte, error) {
	input = padRight(input, 128)
	return crypto.BN254Add(input[0:64], input[64:128])
}

// bn254MulContract is precompile 0x07 (EIP-196). Gas was 40000 at Byzantium,
// reduced to 6000 by EIP-1108 at Istanbul.
type bn254MulContract struct{}

func (c *bn254MulContract) RequiredGas(input []byte, rev Revision) uint64 {
	if rev >= Istanbul {
		return 6000
	}
	return 40000
}

func (c *bn254MulContract) Run(input []byte) ([]byte, error) {
	input = padRight(input, 96)
	return crypto.BN254ScalarMul(input[0:64], input[64:96])
}

// bn254PairingContract is precompile 0x08 (EIP-197). Base/per-pair gas was
// 100000/80000 at Byzantium, reduced to 45000/34000 by EIP-1108 at Istanbul.
type bn254PairingContract struct{}

func (c *bn254PairingContract) RequiredGas(input []byte, rev Revision) uint64 {
	k := uint64(len(input)) / 192
	if rev >= Istanbul {
		return 45000 + 34000*k
	}
	return 100000 + 80000*k
}

func (c *bn254PairingContract) Run(input []byte) ([]byte, error) {
	ok, err := crypto.BN254Pairing(input)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 32)
	if ok {
		out[31] = 1
	}
	return out, nil
}
