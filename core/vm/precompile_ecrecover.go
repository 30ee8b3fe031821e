package vm

import (
	"math/big"

	"github.com/guanqun/ethers-forked-evm-provider/crypto"
)

// ecrecoverContract is precompile 0x01 (EIP-2).
type ecrecoverContract struct{}

func (c *ecrecoverContract) RequiredGas(input []byte, rev Revision) uint64 { return 3000 }

func (c *ecrecoverContract) Run(input []byte) ([]byte, error) {
	input = padRight(input, 128)

	hash := input[0:32]
	v := new(big.Int).SetBytes(input[32:64])
	r := new(big.Int).SetBytes(input[64:96])
	s := new(big.Int).SetBytes(input[96:128])

	if v.BitLen() > 8 {
		return nil, nil
	}
	vByte := byte(v.Uint64())
	if vByte != 27 && vByte != 28 {
		return nil, nil
	}
	// The ecrecover precompile never applies Homestead's low-S malleability
	// restriction — that rule binds signed transactions, not this precompile
	// (original_source/src/akula/precompiled.rs: is_valid_signature(r, s, false)).
	if !crypto.ValidSignatureValues(r, s, false) {
		return nil, nil
	}

	sig := make([]byte, 65)
	rBytes, sBytes := r.Bytes(), s.Bytes()
	copy(sig[32-len(rBytes):32], rBytes)
	copy(sig[64-len(sBytes):64], sBytes)
	sig[64] = vByte - 27

	addr, err := crypto.Ecrecover(hash, sig)
	if err != nil {
		return nil, nil // malformed signature: EVM precompiles return empty output, not an error
	}
	return leftPad32(addr), nil
}
