package vm

import "math/big"

// modexpContract is precompile 0x05 (EIP-198/2565).
type modexpContract struct{}

func (c *modexpContract) RequiredGas(input []byte, rev Revision) uint64 {
	input = padRight(input, 96)

	baseLen := new(big.Int).SetBytes(input[0:32]).Uint64()
	expLen := new(big.Int).SetBytes(input[32:64]).Uint64()
	modLen := new(big.Int).SetBytes(input[64:96]).Uint64()

	adjExpLen := adjustedExpLen(expLen, baseLen, input[96:])

	maxLen := baseLen
	if modLen > maxLen {
		maxLen = modLen
	}

	exp := adjExpLen
	if exp < 1 {
		exp = 1
	}

	if rev < Berlin {
		// EIP-198 (Byzantium): complexity(max(baseLen,modLen)) * max(adjExpLen,1) / 20.
		gas := eip198Complexity(maxLen) * exp / 20
		return gas
	}

	// EIP-2565 (Berlin): ceil(maxLen/8)^2 * max(adjExpLen,1) / 3, floored at 200.
	words := (maxLen + 7) / 8
	multComplexity := words * words
	gas := multComplexity * exp / 3
	if gas < 200 {
		gas = 200
	}
	return gas
}

// eip198Complexity is EIP-198's original modexp gas complexity function,
// superseded by EIP-2565's ceil(x/8)^2 formula at Berlin.
func eip198Complexity(x uint64) uint64 {
	switch {
	case x <= 64:
		return x * x
	case x <= 1024:
		return x*x/4 + 96*x - 3072
	default:
		return x*x/16 + 480*x - 199680
	}
}

func (c *modexpContract) Run(input []byte) ([]byte, error) {
	input = padRight(input, 96)

	baseLen := new(big.Int).SetBytes(input[0:32])
	expLen := new(big.Int).SetBytes(input[32:64])
	modLen := new(big.Int).SetBytes(input[64:96])

	if baseLen.BitLen() > 32 || expLen.BitLen() > 32 || modLen.BitLen() > 32 {
		return nil, ErrOutOfGas
	}
	bLen, eLen, mLen := baseLen.Uint64(), expLen.Uint64(), modLen.Uint64()

	data := input[96:]
	base := getDataSlice(data, 0, bLen)
	exp := getDataSlice(data, bLen, eLen)
	mod := getDataSlice(data, bLen+eLen, mLen)

	modVal := new(big.Int).SetBytes(mod)
	if modVal.Sign() == 0 {
		return make([]byte, mLen), nil
	}

	result := new(big.Int).Exp(new(big.Int).SetBytes(base), new(big.Int).SetBytes(exp), modVal)

	out := result.Bytes()
	if uint64(len(out)) >= mLen {
		return out[uint64(len(out))-mLen:], nil
	}
	padded := make([]byte, mLen)
	copy(padded[mLen-uint64(len(out)):], out)
	return padded, nil
}

// adjustedExpLen computes the EIP-198 gas exponent-length adjustment.
func adjustedExpLen(expLen, baseLen uint64, data []byte) uint64 {
	if expLen <= 32 {
		exp := new(big.Int).SetBytes(getDataSlice(data, baseLen, expLen))
		if exp.Sign() == 0 {
			return 0
		}
		return uint64(exp.BitLen() - 1)
	}
	first := new(big.Int).SetBytes(getDataSlice(data, baseLen, 32))
	adj := uint64(0)
	if first.Sign() > 0 {
		adj = uint64(first.BitLen() - 1)
	}
	return adj + 8*(expLen-32)
}
