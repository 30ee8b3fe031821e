package crypto

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
)

// ErrInvalidBN254Point is returned when a 0x06/0x07/0x08 precompile input
// encodes a point not on the curve (or not in the correct subgroup).
var ErrInvalidBN254Point = errors.New("crypto: invalid bn254 curve point")

// BN254Add implements EIP-196 point addition. p1, p2 are each 64
// big-endian bytes (x || y); the zero point is encoded as 64 zero bytes.
func BN254Add(p1, p2 []byte) ([]byte, error) {
	a, err := decodeG1(p1)
	if err != nil {
		return nil, err
	}
	b, err := decodeG1(p2)
	if err != nil {
		return nil, err
	}
	var sum bn254.G1Affine
	var aJac, bJac, sumJac bn254.G1Jac
	aJac.FromAffine(a)
	bJac.FromAffine(b)
	sumJac.Set(&aJac)
	sumJac.AddAssign(&bJac)
	sum.FromJacobian(&sumJac)
	return encodeG1(&sum), nil
}

// BN254ScalarMul implements EIP-196 scalar multiplication. point is 64
// bytes (x || y); scalar is 32 big-endian bytes.
func BN254ScalarMul(point, scalar []byte) ([]byte, error) {
	p, err := decodeG1(point)
	if err != nil {
		return nil, err
	}
	k := new(big.Int).SetBytes(scalar)
	var res bn254.G1Jac
	var pJac bn254.G1Jac
	pJac.FromAffine(p)
	res.ScalarMultiplication(&pJac, k)
	var out bn254.G1Affine
	out.FromJacobian(&res)
	return encodeG1(&out), nil
}

// BN254Pairing implements EIP-197: input is a concatenation of k (G1, G2)
// pairs, each pair 192 bytes (64-byte G1 || 128-byte G2). Returns true iff
// the product of all pairings equals 1 in the target group.
//
// The G2 coordinate layout in the EVM encoding is EVM-specific and
// reversed relative to gnark-crypto's native ordering: each 128-byte G2
// point is encoded as [x_imag(32) | x_real(32) | y_imag(32) | y_real(32)],
// i.e. the imaginary (second) component of each field-extension coordinate
// comes FIRST on the wire. decodeG2 below un-reverses this explicitly.
func BN254Pairing(input []byte) (bool, error) {
	if len(input)%192 != 0 {
		return false, errors.New("crypto: bn254 pairing input not a multiple of 192 bytes")
	}
	k := len(input) / 192
	if k == 0 {
		return true, nil
	}
	g1s := make([]bn254.G1Affine, 0, k)
	g2s := make([]bn254.G2Affine, 0, k)
	for i := 0; i < k; i++ {
		chunk := input[i*192 : (i+1)*192]
		g1, err := decodeG1(chunk[:64])
		if err != nil {
			return false, err
		}
		g2, err := decodeG2(chunk[64:192])
		if err != nil {
			return false, err
		}
		// The point at infinity contributes a trivial factor; gnark-crypto's
		// batch pairing requires points on the curve, so skip (0,0) inputs.
		if g1.X.IsZero() && g1.Y.IsZero() {
			continue
		}
		g1s = append(g1s, *g1)
		g2s = append(g2s, *g2)
	}
	if len(g1s) == 0 {
		return true, nil
	}
	ok, err := bn254.PairingCheck(g1s, g2s)
	if err != nil {
		return false, err
	}
	return ok, nil
}

func decodeG1(b []byte) (*bn254.G1Affine, error) {
	if len(b) != 64 {
		return nil, errors.New("crypto: bn254 G1 point must be 64 bytes")
	}
	var p bn254.G1Affine
	p.X.SetBytes(b[0:32])
	p.Y.SetBytes(b[32:64])
	if p.X.IsZero() && p.Y.IsZero() {
		return &p, nil // point at infinity, valid by convention
	}
	if !p.IsOnCurve() {
		return nil, ErrInvalidBN254Point
	}
	return &p, nil
}

func encodeG1(p *bn254.G1Affine) []byte {
	out := make([]byte, 64)
	xBytes := p.X.Bytes()
	yBytes := p.Y.Bytes()
	copy(out[0:32], xBytes[:])
	copy(out[32:64], yBytes[:])
	return out
}

func decodeG2(b []byte) (*bn254.G2Affine, error) {
	if len(b) != 128 {
		return nil, errors.New("crypto: bn254 G2 point must be 128 bytes")
	}
	var xImag, xReal, yImag, yReal fp.Element
	xImag.SetBytes(b[0:32])
	xReal.SetBytes(b[32:64])
	yImag.SetBytes(b[64:96])
	yReal.SetBytes(b[96:128])

	var p bn254.G2Affine
	p.X.A0 = xReal
	p.X.A1 = xImag
	p.Y.A0 = yReal
	p.Y.A1 = yImag
	if p.X.IsZero() && p.Y.IsZero() {
		return &p, nil
	}
	if !p.IsOnCurve() || !p.IsInSubGroup() {
		return nil, ErrInvalidBN254Point
	}
	return &p, nil
}
