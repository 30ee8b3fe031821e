package vm

import (
	"bytes"
	"encoding/hex"
	"math/big"
	"testing"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/guanqun/ethers-forked-evm-provider/crypto"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex fixture: %v", err)
	}
	return b
}

func TestIdentityPrecompile(t *testing.T) {
	c := &identityContract{}
	in := []byte("the quick brown fox")
	out, err := c.Run(in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !bytes.Equal(out, in) {
		t.Fatalf("identity output = %x, want %x", out, in)
	}
	if got := c.RequiredGas(in, Shanghai); got != 15+3*wordCount(len(in)) {
		t.Fatalf("gas = %d", got)
	}
}

func TestSHA256Precompile(t *testing.T) {
	c := &sha256Contract{}
	out, err := c.Run([]byte("abc"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := mustHex(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad")
	if !bytes.Equal(out, want) {
		t.Fatalf("sha256(abc) = %x, want %x", out, want)
	}
}

func TestRipemd160Precompile(t *testing.T) {
	c := &ripemd160Contract{}
	out, err := c.Run([]byte("abc"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := leftPad32(mustHex(t, "8eb208f7e05d987a9b044a8e98c6b087f15a0bfc"))
	if !bytes.Equal(out, want) {
		t.Fatalf("ripemd160(abc) = %x, want %x", out, want)
	}
}

func TestModexpPrecompile(t *testing.T) {
	c := &modexpContract{}
	// 2^3 mod 5 == 3
	in := make([]byte, 96+3)
	in[31] = 1 // baseLen = 1
	in[63] = 1 // expLen = 1
	in[95] = 1 // modLen = 1
	in[96] = 2 // base
	in[97] = 3 // exp
	in[98] = 5 // mod

	out, err := c.Run(in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out) != 1 || out[0] != 3 {
		t.Fatalf("2^3 mod 5 = %v, want [3]", out)
	}
	if gas := c.RequiredGas(in, Shanghai); gas < 200 {
		t.Fatalf("gas = %d, want floor of 200", gas)
	}
}

func TestModexpGasPreBerlinUsesEIP198Formula(t *testing.T) {
	c := &modexpContract{}
	in := make([]byte, 96+3)
	in[31], in[63], in[95] = 1, 1, 1 // baseLen=expLen=modLen=1
	in[96], in[97], in[98] = 2, 3, 5

	// maxLen=1 -> eip198Complexity(1) = 1; adjExpLen for expLen<=32 uses
	// bit-length-1 of the exponent byte (3 = 0b11, bitlen 2, adj = 1).
	want := eip198Complexity(1) * 1 / 20
	if got := c.RequiredGas(in, Byzantium); got != want {
		t.Fatalf("pre-Berlin modexp gas = %d, want %d", got, want)
	}
	// The same input must use the EIP-2565 Berlin+ formula once active,
	// which applies the 200-gas floor the EIP-198 formula lacks.
	if got := c.RequiredGas(in, Berlin); got < 200 {
		t.Fatalf("Berlin+ modexp gas = %d, want floor of 200", got)
	}
}

func TestModexpZeroModulus(t *testing.T) {
	c := &modexpContract{}
	in := make([]byte, 96+3)
	in[31], in[63], in[95] = 1, 1, 1
	in[96], in[97], in[98] = 2, 3, 0

	out, err := c.Run(in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !bytes.Equal(out, []byte{0}) {
		t.Fatalf("mod 0 output = %x, want [0]", out)
	}
}

// TestBlake2FKnownVector uses the official EIP-152 test vector 5 (12 rounds,
// final block set).
func TestBlake2FKnownVector(t *testing.T) {
	c := &blake2FContract{}
	in := mustHex(t, "0000000c48c9bdf267e6096a3ba7ca8485ae67bb2bf894fe72f36e3cf1361d5f3af54fa5d182e6ad7f520e511f6c3e2b8c68059b6bbd41fbabd9831f79217e1319cde05b61626300000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000300000000000000000000000000000001")
	if len(in) != 213 {
		t.Fatalf("fixture length = %d, want 213", len(in))
	}
	out, err := c.Run(in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := mustHex(t, "ba80a53f981c4d0d6a2797b69f12f6e94c212f14685ac4b74b12bb6fdbffa2d17d87c5392aab792dc252d5de4533cc9518d38aa8dbf1925ab92386edd4009923")
	if !bytes.Equal(out, want) {
		t.Fatalf("blake2f output = %x, want %x", out, want)
	}
}

func TestBlake2FRejectsBadLength(t *testing.T) {
	c := &blake2FContract{}
	if _, err := c.Run(make([]byte, 10)); err == nil {
		t.Fatal("expected error for short input")
	}
}

func TestBlake2FRejectsBadFinalFlag(t *testing.T) {
	c := &blake2FContract{}
	in := make([]byte, 213)
	in[212] = 2
	if _, err := c.Run(in); err == nil {
		t.Fatal("expected error for invalid final-block flag")
	}
}

// TestEcrecoverRoundTrip signs a hash with a freshly generated key and checks
// the precompile recovers the matching address.
func TestEcrecoverRoundTrip(t *testing.T) {
	key, err := gethcrypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	wantAddr := gethcrypto.PubkeyToAddress(key.PublicKey)

	hash := crypto.Keccak256([]byte("precompile test message"))
	sig, err := gethcrypto.Sign(hash, key)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	input := make([]byte, 128)
	copy(input[0:32], hash)
	input[63] = sig[64] + 27 // v
	copy(input[64:96], sig[0:32])
	copy(input[96:128], sig[32:64])

	c := &ecrecoverContract{}
	out, err := c.Run(input)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !bytes.Equal(out[12:], wantAddr.Bytes()) {
		t.Fatalf("recovered address = %x, want %x", out[12:], wantAddr.Bytes())
	}
}

func TestEcrecoverRejectsBadV(t *testing.T) {
	c := &ecrecoverContract{}
	input := make([]byte, 128)
	input[63] = 5 // neither 27 nor 28
	out, err := c.Run(input)
	if err != nil {
		t.Fatalf("Run returned error instead of empty output: %v", err)
	}
	if out != nil {
		t.Fatalf("expected nil output for invalid v, got %x", out)
	}
}

func TestBN254AddIdentity(t *testing.T) {
	c := &bn254AddContract{}
	// (0,0) + (0,0) == (0,0), the point at infinity in affine encoding.
	in := make([]byte, 128)
	out, err := c.Run(in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !bytes.Equal(out, make([]byte, 64)) {
		t.Fatalf("0+0 = %x, want all-zero", out)
	}
}

func TestBN254PairingEmptyIsTrue(t *testing.T) {
	c := &bn254PairingContract{}
	out, err := c.Run(nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := make([]byte, 32)
	want[31] = 1
	if !bytes.Equal(out, want) {
		t.Fatalf("empty pairing check = %x, want %x (true)", out, want)
	}
}

func TestRunPrecompileUnknownAddress(t *testing.T) {
	var addr [20]byte
	addr[19] = 0x63 // no precompile lives at 0x63
	if _, _, err := RunPrecompile(addr, nil, 100000, Shanghai); err != ErrNotPrecompile {
		t.Fatalf("err = %v, want ErrNotPrecompile", err)
	}
}

func TestRunPrecompileOutOfGas(t *testing.T) {
	var addr [20]byte
	addr[19] = 1 // ecrecover, RequiredGas = 3000
	if _, _, err := RunPrecompile(addr, make([]byte, 128), 100, Shanghai); err != ErrOutOfGas {
		t.Fatalf("err = %v, want ErrOutOfGas", err)
	}
}

func TestBN254GasRevisionGated(t *testing.T) {
	add := &bn254AddContract{}
	if got := add.RequiredGas(nil, Byzantium); got != 500 {
		t.Fatalf("pre-Istanbul bn254 add gas = %d, want 500", got)
	}
	if got := add.RequiredGas(nil, Istanbul); got != 150 {
		t.Fatalf("Istanbul+ bn254 add gas = %d, want 150", got)
	}

	mul := &bn254MulContract{}
	if got := mul.RequiredGas(nil, Byzantium); got != 40000 {
		t.Fatalf("pre-Istanbul bn254 mul gas = %d, want 40000", got)
	}
	if got := mul.RequiredGas(nil, Istanbul); got != 6000 {
		t.Fatalf("Istanbul+ bn254 mul gas = %d, want 6000", got)
	}

	pairing := &bn254PairingContract{}
	in := make([]byte, 192) // k=1
	if got := pairing.RequiredGas(in, Byzantium); got != 100000+80000 {
		t.Fatalf("pre-Istanbul bn254 pairing gas = %d, want 180000", got)
	}
	if got := pairing.RequiredGas(in, Istanbul); got != 45000+34000 {
		t.Fatalf("Istanbul+ bn254 pairing gas = %d, want 79000", got)
	}
}

func TestEcrecoverAcceptsHighS(t *testing.T) {
	// The ecrecover precompile must accept a high-S signature: Homestead's
	// low-S malleability restriction binds signed transactions, not this
	// precompile (ecrecoverContract.Run passes homestead=false to
	// crypto.ValidSignatureValues).
	key, err := gethcrypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	wantAddr := gethcrypto.PubkeyToAddress(key.PublicKey)

	hash := crypto.Keccak256([]byte("high-S precompile test"))
	sig, err := gethcrypto.Sign(hash, key)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	r := new(big.Int).SetBytes(sig[0:32])
	s := new(big.Int).SetBytes(sig[32:64])
	v := sig[64]

	// Flip to the canonical high-S counterpart of the same signature:
	// s' = N - s, v' = v ^ 1.
	n := gethcrypto.S256().Params().N
	sHigh := new(big.Int).Sub(n, s)
	if sHigh.Cmp(new(big.Int).Rsh(n, 1)) <= 0 {
		// s was already > N/2 (i.e. high already); nothing to flip to, skip.
		t.Skip("generated signature's s already low; flip not exercised")
	}
	vHigh := v ^ 1

	input := make([]byte, 128)
	copy(input[0:32], hash)
	input[63] = vHigh + 27
	copy(input[64:96], leftPad32(r.Bytes()))
	copy(input[96:128], leftPad32(sHigh.Bytes()))

	c := &ecrecoverContract{}
	out, err := c.Run(input)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out == nil {
		t.Fatal("expected a recovered address for a high-S signature, got nil output")
	}
	if !bytes.Equal(out[12:], wantAddr.Bytes()) {
		t.Fatalf("recovered address = %x, want %x", out[12:], wantAddr.Bytes())
	}
}
