package crypto

import (
	"bytes"
	"encoding/hex"
	"math/big"
	"testing"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"
)

func TestKeccak256EmptyInput(t *testing.T) {
	got := hex.EncodeToString(Keccak256(nil))
	want := "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"
	if got != want {
		t.Fatalf("Keccak256(nil) = %s, want %s", got, want)
	}
}

func TestKeccak256VariadicConcatenatesInputs(t *testing.T) {
	whole := Keccak256([]byte("hello world"))
	split := Keccak256([]byte("hello "), []byte("world"))
	if !bytes.Equal(whole, split) {
		t.Fatal("Keccak256 did not treat variadic args as one concatenated stream")
	}
}

func TestValidSignatureValues(t *testing.T) {
	one := big.NewInt(1)
	zero := big.NewInt(0)
	halfN := new(big.Int).Set(secp256k1HalfN)
	aboveHalfN := new(big.Int).Add(halfN, big.NewInt(1))

	if ValidSignatureValues(zero, one, false) {
		t.Fatal("r=0 should be rejected")
	}
	if ValidSignatureValues(one, zero, false) {
		t.Fatal("s=0 should be rejected")
	}
	if ValidSignatureValues(secp256k1N, one, false) {
		t.Fatal("r==N should be rejected")
	}
	if !ValidSignatureValues(one, aboveHalfN, false) {
		t.Fatal("high-S should be accepted pre-homestead")
	}
	if ValidSignatureValues(one, aboveHalfN, true) {
		t.Fatal("high-S should be rejected under the homestead low-S rule")
	}
	if !ValidSignatureValues(one, halfN, true) {
		t.Fatal("s==N/2 should be accepted under the homestead low-S rule")
	}
}

func TestEcrecoverRoundTrip(t *testing.T) {
	key, err := gethcrypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	wantAddr := gethcrypto.PubkeyToAddress(key.PublicKey).Bytes()

	hash := Keccak256([]byte("sign me"))
	sig, err := gethcrypto.Sign(hash, key)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	got, err := Ecrecover(hash, sig)
	if err != nil {
		t.Fatalf("Ecrecover: %v", err)
	}
	if !bytes.Equal(got, wantAddr) {
		t.Fatalf("Ecrecover = %x, want %x", got, wantAddr)
	}
}

func TestBN254AddInfinityIsIdentity(t *testing.T) {
	zero := make([]byte, 64)
	out, err := BN254Add(zero, zero)
	if err != nil {
		t.Fatalf("BN254Add: %v", err)
	}
	if !bytes.Equal(out, zero) {
		t.Fatalf("0+0 = %x, want all-zero", out)
	}
}

func TestBN254ScalarMulByZero(t *testing.T) {
	// The generator (1, 2) times 0 is the point at infinity.
	point := make([]byte, 64)
	point[31] = 1
	point[63] = 2
	scalar := make([]byte, 32)

	out, err := BN254ScalarMul(point, scalar)
	if err != nil {
		t.Fatalf("BN254ScalarMul: %v", err)
	}
	if !bytes.Equal(out, make([]byte, 64)) {
		t.Fatalf("generator*0 = %x, want all-zero", out)
	}
}

func TestBN254PairingEmptyInputIsTrue(t *testing.T) {
	ok, err := BN254Pairing(nil)
	if err != nil {
		t.Fatalf("BN254Pairing: %v", err)
	}
	if !ok {
		t.Fatal("empty pairing product should check true (vacuous product)")
	}
}

func TestBN254PairingRejectsMisalignedInput(t *testing.T) {
	if _, err := BN254Pairing(make([]byte, 100)); err == nil {
		t.Fatal("expected an error for input not a multiple of 192 bytes")
	}
}

func TestBN254AddRejectsOffCurvePoint(t *testing.T) {
	bad := make([]byte, 64)
	bad[31] = 1 // x=1, y=0 is not a point on the bn254 curve
	if _, err := BN254Add(bad, make([]byte, 64)); err != ErrInvalidBN254Point {
		t.Fatalf("err = %v, want ErrInvalidBN254Point", err)
	}
}
