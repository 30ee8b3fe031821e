package vm

import (
	"encoding/binary"
	"errors"

	"golang.org/x/crypto/blake2b"
)

// blake2FContract is precompile 0x09 (EIP-152).
type blake2FContract struct{}

func (c *blake2FContract) RequiredGas(input []byte, rev Revision) uint64 {
	if len(input) < 4 {
		return 0
	}
	return uint64(binary.BigEndian.Uint32(input[:4]))
}

func (c *blake2FContract) Run(input []byte) ([]byte, error) {
	if len(input) != 213 {
		return nil, errors.New("vm: blake2f invalid input length (expected 213 bytes)")
	}
	rounds := binary.BigEndian.Uint32(input[:4])

	finalByte := input[212]
	if finalByte != 0 && finalByte != 1 {
		return nil, errors.New("vm: blake2f invalid final block indicator")
	}
	final := finalByte == 1

	var h [8]uint64
	for i := 0; i < 8; i++ {
		h[i] = binary.LittleEndian.Uint64(input[4+i*8 : 4+(i+1)*8])
	}
	var m [16]uint64
	for i := 0; i < 16; i++ {
		m[i] = binary.LittleEndian.Uint64(input[68+i*8 : 68+(i+1)*8])
	}
	t0 := binary.LittleEndian.Uint64(input[196:204])
	t1 := binary.LittleEndian.Uint64(input[204:212])

	blake2b.F(rounds, &h, m, [2]uint64{t0, t1}, final)

	out := make([]byte, 64)
	for i := 0; i < 8; i++ {
		binary.LittleEndian.PutUint64(out[i*8:(i+1)*8], h[i])
	}
	return out, nil
}
