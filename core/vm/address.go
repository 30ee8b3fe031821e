package vm

// Minimal RLP list/string encoding used only to derive CREATE addresses
// (addr = keccak256(rlp([sender, nonce]))[12:]). Grounded on
// wyf-ACCEPT-eth2030/pkg/core/vm/interpreter.go's encodeRLPBytes/
// encodeRLPUint/wrapRLPList helpers, kept nearly verbatim — the full RLP
// codec package is out of scope (SPEC_FULL.md §7).

func rlpEncodeBytes(b []byte) []byte {
	if len(b) == 1 && b[0] < 0x80 {
		return b
	}
	if len(b) < 56 {
		return append([]byte{byte(0x80 + len(b))}, b...)
	}
	lenBytes := uintToMinBytes(uint64(len(b)))
	header := append([]byte{byte(0xb7 + len(lenBytes))}, lenBytes...)
	return append(header, b...)
}

func rlpEncodeUint(v uint64) []byte {
	if v == 0 {
		return []byte{0x80}
	}
	if v < 128 {
		return []byte{byte(v)}
	}
	b := uintToMinBytes(v)
	return append([]byte{byte(0x80 + len(b))}, b...)
}

func rlpEncodeList(items ...[]byte) []byte {
	var payload []byte
	for _, it := range items {
		payload = append(payload, it...)
	}
	if len(payload) < 56 {
		return append([]byte{byte(0xc0 + len(payload))}, payload...)
	}
	lenBytes := uintToMinBytes(uint64(len(payload)))
	header := append([]byte{byte(0xf7 + len(lenBytes))}, lenBytes...)
	return append(header, payload...)
}

func uintToMinBytes(v uint64) []byte {
	if v == 0 {
		return nil
	}
	var buf [8]byte
	n := 0
	for i := 7; i >= 0; i-- {
		buf[i] = byte(v)
		v >>= 8
		if buf[i] != 0 {
			n = 8 - i
		}
	}
	return buf[8-n:]
}
