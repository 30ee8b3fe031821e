// Package types defines the account, storage, log, and header value types
// shared by the state overlay and the EVM driver.
package types

import (
	"encoding/hex"
	"fmt"
	"math/big"
)

const (
	HashLength    = 32
	AddressLength = 20
)

// Hash represents a 32-byte Keccak256 hash.
type Hash [HashLength]byte

// Address represents a 20-byte Ethereum account address.
type Address [AddressLength]byte

// BytesToHash converts bytes to Hash, left-padding if shorter than 32 bytes.
func BytesToHash(b []byte) Hash {
	var h Hash
	h.SetBytes(b)
	return h
}

// HexToHash converts a hex string to Hash.
func HexToHash(s string) Hash {
	return BytesToHash(fromHex(s))
}

func (h Hash) Bytes() []byte { return h[:] }
func (h Hash) Hex() string   { return fmt.Sprintf("0x%x", h[:]) }
func (h Hash) String() string { return h.Hex() }

func (h *Hash) SetBytes(b []byte) {
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
}

func (h Hash) IsZero() bool { return h == Hash{} }

// BytesToAddress converts bytes to Address, left-padding if shorter than 20 bytes.
func BytesToAddress(b []byte) Address {
	var a Address
	a.SetBytes(b)
	return a
}

// HexToAddress converts a hex string to Address.
func HexToAddress(s string) Address {
	return BytesToAddress(fromHex(s))
}

func (a Address) Bytes() []byte  { return a[:] }
func (a Address) Hex() string    { return fmt.Sprintf("0x%x", a[:]) }
func (a Address) String() string { return a.Hex() }

func (a *Address) SetBytes(b []byte) {
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
}

func (a Address) IsZero() bool { return a == Address{} }

// Account is the persistent state of one address at one incarnation.
type Account struct {
	Nonce       uint64
	Balance     *big.Int
	CodeHash    Hash
	Incarnation uint64
}

// NewAccount returns an empty account (zero balance, EOA code hash).
func NewAccount() Account {
	return Account{
		Balance:  new(big.Int),
		CodeHash: EmptyCodeHash,
	}
}

// IsEmpty implements the EIP-161 "empty account" predicate: zero nonce,
// zero balance, no code.
func (a Account) IsEmpty() bool {
	return a.Nonce == 0 && (a.Balance == nil || a.Balance.Sign() == 0) && a.CodeHash == EmptyCodeHash
}

// Log is a contract event emitted during execution.
type Log struct {
	Address Address
	Topics  []Hash
	Data    []byte
}

var (
	// EmptyCodeHash is keccak256(""), the CodeHash of an account with no code.
	EmptyCodeHash = HexToHash("c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470")
)

func fromHex(s string) []byte {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, _ := hex.DecodeString(s)
	return b
}
