package types

import "errors"

// Errors returned by the state backend / IntraBlockState layer. These are
// distinct from core/vm's deterministic execution errors: anything here
// signals a backend I/O failure or a programming invariant violation, never
// a normal EVM revert.
var (
	ErrAccountNotFound = errors.New("types: account not found")
	ErrBackendIO       = errors.New("types: state backend I/O error")
)
