package types

import "math/big"

// PartialHeader is the subset of a block header the EVM driver needs to
// execute a transaction against a pinned block context: no uncle/receipt/
// transaction roots, no consensus fields.
type PartialHeader struct {
	ParentHash  Hash
	Beneficiary Address
	Number      uint64
	Timestamp   uint64
	GasLimit    uint64
	BaseFee     *big.Int // nil before EIP-1559 (London)
	Difficulty  *big.Int
	MixHash     Hash
	Random      Hash // post-Merge PREVRANDAO; a separate field, not filled from MixHash by any code here
}
