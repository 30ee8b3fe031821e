package backend

import (
	gethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/guanqun/ethers-forked-evm-provider/core/types"
	"github.com/guanqun/ethers-forked-evm-provider/crypto"
)

func common(addr types.Address) gethcommon.Address {
	return gethcommon.BytesToAddress(addr.Bytes())
}

func commonHash(h types.Hash) gethcommon.Hash {
	return gethcommon.BytesToHash(h.Bytes())
}

func keccak256Hash(data []byte) types.Hash {
	return crypto.Keccak256Hash(data)
}
