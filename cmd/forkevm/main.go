// Command forkevm runs one forked-EVM execution against a remote archive
// node (optionally cached to a local pebble snapshot) and prints the
// result. Grounded on wyf-ACCEPT-eth2030/pkg/cmd/eth2030-geth/main.go's
// stdlib flag + os.Exit(run(args)) convention.
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/guanqun/ethers-forked-evm-provider/backend"
	"github.com/guanqun/ethers-forked-evm-provider/core/state"
	"github.com/guanqun/ethers-forked-evm-provider/core/types"
	"github.com/guanqun/ethers-forked-evm-provider/core/vm"
	"github.com/guanqun/ethers-forked-evm-provider/executor"
	"github.com/guanqun/ethers-forked-evm-provider/log"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	logger := log.New("cmd.forkevm")

	fs := newFlagSet()
	if err := fs.parse(args); err != nil {
		logger.Error("parsing flags", "err", err)
		return 2
	}

	ctx := context.Background()
	client, err := ethclient.DialContext(ctx, fs.rpcURL)
	if err != nil {
		logger.Error("dialing rpc", "err", err)
		return 1
	}
	remote := backend.NewRemote(client, fs.blockNumber)

	var be state.StateBackend = remote
	if fs.localDir != "" {
		local, err := backend.OpenLocal(fs.localDir)
		if err != nil {
			logger.Error("opening local snapshot store", "err", err)
			return 1
		}
		defer local.Close()
		be = backend.NewMux(local, remote, true)
	}

	header, _, err := be.ReadBlockHeader(ctx, fs.blockNumber)
	if err != nil {
		logger.Error("reading block header", "err", err)
		return 1
	}

	block := vm.BlockContext{Header: header}
	recipient := types.HexToAddress(fs.to)

	input, err := decodeHex(fs.data)
	if err != nil {
		logger.Error("decoding --data", "err", err)
		return 2
	}

	tx := executor.TxContext{
		Sender:    types.HexToAddress(fs.from),
		Recipient: &recipient,
		Value:     new(big.Int),
		Input:     input,
		GasLimit:  fs.gasLimit,
		TxType:    executor.TxTypeLegacy,
		GasPrice:  new(big.Int),
	}

	result, err := executor.Execute(ctx, be, block, vm.Shanghai, tx)
	if err != nil {
		logger.Error("executing", "err", err)
		return 1
	}

	fmt.Printf("success=%v gasLeft=%d output=%x\n", result.Success(), result.GasLeft, result.Output)
	return 0
}

func decodeHex(s string) ([]byte, error) {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	if s == "" {
		return nil, nil
	}
	return hex.DecodeString(s)
}
