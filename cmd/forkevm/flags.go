package main

import "flag"

// flagSet wraps the standard library flag.FlagSet, matching
// wyf-ACCEPT-eth2030/pkg/cmd/eth2030/flags.go's convention of a small
// typed wrapper rather than a third-party CLI framework.
type flagSet struct {
	fs *flag.FlagSet

	rpcURL      string
	localDir    string
	blockNumber uint64
	from, to    string
	data        string
	gasLimit    uint64
}

func newFlagSet() *flagSet {
	fs := flag.NewFlagSet("forkevm", flag.ContinueOnError)
	f := &flagSet{fs: fs}
	fs.StringVar(&f.rpcURL, "rpc", "", "archive node JSON-RPC URL")
	fs.StringVar(&f.localDir, "local", "", "local pebble snapshot directory (optional write-through cache)")
	fs.Uint64Var(&f.blockNumber, "block", 0, "block number to pin execution at")
	fs.StringVar(&f.from, "from", "0x0000000000000000000000000000000000000000", "sender address")
	fs.StringVar(&f.to, "to", "", "recipient address")
	fs.StringVar(&f.data, "data", "", "hex-encoded call data")
	fs.Uint64Var(&f.gasLimit, "gas", 30_000_000, "gas limit")
	return f
}

func (f *flagSet) parse(args []string) error {
	return f.fs.Parse(args)
}
