package usecases

import (
	"math/big"
	"regexp"
	"strings"

	"contract-explorer.backend/internal/infrastructure/blockchain"
	"contract-explorer.backend/pkg/solidity"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/mitchellh/mapstructure"
)

// readCallOptions is the loosely typed option bag a client sends with a call.
// Numbers may arrive as JSON numbers or as decimal/0x strings.
type readCallOptions struct {
	From        string `mapstructure:"from"`
	GasLimit    string `mapstructure:"gasLimit"`
	Gas         string `mapstructure:"gas"`
	GasPrice    string `mapstructure:"gasPrice"`
	Value       string `mapstructure:"value"`
	BlockTag    string `mapstructure:"blockTag"`
	BlockNumber string `mapstructure:"blockNumber"`
}

var fromAddressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{1,40}$`)

func decodeCallOptions(options map[string]interface{}) (blockchain.CallOptions, error) {
	var raw readCallOptions
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &raw,
	})
	if err != nil {
		return blockchain.CallOptions{}, err
	}
	if err := decoder.Decode(options); err != nil {
		return blockchain.CallOptions{}, newCallError(err, "invalid call options: %v", err)
	}

	var opts blockchain.CallOptions

	if from := strings.TrimSpace(raw.From); from != "" {
		if !fromAddressPattern.MatchString(from) {
			return opts, newCallError(nil, "invalid from address %q", from)
		}
		opts.From = from
	}

	gas := raw.GasLimit
	if gas == "" {
		gas = raw.Gas
	}
	if gas != "" {
		n, err := parseQuantity("gasLimit", gas)
		if err != nil {
			return opts, err
		}
		if !n.IsUint64() {
			return opts, newCallError(nil, "gasLimit %s out of range", n)
		}
		opts.Gas = n.Uint64()
	}

	if raw.GasPrice != "" {
		n, err := parseQuantity("gasPrice", raw.GasPrice)
		if err != nil {
			return opts, err
		}
		opts.GasPrice = n
	}

	if raw.Value != "" {
		n, err := parseQuantity("value", raw.Value)
		if err != nil {
			return opts, err
		}
		opts.Value = n
	}

	tag := raw.BlockTag
	if tag == "" {
		tag = raw.BlockNumber
	}
	block, err := parseBlockTag(tag)
	if err != nil {
		return opts, err
	}
	opts.BlockNumber = block

	return opts, nil
}

func parseQuantity(field, raw string) (*big.Int, error) {
	n, ok := solidity.Scalar(raw).BigInt()
	if !ok || n.Sign() < 0 {
		return nil, newCallError(nil, "invalid %s %q", field, raw)
	}
	return n, nil
}

// parseBlockTag returns nil for the latest block, a named tag's rpc number,
// or an explicit block height
func parseBlockTag(raw string) (*big.Int, error) {
	tag := strings.ToLower(strings.TrimSpace(raw))
	switch tag {
	case "", "latest":
		return nil, nil
	case "pending":
		return big.NewInt(int64(rpc.PendingBlockNumber)), nil
	case "finalized":
		return big.NewInt(int64(rpc.FinalizedBlockNumber)), nil
	case "safe":
		return big.NewInt(int64(rpc.SafeBlockNumber)), nil
	case "earliest":
		return big.NewInt(int64(rpc.EarliestBlockNumber)), nil
	}
	n, err := parseQuantity("blockTag", tag)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// pinnedBlock reports whether opts targets a fixed, numbered block
func pinnedBlock(opts blockchain.CallOptions) bool {
	return opts.BlockNumber != nil && opts.BlockNumber.Sign() >= 0
}
