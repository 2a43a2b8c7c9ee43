package blockchain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

var (
	dialEVMClient = func(ctx context.Context, rpcURL string) (*ethclient.Client, Transport, error) {
		provider := GetProvider(rpcURL)
		rpcClient, err := provider.Dial(ctx)
		if err != nil {
			return nil, provider.Transport(), err
		}
		return ethclient.NewClient(rpcClient), provider.Transport(), nil
	}
	getClientChainID = func(client *ethclient.Client, ctx context.Context) (*big.Int, error) {
		return client.ChainID(ctx)
	}
)

// CallOptions tunes a read-only call. Zero values are left to the node.
type CallOptions struct {
	From     string
	Gas      uint64
	GasPrice *big.Int
	Value    *big.Int
	// BlockNumber pins the call to a historical block; nil means latest
	BlockNumber *big.Int
}

// CallViewFunc performs a read-only call and returns the raw return data
type CallViewFunc func(ctx context.Context, to string, data []byte, opts CallOptions) ([]byte, error)

// EVMClient provides EVM blockchain interaction
type EVMClient struct {
	client    *ethclient.Client
	chainID   *big.Int
	rpcURL    string
	transport Transport
	// testCallView allows deterministic unit tests without network sockets.
	testCallView CallViewFunc
}

// NewEVMClient dials rpcURL with the provider matching its scheme
func NewEVMClient(rpcURL string) (*EVMClient, error) {
	ctx := context.Background()
	client, transport, err := dialEVMClient(ctx, rpcURL)
	if err != nil {
		return nil, err
	}

	chainID, err := getClientChainID(client, ctx)
	if err != nil {
		client.Close()
		return nil, err
	}

	return &EVMClient{
		client:    client,
		chainID:   chainID,
		rpcURL:    rpcURL,
		transport: transport,
	}, nil
}

// NewEVMClientWithCallView creates an EVM client that uses an injected CallView implementation.
// This is intended for unit tests where RPC sockets are unavailable.
func NewEVMClientWithCallView(chainID *big.Int, callViewFn CallViewFunc) *EVMClient {
	if chainID == nil {
		chainID = big.NewInt(1)
	}
	return &EVMClient{
		chainID:      chainID,
		testCallView: callViewFn,
	}
}

// ChainID returns the chain ID
func (c *EVMClient) ChainID() *big.Int {
	return c.chainID
}

// FetchChainID asks the node for its chain ID. Clients without a live
// connection report the ID they were created with.
func (c *EVMClient) FetchChainID(ctx context.Context) (*big.Int, error) {
	if c.client == nil {
		return c.chainID, nil
	}
	return getClientChainID(c.client, ctx)
}

// Transport returns the wire the client was dialed over
func (c *EVMClient) Transport() Transport {
	return c.transport
}

// CallView executes a read-only contract call against the latest block
func (c *EVMClient) CallView(ctx context.Context, to string, data []byte) ([]byte, error) {
	return c.CallViewWithOptions(ctx, to, data, CallOptions{})
}

// CallViewWithOptions executes a read-only contract call
func (c *EVMClient) CallViewWithOptions(ctx context.Context, to string, data []byte, opts CallOptions) ([]byte, error) {
	if c.testCallView != nil {
		return c.testCallView(ctx, to, data, opts)
	}
	addr := common.HexToAddress(to)
	msg := ethereum.CallMsg{
		To:       &addr,
		Data:     data,
		Gas:      opts.Gas,
		GasPrice: opts.GasPrice,
		Value:    opts.Value,
	}
	if opts.From != "" {
		msg.From = common.HexToAddress(opts.From)
	}
	return c.client.CallContract(ctx, msg, opts.BlockNumber)
}

// Close closes the client connection
func (c *EVMClient) Close() {
	if c.client != nil {
		c.client.Close()
	}
}
