package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"contract-explorer.backend/internal/domain/entities"
	"contract-explorer.backend/internal/domain/repositories"
	"contract-explorer.backend/internal/infrastructure/blockchain"
	"contract-explorer.backend/pkg/metrics"
	"contract-explorer.backend/pkg/solidity"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const defaultReadCallTimeout = 15 * time.Second

// EVMReadCaller executes read-only ABI methods through eth_call
type EVMReadCaller struct {
	chainRepo     repositories.ChainRepository
	clientFactory *blockchain.ClientFactory
	abiResolver   *ABIResolver
	cache         *ReadResultCache
	metrics       metrics.Recorder
	callTimeout   time.Duration
	defaultRPCURL string
}

// EVMReadCallerOption configures an EVMReadCaller
type EVMReadCallerOption func(*EVMReadCaller)

func WithResultCache(cache *ReadResultCache) EVMReadCallerOption {
	return func(c *EVMReadCaller) { c.cache = cache }
}

func WithMetrics(recorder metrics.Recorder) EVMReadCallerOption {
	return func(c *EVMReadCaller) {
		if recorder != nil {
			c.metrics = recorder
		}
	}
}

func WithCallTimeout(timeout time.Duration) EVMReadCallerOption {
	return func(c *EVMReadCaller) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithDefaultRPCURL is used for chains that have no RPC endpoint of their own
func WithDefaultRPCURL(url string) EVMReadCallerOption {
	return func(c *EVMReadCaller) { c.defaultRPCURL = strings.TrimSpace(url) }
}

func NewEVMReadCaller(
	chainRepo repositories.ChainRepository,
	clientFactory *blockchain.ClientFactory,
	abiResolver *ABIResolver,
	opts ...EVMReadCallerOption,
) *EVMReadCaller {
	c := &EVMReadCaller{
		chainRepo:     chainRepo,
		clientFactory: clientFactory,
		abiResolver:   abiResolver,
		metrics:       metrics.Nop{},
		callTimeout:   defaultReadCallTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CallContractReadMethod implements ContractReadCaller
func (c *EVMReadCaller) CallContractReadMethod(
	ctx context.Context,
	contract *entities.SmartContract,
	method entities.MethodDescriptor,
	params []solidity.Value,
	options map[string]interface{},
) ([]interface{}, error) {
	start := time.Now()
	results, err := c.call(ctx, contract, method, params, options)
	c.metrics.ObserveReadCall(readCallStatus(err), time.Since(start))
	return results, err
}

func (c *EVMReadCaller) call(
	ctx context.Context,
	contract *entities.SmartContract,
	method entities.MethodDescriptor,
	params []solidity.Value,
	options map[string]interface{},
) ([]interface{}, error) {
	if contract == nil {
		return nil, errors.New("contract is required")
	}
	if !common.IsHexAddress(contract.ContractAddress) {
		return nil, newCallError(nil, "invalid contract address %q", contract.ContractAddress)
	}

	chain, err := c.chainRepo.GetByID(ctx, contract.ChainUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chain %s: %w", contract.ChainUUID, err)
	}
	rpcURL := resolveRPCURL(chain)
	if rpcURL == "" {
		rpcURL = c.defaultRPCURL
	}
	if rpcURL == "" {
		return nil, newCallError(nil, "no active rpc url for chain %s", chain.GetCAIP2ID())
	}

	parsed, err := c.abiResolver.Resolve(contract)
	if err != nil {
		return nil, newCallError(err, "invalid contract ABI")
	}
	abiMethod, ok := FindMethod(parsed, method.Signature())
	if !ok {
		return nil, newCallError(nil, "method %s not found in contract ABI", method.Signature())
	}

	args, err := convertArgs(abiMethod.Inputs, params)
	if err != nil {
		return nil, err
	}
	packed, err := abiMethod.Inputs.Pack(args...)
	if err != nil {
		return nil, newCallError(err, "failed to encode arguments: %v", err)
	}
	data := append(append([]byte{}, abiMethod.ID...), packed...)

	callOpts, err := decodeCallOptions(options)
	if err != nil {
		return nil, err
	}

	var cacheKey string
	if pinnedBlock(callOpts) && c.cache.enabled() {
		cacheKey = readCallCacheKey(chain.GetCAIP2ID(), contract.ContractAddress, data, callOpts)
		if out, hit := c.cache.Get(ctx, cacheKey); hit {
			c.metrics.IncCache(true)
			return unpackResults(abiMethod.Outputs, out)
		}
		c.metrics.IncCache(false)
	}

	client, err := c.clientFactory.GetEVMClient(rpcURL)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	out, err := client.CallViewWithOptions(callCtx, contract.ContractAddress, data, callOpts)
	if err != nil {
		return nil, revertCallError(err)
	}
	if len(out) == 0 && len(abiMethod.Outputs) > 0 {
		return nil, newCallError(nil, "call returned no data, is the contract deployed on %s?", chain.GetCAIP2ID())
	}

	results, err := unpackResults(abiMethod.Outputs, out)
	if err != nil {
		return nil, err
	}
	if cacheKey != "" {
		c.cache.Put(ctx, cacheKey, out)
	}
	return results, nil
}

func unpackResults(outputs abi.Arguments, out []byte) ([]interface{}, error) {
	values, err := outputs.Unpack(out)
	if err != nil {
		return nil, newCallError(err, "failed to decode result: %v", err)
	}
	return normalizeResults(outputs, values), nil
}

func readCallStatus(err error) string {
	if err == nil {
		return metrics.StatusOK
	}
	var ce *CallError
	if errors.As(err, &ce) {
		return metrics.StatusRejected
	}
	return metrics.StatusFailed
}

func resolveRPCURL(chain *entities.Chain) string {
	return chain.PrimaryRPCURL()
}
