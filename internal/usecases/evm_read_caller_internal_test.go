package usecases

import (
	"context"
	"errors"
	"math/big"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"contract-explorer.backend/internal/domain/entities"
	domainerrors "contract-explorer.backend/internal/domain/errors"
	"contract-explorer.backend/internal/domain/repositories"
	"contract-explorer.backend/internal/infrastructure/blockchain"
	"contract-explorer.backend/pkg/metrics"
	"contract-explorer.backend/pkg/redis"
	"contract-explorer.backend/pkg/solidity"
	"github.com/alicebob/miniredis/v2"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const explorerTestABI = `[
	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"holders","stateMutability":"view","inputs":[{"name":"ids","type":"uint256[]"}],"outputs":[{"name":"","type":"address[]"}]},
	{"type":"function","name":"position","stateMutability":"view","inputs":[{"name":"key","type":"tuple","components":[{"name":"owner","type":"address"},{"name":"fee","type":"uint24"}]}],"outputs":[{"name":"","type":"tuple","components":[{"name":"liquidity","type":"uint128"},{"name":"active","type":"bool"}]}]},
	{"type":"function","name":"info","stateMutability":"view","inputs":[],"outputs":[{"name":"name","type":"string"},{"name":"hash","type":"bytes32"},{"name":"small","type":"uint8"}]}
]`

const (
	testRPCURL   = "http://rpc.test"
	testContract = "0x5a15566417e6C1c9546523066500bDDBc53F88C7"
	testOwner    = "0x000000000000000000000000000000000000dEaD"
)

type stubChainRepo struct {
	repositories.ChainRepository
	chain *entities.Chain
	err   error
}

func (s *stubChainRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.Chain, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.chain == nil || s.chain.ID != id {
		return nil, domainerrors.ErrNotFound
	}
	return s.chain, nil
}

type recordingMetrics struct {
	mu       sync.Mutex
	statuses []string
	hits     int
	misses   int
}

func (r *recordingMetrics) ObserveReadCall(status string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
}

func (r *recordingMetrics) IncCache(hit bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if hit {
		r.hits++
	} else {
		r.misses++
	}
}

type readCallerFixture struct {
	caller   *EVMReadCaller
	contract *entities.SmartContract
	chain    *entities.Chain
	parsed   *abi.ABI
	methods  []entities.MethodDescriptor
	metrics  *recordingMetrics
}

func newReadCallerFixture(t *testing.T, fn blockchain.CallViewFunc, opts ...EVMReadCallerOption) *readCallerFixture {
	t.Helper()

	chain := &entities.Chain{ID: uuid.New(), ChainID: "8453", Type: entities.ChainTypeEVM, RPCURL: testRPCURL, IsActive: true}
	contract := &entities.SmartContract{
		ID:              uuid.New(),
		ChainUUID:       chain.ID,
		ContractAddress: testContract,
		ABI:             explorerTestABI,
		IsActive:        true,
		UpdatedAt:       time.Unix(1, 0),
	}

	factory := blockchain.NewClientFactory()
	factory.RegisterEVMClient(testRPCURL, blockchain.NewEVMClientWithCallView(big.NewInt(8453), fn))

	rec := &recordingMetrics{}
	resolver := NewABIResolver()
	caller := NewEVMReadCaller(&stubChainRepo{chain: chain}, factory, resolver, append([]EVMReadCallerOption{WithMetrics(rec)}, opts...)...)

	parsed, err := resolver.Resolve(contract)
	require.NoError(t, err)
	methods, err := ParseMethodDescriptors(contract.ABI)
	require.NoError(t, err)

	return &readCallerFixture{caller: caller, contract: contract, chain: chain, parsed: parsed, methods: methods, metrics: rec}
}

func (f *readCallerFixture) method(t *testing.T, name string) entities.MethodDescriptor {
	t.Helper()
	m, err := FindReadMethod(f.methods, name)
	require.NoError(t, err)
	return m
}

func packOutputs(t *testing.T, parsed *abi.ABI, method string, values ...interface{}) []byte {
	t.Helper()
	out, err := parsed.Methods[method].Outputs.Pack(values...)
	require.NoError(t, err)
	return out
}

func TestEVMReadCaller_UintResultIsTagged(t *testing.T) {
	var fixture *readCallerFixture
	var seenOpts blockchain.CallOptions
	fixture = newReadCallerFixture(t, func(ctx context.Context, to string, data []byte, opts blockchain.CallOptions) ([]byte, error) {
		seenOpts = opts
		assert.Equal(t, testContract, to)
		m := fixture.parsed.Methods["balanceOf"]
		assert.Equal(t, m.ID, data[:4])
		args, err := m.Inputs.Unpack(data[4:])
		require.NoError(t, err)
		assert.Equal(t, common.HexToAddress(testOwner), args[0])

		supply, _ := new(big.Int).SetString("50000000000000000000", 10)
		return packOutputs(t, fixture.parsed, "balanceOf", supply), nil
	})

	results, err := fixture.caller.CallContractReadMethod(context.Background(), fixture.contract, fixture.method(t, "balanceOf"),
		[]solidity.Value{solidity.Scalar(testOwner)},
		map[string]interface{}{"from": "0x0", "gasLimit": "6721975"},
	)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, solidity.BigNumber{Type: "BigNumber", Hex: "0x2b5e3af16b1880000"}, results[0])
	assert.Equal(t, "50000000000000000000", solidity.FormatSolidityObject(results[0]))

	assert.Equal(t, "0x0", seenOpts.From)
	assert.Equal(t, uint64(6721975), seenOpts.Gas)
	assert.Nil(t, seenOpts.BlockNumber)
	assert.Equal(t, []string{metrics.StatusOK}, fixture.metrics.statuses)
}

func TestEVMReadCaller_ArrayInAndOut(t *testing.T) {
	var fixture *readCallerFixture
	holderA := common.HexToAddress("0x1111111111111111111111111111111111111111")
	holderB := common.HexToAddress("0x2222222222222222222222222222222222222222")
	fixture = newReadCallerFixture(t, func(ctx context.Context, to string, data []byte, opts blockchain.CallOptions) ([]byte, error) {
		args, err := fixture.parsed.Methods["holders"].Inputs.Unpack(data[4:])
		require.NoError(t, err)
		assert.Equal(t, []*big.Int{big.NewInt(1), big.NewInt(2)}, args[0])
		return packOutputs(t, fixture.parsed, "holders", []common.Address{holderA, holderB}), nil
	})

	results, err := fixture.caller.CallContractReadMethod(context.Background(), fixture.contract, fixture.method(t, "holders"),
		[]solidity.Value{solidity.ProcessMethodCallParam("[1, 2]", "uint256[]")}, nil)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{[]interface{}{holderA.Hex(), holderB.Hex()}}, results)
}

func TestEVMReadCaller_TupleInAndOut(t *testing.T) {
	var fixture *readCallerFixture
	fixture = newReadCallerFixture(t, func(ctx context.Context, to string, data []byte, opts blockchain.CallOptions) ([]byte, error) {
		args, err := fixture.parsed.Methods["position"].Inputs.Unpack(data[4:])
		require.NoError(t, err)
		key := reflect.ValueOf(args[0])
		assert.Equal(t, common.HexToAddress(testOwner), key.FieldByName("Owner").Interface())
		assert.Equal(t, int64(3000), key.FieldByName("Fee").Interface().(*big.Int).Int64())

		return packOutputs(t, fixture.parsed, "position", struct {
			Liquidity *big.Int
			Active    bool
		}{Liquidity: big.NewInt(5), Active: true}), nil
	})

	for _, raw := range []string{
		`{"owner":"` + testOwner + `","fee":3000}`,
		`[` + testOwner + `, 3000]`,
		`(` + testOwner + `,"3000")`,
	} {
		results, err := fixture.caller.CallContractReadMethod(context.Background(), fixture.contract, fixture.method(t, "position"),
			[]solidity.Value{solidity.Scalar(raw)}, nil)
		require.NoError(t, err, raw)
		assert.Equal(t, []interface{}{map[string]interface{}{"liquidity": "5", "active": true}}, results)
	}
}

func TestEVMReadCaller_MultipleOutputs(t *testing.T) {
	var fixture *readCallerFixture
	var hash [32]byte
	hash[31] = 0xab
	fixture = newReadCallerFixture(t, func(ctx context.Context, to string, data []byte, opts blockchain.CallOptions) ([]byte, error) {
		return packOutputs(t, fixture.parsed, "info", "Explorer", hash, uint8(18)), nil
	})

	results, err := fixture.caller.CallContractReadMethod(context.Background(), fixture.contract, fixture.method(t, "info"), nil, nil)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "Explorer", results[0])
	assert.Equal(t, "0x"+strings.Repeat("00", 31)+"ab", results[1])
	assert.Equal(t, solidity.BigNumber{Type: "BigNumber", Hex: "0x12"}, results[2])
}

func TestEVMReadCaller_ReasonedFailures(t *testing.T) {
	tests := []struct {
		name   string
		method string
		params []solidity.Value
		opts   map[string]interface{}
		call   func(t *testing.T, f *readCallerFixture) ([]byte, error)
		reason string
	}{
		{
			name:   "bad address argument",
			method: "balanceOf",
			params: []solidity.Value{solidity.Scalar("nope")},
			reason: `invalid argument 0 (owner): invalid address "nope"`,
		},
		{
			name:   "number out of range",
			method: "position",
			params: []solidity.Value{solidity.Scalar(`[` + testOwner + `,16777216]`)},
			reason: "invalid argument 0 (key): field fee: value 16777216 out of range for uint24",
		},
		{
			name:   "bad option",
			method: "balanceOf",
			params: []solidity.Value{solidity.Scalar(testOwner)},
			opts:   map[string]interface{}{"gasLimit": "lots"},
			reason: `invalid gasLimit "lots"`,
		},
		{
			name:   "revert with message",
			method: "balanceOf",
			params: []solidity.Value{solidity.Scalar(testOwner)},
			call: func(t *testing.T, f *readCallerFixture) ([]byte, error) {
				return nil, rpcDataErrorStub{msg: "execution reverted", data: encodeErrorString(t, "Wrong parameters")}
			},
			reason: "Wrong parameters",
		},
		{
			name:   "no return data",
			method: "balanceOf",
			params: []solidity.Value{solidity.Scalar(testOwner)},
			call: func(t *testing.T, f *readCallerFixture) ([]byte, error) {
				return []byte{}, nil
			},
			reason: "call returned no data, is the contract deployed on eip155:8453?",
		},
		{
			name:   "undecodable return data",
			method: "balanceOf",
			params: []solidity.Value{solidity.Scalar(testOwner)},
			call: func(t *testing.T, f *readCallerFixture) ([]byte, error) {
				return []byte{0x01}, nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fixture *readCallerFixture
			fixture = newReadCallerFixture(t, func(ctx context.Context, to string, data []byte, opts blockchain.CallOptions) ([]byte, error) {
				if tt.call == nil {
					t.Fatal("node should not be reached")
				}
				return tt.call(t, fixture)
			})

			_, err := fixture.caller.CallContractReadMethod(context.Background(), fixture.contract, fixture.method(t, tt.method), tt.params, tt.opts)
			var ce *CallError
			require.ErrorAs(t, err, &ce)
			if tt.reason != "" {
				assert.Equal(t, tt.reason, ce.Reason())
			} else {
				assert.NotEmpty(t, ce.Reason())
			}
			assert.Equal(t, []string{metrics.StatusRejected}, fixture.metrics.statuses)
		})
	}
}

func TestEVMReadCaller_UnreasonedFailures(t *testing.T) {
	fixture := newReadCallerFixture(t, func(ctx context.Context, to string, data []byte, opts blockchain.CallOptions) ([]byte, error) {
		return nil, errors.New("dial tcp: connection refused")
	})

	_, err := fixture.caller.CallContractReadMethod(context.Background(), fixture.contract, fixture.method(t, "balanceOf"),
		[]solidity.Value{solidity.Scalar(testOwner)}, nil)
	require.Error(t, err)
	var ce *CallError
	assert.False(t, errors.As(err, &ce))
	assert.Equal(t, []string{metrics.StatusFailed}, fixture.metrics.statuses)

	fixture.caller.chainRepo = &stubChainRepo{err: errors.New("db down")}
	_, err = fixture.caller.CallContractReadMethod(context.Background(), fixture.contract, fixture.method(t, "balanceOf"),
		[]solidity.Value{solidity.Scalar(testOwner)}, nil)
	require.Error(t, err)
	assert.False(t, errors.As(err, &ce))

	_, err = fixture.caller.CallContractReadMethod(context.Background(), nil, fixture.method(t, "balanceOf"), nil, nil)
	require.Error(t, err)
}

func TestEVMReadCaller_ContractChecks(t *testing.T) {
	fixture := newReadCallerFixture(t, func(ctx context.Context, to string, data []byte, opts blockchain.CallOptions) ([]byte, error) {
		t.Fatal("node should not be reached")
		return nil, nil
	})
	method := fixture.method(t, "balanceOf")
	params := []solidity.Value{solidity.Scalar(testOwner)}
	var ce *CallError

	bad := *fixture.contract
	bad.ContractAddress = "0x123"
	_, err := fixture.caller.CallContractReadMethod(context.Background(), &bad, method, params, nil)
	require.ErrorAs(t, err, &ce)

	unknown := method
	unknown.Name = "balanceOfOwner"
	_, err = fixture.caller.CallContractReadMethod(context.Background(), fixture.contract, unknown, params, nil)
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "method balanceOfOwner(address) not found in contract ABI", ce.Reason())

	broken := *fixture.contract
	broken.ID = uuid.New()
	broken.ABI = "{}"
	_, err = fixture.caller.CallContractReadMethod(context.Background(), &broken, method, params, nil)
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "invalid contract ABI", ce.Reason())
}

func TestEVMReadCaller_RPCURLResolution(t *testing.T) {
	fixture := newReadCallerFixture(t, func(ctx context.Context, to string, data []byte, opts blockchain.CallOptions) ([]byte, error) {
		return make([]byte, 32), nil
	})
	fixture.chain.RPCURL = ""
	method := fixture.method(t, "balanceOf")
	params := []solidity.Value{solidity.Scalar(testOwner)}

	_, err := fixture.caller.CallContractReadMethod(context.Background(), fixture.contract, method, params, nil)
	var ce *CallError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "no active rpc url for chain eip155:8453", ce.Reason())

	fixture.chain.RPCs = []entities.ChainRPC{{URL: testRPCURL, IsActive: true}}
	_, err = fixture.caller.CallContractReadMethod(context.Background(), fixture.contract, method, params, nil)
	require.NoError(t, err)

	fixture.chain.RPCs = nil
	WithDefaultRPCURL(" " + testRPCURL + " ")(fixture.caller)
	_, err = fixture.caller.CallContractReadMethod(context.Background(), fixture.contract, method, params, nil)
	require.NoError(t, err)
}

func TestResolveRPCURL(t *testing.T) {
	assert.Equal(t, "", resolveRPCURL(nil))
	assert.Equal(t, "http://primary", resolveRPCURL(&entities.Chain{RPCURL: "http://primary"}))
	assert.Equal(t, "http://active", resolveRPCURL(&entities.Chain{RPCs: []entities.ChainRPC{
		{URL: "http://inactive"},
		{URL: "http://active", IsActive: true},
	}}))
	assert.Equal(t, "http://inactive", resolveRPCURL(&entities.Chain{RPCs: []entities.ChainRPC{{URL: " "}, {URL: "http://inactive"}}}))
	assert.Equal(t, "", resolveRPCURL(&entities.Chain{}))
}

func TestEVMReadCaller_CachesPinnedBlocks(t *testing.T) {
	mr := miniredis.RunT(t)
	redis.SetClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = redis.Close() })

	var fixture *readCallerFixture
	calls := 0
	fixture = newReadCallerFixture(t, func(ctx context.Context, to string, data []byte, opts blockchain.CallOptions) ([]byte, error) {
		calls++
		return packOutputs(t, fixture.parsed, "balanceOf", big.NewInt(7)), nil
	}, WithResultCache(NewReadResultCache(time.Minute)))

	method := fixture.method(t, "balanceOf")
	params := []solidity.Value{solidity.Scalar(testOwner)}
	pinned := map[string]interface{}{"blockTag": 100}

	for i := 0; i < 2; i++ {
		results, err := fixture.caller.CallContractReadMethod(context.Background(), fixture.contract, method, params, pinned)
		require.NoError(t, err)
		assert.Equal(t, "7", solidity.FormatSolidityObject(results[0]))
	}
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, fixture.metrics.hits)
	assert.Equal(t, 1, fixture.metrics.misses)
	assert.Len(t, mr.Keys(), 1)
	assert.True(t, strings.HasPrefix(mr.Keys()[0], "readcall:eip155:8453:"+strings.ToLower(testContract)+":100:"))

	for _, opts := range []map[string]interface{}{nil, {"blockTag": "latest"}, {"blockTag": "pending"}} {
		_, err := fixture.caller.CallContractReadMethod(context.Background(), fixture.contract, method, params, opts)
		require.NoError(t, err)
	}
	assert.Equal(t, 4, calls)
	assert.Len(t, mr.Keys(), 1)
}

func TestEVMReadCaller_CallTimeout(t *testing.T) {
	fixture := newReadCallerFixture(t, func(ctx context.Context, to string, data []byte, opts blockchain.CallOptions) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}, WithCallTimeout(20*time.Millisecond))

	_, err := fixture.caller.CallContractReadMethod(context.Background(), fixture.contract, fixture.method(t, "balanceOf"),
		[]solidity.Value{solidity.Scalar(testOwner)}, nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestReadCallStatus(t *testing.T) {
	assert.Equal(t, metrics.StatusOK, readCallStatus(nil))
	assert.Equal(t, metrics.StatusRejected, readCallStatus(&CallError{Message: "x"}))
	assert.Equal(t, metrics.StatusFailed, readCallStatus(errors.New("x")))
}
