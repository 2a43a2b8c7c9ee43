package jobs

import (
	"context"
	"math/big"
	"strings"
	"time"

	"contract-explorer.backend/internal/domain/entities"
	"contract-explorer.backend/internal/infrastructure/blockchain"
	"contract-explorer.backend/pkg/logger"
	"go.uber.org/zap"
)

type chainLister interface {
	GetAll(ctx context.Context) ([]*entities.Chain, error)
}

type evmClientSource interface {
	GetEVMClient(rpcURL string) (*blockchain.EVMClient, error)
}

// RPCCheck is the outcome of probing one chain endpoint
type RPCCheck struct {
	ChainID  string
	RPCURL   string
	Reported string
	Err      error
}

// Healthy reports whether the endpoint answered with the registered chain id
func (c RPCCheck) Healthy() bool {
	return c.Err == nil && c.Reported == c.ChainID
}

// RPCHealthJob periodically dials the RPC endpoint of every active chain and
// logs endpoints that are down or serve a different network.
type RPCHealthJob struct {
	chains   chainLister
	clients  evmClientSource
	interval time.Duration
	timeout  time.Duration
	stop     chan struct{}
}

func NewRPCHealthJob(chains chainLister, clients evmClientSource) *RPCHealthJob {
	return &RPCHealthJob{
		chains:   chains,
		clients:  clients,
		interval: 5 * time.Minute,
		timeout:  10 * time.Second,
		stop:     make(chan struct{}),
	}
}

func (j *RPCHealthJob) Start(ctx context.Context) {
	logger.Info(ctx, "Starting chain RPC health job", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(context.Background(), "Chain RPC health job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(context.Background(), "Chain RPC health job stopped")
			return
		case <-ticker.C:
			j.probe(ctx)
		}
	}
}

// Stop may be called more than once
func (j *RPCHealthJob) Stop() {
	select {
	case <-j.stop:
	default:
		close(j.stop)
	}
}

func (j *RPCHealthJob) probe(ctx context.Context) []RPCCheck {
	chains, err := j.chains.GetAll(ctx)
	if err != nil {
		logger.Error(ctx, "Failed to list chains for RPC probe", zap.Error(err))
		return nil
	}

	checks := make([]RPCCheck, 0, len(chains))
	for _, chain := range chains {
		if chain == nil || !chain.IsActive || chain.Type != entities.ChainTypeEVM {
			continue
		}
		check := RPCCheck{
			ChainID: strings.TrimPrefix(strings.TrimSpace(chain.ChainID), "eip155:"),
			RPCURL:  chain.PrimaryRPCURL(),
		}
		if check.RPCURL == "" {
			continue
		}

		client, err := j.clients.GetEVMClient(check.RPCURL)
		if err != nil {
			check.Err = err
			logger.Warn(ctx, "Chain RPC unreachable",
				zap.String("chain_id", chain.GetCAIP2ID()),
				zap.Error(err),
			)
			checks = append(checks, check)
			continue
		}
		id, err := j.fetchChainID(ctx, client)
		if err != nil {
			check.Err = err
			logger.Warn(ctx, "Chain RPC unreachable",
				zap.String("chain_id", chain.GetCAIP2ID()),
				zap.Error(err),
			)
			checks = append(checks, check)
			continue
		}
		if id != nil {
			check.Reported = id.String()
		}
		if !check.Healthy() {
			logger.Error(ctx, "Chain RPC serves a different network",
				zap.String("chain_id", chain.GetCAIP2ID()),
				zap.String("reported", check.Reported),
			)
		}
		checks = append(checks, check)
	}
	return checks
}

// fetchChainID queries the node itself, bounded by the probe timeout
func (j *RPCHealthJob) fetchChainID(ctx context.Context, client *blockchain.EVMClient) (*big.Int, error) {
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}
	return client.FetchChainID(ctx)
}
