package usecases

import (
	"context"
	"strings"
	"time"

	"contract-explorer.backend/internal/infrastructure/blockchain"
	"contract-explorer.backend/pkg/logger"
	"contract-explorer.backend/pkg/redis"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

const readCallCachePrefix = "readcall:"

// ReadResultCache stores raw eth_call return data for calls pinned to a
// numbered block. Nothing is cached when Redis is not configured.
type ReadResultCache struct {
	ttl time.Duration
}

func NewReadResultCache(ttl time.Duration) *ReadResultCache {
	return &ReadResultCache{ttl: ttl}
}

func (c *ReadResultCache) enabled() bool {
	return c != nil && c.ttl > 0 && redis.Available()
}

func readCallCacheKey(chainCAIP2, address string, data []byte, opts blockchain.CallOptions) string {
	return readCallCachePrefix + strings.Join([]string{
		chainCAIP2,
		strings.ToLower(address),
		opts.BlockNumber.String(),
		strings.ToLower(opts.From),
		crypto.Keccak256Hash(data).Hex(),
	}, ":")
}

// Get returns cached return data. Lookup failures count as misses.
func (c *ReadResultCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if !c.enabled() {
		return nil, false
	}
	raw, err := redis.Get(ctx, key)
	if err != nil {
		if !redis.IsMiss(err) {
			logger.Warn(ctx, "Read result cache lookup failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	out, err := hexutil.Decode(raw)
	if err != nil {
		return nil, false
	}
	return out, true
}

func (c *ReadResultCache) Put(ctx context.Context, key string, out []byte) {
	if !c.enabled() {
		return
	}
	if err := redis.Set(ctx, key, hexutil.Encode(out), c.ttl); err != nil {
		logger.Warn(ctx, "Read result cache store failed", zap.String("key", key), zap.Error(err))
	}
}
