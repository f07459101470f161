package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shotlens/shotlens/internal/core"
)

const defaultKeyPrefix = "shotlens:quota"

// RedisGate is a fixed-window gate whose counters live in Redis, so several
// processes can share one quota. Each window gets its own key; the first INCR
// on a new key starts the count at 1, which mirrors RateGate's reset.
type RedisGate struct {
	Client    redis.Cmdable
	Limit     int
	Window    time.Duration
	KeyPrefix string
	Logger    core.Logger
}

// Admit implements Gate.
func (g *RedisGate) Admit(ctx context.Context, window int64) (Decision, error) {
	if g == nil || g.Client == nil {
		return Rejected, errors.New("redis gate is not configured")
	}

	key := g.key(window)
	pipe := g.Client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	// Keys outlive their window by one length so late snapshots still read them.
	pipe.Expire(ctx, key, 2*g.window())
	if _, err := pipe.Exec(ctx); err != nil {
		return Rejected, fmt.Errorf("redis gate admit %s: %w", key, err)
	}

	hits := incr.Val()
	if hits > int64(g.limit()) {
		g.logger().Debug("Shared quota exhausted for window",
			zap.String("key", key),
			zap.Int64("hits", hits),
			zap.Int("limit", g.limit()))
		return Rejected, nil
	}
	return Admitted, nil
}

// Snapshot implements Gate.
func (g *RedisGate) Snapshot(ctx context.Context, window int64) (core.QuotaState, error) {
	state := core.QuotaState{Window: window, Limit: g.limit()}
	if g == nil || g.Client == nil {
		return state, errors.New("redis gate is not configured")
	}

	hits, err := g.Client.Get(ctx, g.key(window)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return state, nil
		}
		return state, fmt.Errorf("redis gate snapshot: %w", err)
	}
	state.Hits = hits
	return state, nil
}

func (g *RedisGate) key(window int64) string {
	prefix := strings.TrimSpace(g.KeyPrefix)
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return prefix + ":" + strconv.FormatInt(window, 10)
}

func (g *RedisGate) limit() int {
	if g == nil || g.Limit <= 0 {
		return DefaultQuota
	}
	return g.Limit
}

func (g *RedisGate) window() time.Duration {
	if g == nil {
		return DefaultWindow
	}
	return NormalizeWindow(g.Window)
}

func (g *RedisGate) logger() core.Logger {
	if g == nil {
		return core.OrNop(nil)
	}
	return core.OrNop(g.Logger)
}
