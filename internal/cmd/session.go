package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shotlens/shotlens/internal/config"
	"github.com/shotlens/shotlens/internal/core"
	"github.com/shotlens/shotlens/internal/core/dispatch"
	"github.com/shotlens/shotlens/internal/core/engine"
	"github.com/shotlens/shotlens/internal/core/transport"
	"github.com/shotlens/shotlens/internal/dribbble"
	"github.com/shotlens/shotlens/internal/metrics"
)

// session is one configured client stack: gate, transport, dispatcher and
// typed client. Build it once per process and share it.
type session struct {
	cfg        *config.Config
	gate       engine.Gate
	transport  *transport.HTTPTransport
	dispatcher *dispatch.Dispatcher
	client     *dribbble.Client
	closers    []func() error
}

// openSession wires the stack described by cfg.
func openSession(cfg *config.Config, logger core.Logger) (*session, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	s := &session{cfg: cfg}

	gate, err := s.buildGate(logger)
	if err != nil {
		return nil, err
	}
	s.gate = gate

	s.transport = transport.New(transport.Options{
		Timeout:             cfg.HTTP.Timeout,
		MaxIdleConns:        cfg.HTTP.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.HTTP.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.HTTP.IdleConnTimeout,
		UserAgent:           cfg.HTTP.UserAgent,
	}, logger)

	s.dispatcher, err = dispatch.New(s.gate, s.transport, dispatch.Config{
		BaseURL:          cfg.API.BaseURL,
		ThrowOnRateLimit: cfg.API.ThrowOnRateLimit,
		Window:           cfg.RateLimit.Window,
		Logger:           logger,
		Observer:         metrics.CallObserver{},
	})
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	core.OrNop(logger).Debug("Dribbble dispatcher ready",
		zap.String("base_url", s.dispatcher.BaseURL()),
		zap.Bool("throw_on_rate_limit", s.dispatcher.ThrowOnRateLimit()))

	s.client = dribbble.NewClient(s.dispatcher)
	return s, nil
}

func (s *session) buildGate(logger core.Logger) (engine.Gate, error) {
	rl := s.cfg.RateLimit
	switch rl.Backend {
	case "", config.BackendMemory:
		return engine.NewRateGate(rl.Quota, logger), nil
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     rl.Redis.Addr,
			DB:       rl.Redis.DB,
			Password: rl.Redis.Password,
		})
		s.closers = append(s.closers, rdb.Close)
		if logger != nil {
			logger.Debug("Using shared redis quota",
				zap.String("addr", rl.Redis.Addr),
				zap.String("key_prefix", rl.Redis.KeyPrefix))
		}
		return &engine.RedisGate{
			Client:    rdb,
			Limit:     rl.Quota,
			Window:    rl.Window,
			KeyPrefix: rl.Redis.KeyPrefix,
			Logger:    logger,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown rate_limit.backend %q", errConfig, rl.Backend)
	}
}

// Quota reports the gate state for the current window.
func (s *session) Quota(ctx context.Context) (core.QuotaState, error) {
	state, err := s.dispatcher.Quota(ctx)
	if err != nil {
		return state, fmt.Errorf("%w: %w", dispatch.ErrGateUnavailable, err)
	}
	return state, nil
}

// Close releases the gate's connections.
func (s *session) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
