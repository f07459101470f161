// Package transport performs the HTTP GETs behind the dispatcher. One
// HTTPTransport owns one pooled *http.Client and is safe for concurrent use.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/shotlens/shotlens/internal/core"
)

// ErrIOFailure marks a request that never produced an HTTP status.
var ErrIOFailure = errors.New("transport i/o failure")

// drainLimit bounds how much of a non-200 body is read to recycle the connection.
const drainLimit = 64 << 10

// Transport fetches a URL and returns its status code and body.
type Transport interface {
	Get(ctx context.Context, url string) (status int, body []byte, err error)
}

// Options tunes the shared connection pool.
type Options struct {
	Timeout             time.Duration
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
	UserAgent           string
}

// DefaultOptions returns the pool settings used when none are configured.
func DefaultOptions() Options {
	return Options{
		Timeout:             10 * time.Second,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     90 * time.Second,
		UserAgent:           "shotlens",
	}
}

// HTTPTransport implements Transport over net/http.
type HTTPTransport struct {
	client    *http.Client
	userAgent string
	logger    core.Logger
}

// New builds a transport with its own pooled client.
func New(opts Options, logger core.Logger) *HTTPTransport {
	defaults := DefaultOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = defaults.Timeout
	}
	if opts.MaxIdleConns <= 0 {
		opts.MaxIdleConns = defaults.MaxIdleConns
	}
	if opts.MaxIdleConnsPerHost <= 0 {
		opts.MaxIdleConnsPerHost = defaults.MaxIdleConnsPerHost
	}
	if opts.IdleConnTimeout <= 0 {
		opts.IdleConnTimeout = defaults.IdleConnTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaults.UserAgent
	}

	client := &http.Client{
		Timeout: opts.Timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 60 * time.Second,
			}).DialContext,
			MaxIdleConns:          opts.MaxIdleConns,
			MaxIdleConnsPerHost:   opts.MaxIdleConnsPerHost,
			IdleConnTimeout:       opts.IdleConnTimeout,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}

	return NewWithClient(client, opts.UserAgent, logger)
}

// NewWithClient wraps an existing client, e.g. an httptest server's.
func NewWithClient(client *http.Client, userAgent string, logger core.Logger) *HTTPTransport {
	if client == nil {
		client = &http.Client{Timeout: DefaultOptions().Timeout}
	}
	return &HTTPTransport{client: client, userAgent: userAgent, logger: core.OrNop(logger)}
}

// Get implements Transport. Only a 200 carries a body; any other status is
// returned with a nil body. Failures before a status exists wrap ErrIOFailure.
func (t *HTTPTransport) Get(ctx context.Context, url string) (int, []byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		t.logger.Warn("Unable to build request", zap.String("url", url), zap.Error(err))
		return 0, nil, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	req.Header.Set("Accept", "application/json")
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		// A cancelled context is more useful than the wrapped url.Error.
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		t.logger.Warn("Unable to hit endpoint", zap.String("url", url), zap.Error(err))
		return 0, nil, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, drainLimit))
		return resp.StatusCode, nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.logger.Warn("Unable to read response body", zap.String("url", url), zap.Error(err))
		return resp.StatusCode, nil, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}

	return resp.StatusCode, body, nil
}
