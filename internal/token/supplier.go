// Package token keeps the service identity access token fresh.
//
// A Supplier acquires the token once at startup and replaces it from a single
// background goroutine before it expires. Readers load the current token from an
// atomic cell and never wait for network I/O. Construct exactly one Supplier per
// process and inject it; every instance holds its own issuer session.
package token

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/zalando-stups/stups-auth-adapter/internal/metrics"
)

const (
	defaultRefreshRatio       = 0.5
	defaultMinRefreshInterval = 10 * time.Second
	defaultLifetime           = 5 * time.Minute
	defaultInitialBackoff     = 500 * time.Millisecond
	defaultMaxBackoff         = time.Minute
	defaultStartupAttempts    = 3
)

type options struct {
	refreshRatio       float64
	minRefreshInterval time.Duration
	defaultLifetime    time.Duration
	initialBackoff     time.Duration
	maxBackoff         time.Duration
	startupAttempts    int
}

// Option configures a Supplier.
type Option func(*options)

// WithRefreshRatio sets the share of the remaining lifetime to wait before refreshing, 0 < r < 1.
func WithRefreshRatio(r float64) Option {
	return func(o *options) {
		if r > 0 && r < 1 {
			o.refreshRatio = r
		}
	}
}

// WithMinRefreshInterval sets the floor between two refreshes.
func WithMinRefreshInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.minRefreshInterval = d
		}
	}
}

// WithDefaultLifetime is assumed for tokens issued without expiry.
func WithDefaultLifetime(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.defaultLifetime = d
		}
	}
}

// WithBackoff sets the retry backoff bounds for failed acquisitions.
func WithBackoff(initial, maxInterval time.Duration) Option {
	return func(o *options) {
		if initial > 0 {
			o.initialBackoff = initial
		}

		if maxInterval >= initial && maxInterval > 0 {
			o.maxBackoff = maxInterval
		}
	}
}

// WithStartupAttempts bounds the attempts Start makes before giving up.
func WithStartupAttempts(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.startupAttempts = n
		}
	}
}

// Supplier holds the current service token and refreshes it in the background.
type Supplier struct {
	source  oauth2.TokenSource
	opts    options
	current atomic.Pointer[oauth2.Token]

	mu     sync.Mutex // guards the lifecycle fields below
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSupplier creates a stopped Supplier fetching tokens from source.
func NewSupplier(source oauth2.TokenSource, opts ...Option) *Supplier {
	o := options{
		refreshRatio:       defaultRefreshRatio,
		minRefreshInterval: defaultMinRefreshInterval,
		defaultLifetime:    defaultLifetime,
		initialBackoff:     defaultInitialBackoff,
		maxBackoff:         defaultMaxBackoff,
		startupAttempts:    defaultStartupAttempts,
	}

	for _, opt := range opts {
		opt(&o)
	}

	return &Supplier{
		source: source,
		opts:   o,
	}
}

// Start acquires the initial token and launches the refresh goroutine.
// ctx bounds the initial acquisition only, the refresh runs until Stop.
func (s *Supplier) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return ErrAlreadyStarted
	}

	next, err := s.acquireInitial(ctx)
	if err != nil {
		return err
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(loopCtx, s.done, next)

	log.Info().Dur("refresh_in", next).Msg("service token supplier started")

	return nil
}

// Stop ends the refresh goroutine and waits for it. The last token stays readable.
func (s *Supplier) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel == nil {
		return
	}

	s.cancel()
	<-s.done

	s.cancel = nil
	s.done = nil
}

// Current returns the latest access token, or an empty string before Start succeeded.
func (s *Supplier) Current() string {
	if tok := s.current.Load(); tok != nil {
		return tok.AccessToken
	}

	return ""
}

// Token implements oauth2.TokenSource on top of the current token,
// so the Supplier can back an oauth2.Transport. It never performs I/O.
func (s *Supplier) Token() (*oauth2.Token, error) {
	tok := s.current.Load()
	if tok == nil {
		return nil, ErrNotStarted
	}

	return tok, nil
}

func (s *Supplier) acquireInitial(ctx context.Context) (time.Duration, error) {
	b := s.newBackOff()

	var lastErr error

	for attempt := 1; attempt <= s.opts.startupAttempts; attempt++ {
		tok, next, err := s.fetch()
		if err == nil {
			s.current.Store(tok)

			return next, nil
		}

		lastErr = err

		log.Warn().Err(err).Int("attempt", attempt).Int("max_attempts", s.opts.startupAttempts).
			Msg("initial service token acquisition failed")

		if attempt == s.opts.startupAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return 0, fmt.Errorf("%w: %w", ErrInitialToken, ctx.Err())
		case <-time.After(nextDelay(b, s.opts.maxBackoff)):
		}
	}

	return 0, fmt.Errorf("%w: %w", ErrInitialToken, lastErr)
}

func (s *Supplier) run(ctx context.Context, done chan<- struct{}, wait time.Duration) {
	defer close(done)

	b := s.newBackOff()

	timer := time.NewTimer(wait)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		tok, next, err := s.fetch()
		if err != nil {
			delay := nextDelay(b, s.opts.maxBackoff)
			log.Warn().Err(err).Dur("retry_in", delay).Msg("service token refresh failed, keeping last token")
			timer.Reset(delay)

			continue
		}

		b.Reset()
		s.current.Store(tok)

		log.Debug().Dur("refresh_in", next).Msg("service token refreshed")
		timer.Reset(next)
	}
}

// fetch obtains a token and computes the delay until the next refresh.
// The lifetime is taken with time.Until right away, which uses the monotonic clock.
func (s *Supplier) fetch() (*oauth2.Token, time.Duration, error) {
	tok, err := s.source.Token()
	if err == nil && (tok == nil || tok.AccessToken == "") {
		err = ErrEmptyToken
	}

	if err != nil {
		metrics.TokenRefresh.WithLabelValues(metrics.ResultFailure).Inc()

		return nil, 0, err
	}

	metrics.TokenRefresh.WithLabelValues(metrics.ResultSuccess).Inc()

	lifetime := s.opts.defaultLifetime
	if !tok.Expiry.IsZero() {
		lifetime = time.Until(tok.Expiry)
	}

	next := time.Duration(float64(lifetime) * s.opts.refreshRatio)
	if next < s.opts.minRefreshInterval {
		next = s.opts.minRefreshInterval
	}

	return tok, next, nil
}

func (s *Supplier) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.opts.initialBackoff
	b.MaxInterval = s.opts.maxBackoff
	b.Reset()

	return b
}

func nextDelay(b *backoff.ExponentialBackOff, maxInterval time.Duration) time.Duration {
	d := b.NextBackOff()
	if d == backoff.Stop || d <= 0 {
		return maxInterval
	}

	return d
}
