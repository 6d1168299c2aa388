package token_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/zalando-stups/stups-auth-adapter/internal/token"
)

var errIssuerDown = errors.New("issuer down")

type step struct {
	token string
	ttl   time.Duration
	err   error
}

// scriptedSource replays steps and repeats the last one when exhausted.
type scriptedSource struct {
	mu    sync.Mutex
	steps []step
	calls atomic.Int32
}

func (s *scriptedSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls.Add(1)

	st := s.steps[0]
	if len(s.steps) > 1 {
		s.steps = s.steps[1:]
	}

	if st.err != nil {
		return nil, st.err
	}

	tok := &oauth2.Token{AccessToken: st.token}
	if st.ttl > 0 {
		tok.Expiry = time.Now().Add(st.ttl)
	}

	return tok, nil
}

func fastOptions() []token.Option {
	return []token.Option{
		token.WithMinRefreshInterval(5 * time.Millisecond),
		token.WithBackoff(time.Millisecond, 5*time.Millisecond),
		token.WithStartupAttempts(3),
	}
}

func TestSupplierNotStarted(t *testing.T) {
	s := token.NewSupplier(&scriptedSource{steps: []step{{token: "a", ttl: time.Hour}}})

	assert.Empty(t, s.Current())

	_, err := s.Token()
	assert.ErrorIs(t, err, token.ErrNotStarted)

	// Stop without Start is a no-op
	s.Stop()
}

func TestSupplierStart(t *testing.T) {
	src := &scriptedSource{steps: []step{{token: "first", ttl: time.Hour}}}
	s := token.NewSupplier(src, fastOptions()...)

	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(s.Stop)

	assert.Equal(t, "first", s.Current())

	tok, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, "first", tok.AccessToken)

	assert.ErrorIs(t, s.Start(context.Background()), token.ErrAlreadyStarted)
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestSupplierStartRetries(t *testing.T) {
	src := &scriptedSource{steps: []step{
		{err: errIssuerDown},
		{token: ""},
		{token: "third", ttl: time.Hour},
	}}
	s := token.NewSupplier(src, fastOptions()...)

	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(s.Stop)

	assert.Equal(t, "third", s.Current())
	assert.Equal(t, int32(3), src.calls.Load())
}

func TestSupplierStartFails(t *testing.T) {
	src := &scriptedSource{steps: []step{{err: errIssuerDown}}}
	s := token.NewSupplier(src, fastOptions()...)

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, token.ErrInitialToken)
	assert.ErrorIs(t, err, errIssuerDown)
	assert.Equal(t, int32(3), src.calls.Load())
	assert.Empty(t, s.Current())
}

func TestSupplierStartCanceled(t *testing.T) {
	src := &scriptedSource{steps: []step{{err: errIssuerDown}}}
	s := token.NewSupplier(src,
		token.WithBackoff(time.Hour, time.Hour),
		token.WithStartupAttempts(5),
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Start(ctx)
	assert.ErrorIs(t, err, token.ErrInitialToken)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSupplierRefreshes(t *testing.T) {
	src := &scriptedSource{steps: []step{
		{token: "first", ttl: 10 * time.Millisecond},
		{token: "second", ttl: time.Hour},
	}}
	s := token.NewSupplier(src, fastOptions()...)

	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(s.Stop)

	assert.Eventually(t, func() bool {
		return s.Current() == "second"
	}, time.Second, time.Millisecond)
}

func TestSupplierKeepsTokenOnFailure(t *testing.T) {
	src := &scriptedSource{steps: []step{
		{token: "first", ttl: 10 * time.Millisecond},
		{err: errIssuerDown},
		{err: errIssuerDown},
		{token: "recovered", ttl: time.Hour},
	}}
	s := token.NewSupplier(src, fastOptions()...)

	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(s.Stop)

	assert.Eventually(t, func() bool {
		cur := s.Current()
		assert.Contains(t, []string{"first", "recovered"}, cur)

		return cur == "recovered"
	}, time.Second, time.Millisecond)

	assert.GreaterOrEqual(t, src.calls.Load(), int32(4))
}

func TestSupplierConcurrentReaders(t *testing.T) {
	src := &scriptedSource{steps: []step{
		{token: "old", ttl: 10 * time.Millisecond},
		{token: "new", ttl: time.Hour},
	}}
	s := token.NewSupplier(src, fastOptions()...)

	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(s.Stop)

	var (
		wg      sync.WaitGroup
		invalid atomic.Int32
	)

	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			deadline := time.Now().Add(50 * time.Millisecond)
			for time.Now().Before(deadline) {
				if cur := s.Current(); cur != "old" && cur != "new" {
					invalid.Add(1)
				}
			}
		}()
	}

	wg.Wait()
	assert.Zero(t, invalid.Load())
}

func TestSupplierStop(t *testing.T) {
	src := &scriptedSource{steps: []step{{token: "only", ttl: time.Millisecond}}}
	s := token.NewSupplier(src, fastOptions()...)

	require.NoError(t, s.Start(context.Background()))
	s.Stop()
	s.Stop()

	calls := src.calls.Load()
	time.Sleep(30 * time.Millisecond)

	assert.Equal(t, calls, src.calls.Load())
	assert.Equal(t, "only", s.Current())
}
