// Package schedule throttles outbound requests per source and retries
// transient failures with exponential backoff. External sports-data sources
// are sensitive to burst patterns, so this is strict minimum spacing between
// consecutive requests to a source, not a token bucket: the pipeline
// optimizes for never getting blocked over throughput.
package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/huddlestats/gridiron/pkg/errors"
	"github.com/huddlestats/gridiron/pkg/games"
	"github.com/huddlestats/gridiron/pkg/logging"
)

// Defaults applied when a source has no explicit configuration.
const (
	DefaultInterval    = 2 * time.Second
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 500 * time.Millisecond
)

// FetchFunc performs one outbound request and returns candidate records.
type FetchFunc func(ctx context.Context) ([]games.Candidate, error)

// Scheduler enforces per-source minimum inter-request spacing and bounded
// retry with exponential backoff on transient errors.
type Scheduler struct {
	mu        sync.Mutex
	intervals map[string]time.Duration
	last      map[string]time.Time

	defaultInterval time.Duration
	maxAttempts     int
	baseDelay       time.Duration

	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithInterval sets the minimum spacing between requests to one source.
func WithInterval(source string, interval time.Duration) Option {
	return func(s *Scheduler) {
		s.intervals[source] = interval
	}
}

// WithDefaultInterval sets the spacing for sources without their own.
func WithDefaultInterval(interval time.Duration) Option {
	return func(s *Scheduler) {
		s.defaultInterval = interval
	}
}

// WithMaxAttempts bounds retries of transient failures per call.
func WithMaxAttempts(attempts int) Option {
	return func(s *Scheduler) {
		if attempts > 0 {
			s.maxAttempts = attempts
		}
	}
}

// WithBaseDelay sets the initial backoff delay; each retry doubles it.
func WithBaseDelay(delay time.Duration) Option {
	return func(s *Scheduler) {
		if delay > 0 {
			s.baseDelay = delay
		}
	}
}

// New creates a Scheduler.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		intervals:       make(map[string]time.Duration),
		last:            make(map[string]time.Time),
		defaultInterval: DefaultInterval,
		maxAttempts:     DefaultMaxAttempts,
		baseDelay:       DefaultBaseDelay,
		sleep:           sleepCtx,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Acquire blocks until the source's minimum interval has elapsed since the
// previous permitted call, then records the permit. Safe for concurrent use
// across sources; calls for the same source serialize on the spacing.
func (s *Scheduler) Acquire(ctx context.Context, source string) error {
	for {
		s.mu.Lock()
		now := time.Now()
		wait := s.interval(source) - now.Sub(s.last[source])
		if wait <= 0 {
			s.last[source] = now
			s.mu.Unlock()
			return nil
		}
		s.mu.Unlock()

		if err := s.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// Call runs fn under the source's rate limit, retrying transient errors up
// to the attempt bound with exponential backoff. Permanent errors return
// immediately. The caller treats an exhausted retry budget as a miss for
// this source and query, not a run failure.
func (s *Scheduler) Call(ctx context.Context, source string, fn FetchFunc) ([]games.Candidate, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.baseDelay
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.Reset()

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := s.Acquire(ctx, source); err != nil {
			return nil, err
		}

		candidates, err := fn(ctx)
		if err == nil {
			return candidates, nil
		}
		lastErr = err

		if !errors.IsTransient(err) {
			return nil, err
		}
		if attempt == s.maxAttempts {
			break
		}

		delay := bo.NextBackOff()
		logging.Warn().
			Str("source", source).
			Int("attempt", attempt).
			Dur("backoff", delay).
			Err(err).
			Msg("Transient source failure, retrying")

		if err := s.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, lastErr
}

func (s *Scheduler) interval(source string) time.Duration {
	if d, ok := s.intervals[source]; ok {
		return d
	}
	return s.defaultInterval
}

// sleepCtx sleeps for d or until the context is canceled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
