package schedule_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huddlestats/gridiron/pkg/errors"
	"github.com/huddlestats/gridiron/pkg/games"
	"github.com/huddlestats/gridiron/pkg/schedule"
)

func TestAcquireEnforcesMinimumSpacing(t *testing.T) {
	interval := 50 * time.Millisecond
	s := schedule.New(schedule.WithInterval("espn", interval))
	ctx := context.Background()

	require.NoError(t, s.Acquire(ctx, "espn"))
	start := time.Now()
	require.NoError(t, s.Acquire(ctx, "espn"))

	assert.GreaterOrEqual(t, time.Since(start), interval)
}

func TestAcquireSourcesAreIndependent(t *testing.T) {
	s := schedule.New(
		schedule.WithInterval("espn", 200*time.Millisecond),
		schedule.WithInterval("wikipedia", time.Millisecond),
	)
	ctx := context.Background()

	require.NoError(t, s.Acquire(ctx, "espn"))
	start := time.Now()
	require.NoError(t, s.Acquire(ctx, "wikipedia"))

	// the wikipedia permit does not wait on espn's interval
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestAcquireRespectsContextCancellation(t *testing.T) {
	s := schedule.New(schedule.WithInterval("espn", time.Minute))
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, s.Acquire(ctx, "espn"))
	cancel()
	err := s.Acquire(ctx, "espn")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCallRetriesTransientErrors(t *testing.T) {
	s := schedule.New(
		schedule.WithDefaultInterval(time.Millisecond),
		schedule.WithMaxAttempts(3),
		schedule.WithBaseDelay(time.Millisecond),
	)

	attempts := 0
	got, err := s.Call(context.Background(), "espn", func(ctx context.Context) ([]games.Candidate, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.NewAdapterError("espn", 503, "unavailable", nil)
		}
		return []games.Candidate{{Source: "espn"}}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Len(t, got, 1)
}

func TestCallGivesUpAfterMaxAttempts(t *testing.T) {
	s := schedule.New(
		schedule.WithDefaultInterval(time.Millisecond),
		schedule.WithMaxAttempts(3),
		schedule.WithBaseDelay(time.Millisecond),
	)

	attempts := 0
	_, err := s.Call(context.Background(), "espn", func(ctx context.Context) ([]games.Candidate, error) {
		attempts++
		return nil, errors.NewAdapterError("espn", 500, "boom", nil)
	})

	assert.Equal(t, 3, attempts)
	assert.True(t, errors.IsTransient(err))
}

func TestCallDoesNotRetryPermanentErrors(t *testing.T) {
	s := schedule.New(
		schedule.WithDefaultInterval(time.Millisecond),
		schedule.WithMaxAttempts(3),
	)

	attempts := 0
	_, err := s.Call(context.Background(), "espn", func(ctx context.Context) ([]games.Candidate, error) {
		attempts++
		return nil, errors.NewAdapterError("espn", 404, "not found", nil)
	})

	assert.Equal(t, 1, attempts)
	assert.True(t, errors.IsPermanent(err))
}

func TestCallEmptyResultIsNotAnError(t *testing.T) {
	s := schedule.New(schedule.WithDefaultInterval(time.Millisecond))

	got, err := s.Call(context.Background(), "espn", func(ctx context.Context) ([]games.Candidate, error) {
		return nil, nil
	})

	require.NoError(t, err)
	assert.Empty(t, got)
}
