package scheduler

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestRunOnce_RetriesUntilSuccess(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	job := func(context.Context) error {
		if calls.Add(1) < 3 {
			return errors.New("source down")
		}
		return nil
	}
	s := New(job, Config{InitialBackoff: time.Millisecond, MaxRetries: 5}, zerolog.Nop())

	require.NoError(t, s.RunOnce(t.Context()))
	require.EqualValues(t, 3, calls.Load())
}

func TestRunOnce_GivesUpAfterMaxRetries(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	boom := errors.New("source down")
	job := func(context.Context) error {
		calls.Add(1)
		return boom
	}
	s := New(job, Config{InitialBackoff: time.Millisecond, MaxRetries: 2}, zerolog.Nop())

	require.ErrorIs(t, s.RunOnce(t.Context()), boom)
	// first attempt plus two retries
	require.EqualValues(t, 3, calls.Load())
}

func TestRunOnce_StopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	var calls atomic.Int32
	job := func(context.Context) error {
		calls.Add(1)
		cancel()
		return errors.New("source down")
	}
	s := New(job, Config{InitialBackoff: time.Hour, MaxRetries: 5}, zerolog.Nop())

	require.Error(t, s.RunOnce(ctx))
	require.EqualValues(t, 1, calls.Load())
}

func TestRun_ImmediateThenPeriodic(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	runs := make(chan time.Time, 8)
	job := func(context.Context) error {
		runs <- time.Now()
		return nil
	}
	s := New(job, Config{Interval: 20 * time.Millisecond}, zerolog.Nop())

	start := time.Now()
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	first := <-runs
	require.Less(t, first.Sub(start), 20*time.Millisecond)
	second := <-runs
	require.GreaterOrEqual(t, second.Sub(first), 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestRun_NoOverlap(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(t.Context(), 150*time.Millisecond)
	defer cancel()

	var active, maxActive atomic.Int32
	job := func(context.Context) error {
		n := active.Add(1)
		if n > maxActive.Load() {
			maxActive.Store(n)
		}
		time.Sleep(25 * time.Millisecond)
		active.Add(-1)
		return nil
	}
	New(job, Config{Interval: 5 * time.Millisecond}, zerolog.Nop()).Run(ctx)

	require.EqualValues(t, 1, maxActive.Load())
}

func TestBackOff_LargeRetryCountStaysPositive(t *testing.T) {
	t.Parallel()

	// Arrange
	job := func(context.Context) error { return nil }
	small := New(job, Config{InitialBackoff: time.Second, MaxRetries: 3}, zerolog.Nop())
	large := New(job, Config{InitialBackoff: 10 * time.Second, MaxRetries: 64}, zerolog.Nop())

	// Act
	b := large.backOff(t.Context())
	b.Reset()

	// Assert
	require.Equal(t, 8*time.Second, small.maxInterval())
	require.Equal(t, time.Duration(math.MaxInt64), large.maxInterval())
	require.Equal(t, 10*time.Second, b.NextBackOff())
	require.Equal(t, 20*time.Second, b.NextBackOff())
}
