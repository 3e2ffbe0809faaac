// Package scheduler runs a job periodically, retrying each run with
// exponential backoff.
package scheduler

import (
	"context"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

const (
	DefaultInterval       = 60 * time.Second
	DefaultInitialBackoff = 10 * time.Second
	DefaultMaxRetries     = 5
)

// Job is one unit of scheduled work.
type Job func(ctx context.Context) error

// Config tunes a Scheduler. Zero values take the defaults.
type Config struct {
	Interval       time.Duration
	InitialBackoff time.Duration
	MaxRetries     int
}

// Scheduler runs a Job immediately and then on every interval tick.
// Runs never overlap.
type Scheduler struct {
	job Job
	cfg Config
	log zerolog.Logger
}

// New creates a Scheduler.
func New(job Job, cfg Config, log zerolog.Logger) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = DefaultInitialBackoff
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Scheduler{
		job: job,
		cfg: cfg,
		log: log.With().Str("component", "scheduler").Logger(),
	}
}

// Run blocks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.log.Info().Dur("interval", s.cfg.Interval).Msg("scheduler started")
	for {
		_ = s.RunOnce(ctx)

		// drop a tick that fired while the run was in progress
		select {
		case <-ticker.C:
		default:
		}

		select {
		case <-ctx.Done():
			s.log.Info().Msg("scheduler stopped")
			return
		case <-ticker.C:
		}
	}
}

// RunOnce runs the job, retrying failures with exponential backoff
// until it succeeds, the retries are exhausted or ctx is done.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	attempt := 0
	op := func() error {
		attempt++
		err := s.job(ctx)
		if err != nil && ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, next time.Duration) {
		s.log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", next).Msg("scheduled run failed, retrying")
	}

	err := backoff.RetryNotify(op, s.backOff(ctx), notify)
	if err != nil {
		s.log.Error().Err(err).Int("attempts", attempt).Msg("scheduled run failed")
	}
	return err
}

func (s *Scheduler) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.cfg.InitialBackoff
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = s.maxInterval()
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(s.cfg.MaxRetries)), ctx)
}

// maxInterval is the wait before the last retry, saturating instead of overflowing.
func (s *Scheduler) maxInterval() time.Duration {
	d := s.cfg.InitialBackoff
	for range s.cfg.MaxRetries {
		if d > math.MaxInt64/2 {
			return math.MaxInt64
		}
		d *= 2
	}
	return d
}
