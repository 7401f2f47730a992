package sweeper

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/creditdesk/internal/infrastructure/metrics"
	"github.com/iho/creditdesk/internal/usecase"
)

// Ticker runs one sweep for a given now.
type Ticker interface {
	Tick(ctx context.Context, now time.Time) (usecase.SweepResult, error)
}

// Lock widens the single-flight guarantee across instances. Optional; with
// no lock each instance relies on its own in-process guard.
type Lock interface {
	TryAcquire(ctx context.Context, ttl time.Duration) (bool, error)
	Release(ctx context.Context) error
}

// Config for Sweeper.
type Config struct {
	Sweep    Ticker
	Clock    usecase.Clock
	Lock     Lock
	LockTTL  time.Duration
	Interval time.Duration
	Logger   zerolog.Logger
	Metrics  *metrics.Metrics
}

// Sweeper drives periodic sweeps of request transitions and credit expiry.
type Sweeper struct {
	sweep    Ticker
	clock    usecase.Clock
	lock     Lock
	lockTTL  time.Duration
	interval time.Duration
	logger   zerolog.Logger
	metrics  *metrics.Metrics
}

// New creates a new Sweeper.
func New(cfg Config) *Sweeper {
	if cfg.Interval == 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.LockTTL == 0 {
		cfg.LockTTL = cfg.Interval - cfg.Interval/6
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}

	return &Sweeper{
		sweep:    cfg.Sweep,
		clock:    cfg.Clock,
		lock:     cfg.Lock,
		lockTTL:  cfg.LockTTL,
		interval: cfg.Interval,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
	}
}

// Start runs the sweep loop until the context is cancelled. The first sweep
// runs immediately rather than one interval in.
func (s *Sweeper) Start(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.interval).Msg("sweeper started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.run(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("sweeper shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.run(ctx)
		}
	}
}

func (s *Sweeper) run(ctx context.Context) {
	if s.lock != nil {
		acquired, err := s.lock.TryAcquire(ctx, s.lockTTL)
		if err != nil {
			s.logger.Error().Err(err).Msg("sweep lock unavailable, sweeping without it")
		} else if !acquired {
			s.logger.Debug().Msg("sweep held by another instance")
			return
		} else {
			defer func() {
				if err := s.lock.Release(ctx); err != nil {
					s.logger.Warn().Err(err).Msg("sweep lock release failed")
				}
			}()
		}
	}

	started := time.Now()
	result, err := s.sweep.Tick(ctx, s.clock.Now())
	if err != nil {
		s.logger.Error().Err(err).Msg("sweep failed")
		return
	}

	s.observe(result, time.Since(started))
}

func (s *Sweeper) observe(result usecase.SweepResult, elapsed time.Duration) {
	if result.Skipped {
		if s.metrics != nil {
			s.metrics.SweepSkipped.Inc()
		}
		return
	}

	if s.metrics != nil {
		s.metrics.SweepRuns.Inc()
		s.metrics.SweepErrors.Add(float64(result.Errors))
		s.metrics.SweepDuration.Observe(elapsed.Seconds())
	}

	if result.Transitions > 0 || result.Expirations > 0 || result.Errors > 0 {
		s.logger.Info().
			Int("transitions", result.Transitions).
			Int("expirations", result.Expirations).
			Int("errors", result.Errors).
			Dur("elapsed", elapsed).
			Msg("sweep completed")
	}
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
