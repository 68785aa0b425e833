package scheduler

import (
	"context"
	"time"

	"shopPulse/pkg/logger"
)

type TenantSource interface {
	DistinctTenants(ctx context.Context) ([]string, error)
}

type TrendingCalculator interface {
	CalculateTrendingScores(ctx context.Context, tenantID string) error
}

type ActivityCleaner interface {
	CleanupOldActivities(ctx context.Context, tenantID string, daysOld int) (int64, error)
}

// ExpiredSweeper removes score rows whose expiry has passed.
type ExpiredSweeper interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type Config struct {
	Interval      time.Duration
	RetentionDays int
}

// TrendingScheduler drives the periodic trending recalculation and the
// retention sweeps from a single goroutine. Tenants are processed serially
// so one recalculation per tenant runs at a time.
type TrendingScheduler struct {
	tenants         TenantSource
	calculator      TrendingCalculator
	cleaner         ActivityCleaner
	trendingSweep   ExpiredSweeper
	similaritySweep ExpiredSweeper
	cfg             Config

	done chan struct{}
}

func NewTrendingScheduler(
	tenants TenantSource,
	calculator TrendingCalculator,
	cleaner ActivityCleaner,
	trendingSweep ExpiredSweeper,
	similaritySweep ExpiredSweeper,
	cfg Config,
) *TrendingScheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Minute
	}

	return &TrendingScheduler{
		tenants:         tenants,
		calculator:      calculator,
		cleaner:         cleaner,
		trendingSweep:   trendingSweep,
		similaritySweep: similaritySweep,
		cfg:             cfg,
		done:            make(chan struct{}),
	}
}

// Start runs the scheduler loop until ctx is cancelled. The first cycle runs
// after one full interval so startup is not front-loaded.
func (s *TrendingScheduler) Start(ctx context.Context) {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()

		logger.Info("trending scheduler started", "interval", s.cfg.Interval)

		for {
			select {
			case <-ctx.Done():
				logger.Info("trending scheduler stopped")
				return
			case <-ticker.C:
				s.runCycle(ctx)
			}
		}
	}()
}

// Wait blocks until the scheduler goroutine has exited.
func (s *TrendingScheduler) Wait() {
	<-s.done
}

func (s *TrendingScheduler) runCycle(ctx context.Context) {
	started := time.Now()

	tenantIDs, err := s.tenants.DistinctTenants(ctx)
	if err != nil {
		logger.Error("scheduler failed to list tenants", "error", err)
		return
	}

	for _, tenantID := range tenantIDs {
		if ctx.Err() != nil {
			return
		}

		if err := s.calculator.CalculateTrendingScores(ctx, tenantID); err != nil {
			// Other tenants still get their turn.
			logger.Error("scheduled recalculation failed", "tenant_id", tenantID, "error", err)
		}

		if _, err := s.cleaner.CleanupOldActivities(ctx, tenantID, s.cfg.RetentionDays); err != nil {
			logger.Error("scheduled activity cleanup failed", "tenant_id", tenantID, "error", err)
		}
	}

	s.sweepExpired(ctx)

	logger.Info("scheduler cycle finished", "tenants", len(tenantIDs), "took", time.Since(started))
}

func (s *TrendingScheduler) sweepExpired(ctx context.Context) {
	now := time.Now()

	if removed, err := s.trendingSweep.DeleteExpired(ctx, now); err != nil {
		logger.Error("expired trending sweep failed", "error", err)
	} else if removed > 0 {
		logger.Info("removed expired trending scores", "count", removed)
	}

	if removed, err := s.similaritySweep.DeleteExpired(ctx, now); err != nil {
		logger.Error("expired similarity sweep failed", "error", err)
	} else if removed > 0 {
		logger.Info("removed expired similarity scores", "count", removed)
	}
}
