package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/wagglex2/waggle/internal/auth/store"
)

// SweepMetrics receives the result of every sweep.
type SweepMetrics interface {
	RecordSweep(removed int64, err error)
}

// HousekeepingService periodically removes lapsed rotation records from
// backends without native expiry.
type HousekeepingService struct {
	Sweeper  store.Sweeper
	Logger   *slog.Logger
	Interval time.Duration
	Metrics  SweepMetrics

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(sweeper store.Sweeper, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Sweeper:  sweeper,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until an in-progress sweep has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Sweep(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Sweep(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Sweep runs one cleanup pass and returns the number of records removed.
func (s *HousekeepingService) Sweep(ctx context.Context) int64 {
	n, err := s.Sweeper.DeleteExpired(ctx)
	if s.Metrics != nil {
		s.Metrics.RecordSweep(n, err)
	}
	if err != nil {
		s.Logger.Error("failed to delete expired rotation records", "error", err)
		return 0
	}
	s.Logger.Debug("housekeeping cleanup completed", "deleted", n)
	return n
}
