package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/ponliv/marketplace/internal/marketplace/store"
	"github.com/prometheus/client_golang/prometheus"
)

// HousekeepingService periodically prunes expired entries from the logout
// ledger so it does not grow without bound.
type HousekeepingService struct {
	Ledger   store.RevokedTokens
	Logger   *slog.Logger
	Interval time.Duration

	pruned prometheus.Counter

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates the worker. A non-positive interval
// defaults to one hour. reg may be nil.
func NewHousekeepingService(ledger store.RevokedTokens, logger *slog.Logger, interval time.Duration, reg prometheus.Registerer) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}

	pruned := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "marketplace",
		Name:      "revoked_tokens_pruned_total",
		Help:      "Expired revoked-token entries removed by housekeeping.",
	})
	if reg != nil {
		reg.MustRegister(pruned)
	}

	return &HousekeepingService{
		Ledger:   ledger,
		Logger:   logger,
		Interval: interval,
		pruned:   pruned,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until an in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup runs one pruning pass and returns the number of entries removed.
func (s *HousekeepingService) Cleanup(ctx context.Context) int64 {
	ctx, cancel := context.WithTimeout(ctx, DefaultStoreTimeout)
	defer cancel()

	n, err := s.Ledger.DeleteExpiredRevokedTokens(ctx, time.Now().UTC())
	if err != nil {
		s.Logger.Error("failed to delete expired revoked tokens", "error", err)
		return 0
	}

	s.pruned.Add(float64(n))
	s.Logger.Info("housekeeping cleanup completed", "revoked_tokens_pruned", n)
	return n
}
