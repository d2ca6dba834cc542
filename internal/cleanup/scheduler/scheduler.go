package scheduler

import (
	"time"

	"cubent-backend/internal/pairing/repository"

	"go.uber.org/zap"
)

// SweepScheduler periodically purges expired and stale pending logins so
// expiry does not depend solely on the external cleanup trigger.
type SweepScheduler struct {
	pendingRepo repository.PendingLoginRepository
	interval    time.Duration
	maxAge      time.Duration
	stopChan    chan struct{}
}

// NewSweepScheduler creates a new scheduler
func NewSweepScheduler(pendingRepo repository.PendingLoginRepository, interval, maxAge time.Duration) *SweepScheduler {
	return &SweepScheduler{
		pendingRepo: pendingRepo,
		interval:    interval,
		maxAge:      maxAge,
		stopChan:    make(chan struct{}),
	}
}

// Start begins the scheduler loop
func (s *SweepScheduler) Start() {
	zap.L().Info("Starting pending-login sweep scheduler", zap.Duration("interval", s.interval))

	go func() {
		// Run immediately on start
		s.sweep()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stopChan:
				zap.L().Info("Sweep scheduler stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the scheduler
func (s *SweepScheduler) Stop() {
	close(s.stopChan)
}

func (s *SweepScheduler) sweep() {
	expired, err := s.pendingRepo.DeleteExpired()
	if err != nil {
		zap.L().Error("Failed to delete expired pending logins", zap.Error(err))
	}

	old, err := s.pendingRepo.DeleteOlderThan(s.maxAge)
	if err != nil {
		zap.L().Error("Failed to delete stale pending logins", zap.Error(err))
	}

	if expired+old > 0 {
		zap.L().Info("Swept pending logins", zap.Int64("expired", expired), zap.Int64("old", old))
	}
}
