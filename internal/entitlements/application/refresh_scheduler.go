package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/felixgeelhaar/coachly/internal/entitlements/domain"
)

// Refresher re-reads entitlements from the purchase provider.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefreshScheduler re-reads entitlements on a cron schedule so a
// long-running process notices renewals and expirations.
type RefreshScheduler struct {
	cron    *cron.Cron
	store   Refresher
	logger  *slog.Logger
	timeout time.Duration
}

// NewRefreshScheduler validates spec (standard cron or @every) and
// registers the refresh job. Call Start to run it.
func NewRefreshScheduler(store Refresher, spec string, logger *slog.Logger) (*RefreshScheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelWarn))
	s := &RefreshScheduler{
		cron:    cron.New(cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger))),
		store:   store,
		logger:  logger.With("component", "refresh_scheduler"),
		timeout: 30 * time.Second,
	}
	if _, err := s.cron.AddFunc(spec, s.refresh); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start runs the schedule in the background.
func (s *RefreshScheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduled entitlement refresh")
}

// Stop halts the schedule. The returned context is done when a running
// refresh has finished.
func (s *RefreshScheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *RefreshScheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	err := s.store.Refresh(ctx)
	switch {
	case err == nil:
		s.logger.Debug("entitlements refreshed")
	case errors.Is(err, domain.ErrOperationInProgress), errors.Is(err, domain.ErrNotReady):
		s.logger.Debug("entitlement refresh skipped", "reason", err)
	default:
		s.logger.Warn("entitlement refresh failed", "error", err)
	}
}
