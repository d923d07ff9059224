package service

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

type Poller interface {
	Poll(ctx context.Context) (Outcome, error)
}

// Scheduler drives a Poller at a fixed interval until its context ends.
type Scheduler struct {
	poller   Poller
	interval time.Duration
	logger   *slog.Logger
}

func NewScheduler(poller Poller, interval time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{poller: poller, interval: interval, logger: logger.With("component", "scheduler")}
}

// Run polls once immediately and then on every tick. Poll errors are logged
// and do not stop the loop. It returns ctx.Err().
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("ingestion started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	lastOutcome := Outcome(-1)
	for {
		outcome, err := s.poller.Poll(ctx)
		switch {
		case err != nil && !errors.Is(err, context.Canceled):
			s.logger.Error("poll failed", "outcome", outcome.String(), "error", err)
		case outcome == IOFailed:
			s.logger.Warn("device read failed, reconnecting on next poll", "outcome", outcome.String())
		case outcome != lastOutcome && (outcome == Disconnected || lastOutcome == Disconnected):
			s.logger.Info("device state changed", "outcome", outcome.String())
		}
		lastOutcome = outcome

		select {
		case <-ctx.Done():
			s.logger.Info("ingestion stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
