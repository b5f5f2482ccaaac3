package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"StockPulse/internal/usecase"
	applogger "StockPulse/pkg/logger"
)

// Scheduler triggers one watchlist run per day at a fixed wall-clock time
// in the configured timezone.
type Scheduler struct {
	watchlist *usecase.WatchlistUseCase
	hour      int
	minute    int
	loc       *time.Location
	l         *applogger.Logger

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// New parses runAt ("15:04") in the given timezone. An empty timezone
// means UTC.
func New(watchlist *usecase.WatchlistUseCase, runAt, timezone string, l *applogger.Logger) (*Scheduler, error) {
	at, err := time.Parse("15:04", runAt)
	if err != nil {
		return nil, fmt.Errorf("scheduler run_at %q: %w", runAt, err)
	}
	loc := time.UTC
	if timezone != "" {
		loc, err = time.LoadLocation(timezone)
		if err != nil {
			return nil, fmt.Errorf("scheduler timezone %q: %w", timezone, err)
		}
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &Scheduler{
		watchlist: watchlist,
		hour:      at.Hour(),
		minute:    at.Minute(),
		loc:       loc,
		l:         l,
		done:      make(chan struct{}),
	}, nil
}

// NextRun returns the first trigger strictly after now.
func (s *Scheduler) NextRun(now time.Time) time.Time {
	local := now.In(s.loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), s.hour, s.minute, 0, 0, s.loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Start launches the scheduling loop.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	go s.loop(ctx)
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)
	for {
		next := s.NextRun(time.Now())
		wait := time.Until(next)
		s.l.Info("scheduler sleeping until next run",
			applogger.String("next_run", next.Format(time.RFC3339)),
			applogger.Duration("wait_ms", wait),
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		batch := s.watchlist.RunAll(ctx, nil)
		s.l.Info("scheduled run finished",
			applogger.Int("instruments", len(batch.Reports)),
			applogger.Int("failed", batch.Failed),
		)
	}
}

// Stop cancels the loop and waits for it to exit.
func (s *Scheduler) Stop() {
	s.once.Do(func() {
		if s.cancel == nil {
			return
		}
		s.cancel()
		<-s.done
	})
}
