package ingest

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/Debarshi-Chaudhuri/news-api/internal/coordination"
	"github.com/Debarshi-Chaudhuri/news-api/internal/logger"
)

// Guard runs fn while holding a lock shared with other processes. It
// returns coordination.ErrLockNotAcquired when another holder is active.
type Guard interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// RunCycle performs one full keyword run. Errors and panics are logged and
// swallowed so that a periodic caller keeps going. When a guard is set and
// another process holds it the cycle is skipped.
func (s *Service) RunCycle(ctx context.Context) {
	run := func(ctx context.Context) error {
		_, err := s.RunAllKeywords(ctx)
		return err
	}

	var err error
	if s.guard != nil {
		err = s.guard.Do(ctx, func(ctx context.Context) error { return s.safely(ctx, run) })
	} else {
		err = s.safely(ctx, run)
	}

	switch {
	case err == nil:
	case errors.Is(err, coordination.ErrLockNotAcquired):
		s.log.Info("Scraping cycle skipped, another instance is running")
	case ctx.Err() != nil:
		s.log.Info("Scraping cycle interrupted", logger.Error(err))
	default:
		s.log.Error("Error in scheduled scraping", logger.Error(err))
	}
}

func (s *Service) safely(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in scraping cycle: %v", r)
			s.log.Error("Recovered from panic",
				logger.Any("panic", r),
				logger.String("stack", string(debug.Stack())),
			)
		}
	}()
	return fn(ctx)
}

// SchedulePeriodic runs a cycle, sleeps for interval and repeats until ctx
// is cancelled, which is the only way it returns.
func (s *Service) SchedulePeriodic(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("invalid interval %s", interval)
	}

	for {
		s.log.Info("Starting scheduled news scraping")
		s.RunCycle(ctx)

		if err := ctx.Err(); err != nil {
			return err
		}
		s.log.Info("Sleeping until next scraping run", logger.Duration("interval", interval))
		if err := s.pacer.Pause(ctx, interval, interval); err != nil {
			return err
		}
	}
}
