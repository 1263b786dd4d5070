// Package scheduler runs jobs on cron expressions.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Debarshi-Chaudhuri/news-api/internal/logger"
)

// Standard 5-field parser (minute hour day month weekday) plus descriptors
// such as @hourly and @every 30m.
var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Job is a scheduled unit of work. ctx is cancelled when the scheduler stops.
type Job func(ctx context.Context)

// Validate reports whether spec is a valid cron expression.
func Validate(spec string) error {
	if _, err := parser.Parse(spec); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	return nil
}

// Cron runs jobs on cron schedules. A job still running when its next
// activation comes due is not started again, and panics are recovered.
type Cron struct {
	cron *cron.Cron
	log  logger.Logger

	mu  sync.RWMutex
	ctx context.Context
}

// New creates a scheduler. Schedules are evaluated in loc, or UTC when nil.
func New(log logger.Logger, loc *time.Location) *Cron {
	log = logger.Component(log, "scheduler")
	if loc == nil {
		loc = time.UTC
	}
	adapter := cronLogger{log: log}
	return &Cron{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLocation(loc),
			cron.WithLogger(adapter),
			cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
		),
		log: log,
		ctx: context.Background(),
	}
}

// Add registers job under name on spec.
func (c *Cron) Add(name, spec string, job Job) (cron.EntryID, error) {
	id, err := c.cron.AddFunc(spec, func() {
		started := time.Now()
		c.log.Info("Scheduled job started", logger.String("job", name))
		job(c.context())
		c.log.Info("Scheduled job finished",
			logger.String("job", name),
			logger.Duration("duration", time.Since(started)),
		)
	})
	if err != nil {
		return 0, fmt.Errorf("schedule %s: %w", name, err)
	}
	c.log.Info("Job scheduled", logger.String("job", name), logger.String("spec", spec))
	return id, nil
}

// Next returns the next activation of entry id.
func (c *Cron) Next(id cron.EntryID) time.Time {
	return c.cron.Entry(id).Next
}

// Run starts the scheduler and blocks until ctx is done, then waits for
// running jobs to return.
func (c *Cron) Run(ctx context.Context) error {
	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()

	c.cron.Start()
	c.log.Info("Cron scheduler started")

	<-ctx.Done()

	c.log.Info("Stopping cron scheduler")
	<-c.cron.Stop().Done()
	c.log.Info("Cron scheduler stopped")
	return ctx.Err()
}

func (c *Cron) context() context.Context {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ctx
}

// cronLogger adapts logger.Logger to cron.Logger.
type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, fields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append(fields(keysAndValues), logger.Error(err))...)
}

func fields(keysAndValues []any) []logger.Field {
	out := make([]logger.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}
		out = append(out, logger.Any(key, keysAndValues[i+1]))
	}
	return out
}
