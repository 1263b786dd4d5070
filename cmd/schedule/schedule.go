// Package schedule implements the long-running scheduled scrape command.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Debarshi-Chaudhuri/news-api/cmd/common"
	"github.com/Debarshi-Chaudhuri/news-api/internal/config"
	"github.com/Debarshi-Chaudhuri/news-api/internal/ingest"
	"github.com/Debarshi-Chaudhuri/news-api/internal/logger"
	"github.com/Debarshi-Chaudhuri/news-api/internal/scheduler"
	"github.com/Debarshi-Chaudhuri/news-api/internal/server"
)

// Command returns the schedule command.
func Command() *cobra.Command {
	var (
		interval time.Duration
		spec     string
	)
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the all-keywords scrape periodically until interrupted",
		Long: `Schedule repeats the all-keywords scrape, either every --interval
or on a five-field --cron expression. When redis.address is set only one
replica scrapes at a time. When metrics.address is set /health and
/metrics are served there.

Examples:
  news-api schedule --interval 30m
  news-api schedule --cron "0 */2 * * *"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := common.NewDeps()
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}
			defer func() { _ = deps.Logger.Sync() }()

			if cmd.Flags().Changed("interval") {
				deps.Config.Scraper.Interval = interval
			}
			if cmd.Flags().Changed("cron") {
				deps.Config.Scraper.Cron = spec
			}
			return run(cmd.Context(), deps)
		},
	}
	cmd.Flags().DurationVarP(&interval, "interval", "i", 0, "Pause between runs (default scraper.interval)")
	cmd.Flags().StringVar(&spec, "cron", "", "Cron expression, overrides --interval (default scraper.cron)")
	return cmd
}

func run(ctx context.Context, deps *common.Deps) error {
	log := deps.Logger
	sc := deps.Config.Scraper
	if sc.Cron != "" {
		if err := scheduler.Validate(sc.Cron); err != nil {
			return err
		}
	} else if sc.Interval <= 0 {
		return errors.New("interval must be positive")
	}

	store, err := deps.Store(ctx)
	if err != nil {
		return fmt.Errorf("failed to create storage: %w", err)
	}

	var opts []ingest.Option
	lock, redisClient, err := deps.RunLock(ctx)
	if err != nil {
		return err
	}
	if lock != nil {
		defer func() { _ = redisClient.Close() }()
		opts = append(opts, ingest.WithGuard(lock))
		log.Info("Run lock enabled", logger.String("key", lock.Key()))
	}

	svc, err := deps.Service(store, opts...)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	if addr := deps.Config.Metrics.Address; addr != "" {
		srv := server.New(server.Config{
			Address:     addr,
			ServiceName: deps.Config.App.Name,
			Metrics:     deps.Metrics.Handler(),
			Checks:      healthChecks(deps, redisClient),
		}, log)
		g.Go(func() error { return srv.Run(gctx) })
	}

	g.Go(func() error {
		if sc.Cron == "" {
			return svc.SchedulePeriodic(gctx, sc.Interval)
		}
		c := scheduler.New(log, time.Local)
		id, addErr := c.Add("scrape-all", sc.Cron, svc.RunCycle)
		if addErr != nil {
			return addErr
		}
		log.Info("Cron schedule registered",
			logger.String("cron", sc.Cron),
			logger.Time("next", c.Next(id)),
		)
		return c.Run(gctx)
	})

	if err = g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("Scheduler stopped")
	return nil
}

func healthChecks(deps *common.Deps, rc *redis.Client) map[string]server.HealthChecker {
	checks := make(map[string]server.HealthChecker)
	if deps.Config.Storage.Driver == config.StorageElasticsearch {
		checks["elasticsearch"] = func(ctx context.Context) error {
			client, err := deps.ElasticsearchClient(ctx)
			if err != nil {
				return err
			}
			res, err := client.Ping(client.Ping.WithContext(ctx))
			if err != nil {
				return err
			}
			defer res.Body.Close()
			if res.IsError() {
				return fmt.Errorf("ping: %s", res.Status())
			}
			return nil
		}
	}
	if rc != nil {
		checks["redis"] = func(ctx context.Context) error {
			return rc.Ping(ctx).Err()
		}
	}
	return checks
}
