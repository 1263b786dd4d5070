// Package scrape implements the one-shot scrape commands.
package scrape

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Debarshi-Chaudhuri/news-api/cmd/common"
	"github.com/Debarshi-Chaudhuri/news-api/internal/ingest"
	"github.com/Debarshi-Chaudhuri/news-api/internal/logger"
)

// Command returns the scrape command group.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Search, extract and store news articles once",
		Long: `Scrape runs a single ingestion pass and exits.

Examples:
  # One keyword, tagged with its own text
  news-api scrape keyword "solar power" --max 3

  # Every keyword in the taxonomy
  news-api scrape all

  # One industry category, or all categories when none is given
  news-api scrape industry "Textiles & Garments"`,
	}
	cmd.AddCommand(keywordCommand(), allCommand(), industryCommand())
	return cmd
}

func keywordCommand() *cobra.Command {
	var (
		category string
		limit    int
	)
	cmd := &cobra.Command{
		Use:   "keyword <keyword>",
		Short: "Scrape articles for one keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.NewDeps()
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}
			defer func() { _ = deps.Logger.Sync() }()

			ctx := cmd.Context()
			store, err := deps.Store(ctx)
			if err != nil {
				return fmt.Errorf("failed to create storage: %w", err)
			}
			svc, err := deps.Service(store)
			if err != nil {
				return err
			}
			if limit <= 0 {
				limit = deps.Config.Scraper.MaxArticlesPerKeyword
			}

			stats := ingest.RunStats{Mode: ingest.ModeKeyword, Keywords: 1, StartedAt: time.Now()}
			stored, err := svc.ProcessKeyword(ctx, args[0], category, limit)
			stats.Stored = stored
			stats.Duration = time.Since(stats.StartedAt)
			if err != nil {
				return err
			}
			deps.Logger.Info("Keyword scrape finished",
				logger.String("keyword", args[0]),
				logger.Int("stored", stored),
			)
			common.RenderRunStats(os.Stdout, stats)
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category attached to every stored article")
	cmd.Flags().IntVarP(&limit, "max", "m", 0, "Maximum articles to process (default scraper.max_articles_per_keyword)")
	return cmd
}

func allCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Scrape every taxonomy keyword",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := common.NewDeps()
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}
			defer func() { _ = deps.Logger.Sync() }()

			ctx := cmd.Context()
			store, err := deps.Store(ctx)
			if err != nil {
				return fmt.Errorf("failed to create storage: %w", err)
			}
			svc, err := deps.Service(store)
			if err != nil {
				return err
			}
			stats, err := svc.RunAllKeywords(ctx)
			common.RenderRunStats(os.Stdout, stats)
			return err
		},
	}
}

func industryCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "industry [category]",
		Short: "Scrape one industry category, or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.NewDeps()
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}
			defer func() { _ = deps.Logger.Sync() }()

			var category string
			if len(args) == 1 {
				category = args[0]
				if _, ok := deps.Taxonomy.Category(category); !ok {
					return fmt.Errorf("%w: %q", ingest.ErrUnknownCategory, category)
				}
			}

			ctx := cmd.Context()
			store, err := deps.Store(ctx)
			if err != nil {
				return fmt.Errorf("failed to create storage: %w", err)
			}
			svc, err := deps.Service(store)
			if err != nil {
				return err
			}
			stats, err := svc.RunIndustrySpecific(ctx, category, limit)
			common.RenderRunStats(os.Stdout, stats)
			return err
		},
	}
	cmd.Flags().IntVarP(&limit, "max", "m", 0,
		"Maximum articles per keyword (default scraper.industry_max_articles_per_keyword)")
	return cmd
}
