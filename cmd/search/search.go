// Package search implements the search command over stored articles.
package search

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Debarshi-Chaudhuri/news-api/cmd/common"
	"github.com/Debarshi-Chaudhuri/news-api/internal/domain"
	"github.com/Debarshi-Chaudhuri/news-api/internal/storage"
)

// Command returns the search command.
func Command() *cobra.Command {
	var q storage.SearchQuery
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search stored articles",
		Long: `Search runs a full-text query with optional filters over the stored
articles and prints each hit with a decorative image chosen from its
industry category.

Examples:
  news-api search "solar"
  news-api search --tag khadi --sort published_date --order desc
  news-api search "exports" --category "Textiles & Garments" --page 2`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				q.Query = args[0]
			}
			deps, err := common.NewDeps()
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}
			defer func() { _ = deps.Logger.Sync() }()

			store, err := deps.Store(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to create storage: %w", err)
			}
			res, err := store.Search(cmd.Context(), q)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}

			cls := deps.Classifier()
			views := make([]domain.ArticleView, 0, len(res.Items))
			for _, a := range res.Items {
				views = append(views, cls.Present(a))
			}
			common.RenderArticles(os.Stdout, views, res.Total, q.Query)
			_, _ = fmt.Fprintf(os.Stdout, "Page %d, %d per page\n", res.Page, res.Limit)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringSliceVarP(&q.Tags, "tag", "t", nil, "Only articles with this tag (repeatable)")
	f.StringSliceVarP(&q.Categories, "category", "c", nil, "Only articles in this category (repeatable)")
	f.StringVarP(&q.Source, "source", "s", "", "Only articles from this source")
	f.IntVarP(&q.Page, "page", "p", 1, "Page number, starting at 1")
	f.IntVarP(&q.Limit, "limit", "l", storage.DefaultPageSize, "Results per page")
	f.StringVar(&q.SortField, "sort", storage.DefaultSort, "Sort field: published_date, created_at, updated_at or _score")
	f.StringVar(&q.SortOrder, "order", storage.SortDesc, "Sort order: asc or desc")
	return cmd
}
