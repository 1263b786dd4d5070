// Package index implements the Elasticsearch index management commands.
package index

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Debarshi-Chaudhuri/news-api/cmd/common"
	"github.com/Debarshi-Chaudhuri/news-api/internal/logger"
)

// Command returns the index command group.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Manage the Elasticsearch articles index",
	}
	cmd.AddCommand(createCommand(), deleteCommand())
	return cmd
}

func createCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create the articles index with its mapping if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := common.NewDeps()
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}
			defer func() { _ = deps.Logger.Sync() }()

			store, err := deps.ElasticsearchStore(cmd.Context())
			if err != nil {
				return err
			}
			if err = store.EnsureIndex(cmd.Context()); err != nil {
				return fmt.Errorf("failed to create index %s: %w", store.IndexName(), err)
			}
			deps.Logger.Info("Index ready", logger.String("index", store.IndexName()))
			return nil
		},
	}
}

func deleteCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete the articles index and every stored article",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := common.NewDeps()
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}
			defer func() { _ = deps.Logger.Sync() }()

			store, err := deps.ElasticsearchStore(cmd.Context())
			if err != nil {
				return err
			}
			if !force {
				return fmt.Errorf("refusing to delete index %s without --force", store.IndexName())
			}
			if err = store.DeleteIndex(cmd.Context()); err != nil {
				return fmt.Errorf("failed to delete index %s: %w", store.IndexName(), err)
			}
			deps.Logger.Info("Index deleted", logger.String("index", store.IndexName()))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Confirm deletion")
	return cmd
}
