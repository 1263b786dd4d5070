// Package taxonomy implements the commands that inspect the industry taxonomy.
package taxonomy

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Debarshi-Chaudhuri/news-api/cmd/common"
)

// Command returns the taxonomy command group. It only reads taxonomy.file
// so it works without a reachable store.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taxonomy",
		Short: "Inspect the industry taxonomy",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List categories with their keyword and image counts",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				tax, err := common.LoadTaxonomy(viper.GetString("taxonomy.file"))
				if err != nil {
					return err
				}
				common.RenderTaxonomy(os.Stdout, tax)
				return nil
			},
		},
		&cobra.Command{
			Use:   "keywords [category]",
			Short: "List the keywords of one category, or of all categories",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				tax, err := common.LoadTaxonomy(viper.GetString("taxonomy.file"))
				if err != nil {
					return err
				}
				var category string
				if len(args) == 1 {
					category = args[0]
				}
				return common.RenderKeywords(os.Stdout, tax, category)
			},
		},
		&cobra.Command{
			Use:   "match <text>",
			Short: "Show which taxonomy terms a piece of text mentions",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				tax, err := common.LoadTaxonomy(viper.GetString("taxonomy.file"))
				if err != nil {
					return err
				}
				terms := tax.MatchTerms(args[0])
				if len(terms) == 0 {
					_, _ = fmt.Fprintln(os.Stdout, "No taxonomy terms found")
					return nil
				}
				t := common.NewTable(os.Stdout)
				t.AppendHeader(table.Row{"Term", "Category"})
				for _, term := range terms {
					category, _ := tax.CategoryOf(term)
					t.AppendRow(table.Row{term, category})
				}
				t.Render()
				return nil
			},
		},
	)
	return cmd
}
