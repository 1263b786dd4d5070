package common

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Debarshi-Chaudhuri/news-api/internal/domain"
	"github.com/Debarshi-Chaudhuri/news-api/internal/ingest"
	"github.com/Debarshi-Chaudhuri/news-api/internal/taxonomy"
)

// PreviewLength caps the content column of article tables.
const PreviewLength = 80

// NewTable returns a rounded table writer mirrored to out.
func NewTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	t.Style().Options.DrawBorder = true
	return t
}

// RenderRunStats prints the summary of a scrape run.
func RenderRunStats(out io.Writer, stats ingest.RunStats) {
	t := NewTable(out)
	t.AppendHeader(table.Row{"Mode", "Keywords", "Stored", "Started", "Duration"})
	t.AppendRow(table.Row{
		stats.Mode,
		stats.Keywords,
		stats.Stored,
		stats.StartedAt.Format("2006-01-02 15:04:05"),
		stats.Duration.Round(time.Millisecond).String(),
	})
	t.Render()
}

// RenderArticles prints one row per article view.
func RenderArticles(out io.Writer, views []domain.ArticleView, total int, query string) {
	t := NewTable(out)
	t.Style().Options.SeparateRows = true
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, WidthMax: 50},
		{Number: 4, WidthMax: PreviewLength},
	})
	t.AppendHeader(table.Row{"#", "Published", "Title", "Preview", "Tags", "Categories", "Image"})
	for i, v := range views {
		t.AppendRow(table.Row{
			i + 1,
			v.PublishedDate.Format("2006-01-02"),
			v.Title,
			Truncate(v.Summary, PreviewLength),
			v.TagsString(),
			v.CategoriesString(),
			v.ImageURL,
		})
	}
	t.AppendFooter(table.Row{"Total", total, fmt.Sprintf("Query: %s", query)})
	t.Render()
}

// RenderTaxonomy prints every category with its keyword and image counts.
func RenderTaxonomy(out io.Writer, tax *taxonomy.Taxonomy) {
	t := NewTable(out)
	t.AppendHeader(table.Row{"#", "Category", "Keywords", "Images"})
	for i, c := range tax.Categories() {
		t.AppendRow(table.Row{i + 1, c.Name, len(c.Keywords), len(c.Images)})
	}
	t.AppendFooter(table.Row{"", "Qualifiers", strings.Join(tax.Qualifiers(), ", "), ""})
	t.Render()
}

// RenderKeywords prints the keywords of one category, or of all of them
// when category is empty.
func RenderKeywords(out io.Writer, tax *taxonomy.Taxonomy, category string) error {
	cats := tax.Categories()
	if category != "" {
		c, ok := tax.Category(category)
		if !ok {
			return fmt.Errorf("%w: %q", ingest.ErrUnknownCategory, category)
		}
		cats = []taxonomy.Category{c}
	}
	t := NewTable(out)
	t.AppendHeader(table.Row{"Category", "Keyword"})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 1, AutoMerge: true}})
	for _, c := range cats {
		for _, kw := range c.Keywords {
			t.AppendRow(table.Row{c.Name, kw})
		}
	}
	t.Render()
	return nil
}

// Truncate shortens s to at most n runes, appending an ellipsis when cut.
func Truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
