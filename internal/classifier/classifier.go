// Package classifier maps article tags onto taxonomy categories and picks a
// decorative category image for display.
package classifier

import (
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/Debarshi-Chaudhuri/news-api/internal/domain"
	"github.com/Debarshi-Chaudhuri/news-api/internal/logger"
	"github.com/Debarshi-Chaudhuri/news-api/internal/taxonomy"
)

// Classifier classifies tags against a taxonomy.
type Classifier struct {
	tax *taxonomy.Taxonomy
	log logger.Logger

	mu   sync.Mutex
	intn func(n int) int
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithIntn replaces the source used to pick images. intn(n) must return a
// value in [0, n).
func WithIntn(intn func(n int) int) Option {
	return func(c *Classifier) { c.intn = intn }
}

// New creates a classifier for tax.
func New(tax *taxonomy.Taxonomy, log logger.Logger, opts ...Option) *Classifier {
	c := &Classifier{
		tax:  tax,
		log:  logger.Component(log, "classifier"),
		intn: rand.IntN,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns the categories matched by tags, in the order the tags
// first matched and without duplicates. Each tag matches the first category,
// in taxonomy order, whose keyword list contains it ignoring case.
func (c *Classifier) Classify(tags []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, tag := range tags {
		name, ok := c.tax.CategoryOf(tag)
		if !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// Enrich appends the categories matched by the draft's tags to its
// categories and returns them.
func (c *Classifier) Enrich(d *domain.Draft) []string {
	if d == nil {
		return nil
	}
	matched := c.Classify(d.Tags)
	for _, name := range matched {
		d.AddCategory(name)
	}
	if len(matched) > 0 {
		c.log.Debug("Draft classified",
			logger.String("url", d.URL),
			logger.Strings("categories", matched),
		)
	}
	return matched
}

// SelectImage picks an image uniformly at random from the first category in
// categories that has any. It returns "" when none does.
func (c *Classifier) SelectImage(categories []string) string {
	for _, name := range categories {
		images := c.tax.Images(name)
		if len(images) == 0 {
			continue
		}
		c.mu.Lock()
		i := c.intn(len(images))
		c.mu.Unlock()
		return images[i]
	}
	return ""
}

// Present builds the display form of a. The image is chosen from the
// categories matched by a's tags and is never written back to a.
func (c *Classifier) Present(a *domain.Article) domain.ArticleView {
	if a == nil {
		return domain.ArticleView{}
	}
	view := domain.ArticleView{Article: *a.Clone()}
	view.ImageURL = c.SelectImage(c.Classify(a.Tags))
	if view.ImageURL == "" {
		// Stored categories may name an industry directly.
		view.ImageURL = c.SelectImage(filterKnown(c.tax, a.Categories))
	}
	return view
}

func filterKnown(tax *taxonomy.Taxonomy, names []string) []string {
	var out []string
	for _, n := range names {
		if _, ok := tax.Category(strings.TrimSpace(n)); ok {
			out = append(out, n)
		}
	}
	return out
}
