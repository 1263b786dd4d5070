// Package dedup writes extracted drafts to the article store, collapsing
// drafts whose URLs normalize to the same value into one record.
package dedup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Debarshi-Chaudhuri/news-api/internal/domain"
	"github.com/Debarshi-Chaudhuri/news-api/internal/logger"
	"github.com/Debarshi-Chaudhuri/news-api/internal/metrics"
	"github.com/Debarshi-Chaudhuri/news-api/internal/storage"
	"github.com/Debarshi-Chaudhuri/news-api/internal/taxonomy"
	"github.com/Debarshi-Chaudhuri/news-api/internal/urlnorm"
)

// Policy decides what happens to a draft whose URL is already stored.
type Policy string

const (
	// PolicyMerge overwrites the stored fields and unions the tags.
	PolicyMerge Policy = "merge"
	// PolicySkip leaves the stored record untouched.
	PolicySkip Policy = "skip"
)

// Outcome is the result of an upsert.
type Outcome string

const (
	Inserted Outcome = "inserted"
	Merged   Outcome = "merged"
	Skipped  Outcome = "skipped"
)

// ErrNilDraft is returned by Upsert when given no draft.
var ErrNilDraft = errors.New("nil draft")

// Result is a stored record and how it got there.
type Result struct {
	Article *domain.Article
	Outcome Outcome
}

// Writer is the deduplicating store writer.
type Writer struct {
	store   storage.Store
	tax     *taxonomy.Taxonomy
	policy  Policy
	log     logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option customizes a Writer.
type Option func(*Writer)

// WithPolicy sets the duplicate policy. Unknown values fall back to PolicyMerge.
func WithPolicy(p Policy) Option {
	return func(w *Writer) { w.policy = p }
}

// WithMetrics records store outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Writer) { w.metrics = m }
}

// WithClock overrides the clock used for created_at and updated_at.
func WithClock(now func() time.Time) Option {
	return func(w *Writer) { w.now = now }
}

// NewWriter creates a writer on store. Tags are restricted to the vocabulary of tax.
func NewWriter(store storage.Store, tax *taxonomy.Taxonomy, log logger.Logger, opts ...Option) *Writer {
	w := &Writer{
		store:  store,
		tax:    tax,
		policy: PolicyMerge,
		log:    logger.Component(log, "dedup"),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.policy != PolicySkip {
		w.policy = PolicyMerge
	}
	return w
}

// Upsert stores d. A draft with an empty URL is always inserted. Otherwise
// the store is searched for a record with the same normalized URL and, when
// one exists, the draft is merged into it or skipped depending on the policy.
// Store failures are logged with the attempted record and returned.
func (w *Writer) Upsert(ctx context.Context, d *domain.Draft) (*Result, error) {
	if d == nil {
		return nil, ErrNilDraft
	}

	incoming := w.sanitize(d)

	if incoming.NormalizedURL != "" {
		existing, err := w.store.FindByNormalizedURL(ctx, incoming.NormalizedURL)
		switch {
		case err == nil:
			if w.policy == PolicySkip {
				w.log.Debug("Duplicate skipped",
					logger.String("id", existing.ID),
					logger.String("normalized_url", incoming.NormalizedURL),
				)
				w.metrics.Stored(metrics.OutcomeSkipped)
				return &Result{Article: existing, Outcome: Skipped}, nil
			}
			return w.merge(ctx, existing, incoming)
		case !errors.Is(err, storage.ErrNotFound):
			w.log.Error("Duplicate lookup failed",
				logger.String("normalized_url", incoming.NormalizedURL),
				logger.Error(err),
			)
			w.metrics.Stored(metrics.OutcomeFailed)
			return nil, fmt.Errorf("find by normalized url: %w", err)
		}
	}

	return w.insert(ctx, incoming)
}

func (w *Writer) insert(ctx context.Context, a *domain.Article) (*Result, error) {
	now := w.now()
	a.CreatedAt = now
	a.UpdatedAt = now

	stored, err := w.store.Insert(ctx, a)
	if err != nil {
		w.log.Error("Failed to insert article",
			logger.Any("article", a),
			logger.Error(err),
		)
		w.metrics.Stored(metrics.OutcomeFailed)
		return nil, fmt.Errorf("insert article: %w", err)
	}

	w.log.Info("Article inserted",
		logger.String("id", stored.ID),
		logger.String("url", stored.URL),
		logger.String("title", stored.Title),
	)
	w.metrics.Stored(metrics.OutcomeInserted)
	return &Result{Article: stored, Outcome: Inserted}, nil
}

func (w *Writer) merge(ctx context.Context, existing, incoming *domain.Article) (*Result, error) {
	merged := existing.Clone()
	merged.Title = incoming.Title
	merged.Content = incoming.Content
	merged.Summary = incoming.Summary
	merged.Author = incoming.Author
	merged.Source = incoming.Source
	merged.PublishedDate = incoming.PublishedDate
	merged.Categories = incoming.Categories
	merged.Tags = unionTags(existing.Tags, incoming.Tags)
	if merged.NormalizedURL == "" {
		merged.NormalizedURL = incoming.NormalizedURL
	}

	now := w.now()
	if !now.After(existing.UpdatedAt) {
		now = existing.UpdatedAt.Add(time.Millisecond)
	}
	merged.UpdatedAt = now

	fields := merged.Fields()
	if err := w.store.Update(ctx, existing.ID, fields); err != nil {
		w.log.Error("Failed to update article",
			logger.String("id", existing.ID),
			logger.Any("fields", fields),
			logger.Error(err),
		)
		w.metrics.Stored(metrics.OutcomeFailed)
		return nil, fmt.Errorf("update article %s: %w", existing.ID, err)
	}

	w.log.Info("Article merged",
		logger.String("id", merged.ID),
		logger.String("url", merged.URL),
		logger.Int("tags", len(merged.Tags)),
	)
	w.metrics.Stored(metrics.OutcomeMerged)
	return &Result{Article: merged, Outcome: Merged}, nil
}

// sanitize converts d into a record ready to store: placeholders replace
// missing title and content, tags are lowercased, deduplicated and limited
// to the taxonomy vocabulary.
func (w *Writer) sanitize(d *domain.Draft) *domain.Article {
	a := &domain.Article{
		Title:         strings.TrimSpace(d.Title),
		Content:       strings.TrimSpace(d.Content),
		Summary:       strings.TrimSpace(d.Summary),
		Author:        strings.TrimSpace(d.Author),
		Source:        strings.TrimSpace(d.Source),
		PublishedDate: d.PublishedDate,
		Categories:    uniqueTrimmed(d.Categories),
		URL:           strings.TrimSpace(d.URL),
	}
	if a.Title == "" {
		a.Title = domain.UntitledTitle
	}
	if a.Content == "" {
		a.Content = domain.NoContentMessage
	}
	if a.PublishedDate.IsZero() {
		a.PublishedDate = w.now()
	}
	a.NormalizedURL = urlnorm.Normalize(a.URL)

	var dropped []string
	for _, tag := range unionTags(nil, d.Tags) {
		if w.tax != nil && !w.tax.IsKeyword(tag) {
			dropped = append(dropped, tag)
			continue
		}
		a.Tags = append(a.Tags, tag)
	}
	if len(dropped) > 0 {
		w.log.Debug("Dropped tags outside the taxonomy",
			logger.String("url", a.URL),
			logger.Strings("tags", dropped),
		)
	}
	return a
}

// unionTags returns base followed by the tags of extra not already present.
// Comparison and output are lowercase.
func unionTags(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base)+len(extra))
	var out []string
	for _, list := range [][]string{base, extra} {
		for _, tag := range list {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag == "" {
				continue
			}
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}
	return out
}

func uniqueTrimmed(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
