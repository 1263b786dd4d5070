// Package ingest drives the pipeline: search for a keyword, extract each
// candidate article and hand it to the deduplicating writer.
package ingest

//go:generate mockgen -destination=mocks/mock_ingest.go -package=mocks github.com/Debarshi-Chaudhuri/news-api/internal/ingest Searcher,ArticleExtractor,ArticleWriter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Debarshi-Chaudhuri/news-api/internal/dedup"
	"github.com/Debarshi-Chaudhuri/news-api/internal/domain"
	"github.com/Debarshi-Chaudhuri/news-api/internal/extractor"
	"github.com/Debarshi-Chaudhuri/news-api/internal/logger"
	"github.com/Debarshi-Chaudhuri/news-api/internal/metrics"
	"github.com/Debarshi-Chaudhuri/news-api/internal/taxonomy"
)

// Run modes, used as the metrics label.
const (
	ModeAll      = "all"
	ModeIndustry = "industry"
	ModeKeyword  = "keyword"
)

// ErrUnknownCategory is returned for an industry run on a category the
// taxonomy does not contain.
var ErrUnknownCategory = errors.New("unknown category")

// Searcher finds candidate article URLs. It returns an empty list on failure.
type Searcher interface {
	Search(ctx context.Context, keyword, categoryHint string) []string
}

// ArticleExtractor turns a URL into a draft.
type ArticleExtractor interface {
	Extract(ctx context.Context, url string) (*domain.Draft, error)
}

// ArticleWriter stores drafts.
type ArticleWriter interface {
	Upsert(ctx context.Context, d *domain.Draft) (*dedup.Result, error)
}

// Enricher adds derived categories to a draft before it is stored.
type Enricher interface {
	Enrich(d *domain.Draft) []string
}

// Config holds the limits and delays of a run.
type Config struct {
	MaxArticlesPerKeyword         int
	IndustryMaxArticlesPerKeyword int
	KeywordDelayMin               time.Duration
	KeywordDelayMax               time.Duration
	CategoryDelayMin              time.Duration
	CategoryDelayMax              time.Duration
}

// DefaultConfig returns the stock limits and delays.
func DefaultConfig() Config {
	return Config{
		MaxArticlesPerKeyword:         5,
		IndustryMaxArticlesPerKeyword: 2,
		KeywordDelayMin:               3 * time.Second,
		KeywordDelayMax:               5 * time.Second,
		CategoryDelayMin:              5 * time.Second,
		CategoryDelayMax:              8 * time.Second,
	}
}

// RunStats summarizes one run.
type RunStats struct {
	Mode      string
	Keywords  int
	Stored    int
	StartedAt time.Time
	Duration  time.Duration
}

// Service is the ingestion orchestrator. It processes one keyword at a time.
type Service struct {
	tax       *taxonomy.Taxonomy
	searcher  Searcher
	extractor ArticleExtractor
	writer    ArticleWriter
	enricher  Enricher
	pacer     Pacer
	guard     Guard
	cfg       Config
	log       logger.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithEnricher classifies each draft before it is written.
func WithEnricher(e Enricher) Option {
	return func(s *Service) { s.enricher = e }
}

// WithPacer replaces the pacer used between keywords and categories.
func WithPacer(p Pacer) Option {
	return func(s *Service) { s.pacer = p }
}

// WithGuard makes periodic cycles run only while holding g.
func WithGuard(g Guard) Option {
	return func(s *Service) { s.guard = g }
}

// WithMetrics records run durations on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService wires the pipeline stages together.
func NewService(
	tax *taxonomy.Taxonomy,
	searcher Searcher,
	ext ArticleExtractor,
	writer ArticleWriter,
	cfg Config,
	log logger.Logger,
	opts ...Option,
) *Service {
	def := DefaultConfig()
	if cfg.MaxArticlesPerKeyword <= 0 {
		cfg.MaxArticlesPerKeyword = def.MaxArticlesPerKeyword
	}
	if cfg.IndustryMaxArticlesPerKeyword <= 0 {
		cfg.IndustryMaxArticlesPerKeyword = def.IndustryMaxArticlesPerKeyword
	}

	s := &Service{
		tax:       tax,
		searcher:  searcher,
		extractor: ext,
		writer:    writer,
		pacer:     RandomPacer{},
		cfg:       cfg,
		log:       logger.Component(log, "ingest"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessKeyword searches for keyword and stores up to maxArticles of the
// results, tagging each with keyword and, when categoryHint is set, adding
// it to the categories. A non-positive maxArticles uses the configured
// default. It returns the number of articles stored. Failures of single
// URLs are logged and skipped; only cancellation of ctx is returned.
func (s *Service) ProcessKeyword(ctx context.Context, keyword, categoryHint string, maxArticles int) (int, error) {
	return s.process(ctx, keyword, keyword, categoryHint, maxArticles)
}

func (s *Service) process(ctx context.Context, query, tag, categoryHint string, maxArticles int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if maxArticles <= 0 {
		maxArticles = s.cfg.MaxArticlesPerKeyword
	}

	log := s.log.With(logger.String("query", query))
	urls := s.searcher.Search(ctx, query, categoryHint)
	if len(urls) == 0 {
		log.Info("No search results")
		return 0, nil
	}
	if len(urls) > maxArticles {
		urls = urls[:maxArticles]
	}

	stored := 0
	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return stored, err
		}
		if s.processURL(ctx, log, u, tag, categoryHint) {
			stored++
		}
	}

	log.Info("Keyword processed",
		logger.Int("candidates", len(urls)),
		logger.Int("stored", stored),
	)
	return stored, nil
}

func (s *Service) processURL(ctx context.Context, log logger.Logger, u, tag, categoryHint string) bool {
	log = log.With(logger.String("url", u))

	draft, err := s.extractor.Extract(ctx, u)
	if err != nil {
		if errors.Is(err, extractor.ErrMissingFields) {
			log.Info("Skipping page without article content")
		} else {
			log.Warn("Extraction failed", logger.Error(err))
		}
		return false
	}

	draft.AddTag(tag)
	if categoryHint != "" {
		draft.AddCategory(categoryHint)
	}
	if s.enricher != nil {
		s.enricher.Enrich(draft)
	}

	res, err := s.writer.Upsert(ctx, draft)
	if err != nil {
		log.Error("Failed to store article", logger.Error(err))
		return false
	}
	return res.Outcome != dedup.Skipped
}

// RunAllKeywords processes every term of the flattened taxonomy in order,
// pausing between keywords.
func (s *Service) RunAllKeywords(ctx context.Context) (RunStats, error) {
	stats := RunStats{Mode: ModeAll, StartedAt: s.now()}
	defer s.finish(&stats)

	keywords := s.tax.Flattened()
	for i, kw := range keywords {
		n, err := s.ProcessKeyword(ctx, kw, "", s.cfg.MaxArticlesPerKeyword)
		stats.Stored += n
		if err != nil {
			return stats, err
		}
		stats.Keywords++

		if i < len(keywords)-1 {
			if err = s.pacer.Pause(ctx, s.cfg.KeywordDelayMin, s.cfg.KeywordDelayMax); err != nil {
				return stats, err
			}
		}
	}
	return stats, nil
}

// RunIndustrySpecific processes one category, or every category when
// category is empty. Each category is searched by name first, then as
// "<keyword> <category>" for each of its keywords with maxPerKeyword
// results each (the configured industry default when non-positive).
func (s *Service) RunIndustrySpecific(ctx context.Context, category string, maxPerKeyword int) (RunStats, error) {
	stats := RunStats{Mode: ModeIndustry, StartedAt: s.now()}

	var categories []taxonomy.Category
	if category == "" {
		categories = s.tax.Categories()
	} else {
		c, ok := s.tax.Category(category)
		if !ok {
			s.log.Error("Invalid industry category", logger.String("category", category))
			return stats, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
		}
		categories = []taxonomy.Category{c}
	}
	if maxPerKeyword <= 0 {
		maxPerKeyword = s.cfg.IndustryMaxArticlesPerKeyword
	}
	defer s.finish(&stats)

	for ci, c := range categories {
		s.log.Info("Scraping industry category", logger.String("category", c.Name))

		n, err := s.process(ctx, c.Name, c.Name, "", s.cfg.MaxArticlesPerKeyword)
		stats.Stored += n
		if err != nil {
			return stats, err
		}
		stats.Keywords++

		for _, kw := range c.Keywords {
			n, err = s.process(ctx, kw+" "+c.Name, kw, c.Name, maxPerKeyword)
			stats.Stored += n
			if err != nil {
				return stats, err
			}
			stats.Keywords++

			if err = s.pacer.Pause(ctx, s.cfg.KeywordDelayMin, s.cfg.KeywordDelayMax); err != nil {
				return stats, err
			}
		}

		if ci < len(categories)-1 {
			if err = s.pacer.Pause(ctx, s.cfg.CategoryDelayMin, s.cfg.CategoryDelayMax); err != nil {
				return stats, err
			}
		}
	}
	return stats, nil
}

func (s *Service) finish(stats *RunStats) {
	stats.Duration = s.now().Sub(stats.StartedAt)
	s.metrics.ObserveRun(stats.Mode, stats.Duration)
	s.log.Info("Run finished",
		logger.String("mode", stats.Mode),
		logger.Int("keywords", stats.Keywords),
		logger.Int("stored", stats.Stored),
		logger.Duration("duration", stats.Duration),
	)
}
