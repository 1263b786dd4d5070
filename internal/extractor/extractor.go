// Package extractor downloads an article page and turns it into a draft
// record: title, body, summary, author, publish date, derived keywords.
package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/Debarshi-Chaudhuri/news-api/internal/domain"
	"github.com/Debarshi-Chaudhuri/news-api/internal/httpclient"
	"github.com/Debarshi-Chaudhuri/news-api/internal/keywords"
	"github.com/Debarshi-Chaudhuri/news-api/internal/logger"
	"github.com/Debarshi-Chaudhuri/news-api/internal/metrics"
	"github.com/Debarshi-Chaudhuri/news-api/internal/urlnorm"
)

// ErrMissingFields is returned when a page yields no title or no body text.
var ErrMissingFields = errors.New("article has no title or body")

// ErrInvalidURL is returned for URLs that are not absolute http(s).
var ErrInvalidURL = errors.New("invalid article url")

// Initial categories and qualifier tags of every extracted article.
var (
	DefaultCategories = []string{"Business", "India"}
	QualifierTags     = []string{"india", "business"}
)

// Config configures the extractor.
type Config struct {
	Timeout       time.Duration
	VerifyTLS     bool
	UserAgent     string
	MaxKeywords   int
	StopwordsFile string
	MaxBodyBytes  int
}

// WithDefaults returns a copy with unset fields defaulted.
func (c Config) WithDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.UserAgent == "" {
		c.UserAgent = httpclient.DefaultUserAgent
	}
	if c.MaxKeywords == 0 {
		c.MaxKeywords = keywords.DefaultMax
	}
	return c
}

// Extractor is the article extractor.
type Extractor struct {
	cfg     Config
	fetcher *fetcher
	deriver *keywords.Deriver
	log     logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option customizes an Extractor.
type Option func(*Extractor)

// WithMetrics records extraction outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Extractor) { e.metrics = m }
}

// WithClock overrides the clock used for the default publish date.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// New creates an extractor. If the keyword deriver cannot be set up the
// extractor still works and articles carry only the qualifier tags.
func New(cfg Config, log logger.Logger, opts ...Option) *Extractor {
	cfg = cfg.WithDefaults()
	log = logger.Component(log, "extractor")

	e := &Extractor{
		cfg:     cfg,
		fetcher: newFetcher(cfg, log),
		log:     log,
		now:     time.Now,
	}

	deriver, err := keywords.NewDeriver(cfg.StopwordsFile)
	if err != nil {
		log.Warn("Keyword derivation disabled", logger.Error(err))
	} else {
		e.deriver = deriver
	}

	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract downloads rawURL and builds a draft. It returns ErrMissingFields
// when the page has no usable title or body.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*domain.Draft, error) {
	pageURL, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || !urlnorm.IsAbsoluteHTTP(rawURL) {
		e.metrics.Extraction(metrics.OutcomeFailed)
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	body, err := e.fetcher.fetch(ctx, pageURL.String())
	if err != nil {
		e.metrics.Extraction(metrics.OutcomeFailed)
		return nil, err
	}

	draft, err := e.Parse(pageURL, body)
	if err != nil {
		if errors.Is(err, ErrMissingFields) {
			e.metrics.Extraction(metrics.OutcomeEmpty)
		} else {
			e.metrics.Extraction(metrics.OutcomeFailed)
		}
		return nil, err
	}

	e.metrics.Extraction(metrics.OutcomeSuccess)
	return draft, nil
}

// Parse builds a draft from an already downloaded page.
func (e *Extractor) Parse(pageURL *url.URL, html []byte) (*domain.Draft, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	ld := parseLinkedData(doc)

	var article readability.Article
	if a, rErr := readability.FromReader(bytes.NewReader(html), pageURL); rErr != nil {
		e.log.Debug("Readability extraction failed, using document fallbacks",
			logger.String("url", pageURL.String()), logger.Error(rErr))
	} else {
		article = a
	}

	title := firstNonEmpty(strings.TrimSpace(article.Title), pageTitle(doc), ld.Headline)
	content := firstNonEmpty(cleanText(article.TextContent), bodyText(doc))
	if title == "" || content == "" {
		return nil, fmt.Errorf("%s: %w", pageURL, ErrMissingFields)
	}

	draft := &domain.Draft{
		Title:         title,
		Content:       content,
		Summary:       firstNonEmpty(strings.TrimSpace(article.Excerpt), metaDescription(doc), ld.Description),
		Author:        firstNonEmpty(strings.TrimSpace(article.Byline), metaAuthor(doc), ld.Author),
		Source:        urlnorm.Host(pageURL.String()),
		PublishedDate: e.publishedDate(article.PublishedTime, doc, ld),
		Categories:    append([]string(nil), DefaultCategories...),
		URL:           pageURL.String(),
	}

	if e.deriver != nil {
		for _, kw := range e.deriver.Derive(title, content, e.cfg.MaxKeywords) {
			draft.AddTag(kw)
		}
	}
	for _, q := range QualifierTags {
		draft.AddTag(q)
	}

	return draft, nil
}

func (e *Extractor) publishedDate(detected *time.Time, doc *goquery.Document, ld linkedData) time.Time {
	if detected != nil && !detected.IsZero() {
		return detected.UTC()
	}
	for _, raw := range []string{metaPublished(doc), ld.DatePublished} {
		if t, ok := parseDate(raw); ok {
			return t
		}
	}
	return e.now().UTC()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
