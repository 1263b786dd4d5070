// Package search finds candidate article URLs for a keyword on a news search
// provider. Failures never propagate: the caller gets an empty list and the
// cause is logged.
package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Debarshi-Chaudhuri/news-api/internal/httpclient"
	"github.com/Debarshi-Chaudhuri/news-api/internal/logger"
	"github.com/Debarshi-Chaudhuri/news-api/internal/metrics"
)

// DefaultMaxResults is the number of links returned per search.
const DefaultMaxResults = 5

// Provider names.
const (
	ProviderHTML = "html"
	ProviderRSS  = "rss"
)

// ErrUnknownProvider is returned by New for an unsupported provider name.
var ErrUnknownProvider = errors.New("unknown search provider")

// Config configures the search client.
type Config struct {
	Provider   string
	BaseURL    string
	FeedURL    string
	MaxResults int
	UserAgent  string
	Timeout    time.Duration
	VerifyTLS  bool
	// MinInterval spaces consecutive provider requests; zero disables pacing.
	MinInterval  time.Duration
	RegionTerm   string
	BusinessTerm string
}

// WithDefaults returns a copy with unset fields defaulted.
func (c Config) WithDefaults() Config {
	if c.Provider == "" {
		c.Provider = ProviderHTML
	}
	if c.BaseURL == "" {
		c.BaseURL = "https://www.google.com/search"
	}
	if c.FeedURL == "" {
		c.FeedURL = "https://news.google.com/rss/search"
	}
	if c.MaxResults <= 0 {
		c.MaxResults = DefaultMaxResults
	}
	if c.UserAgent == "" {
		c.UserAgent = httpclient.DefaultUserAgent
	}
	if c.Timeout <= 0 {
		c.Timeout = httpclient.DefaultTimeout
	}
	return c
}

// Client is the search client.
type Client struct {
	cfg      Config
	provider Provider
	limiter  *rate.Limiter
	log      logger.Logger
	metrics  *metrics.Metrics
}

// Option customizes a Client.
type Option func(*Client)

// WithProvider replaces the provider selected by Config.Provider.
func WithProvider(p Provider) Option {
	return func(c *Client) { c.provider = p }
}

// WithMetrics records request outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a search client with its own HTTP client.
func New(cfg Config, log logger.Logger, opts ...Option) (*Client, error) {
	cfg = cfg.WithDefaults()
	log = logger.Component(log, "search")

	c := &Client{
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Inf, 1),
		log:     log,
	}
	if cfg.MinInterval > 0 {
		c.limiter = rate.NewLimiter(rate.Every(cfg.MinInterval), 1)
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.provider == nil {
		httpClient := httpclient.New(httpclient.Config{
			Name:      "search",
			Timeout:   cfg.Timeout,
			VerifyTLS: cfg.VerifyTLS,
		}, log)
		p, err := newProvider(cfg, httpClient)
		if err != nil {
			return nil, err
		}
		c.provider = p
	}
	return c, nil
}

func newProvider(cfg Config, httpClient *http.Client) (Provider, error) {
	switch cfg.Provider {
	case ProviderHTML:
		return NewHTMLProvider(httpClient, cfg.BaseURL, cfg.UserAgent, DefaultStrategies()), nil
	case ProviderRSS:
		return NewFeedProvider(httpClient, cfg.FeedURL, cfg.UserAgent), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

// BuildQuery appends the category hint and the business and region terms to
// keyword, skipping any term the query already contains.
func (c *Client) BuildQuery(keyword, categoryHint string) string {
	query := strings.TrimSpace(keyword)
	for _, term := range []string{categoryHint, c.cfg.BusinessTerm, c.cfg.RegionTerm} {
		term = strings.TrimSpace(term)
		if term == "" || strings.Contains(strings.ToLower(query), strings.ToLower(term)) {
			continue
		}
		query += " " + term
	}
	return query
}

// Search returns up to MaxResults distinct candidate URLs for keyword, in
// result order. It returns an empty list on any failure.
func (c *Client) Search(ctx context.Context, keyword, categoryHint string) []string {
	if strings.TrimSpace(keyword) == "" {
		return nil
	}
	query := c.BuildQuery(keyword, categoryHint)
	log := c.log.With(logger.String("query", query), logger.String("provider", c.provider.Name()))

	if err := c.limiter.Wait(ctx); err != nil {
		log.Warn("Search aborted while waiting for rate limiter", logger.Error(err))
		c.metrics.Search(metrics.OutcomeFailed)
		return nil
	}

	links, err := c.provider.Links(ctx, query)
	if err != nil {
		log.Warn("Search request failed", logger.Error(err))
		c.metrics.Search(metrics.OutcomeFailed)
		return nil
	}

	out := dedupe(links, c.cfg.MaxResults)
	if len(out) == 0 {
		log.Warn("No article links found")
		c.metrics.Search(metrics.OutcomeEmpty)
		return nil
	}

	log.Debug("Search complete", logger.Int("links", len(out)))
	c.metrics.Search(metrics.OutcomeSuccess)
	return out
}

func dedupe(links []string, limit int) []string {
	seen := make(map[string]struct{}, len(links))
	out := make([]string, 0, limit)
	for _, link := range links {
		link = strings.TrimSpace(link)
		if link == "" {
			continue
		}
		if _, dup := seen[link]; dup {
			continue
		}
		seen[link] = struct{}{}
		out = append(out, link)
		if len(out) == limit {
			break
		}
	}
	return out
}
