package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/Debarshi-Chaudhuri/news-api/internal/urlnorm"
)

// maxPageBytes bounds how much of a results page or feed is read.
const maxPageBytes = 4 << 20

// Provider runs a query against a search backend and returns candidate links
// in result order.
type Provider interface {
	Name() string
	Links(ctx context.Context, query string) ([]string, error)
}

// HTMLProvider scrapes a news results page.
type HTMLProvider struct {
	client     *http.Client
	baseURL    string
	userAgent  string
	strategies []Strategy
}

// NewHTMLProvider creates a provider for the results page at baseURL.
func NewHTMLProvider(client *http.Client, baseURL, userAgent string, strategies []Strategy) *HTMLProvider {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &HTMLProvider{client: client, baseURL: baseURL, userAgent: userAgent, strategies: strategies}
}

func (p *HTMLProvider) Name() string { return "html" }

func (p *HTMLProvider) Links(ctx context.Context, query string) ([]string, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("tbm", "nws")

	body, err := get(ctx, p.client, p.baseURL+"?"+params.Encode(), p.userAgent)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("parse results page: %w", err)
	}

	page := Page{Doc: doc, ProviderHost: urlnorm.Host(p.baseURL)}
	for _, s := range p.strategies {
		if links := s.Extract(page); len(links) > 0 {
			return links, nil
		}
	}
	return nil, nil
}

// FeedProvider reads a news search RSS feed.
type FeedProvider struct {
	client    *http.Client
	feedURL   string
	userAgent string
	parser    *gofeed.Parser
}

// NewFeedProvider creates a provider for the RSS search endpoint at feedURL.
func NewFeedProvider(client *http.Client, feedURL, userAgent string) *FeedProvider {
	return &FeedProvider{client: client, feedURL: feedURL, userAgent: userAgent, parser: gofeed.NewParser()}
}

func (p *FeedProvider) Name() string { return "rss" }

func (p *FeedProvider) Links(ctx context.Context, query string) ([]string, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("hl", "en-IN")
	params.Set("gl", "IN")
	params.Set("ceid", "IN:en")

	body, err := get(ctx, p.client, p.feedURL+"?"+params.Encode(), p.userAgent)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	feed, err := p.parser.Parse(io.LimitReader(body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	links := make([]string, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		if urlnorm.IsAbsoluteHTTP(item.Link) {
			links = append(links, item.Link)
		}
	}
	return links, nil
}

func get(ctx context.Context, client *http.Client, target, userAgent string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-IN,en;q=0.9")

	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", req.URL.Host, err)
	}
	if res.StatusCode != http.StatusOK {
		_ = res.Body.Close()
		return nil, fmt.Errorf("request %s: unexpected status %d", req.URL.Host, res.StatusCode)
	}
	return res.Body, nil
}
