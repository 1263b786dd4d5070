package extractor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/Debarshi-Chaudhuri/news-api/internal/httpclient"
	"github.com/Debarshi-Chaudhuri/news-api/internal/logger"
)

// ErrEmptyResponse is returned when a page downloads with no body.
var ErrEmptyResponse = errors.New("empty response body")

// fetcher downloads pages with a colly collector that owns its transport.
type fetcher struct {
	base *colly.Collector
}

func newFetcher(cfg Config, log logger.Logger) *fetcher {
	opts := []colly.CollectorOption{
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
		colly.DetectCharset(),
	}
	if cfg.MaxBodyBytes > 0 {
		opts = append(opts, colly.MaxBodySize(cfg.MaxBodyBytes))
	}

	c := colly.NewCollector(opts...)
	c.SetRequestTimeout(cfg.Timeout)
	c.WithTransport(httpclient.NewTransport(httpclient.Config{
		Name:      "extractor",
		Timeout:   cfg.Timeout,
		VerifyTLS: cfg.VerifyTLS,
	}, log))

	return &fetcher{base: c}
}

// fetch returns the body of rawURL. Every call works on a clone so callbacks
// never leak between requests.
func (f *fetcher) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	c := f.base.Clone()
	c.Context = ctx

	var (
		body     []byte
		fetchErr error
	)
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = fmt.Errorf("fetch %s (status %d): %w", rawURL, status, err)
	})

	start := time.Now()
	visitErr := c.Visit(rawURL)
	if fetchErr != nil {
		return nil, fetchErr
	}
	if visitErr != nil {
		return nil, fmt.Errorf("fetch %s after %s: %w", rawURL, time.Since(start).Round(time.Millisecond), visitErr)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, ErrEmptyResponse)
	}
	return body, nil
}
