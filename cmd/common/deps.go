// Package common builds the dependencies shared by the commands.
package common

import (
	"context"
	"errors"
	"fmt"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"

	"github.com/Debarshi-Chaudhuri/news-api/internal/classifier"
	"github.com/Debarshi-Chaudhuri/news-api/internal/config"
	"github.com/Debarshi-Chaudhuri/news-api/internal/coordination"
	"github.com/Debarshi-Chaudhuri/news-api/internal/dedup"
	"github.com/Debarshi-Chaudhuri/news-api/internal/elasticsearch"
	"github.com/Debarshi-Chaudhuri/news-api/internal/extractor"
	"github.com/Debarshi-Chaudhuri/news-api/internal/ingest"
	"github.com/Debarshi-Chaudhuri/news-api/internal/logger"
	"github.com/Debarshi-Chaudhuri/news-api/internal/metrics"
	"github.com/Debarshi-Chaudhuri/news-api/internal/search"
	"github.com/Debarshi-Chaudhuri/news-api/internal/storage"
	"github.com/Debarshi-Chaudhuri/news-api/internal/taxonomy"
)

// ErrElasticsearchRequired is returned by commands that only work against
// the Elasticsearch store.
var ErrElasticsearchRequired = errors.New("command requires storage.driver=elasticsearch")

// Deps holds the dependencies every command needs.
type Deps struct {
	Config   *config.Config
	Logger   logger.Logger
	Taxonomy *taxonomy.Taxonomy
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry

	esClient *es.Client
}

// NewDeps loads the configuration, the logger and the taxonomy.
func NewDeps() (*Deps, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	log = log.With(logger.String("service", cfg.App.Name))

	tax, err := LoadTaxonomy(cfg.Taxonomy.File)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &Deps{
		Config:   cfg,
		Logger:   log,
		Taxonomy: tax,
		Metrics:  metrics.New(reg),
		Registry: reg,
	}, nil
}

// LoadTaxonomy returns the taxonomy in path, or the built-in one when path is empty.
func LoadTaxonomy(path string) (*taxonomy.Taxonomy, error) {
	if path == "" {
		return taxonomy.Default()
	}
	tax, err := taxonomy.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load taxonomy: %w", err)
	}
	return tax, nil
}

// ElasticsearchClient connects to the cluster once and caches the client.
func (d *Deps) ElasticsearchClient(ctx context.Context) (*es.Client, error) {
	if d.esClient != nil {
		return d.esClient, nil
	}
	client, err := elasticsearch.NewClient(ctx, d.Config.Elasticsearch, d.Logger)
	if err != nil {
		return nil, err
	}
	d.esClient = client
	return client, nil
}

// ElasticsearchStore returns the Elasticsearch article store.
func (d *Deps) ElasticsearchStore(ctx context.Context) (*storage.ElasticsearchStore, error) {
	if d.Config.Storage.Driver != config.StorageElasticsearch {
		return nil, ErrElasticsearchRequired
	}
	client, err := d.ElasticsearchClient(ctx)
	if err != nil {
		return nil, err
	}
	return storage.NewElasticsearchStore(client, storage.ElasticsearchConfig{
		IndexName:      d.Config.Elasticsearch.IndexName,
		RequestTimeout: d.Config.Elasticsearch.RequestTimeout,
	}, d.Logger), nil
}

// Store returns the configured article store with its index in place.
func (d *Deps) Store(ctx context.Context) (storage.Store, error) {
	var store storage.Store
	switch d.Config.Storage.Driver {
	case config.StorageMemory:
		d.Logger.Warn("Using in-memory store, articles are discarded on exit")
		store = storage.NewMemoryStore()
	default:
		esStore, err := d.ElasticsearchStore(ctx)
		if err != nil {
			return nil, err
		}
		store = esStore
	}
	if err := store.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("ensure index: %w", err)
	}
	return store, nil
}

// Classifier returns a classifier over the loaded taxonomy.
func (d *Deps) Classifier() *classifier.Classifier {
	return classifier.New(d.Taxonomy, d.Logger)
}

// Service wires search, extraction and the deduplicating writer on store.
func (d *Deps) Service(store storage.Store, opts ...ingest.Option) (*ingest.Service, error) {
	cfg := d.Config

	searcher, err := search.New(search.Config{
		Provider:     cfg.Search.Provider,
		BaseURL:      cfg.Search.BaseURL,
		FeedURL:      cfg.Search.FeedURL,
		MaxResults:   cfg.Search.MaxResults,
		UserAgent:    cfg.Search.UserAgent,
		Timeout:      cfg.Search.Timeout,
		VerifyTLS:    cfg.Search.VerifyTLS,
		MinInterval:  cfg.Search.MinInterval,
		RegionTerm:   cfg.Search.RegionTerm,
		BusinessTerm: cfg.Search.BusinessTerm,
	}, d.Logger, search.WithMetrics(d.Metrics))
	if err != nil {
		return nil, fmt.Errorf("create search client: %w", err)
	}

	ext := extractor.New(extractor.Config{
		Timeout:       cfg.Extractor.Timeout,
		VerifyTLS:     cfg.Extractor.VerifyTLS,
		UserAgent:     cfg.Extractor.UserAgent,
		MaxKeywords:   cfg.Extractor.MaxKeywords,
		StopwordsFile: cfg.Extractor.StopwordsFile,
		MaxBodyBytes:  cfg.Extractor.MaxBodyBytes,
	}, d.Logger, extractor.WithMetrics(d.Metrics))

	writer := dedup.NewWriter(store, d.Taxonomy, d.Logger,
		dedup.WithPolicy(dedup.Policy(cfg.Scraper.DedupPolicy)),
		dedup.WithMetrics(d.Metrics),
	)

	base := []ingest.Option{ingest.WithMetrics(d.Metrics)}
	if cfg.Scraper.EnrichCategories {
		base = append(base, ingest.WithEnricher(d.Classifier()))
	}

	return ingest.NewService(d.Taxonomy, searcher, ext, writer, ingest.Config{
		MaxArticlesPerKeyword:         cfg.Scraper.MaxArticlesPerKeyword,
		IndustryMaxArticlesPerKeyword: cfg.Scraper.IndustryMaxArticlesPerKeyword,
		KeywordDelayMin:               cfg.Scraper.KeywordDelayMin,
		KeywordDelayMax:               cfg.Scraper.KeywordDelayMax,
		CategoryDelayMin:              cfg.Scraper.CategoryDelayMin,
		CategoryDelayMax:              cfg.Scraper.CategoryDelayMax,
	}, d.Logger, append(base, opts...)...), nil
}

// RunLock returns the Redis run lock and its client, or nil when no Redis
// address is configured. The caller closes the client.
func (d *Deps) RunLock(ctx context.Context) (*coordination.RunLock, *redis.Client, error) {
	rc := d.Config.Redis
	if rc.Address == "" {
		return nil, nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     rc.Address,
		Password: rc.Password,
		DB:       rc.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	return coordination.NewRunLock(client, rc.LockKey, rc.LockTTL, d.Logger), client, nil
}
