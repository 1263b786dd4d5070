// Package config holds the typed runtime configuration of the news pipeline
// and the viper wiring that fills it from defaults, config file and environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Debarshi-Chaudhuri/news-api/internal/elasticsearch"
	"github.com/Debarshi-Chaudhuri/news-api/internal/logger"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Storage drivers.
const (
	StorageElasticsearch = "elasticsearch"
	StorageMemory        = "memory"
)

// Search providers.
const (
	ProviderHTML = "html"
	ProviderRSS  = "rss"
)

// Dedup policies.
const (
	PolicyMerge = "merge"
	PolicySkip  = "skip"
)

// Config represents the application configuration.
type Config struct {
	App           AppConfig            `mapstructure:"app"`
	Logger        logger.Config        `mapstructure:"logger"`
	Elasticsearch elasticsearch.Config `mapstructure:"elasticsearch"`
	Storage       StorageConfig        `mapstructure:"storage"`
	Search        SearchConfig         `mapstructure:"search"`
	Extractor     ExtractorConfig      `mapstructure:"extractor"`
	Scraper       ScraperConfig        `mapstructure:"scraper"`
	Taxonomy      TaxonomyConfig       `mapstructure:"taxonomy"`
	Redis         RedisConfig          `mapstructure:"redis"`
	Metrics       MetricsConfig        `mapstructure:"metrics"`
}

// AppConfig holds process level settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// StorageConfig selects the article store.
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
}

// SearchConfig configures the search client.
type SearchConfig struct {
	Provider     string        `mapstructure:"provider"`
	BaseURL      string        `mapstructure:"base_url"`
	FeedURL      string        `mapstructure:"feed_url"`
	MaxResults   int           `mapstructure:"max_results"`
	UserAgent    string        `mapstructure:"user_agent"`
	Timeout      time.Duration `mapstructure:"timeout"`
	VerifyTLS    bool          `mapstructure:"verify_tls"`
	MinInterval  time.Duration `mapstructure:"min_interval"`
	RegionTerm   string        `mapstructure:"region_term"`
	BusinessTerm string        `mapstructure:"business_term"`
}

// ExtractorConfig configures article download and parsing.
type ExtractorConfig struct {
	Timeout       time.Duration `mapstructure:"timeout"`
	VerifyTLS     bool          `mapstructure:"verify_tls"`
	UserAgent     string        `mapstructure:"user_agent"`
	MaxKeywords   int           `mapstructure:"max_keywords"`
	StopwordsFile string        `mapstructure:"stopwords_file"`
	MaxBodyBytes  int           `mapstructure:"max_body_bytes"`
}

// ScraperConfig configures the orchestrator.
type ScraperConfig struct {
	MaxArticlesPerKeyword         int           `mapstructure:"max_articles_per_keyword"`
	IndustryMaxArticlesPerKeyword int           `mapstructure:"industry_max_articles_per_keyword"`
	KeywordDelayMin               time.Duration `mapstructure:"keyword_delay_min"`
	KeywordDelayMax               time.Duration `mapstructure:"keyword_delay_max"`
	CategoryDelayMin              time.Duration `mapstructure:"category_delay_min"`
	CategoryDelayMax              time.Duration `mapstructure:"category_delay_max"`
	Interval                      time.Duration `mapstructure:"interval"`
	Cron                          string        `mapstructure:"cron"`
	DedupPolicy                   string        `mapstructure:"dedup_policy"`
	EnrichCategories              bool          `mapstructure:"enrich_categories"`
}

// TaxonomyConfig points at an optional taxonomy override file.
type TaxonomyConfig struct {
	File string `mapstructure:"file"`
}

// RedisConfig enables the cross-replica run lock when Address is set.
type RedisConfig struct {
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	LockKey  string        `mapstructure:"lock_key"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
}

// MetricsConfig enables the Prometheus endpoint when Address is set.
type MetricsConfig struct {
	Address string `mapstructure:"address"`
}

// Defaults registers every key with its default so that environment
// variables are picked up by Unmarshal even without a config file.
func Defaults() map[string]any {
	return map[string]any{
		"app.name":        "news-api",
		"app.environment": "production",
		"app.debug":       false,

		"logger.level":       logger.DefaultLevel,
		"logger.encoding":    logger.DefaultEncoding,
		"logger.development": false,

		"elasticsearch.addresses":                []string{"http://localhost:9200"},
		"elasticsearch.username":                 "",
		"elasticsearch.password":                 "",
		"elasticsearch.api_key":                  "",
		"elasticsearch.index_name":               elasticsearch.DefaultIndexName,
		"elasticsearch.tls.insecure_skip_verify": false,
		"elasticsearch.max_retries":              3,
		"elasticsearch.ping_timeout":             "5s",
		"elasticsearch.request_timeout":          "10s",

		"storage.driver": StorageElasticsearch,

		"search.provider":      ProviderHTML,
		"search.base_url":      "https://www.google.com/search",
		"search.feed_url":      "https://news.google.com/rss/search",
		"search.max_results":   5,
		"search.user_agent":    "",
		"search.timeout":       "15s",
		"search.verify_tls":    true,
		"search.min_interval":  "2s",
		"search.region_term":   "india",
		"search.business_term": "business",

		"extractor.timeout":        "10s",
		"extractor.verify_tls":     true,
		"extractor.user_agent":     "",
		"extractor.max_keywords":   5,
		"extractor.stopwords_file": "",
		"extractor.max_body_bytes": 5 << 20,

		"scraper.max_articles_per_keyword":          5,
		"scraper.industry_max_articles_per_keyword": 2,
		"scraper.keyword_delay_min":                 "3s",
		"scraper.keyword_delay_max":                 "5s",
		"scraper.category_delay_min":                "5s",
		"scraper.category_delay_max":                "8s",
		"scraper.interval":                          "60m",
		"scraper.cron":                              "",
		"scraper.dedup_policy":                      PolicyMerge,
		"scraper.enrich_categories":                 true,

		"taxonomy.file": "",

		"redis.address":  "",
		"redis.password": "",
		"redis.db":       0,
		"redis.lock_key": "news-api:scrape-lock",
		"redis.lock_ttl": "2h",

		"metrics.address": "",
	}
}

// SetDefaults registers Defaults on v.
func SetDefaults(v *viper.Viper) {
	for k, val := range Defaults() {
		v.SetDefault(k, val)
	}
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}
	cfg.Elasticsearch.SetDefaults()
	cfg.Logger.SetDefaults()
	if cfg.App.Debug {
		cfg.Logger.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Driver {
	case StorageElasticsearch:
		if err := c.Elasticsearch.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("elasticsearch: %w", err))
		}
	case StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q must be %q or %q",
			c.Storage.Driver, StorageElasticsearch, StorageMemory))
	}

	if c.Search.Provider != ProviderHTML && c.Search.Provider != ProviderRSS {
		errs = append(errs, fmt.Errorf("search.provider %q must be %q or %q",
			c.Search.Provider, ProviderHTML, ProviderRSS))
	}
	if c.Search.MaxResults <= 0 {
		errs = append(errs, errors.New("search.max_results must be positive"))
	}
	if c.Search.Timeout <= 0 {
		errs = append(errs, errors.New("search.timeout must be positive"))
	}
	if c.Extractor.Timeout <= 0 {
		errs = append(errs, errors.New("extractor.timeout must be positive"))
	}
	if c.Extractor.MaxKeywords < 0 {
		errs = append(errs, errors.New("extractor.max_keywords must not be negative"))
	}

	s := c.Scraper
	if s.MaxArticlesPerKeyword <= 0 || s.IndustryMaxArticlesPerKeyword <= 0 {
		errs = append(errs, errors.New("scraper article limits must be positive"))
	}
	if s.KeywordDelayMin < 0 || s.KeywordDelayMax < s.KeywordDelayMin {
		errs = append(errs, errors.New("scraper.keyword_delay_min/max form an invalid range"))
	}
	if s.CategoryDelayMin < 0 || s.CategoryDelayMax < s.CategoryDelayMin {
		errs = append(errs, errors.New("scraper.category_delay_min/max form an invalid range"))
	}
	if s.Interval <= 0 && strings.TrimSpace(s.Cron) == "" {
		errs = append(errs, errors.New("scraper.interval must be positive when no cron expression is set"))
	}
	if s.DedupPolicy != PolicyMerge && s.DedupPolicy != PolicySkip {
		errs = append(errs, fmt.Errorf("scraper.dedup_policy %q must be %q or %q",
			s.DedupPolicy, PolicyMerge, PolicySkip))
	}

	if c.Redis.Address != "" && c.Redis.LockTTL <= 0 {
		errs = append(errs, errors.New("redis.lock_ttl must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// IsDevelopment reports whether the app runs in development mode.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.App.Environment, "development")
}
