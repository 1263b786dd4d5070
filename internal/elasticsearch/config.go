package elasticsearch

import (
	"errors"
	"strings"
	"time"

	"github.com/Debarshi-Chaudhuri/news-api/internal/retry"
)

// DefaultIndexName is the index holding article records.
const DefaultIndexName = "news"

// ErrNoAddresses is returned by Validate when no node address is configured.
var ErrNoAddresses = errors.New("at least one elasticsearch address is required")

// Config holds Elasticsearch client configuration.
type Config struct {
	Addresses []string  `mapstructure:"addresses"`
	Username  string    `mapstructure:"username"`
	Password  string    `mapstructure:"password"`
	APIKey    string    `mapstructure:"api_key"`
	IndexName string    `mapstructure:"index_name"`
	TLS       TLSConfig `mapstructure:"tls"`
	// MaxRetries is passed to the client's own transport retry.
	MaxRetries  int           `mapstructure:"max_retries"`
	PingTimeout time.Duration `mapstructure:"ping_timeout"`
	// RequestTimeout bounds every index, update and search call.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	// Connect configures retries of the startup ping.
	Connect retry.Config `mapstructure:"connect"`
}

// TLSConfig holds TLS settings for the cluster connection.
type TLSConfig struct {
	InsecureSkipVerify bool `mapstructure:"insecure_skip_verify"`
}

// SetDefaults applies default values to the config if not set.
func (c *Config) SetDefaults() {
	if len(c.Addresses) == 0 {
		c.Addresses = []string{"http://localhost:9200"}
	}
	if c.IndexName == "" {
		c.IndexName = DefaultIndexName
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.PingTimeout == 0 {
		c.PingTimeout = 5 * time.Second
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 10 * time.Second
	}
	if c.Connect.MaxAttempts == 0 {
		c.Connect = retry.Config{
			MaxAttempts:  5,
			InitialDelay: 2 * time.Second,
			MaxDelay:     10 * time.Second,
			Multiplier:   2.0,
		}
	}
}

// Validate checks the configuration after defaults are applied.
func (c *Config) Validate() error {
	for _, addr := range c.Addresses {
		if strings.TrimSpace(addr) != "" {
			return nil
		}
	}
	return ErrNoAddresses
}

// ParseAddresses splits a comma separated address list.
func ParseAddresses(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
