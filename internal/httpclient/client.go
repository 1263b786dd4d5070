// Package httpclient builds HTTP clients that own their transport and TLS
// settings. Nothing here touches http.DefaultTransport or other process-wide
// state, so one client disabling certificate checks never affects another.
package httpclient

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/Debarshi-Chaudhuri/news-api/internal/logger"
)

const (
	DefaultTimeout               = 15 * time.Second
	DefaultDialTimeout           = 10 * time.Second
	DefaultMaxIdleConns          = 50
	DefaultMaxIdleConnsPerHost   = 5
	DefaultIdleConnTimeout       = 90 * time.Second
	DefaultTLSHandshakeTimeout   = 10 * time.Second
	DefaultExpectContinueTimeout = 1 * time.Second

	// DefaultUserAgent is a desktop browser string; news sites and search
	// providers serve stripped pages to unknown agents.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// Config configures a single outbound client.
type Config struct {
	// Name identifies the client in log output.
	Name string
	// Timeout bounds the whole request including the body read.
	Timeout time.Duration
	// VerifyTLS toggles certificate verification for this client only.
	VerifyTLS bool
	// ResponseHeaderTimeout defaults to Timeout.
	ResponseHeaderTimeout time.Duration
	MaxIdleConns          int
	MaxIdleConnsPerHost   int
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.ResponseHeaderTimeout <= 0 {
		c.ResponseHeaderTimeout = c.Timeout
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = DefaultMaxIdleConns
	}
	if c.MaxIdleConnsPerHost <= 0 {
		c.MaxIdleConnsPerHost = DefaultMaxIdleConnsPerHost
	}
	if c.Name == "" {
		c.Name = "default"
	}
	return c
}

// NewTransport creates a dedicated transport for cfg. When certificate
// verification is disabled a warning is logged.
func NewTransport(cfg Config, log logger.Logger) *http.Transport {
	cfg = cfg.withDefaults()
	if log == nil {
		log = logger.NewNop()
	}

	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
	if !cfg.VerifyTLS {
		//nolint:gosec // opt-in via configuration, warned below
		tlsConfig.InsecureSkipVerify = true
		log.Warn("TLS certificate verification disabled for outbound client",
			logger.String("client", cfg.Name))
	}

	dialer := &net.Dialer{Timeout: DefaultDialTimeout, KeepAlive: 30 * time.Second}

	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSClientConfig:       tlsConfig,
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:       DefaultIdleConnTimeout,
		TLSHandshakeTimeout:   DefaultTLSHandshakeTimeout,
		ExpectContinueTimeout: DefaultExpectContinueTimeout,
		ResponseHeaderTimeout: cfg.ResponseHeaderTimeout,
	}
}

// New creates an *http.Client with its own transport and an explicit timeout.
func New(cfg Config, log logger.Logger) *http.Client {
	cfg = cfg.withDefaults()
	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: NewTransport(cfg, log),
	}
}
