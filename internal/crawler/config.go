package crawler

import (
	"fmt"
	"net/url"
	"time"
)

// Config captures every knob that influences one crawl run. The zero value is
// not usable; call ApplyDefaults or construct via DefaultConfig.
type Config struct {
	SeedURL     string
	MaxDepth    int
	MaxLinks    int
	MaxPages    int
	Concurrency int
	Timeout     time.Duration
	UserAgent   string
}

// DefaultConfig returns the bounds used when the caller does not override
// them.
func DefaultConfig(seedURL string) Config {
	cfg := Config{SeedURL: seedURL}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset bounds with conservative values. MaxDepth is left
// alone: zero means fetch only the seed.
func (c *Config) ApplyDefaults() {
	if c.MaxLinks <= 0 {
		c.MaxLinks = 30
	}
	if c.MaxPages <= 0 {
		c.MaxPages = 20
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	if c.UserAgent == "" {
		c.UserAgent = "product-discovery-bot/1.0"
	}
}

// Validate rejects configurations the engine cannot run. An unparseable seed
// URL is the only caller error treated as fatal.
func (c Config) Validate() error {
	if c.SeedURL == "" {
		return fmt.Errorf("seed URL must be set")
	}
	u, err := url.Parse(c.SeedURL)
	if err != nil {
		return fmt.Errorf("parse seed URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("seed URL must be http or https, got %q", c.SeedURL)
	}
	if u.Host == "" {
		return fmt.Errorf("seed URL missing host: %q", c.SeedURL)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max depth must be >= 0")
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be > 0")
	}
	if c.MaxPages <= 0 {
		return fmt.Errorf("max pages must be > 0")
	}
	if c.MaxLinks < 0 {
		return fmt.Errorf("max links must be >= 0")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0")
	}
	return nil
}
