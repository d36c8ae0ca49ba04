package folio

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/reannemartin/folio/contact"
)

// SiteConfig holds all configuration for a folio site.
type SiteConfig struct {
	Name        string `koanf:"name"`        // Site name (default "Folio")
	URL         string `koanf:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `koanf:"description"` // Meta and feed description
	Author      string `koanf:"author"`      // Person name for JSON-LD; defaults to the catalog owner
	JobTitle    string `koanf:"job_title"`

	Addr string `koanf:"addr"` // Listen address (default ":3000")

	CatalogPath string        `koanf:"catalog"`     // External catalog file; empty means the embedded one
	CatalogTTL  time.Duration `koanf:"catalog_ttl"` // How often an external catalog is re-read (default 1min)

	AnalyticsEnabled       bool   `koanf:"analytics_enabled"`
	AnalyticsDatabasePath  string `koanf:"analytics_db"`             // default "data/analytics.db"
	AnalyticsRetentionDays int    `koanf:"analytics_retention_days"` // default 365

	SessionSecret string `koanf:"session_secret"` // Required: visitor cookie signing secret
	CookieSecure  bool   `koanf:"cookie_secure"`  // Set true for HTTPS

	LogLevel        string        `koanf:"log_level"`         // debug, info, warn, error, off
	PageIdleTimeout time.Duration `koanf:"page_idle_timeout"` // Mounted pages without activity are dropped (default 30min)

	MaxPages           int `koanf:"max_pages"`             // Mounted pages across all visitors; oldest evicted first (default 10000)
	MaxPagesPerVisitor int `koanf:"max_pages_per_visitor"` // Mounted pages per visitor cookie (default 16)

	CopyRateLimit    int `koanf:"copy_rate_limit"`    // Email copies per IP per minute (default 20)
	PointerRateLimit int `koanf:"pointer_rate_limit"` // Pointer socket upgrades per IP per minute (default 30)
	PageRateLimit    int `koanf:"page_rate_limit"`    // Full page loads per IP per minute (default 120)
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() SiteConfig {
	c := SiteConfig{AnalyticsEnabled: true}
	c.setDefaults()
	return c
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Folio"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.CatalogTTL == 0 {
		c.CatalogTTL = time.Minute
	}
	if c.AnalyticsDatabasePath == "" {
		c.AnalyticsDatabasePath = "data/analytics.db"
	}
	if c.AnalyticsRetentionDays == 0 {
		c.AnalyticsRetentionDays = 365
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.PageIdleTimeout == 0 {
		c.PageIdleTimeout = 30 * time.Minute
	}
	if c.MaxPages == 0 {
		c.MaxPages = 10000
	}
	if c.MaxPagesPerVisitor == 0 {
		c.MaxPagesPerVisitor = 16
	}
	if c.CopyRateLimit == 0 {
		c.CopyRateLimit = 20
	}
	if c.PointerRateLimit == 0 {
		c.PointerRateLimit = 30
	}
	if c.PageRateLimit == 0 {
		c.PageRateLimit = 120
	}
}

// LoadConfig reads configuration from the YAML file at path (if it exists),
// then overlays FOLIO_* environment variables: FOLIO_SESSION_SECRET sets
// session_secret, and so on.
func LoadConfig(path string) (SiteConfig, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return cfg, fmt.Errorf("folio: reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("folio: accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("FOLIO_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "FOLIO_"))
	}), nil); err != nil {
		return cfg, fmt.Errorf("folio: loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("folio: unmarshalling config: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "off": true,
}

// Validate checks that the configuration can start a server.
func (c SiteConfig) Validate() error {
	var errs []error
	if c.SessionSecret == "" {
		errs = append(errs, errors.New("session_secret is required"))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Errorf("invalid log_level %q", c.LogLevel))
	}
	if c.CatalogTTL < 0 || c.PageIdleTimeout < 0 {
		errs = append(errs, errors.New("durations must be non-negative"))
	}
	if c.MaxPages < 0 || c.MaxPagesPerVisitor < 0 {
		errs = append(errs, errors.New("page caps must be non-negative"))
	}
	if c.CopyRateLimit < 0 || c.PointerRateLimit < 0 || c.PageRateLimit < 0 {
		errs = append(errs, errors.New("rate limits must be non-negative"))
	}
	if c.AnalyticsRetentionDays < 0 {
		errs = append(errs, errors.New("analytics_retention_days must be non-negative"))
	}
	return errors.Join(errs...)
}

// Option configures additional App behavior.
type Option func(*App)

// WithViews replaces the page templates.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = v
	}
}

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithClock sets the clock that drives the contact modal's copied reset.
func WithClock(c contact.Clock) Option {
	return func(a *App) {
		a.clock = c
	}
}
