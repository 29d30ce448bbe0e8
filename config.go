package folio

import (
	"log/slog"
	"time"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/kv"
	"github.com/eringen/folio/media"
	"github.com/eringen/folio/session"
)

// SiteConfig holds all configuration for a folio site.
type SiteConfig struct {
	Name        string // Site name (default "Portfolio")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Meta description
	Author      string // Person name for JSON-LD

	Addr      string // Listen address (default ":3000")
	StoreKind string // "sqlite" (default), "redis" or "memory"
	StorePath string // SQLite path (default "data/folio.db")

	RedisAddr     string
	RedisPassword string
	RedisPrefix   string // Key prefix (default "folio:")

	MinioEndpoint  string // Empty means uploads go to <static>/uploads
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string // default "folio"
	MinioUseSSL    bool

	AppwriteEndpoint   string
	AppwriteProjectID  string
	AppwriteAPIKey     string
	AppwriteDatabaseID string
	AppwriteBucketID   string
	Collections        content.Collections

	ContactFormURL string // Where contact submissions are forwarded

	AdminUsername string // default "admin"
	AdminPassword string // Required: admin login password
	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	ContentCacheTTL  time.Duration // default 5min
	CarouselInterval time.Duration // default 6s
	LogLevel         string        // debug, info, warn, error (default info)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Portfolio"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.StoreKind == "" {
		c.StoreKind = "sqlite"
	}
	if c.StorePath == "" {
		c.StorePath = "data/folio.db"
	}
	if c.RedisPrefix == "" {
		c.RedisPrefix = "folio:"
	}
	if c.MinioBucket == "" {
		c.MinioBucket = "folio"
	}
	if c.AdminUsername == "" {
		c.AdminUsername = "admin"
	}
	if c.ContentCacheTTL == 0 {
		c.ContentCacheTTL = 5 * time.Minute
	}
	if c.CarouselInterval == 0 {
		c.CarouselInterval = 6 * time.Second
	}
}

// Option configures additional App behavior.
type Option func(*App)

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

// WithStore replaces the configured key-value store.
func WithStore(s kv.Store) Option {
	return func(a *App) {
		a.Store = s
	}
}

// WithImageStore replaces the configured image store.
func WithImageStore(s media.ImageStore) Option {
	return func(a *App) {
		a.images = s
	}
}

// WithContentSource replaces the remote content gateway.
func WithContentSource(s content.Source) Option {
	return func(a *App) {
		a.source = s
	}
}

// WithVerifier replaces the built-in username/password check.
func WithVerifier(v session.Verifier) Option {
	return func(a *App) {
		a.verifier = v
	}
}

// WithLogger replaces the JSON logger built from LogLevel.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}
