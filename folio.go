// Package folio is a personal portfolio server built with Go, Echo, and templ.
// It renders the public profile page from remote content with bundled
// fallbacks, and serves a small admin panel that manages project records.
//
// Users provide their own templ templates via the ViewFuncs struct,
// and folio handles all the handler logic, middleware, and storage.
package folio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/carousel"
	"github.com/eringen/folio/content"
	"github.com/eringen/folio/gateway"
	"github.com/eringen/folio/kv"
	"github.com/eringen/folio/media"
	"github.com/eringen/folio/projects"
	"github.com/eringen/folio/session"
)

// ViewFuncs holds user-provided templ components that the framework calls
// when rendering pages.
type ViewFuncs struct {
	Home           func(v HomeView) templ.Component
	ContactResult  func(ok bool, message string) templ.Component
	AdminLogin     func(showError bool, csrfToken string) templ.Component
	AdminDashboard func(v DashboardView) templ.Component
	AdminForm      func(v FormView) templ.Component
	NotFound       func() templ.Component
	ServerError    func() templ.Component
}

// App is the central folio application. It wires together the stores,
// the project manager, the content cache, handlers and middleware.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Store    kv.Store
	Projects *projects.Manager
	Content  *ContentCache
	Carousel *carousel.Rotator
	Views    ViewFuncs
	Logger   *slog.Logger

	verifier       session.Verifier
	images         media.ImageStore
	source         content.Source
	contact        *contactForwarder
	contactLimiter *RateLimiter
	customRoutes   []func(*App)
	staticDir      string
	closers        []io.Closer
	stop           context.CancelFunc
	leaseDone      chan struct{}
}

// New creates a new folio App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		Logger:    NewLogger(cfg.LogLevel),
		staticDir: "public",
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init validates the configuration, opens the stores, loads the project
// list and registers middleware and routes. Start calls it; tests call it
// directly and drive a.Echo with httptest.
func (a *App) Init() error {
	if a.Config.AdminPassword == "" && a.verifier == nil {
		return fmt.Errorf("folio: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("folio: SessionSecret is required")
	}
	if a.verifier == nil {
		a.verifier = session.StaticVerifier{
			Username: a.Config.AdminUsername,
			Password: a.Config.AdminPassword,
		}
	}

	if err := a.InitProjects(context.Background()); err != nil {
		return err
	}
	if a.source == nil && a.Config.AppwriteEndpoint != "" {
		a.source = gateway.New(a.gatewayConfig())
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.stop = cancel
	a.holdLease(ctx)
	a.Carousel = carousel.New(0, a.Config.CarouselInterval)
	a.Carousel.Start(ctx)
	loader := content.NewLoader(a.source, a.Config.Collections, 0, a.Logger)
	a.Content = NewContentCache(loader, a.Config.ContentCacheTTL, a.Carousel)

	a.contactLimiter = NewRateLimiter(5, time.Minute)
	a.contact = newContactForwarder(a.Config.ContactFormURL, a.Logger)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// InitProjects opens the configured stores and loads the project list.
// Init calls it; the CLI uses it on its own for offline maintenance.
func (a *App) InitProjects(ctx context.Context) error {
	if a.Store == nil {
		store, err := a.openStore()
		if err != nil {
			return fmt.Errorf("folio: init store: %w", err)
		}
		a.Store = store
	}
	if a.images == nil {
		images, err := a.openImageStore()
		if err != nil {
			return fmt.Errorf("folio: init image store: %w", err)
		}
		a.images = images
	}

	a.Projects = projects.NewManager(a.Store, a.images, a.Logger)
	if err := a.Projects.Load(ctx); err != nil {
		// The site still serves; the admin starts from an empty list.
		a.Logger.Warn("project list unavailable at startup", "error", err)
	}
	return nil
}

// Start initializes the app and starts the server.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.Logger.Info("listening", "addr", a.Config.Addr, "store", a.Config.StoreKind)
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully and releases resources.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Echo.Shutdown(ctx)
	return errors.Join(err, a.Close())
}

func (a *App) openStore() (kv.Store, error) {
	switch a.Config.StoreKind {
	case "memory":
		return kv.NewMemory(), nil
	case "redis":
		if a.Config.RedisAddr == "" {
			return nil, fmt.Errorf("RedisAddr is required for the redis store")
		}
		r := kv.NewRedis(a.Config.RedisAddr, a.Config.RedisPassword, a.Config.RedisPrefix)
		a.closers = append(a.closers, r)
		return r, nil
	case "sqlite":
		if dir := filepath.Dir(a.Config.StorePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		s, err := kv.OpenSQLite(a.Config.StorePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s)
		return s, nil
	}
	return nil, fmt.Errorf("unknown store %q", a.Config.StoreKind)
}

func (a *App) openImageStore() (media.ImageStore, error) {
	if a.Config.MinioEndpoint != "" {
		return media.NewMinioStore(
			a.Config.MinioEndpoint,
			a.Config.MinioAccessKey,
			a.Config.MinioSecretKey,
			a.Config.MinioBucket,
			a.Config.MinioUseSSL,
		)
	}
	return media.NewLocalStore(filepath.Join(a.staticDir, "uploads"), "/public/uploads"), nil
}

func (a *App) gatewayConfig() gateway.Config {
	return gateway.Config{
		Endpoint:   a.Config.AppwriteEndpoint,
		ProjectID:  a.Config.AppwriteProjectID,
		APIKey:     a.Config.AppwriteAPIKey,
		DatabaseID: a.Config.AppwriteDatabaseID,
		BucketID:   a.Config.AppwriteBucketID,
	}
}

func (a *App) setupRoutes() {
	e := a.Echo

	// User's static assets
	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)

	// Public routes
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/", a.handleHome)
	e.POST("/contact", a.handleContact)

	// Admin routes
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", a.handleAdminLogout)

	e.POST("/admin/projects/", a.handleProjectCreate, a.requireAdmin)
	e.GET("/admin/projects/:id/", a.handleProjectEdit, a.requireAdmin)
	e.POST("/admin/projects/:id/", a.handleProjectUpdate, a.requireAdmin)
	e.DELETE("/admin/projects/:id/", a.handleProjectDelete, a.requireAdmin)
	e.POST("/admin/content/refresh/", a.handleContentRefresh, a.requireAdmin)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.stop != nil {
		a.stop()
	}
	a.releaseLease()
	if a.Carousel != nil {
		a.Carousel.Stop()
	}
	if a.contactLimiter != nil {
		a.contactLimiter.Close()
	}
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("folio: required environment variable %s is not set", key)
	}
	return v
}
