package folio

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	echosession "github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/eringen/folio/kv"
	"github.com/eringen/folio/session"
)

const sessionName = "admin_session"

func (a *App) setupMiddleware() {
	e := a.Echo

	e.IPExtractor = echo.ExtractIPFromXFFHeader(
		echo.TrustLoopback(true),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(true),
	)

	e.HTTPErrorHandler = a.httpErrorHandler

	e.Pre(middleware.NonWWWRedirect())

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			a.Logger.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"ip", v.RemoteIP,
			)
			return nil
		},
	}))

	e.Use(middleware.Recover())

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/public/")
		},
	}))

	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' https: data: blob:; font-src 'self'; connect-src 'self'",
		HSTSMaxAge:            31536000,
		HSTSExcludeSubdomains: false,
	}))

	e.Use(echosession.Middleware(a.newSessionStore()))

	e.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		ContextKey:     middleware.DefaultCSRFConfig.ContextKey,
		TokenLookup:    "header:X-CSRF-Token,form:_csrf",
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieSameSite: http.SameSiteLaxMode,
		CookieSecure:   a.Config.CookieSecure,
		ErrorHandler: func(err error, c echo.Context) error {
			return c.String(http.StatusForbidden, "Forbidden")
		},
	}))

	e.Use(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		RedirectCode: http.StatusMovedPermanently,
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return strings.HasPrefix(path, "/public") ||
				path == "/contact" || path == "/sitemap.xml" ||
				path == "/robots.txt" || path == "/favicon.svg"
		},
	}))

	e.Use(cacheControlMiddleware)
}

func cacheControlMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := c.Request().URL.Path
		switch {
		case strings.HasPrefix(path, "/public/"):
			c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		case path == "/sitemap.xml" || path == "/robots.txt":
			c.Response().Header().Set("Cache-Control", "public, max-age=86400")
		case strings.HasPrefix(path, "/admin") || path == "/contact":
			c.Response().Header().Set("Cache-Control", "no-store")
		default:
			// Pages embed the visitor's CSRF token.
			c.Response().Header().Set("Cache-Control", "private, no-cache")
		}
		return next(c)
	}
}

func (a *App) newSessionStore() *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(a.Config.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   60 * 60 * 12,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.Config.CookieSecure,
	}
	return store
}

// cookieStore is a kv.Store over the request's admin cookie session. It
// gives the session gate per-browser persistence that survives reloads.
type cookieStore struct {
	c echo.Context
}

var _ kv.Store = cookieStore{}

// session returns the request's session. A cookie that no longer decodes
// (rotated secret, tampering) yields a fresh session.
func (s cookieStore) session() (*sessions.Session, error) {
	sess, err := echosession.Get(sessionName, s.c)
	if err != nil && sess == nil {
		return nil, err
	}
	return sess, nil
}

func (s cookieStore) Get(_ context.Context, key string) (string, bool, error) {
	sess, err := s.session()
	if err != nil {
		return "", false, err
	}
	v, ok := sess.Values[key].(string)
	return v, ok, nil
}

func (s cookieStore) Set(_ context.Context, key, value string) error {
	sess, err := s.session()
	if err != nil {
		return fmt.Errorf("%w: %v", kv.ErrWriteFailed, err)
	}
	sess.Values[key] = value
	if err := sess.Save(s.c.Request(), s.c.Response()); err != nil {
		return fmt.Errorf("%w: %v", kv.ErrWriteFailed, err)
	}
	return nil
}

func (s cookieStore) Delete(_ context.Context, key string) error {
	sess, err := s.session()
	if err != nil {
		return fmt.Errorf("%w: %v", kv.ErrWriteFailed, err)
	}
	delete(sess.Values, key)
	if len(sess.Values) == 0 {
		sess.Options.MaxAge = -1
	}
	if err := sess.Save(s.c.Request(), s.c.Response()); err != nil {
		return fmt.Errorf("%w: %v", kv.ErrWriteFailed, err)
	}
	return nil
}

// gate returns a session gate restored from the request's cookie session.
func (a *App) gate(c echo.Context) *session.Gate {
	g := session.NewGate(cookieStore{c: c}, a.verifier)
	if err := g.RestoreSession(c.Request().Context()); err != nil {
		a.Logger.Debug("session not restored", "error", err)
	}
	return g
}

// IsAdmin checks if the current session is authenticated.
func (a *App) IsAdmin(c echo.Context) bool {
	return a.gate(c).IsAuthenticated()
}

func (a *App) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !a.IsAdmin(c) {
			return c.Redirect(http.StatusSeeOther, "/admin/")
		}
		return next(c)
	}
}

// CsrfToken extracts the CSRF token from the Echo context.
func CsrfToken(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}
