package portfolio

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	sessionName   = "portfolio_session"
	sessionUserID = "user_id"
	identityKey   = "identity"
)

func (a *App) setupMiddleware() {
	e := a.Echo

	e.IPExtractor = echo.ExtractIPFromXFFHeader(
		echo.TrustLoopback(true),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(true),
	)

	e.HTTPErrorHandler = a.httpErrorHandler

	e.Pre(middleware.RemoveTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		RedirectCode: http.StatusMovedPermanently,
	}))

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			a.Log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("ip", v.RemoteIP).
				Msg("request")
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
		ContentSecurityPolicy: "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' https: http: data:; font-src 'self'",
		HSTSMaxAge:            31536000,
	}))

	e.Use(session.Middleware(a.newSessionStore()))

	e.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		ContextKey:  middleware.DefaultCSRFConfig.ContextKey,
		TokenLookup: "header:X-CSRF-Token,form:_csrf",
		CookieName:  "_csrf",
		CookiePath:  "/",
		CookieSameSite: func() http.SameSite {
			return http.SameSiteLaxMode
		}(),
		CookieSecure:   a.Config.CookieSecure,
		CookieHTTPOnly: true,
		ErrorHandler: func(err error, c echo.Context) error {
			return echo.NewHTTPError(http.StatusForbidden).SetInternal(err)
		},
	}))

	e.Use(a.identityMiddleware)
	e.Use(cacheControlMiddleware)
}

func cacheControlMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := c.Request().URL.Path
		switch {
		case strings.HasPrefix(path, "/public/"):
			c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		case path == "/sitemap.xml" || path == "/feed.xml":
			c.Response().Header().Set("Cache-Control", "public, max-age=86400")
		default:
			// Pages carry flashes, CSRF tokens and the login state.
			c.Response().Header().Set("Cache-Control", "no-store")
		}
		return next(c)
	}
}

func (a *App) newSessionStore() *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(a.Config.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   60 * 60 * 24 * 7,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.Config.CookieSecure,
	}
	return store
}

// identityMiddleware resolves the session's user once per request.
func (a *App) identityMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if sess := currentSession(c); sess != nil {
			if id, ok := sess.Values[sessionUserID].(int64); ok {
				u, err := a.Auth.Identity(c.Request().Context(), id)
				if err != nil {
					return err
				}
				if u != nil {
					c.Set(identityKey, u)
				}
			}
		}
		return next(c)
	}
}

// adminOnly rejects every caller that is not the admin with 403.
func adminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !IsAdmin(CurrentIdentity(c)) {
			return echo.NewHTTPError(http.StatusForbidden)
		}
		return next(c)
	}
}

// CurrentIdentity returns the logged-in user, or nil for anonymous requests.
func CurrentIdentity(c echo.Context) *User {
	u, _ := c.Get(identityKey).(*User)
	return u
}

var errNoSession = errors.New("session middleware not installed")

// currentSession returns the request's session. A cookie that no longer
// decodes (rotated SECRET_KEY, tampering, an old deploy) yields a fresh
// empty session; saving it replaces the bad cookie.
func currentSession(c echo.Context) *sessions.Session {
	sess, err := session.Get(sessionName, c)
	if sess == nil {
		return nil
	}
	if err != nil {
		c.Logger().Debugf("discarding undecodable session cookie: %v", err)
	}
	return sess
}

func startSession(c echo.Context, u User) error {
	sess := currentSession(c)
	if sess == nil {
		return errNoSession
	}
	sess.Values[sessionUserID] = u.ID
	c.Set(identityKey, &u)
	return sess.Save(c.Request(), c.Response())
}

func endSession(c echo.Context) error {
	sess := currentSession(c)
	if sess == nil {
		return errNoSession
	}
	delete(sess.Values, sessionUserID)
	c.Set(identityKey, nil)
	return sess.Save(c.Request(), c.Response())
}

// addFlash stores a one-time notice shown on the next rendered page.
func addFlash(c echo.Context, msg string) error {
	sess := currentSession(c)
	if sess == nil {
		return errNoSession
	}
	sess.AddFlash(msg)
	return sess.Save(c.Request(), c.Response())
}

// popFlashes returns and clears pending notices. It must run before the
// response is written because it updates the session cookie.
func popFlashes(c echo.Context) []string {
	sess := currentSession(c)
	if sess == nil {
		return nil
	}
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		c.Logger().Errorf("save session: %v", err)
	}
	out := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// CsrfToken extracts the CSRF token from the Echo context.
func CsrfToken(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}
