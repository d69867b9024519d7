// Package portfolio is a personal blog and portfolio site built with Go,
// Echo, and templ. A single admin writes posts, registered readers comment,
// and visitors can reach the owner through a contact form.
//
// Templates are supplied by the caller through ViewFuncs; portfolio owns the
// handlers, sessions, storage and mail delivery.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/eringen/portfolio/mailer"
)

// ViewFuncs holds the templ components the handlers render. Form views get
// the submitted values and a field->message map of validation errors.
type ViewFuncs struct {
	Landing     func(p Page) templ.Component
	Blog        func(p Page, posts []BlogPost) templ.Component
	Post        func(p Page, post BlogPost, comments []Comment, form CommentForm, errs map[string]string) templ.Component
	Register    func(p Page, form SignupForm, errs map[string]string) templ.Component
	Login       func(p Page, form LoginForm, errs map[string]string) templ.Component
	MakePost    func(p Page, form PostForm, errs map[string]string, isEdit bool) templ.Component
	Contact     func(p Page, form ContactForm, errs map[string]string, sent bool) templ.Component
	Forbidden   func(p Page) templ.Component
	NotFound    func(p Page) templ.Component
	ServerError func(p Page) templ.Component
}

// App wires together the store, services, handlers and middleware.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Store   *Store
	Auth    *Auth
	Content *Content
	Contact *Contact
	Views   ViewFuncs
	Log     zerolog.Logger

	transport    mailer.Transport
	mail         *mailer.Dispatcher
	loginLimiter *LoginLimiter
	passwordCost int
	now          func() time.Time
	staticDir    string
}

// New creates an App with the given configuration and views. Call Setup
// before serving.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		Log:       NewLogger(os.Stderr, zerolog.InfoLevel),
		now:       time.Now,
		staticDir: "public",
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Setup opens the database, starts the mail worker, and registers
// middleware and routes.
func (a *App) Setup() error {
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("portfolio: SessionSecret is required")
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("portfolio: init store: %w", err)
	}
	a.Store = store

	if a.transport == nil {
		a.transport = mailer.NewSMTPTransport(mailer.SMTPConfig{
			Host:     a.Config.Mail.Host,
			Port:     a.Config.Mail.Port,
			Username: a.Config.Mail.Username,
			Password: a.Config.Mail.Password,
			To:       a.Config.Mail.To,
		})
	}
	mailLog := a.Log.With().Str("component", "mailer").Logger()
	a.mail = mailer.NewDispatcher(a.transport, a.Config.MailQueueSize, a.Config.Mail.Timeout, mailLog)

	a.Auth = NewAuth(store, NewPasswordHasher(a.passwordCost), a.Log)
	a.Content = NewContent(store, a.Log, a.now)
	a.Contact = NewContact(a.mail, a.Config.Mail.Timeout, a.Log)
	a.loginLimiter = NewLoginLimiter(a.Config.LoginAttempts, a.Config.LoginWindow)

	a.setupMiddleware()
	a.setupRoutes()
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.staticDir)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/sitemap.xml", a.handleSitemap)

	e.GET("/", a.handleLanding)
	e.GET("/blog", a.handleBlog)
	e.Match([]string{http.MethodGet, http.MethodPost}, "/register", a.handleRegister)
	e.Match([]string{http.MethodGet, http.MethodPost}, "/login", a.handleLogin)
	e.GET("/logout", a.handleLogout)
	e.Match([]string{http.MethodGet, http.MethodPost}, "/post/:id", a.handlePost)
	e.Match([]string{http.MethodGet, http.MethodPost}, "/contact", a.handleContact)

	// Admin routes. Content also checks the role; the middleware covers the
	// GET form pages that never reach it.
	e.Match([]string{http.MethodGet, http.MethodPost}, "/new-post", a.handleNewPost, adminOnly)
	e.Match([]string{http.MethodGet, http.MethodPost}, "/edit-post/:id", a.handleEditPost, adminOnly)
	e.GET("/delete/:id", a.handleDeletePost, adminOnly)
}

// Start serves HTTP on Config.Addr until Shutdown is called.
func (a *App) Start() error {
	if a.Store == nil {
		return fmt.Errorf("portfolio: Setup must be called before Start")
	}
	a.Log.Info().Str("addr", a.Config.Addr).Msg("listening")
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server gracefully and releases resources.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Echo.Shutdown(ctx)
	a.Close()
	return err
}

// Close waits for in-flight mail and closes the database.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.mail != nil {
		a.mail.Close()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
