package portfolio

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/eringen/portfolio/mailer"
)

// SiteConfig holds all configuration for a portfolio site. It is passed to
// New explicitly; nothing is read from the environment after startup.
type SiteConfig struct {
	Name        string // Site name (default "Blog")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags
	Author      string // Author name for JSON-LD

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path (default "data/blog.db")

	SessionSecret string // Required: session signing secret
	CookieSecure  bool   // Set true for HTTPS

	Mail          MailConfig
	MailQueueSize int // Pending contact messages (default 16)

	LoginAttempts int           // Failed logins allowed per IP per window (default 5)
	LoginWindow   time.Duration // Login limiter window (default 1m)
}

// MailConfig describes the outbound SMTP account used by the contact form.
type MailConfig struct {
	Host     string        // default "smtp.gmail.com"
	Port     int           // default 587
	Username string        // account login, also the From address
	Password string
	To       string        // recipient of contact messages
	Timeout  time.Duration // per message, default 30s
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimSuffix(c.URL, "/")
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/blog.db"
	}
	if c.Mail.Host == "" {
		c.Mail.Host = "smtp.gmail.com"
	}
	if c.Mail.Port <= 0 {
		c.Mail.Port = 587
	}
	if c.Mail.To == "" {
		c.Mail.To = c.Mail.Username
	}
	if c.Mail.Timeout <= 0 {
		c.Mail.Timeout = 30 * time.Second
	}
	if c.MailQueueSize <= 0 {
		c.MailQueueSize = 16
	}
	if c.LoginAttempts <= 0 {
		c.LoginAttempts = defaultLoginAttempts
	}
	if c.LoginWindow <= 0 {
		c.LoginWindow = defaultLoginWindow
	}
}

// ConfigFromEnv builds a SiteConfig from environment variables. Unset values
// are left empty so that New can apply defaults.
func ConfigFromEnv() (SiteConfig, error) {
	cfg := SiteConfig{
		Name:          os.Getenv("SITE_NAME"),
		URL:           os.Getenv("SITE_URL"),
		Description:   os.Getenv("SITE_DESCRIPTION"),
		Author:        os.Getenv("SITE_AUTHOR"),
		Addr:          os.Getenv("ADDR"),
		SessionSecret: os.Getenv("SECRET_KEY"),
		CookieSecure:  strings.EqualFold(os.Getenv("COOKIE_SECURE"), "true"),
		Mail: MailConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Username: os.Getenv("BLOG_EMAIL"),
			Password: os.Getenv("BLOG_PW"),
			To:       os.Getenv("CONTACT_TO"),
		},
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return SiteConfig{}, fmt.Errorf("portfolio: invalid SMTP_PORT %q: %w", v, err)
		}
		cfg.Mail.Port = port
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		path, err := ParseDatabaseURL(v)
		if err != nil {
			return SiteConfig{}, err
		}
		cfg.DatabasePath = path
	}
	return cfg, nil
}

// ParseDatabaseURL accepts "sqlite:///path/to.db", "sqlite://to.db" or a bare
// file path and returns the SQLite file path.
func ParseDatabaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	scheme, rest, found := strings.Cut(raw, "://")
	if !found {
		return raw, nil
	}
	if scheme != "sqlite" {
		return "", fmt.Errorf("portfolio: unsupported database scheme %q", scheme)
	}
	// sqlite:///blog.db is relative, sqlite:////abs/blog.db is absolute.
	rest = strings.TrimPrefix(rest, "/")
	if rest == "" {
		return "", fmt.Errorf("portfolio: database URL %q has no path", raw)
	}
	return rest, nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Option configures additional App behavior.
type Option func(*App)

// WithStaticDir sets the directory for static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithLogger replaces the default logger.
func WithLogger(l zerolog.Logger) Option {
	return func(a *App) {
		a.Log = l
	}
}

// WithMailTransport replaces the SMTP transport built from SiteConfig.Mail.
func WithMailTransport(t mailer.Transport) Option {
	return func(a *App) {
		a.transport = t
	}
}

// WithPasswordCost sets the bcrypt cost used for new password hashes.
func WithPasswordCost(cost int) Option {
	return func(a *App) {
		a.passwordCost = cost
	}
}

// WithClock overrides the time source used to stamp post dates.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}
