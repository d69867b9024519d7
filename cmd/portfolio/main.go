// portfolio serves the blog and portfolio site. Configuration comes from
// environment variables (SECRET_KEY, BLOG_EMAIL, BLOG_PW, DATABASE_URL, ...);
// the flags below override the listen address, database path and log level.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/eringen/portfolio"
	"github.com/eringen/portfolio/views"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var addr, dbPath, logLevel, staticDir string

	flagSet := pflag.NewFlagSet("portfolio", pflag.ContinueOnError)
	flagSet.StringVar(&addr, "addr", "", "listen address (default $ADDR or :3000)")
	flagSet.StringVar(&dbPath, "db", "", "SQLite database path (default from $DATABASE_URL or data/blog.db)")
	flagSet.StringVar(&logLevel, "log-level", portfolio.EnvOr("LOG_LEVEL", "info"), "log level: debug, info, warn, error")
	flagSet.StringVar(&staticDir, "static", "public", "directory served under /public")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
	}
	logger := portfolio.NewLogger(os.Stderr, level)

	cfg, err := portfolio.ConfigFromEnv()
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Addr = addr
	}
	if dbPath != "" {
		cfg.DatabasePath = dbPath
	}

	app := portfolio.New(cfg, views.Funcs(),
		portfolio.WithLogger(logger),
		portfolio.WithStaticDir(staticDir),
	)
	if err := app.Setup(); err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() { errc <- app.Start() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errc:
		app.Close()
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.Shutdown(shutdownCtx)
}
