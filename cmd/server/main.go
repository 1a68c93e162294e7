// Package main provides the blogicum binary: the web server plus the admin
// commands used to manage categories, locations and users.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"blogicum/internal/auth"
	"blogicum/internal/config"
	"blogicum/internal/db"
	"blogicum/internal/handlers"
	"blogicum/internal/metrics"
	"blogicum/internal/store"
)

const appName = "blogicum"

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
}

func rootCmd() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Blogicum blogging platform",
		Long: `Blogicum is a small blogging platform: authors publish posts into
categories, readers browse the feeds and comment.

Running without a subcommand starts the web server.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), g)
		},
	}

	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config")

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), g)
		},
	})
	cmd.AddCommand(migrateCmd(g))
	cmd.AddCommand(categoryCmd(g))
	cmd.AddCommand(locationCmd(g))
	cmd.AddCommand(userCmd(g))

	return cmd
}

// setup loads the configuration and installs the default logger.
func setup(g *globalFlags) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, nil, err
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// openDB opens and migrates the configured database.
func openDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	conn, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return conn, nil
}

func serve(ctx context.Context, g *globalFlags) error {
	cfg, logger, err := setup(g)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	h, err := handlers.New(store.New(conn), auth.NewManager(conn, cfg.SessionTTL, cfg.SecureCookies), handlers.Options{
		PageSize:      cfg.PageSize,
		SecureCookies: cfg.SecureCookies,
		Logger:        logger,
		Metrics:       metrics.New(),
	})
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Blogicum listening", "addr", cfg.Addr, "db", cfg.DBPath)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
