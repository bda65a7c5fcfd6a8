// Package main is the entry point for the vidfeed API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/prn-tf/vidfeed/internal/app"
	"github.com/prn-tf/vidfeed/internal/config"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to the config file")
	showVersion := pflag.Bool("version", false, "print version information and exit")
	pflag.Parse()

	if *showVersion {
		fmt.Printf("vidfeed server %s (built %s, commit %s)\n", Version, BuildTime, GitCommit)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := app.NewLogger(cfg.Logging, cfg.IsLocalEnv())
	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Str("env", cfg.Env).
		Msg("starting vidfeed server")

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server stopped with error")
	}
	logger.Info().Msg("server stopped")
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to release resources")
		}
	}()

	servers := []*http.Server{{
		Addr:         cfg.Server.Addr(),
		Handler:      a.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}}

	if a.Metrics != nil {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, a.Metrics.Handler())
		servers = append(servers, &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		})
	}

	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *http.Server) {
			logger.Info().Str("addr", srv.Addr).Msg("listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("serve %s: %w", srv.Addr, err)
			}
		}(srv)
	}

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutting down server...")
	case err := <-errCh:
		stop()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown %s: %w", srv.Addr, err))
		}
	}
	return errors.Join(errs...)
}
