package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"custodian/internal/app"
	"custodian/internal/platform/config"
	"custodian/internal/platform/logger"
)

// main wires the services through internal/app, serves the admin API and
// keeps the process lifecycle small.
func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(logger.Config{Format: cfg.Log.Format, Level: cfg.Log.Level})

	log.Info("initializing custodian",
		"addr", cfg.Server.Addr,
		"environment", cfg.Server.Environment,
		"persistent", cfg.Database.URL != "",
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	if err := a.StartStreaming(ctx); err != nil {
		closeApp(a, cfg.Server.ShutdownTimeout)
		return err
	}

	scheduler, err := a.Scheduler()
	if err != nil {
		closeApp(a, cfg.Server.ShutdownTimeout)
		return fmt.Errorf("schedule jobs: %w", err)
	}
	if cfg.Jobs.Enabled {
		scheduler.Start()
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting http server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err = <-serveErr:
		log.Error("server error", "error", err)
	}

	log.Info("shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Error("graceful shutdown failed", "error", shutdownErr)
	}
	if cfg.Jobs.Enabled {
		if stopErr := scheduler.Stop(shutdownCtx); stopErr != nil {
			log.Error("stop scheduler", "error", stopErr)
		}
	}
	if closeErr := a.Close(shutdownCtx); closeErr != nil {
		log.Error("release resources", "error", closeErr)
	}

	log.Info("server stopped")
	return err
}

func closeApp(a *app.App, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	_ = a.Close(ctx)
}
