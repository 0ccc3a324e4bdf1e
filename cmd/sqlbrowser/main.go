package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/koustreak/sqlbrowser/internal/browser"
	"github.com/koustreak/sqlbrowser/internal/config"
	_ "github.com/koustreak/sqlbrowser/internal/database/mysql"
	_ "github.com/koustreak/sqlbrowser/internal/database/postgres"
	_ "github.com/koustreak/sqlbrowser/internal/database/sqlite"
	"github.com/koustreak/sqlbrowser/internal/filestore/minio"
	"github.com/koustreak/sqlbrowser/internal/logger"
	"github.com/koustreak/sqlbrowser/internal/server"
	"github.com/koustreak/sqlbrowser/internal/settings"
)

const drainTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a YAML config file (default $SQLBROWSER_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log := logger.New(cfg.Logger())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	log.InfoWith("starting sqlbrowser", map[string]interface{}{
		"listen":           cfg.Listen,
		"settings_backend": cfg.Settings.Backend,
		"locale":           cfg.Locale,
		"use_primary_key":  cfg.Edit.UsePrimaryKey,
	})

	ws := browser.New(store, browser.Options{
		Locale:        cfg.Locale,
		UsePrimaryKey: cfg.Edit.UsePrimaryKey,
		Logger:        log,
	})
	srv := server.New(cfg.Listen, ws, log)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(srv.ListenAndServe)

	// Shutdown trigger: drain in-flight requests when ctx is cancelled.
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WarnWith("drain did not complete", err, nil)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	log.Info("shutdown complete")
	return nil
}

// openStore builds the settings store selected by cfg.
func openStore(ctx context.Context, cfg *config.Config) (settings.Store, func(), error) {
	switch cfg.Settings.Backend {
	case config.BackendObject:
		fs, err := minio.New(ctx, &cfg.FileStore)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to object storage: %w", err)
		}
		return settings.NewObjectStore(fs, cfg.Settings.Bucket, cfg.Settings.Key), func() { _ = fs.Close() }, nil
	default:
		return settings.NewFileStore(cfg.Settings.Path), func() {}, nil
	}
}
