package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clinovo/medsync/internal/server"
	"github.com/clinovo/medsync/internal/server/config"
	"github.com/clinovo/medsync/internal/server/idempotency"
	"github.com/clinovo/medsync/internal/server/replay"
	"github.com/clinovo/medsync/internal/server/storage/boltdb"
	"github.com/clinovo/medsync/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "medsync-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger.Info("medsync server starting", "version", Version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clinicalStore, err := sqlite.New(ctx, cfg.SQLitePath)
	if err != nil {
		return fmt.Errorf("open clinical storage: %w", err)
	}
	defer func() { _ = clinicalStore.Close() }()

	idemStore, err := boltdb.New(ctx, cfg.BoltPath)
	if err != nil {
		return fmt.Errorf("open idempotency storage: %w", err)
	}
	defer func() { _ = idemStore.Close() }()

	cache := idempotency.NewCache(logger, idemStore, cfg.IdempotencyTTL, nil)
	cache.StartSweeper(cfg.SweepInterval)
	defer cache.Stop()

	service := replay.NewService(logger, clinicalStore, nil)

	srv := server.New(logger, cfg, service, cache)

	errC := make(chan error, 1)
	go func() {
		errC <- srv.Run()
	}()

	select {
	case err := <-errC:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return <-errC
}

func printVersion() {
	fmt.Printf("MedSync Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
