// Command replicad runs a Client Replica against a running sync
// server: it mirrors the registered tables into an embedded SQLite
// database and pushes/pulls on a fixed poll interval, per spec.md §4.F.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Valstan/MatricaRMZ-sub006/common/mlog"
	"github.com/Valstan/MatricaRMZ-sub006/internal/registry"
	"github.com/Valstan/MatricaRMZ-sub006/internal/replica"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadReplicadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := mlog.NewZapLogger(mlog.InfoLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	transport := newHTTPTransport(cfg.ServerURL, cfg.AuthToken)

	reg := registry.New()

	r, err := replica.Open(cfg.DBPath, reg, transport, logger)
	if err != nil {
		return fmt.Errorf("open replica: %w", err)
	}
	defer r.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := r.CreateSchema(ctx, cfg.ClientID); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	logger.Infof("replica %s polling %s every %dms", cfg.ClientID, cfg.ServerURL, cfg.PollIntervalMS)

	poll(ctx, r, cfg, logger)

	return nil
}

// poll runs push/pull cycles until ctx is cancelled, logging but never
// aborting on a single cycle's failure - the next tick tries again,
// same as any other long-lived sync client.
func poll(ctx context.Context, r *replica.Replica, cfg *replicadConfig, logger mlog.Logger) {
	ticker := time.NewTicker(time.Duration(cfg.PollIntervalMS) * time.Millisecond)
	defer ticker.Stop()

	runCycle(ctx, r, cfg, logger)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runCycle(ctx, r, cfg, logger)
		}
	}
}

func runCycle(ctx context.Context, r *replica.Replica, cfg *replicadConfig, logger mlog.Logger) {
	if err := r.Push(ctx, cfg.ClientID, cfg.limits()); err != nil {
		logger.Errorf("push cycle failed: %v", err)
	}

	if err := r.Pull(ctx, int(cfg.PullLimit)); err != nil {
		logger.Errorf("pull cycle failed: %v", err)
	}
}
