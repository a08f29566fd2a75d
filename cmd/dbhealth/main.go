package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/ncrp-tools/complaints-tracker/internal/common"
	"github.com/ncrp-tools/complaints-tracker/internal/repository"
)

// dbhealth opens the configured database, pings it and runs one typed query,
// catching DSN and schema issues before the server is deployed.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	repo, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("opening db", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := repo.Ping(pingCtx); err != nil {
		logger.Error("db health: FAIL", "error", err)
		os.Exit(1)
	}
	logger.Info("db health: OK")

	records, err := repo.ListRecent(ctx, 5)
	if err != nil {
		logger.Error("listing complaints", "error", err)
		os.Exit(1)
	}
	logger.Info("recent complaints", "count", len(records))
	for _, r := range records {
		logger.Info("complaint", "id", r.ComplaintID, "status", r.CurrentStatus, "created_at", r.CreatedAt)
	}
}
