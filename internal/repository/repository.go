// Package repository persists verified complaint records. Two backends share
// one schema: Postgres behind a pgx pool for shared deployments, SQLite for
// single-machine installs. The backend is picked from the DSN scheme.
package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ncrp-tools/complaints-tracker/internal/common"
	"github.com/ncrp-tools/complaints-tracker/internal/entity"
)

// ComplaintRepository stores verified complaint records.
type ComplaintRepository interface {
	// InsertIfAbsent persists the record unless a record with the same
	// complaint id already exists. Records whose complaint id is the
	// NOT FOUND sentinel are always inserted; the sentinel is not an
	// identity. Returns whether a row was written.
	InsertIfAbsent(ctx context.Context, rec *entity.ComplaintRecord) (bool, error)

	// ListRecent returns up to limit records, most recent first.
	ListRecent(ctx context.Context, limit int) ([]*entity.ComplaintRecord, error)

	Ping(ctx context.Context) error
	Close()
}

// Open connects the backend named by the DSN scheme and ensures the schema.
func Open(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (ComplaintRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch {
	case strings.HasPrefix(cfg.DSN, "sqlite://"):
		return openSQLite(ctx, strings.TrimPrefix(cfg.DSN, "sqlite://"), logger)
	case strings.HasPrefix(cfg.DSN, "postgres://"), strings.HasPrefix(cfg.DSN, "postgresql://"):
		return openPostgres(ctx, cfg, logger)
	default:
		return nil, common.NewAppError("CONFIG_ERROR",
			fmt.Sprintf("unsupported DB_URL scheme in %q", cfg.DSN), common.ErrInvalidInput)
	}
}
