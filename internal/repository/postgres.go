package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ncrp-tools/complaints-tracker/internal/common"
	"github.com/ncrp-tools/complaints-tracker/internal/entity"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS complaints (
		id UUID PRIMARY KEY,
		source TEXT NOT NULL,
		complaint_id TEXT NOT NULL,
		complaint_date TEXT NOT NULL,
		incident_datetime TEXT NOT NULL,
		mobile TEXT NOT NULL,
		email TEXT NOT NULL,
		full_address TEXT NOT NULL,
		district TEXT NOT NULL,
		state TEXT NOT NULL,
		cybercrime_type TEXT NOT NULL,
		platform TEXT NOT NULL,
		total_amount_lost TEXT NOT NULL,
		current_status TEXT NOT NULL,
		saved_filename TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS complaints_complaint_id_key
		ON complaints (complaint_id) WHERE complaint_id <> 'NOT FOUND'`,
}

type postgresRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func openPostgres(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*postgresRepository, error) {
	logger.Info("connecting to database", "dsn", cfg.DSN)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "complaints-tracker"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = cfg.StatementTimeout.String()
	}

	dialCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	repo := &postgresRepository{pool: pool, logger: logger}
	for _, stmt := range postgresSchema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, common.WrapError(err, "ensure schema")
		}
	}

	logger.Info("successfully connected to database")
	return repo, nil
}

func (r *postgresRepository) InsertIfAbsent(ctx context.Context, rec *entity.ComplaintRecord) (bool, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO complaints (
			id, source, complaint_id, complaint_date, incident_datetime,
			mobile, email, full_address, district, state,
			cybercrime_type, platform, total_amount_lost, current_status,
			saved_filename, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		ON CONFLICT DO NOTHING`,
		uuid.New(), rec.Source, rec.ComplaintID, rec.ComplaintDate, rec.IncidentDateTime,
		rec.Mobile, rec.Email, rec.FullAddress, rec.District, rec.State,
		rec.CybercrimeType, rec.Platform, rec.TotalAmountLost, rec.CurrentStatus,
		rec.SavedFilename, rec.CreatedAt)
	if err != nil {
		return false, common.WrapError(err, "insert complaint")
	}
	return tag.RowsAffected() == 1, nil
}

func (r *postgresRepository) ListRecent(ctx context.Context, limit int) ([]*entity.ComplaintRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT source, complaint_id, complaint_date, incident_datetime,
			mobile, email, full_address, district, state,
			cybercrime_type, platform, total_amount_lost, current_status,
			saved_filename, created_at
		FROM complaints ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, common.WrapError(err, "list complaints")
	}
	defer rows.Close()

	var out []*entity.ComplaintRecord
	for rows.Next() {
		rec := &entity.ComplaintRecord{}
		if err := rows.Scan(
			&rec.Source, &rec.ComplaintID, &rec.ComplaintDate, &rec.IncidentDateTime,
			&rec.Mobile, &rec.Email, &rec.FullAddress, &rec.District, &rec.State,
			&rec.CybercrimeType, &rec.Platform, &rec.TotalAmountLost, &rec.CurrentStatus,
			&rec.SavedFilename, &rec.CreatedAt,
		); err != nil {
			return nil, common.WrapError(err, "scan complaint")
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *postgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *postgresRepository) Close() {
	r.logger.Info("closing database connections")
	r.pool.Close()
}
