package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ncrp-tools/complaints-tracker/internal/common"
	"github.com/ncrp-tools/complaints-tracker/internal/entity"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS complaints (
		id TEXT PRIMARY KEY,
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
		created_at TEXT NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS complaints_complaint_id_key
		ON complaints (complaint_id) WHERE complaint_id <> 'NOT FOUND'`,
}

type sqliteRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func openSQLite(ctx context.Context, path string, logger *slog.Logger) (*sqliteRepository, error) {
	logger.Info("opening database file", "path", path)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, common.WrapError(err, "open database")
	}
	// The file-level write lock makes extra connections pure contention.
	db.SetMaxOpenConns(1)

	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, common.WrapError(err, "ensure schema")
		}
	}
	return &sqliteRepository{db: db, logger: logger}, nil
}

func (r *sqliteRepository) InsertIfAbsent(ctx context.Context, rec *entity.ComplaintRecord) (bool, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO complaints (
			id, source, complaint_id, complaint_date, incident_datetime,
			mobile, email, full_address, district, state,
			cybercrime_type, platform, total_amount_lost, current_status,
			saved_filename, created_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		uuid.NewString(), rec.Source, rec.ComplaintID, rec.ComplaintDate, rec.IncidentDateTime,
		rec.Mobile, rec.Email, rec.FullAddress, rec.District, rec.State,
		rec.CybercrimeType, rec.Platform, rec.TotalAmountLost, rec.CurrentStatus,
		rec.SavedFilename, rec.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return false, common.WrapError(err, "insert complaint")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, common.WrapError(err, "insert complaint")
	}
	return n == 1, nil
}

func (r *sqliteRepository) ListRecent(ctx context.Context, limit int) ([]*entity.ComplaintRecord, error) {
	// rowid order is insertion order, which beats comparing the text
	// timestamps for rows written within the same instant.
	rows, err := r.db.QueryContext(ctx,
		`SELECT source, complaint_id, complaint_date, incident_datetime,
			mobile, email, full_address, district, state,
			cybercrime_type, platform, total_amount_lost, current_status,
			saved_filename, created_at
		FROM complaints ORDER BY rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, common.WrapError(err, "list complaints")
	}
	defer func() { _ = rows.Close() }()

	var out []*entity.ComplaintRecord
	for rows.Next() {
		rec := &entity.ComplaintRecord{}
		var createdAt string
		if err := rows.Scan(
			&rec.Source, &rec.ComplaintID, &rec.ComplaintDate, &rec.IncidentDateTime,
			&rec.Mobile, &rec.Email, &rec.FullAddress, &rec.District, &rec.State,
			&rec.CybercrimeType, &rec.Platform, &rec.TotalAmountLost, &rec.CurrentStatus,
			&rec.SavedFilename, &createdAt,
		); err != nil {
			return nil, common.WrapError(err, "scan complaint")
		}
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			rec.CreatedAt = ts
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *sqliteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *sqliteRepository) Close() {
	r.logger.Info("closing database connections")
	if err := r.db.Close(); err != nil {
		r.logger.Error("failed to close database", "error", err)
	}
}
