package export

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kazi-app/ups/internal/domain"
)

// SQLiteStore is a Store backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the archive at path. Use ":memory:" for a
// throwaway database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open export archive: %w", err)
	}
	// a second connection to :memory: would see an empty database
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping export archive: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS exports (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL DEFAULT '',
		format TEXT NOT NULL,
		status TEXT NOT NULL,
		comment_count INTEGER NOT NULL DEFAULT 0,
		size INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT '',
		requested_by TEXT NOT NULL DEFAULT '',
		scheduled_for TIMESTAMP,
		created_at TIMESTAMP NOT NULL,
		completed_at TIMESTAMP,
		data BLOB
	);

	CREATE INDEX IF NOT EXISTS idx_exports_project ON exports(project_id, created_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create export schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, rec domain.ExportRecord, data []byte) error {
	query := `
	INSERT INTO exports (id, project_id, format, status, comment_count, size, error,
		requested_by, scheduled_for, created_at, completed_at, data)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		status = excluded.status,
		comment_count = excluded.comment_count,
		size = excluded.size,
		error = excluded.error,
		scheduled_for = excluded.scheduled_for,
		completed_at = excluded.completed_at,
		data = excluded.data
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.ProjectID, string(rec.Format), string(rec.Status),
		rec.CommentCount, rec.Size, rec.Error, rec.RequestedBy,
		nullTime(rec.ScheduledFor), rec.CreatedAt.UTC(), nullTime(rec.CompletedAt), data,
	)
	if err != nil {
		return fmt.Errorf("failed to save export %s: %w", rec.ID, err)
	}
	return nil
}

const selectColumns = `id, project_id, format, status, comment_count, size, error,
	requested_by, scheduled_for, created_at, completed_at`

func (s *SQLiteStore) Get(ctx context.Context, id string) (domain.ExportRecord, []byte, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+`, data FROM exports WHERE id = ?`, id)

	var data []byte
	rec, err := scanRecord(row, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ExportRecord{}, nil, ErrNotFound
	}
	if err != nil {
		return domain.ExportRecord{}, nil, fmt.Errorf("failed to load export %s: %w", id, err)
	}
	return rec, data, nil
}

func (s *SQLiteStore) List(ctx context.Context, projectID string) ([]domain.ExportRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM exports`
	var args []any
	if projectID != "" {
		query += ` WHERE project_id = ?`
		args = append(args, projectID)
	}
	query += ` ORDER BY created_at, rowid`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	defer rows.Close()

	var out []domain.ExportRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan export: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner, extra ...any) (domain.ExportRecord, error) {
	var (
		rec                     domain.ExportRecord
		format, status          string
		scheduledFor, completed sql.NullTime
	)
	dest := []any{
		&rec.ID, &rec.ProjectID, &format, &status, &rec.CommentCount, &rec.Size,
		&rec.Error, &rec.RequestedBy, &scheduledFor, &rec.CreatedAt, &completed,
	}
	if err := sc.Scan(append(dest, extra...)...); err != nil {
		return rec, err
	}
	rec.Format = domain.ExportFormat(format)
	rec.Status = domain.ExportStatus(status)
	if scheduledFor.Valid {
		t := scheduledFor.Time
		rec.ScheduledFor = &t
	}
	if completed.Valid {
		t := completed.Time
		rec.CompletedAt = &t
	}
	return rec, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
