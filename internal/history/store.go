// Package history is the append-only audit log of terminal jobs. It backs
// the /api/history listing and nothing else: live job state stays in
// memory, and nothing here is ever read to resurrect a job after restart.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/hlsget/hlsget/internal/domain"
)

type Store struct {
	db     *sql.DB
	driver string
}

// Open connects the audit store. driver is "sqlite" (dsn: file path) or
// "postgres" (dsn: connection string), and the schema is migrated in
// either case.
func Open(driver, dsn string) (*Store, error) {
	var db *sql.DB
	var err error

	switch driver {
	case "sqlite":
		if mkErr := os.MkdirAll(filepath.Dir(dsn), 0755); mkErr != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", mkErr)
		}
		db, err = sql.Open("sqlite", dsn+"?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)")
	case "postgres":
		db, err = sql.Open("pgx", dsn)
	default:
		return nil, fmt.Errorf("unknown history driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", driver, err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}

	store := &Store{db: db, driver: driver}

	if err := store.runMigrations(); err != nil {
		return nil, fmt.Errorf("could not migrate database: %w", err)
	}

	return store, nil
}

// Entry is one recorded terminal job.
type Entry struct {
	ID              string     `json:"id"`
	SourceURL       string     `json:"sourceUrl"`
	FromPage        bool       `json:"fromPage"`
	Status          string     `json:"status"`
	Downloaded      int        `json:"downloaded"`
	Failed          int        `json:"failed"`
	Total           int        `json:"total"`
	OutputFile      string     `json:"outputFile,omitempty"`
	StorageType     string     `json:"storageType,omitempty"`
	StorageLocation string     `json:"storageLocation,omitempty"`
	ErrorCode       string     `json:"error,omitempty"`
	ErrorMessage    string     `json:"errmsg,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
}

// Record persists a terminal job view. Re-recording the same job ID is a
// no-op.
func (s *Store) Record(ctx context.Context, view domain.JobView, inputs domain.JobInputs) error {
	e := Entry{
		ID:          view.ID,
		SourceURL:   inputs.SourceURL,
		FromPage:    inputs.FromPage,
		Status:      string(view.Status),
		CreatedAt:   view.CreatedAt,
		CompletedAt: view.CompletedAt,
	}
	if view.Result != nil && view.Result.Download != nil {
		e.Downloaded = view.Result.Download.Succeeded
		e.Failed = view.Result.Download.Failed
		e.Total = view.Result.Download.Total
		e.OutputFile = view.Result.Download.OutputFile
	}
	if view.Result != nil && view.Result.Storage != nil {
		e.StorageType = view.Result.Storage.Type
		e.StorageLocation = view.Result.Storage.Location
	}
	if view.Error != nil {
		e.ErrorCode = view.Error.Code
		e.ErrorMessage = view.Error.Message
	}

	query := s.rebind(`
		INSERT INTO job_history
			(id, source_url, from_page, status, segments_ok, segments_failed, segments_total,
			 output_file, storage_type, storage_location, error_code, error_message,
			 created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`)

	_, err := s.db.ExecContext(ctx, query,
		e.ID, e.SourceURL, e.FromPage, e.Status, e.Downloaded, e.Failed, e.Total,
		nullable(e.OutputFile), nullable(e.StorageType), nullable(e.StorageLocation),
		nullable(e.ErrorCode), nullable(e.ErrorMessage),
		e.CreatedAt, e.CompletedAt,
	)
	return err
}

// Recent returns the newest terminal records, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	query := s.rebind(`
		SELECT id, source_url, from_page, status, segments_ok, segments_failed, segments_total,
		       output_file, storage_type, storage_location, error_code, error_message,
		       created_at, completed_at
		FROM job_history
		ORDER BY completed_at DESC
		LIMIT ?`)

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var e Entry
		var outputFile, storageType, storageLocation, errorCode, errorMessage sql.NullString
		var completedAt sql.NullTime

		if err := rows.Scan(
			&e.ID, &e.SourceURL, &e.FromPage, &e.Status, &e.Downloaded, &e.Failed, &e.Total,
			&outputFile, &storageType, &storageLocation, &errorCode, &errorMessage,
			&e.CreatedAt, &completedAt,
		); err != nil {
			return nil, err
		}

		e.OutputFile = outputFile.String
		e.StorageType = storageType.String
		e.StorageLocation = storageLocation.String
		e.ErrorCode = errorCode.String
		e.ErrorMessage = errorMessage.String
		if completedAt.Valid {
			t := completedAt.Time
			e.CompletedAt = &t
		}

		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders to $N for postgres; sqlite takes them
// as-is.
func (s *Store) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
