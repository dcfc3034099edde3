// Package journal keeps a local Postgres ledger of committed counts and of
// photo uploads that failed after their count was committed.
package journal

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/Konyali-Saat/konyali-optik-sayim/internal/models"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// CountRecord is one committed count as the station saw it.
type CountRecord struct {
	ID          int64              `json:"id"`
	SessionID   string             `json:"session_id"`
	RecordID    string             `json:"record_id"`
	Barcode     string             `json:"barcode"`
	MatchStatus models.MatchStatus `json:"match_status"`
	Category    models.Category    `json:"category"`
	SKUID       *string            `json:"sku_id,omitempty"`
	SKU         *string            `json:"sku,omitempty"`
	Operator    *string            `json:"operator,omitempty"`
	Unlisted    bool               `json:"unlisted"`
	CreatedAt   time.Time          `json:"created_at"`
}

// PhotoFailure marks a count record whose photo never reached the upstream.
type PhotoFailure struct {
	ID        int64           `json:"id"`
	SessionID string          `json:"session_id"`
	RecordID  string          `json:"record_id"`
	Category  models.Category `json:"category"`
	Filename  string          `json:"filename"`
	Error     string          `json:"error"`
	CreatedAt time.Time       `json:"created_at"`
}

// Open connects to dbURL and verifies the connection.
func Open(ctx context.Context, dbURL string) (*sql.DB, error) {
	dbURL = strings.TrimSpace(dbURL)
	if dbURL == "" {
		return nil, errors.New("database url is required")
	}
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping journal database: %w", err)
	}
	return db, nil
}

// Migrate applies the embedded migrations to dbURL.
func Migrate(dbURL string) error {
	m, err := NewMigrator(dbURL)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply journal migrations: %w", err)
	}
	return nil
}

// NewMigrator returns a migrator over the embedded journal migrations.
func NewMigrator(dbURL string) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("load journal migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dbURL)
	if err != nil {
		return nil, fmt.Errorf("open journal migrator: %w", err)
	}
	return m, nil
}

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db: db,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

const countRecordColumns = `
	id,
	session_id,
	record_id,
	barcode,
	match_status,
	category,
	sku_id,
	sku,
	operator,
	unlisted,
	created_at
`

func (s *Store) RecordCount(ctx context.Context, record CountRecord) error {
	if s == nil || s.db == nil {
		return errors.New("journal store is not configured")
	}
	if strings.TrimSpace(record.RecordID) == "" {
		return errors.New("record id is required")
	}
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO count_records
			(session_id, record_id, barcode, match_status, category, sku_id, sku, operator, unlisted, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		strings.TrimSpace(record.SessionID),
		strings.TrimSpace(record.RecordID),
		record.Barcode,
		string(record.MatchStatus),
		string(record.Category),
		nullableString(record.SKUID),
		nullableString(record.SKU),
		nullableString(record.Operator),
		record.Unlisted,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record count: %w", err)
	}
	return nil
}

func (s *Store) RecordPhotoFailure(ctx context.Context, failure PhotoFailure) error {
	if s == nil || s.db == nil {
		return errors.New("journal store is not configured")
	}
	if strings.TrimSpace(failure.RecordID) == "" {
		return errors.New("record id is required")
	}
	createdAt := failure.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO photo_upload_failures (session_id, record_id, category, filename, error, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		strings.TrimSpace(failure.SessionID),
		strings.TrimSpace(failure.RecordID),
		string(failure.Category),
		failure.Filename,
		failure.Error,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record photo failure: %w", err)
	}
	return nil
}

// ListRecent returns the newest counts first. An empty sessionID lists all
// sessions.
func (s *Store) ListRecent(ctx context.Context, sessionID string, limit int) ([]CountRecord, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("journal store is not configured")
	}
	limit = clampLimit(limit)
	sessionID = strings.TrimSpace(sessionID)

	var (
		rows *sql.Rows
		err  error
	)
	if sessionID == "" {
		rows, err = s.db.QueryContext(
			ctx,
			`SELECT`+countRecordColumns+`FROM count_records ORDER BY created_at DESC, id DESC LIMIT $1`,
			limit,
		)
	} else {
		rows, err = s.db.QueryContext(
			ctx,
			`SELECT`+countRecordColumns+`FROM count_records WHERE session_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`,
			sessionID,
			limit,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list count records: %w", err)
	}
	defer rows.Close()

	records := make([]CountRecord, 0)
	for rows.Next() {
		record, err := scanCountRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading count records: %w", err)
	}
	return records, nil
}

func (s *Store) ListPhotoFailures(ctx context.Context, limit int) ([]PhotoFailure, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("journal store is not configured")
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, session_id, record_id, category, filename, error, created_at
		 FROM photo_upload_failures
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list photo failures: %w", err)
	}
	defer rows.Close()

	failures := make([]PhotoFailure, 0)
	for rows.Next() {
		var failure PhotoFailure
		var category string
		if err := rows.Scan(
			&failure.ID,
			&failure.SessionID,
			&failure.RecordID,
			&category,
			&failure.Filename,
			&failure.Error,
			&failure.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan photo failure: %w", err)
		}
		failure.Category = models.Category(category)
		failures = append(failures, failure)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading photo failures: %w", err)
	}
	return failures, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCountRecord(scanner rowScanner) (CountRecord, error) {
	var (
		record      CountRecord
		matchStatus string
		category    string
		skuID       sql.NullString
		sku         sql.NullString
		operator    sql.NullString
	)
	if err := scanner.Scan(
		&record.ID,
		&record.SessionID,
		&record.RecordID,
		&record.Barcode,
		&matchStatus,
		&category,
		&skuID,
		&sku,
		&operator,
		&record.Unlisted,
		&record.CreatedAt,
	); err != nil {
		return CountRecord{}, fmt.Errorf("failed to scan count record: %w", err)
	}
	record.MatchStatus = models.MatchStatus(matchStatus)
	record.Category = models.Category(category)
	record.SKUID = fromNullString(skuID)
	record.SKU = fromNullString(sku)
	record.Operator = fromNullString(operator)
	return record, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func nullableString(value *string) any {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return trimmed
}

func fromNullString(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	out := value.String
	return &out
}
