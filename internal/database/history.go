package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/a11yscan/internal/model"
)

// HistoryDB provides SQLite-based storage for scan and export history.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging so listing history does not
	// block a running server.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// ErrNotFound is returned by Open when the database is required to exist.
var ErrNotFound = errors.New("history database not found")

// Open opens or creates a HistoryDB at dbPath.
// If CreateIfNotExists is true, the parent directory and database file are created.
func Open(dbPath string, opts Options) (*HistoryDB, error) {
	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (h *HistoryDB) createTables() error {
	schema := `
	-- One row per scanned target, successful or not
	CREATE TABLE IF NOT EXISTS scans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scan_id TEXT NOT NULL UNIQUE,
		target TEXT NOT NULL,
		kind TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		success INTEGER NOT NULL,
		violations_count INTEGER DEFAULT 0,
		passes_count INTEGER DEFAULT 0,
		incomplete_count INTEGER DEFAULT 0,
		by_impact TEXT,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_scans_target ON scans(target);
	CREATE INDEX IF NOT EXISTS idx_scans_timestamp ON scans(timestamp);

	-- One row per exported report file
	CREATE TABLE IF NOT EXISTS exports (
		id TEXT PRIMARY KEY,
		path TEXT NOT NULL,
		format TEXT NOT NULL,
		total_violations INTEGER DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_exports_created ON exports(created_at);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// ScanRecord represents one stored scan.
type ScanRecord struct {
	ID              int64     `json:"id"`
	ScanID          string    `json:"scanId"`
	Target          string    `json:"target"`
	Kind            string    `json:"kind"`
	Timestamp       time.Time `json:"timestamp"`
	Success         bool      `json:"success"`
	ViolationsCount int       `json:"violationsCount"`
	PassesCount     int       `json:"passesCount"`
	IncompleteCount int       `json:"incompleteCount"`

	// ByImpact tallies the returned violations, which may be truncated.
	ByImpact model.ImpactTally `json:"byImpact"`

	Error string `json:"error,omitempty"`
}

// NewScanRecord builds the history row for a finished scan.
// Exactly one of result and scanErr is expected to be non-nil.
func NewScanRecord(cfg *model.ScanConfig, result *model.ScanResult, scanErr error, at time.Time) *ScanRecord {
	record := &ScanRecord{
		ScanID:    cfg.ScanID,
		Target:    cfg.Target.Label(),
		Kind:      cfg.Target.Kind().String(),
		Timestamp: at,
		ByImpact:  model.ImpactTally{},
	}

	if result != nil {
		record.Success = true
		record.Timestamp = result.Summary.Timestamp
		record.ViolationsCount = result.Summary.ViolationsCount
		record.PassesCount = result.Summary.PassesCount
		record.IncompleteCount = result.Summary.IncompleteCount
		for _, v := range result.Violations {
			if v.Impact != model.ImpactUnknown {
				record.ByImpact[v.Impact]++
			}
		}
	}
	if scanErr != nil {
		record.Success = false
		record.Error = scanErr.Error()
	}

	return record
}

// RecordScan stores a scan record and returns its row ID.
func (h *HistoryDB) RecordScan(ctx context.Context, record *ScanRecord) (int64, error) {
	impactJSON, err := json.Marshal(record.ByImpact)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize impact tally: %w", err)
	}

	query := `
	INSERT INTO scans (scan_id, target, kind, timestamp, success, violations_count, passes_count, incomplete_count, by_impact, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := h.db.ExecContext(ctx, query,
		record.ScanID,
		record.Target,
		record.Kind,
		formatTimestamp(record.Timestamp),
		record.Success,
		record.ViolationsCount,
		record.PassesCount,
		record.IncompleteCount,
		string(impactJSON),
		record.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert scan record: %w", err)
	}

	return result.LastInsertId()
}

// ListScans returns scan records, newest first.
// An empty target lists every target; limit <= 0 means no limit.
func (h *HistoryDB) ListScans(ctx context.Context, target string, limit int) ([]ScanRecord, error) {
	query := `
	SELECT id, scan_id, target, kind, timestamp, success, violations_count, passes_count, incomplete_count, by_impact, error
	FROM scans
	WHERE (? = '' OR target = ?)
	ORDER BY timestamp DESC, id DESC
	LIMIT ?
	`
	if limit <= 0 {
		limit = -1
	}

	rows, err := h.db.QueryContext(ctx, query, target, target, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	defer rows.Close()

	var records []ScanRecord
	for rows.Next() {
		var record ScanRecord
		var timestamp string
		var impactJSON, errText sql.NullString

		if err := rows.Scan(
			&record.ID,
			&record.ScanID,
			&record.Target,
			&record.Kind,
			&timestamp,
			&record.Success,
			&record.ViolationsCount,
			&record.PassesCount,
			&record.IncompleteCount,
			&impactJSON,
			&errText,
		); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		record.Timestamp = parseTimestamp(timestamp)
		record.Error = errText.String
		record.ByImpact = model.ImpactTally{}
		if impactJSON.Valid && impactJSON.String != "" {
			if err := json.Unmarshal([]byte(impactJSON.String), &record.ByImpact); err != nil {
				record.ByImpact = model.ImpactTally{}
			}
		}

		records = append(records, record)
	}

	return records, rows.Err()
}

// RecordExport stores an export record.
func (h *HistoryDB) RecordExport(ctx context.Context, record *model.ExportRecord) error {
	query := `
	INSERT INTO exports (id, path, format, total_violations, created_at)
	VALUES (?, ?, ?, ?, ?)
	`

	_, err := h.db.ExecContext(ctx, query,
		record.ID,
		record.Path,
		record.Format,
		record.TotalViolations,
		formatTimestamp(record.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert export record: %w", err)
	}
	return nil
}

// ListExports returns export records, newest first. limit <= 0 means no limit.
func (h *HistoryDB) ListExports(ctx context.Context, limit int) ([]model.ExportRecord, error) {
	query := `
	SELECT id, path, format, total_violations, created_at
	FROM exports
	ORDER BY created_at DESC
	LIMIT ?
	`
	if limit <= 0 {
		limit = -1
	}

	rows, err := h.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	defer rows.Close()

	var records []model.ExportRecord
	for rows.Next() {
		var record model.ExportRecord
		var createdAt string

		if err := rows.Scan(&record.ID, &record.Path, &record.Format, &record.TotalViolations, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		record.CreatedAt = parseTimestamp(createdAt)
		records = append(records, record)
	}

	return records, rows.Err()
}

// storedTimestampFormat sorts lexically in chronological order.
const storedTimestampFormat = "2006-01-02T15:04:05.000000000Z"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(storedTimestampFormat)
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	storedTimestampFormat,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
	"2006-01-02 15:04:05",     // SQLite default datetime format
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
