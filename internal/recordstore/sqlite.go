package recordstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/svcerr/internal/foundation/errors"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite-based record store.
// Use ":memory:" for in-memory database, or a file path for persistent storage.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, storeError("open", err)
	}
	// An in-memory database lives per connection.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db, now: time.Now}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, storeError("initialize", err)
	}

	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS error_records (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		request_id TEXT,
		kind TEXT NOT NULL,
		code TEXT NOT NULL,
		severity TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		payload BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_request_id ON error_records(request_id);
	CREATE INDEX IF NOT EXISTS idx_timestamp ON error_records(timestamp);
	CREATE INDEX IF NOT EXISTS idx_code ON error_records(code);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append adds a new record to the store.
func (s *SQLiteStore) Append(ctx context.Context, id string, rec errors.Record) error {
	if id == "" {
		return invalidInput("id", "record id must not be empty")
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = s.now()
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return storeError("marshal", err)
	}

	var requestID sql.NullString
	if rec.RequestID != nil {
		requestID = sql.NullString{String: *rec.RequestID, Valid: true}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO error_records (id, request_id, kind, code, severity, timestamp, payload) VALUES (?, ?, ?, ?, ?, ?, ?)",
		id, requestID, rec.Kind, string(rec.Code), rec.Severity.String(), rec.Timestamp.UnixNano(), payload,
	)
	if err != nil {
		return storeError("append", err)
	}

	return nil
}

// GetByRequestID retrieves all records for a request.
func (s *SQLiteStore) GetByRequestID(ctx context.Context, requestID string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, payload FROM error_records WHERE request_id = ? ORDER BY seq",
		requestID,
	)
	if err != nil {
		return nil, storeError("query", err)
	}
	defer func() { _ = rows.Close() }()

	return scanEntries(rows)
}

// GetRange retrieves records within a time range.
func (s *SQLiteStore) GetRange(ctx context.Context, start, end time.Time) ([]Entry, error) {
	if end.Before(start) {
		return nil, invalidInput("end", fmt.Sprintf("range end %s is before start %s", end, start))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, payload FROM error_records WHERE timestamp >= ? AND timestamp <= ? ORDER BY seq",
		start.UnixNano(), end.UnixNano(),
	)
	if err != nil {
		return nil, storeError("query", err)
	}
	defer func() { _ = rows.Close() }()

	return scanEntries(rows)
}

// CountByCode counts records per code since the given time.
func (s *SQLiteStore) CountByCode(ctx context.Context, since time.Time) (map[errors.Code]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT code, COUNT(*) FROM error_records WHERE timestamp >= ? GROUP BY code",
		since.UnixNano(),
	)
	if err != nil {
		return nil, storeError("count", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[errors.Code]int)
	for rows.Next() {
		var code string
		var n int
		if err := rows.Scan(&code, &n); err != nil {
			return nil, storeError("scan", err)
		}
		counts[errors.Code(code)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("iterate", err)
	}
	return counts, nil
}

// Prune deletes records older than before.
func (s *SQLiteStore) Prune(ctx context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM error_records WHERE timestamp < ?", before.UnixNano())
	if err != nil {
		return 0, storeError("prune", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storeError("prune", err)
	}
	return n, nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		var payload []byte

		if err := rows.Scan(&e.ID, &payload); err != nil {
			return nil, storeError("scan", err)
		}
		if err := json.Unmarshal(payload, &e.Record); err != nil {
			return nil, errors.New(errors.KindSerialization).
				Message("stored record payload is corrupt").
				Source(err).
				Component(component).
				With("record_id", e.ID).
				Build()
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, storeError("iterate", err)
	}

	return entries, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
