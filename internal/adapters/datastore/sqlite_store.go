package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	// Pure-Go SQLite driver, registers "sqlite"
	_ "modernc.org/sqlite"

	"github.com/tunedinout/esfiddle/internal/core/domain"
	"github.com/tunedinout/esfiddle/internal/core/ports"
)

// SchemaVersion is the version provisioned by Open
const SchemaVersion = 1

// MemoryPath opens a private in-memory store (tests)
const MemoryPath = ":memory:"

var errClosed = errors.New("datastore closed")

// SQLiteStore is the local embedded store holding file records.
// Each operation acquires and releases its own transaction.
type SQLiteStore struct {
	path   string
	logger *zap.Logger

	mu     sync.Mutex // guards db and closed
	db     *sql.DB
	closed bool
}

var _ ports.Datastore = (*SQLiteStore)(nil)

// NewSQLiteStore creates a store for the given path without touching disk
func NewSQLiteStore(path string, logger *zap.Logger) *SQLiteStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLiteStore{
		path:   path,
		logger: logger.Named("datastore"),
	}
}

// Open opens (creating on first use) the store and provisions the schema.
// Calling Open on an open store is a no-op.
func (s *SQLiteStore) Open(ctx context.Context) error {
	_, err := s.conn(ctx)
	return err
}

// OpenSQLiteStore is NewSQLiteStore followed by Open
func OpenSQLiteStore(ctx context.Context, path string, logger *zap.Logger) (*SQLiteStore, error) {
	s := NewSQLiteStore(path, logger)
	if err := s.Open(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// conn returns the open handle, opening it on first use
func (s *SQLiteStore) conn(ctx context.Context) (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, errClosed)
	}
	if s.db != nil {
		return s.db, nil
	}

	db, err := s.openDB(ctx)
	if err != nil {
		s.logger.Error("failed to open database", zap.String("path", s.path), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	s.db = db
	s.logger.Info("database ready", zap.String("path", s.path), zap.Int("schema_version", SchemaVersion))
	return db, nil
}

func (s *SQLiteStore) openDB(ctx context.Context) (*sql.DB, error) {
	dsn := s.path
	if s.path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		dsn = s.path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One connection: transactions queue up behind each other, and an
	// in-memory database stays the same database.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return db, nil
}

// initSchema provisions the files collection. Every statement is IF NOT EXISTS
// so re-running it is harmless.
func initSchema(ctx context.Context, db *sql.DB) error {
	const schemaVersionTable = `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL
		);
	`
	if _, err := db.ExecContext(ctx, schemaVersionTable); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var version int
	if err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version); err != nil {
		return fmt.Errorf("check schema version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(ctx, db); err != nil {
			return fmt.Errorf("migrate to v1: %w", err)
		}
	}

	return nil
}

// migrateToV1 creates the files table keyed by id with a non-unique timestamp index
func migrateToV1(ctx context.Context, db *sql.DB) error {
	const filesTable = `
		CREATE TABLE IF NOT EXISTS files (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			data TEXT NOT NULL,
			timestamp INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_files_timestamp ON files(timestamp);
	`

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, filesTable); err != nil {
		return fmt.Errorf("create files table: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO schema_version (version, applied_at) VALUES (?, ?)",
		1,
		time.Now().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("record migration: %w", err)
	}

	return tx.Commit()
}

// withTx runs fn inside one read-write transaction and converts failures to *domain.IOError
func (s *SQLiteStore) withTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	return s.beginTx(ctx, op, nil, fn)
}

// withReadTx is withTx for reads. The driver does not enforce ReadOnly, so the
// connection is switched to query_only for the lifetime of the transaction.
func (s *SQLiteStore) withReadTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	return s.beginTx(ctx, op, &sql.TxOptions{ReadOnly: true}, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "PRAGMA query_only = ON"); err != nil {
			return err
		}
		defer func() {
			if _, err := tx.ExecContext(context.WithoutCancel(ctx), "PRAGMA query_only = OFF"); err != nil {
				s.logger.Error("failed to leave query_only mode", zap.String("op", op), zap.Error(err))
			}
		}()
		return fn(tx)
	})
}

func (s *SQLiteStore) beginTx(ctx context.Context, op string, opts *sql.TxOptions, fn func(tx *sql.Tx) error) error {
	db, err := s.conn(ctx)
	if err != nil {
		return domain.NewIOError(op, err)
	}

	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return domain.NewIOError(op, err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		if errors.Is(err, ports.ErrSkipWrite) {
			return err
		}
		return domain.NewIOError(op, err)
	}

	if err := tx.Commit(); err != nil {
		return domain.NewIOError(op, err)
	}
	return nil
}

const selectColumns = "SELECT id, name, data, timestamp FROM files"

const upsertRecord = `
	INSERT INTO files (id, name, data, timestamp) VALUES (?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name,
		data = excluded.data,
		timestamp = excluded.timestamp
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.FileRecord, error) {
	var rec domain.FileRecord
	if err := row.Scan(&rec.ID, &rec.Name, &rec.Data, &rec.Timestamp); err != nil {
		return nil, err
	}
	return &rec, nil
}

func getTx(ctx context.Context, tx *sql.Tx, id string) (*domain.FileRecord, error) {
	rec, err := scanRecord(tx.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

// Get returns the record stored under id, or nil when absent
func (s *SQLiteStore) Get(ctx context.Context, id string) (*domain.FileRecord, error) {
	var out *domain.FileRecord
	err := s.withReadTx(ctx, "get", func(tx *sql.Tx) error {
		rec, err := getTx(ctx, tx, id)
		out = rec
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Put inserts or replaces the record with the same id
func (s *SQLiteStore) Put(ctx context.Context, record domain.FileRecord) error {
	return s.withTx(ctx, "put", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, upsertRecord, record.ID, record.Name, record.Data, record.Timestamp)
		return err
	})
}

// Update runs read-modify-write for one id inside a single transaction.
// fn returning ports.ErrSkipWrite leaves the store unchanged.
func (s *SQLiteStore) Update(ctx context.Context, id string, fn func(existing *domain.FileRecord) (*domain.FileRecord, error)) (*domain.FileRecord, error) {
	var out *domain.FileRecord
	var existing *domain.FileRecord

	err := s.withTx(ctx, "update", func(tx *sql.Tx) error {
		var err error
		existing, err = getTx(ctx, tx, id)
		if err != nil {
			return err
		}

		next, err := fn(existing)
		if err != nil {
			return err
		}
		if next == nil {
			return fmt.Errorf("update of %s produced no record", id)
		}

		if _, err := tx.ExecContext(ctx, upsertRecord, next.ID, next.Name, next.Data, next.Timestamp); err != nil {
			return err
		}
		out = next
		return nil
	})

	if errors.Is(err, ports.ErrSkipWrite) {
		return existing, nil
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the record; deleting a missing id is a no-op
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	return s.withTx(ctx, "delete", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "DELETE FROM files WHERE id = ?", id)
		return err
	})
}

// GetAll returns every record, oldest first, ties broken by id
func (s *SQLiteStore) GetAll(ctx context.Context) ([]domain.FileRecord, error) {
	records := []domain.FileRecord{}
	err := s.withReadTx(ctx, "getAll", func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, selectColumns+" ORDER BY timestamp ASC, id ASC")
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			rec, err := scanRecord(rows)
			if err != nil {
				return err
			}
			records = append(records, *rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// GetMostRecentByTimestamp walks the timestamp index newest first and returns
// the first record. Equal timestamps resolve to the greatest id.
func (s *SQLiteStore) GetMostRecentByTimestamp(ctx context.Context) (*domain.FileRecord, error) {
	var out *domain.FileRecord
	err := s.withReadTx(ctx, "getMostRecent", func(tx *sql.Tx) error {
		rec, err := scanRecord(tx.QueryRowContext(ctx, selectColumns+" ORDER BY timestamp DESC, id DESC LIMIT 1"))
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		out = rec
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Close releases the database handle. Operations after Close fail with ErrStorageUnavailable.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Path returns the database location
func (s *SQLiteStore) Path() string {
	return s.path
}
