package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// ErrStoreNotFound is returned when a store file is required but missing.
var ErrStoreNotFound = errors.New("store not found")

// KV is a durable byte-string key-value mapping backed by one SQLite file.
type KV struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// path is the SQLite database file.
	path string

	// readOnly is true when the store was opened with Options.ReadOnly.
	readOnly bool
}

// Options configures how a store is opened.
type Options struct {
	// CreateIfNotExists creates the file and its directory if missing.
	CreateIfNotExists bool

	// EnableWAL switches the journal to write-ahead logging.
	EnableWAL bool

	// ReadOnly opens the file with mode=ro. It implies the file exists.
	ReadOnly bool
}

// DefaultOptions returns the options used for the crawl. WAL stays off so
// that the files can later be reopened with mode=ro without side files.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
	}
}

// ReadOnlyOptions returns the options used to reopen a store for export.
func ReadOnlyOptions() Options {
	return Options{ReadOnly: true}
}

// Open opens or creates the store file at path.
func Open(path string, opts Options) (*KV, error) {
	if opts.ReadOnly || !opts.CreateIfNotExists {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrStoreNotFound, path)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check store path: %w", err)
		}
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	mode := "rwc"
	switch {
	case opts.ReadOnly:
		mode = "ro"
	case !opts.CreateIfNotExists:
		mode = "rw"
	}

	db, err := sql.Open("sqlite", "file:"+path+"?mode="+mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	// One connection serialises every statement, which keeps the
	// read-modify-write of a category marker atomic.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	kv := &KV{
		db:       db,
		path:     path,
		readOnly: opts.ReadOnly,
	}

	if opts.ReadOnly {
		if err := db.PingContext(context.Background()); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to open store: %w", err)
		}
		return kv, nil
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := kv.createTable(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return kv, nil
}

// Close closes the database connection.
func (kv *KV) Close() error {
	return kv.db.Close()
}

// Path returns the SQLite file backing the store.
func (kv *KV) Path() string {
	return kv.path
}

// createTable creates the key-value table if it doesn't exist.
func (kv *KV) createTable() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key BLOB PRIMARY KEY NOT NULL,
		value BLOB NOT NULL
	) WITHOUT ROWID;
	`
	_, err := kv.db.ExecContext(context.Background(), schema)
	return err
}

// Get returns the value stored for key, or def when the key is absent.
func (kv *KV) Get(ctx context.Context, key, def []byte) ([]byte, error) {
	var value []byte
	err := kv.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return def, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}
	return value, nil
}

// Has reports whether key is present.
func (kv *KV) Has(ctx context.Context, key []byte) (bool, error) {
	var one int
	err := kv.db.QueryRowContext(ctx, "SELECT 1 FROM kv WHERE key = ?", key).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up key: %w", err)
	}
	return true, nil
}

// Set stores value under key, replacing any previous value.
func (kv *KV) Set(ctx context.Context, key, value []byte) error {
	query := `
	INSERT INTO kv (key, value) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`
	if _, err := kv.db.ExecContext(ctx, query, key, nonNil(value)); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}
	return nil
}

// Len returns the number of keys.
func (kv *KV) Len(ctx context.Context) (int64, error) {
	var n int64
	if err := kv.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM kv").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count keys: %w", err)
	}
	return n, nil
}

// Keys iterates over all keys in ascending bytewise order, starting from
// the first key. The iteration holds the store's only connection, so the
// loop body must not call back into the same store.
func (kv *KV) Keys(ctx context.Context) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		rows, err := kv.db.QueryContext(ctx, "SELECT key FROM kv ORDER BY key")
		if err != nil {
			yield(nil, fmt.Errorf("failed to list keys: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var key []byte
			if err := rows.Scan(&key); err != nil {
				yield(nil, fmt.Errorf("failed to scan key: %w", err))
				return
			}
			if !yield(key, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, fmt.Errorf("failed to list keys: %w", err))
		}
	}
}

// nonNil turns a nil slice into an empty one so that it is stored as an
// empty BLOB rather than NULL.
func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
