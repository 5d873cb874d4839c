package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// dbFileName is the cache database file created inside the cache
// directory.
const dbFileName = "ceps-cache.db"

// Store provides SQLite-based storage for model responses.
//
// Design decision: We use a single database file shared by all
// analyzed sites rather than one file per site. Cache keys already
// encode the model and full request payload, so one table serves every
// page, and expiry can sweep everything in a single statement.
type Store struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	// ttl is how long a cached response stays valid. Zero disables
	// expiry.
	ttl time.Duration
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool

	// TTL is how long cached responses stay valid. Zero keeps them
	// forever.
	TTL time.Duration
}

// DefaultOptions returns the default cache options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
		TTL:               24 * time.Hour,
	}
}

// Open opens or creates a response cache in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dir, dbFileName)

	// Check if we should create the database or require it to exist
	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("cache not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check cache path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	// Build connection string
	// We use modernc.org/sqlite which uses a different connection string format.
	// When CreateIfNotExists is false, we use mode=rw to prevent creating new files.
	// When CreateIfNotExists is true, we use mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	// SQLite only supports one writer, and the cache sees at most a
	// handful of reads per analysis, so a single connection is enough.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{
		db:     db,
		dbPath: dbPath,
		ttl:    opts.TTL,
	}

	// Enable WAL mode if requested
	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (s *Store) createTables() error {
	schema := `
	-- Generations store raw model responses keyed by request digest
	CREATE TABLE IF NOT EXISTS generations (
		key TEXT PRIMARY KEY,
		response TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_generations_created ON generations(created_at);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// Get retrieves a cached response by request digest. A miss returns
// ("", false, nil). Expired entries count as misses and are deleted on
// the way out.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	query := `
	SELECT response, created_at FROM generations
	WHERE key = ?
	`

	var response string
	var createdAt string

	err := s.db.QueryRowContext(ctx, query, key).Scan(&response, &createdAt)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	if s.ttl > 0 {
		created := parseTimestamp(createdAt)
		if created.IsZero() || time.Since(created) > s.ttl {
			// Best-effort eviction; a failed delete just leaves the
			// row for the next sweep.
			_, _ = s.db.ExecContext(ctx, "DELETE FROM generations WHERE key = ?", key)
			return "", false, nil
		}
	}

	return response, true, nil
}

// Put stores a response under the request digest.
// Uses UPSERT so a refreshed response replaces the old one and resets
// its age.
func (s *Store) Put(ctx context.Context, key, response string) error {
	query := `
	INSERT INTO generations (key, response)
	VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET
		response = excluded.response,
		created_at = CURRENT_TIMESTAMP
	`

	if _, err := s.db.ExecContext(ctx, query, key, response); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}

	return nil
}

// PurgeExpired removes entries older than the configured TTL and
// returns how many were deleted. A zero TTL makes this a no-op.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}

	query := `
	DELETE FROM generations
	WHERE created_at < datetime('now', ?)
	`

	// SQLite datetime modifier format
	modifier := fmt.Sprintf("-%d seconds", int(s.ttl.Seconds()))

	result, err := s.db.ExecContext(ctx, query, modifier)
	if err != nil {
		return 0, fmt.Errorf("failed to purge cache: %w", err)
	}

	return result.RowsAffected()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
