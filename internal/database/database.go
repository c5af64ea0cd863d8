package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"video-library/internal/indexer"
	"video-library/internal/logging"
	"video-library/internal/metrics"
	"video-library/internal/notify"
	"video-library/internal/video"
)

// Default timeout for database operations
const defaultTimeout = 5 * time.Second

// Database is the video collection.
type Database struct {
	db     *sql.DB
	dbPath string
	hub    *notify.Hub

	mu         sync.RWMutex
	videos     map[int]*video.Video
	byFilename map[string]*video.Video
	propTypes  map[string]*PropType
	// index covers the whole collection and answers flag queries.
	index *indexer.Indexer
}

// New opens the database FILE at dbPath, creating the schema if needed, and
// loads the collection into memory. The parent directory must already exist
// and be writable.
func New(ctx context.Context, dbPath string) (_ *Database, err error) {
	logging.Info("Database path: %s", dbPath)
	if err := checkPermissions(dbPath); err != nil {
		logging.Warn("database permission check: %v", err)
	}

	// WAL lets viewport reads proceed while a mutation commits; busy_timeout
	// waits out the remaining lock windows.
	dsn := dbPath + "?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("closing database after failed open: %v", closeErr)
		}
	}()

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	d := &Database{
		db:         db,
		dbPath:     dbPath,
		hub:        notify.NewHub(),
		videos:     make(map[int]*video.Video),
		byFilename: make(map[string]*video.Video),
		propTypes:  make(map[string]*PropType),
		index:      indexer.New(),
	}
	if err := d.initialize(ctx); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	if err := d.load(ctx); err != nil {
		return nil, fmt.Errorf("load collection: %w", err)
	}

	logging.Info("Database ready: %d videos, %d property types", len(d.videos), len(d.propTypes))
	return d, nil
}

func (d *Database) initialize(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { recordQuery("initialize_schema", start, err) }()

	schema := `
	CREATE TABLE IF NOT EXISTS videos (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filename TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL DEFAULT '',
		file_size INTEGER NOT NULL DEFAULT 0,
		date INTEGER NOT NULL,
		duration REAL NOT NULL DEFAULT 0,
		width INTEGER NOT NULL DEFAULT 0,
		height INTEGER NOT NULL DEFAULT 0,
		frame_rate REAL NOT NULL DEFAULT 0,
		video_codec TEXT NOT NULL DEFAULT '',
		audio_codec TEXT NOT NULL DEFAULT '',
		container_format TEXT NOT NULL DEFAULT '',
		similarity_id INTEGER,
		readable INTEGER NOT NULL DEFAULT 1,
		found INTEGER NOT NULL DEFAULT 1,
		discarded INTEGER NOT NULL DEFAULT 0,
		with_thumbnails INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS prop_types (
		name TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		multiple INTEGER NOT NULL DEFAULT 0,
		default_value TEXT
	);

	CREATE TABLE IF NOT EXISTS video_properties (
		video_id INTEGER NOT NULL REFERENCES videos(id) ON DELETE CASCADE,
		name TEXT NOT NULL REFERENCES prop_types(name) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (video_id, name, position)
	);

	CREATE INDEX IF NOT EXISTS idx_video_properties_name ON video_properties(name, value);

	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL
	);
	`

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx, schema)
	return err
}

// Close saves the term index and closes the database connection.
func (d *Database) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	saveErr := d.SaveIndex(ctx)
	return errors.Join(saveErr, d.db.Close())
}

// Ping checks that the database file still answers.
func (d *Database) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Subscribe registers fn for change notifications.
func (d *Database) Subscribe(fn func(notify.Event)) (unsubscribe func()) {
	return d.hub.Subscribe(fn)
}

// Stats returns the collection counts exported as metrics.
func (d *Database) Stats() metrics.Stats {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var stats metrics.Stats
	for _, v := range d.videos {
		switch {
		case v.Discarded:
			stats.Discarded++
		case v.Readable:
			stats.Readable++
		default:
			stats.Unreadable++
		}
	}
	stats.PropertyTypes = len(d.propTypes)
	return stats
}

// recordQuery records database query metrics
func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}

// UpdateDBMetrics updates database connection metrics
func (d *Database) UpdateDBMetrics() {
	stats := d.db.Stats()
	metrics.DBConnectionsOpen.Set(float64(stats.OpenConnections))
}

// withTx runs fn in a transaction, committing when it returns nil.
func (d *Database) withTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback also failed: %w", rbErr))
		}
		return err
	}
	return tx.Commit()
}

// checkPermissions reports an unwritable database directory and restores
// write permission on leftover WAL and shared-memory files.
func checkPermissions(dbPath string) error {
	dir := filepath.Dir(dbPath)
	probe, err := os.CreateTemp(dir, ".perm-test-*")
	if err != nil {
		return fmt.Errorf("directory %s not writable: %w", dir, err)
	}
	probe.Close()
	os.Remove(probe.Name())

	for _, path := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		info, err := os.Stat(path)
		if err != nil || info.Mode().Perm()&0o200 != 0 {
			continue
		}
		logging.Warn("%s is read-only (mode %v), writes will fail", path, info.Mode())
		if path == dbPath {
			continue
		}
		if err := os.Chmod(path, 0o600); err != nil {
			logging.Error("restoring write permission on %s: %v", path, err)
		}
	}
	return nil
}
