package database

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/segmenter/pkg/util"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

const defaultDatabasePath = "data/bus_data.db"

var ErrRouteNotFound = errors.New("route not found")

// DB is the SQLite store holding routes, stops, fare zones and the computed
// segments. It runs in WAL mode so readers are never blocked by a segment run.
type DB struct {
	conn    *sql.DB
	path    string
	writeMu sync.Mutex
}

// Connect opens the database named by SEGMENTER_DB_PATH.
func Connect() (*DB, error) {
	return Open(util.GetEnvironmentVariable("SEGMENTER_DB_PATH", defaultDatabasePath))
}

func Open(path string) (*DB, error) {
	pragmas := url.Values{}
	pragmas.Add("_pragma", "journal_mode(WAL)")
	pragmas.Add("_pragma", "busy_timeout(5000)")
	pragmas.Add("_pragma", "synchronous(NORMAL)")
	pragmas.Add("_pragma", "foreign_keys(1)")

	conn, err := sql.Open("sqlite", fmt.Sprintf("file:%s?%s", path, pragmas.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(8)
	conn.SetMaxIdleConns(4)
	conn.SetConnMaxLifetime(time.Hour)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Str("path", path).Msg("Connected to SQLite database")

	return &DB{conn: conn, path: path}, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) PingContext(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

func (db *DB) Conn() *sql.DB {
	return db.conn
}

func (db *DB) EnsureSchema(ctx context.Context) error {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	if _, err := db.conn.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	log.Debug().Msg("Database schema ensured")
	return nil
}

// JournalMode returns the journal mode currently in effect.
func (db *DB) JournalMode(ctx context.Context) (string, error) {
	var mode string
	err := db.conn.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode)
	return mode, err
}

// EnableWAL switches the database to WAL and folds the log back into the main
// file so long-lived readers release stale snapshots.
func (db *DB) EnableWAL(ctx context.Context) error {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	var mode string
	if err := db.conn.QueryRowContext(ctx, "PRAGMA journal_mode=WAL").Scan(&mode); err != nil {
		return fmt.Errorf("failed to enable WAL: %w", err)
	}
	if mode != "wal" {
		return fmt.Errorf("journal mode is %q after enabling WAL", mode)
	}

	if _, err := db.conn.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("failed to checkpoint WAL: %w", err)
	}

	return nil
}
