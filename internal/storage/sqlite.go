package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tally-money/tally/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements the service.Storage gateway on a single local
// SQLite file. Every operation is synchronous and blocking; callers that
// must not block (UI loops) hand calls to a tasks.Runner instead.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
	dbPath string
}

var _ service.Storage = (*SQLiteStore)(nil)

// NewSQLiteStore opens (creating parent directories if needed) the store at
// dbPath. The logger is injected so the gateway never touches process-wide
// logging state; nil falls back to slog.Default().
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	// ":memory:" has no parent directory to create.
	if dir := filepath.Dir(dbPath); dbPath != ":memory:" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
		logger: logger,
	}, nil
}

// Path returns the location of the store file.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// NewBackupManager creates a backup manager bound to this store's file.
func (s *SQLiteStore) NewBackupManager() (*BackupManager, error) {
	return NewBackupManager(s.db, s.dbPath, s.logger)
}
