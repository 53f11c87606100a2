package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Backup errors.
var (
	ErrBackupNotFound = errors.New("backup not found")
	ErrBackupExists   = errors.New("backup already exists")
	ErrBadBackupTag   = errors.New("backup tag cannot contain path separators")
)

// BackupManager snapshots the store file into a backups/ directory next to
// it. Compaction takes an automatic backup through this manager before
// rewriting ids.
type BackupManager struct {
	db         *sql.DB
	logger     *slog.Logger
	dbPath     string
	backupsDir string
}

// BackupInfo describes one stored backup.
type BackupInfo struct {
	CreatedAt     time.Time `json:"created_at"`
	Tag           string    `json:"tag"`
	Description   string    `json:"description"`
	FileSize      int64     `json:"file_size"`
	Transactions  int       `json:"transactions"`
	Categories    int       `json:"categories"`
	SchemaVersion int       `json:"schema_version"`
	Auto          bool      `json:"auto"`
}

// NewBackupManager creates a manager for the store at dbPath, ensuring the
// backups directory exists.
func NewBackupManager(db *sql.DB, dbPath string, logger *slog.Logger) (*BackupManager, error) {
	if logger == nil {
		logger = slog.Default()
	}

	backupsDir := filepath.Join(filepath.Dir(dbPath), "backups")
	if err := os.MkdirAll(backupsDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create backups directory: %w", err)
	}

	return &BackupManager{
		db:         db,
		dbPath:     dbPath,
		backupsDir: backupsDir,
		logger:     logger,
	}, nil
}

func validateTag(tag string) error {
	if strings.ContainsAny(tag, `/\`) || strings.Contains(tag, "..") {
		return ErrBadBackupTag
	}
	return nil
}

// Create snapshots the current store under the given tag. An empty tag is
// replaced with a timestamped one. auto marks backups taken without an
// explicit user request, such as the pre-compaction snapshot.
func (bm *BackupManager) Create(ctx context.Context, tag, description string, auto bool) (*BackupInfo, error) {
	if tag == "" {
		tag = "backup-" + time.Now().Format("2006-01-02-150405")
	}
	if err := validateTag(tag); err != nil {
		return nil, err
	}

	backupPath := filepath.Join(bm.backupsDir, tag+".db")
	if _, err := os.Stat(backupPath); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrBackupExists, tag)
	}

	var schemaVersion int
	if err := bm.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&schemaVersion); err != nil {
		return nil, fmt.Errorf("failed to get schema version: %w", err)
	}

	counts, err := bm.rowCounts(ctx)
	if err != nil {
		return nil, err
	}

	if err := bm.snapshot(ctx, backupPath); err != nil {
		return nil, err
	}

	stat, err := os.Stat(backupPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat backup: %w", err)
	}

	info := BackupInfo{
		Tag:           tag,
		CreatedAt:     time.Now(),
		Description:   description,
		FileSize:      stat.Size(),
		Transactions:  counts["transactions"],
		Categories:    counts["categories"],
		SchemaVersion: schemaVersion,
		Auto:          auto,
	}

	if err := bm.saveInfo(info); err != nil {
		_ = os.Remove(backupPath)
		return nil, fmt.Errorf("failed to save backup metadata: %w", err)
	}

	bm.logger.Info("created backup",
		"tag", tag,
		"transactions", info.Transactions,
		"auto", auto)
	return &info, nil
}

// List returns all backups, newest first.
func (bm *BackupManager) List(_ context.Context) ([]BackupInfo, error) {
	entries, err := os.ReadDir(bm.backupsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backups directory: %w", err)
	}

	var backups []BackupInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".meta.json") {
			continue
		}
		info, loadErr := bm.loadInfo(filepath.Join(bm.backupsDir, entry.Name()))
		if loadErr != nil {
			bm.logger.Warn("skipping unreadable backup metadata",
				"file", entry.Name(), "error", loadErr)
			continue
		}
		backups = append(backups, *info)
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

// Restore replaces the store file with the tagged backup. The manager's
// database handle is closed first; the caller must reopen the store
// afterwards. The pre-restore state is kept alongside until the copy
// succeeds.
func (bm *BackupManager) Restore(_ context.Context, tag string) error {
	if err := validateTag(tag); err != nil {
		return err
	}

	backupPath := filepath.Join(bm.backupsDir, tag+".db")
	if _, err := os.Stat(backupPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrBackupNotFound, tag)
		}
		return fmt.Errorf("failed to access backup: %w", err)
	}

	if err := bm.db.Close(); err != nil {
		return fmt.Errorf("failed to close store before restore: %w", err)
	}

	safetyPath := bm.dbPath + ".pre-restore"
	if err := copyFileAtomic(bm.dbPath, safetyPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to preserve current store: %w", err)
	}

	if err := copyFileAtomic(backupPath, bm.dbPath); err != nil {
		if undoErr := copyFileAtomic(safetyPath, bm.dbPath); undoErr != nil {
			bm.logger.Error("failed to undo partial restore", "error", undoErr)
		}
		return fmt.Errorf("failed to restore backup: %w", err)
	}

	if err := os.Remove(safetyPath); err != nil && !os.IsNotExist(err) {
		bm.logger.Warn("failed to remove pre-restore copy", "error", err)
	}

	bm.logger.Info("restored backup", "tag", tag)
	return nil
}

// Delete removes the tagged backup and its metadata.
func (bm *BackupManager) Delete(_ context.Context, tag string) error {
	if err := validateTag(tag); err != nil {
		return err
	}

	backupPath := filepath.Join(bm.backupsDir, tag+".db")
	if _, err := os.Stat(backupPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrBackupNotFound, tag)
		}
		return fmt.Errorf("failed to access backup: %w", err)
	}

	if err := os.Remove(backupPath); err != nil {
		return fmt.Errorf("failed to remove backup: %w", err)
	}
	if err := os.Remove(filepath.Join(bm.backupsDir, tag+".meta.json")); err != nil && !os.IsNotExist(err) {
		bm.logger.Warn("failed to remove backup metadata", "tag", tag, "error", err)
	}

	bm.logger.Info("deleted backup", "tag", tag)
	return nil
}

// Prune deletes all but the newest keep backups.
func (bm *BackupManager) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		return 0, errors.New("keep count cannot be negative")
	}

	backups, err := bm.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(backups) <= keep {
		return 0, nil
	}

	pruned := 0
	for _, info := range backups[keep:] {
		if err := bm.Delete(ctx, info.Tag); err != nil {
			return pruned, err
		}
		pruned++
	}
	return pruned, nil
}

func (bm *BackupManager) rowCounts(ctx context.Context) (map[string]int, error) {
	queries := map[string]string{
		"transactions": "SELECT COUNT(*) FROM transactions",
		"categories":   "SELECT COUNT(*) FROM categories",
	}

	counts := make(map[string]int, len(queries))
	for table, query := range queries {
		var n int
		if err := bm.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}

// snapshot copies the live store to destPath, preferring VACUUM INTO for a
// consistent single-statement copy and falling back to a file copy after a
// WAL checkpoint.
func (bm *BackupManager) snapshot(ctx context.Context, destPath string) error {
	if _, err := bm.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("failed to checkpoint WAL: %w", err)
	}

	// VACUUM INTO cannot take a bound parameter; refuse paths that would
	// break out of the quoted literal and fall back to a plain copy.
	if !strings.ContainsAny(destPath, `'";`) {
		if _, err := bm.db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", destPath)); err == nil {
			return nil
		}
		// Older SQLite without VACUUM INTO leaves no partial file behind,
		// but remove any it may have created before copying.
		_ = os.Remove(destPath)
	}

	if err := copyFileAtomic(bm.dbPath, destPath); err != nil {
		return fmt.Errorf("failed to copy store file: %w", err)
	}
	return nil
}

// copyFileAtomic copies src over dst via a temporary file and rename so a
// failed copy never leaves a truncated destination.
func copyFileAtomic(src, dst string) error {
	source, err := os.Open(src) // #nosec G304 -- both paths live under the store's own directory
	if err != nil {
		return err
	}
	defer func() { _ = source.Close() }()

	tmp := dst + ".tmp"
	dest, err := os.Create(tmp) // #nosec G304 -- see above
	if err != nil {
		return err
	}

	if _, err := io.Copy(dest, source); err != nil {
		_ = dest.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := dest.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, dst)
}

func (bm *BackupManager) saveInfo(info BackupInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}

	path := filepath.Join(bm.backupsDir, info.Tag+".meta.json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (bm *BackupManager) loadInfo(path string) (*BackupInfo, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from listing the backups directory
	if err != nil {
		return nil, err
	}

	var info BackupInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
