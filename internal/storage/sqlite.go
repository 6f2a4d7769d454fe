// Package storage provides the durable catalog persistence layer.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/cadstack/cadhoard/internal/common"
	"github.com/cadstack/cadhoard/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// DefaultBatchSize is how many appends accumulate before an automatic
// flush.
const DefaultBatchSize = 10

// SQLiteStore implements the CatalogStore interface using SQLite with
// batched commits: records buffer in memory and flush in a single
// transaction every batchSize appends, plus a mandatory final flush on
// Close.
type SQLiteStore struct {
	db       *sql.DB
	fileLock *flock.Flock
	dbPath   string

	mu        sync.Mutex
	buffer    []*model.CatalogRecord
	batchSize int
}

// NewSQLiteStore opens (creating if needed) the catalog database. The
// database file is guarded by an advisory lock so a second concurrent
// invocation fails fast instead of interleaving batches.
func NewSQLiteStore(dbPath string, batchSize int) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("%w: catalog path is required", common.ErrMissingConfig)
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create catalog directory: %w", err)
	}

	fileLock := flock.New(dbPath + ".lock")
	locked, err := fileLock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock catalog: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", common.ErrCatalogLocked, dbPath)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		_ = fileLock.Unlock()
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		_ = fileLock.Unlock()
		return nil, fmt.Errorf("failed to ping catalog database: %w", err)
	}

	store := &SQLiteStore{
		db:        db,
		fileLock:  fileLock,
		dbPath:    dbPath,
		batchSize: batchSize,
	}

	if err := store.migrate(); err != nil {
		_ = db.Close()
		_ = fileLock.Unlock()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) migrate() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS catalog_records (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		file_name     TEXT NOT NULL,
		location      TEXT NOT NULL,
		locator       TEXT NOT NULL DEFAULT '',
		detail_url    TEXT NOT NULL DEFAULT '',
		category      TEXT NOT NULL DEFAULT '',
		gun_model     TEXT NOT NULL DEFAULT '',
		caliber       TEXT NOT NULL DEFAULT '',
		part_type     TEXT NOT NULL DEFAULT '',
		tags          TEXT NOT NULL DEFAULT '',
		size_bytes    INTEGER NOT NULL DEFAULT 0,
		release_date  TEXT NOT NULL DEFAULT '',
		last_updated  TEXT NOT NULL DEFAULT '',
		author        TEXT NOT NULL DEFAULT '',
		version       TEXT NOT NULL DEFAULT '',
		downloaded_at TEXT NOT NULL DEFAULT '',
		views         INTEGER NOT NULL DEFAULT 0,
		likes         INTEGER NOT NULL DEFAULT 0,
		dislikes      INTEGER NOT NULL DEFAULT 0,
		description   TEXT NOT NULL DEFAULT '',
		notes         TEXT NOT NULL DEFAULT '',
		readme        TEXT NOT NULL DEFAULT ''
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_catalog_locator
		ON catalog_records(locator) WHERE locator != '';
	CREATE INDEX IF NOT EXISTS idx_catalog_location
		ON catalog_records(location);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to migrate catalog schema: %w", err)
	}
	return nil
}

// Append buffers a record for the next flush.
func (s *SQLiteStore) Append(_ context.Context, record *model.CatalogRecord) error {
	if record == nil {
		return fmt.Errorf("cannot append nil record")
	}
	if record.FileName == "" || record.Location == "" {
		return fmt.Errorf("record requires file name and location")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffer = append(s.buffer, record)
	return nil
}

// FlushIfDue writes the buffer once it has reached the batch size.
func (s *SQLiteStore) FlushIfDue(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.buffer) < s.batchSize {
		return nil
	}
	return s.flushLocked(ctx)
}

// Flush writes any buffered records unconditionally.
func (s *SQLiteStore) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked(ctx)
}

// flushLocked commits the buffer in one transaction. A failed commit is
// retried once; a second failure surfaces as a persistence error, since
// silently dropping records risks mass duplicate re-fetching next run.
func (s *SQLiteStore) flushLocked(ctx context.Context) error {
	if len(s.buffer) == 0 {
		return nil
	}

	err := s.writeBatch(ctx, s.buffer)
	if err != nil {
		slog.Warn("Catalog flush failed, retrying once", "records", len(s.buffer), "error", err)
		err = s.writeBatch(ctx, s.buffer)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrPersistence, err)
	}

	slog.Debug("Flushed catalog batch", "records", len(s.buffer))
	s.buffer = s.buffer[:0]
	return nil
}

func (s *SQLiteStore) writeBatch(ctx context.Context, records []*model.CatalogRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, record := range records {
		if err := insertRecordTx(ctx, tx, record); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func insertRecordTx(ctx context.Context, tx *sql.Tx, record *model.CatalogRecord) error {
	tags := encodeTags(record.Tags)
	downloadedAt := record.DownloadedAt.UTC().Format(time.RFC3339)

	// Re-releases keep their locator; the row is replaced, not
	// duplicated. Rows without a locator (re-synthesized from disk)
	// insert plainly.
	query := `
		INSERT INTO catalog_records (
			file_name, location, locator, detail_url, category,
			gun_model, caliber, part_type, tags, size_bytes,
			release_date, last_updated, author, version, downloaded_at,
			views, likes, dislikes, description, notes, readme
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if record.Locator != "" {
		query += `
		ON CONFLICT(locator) WHERE locator != '' DO UPDATE SET
			file_name = excluded.file_name,
			location = excluded.location,
			detail_url = excluded.detail_url,
			category = excluded.category,
			gun_model = excluded.gun_model,
			caliber = excluded.caliber,
			part_type = excluded.part_type,
			tags = excluded.tags,
			size_bytes = excluded.size_bytes,
			release_date = excluded.release_date,
			last_updated = excluded.last_updated,
			author = excluded.author,
			version = excluded.version,
			downloaded_at = excluded.downloaded_at,
			views = excluded.views,
			likes = excluded.likes,
			dislikes = excluded.dislikes,
			description = excluded.description,
			notes = excluded.notes,
			readme = excluded.readme`
	}

	_, err := tx.ExecContext(ctx, query,
		record.FileName, record.Location, record.Locator, record.DetailURL, record.Category,
		record.GunModel, record.Caliber, record.PartType, tags, record.SizeBytes,
		record.ReleaseDate, record.LastUpdated, record.Author, record.Version, downloadedAt,
		record.Views, record.Likes, record.Dislikes, record.Description, record.Notes, record.Readme,
	)
	if err != nil {
		return fmt.Errorf("failed to insert record %s: %w", record.FileName, err)
	}
	return nil
}

// LoadExisting reloads every readable record. Malformed rows are
// logged and skipped rather than aborting index construction.
func (s *SQLiteStore) LoadExisting(ctx context.Context) ([]model.CatalogRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT file_name, location, locator, detail_url, category,
		       gun_model, caliber, part_type, tags, size_bytes,
		       release_date, last_updated, author, version, downloaded_at,
		       views, likes, dislikes, description, notes, readme
		FROM catalog_records
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.CatalogRecord
	skipped := 0
	for rows.Next() {
		var r model.CatalogRecord
		var tags, downloadedAt string

		err := rows.Scan(
			&r.FileName, &r.Location, &r.Locator, &r.DetailURL, &r.Category,
			&r.GunModel, &r.Caliber, &r.PartType, &tags, &r.SizeBytes,
			&r.ReleaseDate, &r.LastUpdated, &r.Author, &r.Version, &downloadedAt,
			&r.Views, &r.Likes, &r.Dislikes, &r.Description, &r.Notes, &r.Readme,
		)
		if err != nil {
			skipped++
			slog.Warn("Skipping malformed catalog row", "error", err)
			continue
		}

		r.Tags = decodeTags(tags)
		if downloadedAt != "" {
			if t, parseErr := time.Parse(time.RFC3339, downloadedAt); parseErr == nil {
				r.DownloadedAt = t
			}
		}

		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read catalog rows: %w", err)
	}
	if skipped > 0 {
		slog.Warn("Catalog contained malformed rows", "skipped", skipped, "loaded", len(records))
	}

	return records, nil
}

// UpdateLocation rewrites the stored path for a locator after a file is
// found moved within the output directory.
func (s *SQLiteStore) UpdateLocation(ctx context.Context, locator, location string) error {
	if locator == "" {
		return fmt.Errorf("locator is required")
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE catalog_records SET location = ? WHERE locator = ?`, location, locator)
	if err != nil {
		return fmt.Errorf("%w: failed to update location: %v", common.ErrPersistence, err)
	}
	return nil
}

// Count returns the number of persisted records.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM catalog_records`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count catalog records: %w", err)
	}
	return count, nil
}

// Close flushes any buffered records, releases the catalog lock, and
// closes the database.
func (s *SQLiteStore) Close() error {
	flushErr := s.Flush(context.Background())

	if err := s.fileLock.Unlock(); err != nil {
		slog.Warn("Failed to release catalog lock", "error", err)
	}
	closeErr := s.db.Close()

	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
