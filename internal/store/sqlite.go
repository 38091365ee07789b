package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oddbyte/opm-repo/internal/model"
	"go.uber.org/zap"
)

// SQLiteStore keeps download statistics in SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore opens the database at dbPath and applies the schema
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	// Initialize schema
	if _, err := db.Exec(model.Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger,
	}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// RecordDownload counts one served archive of size bytes
func (s *SQLiteStore) RecordDownload(ctx context.Context, pkg, ext string, size int64) error {
	query := `
		INSERT INTO downloads (package, ext, count, bytes, last_download)
		VALUES (?, ?, 1, ?, ?)
		ON CONFLICT(package, ext) DO UPDATE SET
			count = count + 1,
			bytes = bytes + excluded.bytes,
			last_download = excluded.last_download
	`

	if _, err := s.db.ExecContext(ctx, query, pkg, ext, size, time.Now()); err != nil {
		return fmt.Errorf("failed to record download: %w", err)
	}

	s.logger.Debug("download recorded",
		zap.String("package", pkg),
		zap.String("ext", ext),
		zap.Int64("size", size),
	)
	return nil
}

// GetDownloads gets all download counters, most downloaded first
func (s *SQLiteStore) GetDownloads(ctx context.Context) ([]*model.DBDownload, error) {
	query := `SELECT id, package, ext, count, bytes, last_download FROM downloads ORDER BY count DESC, package`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query downloads: %w", err)
	}
	defer rows.Close()

	var downloads []*model.DBDownload
	for rows.Next() {
		d := &model.DBDownload{}
		err := rows.Scan(
			&d.ID,
			&d.Package,
			&d.Ext,
			&d.Count,
			&d.Bytes,
			&d.LastDownload,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan download: %w", err)
		}
		downloads = append(downloads, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate downloads: %w", err)
	}

	return downloads, nil
}

// DownloadStats returns the counters in their API form
func (s *SQLiteStore) DownloadStats(ctx context.Context) ([]model.DownloadStat, error) {
	downloads, err := s.GetDownloads(ctx)
	if err != nil {
		return nil, err
	}

	stats := make([]model.DownloadStat, 0, len(downloads))
	for _, d := range downloads {
		stats = append(stats, model.DownloadStat{
			Package:      d.Package,
			Ext:          d.Ext,
			Count:        d.Count,
			Bytes:        d.Bytes,
			LastDownload: d.LastDownload.Unix(),
		})
	}
	return stats, nil
}
