package repository

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // CGo-free SQLite driver
)

// NewSQLiteDB opens (and creates if needed) the comment database and ensures
// the schema exists.
func NewSQLiteDB(path string, logger *zap.Logger) (*sqlx.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info("Comment database ready", zap.String("path", path))
	return db, nil
}

// migrate creates tables.
func migrate(db *sqlx.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS videos (
		video_id TEXT PRIMARY KEY,
		published_at TEXT,
		frame TEXT DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS comments (
		comment_id TEXT PRIMARY KEY,
		video_id TEXT,
		video_published_at TEXT,
		published_at TEXT,
		updated_at TEXT,
		like_count INTEGER,
		total_reply_count INTEGER,
		text TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_comments_video_id ON comments(video_id);
	`

	_, err := db.Exec(schema)
	return err
}
