package db

import (
	"database/sql"
	"fmt"
)

// JSON-valued columns hold the language list and the per-language maps.
const baseSchema = `
CREATE TABLE IF NOT EXISTS announcements (
  id INTEGER PRIMARY KEY,
  text TEXT NOT NULL,
  languages TEXT NOT NULL DEFAULT '[]',
  translations TEXT NOT NULL DEFAULT '{}',
  tone TEXT NOT NULL DEFAULT 'neutral',
  audio_files TEXT NOT NULL DEFAULT '{}',
  created_at TEXT NOT NULL
);
`

func Migrate(db *sql.DB) error {
	if _, err := db.Exec(baseSchema); err != nil {
		return fmt.Errorf("migrate base schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func runMigrations(db *sql.DB) error {
	// Migration 1: history is read newest first
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_announcements_created_at ON announcements(created_at DESC, id DESC)`); err != nil {
		return fmt.Errorf("create idx_announcements_created_at: %w", err)
	}

	return nil
}
