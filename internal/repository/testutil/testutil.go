// Package testutil provides sqlite fixtures for repository and service tests.
package testutil

import (
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"voicebridge/internal/db"
	"voicebridge/internal/model"
	"voicebridge/internal/repository"
)

// NewTestDB opens a migrated database in a per-test temp directory.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

// SeedAnnouncement inserts a row with an explicit created_at, bypassing the
// repository clock.
func SeedAnnouncement(t *testing.T, database *sql.DB, a model.Announcement, createdAt time.Time) {
	t.Helper()
	languages, err := json.Marshal(a.Languages)
	require.NoError(t, err)
	translations, err := json.Marshal(a.Translations)
	require.NoError(t, err)
	audioFiles, err := json.Marshal(a.AudioFiles)
	require.NoError(t, err)
	if a.Tone == "" {
		a.Tone = "neutral"
	}

	_, err = database.Exec(
		`INSERT INTO announcements (id, text, languages, translations, tone, audio_files, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Text, string(languages), string(translations), a.Tone, string(audioFiles),
		createdAt.UTC().Format(repository.TimeLayout),
	)
	require.NoError(t, err)
}

// CountAnnouncements returns the number of stored announcements.
func CountAnnouncements(t *testing.T, database *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM announcements`).Scan(&n))
	return n
}
