package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"voicebridge/internal/model"
	"voicebridge/internal/snowflake"
)

//go:generate mockgen -source=announcement_repository.go -destination=mock/announcement_repository.go -package=mock

// AnnouncementRepository stores announcements. There are deliberately no
// update or delete operations.
type AnnouncementRepository interface {
	// Create assigns ID and CreatedAt and inserts the record in one statement.
	Create(ctx context.Context, a model.Announcement) (model.Announcement, error)
	// ListRecent returns up to limit records, newest first.
	ListRecent(ctx context.Context, limit int) ([]model.Announcement, error)
	GetByID(ctx context.Context, id int64) (model.Announcement, error)
}

type announcementRepository struct {
	db  dbtx
	now func() time.Time
}

func NewAnnouncementRepository(db dbtx) AnnouncementRepository {
	return &announcementRepository{db: db, now: time.Now}
}

func (r *announcementRepository) Create(ctx context.Context, a model.Announcement) (model.Announcement, error) {
	languages, err := json.Marshal(nonNilSlice(a.Languages))
	if err != nil {
		return model.Announcement{}, fmt.Errorf("encode languages: %w", err)
	}
	translations, err := json.Marshal(nonNilMap(a.Translations))
	if err != nil {
		return model.Announcement{}, fmt.Errorf("encode translations: %w", err)
	}
	audioFiles, err := json.Marshal(nonNilMap(a.AudioFiles))
	if err != nil {
		return model.Announcement{}, fmt.Errorf("encode audio files: %w", err)
	}

	a.ID = snowflake.NextID()
	a.CreatedAt = r.now().UTC()

	_, err = r.db.ExecContext(
		ctx,
		`INSERT INTO announcements (id, text, languages, translations, tone, audio_files, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Text, string(languages), string(translations), a.Tone, string(audioFiles), formatTime(a.CreatedAt),
	)
	if err != nil {
		return model.Announcement{}, err
	}
	return a, nil
}

func (r *announcementRepository) ListRecent(ctx context.Context, limit int) ([]model.Announcement, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, text, languages, translations, tone, audio_files, created_at
		 FROM announcements ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	announcements := make([]model.Announcement, 0, limit)
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, err
		}
		announcements = append(announcements, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return announcements, nil
}

func (r *announcementRepository) GetByID(ctx context.Context, id int64) (model.Announcement, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT id, text, languages, translations, tone, audio_files, created_at
		 FROM announcements WHERE id = ?`,
		id,
	)
	return scanAnnouncement(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnnouncement(row rowScanner) (model.Announcement, error) {
	var a model.Announcement
	var languages, translations, audioFiles, createdAt string

	if err := row.Scan(&a.ID, &a.Text, &languages, &translations, &a.Tone, &audioFiles, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return model.Announcement{}, err
		}
		return model.Announcement{}, fmt.Errorf("scan announcement: %w", err)
	}

	if err := json.Unmarshal([]byte(languages), &a.Languages); err != nil {
		return model.Announcement{}, fmt.Errorf("decode languages of %d: %w", a.ID, err)
	}
	if err := json.Unmarshal([]byte(translations), &a.Translations); err != nil {
		return model.Announcement{}, fmt.Errorf("decode translations of %d: %w", a.ID, err)
	}
	if err := json.Unmarshal([]byte(audioFiles), &a.AudioFiles); err != nil {
		return model.Announcement{}, fmt.Errorf("decode audio files of %d: %w", a.ID, err)
	}

	t, err := parseTime(createdAt)
	if err != nil {
		return model.Announcement{}, fmt.Errorf("parse created_at of %d: %w", a.ID, err)
	}
	a.CreatedAt = t
	return a, nil
}

func nonNilSlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
