package model

import "time"

// Announcement is a source text with its per-language translations and the
// URLs of the synthesized audio. Records are immutable once stored.
type Announcement struct {
	ID           int64
	Text         string
	Languages    []string
	Translations map[string]string
	Tone         string
	AudioFiles   map[string]string
	CreatedAt    time.Time
}
