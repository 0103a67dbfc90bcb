// Package speech adapts the translation, text-to-speech and speech-to-text
// providers to the narrow interfaces the announcement pipeline needs.
package speech

import (
	"context"
	"errors"
)

// ErrEmptyResult is returned when a provider answers successfully with no
// usable output.
var ErrEmptyResult = errors.New("provider returned an empty result")

// Translator renders source text in one target language.
type Translator interface {
	Translate(ctx context.Context, text, source, target, tone string) (string, error)
}

// SynthesisRequest is one language's text-to-speech call.
type SynthesisRequest struct {
	Text     string
	Language string
	Voice    string
	Tone     string
}

// Synthesizer produces WAV audio for a request.
type Synthesizer interface {
	Synthesize(ctx context.Context, req SynthesisRequest) ([]byte, error)
}

// Transcriber recognizes speech in audio. Silence yields an empty string and
// no error.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename, language string) (string, error)
}
