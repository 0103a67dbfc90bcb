package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalid       = errors.New("invalid")
	ErrTranscode     = errors.New("transcode failed")
	ErrTranscription = errors.New("transcription failed")
	ErrTranslation   = errors.New("translation failed")
	ErrSynthesis     = errors.New("synthesis failed")
	ErrStorage       = errors.New("audio storage failed")
	ErrPersistence   = errors.New("persistence failed")
)

// ValidationError is returned for bad caller input. Nothing has been
// called or stored when it is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

// Stage names a step of the announcement pipeline.
type Stage string

const (
	StageTranscode  Stage = "transcode"
	StageTranscribe Stage = "transcribe"
	StageTranslate  Stage = "translate"
	StageSynthesize Stage = "synthesize"
	StageStore      Stage = "store"
	StagePersist    Stage = "persist"
)

var stageSentinels = map[Stage]error{
	StageTranscode:  ErrTranscode,
	StageTranscribe: ErrTranscription,
	StageTranslate:  ErrTranslation,
	StageSynthesize: ErrSynthesis,
	StageStore:      ErrStorage,
	StagePersist:    ErrPersistence,
}

var stageMessages = map[Stage]string{
	StageTranscode:  "audio transcoding failed",
	StageTranscribe: "speech recognition failed",
	StageTranslate:  "translation failed",
	StageSynthesize: "speech synthesis failed",
	StageStore:      "audio storage failed",
	StagePersist:    "saving announcement failed",
}

// StageError wraps a failure of one pipeline stage. Language is empty for
// stages that are not per language.
type StageError struct {
	Stage    Stage
	Language string
	Err      error
}

func (e *StageError) Error() string {
	if e.Language == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Language, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func (e *StageError) Is(target error) bool {
	return stageSentinels[e.Stage] == target
}

// Message describes the failure without provider or storage details.
func (e *StageError) Message() string {
	msg, ok := stageMessages[e.Stage]
	if !ok {
		msg = string(e.Stage) + " failed"
	}
	if e.Language != "" {
		msg += " for language " + e.Language
	}
	return msg
}

// IsProviderStage reports whether the stage calls an external provider.
func (e *StageError) IsProviderStage() bool {
	switch e.Stage {
	case StageTranscode, StageTranscribe, StageTranslate, StageSynthesize:
		return true
	default:
		return false
	}
}
