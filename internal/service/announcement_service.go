package service

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"voicebridge/internal/audio"
	"voicebridge/internal/logger"
	"voicebridge/internal/mediastore"
	"voicebridge/internal/metrics"
	"voicebridge/internal/model"
	"voicebridge/internal/repository"
	"voicebridge/internal/speech"
)

//go:generate mockgen -source=announcement_service.go -destination=mock/announcement_service.go -package=mock

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
	MaxToneLength       = 50
	// MaxTextLength is the TTS input limit. It bounds the source text and
	// every translation sent to synthesis.
	MaxTextLength = 4096
	MaxLanguages  = 20
)

var languagePattern = regexp.MustCompile(`^[a-z]{2,3}(-[a-z0-9]{2,8})?$`)

// ErrTranslationTooLong is returned when a translation cannot be synthesized.
var ErrTranslationTooLong = fmt.Errorf("translation exceeds %d characters", MaxTextLength)

// CreateAnnouncementInput is a text announcement request. BaseURL
// ("https://host") prefixes URLs of audio stored on local disk.
type CreateAnnouncementInput struct {
	Text      string
	Languages []string
	Tone      string
	BaseURL   string
}

// CreateFromAudioInput is a recorded announcement request.
type CreateFromAudioInput struct {
	Audio       []byte
	Filename    string
	ContentType string
	Languages   []string
	Tone        string
	BaseURL     string
}

// AnnouncementService creates and lists announcements.
type AnnouncementService interface {
	// CreateFromText translates text into every language, synthesizes and
	// stores the audio, and saves the record. Any failure aborts the request
	// and nothing is saved.
	CreateFromText(ctx context.Context, in CreateAnnouncementInput) (model.Announcement, error)
	// CreateFromAudio transcribes the recording and continues as CreateFromText.
	CreateFromAudio(ctx context.Context, in CreateFromAudioInput) (model.Announcement, error)
	// ListHistory returns the newest announcements. limit <= 0 uses the default.
	ListHistory(ctx context.Context, limit int) ([]model.Announcement, error)
	GetByID(ctx context.Context, id int64) (model.Announcement, error)
}

// AudioStore persists synthesized audio.
type AudioStore interface {
	Store(ctx context.Context, name string, data []byte, baseURL string) (mediastore.Object, error)
	Remove(ctx context.Context, obj mediastore.Object) error
}

// AnnouncementDeps are the collaborators of the service. Transcoder may be nil
// to send uploads to the transcriber unchanged.
type AnnouncementDeps struct {
	Repo        repository.AnnouncementRepository
	Translator  speech.Translator
	Synthesizer speech.Synthesizer
	Transcriber speech.Transcriber
	Transcoder  audio.Transcoder
	Store       AudioStore
	Voices      speech.Voices
	Metrics     *metrics.Metrics
}

type AnnouncementOptions struct {
	SourceLanguage string
	DefaultTone    string
	HistoryLimit   int
	// Concurrency > 1 processes languages in parallel.
	Concurrency int
	// CleanupOnFailure removes audio already stored for a failed request.
	CleanupOnFailure bool
	// TranscodePassthrough sends the original upload to the transcriber when
	// transcoding fails.
	TranscodePassthrough bool
}

type announcementService struct {
	deps    AnnouncementDeps
	opts    AnnouncementOptions
	newName func(lang string) string
}

// NewAnnouncementService creates a new announcement service.
func NewAnnouncementService(deps AnnouncementDeps, opts AnnouncementOptions) AnnouncementService {
	if opts.SourceLanguage == "" {
		opts.SourceLanguage = "en"
	}
	if opts.DefaultTone == "" {
		opts.DefaultTone = "neutral"
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &announcementService{deps: deps, opts: opts, newName: audioFileName}
}

// audioFileName returns announcement_<lang>_<32 hex chars>.wav.
func audioFileName(lang string) string {
	id := uuid.New()
	return "announcement_" + lang + "_" + hex.EncodeToString(id[:]) + ".wav"
}

// request is a validated creation request.
type request struct {
	text      string
	languages []string
	tone      string
	baseURL   string
}

// languageResult is the output of one language's translate, synthesize and
// store steps. obj is set once audio has been stored.
type languageResult struct {
	translation string
	obj         mediastore.Object
}

func (s *announcementService) CreateFromText(ctx context.Context, in CreateAnnouncementInput) (model.Announcement, error) {
	req, err := s.validate(in.Text, in.Languages, in.Tone)
	if err != nil {
		return model.Announcement{}, err
	}
	req.baseURL = in.BaseURL
	return s.create(ctx, req)
}

func (s *announcementService) CreateFromAudio(ctx context.Context, in CreateFromAudioInput) (model.Announcement, error) {
	if len(in.Audio) == 0 {
		return model.Announcement{}, &ValidationError{Field: "audio", Reason: "audio is required"}
	}
	// Reject bad languages before paying for transcoding and transcription.
	languages, err := normalizeLanguages(in.Languages)
	if err != nil {
		return model.Announcement{}, err
	}
	tone, err := s.normalizeTone(in.Tone)
	if err != nil {
		return model.Announcement{}, err
	}

	data, filename, err := s.transcode(ctx, in)
	if err != nil {
		return model.Announcement{}, err
	}

	text, err := s.deps.Transcriber.Transcribe(ctx, data, filename, s.opts.SourceLanguage)
	s.deps.Metrics.RecordStage(string(StageTranscribe), err)
	if err != nil {
		logger.Error("transcription failed",
			"module", "service", "action", "transcribe", "resource", "announcement", "result", "failed",
			"bytes", len(data), "error", err)
		return model.Announcement{}, &StageError{Stage: StageTranscribe, Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return model.Announcement{}, &ValidationError{Field: "audio", Reason: "no speech was recognized in the recording"}
	}

	logger.Info("recording transcribed",
		"module", "service", "action", "transcribe", "resource", "announcement", "result", "ok",
		"bytes", len(data), "chars", utf8.RuneCountInString(text))

	req, err := s.validate(text, languages, tone)
	if err != nil {
		return model.Announcement{}, err
	}
	req.baseURL = in.BaseURL
	return s.create(ctx, req)
}

// transcode normalizes the upload, returning the bytes and file name to send
// to the transcriber.
func (s *announcementService) transcode(ctx context.Context, in CreateFromAudioInput) ([]byte, string, error) {
	filename := in.Filename
	if filename == "" {
		filename = "recording.webm"
	}
	if s.deps.Transcoder == nil {
		return in.Audio, filename, nil
	}

	data, err := s.deps.Transcoder.Transcode(ctx, in.Audio, in.ContentType)
	s.deps.Metrics.RecordStage(string(StageTranscode), err)
	if err == nil {
		return data, strings.TrimSuffix(filename, filepath.Ext(filename)) + ".wav", nil
	}

	var transcodeErr *audio.TranscodeError
	if errors.As(err, &transcodeErr) {
		logger.Warn("transcode tool output",
			"module", "service", "action", "transcode", "resource", "announcement", "result", "failed",
			"output", transcodeErr.Output)
	}
	if s.opts.TranscodePassthrough {
		logger.Warn("transcode failed, passing original audio through",
			"module", "service", "action", "transcode", "resource", "announcement", "result", "degraded",
			"content_type", in.ContentType, "bytes", len(in.Audio), "error", err)
		return in.Audio, filename, nil
	}
	return nil, "", &StageError{Stage: StageTranscode, Err: err}
}

func (s *announcementService) create(ctx context.Context, req request) (model.Announcement, error) {
	start := time.Now()
	a, err := s.run(ctx, req)
	s.deps.Metrics.ObservePipeline(time.Since(start), err)
	if err != nil {
		logger.Error("announcement create failed",
			"module", "service", "action", "create", "resource", "announcement", "result", "failed",
			"languages", strings.Join(req.languages, ","), "duration_ms", time.Since(start).Milliseconds(), "error", err)
		return model.Announcement{}, err
	}
	logger.Info("announcement created",
		"module", "service", "action", "create", "resource", "announcement", "result", "ok",
		"announcement_id", a.ID, "languages", strings.Join(a.Languages, ","),
		"duration_ms", time.Since(start).Milliseconds())
	return a, nil
}

func (s *announcementService) run(ctx context.Context, req request) (model.Announcement, error) {
	results, err := s.processLanguages(ctx, req)
	if err != nil {
		s.cleanup(ctx, results)
		return model.Announcement{}, err
	}

	a := model.Announcement{
		Text:         req.text,
		Languages:    req.languages,
		Translations: make(map[string]string, len(req.languages)),
		Tone:         req.tone,
		AudioFiles:   make(map[string]string, len(req.languages)),
	}
	for i, lang := range req.languages {
		a.Translations[lang] = results[i].translation
		a.AudioFiles[lang] = results[i].obj.URL
	}

	created, err := s.deps.Repo.Create(ctx, a)
	s.deps.Metrics.RecordStage(string(StagePersist), err)
	if err != nil {
		s.cleanup(ctx, results)
		return model.Announcement{}, &StageError{Stage: StagePersist, Err: err}
	}
	return created, nil
}

// processLanguages runs every language and returns one result per language
// in request order. On failure the error of the earliest failed language is
// returned together with whatever results were produced.
func (s *announcementService) processLanguages(ctx context.Context, req request) ([]languageResult, error) {
	results := make([]languageResult, len(req.languages))

	if s.opts.Concurrency == 1 || len(req.languages) == 1 {
		for i, lang := range req.languages {
			result, err := s.processLanguage(ctx, req, lang)
			results[i] = result
			if err != nil {
				return results, err
			}
		}
		return results, nil
	}

	// Every language runs to completion so the reported failure does not
	// depend on scheduling.
	errs := make([]error, len(req.languages))
	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)
	for i, lang := range req.languages {
		g.Go(func() error {
			results[i], errs[i] = s.processLanguage(ctx, req, lang)
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

func (s *announcementService) processLanguage(ctx context.Context, req request, lang string) (languageResult, error) {
	start := time.Now()

	translation, err := s.deps.Translator.Translate(ctx, req.text, s.opts.SourceLanguage, lang, req.tone)
	if err == nil && utf8.RuneCountInString(translation) > MaxTextLength {
		err = ErrTranslationTooLong
	}
	s.deps.Metrics.RecordStage(string(StageTranslate), err)
	if err != nil {
		return languageResult{}, &StageError{Stage: StageTranslate, Language: lang, Err: err}
	}

	voice := s.deps.Voices.For(lang)
	data, err := s.deps.Synthesizer.Synthesize(ctx, speech.SynthesisRequest{
		Text:     translation,
		Language: lang,
		Voice:    voice,
		Tone:     req.tone,
	})
	s.deps.Metrics.RecordStage(string(StageSynthesize), err)
	if err != nil {
		return languageResult{translation: translation}, &StageError{Stage: StageSynthesize, Language: lang, Err: err}
	}

	obj, err := s.deps.Store.Store(ctx, s.newName(lang), data, req.baseURL)
	s.deps.Metrics.RecordStage(string(StageStore), err)
	if err != nil {
		return languageResult{translation: translation}, &StageError{Stage: StageStore, Language: lang, Err: err}
	}

	logger.Debug("language processed",
		"module", "service", "action", "create", "resource", "announcement", "result", "ok",
		"language", lang, "voice", voice, "tier", obj.Tier, "bytes", len(data),
		"duration_ms", time.Since(start).Milliseconds())
	return languageResult{translation: translation, obj: obj}, nil
}

// cleanup removes audio stored for a failed request. Failures are logged.
func (s *announcementService) cleanup(ctx context.Context, results []languageResult) {
	if !s.opts.CleanupOnFailure {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, r := range results {
		if r.obj.Name == "" {
			continue
		}
		if err := s.deps.Store.Remove(ctx, r.obj); err != nil {
			logger.Warn("orphaned audio cleanup failed",
				"module", "service", "action", "cleanup", "resource", "audio", "result", "failed",
				"name", r.obj.Name, "tier", r.obj.Tier, "error", err)
			continue
		}
		logger.Debug("orphaned audio removed",
			"module", "service", "action", "cleanup", "resource", "audio", "result", "ok",
			"name", r.obj.Name, "tier", r.obj.Tier)
	}
}

func (s *announcementService) ListHistory(ctx context.Context, limit int) ([]model.Announcement, error) {
	if limit <= 0 {
		limit = s.opts.HistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	list, err := s.deps.Repo.ListRecent(ctx, limit)
	if err != nil {
		logger.Error("history list failed",
			"module", "service", "action", "list", "resource", "announcement", "result", "failed",
			"limit", limit, "error", err)
		return nil, &StageError{Stage: StagePersist, Err: err}
	}
	return list, nil
}

func (s *announcementService) GetByID(ctx context.Context, id int64) (model.Announcement, error) {
	a, err := s.deps.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Announcement{}, ErrNotFound
		}
		return model.Announcement{}, &StageError{Stage: StagePersist, Err: err}
	}
	return a, nil
}

func (s *announcementService) validate(text string, languages []string, tone string) (request, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return request{}, &ValidationError{Field: "text", Reason: "text is required"}
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return request{}, &ValidationError{Field: "text", Reason: fmt.Sprintf("text must be at most %d characters", MaxTextLength)}
	}

	normalized, err := normalizeLanguages(languages)
	if err != nil {
		return request{}, err
	}
	tone, err = s.normalizeTone(tone)
	if err != nil {
		return request{}, err
	}
	return request{text: text, languages: normalized, tone: tone}, nil
}

func (s *announcementService) normalizeTone(tone string) (string, error) {
	tone = strings.TrimSpace(tone)
	if tone == "" {
		return s.opts.DefaultTone, nil
	}
	if utf8.RuneCountInString(tone) > MaxToneLength {
		return "", &ValidationError{Field: "tone", Reason: fmt.Sprintf("tone must be at most %d characters", MaxToneLength)}
	}
	return tone, nil
}

// normalizeLanguages trims and lower-cases codes, keeping request order.
func normalizeLanguages(languages []string) ([]string, error) {
	if len(languages) == 0 {
		return nil, &ValidationError{Field: "languages", Reason: "at least one language is required"}
	}
	if len(languages) > MaxLanguages {
		return nil, &ValidationError{Field: "languages", Reason: fmt.Sprintf("at most %d languages are allowed", MaxLanguages)}
	}

	seen := make(map[string]struct{}, len(languages))
	out := make([]string, 0, len(languages))
	for _, lang := range languages {
		lang = strings.ToLower(strings.TrimSpace(lang))
		if !languagePattern.MatchString(lang) {
			return nil, &ValidationError{Field: "languages", Reason: fmt.Sprintf("invalid language code %q", lang)}
		}
		if _, dup := seen[lang]; dup {
			return nil, &ValidationError{Field: "languages", Reason: fmt.Sprintf("duplicate language %q", lang)}
		}
		seen[lang] = struct{}{}
		out = append(out, lang)
	}
	return out, nil
}
