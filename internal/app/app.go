// Package app wires configuration into a running announcement service. It is
// shared by the HTTP server and the command line tool.
package app

import (
	"database/sql"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"voicebridge/internal/audio"
	"voicebridge/internal/config"
	"voicebridge/internal/db"
	"voicebridge/internal/logger"
	"voicebridge/internal/mediastore"
	"voicebridge/internal/metrics"
	"voicebridge/internal/network"
	"voicebridge/internal/repository"
	"voicebridge/internal/service"
	"voicebridge/internal/service/ai"
	"voicebridge/internal/speech"
)

type App struct {
	Config      config.Config
	DB          *sql.DB
	Registry    *prometheus.Registry
	Metrics     *metrics.Metrics
	Local       *mediastore.Local
	Translation ai.Provider
	Service     service.AnnouncementService
}

// New opens the database and builds every collaborator from cfg. Close
// releases what New opened.
func New(cfg config.Config) (*App, error) {
	httpClient, err := network.NewHTTPClient(cfg.ProxyURL, cfg.ProviderTimeout)
	if err != nil {
		return nil, fmt.Errorf("provider http client: %w", err)
	}

	provider, err := ai.NewProvider(ai.Config{
		Provider:   cfg.Translation.Provider,
		APIKey:     cfg.Translation.APIKey,
		BaseURL:    cfg.Translation.BaseURL,
		Model:      cfg.Translation.Model,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("translation provider: %w", err)
	}

	table, err := config.LoadVoiceTable(cfg.VoicesFile)
	if err != nil {
		return nil, err
	}

	dbConn, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	limiter := ai.NewRateLimiter(cfg.RateLimit)
	openAI := speech.NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.TTSModel, cfg.OpenAI.STTModel, limiter, httpClient)

	var transcoder audio.Transcoder
	if cfg.Transcoder.Path != "" {
		transcoder = audio.NewFFmpeg(cfg.Transcoder.Path)
	} else {
		logger.Info("transcoder disabled", "module", "app", "action", "init", "resource", "transcoder", "result", "ok")
	}

	var remote mediastore.Remote
	if cfg.S3.Enabled() {
		remote = mediastore.NewS3Remote(mediastore.NewS3Client(cfg.S3), cfg.S3.Bucket, cfg.S3.Prefix, cfg.S3.Region, cfg.S3.PublicURL)
		logger.Info("remote audio tier enabled", "module", "app", "action", "init", "resource", "storage", "result", "ok",
			"bucket", cfg.S3.Bucket, "prefix", cfg.S3.Prefix)
	} else {
		logger.Info("remote audio tier disabled", "module", "app", "action", "init", "resource", "storage", "result", "ok")
	}
	local := mediastore.NewLocal(cfg.MediaDir, cfg.MediaURL)

	svc := service.NewAnnouncementService(service.AnnouncementDeps{
		Repo:        repository.NewAnnouncementRepository(dbConn),
		Translator:  speech.NewProviderTranslator(provider, limiter),
		Synthesizer: openAI,
		Transcriber: openAI,
		Transcoder:  transcoder,
		Store:       mediastore.NewTiered(remote, local, m),
		Voices:      speech.NewVoices(table.Default, table.Voices),
		Metrics:     m,
	}, service.AnnouncementOptions{
		SourceLanguage:       cfg.SourceLanguage,
		DefaultTone:          cfg.DefaultTone,
		HistoryLimit:         cfg.HistoryLimit,
		Concurrency:          cfg.LanguageConcurrency,
		CleanupOnFailure:     cfg.CleanupOnFailure,
		TranscodePassthrough: cfg.Transcoder.Passthrough,
	})

	logger.Info("app initialized", "module", "app", "action", "init", "resource", "app", "result", "ok",
		"translation_provider", provider.Name(), "tts_model", cfg.OpenAI.TTSModel, "stt_model", cfg.OpenAI.STTModel,
		"concurrency", cfg.LanguageConcurrency)

	return &App{
		Config:      cfg,
		DB:          dbConn,
		Registry:    registry,
		Metrics:     m,
		Local:       local,
		Translation: provider,
		Service:     svc,
	}, nil
}

func (a *App) Close() error {
	return a.DB.Close()
}
