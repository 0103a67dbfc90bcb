package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	AppName    = "VoiceBridge"
	AppVersion = "1.0.0"
)

const envPrefix = "VOICEBRIDGE_"

// Translation provider names accepted by TRANSLATION_PROVIDER.
const (
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderCompatible = "compatible"
)

type Config struct {
	Addr          string
	DBPath        string
	DataDir       string
	MediaDir      string
	MediaURL      string
	PublicBaseURL string
	StaticDir     string

	LogLevel  string
	LogFormat string
	NodeID    int64

	SourceLanguage      string
	DefaultTone         string
	LanguageConcurrency int
	CleanupOnFailure    bool
	RateLimit           int
	MaxUploadBytes      int64
	HistoryLimit        int

	// ProxyURL routes provider traffic through an http(s) or socks5 proxy.
	ProxyURL        string
	ProviderTimeout time.Duration

	Translation TranslationConfig
	OpenAI      OpenAIConfig
	S3          S3Config
	Transcoder  TranscoderConfig

	VoicesFile string
}

type TranslationConfig struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}

type OpenAIConfig struct {
	APIKey   string
	BaseURL  string
	TTSModel string
	STTModel string
}

// S3Config configures the remote audio tier. An empty Bucket disables it.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
	PublicURL       string
	PathStyle       bool
}

func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// TranscoderConfig configures the ffmpeg wrapper. An empty Path disables transcoding.
type TranscoderConfig struct {
	Path        string
	Passthrough bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first; variables that are already set win.
func Load() Config {
	_ = godotenv.Load()

	dataDir := getEnv("DATA_DIR", "./data")
	dbPath := getEnv("DB_PATH", filepath.Join(dataDir, "voicebridge.db"))
	mediaDir := getEnv("MEDIA_DIR", filepath.Join(dataDir, "media"))
	staticDir := getEnv("STATIC_DIR", "")
	if staticDir == "" {
		staticDir = detectStaticDir()
	}

	openAIKey := os.Getenv("OPENAI_API_KEY")
	translationKey := getEnv("TRANSLATION_API_KEY", openAIKey)

	return Config{
		Addr:          getEnv("ADDR", ":8080"),
		DBPath:        filepath.Clean(dbPath),
		DataDir:       filepath.Clean(dataDir),
		MediaDir:      filepath.Clean(mediaDir),
		MediaURL:      normalizeMediaURL(getEnv("MEDIA_URL", "/media/")),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/"),
		StaticDir:     filepath.Clean(staticDir),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),
		NodeID:    int64(getEnvInt("NODE_ID", 1)),

		SourceLanguage:      strings.ToLower(getEnv("SOURCE_LANGUAGE", "en")),
		DefaultTone:         getEnv("DEFAULT_TONE", "neutral"),
		LanguageConcurrency: getEnvInt("LANGUAGE_CONCURRENCY", 1),
		CleanupOnFailure:    getEnvBool("CLEANUP_ON_FAILURE", true),
		RateLimit:           getEnvInt("RATE_LIMIT", 10),
		MaxUploadBytes:      int64(getEnvInt("MAX_UPLOAD_BYTES", 25<<20)),
		HistoryLimit:        getEnvInt("HISTORY_LIMIT", 20),

		ProxyURL:        getEnv("PROXY_URL", ""),
		ProviderTimeout: time.Duration(getEnvInt("PROVIDER_TIMEOUT_SECONDS", 120)) * time.Second,

		Translation: TranslationConfig{
			Provider: strings.ToLower(getEnv("TRANSLATION_PROVIDER", ProviderOpenAI)),
			Model:    getEnv("TRANSLATION_MODEL", "gpt-4o-mini"),
			APIKey:   translationKey,
			BaseURL:  getEnv("TRANSLATION_BASE_URL", ""),
		},
		OpenAI: OpenAIConfig{
			APIKey:   openAIKey,
			BaseURL:  os.Getenv("OPENAI_BASE_URL"),
			TTSModel: getEnv("TTS_MODEL", "gpt-4o-mini-tts"),
			STTModel: getEnv("STT_MODEL", "whisper-1"),
		},
		S3: S3Config{
			Bucket:          getEnv("S3_BUCKET", ""),
			Region:          getEnv("S3_REGION", "us-east-1"),
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
			Prefix:          strings.Trim(getEnv("S3_PREFIX", "voicebridge/announcements"), "/"),
			PublicURL:       strings.TrimRight(getEnv("S3_PUBLIC_URL", ""), "/"),
			PathStyle:       getEnvBool("S3_PATH_STYLE", false),
		},
		Transcoder: TranscoderConfig{
			Path:        lookupEnv("FFMPEG_PATH", "ffmpeg"),
			Passthrough: getEnvBool("TRANSCODE_PASSTHROUGH", false),
		},

		VoicesFile: getEnv("VOICES_FILE", ""),
	}
}

// Validate rejects settings the service cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.LanguageConcurrency < 1 {
		errs = append(errs, fmt.Errorf("language concurrency must be at least 1, got %d", c.LanguageConcurrency))
	}
	if c.RateLimit < 1 {
		errs = append(errs, fmt.Errorf("rate limit must be at least 1, got %d", c.RateLimit))
	}
	if c.HistoryLimit < 1 {
		errs = append(errs, fmt.Errorf("history limit must be at least 1, got %d", c.HistoryLimit))
	}
	if c.MaxUploadBytes < 1 {
		errs = append(errs, fmt.Errorf("max upload bytes must be positive, got %d", c.MaxUploadBytes))
	}
	if c.ProviderTimeout <= 0 {
		errs = append(errs, fmt.Errorf("provider timeout must be positive, got %s", c.ProviderTimeout))
	}
	if c.NodeID < 0 || c.NodeID > 1023 {
		errs = append(errs, fmt.Errorf("node id must be between 0 and 1023, got %d", c.NodeID))
	}
	if c.SourceLanguage == "" {
		errs = append(errs, errors.New("source language cannot be empty"))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log format must be text or json, got %q", c.LogFormat))
	}
	switch c.Translation.Provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderCompatible:
	default:
		errs = append(errs, fmt.Errorf("unknown translation provider %q", c.Translation.Provider))
	}
	if c.Translation.Provider == ProviderCompatible && c.Translation.BaseURL == "" {
		errs = append(errs, errors.New("translation base url is required for compatible provider"))
	}
	if c.S3.Enabled() && c.S3.PublicURL == "" && c.S3.Endpoint != "" {
		errs = append(errs, errors.New("s3 public url is required with a custom endpoint"))
	}
	return errors.Join(errs...)
}

func getEnv(key, def string) string {
	if v := os.Getenv(envPrefix + key); v != "" {
		return v
	}
	return def
}

// lookupEnv is like getEnv but keeps an explicitly empty value, which is how
// optional tools are switched off.
func lookupEnv(key, def string) string {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func normalizeMediaURL(p string) string {
	p = "/" + strings.Trim(p, "/") + "/"
	if p == "//" {
		return "/"
	}
	return p
}

func detectStaticDir() string {
	candidates := []string{
		"./frontend/dist",
		"../frontend/dist",
	}
	for _, candidate := range candidates {
		indexPath := filepath.Join(candidate, "index.html")
		if info, err := os.Stat(indexPath); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return "./frontend/dist"
}
