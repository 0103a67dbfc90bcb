package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"voicebridge/internal/app"
	"voicebridge/internal/config"
	"voicebridge/internal/logger"
	"voicebridge/internal/model"
	"voicebridge/internal/snowflake"
)

type globalOptions struct {
	verbose bool
	baseURL string
}

// Execute builds the command tree and runs it against os.Args.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:   "voicebridgectl",
		Short: "VoiceBridge announcement CLI",
		Long: `VoiceBridge CLI - run the announcement pipeline without the HTTP server.

Announcements are stored in the same database and media directory the server
uses, so they show up in its history.

Examples:
  # Announce in French and Yoruba
  voicebridgectl announce --text "Boarding starts now" --lang fr,yo --tone calm

  # Announce from a recording
  voicebridgectl transcribe --file gate.webm --lang fr

  # Show the last five announcements
  voicebridgectl history --limit 5
`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	root.PersistentFlags().StringVar(&opts.baseURL, "base-url", "", "origin for locally stored audio URLs (default: PUBLIC_BASE_URL or http://localhost<ADDR>)")

	root.AddCommand(newAnnounceCmd(opts))
	root.AddCommand(newTranscribeCmd(opts))
	root.AddCommand(newHistoryCmd(opts))
	root.AddCommand(newCheckCmd(opts))
	return root
}

// openApp loads configuration and builds the application. Logs go to stderr
// so stdout stays machine readable.
func openApp(opts *globalOptions) (*app.App, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(logger.New(os.Stderr, level, cfg.LogFormat))

	if err := snowflake.Init(cfg.NodeID); err != nil {
		return nil, fmt.Errorf("init snowflake: %w", err)
	}
	return app.New(cfg)
}

func resolveBaseURL(opts *globalOptions, cfg config.Config) string {
	if opts.baseURL != "" {
		return strings.TrimRight(opts.baseURL, "/")
	}
	if cfg.PublicBaseURL != "" {
		return cfg.PublicBaseURL
	}
	if strings.HasPrefix(cfg.Addr, ":") {
		return "http://localhost" + cfg.Addr
	}
	return "http://" + cfg.Addr
}

type announcementView struct {
	ID           string            `json:"id"`
	Text         string            `json:"text"`
	Languages    []string          `json:"languages"`
	Translations map[string]string `json:"translations"`
	Tone         string            `json:"tone"`
	AudioFiles   map[string]string `json:"audio_files"`
	CreatedAt    string            `json:"created_at"`
}

func toView(a model.Announcement) announcementView {
	return announcementView{
		ID:           fmt.Sprintf("%d", a.ID),
		Text:         a.Text,
		Languages:    a.Languages,
		Translations: a.Translations,
		Tone:         a.Tone,
		AudioFiles:   a.AudioFiles,
		CreatedAt:    a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
