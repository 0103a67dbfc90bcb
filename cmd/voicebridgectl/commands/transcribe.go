package commands

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"voicebridge/internal/service"
)

func newTranscribeCmd(opts *globalOptions) *cobra.Command {
	var (
		file      string
		languages []string
		tone      string
	)
	cmd := &cobra.Command{
		Use:   "transcribe",
		Short: "Create an announcement from a recording",
		Long: `Transcribe a recording in the source language, then translate and
synthesize it like a text announcement.

Examples:
  voicebridgectl transcribe --file gate.webm --lang fr,yo`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", file, err)
			}

			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			created, err := a.Service.CreateFromAudio(cmd.Context(), service.CreateFromAudioInput{
				Audio:       data,
				Filename:    filepath.Base(file),
				ContentType: mime.TypeByExtension(filepath.Ext(file)),
				Languages:   languages,
				Tone:        tone,
				BaseURL:     resolveBaseURL(opts, a.Config),
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), toView(created))
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "recording to transcribe")
	cmd.Flags().StringSliceVarP(&languages, "lang", "l", nil, "target language codes (comma separated)")
	cmd.Flags().StringVar(&tone, "tone", "", "delivery tone (default: DEFAULT_TONE)")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("lang")
	return cmd
}
