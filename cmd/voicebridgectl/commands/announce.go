package commands

import (
	"github.com/spf13/cobra"

	"voicebridge/internal/service"
)

func newAnnounceCmd(opts *globalOptions) *cobra.Command {
	var (
		text      string
		languages []string
		tone      string
	)
	cmd := &cobra.Command{
		Use:   "announce",
		Short: "Translate and synthesize a text announcement",
		Long: `Translate text into each language, synthesize speech and store the result.

Examples:
  voicebridgectl announce --text "The gate is closing" --lang fr,ha --tone urgent`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			created, err := a.Service.CreateFromText(cmd.Context(), service.CreateAnnouncementInput{
				Text:      text,
				Languages: languages,
				Tone:      tone,
				BaseURL:   resolveBaseURL(opts, a.Config),
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), toView(created))
		},
	}
	cmd.Flags().StringVarP(&text, "text", "t", "", "announcement text")
	cmd.Flags().StringSliceVarP(&languages, "lang", "l", nil, "target language codes (comma separated)")
	cmd.Flags().StringVar(&tone, "tone", "", "delivery tone (default: DEFAULT_TONE)")
	_ = cmd.MarkFlagRequired("text")
	_ = cmd.MarkFlagRequired("lang")
	return cmd
}
