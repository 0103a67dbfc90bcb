package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Send a test request to the translation provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			reply, err := a.Translation.Test(cmd.Context())
			if err != nil {
				return fmt.Errorf("%s: %w", a.Translation.Name(), err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s ok: %s\n", a.Translation.Name(), reply)
			return err
		},
	}
}
