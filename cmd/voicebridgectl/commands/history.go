package commands

import (
	"github.com/spf13/cobra"
)

func newHistoryCmd(opts *globalOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent announcements",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			list, err := a.Service.ListHistory(cmd.Context(), limit)
			if err != nil {
				return err
			}
			views := make([]announcementView, 0, len(list))
			for _, item := range list {
				views = append(views, toView(item))
			}
			return printJSON(cmd.OutOrStdout(), views)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of records (default: HISTORY_LIMIT)")
	return cmd
}
