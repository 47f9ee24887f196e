package cli

import (
	"github.com/spf13/cobra"

	"interest-rate-history/internal/app"
)

var durationsRecordsPath string

var durationsCmd = &cobra.Command{
	Use:   "durations",
	Short: "Print days in effect per rate and the weighted average rate",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Durations(cmd.Context(), app.DurationsOptions{RecordsPath: durationsRecordsPath})
	},
}

func init() {
	durationsCmd.Flags().StringVar(&durationsRecordsPath, "records", "", "Path of the record store (defaults to config)")
}
