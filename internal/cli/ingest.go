package cli

import (
	"github.com/spf13/cobra"

	"interest-rate-history/internal/app"
)

var ingestRecordsPath string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Download the rate archive and rewrite the record store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Ingest(cmd.Context(), app.IngestOptions{RecordsPath: ingestRecordsPath})
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestRecordsPath, "records", "", "Path of the record store (defaults to config)")
}
