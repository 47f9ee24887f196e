package cli

import (
	"github.com/spf13/cobra"

	"interest-rate-history/internal/app"
)

var (
	exportRecordsPath string
	exportPNGPath     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render the rate history and yearly averages as a PNG chart",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ExportOptions{
			RecordsPath: exportRecordsPath,
			PNGPath:     exportPNGPath,
		}
		return getApp().Export(cmd.Context(), opts)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportRecordsPath, "records", "", "Path of the record store (defaults to config)")
	exportCmd.Flags().StringVar(&exportPNGPath, "png", "", "Path to write PNG chart (defaults to config)")
}
