package cli

import (
	"github.com/spf13/cobra"

	"interest-rate-history/internal/app"
)

var (
	yearlyRecordsPath string
	yearlyOutputPath  string
)

var yearlyCmd = &cobra.Command{
	Use:   "yearly",
	Short: "Write the unweighted average rate per calendar year",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.YearlyOptions{
			RecordsPath: yearlyRecordsPath,
			OutputPath:  yearlyOutputPath,
		}
		return getApp().Yearly(cmd.Context(), opts)
	},
}

func init() {
	yearlyCmd.Flags().StringVar(&yearlyRecordsPath, "records", "", "Path of the record store (defaults to config)")
	yearlyCmd.Flags().StringVar(&yearlyOutputPath, "out", "", "Path of the yearly summary (defaults to config)")
}
