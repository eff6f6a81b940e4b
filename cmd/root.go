package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "geospyder",
	Short: "Batch geocoding for tabular location data",
	Long:  "Converts a column of free-text location strings in an XLSX or CSV table into structured coordinates via the Baidu Maps geocoding API, processing the table in rate-limited chunks.",
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
