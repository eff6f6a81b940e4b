package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/geospyder/geospyder/internal/config"
	"github.com/geospyder/geospyder/internal/processor"
	"github.com/geospyder/geospyder/pkg/geocode"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Geocode the location column of a table",
	Long:  "Reads the input table, geocodes the configured column through the Baidu Maps API with the configured request delay, and writes the table back with status, latitude, longitude, formatted_address and error_message columns appended.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfgPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(cfgPath, overridesFromFlags(cmd))
		if err != nil {
			return err
		}

		if err := config.InitLogger(cfg.Log); err != nil {
			return err
		}

		svc, err := geocode.NewBaidu(cfg.APIKey, geocode.WithRequestDelay(cfg.Delay()))
		if err != nil {
			return err
		}

		proc := processor.New(svc, cfg.Column, cfg.ChunkSize,
			processor.WithProgress(isatty.IsTerminal(os.Stderr.Fd())),
		)

		sum, err := proc.Run(ctx, cfg.InputPath, cfg.OutputPath)
		if err != nil {
			return err
		}

		fmt.Printf("Total locations processed: %d\n", sum.Total)
		fmt.Printf("Successful geocoding: %d\n", sum.OK)
		if failed := sum.Failures(); failed > 0 {
			fmt.Printf("Failed geocoding: %d\n", failed)
		}
		return nil
	},
}

// overridesFromFlags turns explicitly set flags into config overrides.
// Unset flags contribute nothing, so config-file values survive.
func overridesFromFlags(cmd *cobra.Command) config.Overrides {
	o := config.Overrides{}
	o.APIKey, _ = cmd.Flags().GetString("api_key")
	o.InputPath, _ = cmd.Flags().GetString("input")
	o.OutputPath, _ = cmd.Flags().GetString("output")

	if cmd.Flags().Changed("column") {
		v, _ := cmd.Flags().GetInt("column")
		o.Column = &v
	}
	if cmd.Flags().Changed("delay") {
		v, _ := cmd.Flags().GetFloat64("delay")
		o.RequestDelay = &v
	}
	if cmd.Flags().Changed("chunk-size") {
		v, _ := cmd.Flags().GetInt("chunk-size")
		o.ChunkSize = &v
	}
	return o
}

func init() {
	runCmd.Flags().StringP("config", "c", "", "config file path (JSON)")
	runCmd.Flags().StringP("api_key", "k", "", "Baidu Maps API key")
	runCmd.Flags().StringP("input", "i", "", "input table path (.xlsx or .csv)")
	runCmd.Flags().StringP("output", "o", "", "output table path")
	runCmd.Flags().Int("column", 0, "zero-based index of the location column")
	runCmd.Flags().Float64("delay", 0, "seconds to wait between provider calls")
	runCmd.Flags().Int("chunk-size", 0, "rows per processing chunk")

	rootCmd.AddCommand(runCmd)
}
