package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/geocoder/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "geocoder",
	Short: "Batch address geocoding for spreadsheets",
	Long:  "Reads a CSV or XLSX file, builds one address per row, geocodes each at most once per second, and writes coordinates back as CSV, GeoJSON and a point map.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
