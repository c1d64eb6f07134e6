package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/taitdna2/cholimex-display-checker/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "display-checker",
	Short: "Display-program enrollment reconciliation",
	Long:  "Reconciles monthly display-program registry snapshots, classifies each enrollment against its minimum-sales threshold, and exports per-region report workbooks.",
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
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
