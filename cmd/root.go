// Package cmd defines and implements the CLI commands for the productfinder
// executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/anshultibby/moleAI-sub001/internal/config"
	"github.com/anshultibby/moleAI-sub001/internal/logging"
	"github.com/anshultibby/moleAI-sub001/internal/metrics"
)

var cfgFile string

// runtime holds the services shared by all subcommands, built once in the
// root PersistentPreRunE.
type runtime struct {
	cfg    config.Config
	logger *zap.Logger
}

var rt *runtime

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "productfinder",
		Short: "Discover and extract product records from e-commerce sites.",
		Long: `productfinder crawls an e-commerce site from a seed listing URL,
recognizes listing and product pages, and extracts structured product data
(JSON-LD, microdata, or embedded analytics payloads) into canonical records.`,
		SilenceUsage: true,

		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := logging.New(cfg.Logging.Development)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			metrics.Init()
			rt = &runtime{cfg: cfg, logger: logger}
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if rt != nil && rt.logger != nil {
				_ = rt.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file")
	cmd.AddCommand(newCrawlCmd())
	cmd.AddCommand(newServeCmd())
	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
