// cmd/reconciler/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/sunilgaur959-bit/gst-reconciliation-tool/internal/api/responses"
	"github.com/sunilgaur959-bit/gst-reconciliation-tool/internal/config"
	"github.com/sunilgaur959-bit/gst-reconciliation-tool/internal/core/reconciliation"
	"go.uber.org/zap"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "reconciler",
	Short: "GST reconciliation - match GSTR-2B statements against purchase books",
	Long: `reconciler matches the invoices of a GSTR_2B sheet against the BOOKS sheet of the
same workbook and marks every record MATCHED or NOT MATCHED.

Example Usage:
  reconciler serve                       # Start the HTTP API
  reconciler run purchases.xlsx          # Reconcile a workbook from the command line
  reconciler template -o template.xlsx   # Write a blank input workbook`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to the configuration file (default config.yaml when present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(serveCmd, runCmd, templateCmd, versionCmd)
}

// setup loads the environment and configuration and builds the logger and the service.
func setup() (*config.Config, *zap.Logger, reconciliation.Service, error) {
	if err := config.LoadEnvFile(".env"); err != nil {
		return nil, nil, nil, err
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, nil, err
	}

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	logger, err := responses.InitLogger(level, cfg.Log.Development)
	if err != nil {
		return nil, nil, nil, err
	}

	svc, err := reconciliation.NewService(cfg.ReconciliationOptions(), logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create reconciliation service: %w", err)
	}
	return cfg, logger, svc, nil
}
