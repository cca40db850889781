package main

import (
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	dataDir string
	verbose bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ctrlsys",
		Short:         "composable feedback control engine and closed-loop lab",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".ctrlsys", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(
		newRunCmd(),
		newListCmd(),
		newPlotCmd(),
		newExportJSONCmd(),
		newExportSVGCmd(),
		newAnalyzeCmd(),
		newTuneCmd(),
		newLiveCmd(),
		newPresetsCmd(),
	)
	return rootCmd
}

// newLogger returns a console zap logger wrapped as a logr.Logger, plus
// a flush func for the caller to defer.
func newLogger() (logr.Logger, func()) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.DisableStacktrace = true
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	zl, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger setup failed, continuing without logs: %v\n", err)
		return logr.Discard(), func() {}
	}
	return zapr.NewLogger(zl), func() { _ = zl.Sync() }
}
