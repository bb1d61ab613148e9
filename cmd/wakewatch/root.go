package main

import (
	"github.com/ramonvermeulen/wakewatch/internal/core/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const version = "0.1.0"

var (
	configPath string
	debug      bool
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "wakewatch",
		Short:         "wakewatch watches whether hosts are on the network and wakes them up",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setupLogging()
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(),
		"path to the device list config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"enable debug logging")
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newWakeCmd())
	return rootCmd
}

// setupLogging installs the global zap logger. Per-probe chatter lives at
// debug level, so the default output stays quiet.
func setupLogging() error {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(logger)
	return nil
}
