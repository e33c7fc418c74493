package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string
	var logFormatFlag string
	var logFileFlag string

	ctx := newCommandContext(&configFlag, &logLevelFlag, &logFormatFlag, &logFileFlag)

	rootCmd := newHashCommand(ctx)
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if shouldSkipConfig(cmd) {
			return nil
		}
		_, err := ctx.ensureConfig()
		return err
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Diagnostic log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "Diagnostic log format (console, json)")
	rootCmd.PersistentFlags().StringVar(&logFileFlag, "log-file", "", "Also append diagnostics to this file")

	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newCacheCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}
