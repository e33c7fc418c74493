package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"dfhash/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or scaffold the dfhash TOML config",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigShowCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var output string
	var force bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a commented starter config with the CSV and cache defaults",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := initTarget(output)
			if err != nil {
				return err
			}
			if !force {
				_, statErr := os.Stat(target)
				switch {
				case statErr == nil:
					return fmt.Errorf("%s already exists; pass --force to replace it", target)
				case !errors.Is(statErr, fs.ErrNotExist):
					return fmt.Errorf("inspect %s: %w", target, statErr)
				}
			}
			if err := config.CreateSample(target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Starter config written to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Where to write the config (default ~/.config/dfhash/config.toml)")
	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing config file")
	return cmd
}

// initTarget resolves the init destination, falling back to the default
// config location.
func initTarget(output string) (string, error) {
	if output = strings.TrimSpace(output); output == "" {
		return config.DefaultConfigPath()
	}
	return config.ExpandPath(output)
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Check the config and summarize the settings a hash run would use",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(ctx.configPath())
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("prepare cache directory: %w", err)
			}
			describeConfig(cmd.OutOrStdout(), cfg, path, exists)
			return nil
		},
	}
}

func describeConfig(w io.Writer, cfg *config.Config, path string, exists bool) {
	source := path
	if !exists {
		source += " (not found, built-in defaults)"
	}
	workers := "all CPUs"
	if cfg.Hashing.Workers > 0 {
		workers = strconv.Itoa(cfg.Hashing.Workers)
	}
	fmt.Fprintf(w, "Source: %s\n", source)
	fmt.Fprintf(w, "Workers: %s\n", workers)
	fmt.Fprintf(w, "CSV: delimiter %q, encoding %s, header %s, nulls %q\n",
		cfg.Delimiter(), cfg.CSV.Encoding, yesNo(cfg.CSV.HasHeader), cfg.CSV.NullValues)
	fmt.Fprintf(w, "Cache: %s (%s)\n", yesNo(cfg.Cache.Enabled), cfg.Cache.Path)
	fmt.Fprintln(w, "dfhash config OK")
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective config, flag overrides included, as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return cfg.Encode(cmd.OutOrStdout())
		},
	}
}
