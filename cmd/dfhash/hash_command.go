package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"dfhash/internal/config"
	"dfhash/internal/failure"
	"dfhash/internal/hashcache"
	"dfhash/internal/loader"
	"dfhash/internal/logging"
	"dfhash/internal/runner"
)

type hashFlags struct {
	equals    bool
	format    string
	workers   int
	noCache   bool
	delimiter string
	encoding  string
	noHeader  bool
}

func newHashCommand(ctx *commandContext) *cobra.Command {
	var flags hashFlags

	cmd := &cobra.Command{
		Use:   "dfhash [flags] FILE...",
		Short: "Fingerprint tabular data files independent of row order",
		Long: "dfhash sorts every row of each input into a canonical order, serializes the\n" +
			"result and prints its SHA-256 digest. Two files holding the same rows in any\n" +
			"order and in any supported format (CSV, TSV, gzip/zstd compressed text,\n" +
			"Parquet) produce the same digest.",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHash(cmd, ctx, flags, args)
		},
	}

	cmd.Flags().BoolVarP(&flags.equals, "equals", "e", false, "Check that all files hold the same data instead of printing digests")
	cmd.Flags().StringVarP(&flags.format, "format", "f", string(runner.FormatText), "Output format: text, table or json")
	cmd.Flags().IntVarP(&flags.workers, "workers", "j", 0, "Parallel workers (default from config, 0 = all CPUs)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "Ignore the fingerprint cache for this run")
	cmd.Flags().StringVarP(&flags.delimiter, "delimiter", "d", "", "Field delimiter for delimited text (overrides config)")
	cmd.Flags().StringVar(&flags.encoding, "encoding", "", "Character encoding for delimited text (overrides config)")
	cmd.Flags().BoolVar(&flags.noHeader, "no-header", false, "Delimited text has no header row")
	return cmd
}

func runHash(cmd *cobra.Command, ctx *commandContext, flags hashFlags, files []string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if _, err := runner.ParseFormat(flags.format); err != nil {
		return failure.Wrap(failure.ErrUsage, "", "", err)
	}
	logger, logCloser, err := ctx.logger(cmd)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	runCtx := logging.WithRunID(cmd.Context(), logging.NewRunID())

	loadOpts, err := loaderOptions(cfg, flags)
	if err != nil {
		return err
	}

	workers := cfg.Hashing.Workers
	if cmd.Flags().Changed("workers") {
		workers = flags.workers
	}

	opts := runner.Options{
		Files:   files,
		Equals:  flags.equals,
		Workers: workers,
		Format:  runner.Format(flags.format),
		Loader:  loader.New(loadOpts, logger),
		Logger:  logger,
	}

	if cfg.Cache.Enabled && !flags.noCache && !flags.equals && len(files) > 0 {
		store, err := openSharedCache(cmd, cfg)
		switch {
		case err == nil:
			defer store.Close()
			opts.Cache = store
		case errors.Is(err, hashcache.ErrLocked):
			logger.Warn("fingerprint cache busy; hashing without it", logging.String("path", cfg.Cache.Path))
		default:
			logger.Warn("fingerprint cache unavailable; hashing without it", logging.Error(err))
		}
	}

	code := runner.Run(runCtx, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if code != runner.ExitOK {
		return &exitError{code: code}
	}
	return nil
}

func loaderOptions(cfg *config.Config, flags hashFlags) (loader.Options, error) {
	opts := loader.Options{
		Delimiter:  cfg.Delimiter(),
		Encoding:   cfg.CSV.Encoding,
		NullValues: cfg.CSV.NullValues,
		HasHeader:  cfg.CSV.HasHeader && !flags.noHeader,
	}
	if flags.delimiter != "" {
		delim, err := parseDelimiter(flags.delimiter)
		if err != nil {
			return opts, err
		}
		opts.Delimiter = delim
	}
	if flags.encoding != "" {
		opts.Encoding = flags.encoding
	}
	return opts, nil
}

func parseDelimiter(value string) (rune, error) {
	switch value {
	case "tab", `\t`:
		return '\t', nil
	}
	runes := []rune(value)
	if len(runes) != 1 || runes[0] == '"' || runes[0] == '\n' || runes[0] == '\r' {
		return 0, failure.Wrap(failure.ErrUsage, "", "", fmt.Errorf("invalid delimiter %q", value))
	}
	return runes[0], nil
}

func openSharedCache(cmd *cobra.Command, cfg *config.Config) (*hashcache.Store, error) {
	store, err := hashcache.Open(cmd.Context(), cfg.Cache.Path)
	if err != nil {
		return nil, err
	}
	if err := store.Share(); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}
