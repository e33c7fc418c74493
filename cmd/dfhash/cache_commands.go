package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"dfhash/internal/hashcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the fingerprint cache",
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func withCache(cmd *cobra.Command, ctx *commandContext, fn func(*hashcache.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	store, err := hashcache.Open(cmd.Context(), cfg.Cache.Path)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached fingerprints",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(cmd, ctx, func(store *hashcache.Store) error {
				entries, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, cacheEntryViews(entries))
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "Cache is empty")
					return nil
				}
				if !isTerminal(out) {
					for _, entry := range entries {
						fmt.Fprintf(out, "%s  %s\n", entry.Digest, entry.Path)
					}
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					rows = append(rows, []string{
						entry.Digest,
						entry.Path,
						strconv.Itoa(entry.Rows),
						strconv.Itoa(entry.Columns),
						formatTimestamp(entry.HashedAt),
					})
				}
				fmt.Fprintln(out, renderTable([]tableColumn{
					{header: "Digest"},
					{header: "Path", maxWidth: 60},
					{header: "Rows", align: alignRight},
					{header: "Columns", align: alignRight},
					{header: "Hashed"},
				}, rows))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the fingerprint cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return withCache(cmd, ctx, func(store *hashcache.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, cacheStatsView{
						Path:      stats.Path,
						Enabled:   cfg.Cache.Enabled,
						Entries:   stats.Entries,
						Rows:      stats.Rows,
						SizeBytes: stats.SizeBytes,
						Oldest:    formatTimestamp(stats.Oldest),
						Newest:    formatTimestamp(stats.Newest),
					})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Path: %s\n", stats.Path)
				fmt.Fprintf(out, "Enabled: %s\n", yesNo(cfg.Cache.Enabled))
				fmt.Fprintf(out, "Entries: %d\n", stats.Entries)
				fmt.Fprintf(out, "Rows fingerprinted: %d\n", stats.Rows)
				fmt.Fprintf(out, "Size: %s\n", humanize.IBytes(uint64(stats.SizeBytes)))
				if stats.Entries > 0 {
					fmt.Fprintf(out, "Oldest: %s\n", formatTimestamp(stats.Oldest))
					fmt.Fprintf(out, "Newest: %s\n", formatTimestamp(stats.Newest))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(cmd, ctx, func(store *hashcache.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached fingerprint(s)\n", removed)
				return nil
			})
		},
	}
}

type cacheEntryView struct {
	Path     string `json:"path"`
	Digest   string `json:"digest"`
	Size     int64  `json:"size"`
	Rows     int    `json:"rows"`
	Columns  int    `json:"columns"`
	HashedAt string `json:"hashed_at"`
}

type cacheStatsView struct {
	Path      string `json:"path"`
	Enabled   bool   `json:"enabled"`
	Entries   int    `json:"entries"`
	Rows      int64  `json:"rows"`
	SizeBytes int64  `json:"size_bytes"`
	Oldest    string `json:"oldest,omitempty"`
	Newest    string `json:"newest,omitempty"`
}

func cacheEntryViews(entries []*hashcache.Entry) []cacheEntryView {
	views := make([]cacheEntryView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, cacheEntryView{
			Path:     entry.Path,
			Digest:   entry.Digest,
			Size:     entry.Size,
			Rows:     entry.Rows,
			Columns:  entry.Columns,
			HashedAt: formatTimestamp(entry.HashedAt),
		})
	}
	return views
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
