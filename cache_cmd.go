package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/dictate/internal/cache"
)

var (
	cacheCmd = &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the synthesized audio cache",
		Args:  cobra.NoArgs,
	}

	cacheStatsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Show how much audio is cached",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := cacheDir()
			if err != nil {
				return err
			}
			mgr, err := newCacheManager()
			if err != nil {
				return err
			}
			defer mgr.Close() //nolint:errcheck

			return printCacheStats(cmd.OutOrStdout(), dir, mgr.Stats().Disk)
		},
	}

	cacheClearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Delete all cached audio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := cacheDir()
			if err != nil {
				return err
			}
			mgr, err := newCacheManager()
			if err != nil {
				return err
			}
			defer mgr.Close() //nolint:errcheck

			if err := mgr.Clear(); err != nil {
				return fmt.Errorf("unable to clear cache: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Cleared audio cache at", dir)
			return err
		},
	}
)

func printCacheStats(w io.Writer, dir string, s cache.Stats) error {
	used := 0.0
	if s.Capacity > 0 {
		used = float64(s.Size) / float64(s.Capacity) * 100
	}

	_, err := fmt.Fprintf(w, "Location:  %s\nEntries:   %s\nSize:      %s of %s (%.0f%%)\n",
		dir,
		humanize.Comma(s.ItemCount),
		humanize.IBytes(uint64(max(s.Size, 0))), //nolint:gosec
		humanize.IBytes(uint64(max(s.Capacity, 0))), //nolint:gosec
		used,
	)
	return err
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd)
}
