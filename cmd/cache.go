package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/ipcsim/internal/cli"
	"github.com/theirongolddev/ipcsim/internal/store"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the projection result cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache size and hit counts",
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached projection",
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func openCache() (*store.Cache, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	cache, err := store.Open(cachePath(cfg))
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	return cache, nil
}

func runCacheStats(_ *cobra.Command, _ []string) error {
	cache, err := openCache()
	if err != nil {
		return err
	}
	defer func() { _ = cache.Close() }()

	st, err := cache.Stats()
	if err != nil {
		return fmt.Errorf("reading cache stats: %w", err)
	}

	rows := [][]string{
		{"Path", st.Path},
		{"Size", cli.FormatBytes(st.SizeBytes)},
		{"Entries", cli.FormatNumber(int64(st.Entries))},
		{"Hits", cli.FormatNumber(int64(st.Hits))},
	}
	if st.Entries > 0 {
		rows = append(rows,
			[]string{"Oldest", st.Oldest.Local().Format(time.DateTime)},
			[]string{"Newest", st.Newest.Local().Format(time.DateTime)},
		)
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:    "Result cache",
		Headers:  []string{"", ""},
		Rows:     rows,
		LeftCols: 2,
	}))
	fmt.Println()
	return nil
}

func runCacheClear(_ *cobra.Command, _ []string) error {
	cache, err := openCache()
	if err != nil {
		return err
	}
	defer func() { _ = cache.Close() }()

	n, err := cache.Clear()
	if err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Removed %d cached projections\n", n)
	}
	return nil
}
