package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/refract/internal/cache"
	"github.com/dshills/refract/internal/config"
)

var (
	flagCacheExpired bool
	flagCacheJSON    bool
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the semantic response cache",
	Long: "Semantic stage responses are cached per provider, model and file content, " +
		"so re-reviewing an unchanged file does not call the provider again.",
}

// openCache opens the configured cache directory regardless of the
// cache.enabled setting, so a disabled cache can still be cleaned up.
func openCache() (*cache.Cache, error) {
	cfg, err := config.Load(nil)
	if err != nil {
		return nil, err
	}
	c, err := cache.New(true, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	return c, nil
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached semantic responses",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache()
		if err != nil {
			return err
		}
		remove, what := c.Clear, "entries"
		if flagCacheExpired {
			remove, what = c.Prune, "expired entries"
		}
		n, err := remove()
		if err != nil {
			return fmt.Errorf("clearing cache: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d %s from %s\n", n, what, c.Dir())
		return nil
	},
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show cache location, size and expired entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(nil)
		if err != nil {
			return err
		}
		c, err := openCache()
		if err != nil {
			return err
		}
		stats, err := c.GetStats()
		if err != nil {
			return fmt.Errorf("reading cache stats: %w", err)
		}
		stats.Enabled = cfg.Cache.Enabled

		w := cmd.OutOrStdout()
		if flagCacheJSON {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		}
		state := "enabled"
		if !stats.Enabled {
			state = "disabled"
		}
		ttl := "never"
		if c.TTL() > 0 {
			ttl = c.TTL().String()
		}
		fmt.Fprintf(w, "Directory: %s (%s)\n", stats.Dir, state)
		fmt.Fprintf(w, "Entries:   %d (%d expired)\n", stats.Entries, stats.Expired)
		fmt.Fprintf(w, "Size:      %d bytes\n", stats.TotalBytes)
		fmt.Fprintf(w, "Expiry:    %s\n", ttl)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheShowCmd)
	cacheClearCmd.Flags().BoolVar(&flagCacheExpired, "expired", false, "Only remove expired or unreadable entries")
	cacheShowCmd.Flags().BoolVar(&flagCacheJSON, "json", false, "Print statistics as JSON")
}
