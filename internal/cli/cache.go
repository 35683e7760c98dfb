package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rigwall/pkg/cache"
)

func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the local pipeline cache",
		Long: `Catalogs, layouts, rendered artifacts and probed image sizes are cached
under the cache directory (cache.dir in rigwall.toml, else
$XDG_CACHE_HOME/rigwall or ~/.cache/rigwall).`,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "info",
			Short: "Show the cache directory and its size",
			RunE:  c.runCacheInfo,
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every cached entry",
			RunE:  c.runCacheClear,
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the cache directory",
			RunE: func(cmd *cobra.Command, _ []string) error {
				dir, err := c.cacheDir()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), dir)
				return nil
			},
		},
	)
	return cmd
}

func (c *CLI) runCacheInfo(*cobra.Command, []string) error {
	dir, err := c.cacheDir()
	if err != nil {
		return err
	}
	usage, err := scanCache(dir)
	if err != nil {
		return err
	}
	printKeyValue("Directory", dir)
	printKeyValue("Entries", fmt.Sprint(usage.entries))
	printKeyValue("Size", formatBytes(usage.bytes))
	if c.Config.Cache.Disabled {
		printWarning("Caching is disabled in the config")
	}
	return nil
}

func (c *CLI) runCacheClear(*cobra.Command, []string) error {
	dir, err := c.cacheDir()
	if err != nil {
		return err
	}
	usage, err := scanCache(dir)
	if err != nil {
		return err
	}
	if usage.entries == 0 {
		printInfo("Cache is empty")
		return nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return err
	}
	if err := fc.Clear(); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	printSuccess("Cleared %d cached entries (%s)", usage.entries, formatBytes(usage.bytes))
	printDetail("Directory: %s", dir)
	return nil
}

type cacheUsage struct {
	entries int
	bytes   int64
}

// scanCache totals the regular files below dir. A missing dir is empty;
// unreadable entries are skipped.
func scanCache(dir string) (cacheUsage, error) {
	var u cacheUsage
	err := filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, ierr := d.Info(); ierr == nil {
			u.entries++
			u.bytes += info.Size()
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return cacheUsage{}, nil
	}
	return u, err
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
