package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Boluski2/lendsqr-admin/internal/cache"
	"github.com/Boluski2/lendsqr-admin/internal/generator"
	"github.com/Boluski2/lendsqr-admin/internal/service"
)

var (
	warmIDs     []string
	warmFirst   int
	warmWorkers int
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the local record cache",
}

var cacheWarmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Preload user records into the local cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := warmIDs
		if len(ids) == 0 {
			for i := 1; i <= warmFirst; i++ {
				ids = append(ids, generator.UserID(generator.DefaultConfig().IDPrefix, i))
			}
		}
		if len(ids) == 0 {
			return fmt.Errorf("nothing to warm: pass --ids or --first")
		}

		a, err := newApp(cmd.Context(), cfg, logger, false)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := service.NewWarmer(a.resolver, warmWorkers).Warm(cmd.Context(), ids); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cached %d users (%d total in cache)\n", len(ids), a.cache.Len(cmd.Context()))
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached record",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg, logger, false)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.store.Delete(cmd.Context(), cache.StorageKey); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared")
		return nil
	},
}

func init() {
	cacheWarmCmd.Flags().StringSliceVar(&warmIDs, "ids", nil, "user ids to cache")
	cacheWarmCmd.Flags().IntVar(&warmFirst, "first", 0, "cache the first N users when --ids is not given")
	cacheWarmCmd.Flags().IntVar(&warmWorkers, "workers", 4, "number of concurrent workers")

	cacheCmd.AddCommand(cacheWarmCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
