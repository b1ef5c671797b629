package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cinedex/internal/export"
	"cinedex/internal/logging"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the export download cache",
	}

	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	return cacheCmd
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	var olderThan int

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete cached export files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			handler, err := export.NewHandler(export.Config{
				BaseURL:  cfg.TMDB.ExportURL,
				CacheDir: cfg.Paths.ExportCacheDir,
				Logger:   logging.NewNop(),
			})
			if err != nil {
				return err
			}
			removed, err := handler.ClearCache(olderThan)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached export(s)\n", removed)
			return nil
		},
	}

	cmd.Flags().IntVar(&olderThan, "older-than", 0, "Only delete exports older than this many days")
	return cmd
}
