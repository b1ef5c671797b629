package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"cinedex/internal/config"
	"cinedex/internal/export"
	"cinedex/internal/pipeline"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var slow bool

	ingestCmd := &cobra.Command{
		Use:   "ingest",
		Short: "Run an ingestion strategy",
	}
	ingestCmd.PersistentFlags().BoolVar(&slow, "slow", false, "Pin the upstream client at its reduced request rate")

	run := func(fn func(*config.Config, *pipeline.Pipeline) error) error {
		return ctx.withPipeline(func(cfg *config.Config, p *pipeline.Pipeline) error {
			if slow {
				p.SetSlowMode(true)
			}
			return fn(cfg, p)
		})
	}

	ingestCmd.AddCommand(newIngestFullCommand(run))
	ingestCmd.AddCommand(newIngestIncrementalCommand(run))
	ingestCmd.AddCommand(newIngestRefreshCommand(run))
	ingestCmd.AddCommand(newIngestBulkCommand(run))
	ingestCmd.AddCommand(newIngestBackfillCommand(run))
	ingestCmd.AddCommand(newIngestYearCommand(run))

	return ingestCmd
}

type pipelineRunner func(func(*config.Config, *pipeline.Pipeline) error) error

func newIngestFullCommand(run pipelineRunner) *cobra.Command {
	var startYear, endYear, limit int
	var force bool

	cmd := &cobra.Command{
		Use:   "full",
		Short: "Crawl every release year into production",
		Long: "Crawls release years from newest to oldest and writes directly " +
			"into the production tables. Intended for first-time population; " +
			"refuses to run against a non-empty catalog unless --force is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(cfg *config.Config, p *pipeline.Pipeline) error {
				stats, err := p.FullCrawl(cmd.Context(), pipeline.FullCrawlOptions{
					StartYear: startYear,
					EndYear:   endYear,
					Limit:     limit,
					Force:     force,
				})
				if err != nil {
					return err
				}
				printRunStats(cmd.OutOrStdout(), stats)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&startYear, "start-year", 0, "Newest year to crawl (default: current year)")
	cmd.Flags().IntVar(&endYear, "end-year", 0, "Oldest year to crawl (default: earliest known release)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Stop after this many inserts")
	cmd.Flags().BoolVar(&force, "force", false, "Run even when production is not empty")
	return cmd
}

func newIngestIncrementalCommand(run pipelineRunner) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "incremental",
		Short: "Stage movies released since the newest catalog entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(cfg *config.Config, p *pipeline.Pipeline) error {
				stats, err := p.Incremental(cmd.Context(), pipeline.IncrementalOptions{Limit: limit})
				if err != nil {
					return err
				}
				printRunStats(cmd.OutOrStdout(), stats)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Stop after this many inserts")
	return cmd
}

func newIngestRefreshCommand(run pipelineRunner) *cobra.Command {
	var daysBack, limit int

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Re-fetch production movies changed upstream",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(cfg *config.Config, p *pipeline.Pipeline) error {
				stats, err := p.RefreshChanged(cmd.Context(), pipeline.RefreshOptions{
					DaysBack: daysBack,
					Limit:    limit,
				})
				if err != nil {
					return err
				}
				printRunStats(cmd.OutOrStdout(), stats)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&daysBack, "days", 14, "How many days of changes to fetch (max 14)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Stop after this many updates")
	return cmd
}

func newIngestBulkCommand(run pipelineRunner) *cobra.Command {
	var dateFlag string
	var minPopularity float64
	var limit int
	var toProduction, noCache bool

	cmd := &cobra.Command{
		Use:   "bulk",
		Short: "Stage every export movie missing from the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDateFlag(dateFlag)
			if err != nil {
				return err
			}
			return run(func(cfg *config.Config, p *pipeline.Pipeline) error {
				if err := refreshExport(cmd, p, noCache, date); err != nil {
					return err
				}
				stats, err := p.BulkFromExport(cmd.Context(), pipeline.BulkOptions{
					Date:          date,
					MinPopularity: minPopularity,
					Limit:         limit,
					ToProduction:  toProduction,
				})
				if err != nil {
					return err
				}
				printRunStats(cmd.OutOrStdout(), stats)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Export date as YYYY-MM-DD (default: yesterday)")
	cmd.Flags().Float64Var(&minPopularity, "min-popularity", 0, "Skip export movies below this popularity")
	cmd.Flags().IntVar(&limit, "limit", 0, "Stop after this many inserts")
	cmd.Flags().BoolVar(&toProduction, "to-production", false, "Insert directly into production instead of staging")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Re-download the export even when cached")
	return cmd
}

func newIngestBackfillCommand(run pipelineRunner) *cobra.Command {
	var dateFlag string
	var minPopularity float64
	var limit int
	var toProduction, noCache bool

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Verify against an export and stage the missing movies",
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDateFlag(dateFlag)
			if err != nil {
				return err
			}
			return run(func(cfg *config.Config, p *pipeline.Pipeline) error {
				if err := refreshExport(cmd, p, noCache, date); err != nil {
					return err
				}
				stats, err := p.Backfill(cmd.Context(), pipeline.BackfillOptions{
					Date:          date,
					MinPopularity: minPopularity,
					Limit:         limit,
					ToProduction:  toProduction,
				})
				if err != nil {
					return err
				}
				printRunStats(cmd.OutOrStdout(), stats)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Export date as YYYY-MM-DD (default: yesterday)")
	cmd.Flags().Float64Var(&minPopularity, "min-popularity", 0, "Skip missing movies below this popularity")
	cmd.Flags().IntVar(&limit, "limit", 0, "Stop after this many inserts")
	cmd.Flags().BoolVar(&toProduction, "to-production", false, "Insert directly into production instead of staging")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Re-download the export even when cached")
	return cmd
}

func newIngestYearCommand(run pipelineRunner) *cobra.Command {
	var limit int
	var toProduction bool

	cmd := &cobra.Command{
		Use:   "year <year>",
		Short: "Re-ingest one release year using monthly windows",
		Long: "Walks one release year month by month, staging everything the " +
			"upstream knows that the catalog lacks. Use it for high-volume " +
			"years that overflow discover pagination.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil || year < 1800 {
				return fmt.Errorf("invalid year %q", args[0])
			}
			return run(func(cfg *config.Config, p *pipeline.Pipeline) error {
				stats, err := p.ReingestYear(cmd.Context(), year, pipeline.ReingestOptions{
					Limit:        limit,
					ToProduction: toProduction,
				})
				if err != nil {
					return err
				}
				printRunStats(cmd.OutOrStdout(), stats)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Stop after this many inserts")
	cmd.Flags().BoolVar(&toProduction, "to-production", false, "Insert directly into production instead of staging")
	return cmd
}

// refreshExport force-downloads the export before a run when asked. A zero
// date resolves to the default export date.
func refreshExport(cmd *cobra.Command, p *pipeline.Pipeline, noCache bool, date time.Time) error {
	if !noCache {
		return nil
	}
	if date.IsZero() {
		date = export.DefaultDate()
	}
	_, err := p.Exports().Refresh(cmd.Context(), date)
	return err
}
