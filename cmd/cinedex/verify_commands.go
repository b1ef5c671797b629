package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cinedex/internal/config"
	"cinedex/internal/export"
	"cinedex/internal/pipeline"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	var dateFlag string
	var showMissing int
	var minPopularity float64
	var noCache bool

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Compare the catalog against a daily ID export",
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDateFlag(dateFlag)
			if err != nil {
				return err
			}
			if date.IsZero() {
				date = export.DefaultDate()
			}
			return ctx.withPipeline(func(cfg *config.Config, p *pipeline.Pipeline) error {
				if noCache {
					if _, err := p.Exports().Refresh(cmd.Context(), date); err != nil {
						return err
					}
				}
				result, err := p.Verifier().Verify(cmd.Context(), date)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, result.Summary())

				if showMissing <= 0 || result.MissingCount() == 0 {
					return nil
				}
				missing, err := p.Verifier().MissingByPopularity(cmd.Context(), result, minPopularity, showMissing)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(missing))
				for _, movie := range missing {
					rows = append(rows, []string{
						fmt.Sprintf("%d", movie.ID),
						truncate(movie.Title, 48),
						fmt.Sprintf("%.1f", movie.Popularity),
					})
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Most popular missing movies:")
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Title", "Popularity"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Export date as YYYY-MM-DD (default: yesterday)")
	cmd.Flags().IntVar(&showMissing, "missing", 0, "Show this many missing movies, most popular first")
	cmd.Flags().Float64Var(&minPopularity, "min-popularity", 0, "Ignore missing movies below this popularity")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Re-download the export even when cached")
	return cmd
}

func newCoverageCommand(ctx *commandContext) *cobra.Command {
	var dateFlag string

	cmd := &cobra.Command{
		Use:   "coverage",
		Short: "Break catalog coverage down by popularity tier",
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDateFlag(dateFlag)
			if err != nil {
				return err
			}
			if date.IsZero() {
				date = export.DefaultDate()
			}
			return ctx.withPipeline(func(cfg *config.Config, p *pipeline.Pipeline) error {
				tiers, err := p.Verifier().CoverageByTier(cmd.Context(), date)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(tiers))
				for _, tier := range tiers {
					rows = append(rows, []string{
						tier.Tier,
						formatCount(tier.Total),
						formatCount(tier.InCatalog),
						formatCount(tier.Missing),
						formatPercent(tier.CoveragePercent),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Tier", "Export", "In catalog", "Missing", "Coverage"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Export date as YYYY-MM-DD (default: yesterday)")
	return cmd
}
