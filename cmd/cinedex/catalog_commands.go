package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cinedex/internal/config"
	"cinedex/internal/pipeline"
	"cinedex/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show catalog counts and connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				status, err := st.Status(cmd.Context())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				rows := [][]string{
					{"Production movies", formatCount(status.ProductionCount)},
					{"Staged movies", formatCount(status.StagedCount)},
					{"Latest production release", formatDate(status.LatestProductionDate)},
					{"Latest staged release", formatDate(status.LatestStagedDate)},
					{"Database", status.DatabasePath},
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Field", "Value"},
					rows,
					[]columnAlignment{alignLeft, alignRight},
				))
				return nil
			})
		},
	}
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search the upstream catalog",
		Long: "Searches the upstream catalog by title, or fetches a single " +
			"movie when the query is a numeric ID. Hits already in the local " +
			"catalog are flagged.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return ctx.withPipeline(func(cfg *config.Config, p *pipeline.Pipeline) error {
				results, err := p.Search(cmd.Context(), query)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(results) == 0 {
					fmt.Fprintln(out, "No results")
					return nil
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Title", "Released", "Popularity", "Catalog"},
					buildSearchRows(results),
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <movie-id>",
		Short: "Fetch one movie by ID and stage it for review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid movie id %q", args[0])
			}
			return ctx.withPipeline(func(cfg *config.Config, p *pipeline.Pipeline) error {
				record, err := p.AddByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				year := "unknown"
				if record.ReleaseDate != nil {
					year = strconv.Itoa(record.ReleaseDate.Year())
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Staged %q (%s), id %d\n", record.Title, year, record.ID)
				return nil
			})
		},
	}
}
