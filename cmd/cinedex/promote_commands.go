package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"cinedex/internal/catalog"
	"cinedex/internal/config"
	"cinedex/internal/store"
)

func newStagedCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var oldest bool

	cmd := &cobra.Command{
		Use:   "staged",
		Short: "List movies awaiting promotion",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				movies, err := st.StagedOrdered(cmd.Context(), oldest, limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(movies) == 0 {
					fmt.Fprintln(out, "Staged set is empty")
					return nil
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Title", "Released", "Popularity"},
					buildStagedRows(movies),
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum rows to show (0 for all)")
	cmd.Flags().BoolVar(&oldest, "oldest", false, "Order oldest release first")
	return cmd
}

func newPromoteCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "promote [movie-id...]",
		Short: "Move staged movies into production",
		Long: "Moves staged movies into the production tables. Each movie is " +
			"promoted in a single transaction with its credits and genres, so " +
			"a failure leaves both sets untouched.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := resolveBatchIDs(cmd, args, all)
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				if all {
					if ids, err = stagedIDList(cmd.Context(), st); err != nil {
						return err
					}
				}
				if len(ids) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing to promote")
					return nil
				}
				result, err := st.PromoteMany(cmd.Context(), ids)
				if err != nil {
					return err
				}
				printBatchResult(cmd.OutOrStdout(), "Promoted", result)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Promote every staged movie")
	return cmd
}

func newRejectCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "reject [movie-id...]",
		Short: "Delete staged movies without promoting them",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := resolveBatchIDs(cmd, args, all)
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				if all {
					if ids, err = stagedIDList(cmd.Context(), st); err != nil {
						return err
					}
				}
				if len(ids) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing to reject")
					return nil
				}
				result, err := st.RejectMany(cmd.Context(), ids)
				if err != nil {
					return err
				}
				printBatchResult(cmd.OutOrStdout(), "Rejected", result)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Reject every staged movie")
	return cmd
}

func resolveBatchIDs(cmd *cobra.Command, args []string, all bool) ([]int64, error) {
	if all {
		if len(args) > 0 {
			return nil, fmt.Errorf("--all cannot be combined with explicit IDs")
		}
		return nil, nil
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("provide movie IDs or --all")
	}
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid movie id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func stagedIDList(ctx context.Context, st *store.Store) ([]int64, error) {
	set, err := st.StagedIDs(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids, nil
}

func printBatchResult(out io.Writer, verb string, result store.BatchResult) {
	fmt.Fprintf(out, "%s: %s\n", verb, formatCount(result.Succeeded))
	if result.Failed > 0 {
		fmt.Fprintf(out, "Failed: %s\n", formatCount(result.Failed))
		for _, err := range result.Errors {
			fmt.Fprintf(out, "  %v\n", err)
		}
	}
	fmt.Fprintf(out, "Remaining staged: %s\n", formatCount(result.Remaining))
}

func buildStagedRows(movies []catalog.SearchResult) [][]string {
	rows := make([][]string, 0, len(movies))
	for _, movie := range movies {
		date := movie.ReleaseDate
		if date == "" {
			date = "-"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", movie.ID),
			truncate(movie.Title, 48),
			date,
			fmt.Sprintf("%.1f", movie.Popularity),
		})
	}
	return rows
}
