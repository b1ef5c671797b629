package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"cinedex/internal/config"
	"cinedex/internal/pipeline"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Probe upstream API and database connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(func(cfg *config.Config, p *pipeline.Pipeline) error {
				status := p.TestConnections(cmd.Context())
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)

				printCheckLine(out, "TMDB API", status.APIConnected, status.APIError, colorize)
				printCheckLine(out, "Database", status.DBConnected, status.DBError, colorize)

				if !status.APIConnected || !status.DBConnected {
					return fmt.Errorf("connectivity check failed")
				}
				return nil
			})
		},
	}
}

func printCheckLine(out io.Writer, label string, ok bool, err error, colorize bool) {
	state := "OK"
	color := ansiGreen
	if !ok {
		state = fmt.Sprintf("ERROR: %v", err)
		color = ansiRed
	}
	line := fmt.Sprintf("  %-12s [%s]", label+":", state)
	if colorize {
		line = color + line + ansiReset
	}
	fmt.Fprintln(out, line)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
