package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tilestats/internal/config"
	"tilestats/internal/history"
	"tilestats/internal/logging"
	"tilestats/internal/pipeline"
	"tilestats/internal/series"
)

func newParseCommand(ctx *commandContext) *cobra.Command {
	var policyFlag string
	var tableOutput bool
	var jsonOutput bool
	var noHistory bool

	cmd := &cobra.Command{
		Use:   "parse [input [output]]",
		Short: "Parse a map tile access log into a series report",
		Long: `Parse reads a map tile access log and writes one tab-separated line per
display mode series: the display mode, the series length, and the zoom levels
seen. Missing arguments fall back to parse.default_input and
parse.default_output. Use "-" for stdin or stdout; s3://bucket/key inputs and
.gz/.zst compressed inputs are supported.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if tableOutput && jsonOutput {
				return errors.New("--table and --json are mutually exclusive")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, closeLog, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			defer closeLog() //nolint:errcheck

			policyValue := cfg.Parse.Policy
			if strings.TrimSpace(policyFlag) != "" {
				policyValue = policyFlag
			}
			policy, err := series.ParsePolicy(policyValue)
			if err != nil {
				return err
			}

			opts := pipeline.Options{
				Config: cfg,
				Policy: policy,
				Stdin:  cmd.InOrStdin(),
				Stdout: cmd.OutOrStdout(),
				Logger: logger,
			}
			if len(args) > 0 {
				opts.Input = args[0]
			}
			if len(args) > 1 {
				opts.Output = args[1]
			}
			if (tableOutput || jsonOutput) && resolvedOutput(cfg, opts.Output) == pipeline.StdoutOutput {
				return errors.New("output \"-\" cannot be combined with --table or --json")
			}

			if cfg.History.Enabled && !noHistory {
				if err := cfg.EnsureDirectories(); err != nil {
					return err
				}
				store, err := history.Open(cmd.Context(), cfg.HistoryPath())
				if err != nil {
					logger.Warn("run history unavailable", logging.Error(err))
				} else {
					defer store.Close()
					opts.History = store
				}
			}

			result, err := pipeline.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}

			switch {
			case jsonOutput:
				return writeJSON(cmd, result)
			case tableOutput:
				fmt.Fprintln(cmd.OutOrStdout(), renderRecords(result.Summary))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&policyFlag, "policy", "", "Series policy: max-merge or append (default from config)")
	cmd.Flags().BoolVar(&tableOutput, "table", false, "Also print the records as a table")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Also print the run result as JSON")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record this run in the history database")
	return cmd
}

// resolvedOutput mirrors the fallback pipeline.Run applies to an empty output.
func resolvedOutput(cfg *config.Config, output string) string {
	output = strings.TrimSpace(output)
	if output == "" {
		output = strings.TrimSpace(cfg.Parse.DefaultOutput)
	}
	return output
}

func renderRecords(summary series.Summary) string {
	rows := make([][]string, 0, len(summary.Records))
	for _, rec := range summary.Records {
		rows = append(rows, []string{
			rec.DisplayMode,
			strconv.Itoa(rec.RunLength),
			strings.Join(rec.Zooms, ","),
		})
	}
	out := renderTable([]column{
		{title: "Display Mode"},
		{title: "Series", numeric: true},
		{title: "Zooms"},
	}, rows)
	stats := summary.Stats
	return out + fmt.Sprintf("\nPolicy: %s  Lines: %d  Map requests: %d  Skipped: %d  Ignored: %d",
		summary.Policy, stats.Lines, stats.MapRequests, stats.Skipped, stats.Ignored)
}
