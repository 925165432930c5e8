package pipeline

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"tilestats/internal/config"
	"tilestats/internal/history"
	"tilestats/internal/logging"
	"tilestats/internal/metrics"
	"tilestats/internal/report"
	"tilestats/internal/series"
	"tilestats/internal/source"
)

// StdoutOutput writes the result to Options.Stdout instead of a file.
const StdoutOutput = "-"

const (
	readBufferSize   = 64 * 1024
	cancelCheckEvery = 4096
	progressEvery    = 1 << 20
)

// Options configures a single run.
type Options struct {
	Config *config.Config
	Input  string
	Output string
	Policy series.Policy

	Stdin  io.Reader
	Stdout io.Writer
	Logger *slog.Logger
	// History receives the run summary when non-nil.
	History *history.Store
	Now     func() time.Time
}

// Result describes a completed run.
type Result struct {
	RunID      string         `json:"run_id"`
	Input      string         `json:"input"`
	Output     string         `json:"output"`
	Summary    series.Summary `json:"summary"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

// Run executes the parse pipeline.
func Run(ctx context.Context, opts Options) (*Result, error) {
	cfg := opts.Config
	if cfg == nil {
		defaults := config.Default()
		cfg = &defaults
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	input := strings.TrimSpace(opts.Input)
	if input == "" {
		input = cfg.Parse.DefaultInput
	}
	output := strings.TrimSpace(opts.Output)
	if output == "" {
		output = cfg.Parse.DefaultOutput
	}
	policy := opts.Policy
	if policy == "" {
		parsed, err := series.ParsePolicy(cfg.Parse.Policy)
		if err != nil {
			return nil, err
		}
		policy = parsed
	}

	result := &Result{
		RunID:     history.NewRunID(),
		Input:     input,
		Output:    output,
		StartedAt: now(),
	}
	logger := logging.NewComponentLogger(opts.Logger, "parse").With(slog.String(logging.FieldRunID, result.RunID))
	logger.Info("processing started", "input", input, "output", output, "policy", policy.String())

	summary, err := aggregate(ctx, cfg, input, opts.Stdin, policy, logger)
	if err != nil {
		return nil, err
	}
	result.Summary = summary

	logger.Info("writing results", "output", output, "records", len(summary.Records))
	if err := writeOutput(cfg, output, opts.Stdout, summary.Records); err != nil {
		return nil, err
	}
	result.FinishedAt = now()

	logger.Info("ignored lines", "count", summary.Stats.Ignored)
	logger.Debug("line classification",
		"lines", summary.Stats.Lines,
		"map_requests", summary.Stats.MapRequests,
		"skipped", summary.Stats.Skipped,
	)

	recordHistory(ctx, opts.History, result, logger)
	writeMetrics(cfg, result, logger)

	logger.Info("processing finished", "duration", result.FinishedAt.Sub(result.StartedAt))
	return result, nil
}

func aggregate(ctx context.Context, cfg *config.Config, input string, stdin io.Reader, policy series.Policy, logger *slog.Logger) (series.Summary, error) {
	agg := series.New(policy)
	logger.Info("reading log", "input", input, "policy", agg.Policy().String())
	rc, err := source.Open(ctx, cfg, input, stdin)
	if err != nil {
		return series.Summary{}, err
	}
	defer rc.Close()

	reader := bufio.NewReaderSize(rc, readBufferSize)
	for n := 1; ; n++ {
		if n%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return series.Summary{}, err
			}
		}
		if n%progressEvery == 0 {
			stats := agg.Stats()
			logger.Debug("reading log", "lines", stats.Lines, "ignored", stats.Ignored)
		}
		line, err := reader.ReadString('\n')
		if line != "" {
			agg.Observe(line)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return series.Summary{}, fmt.Errorf("read input %s: %w", input, err)
		}
	}
	return agg.Finalize(), nil
}

func writeOutput(cfg *config.Config, output string, stdout io.Writer, records []series.Record) error {
	if output == StdoutOutput {
		if stdout == nil {
			stdout = os.Stdout
		}
		return report.Write(stdout, records)
	}
	path, err := config.ExpandPath(output)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}
	opts := report.FileOptions{Atomic: cfg.Output.Atomic, Lock: cfg.Output.Lock}
	if err := report.WriteFile(path, records, opts); err != nil {
		return fmt.Errorf("write results to %s: %w", path, err)
	}
	return nil
}

func recordHistory(ctx context.Context, store *history.Store, result *Result, logger *slog.Logger) {
	if store == nil {
		return
	}
	stats := result.Summary.Stats
	run := &history.Run{
		ID:           result.RunID,
		Input:        result.Input,
		Output:       result.Output,
		Policy:       result.Summary.Policy.String(),
		Lines:        stats.Lines,
		MapRequests:  stats.MapRequests,
		SkippedLines: stats.Skipped,
		IgnoredLines: stats.Ignored,
		Records:      len(result.Summary.Records),
		LongestRun:   result.Summary.LongestRun(),
		StartedAt:    result.StartedAt,
		FinishedAt:   result.FinishedAt,
	}
	if err := store.Record(ctx, run); err != nil {
		logger.Warn("record run history failed", logging.Error(err), "history", store.Path())
	}
}

func writeMetrics(cfg *config.Config, result *Result, logger *slog.Logger) {
	if cfg.Metrics.Textfile == "" {
		return
	}
	snapshot := metrics.Snapshot{
		Summary:  result.Summary,
		Finished: result.FinishedAt,
		Duration: result.FinishedAt.Sub(result.StartedAt),
	}
	if err := metrics.WriteTextfile(cfg.Metrics.Textfile, snapshot); err != nil {
		logger.Warn("write metrics textfile failed", logging.Error(err), "path", cfg.Metrics.Textfile)
	}
}
