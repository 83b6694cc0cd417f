// Package runner wires the statement pipeline: load, normalize, aggregate,
// print, export and chart.
package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/ArionMiles/branchtotals/internal/plugins"
	"github.com/ArionMiles/branchtotals/pkg/aggregate"
	"github.com/ArionMiles/branchtotals/pkg/api"
	"github.com/ArionMiles/branchtotals/pkg/chart"
	"github.com/ArionMiles/branchtotals/pkg/config"
	"github.com/ArionMiles/branchtotals/pkg/normalize"
	"github.com/ArionMiles/branchtotals/pkg/prompt"
	"github.com/ArionMiles/branchtotals/pkg/reader/spreadsheet"
)

// LoadError reports a statement that could not be loaded: the file is
// missing, unreadable, malformed or lacks a required column.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Runner runs the pipeline once per call.
type Runner struct {
	registry *plugins.Registry
	stdin    io.Reader
	stdout   io.Writer
	logger   *slog.Logger
}

// New creates a new runner. stdin feeds the chart prompt and stdout receives
// the table, prompt and hints.
func New(registry *plugins.Registry, stdin io.Reader, stdout io.Writer, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}

	return &Runner{
		registry: registry,
		stdin:    stdin,
		stdout:   stdout,
		logger:   logger,
	}
}

// Run processes the configured statement. Only load failures and output
// failures are errors; data anomalies and an invalid chart selection are not.
func (r *Runner) Run(ctx context.Context, cfg config.Config) error {
	totals, err := r.totals(ctx, cfg)
	if err != nil {
		return err
	}

	if err := aggregate.Print(r.stdout, totals); err != nil {
		return err
	}

	if err := r.export(ctx, cfg, totals); err != nil {
		return err
	}

	if len(totals) == 0 {
		fmt.Fprintln(r.stdout, chart.NoDataMessage)
		return nil
	}

	selector := cfg.ChartType
	if selector == "" {
		selector, err = prompt.New(r.stdin, r.stdout).Choose(ctx)
		if err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	kind, err := chart.ParseKind(selector)
	if err != nil {
		r.logger.Debug("no chart drawn", "selector", selector)
		fmt.Fprintln(r.stdout, chart.InvalidKindHint)
		return nil
	}

	renderer, err := chart.New(chart.Config{
		OutputPath: cfg.ChartOutput,
		Open:       cfg.ChartOpen,
	}, r.stdout, r.logger.With("component", "chart"))
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	return renderer.Render(ctx, kind, totals)
}

// totals loads the statement and aggregates it.
func (r *Runner) totals(ctx context.Context, cfg config.Config) ([]api.Total, error) {
	reader, err := spreadsheet.New(spreadsheet.Config{
		Path:       cfg.StatementFile,
		Sheet:      cfg.StatementSheet,
		HeaderRows: cfg.HeaderRows,
	}, r.logger.With("component", "reader"))
	if err != nil {
		return nil, &LoadError{Path: cfg.StatementFile, Err: err}
	}

	table, err := reader.Read(ctx)
	if err != nil {
		return nil, &LoadError{Path: cfg.StatementFile, Err: err}
	}

	opts := []normalize.Option{normalize.WithLogger(r.logger.With("component", "normalizer"))}
	if spreadsheet.Format(cfg.StatementFile) == "csv" {
		opts = append(opts, normalize.WithThousandsSeparator(','))
	}

	entries, stats, err := normalize.New(cfg.Labels, opts...).Normalize(table, cfg.AmountColumn, cfg.CategoryColumn)
	if err != nil {
		return nil, &LoadError{Path: cfg.StatementFile, Err: err}
	}
	r.logger.Debug("statement normalized",
		"kept", stats.Kept,
		"dropped_missing", stats.DroppedMissing,
		"dropped_invalid", stats.DroppedInvalid,
		"others", stats.Others,
	)

	totals := aggregate.Aggregate(entries)
	r.logger.Info("statement aggregated", "categories", len(totals), "rows", stats.Kept)
	return totals, nil
}

func (r *Runner) export(ctx context.Context, cfg config.Config, totals []api.Total) error {
	if cfg.ExportWriter == "" {
		return nil
	}

	writer, err := r.registry.CreateWriter(
		cfg.ExportWriter,
		cfg.ExportWriterConfig,
		r.logger.With("component", "writer", "plugin", cfg.ExportWriter),
	)
	if err != nil {
		return fmt.Errorf("creating writer: %w", err)
	}

	if err := writer.Write(ctx, totals); err != nil {
		return fmt.Errorf("exporting totals: %w", err)
	}
	return nil
}
