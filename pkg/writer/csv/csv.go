// Package csv implements a Writer that exports branch totals to a CSV file.
package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"

	"github.com/ArionMiles/branchtotals/pkg/api"
)

// Writer writes branch totals to a CSV file, replacing its previous contents.
type Writer struct {
	filePath string
	logger   *slog.Logger
}

// Config holds configuration for the CSV writer.
type Config struct {
	// FilePath is the path to the CSV output file.
	FilePath string
}

// New creates a new CSV writer.
func New(cfg Config, logger *slog.Logger) (*Writer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.FilePath == "" {
		return nil, fmt.Errorf("file path is required")
	}

	return &Writer{
		filePath: cfg.FilePath,
		logger:   logger,
	}, nil
}

// Write exports totals in aggregate order under a branch,sum header.
func (w *Writer) Write(ctx context.Context, totals []api.Total) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	file, err := os.OpenFile(w.filePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("opening csv file: %w", err)
	}

	if err := writeRecords(csv.NewWriter(file), totals); err != nil {
		if closeErr := file.Close(); closeErr != nil {
			return fmt.Errorf("%w (close error: %w)", err, closeErr)
		}
		return err
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("closing csv file: %w", err)
	}

	w.logger.Info("wrote totals to csv", "file", w.filePath, "count", len(totals))
	return nil
}

func writeRecords(cw *csv.Writer, totals []api.Total) error {
	if err := cw.Write([]string{"branch", "sum"}); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, t := range totals {
		if err := cw.Write([]string{t.Category, t.Amount.StringFixed(2)}); err != nil {
			return fmt.Errorf("writing csv record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}
