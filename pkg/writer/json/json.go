// Package json implements a Writer that exports branch totals to a JSON file.
package json

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/ArionMiles/branchtotals/pkg/api"
)

// Writer writes branch totals as a JSON array.
type Writer struct {
	filePath string
	logger   *slog.Logger
}

// Config holds configuration for the JSON writer.
type Config struct {
	// FilePath is the path to the JSON output file.
	FilePath string
}

// New creates a new JSON writer.
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

// Write replaces the file with the totals. Sums are encoded as JSON strings
// to keep them exact.
func (w *Writer) Write(ctx context.Context, totals []api.Total) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if totals == nil {
		totals = []api.Total{}
	}

	data, err := json.MarshalIndent(totals, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling json: %w", err)
	}

	if err := os.WriteFile(w.filePath, data, 0o600); err != nil {
		return fmt.Errorf("writing json file: %w", err)
	}

	w.logger.Info("wrote totals to json", "file", w.filePath, "count", len(totals))
	return nil
}
