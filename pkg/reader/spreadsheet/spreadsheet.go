// Package spreadsheet implements a Reader that loads a card statement export
// from an xlsx, xls or csv file.
package spreadsheet

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"

	"github.com/ArionMiles/branchtotals/pkg/api"
)

// Config holds configuration for the spreadsheet reader.
type Config struct {
	// Path is the statement file.
	Path string
	// Sheet is the xlsx sheet to read. Empty selects the first sheet.
	// Legacy xls files are always read from the first sheet.
	Sheet string
	// HeaderRows is the number of rows above the header row.
	HeaderRows int
}

// Reader loads a statement file into an api.Table.
type Reader struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a new spreadsheet reader.
func New(cfg Config, logger *slog.Logger) (*Reader, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if cfg.HeaderRows < 0 {
		return nil, fmt.Errorf("header rows must not be negative, got %d", cfg.HeaderRows)
	}

	return &Reader{cfg: cfg, logger: logger}, nil
}

// Read loads the statement. A missing file yields an error wrapping api.ErrFileNotFound.
func (r *Reader) Read(ctx context.Context) (*api.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(r.cfg.Path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", api.ErrFileNotFound, r.cfg.Path)
		}
		return nil, fmt.Errorf("stat statement: %w", err)
	}

	format := Format(r.cfg.Path)
	var (
		rows [][]string
		err  error
	)
	switch format {
	case "csv":
		rows, err = readCSV(r.cfg.Path)
	case "xls":
		if r.cfg.Sheet != "" {
			r.logger.Warn("sheet selection is not supported for xls, reading first sheet", "sheet", r.cfg.Sheet)
		}
		rows, err = readXLS(r.cfg.Path)
	default:
		rows, err = readXLSX(r.cfg.Path, r.cfg.Sheet)
	}
	if err != nil {
		return nil, err
	}

	table := buildTable(rows, r.cfg.HeaderRows)
	r.logger.Info("statement loaded",
		"file", r.cfg.Path,
		"format", format,
		"columns", len(table.Header),
		"rows", len(table.Rows),
	)
	return table, nil
}

// Format returns the reader used for a path: "csv", "xls" or "xlsx".
// Unknown extensions are read as xlsx.
func Format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "csv"
	case ".xls":
		return "xls"
	default:
		return "xlsx"
	}
}

// buildTable takes the row after the skipped rows as the header; everything
// below it is data.
func buildTable(rows [][]string, headerRows int) *api.Table {
	table := &api.Table{}
	if len(rows) <= headerRows {
		return table
	}

	header := rows[headerRows]
	table.Header = make([]string, len(header))
	for i, h := range header {
		table.Header[i] = api.Canonical(h)
	}
	table.Rows = rows[headerRows+1:]
	return table
}

func readXLSX(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening xlsx: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("no sheets found in file")
		}
		sheet = sheets[0]
	}

	// Raw values keep number formats (thousands separators, currency) out of amounts.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func readXLS(path string) (rows [][]string, err error) {
	// The xls parser slices record buffers without bounds checks and panics
	// on truncated files.
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("parsing xls: %v", r)
		}
	}()

	book, err := xls.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening xls: %w", err)
	}

	sheet, err := book.GetSheet(0)
	if err != nil || sheet == nil {
		return nil, fmt.Errorf("no sheets found in file")
	}

	for _, xlsRow := range sheet.GetRows() {
		var values []string
		for _, col := range xlsRow.GetCols() {
			values = append(values, col.GetString())
		}
		rows = append(rows, values)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}

	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}
