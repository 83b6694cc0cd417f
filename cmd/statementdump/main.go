// Command statementdump reads the configured statement and writes its header
// and data rows to a CSV file. It is used to collect statement samples for
// unit testing.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ArionMiles/branchtotals/pkg/api"
	"github.com/ArionMiles/branchtotals/pkg/config"
	"github.com/ArionMiles/branchtotals/pkg/logging"
	"github.com/ArionMiles/branchtotals/pkg/reader/spreadsheet"
)

const defaultDumpDir = "testdata/dump"

var (
	unsafeChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f\s]`)
	underscores = regexp.MustCompile(`_+`)
)

func main() {
	configPath := flag.String("config", "", "optional JSON config file")
	dumpDir := flag.String("out", defaultDumpDir, "directory for dumped statements")
	maxRows := flag.Int("rows", 0, "maximum data rows to dump, 0 for all")
	flag.Parse()

	_ = godotenv.Load()

	logger := logging.Setup(logging.DefaultConfig())

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	reader, err := spreadsheet.New(spreadsheet.Config{
		Path:       cfg.StatementFile,
		Sheet:      cfg.StatementSheet,
		HeaderRows: cfg.HeaderRows,
	}, logger.With("component", "reader"))
	if err != nil {
		logger.Error("failed to create reader", "error", err)
		os.Exit(1)
	}

	table, err := reader.Read(context.Background())
	if err != nil {
		logger.Error("failed to read statement", "file", cfg.StatementFile, "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*dumpDir, 0o755); err != nil {
		logger.Error("failed to create dump directory", "error", err)
		os.Exit(1)
	}

	name := dumpName(cfg.StatementFile, time.Now())
	path := filepath.Join(*dumpDir, name)
	rows, err := dumpTable(path, table, *maxRows)
	if err != nil {
		logger.Error("failed to dump statement", "file", path, "error", err)
		os.Exit(1)
	}

	logger.Info("statement dump complete",
		"file", path,
		"columns", len(table.Header),
		"rows", rows,
	)
}

// dumpName builds the output file name: statement_date.csv.
func dumpName(statement string, now time.Time) string {
	base := strings.TrimSuffix(filepath.Base(statement), filepath.Ext(statement))
	return sanitizeFilename(fmt.Sprintf("%s_%s", base, now.Format("2006-01-02_150405"))) + ".csv"
}

// dumpTable writes the header and up to maxRows data rows. It returns the
// number of data rows written.
func dumpTable(path string, table *api.Table, maxRows int) (int, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("creating dump file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(table.Header); err != nil {
		return 0, fmt.Errorf("writing header: %w", err)
	}

	rows := table.Rows
	if maxRows > 0 && len(rows) > maxRows {
		rows = rows[:maxRows]
	}
	if err := w.WriteAll(rows); err != nil {
		return 0, fmt.Errorf("writing rows: %w", err)
	}

	if err := file.Close(); err != nil {
		return 0, fmt.Errorf("closing dump file: %w", err)
	}
	return len(rows), nil
}

func sanitizeFilename(name string) string {
	name = unsafeChars.ReplaceAllString(name, "_")
	name = underscores.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")

	// Statement names are often Hebrew; cut on rune boundaries.
	if runes := []rune(name); len(runes) > 100 {
		name = string(runes[:100])
	}
	return name
}
