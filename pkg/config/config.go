// Package config loads branchtotals configuration from the environment and an optional JSON file.
package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kJson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"

	"github.com/ArionMiles/branchtotals/pkg/api"
)

// Defaults for a statement exported by the card issuer.
const (
	DefaultStatementFile  = "expense_may.xlsx"
	DefaultHeaderRows     = 3
	DefaultAmountColumn   = "סכום\nחיוב"
	DefaultCategoryColumn = "ענף"
	DefaultChartOutput    = "branch_totals.html"
)

// DefaultLabels is the built-in category mapping, source label to display label.
//
//go:embed labels.json
var DefaultLabels []byte

// Config holds the application configuration loaded from environment variables.
type Config struct {
	// StatementFile is the path to the spreadsheet export.
	// Environment variable: STATEMENT_FILE
	StatementFile string `koanf:"STATEMENT_FILE"`

	// StatementSheet is the xlsx sheet to read. Empty means the first sheet.
	// Environment variable: STATEMENT_SHEET
	StatementSheet string `koanf:"STATEMENT_SHEET"`

	// HeaderRows is the number of banner rows above the header row.
	// Environment variable: STATEMENT_HEADER_ROWS
	HeaderRows int `koanf:"STATEMENT_HEADER_ROWS"`

	// AmountColumn and CategoryColumn name the columns to aggregate.
	// Environment variables: AMOUNT_COLUMN, CATEGORY_COLUMN
	AmountColumn   string `koanf:"AMOUNT_COLUMN"`
	CategoryColumn string `koanf:"CATEGORY_COLUMN"`

	// LabelsFile overrides the embedded category label mapping.
	// Environment variable: LABELS_FILE
	LabelsFile string `koanf:"LABELS_FILE"`

	// ChartType preselects the chart and skips the prompt.
	// Environment variable: CHART_TYPE
	ChartType string `koanf:"CHART_TYPE"`

	// ChartOutput is where the chart page is written.
	// Environment variable: CHART_OUTPUT
	ChartOutput string `koanf:"CHART_OUTPUT"`

	// ChartOpen opens the written chart in the browser.
	// Environment variable: CHART_OPEN
	ChartOpen bool `koanf:"CHART_OPEN"`

	// ExportWriter is the name of the exporter plugin. Empty disables export.
	// Environment variable: EXPORT_WRITER
	ExportWriter string `koanf:"EXPORT_WRITER"`

	// ExportWriterConfig is the JSON configuration for the exporter plugin.
	// Environment variable: EXPORT_WRITER_CONFIG
	ExportWriterConfig json.RawMessage `koanf:"EXPORT_WRITER_CONFIG"`

	// Labels is populated from the embedded mapping or LabelsFile, not from the environment.
	Labels api.Labels `koanf:"-"`
}

// Defaults returns the built-in configuration values.
func Defaults() map[string]any {
	return map[string]any{
		"STATEMENT_FILE":        DefaultStatementFile,
		"STATEMENT_HEADER_ROWS": DefaultHeaderRows,
		"AMOUNT_COLUMN":         DefaultAmountColumn,
		"CATEGORY_COLUMN":       DefaultCategoryColumn,
		"CHART_OUTPUT":          DefaultChartOutput,
		"CHART_OPEN":            true,
	}
}

// Load builds a Config from defaults, an optional JSON file and the environment,
// in increasing order of precedence. The label mapping comes from LABELS_FILE
// or DefaultLabels.
func Load(configPath string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return Config{}, fmt.Errorf("loading defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), kJson.Parser()); err != nil {
			return Config{}, fmt.Errorf("loading config file %s: %w", configPath, err)
		}
	}

	// Keys contain no separators; a "." delimiter keeps them flat.
	if err := k.Load(env.Provider("", ".", nil), nil); err != nil {
		return Config{}, fmt.Errorf("loading config from environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Env values arrive as strings; accept escaped newlines in header names.
	cfg.AmountColumn = unescapeNewlines(cfg.AmountColumn)
	cfg.CategoryColumn = unescapeNewlines(cfg.CategoryColumn)

	labels, err := loadLabels(cfg.LabelsFile)
	if err != nil {
		return Config{}, err
	}
	cfg.Labels = labels

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks required configuration.
func (c Config) Validate() error {
	if c.StatementFile == "" {
		return fmt.Errorf("STATEMENT_FILE is required")
	}
	if c.HeaderRows < 0 {
		return fmt.Errorf("STATEMENT_HEADER_ROWS must not be negative, got %d", c.HeaderRows)
	}
	if c.AmountColumn == "" || c.CategoryColumn == "" {
		return fmt.Errorf("AMOUNT_COLUMN and CATEGORY_COLUMN are required")
	}
	if c.ChartOutput == "" {
		return fmt.Errorf("CHART_OUTPUT is required")
	}
	return nil
}

// loadLabels decodes the label mapping. Files ending in .yaml or .yml are
// read as YAML, everything else as JSON.
func loadLabels(path string) (api.Labels, error) {
	if path == "" {
		return decodeLabels(DefaultLabels, json.Unmarshal)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading labels file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return decodeLabels(data, yaml.Unmarshal)
	default:
		return decodeLabels(data, json.Unmarshal)
	}
}

func decodeLabels(data []byte, unmarshal func([]byte, any) error) (api.Labels, error) {
	var labels api.Labels
	if err := unmarshal(data, &labels); err != nil {
		return nil, fmt.Errorf("parsing labels: %w", err)
	}
	return labels, nil
}

func unescapeNewlines(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}
