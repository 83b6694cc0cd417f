// Package json provides a plugin wrapper for the JSON totals writer.
package json

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ArionMiles/branchtotals/pkg/api"
	jsonwriter "github.com/ArionMiles/branchtotals/pkg/writer/json"
)

// Plugin implements the WriterPlugin interface for JSON files.
type Plugin struct{}

// Name returns the plugin name.
func (p *Plugin) Name() string {
	return "json"
}

// Description returns a human-readable description.
func (p *Plugin) Description() string {
	return "Export branch totals to a JSON file"
}

// ConfigSchema returns a JSON schema describing the plugin's configuration.
func (p *Plugin) ConfigSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"filePath": map[string]any{
				"type":        "string",
				"description": "Path to the JSON output file",
			},
		},
		"required": []string{"filePath"},
	}
}

// Config represents the JSON writer configuration.
type Config struct {
	FilePath string `json:"filePath"`
}

// NewWriter creates a new JSON writer instance.
func (p *Plugin) NewWriter(configData json.RawMessage, logger *slog.Logger) (api.Writer, error) {
	var cfg Config
	if err := json.Unmarshal(configData, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling json config: %w", err)
	}

	if cfg.FilePath == "" {
		return nil, fmt.Errorf("filePath is required")
	}

	return jsonwriter.New(jsonwriter.Config{FilePath: cfg.FilePath}, logger)
}
