package plugins

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ArionMiles/branchtotals/pkg/api"
	csvplugin "github.com/ArionMiles/branchtotals/pkg/plugins/writers/csv"
	jsonplugin "github.com/ArionMiles/branchtotals/pkg/plugins/writers/json"
)

func newRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	if err := r.RegisterWriter(&jsonplugin.Plugin{}); err != nil {
		t.Fatalf("register json: %v", err)
	}
	if err := r.RegisterWriter(&csvplugin.Plugin{}); err != nil {
		t.Fatalf("register csv: %v", err)
	}
	return r
}

func TestRegisterWriter_Duplicate(t *testing.T) {
	r := newRegistry(t)
	if err := r.RegisterWriter(&csvplugin.Plugin{}); err == nil {
		t.Error("expected error registering csv twice")
	}
}

func TestListWriters(t *testing.T) {
	writers := newRegistry(t).ListWriters()
	if len(writers) != 2 {
		t.Fatalf("writers: got %d, want 2", len(writers))
	}
	if writers[0].Name() != "csv" || writers[1].Name() != "json" {
		t.Errorf("order: got %s, %s", writers[0].Name(), writers[1].Name())
	}
	for _, w := range writers {
		if w.Description() == "" {
			t.Errorf("%s: empty description", w.Name())
		}
		if _, ok := w.ConfigSchema()["required"]; !ok {
			t.Errorf("%s: schema has no required fields", w.Name())
		}
	}
}

func TestCreateWriter(t *testing.T) {
	r := newRegistry(t)
	path := filepath.Join(t.TempDir(), "totals.csv")
	cfg, err := json.Marshal(map[string]string{"filePath": path})
	if err != nil {
		t.Fatal(err)
	}

	w, err := r.CreateWriter("csv", cfg, nil)
	if err != nil {
		t.Fatalf("CreateWriter: %v", err)
	}

	totals := []api.Total{{Category: "Energy", Amount: decimal.NewFromInt(30)}}
	if err := w.Write(context.Background(), totals); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("export file missing: %v", err)
	}
}

func TestCreateWriter_Errors(t *testing.T) {
	r := newRegistry(t)

	tests := []struct {
		name   string
		plugin string
		config string
	}{
		{"unknown plugin", "sheets", `{"filePath":"x"}`},
		{"invalid json", "csv", `{`},
		{"missing path", "json", `{}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := r.CreateWriter(tc.plugin, json.RawMessage(tc.config), nil); err == nil {
				t.Error("expected error")
			}
		})
	}
}
