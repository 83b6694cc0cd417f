package chart

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ArionMiles/branchtotals/pkg/api"
)

var statementTotals = []api.Total{
	{Category: "Food and Beverages", Amount: decimal.NewFromInt(150)},
	{Category: "Energy", Amount: decimal.NewFromInt(30)},
	{Category: api.OthersLabel, Amount: decimal.NewFromInt(20)},
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"pie", Pie, false},
		{"bar", Bar, false},
		{"1", Pie, false},
		{"2", Bar, false},
		{" Bar\n", Bar, false},
		{"PIE", Pie, false},
		{"triangle", "", true},
		{"3", "", true},
		{"", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseKind(tc.in)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidKind) {
					t.Fatalf("got %v, want ErrInvalidKind", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseKind(%q): %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("ParseKind(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

// assertOrder checks that each needle appears in s after the previous one.
func assertOrder(t *testing.T, s string, needles ...string) {
	t.Helper()
	pos := 0
	for _, n := range needles {
		i := strings.Index(s[pos:], n)
		if i < 0 {
			t.Errorf("%q missing or out of order", n)
			return
		}
		pos += i + len(n)
	}
}

func TestNewBar(t *testing.T) {
	var buf bytes.Buffer
	if err := NewBar(statementTotals).Render(&buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	page := buf.String()

	for _, want := range []string{BarTitle, `"Branch"`, `"Total Sum"`, `"rotate":45`, barColour} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %s", want)
		}
	}
	assertOrder(t, page, `"Food and Beverages"`, `"Energy"`, `"others"`)
	assertOrder(t, page, `"value":150`, `"value":30`, `"value":20`)
}

func TestNewPie(t *testing.T) {
	var buf bytes.Buffer
	if err := NewPie(statementTotals).Render(&buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	page := buf.String()

	for _, want := range []string{
		PieTitle,
		`p.percent.toFixed(1)`,
		`"borderColor":"white"`,
		`"startAngle":140`,
		`"fontSize":10`,
		`"fontSize":9`,
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %s", want)
		}
	}
	assertOrder(t, page, `"Food and Beverages"`, `"Energy"`, `"others"`)
}

func TestBuild_InvalidKind(t *testing.T) {
	if _, err := Build("triangle", statementTotals); !errors.Is(err, ErrInvalidKind) {
		t.Errorf("got %v, want ErrInvalidKind", err)
	}
}

func newTestRenderer(t *testing.T, open bool) (*Renderer, *bytes.Buffer, *[]string) {
	t.Helper()

	var console bytes.Buffer
	r, err := New(Config{
		OutputPath: filepath.Join(t.TempDir(), "chart.html"),
		Open:       open,
	}, &console, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var opened []string
	r.open = func(path string) error {
		opened = append(opened, path)
		return nil
	}
	return r, &console, &opened
}

func TestRender_NoData(t *testing.T) {
	r, console, opened := newTestRenderer(t, true)

	if err := r.Render(context.Background(), Pie, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}

	if got := strings.TrimSpace(console.String()); got != NoDataMessage {
		t.Errorf("console: got %q, want %q", got, NoDataMessage)
	}
	if _, err := os.Stat(r.cfg.OutputPath); !os.IsNotExist(err) {
		t.Errorf("chart file should not exist, stat err: %v", err)
	}
	if len(*opened) != 0 {
		t.Errorf("nothing should be opened, got %v", *opened)
	}
}

func TestRender_WritesAndOpens(t *testing.T) {
	r, console, opened := newTestRenderer(t, true)

	if err := r.Render(context.Background(), Bar, statementTotals); err != nil {
		t.Fatalf("Render: %v", err)
	}

	data, err := os.ReadFile(r.cfg.OutputPath)
	if err != nil {
		t.Fatalf("reading chart: %v", err)
	}
	if !strings.Contains(string(data), BarTitle) {
		t.Error("chart file missing bar title")
	}
	if len(*opened) != 1 || (*opened)[0] != r.cfg.OutputPath {
		t.Errorf("opened: got %v, want [%s]", *opened, r.cfg.OutputPath)
	}
	if console.Len() != 0 {
		t.Errorf("unexpected console output %q", console.String())
	}
}

func TestRender_Headless(t *testing.T) {
	r, _, opened := newTestRenderer(t, false)

	if err := r.Render(context.Background(), Pie, statementTotals); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(*opened) != 0 {
		t.Errorf("headless render opened %v", *opened)
	}
	if _, err := os.Stat(r.cfg.OutputPath); err != nil {
		t.Errorf("chart file missing: %v", err)
	}
}

func TestRender_InvalidKind(t *testing.T) {
	r, _, _ := newTestRenderer(t, true)

	err := r.Render(context.Background(), "triangle", statementTotals)
	if !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("got %v, want ErrInvalidKind", err)
	}
	if _, err := os.Stat(r.cfg.OutputPath); !os.IsNotExist(err) {
		t.Error("invalid kind should not write a chart")
	}
}

func TestRender_OpenFailure(t *testing.T) {
	r, _, _ := newTestRenderer(t, true)
	r.open = func(string) error {
		return errors.New("no browser found")
	}

	if err := r.Render(context.Background(), Pie, statementTotals); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if _, err := os.Stat(r.cfg.OutputPath); err != nil {
		t.Errorf("chart file missing: %v", err)
	}
}
