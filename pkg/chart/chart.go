// Package chart renders an aggregate as a pie or bar chart page.
package chart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/pkg/browser"

	"github.com/ArionMiles/branchtotals/pkg/api"
)

// Kind selects the chart to draw.
type Kind string

// Supported chart kinds.
const (
	Pie Kind = "pie"
	Bar Kind = "bar"
)

// Console messages.
const (
	InvalidKindHint = "Invalid chart type. Please use 'pie' or 'bar'."
	NoDataMessage   = "No data available to plot a pie chart."
)

// Chart titles and axis names.
const (
	PieTitle  = "Distribution of Totals by Branch"
	BarTitle  = "Total Sum by Branch"
	BarXName  = "Branch"
	BarYName  = "Total Sum"
	barColour = "skyblue"

	pieRadius     = "60%"
	pieStartAngle = 140
	wedgeBorder   = "white"
)

// ErrInvalidKind is returned for a selector that names no chart.
var ErrInvalidKind = errors.New("invalid chart type")

// ParseKind maps a selector to a Kind. It accepts the chart names and the
// menu numbers shown by the prompt ("1" pie, "2" bar), ignoring case and
// surrounding whitespace.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pie", "1":
		return Pie, nil
	case "bar", "2":
		return Bar, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

// Page is a chart that renders itself as a self-contained HTML page.
type Page interface {
	Render(w io.Writer) error
}

// Build creates the chart page for kind.
func Build(kind Kind, totals []api.Total) (Page, error) {
	switch kind {
	case Pie:
		return NewPie(totals), nil
	case Bar:
		return NewBar(totals), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
}

// shareFormatter prints a wedge's share of the total with one decimal.
var shareFormatter = string(opts.FuncOpts(`function (p) { return p.percent.toFixed(1) + '%'; }`))

// withStartAngle rotates the first wedge to angle degrees.
func withStartAngle(angle float64) charts.SeriesOpts {
	return func(s *charts.SingleSeries) {
		s.StartAngle = angle
	}
}

// NewPie draws one wedge per category with its name outside the wedge and its
// share of the total inside it.
func NewPie(totals []api.Total) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: PieTitle,
			Width:     "1000px",
			Height:    "600px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:      PieTitle,
			Left:       "center",
			TitleStyle: &opts.TextStyle{FontSize: 16},
		}),
	)

	items := make([]opts.PieData, 0, len(totals))
	for _, t := range totals {
		items = append(items, opts.PieData{Name: t.Category, Value: t.Amount.InexactFloat64()})
	}

	// Two series over the same data: echarts draws a single label per wedge,
	// so names and percentages are separate layers.
	pie.AddSeries("branch", items,
		charts.WithLabelOpts(opts.Label{
			Show:      opts.Bool(true),
			Position:  "outside",
			Formatter: "{b}",
			FontSize:  10,
		}),
		charts.WithPieChartOpts(opts.PieChart{Radius: pieRadius}),
		charts.WithItemStyleOpts(opts.ItemStyle{BorderColor: wedgeBorder}),
		withStartAngle(pieStartAngle),
	)
	pie.AddSeries("share", items,
		charts.WithLabelOpts(opts.Label{
			Show:      opts.Bool(true),
			Position:  "inside",
			Formatter: shareFormatter,
			FontSize:  9,
			Color:     "white",
		}),
		charts.WithPieChartOpts(opts.PieChart{Radius: pieRadius}),
		charts.WithItemStyleOpts(opts.ItemStyle{BorderColor: wedgeBorder}),
		withStartAngle(pieStartAngle),
	)

	return pie
}

// NewBar draws one bar per category in aggregate order.
func NewBar(totals []api.Total) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: BarTitle,
			Width:     "1000px",
			Height:    "600px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:      BarTitle,
			Left:       "center",
			TitleStyle: &opts.TextStyle{FontSize: 16},
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:      BarXName,
			AxisLabel: &opts.AxisLabel{Rotate: 45, Interval: "0"},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: BarYName,
		}),
	)

	labels := make([]string, 0, len(totals))
	items := make([]opts.BarData, 0, len(totals))
	for _, t := range totals {
		labels = append(labels, t.Category)
		items = append(items, opts.BarData{Value: t.Amount.InexactFloat64()})
	}

	bar.SetXAxis(labels).AddSeries(BarYName, items,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: barColour}),
	)

	return bar
}

// Config holds configuration for the renderer.
type Config struct {
	// OutputPath is where the chart page is written.
	OutputPath string
	// Open shows the written page in the default browser.
	Open bool
}

// Renderer writes chart pages and shows them.
type Renderer struct {
	cfg     Config
	console io.Writer
	open    func(path string) error
	logger  *slog.Logger
}

// New creates a new renderer. Console receives user-facing messages.
func New(cfg Config, console io.Writer, logger *slog.Logger) (*Renderer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.OutputPath == "" {
		return nil, fmt.Errorf("output path is required")
	}

	return &Renderer{
		cfg:     cfg,
		console: console,
		open:    browser.OpenFile,
		logger:  logger,
	}, nil
}

// Render draws totals as kind. With no totals it prints NoDataMessage and
// draws nothing.
func (r *Renderer) Render(ctx context.Context, kind Kind, totals []api.Total) error {
	if len(totals) == 0 {
		fmt.Fprintln(r.console, NoDataMessage)
		return nil
	}

	page, err := Build(kind, totals)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := r.write(page); err != nil {
		return err
	}
	r.logger.Info("chart written", "kind", kind, "file", r.cfg.OutputPath, "categories", len(totals))

	if !r.cfg.Open {
		return nil
	}
	// The page is already on disk; a host without a browser only loses the preview.
	if err := r.open(r.cfg.OutputPath); err != nil {
		r.logger.Warn("could not open chart, open it manually", "file", r.cfg.OutputPath, "error", err)
	}
	return nil
}

func (r *Renderer) write(page Page) error {
	f, err := os.Create(r.cfg.OutputPath)
	if err != nil {
		return fmt.Errorf("creating chart file: %w", err)
	}

	if err := page.Render(f); err != nil {
		if closeErr := f.Close(); closeErr != nil {
			return fmt.Errorf("rendering chart: %w (close error: %w)", err, closeErr)
		}
		return fmt.Errorf("rendering chart: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing chart file: %w", err)
	}
	return nil
}
