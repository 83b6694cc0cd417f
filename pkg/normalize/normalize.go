// Package normalize maps statement rows onto display categories and numeric amounts.
package normalize

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ArionMiles/branchtotals/pkg/api"
)

// Stats counts what normalization did with the input rows.
type Stats struct {
	Kept int
	// DroppedMissing counts rows with an empty amount.
	DroppedMissing int
	// DroppedInvalid counts rows whose amount is not a number.
	DroppedInvalid int
	// Others counts kept rows that fell back to api.OthersLabel.
	Others int
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithThousandsSeparator strips sep from amounts before parsing.
func WithThousandsSeparator(sep rune) Option {
	return func(n *Normalizer) {
		n.thousandsSep = sep
	}
}

// WithLogger sets the logger used for per-row debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Normalizer) {
		n.logger = logger
	}
}

// Normalizer translates categories and coerces amounts.
// It is safe for concurrent use; the label mapping is never modified after New.
type Normalizer struct {
	labels       api.Labels
	thousandsSep rune
	logger       *slog.Logger
}

// New creates a Normalizer over a private, canonicalized copy of labels.
func New(labels api.Labels, opts ...Option) *Normalizer {
	canonical := make(api.Labels, len(labels))
	for k, v := range labels {
		canonical[api.Canonical(k)] = v
	}

	n := &Normalizer{
		labels: canonical,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Category returns the display label for a source category, or
// api.OthersLabel when it is empty or unmapped.
func (n *Normalizer) Category(source string) string {
	if label, ok := n.labels.LabelLookup(api.Canonical(source)); ok {
		return label
	}
	return api.OthersLabel
}

// Amount parses a cell into a decimal. ok is false for empty or non-numeric cells.
func (n *Normalizer) Amount(cell string) (amount decimal.Decimal, ok bool) {
	s := strings.TrimSpace(cell)
	if n.thousandsSep != 0 {
		s = strings.ReplaceAll(s, string(n.thousandsSep), "")
	}
	if s == "" {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Normalize selects the amount and category columns of table and returns one
// entry per row with a usable amount. Rows with a missing or non-numeric amount
// are dropped. Only a missing column is an error.
func (n *Normalizer) Normalize(table *api.Table, amountColumn, categoryColumn string) ([]api.Entry, Stats, error) {
	var stats Stats

	amountCol := table.Column(amountColumn)
	if amountCol < 0 {
		return nil, stats, fmt.Errorf("%w: %q", api.ErrMissingColumn, amountColumn)
	}
	categoryCol := table.Column(categoryColumn)
	if categoryCol < 0 {
		return nil, stats, fmt.Errorf("%w: %q", api.ErrMissingColumn, categoryColumn)
	}

	entries := make([]api.Entry, 0, len(table.Rows))
	for i := range table.Rows {
		cell := table.Cell(i, amountCol)
		if strings.TrimSpace(cell) == "" {
			stats.DroppedMissing++
			continue
		}

		amount, ok := n.Amount(cell)
		if !ok {
			stats.DroppedInvalid++
			n.logger.Debug("dropping row with non-numeric amount", "row", i, "amount", cell)
			continue
		}

		category := n.Category(table.Cell(i, categoryCol))
		if category == api.OthersLabel {
			stats.Others++
		}

		entries = append(entries, api.Entry{Category: category, Amount: amount})
	}
	stats.Kept = len(entries)

	return entries, stats, nil
}
