// Package aggregate sums normalized entries per category.
package aggregate

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"

	"github.com/ArionMiles/branchtotals/pkg/api"
)

// Aggregate groups entries by category and sums their amounts. The result has
// one total per category, ordered by amount descending; equal amounts are
// ordered by category name.
func Aggregate(entries []api.Entry) []api.Total {
	index := make(map[string]int)
	var totals []api.Total

	for _, e := range entries {
		i, ok := index[e.Category]
		if !ok {
			index[e.Category] = len(totals)
			totals = append(totals, api.Total{Category: e.Category, Amount: e.Amount})
			continue
		}
		totals[i].Amount = totals[i].Amount.Add(e.Amount)
	}

	slices.SortFunc(totals, func(a, b api.Total) int {
		if c := b.Amount.Cmp(a.Amount); c != 0 {
			return c
		}
		return strings.Compare(a.Category, b.Category)
	})

	return totals
}

// Sum returns the grand total of an aggregate.
func Sum(totals []api.Total) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range totals {
		sum = sum.Add(t.Amount)
	}
	return sum
}

var headerColor = color.New(color.Bold)

// Print writes the aggregate as an aligned table with a total footer.
func Print(w io.Writer, totals []api.Total) error {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprint(tw, "\tbranch\tsum\t\n")
	for i, t := range totals {
		fmt.Fprintf(tw, "%d\t%s\t%s\t\n", i, t.Category, t.Amount.StringFixed(2))
	}
	fmt.Fprintf(tw, "\t%s\t%s\t\n", "total", Sum(totals).StringFixed(2))
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("formatting table: %w", err)
	}

	// Colour is applied after alignment; escape codes would skew tabwriter's widths.
	header, body, _ := strings.Cut(buf.String(), "\n")
	if _, err := headerColor.Fprintln(w, header); err != nil {
		return fmt.Errorf("writing table: %w", err)
	}
	if _, err := io.WriteString(w, body); err != nil {
		return fmt.Errorf("writing table: %w", err)
	}
	return nil
}
