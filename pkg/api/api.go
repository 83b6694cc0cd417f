// Package api defines the core interfaces and data structures for branchtotals.
package api

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// OthersLabel is the category assigned to rows whose category is missing
// or has no display label.
const OthersLabel = "others"

var (
	// ErrFileNotFound is returned when the statement file does not exist.
	ErrFileNotFound = errors.New("statement file not found")
	// ErrMissingColumn is returned when a required column is absent from the header row.
	ErrMissingColumn = errors.New("missing column")
)

// Table is a statement sheet with named columns.
type Table struct {
	// Header holds the canonicalized column names.
	Header []string
	// Rows holds the data rows below the header. Rows may be shorter than Header.
	Rows [][]string
}

// Column returns the index of the named column, or -1 if it is absent.
// The name is compared in canonical form.
func (t *Table) Column(name string) int {
	name = Canonical(name)
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at row i, column col, or "" when the row is short.
func (t *Table) Cell(i, col int) string {
	row := t.Rows[i]
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// Entry is a normalized transaction row.
type Entry struct {
	Category string
	Amount   decimal.Decimal
}

// Total is the summed amount of one category.
type Total struct {
	Category string          `json:"branch"`
	Amount   decimal.Decimal `json:"sum"`
}

// Reader loads a statement into a table.
type Reader interface {
	Read(ctx context.Context) (*Table, error)
}

// Writer exports an aggregate to a destination.
type Writer interface {
	Write(ctx context.Context, totals []Total) error
}

// Labels maps source-language category labels to display labels.
type Labels map[string]string

// LabelLookup returns the display label for a category.
// Returns false if the category has no mapping.
func (l Labels) LabelLookup(category string) (string, bool) {
	label, exists := l[category]
	return label, exists
}

// Clone returns an independent copy of the mapping.
func (l Labels) Clone() Labels {
	out := make(Labels, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

// Canonical returns the comparison form of a header or label: Unicode NFC,
// CRLF folded to LF, surrounding whitespace trimmed.
func Canonical(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return norm.NFC.String(strings.TrimSpace(s))
}
