package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ArionMiles/branchtotals/internal/runner"
	"github.com/ArionMiles/branchtotals/pkg/api"
)

func TestReport(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantOut  string
	}{
		{
			name:     "success",
			err:      nil,
			wantCode: 0,
			wantOut:  "",
		},
		{
			name: "missing file",
			err: &runner.LoadError{
				Path: "expense_may.xlsx",
				Err:  fmt.Errorf("%w: expense_may.xlsx", api.ErrFileNotFound),
			},
			wantCode: 1,
			wantOut:  "File expense_may.xlsx not found.\n",
		},
		{
			name: "missing column",
			err: &runner.LoadError{
				Path: "expense_may.xlsx",
				Err:  fmt.Errorf("%w: ענף", api.ErrMissingColumn),
			},
			wantCode: 1,
			wantOut:  "Error loading excel file: " + api.ErrMissingColumn.Error() + ": ענף\n",
		},
		{
			name:     "interrupted",
			err:      fmt.Errorf("exporting totals: %w", context.Canceled),
			wantCode: 1,
			wantOut:  "Interrupted.\n",
		},
		{
			name:     "interrupted at prompt",
			err:      context.Canceled,
			wantCode: 1,
			wantOut:  "Interrupted.\n",
		},
		{
			name:     "interrupted while loading",
			err:      &runner.LoadError{Path: "expense_may.xlsx", Err: context.Canceled},
			wantCode: 1,
			wantOut:  "Interrupted.\n",
		},
		{
			name:     "other failure",
			err:      errors.New("disk full"),
			wantCode: 1,
			wantOut:  "Error: disk full\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got := report(&out, tt.err, "expense_may.xlsx")
			if got != tt.wantCode {
				t.Errorf("code: got %d, want %d", got, tt.wantCode)
			}
			if out.String() != tt.wantOut {
				t.Errorf("output: got %q, want %q", out.String(), tt.wantOut)
			}
		})
	}
}
