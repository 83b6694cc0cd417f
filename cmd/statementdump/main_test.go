package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ArionMiles/branchtotals/pkg/api"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "expense_may", "expense_may"},
		{"unsafe characters", `a<b>c:d"e/f\g|h?i*j`, "a_b_c_d_e_f_g_h_i_j"},
		{"spaces collapse", "my  statement   may", "my_statement_may"},
		{"trimmed", "__x__", "x"},
		{"hebrew kept", "פירוט עסקאות", "פירוט_עסקאות"},
		{"long", strings.Repeat("ש", 150), strings.Repeat("ש", 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeFilename(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDumpName(t *testing.T) {
	now := time.Date(2024, 5, 31, 18, 4, 5, 0, time.UTC)
	got := dumpName("/tmp/statements/expense may.xlsx", now)
	want := "expense_may_2024-05-31_180405.csv"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDumpTable(t *testing.T) {
	table := &api.Table{
		Header: []string{"date", "amount", "branch"},
		Rows: [][]string{
			{"01/05", "100", "a"},
			{"02/05", "50", "b"},
			{"03/05", "30", "c"},
		},
	}

	tests := []struct {
		name     string
		maxRows  int
		wantRows int
		want     string
	}{
		{
			name:     "all rows",
			maxRows:  0,
			wantRows: 3,
			want:     "date,amount,branch\n01/05,100,a\n02/05,50,b\n03/05,30,c\n",
		},
		{
			name:     "limited",
			maxRows:  2,
			wantRows: 2,
			want:     "date,amount,branch\n01/05,100,a\n02/05,50,b\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "dump.csv")
			n, err := dumpTable(path, table, tt.maxRows)
			if err != nil {
				t.Fatalf("dumpTable: %v", err)
			}
			if n != tt.wantRows {
				t.Errorf("rows: got %d, want %d", n, tt.wantRows)
			}

			got, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
