package testutil

import (
	"encoding/csv"
	"strconv"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
)

func TestSheetShape(t *testing.T) {
	gen := NewDefault()

	tests := []struct {
		name        string
		rows, cols  int
		wantNumeric int
	}{
		{"single", 1, 1, 1},
		{"even", 5, 4, 2},
		{"odd", 3, 5, 3},
		{"empty", 0, 3, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := gen.Sheet(tt.rows, tt.cols)
			if len(f.Headers) != tt.cols || len(f.Rows) != tt.rows {
				t.Fatalf("Sheet(%d, %d) = %d headers, %d rows", tt.rows, tt.cols, len(f.Headers), len(f.Rows))
			}
			for r, row := range f.Rows {
				if len(row) != tt.cols {
					t.Fatalf("row %d has %d cells, want %d", r, len(row), tt.cols)
				}
				for c, v := range row {
					_, err := strconv.Atoi(v)
					if isNum := err == nil; isNum != (c < tt.wantNumeric) {
						t.Errorf("cell (%d,%d) = %q, numeric %v, want %v", r, c, v, isNum, c < tt.wantNumeric)
					}
				}
			}
		})
	}
}

func TestSheetDeterministic(t *testing.T) {
	a := NewDefault().Sheet(20, 6)
	b := NewDefault().Sheet(20, 6)
	if ToCSV(a) != ToCSV(b) {
		t.Error("two default generators produced different sheets")
	}
}

func TestLabeled(t *testing.T) {
	f := Labeled(3, 2)
	if f.Headers[1] != "c1" {
		t.Errorf("header 1 = %q, want c1", f.Headers[1])
	}
	if f.Rows[2][1] != "r2c1" {
		t.Errorf("cell (2,1) = %q, want r2c1", f.Rows[2][1])
	}
}

func TestToCSV(t *testing.T) {
	f := SheetFixture{Headers: []string{"a", "b"}, Rows: [][]string{{"1", "x,y"}, {"2", `say "hi"`}}}

	records, err := csv.NewReader(strings.NewReader(ToCSV(f))).ReadAll()
	if err != nil {
		t.Fatalf("ToCSV output does not parse: %v", err)
	}
	if len(records) != 3 || records[1][1] != "x,y" || records[2][1] != `say "hi"` {
		t.Errorf("records = %q", records)
	}
}

func TestToJSONL(t *testing.T) {
	f := Labeled(2, 2)
	lines := strings.Split(strings.TrimSpace(ToJSONL(f)), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}

	var head struct {
		Headers []string `json:"headers"`
	}
	if err := json.Unmarshal([]byte(lines[0]), &head); err != nil {
		t.Fatalf("header line: %v", err)
	}
	if len(head.Headers) != 2 || head.Headers[0] != "c0" {
		t.Errorf("headers = %v", head.Headers)
	}

	var row []string
	if err := json.Unmarshal([]byte(lines[2]), &row); err != nil {
		t.Fatalf("row line: %v", err)
	}
	if row[1] != "r1c1" {
		t.Errorf("row 1 = %v", row)
	}
}
