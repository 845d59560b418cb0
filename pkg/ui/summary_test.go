package ui

import (
	"math"
	"testing"
)

func TestSummarizeColumn_Numeric(t *testing.T) {
	s := SummarizeColumn([]string{"1", " 2 ", "3", "1,000", ""})

	if s.Count != 4 || s.Numeric != 4 {
		t.Fatalf("Count/Numeric = %d/%d, want 4/4", s.Count, s.Numeric)
	}
	if s.Sum != 1006 {
		t.Errorf("Sum = %v, want 1006", s.Sum)
	}
	if s.Mean != 251.5 {
		t.Errorf("Mean = %v, want 251.5", s.Mean)
	}
	if s.Min != 1 || s.Max != 1000 {
		t.Errorf("Min/Max = %v/%v, want 1/1000", s.Min, s.Max)
	}
	if s.StdDev <= 0 || math.IsNaN(s.StdDev) {
		t.Errorf("StdDev = %v, want a positive number", s.StdDev)
	}
}

func TestSummarizeColumn_Mixed(t *testing.T) {
	s := SummarizeColumn([]string{"alpha", "4", "bravo", "6"})

	if s.Count != 4 || s.Numeric != 2 {
		t.Fatalf("Count/Numeric = %d/%d, want 4/2", s.Count, s.Numeric)
	}
	want := "4 values, 2 numeric · sum 10 · mean 5 · min 4 · max 6"
	if got := s.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestSummarizeColumn_SingleValueHasNoDeviation(t *testing.T) {
	s := SummarizeColumn([]string{"42"})
	if s.StdDev != 0 {
		t.Errorf("StdDev = %v, want 0 for one value", s.StdDev)
	}
}

func TestSummarizeColumn_Text(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"nil", nil, "0 values"},
		{"blank", []string{"", "  "}, "0 values"},
		{"words", []string{"x", "y", "z"}, "3 values"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SummarizeColumn(tt.values).String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
