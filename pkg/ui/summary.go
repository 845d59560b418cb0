package ui

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ColumnSummary describes the values of one sheet column.
type ColumnSummary struct {
	Count   int // non-empty values
	Numeric int // values that parse as numbers
	Sum     float64
	Mean    float64
	StdDev  float64
	Min     float64
	Max     float64
}

// SummarizeColumn computes the summary of values. Empty strings are skipped;
// numeric statistics only cover values that parse as floats.
func SummarizeColumn(values []string) ColumnSummary {
	var s ColumnSummary
	xs := make([]float64, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		s.Count++
		if f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64); err == nil {
			xs = append(xs, f)
		}
	}
	s.Numeric = len(xs)
	if len(xs) == 0 {
		return s
	}
	s.Sum = floats.Sum(xs)
	s.Mean = stat.Mean(xs, nil)
	if len(xs) > 1 {
		s.StdDev = stat.StdDev(xs, nil)
	}
	s.Min = floats.Min(xs)
	s.Max = floats.Max(xs)
	return s
}

// String renders the summary for the status bar.
func (s ColumnSummary) String() string {
	if s.Numeric == 0 {
		return fmt.Sprintf("%d values", s.Count)
	}
	return fmt.Sprintf("%d values, %d numeric · sum %s · mean %s · min %s · max %s",
		s.Count, s.Numeric, formatFloat(s.Sum), formatFloat(s.Mean), formatFloat(s.Min), formatFloat(s.Max))
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', 6, 64)
}
