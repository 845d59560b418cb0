package datasource

import (
	"hash/fnv"
	"strconv"
)

// Sheet is a rectangular table of strings loaded from a source. Rows may be
// ragged; missing cells read as "".
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// RowCount returns the number of data rows.
func (s *Sheet) RowCount() int {
	if s == nil {
		return 0
	}
	return len(s.Rows)
}

// ColumnCount returns the widest of the header row and the data rows.
func (s *Sheet) ColumnCount() int {
	if s == nil {
		return 0
	}
	n := len(s.Headers)
	for _, r := range s.Rows {
		n = max(n, len(r))
	}
	return n
}

// Cell returns the value at (row, col), or "" outside the data.
func (s *Sheet) Cell(row, col int) string {
	if s == nil || row < 0 || row >= len(s.Rows) || col < 0 || col >= len(s.Rows[row]) {
		return ""
	}
	return s.Rows[row][col]
}

// Header returns the header of col, falling back to a spreadsheet-style
// letter name (A, B, ..., Z, AA, ...).
func (s *Sheet) Header(col int) string {
	if s != nil && col >= 0 && col < len(s.Headers) && s.Headers[col] != "" {
		return s.Headers[col]
	}
	return ColumnName(col)
}

// Column returns every value of col in row order.
func (s *Sheet) Column(col int) []string {
	out := make([]string, s.RowCount())
	for r := range out {
		out[r] = s.Cell(r, col)
	}
	return out
}

// ColumnName returns the letter name of a zero-based column index.
func ColumnName(col int) string {
	if col < 0 {
		return ""
	}
	var buf []byte
	for col >= 0 {
		buf = append([]byte{byte('A' + col%26)}, buf...)
		col = col/26 - 1
	}
	return string(buf)
}

// rowHash fingerprints a row so diffs can compare rows cheaply.
func rowHash(row []string) uint64 {
	h := fnv.New64a()
	for i, v := range row {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(strconv.Itoa(len(v))))
		h.Write([]byte(v))
	}
	return h.Sum64()
}
