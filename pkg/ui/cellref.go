package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadCellRef is returned for input that names no cell.
var ErrBadCellRef = errors.New("bad cell reference")

// ParseCellRef reads a cell reference typed into the go-to prompt. It accepts
// spreadsheet notation ("B12", "aa3"), a bare row number ("40") or
// "row,column" with 1-based numbers ("40,3"). It returns 0-based indexes.
func ParseCellRef(s string) (row, col int, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, fmt.Errorf("%w: empty", ErrBadCellRef)
	}

	if r, c, ok := strings.Cut(s, ","); ok {
		row, err1 := strconv.Atoi(strings.TrimSpace(r))
		col, err2 := strconv.Atoi(strings.TrimSpace(c))
		if err1 != nil || err2 != nil || row < 1 || col < 1 {
			return 0, 0, fmt.Errorf("%w: %q", ErrBadCellRef, s)
		}
		return row - 1, col - 1, nil
	}

	letters := 0
	for letters < len(s) && isLetter(s[letters]) {
		letters++
	}
	digits := s[letters:]
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadCellRef, s)
	}
	for _, ch := range strings.ToUpper(s[:letters]) {
		col = col*26 + int(ch-'A'+1)
	}
	if letters > 0 {
		col--
	}
	return n - 1, col, nil
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
