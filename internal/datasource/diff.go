package datasource

import (
	"fmt"
	"slices"
	"strings"
)

// ChangeKind classifies a contiguous run of changed rows.
type ChangeKind int

const (
	ChangeUpdated ChangeKind = iota
	ChangeRemoved
	ChangeInserted
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeRemoved:
		return "removed"
	case ChangeInserted:
		return "inserted"
	default:
		return "updated"
	}
}

// RowChange is a run of Count rows starting at Start. Changes are listed in
// the order they must be applied; Start is relative to the rows as they are
// after every earlier change in the list.
type RowChange struct {
	Kind  ChangeKind
	Start int
	Count int
}

// SheetDiff describes how to turn one sheet into another.
type SheetDiff struct {
	// Replaced is set when the column layout changed and rows cannot be
	// mapped; the whole sheet must be reloaded.
	Replaced bool
	// HeadersChanged is set when header names differ.
	HeadersChanged bool
	Changes        []RowChange
	RowsBefore     int
	RowsAfter      int
}

// Empty reports whether the sheets are identical.
func (d SheetDiff) Empty() bool {
	return !d.Replaced && !d.HeadersChanged && len(d.Changes) == 0
}

// Summary returns a human-readable summary of the differences
func (d SheetDiff) Summary() string {
	if d.Replaced {
		return fmt.Sprintf("Sheet replaced (%d -> %d rows)", d.RowsBefore, d.RowsAfter)
	}
	if d.Empty() {
		return fmt.Sprintf("Sheets match (%d rows)", d.RowsBefore)
	}
	var parts []string
	if d.HeadersChanged {
		parts = append(parts, "headers changed")
	}
	for _, c := range d.Changes {
		parts = append(parts, fmt.Sprintf("%d rows %s at %d", c.Count, c.Kind, c.Start))
	}
	return strings.Join(parts, ", ")
}

// Diff compares two sheets row by row. Rows matching at the start and at
// the end are kept; the differing middle becomes one update run followed by
// one removal or insertion run.
func Diff(before, after *Sheet) SheetDiff {
	d := SheetDiff{RowsBefore: before.RowCount(), RowsAfter: after.RowCount()}
	if before.ColumnCount() != after.ColumnCount() {
		d.Replaced = true
		return d
	}
	if before != nil && after != nil {
		d.HeadersChanged = !slices.Equal(before.Headers, after.Headers)
	}

	old := hashRows(before)
	cur := hashRows(after)

	prefix := 0
	for prefix < len(old) && prefix < len(cur) && old[prefix] == cur[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < len(old)-prefix && suffix < len(cur)-prefix &&
		old[len(old)-1-suffix] == cur[len(cur)-1-suffix] {
		suffix++
	}

	oldMid := len(old) - prefix - suffix
	curMid := len(cur) - prefix - suffix
	if common := min(oldMid, curMid); common > 0 {
		d.Changes = append(d.Changes, RowChange{Kind: ChangeUpdated, Start: prefix, Count: common})
	}
	switch {
	case oldMid > curMid:
		d.Changes = append(d.Changes, RowChange{Kind: ChangeRemoved, Start: prefix + curMid, Count: oldMid - curMid})
	case curMid > oldMid:
		d.Changes = append(d.Changes, RowChange{Kind: ChangeInserted, Start: prefix + oldMid, Count: curMid - oldMid})
	}
	return d
}

func hashRows(s *Sheet) []uint64 {
	if s == nil {
		return nil
	}
	out := make([]uint64, len(s.Rows))
	for i, r := range s.Rows {
		out[i] = rowHash(r)
	}
	return out
}
