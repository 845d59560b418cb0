package ui

import (
	"testing"

	"github.com/vanderheijden86/sheetview/internal/datasource"
	"github.com/vanderheijden86/sheetview/pkg/grid"
	"github.com/vanderheijden86/sheetview/pkg/metrics"
)

func TestSheetDataColumns(t *testing.T) {
	d := &sheetData{sheet: &datasource.Sheet{Headers: []string{"a", "b", "c"}}}
	if got := d.columns(); got != 3 {
		t.Errorf("columns() = %d, want 3", got)
	}
	d.columnsOverride = 5
	if got := d.columns(); got != 5 {
		t.Errorf("columns() with override = %d, want 5", got)
	}

	empty := &sheetData{sheet: &datasource.Sheet{}}
	if got := empty.columns(); got != 1 {
		t.Errorf("columns() of an empty sheet = %d, want 1", got)
	}
}

func TestBodySourceIsRowMajor(t *testing.T) {
	d := &sheetData{sheet: labeledSheet(4, 3)}
	src := bodySource(d, 10, 1)

	if got := src.ItemCount(); got != 12 {
		t.Errorf("ItemCount() = %d, want 12", got)
	}
	for p, want := range map[int]string{0: "r0c0", 2: "r0c2", 3: "r1c0", 11: "r3c2"} {
		if got := src.CellAt(p).(*cellView).text; got != want {
			t.Errorf("CellAt(%d) = %q, want %q", p, got, want)
		}
	}
	if w, h := src.Measure(nil); w != 10 || h != 1 {
		t.Errorf("Measure() = %dx%d, want 10x1", w, h)
	}
}

func TestHeaderSources(t *testing.T) {
	d := &sheetData{sheet: labeledSheet(4, 3)}
	cols := columnHeaderSource(d, 10, 1)
	rows := rowHeaderSource(d, 4, 1)

	if cols.ItemCount() != 3 || rows.ItemCount() != 4 {
		t.Errorf("ItemCount() = %d/%d, want 3/4", cols.ItemCount(), rows.ItemCount())
	}
	if got := cols.text(1); got != "c1" {
		t.Errorf("column header 1 = %q", got)
	}
	if got := rows.text(3); got != "4" {
		t.Errorf("row header 3 = %q", got)
	}

	// Header text follows the shared sheet after a reload.
	d.sheet = &datasource.Sheet{Headers: []string{"x", "", "z"}}
	if got := cols.text(0); got != "x" {
		t.Errorf("column header 0 after swap = %q, want x", got)
	}
	if got := cols.text(1); got != "B" {
		t.Errorf("blank header = %q, want the column letter", got)
	}
}

func TestCellSourcePlaceAndRecycle(t *testing.T) {
	metrics.SetEnabled(true)
	metrics.CellFreeList.Reset()
	d := &sheetData{sheet: labeledSheet(2, 2)}
	src := bodySource(d, 10, 1)

	c := src.CellAt(0).(*cellView)
	r := grid.Rect{Left: 10, Top: 1, Width: 10, Height: 1}
	src.Place(c, r)
	if c.rect != r {
		t.Errorf("rect = %+v, want %+v", c.rect, r)
	}

	src.Recycle(c)
	src.Recycle(c)
	if !c.recycled {
		t.Error("recycled cell not flagged")
	}

	next := src.CellAt(3).(*cellView)
	if next.text != "r1c1" || next.recycled {
		t.Errorf("fresh cell = %+v", *next)
	}
	if s := metrics.CellFreeList.Stats(); s.Hits+s.Misses != 2 {
		t.Errorf("free list lookups = %d hits + %d misses, want 2 in total", s.Hits, s.Misses)
	}
}
