package testutil

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/vanderheijden86/sheetview/pkg/grid"
)

// AssertWindowCovered verifies the attached cells are exactly the window
// rectangle clipped to the data: no duplicates and no gaps.
func AssertWindowCovered(t *testing.T, lm *grid.LayoutManager) {
	t.Helper()
	got := Positions(lm)
	want := WindowPositions(lm)
	if !slices.Equal(got, want) {
		t.Errorf("attached positions = %v, want window %v (first=%d)", got, want, lm.Window().FirstVisiblePosition)
	}
}

// AssertNoDuplicateCells verifies no cell handle or position is attached twice.
func AssertNoDuplicateCells(t *testing.T, lm *grid.LayoutManager) {
	t.Helper()
	cells := make(map[grid.Cell]bool)
	positions := make(map[int]bool)
	for _, a := range lm.Attached() {
		if cells[a.Cell] {
			t.Errorf("cell for position %d attached twice", a.Position)
		}
		cells[a.Cell] = true
		if positions[a.Position] {
			t.Errorf("position %d attached twice", a.Position)
		}
		positions[a.Position] = true
	}
}

// AssertRasterGeometry verifies every attached cell sits at the offset its
// grid coordinate implies relative to the top-left cell.
func AssertRasterGeometry(t *testing.T, lm *grid.LayoutManager) {
	t.Helper()
	attached := lm.Attached()
	if len(attached) == 0 {
		return
	}
	w := lm.Window()
	origin := attached[0]
	for _, a := range attached[1:] {
		wantLeft := origin.Rect.Left + (a.Column-origin.Column)*w.CellWidth
		wantTop := origin.Rect.Top + (a.Row-origin.Row)*w.CellHeight
		if a.Rect.Left != wantLeft || a.Rect.Top != wantTop {
			t.Errorf("position %d at (%d,%d), want (%d,%d)", a.Position, a.Rect.Left, a.Rect.Top, wantLeft, wantTop)
		}
	}
}

// AssertFirstVisible verifies the first visible position.
func AssertFirstVisible(t *testing.T, lm *grid.LayoutManager, want int) {
	t.Helper()
	if got := lm.Window().FirstVisiblePosition; got != want {
		t.Errorf("first visible position = %d, want %d", got, want)
	}
}

// AssertHealthy runs every structural assertion.
func AssertHealthy(t *testing.T, lm *grid.LayoutManager, rec *Recorder) {
	t.Helper()
	AssertWindowCovered(t, lm)
	AssertNoDuplicateCells(t, lm)
	AssertRasterGeometry(t, lm)
	if rec != nil && rec.DoubleRecycles > 0 {
		t.Errorf("%d cells recycled twice", rec.DoubleRecycles)
	}
}

// WriteSheetFile writes content to name inside a fresh temp dir and returns
// the path.
func WriteSheetFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write sheet file: %v", err)
	}
	return path
}
