package grid_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/vanderheijden86/sheetview/pkg/grid"
	"github.com/vanderheijden86/sheetview/pkg/testutil"
)

func TestFirstLayoutFillsWindow(t *testing.T) {
	// 39 items in one row, 10x10 cells, 100 wide: 10 visible plus overscan.
	lm, items, rec := testutil.NewLayout(39, 39, 10, 10, 100, 10)

	w := lm.Window()
	if w.VisibleColumns != 11 || w.VisibleRows != 1 {
		t.Fatalf("window = %dx%d, want 11x1", w.VisibleColumns, w.VisibleRows)
	}
	testutil.AssertHealthy(t, lm, rec)
	testutil.AssertFirstVisible(t, lm, 0)

	want := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if got := testutil.Positions(lm); !slices.Equal(got, want) {
		t.Errorf("positions = %v, want %v", got, want)
	}
	if r, _ := lm.RectOf(10); r.Left != 100 {
		t.Errorf("overscan cell at %d, want 100", r.Left)
	}
	// The probe cell plus one cell per slot; a second layout reuses them.
	if items.Created != 12 {
		t.Errorf("created %d cells, want 12", items.Created)
	}
}

func TestLayoutIsIdempotent(t *testing.T) {
	lm, items, rec := testutil.NewLayout(2500, 50, 8, 2, 80, 20)
	lm.ScrollHorizontallyBy(37)
	lm.ScrollVerticallyBy(13)

	before := lm.Attached()
	created := items.Created
	lm.Layout(grid.PassFinal)
	after := lm.Attached()

	if !slices.Equal(before, after) {
		t.Errorf("layout changed the attached window:\nbefore %v\nafter  %v", before, after)
	}
	if items.Created != created {
		t.Errorf("layout created %d cells, want 0", items.Created-created)
	}
	testutil.AssertHealthy(t, lm, rec)
}

func TestLayoutWithZeroItems(t *testing.T) {
	lm, items, rec := testutil.NewLayout(30, 30, 10, 10, 100, 10)
	if err := lm.ScrollToPosition(5); err != nil {
		t.Fatalf("ScrollToPosition(5): %v", err)
	}
	testutil.AssertFirstVisible(t, lm, 5)

	items.N = 0
	lm.Layout(grid.PassFinal)

	if lm.ChildCount() != 0 {
		t.Errorf("ChildCount() = %d, want 0", lm.ChildCount())
	}
	if len(rec.Placed) != 0 {
		t.Errorf("%d cells still placed", len(rec.Placed))
	}
	testutil.AssertFirstVisible(t, lm, 5)
}

func TestLayoutSmallDataSet(t *testing.T) {
	lm, _, rec := testutil.NewLayout(5, 5, 10, 10, 100, 40)
	testutil.AssertHealthy(t, lm, rec)

	if got := lm.ScrollHorizontallyBy(25); got != 0 {
		t.Errorf("ScrollHorizontallyBy = %d, want 0", got)
	}
	if got := lm.ScrollVerticallyBy(25); got != 0 {
		t.Errorf("ScrollVerticallyBy = %d, want 0", got)
	}
	testutil.AssertFirstVisible(t, lm, 0)
}

func TestLayoutZeroSizedCell(t *testing.T) {
	items := testutil.NewItems(10)
	rec := testutil.NewRecorder(0, 1)
	lm := grid.NewLayoutManager(items, rec)
	lm.SetViewport(grid.Viewport{Width: 40, Height: 10})
	lm.Layout(grid.PassFinal)

	if lm.ChildCount() != 0 {
		t.Errorf("ChildCount() = %d, want 0 for zero-width cells", lm.ChildCount())
	}
}

func TestScrollToPosition(t *testing.T) {
	tests := []struct {
		name      string
		target    int
		wantFirst int
		wantLeft  int
	}{
		{"inside", 5, 5, 0},
		{"last full window", 19, 19, 0},
		{"past last full window aligns right edge", 25, 19, -10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lm, _, rec := testutil.NewLayout(30, 30, 10, 10, 100, 10)
			if err := lm.ScrollToPosition(tt.target); err != nil {
				t.Fatalf("ScrollToPosition(%d): %v", tt.target, err)
			}
			testutil.AssertFirstVisible(t, lm, tt.wantFirst)
			testutil.AssertHealthy(t, lm, rec)
			if r, ok := lm.RectOf(tt.wantFirst); !ok || r.Left != tt.wantLeft {
				t.Errorf("first cell at %d (attached %v), want %d", r.Left, ok, tt.wantLeft)
			}
		})
	}
}

func TestScrollToPositionOutOfRange(t *testing.T) {
	lm, _, _ := testutil.NewLayout(30, 30, 10, 10, 100, 10)
	before := testutil.Positions(lm)

	for _, p := range []int{-1, 30, 1000} {
		err := lm.ScrollToPosition(p)
		if !errors.Is(err, grid.ErrPositionOutOfRange) {
			t.Errorf("ScrollToPosition(%d) error = %v, want ErrPositionOutOfRange", p, err)
		}
	}
	if got := testutil.Positions(lm); !slices.Equal(got, before) {
		t.Errorf("positions changed after rejected scroll: %v", got)
	}
}

func TestScrollVectorForPosition(t *testing.T) {
	lm, _, _ := testutil.NewLayout(10000, 100, 8, 2, 80, 20)
	if err := lm.ScrollToPosition(505); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		target int
		dx, dy int
	}{
		{505, 0, 0},
		{0, -1, -1},
		{9999, 1, 1},
		{509, 1, 0},
		{105, 0, -1},
	}
	for _, tt := range tests {
		dx, dy, ok := lm.ScrollVectorForPosition(tt.target)
		if !ok || dx != tt.dx || dy != tt.dy {
			t.Errorf("ScrollVectorForPosition(%d) = (%d,%d,%v), want (%d,%d)", tt.target, dx, dy, ok, tt.dx, tt.dy)
		}
	}
}

func TestFindCellByPosition(t *testing.T) {
	lm, _, _ := testutil.NewLayout(39, 39, 10, 10, 100, 10)

	c, ok := lm.FindCellByPosition(4)
	if !ok || c.(*testutil.FakeCell).Position != 4 {
		t.Errorf("FindCellByPosition(4) = %v, %v", c, ok)
	}
	if _, ok := lm.FindCellByPosition(20); ok {
		t.Error("position 20 is outside the window")
	}
}

func TestSetTotalColumnsRelayouts(t *testing.T) {
	lm, _, rec := testutil.NewLayout(100, 10, 10, 10, 50, 30)
	testutil.AssertHealthy(t, lm, rec)
	if lm.TotalRows() != 10 {
		t.Fatalf("TotalRows() = %d, want 10", lm.TotalRows())
	}

	lm.SetTotalColumns(25)
	if lm.TotalRows() != 4 || lm.TotalColumns() != 25 {
		t.Errorf("grid = %dx%d, want 25x4", lm.TotalColumns(), lm.TotalRows())
	}
	testutil.AssertHealthy(t, lm, rec)

	lm.SetTotalColumns(0)
	if lm.Columns() != 1 {
		t.Errorf("Columns() = %d, want clamp to 1", lm.Columns())
	}
	testutil.AssertHealthy(t, lm, rec)
}

func TestViewportResize(t *testing.T) {
	lm, _, rec := testutil.NewLayout(10000, 100, 8, 2, 80, 20)
	lm.SetViewport(grid.Viewport{Width: 160, Height: 40})

	w := lm.Window()
	if w.VisibleColumns != 21 || w.VisibleRows != 21 {
		t.Errorf("window = %dx%d, want 21x21", w.VisibleColumns, w.VisibleRows)
	}
	testutil.AssertHealthy(t, lm, rec)
}

func TestDataSetChangedRebinds(t *testing.T) {
	lm, items, rec := testutil.NewLayout(39, 39, 10, 10, 100, 10)
	old, _ := lm.FindCellByPosition(3)
	created := items.Created

	lm.DataSetChanged()
	lm.Layout(grid.PassFinal)

	fresh, _ := lm.FindCellByPosition(3)
	if fresh == old {
		t.Error("cell was not rebound")
	}
	if got := items.Created - created; got != 11 {
		t.Errorf("rebinding created %d cells, want 11", got)
	}
	if _, placed := rec.Placed[old.(*testutil.FakeCell)]; placed {
		t.Error("stale cell is still placed")
	}
	testutil.AssertHealthy(t, lm, rec)
}

func TestDataSetReplacedResetsWindow(t *testing.T) {
	lm, items, rec := testutil.NewLayout(39, 39, 10, 10, 100, 10)
	lm.ScrollHorizontallyBy(120)
	if lm.Window().FirstVisiblePosition == 0 {
		t.Fatal("expected the window to move")
	}

	items.N = 20
	lm.DataSetReplaced()
	testutil.AssertFirstVisible(t, lm, 0)
	testutil.AssertHealthy(t, lm, rec)
}

func TestShrinkAtEndKeepsFarEdgeAligned(t *testing.T) {
	tests := []struct {
		name      string
		n, cols   int
		width     int
		height    int
		shrinkTo  int
		wantFirst int
	}{
		// 10x10 parked on rows 6..9, cut to 6 rows.
		{"rows", 100, 10, 50, 30, 60, 24},
		// One row parked on columns 19..29, cut to 25 columns.
		{"columns", 30, 30, 100, 10, 25, 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lm, items, rec := testutil.NewLayout(tt.n, tt.cols, 10, 10, tt.width, tt.height)
			if err := lm.ScrollToPosition(tt.n - 1); err != nil {
				t.Fatal(err)
			}

			items.N = tt.shrinkTo
			lm.DataSetChanged()
			lm.Layout(grid.PassFinal)

			testutil.AssertFirstVisible(t, lm, tt.wantFirst)
			testutil.AssertHealthy(t, lm, rec)
			last, ok := lm.RectOf(tt.shrinkTo - 1)
			if !ok {
				t.Fatalf("last position %d not attached", tt.shrinkTo-1)
			}
			if last.Right() != tt.width || last.Bottom() != tt.height {
				t.Errorf("last cell ends at (%d,%d), want (%d,%d)", last.Right(), last.Bottom(), tt.width, tt.height)
			}
		})
	}
}
