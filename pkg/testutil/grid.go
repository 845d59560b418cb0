package testutil

import "github.com/vanderheijden86/sheetview/pkg/grid"

// FakeCell is the cell handle produced by Items.
type FakeCell struct {
	Position int
	Serial   int

	recycled bool
}

// Items is a grid.Provider over N synthetic items.
type Items struct {
	N       int
	Created int
}

// NewItems returns a provider with n items.
func NewItems(n int) *Items {
	return &Items{N: n}
}

// ItemCount implements grid.Provider.
func (it *Items) ItemCount() int { return it.N }

// CellAt implements grid.Provider. Every call builds a new cell.
func (it *Items) CellAt(position int) grid.Cell {
	it.Created++
	return &FakeCell{Position: position, Serial: it.Created}
}

// Recorder is a grid.Renderer with a fixed cell size that records where
// cells are placed and how often they are recycled.
type Recorder struct {
	Width, Height int

	Placed         map[*FakeCell]grid.Rect
	Recycled       int
	DoubleRecycles int
}

// NewRecorder returns a renderer measuring every cell as width x height.
func NewRecorder(width, height int) *Recorder {
	return &Recorder{Width: width, Height: height, Placed: make(map[*FakeCell]grid.Rect)}
}

// Measure implements grid.Renderer.
func (r *Recorder) Measure(grid.Cell) (int, int) { return r.Width, r.Height }

// Place implements grid.Renderer.
func (r *Recorder) Place(c grid.Cell, rect grid.Rect) {
	r.Placed[c.(*FakeCell)] = rect
}

// Recycle implements grid.Renderer.
func (r *Recorder) Recycle(c grid.Cell) {
	fc := c.(*FakeCell)
	if fc.recycled {
		r.DoubleRecycles++
	}
	fc.recycled = true
	delete(r.Placed, fc)
	r.Recycled++
}

// NewLayout builds a LayoutManager over n items laid out in cols columns of
// cw x ch cells inside a w x h viewport, and runs the first layout.
func NewLayout(n, cols, cw, ch, w, h int) (*grid.LayoutManager, *Items, *Recorder) {
	items := NewItems(n)
	rec := NewRecorder(cw, ch)
	lm := grid.NewLayoutManager(items, rec)
	lm.SetViewport(grid.Viewport{Width: w, Height: h})
	lm.SetTotalColumns(cols)
	lm.Layout(grid.PassFinal)
	return lm, items, rec
}

// Positions returns the attached positions in order.
func Positions(lm *grid.LayoutManager) []int {
	attached := lm.Attached()
	out := make([]int, len(attached))
	for i, a := range attached {
		out[i] = a.Position
	}
	return out
}

// WindowPositions returns the positions the window rectangle covers,
// clipped to the data, in row-major order.
func WindowPositions(lm *grid.LayoutManager) []int {
	w := lm.Window()
	cols := lm.TotalColumns()
	g := lm.Grid()
	fr, fc := w.FirstVisibleRow(cols), w.FirstVisibleColumn(cols)

	var out []int
	for r := 0; r < w.VisibleRows; r++ {
		for c := 0; c < w.VisibleColumns; c++ {
			if p := g.PositionOf(fr+r, fc+c); p != grid.NoPosition {
				out = append(out, p)
			}
		}
	}
	return out
}
