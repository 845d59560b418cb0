package grid

import (
	"errors"
	"fmt"
	"sort"

	"github.com/vanderheijden86/sheetview/pkg/debug"
	"github.com/vanderheijden86/sheetview/pkg/metrics"
)

// ErrPositionOutOfRange is returned by ScrollToPosition for a position that
// does not address an item.
var ErrPositionOutOfRange = errors.New("position out of range")

// DefaultColumns is the column count used until SetTotalColumns is called.
const DefaultColumns = 1

// Pass selects the kind of full layout.
type Pass int

const (
	// PassFinal lays the window out against the current data.
	PassFinal Pass = iota
	// PassPredictive reconstructs the pre-mutation layout so a host can
	// animate from it.
	PassPredictive
)

func (p Pass) String() string {
	if p == PassPredictive {
		return "predictive"
	}
	return "final"
}

type removal int

const (
	removedVisible removal = iota
	removedInvisible
)

// child is the side table entry for an attached cell.
type child struct {
	cell Cell
	rect Rect

	// position is the item's current position, NoPosition once removed.
	position int
	// layoutPosition is the position at the last final pass.
	layoutPosition int

	row, col int
	removed  bool
	invalid  bool
}

// LayoutManager lays out and recycles cells of a uniformly sized grid.
//
// It is single-threaded: every method must be called from the goroutine that
// owns the host's event loop.
type LayoutManager struct {
	provider Provider
	renderer Renderer
	viewport Viewport
	columns  int

	grid   Grid
	window Window

	// children are the attached cells ordered by position.
	children     []*child
	scrap        []*child
	disappearing []*child
	pool         *RecyclePool[*child]
	changes      ChangeTracker

	pendingPosition int
	fill            fillState
}

// NewLayoutManager returns a LayoutManager with nothing attached. Call
// SetViewport and Layout to materialize the first window.
func NewLayoutManager(p Provider, r Renderer) *LayoutManager {
	return &LayoutManager{
		provider:        p,
		renderer:        r,
		columns:         DefaultColumns,
		pool:            NewRecyclePool[*child](),
		pendingPosition: NoPosition,
	}
}

// Window returns the current window state.
func (lm *LayoutManager) Window() Window { return lm.window }

// Viewport returns the viewport being filled.
func (lm *LayoutManager) Viewport() Viewport { return lm.viewport }

// Grid returns the grid dimensions as of the last pass.
func (lm *LayoutManager) Grid() Grid { return lm.grid }

// Columns returns the configured column count.
func (lm *LayoutManager) Columns() int { return lm.columns }

// Changes exposes the mutation record for the next predictive pass.
func (lm *LayoutManager) Changes() ChangeRecord { return lm.changes.Record() }

// SetViewport resizes the area being filled and relayouts when attached.
func (lm *LayoutManager) SetViewport(v Viewport) {
	if v == lm.viewport {
		return
	}
	lm.viewport = v
	if len(lm.children) > 0 {
		lm.Layout(PassFinal)
	}
}

// SetTotalColumns sets the configured column count (at least 1) and
// relayouts.
func (lm *LayoutManager) SetTotalColumns(n int) {
	if n < 1 {
		n = 1
	}
	if n == lm.columns {
		return
	}
	lm.columns = n
	lm.Layout(PassFinal)
}

// TotalColumns returns the effective column count of the last pass.
func (lm *LayoutManager) TotalColumns() int { return lm.grid.TotalColumns() }

// TotalRows returns the row count of the last pass.
func (lm *LayoutManager) TotalRows() int { return lm.grid.TotalRows() }

// ChildCount returns the number of attached cells.
func (lm *LayoutManager) ChildCount() int { return len(lm.children) }

// Attached returns a snapshot of the attached cells ordered by position.
func (lm *LayoutManager) Attached() []Attached {
	out := make([]Attached, 0, len(lm.children))
	for _, c := range lm.children {
		out = append(out, Attached{Cell: c.cell, Position: c.position, Row: c.row, Column: c.col, Rect: c.rect})
	}
	return out
}

// Disappearing returns the cells retained for a disappear animation.
func (lm *LayoutManager) Disappearing() []Attached {
	out := make([]Attached, 0, len(lm.disappearing))
	for _, c := range lm.disappearing {
		out = append(out, Attached{Cell: c.cell, Position: c.position, Row: c.row, Column: c.col, Rect: c.rect})
	}
	return out
}

// EndAnimations recycles the disappearing cells.
func (lm *LayoutManager) EndAnimations() {
	for _, c := range lm.disappearing {
		lm.renderer.Recycle(c.cell)
	}
	lm.disappearing = nil
}

// settle drops state that only lives between a predictive and a final pass.
func (lm *LayoutManager) settle() {
	lm.EndAnimations()
	for _, c := range lm.scrap {
		lm.renderer.Recycle(c.cell)
	}
	lm.scrap = nil
}

// RemoveAll recycles every attached cell.
func (lm *LayoutManager) RemoveAll() {
	lm.settle()
	for _, c := range lm.children {
		lm.renderer.Recycle(c.cell)
	}
	lm.children = nil
}

func (lm *LayoutManager) refreshGrid(itemCount int) {
	lm.grid = Grid{ItemCount: itemCount, Columns: lm.columns}
}

// Layout fills the window from scratch, reusing attached cells by position.
func (lm *LayoutManager) Layout(pass Pass) {
	defer metrics.Timer(metrics.LayoutPass)()

	predictive := pass == PassPredictive
	current := lm.provider.ItemCount()
	if current == 0 {
		lm.RemoveAll()
		lm.refreshGrid(0)
		return
	}
	if predictive && len(lm.children) == 0 {
		return
	}
	lm.EndAnimations()

	itemCount := current
	if predictive {
		itemCount = lm.changes.PreLayoutItemCount(current)
	} else {
		defer lm.changes.Reset()
	}
	lm.refreshGrid(itemCount)

	if len(lm.children) == 0 {
		if !lm.measure() {
			return
		}
	}
	lm.window.Resize(lm.viewport, lm.grid.TotalColumns(), lm.grid.TotalRows())

	removed := lm.removedPositions(predictive)
	left, top := lm.anchor(predictive)
	if lm.window.FirstVisiblePosition < 0 {
		lm.window.FirstVisiblePosition = 0
	}
	if lm.window.FirstVisiblePosition > itemCount-1 {
		lm.window.FirstVisiblePosition = itemCount - 1
	}

	lm.fillGrid(predictive, left, top, removed)

	debug.Log("layout %s: first=%d window=%dx%d attached=%d disappearing=%d",
		pass, lm.window.FirstVisiblePosition, lm.window.VisibleColumns, lm.window.VisibleRows,
		len(lm.children), len(lm.disappearing))
}

// measure probes the cell at position 0 to learn the uniform cell size.
func (lm *LayoutManager) measure() bool {
	probe := lm.provider.CellAt(0)
	w, h := lm.renderer.Measure(probe)
	lm.renderer.Recycle(probe)
	if w <= 0 || h <= 0 {
		debug.Log("layout: cell measured %dx%d, nothing to lay out", w, h)
		lm.window.CellWidth, lm.window.CellHeight = 0, 0
		return false
	}
	lm.window.CellWidth, lm.window.CellHeight = w, h
	return true
}

// removedPositions builds the predictive pass's removed-position table.
// Visible removals come from flagged cells; when none are attached every
// recorded removal is treated as off-screen.
func (lm *LayoutManager) removedPositions(predictive bool) map[int]removal {
	if !predictive {
		return nil
	}
	removed := make(map[int]removal)
	for _, c := range lm.children {
		if c.removed {
			removed[c.layoutPosition] = removedVisible
		}
	}
	if len(removed) == 0 {
		for _, p := range lm.changes.RemovedPositions() {
			removed[p] = removedInvisible
		}
	}
	return removed
}

// anchor picks the first visible position and the top-left offset the fill
// starts from.
func (lm *LayoutManager) anchor(predictive bool) (left, top int) {
	pad := lm.viewport.Padding
	cols := lm.grid.TotalColumns()
	w := &lm.window

	switch {
	case len(lm.children) == 0:
		w.FirstVisiblePosition = 0
		left, top = pad.Left, pad.Top
		if lm.pendingPosition != NoPosition && lm.grid.Contains(lm.pendingPosition) {
			w.FirstVisiblePosition = lm.pendingPosition
			left, top = lm.clampToBounds(left, top)
		}
		lm.pendingPosition = NoPosition
		return left, top

	case !predictive && w.VisibleCellCount() >= lm.grid.ItemCount:
		w.FirstVisiblePosition = 0
		return pad.Left, pad.Top
	}

	topChild := lm.children[0]
	left, top = topChild.rect.Left, topChild.rect.Top
	if predictive {
		return left, top
	}

	if lm.viewport.VerticalSpace() > lm.grid.TotalRows()*w.CellHeight {
		w.FirstVisiblePosition = w.FirstVisibleColumn(cols)
		top = pad.Top
	}
	if lm.viewport.HorizontalSpace() > cols*w.CellWidth {
		w.FirstVisiblePosition = RowColToPosition(w.FirstVisibleRow(cols), 0, cols)
		left = pad.Left
	}
	return lm.clampToBounds(left, top)
}

// clampToBounds pulls a first visible row or column that no longer fits back
// to the last valid one and aligns the window's far edge with the viewport.
func (lm *LayoutManager) clampToBounds(left, top int) (int, int) {
	cols := lm.grid.TotalColumns()
	w := &lm.window
	pad := lm.viewport.Padding

	row, col := w.FirstVisibleRow(cols), w.FirstVisibleColumn(cols)
	maxRow := max(lm.grid.TotalRows()-w.VisibleRows, 0)
	maxCol := max(cols-w.VisibleColumns, 0)

	if row > maxRow {
		row = maxRow
		top = lm.viewport.Height - pad.Bottom - w.CellHeight*w.VisibleRows
		if row == 0 || top > pad.Top {
			top = pad.Top
		}
	}
	if col > maxCol {
		col = maxCol
		left = lm.viewport.Width - pad.Right - w.CellWidth*w.VisibleColumns
		if col == 0 || left > pad.Left {
			left = pad.Left
		}
	}
	w.FirstVisiblePosition = RowColToPosition(row, col, cols)
	return left, top
}

// fillGrid caches the attached cells, lays the window out slot by slot and
// disposes of what was not claimed.
func (lm *LayoutManager) fillGrid(predictive bool, left, top int, removed map[int]removal) {
	offscreen := false
	var invisible []int
	for p, kind := range removed {
		if kind == removedInvisible {
			offscreen = true
			invisible = append(invisible, p)
		}
	}
	sort.Ints(invisible)

	var leftovers []*child
	cache := func(c *child) {
		key := c.position
		switch {
		case predictive && !offscreen:
			key = c.layoutPosition
		case !predictive && c.removed:
			leftovers = append(leftovers, c)
			return
		}
		if key == NoPosition {
			leftovers = append(leftovers, c)
			return
		}
		if prev, ok := lm.pool.Peek(key); ok {
			leftovers = append(leftovers, prev)
		}
		lm.pool.Put(key, c)
	}
	for _, c := range lm.children {
		cache(c)
	}
	for _, c := range lm.scrap {
		cache(c)
	}
	lm.scrap = nil

	cols := lm.grid.TotalColumns()
	w := lm.window
	attached := make([]*child, 0, w.VisibleCellCount())
	claimed := make(map[int]bool, w.VisibleCellCount())

	for i := 0; i < w.VisibleCellCount(); i++ {
		slot := w.PositionOfIndex(i, cols)
		next, delta := slot, 0
		if predictive && offscreen {
			next = slot - countBelow(invisible, slot)
			if next < 0 {
				next = 0
			}
			delta = slot - next
		}
		if next < 0 || next >= lm.grid.ItemCount || claimed[next] {
			continue
		}

		rect := Rect{
			Left:   left + (i%w.VisibleColumns)*w.CellWidth,
			Top:    top + (i/w.VisibleColumns)*w.CellHeight,
			Width:  w.CellWidth,
			Height: w.CellHeight,
		}
		c := lm.claim(next, predictive, offscreen)
		if c == nil {
			continue
		}
		claimed[next] = true
		c.rect = rect
		lm.renderer.Place(c.cell, rect)
		attached = append(attached, c)

		if predictive && i%w.VisibleColumns == w.VisibleColumns-1 {
			attached = lm.layoutAppearing(attached, c, next, len(removed), delta, offscreen, claimed)
		}
	}

	for _, e := range lm.pool.TakeAll() {
		leftovers = append(leftovers, e.Item)
	}
	byPre := predictive && !offscreen
	sort.SliceStable(attached, func(i, j int) bool { return sortKey(attached[i], byPre) < sortKey(attached[j], byPre) })
	lm.children = attached

	if predictive {
		// Unclaimed cells survive until the final pass.
		lm.scrap = leftovers
		return
	}

	for _, c := range lm.children {
		c.layoutPosition = c.position
		c.row, c.col = PositionToRowCol(c.position, cols)
	}
	for _, c := range leftovers {
		if c.removed || c.position == NoPosition || !lm.grid.Contains(c.position) {
			lm.renderer.Recycle(c.cell)
			continue
		}
		lm.layoutDisappearing(c, cols)
	}
}

func sortKey(c *child, preMutation bool) int {
	if preMutation {
		return c.layoutPosition
	}
	return c.position
}

// claim returns the cell for slot position p, reusing a pooled cell when
// possible. In a predictive pass without an off-screen shift, p is a
// pre-mutation position.
func (lm *LayoutManager) claim(p int, predictive, offscreen bool) *child {
	if c, ok := lm.pool.Get(p); ok {
		metrics.CellPool.Hit()
		if !predictive && c.invalid {
			lm.renderer.Recycle(c.cell)
			c.cell = lm.provider.CellAt(p)
			lm.renderer.Measure(c.cell)
			c.invalid = false
		}
		return c
	}
	metrics.CellPool.Miss()

	current := p
	if predictive && !offscreen {
		var ok bool
		if current, ok = lm.changes.CurrentPosition(p); !ok {
			return nil
		}
	}
	if current < 0 || current >= lm.provider.ItemCount() {
		return nil
	}
	cell := lm.provider.CellAt(current)
	lm.renderer.Measure(cell)
	c := &child{cell: cell, position: current, layoutPosition: p}
	c.row, c.col = PositionToRowCol(current, lm.grid.TotalColumns())
	return c
}

// layoutAppearing lays out, after a row end, the cells that will scroll into
// the row once the removed items are gone. They sit just past the reference
// cell so a host can animate them in. Positions inside the window are
// skipped; they are laid out by their own slots.
func (lm *LayoutManager) layoutAppearing(attached []*child, ref *child, refPos, extra, delta int, offscreen bool, claimed map[int]bool) []*child {
	if extra < 1 {
		return attached
	}
	cols := lm.grid.TotalColumns()
	refRow, refCol := PositionToRowCol(refPos+delta, cols)

	for k := 1; k <= extra; k++ {
		p := refPos + k
		if p >= lm.grid.ItemCount || claimed[p] {
			continue
		}
		row, col := PositionToRowCol(p+delta, cols)
		if lm.window.ContainsRowCol(row, col, cols) {
			continue
		}
		c := lm.claim(p, true, offscreen)
		if c == nil {
			continue
		}
		claimed[p] = true
		c.rect = ref.rect.Offset((col-refCol)*lm.window.CellWidth, (row-refRow)*lm.window.CellHeight)
		lm.renderer.Place(c.cell, c.rect)
		attached = append(attached, c)
	}
	return attached
}

// layoutDisappearing places a cell that left the window at the offset its
// item moved by, relative to its last known row and column.
func (lm *LayoutManager) layoutDisappearing(c *child, cols int) {
	row, col := PositionToRowCol(c.position, cols)
	dRow, dCol := row-c.row, col-c.col
	c.rect = c.rect.Offset(dCol*lm.window.CellWidth, dRow*lm.window.CellHeight)
	c.row, c.col = row, col
	c.layoutPosition = c.position
	lm.renderer.Place(c.cell, c.rect)
	lm.disappearing = append(lm.disappearing, c)
}

func countBelow(sorted []int, p int) int {
	return sort.SearchInts(sorted, p)
}

// ScrollToPosition makes p the first visible position and relayouts.
func (lm *LayoutManager) ScrollToPosition(p int) error {
	n := lm.provider.ItemCount()
	if p < 0 || p >= n {
		debug.Log("Cannot scroll to %d, item count is %d", p, n)
		return fmt.Errorf("%w: %d (item count %d)", ErrPositionOutOfRange, p, n)
	}
	lm.pendingPosition = p
	lm.RemoveAll()
	lm.Layout(PassFinal)
	return nil
}

// ScrollVectorForPosition returns the sign of the distance from the current
// top-left cell to p on each axis.
func (lm *LayoutManager) ScrollVectorForPosition(p int) (dx, dy int, ok bool) {
	if len(lm.children) == 0 || lm.window.FirstVisiblePosition == NoPosition {
		return 0, 0, false
	}
	cols := lm.grid.TotalColumns()
	row, col := PositionToRowCol(p, cols)
	fr, fc := lm.window.FirstVisibleRow(cols), lm.window.FirstVisibleColumn(cols)
	return sign(col - fc), sign(row - fr), true
}

// FindCellByPosition returns the attached cell at position p.
func (lm *LayoutManager) FindCellByPosition(p int) (Cell, bool) {
	i, ok := lm.indexOf(p)
	if !ok {
		return nil, false
	}
	return lm.children[i].cell, true
}

// RectOf returns the placement of the attached cell at position p.
func (lm *LayoutManager) RectOf(p int) (Rect, bool) {
	i, ok := lm.indexOf(p)
	if !ok {
		return Rect{}, false
	}
	return lm.children[i].rect, true
}

func (lm *LayoutManager) indexOf(p int) (int, bool) {
	i := sort.Search(len(lm.children), func(i int) bool { return lm.children[i].position >= p })
	if i < len(lm.children) && lm.children[i].position == p {
		return i, true
	}
	// Removed children carry NoPosition and break the ordering.
	for j, c := range lm.children {
		if c.position == p {
			return j, true
		}
	}
	return 0, false
}

// CanScrollHorizontally reports whether the engine accepts horizontal scrolls.
func (lm *LayoutManager) CanScrollHorizontally() bool { return true }

// CanScrollVertically reports whether the engine accepts vertical scrolls.
func (lm *LayoutManager) CanScrollVertically() bool { return true }

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
