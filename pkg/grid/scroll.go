package grid

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/sheetview/pkg/debug"
	"github.com/vanderheijden86/sheetview/pkg/metrics"
)

// ScrollBy scrolls along axis and returns the distance actually scrolled.
func (lm *LayoutManager) ScrollBy(delta int, axis Axis) int {
	if axis == AxisVertical {
		return lm.ScrollVerticallyBy(delta)
	}
	return lm.ScrollHorizontallyBy(delta)
}

// ScrollHorizontallyBy moves the content left by dx (right for negative dx),
// filling new columns on the leading edge and recycling columns that leave
// the window. It returns the distance actually scrolled, which is smaller than
// dx at the data bounds.
func (lm *LayoutManager) ScrollHorizontallyBy(dx int) int {
	defer metrics.Timer(metrics.ScrollPass)()
	lm.settle()
	if dx == 0 || len(lm.children) == 0 || lm.window.FirstVisiblePosition == NoPosition {
		return 0
	}
	lm.refreshGrid(lm.provider.ItemCount())

	start := lm.children[0]
	end := lm.endOfFirstRow()
	if end.rect.Right()-start.rect.Left < lm.viewport.HorizontalSpace() {
		return 0
	}

	cols := lm.grid.TotalColumns()
	w := lm.window
	dir, prefilled := DirectionEnd, end.rect.Right()-(lm.viewport.Width-lm.viewport.Padding.Right)
	if dx < 0 {
		dir, prefilled = DirectionStart, lm.viewport.Padding.Left-start.rect.Left
	}
	prefilled = max(prefilled, 0)

	abs := absInt(dx)
	n := ceilDiv(abs-prefilled, w.CellWidth)
	if dir == DirectionEnd {
		if last := w.LastVisibleColumn(cols); last+n >= cols {
			n = cols - last - 1
		}
	} else if first := w.FirstVisibleColumn(cols); n > first {
		n = first
	}
	n = max(n, 0)

	consumed := prefilled
	if n > 0 {
		consumed += lm.fillColumns(dir, n)
	}

	scrolled := dx
	if abs > consumed {
		scrolled = consumed * sign(dx)
	}
	lm.offsetChildren(-scrolled, 0)

	if n > 0 {
		lm.recycleFilled(dir, n)
	}
	lm.updateFirstVisible()
	return scrolled
}

// ScrollVerticallyBy is the vertical counterpart of ScrollHorizontallyBy.
func (lm *LayoutManager) ScrollVerticallyBy(dy int) int {
	defer metrics.Timer(metrics.ScrollPass)()
	lm.settle()
	if dy == 0 || len(lm.children) == 0 || lm.window.FirstVisiblePosition == NoPosition {
		return 0
	}
	lm.refreshGrid(lm.provider.ItemCount())

	top := lm.children[0]
	bottom := lm.children[len(lm.children)-1]
	if bottom.rect.Bottom()-top.rect.Top < lm.viewport.VerticalSpace() {
		return 0
	}

	cols := lm.grid.TotalColumns()
	w := lm.window
	dir, prefilled := DirectionDown, bottom.rect.Bottom()-(lm.viewport.Height-lm.viewport.Padding.Bottom)
	if dy < 0 {
		dir, prefilled = DirectionUp, lm.viewport.Padding.Top-top.rect.Top
	}
	prefilled = max(prefilled, 0)

	abs := absInt(dy)
	n := ceilDiv(abs-prefilled, w.CellHeight)
	if dir == DirectionDown {
		if last := w.LastVisibleRow(cols); last+n >= lm.grid.TotalRows() {
			n = lm.grid.TotalRows() - last - 1
		}
	} else if first := w.FirstVisibleRow(cols); n > first {
		n = first
	}
	n = max(n, 0)

	consumed := prefilled
	if n > 0 {
		consumed += lm.fillRows(dir, n)
	}

	scrolled := dy
	if abs > consumed {
		scrolled = consumed * sign(dy)
	}
	lm.offsetChildren(0, -scrolled)

	if n > 0 {
		lm.recycleFilled(dir, n)
	}
	lm.updateFirstVisible()
	return scrolled
}

func (lm *LayoutManager) offsetChildren(dx, dy int) {
	if dx == 0 && dy == 0 {
		return
	}
	for _, c := range lm.children {
		c.rect = c.rect.Offset(dx, dy)
		lm.renderer.Place(c.cell, c.rect)
	}
}

// recycleFilled drops the n rows or columns on the edge opposite to a fill.
// Cells are addressed by grid position relative to the window before the
// fill, so partially populated rows are handled.
func (lm *LayoutManager) recycleFilled(dir Direction, n int) {
	cols := lm.grid.TotalColumns()
	w := lm.window
	first := w.FirstVisiblePosition

	var rows, columns, rowFrom, colFrom int
	switch dir {
	case DirectionEnd:
		rows, columns = w.VisibleRows, min(n, w.VisibleColumns)
	case DirectionStart:
		rows, columns = w.VisibleRows, min(n, w.VisibleColumns)
		colFrom = w.VisibleColumns - columns
	case DirectionDown:
		rows, columns = min(n, w.VisibleRows), w.VisibleColumns
	case DirectionUp:
		rows, columns = min(n, w.VisibleRows), w.VisibleColumns
		rowFrom = w.VisibleRows - rows
	default:
		return
	}

	for r := rowFrom + rows - 1; r >= rowFrom; r-- {
		for c := colFrom + columns - 1; c >= colFrom; c-- {
			lm.recycleAt(first + r*cols + c)
		}
	}
}

func (lm *LayoutManager) recycleAt(p int) {
	i, ok := lm.indexOf(p)
	if !ok {
		return
	}
	c := lm.children[i]
	lm.children = append(lm.children[:i], lm.children[i+1:]...)
	lm.renderer.Recycle(c.cell)
}

// updateFirstVisible derives the first visible position from the top-left
// attached cell.
func (lm *LayoutManager) updateFirstVisible() {
	if len(lm.children) == 0 {
		lm.window.FirstVisiblePosition = NoPosition
		return
	}
	c := lm.children[0]
	lm.window.FirstVisiblePosition = RowColToPosition(c.row, c.col, lm.grid.TotalColumns())
}

// DumpCells logs the attached window one row per line.
func (lm *LayoutManager) DumpCells(msg string) {
	if !debug.Enabled() {
		return
	}
	debug.Section(msg)
	debug.Log("first=%d visible=%dx%d cell=%dx%d attached=%d",
		lm.window.FirstVisiblePosition, lm.window.VisibleColumns, lm.window.VisibleRows,
		lm.window.CellWidth, lm.window.CellHeight, len(lm.children))
	for _, line := range lm.dumpLines() {
		debug.Log("%s", line)
	}
}

func (lm *LayoutManager) dumpLines() []string {
	var lines []string
	var b strings.Builder
	top := 0
	for i, c := range lm.children {
		if i > 0 && c.rect.Top != top {
			lines = append(lines, b.String())
			b.Reset()
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		top = c.rect.Top
		fmt.Fprintf(&b, "%d(%d,%d)", c.position, c.rect.Left, c.rect.Top)
	}
	if b.Len() > 0 {
		lines = append(lines, b.String())
	}
	return lines
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
