package grid

import (
	"sort"

	"github.com/vanderheijden86/sheetview/pkg/metrics"
)

// fillState is the cursor of a directional fill.
type fillState struct {
	direction     Direction
	startPosition int
	rowsToFill    int
	colsToFill    int
	// skipped rows or columns are never materialized; they would be recycled
	// by the same scroll that created them.
	skipped int

	row, col  int
	left, top int
	lineStart int
}

func (fs *fillState) position(totalColumns int) int {
	return fs.startPosition + fs.col + fs.row*totalColumns
}

// fillColumns materializes n columns on the edge given by dir for every
// window row and returns the width they add.
func (lm *LayoutManager) fillColumns(dir Direction, n int) int {
	defer metrics.Timer(metrics.FillPass)()

	cols := lm.grid.TotalColumns()
	w := lm.window
	start := lm.children[0]
	end := lm.endOfFirstRow()

	fs := fillState{direction: dir, rowsToFill: w.VisibleRows}
	fill := min(n, w.VisibleColumns)
	fs.skipped = n - fill
	fs.colsToFill = fill

	switch dir {
	case DirectionEnd:
		fs.startPosition = w.FirstVisiblePosition + w.VisibleColumns + fs.skipped
		fs.left = end.rect.Right() + fs.skipped*w.CellWidth
	case DirectionStart:
		fs.startPosition = max(w.FirstVisiblePosition-n, 0)
		fs.left = start.rect.Left - n*w.CellWidth
	}
	fs.top = start.rect.Top
	fs.lineStart = fs.left
	lm.fill = fs

	consumed := fs.skipped * w.CellWidth
	for lm.fill.row < lm.fill.rowsToFill && lm.fill.col < lm.fill.colsToFill &&
		lm.fill.position(cols) <= lm.grid.ItemCount-1 {
		width, height, row, _ := lm.fillChunk(cols)
		if row == 0 {
			consumed += width
		}
		if lm.fill.col == 0 {
			lm.fill.left = lm.fill.lineStart
			lm.fill.top += height
		} else {
			lm.fill.left += width
		}
	}
	return consumed
}

// fillRows materializes n rows on the edge given by dir across the window's
// columns and returns the height they add.
func (lm *LayoutManager) fillRows(dir Direction, n int) int {
	defer metrics.Timer(metrics.FillPass)()

	cols := lm.grid.TotalColumns()
	w := lm.window
	first := lm.children[0]
	last := lm.children[len(lm.children)-1]

	fs := fillState{direction: dir, colsToFill: w.VisibleColumns}
	fill := min(n, w.VisibleRows)
	fs.skipped = n - fill
	fs.rowsToFill = fill

	switch dir {
	case DirectionDown:
		fs.startPosition = w.FirstVisiblePosition + (w.VisibleRows+fs.skipped)*cols
		fs.top = last.rect.Bottom() + fs.skipped*w.CellHeight
	case DirectionUp:
		fs.startPosition = max(w.FirstVisiblePosition-n*cols, 0)
		fs.top = first.rect.Top - n*w.CellHeight
	}
	fs.left = first.rect.Left
	fs.lineStart = fs.left
	lm.fill = fs

	consumed := fs.skipped * w.CellHeight
	for lm.fill.row < lm.fill.rowsToFill && lm.fill.col < lm.fill.colsToFill &&
		lm.fill.position(cols) <= lm.grid.ItemCount-1 {
		width, height, _, col := lm.fillChunk(cols)
		if col == 0 {
			consumed += height
		}
		if lm.fill.col == 0 {
			lm.fill.left = lm.fill.lineStart
			lm.fill.top += height
		} else {
			lm.fill.left += width
		}
	}
	return consumed
}

// fillChunk attaches the cell under the fill cursor, advances the cursor and
// returns the cell's size and the fill row and column it was placed on.
func (lm *LayoutManager) fillChunk(cols int) (width, height, row, col int) {
	fs := &lm.fill
	p := fs.position(cols)
	row, col = fs.row, fs.col

	c, ok := lm.pool.Get(p)
	if ok {
		metrics.CellPool.Hit()
	} else {
		metrics.CellPool.Miss()
		cell := lm.provider.CellAt(p)
		c = &child{cell: cell, position: p, layoutPosition: p}
	}
	width, height = lm.renderer.Measure(c.cell)
	if width <= 0 || height <= 0 {
		width, height = lm.window.CellWidth, lm.window.CellHeight
	}
	c.rect = Rect{Left: fs.left, Top: fs.top, Width: width, Height: height}
	c.row, c.col = PositionToRowCol(p, cols)
	lm.renderer.Place(c.cell, c.rect)
	lm.insertChild(c)

	fs.col++
	if fs.col >= fs.colsToFill {
		fs.col = 0
		fs.row++
	}
	return width, height, row, col
}

// insertChild attaches c keeping children ordered by position.
func (lm *LayoutManager) insertChild(c *child) {
	i := sort.Search(len(lm.children), func(i int) bool { return lm.children[i].position >= c.position })
	lm.children = append(lm.children, nil)
	copy(lm.children[i+1:], lm.children[i:])
	lm.children[i] = c
}

// endOfFirstRow returns the right-most cell of the top window row.
func (lm *LayoutManager) endOfFirstRow() *child {
	top := lm.children[0].rect.Top
	end := lm.children[0]
	for _, c := range lm.children[1:] {
		if c.rect.Top != top {
			break
		}
		end = c
	}
	return end
}
