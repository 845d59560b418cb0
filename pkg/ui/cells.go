package ui

import (
	"strconv"
	"sync"

	"github.com/vanderheijden86/sheetview/internal/datasource"
	"github.com/vanderheijden86/sheetview/pkg/grid"
	"github.com/vanderheijden86/sheetview/pkg/metrics"
)

// sheetData is shared by the three panes so a reload is seen by all of them.
type sheetData struct {
	sheet *datasource.Sheet
	// columnsOverride fixes the column count; 0 follows the sheet.
	columnsOverride int
}

// columns returns the number of columns laid out, at least 1.
func (d *sheetData) columns() int {
	if d.columnsOverride > 0 {
		return d.columnsOverride
	}
	return max(d.sheet.ColumnCount(), 1)
}

func (d *sheetData) rows() int {
	return d.sheet.RowCount()
}

// cellView is the handle the grid engine attaches. Its text is bound when
// the provider hands it out and rebound when the cell is invalidated.
type cellView struct {
	text     string
	rect     grid.Rect
	recycled bool
}

// free is the recycled cell list shared by every pane.
var free = sync.Pool{}

func newCellView(text string) *cellView {
	if c, ok := free.Get().(*cellView); ok {
		metrics.CellFreeList.Hit()
		*c = cellView{text: text}
		return c
	}
	metrics.CellFreeList.Miss()
	return &cellView{text: text}
}

// cellSource is both the grid.Provider and the grid.Renderer of one pane.
type cellSource struct {
	count         func() int
	text          func(position int) string
	width, height int
}

// ItemCount implements grid.Provider.
func (s *cellSource) ItemCount() int { return s.count() }

// CellAt implements grid.Provider.
func (s *cellSource) CellAt(position int) grid.Cell {
	return newCellView(s.text(position))
}

// Measure implements grid.Renderer.
func (s *cellSource) Measure(grid.Cell) (int, int) { return s.width, s.height }

// Place implements grid.Renderer.
func (s *cellSource) Place(c grid.Cell, r grid.Rect) {
	c.(*cellView).rect = r
}

// Recycle implements grid.Renderer.
func (s *cellSource) Recycle(c grid.Cell) {
	cv := c.(*cellView)
	if cv.recycled {
		return
	}
	cv.recycled = true
	free.Put(cv)
}

// bodySource lays the sheet out row-major: position p is row p/cols,
// column p%cols.
func bodySource(d *sheetData, cw, ch int) *cellSource {
	return &cellSource{
		count: func() int { return d.rows() * d.columns() },
		text: func(p int) string {
			row, col := grid.PositionToRowCol(p, d.columns())
			return d.sheet.Cell(row, col)
		},
		width:  cw,
		height: ch,
	}
}

func columnHeaderSource(d *sheetData, cw, ch int) *cellSource {
	return &cellSource{
		count:  d.columns,
		text:   func(p int) string { return d.sheet.Header(p) },
		width:  cw,
		height: ch,
	}
}

func rowHeaderSource(d *sheetData, rhw, ch int) *cellSource {
	return &cellSource{
		count:  d.rows,
		text:   func(p int) string { return strconv.Itoa(p + 1) },
		width:  rhw,
		height: ch,
	}
}
