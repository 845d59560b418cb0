// Package grid implements a virtualized, uniformly sized two-dimensional grid.
//
// A LayoutManager materializes only the cells inside its window (the visible
// area plus one row and one column of overscan), recycles cells that scroll
// out of the window, and reconciles attached cells with data-set mutations
// through a predictive pass followed by a final pass.
//
// Cells are opaque to the engine. A Provider creates them and a Renderer
// measures, places and recycles them, so the same engine drives terminal
// panes, snapshot exports and tests.
package grid

// NoPosition marks a slot or lookup that has no backing item.
const NoPosition = -1

// PositionToRowCol maps a linear position to its grid coordinate.
func PositionToRowCol(position, totalColumns int) (row, col int) {
	if totalColumns <= 0 {
		return 0, 0
	}
	return position / totalColumns, position % totalColumns
}

// RowColToPosition maps a grid coordinate back to its linear position.
func RowColToPosition(row, col, totalColumns int) int {
	return row*totalColumns + col
}

// Grid describes N items arranged in rows of a fixed column count.
type Grid struct {
	ItemCount int
	Columns   int
}

// TotalColumns is the configured column count clamped to the item count.
func (g Grid) TotalColumns() int {
	if g.ItemCount < g.Columns {
		return g.ItemCount
	}
	return g.Columns
}

// TotalRows is ceil(ItemCount / TotalColumns), or 0 for an empty grid.
func (g Grid) TotalRows() int {
	cols := g.TotalColumns()
	if g.ItemCount <= 0 || cols <= 0 {
		return 0
	}
	rows := g.ItemCount / cols
	if g.ItemCount%cols != 0 {
		rows++
	}
	return rows
}

// Contains reports whether position addresses an item.
func (g Grid) Contains(position int) bool {
	return position >= 0 && position < g.ItemCount
}

// PositionOf returns the position at (row, col), or NoPosition when the
// coordinate lies outside the grid or past the last item.
func (g Grid) PositionOf(row, col int) int {
	cols := g.TotalColumns()
	if row < 0 || col < 0 || col >= cols {
		return NoPosition
	}
	p := RowColToPosition(row, col, cols)
	if !g.Contains(p) {
		return NoPosition
	}
	return p
}

func ceilDiv(a, b int) int {
	if b <= 0 || a <= 0 {
		return 0
	}
	n := a / b
	if a%b != 0 {
		n++
	}
	return n
}
