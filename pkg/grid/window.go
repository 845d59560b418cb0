package grid

// Insets are padding around a viewport, in character cells.
type Insets struct {
	Left, Top, Right, Bottom int
}

// Viewport is the fixed-size area a LayoutManager fills.
type Viewport struct {
	Width   int
	Height  int
	Padding Insets
}

// HorizontalSpace is the width available to cells.
func (v Viewport) HorizontalSpace() int {
	return v.Width - v.Padding.Left - v.Padding.Right
}

// VerticalSpace is the height available to cells.
func (v Viewport) VerticalSpace() int {
	return v.Height - v.Padding.Top - v.Padding.Bottom
}

// Window is the rectangle of the grid currently materialized.
type Window struct {
	FirstVisiblePosition int
	VisibleColumns       int
	VisibleRows          int
	CellWidth            int
	CellHeight           int
}

// VisibleCellCount is the number of slots in the window.
func (w Window) VisibleCellCount() int {
	return w.VisibleColumns * w.VisibleRows
}

// FirstVisibleRow is the grid row of the top-left slot.
func (w Window) FirstVisibleRow(totalColumns int) int {
	row, _ := PositionToRowCol(w.FirstVisiblePosition, totalColumns)
	return row
}

// FirstVisibleColumn is the grid column of the top-left slot.
func (w Window) FirstVisibleColumn(totalColumns int) int {
	_, col := PositionToRowCol(w.FirstVisiblePosition, totalColumns)
	return col
}

// LastVisibleRow is the grid row of the bottom slots.
func (w Window) LastVisibleRow(totalColumns int) int {
	return w.FirstVisibleRow(totalColumns) + w.VisibleRows - 1
}

// LastVisibleColumn is the grid column of the right-most slots.
func (w Window) LastVisibleColumn(totalColumns int) int {
	return w.FirstVisibleColumn(totalColumns) + w.VisibleColumns - 1
}

// PositionOfIndex maps a row-major slot index inside the window to its
// absolute grid position.
func (w Window) PositionOfIndex(cellIndex, totalColumns int) int {
	if w.VisibleColumns <= 0 {
		return NoPosition
	}
	row := cellIndex / w.VisibleColumns
	col := cellIndex % w.VisibleColumns
	return w.FirstVisiblePosition + row*totalColumns + col
}

// ContainsRowCol reports whether a grid coordinate falls inside the window.
func (w Window) ContainsRowCol(row, col, totalColumns int) bool {
	fr := w.FirstVisibleRow(totalColumns)
	fc := w.FirstVisibleColumn(totalColumns)
	return row >= fr && row < fr+w.VisibleRows && col >= fc && col < fc+w.VisibleColumns
}

// Resize recomputes the visible counts as what fits in the viewport plus one
// row and column of overscan, clamped to the grid.
func (w *Window) Resize(v Viewport, totalColumns, totalRows int) {
	if w.CellWidth <= 0 || w.CellHeight <= 0 {
		w.VisibleColumns, w.VisibleRows = 0, 0
		return
	}

	w.VisibleColumns = ceilDiv(max(v.HorizontalSpace(), 0), w.CellWidth) + 1
	if w.VisibleColumns > totalColumns {
		w.VisibleColumns = totalColumns
	}

	w.VisibleRows = ceilDiv(max(v.VerticalSpace(), 0), w.CellHeight) + 1
	if w.VisibleRows > totalRows {
		w.VisibleRows = totalRows
	}
}
