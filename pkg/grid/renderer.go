package grid

// Cell is an opaque renderable handle produced by a Provider.
type Cell any

// Rect is a cell's placement relative to the viewport origin.
type Rect struct {
	Left, Top     int
	Width, Height int
}

// Right is the exclusive right edge.
func (r Rect) Right() int { return r.Left + r.Width }

// Bottom is the exclusive bottom edge.
func (r Rect) Bottom() int { return r.Top + r.Height }

// Offset returns r moved by (dx, dy).
func (r Rect) Offset(dx, dy int) Rect {
	r.Left += dx
	r.Top += dy
	return r
}

// Intersects reports whether r overlaps o.
func (r Rect) Intersects(o Rect) bool {
	return r.Left < o.Right() && o.Left < r.Right() && r.Top < o.Bottom() && o.Top < r.Bottom()
}

// Provider supplies the items laid out in the grid.
type Provider interface {
	// ItemCount returns the current number of items.
	ItemCount() int
	// CellAt builds or binds a cell for 0 <= position < ItemCount().
	CellAt(position int) Cell
}

// Renderer is the capability a host supplies to display cells.
type Renderer interface {
	// Measure returns the decorated size of a cell.
	Measure(c Cell) (width, height int)
	// Place positions an attached cell.
	Place(c Cell, r Rect)
	// Recycle returns a cell the engine no longer needs to the host's free list.
	Recycle(c Cell)
}

// Attached describes one attached cell.
type Attached struct {
	Cell     Cell
	Position int
	Row      int
	Column   int
	Rect     Rect
}
