package grid

// Direction is the edge a fill pass grows toward.
type Direction int

const (
	DirectionNone Direction = iota
	// DirectionStart adds columns on the left.
	DirectionStart
	// DirectionEnd adds columns on the right.
	DirectionEnd
	// DirectionUp adds rows on top.
	DirectionUp
	// DirectionDown adds rows at the bottom.
	DirectionDown
)

func (d Direction) String() string {
	switch d {
	case DirectionStart:
		return "start"
	case DirectionEnd:
		return "end"
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	default:
		return "none"
	}
}

// Horizontal reports whether the direction adds columns.
func (d Direction) Horizontal() bool {
	return d == DirectionStart || d == DirectionEnd
}

// Axis selects the scroll axis.
type Axis int

const (
	AxisHorizontal Axis = iota
	AxisVertical
)

func (a Axis) String() string {
	if a == AxisVertical {
		return "vertical"
	}
	return "horizontal"
}
