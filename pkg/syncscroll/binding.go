// Package syncscroll keeps independently scrollable panes in lock-step.
//
// A Coordinator holds a set of directed bindings between panes. While the
// user drags a pane, its scroll deltas are forwarded to every pane it is
// bound to, restricted to the binding's axis. A pane can only be touched
// while every pane it is bound with is at rest, which keeps two panes from
// driving each other.
package syncscroll

// Orientation is the axis a binding propagates.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Restrict keeps only the component of (dx, dy) along o.
func (o Orientation) Restrict(dx, dy int) (int, int) {
	if o == Vertical {
		return 0, dy
	}
	return dx, 0
}

// RestrictVelocity keeps only the component of (vx, vy) along o.
func (o Orientation) RestrictVelocity(vx, vy float64) (float64, float64) {
	if o == Vertical {
		return 0, vy
	}
	return vx, 0
}

// ScrollState is a pane's own scroll activity.
type ScrollState int

const (
	StateIdle ScrollState = iota
	// StateDragging means the user is moving the pane.
	StateDragging
	// StateSettling means the pane is flinging or smooth scrolling.
	StateSettling
)

func (s ScrollState) String() string {
	switch s {
	case StateDragging:
		return "dragging"
	case StateSettling:
		return "settling"
	default:
		return "idle"
	}
}

// Pane is a scrollable surface the coordinator can drive.
type Pane interface {
	ScrollState() ScrollState
	// ScrollBy scrolls programmatically; implementations report the applied
	// delta back through Coordinator.Scrolled.
	ScrollBy(dx, dy int)
	// Fling starts a fling and reports whether the pane handled it.
	Fling(vx, vy float64) bool
	// StopFling halts a running fling. It is a no-op when none is running.
	StopFling()
}

// Binding forwards From's scrolling along Orientation to To. Two bindings
// are equal when all three fields are.
type Binding struct {
	From        Pane
	To          Pane
	Orientation Orientation
}
