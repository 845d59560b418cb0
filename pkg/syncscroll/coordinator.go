package syncscroll

import (
	"slices"

	"github.com/vanderheijden86/sheetview/pkg/debug"
)

// Phase is the coordinator's view of a pane.
type Phase int

const (
	// PhaseIdle means the pane neither drives nor is driven.
	PhaseIdle Phase = iota
	// PhaseScrolling means an accepted touch makes the pane forward its scrolls.
	PhaseScrolling
	// PhaseDriven means another pane is forwarding scrolls into this one.
	PhaseDriven
)

func (p Phase) String() string {
	switch p {
	case PhaseScrolling:
		return "scrolling"
	case PhaseDriven:
		return "driven"
	default:
		return "idle"
	}
}

// point is an accumulated scroll position.
type point struct {
	x, y int
}

type paneState struct {
	phase      Phase
	forwarding bool
	tracked    point
	downAt     point
	driver     Pane
}

// Coordinator arbitrates touches and propagates scrolls between bound panes.
// It is single-threaded like the panes it drives.
type Coordinator struct {
	bindings []Binding
	states   map[Pane]*paneState
}

// New returns a Coordinator with no bindings.
func New() *Coordinator {
	return &Coordinator{states: make(map[Pane]*paneState)}
}

func (c *Coordinator) state(p Pane) *paneState {
	st, ok := c.states[p]
	if !ok {
		st = &paneState{}
		c.states[p] = st
	}
	return st
}

// Bind adds a binding. It returns false for a duplicate or a self binding.
func (c *Coordinator) Bind(from, to Pane, o Orientation) bool {
	if from == nil || to == nil || from == to {
		return false
	}
	b := Binding{From: from, To: to, Orientation: o}
	if slices.Contains(c.bindings, b) {
		return false
	}
	c.bindings = append(c.bindings, b)
	c.state(from)
	c.state(to)
	return true
}

// Unbind removes a binding and reports whether it existed.
func (c *Coordinator) Unbind(from, to Pane, o Orientation) bool {
	b := Binding{From: from, To: to, Orientation: o}
	i := slices.Index(c.bindings, b)
	if i < 0 {
		return false
	}
	c.bindings = slices.Delete(c.bindings, i, i+1)
	if st := c.states[to]; st != nil && st.driver == from {
		settleDriven(st)
	}
	return true
}

// IsBound reports whether the binding exists.
func (c *Coordinator) IsBound(from, to Pane, o Orientation) bool {
	return slices.Contains(c.bindings, Binding{From: from, To: to, Orientation: o})
}

// Bindings returns a copy of the bindings in insertion order.
func (c *Coordinator) Bindings() []Binding {
	return slices.Clone(c.bindings)
}

// Phase returns the coordinator phase of p.
func (c *Coordinator) Phase(p Pane) Phase {
	if st, ok := c.states[p]; ok {
		return st.phase
	}
	return PhaseIdle
}

// Position returns the scroll offset accumulated for p through Scrolled.
func (c *Coordinator) Position(p Pane) (x, y int) {
	if st, ok := c.states[p]; ok {
		return st.tracked.x, st.tracked.y
	}
	return 0, 0
}

// Forwarding reports whether p's scrolls are currently forwarded.
func (c *Coordinator) Forwarding(p Pane) bool {
	st, ok := c.states[p]
	return ok && st.forwarding
}

// related reports the panes bound to or from p.
func (c *Coordinator) related(p Pane) []Pane {
	var out []Pane
	for _, b := range c.bindings {
		switch p {
		case b.From:
			out = append(out, b.To)
		case b.To:
			out = append(out, b.From)
		}
	}
	return out
}

// TouchDown is called when a touch starts on p. It returns false, rejecting
// the touch, while any pane bound to or from p is still moving on its own.
func (c *Coordinator) TouchDown(p Pane) bool {
	for _, other := range c.related(p) {
		if s := other.ScrollState(); s != StateIdle {
			debug.Log("syncscroll: touch rejected, bound pane is %s", s)
			return false
		}
	}
	st := c.state(p)
	st.downAt = st.tracked
	st.forwarding = true
	st.phase = PhaseScrolling
	st.driver = nil
	return true
}

// Scrolled records that p moved by (dx, dy). When p is forwarding, the delta
// is applied to every pane p is bound to, restricted to the binding axis.
// Driven panes never forward, so bindings in both directions cannot loop.
func (c *Coordinator) Scrolled(p Pane, dx, dy int) {
	st := c.state(p)
	st.tracked.x += dx
	st.tracked.y += dy
	if !st.forwarding {
		return
	}
	for _, b := range c.bindings {
		if b.From != p {
			continue
		}
		fx, fy := b.Orientation.Restrict(dx, dy)
		if fx == 0 && fy == 0 {
			continue
		}
		ts := c.state(b.To)
		if ts.forwarding {
			continue
		}
		ts.phase = PhaseDriven
		ts.driver = p
		b.To.ScrollBy(fx, fy)
	}
}

// TouchUp is called when the touch on p ends. Forwarding stops right away
// when p did not move along any of its bound axes since TouchDown; otherwise
// it continues until p reports idle.
func (c *Coordinator) TouchUp(p Pane) {
	st := c.state(p)
	if !st.forwarding {
		return
	}
	moved := false
	for _, b := range c.bindings {
		if b.From != p {
			continue
		}
		if b.Orientation == Horizontal && st.tracked.x != st.downAt.x {
			moved = true
		}
		if b.Orientation == Vertical && st.tracked.y != st.downAt.y {
			moved = true
		}
	}
	if !moved {
		c.release(p, st)
	}
}

// Fling hands p's fling velocity to every pane p is bound to, along the
// binding axis, and stops forwarding p's own scrolls. It always returns false
// so p flings itself.
func (c *Coordinator) Fling(p Pane, vx, vy float64) bool {
	st := c.state(p)
	c.release(p, st)
	for _, b := range c.bindings {
		if b.From != p {
			continue
		}
		fx, fy := b.Orientation.RestrictVelocity(vx, vy)
		if fx == 0 && fy == 0 {
			continue
		}
		b.To.Fling(fx, fy)
	}
	return false
}

// ScrollStateChanged is called when p's own scroll state changes. Reaching
// idle ends any forwarding from p and returns it to PhaseIdle.
func (c *Coordinator) ScrollStateChanged(p Pane, s ScrollState) {
	if s != StateIdle {
		return
	}
	st := c.state(p)
	if st.forwarding {
		c.release(p, st)
		return
	}
	if st.driver == nil || !c.state(st.driver).forwarding {
		settleDriven(st)
	}
}

// CancelFling stops any fling on p and on the panes it is bound to. Calling
// it again has no further effect.
func (c *Coordinator) CancelFling(p Pane) {
	p.StopFling()
	for _, b := range c.bindings {
		if b.From == p {
			b.To.StopFling()
		}
	}
}

// release ends p's forwarding and lets the panes it drove go idle.
func (c *Coordinator) release(p Pane, st *paneState) {
	st.forwarding = false
	st.phase = PhaseIdle
	for _, other := range c.related(p) {
		if ost := c.states[other]; ost != nil && ost.driver == p {
			settleDriven(ost)
		}
	}
}

func settleDriven(st *paneState) {
	st.driver = nil
	if st.phase == PhaseDriven {
		st.phase = PhaseIdle
	}
}
