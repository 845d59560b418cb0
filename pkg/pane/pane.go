// Package pane turns a grid.LayoutManager into an interactive scroll surface.
//
// A Pane translates pointer input (press, drag, release, wheel) into engine
// scrolls, animates flings and smooth scrolls on Tick, and reports every
// applied delta to a syncscroll.Coordinator so bound panes follow.
package pane

import (
	"errors"
	"fmt"
	"time"

	"github.com/vanderheijden86/sheetview/pkg/debug"
	"github.com/vanderheijden86/sheetview/pkg/grid"
	"github.com/vanderheijden86/sheetview/pkg/syncscroll"
)

// ErrBusy is returned when a bound pane is still moving and the coordinator
// refuses a new gesture.
var ErrBusy = errors.New("bound pane is scrolling")

// Config tunes pointer and animation behavior. Velocities are in cells of the
// terminal (characters or lines) per second.
type Config struct {
	// FlingThreshold is the minimum release speed that starts a fling.
	FlingThreshold float64
	// Friction is the exponential decay rate of a fling, per second.
	Friction float64
	// MinVelocity ends a fling once its speed drops below it.
	MinVelocity float64
	// SmoothStep is how many cells a smooth scroll advances per tick.
	SmoothStep int
	// VelocityWindow drops the release velocity when the pointer rested longer
	// than this before being released.
	VelocityWindow time.Duration
}

// DefaultConfig returns the values used by the viewer.
func DefaultConfig() Config {
	return Config{
		FlingThreshold: 40,
		Friction:       4,
		MinVelocity:    4,
		SmoothStep:     1,
		VelocityWindow: 100 * time.Millisecond,
	}
}

type pointer struct {
	active bool
	x, y   int
	at     time.Time
	vx, vy float64
}

// Pane is one scrollable region of the screen.
type Pane struct {
	name   string
	layout *grid.LayoutManager
	coord  *syncscroll.Coordinator
	cfg    Config

	state   syncscroll.ScrollState
	pointer pointer
	fling   *fling
	smooth  *smoothScroll
}

// New wraps lm. coord may be nil for a pane that is not bound to others.
func New(name string, lm *grid.LayoutManager, coord *syncscroll.Coordinator, cfg Config) *Pane {
	if cfg.SmoothStep < 1 {
		cfg.SmoothStep = 1
	}
	return &Pane{name: name, layout: lm, coord: coord, cfg: cfg}
}

// Name returns the pane name used in logs.
func (p *Pane) Name() string { return p.name }

// Layout returns the engine behind the pane.
func (p *Pane) Layout() *grid.LayoutManager { return p.layout }

// ScrollState implements syncscroll.Pane.
func (p *Pane) ScrollState() syncscroll.ScrollState { return p.state }

// Animating reports whether Tick has work to do.
func (p *Pane) Animating() bool { return p.fling != nil || p.smooth != nil }

func (p *Pane) setState(s syncscroll.ScrollState) {
	if p.state == s {
		return
	}
	p.state = s
	if p.coord != nil {
		p.coord.ScrollStateChanged(p, s)
	}
}

// ScrollBy implements syncscroll.Pane. The delta actually applied by the
// engine is reported to the coordinator.
func (p *Pane) ScrollBy(dx, dy int) {
	p.scroll(dx, dy)
}

func (p *Pane) scroll(dx, dy int) (int, int) {
	var ax, ay int
	if dx != 0 {
		ax = p.layout.ScrollHorizontallyBy(dx)
	}
	if dy != 0 {
		ay = p.layout.ScrollVerticallyBy(dy)
	}
	if p.coord != nil && (ax != 0 || ay != 0) {
		p.coord.Scrolled(p, ax, ay)
	}
	return ax, ay
}

// Press starts a drag at (x, y). It returns false when the coordinator
// rejects the touch.
func (p *Pane) Press(x, y int, now time.Time) bool {
	p.halt()
	if p.coord != nil && !p.coord.TouchDown(p) {
		return false
	}
	p.pointer = pointer{active: true, x: x, y: y, at: now}
	p.setState(syncscroll.StateDragging)
	return true
}

// Drag moves the content with the pointer: dragging left scrolls right.
func (p *Pane) Drag(x, y int, now time.Time) {
	if !p.pointer.active {
		return
	}
	dx, dy := p.pointer.x-x, p.pointer.y-y
	p.scroll(dx, dy)

	if dt := now.Sub(p.pointer.at).Seconds(); dt > 0 {
		// Weighted toward the latest sample.
		p.pointer.vx = 0.8*float64(dx)/dt + 0.2*p.pointer.vx
		p.pointer.vy = 0.8*float64(dy)/dt + 0.2*p.pointer.vy
	}
	p.pointer.x, p.pointer.y, p.pointer.at = x, y, now
}

// Release ends a drag. A fast enough release starts a fling on this pane and,
// through the coordinator, on the panes bound to it.
func (p *Pane) Release(x, y int, now time.Time) {
	if !p.pointer.active {
		return
	}
	p.Drag(x, y, now)
	pt := p.pointer
	p.pointer = pointer{}
	if p.coord != nil {
		p.coord.TouchUp(p)
	}

	if now.Sub(pt.at) > p.cfg.VelocityWindow {
		pt.vx, pt.vy = 0, 0
	}
	if speed(pt.vx, pt.vy) >= p.cfg.FlingThreshold {
		if p.coord == nil || !p.coord.Fling(p, pt.vx, pt.vy) {
			if p.Fling(pt.vx, pt.vy) {
				return
			}
		}
	}
	p.setState(syncscroll.StateIdle)
}

// halt stops any animation on p and settles it to idle.
func (p *Pane) halt() {
	p.fling, p.smooth = nil, nil
	p.setState(syncscroll.StateIdle)
}

// Wheel scrolls by whole cells, forwarding to bound panes. It returns ErrBusy
// when a bound pane is still moving.
func (p *Pane) Wheel(columns, rows int) error {
	w := p.layout.Window()
	// Settling to idle releases forwarding, so it must happen before the
	// touch is granted.
	p.halt()
	if p.coord != nil && !p.coord.TouchDown(p) {
		return ErrBusy
	}
	p.scroll(columns*w.CellWidth, rows*w.CellHeight)
	if p.coord != nil {
		p.coord.TouchUp(p)
		p.coord.ScrollStateChanged(p, syncscroll.StateIdle)
	}
	p.setState(syncscroll.StateIdle)
	return nil
}

// SmoothScrollTo animates the pane until position is the top-left cell, or
// until the data bounds stop it. Bound panes follow.
func (p *Pane) SmoothScrollTo(position int) error {
	n := p.layout.Grid().ItemCount
	if position < 0 || position >= n {
		debug.Log("pane %s: cannot smooth scroll to %d, item count is %d", p.name, position, n)
		return fmt.Errorf("%w: %d", grid.ErrPositionOutOfRange, position)
	}
	p.StopFling()
	if p.coord != nil && !p.coord.TouchDown(p) {
		return ErrBusy
	}
	p.smooth = &smoothScroll{target: position}
	p.setState(syncscroll.StateSettling)
	return nil
}

// Tick advances running animations by dt and reports whether any is still
// running.
func (p *Pane) Tick(dt time.Duration) bool {
	if p.fling != nil && !p.fling.step(p, dt) {
		p.fling = nil
		debug.Log("pane %s: fling finished", p.name)
	}
	if p.smooth != nil && !p.smooth.step(p) {
		p.smooth = nil
	}
	if !p.Animating() && p.state == syncscroll.StateSettling {
		p.setState(syncscroll.StateIdle)
	}
	return p.Animating()
}
