package pane

import (
	"math"
	"time"

	"github.com/vanderheijden86/sheetview/pkg/syncscroll"
)

// fling decays a velocity exponentially and scrolls by the distance covered
// each tick. Fractions of a cell carry over to the next tick.
type fling struct {
	vx, vy float64
	fx, fy float64
}

// Fling implements syncscroll.Pane. It returns false when the velocity is
// too small to move.
func (p *Pane) Fling(vx, vy float64) bool {
	f := &fling{vx: vx, vy: vy}
	if !f.trim(p.cfg.MinVelocity) {
		return false
	}
	p.smooth = nil
	p.fling = f
	p.setState(syncscroll.StateSettling)
	return true
}

// StopFling implements syncscroll.Pane.
func (p *Pane) StopFling() {
	if p.fling == nil {
		return
	}
	p.fling = nil
	if p.smooth == nil {
		p.setState(syncscroll.StateIdle)
	}
}

// step reports whether the fling keeps running.
func (f *fling) step(p *Pane, dt time.Duration) bool {
	secs := dt.Seconds()
	if secs <= 0 {
		return true
	}
	f.fx += f.vx * secs
	f.fy += f.vy * secs
	dx, dy := int(f.fx), int(f.fy)
	f.fx -= float64(dx)
	f.fy -= float64(dy)

	ax, ay := p.scroll(dx, dy)
	// The engine stops short at the data bounds.
	if ax != dx {
		f.vx, f.fx = 0, 0
	}
	if ay != dy {
		f.vy, f.fy = 0, 0
	}

	decay := math.Exp(-p.cfg.Friction * secs)
	f.vx *= decay
	f.vy *= decay
	return f.trim(p.cfg.MinVelocity)
}

// trim ends the motion on each axis separately once it is slower than
// minimum, so a pane bound on one axis stops when the driver's motion along
// that axis stops. It reports whether any axis is still moving.
func (f *fling) trim(minimum float64) bool {
	if math.Abs(f.vx) < minimum {
		f.vx, f.fx = 0, 0
	}
	if math.Abs(f.vy) < minimum {
		f.vy, f.fy = 0, 0
	}
	return f.vx != 0 || f.vy != 0
}

type smoothScroll struct {
	target int
}

// step moves up to SmoothStep cells toward the target on each axis and
// finally aligns the target cell with the padded origin. It reports whether
// the scroll keeps running.
func (s *smoothScroll) step(p *Pane) bool {
	lm := p.layout
	vx, vy, ok := lm.ScrollVectorForPosition(s.target)
	if !ok {
		return false
	}
	w := lm.Window()
	if vx != 0 || vy != 0 {
		dx := vx * p.cfg.SmoothStep * w.CellWidth
		dy := vy * p.cfg.SmoothStep * w.CellHeight
		ax, ay := p.scroll(dx, dy)
		return ax != 0 || ay != 0
	}

	r, ok := lm.RectOf(s.target)
	if !ok {
		return false
	}
	pad := lm.Viewport().Padding
	p.scroll(r.Left-pad.Left, r.Top-pad.Top)
	return false
}

func speed(vx, vy float64) float64 {
	return math.Hypot(vx, vy)
}
