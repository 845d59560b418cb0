package syncscroll_test

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/sheetview/pkg/syncscroll"
)

// fakePane moves an integer offset and reports every move to the coordinator.
type fakePane struct {
	name   string
	c      *syncscroll.Coordinator
	state  syncscroll.ScrollState
	x, y   int
	flings [][2]float64
	stops  int
}

func (p *fakePane) ScrollState() syncscroll.ScrollState { return p.state }

func (p *fakePane) ScrollBy(dx, dy int) {
	p.x += dx
	p.y += dy
	p.c.Scrolled(p, dx, dy)
}

func (p *fakePane) Fling(vx, vy float64) bool {
	p.flings = append(p.flings, [2]float64{vx, vy})
	return true
}

func (p *fakePane) StopFling() { p.stops++ }

// sheet binds a body to a column header horizontally and a row header
// vertically, in both directions.
type sheet struct {
	c                    *syncscroll.Coordinator
	body, cols, rowsHead *fakePane
}

func newSheet(t *testing.T) *sheet {
	t.Helper()
	c := syncscroll.New()
	s := &sheet{
		c:        c,
		body:     &fakePane{name: "body", c: c},
		cols:     &fakePane{name: "cols", c: c},
		rowsHead: &fakePane{name: "rows", c: c},
	}
	for _, b := range []syncscroll.Binding{
		{From: s.body, To: s.cols, Orientation: syncscroll.Horizontal},
		{From: s.cols, To: s.body, Orientation: syncscroll.Horizontal},
		{From: s.body, To: s.rowsHead, Orientation: syncscroll.Vertical},
		{From: s.rowsHead, To: s.body, Orientation: syncscroll.Vertical},
	} {
		if !c.Bind(b.From, b.To, b.Orientation) {
			t.Fatalf("Bind(%s -> %s) failed", b.From.(*fakePane).name, b.To.(*fakePane).name)
		}
	}
	return s
}

// drag runs a full touch gesture on p and reports whether it was accepted.
func (s *sheet) drag(p *fakePane, dx, dy int) bool {
	if !s.c.TouchDown(p) {
		return false
	}
	p.state = syncscroll.StateDragging
	s.c.ScrollStateChanged(p, p.state)
	p.ScrollBy(dx, dy)
	s.c.TouchUp(p)
	p.state = syncscroll.StateIdle
	s.c.ScrollStateChanged(p, p.state)
	return true
}

func TestBindRejectsDuplicatesAndSelf(t *testing.T) {
	c := syncscroll.New()
	a := &fakePane{name: "a", c: c}
	b := &fakePane{name: "b", c: c}

	tests := []struct {
		name     string
		from, to syncscroll.Pane
		o        syncscroll.Orientation
		want     bool
	}{
		{"first binding", a, b, syncscroll.Horizontal, true},
		{"duplicate", a, b, syncscroll.Horizontal, false},
		{"other axis", a, b, syncscroll.Vertical, true},
		{"reverse", b, a, syncscroll.Horizontal, true},
		{"self", a, a, syncscroll.Horizontal, false},
		{"nil target", a, nil, syncscroll.Horizontal, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Bind(tt.from, tt.to, tt.o); got != tt.want {
				t.Errorf("Bind() = %v, want %v", got, tt.want)
			}
		})
	}
	if n := len(c.Bindings()); n != 3 {
		t.Errorf("len(Bindings()) = %d, want 3", n)
	}

	if !c.Unbind(a, b, syncscroll.Horizontal) {
		t.Fatal("Unbind of an existing binding returned false")
	}
	if c.IsBound(a, b, syncscroll.Horizontal) {
		t.Error("binding still present after Unbind")
	}
	if c.Unbind(a, b, syncscroll.Horizontal) {
		t.Error("second Unbind returned true")
	}
	if !c.IsBound(a, b, syncscroll.Vertical) {
		t.Error("Unbind removed the binding on the other axis")
	}
}

func TestDragForwardsAlongBindingAxis(t *testing.T) {
	s := newSheet(t)

	if !s.drag(s.body, 30, 12) {
		t.Fatal("touch on idle body was rejected")
	}
	if s.cols.x != 30 || s.cols.y != 0 {
		t.Errorf("column header at (%d,%d), want (30,0)", s.cols.x, s.cols.y)
	}
	if s.rowsHead.x != 0 || s.rowsHead.y != 12 {
		t.Errorf("row header at (%d,%d), want (0,12)", s.rowsHead.x, s.rowsHead.y)
	}
	// The reverse bindings must not echo the forwarded deltas back.
	if s.body.x != 30 || s.body.y != 12 {
		t.Errorf("body at (%d,%d), want (30,12)", s.body.x, s.body.y)
	}

	if !s.drag(s.cols, -10, 0) {
		t.Fatal("touch on idle header was rejected")
	}
	if s.body.x != 20 {
		t.Errorf("body x = %d after dragging the header, want 20", s.body.x)
	}
	if s.rowsHead.x != 0 {
		t.Errorf("row header x = %d, horizontal drag leaked across axes", s.rowsHead.x)
	}
	if x, y := s.c.Position(s.body); x != 20 || y != 12 {
		t.Errorf("Position(body) = (%d,%d), want (20,12)", x, y)
	}
}

func TestTouchRejectedWhileBoundPaneMoves(t *testing.T) {
	s := newSheet(t)
	s.body.state = syncscroll.StateSettling

	if s.c.TouchDown(s.cols) {
		t.Error("touch on header accepted while the body is settling")
	}
	if s.c.TouchDown(s.rowsHead) {
		t.Error("touch on row header accepted while the body is settling")
	}

	s.body.state = syncscroll.StateIdle
	if !s.c.TouchDown(s.cols) {
		t.Error("touch rejected after the body came to rest")
	}
}

func TestTouchUpWithoutMovementReleases(t *testing.T) {
	s := newSheet(t)

	if !s.c.TouchDown(s.body) {
		t.Fatal("touch rejected")
	}
	if s.c.Phase(s.body) != syncscroll.PhaseScrolling {
		t.Errorf("Phase = %v, want scrolling", s.c.Phase(s.body))
	}
	s.c.TouchUp(s.body)
	if s.c.Forwarding(s.body) {
		t.Error("body still forwarding after a tap")
	}
	if s.c.Phase(s.body) != syncscroll.PhaseIdle {
		t.Errorf("Phase = %v after a tap, want idle", s.c.Phase(s.body))
	}
}

func TestDrivenPanesSettleWithTheirDriver(t *testing.T) {
	s := newSheet(t)

	if !s.c.TouchDown(s.body) {
		t.Fatal("touch rejected")
	}
	s.body.state = syncscroll.StateDragging
	s.body.ScrollBy(5, 0)
	s.c.TouchUp(s.body)

	if !s.c.Forwarding(s.body) {
		t.Error("body stopped forwarding although it moved")
	}
	if got := s.c.Phase(s.cols); got != syncscroll.PhaseDriven {
		t.Errorf("header phase = %v, want driven", got)
	}

	s.body.state = syncscroll.StateIdle
	s.c.ScrollStateChanged(s.body, s.body.state)
	if got := s.c.Phase(s.cols); got != syncscroll.PhaseIdle {
		t.Errorf("header phase = %v after the body settled, want idle", got)
	}
	if s.c.Forwarding(s.body) {
		t.Error("body still forwarding after going idle")
	}
}

func TestFlingRestrictedToBindingAxis(t *testing.T) {
	s := newSheet(t)
	if !s.c.TouchDown(s.body) {
		t.Fatal("touch rejected")
	}

	if s.c.Fling(s.body, 300, -120) {
		t.Error("Fling consumed the gesture; the pane must fling itself")
	}
	if s.c.Forwarding(s.body) {
		t.Error("body still forwarding after the fling was handed over")
	}
	if len(s.cols.flings) != 1 || s.cols.flings[0] != [2]float64{300, 0} {
		t.Errorf("header flings = %v, want [[300 0]]", s.cols.flings)
	}
	if len(s.rowsHead.flings) != 1 || s.rowsHead.flings[0] != [2]float64{0, -120} {
		t.Errorf("row header flings = %v, want [[0 -120]]", s.rowsHead.flings)
	}

	s.c.CancelFling(s.body)
	if s.body.stops != 1 || s.cols.stops != 1 || s.rowsHead.stops != 1 {
		t.Errorf("stops = body %d, cols %d, rows %d, want 1 each", s.body.stops, s.cols.stops, s.rowsHead.stops)
	}
}

func TestFlingAlongOtherAxisNotForwarded(t *testing.T) {
	s := newSheet(t)
	s.c.Fling(s.cols, 0, 500)
	if len(s.body.flings) != 0 {
		t.Errorf("vertical fling of the header reached the body: %v", s.body.flings)
	}
}

func TestHeadersStayInSync(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := newSheet(t)
		panes := []*fakePane{s.body, s.cols, s.rowsHead}

		steps := rapid.IntRange(1, 40).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			p := panes[rapid.IntRange(0, len(panes)-1).Draw(rt, "pane")]
			dx := rapid.IntRange(-50, 50).Draw(rt, "dx")
			dy := rapid.IntRange(-50, 50).Draw(rt, "dy")
			if !s.drag(p, dx, dy) {
				rt.Fatalf("step %d: touch on %s rejected with every pane idle", i, p.name)
			}

			if s.cols.x != s.body.x {
				rt.Fatalf("step %d: header x %d, body x %d", i, s.cols.x, s.body.x)
			}
			if s.rowsHead.y != s.body.y {
				rt.Fatalf("step %d: row header y %d, body y %d", i, s.rowsHead.y, s.body.y)
			}
			for _, q := range panes {
				if s.c.Phase(q) != syncscroll.PhaseIdle {
					rt.Fatalf("step %d: %s left in phase %v", i, q.name, s.c.Phase(q))
				}
			}
		}
	})
}
