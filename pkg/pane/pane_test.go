package pane_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vanderheijden86/sheetview/pkg/grid"
	"github.com/vanderheijden86/sheetview/pkg/pane"
	"github.com/vanderheijden86/sheetview/pkg/syncscroll"
	"github.com/vanderheijden86/sheetview/pkg/testutil"
)

const frame = 16 * time.Millisecond

var epoch = time.Unix(0, 0)

// sheet is a 10x10 body with a column header and a row header, bound both
// ways per axis.
type sheet struct {
	coord               *syncscroll.Coordinator
	body, cols, rowHead *pane.Pane
}

func newSheet(t *testing.T) *sheet {
	t.Helper()
	coord := syncscroll.New()
	bodyLM, _, _ := testutil.NewLayout(100, 10, 10, 10, 50, 30)
	colsLM, _, _ := testutil.NewLayout(10, 10, 10, 10, 50, 10)
	rowsLM, _, _ := testutil.NewLayout(10, 1, 10, 10, 10, 30)

	s := &sheet{
		coord:   coord,
		body:    pane.New("body", bodyLM, coord, pane.DefaultConfig()),
		cols:    pane.New("cols", colsLM, coord, pane.DefaultConfig()),
		rowHead: pane.New("rows", rowsLM, coord, pane.DefaultConfig()),
	}
	coord.Bind(s.body, s.cols, syncscroll.Horizontal)
	coord.Bind(s.cols, s.body, syncscroll.Horizontal)
	coord.Bind(s.body, s.rowHead, syncscroll.Vertical)
	coord.Bind(s.rowHead, s.body, syncscroll.Vertical)
	return s
}

func settle(t *testing.T, panes ...*pane.Pane) {
	t.Helper()
	for i := 0; i < 1000; i++ {
		running := false
		for _, p := range panes {
			if p.Tick(frame) {
				running = true
			}
		}
		if !running {
			return
		}
	}
	t.Fatal("animations did not settle")
}

func assertTopLeft(t *testing.T, p *pane.Pane, position, left, top int) {
	t.Helper()
	lm := p.Layout()
	if got := lm.Window().FirstVisiblePosition; got != position {
		t.Fatalf("%s: first visible = %d, want %d", p.Name(), got, position)
	}
	r, ok := lm.RectOf(position)
	if !ok {
		t.Fatalf("%s: position %d not attached", p.Name(), position)
	}
	if r.Left != left || r.Top != top {
		t.Errorf("%s: top-left cell at (%d,%d), want (%d,%d)", p.Name(), r.Left, r.Top, left, top)
	}
}

func TestDragForwardsToHeaders(t *testing.T) {
	s := newSheet(t)

	if !s.body.Press(40, 20, epoch) {
		t.Fatal("press rejected")
	}
	s.body.Drag(15, 5, epoch.Add(time.Second))
	s.body.Release(15, 5, epoch.Add(2*time.Second))

	assertTopLeft(t, s.body, 12, -5, -5)
	assertTopLeft(t, s.cols, 2, -5, 0)
	assertTopLeft(t, s.rowHead, 1, 0, -5)

	for _, p := range []*pane.Pane{s.body, s.cols, s.rowHead} {
		if p.ScrollState() != syncscroll.StateIdle {
			t.Errorf("%s: state %v after a slow release, want idle", p.Name(), p.ScrollState())
		}
		if ph := s.coord.Phase(p); ph != syncscroll.PhaseIdle {
			t.Errorf("%s: phase %v after release, want idle", p.Name(), ph)
		}
	}
}

func TestDragHeaderMovesBody(t *testing.T) {
	s := newSheet(t)

	s.cols.Press(30, 0, epoch)
	s.cols.Drag(10, 3, epoch.Add(time.Second))
	s.cols.Release(10, 3, epoch.Add(2*time.Second))

	// The header has a single row, so the vertical part of the drag is lost.
	// Column 1 stays attached until it is a full cell past the edge.
	assertTopLeft(t, s.cols, 1, -10, 0)
	assertTopLeft(t, s.body, 1, -10, 0)
	assertTopLeft(t, s.rowHead, 0, 0, 0)
}

func TestFastReleaseFlingsBoundPanes(t *testing.T) {
	s := newSheet(t)

	s.body.Press(40, 0, epoch)
	s.body.Drag(20, 0, epoch.Add(50*time.Millisecond))
	s.body.Release(20, 0, epoch.Add(60*time.Millisecond))

	if s.body.ScrollState() != syncscroll.StateSettling {
		t.Fatalf("body state %v after a fast release, want settling", s.body.ScrollState())
	}
	if s.cols.ScrollState() != syncscroll.StateSettling {
		t.Fatalf("header state %v, want settling", s.cols.ScrollState())
	}
	if s.rowHead.ScrollState() != syncscroll.StateIdle {
		t.Errorf("row header state %v, a horizontal fling must not reach it", s.rowHead.ScrollState())
	}
	if s.rowHead.Press(0, 0, epoch) {
		t.Error("row header accepted a touch while the body was flinging")
	}

	settle(t, s.body, s.cols)

	bodyFirst := s.body.Layout().Window().FirstVisiblePosition
	colsFirst := s.cols.Layout().Window().FirstVisiblePosition
	if bodyFirst != colsFirst {
		t.Fatalf("body first column %d, header first column %d", bodyFirst, colsFirst)
	}
	br, _ := s.body.Layout().RectOf(bodyFirst)
	cr, _ := s.cols.Layout().RectOf(colsFirst)
	if br.Left != cr.Left {
		t.Errorf("body left %d, header left %d", br.Left, cr.Left)
	}
	if x, _ := s.coord.Position(s.body); x <= 20 {
		t.Errorf("body scrolled %d, the fling did not move past the drag", x)
	}
	for _, p := range []*pane.Pane{s.body, s.cols} {
		if p.ScrollState() != syncscroll.StateIdle {
			t.Errorf("%s: state %v after settling", p.Name(), p.ScrollState())
		}
	}
}

func TestFlingStopsAtBounds(t *testing.T) {
	lm, _, rec := testutil.NewLayout(39, 39, 10, 10, 100, 10)
	p := pane.New("row", lm, nil, pane.DefaultConfig())

	if !p.Fling(10000, 0) {
		t.Fatal("Fling refused a fast velocity")
	}
	settle(t, p)

	testutil.AssertHealthy(t, lm, rec)
	testutil.AssertFirstVisible(t, lm, 28)
	if p.ScrollState() != syncscroll.StateIdle {
		t.Errorf("state %v after the fling hit the bound", p.ScrollState())
	}
}

func TestFlingBelowMinimumIgnored(t *testing.T) {
	lm, _, _ := testutil.NewLayout(39, 39, 10, 10, 100, 10)
	p := pane.New("row", lm, nil, pane.DefaultConfig())

	if p.Fling(1, 1) {
		t.Error("Fling accepted a velocity below the minimum")
	}
	p.StopFling()
	p.StopFling()
	if p.ScrollState() != syncscroll.StateIdle || p.Animating() {
		t.Error("StopFling without a fling changed the pane")
	}
}

func TestSmoothScrollTo(t *testing.T) {
	lm, _, rec := testutil.NewLayout(39, 39, 10, 10, 100, 10)
	p := pane.New("row", lm, nil, pane.DefaultConfig())

	if err := p.SmoothScrollTo(25); err != nil {
		t.Fatal(err)
	}
	if p.ScrollState() != syncscroll.StateSettling {
		t.Errorf("state %v while smooth scrolling", p.ScrollState())
	}
	settle(t, p)

	assertTopLeft(t, p, 25, 0, 0)
	testutil.AssertHealthy(t, lm, rec)

	err := p.SmoothScrollTo(39)
	if !errors.Is(err, grid.ErrPositionOutOfRange) {
		t.Errorf("SmoothScrollTo(39) error = %v, want ErrPositionOutOfRange", err)
	}
}

func TestSmoothScrollFollowedByHeader(t *testing.T) {
	s := newSheet(t)

	if err := s.body.SmoothScrollTo(33); err != nil {
		t.Fatal(err)
	}
	if !errors.Is(s.cols.Wheel(1, 0), pane.ErrBusy) {
		t.Error("header wheel accepted while the body was smooth scrolling")
	}
	settle(t, s.body)

	assertTopLeft(t, s.body, 33, 0, 0)
	assertTopLeft(t, s.cols, 3, 0, 0)
	assertTopLeft(t, s.rowHead, 3, 0, 0)
}

func TestWheelScrollsWholeCells(t *testing.T) {
	s := newSheet(t)

	if err := s.body.Wheel(1, 2); err != nil {
		t.Fatal(err)
	}
	// The first column step is absorbed by the overscan column.
	assertTopLeft(t, s.body, 10, -10, -10)
	assertTopLeft(t, s.cols, 0, -10, 0)
	assertTopLeft(t, s.rowHead, 1, 0, -10)

	if err := s.rowHead.Wheel(0, -1); err != nil {
		t.Fatal(err)
	}
	assertTopLeft(t, s.body, 10, -10, 0)
	assertTopLeft(t, s.rowHead, 1, 0, 0)
}

func TestDiagonalFlingKeepsPanesAligned(t *testing.T) {
	s := newSheet(t)

	s.coord.Fling(s.body, 30, 30)
	if !s.body.Fling(30, 30) {
		t.Fatal("Fling refused a diagonal velocity")
	}
	settle(t, s.body, s.cols, s.rowHead)

	bx, by := s.coord.Position(s.body)
	cx, _ := s.coord.Position(s.cols)
	_, ry := s.coord.Position(s.rowHead)
	if bx == 0 || by == 0 {
		t.Fatalf("body scrolled (%d,%d), the fling did not move it", bx, by)
	}
	if bx != cx {
		t.Errorf("body scrolled %d across, header %d", bx, cx)
	}
	if by != ry {
		t.Errorf("body scrolled %d down, row header %d", by, ry)
	}
	for _, p := range []*pane.Pane{s.body, s.cols, s.rowHead} {
		if p.ScrollState() != syncscroll.StateIdle {
			t.Errorf("%s: state %v after settling", p.Name(), p.ScrollState())
		}
	}
}

func TestWheelWhileCoastingMovesHeaders(t *testing.T) {
	s := newSheet(t)

	// The body coasts on its own; the headers are idle.
	if !s.body.Fling(30, 30) {
		t.Fatal("Fling refused")
	}
	for i := 0; i < 5; i++ {
		s.body.Tick(frame)
	}
	if !s.body.Animating() {
		t.Fatal("body stopped coasting too early")
	}
	bx, by := s.coord.Position(s.body)
	cx, _ := s.coord.Position(s.cols)
	_, ry := s.coord.Position(s.rowHead)

	if err := s.body.Wheel(1, 1); err != nil {
		t.Fatal(err)
	}
	if s.body.Animating() {
		t.Error("wheel did not stop the fling")
	}

	bx2, by2 := s.coord.Position(s.body)
	cx2, _ := s.coord.Position(s.cols)
	_, ry2 := s.coord.Position(s.rowHead)
	if bx2-bx != 10 || by2-by != 10 {
		t.Fatalf("body moved (%d,%d), want one cell each way", bx2-bx, by2-by)
	}
	if cx2-cx != 10 {
		t.Errorf("header moved %d, want 10", cx2-cx)
	}
	if ry2-ry != 10 {
		t.Errorf("row header moved %d, want 10", ry2-ry)
	}
	if s.coord.Forwarding(s.body) {
		t.Error("body still forwarding after the wheel")
	}
}
