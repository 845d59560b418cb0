package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/sheetview/pkg/grid"
)

// paint selects the style a canvas cell is drawn with.
type paint uint8

const (
	paintBody paint = iota
	paintHeader
	paintSelected
	paintCorner
	numPaints
)

// wideTail marks the second column of a double-width rune.
const wideTail rune = -1

// canvas is a character grid the panes draw into before it is turned into
// styled lines.
type canvas struct {
	width, height int
	runes         []rune
	paints        []paint
}

func newCanvas(width, height int) *canvas {
	width, height = max(width, 0), max(height, 0)
	c := &canvas{
		width:  width,
		height: height,
		runes:  make([]rune, width*height),
		paints: make([]paint, width*height),
	}
	for i := range c.runes {
		c.runes[i] = ' '
	}
	return c
}

// fill paints r, clipped to clip and to the canvas, with blanks.
func (c *canvas) fill(r, clip grid.Rect, p paint) {
	left, right := max(r.Left, clip.Left, 0), min(r.Right(), clip.Right(), c.width)
	top, bottom := max(r.Top, clip.Top, 0), min(r.Bottom(), clip.Bottom(), c.height)
	for y := top; y < bottom; y++ {
		for x := left; x < right; x++ {
			c.runes[y*c.width+x] = ' '
			c.paints[y*c.width+x] = p
		}
	}
}

// text writes s starting at (x, y) and stops at limit. Runes that fall
// outside clip are dropped; a wide rune straddling an edge is dropped whole.
func (c *canvas) text(x, y, limit int, s string, clip grid.Rect) {
	if y < max(clip.Top, 0) || y >= min(clip.Bottom(), c.height) {
		return
	}
	left, right := max(clip.Left, 0), min(limit, clip.Right(), c.width)
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x+w > right {
			return
		}
		if x >= left {
			i := y*c.width + x
			c.runes[i] = r
			if w == 2 {
				c.runes[i+1] = wideTail
			}
		}
		x += w
	}
}

// cell draws a pane cell: its background and its text with one column of
// right padding.
func (c *canvas) cell(r, clip grid.Rect, s string, p paint) {
	c.fill(r, clip, p)
	c.text(r.Left, r.Top, r.Right()-1, s, clip)
}

// lines renders the canvas, grouping runs of the same paint into one styled
// segment.
func (c *canvas) lines(styles [numPaints]lipgloss.Style) []string {
	out := make([]string, c.height)
	var run strings.Builder
	for y := 0; y < c.height; y++ {
		var line strings.Builder
		row := y * c.width
		for x := 0; x < c.width; {
			p := c.paints[row+x]
			run.Reset()
			for x < c.width && c.paints[row+x] == p {
				if r := c.runes[row+x]; r != wideTail {
					run.WriteRune(r)
				}
				x++
			}
			line.WriteString(styles[p].Render(run.String()))
		}
		out[y] = line.String()
	}
	return out
}

// plain returns row y without styling, for tests and logs.
func (c *canvas) plain(y int) string {
	var b strings.Builder
	for _, r := range c.runes[y*c.width : (y+1)*c.width] {
		if r != wideTail {
			b.WriteRune(r)
		}
	}
	return b.String()
}
