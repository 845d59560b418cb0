// Package export writes static snapshots of the visible part of a sheet.
//
// A snapshot is built from the cells the grid engine has materialized, so
// what gets exported is exactly what the panes show: column headers, row
// headers and the body window, clipped to their viewports.
package export

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	"github.com/ajstarks/svgo"
	"github.com/mattn/go-runewidth"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/sheetview/pkg/grid"
	"github.com/vanderheijden86/sheetview/pkg/metrics"
)

// CellKind selects how a snapshot cell is drawn.
type CellKind int

const (
	KindBody CellKind = iota
	KindColumnHeader
	KindRowHeader
)

// SnapshotCell is one clipped cell, in terminal character units.
type SnapshotCell struct {
	Rect     grid.Rect
	Text     string
	Kind     CellKind
	Selected bool
}

// Snapshot is a character-cell picture of the panes.
type Snapshot struct {
	Title   string
	Summary string
	// Width and Height are the picture size in characters.
	Width, Height int
	Cells         []SnapshotCell
}

// AddPane appends the attached cells of lm, offset by the pane origin and
// clipped to its viewport. label supplies each cell's text by position.
func (s *Snapshot) AddPane(lm *grid.LayoutManager, originX, originY int, kind CellKind, label func(position int) string) {
	vp := lm.Viewport()
	bounds := grid.Rect{Left: originX, Top: originY, Width: vp.Width, Height: vp.Height}
	for _, a := range lm.Attached() {
		if a.Position == grid.NoPosition {
			continue
		}
		r, ok := clip(a.Rect.Offset(originX, originY), bounds)
		if !ok {
			continue
		}
		s.Cells = append(s.Cells, SnapshotCell{Rect: r, Text: label(a.Position), Kind: kind})
	}
	s.Width = max(s.Width, bounds.Right())
	s.Height = max(s.Height, bounds.Bottom())
}

// Select marks the cell whose top-left corner is at (x, y).
func (s *Snapshot) Select(x, y int) {
	for i := range s.Cells {
		c := &s.Cells[i]
		if c.Kind == KindBody && c.Rect.Left <= x && x < c.Rect.Right() && c.Rect.Top <= y && y < c.Rect.Bottom() {
			c.Selected = true
		}
	}
}

func clip(r, bounds grid.Rect) (grid.Rect, bool) {
	if !r.Intersects(bounds) {
		return grid.Rect{}, false
	}
	left := max(r.Left, bounds.Left)
	top := max(r.Top, bounds.Top)
	right := min(r.Right(), bounds.Right())
	bottom := min(r.Bottom(), bounds.Bottom())
	return grid.Rect{Left: left, Top: top, Width: right - left, Height: bottom - top}, true
}

// Options controls snapshot export.
type Options struct {
	Path   string // Output path; format inferred from extension when Format empty
	Format string // "svg" or "png" (case-insensitive)
}

// ResolveFormat returns the output format and path, inferring one from the
// other. A path without extension gets the format's, ".svg" by default.
func ResolveFormat(path, format string) (string, string, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".svg":
			format = "svg"
		case ".png":
			format = "png"
		default:
			format = "svg"
		}
	}
	if format != "svg" && format != "png" {
		return "", "", fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	if path == "" {
		return "", "", fmt.Errorf("output path is required")
	}
	if filepath.Ext(path) == "" {
		path += "." + format
	}
	return format, path, nil
}

// Save renders snap to opts.Path as SVG or PNG.
func Save(snap Snapshot, opts Options) error {
	defer metrics.Timer(metrics.Export)()

	if len(snap.Cells) == 0 {
		return fmt.Errorf("no cells to export")
	}
	format, path, err := ResolveFormat(opts.Path, opts.Format)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	switch format {
	case "png":
		return renderPNG(path, snap)
	default:
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := RenderSVG(file, snap); err != nil {
			file.Close()
			return err
		}
		return file.Close()
	}
}

// --- geometry --------------------------------------------------------------

const (
	charW  = 7  // basicfont.Face7x13 advance
	lineH  = 16 // 13px glyphs plus leading
	margin = 16
	titleH = 40
)

type box struct {
	x, y, w, h int
}

type frame struct {
	width, height int
	top           int
}

func frameOf(snap Snapshot) frame {
	f := frame{width: 2*margin + snap.Width*charW, top: margin}
	if snap.Title != "" || snap.Summary != "" {
		f.top += titleH
	}
	f.height = f.top + snap.Height*lineH + margin
	return f
}

func (f frame) box(r grid.Rect) box {
	return box{x: margin + r.Left*charW, y: f.top + r.Top*lineH, w: r.Width * charW, h: r.Height * lineH}
}

func cellText(c SnapshotCell) string {
	// One character of padding on the right keeps neighbors apart.
	return runewidth.Truncate(c.Text, max(c.Rect.Width-1, 0), "")
}

// --- colors ----------------------------------------------------------------

var (
	colorBackdrop = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	colorHeaderBG = color.RGBA{0xe3, 0xe8, 0xf0, 0xff}
	colorBody     = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorSelected = color.RGBA{0xff, 0xf3, 0xe0, 0xff}
	colorStroke   = color.RGBA{0xcf, 0xd8, 0xdc, 0xff}
	colorText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}
)

func fillColor(c SnapshotCell) color.RGBA {
	switch {
	case c.Selected:
		return colorSelected
	case c.Kind != KindBody:
		return colorHeaderBG
	default:
		return colorBody
	}
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// --- renderers -------------------------------------------------------------

func renderPNG(path string, snap Snapshot) error {
	f := frameOf(snap)
	dc := gg.NewContext(f.width, f.height)
	dc.SetColor(colorBackdrop)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	if snap.Title != "" {
		dc.SetColor(colorText)
		dc.DrawStringAnchored(snap.Title, margin, margin+8, 0, 0.5)
	}
	if snap.Summary != "" {
		dc.SetColor(colorSubtle)
		dc.DrawStringAnchored(snap.Summary, margin, margin+26, 0, 0.5)
	}

	dc.SetLineWidth(1)
	for _, c := range snap.Cells {
		b := f.box(c.Rect)
		dc.SetColor(fillColor(c))
		dc.DrawRectangle(float64(b.x), float64(b.y), float64(b.w), float64(b.h))
		dc.Fill()
		dc.SetColor(colorStroke)
		dc.DrawRectangle(float64(b.x), float64(b.y), float64(b.w), float64(b.h))
		dc.Stroke()

		dc.SetColor(colorText)
		dc.DrawStringAnchored(cellText(c), float64(b.x+charW/2), float64(b.y+lineH/2), 0, 0.5)
	}

	return dc.SavePNG(path)
}

// RenderSVG writes snap as an SVG document to w.
func RenderSVG(w io.Writer, snap Snapshot) error {
	f := frameOf(snap)
	canvas := svg.New(w)
	canvas.Start(f.width, f.height)
	canvas.Rect(0, 0, f.width, f.height, fmt.Sprintf("fill:%s", css(colorBackdrop)))

	if snap.Title != "" {
		canvas.Text(margin, margin+12, snap.Title,
			fmt.Sprintf("fill:%s;font-size:14px;font-family:monospace;font-weight:bold", css(colorText)))
	}
	if snap.Summary != "" {
		canvas.Text(margin, margin+30, snap.Summary,
			fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorSubtle)))
	}

	for _, c := range snap.Cells {
		b := f.box(c.Rect)
		canvas.Rect(b.x, b.y, b.w, b.h,
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", css(fillColor(c)), css(colorStroke)))
		if text := cellText(c); text != "" {
			weight := "normal"
			if c.Kind != KindBody {
				weight = "bold"
			}
			canvas.Text(b.x+charW/2, b.y+lineH-4, text,
				fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace;font-weight:%s", css(colorText), weight))
		}
	}

	canvas.End()
	return nil
}
