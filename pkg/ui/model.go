// Package ui is the bubbletea front end of sv. It shows a sheet in three
// panes (column headers, row headers and the body), each backed by its own
// grid engine and kept in step by a scroll coordinator.
package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/sheetview/internal/datasource"
	"github.com/vanderheijden86/sheetview/pkg/config"
	"github.com/vanderheijden86/sheetview/pkg/debug"
	"github.com/vanderheijden86/sheetview/pkg/export"
	"github.com/vanderheijden86/sheetview/pkg/grid"
	"github.com/vanderheijden86/sheetview/pkg/metrics"
	"github.com/vanderheijden86/sheetview/pkg/pane"
	"github.com/vanderheijden86/sheetview/pkg/syncscroll"
	"github.com/vanderheijden86/sheetview/pkg/watcher"
)

// footerLines is the status bar plus the help line.
const footerLines = 2

// mode is what the keyboard currently drives.
type mode int

const (
	modeSheet mode = iota
	modeGoTo
	modeHelp
)

// FileChangedMsg is sent when the sheet file changes on disk
type FileChangedMsg struct{}

// sheetLoadedMsg carries the result of a reload.
type sheetLoadedMsg struct {
	sheet *datasource.Sheet
	err   error
}

// tickMsg drives fling and smooth scroll animations.
type tickMsg time.Time

// WatchFileCmd returns a command that waits for file changes and sends FileChangedMsg
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

// Options configures a Model.
type Options struct {
	Config config.Config
	// Source is where the sheet came from; reloads read it again.
	Source datasource.DataSource
	// Watch starts a file watcher on Source.Path.
	Watch bool
}

// Model is the sheet viewer.
type Model struct {
	cfg      config.Config
	source   datasource.DataSource
	data     *sheetData
	reloader *datasource.Reloader
	watcher  *watcher.Watcher

	coord                  *syncscroll.Coordinator
	body, colHead, rowHead *pane.Pane
	bodySrc                *cellSource
	colSrc, rowSrc         *cellSource

	keys  keyMap
	help  help.Model
	goTo  textinput.Model
	mode  mode
	theme Theme

	width, height int
	ready         bool
	helpText      string

	selRow, selCol int
	summary        string

	// active is the pane that accepted the current mouse press.
	active  *pane.Pane
	dragged bool

	ticking  bool
	lastTick time.Time
	now      func() time.Time

	statusMsg     string
	statusIsError bool
}

// New builds the viewer for sheet. The panes are laid out on the first
// WindowSizeMsg (or SetSize).
func New(sheet *datasource.Sheet, opts Options) Model {
	cfg := opts.Config
	cw, ch, rhw := cfg.Grid.CellWidth, cfg.Grid.CellHeight, cfg.Grid.RowHeaderWidth

	data := &sheetData{sheet: sheet, columnsOverride: cfg.Grid.Columns}
	bodySrc := bodySource(data, cw, ch)
	colSrc := columnHeaderSource(data, cw, ch)
	rowSrc := rowHeaderSource(data, rhw, ch)

	bodyLM := grid.NewLayoutManager(bodySrc, bodySrc)
	colLM := grid.NewLayoutManager(colSrc, colSrc)
	rowLM := grid.NewLayoutManager(rowSrc, rowSrc)
	bodyLM.SetTotalColumns(data.columns())
	colLM.SetTotalColumns(data.columns())

	pcfg := pane.DefaultConfig()
	pcfg.FlingThreshold = cfg.Scroll.FlingThreshold
	pcfg.Friction = cfg.Scroll.Friction
	pcfg.MinVelocity = cfg.Scroll.MinVelocity
	pcfg.SmoothStep = cfg.Scroll.SmoothStep

	coord := syncscroll.New()
	body := pane.New("body", bodyLM, coord, pcfg)
	colHead := pane.New("columns", colLM, coord, pcfg)
	rowHead := pane.New("rows", rowLM, coord, pcfg)

	// The body drives both headers; each header drives the body on its axis.
	coord.Bind(body, colHead, syncscroll.Horizontal)
	coord.Bind(body, rowHead, syncscroll.Vertical)
	coord.Bind(colHead, body, syncscroll.Horizontal)
	coord.Bind(rowHead, body, syncscroll.Vertical)

	ti := textinput.New()
	ti.Prompt = "Go to: "
	ti.Placeholder = "B12"
	ti.CharLimit = 32

	m := Model{
		cfg:      cfg,
		source:   opts.Source,
		data:     data,
		reloader: &datasource.Reloader{},
		coord:    coord,
		body:     body,
		colHead:  colHead,
		rowHead:  rowHead,
		bodySrc:  bodySrc,
		colSrc:   colSrc,
		rowSrc:   rowSrc,
		keys:     defaultKeyMap(),
		help:     help.New(),
		goTo:     ti,
		theme:    DefaultTheme(lipgloss.DefaultRenderer(), cfg.UI.Theme),
		now:      time.Now,
	}
	m.refreshSummary()

	if opts.Watch && opts.Source.Path != "" {
		w, err := watcher.NewWatcher(opts.Source.Path,
			watcher.WithDebounceDuration(watcher.DefaultDebounceDuration),
		)
		if err == nil {
			err = w.Start()
		}
		if err != nil {
			debug.Log("watch %s: %v", opts.Source.Path, err)
		} else {
			m.watcher = w
		}
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.watcher != nil {
		return WatchFileCmd(m.watcher)
	}
	return nil
}

// Stop releases the file watcher.
func (m Model) Stop() {
	if m.watcher != nil {
		m.watcher.Stop()
	}
}

// Sheet returns the sheet being shown.
func (m Model) Sheet() *datasource.Sheet { return m.data.sheet }

// Selection returns the selected row and column.
func (m Model) Selection() (row, col int) { return m.selRow, m.selCol }

// Panes returns the body, column header and row header panes.
func (m Model) Panes() (body, columns, rows *pane.Pane) {
	return m.body, m.colHead, m.rowHead
}

type geometry struct {
	rowHeaderWidth int
	headerHeight   int
	bodyWidth      int
	bodyHeight     int
}

func (m Model) geometry() geometry {
	g := geometry{
		rowHeaderWidth: min(m.cfg.Grid.RowHeaderWidth, m.width),
		headerHeight:   min(m.cfg.Grid.CellHeight, m.height),
	}
	g.bodyWidth = max(m.width-g.rowHeaderWidth, 0)
	g.bodyHeight = max(m.height-g.headerHeight-footerLines, 0)
	return g
}

// SetSize resizes the panes to a width x height terminal.
func (m *Model) SetSize(width, height int) {
	m.width, m.height = width, height
	m.help.Width = width
	m.helpText = ""
	g := m.geometry()

	resize := func(p *pane.Pane, w, h int) {
		lm := p.Layout()
		lm.SetViewport(grid.Viewport{Width: w, Height: h})
		if lm.ChildCount() == 0 {
			lm.Layout(grid.PassFinal)
		}
	}
	resize(m.colHead, g.bodyWidth, g.headerHeight)
	resize(m.rowHead, g.rowHeaderWidth, g.bodyHeight)
	resize(m.body, g.bodyWidth, g.bodyHeight)
	m.ready = true
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tickMsg:
		return m.handleTick(time.Time(msg))

	case FileChangedMsg:
		cmds := []tea.Cmd{m.reloadCmd()}
		if m.watcher != nil {
			cmds = append(cmds, WatchFileCmd(m.watcher))
		}
		return m, tea.Batch(cmds...)

	case sheetLoadedMsg:
		if msg.err != nil {
			m.setError(fmt.Sprintf("Reload failed: %v", msg.err))
			return m, nil
		}
		m.applyReload(msg.sheet)
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeHelp:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		m.mode = modeSheet
		return m, nil

	case modeGoTo:
		switch {
		case msg.String() == "ctrl+c":
			return m, tea.Quit
		case key.Matches(msg, m.keys.Cancel):
			m.mode = modeSheet
			m.goTo.Blur()
			return m, nil
		case key.Matches(msg, m.keys.Confirm):
			m.mode = modeSheet
			m.goTo.Blur()
			cmd := m.goToCell(m.goTo.Value())
			return m, cmd
		}
		var cmd tea.Cmd
		m.goTo, cmd = m.goTo.Update(msg)
		return m, cmd
	}

	m.setStatus("")
	g := m.geometry()
	ch := max(m.cfg.Grid.CellHeight, 1)
	page := max(g.bodyHeight/ch-1, 1)

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Left):
		m.wheel(m.body, -1, 0)
	case key.Matches(msg, m.keys.Right):
		m.wheel(m.body, 1, 0)
	case key.Matches(msg, m.keys.Up):
		m.wheel(m.body, 0, -1)
	case key.Matches(msg, m.keys.Down):
		m.wheel(m.body, 0, 1)
	case key.Matches(msg, m.keys.PageUp):
		m.wheel(m.body, 0, -page)
	case key.Matches(msg, m.keys.PageDown):
		m.wheel(m.body, 0, page)
	case key.Matches(msg, m.keys.Home):
		if err := m.body.SmoothScrollTo(0); err != nil {
			m.setError(err.Error())
		}
		cmd := m.startTicking()
		return m, cmd
	case key.Matches(msg, m.keys.Wider):
		m.setColumns(m.data.columns() + 1)
	case key.Matches(msg, m.keys.Narrower):
		m.setColumns(m.data.columns() - 1)
	case key.Matches(msg, m.keys.GoTo):
		m.mode = modeGoTo
		m.goTo.SetValue("")
		cmd := m.goTo.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Copy):
		m.copySelection()
	case key.Matches(msg, m.keys.Reload):
		m.setStatus("Reloading...")
		return m, m.reloadCmd()
	case key.Matches(msg, m.keys.Export):
		m.exportSnapshot()
	case key.Matches(msg, m.keys.Help):
		m.mode = modeHelp
		if m.helpText == "" {
			m.helpText = renderHelp(m.keys, m.theme.Name, m.width)
		}
	}
	return m, nil
}

// wheel scrolls p by whole cells and reports a refused gesture.
func (m *Model) wheel(p *pane.Pane, columns, rows int) {
	if err := p.Wheel(columns, rows); err != nil {
		if errors.Is(err, pane.ErrBusy) {
			m.setStatus("Still scrolling")
			return
		}
		m.setError(err.Error())
	}
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	now := m.now()
	switch msg.Action {
	case tea.MouseActionPress:
		p, x, y := m.hit(msg.X, msg.Y)
		switch msg.Button {
		case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown, tea.MouseButtonWheelLeft, tea.MouseButtonWheelRight:
			if p == nil {
				p = m.body
			}
			dx, dy := wheelDelta(msg)
			m.wheel(p, dx, dy)
			return m, nil
		case tea.MouseButtonLeft:
			if p == nil || !p.Press(x, y, now) {
				return m, nil
			}
			m.active, m.dragged = p, false
		}

	case tea.MouseActionMotion:
		if m.active != nil {
			x, y := m.local(m.active, msg.X, msg.Y)
			m.active.Drag(x, y, now)
			m.dragged = true
		}

	case tea.MouseActionRelease:
		if m.active == nil {
			return m, nil
		}
		p := m.active
		x, y := m.local(p, msg.X, msg.Y)
		p.Release(x, y, now)
		m.active = nil
		if !m.dragged && p == m.body {
			if pos, ok := cellAt(p.Layout(), x, y); ok {
				m.selRow, m.selCol = grid.PositionToRowCol(pos, m.data.columns())
				m.refreshSummary()
			}
		}
		cmd := m.startTicking()
		return m, cmd
	}
	return m, nil
}

func wheelDelta(msg tea.MouseMsg) (dx, dy int) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		dy = -1
	case tea.MouseButtonWheelDown:
		dy = 1
	case tea.MouseButtonWheelLeft:
		dx = -1
	case tea.MouseButtonWheelRight:
		dx = 1
	}
	if msg.Shift {
		dx, dy = dy, dx
	}
	return dx, dy
}

// hit returns the pane under screen point (x, y) and the point in the pane's
// coordinates.
func (m Model) hit(x, y int) (*pane.Pane, int, int) {
	g := m.geometry()
	switch {
	case y < g.headerHeight && x >= g.rowHeaderWidth:
		return m.colHead, x - g.rowHeaderWidth, y
	case y >= g.headerHeight && y < g.headerHeight+g.bodyHeight && x < g.rowHeaderWidth:
		return m.rowHead, x, y - g.headerHeight
	case y >= g.headerHeight && y < g.headerHeight+g.bodyHeight:
		return m.body, x - g.rowHeaderWidth, y - g.headerHeight
	}
	return nil, 0, 0
}

func (m Model) local(p *pane.Pane, x, y int) (int, int) {
	g := m.geometry()
	switch p {
	case m.colHead:
		return x - g.rowHeaderWidth, y
	case m.rowHead:
		return x, y - g.headerHeight
	default:
		return x - g.rowHeaderWidth, y - g.headerHeight
	}
}

// cellAt returns the position of the attached cell covering (x, y).
func cellAt(lm *grid.LayoutManager, x, y int) (int, bool) {
	for _, a := range lm.Attached() {
		r := a.Rect
		if a.Position != grid.NoPosition && x >= r.Left && x < r.Right() && y >= r.Top && y < r.Bottom() {
			return a.Position, true
		}
	}
	return 0, false
}

func (m *Model) startTicking() tea.Cmd {
	if m.ticking || !m.animating() {
		return nil
	}
	m.ticking = true
	return tea.Tick(m.cfg.Scroll.TickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) animating() bool {
	return m.body.Animating() || m.colHead.Animating() || m.rowHead.Animating()
}

func (m Model) handleTick(t time.Time) (tea.Model, tea.Cmd) {
	dt := m.cfg.Scroll.TickInterval
	if !m.lastTick.IsZero() {
		dt = t.Sub(m.lastTick)
	}
	m.lastTick = t
	m.ticking = false
	for _, p := range []*pane.Pane{m.body, m.colHead, m.rowHead} {
		p.Tick(dt)
	}
	if !m.animating() {
		m.lastTick = time.Time{}
		return m, nil
	}
	cmd := m.startTicking()
	return m, cmd
}

func (m *Model) goToCell(ref string) tea.Cmd {
	row, col, err := ParseCellRef(ref)
	if err != nil {
		m.setError(err.Error())
		return nil
	}
	cols := m.data.columns()
	if row >= m.data.rows() || col >= cols {
		m.setError(fmt.Sprintf("%s%d is outside the sheet", datasource.ColumnName(col), row+1))
		return nil
	}
	m.selRow, m.selCol = row, col
	m.refreshSummary()
	if err := m.body.SmoothScrollTo(grid.RowColToPosition(row, col, cols)); err != nil {
		m.setError(err.Error())
		return nil
	}
	return m.startTicking()
}

// setColumns changes how many columns are laid out and returns every pane to
// the origin.
func (m *Model) setColumns(n int) {
	n = max(n, 1)
	if n == m.data.columns() {
		return
	}
	m.data.columnsOverride = n
	m.body.Layout().SetTotalColumns(n)
	m.colHead.Layout().SetTotalColumns(n)
	m.replaceAll()
	m.selCol = min(m.selCol, n-1)
	m.refreshSummary()
	m.setStatus(fmt.Sprintf("%d columns", n))
}

func (m *Model) replaceAll() {
	for _, p := range []*pane.Pane{m.body, m.colHead, m.rowHead} {
		p.StopFling()
		p.Layout().DataSetReplaced()
	}
}

func (m Model) reloadCmd() tea.Cmd {
	r, src := m.reloader, m.source
	if src.Path == "" {
		return nil
	}
	return func() tea.Msg {
		s, err := r.Reload(context.Background(), src)
		return sheetLoadedMsg{sheet: s, err: err}
	}
}

// applyReload swaps in the reloaded sheet and turns the row diff into
// mutations of the body and row header engines.
func (m *Model) applyReload(sheet *datasource.Sheet) {
	d := datasource.Diff(m.data.sheet, sheet)
	before := m.data.columns()
	m.data.sheet = sheet
	n := m.data.columns()
	debug.Log("reload: %s", d.Summary())

	switch {
	case d.Empty():
		m.setStatus("No changes")
		return
	case d.Replaced || n != before:
		m.body.Layout().SetTotalColumns(n)
		m.colHead.Layout().SetTotalColumns(n)
		m.replaceAll()
	default:
		body, rows := m.body.Layout(), m.rowHead.Layout()
		for _, c := range d.Changes {
			switch c.Kind {
			case datasource.ChangeUpdated:
				body.ItemsChanged(c.Start*n, c.Count*n)
			case datasource.ChangeRemoved:
				body.ItemsRemoved(c.Start*n, c.Count*n)
				rows.ItemsRemoved(c.Start, c.Count)
				rows.ItemsChanged(c.Start, d.RowsAfter)
			case datasource.ChangeInserted:
				body.ItemsInserted(c.Start*n, c.Count*n)
				rows.ItemsInserted(c.Start, c.Count)
				rows.ItemsChanged(c.Start, d.RowsAfter)
			}
		}
		body.ApplyChanges()
		rows.ApplyChanges()
		body.EndAnimations()
		rows.EndAnimations()
		if d.HeadersChanged {
			cols := m.colHead.Layout()
			cols.DataSetChanged()
			cols.Layout(grid.PassFinal)
		}
	}

	m.selRow = max(min(m.selRow, m.data.rows()-1), 0)
	m.selCol = min(m.selCol, n-1)
	m.refreshSummary()
	m.setStatus(d.Summary())
}

func (m *Model) refreshSummary() {
	if !m.cfg.SummaryEnabled() {
		m.summary = ""
		return
	}
	s := SummarizeColumn(m.data.sheet.Column(m.selCol))
	m.summary = fmt.Sprintf("%s: %s", m.data.sheet.Header(m.selCol), s)
}

func (m *Model) copySelection() {
	ref := fmt.Sprintf("%s%d", datasource.ColumnName(m.selCol), m.selRow+1)
	if err := clipboard.WriteAll(m.data.sheet.Cell(m.selRow, m.selCol)); err != nil {
		m.setError(fmt.Sprintf("Clipboard error: %v", err))
		return
	}
	m.setStatus(fmt.Sprintf("Copied %s to clipboard", ref))
}

// Snapshot captures what the panes currently show.
func (m Model) Snapshot(title string, withSummary bool) export.Snapshot {
	g := m.geometry()
	snap := export.Snapshot{Title: title}
	if withSummary {
		snap.Summary = m.summary
	}
	snap.AddPane(m.colHead.Layout(), g.rowHeaderWidth, 0, export.KindColumnHeader, m.colSrc.text)
	snap.AddPane(m.rowHead.Layout(), 0, g.headerHeight, export.KindRowHeader, m.rowSrc.text)
	snap.AddPane(m.body.Layout(), g.rowHeaderWidth, g.headerHeight, export.KindBody, m.bodySrc.text)
	if r, ok := m.body.Layout().RectOf(grid.RowColToPosition(m.selRow, m.selCol, m.data.columns())); ok {
		snap.Select(r.Left+g.rowHeaderWidth, r.Top+g.headerHeight)
	}
	return snap
}

func (m *Model) exportSnapshot() {
	name := export.DefaultFileName(m.data.sheet.Name, m.now())
	opts := export.Options{
		Path:   filepath.Join(m.cfg.Export.Dir, name),
		Format: m.cfg.Export.Format,
	}
	_, path, _ := export.ResolveFormat(opts.Path, opts.Format)
	if err := export.Save(m.Snapshot(m.data.sheet.Name, m.cfg.SummaryEnabled()), opts); err != nil {
		m.setError(fmt.Sprintf("Export failed: %v", err))
		return
	}
	m.setStatus(fmt.Sprintf("Exported %s", path))
}

func (m *Model) setStatus(msg string) {
	m.statusMsg = msg
	m.statusIsError = false
}

func (m *Model) setError(msg string) {
	m.statusMsg = msg
	m.statusIsError = true
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading sheet..."
	}
	defer metrics.Timer(metrics.UIRender)()

	if m.mode == modeHelp {
		return m.helpView()
	}

	lines := m.draw().lines(m.theme.Cells)
	lines = append(lines, m.statusLine(), m.footerLine())
	return strings.Join(lines, "\n")
}

// draw paints the three panes onto a fresh canvas.
func (m Model) draw() *canvas {
	g := m.geometry()
	c := newCanvas(m.width, g.headerHeight+g.bodyHeight)
	corner := grid.Rect{Width: g.rowHeaderWidth, Height: g.headerHeight}
	c.fill(corner, corner, paintCorner)

	m.drawPane(c, m.colHead, g.rowHeaderWidth, 0, paintHeader)
	m.drawPane(c, m.rowHead, 0, g.headerHeight, paintHeader)
	m.drawPane(c, m.body, g.rowHeaderWidth, g.headerHeight, paintBody)
	return c
}

func (m Model) drawPane(c *canvas, p *pane.Pane, ox, oy int, base paint) {
	lm := p.Layout()
	vp := lm.Viewport()
	clip := grid.Rect{Left: ox, Top: oy, Width: vp.Width, Height: vp.Height}
	selected := grid.NoPosition
	if p == m.body {
		selected = grid.RowColToPosition(m.selRow, m.selCol, m.data.columns())
	}
	for _, a := range lm.Attached() {
		if a.Position == grid.NoPosition {
			continue
		}
		pt := base
		if a.Position == selected {
			pt = paintSelected
		}
		c.cell(a.Rect.Offset(ox, oy), clip, a.Cell.(*cellView).text, pt)
	}
}

func (m Model) statusLine() string {
	if m.statusMsg != "" {
		line := runewidth.Truncate(" "+m.statusMsg, m.width, "…")
		if m.statusIsError {
			return m.theme.Error.Render(line)
		}
		return m.theme.Status.Render(line)
	}
	ref := fmt.Sprintf("%s%d", datasource.ColumnName(m.selCol), m.selRow+1)
	value := strings.ReplaceAll(m.data.sheet.Cell(m.selRow, m.selCol), "\n", " ")
	badge := m.theme.Title.Render(ref)
	rest := fmt.Sprintf(" %s  %s", value, m.summary)
	if m.coord.Phase(m.body) != syncscroll.PhaseIdle {
		rest += "  ⇄"
	}
	rest = runewidth.Truncate(rest, max(m.width-lipgloss.Width(badge), 0), "…")
	return badge + m.theme.Status.Render(rest)
}

func (m Model) footerLine() string {
	if m.mode == modeGoTo {
		return m.goTo.View()
	}
	return m.help.View(m.keys)
}

func (m Model) helpView() string {
	text := m.helpText
	if text == "" {
		text = renderHelp(m.keys, m.theme.Name, m.width)
	}
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) > m.height-1 && m.height > 1 {
		lines = lines[:m.height-1]
	}
	return strings.Join(lines, "\n") + "\n" + m.theme.Status.Render(" any key to close")
}
