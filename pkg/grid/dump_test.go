package grid

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/vanderheijden86/sheetview/pkg/debug"
)

type intItems int

func (n intItems) ItemCount() int        { return int(n) }
func (intItems) CellAt(int) Cell         { return new(int) }
func (intItems) Measure(Cell) (int, int) { return 4, 1 }
func (intItems) Place(Cell, Rect)        {}
func (intItems) Recycle(Cell)            {}

func TestDumpLines(t *testing.T) {
	items := intItems(9)
	lm := NewLayoutManager(items, items)
	lm.SetViewport(Viewport{Width: 8, Height: 2})
	lm.SetTotalColumns(3)
	lm.Layout(PassFinal)

	// 3x3 grid, window 3 columns by 3 rows.
	lines := lm.dumpLines()
	want := []string{
		"0(0,0) 1(4,0) 2(8,0)",
		"3(0,1) 4(4,1) 5(8,1)",
		"6(0,2) 7(4,2) 8(8,2)",
	}
	if strings.Join(lines, "\n") != strings.Join(want, "\n") {
		t.Errorf("dumpLines() =\n%s\nwant\n%s", strings.Join(lines, "\n"), strings.Join(want, "\n"))
	}
}

func TestDumpCellsLogsWhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	debug.SetOutput(&buf)
	debug.SetEnabled(true)
	t.Cleanup(func() {
		debug.SetEnabled(false)
		debug.SetOutput(os.Stderr)
	})

	items := intItems(4)
	lm := NewLayoutManager(items, items)
	lm.SetViewport(Viewport{Width: 8, Height: 1})
	lm.SetTotalColumns(4)
	lm.Layout(PassFinal)
	lm.DumpCells("after layout")

	out := buf.String()
	if !strings.Contains(out, "after layout") || !strings.Contains(out, "0(0,0) 1(4,0) 2(8,0)") {
		t.Errorf("unexpected dump:\n%s", out)
	}
}
