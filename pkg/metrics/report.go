package metrics

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Report writes the timings and caches that have data as plain tables. It
// writes nothing when no metric has data.
func Report(w io.Writer) error {
	var b strings.Builder

	if stats := TimingSnapshot(); len(stats) > 0 {
		t := table.New().Border(lipgloss.NormalBorder()).
			Headers("operation", "count", "total", "mean", "max")
		for _, s := range stats {
			t.Row(s.Name, strconv.FormatInt(s.Count, 10), short(s.Total), short(s.Mean), short(s.Max))
		}
		b.WriteString(t.Render())
		b.WriteByte('\n')
	}

	if stats := CacheSnapshot(); len(stats) > 0 {
		t := table.New().Border(lipgloss.NormalBorder()).
			Headers("cache", "hits", "misses", "hit rate")
		for _, s := range stats {
			t.Row(s.Name, strconv.FormatInt(s.Hits, 10), strconv.FormatInt(s.Misses, 10),
				fmt.Sprintf("%.0f%%", s.HitRate*100))
		}
		b.WriteString(t.Render())
		b.WriteByte('\n')
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func short(d time.Duration) string {
	return d.Round(time.Microsecond).String()
}
