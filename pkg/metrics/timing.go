// Package metrics counts how long the grid engine's passes take and how
// often cells are reused instead of built.
//
// Counters live in memory and are safe for concurrent use. Report prints
// them; sv does so on exit with --metrics. Set SV_METRICS=0 to turn
// collection off.
package metrics

import (
	"os"
	"sync/atomic"
	"time"
)

var enabled = os.Getenv("SV_METRICS") != "0"

// Enabled reports whether metrics are being collected.
func Enabled() bool {
	return enabled
}

// SetEnabled turns collection on or off.
func SetEnabled(e bool) {
	enabled = e
}

// Timing accumulates the durations of one operation.
type Timing struct {
	name  string
	count atomic.Int64
	total atomic.Int64
	peak  atomic.Int64
}

func newTiming(name string) *Timing {
	return &Timing{name: name}
}

// Record adds one measurement.
func (m *Timing) Record(d time.Duration) {
	if !enabled {
		return
	}
	ns := int64(d)
	m.count.Add(1)
	m.total.Add(ns)
	for {
		p := m.peak.Load()
		if ns <= p || m.peak.CompareAndSwap(p, ns) {
			return
		}
	}
}

// Count returns how many measurements were recorded.
func (m *Timing) Count() int64 {
	return m.count.Load()
}

// TimingStats is a snapshot of a Timing.
type TimingStats struct {
	Name  string
	Count int64
	Total time.Duration
	Mean  time.Duration
	Max   time.Duration
}

// Stats returns a snapshot of m.
func (m *Timing) Stats() TimingStats {
	s := TimingStats{
		Name:  m.name,
		Count: m.count.Load(),
		Total: time.Duration(m.total.Load()),
		Max:   time.Duration(m.peak.Load()),
	}
	if s.Count > 0 {
		s.Mean = s.Total / time.Duration(s.Count)
	}
	return s
}

// Reset clears m.
func (m *Timing) Reset() {
	m.count.Store(0)
	m.total.Store(0)
	m.peak.Store(0)
}

// Timer starts measuring and returns the function that records the
// elapsed time:
//
//	defer metrics.Timer(metrics.LayoutPass)()
func Timer(m *Timing) func() {
	if !enabled || m == nil {
		return func() {}
	}
	start := time.Now()
	return func() { m.Record(time.Since(start)) }
}

// Engine and viewer timings.
var (
	LayoutPass = newTiming("layout_pass")
	ScrollPass = newTiming("scroll_pass")
	FillPass   = newTiming("fill_pass")
	UIRender   = newTiming("ui_render")
	SheetLoad  = newTiming("sheet_load")
	Export     = newTiming("export")
)

var timings = []*Timing{LayoutPass, ScrollPass, FillPass, UIRender, SheetLoad, Export}

// TimingSnapshot returns the stats of every timing that has data.
func TimingSnapshot() []TimingStats {
	var out []TimingStats
	for _, m := range timings {
		if m.Count() > 0 {
			out = append(out, m.Stats())
		}
	}
	return out
}

// ResetAll clears every timing and cache metric.
func ResetAll() {
	for _, m := range timings {
		m.Reset()
	}
	for _, m := range caches {
		m.Reset()
	}
}
