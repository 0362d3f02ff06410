// Package metrics records timings for the mind map pipeline: data loads,
// graph builds, layout ticks, scene construction and rendering.
//
// Metrics are collected in memory with atomic operations. Collection is on by
// default and can be disabled with MM_METRICS=0.
//
//	func (s *Simulation) Tick() {
//	    defer metrics.Timer(metrics.LayoutTick)()
//	    ...
//	}
package metrics

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"text/tabwriter"
	"time"
)

var enabled atomic.Bool

func init() {
	enabled.Store(os.Getenv("MM_METRICS") != "0")
}

// Enabled returns whether metrics collection is enabled.
func Enabled() bool { return enabled.Load() }

// SetEnabled turns collection on or off.
func SetEnabled(e bool) { enabled.Store(e) }

// TimingMetric accumulates durations of one named operation. It is safe for
// concurrent use.
type TimingMetric struct {
	name  string
	count atomic.Int64
	total atomic.Int64 // ns
	max   atomic.Int64 // ns
	min   atomic.Int64 // ns, 0 until the first sample
}

func newTimingMetric(name string) *TimingMetric {
	return &TimingMetric{name: name}
}

// Name returns the metric name.
func (m *TimingMetric) Name() string { return m.name }

// Count returns the number of samples.
func (m *TimingMetric) Count() int64 { return m.count.Load() }

// Record adds one sample.
func (m *TimingMetric) Record(d time.Duration) {
	if !Enabled() {
		return
	}
	ns := d.Nanoseconds()
	m.count.Add(1)
	m.total.Add(ns)
	for old := m.max.Load(); ns > old; old = m.max.Load() {
		if m.max.CompareAndSwap(old, ns) {
			break
		}
	}
	for old := m.min.Load(); old == 0 || ns < old; old = m.min.Load() {
		if m.min.CompareAndSwap(old, ns) {
			break
		}
	}
}

// Stats returns a snapshot of the metric.
func (m *TimingMetric) Stats() TimingStats {
	n, total := m.count.Load(), m.total.Load()
	s := TimingStats{
		Name:    m.name,
		Count:   n,
		TotalMs: ms(total),
		MaxMs:   ms(m.max.Load()),
		MinMs:   ms(m.min.Load()),
	}
	if n > 0 {
		s.AvgMs = ms(total / n)
	}
	return s
}

// Reset clears all samples.
func (m *TimingMetric) Reset() {
	m.count.Store(0)
	m.total.Store(0)
	m.max.Store(0)
	m.min.Store(0)
}

func ms(ns int64) float64 { return float64(ns) / 1e6 }

// TimingStats holds a snapshot of timing statistics.
type TimingStats struct {
	Name    string  `json:"name"`
	Count   int64   `json:"count"`
	TotalMs float64 `json:"total_ms"`
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
	MinMs   float64 `json:"min_ms,omitempty"`
}

// Timer returns a function that records the time elapsed since Timer was
// called. Use with defer.
func Timer(m *TimingMetric) func() {
	if !Enabled() || m == nil {
		return func() {}
	}
	start := time.Now()
	return func() { m.Record(time.Since(start)) }
}

// Timing metrics for the graph pipeline.
var (
	DatasourceLoad = newTimingMetric("datasource_load")
	GraphBuild     = newTimingMetric("graph_build")
	LayoutTick     = newTimingMetric("layout_tick")
	LayoutSettle   = newTimingMetric("layout_settle")
	SceneBuild     = newTimingMetric("scene_build")
	RenderSVG      = newTimingMetric("render_svg")
	RenderPNG      = newTimingMetric("render_png")
	RenderText     = newTimingMetric("render_text")
	TagLookup      = newTimingMetric("tag_lookup")
)

var all = []*TimingMetric{
	DatasourceLoad, GraphBuild, LayoutTick, LayoutSettle,
	SceneBuild, RenderSVG, RenderPNG, RenderText, TagLookup,
}

// ResetAll clears every metric.
func ResetAll() {
	for _, m := range all {
		m.Reset()
	}
}

// AllTimingStats returns stats for every metric that has recorded data.
func AllTimingStats() []TimingStats {
	var out []TimingStats
	for _, m := range all {
		if m.Count() > 0 {
			out = append(out, m.Stats())
		}
	}
	return out
}

// WriteReport prints a table of every metric with data.
func WriteReport(w io.Writer) error {
	stats := AllTimingStats()
	if len(stats) == 0 {
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "METRIC\tCOUNT\tAVG ms\tMAX ms\tTOTAL ms")
	for _, s := range stats {
		fmt.Fprintf(tw, "%s\t%d\t%.3f\t%.3f\t%.1f\n", s.Name, s.Count, s.AvgMs, s.MaxMs, s.TotalMs)
	}
	return tw.Flush()
}
