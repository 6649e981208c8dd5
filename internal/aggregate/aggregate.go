// Package aggregate buckets normalized job records into fixed time intervals
// and folds the requested metrics per bucket. Accumulation is incremental and
// order-independent: sums, counts and means do not depend on arrival order.
package aggregate

import (
	"sort"
	"time"

	"github.com/hpcfair/slurmplot/pkg/core"
)

// Options fixes one aggregation run: bucket width, the [start,end) window
// records must fall into, the record filter and the metric list.
type Options struct {
	Interval core.Interval
	Window   core.Window
	Filter   core.Filter
	Metrics  []core.MetricDef
}

// Aggregator consumes records one at a time and produces the ordered bucket
// list. Not safe for concurrent Add calls; the pipeline feeds it from a
// single goroutine.
type Aggregator struct {
	opts    Options
	buckets map[int64]*accumulator
	diag    core.Diagnostics
}

type accumulator struct {
	count int
	sums  []float64
	ns    []int
}

func New(opts Options) *Aggregator {
	return &Aggregator{
		opts:    opts,
		buckets: make(map[int64]*accumulator),
	}
}

// Add assigns one record to its bucket. Records failing the filter, falling
// outside the window, or lacking both start and submit time are counted in
// the diagnostics and otherwise ignored.
func (a *Aggregator) Add(rec *core.NormalizedRecord) {
	if !a.opts.Filter.Match(rec) {
		a.diag.FilteredOut++
		return
	}
	ts := rec.BucketTime()
	if !ts.Valid {
		a.diag.Unbucketable++
		return
	}
	key := a.opts.Interval.Floor(ts.Value)
	if !a.opts.Window.Contains(key) {
		a.diag.OutsideWindow++
		return
	}

	acc, ok := a.buckets[key.Unix()]
	if !ok {
		acc = &accumulator{
			sums: make([]float64, len(a.opts.Metrics)),
			ns:   make([]int, len(a.opts.Metrics)),
		}
		a.buckets[key.Unix()] = acc
	}

	acc.count++
	for i, m := range a.opts.Metrics {
		if m.Source == nil {
			continue
		}
		if v := m.Source(rec); v.Valid {
			acc.sums[i] += v.Value
			acc.ns[i]++
		}
	}
	a.diag.Aggregated++
}

// Diagnostics returns the counters accumulated by Add.
func (a *Aggregator) Diagnostics() core.Diagnostics {
	return a.diag
}

// Buckets materializes the ordered bucket list spanning exactly the occupied
// time range. Interior buckets with no jobs are retained: sums and counts are
// zero, means undefined, so charts keep correct spacing and show gaps rather
// than zeros. Empty input yields an empty slice, never an error.
func (a *Aggregator) Buckets() []core.TimeBucket {
	if len(a.buckets) == 0 {
		return nil
	}

	keys := make([]int64, 0, len(a.buckets))
	for k := range a.buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	first := time.Unix(keys[0], 0).UTC()
	last := time.Unix(keys[len(keys)-1], 0).UTC()
	width := a.opts.Interval.Duration()

	var out []core.TimeBucket
	for t := first; !t.After(last); t = t.Add(width) {
		acc := a.buckets[t.Unix()]
		out = append(out, core.TimeBucket{
			Start:  t,
			Values: a.bucketValues(acc),
		})
	}
	return out
}

func (a *Aggregator) bucketValues(acc *accumulator) map[string]core.OptionalFloat {
	values := make(map[string]core.OptionalFloat, len(a.opts.Metrics))
	for i, m := range a.opts.Metrics {
		switch m.Class {
		case core.AggCount:
			n := 0
			if acc != nil {
				n = acc.count
			}
			values[m.Name] = core.Float(float64(n))
		case core.AggSum:
			sum := 0.0
			if acc != nil {
				sum = acc.sums[i]
			}
			values[m.Name] = core.Float(sum)
		default: // mean
			if acc != nil && acc.ns[i] > 0 {
				values[m.Name] = core.Float(acc.sums[i] / float64(acc.ns[i]))
			} else {
				values[m.Name] = core.NoFloat()
			}
		}
	}
	return values
}
