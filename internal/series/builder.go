// Package series reshapes aggregated buckets into the flat structure the
// rendering layer consumes. Pure reshaping: no computation happens here.
package series

import (
	"github.com/hpcfair/slurmplot/pkg/core"
)

// Build emits one row per bucket in ascending order and one column per
// requested metric in request order. Display labels and units come from the
// metric table resolved against the canonical units, so the caller never
// needs scheduler field names. A bucket missing a metric value is padded with
// the undefined marker; rows and columns are never dropped.
func Build(buckets []core.TimeBucket, metrics []core.MetricDef, mem core.MemoryUnit, timeUnit core.TimeUnit) *core.AggregatedSeries {
	s := &core.AggregatedSeries{
		Columns: make([]core.SeriesColumn, len(metrics)),
		Rows:    make([]core.SeriesRow, len(buckets)),
	}
	for i, m := range metrics {
		s.Columns[i] = core.SeriesColumn{
			Name:        m.Name,
			Label:       m.Label,
			Unit:        m.Kind.DisplayUnit(mem, timeUnit),
			Aggregation: m.Class.String(),
		}
	}
	for i, b := range buckets {
		row := core.SeriesRow{
			Start:  b.Start,
			Values: make([]core.OptionalFloat, len(metrics)),
		}
		for j, m := range metrics {
			if v, ok := b.Values[m.Name]; ok {
				row.Values[j] = v
			} else {
				row.Values[j] = core.NoFloat()
			}
		}
		s.Rows[i] = row
	}
	return s
}
