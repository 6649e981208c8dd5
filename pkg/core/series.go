package core

import "time"

// TimeBucket is one half-open interval [Start, Start+width) with the
// aggregated value of every requested metric. Absent mean values stay
// undefined so the chart renders a gap rather than a zero.
type TimeBucket struct {
	Start  time.Time
	Values map[string]OptionalFloat
}

// SeriesColumn describes one plotted metric to the rendering layer. Label and
// Unit are resolved from the metric table so the renderer never sees
// scheduler field names.
type SeriesColumn struct {
	Name        string
	Label       string
	Unit        string
	Aggregation string
}

// SeriesRow is one bucket's row: Values is index-aligned with the series
// columns.
type SeriesRow struct {
	Start  time.Time
	Values []OptionalFloat
}

// AggregatedSeries is the pipeline's final output: one row per bucket in
// ascending order, one column per requested metric in request order.
type AggregatedSeries struct {
	Columns []SeriesColumn
	Rows    []SeriesRow
}

// Empty reports whether no bucket carries any data.
func (s *AggregatedSeries) Empty() bool {
	return len(s.Rows) == 0
}

// Column returns the index of the named column, or -1.
func (s *AggregatedSeries) Column(name string) int {
	for i, c := range s.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}
