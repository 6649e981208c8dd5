package render

import (
	"io"
	"time"

	"github.com/hpcfair/slurmplot/pkg/core"
	"github.com/pkg/errors"
	chart "github.com/wcharczuk/go-chart/v2"
)

// imageRenderer draws static PNG or SVG line charts. Undefined values split a
// column into separate line segments so gaps show as gaps, never as zeros.
type imageRenderer struct {
	opts Options
	svg  bool
}

func (r *imageRenderer) Render(s *core.AggregatedSeries, out io.Writer) error {
	var series []chart.Series
	for col := range s.Columns {
		for _, seg := range splitSegments(s, col) {
			series = append(series, seg)
		}
	}

	graph := chart.Chart{
		Title:  r.opts.Title,
		Width:  r.opts.Width,
		Height: r.opts.Height,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	provider := chart.PNG
	if r.svg {
		provider = chart.SVG
	}
	return errors.Wrap(graph.Render(provider, out), "rendering chart")
}

// splitSegments cuts one column into runs of consecutive defined values. The
// first segment of a column carries its legend entry; continuation segments
// stay unnamed so the legend is not repeated.
func splitSegments(s *core.AggregatedSeries, col int) []chart.TimeSeries {
	var segs []chart.TimeSeries
	var xs []time.Time
	var ys []float64

	flush := func() {
		if len(xs) == 0 {
			return
		}
		seg := chart.TimeSeries{XValues: xs, YValues: ys}
		if len(segs) == 0 {
			seg.Name = columnTitle(s.Columns[col])
		}
		segs = append(segs, seg)
		xs, ys = nil, nil
	}

	for _, row := range s.Rows {
		v := row.Values[col]
		if !v.Valid {
			flush()
			continue
		}
		xs = append(xs, row.Start)
		ys = append(ys, v.Value)
	}
	flush()
	return segs
}
