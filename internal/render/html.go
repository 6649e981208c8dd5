package render

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/hpcfair/slurmplot/pkg/core"
	"github.com/pkg/errors"
)

// htmlRenderer produces an interactive chart. Undefined values become null
// points, which echarts draws as line breaks.
type htmlRenderer struct {
	opts Options
}

func (r *htmlRenderer) Render(s *core.AggregatedSeries, out io.Writer) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: r.opts.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: true}),
	)

	xs := make([]string, len(s.Rows))
	for i, row := range s.Rows {
		xs[i] = row.Start.Format("2006-01-02 15:04")
	}
	line.SetXAxis(xs)

	for col, c := range s.Columns {
		data := make([]opts.LineData, len(s.Rows))
		for i, row := range s.Rows {
			if v := row.Values[col]; v.Valid {
				data[i] = opts.LineData{Value: v.Value}
			} else {
				data[i] = opts.LineData{Value: nil}
			}
		}
		line.AddSeries(columnTitle(c), data)
	}

	return errors.Wrap(line.Render(out), "rendering interactive chart")
}
