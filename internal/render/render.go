// Package render draws an aggregated series as a chart. It is a thin
// collaborator over the chart libraries: it sees only series rows, column
// labels and units, never job records or scheduler field names.
package render

import (
	"fmt"
	"io"

	"github.com/hpcfair/slurmplot/pkg/core"
)

const (
	FormatPNG  = "png"
	FormatSVG  = "svg"
	FormatHTML = "html"
)

// Options carries the presentation knobs resolved from configuration and
// flags.
type Options struct {
	Title  string
	Width  int
	Height int
}

type Renderer interface {
	Render(s *core.AggregatedSeries, out io.Writer) error
}

// New picks a renderer for the output format: static image via go-chart,
// interactive HTML via go-echarts.
func New(format string, o Options) (Renderer, error) {
	switch format {
	case FormatPNG, FormatSVG:
		return &imageRenderer{opts: o, svg: format == FormatSVG}, nil
	case FormatHTML:
		return &htmlRenderer{opts: o}, nil
	}
	return nil, fmt.Errorf("unknown output format %q, want png, svg or html", format)
}

// columnTitle labels one plotted column including its unit.
func columnTitle(c core.SeriesColumn) string {
	return fmt.Sprintf("%s (%s)", c.Label, c.Unit)
}
