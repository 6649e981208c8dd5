// Package pipeline wires the stages together: record source, parser,
// normalizer, aggregator and series builder run strictly in sequence for one
// invocation. Fatal errors abort with a specific kind; non-fatal conditions
// accumulate into the Diagnostics returned next to the result.
package pipeline

import (
	"context"
	"io"

	"github.com/hpcfair/slurmplot/internal/aggregate"
	"github.com/hpcfair/slurmplot/internal/config"
	"github.com/hpcfair/slurmplot/internal/normalize"
	"github.com/hpcfair/slurmplot/internal/parse"
	"github.com/hpcfair/slurmplot/internal/series"
	"github.com/hpcfair/slurmplot/internal/source"
	"github.com/hpcfair/slurmplot/pkg/core"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// RunOptions selects what one run aggregates.
type RunOptions struct {
	Window   core.Window
	Filter   core.Filter
	Interval core.Interval
	Metrics  []string // empty means all documented metrics
}

type Pipeline struct {
	cfg *config.Config
	log *logrus.Entry
}

func New(cfg *config.Config, log *logrus.Entry) *Pipeline {
	return &Pipeline{cfg: cfg, log: log}
}

// Run executes the whole pipeline against a raw-text source. Metric names are
// validated before the source performs any I/O, so an unknown metric never
// triggers an accounting query.
func (p *Pipeline) Run(ctx context.Context, src source.Source, opts RunOptions) (*core.AggregatedSeries, core.Diagnostics, error) {
	metrics, err := core.LookupMetrics(opts.Metrics)
	if err != nil {
		return nil, core.Diagnostics{}, err
	}

	raw, err := src.Fetch(ctx)
	if err != nil {
		return nil, core.Diagnostics{}, err
	}
	defer raw.Close()

	reader := parse.NewReader(raw, nil, p.log)
	s, diag, err := p.drain(ctx, reader, metrics, opts)
	diag.Merge(reader.Diagnostics())
	return p.finish(s, diag, opts, err)
}

// RunRecords enters the pipeline at the parser boundary, for record streams
// that are already typed, e.g. the archive reader.
func (p *Pipeline) RunRecords(ctx context.Context, records parse.RecordReader, opts RunOptions) (*core.AggregatedSeries, core.Diagnostics, error) {
	metrics, err := core.LookupMetrics(opts.Metrics)
	if err != nil {
		return nil, core.Diagnostics{}, err
	}
	s, diag, err := p.drain(ctx, records, metrics, opts)
	return p.finish(s, diag, opts, err)
}

// drain consumes the record stream through normalization and aggregation.
// Cancellation is checked between records since the stream may be large;
// the bounded aggregation and reshape steps below run to completion.
func (p *Pipeline) drain(ctx context.Context, records parse.RecordReader, metrics []core.MetricDef, opts RunOptions) (*core.AggregatedSeries, core.Diagnostics, error) {
	var diag core.Diagnostics
	norm := normalize.New(p.cfg.MemoryUnit, p.cfg.TimeUnit)
	agg := aggregate.New(aggregate.Options{
		Interval: opts.Interval,
		Window:   opts.Window,
		Filter:   opts.Filter,
		Metrics:  metrics,
	})

	for {
		select {
		case <-ctx.Done():
			return nil, diag, ctx.Err()
		default:
		}

		rec, err := records.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, diag, errors.Wrap(err, "reading job records")
		}

		nrec, err := norm.Normalize(rec)
		if err != nil {
			if verr, ok := err.(*core.ValidationError); ok {
				diag.ValidationDrops++
				p.log.WithField("job", verr.JobID).Debugf("record dropped: %s", verr.Reason)
				continue
			}
			return nil, diag, err
		}
		agg.Add(nrec)
	}

	diag.Merge(agg.Diagnostics())
	s := series.Build(agg.Buckets(), metrics, p.cfg.MemoryUnit, p.cfg.TimeUnit)
	return s, diag, nil
}

// finish applies the no-data policy: an empty result is returned as an empty
// series together with NoDataError, distinct from any pipeline failure.
func (p *Pipeline) finish(s *core.AggregatedSeries, diag core.Diagnostics, opts RunOptions, err error) (*core.AggregatedSeries, core.Diagnostics, error) {
	if err != nil {
		return nil, diag, err
	}
	if s.Empty() {
		return s, diag, &core.NoDataError{Start: opts.Window.Start, End: opts.Window.End}
	}
	return s, diag, nil
}
