package pipeline

import (
	"time"

	"github.com/hpcfair/slurmplot/pkg/core"
)

// Summary condenses an aggregated series into the run totals printed in
// verbose mode. Each field is computed only from the columns the run actually
// requested.
type Summary struct {
	Start time.Time
	End   time.Time

	TotalJobs    float64
	UsedCPUHours float64
	UsedGPUHours float64

	AvgQueueTime core.OptionalFloat
	AvgRunTime   core.OptionalFloat

	// MemoryEfficiency is mean max_rss over mean req_mem across buckets
	// where both are defined.
	MemoryEfficiency core.OptionalFloat
}

// Summarize computes the run summary. Sum-class columns total across buckets;
// mean-class columns average over the buckets where they are defined, so
// empty buckets never drag an average toward zero.
func Summarize(s *core.AggregatedSeries) *Summary {
	sum := &Summary{}
	if s == nil || len(s.Rows) == 0 {
		return sum
	}
	sum.Start = s.Rows[0].Start
	sum.End = s.Rows[len(s.Rows)-1].Start

	sum.TotalJobs = columnTotal(s, "job_count")
	sum.UsedCPUHours = columnTotal(s, "used_cpus")
	sum.UsedGPUHours = columnTotal(s, "used_gpus")
	sum.AvgQueueTime = columnMean(s, "queue_time")
	sum.AvgRunTime = columnMean(s, "run_time")

	rss := columnMean(s, "max_rss")
	req := columnMean(s, "req_mem")
	if rss.Valid && req.Valid && req.Value > 0 {
		sum.MemoryEfficiency = core.Float(rss.Value / req.Value)
	}
	return sum
}

func columnTotal(s *core.AggregatedSeries, name string) float64 {
	col := s.Column(name)
	if col < 0 {
		return 0
	}
	total := 0.0
	for _, row := range s.Rows {
		if v := row.Values[col]; v.Valid {
			total += v.Value
		}
	}
	return total
}

func columnMean(s *core.AggregatedSeries, name string) core.OptionalFloat {
	col := s.Column(name)
	if col < 0 {
		return core.NoFloat()
	}
	total, n := 0.0, 0
	for _, row := range s.Rows {
		if v := row.Values[col]; v.Valid {
			total += v.Value
			n++
		}
	}
	if n == 0 {
		return core.NoFloat()
	}
	return core.Float(total / float64(n))
}
