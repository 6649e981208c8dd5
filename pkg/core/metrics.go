package core

// AggClass selects how a metric folds the records of a bucket.
type AggClass int

const (
	// AggMean averages over records that have the field present. A bucket
	// with no qualifying record gets an undefined value, not zero.
	AggMean AggClass = iota
	// AggSum adds over all records, zero for an empty bucket.
	AggSum
	// AggCount counts records assigned to the bucket, independent of any
	// field's presence.
	AggCount
)

func (c AggClass) String() string {
	switch c {
	case AggSum:
		return "sum"
	case AggCount:
		return "count"
	default:
		return "mean"
	}
}

// UnitKind identifies which display unit a metric carries. Memory and time
// span kinds resolve against the configured canonical units.
type UnitKind int

const (
	UnitJobs UnitKind = iota
	UnitCPUs
	UnitGPUs
	UnitMemory
	UnitTimeSpan
	UnitCPUHours
	UnitGPUHours
)

// DisplayUnit resolves the unit label shown to the plotting layer.
func (k UnitKind) DisplayUnit(mem MemoryUnit, t TimeUnit) string {
	switch k {
	case UnitCPUs:
		return "CPUs"
	case UnitGPUs:
		return "GPUs"
	case UnitMemory:
		return string(mem)
	case UnitTimeSpan:
		return string(t)
	case UnitCPUHours:
		return "CPU-hours"
	case UnitGPUHours:
		return "GPU-hours"
	default:
		return "jobs"
	}
}

// MetricDef maps a metric name to the record field it reads, its aggregation
// class and its display unit. The table is static configuration, inspectable
// in tests and by the metrics subcommand.
type MetricDef struct {
	Name  string
	Label string
	Class AggClass
	Kind  UnitKind

	// AliasOf names the metric this one is a pure display alias of. The
	// alias reads the same field through the same Source; only the name
	// and label differ.
	AliasOf string

	// Source extracts the aggregated field from a record. Nil for
	// count-class metrics.
	Source func(r *NormalizedRecord) OptionalFloat
}

// MetricNames is the stable, documented metric surface in its canonical
// order. Any name outside this list is rejected at the pipeline boundary.
var MetricNames = []string{
	"req_cpus", "alloc_cpus", "used_cpus",
	"req_mem", "max_rss", "used_mem",
	"alloc_gpus", "used_gpus",
	"queue_time", "run_time", "job_count",
}

var metricTable = map[string]MetricDef{
	"req_cpus": {
		Name: "req_cpus", Label: "Requested CPUs", Class: AggMean, Kind: UnitCPUs,
		Source: func(r *NormalizedRecord) OptionalFloat { return r.ReqCPUs },
	},
	"alloc_cpus": {
		Name: "alloc_cpus", Label: "Allocated CPUs", Class: AggMean, Kind: UnitCPUs,
		Source: func(r *NormalizedRecord) OptionalFloat { return r.AllocCPUs },
	},
	"used_cpus": {
		Name: "used_cpus", Label: "Used CPU time", Class: AggSum, Kind: UnitCPUHours,
		Source: func(r *NormalizedRecord) OptionalFloat { return r.UsedCPUHours },
	},
	"req_mem": {
		Name: "req_mem", Label: "Requested memory", Class: AggMean, Kind: UnitMemory,
		Source: func(r *NormalizedRecord) OptionalFloat { return r.ReqMem },
	},
	"max_rss": {
		Name: "max_rss", Label: "Max resident memory", Class: AggMean, Kind: UnitMemory,
		Source: func(r *NormalizedRecord) OptionalFloat { return r.MaxRSS },
	},
	"used_mem": {
		Name: "used_mem", Label: "Used memory", Class: AggMean, Kind: UnitMemory,
		AliasOf: "max_rss",
		Source:  func(r *NormalizedRecord) OptionalFloat { return r.MaxRSS },
	},
	"alloc_gpus": {
		Name: "alloc_gpus", Label: "Allocated GPUs", Class: AggMean, Kind: UnitGPUs,
		Source: func(r *NormalizedRecord) OptionalFloat { return r.AllocGPUs },
	},
	"used_gpus": {
		Name: "used_gpus", Label: "Used GPU time", Class: AggSum, Kind: UnitGPUHours,
		Source: func(r *NormalizedRecord) OptionalFloat { return r.UsedGPUHours },
	},
	"queue_time": {
		Name: "queue_time", Label: "Queue time", Class: AggMean, Kind: UnitTimeSpan,
		Source: func(r *NormalizedRecord) OptionalFloat { return r.QueueTime },
	},
	"run_time": {
		Name: "run_time", Label: "Run time", Class: AggMean, Kind: UnitTimeSpan,
		Source: func(r *NormalizedRecord) OptionalFloat { return r.RunTime },
	},
	"job_count": {
		Name: "job_count", Label: "Job count", Class: AggCount, Kind: UnitJobs,
	},
}

// LookupMetric resolves a requested metric name against the table.
func LookupMetric(name string) (MetricDef, error) {
	def, ok := metricTable[name]
	if !ok {
		return MetricDef{}, &InvalidMetricError{Name: name}
	}
	return def, nil
}

// LookupMetrics resolves a request list in order, failing on the first
// unknown name. An empty request means all metrics in canonical order.
func LookupMetrics(names []string) ([]MetricDef, error) {
	if len(names) == 0 {
		names = MetricNames
	}
	defs := make([]MetricDef, 0, len(names))
	for _, n := range names {
		def, err := LookupMetric(n)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}
