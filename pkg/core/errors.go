package core

import (
	"fmt"
	"time"
)

// SourceUnavailableError means the accounting command could not be found or
// the fallback log file could not be opened. Fatal, not retried.
type SourceUnavailableError struct {
	Source string
	Remedy string
	Err    error
}

func (e *SourceUnavailableError) Error() string {
	msg := fmt.Sprintf("accounting source %s unavailable: %v", e.Source, e.Err)
	if e.Remedy != "" {
		msg += " (" + e.Remedy + ")"
	}
	return msg
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }

// SourceTimeoutError means the accounting query ran longer than the
// configured timeout.
type SourceTimeoutError struct {
	Timeout time.Duration
	Elapsed time.Duration
}

func (e *SourceTimeoutError) Error() string {
	return fmt.Sprintf("accounting query exceeded %s timeout after %s", e.Timeout, e.Elapsed)
}

// ValidationError marks a record violating a hard invariant. The record is
// dropped and counted; the run continues.
type ValidationError struct {
	JobID  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("job %s: %s", e.JobID, e.Reason)
}

// InvalidMetricError is raised at the pipeline boundary, before any I/O, for
// a metric name outside the documented surface.
type InvalidMetricError struct {
	Name string
}

func (e *InvalidMetricError) Error() string {
	return fmt.Sprintf("unknown metric %q", e.Name)
}

// NoDataError reports that the filtered window produced no data at all. It is
// distinct from a pipeline failure so the caller can suggest adjusting
// filters.
type NoDataError struct {
	Start time.Time
	End   time.Time
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("no job data between %s and %s for the given filters",
		e.Start.Format("2006-01-02"), e.End.Format("2006-01-02"))
}

// Diagnostics accumulates the non-fatal conditions of a pipeline run. It is
// returned next to the result, never instead of it.
type Diagnostics struct {
	RecordsRead     int // job records the parser produced
	StepsMerged     int // step rows folded into their parent job
	ParseWarnings   int // malformed fields or job-less rows skipped
	ValidationDrops int // records dropped for invariant violations
	Unbucketable    int // records lacking both start and submit time
	OutsideWindow   int // records bucketed outside the [start,end) window
	FilteredOut     int // records rejected by account/partition/state/user filters
	Aggregated      int // records that made it into a bucket
}

func (d *Diagnostics) Merge(o Diagnostics) {
	d.RecordsRead += o.RecordsRead
	d.StepsMerged += o.StepsMerged
	d.ParseWarnings += o.ParseWarnings
	d.ValidationDrops += o.ValidationDrops
	d.Unbucketable += o.Unbucketable
	d.OutsideWindow += o.OutsideWindow
	d.FilteredOut += o.FilteredOut
	d.Aggregated += o.Aggregated
}
