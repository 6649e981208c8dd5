// Package normalize converts parsed job records into canonical units and
// fills in derived fields. Pure transformation: no I/O, no mutation of the
// input record.
package normalize

import (
	"fmt"

	"github.com/hpcfair/slurmplot/pkg/core"
)

// Normalizer holds the canonical units a run converts into. Safe for
// concurrent use; it carries no mutable state.
type Normalizer struct {
	memUnit  core.MemoryUnit
	timeUnit core.TimeUnit
}

func New(mem core.MemoryUnit, timeUnit core.TimeUnit) *Normalizer {
	return &Normalizer{memUnit: mem, timeUnit: timeUnit}
}

// Normalize validates r's hard invariants and produces a fresh normalized
// record. A violated invariant returns a *core.ValidationError and no record.
//
// Derived fields follow the all-inputs-present rule: run_time needs both
// start and end, used GPU time needs the GPU count and the run time, and so
// on. A missing input leaves the derived field absent, never zero.
func (n *Normalizer) Normalize(r *core.JobRecord) (*core.NormalizedRecord, error) {
	if err := validate(r); err != nil {
		return nil, err
	}

	out := &core.NormalizedRecord{
		JobID:     r.JobID,
		Account:   r.Account,
		Partition: r.Partition,
		User:      r.User,
		State:     r.State,
		Submit:    r.Submit,
		Start:     r.Start,
		ReqCPUs:   r.ReqCPUs,
		AllocCPUs: r.AllocCPUs,
		AllocGPUs: r.AllocGPUs,
	}

	if r.ReqMem.Valid {
		out.ReqMem = core.Float(ConvertMemory(r.ReqMem.Value, r.ReqMem.Unit, n.memUnit))
	}
	if r.MaxRSS.Valid {
		out.MaxRSS = core.Float(ConvertMemory(r.MaxRSS.Value, r.MaxRSS.Unit, n.memUnit))
	}

	if r.Submit.Valid && r.Start.Valid {
		secs := r.Start.Value.Sub(r.Submit.Value).Seconds()
		if secs < 0 {
			// Only possible on non-terminal records; terminal ones
			// were validated above.
			secs = 0
		}
		out.QueueTime = core.Float(ConvertSeconds(secs, n.timeUnit))
	}

	var runHours core.OptionalFloat
	if r.Start.Valid && r.End.Valid {
		secs := r.End.Value.Sub(r.Start.Value).Seconds()
		if secs < 0 {
			secs = 0
		}
		out.RunTime = core.Float(ConvertSeconds(secs, n.timeUnit))
		runHours = core.Float(secs / 3600)
	}

	// Consumed CPU time as reported by accounting when available, otherwise
	// derived from the allocation and the run time.
	switch {
	case r.CPUTimeRaw.Valid:
		out.UsedCPUHours = core.Float(r.CPUTimeRaw.Value / 3600)
	case r.AllocCPUs.Valid && runHours.Valid:
		out.UsedCPUHours = core.Float(r.AllocCPUs.Value * runHours.Value)
	}

	if r.AllocGPUs.Valid && runHours.Valid {
		out.UsedGPUHours = core.Float(r.AllocGPUs.Value * runHours.Value)
	}

	return out, nil
}

func validate(r *core.JobRecord) error {
	if r.JobID == "" {
		return &core.ValidationError{Reason: "empty job ID"}
	}
	for _, f := range []struct {
		name string
		val  core.OptionalFloat
	}{
		{"requested CPUs", r.ReqCPUs},
		{"allocated CPUs", r.AllocCPUs},
		{"allocated GPUs", r.AllocGPUs},
		{"raw CPU time", r.CPUTimeRaw},
	} {
		if f.val.Valid && f.val.Value < 0 {
			return &core.ValidationError{JobID: r.JobID, Reason: fmt.Sprintf("negative %s: %v", f.name, f.val.Value)}
		}
	}
	if r.ReqMem.Valid && r.ReqMem.Value < 0 {
		return &core.ValidationError{JobID: r.JobID, Reason: fmt.Sprintf("negative requested memory: %v", r.ReqMem.Value)}
	}
	if r.MaxRSS.Valid && r.MaxRSS.Value < 0 {
		return &core.ValidationError{JobID: r.JobID, Reason: fmt.Sprintf("negative max RSS: %v", r.MaxRSS.Value)}
	}

	if core.TerminalState(r.State) {
		if r.Start.Valid && r.End.Valid && r.End.Value.Before(r.Start.Value) {
			return &core.ValidationError{JobID: r.JobID, Reason: "end time before start time on terminal job"}
		}
		if r.Submit.Valid && r.Start.Valid && r.Start.Value.Before(r.Submit.Value) {
			return &core.ValidationError{JobID: r.JobID, Reason: "start time before submit time on terminal job"}
		}
	}
	return nil
}
