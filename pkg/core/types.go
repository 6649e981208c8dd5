package core

import "time"

// OptionalFloat is a numeric field value that distinguishes "absent" from a
// legitimate zero. Mean aggregation depends on this: an absent value is
// excluded from both numerator and denominator.
type OptionalFloat struct {
	Value float64
	Valid bool
}

func Float(v float64) OptionalFloat {
	return OptionalFloat{Value: v, Valid: true}
}

func NoFloat() OptionalFloat {
	return OptionalFloat{}
}

// OptionalTime is a timestamp that may be unreported, e.g. Start and End on
// jobs that have not run or finished yet.
type OptionalTime struct {
	Value time.Time
	Valid bool
}

func Time(t time.Time) OptionalTime {
	return OptionalTime{Value: t, Valid: true}
}

func NoTime() OptionalTime {
	return OptionalTime{}
}

// MemoryValue is a memory field as reported by the scheduler: the raw number
// plus the unit suffix it came with. Conversion to the canonical unit happens
// in the normalizer, never at parse time.
type MemoryValue struct {
	Value float64
	Unit  MemoryUnit
	Valid bool
}

func Memory(v float64, u MemoryUnit) MemoryValue {
	return MemoryValue{Value: v, Unit: u, Valid: true}
}

func NoMemory() MemoryValue {
	return MemoryValue{}
}

// Job states reported by Slurm accounting.
const (
	StateCompleted = "COMPLETED"
	StateFailed    = "FAILED"
	StateCancelled = "CANCELLED"
	StateTimeout   = "TIMEOUT"
	StateRunning   = "RUNNING"
	StatePending   = "PENDING"
)

// TerminalState reports whether jobs in the given state have stopped running,
// which is when the end >= start >= submit invariant must hold.
func TerminalState(state string) bool {
	switch state {
	case StateCompleted, StateFailed, StateCancelled, StateTimeout:
		return true
	}
	return false
}

// JobRecord is one job's accounting snapshot exactly as parsed, before any
// unit conversion. Immutable once produced by the parser.
type JobRecord struct {
	JobID string

	Account   string
	Partition string
	User      string
	State     string

	Submit OptionalTime
	Start  OptionalTime
	End    OptionalTime

	ReqCPUs    OptionalFloat
	AllocCPUs  OptionalFloat
	ReqMem     MemoryValue
	MaxRSS     MemoryValue
	AllocGPUs  OptionalFloat
	CPUTimeRaw OptionalFloat // total consumed CPU time, seconds
}

// NormalizedRecord is a JobRecord with units canonicalized and derived fields
// filled in. Memory fields are in the configured canonical memory unit, time
// fields in the canonical time unit. A fresh value, never an aliased
// JobRecord.
type NormalizedRecord struct {
	JobID string

	Account   string
	Partition string
	User      string
	State     string

	Submit OptionalTime
	Start  OptionalTime

	ReqCPUs   OptionalFloat
	AllocCPUs OptionalFloat
	ReqMem    OptionalFloat
	MaxRSS    OptionalFloat
	AllocGPUs OptionalFloat

	QueueTime    OptionalFloat
	RunTime      OptionalFloat
	UsedCPUHours OptionalFloat
	UsedGPUHours OptionalFloat
}

// BucketTime returns the timestamp a record is bucketed by: start time when
// the job has started, submit time otherwise. Records with neither are not
// aggregatable.
func (r *NormalizedRecord) BucketTime() OptionalTime {
	if r.Start.Valid {
		return r.Start
	}
	return r.Submit
}
