package normalize

import (
	"testing"
	"time"

	"github.com/hpcfair/slurmplot/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertMemory(t *testing.T) {
	assert.Equal(t, 2.0, ConvertMemory(2048, core.MB, core.GB))
	assert.Equal(t, 1024.0, ConvertMemory(1, core.GB, core.MB))
	assert.Equal(t, 1.0, ConvertMemory(1<<20, core.KB, core.GB))
	assert.Equal(t, 0.5, ConvertMemory(512, core.GB, core.TB))
}

func TestConvertSeconds(t *testing.T) {
	assert.Equal(t, 1.0, ConvertSeconds(3600, core.Hours))
	assert.Equal(t, 2.0, ConvertSeconds(120, core.Minutes))
	assert.Equal(t, 90.0, ConvertSeconds(90, core.Seconds))
}

func ts(h, m int) core.OptionalTime {
	return core.Time(time.Date(2024, 1, 1, h, m, 0, 0, time.UTC))
}

func TestNormalizeDerivedFields(t *testing.T) {
	n := New(core.GB, core.Hours)

	rec, err := n.Normalize(&core.JobRecord{
		JobID:     "1001",
		State:     core.StateCompleted,
		Submit:    ts(9, 0),
		Start:     ts(10, 0),
		End:       ts(12, 0),
		AllocCPUs: core.Float(4),
		AllocGPUs: core.Float(2),
		ReqMem:    core.Memory(2048, core.MB),
		MaxRSS:    core.Memory(1, core.GB),
	})
	require.NoError(t, err)

	assert.Equal(t, core.Float(1), rec.QueueTime)
	assert.Equal(t, core.Float(2), rec.RunTime)
	assert.Equal(t, core.Float(8), rec.UsedCPUHours) // 4 CPUs x 2 hours
	assert.Equal(t, core.Float(4), rec.UsedGPUHours) // 2 GPUs x 2 hours
	assert.Equal(t, core.Float(2), rec.ReqMem)
	assert.Equal(t, core.Float(1), rec.MaxRSS)
}

func TestNormalizeReportedCPUTimeWins(t *testing.T) {
	n := New(core.GB, core.Hours)

	rec, err := n.Normalize(&core.JobRecord{
		JobID:      "1001",
		State:      core.StateCompleted,
		Start:      ts(10, 0),
		End:        ts(12, 0),
		AllocCPUs:  core.Float(4),
		CPUTimeRaw: core.Float(7200),
	})
	require.NoError(t, err)

	// The accounting system's own number beats the derived estimate.
	assert.Equal(t, core.Float(2), rec.UsedCPUHours)
}

func TestNormalizeMissingInputsLeaveDerivedAbsent(t *testing.T) {
	n := New(core.GB, core.Hours)

	// Running job: no end time, so no run time or usage hours.
	rec, err := n.Normalize(&core.JobRecord{
		JobID:     "1001",
		State:     core.StateRunning,
		Submit:    ts(9, 0),
		Start:     ts(10, 0),
		AllocCPUs: core.Float(4),
		AllocGPUs: core.Float(1),
	})
	require.NoError(t, err)

	assert.True(t, rec.QueueTime.Valid)
	assert.False(t, rec.RunTime.Valid)
	assert.False(t, rec.UsedCPUHours.Valid)
	assert.False(t, rec.UsedGPUHours.Valid)

	// Pending job: not even started.
	rec, err = n.Normalize(&core.JobRecord{
		JobID:  "1002",
		State:  core.StatePending,
		Submit: ts(9, 0),
	})
	require.NoError(t, err)
	assert.False(t, rec.QueueTime.Valid)
	assert.False(t, rec.RunTime.Valid)
}

func TestNormalizeTimeUnit(t *testing.T) {
	n := New(core.GB, core.Minutes)

	rec, err := n.Normalize(&core.JobRecord{
		JobID:  "1001",
		State:  core.StateCompleted,
		Submit: ts(9, 0),
		Start:  ts(10, 0),
		End:    ts(10, 30),
	})
	require.NoError(t, err)

	assert.Equal(t, core.Float(60), rec.QueueTime)
	assert.Equal(t, core.Float(30), rec.RunTime)
}

func TestNormalizeValidation(t *testing.T) {
	n := New(core.GB, core.Hours)

	cases := []struct {
		name string
		rec  core.JobRecord
	}{
		{"negative alloc cpus", core.JobRecord{JobID: "1", AllocCPUs: core.Float(-1)}},
		{"negative req mem", core.JobRecord{JobID: "2", ReqMem: core.Memory(-4, core.GB)}},
		{"negative max rss", core.JobRecord{JobID: "3", MaxRSS: core.Memory(-1, core.KB)}},
		{"empty job id", core.JobRecord{}},
		{"terminal end before start", core.JobRecord{
			JobID: "4", State: core.StateCompleted, Start: ts(12, 0), End: ts(10, 0),
		}},
		{"terminal start before submit", core.JobRecord{
			JobID: "5", State: core.StateFailed, Submit: ts(12, 0), Start: ts(10, 0),
		}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec, err := n.Normalize(&c.rec)
			assert.Nil(t, rec)
			var verr *core.ValidationError
			require.Error(t, err)
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestNormalizeNonTerminalClampsNegativeQueueTime(t *testing.T) {
	n := New(core.GB, core.Hours)

	// Clock skew on a running job clamps to zero instead of failing.
	rec, err := n.Normalize(&core.JobRecord{
		JobID:  "1001",
		State:  core.StateRunning,
		Submit: ts(10, 30),
		Start:  ts(10, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, core.Float(0), rec.QueueTime)
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	n := New(core.GB, core.Hours)
	in := &core.JobRecord{
		JobID:  "1001",
		State:  core.StateCompleted,
		ReqMem: core.Memory(2048, core.MB),
	}
	before := *in
	_, err := n.Normalize(in)
	require.NoError(t, err)
	assert.Equal(t, before, *in)
}
