package archive

import (
	"io"
	"testing"
	"time"

	"github.com/hpcfair/slurmplot/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRoundTrip(t *testing.T) {
	submit := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	rec := &core.JobRecord{
		JobID:      "12345",
		Account:    "proj1",
		Partition:  "gpu",
		User:       "alice",
		State:      core.StateCompleted,
		Submit:     core.Time(submit),
		Start:      core.Time(submit.Add(time.Hour)),
		End:        core.Time(submit.Add(3 * time.Hour)),
		ReqCPUs:    core.Float(4),
		AllocCPUs:  core.Float(4),
		AllocGPUs:  core.Float(1),
		CPUTimeRaw: core.Float(28800),
		ReqMem:     core.Memory(8, core.GB),
		MaxRSS:     core.Memory(3145728, core.KB),
	}

	assert.Equal(t, rec, toDO(rec).toRecord())
}

func TestRoundTripKeepsAbsentFieldsAbsent(t *testing.T) {
	rec := &core.JobRecord{
		JobID:  "99",
		State:  core.StatePending,
		Submit: core.Time(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)),
	}

	do := toDO(rec)
	assert.Nil(t, do.Start)
	assert.Nil(t, do.ReqCPUs)
	assert.Nil(t, do.MaxRSSRaw)

	back := do.toRecord()
	assert.False(t, back.Start.Valid)
	assert.False(t, back.ReqCPUs.Valid)
	assert.False(t, back.MaxRSS.Valid)
	assert.Equal(t, rec, back)
}

func TestZeroIsNotAbsent(t *testing.T) {
	rec := &core.JobRecord{
		JobID:     "7",
		Submit:    core.Time(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)),
		AllocGPUs: core.Float(0),
	}

	back := toDO(rec).toRecord()
	require.True(t, back.AllocGPUs.Valid)
	assert.Zero(t, back.AllocGPUs.Value)
}

func TestReaderReplaysInOrder(t *testing.T) {
	recs := []*core.JobRecord{{JobID: "1"}, {JobID: "2"}}
	r := NewReader(recs)

	first, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "1", first.JobID)

	second, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "2", second.JobID)

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestReaderEmpty(t *testing.T) {
	_, err := NewReader(nil).Next()
	assert.Equal(t, io.EOF, err)
}
