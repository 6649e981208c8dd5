package parse

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/hpcfair/slurmplot/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "JobID|Account|Partition|User|State|Submit|Start|End|ReqCPUS|AllocCPUS|ReqMem|MaxRSS|AllocTRES|CPUTimeRAW"

func readAll(t *testing.T, input string) ([]*core.JobRecord, core.Diagnostics) {
	t.Helper()
	r := NewReader(strings.NewReader(input), nil, nil)
	var recs []*core.JobRecord
	for {
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		recs = append(recs, rec)
	}
	return recs, r.Diagnostics()
}

func TestReaderParsesJobRecord(t *testing.T) {
	input := header + "\n" +
		"1001|proj1|gpu|alice|COMPLETED|2024-01-01T09:00:00|2024-01-01T10:00:00|2024-01-01T12:00:00|4|4|16Gn||billing=4,cpu=4,gres/gpu=2,mem=16G,node=1|28800\n"

	recs, diag := readAll(t, input)
	require.Len(t, recs, 1)
	rec := recs[0]

	assert.Equal(t, "1001", rec.JobID)
	assert.Equal(t, "proj1", rec.Account)
	assert.Equal(t, "gpu", rec.Partition)
	assert.Equal(t, "alice", rec.User)
	assert.Equal(t, core.StateCompleted, rec.State)
	assert.Equal(t, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), rec.Submit.Value)
	assert.True(t, rec.Start.Valid)
	assert.True(t, rec.End.Valid)
	assert.Equal(t, core.Float(4), rec.ReqCPUs)
	assert.Equal(t, core.Float(4), rec.AllocCPUs)
	assert.Equal(t, core.Memory(16, core.GB), rec.ReqMem)
	assert.False(t, rec.MaxRSS.Valid)
	assert.Equal(t, core.Float(2), rec.AllocGPUs)
	assert.Equal(t, core.Float(28800), rec.CPUTimeRaw)
	assert.Equal(t, 0, diag.ParseWarnings)
	assert.Equal(t, 1, diag.RecordsRead)
}

func TestReaderMergesStepRows(t *testing.T) {
	input := header + "\n" +
		"1001|proj1|gpu|alice|COMPLETED|2024-01-01T09:00:00|2024-01-01T10:00:00|2024-01-01T12:00:00|4|4|16Gn|||28800\n" +
		"1001.batch||||COMPLETED|2024-01-01T10:00:00|2024-01-01T10:00:00|2024-01-01T12:00:00|||0|2048K||\n" +
		"1001.0||||COMPLETED|2024-01-01T10:00:00|2024-01-01T10:00:00|2024-01-01T12:00:00|||0|3G||\n" +
		"1002|proj1|gpu|bob|FAILED|2024-01-01T09:30:00|2024-01-01T10:30:00|2024-01-01T11:00:00|2|2|8Gn|||3600\n"

	recs, diag := readAll(t, input)
	require.Len(t, recs, 2)

	// Parent carries the max MaxRSS over its steps.
	assert.Equal(t, core.Memory(3, core.GB), recs[0].MaxRSS)
	assert.Equal(t, "1002", recs[1].JobID)
	assert.Equal(t, 2, diag.StepsMerged)
	assert.Equal(t, 2, diag.RecordsRead)
}

func TestReaderDropsRecordWithoutJobID(t *testing.T) {
	input := header + "\n" +
		"|proj1|gpu|alice|COMPLETED|2024-01-01T09:00:00|||||||" + "|\n" +
		"1002|proj1|gpu|bob|COMPLETED|2024-01-01T09:30:00|||||||" + "|\n"

	recs, diag := readAll(t, input)
	require.Len(t, recs, 1)
	assert.Equal(t, "1002", recs[0].JobID)
	assert.Equal(t, 1, diag.ParseWarnings)
}

func TestReaderMalformedFieldBecomesAbsent(t *testing.T) {
	input := header + "\n" +
		"1001|proj1|gpu|alice|COMPLETED|2024-01-01T09:00:00|2024-01-01T10:00:00|not-a-time|banana|4|16Gn|||28800\n"

	recs, diag := readAll(t, input)
	require.Len(t, recs, 1)

	// The malformed End and ReqCPUS become absent; the record survives.
	assert.False(t, recs[0].End.Valid)
	assert.False(t, recs[0].ReqCPUs.Valid)
	assert.Equal(t, core.Float(4), recs[0].AllocCPUs)
	assert.Equal(t, 2, diag.ParseWarnings)
}

func TestReaderUnreportedPlaceholders(t *testing.T) {
	input := header + "\n" +
		"1001|proj1|gpu|alice|RUNNING|2024-01-01T09:00:00|Unknown|Unknown|4|4|16Gn|||None\n"

	recs, diag := readAll(t, input)
	require.Len(t, recs, 1)
	assert.False(t, recs[0].Start.Valid)
	assert.False(t, recs[0].End.Valid)
	assert.False(t, recs[0].CPUTimeRaw.Valid)
	assert.Equal(t, 0, diag.ParseWarnings)
}

func TestReaderColumnMismatch(t *testing.T) {
	input := header + "\n" +
		"1001|too|few|columns\n"

	recs, diag := readAll(t, input)
	assert.Len(t, recs, 0)
	assert.Equal(t, 1, diag.ParseWarnings)
}

func TestReaderEmptyInput(t *testing.T) {
	r := NewReader(strings.NewReader(""), nil, nil)
	_, err := r.Next()
	assert.Equal(t, io.EOF, err)
	// Subsequent calls stay EOF.
	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestReaderIgnoresUnmappedColumns(t *testing.T) {
	input := "JobID|SomethingElse|State\n" +
		"1001|whatever|COMPLETED\n"

	recs, diag := readAll(t, input)
	require.Len(t, recs, 1)
	assert.Equal(t, "1001", recs[0].JobID)
	assert.Equal(t, core.StateCompleted, recs[0].State)
	assert.Equal(t, 0, diag.ParseWarnings)
}

func TestParseSacctState(t *testing.T) {
	assert.Equal(t, "CANCELLED", parseSacctState("CANCELLED by 1234"))
	assert.Equal(t, "COMPLETED", parseSacctState("COMPLETED"))
}

func TestParseSacctMemory(t *testing.T) {
	v, ok := parseSacctMemory("4000M")
	assert.True(t, ok)
	assert.Equal(t, core.Memory(4000, core.MB), v)

	v, ok = parseSacctMemory("2Gn")
	assert.True(t, ok)
	assert.Equal(t, core.Memory(2, core.GB), v)

	v, ok = parseSacctMemory("1234K")
	assert.True(t, ok)
	assert.Equal(t, core.Memory(1234, core.KB), v)

	// Bare numbers default to MB.
	v, ok = parseSacctMemory("512")
	assert.True(t, ok)
	assert.Equal(t, core.Memory(512, core.MB), v)

	_, ok = parseSacctMemory("12QB")
	assert.False(t, ok)

	v, ok = parseSacctMemory("")
	assert.True(t, ok)
	assert.False(t, v.Valid)
}

func TestParseTRESGPUs(t *testing.T) {
	v, ok := parseTRESGPUs("billing=4,cpu=4,gres/gpu=2,mem=16G,node=1")
	assert.True(t, ok)
	assert.Equal(t, core.Float(2), v)

	// Typed GPU counts add up.
	v, ok = parseTRESGPUs("cpu=8,gres/gpu:a100=2,gres/gpu:v100=1,node=1")
	assert.True(t, ok)
	assert.Equal(t, core.Float(3), v)

	// A TRES string without GPUs means zero, not absent.
	v, ok = parseTRESGPUs("cpu=8,mem=16G,node=1")
	assert.True(t, ok)
	assert.Equal(t, core.Float(0), v)

	v, ok = parseTRESGPUs("")
	assert.True(t, ok)
	assert.False(t, v.Valid)
}
