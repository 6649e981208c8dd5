package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupMetricUnknown(t *testing.T) {
	_, err := LookupMetric("foo_bar")
	var merr *InvalidMetricError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "foo_bar", merr.Name)
}

func TestLookupMetricsDefaultsToAll(t *testing.T) {
	defs, err := LookupMetrics(nil)
	require.NoError(t, err)
	require.Len(t, defs, len(MetricNames))
	for i, d := range defs {
		assert.Equal(t, MetricNames[i], d.Name)
	}
}

func TestLookupMetricsPreservesRequestOrder(t *testing.T) {
	defs, err := LookupMetrics([]string{"run_time", "job_count", "req_cpus"})
	require.NoError(t, err)
	require.Len(t, defs, 3)
	assert.Equal(t, "run_time", defs[0].Name)
	assert.Equal(t, "job_count", defs[1].Name)
	assert.Equal(t, "req_cpus", defs[2].Name)
}

func TestLookupMetricsFailsOnFirstUnknown(t *testing.T) {
	_, err := LookupMetrics([]string{"job_count", "nope"})
	var merr *InvalidMetricError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "nope", merr.Name)
}

func TestUsedMemAliasesMaxRSS(t *testing.T) {
	alias, err := LookupMetric("used_mem")
	require.NoError(t, err)
	assert.Equal(t, "max_rss", alias.AliasOf)

	rec := &NormalizedRecord{MaxRSS: Float(3.5)}
	target, err := LookupMetric("max_rss")
	require.NoError(t, err)
	assert.Equal(t, target.Source(rec), alias.Source(rec))
}

func TestEveryMetricButCountHasSource(t *testing.T) {
	for _, name := range MetricNames {
		def, err := LookupMetric(name)
		require.NoError(t, err)
		if def.Class == AggCount {
			assert.Nil(t, def.Source, name)
		} else {
			assert.NotNil(t, def.Source, name)
		}
	}
}

func TestDisplayUnits(t *testing.T) {
	assert.Equal(t, "jobs", UnitJobs.DisplayUnit(GB, Hours))
	assert.Equal(t, "GB", UnitMemory.DisplayUnit(GB, Hours))
	assert.Equal(t, "MB", UnitMemory.DisplayUnit(MB, Hours))
	assert.Equal(t, "minutes", UnitTimeSpan.DisplayUnit(GB, Minutes))
	assert.Equal(t, "CPU-hours", UnitCPUHours.DisplayUnit(GB, Hours))
}

func TestBucketTimeFallsBackToSubmit(t *testing.T) {
	submit := Time(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	begin := Time(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))
	started := NormalizedRecord{Submit: submit, Start: begin}
	pending := NormalizedRecord{Submit: submit}
	neither := NormalizedRecord{}

	assert.Equal(t, started.Start, started.BucketTime())
	assert.Equal(t, pending.Submit, pending.BucketTime())
	assert.False(t, neither.BucketTime().Valid)
}
