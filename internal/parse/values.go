package parse

import (
	"strconv"
	"strings"
	"time"

	"github.com/hpcfair/slurmplot/pkg/core"
)

const sacctTimeLayout = "2006-01-02T15:04:05"

// isUnreported matches the placeholders sacct prints for fields it has no
// value for.
func isUnreported(s string) bool {
	switch s {
	case "", "Unknown", "None", "N/A", "INVALID":
		return true
	}
	return false
}

// parseSacctTime parses a sacct timestamp. ok is false only for malformed
// input; unreported placeholders come back as a clean absent value.
func parseSacctTime(s string) (core.OptionalTime, bool) {
	if isUnreported(s) {
		return core.NoTime(), true
	}
	t, err := time.Parse(sacctTimeLayout, s)
	if err != nil {
		return core.NoTime(), false
	}
	return core.Time(t.UTC()), true
}

func parseSacctFloat(s string) (core.OptionalFloat, bool) {
	if isUnreported(s) {
		return core.NoFloat(), true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return core.NoFloat(), false
	}
	return core.Float(v), true
}

// parseSacctMemory parses Slurm memory values like "4000M", "2Gn", "1234K".
// The trailing n/c (per-node / per-core) marker on ReqMem is dropped; a bare
// number is taken as MB, Slurm's default memory unit.
func parseSacctMemory(s string) (core.MemoryValue, bool) {
	if isUnreported(s) {
		return core.NoMemory(), true
	}
	s = strings.TrimSuffix(strings.TrimSuffix(s, "n"), "c")
	if s == "" {
		return core.NoMemory(), false
	}

	unit := core.MB
	switch s[len(s)-1] {
	case 'K', 'k':
		unit = core.KB
		s = s[:len(s)-1]
	case 'M', 'm':
		unit = core.MB
		s = s[:len(s)-1]
	case 'G', 'g':
		unit = core.GB
		s = s[:len(s)-1]
	case 'T', 't':
		unit = core.TB
		s = s[:len(s)-1]
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return core.NoMemory(), false
	}
	return core.Memory(v, unit), true
}

// parseTRESGPUs extracts the GPU count from a TRES string such as
// "billing=4,cpu=4,gres/gpu=2,mem=16G,node=1". Typed counts like
// "gres/gpu:a100=2" add to the total. A TRES string without any gpu entry
// means zero GPUs allocated, which is distinct from the field being absent.
func parseTRESGPUs(s string) (core.OptionalFloat, bool) {
	if isUnreported(s) {
		return core.NoFloat(), true
	}
	total := 0.0
	for _, part := range strings.Split(s, ",") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		key := kv[0]
		if key != "gres/gpu" && !strings.HasPrefix(key, "gres/gpu:") {
			continue
		}
		v, err := strconv.ParseFloat(kv[1], 64)
		if err != nil {
			return core.NoFloat(), false
		}
		total += v
	}
	return core.Float(total), true
}

// parseSacctState strips the annotation Slurm appends to some states, e.g.
// "CANCELLED by 1234" becomes "CANCELLED".
func parseSacctState(s string) string {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i]
	}
	return s
}
