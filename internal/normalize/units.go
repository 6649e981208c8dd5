package normalize

import "github.com/hpcfair/slurmplot/pkg/core"

// Explicit conversion tables. Units convert through a fixed base factor, never
// inferred from magnitude.

var memToKB = map[core.MemoryUnit]float64{
	core.KB: 1,
	core.MB: 1 << 10,
	core.GB: 1 << 20,
	core.TB: 1 << 30,
}

var timeToSeconds = map[core.TimeUnit]float64{
	core.Seconds: 1,
	core.Minutes: 60,
	core.Hours:   3600,
}

// ConvertMemory converts v between memory units, e.g. 2048 MB to GB = 2.0.
func ConvertMemory(v float64, from, to core.MemoryUnit) float64 {
	return v * memToKB[from] / memToKB[to]
}

// ConvertSeconds expresses a duration in seconds in the target time unit.
func ConvertSeconds(seconds float64, to core.TimeUnit) float64 {
	return seconds / timeToSeconds[to]
}
