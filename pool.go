package psconv

import "runtime"

// Process count sizing constants.
const (
	// MinProcessCount ensures at least one slot is available.
	MinProcessCount = 1

	// MaxAutoProcessCount caps the automatic worker count; each Ghostscript
	// worker can hold hundreds of MB on large documents.
	MaxAutoProcessCount = 8

	// cpuDivisor leaves headroom for the caller and for Ghostscript's own threads.
	cpuDivisor = 2
)

// ResolveProcessCount determines how many engine invocations to allow.
// Priority: explicit workers > GOMAXPROCS-based calculation.
// Exported for use by servers and CLIs.
func ResolveProcessCount(workers int) int {
	// Explicit value takes priority
	if workers > 0 {
		return workers
	}

	// Auto-calculate based on GOMAXPROCS (adjusted by automaxprocs for containers)
	n := runtime.GOMAXPROCS(0) / cpuDivisor

	if n < MinProcessCount {
		return MinProcessCount
	}
	if n > MaxAutoProcessCount {
		return MaxAutoProcessCount
	}
	return n
}
