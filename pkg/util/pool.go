package util

import "runtime"

// GetOptimalPoolSize returns the pool size used for CPU-bound work:
// min(max(runtime.NumCPU() * 2, 4), 32).
//
// Twice the core count keeps parsers available while others are blocked in
// CGO calls into the grammar; the floor keeps small machines from
// serializing, and the cap bounds how many parser instances a busy server
// keeps alive at once.
func GetOptimalPoolSize() int {
	cores := runtime.NumCPU()
	poolSize := cores * 2

	if poolSize < 4 {
		poolSize = 4
	}
	if poolSize > 32 {
		poolSize = 32
	}

	return poolSize
}

// GetOptimalPoolSizeWithOverride returns override when positive, otherwise
// GetOptimalPoolSize(). Tests and tuning flags use the override.
func GetOptimalPoolSizeWithOverride(override int) int {
	if override > 0 {
		return override
	}
	return GetOptimalPoolSize()
}
