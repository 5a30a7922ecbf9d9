// Package sysinfo reports host memory diagnostics used to annotate the
// report summaries printed by the dhatctl CLI. It is not part of the core
// accounting path.
package sysinfo

// MemInfo describes host-level memory facts at the moment it was sampled.
type MemInfo struct {
	PageSize  int
	TotalRAM  uint64
	FreeRAM   uint64
}

// Sample gathers a MemInfo for the current host. Platforms without a
// dedicated implementation fall back to runtime.MemStats via the sample
// function in sysinfo_generic.go.
func Sample() MemInfo {
	return sample()
}
