//go:build !linux && !darwin && !windows

package sysinfo

import "runtime"

// sample falls back to what the Go runtime itself knows on platforms
// x/sys doesn't give us a dedicated host-memory query for. There is no real
// free-RAM signal available here, so FreeRAM stays 0; TotalRAM uses
// ms.Sys (bytes obtained from the OS by the runtime) as a lower-bound
// proxy, since it is the only host-memory-shaped number Go exposes
// without a syscall.
func sample() MemInfo {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	return MemInfo{
		PageSize: 4096,
		TotalRAM: ms.Sys,
		FreeRAM:  0,
	}
}
