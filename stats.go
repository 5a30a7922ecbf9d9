package dhat

import "github.com/go-dhat/dhat/internal/state"

// HeapStats is a point-in-time snapshot of the running heap-mode
// statistics, returned by GetHeapStats.
type HeapStats struct {
	TotalBlocks uint64
	TotalBytes  uint64
	CurrBlocks  uint64
	CurrBytes   uint64
	MaxBlocks   uint64
	MaxBytes    uint64
}

// AdHocStats is a point-in-time snapshot of the running ad-hoc-mode
// statistics, returned by GetAdHocStats.
type AdHocStats struct {
	TotalBlocks uint64
	TotalBytes  uint64
}

// GetHeapStats returns the current heap statistics. It panics with a
// diagnostic string if no profiler is running, the profiler is in ad-hoc
// mode, or an assertion has already failed this session.
func GetHeapStats() HeapStats {
	mu.Lock()
	defer mu.Unlock()

	checkStatsPreconditions(errGettingHeapStatsNotRunning)

	if current.Mode != state.Heap {
		panic(errGettingHeapStatsInAdHoc)
	}

	return HeapStats{
		TotalBlocks: current.TotalBlocks,
		TotalBytes:  current.TotalBytes,
		CurrBlocks:  current.Heap.CurrBlocks,
		CurrBytes:   current.Heap.CurrBytes,
		MaxBlocks:   current.Heap.MaxBlocks,
		MaxBytes:    current.Heap.MaxBytes,
	}
}

// GetAdHocStats returns the current ad-hoc statistics. It panics with a
// diagnostic string if no profiler is running, the profiler is in heap
// mode, or an assertion has already failed this session.
func GetAdHocStats() AdHocStats {
	mu.Lock()
	defer mu.Unlock()

	checkStatsPreconditions(errGettingAdHocStatsNotRunning)

	if current.Mode != state.AdHoc {
		panic(errGettingAdHocStatsInHeap)
	}

	return AdHocStats{
		TotalBlocks: current.TotalBlocks,
		TotalBytes:  current.TotalBytes,
	}
}

// checkStatsPreconditions panics with notRunningMsg if no profiler is
// running, or with the shared "asserting after the profiler has asserted"
// string if one already failed an assertion this session — that
// diagnostic applies to any stats/assert operation, not only to Assert
// itself.
func checkStatsPreconditions(notRunningMsg string) {
	switch currentPhase {
	case phaseReady:
		panic(notRunningMsg)
	case phasePostAssert:
		panic(errAssertingAfterAsserted)
	}
}
