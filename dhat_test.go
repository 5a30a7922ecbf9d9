package dhat

import (
	"os"
	"path/filepath"
	"testing"
	"unsafe"
)

// withCleanProfiler runs fn with a guarantee that the package-level
// singleton is Ready again afterward, even if fn panics (asserting tests
// rely on this).
func withCleanProfiler(t *testing.T, p *Profiler) {
	t.Helper()
	t.Cleanup(func() {
		defer func() { _ = recover() }()
		p.Stop()
	})
}

func tempReportPath(t *testing.T, name string) string {
	t.Helper()

	return filepath.Join(t.TempDir(), name)
}

// TestSingleLiveAlloc is scenario 1.
func TestSingleLiveAlloc(t *testing.T) {
	p, err := NewBuilder(SystemAllocator, WithFileName(tempReportPath(t, "dhat-heap.json"))).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	withCleanProfiler(t, p)

	ic := p.Interceptor()
	ic.Alloc(256)

	hs := GetHeapStats()
	if hs.TotalBlocks != 1 || hs.TotalBytes != 256 {
		t.Fatalf("totals = %d, %d, want 1, 256", hs.TotalBlocks, hs.TotalBytes)
	}

	if hs.CurrBlocks != 1 || hs.CurrBytes != 256 {
		t.Fatalf("curr = %d, %d, want 1, 256", hs.CurrBlocks, hs.CurrBytes)
	}

	if hs.MaxBlocks != 1 || hs.MaxBytes != 256 {
		t.Fatalf("max = %d, %d, want 1, 256", hs.MaxBlocks, hs.MaxBytes)
	}
}

// TestGrowViaRealloc is scenario 2.
func TestGrowViaRealloc(t *testing.T) {
	p, err := NewBuilder(SystemAllocator, WithFileName(tempReportPath(t, "dhat-heap.json"))).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	withCleanProfiler(t, p)

	ic := p.Interceptor()
	ptr := ic.Alloc(256)
	ic.Realloc(ptr, 256, 512)

	hs := GetHeapStats()
	if hs.TotalBlocks != 2 || hs.TotalBytes != 768 {
		t.Fatalf("totals = %d, %d, want 2, 768", hs.TotalBlocks, hs.TotalBytes)
	}

	if hs.CurrBlocks != 1 || hs.CurrBytes != 512 {
		t.Fatalf("curr = %d, %d, want 1, 512", hs.CurrBlocks, hs.CurrBytes)
	}

	if hs.MaxBytes != 512 {
		t.Fatalf("max bytes = %d, want 512", hs.MaxBytes)
	}
}

// siteA/B/C force three distinct call stacks for scenario 3.
func siteA(ic *Interceptor) unsafe.Pointer { return ic.Alloc(256) }
func siteB(ic *Interceptor) unsafe.Pointer { return ic.Alloc(256) }
func siteC(ic *Interceptor) unsafe.Pointer { return ic.Alloc(256) }

// TestThreeSitesOneFreed is scenario 3.
func TestThreeSitesOneFreed(t *testing.T) {
	p, err := NewBuilder(SystemAllocator, WithFileName(tempReportPath(t, "dhat-heap.json"))).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	withCleanProfiler(t, p)

	ic := p.Interceptor()
	siteA(ic)
	siteB(ic)
	ptrC := siteC(ic)
	ic.Free(ptrC, 256)

	hs := GetHeapStats()
	if hs.TotalBlocks != 3 || hs.TotalBytes != 768 {
		t.Fatalf("totals = %d, %d, want 3, 768", hs.TotalBlocks, hs.TotalBytes)
	}

	if hs.CurrBlocks != 2 || hs.CurrBytes != 512 {
		t.Fatalf("curr = %d, %d, want 2, 512", hs.CurrBlocks, hs.CurrBytes)
	}

	if hs.MaxBlocks != 3 || hs.MaxBytes != 768 {
		t.Fatalf("max = %d, %d, want 3, 768", hs.MaxBlocks, hs.MaxBytes)
	}
}

// TestHeapAssertionFailure is scenario 4.
func TestHeapAssertionFailure(t *testing.T) {
	p, err := NewBuilder(SystemAllocator, WithTesting(), WithFileName(tempReportPath(t, "dhat-heap.json"))).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	withCleanProfiler(t, p)

	ic := p.Interceptor()
	ic.Alloc(16)
	ic.Alloc(16)

	// This assertion holds and must not panic.
	func() {
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("holding assertion unexpectedly panicked: %v", r)
			}
		}()
		AssertEqual(GetHeapStats().CurrBlocks, uint64(2))
	}()

	ExpectAssertionFailure(t, func() {
		AssertEqual(GetHeapStats().CurrBytes, uint64(31))
	}, "dhat: assertion failed")

	ExpectAssertionFailure(t, func() {
		GetHeapStats()
	}, errAssertingAfterAsserted)
}

// TestAdHocCounting is scenario 5.
func TestAdHocCounting(t *testing.T) {
	p, err := NewBuilder(SystemAllocator, AdHoc(), WithFileName(tempReportPath(t, "dhat-ad-hoc.json"))).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	withCleanProfiler(t, p)

	for _, w := range []uint64{100, 1, 2, 3} {
		p.RecordEvent(w)
	}

	as := GetAdHocStats()
	if as.TotalBlocks != 4 || as.TotalBytes != 106 {
		t.Fatalf("totals = %d, %d, want 4, 106", as.TotalBlocks, as.TotalBytes)
	}

	ExpectAssertionFailure(t, func() {
		GetHeapStats()
	}, errGettingHeapStatsInAdHoc)

	// A heap allocation concurrent with ad-hoc events must not affect
	// ad-hoc counts: the interceptor is a no-op for Alloc outside heap mode.
	p.Interceptor().Alloc(64)

	as2 := GetAdHocStats()
	if as2.TotalBlocks != 4 || as2.TotalBytes != 106 {
		t.Fatalf("ad-hoc totals changed after an Alloc call: %d, %d", as2.TotalBlocks, as2.TotalBytes)
	}
}

// TestPreStartAllocations is scenario 6.
func TestPreStartAllocations(t *testing.T) {
	// Four allocations before the profiler exists, via the raw system
	// allocator directly (not through any Interceptor).
	pre := make([]unsafe.Pointer, 4)
	for i := range pre {
		pre[i] = SystemAllocator.Alloc(8)
	}

	p, err := NewBuilder(SystemAllocator, WithFileName(tempReportPath(t, "dhat-heap.json"))).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	withCleanProfiler(t, p)

	hs := GetHeapStats()
	if hs.TotalBlocks != 0 || hs.TotalBytes != 0 {
		t.Fatalf("fresh profiler has non-zero stats: %+v", hs)
	}

	ic := p.Interceptor()

	// Deallocating a pre-existing address: silently ignored.
	ic.Free(pre[0], 8)

	hs = GetHeapStats()
	if hs.CurrBlocks != 0 || hs.CurrBytes != 0 {
		t.Fatalf("dealloc of an untracked address mutated curr counters: %+v", hs)
	}

	// Reallocating a pre-existing address: counted as a fresh alloc of the
	// new size.
	ic.Realloc(pre[1], 8, 4096)

	hs = GetHeapStats()
	if hs.TotalBlocks != 1 || hs.TotalBytes != 4096 {
		t.Fatalf("totals = %d, %d, want 1, 4096", hs.TotalBlocks, hs.TotalBytes)
	}

	if hs.CurrBlocks != 1 || hs.CurrBytes != 4096 {
		t.Fatalf("curr = %d, %d, want 1, 4096", hs.CurrBlocks, hs.CurrBytes)
	}

	if hs.MaxBytes != 4096 {
		t.Fatalf("max bytes = %d, want 4096", hs.MaxBytes)
	}
}

func TestDiagnosticStringContract(t *testing.T) {
	ExpectAssertionFailure(t, func() { GetHeapStats() }, errGettingHeapStatsNotRunning)
	ExpectAssertionFailure(t, func() { GetAdHocStats() }, errGettingAdHocStatsNotRunning)
	ExpectAssertionFailure(t, func() { Assert(true) }, errAssertingNotRunning)

	p, err := NewBuilder(SystemAllocator, WithFileName(tempReportPath(t, "dhat-heap.json"))).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	withCleanProfiler(t, p)

	if _, err := NewBuilder(SystemAllocator).Build(); err == nil || err.Error() != errCreatingWhileRunning {
		t.Fatalf("Build while running: got %v, want %q", err, errCreatingWhileRunning)
	}

	ExpectAssertionFailure(t, func() { Assert(true) }, errAssertingNotTesting)
	ExpectAssertionFailure(t, func() { GetAdHocStats() }, errGettingAdHocStatsInHeap)
}

func TestReportFileIsWrittenOnStop(t *testing.T) {
	path := tempReportPath(t, "dhat-heap.json")

	p, err := NewBuilder(SystemAllocator, WithFileName(path)).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	p.Interceptor().Alloc(128)
	p.Stop()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected report file at %s: %v", path, err)
	}
}

func TestSaveToMemoryDoesNotEndSession(t *testing.T) {
	p, err := NewBuilder(SystemAllocator, WithFileName(tempReportPath(t, "dhat-heap.json"))).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	withCleanProfiler(t, p)

	p.Interceptor().Alloc(64)

	str, err := p.SaveToMemory()
	if err != nil {
		t.Fatalf("SaveToMemory: %v", err)
	}

	if str == "" {
		t.Fatal("SaveToMemory returned an empty string")
	}

	// The session should still be Running: a further stats call must not
	// panic.
	hs := GetHeapStats()
	if hs.TotalBytes != 64 {
		t.Fatalf("TotalBytes = %d, want 64 after SaveToMemory", hs.TotalBytes)
	}
}
