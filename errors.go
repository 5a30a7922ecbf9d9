package dhat

// Diagnostic strings used by lifecycle-misuse panics. These are part of the
// testable contract: callers are expected to match on the exact string via
// recover(), so wording changes here are breaking changes.
const (
	errGettingHeapStatsNotRunning   = "dhat: getting heap stats when no profiler is running"
	errGettingAdHocStatsNotRunning  = "dhat: getting ad hoc stats when no profiler is running"
	errCreatingWhileRunning         = "dhat: creating a profiler while a profiler is already running"
	errGettingHeapStatsInAdHoc      = "dhat: getting heap stats while doing ad hoc profiling"
	errGettingAdHocStatsInHeap      = "dhat: getting ad hoc stats while doing heap profiling"
	errAssertingNotRunning          = "dhat: asserting when no profiler is running"
	errAssertingNotTesting          = "dhat: asserting while not in testing mode"
	errAssertingAfterAsserted       = "dhat: asserting after the profiler has asserted"
)
