package dhat

// RecordEvent registers a weighted ad-hoc event at the caller's call
// stack. It is the public entry point for ad-hoc mode: programs call it
// directly at instrumented code points rather than routing it through an
// Allocator. A no-op outside a Running ad-hoc-mode profiler.
func (p *Profiler) RecordEvent(weight uint64) {
	p.interceptor.AdHocEvent(weight)
}
