// Package dhat is a heap and ad-hoc profiler: it intercepts allocation
// traffic passed through an Interceptor, aggregates it by call stack, and
// emits a DHAT-file-format-version-2 report compatible with dh_view.html.
//
// Exactly one Profiler may be running at a time, mirroring the single
// process-wide instance the original dhat-rs crate maintains via a static.
// Construct one with NewBuilder(...).Build(), and Stop() it (typically via
// defer) when profiling should end.
package dhat

import (
	"sync"
	"time"

	"github.com/go-dhat/dhat/internal/backtrace"
	"github.com/go-dhat/dhat/internal/state"
)

type phase int

const (
	phaseReady phase = iota
	phaseRunning
	phasePostAssert
)

var (
	mu           sync.Mutex
	currentPhase phase = phaseReady
	current      *state.State
)

// startBacktrace captures the reference backtrace used by the trim oracle.
// skip follows runtime.Callers' convention; 3 omits runtime.Callers, the
// capturer, and startBacktrace itself, so the capture starts at
// startBacktrace's caller.
func startBacktrace(skip int) backtrace.Backtrace {
	ips := backtrace.RuntimeCapturer{}.Capture(skip, 64)

	return backtrace.New(ips)
}

// now is a seam for tests that need deterministic timestamps; production
// code always uses time.Now.
var now = time.Now
