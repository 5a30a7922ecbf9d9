// Package trim implements the backtrace trimming heuristic: eliding frames
// internal to the profiler (top trim) and frames shared with the profiler's
// own startup backtrace (bottom trim), plus the heap-mode first-symbol-to-
// show scan used at report time.
package trim

import (
	"strings"

	"github.com/go-dhat/dhat/internal/backtrace"
)

// FrameCap is the trim_frames configuration knob. The zero FrameCap means
// "use the default cap of 10"; NoFrameCap disables the numeric cap
// (semantic trimming still applies); NoTrim disables all trimming.
type FrameCap struct {
	n       int
	noCap   bool
	noTrim  bool
	present bool
}

// DefaultFrameCap caps capture at 10 frames, the default.
var DefaultFrameCap = FrameCap{n: 10, present: true}

// NoFrameCap disables the numeric frame cap but keeps top/bottom trimming.
var NoFrameCap = FrameCap{noCap: true, present: true}

// NoTrim disables all trimming, numeric and semantic.
var NoTrim = FrameCap{noTrim: true, present: true}

// WithLimit builds a FrameCap from an explicit limit, clamping values under
// 4 up to 4.
func WithLimit(n int) FrameCap {
	if n < 4 {
		n = 4
	}

	return FrameCap{n: n, present: true}
}

// Limit returns the numeric cap and whether one applies.
func (c FrameCap) Limit() (n int, ok bool) {
	if !c.present {
		return DefaultFrameCap.n, true
	}

	if c.noCap || c.noTrim {
		return 0, false
	}

	return c.n, true
}

// Oracle computes, from a reference startup backtrace, which IPs to elide
// from the top and bottom of every subsequently captured backtrace.
type Oracle struct {
	startIPs []uintptr
	cap      FrameCap

	computed bool
	top      map[uintptr]struct{}
	bottom   map[uintptr]struct{}
}

// NewOracle creates an Oracle referencing the profiler's startup backtrace.
func NewOracle(startBacktrace backtrace.Backtrace, cap FrameCap) *Oracle {
	return &Oracle{startIPs: startBacktrace.IPs, cap: cap}
}

// EnsureComputed computes the trim sets from ips versus the startup
// backtrace, the first time it's called. Subsequent calls are no-ops: the
// trim sets are computed once, from the first non-reference backtrace.
func (o *Oracle) EnsureComputed(ips []uintptr) {
	if o.computed || o.cap.noTrim {
		o.computed = true

		return
	}

	o.computed = true
	o.top, o.bottom = computeTrimSets(ips, o.startIPs)
}

// computeTrimSets walks ips and start in lockstep from the top, marking
// equal IPs as top-trim, then from the bottom, marking equal IPs as
// bottom-trim. If either walk would consume an entire stack (the walks meet
// or one stack is exhausted), that set is discarded entirely: over-showing
// frames beats misaligning them.
func computeTrimSets(ips, start []uintptr) (top, bottom map[uintptr]struct{}) {
	top = make(map[uintptr]struct{})
	bottom = make(map[uintptr]struct{})

	n, m := len(ips), len(start)

	i := 0
	for i < n && i < m && ips[i] == start[i] {
		i++
	}
	// Discard the top set if the walk would consume an entire stack.
	if i < n && i < m {
		for k := 0; k < i; k++ {
			top[ips[k]] = struct{}{}
		}
	}

	j := 0
	for j < n && j < m && ips[n-1-j] == start[m-1-j] {
		j++
	}

	if j < n && j < m && i+j < n {
		for k := 0; k < j; k++ {
			bottom[ips[n-1-k]] = struct{}{}
		}
	}

	return top, bottom
}

// ShouldSkip reports whether ip is in the top-trim set (the caller should
// continue capturing past it without recording it).
func (o *Oracle) ShouldSkip(ip uintptr) bool {
	if o.top == nil {
		return false
	}

	_, skip := o.top[ip]

	return skip
}

// ShouldStop reports whether ip is in the bottom-trim set (the caller
// should stop capturing at it, without recording it).
func (o *Oracle) ShouldStop(ip uintptr) bool {
	if o.bottom == nil {
		return false
	}

	_, stop := o.bottom[ip]

	return stop
}

// Capture captures a trimmed backtrace using cap, skip (the runtime.Callers
// skip convention), and o's trim sets, consulting the oracle frame by frame.
func (o *Oracle) Capture(cap backtrace.Capturer, skip int) backtrace.Backtrace {
	limit := 256
	if n, ok := o.cap.Limit(); ok {
		limit = n
	}

	raw := cap.Capture(skip+1, limit*4+16) // overcapture; we filter below

	o.EnsureComputed(raw)

	out := make([]uintptr, 0, len(raw))

	for _, ip := range raw {
		if o.ShouldSkip(ip) {
			continue
		}

		if o.ShouldStop(ip) {
			break
		}

		out = append(out, ip)

		if n, ok := o.cap.Limit(); ok && len(out) >= n {
			break
		}
	}

	return backtrace.New(out)
}

// allocatorInternalPrefixes names the symbol prefixes that identify
// allocator-facing shim code. This denylist is platform/toolchain dependent
// by nature and is expected to need revisiting as the module's package
// layout changes.
var allocatorInternalPrefixes = []string{
	"github.com/go-dhat/dhat.",
	"github.com/go-dhat/dhat/internal/reentry.",
	"runtime.",
}

// FirstSymbolToShow scans frames back-to-front for the last frame matching
// an allocator-internal symbol. Frames above that index are elided in heap
// mode. Returns 0 (show everything) if no such frame is found.
func FirstSymbolToShow(frames []backtrace.Frame) int {
	for i := len(frames) - 1; i >= 0; i-- {
		fn := frames[i].Function
		for _, prefix := range allocatorInternalPrefixes {
			if strings.HasPrefix(fn, prefix) {
				return i
			}
		}
	}

	return 0
}
