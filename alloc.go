package dhat

import (
	"runtime"
	"unsafe"

	"github.com/go-dhat/dhat/internal/backtrace"
	"github.com/go-dhat/dhat/internal/reentry"
	"github.com/go-dhat/dhat/internal/state"
	"github.com/go-dhat/dhat/internal/stats"
)

// Allocator is the concrete system allocator an Interceptor wraps. Callers
// supply an implementation (SystemAllocator for the Go-native default, or a
// custom arena/pool), and Interceptor records every call routed through it.
//
// Free and Realloc carry the size the caller is responsible for tracking,
// since unsafe.Pointer carries no size metadata of its own (unlike a C
// allocator's Layout).
type Allocator interface {
	Alloc(size uintptr) unsafe.Pointer
	Free(ptr unsafe.Pointer, size uintptr)
	Realloc(ptr unsafe.Pointer, oldSize, newSize uintptr) unsafe.Pointer
}

// Interceptor wraps an Allocator and records every call through it while a
// Profiler is Running in heap mode: delegate to the inner allocator, then
// track stats under a lock.
type Interceptor struct {
	inner Allocator
	guard *reentry.Guard
}

func newInterceptor(inner Allocator) *Interceptor {
	return &Interceptor{inner: inner, guard: &reentry.Guard{}}
}

// Alloc records an allocation of size bytes at the caller's backtrace.
func (ic *Interceptor) Alloc(size uintptr) unsafe.Pointer {
	nested, release := reentry.Acquire(ic.guard)
	defer release()

	if nested {
		return ic.inner.Alloc(size)
	}

	ptr := ic.inner.Alloc(size)
	if ptr == nil {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()

	if currentPhase == phaseRunning && current.Mode == state.Heap {
		t := now()
		bt := current.Oracle.Capture(backtrace.RuntimeCapturer{}, 3)
		idx, p := current.PPTable.GetOrCreate(bt)

		stats.OnAlloc(current, p, uint64(size), t)
		current.RecordLive(uintptr(ptr), idx, t)
	}

	return ptr
}

// Free records a deallocation. Freeing an address not in the live table
// (e.g. one allocated before the profiler started) is silently ignored.
func (ic *Interceptor) Free(ptr unsafe.Pointer, size uintptr) {
	nested, release := reentry.Acquire(ic.guard)
	defer release()

	if nested {
		ic.inner.Free(ptr, size)

		return
	}

	mu.Lock()

	if currentPhase == phaseRunning && current.Mode == state.Heap {
		if lb, ok := current.RemoveLive(uintptr(ptr)); ok {
			if p := current.PPTable.Get(lb.PPIndex); p != nil {
				stats.OnDealloc(current, p, uint64(size), now().Sub(lb.AllocatedAt))
			}
		}
	}

	mu.Unlock()

	ic.inner.Free(ptr, size)
}

// Realloc records a resize. The old live entry (if any) is removed before
// the new one is inserted under the new address; an absent old entry is
// treated as a fresh allocation of newSize.
func (ic *Interceptor) Realloc(ptr unsafe.Pointer, oldSize, newSize uintptr) unsafe.Pointer {
	nested, release := reentry.Acquire(ic.guard)
	defer release()

	if nested {
		return ic.inner.Realloc(ptr, oldSize, newSize)
	}

	newPtr := ic.inner.Realloc(ptr, oldSize, newSize)
	if newPtr == nil {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()

	if currentPhase == phaseRunning && current.Mode == state.Heap {
		t := now()
		bt := current.Oracle.Capture(backtrace.RuntimeCapturer{}, 3)
		idx, p := current.PPTable.GetOrCreate(bt)

		if _, wasLive := current.RemoveLive(uintptr(ptr)); wasLive {
			stats.OnRealloc(current, p, uint64(oldSize), uint64(newSize), t)
		} else {
			stats.OnReallocUntracked(current, p, uint64(newSize), t)
		}

		current.RecordLive(uintptr(newPtr), idx, t)
	}

	return newPtr
}

// AdHocEvent records a weighted ad-hoc event at the caller's backtrace. It
// is a no-op unless a profiler is Running in ad-hoc mode.
func (ic *Interceptor) AdHocEvent(weight uint64) {
	nested, release := reentry.Acquire(ic.guard)
	defer release()

	if nested {
		return
	}

	mu.Lock()
	defer mu.Unlock()

	if currentPhase != phaseRunning || current.Mode != state.AdHoc {
		return
	}

	bt := current.Oracle.Capture(backtrace.RuntimeCapturer{}, 4)
	_, p := current.PPTable.GetOrCreate(bt)

	stats.OnAdHocEvent(current, p, weight)
}

type systemAllocator struct{}

// SystemAllocator is the default Allocator, backed by Go's own heap via
// make([]byte, n). It exists for programs with no custom allocator to
// wrap; profiling a real arena/pool allocator is the more useful case this
// interface is built for.
var SystemAllocator Allocator = systemAllocator{}

func (systemAllocator) Alloc(size uintptr) unsafe.Pointer {
	if size == 0 {
		return nil
	}

	b := make([]byte, size)
	ptr := unsafe.Pointer(&b[0])
	runtime.KeepAlive(b)

	return ptr
}

func (systemAllocator) Free(ptr unsafe.Pointer, size uintptr) {
	// Go's garbage collector owns reclamation; there is nothing to do here
	// beyond letting ptr's backing array become unreachable.
}

func (systemAllocator) Realloc(ptr unsafe.Pointer, oldSize, newSize uintptr) unsafe.Pointer {
	return systemAllocator{}.Alloc(newSize)
}
