// Package stats implements the statistics engine: the per-event update
// rules applied to a pp.PP and the enclosing state.State. The engine holds
// no state of its own; every method is a pure function of its arguments,
// called by the interceptor while the caller holds the process-wide lock.
package stats

import (
	"time"

	"github.com/go-dhat/dhat/internal/pp"
	"github.com/go-dhat/dhat/internal/state"
)

// OnAlloc applies a successful allocation of size bytes at pp, recorded at
// now.
func OnAlloc(s *state.State, p *pp.PP, size uint64, now time.Time) {
	s.TotalBlocks++
	s.TotalBytes += size

	p.TotalBlocks++
	p.TotalBytes += size

	if p.Heap == nil {
		return
	}

	p.Heap.CurrBlocks++
	p.Heap.CurrBytes += size
	p.Heap.SnapshotMaxIfPeak()

	s.Heap.CurrBlocks++
	s.Heap.CurrBytes += size
	s.SnapshotGlobalPeakIfAtPeak(now)
}

// OnRealloc applies a realloc of an address already in the live table, from
// oldSize to newSize, at pp, recorded at now. If the realloc shrinks
// curr_bytes, the peak-snapshot sweep runs first, since we may be coming
// down off a peak.
func OnRealloc(s *state.State, p *pp.PP, oldSize, newSize uint64, now time.Time) {
	shrinking := newSize < oldSize
	if shrinking {
		s.SweepPeakSnapshot()
	}

	delta := int64(newSize) - int64(oldSize)

	s.TotalBlocks++
	s.TotalBytes += newSize

	p.TotalBlocks++
	p.TotalBytes += newSize

	if p.Heap == nil {
		return
	}

	p.Heap.CurrBytes = addSignedUint64(p.Heap.CurrBytes, delta)
	p.Heap.SnapshotMaxIfPeak()

	s.Heap.CurrBytes = addSignedUint64(s.Heap.CurrBytes, delta)
	s.SnapshotGlobalPeakIfAtPeak(now)
}

// OnReallocUntracked applies a realloc whose prior address was never in the
// live table (it predates the profiler). It is treated exactly as a fresh
// alloc of newSize.
func OnReallocUntracked(s *state.State, p *pp.PP, newSize uint64, now time.Time) {
	OnAlloc(s, p, newSize, now)
}

// OnDealloc applies a deallocation of size bytes at pp, whose allocation
// lasted aliveFor. The peak-snapshot sweep runs first, since we may be
// leaving a peak.
func OnDealloc(s *state.State, p *pp.PP, size uint64, aliveFor time.Duration) {
	s.SweepPeakSnapshot()

	if p.Heap == nil {
		return
	}

	p.Heap.CurrBlocks--
	p.Heap.CurrBytes -= size
	p.Heap.TotalLifetime += aliveFor

	s.Heap.CurrBlocks--
	s.Heap.CurrBytes -= size
}

// OnAdHocEvent applies a weighted ad-hoc event at pp. No live-block or peak
// bookkeeping applies.
func OnAdHocEvent(s *state.State, p *pp.PP, weight uint64) {
	s.TotalBlocks++
	s.TotalBytes += weight

	p.TotalBlocks++
	p.TotalBytes += weight
}

// addSignedUint64 applies a signed delta to an unsigned running total. It
// exists because realloc deltas are signed (a shrink is a negative delta)
// while the totals they adjust are unsigned byte counts.
func addSignedUint64(base uint64, delta int64) uint64 {
	if delta >= 0 {
		return base + uint64(delta)
	}

	return base - uint64(-delta)
}
