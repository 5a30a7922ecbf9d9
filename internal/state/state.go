// Package state holds the process-wide profiling state: the live-block
// table, the cumulative totals, and the heap-mode peak bookkeeping. The
// statistics engine (internal/stats) mutates a *State under the caller's
// lock; State itself owns no locking — that belongs to the single
// process-wide mutex held by the lifecycle controller in the root package.
package state

import (
	"time"

	"github.com/go-dhat/dhat/internal/backtrace"
	"github.com/go-dhat/dhat/internal/pp"
	"github.com/go-dhat/dhat/internal/trim"
)

// Mode selects heap profiling or ad-hoc event counting.
type Mode int

const (
	Heap Mode = iota
	AdHoc
)

func (m Mode) String() string {
	if m == Heap {
		return "heap"
	}

	return "ad-hoc"
}

// LiveBlock records which program point produced a still-live allocation
// and when.
type LiveBlock struct {
	PPIndex     int
	AllocatedAt time.Time
}

// HeapGlobals is the heap-mode-only half of State.
type HeapGlobals struct {
	Live map[uintptr]LiveBlock

	CurrBlocks uint64
	CurrBytes  uint64
	MaxBlocks  uint64
	MaxBytes   uint64

	TgmaxInstant time.Time
}

// snapshotMaxIfPeak applies the "ties broken by latest" (>=) rule to the
// global peak.
func (hg *HeapGlobals) snapshotMaxIfPeak(now time.Time) {
	if hg.CurrBytes >= hg.MaxBytes {
		hg.MaxBytes = hg.CurrBytes
		hg.MaxBlocks = hg.CurrBlocks
		hg.TgmaxInstant = now
	}
}

// State is the full process-wide profiling state for one session.
type State struct {
	Mode    Mode
	Testing bool
	FileName string
	TrimCap trim.FrameCap
	EchoJSON bool

	StartInstant   time.Time
	StartBacktrace backtrace.Backtrace

	Oracle   *trim.Oracle
	PPTable  *pp.Table

	TotalBlocks uint64
	TotalBytes  uint64

	// Heap is non-nil iff Mode == Heap.
	Heap *HeapGlobals
}

// New constructs a fresh State for a session starting now, with startBT as
// the reference backtrace for trim computation.
func New(mode Mode, testing bool, fileName string, cap trim.FrameCap, echoJSON bool, now time.Time, startBT backtrace.Backtrace) *State {
	s := &State{
		Mode:           mode,
		Testing:        testing,
		FileName:       fileName,
		TrimCap:        cap,
		EchoJSON:       echoJSON,
		StartInstant:   now,
		StartBacktrace: startBT,
		Oracle:         trim.NewOracle(startBT, cap),
		PPTable:        pp.NewTable(mode == Heap),
	}

	if mode == Heap {
		// TgmaxInstant starts at session start, not the zero Time: the
		// global peak (zero blocks, zero bytes) is reached the instant
		// heap profiling begins, so tg is present in every heap-mode
		// report even if no allocation ever occurs.
		s.Heap = &HeapGlobals{Live: make(map[uintptr]LiveBlock), TgmaxInstant: now}
	}

	return s
}

// RecordLive inserts addr into the live table pointing at ppIndex, allocated
// at now. It is a no-op outside heap mode.
func (s *State) RecordLive(addr uintptr, ppIndex int, now time.Time) {
	if s.Heap == nil {
		return
	}

	s.Heap.Live[addr] = LiveBlock{PPIndex: ppIndex, AllocatedAt: now}
}

// RemoveLive deletes addr from the live table and returns its prior entry,
// if any. It is a no-op outside heap mode.
func (s *State) RemoveLive(addr uintptr) (LiveBlock, bool) {
	if s.Heap == nil {
		return LiveBlock{}, false
	}

	lb, ok := s.Heap.Live[addr]
	if ok {
		delete(s.Heap.Live, addr)
	}

	return lb, ok
}

// SnapshotGlobalPeakIfAtPeak applies the global peak >= rule. Called on
// every heap mutation that can raise curr_bytes.
func (s *State) SnapshotGlobalPeakIfAtPeak(now time.Time) {
	if s.Heap == nil {
		return
	}

	s.Heap.snapshotMaxIfPeak(now)
}

// SweepPeakSnapshot copies every PP's current heap counts into its
// at_tgmax_* fields, but only when curr_bytes is exactly at the recorded
// global max. This is the O(|PP|) sweep deferred to shrinking events and
// termination.
func (s *State) SweepPeakSnapshot() {
	if s.Heap == nil {
		return
	}

	if s.Heap.CurrBytes != s.Heap.MaxBytes {
		return
	}

	for _, p := range s.PPTable.All() {
		if p.Heap != nil {
			p.Heap.SnapshotTgmax()
		}
	}
}
