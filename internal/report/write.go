package report

import (
	"time"

	"github.com/go-dhat/dhat/internal/backtrace"
	"github.com/go-dhat/dhat/internal/state"
	"github.com/go-dhat/dhat/internal/trim"
)

// Build runs the report-writer's final sweep and fold, then assembles the
// Doc. now is the termination timestamp; cmd and pid populate the process
// identification fields; resolver resolves each PP's backtrace.
func Build(s *state.State, now time.Time, cmd string, pid int, resolver backtrace.Resolver) *Doc {
	// Step 1: final peak-snapshot sweep.
	s.SweepPeakSnapshot()

	// Step 2: fold every still-live block's age into its PP's lifetime total.
	if s.Heap != nil {
		for _, lb := range s.Heap.Live {
			if p := s.PPTable.Get(lb.PPIndex); p != nil && p.Heap != nil {
				p.Heap.TotalLifetime += now.Sub(lb.AllocatedAt)
			}
		}
	}

	st := newSymtab()

	doc := &Doc{
		DhatFileVersion: 2,
		Verb:            "Allocated",
		Bklt:            s.Mode == state.Heap,
		Bkacc:           false,
		Tu:              "µs",
		MicroTu:         "s",
		Cmd:             cmd,
		Pid:             pid,
		Te:              now.Sub(s.StartInstant).Microseconds(),
	}

	if s.Mode == state.Heap {
		doc.Mode = "rust-heap"
		doc.Tuth = intptr(10)

		// tg is present whenever heap mode is active, with or without any
		// allocations: TgmaxInstant is seeded to session start, so the
		// global peak always has an instant to report.
		if s.Heap != nil {
			doc.Tg = i64ptr(s.Heap.TgmaxInstant.Sub(s.StartInstant).Microseconds())
		}
	} else {
		doc.Mode = "rust-ad-hoc"
		doc.Bu = "unit"
		doc.Bsu = "units"
		doc.Bksu = "events"
	}

	// Per-PP frame-table construction and fs arrays.
	doc.PPs = make([]PPRecord, 0, s.PPTable.Len())

	for _, p := range s.PPTable.All() {
		resolved := backtrace.Resolve(p.Backtrace, resolver)
		frames := resolved.Frames()

		offset := 0
		if s.Mode == state.Heap {
			offset = trim.FirstSymbolToShow(frames)
		}

		fs := make([]int, 0, len(frames)-offset)
		for i := offset; i < len(frames); i++ {
			fs = append(fs, st.intern(formatFrame(frames[i])))
		}

		rec := PPRecord{
			TotalBytes:  p.TotalBytes,
			TotalBlocks: p.TotalBlocks,
			Fs:          fs,
		}

		if p.Heap != nil {
			rec.TotalLifetimeUs = u64ptr(uint64(p.Heap.TotalLifetime.Microseconds()))
			rec.MaxBytes = u64ptr(p.Heap.MaxBytes)
			rec.MaxBlocks = u64ptr(p.Heap.MaxBlocks)
			rec.AtTgmaxBytes = u64ptr(p.Heap.AtTgmaxBytes)
			rec.AtTgmaxBlocks = u64ptr(p.Heap.AtTgmaxBlocks)
			rec.CurrBytes = u64ptr(p.Heap.CurrBytes)
			rec.CurrBlocks = u64ptr(p.Heap.CurrBlocks)
		}

		doc.PPs = append(doc.PPs, rec)
	}

	doc.Ftbl = st.strings

	return doc
}
