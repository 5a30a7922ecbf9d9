package stats

import (
	"testing"
	"time"

	"github.com/go-dhat/dhat/internal/backtrace"
	"github.com/go-dhat/dhat/internal/state"
	"github.com/go-dhat/dhat/internal/trim"
)

func newHeapState() *state.State {
	start := backtrace.New([]uintptr{1})

	return state.New(state.Heap, false, "dhat-heap.json", trim.NoTrim, false, time.Unix(0, 0), start)
}

// TestSingleLiveAlloc is scenario 1.
func TestSingleLiveAlloc(t *testing.T) {
	s := newHeapState()
	now := time.Unix(0, 0)

	idx, p := s.PPTable.GetOrCreate(backtrace.New([]uintptr{10}))
	OnAlloc(s, p, 256, now)
	s.RecordLive(0xAAAA, idx, now)

	if s.TotalBlocks != 1 || s.TotalBytes != 256 {
		t.Fatalf("totals = %d, %d, want 1, 256", s.TotalBlocks, s.TotalBytes)
	}

	if s.Heap.CurrBlocks != 1 || s.Heap.CurrBytes != 256 {
		t.Fatalf("curr = %d, %d, want 1, 256", s.Heap.CurrBlocks, s.Heap.CurrBytes)
	}

	if s.Heap.MaxBlocks != 1 || s.Heap.MaxBytes != 256 {
		t.Fatalf("max = %d, %d, want 1, 256", s.Heap.MaxBlocks, s.Heap.MaxBytes)
	}

	if s.PPTable.Len() != 1 {
		t.Fatalf("PP count = %d, want 1", s.PPTable.Len())
	}

	if len(s.Heap.Live) != 1 {
		t.Fatalf("live count = %d, want 1", len(s.Heap.Live))
	}
}

// TestGrowViaRealloc is scenario 2.
func TestGrowViaRealloc(t *testing.T) {
	s := newHeapState()
	now := time.Unix(0, 0)

	idx, p := s.PPTable.GetOrCreate(backtrace.New([]uintptr{10}))
	OnAlloc(s, p, 256, now)
	s.RecordLive(0xAAAA, idx, now)

	s.RemoveLive(0xAAAA)
	OnRealloc(s, p, 256, 512, now)
	s.RecordLive(0xBBBB, idx, now)

	if s.TotalBlocks != 2 || s.TotalBytes != 768 {
		t.Fatalf("totals = %d, %d, want 2, 768", s.TotalBlocks, s.TotalBytes)
	}

	if s.Heap.CurrBlocks != 1 || s.Heap.CurrBytes != 512 {
		t.Fatalf("curr = %d, %d, want 1, 512", s.Heap.CurrBlocks, s.Heap.CurrBytes)
	}

	if s.Heap.MaxBytes != 512 {
		t.Fatalf("max bytes = %d, want 512", s.Heap.MaxBytes)
	}

	if s.PPTable.Len() != 1 {
		t.Fatalf("PP count = %d, want 1", s.PPTable.Len())
	}
}

// TestThreeSitesOneFreed is scenario 3.
func TestThreeSitesOneFreed(t *testing.T) {
	s := newHeapState()
	now := time.Unix(0, 0)

	idxA, pA := s.PPTable.GetOrCreate(backtrace.New([]uintptr{1}))
	OnAlloc(s, pA, 256, now)
	s.RecordLive(0x1, idxA, now)

	idxB, pB := s.PPTable.GetOrCreate(backtrace.New([]uintptr{2}))
	OnAlloc(s, pB, 256, now)
	s.RecordLive(0x2, idxB, now)

	idxC, pC := s.PPTable.GetOrCreate(backtrace.New([]uintptr{3}))
	OnAlloc(s, pC, 256, now)
	s.RecordLive(0x3, idxC, now)

	lb, ok := s.RemoveLive(0x3)
	if !ok {
		t.Fatal("address 0x3 should have been live")
	}

	OnDealloc(s, pC, 256, now.Sub(lb.AllocatedAt))

	if s.TotalBlocks != 3 || s.TotalBytes != 768 {
		t.Fatalf("totals = %d, %d, want 3, 768", s.TotalBlocks, s.TotalBytes)
	}

	if s.Heap.CurrBlocks != 2 || s.Heap.CurrBytes != 512 {
		t.Fatalf("curr = %d, %d, want 2, 512", s.Heap.CurrBlocks, s.Heap.CurrBytes)
	}

	if s.Heap.MaxBlocks != 3 || s.Heap.MaxBytes != 768 {
		t.Fatalf("max = %d, %d, want 3, 768", s.Heap.MaxBlocks, s.Heap.MaxBytes)
	}

	if s.PPTable.Len() != 3 {
		t.Fatalf("PP count = %d, want 3", s.PPTable.Len())
	}

	if pC.Heap.AtTgmaxBlocks != 1 || pC.Heap.AtTgmaxBytes != 256 {
		t.Fatalf("PP_C at-tgmax = %d, %d, want 1, 256", pC.Heap.AtTgmaxBlocks, pC.Heap.AtTgmaxBytes)
	}
}

func TestReallocUntrackedTreatedAsAlloc(t *testing.T) {
	s := newHeapState()
	now := time.Unix(0, 0)

	_, p := s.PPTable.GetOrCreate(backtrace.New([]uintptr{1}))
	OnReallocUntracked(s, p, 128, now)

	if s.TotalBlocks != 1 || s.TotalBytes != 128 {
		t.Fatalf("totals = %d, %d, want 1, 128", s.TotalBlocks, s.TotalBytes)
	}

	if s.Heap.CurrBytes != 128 {
		t.Fatalf("curr bytes = %d, want 128", s.Heap.CurrBytes)
	}
}

func TestDeallocOfUntrackedAddressIsIgnored(t *testing.T) {
	s := newHeapState()

	_, ok := s.RemoveLive(0xDEAD)
	if ok {
		t.Fatal("address was never live but RemoveLive reported ok")
	}

	if s.Heap.CurrBlocks != 0 || s.Heap.CurrBytes != 0 {
		t.Fatal("dealloc of an untracked address mutated curr counters")
	}
}

func TestAdHocEventWeightZero(t *testing.T) {
	s := state.New(state.AdHoc, false, "dhat-ad-hoc.json", trim.NoTrim, false, time.Unix(0, 0), backtrace.New(nil))

	_, p := s.PPTable.GetOrCreate(backtrace.New([]uintptr{1}))
	OnAdHocEvent(s, p, 0)

	if s.TotalBlocks != 1 || s.TotalBytes != 0 {
		t.Fatalf("totals = %d, %d, want 1, 0", s.TotalBlocks, s.TotalBytes)
	}
}

func TestAdHocCounting(t *testing.T) {
	s := state.New(state.AdHoc, false, "dhat-ad-hoc.json", trim.NoTrim, false, time.Unix(0, 0), backtrace.New(nil))

	_, p := s.PPTable.GetOrCreate(backtrace.New([]uintptr{1}))
	for _, w := range []uint64{100, 1, 2, 3} {
		OnAdHocEvent(s, p, w)
	}

	if s.TotalBlocks != 4 || s.TotalBytes != 106 {
		t.Fatalf("totals = %d, %d, want 4, 106", s.TotalBlocks, s.TotalBytes)
	}

	if s.Heap != nil {
		t.Fatal("ad-hoc-mode state should have a nil Heap")
	}
}
