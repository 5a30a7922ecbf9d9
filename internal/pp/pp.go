// Package pp implements the program-point table: an append-only vector of
// per-call-stack aggregate records addressed by stable integer index, plus
// the backtrace-to-index map used to find or create them.
package pp

import (
	"time"

	"github.com/go-dhat/dhat/internal/backtrace"
)

// HeapPP holds the heap-mode-only fields of a PP.
type HeapPP struct {
	CurrBlocks    uint64
	CurrBytes     uint64
	MaxBlocks     uint64
	MaxBytes      uint64
	AtTgmaxBlocks uint64
	AtTgmaxBytes  uint64
	TotalLifetime time.Duration
}

// PP is one program point: the aggregate statistics for a single call stack.
type PP struct {
	Backtrace backtrace.Backtrace

	TotalBlocks uint64
	TotalBytes  uint64

	// Heap is non-nil iff the table was created in heap mode.
	Heap *HeapPP
}

// SnapshotMaxIfPeak copies Curr* into Max* when Curr has reached or exceeded
// the prior max, applying a "ties broken by latest" rule.
func (h *HeapPP) SnapshotMaxIfPeak() {
	if h.CurrBytes >= h.MaxBytes {
		h.MaxBytes = h.CurrBytes
		h.MaxBlocks = h.CurrBlocks
	}
}

// SnapshotTgmax copies Curr* into AtTgmax* unconditionally, used by the
// global peak-snapshot sweep.
func (h *HeapPP) SnapshotTgmax() {
	h.AtTgmaxBytes = h.CurrBytes
	h.AtTgmaxBlocks = h.CurrBlocks
}

// Table is the append-only PP vector plus its backtrace index.
type Table struct {
	heapMode bool

	entries []*PP
	index   map[backtrace.Key]int
}

// NewTable creates an empty table. heapMode controls whether newly created
// PPs carry a HeapPP.
func NewTable(heapMode bool) *Table {
	return &Table{
		heapMode: heapMode,
		index:    make(map[backtrace.Key]int),
	}
}

// GetOrCreate looks up bt's program point, creating a fresh zero-valued one
// on first observation. The returned index is stable for the table's
// lifetime; the table never removes entries.
func (t *Table) GetOrCreate(bt backtrace.Backtrace) (index int, p *PP) {
	key := bt.AsKey()

	if idx, ok := t.index[key]; ok {
		return idx, t.entries[idx]
	}

	fresh := &PP{Backtrace: bt}
	if t.heapMode {
		fresh.Heap = &HeapPP{}
	}

	idx := len(t.entries)
	t.entries = append(t.entries, fresh)
	t.index[key] = idx

	return idx, fresh
}

// Get returns the PP at index, or nil if index is out of range.
func (t *Table) Get(index int) *PP {
	if index < 0 || index >= len(t.entries) {
		return nil
	}

	return t.entries[index]
}

// Len reports the number of program points recorded so far.
func (t *Table) Len() int {
	return len(t.entries)
}

// All returns the table's entries in creation order. The returned slice
// aliases the table's backing array and must not be mutated by the caller.
func (t *Table) All() []*PP {
	return t.entries
}
