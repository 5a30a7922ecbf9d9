// Package reentry provides a goroutine-local re-entrancy guard.
//
// Go has no thread-local storage, so the guard keys a sync.Map by a
// lightweight goroutine id parsed out of runtime.Stack. The guard is only
// ever touched by the goroutine that owns it, which keeps this cheap
// relative to the locking the caller does around the rest of its work.
package reentry

import (
	"runtime"
	"strconv"
	"sync"
)

// Guard short-circuits recursive entry from the same goroutine.
type Guard struct {
	active sync.Map // goroutine id (int64) -> struct{}
}

// Enter marks the current goroutine as active and reports whether it was
// already active (i.e. this is a nested call). Callers that get true back
// must not record the operation; they should forward it to whatever inner
// implementation they wrap and return immediately.
func (g *Guard) Enter() (alreadyActive bool) {
	id := goroutineID()
	_, alreadyActive = g.active.LoadOrStore(id, struct{}{})

	return alreadyActive
}

// Exit clears the current goroutine's active flag. It is a no-op if
// wasAlreadyActive is true, so a nested call's Exit doesn't clear the
// outermost call's flag early.
func (g *Guard) Exit(wasAlreadyActive bool) {
	if wasAlreadyActive {
		return
	}

	g.active.Delete(goroutineID())
}

// Acquire enters the guard and returns a release function to be deferred.
// It also reports whether this call is nested; nested callers should bail
// out of their critical section entirely rather than calling the returned
// release function early.
func Acquire(g *Guard) (nested bool, release func()) {
	nested = g.Enter()

	return nested, func() { g.Exit(nested) }
}

// goroutineID parses the numeric id out of the "goroutine N [state]:" header
// that runtime.Stack always writes first. It's the standard Go idiom for
// goroutine-local bookkeeping in the absence of real thread-locals.
func goroutineID() int64 {
	var buf [64]byte

	n := runtime.Stack(buf[:], false)
	b := buf[:n]

	const prefix = "goroutine "
	if len(b) <= len(prefix) || string(b[:len(prefix)]) != prefix {
		return -1
	}

	b = b[len(prefix):]

	i := 0
	for i < len(b) && b[i] != ' ' {
		i++
	}

	id, err := strconv.ParseInt(string(b[:i]), 10, 64)
	if err != nil {
		return -1
	}

	return id
}
