package dhat

import (
	"fmt"
	"reflect"
	"strings"
)

// Assert checks a boolean predicate. A failing assertion transitions the
// profiler to PostAssert, emits the report immediately, and panics with
// "dhat: assertion failed: " followed by a message built from msgAndArgs
// (a format string plus arguments when more than one value is given,
// fmt.Sprint otherwise) — Go's analogue of the original's panic!-based
// abort. Calling
// Assert outside a Running, testing-mode profiler panics with the
// corresponding diagnostic string, and calling it again after an assertion
// has already failed panics with "asserting after the profiler has
// asserted".
func Assert(cond bool, msgAndArgs ...any) {
	assertCommon(cond, formatAssertMsg(msgAndArgs...))
}

// AssertEqual asserts that got and want are reflect.DeepEqual.
func AssertEqual(got, want any, msgAndArgs ...any) {
	cond := reflect.DeepEqual(got, want)
	assertCommon(cond, assertDetail(msgAndArgs, fmt.Sprintf("got %v, want %v", got, want)))
}

// AssertNotEqual asserts that got and notWant are not reflect.DeepEqual.
func AssertNotEqual(got, notWant any, msgAndArgs ...any) {
	cond := !reflect.DeepEqual(got, notWant)
	assertCommon(cond, assertDetail(msgAndArgs, fmt.Sprintf("got %v, did not want %v", got, notWant)))
}

func assertDetail(msgAndArgs []any, detail string) string {
	if len(msgAndArgs) == 0 {
		return detail
	}

	return formatAssertMsg(msgAndArgs...) + ": " + detail
}

func formatAssertMsg(msgAndArgs ...any) string {
	if len(msgAndArgs) == 0 {
		return "assertion failed"
	}

	if format, ok := msgAndArgs[0].(string); ok && len(msgAndArgs) > 1 {
		return fmt.Sprintf(format, msgAndArgs[1:]...)
	}

	return fmt.Sprint(msgAndArgs...)
}

// assertCommon is the shared precondition/transition body for Assert and
// its variants: precondition checks, then either a no-op (assertion held)
// or the Running -> PostAssert transition plus immediate report emission.
func assertCommon(cond bool, msg string) {
	mu.Lock()

	switch currentPhase {
	case phaseReady:
		mu.Unlock()
		panic(errAssertingNotRunning)
	case phasePostAssert:
		mu.Unlock()
		panic(errAssertingAfterAsserted)
	}

	if !current.Testing {
		mu.Unlock()
		panic(errAssertingNotTesting)
	}

	if cond {
		mu.Unlock()

		return
	}

	fileName := current.FileName
	emitReport(fileName)
	currentPhase = phasePostAssert
	mu.Unlock()

	panic(fmt.Sprintf("dhat: assertion failed: %s", msg))
}

// TestingT is the minimal subset of *testing.T that ExpectAssertionFailure
// needs, so this package doesn't have to import "testing" outside its own
// tests.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
}

// ExpectAssertionFailure runs fn, which is expected to panic with a message
// containing wantMsg (typically one of the exact diagnostic strings, or the
// detail passed to Assert/AssertEqual/AssertNotEqual). It mirrors the
// original dhat-rs crate's assert_is_panic test helper.
func ExpectAssertionFailure(t TestingT, fn func(), wantMsg string) {
	t.Helper()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected a panic containing %q, got none", wantMsg)

			return
		}

		msg, ok := r.(string)
		if !ok {
			t.Fatalf("expected a string panic value, got %T: %v", r, r)

			return
		}

		if !strings.Contains(msg, wantMsg) {
			t.Fatalf("panic message %q does not contain %q", msg, wantMsg)
		}
	}()

	fn()
}
