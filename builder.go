package dhat

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-dhat/dhat/internal/backtrace"
	"github.com/go-dhat/dhat/internal/report"
	"github.com/go-dhat/dhat/internal/state"
	"github.com/go-dhat/dhat/internal/trim"
)

// Builder configures a Profiler before it starts. Construct one with
// NewBuilder and apply Options.
type Builder struct {
	allocator Allocator

	adHoc    bool
	testing  bool
	fileName string
	trimCap  trim.FrameCap
	echoJSON bool
}

// Option configures a Builder.
type Option func(*Builder)

// AdHoc switches the profiler into ad-hoc event-counting mode. The default
// is heap profiling.
func AdHoc() Option {
	return func(b *Builder) { b.adHoc = true }
}

// WithTesting enables testing mode, required for Assert/AssertEqual/
// AssertNotEqual and disabling automatic report emission on Stop.
func WithTesting() Option {
	return func(b *Builder) { b.testing = true }
}

// WithFileName overrides the default report file name
// ("dhat-heap.json"/"dhat-ad-hoc.json").
func WithFileName(name string) Option {
	return func(b *Builder) { b.fileName = name }
}

// WithEchoJSON makes Stop also print the raw JSON report to stdout, for
// test harnesses that want to inspect it without a second file read.
func WithEchoJSON() Option {
	return func(b *Builder) { b.echoJSON = true }
}

// WithTrimFrames sets the frame-capture cap. Values under 4 clamp to 4.
func WithTrimFrames(n int) Option {
	return func(b *Builder) { b.trimCap = trim.WithLimit(n) }
}

// WithNoFrameCap disables the numeric frame-capture cap while keeping
// semantic top/bottom trimming.
func WithNoFrameCap() Option {
	return func(b *Builder) { b.trimCap = trim.NoFrameCap }
}

// WithNoTrim disables all backtrace trimming, numeric and semantic.
func WithNoTrim() Option {
	return func(b *Builder) { b.trimCap = trim.NoTrim }
}

// NewBuilder creates a Builder wrapping allocator, the concrete system
// allocator the Interceptor will delegate to. Pass SystemAllocator for the
// Go-native default.
func NewBuilder(allocator Allocator, opts ...Option) *Builder {
	b := &Builder{
		allocator: allocator,
		trimCap:   trim.DefaultFrameCap,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Profiler is the live handle returned by Build. Call Stop (typically via
// defer) to end the session.
type Profiler struct {
	interceptor *Interceptor
	fileName    string
	testing     bool
	stopped     bool
}

// Build performs the Ready -> Running transition. It fails if a profiler is
// already running anywhere in the process.
func (b *Builder) Build() (*Profiler, error) {
	mu.Lock()
	defer mu.Unlock()

	if currentPhase != phaseReady {
		return nil, fmt.Errorf("%s", errCreatingWhileRunning)
	}

	mode := state.Heap

	fileName := b.fileName
	if b.adHoc {
		mode = state.AdHoc

		if fileName == "" {
			fileName = "dhat-ad-hoc.json"
		}
	} else if fileName == "" {
		fileName = "dhat-heap.json"
	}

	start := startBacktrace(3)
	current = state.New(mode, b.testing, fileName, b.trimCap, b.echoJSON, now(), start)
	currentPhase = phaseRunning

	ic := newInterceptor(b.allocator)

	return &Profiler{interceptor: ic, fileName: fileName, testing: b.testing}, nil
}

// Interceptor returns the Allocator the profiled program should route its
// allocation traffic through.
func (p *Profiler) Interceptor() *Interceptor {
	return p.interceptor
}

// Stop performs the Running -> Ready transition (or PostAssert -> Ready, if
// an assertion already fired). Unless the profiler was built with
// WithTesting, the report is emitted now. Go has no destructors, so callers
// are expected to call Stop via defer.
func (p *Profiler) Stop() {
	mu.Lock()
	defer mu.Unlock()

	if p.stopped {
		return
	}

	p.stopped = true

	switch currentPhase {
	case phasePostAssert:
		currentPhase = phaseReady
		current = nil

		return
	case phaseRunning:
		if !p.testing {
			emitReport(p.fileName)
		}

		currentPhase = phaseReady
		current = nil
	}
}

// SaveToMemory builds the report as it stands right now and returns it as a
// string, without writing a file or ending the session. It mirrors the
// original dhat-rs crate's ProfilerBuilder::save_to_memory, used throughout
// its own test suite.
func (p *Profiler) SaveToMemory() (string, error) {
	mu.Lock()
	defer mu.Unlock()

	if currentPhase != phaseRunning {
		return "", fmt.Errorf("dhat: saving a report when no profiler is running")
	}

	doc := report.Build(current, now(), commandLine(), os.Getpid(), backtrace.RuntimeResolver{})

	return report.WriteString(doc)
}

// emitReport builds and writes the report to fileName, then prints the
// stderr summary. Write failures are logged, not panicked: a report-write
// failure must not prevent Stop from completing.
func emitReport(fileName string) {
	doc := report.Build(current, now(), commandLine(), os.Getpid(), backtrace.RuntimeResolver{})

	if err := report.WriteFile(doc, fileName); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	report.WriteSummary(os.Stderr, current, fileName)

	if current.EchoJSON {
		if str, err := report.WriteString(doc); err == nil {
			fmt.Println(str)
		}
	}
}

// commandLine renders os.Args the way the DHAT schema's "cmd" field
// expects: a single space-joined string.
func commandLine() string {
	return strings.Join(os.Args, " ")
}
