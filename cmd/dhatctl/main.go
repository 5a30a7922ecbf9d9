// Command dhatctl inspects DHAT file format version 2 reports: printing a
// human-readable summary, validating them against a viewer's supported
// version range, and watching a report file for changes while a profiled
// process is still running.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-dhat/dhat/internal/cliutil"
	"github.com/go-dhat/dhat/internal/compat"
	"github.com/go-dhat/dhat/internal/report"
	"github.com/go-dhat/dhat/internal/sysinfo"
	"github.com/go-dhat/dhat/internal/watch"
)

const toolName = "dhatctl"

var commands = []cliutil.CommandInfo{
	{
		Name:        "summary",
		Description: "print a human-readable summary of a DHAT report",
		Usage:       toolName + " summary <path>",
		Examples:    []string{toolName + " summary dhat-heap.json"},
	},
	{
		Name:        "validate",
		Description: "check a report's dhatFileVersion against a viewer constraint",
		Usage:       toolName + " validate <path> [--viewer <constraint>]",
		Flags: []cliutil.FlagInfo{
			{Name: "viewer", Usage: "semver constraint a viewer must satisfy", Default: "^" + compat.ViewerVersion},
		},
		Examples: []string{toolName + " validate dhat-heap.json --viewer ^2.0.0"},
	},
	{
		Name:        "watch",
		Description: "re-print a report's summary every time it is rewritten",
		Usage:       toolName + " watch <path>",
		Examples:    []string{toolName + " watch dhat-heap.json"},
	},
}

func main() {
	if len(os.Args) < 2 {
		cliutil.PrintUsage(toolName, commands)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	if len(args) > 0 && (args[0] == "-h" || args[0] == "--help") {
		for _, c := range commands {
			if c.Name == cmd {
				cliutil.PrintCommandUsage(toolName, c)

				return
			}
		}
	}

	switch cmd {
	case "summary":
		runSummary(args)
	case "validate":
		runValidate(args)
	case "watch":
		runWatch(args)
	case "-h", "--help", "help":
		cliutil.PrintUsage(toolName, commands)
	default:
		cliutil.ExitWithError("unknown command %q", cmd)
	}
}

func loadDoc(path string) (*report.Doc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var doc report.Doc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return &doc, nil
}

// aggregate sums the per-program-point totals a full report.Build would
// have folded into a running state.State, for display purposes only.
func aggregate(doc *report.Doc) (blocks, bytesTotal uint64) {
	for _, pp := range doc.PPs {
		blocks += pp.TotalBlocks
		bytesTotal += pp.TotalBytes
	}

	return blocks, bytesTotal
}

func printSummary(doc *report.Doc, path string) {
	blocks, bytesTotal := aggregate(doc)

	fmt.Printf("dhat: Total:     %d bytes in %d blocks\n", bytesTotal, blocks)
	fmt.Printf("dhat: mode:      %s\n", doc.Mode)
	fmt.Printf("dhat: command:   %s\n", doc.Cmd)
	fmt.Printf("dhat: pid:       %d\n", doc.Pid)
	fmt.Printf("dhat: sites:     %d\n", len(doc.PPs))

	if doc.Tg != nil {
		fmt.Printf("dhat: t-gmax:    %d %s\n", *doc.Tg, doc.MicroTu)
	}

	fmt.Printf("dhat: t-end:     %d %s\n", doc.Te, doc.MicroTu)
	fmt.Printf("dhat: source:    %s\n", path)

	mem := sysinfo.Sample()
	fmt.Printf("dhat: host RAM:  %d bytes total, %d bytes free (page size %d)\n", mem.TotalRAM, mem.FreeRAM, mem.PageSize)
}

func runSummary(args []string) {
	if err := cliutil.ValidateArgs(args, 1, toolName+" summary <path>"); err != nil {
		cliutil.ExitWithError("%v", err)
	}

	doc, err := loadDoc(args[0])
	if err != nil {
		cliutil.ExitWithError("%v", err)
	}

	printSummary(doc, args[0])
}

func runValidate(args []string) {
	if err := cliutil.ValidateArgs(args, 1, toolName+" validate <path> [--viewer <constraint>]"); err != nil {
		cliutil.ExitWithError("%v", err)
	}

	constraint := "^" + compat.ViewerVersion

	for i := 1; i < len(args)-1; i++ {
		if args[i] == "--viewer" {
			constraint = args[i+1]
		}
	}

	doc, err := loadDoc(args[0])
	if err != nil {
		cliutil.ExitWithError("%v", err)
	}

	if err := compat.RequireViewer(doc.DhatFileVersion, constraint); err != nil {
		cliutil.ExitWithError("%v", err)
	}

	fmt.Printf("%s: dhatFileVersion %d satisfies %q\n", args[0], doc.DhatFileVersion, constraint)
}

func runWatch(args []string) {
	if err := cliutil.ValidateArgs(args, 1, toolName+" watch <path>"); err != nil {
		cliutil.ExitWithError("%v", err)
	}

	path := args[0]

	rw, err := watch.New(path)
	if err != nil {
		cliutil.ExitWithError("%v", err)
	}
	defer rw.Close()

	log := cliutil.NewLogger(true)

	if doc, err := loadDoc(path); err == nil {
		printSummary(doc, path)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	onChange := func(p string) {
		doc, err := loadDoc(p)
		if err != nil {
			log.Error("reading %s: %v", p, err)

			return
		}

		printSummary(doc, p)
	}

	onErr := func(err error) {
		log.Error("watch: %v", err)
	}

	if err := rw.Run(ctx, onChange, onErr); err != nil && err != context.Canceled {
		cliutil.ExitWithError("%v", err)
	}
}
