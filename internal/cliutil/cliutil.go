// Package cliutil provides the small set of shared helpers dhatctl's
// subcommands use: usage/help formatting, a verbosity-gated logger, and
// consistent error exit handling.
package cliutil

import (
	"fmt"
	"os"
	"time"
)

// ExitWithError prints an error message and exits with code 1.
func ExitWithError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// Logger is a minimal verbosity-gated logger for CLI output.
type Logger struct {
	Verbose bool
}

// NewLogger creates a Logger.
func NewLogger(verbose bool) *Logger {
	return &Logger{Verbose: verbose}
}

// Info logs a message only when Verbose is set.
func (l *Logger) Info(format string, args ...any) {
	if l.Verbose {
		fmt.Printf("[INFO] %s: %s\n", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
	}
}

// Error always logs, regardless of Verbose.
func (l *Logger) Error(format string, args ...any) {
	fmt.Printf("[ERROR] %s: %s\n", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
}

// FlagInfo describes one command-line flag for PrintCommandUsage.
type FlagInfo struct {
	Name    string
	Usage   string
	Default string
}

// CommandInfo describes one dhatctl subcommand for PrintUsage/PrintCommandUsage.
type CommandInfo struct {
	Name        string
	Usage       string
	Description string
	Examples    []string
	Flags       []FlagInfo
}

// PrintUsage prints the top-level "dhatctl <command>" help listing.
func PrintUsage(tool string, commands []CommandInfo) {
	fmt.Printf("%s - DHAT report tools\n\n", tool)
	fmt.Printf("USAGE:\n    %s <command> [OPTIONS]\n\n", tool)

	if len(commands) > 0 {
		fmt.Printf("COMMANDS:\n")

		for _, cmd := range commands {
			fmt.Printf("    %-12s %s\n", cmd.Name, cmd.Description)
		}

		fmt.Printf("\n")
	}

	fmt.Printf("Use '%s <command> --help' for more information about a command.\n", tool)
}

// PrintCommandUsage prints detailed help for a single subcommand.
func PrintCommandUsage(tool string, cmd CommandInfo) {
	fmt.Printf("%s %s - %s\n\n", tool, cmd.Name, cmd.Description)
	fmt.Printf("USAGE:\n    %s\n\n", cmd.Usage)

	if len(cmd.Flags) > 0 {
		fmt.Printf("OPTIONS:\n")

		for _, flag := range cmd.Flags {
			fmt.Printf("    --%-20s %s\n", flag.Name, flag.Usage)

			if flag.Default != "" {
				fmt.Printf("    %-22s Default: %s\n", "", flag.Default)
			}
		}

		fmt.Printf("\n")
	}

	if len(cmd.Examples) > 0 {
		fmt.Printf("EXAMPLES:\n")

		for _, example := range cmd.Examples {
			fmt.Printf("    %s\n", example)
		}

		fmt.Printf("\n")
	}
}

// ValidateArgs returns an error naming usage if len(args) < minArgs.
func ValidateArgs(args []string, minArgs int, usage string) error {
	if len(args) < minArgs {
		return fmt.Errorf("insufficient arguments\nUsage: %s", usage)
	}

	return nil
}
