package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-dhat/dhat/internal/backtrace"
)

// symtab builds the frame string table (Doc.Ftbl), de-duplicating frames
// that format to the same string. Index 0 is always the synthetic
// "[root]" sentinel.
type symtab struct {
	strings []string
	index   map[string]int
}

func newSymtab() *symtab {
	return &symtab{
		strings: []string{"[root]"},
		index:   map[string]int{"[root]": 0},
	}
}

// intern returns the ftbl index for s, creating a new entry if s hasn't
// been seen before.
func (t *symtab) intern(s string) int {
	if idx, ok := t.index[s]; ok {
		return idx
	}

	idx := len(t.strings)
	t.strings = append(t.strings, s)
	t.index[s] = idx

	return idx
}

// formatFrame renders one resolved frame as
// "{ip:hex}: {symbol_name} ({path}:{line}:{col})", with missing fields
// rendered as "???" and paths trimmed to their last three components.
func formatFrame(f backtrace.Frame) string {
	symbol := f.Function
	if symbol == "" {
		symbol = "???"
	}

	path := trimPath(f.File)

	line := "???"
	if f.Line > 0 {
		line = strconv.Itoa(f.Line)
	}

	col := "???"
	if f.Column > 0 {
		col = strconv.Itoa(f.Column)
	}

	return fmt.Sprintf("0x%x: %s (%s:%s:%s)", f.IP, symbol, path, line, col)
}

// trimPath keeps at most the last three "/"-separated components of p.
func trimPath(p string) string {
	if p == "" {
		return "???"
	}

	parts := strings.Split(p, "/")
	if len(parts) > 3 {
		parts = parts[len(parts)-3:]
	}

	return strings.Join(parts, "/")
}
