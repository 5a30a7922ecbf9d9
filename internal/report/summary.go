package report

import (
	"fmt"
	"io"

	"github.com/go-dhat/dhat/internal/state"
)

// WriteSummary prints the human-readable stderr summary. The totals come
// straight from s rather than from the JSON document, and the unit labels
// ("units"/"events" in ad-hoc mode, "bytes"/"blocks" otherwise) follow
// s.Mode.
func WriteSummary(w io.Writer, s *state.State, fileName string) {
	bytesUnit := "bytes"
	if s.Mode == state.AdHoc {
		bytesUnit = "units"
	}

	blocksUnit := "blocks"
	if s.Mode == state.AdHoc {
		blocksUnit = "events"
	}

	fmt.Fprintf(w, "dhat: Total:     %s %s in %s %s\n",
		groupThousands(s.TotalBytes), bytesUnit, groupThousands(s.TotalBlocks), blocksUnit)

	if s.Heap != nil {
		fmt.Fprintf(w, "dhat: At t-gmax: %s bytes in %s blocks\n",
			groupThousands(s.Heap.MaxBytes), groupThousands(s.Heap.MaxBlocks))
		fmt.Fprintf(w, "dhat: At t-end:  %s bytes in %s blocks\n",
			groupThousands(s.Heap.CurrBytes), groupThousands(s.Heap.CurrBlocks))
	}

	fmt.Fprintf(w, "dhat: The data has been saved to %s, and is viewable with dhat/dh_view.html\n", fileName)
}

// groupThousands renders n with comma-separated thousands groups, e.g.
// 1234567 -> "1,234,567". fmt.Sprintf produces the digits; the
// grouping itself is plain byte shuffling, which is all the stdlib needs
// for this.
func groupThousands(n uint64) string {
	digits := fmt.Sprintf("%d", n)

	if len(digits) <= 3 {
		return digits
	}

	var out []byte

	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}

	out = append(out, digits[:lead]...)

	for i := lead; i < len(digits); i += 3 {
		out = append(out, ',')
		out = append(out, digits[i:i+3]...)
	}

	return string(out)
}
