// Package report builds and serializes DHAT file format version 2
// documents, and prints the human-readable stderr summary.
package report

// Doc is the top-level DHAT JSON document. Field names are bit-exact with
// the external schema; the json tags, not the Go field names, are the
// compatibility surface.
type Doc struct {
	DhatFileVersion int    `json:"dhatFileVersion"`
	Mode            string `json:"mode"`
	Verb            string `json:"verb"`
	Bklt            bool   `json:"bklt"`
	Bkacc           bool   `json:"bkacc"`
	Bu              string `json:"bu,omitempty"`
	Bsu             string `json:"bsu,omitempty"`
	Bksu            string `json:"bksu,omitempty"`
	Tu              string `json:"tu"`
	MicroTu         string `json:"Mtu"`
	Tuth            *int   `json:"tuth,omitempty"`
	Cmd             string `json:"cmd"`
	Pid             int    `json:"pid"`
	Tg              *int64 `json:"tg,omitempty"`
	Te              int64  `json:"te"`

	PPs  []PPRecord `json:"pps"`
	Ftbl []string   `json:"ftbl"`
}

// PPRecord is one program point's entry in Doc.PPs. Optional fields are
// nil (and therefore omitted) when the session was not in heap mode.
type PPRecord struct {
	TotalBytes  uint64 `json:"tb"`
	TotalBlocks uint64 `json:"tbk"`

	TotalLifetimeUs *uint64 `json:"tl,omitempty"`
	MaxBytes        *uint64 `json:"mb,omitempty"`
	MaxBlocks       *uint64 `json:"mbk,omitempty"`
	AtTgmaxBytes    *uint64 `json:"gb,omitempty"`
	AtTgmaxBlocks   *uint64 `json:"gbk,omitempty"`
	CurrBytes       *uint64 `json:"eb,omitempty"`
	CurrBlocks      *uint64 `json:"ebk,omitempty"`

	Fs []int `json:"fs,omitempty"`
}

func u64ptr(v uint64) *uint64 { return &v }
func i64ptr(v int64) *int64   { return &v }
func intptr(v int) *int       { return &v }
