package parse

import (
	"time"

	"github.com/google/uuid"
)

// EntryKind classifies one recoverable failure recorded during a parse
// run.
type EntryKind string

// Report entry kinds. None of these fail the run; they are counted and
// carried on the report.
const (
	// EntryMalformedBlock is a block boundary the segmenter flagged.
	EntryMalformedBlock EntryKind = "malformed_block"

	// EntryRejectedVariable is a variable block missing required
	// metadata (name, type, or width) or carrying non-numeric values.
	EntryRejectedVariable EntryKind = "rejected_variable"

	// EntryUnparseableValueCodeRow is a value-code row that matched no
	// row grammar and was dropped.
	EntryUnparseableValueCodeRow EntryKind = "unparseable_value_code_row"

	// EntryOrphanLine is a line outside any block.
	EntryOrphanLine EntryKind = "orphan_line"
)

// Entry is one recorded failure.
type Entry struct {
	Kind EntryKind `json:"kind"`

	// Line is the source line (or table-row ordinal) of the failure.
	Line int `json:"line"`

	// Variable names the variable being parsed, when one was in scope.
	Variable string `json:"variable,omitempty"`

	// Detail is a human-readable reason.
	Detail string `json:"detail,omitempty"`
}

// Report accumulates the outcome of parsing one document. A report with
// entries is a degraded success, not a failure; callers decide how much
// degradation they tolerate.
type Report struct {
	// RunID uniquely identifies this parse run.
	RunID string `json:"run_id"`

	// Source and Year identify the document.
	Source string `json:"source"`
	Year   int    `json:"year"`

	// Started and Finished bound the run.
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`

	// EmptyCodebook is set when the document yielded zero variables. It
	// is a flag, not an error.
	EmptyCodebook bool `json:"empty_codebook"`

	// Entries lists every recoverable failure in document order.
	Entries []Entry `json:"entries,omitempty"`
}

// NewReport starts a report for one document.
func NewReport(source string, year int) *Report {
	return &Report{
		RunID:   uuid.NewString(),
		Source:  source,
		Year:    year,
		Started: time.Now().UTC(),
	}
}

// Add records one failure.
func (r *Report) Add(kind EntryKind, line int, variable, detail string) {
	r.Entries = append(r.Entries, Entry{
		Kind:     kind,
		Line:     line,
		Variable: variable,
		Detail:   detail,
	})
}

// Count returns the number of entries of one kind.
func (r *Report) Count(kind EntryKind) int {
	n := 0
	for _, e := range r.Entries {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Finish stamps the end time.
func (r *Report) Finish() {
	r.Finished = time.Now().UTC()
}
