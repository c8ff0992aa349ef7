// Package segment splits raw codebook documents into an ordered stream of
// typed blocks, independent of the original markup. Each source track has
// its own layout grammar; grammars are strategy values selected through a
// registry keyed by track, so adding a fourth layout is a new variant, not
// a subclass.
package segment

import (
	"regexp"

	"github.com/hrstools/codebook/model"
)

// Kind discriminates block types in the segmenter's output stream.
type Kind string

// Block kinds.
const (
	// KindSectionHeader opens a new section context.
	KindSectionHeader Kind = "section_header"

	// KindVariable holds one variable's raw block.
	KindVariable Kind = "variable"

	// KindMalformed marks a block boundary that could not be segmented
	// cleanly. It is recorded and skipped; segmentation continues.
	KindMalformed Kind = "malformed"

	// KindEndOfDocument terminates every block stream.
	KindEndOfDocument Kind = "end_of_document"
)

// Block is one segment of a document.
type Block struct {
	Kind Kind

	// Code, Name, and Level are set for section header blocks.
	Code  string
	Name  string
	Level model.Level

	// VarName is the variable-name token for variable blocks.
	VarName string

	// Lines holds the block's raw text lines (text grammars).
	Lines []string

	// Rows holds the block's table rows (HTML grammar); Rows[0] is the
	// row that opened the block.
	Rows [][]string

	// Line is the 1-based source line (or row ordinal) the block
	// started at.
	Line int

	// Reason describes why a malformed block was flagged.
	Reason string
}

// Orphan is a line that matched no pattern while no block was open. It is
// reported, not fatal.
type Orphan struct {
	Line int
	Text string
}

// Result is the ordered block stream for one document. The final block is
// always KindEndOfDocument.
type Result struct {
	Blocks  []Block
	Orphans []Orphan
}

// Segmenter is one track's layout grammar.
type Segmenter interface {
	// Segment splits the raw document into typed blocks. A single
	// malformed block never fails the document.
	Segment(content string) *Result

	// Track returns the source track this grammar serves.
	Track() model.Track
}

// Shared token shapes. A variable-name token is 2-8 uppercase
// letters/digits (underscores allowed after the first), starting with a
// letter.
var (
	varNameRe = regexp.MustCompile(`^[A-Z][A-Z0-9_]{1,7}$`)

	// sectionRe matches "Section A: COVERSCREEN (Respondent)"; the
	// level suffix is optional.
	sectionRe = regexp.MustCompile(`(?i)^section\s+([A-Z]+):\s+(.+?)(?:\s+\((.+?)\))?\s*$`)

	separatorRe = regexp.MustCompile(`^={10,}\s*$`)
)

// IsVarName reports whether the token has the variable-name shape.
func IsVarName(token string) bool {
	return varNameRe.MatchString(token)
}

// ParseLevel maps a free-form level label onto a known Level. Unknown
// labels default to respondent level, matching the source documents'
// convention of omitting the label for respondent sections.
func ParseLevel(s string) model.Level {
	switch s {
	case string(model.LevelHousehold), string(model.LevelRespondent),
		string(model.LevelJobs), string(model.LevelPension),
		string(model.LevelSiblings), string(model.LevelHHMember),
		string(model.LevelToChild), string(model.LevelFromChild),
		string(model.LevelHelper):
		return model.Level(s)
	}
	return model.LevelRespondent
}
