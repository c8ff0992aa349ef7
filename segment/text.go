package segment

import (
	"regexp"
	"strings"

	"github.com/hrstools/codebook/model"
)

// TextSegmenter implements the fixed-width text grammars. The core and
// post-exit tracks share the overall shape (section headers, a variable
// name line followed by a metadata line, value-code rows, "=" separators)
// but differ in indentation rules and how complete the metadata line must
// be before a line counts as a variable boundary.
type TextSegmenter struct {
	track model.Track

	// allowIndented accepts variable name lines with leading
	// whitespace. Core variable names are anchored at column 0.
	allowIndented bool

	// requireFullMeta demands a complete Section/Level/Type metadata
	// line; otherwise a Type: or Width: token is enough.
	requireFullMeta bool

	// metaLookahead is how many following lines may separate a variable
	// name line from its metadata line.
	metaLookahead int
}

// NewCoreText returns the grammar for core-track codebook text files.
func NewCoreText() *TextSegmenter {
	return &TextSegmenter{
		track:         model.TrackCore,
		metaLookahead: 4,
	}
}

// NewPostExitText returns the grammar for post-exit codebook text files.
func NewPostExitText() *TextSegmenter {
	return &TextSegmenter{
		track:           model.TrackPostExit,
		allowIndented:   true,
		requireFullMeta: true,
		metaLookahead:   8,
	}
}

// Track returns the grammar's source track.
func (s *TextSegmenter) Track() model.Track {
	return s.track
}

var varDescRe = regexp.MustCompile(`^([A-Z][A-Z0-9_]{1,7})\s{2,}(\S.*)$`)

// Segment splits the document line by line. Lines that match neither a
// section header nor a variable boundary are continuation text of the
// open block; with no block open they are counted as orphans.
func (s *TextSegmenter) Segment(content string) *Result {
	lines := strings.Split(content, "\n")
	res := &Result{}

	var open *Block
	flush := func() {
		if open != nil {
			res.Blocks = append(res.Blocks, *open)
			open = nil
		}
	}

	for i, raw := range lines {
		lineNo := i + 1
		line := strings.TrimSpace(raw)

		if separatorRe.MatchString(line) {
			flush()
			continue
		}

		if m := sectionRe.FindStringSubmatch(line); m != nil {
			flush()
			res.Blocks = append(res.Blocks, Block{
				Kind:  KindSectionHeader,
				Code:  strings.ToUpper(m[1]),
				Name:  strings.TrimSpace(m[2]),
				Level: ParseLevel(strings.TrimSpace(m[3])),
				Line:  lineNo,
			})
			continue
		}

		// A section-looking line the grammar cannot read is flagged
		// inline rather than failing the document.
		if looksLikeSection(line) {
			flush()
			res.Blocks = append(res.Blocks, Block{
				Kind:   KindMalformed,
				Lines:  []string{raw},
				Line:   lineNo,
				Reason: "unrecognized section header",
			})
			continue
		}

		if name, ok := s.variableStart(raw, line, lines[i+1:]); ok {
			flush()
			open = &Block{
				Kind:    KindVariable,
				VarName: name,
				Lines:   []string{raw},
				Line:    lineNo,
			}
			continue
		}

		if line == "" {
			continue
		}

		if open != nil {
			open.Lines = append(open.Lines, raw)
			continue
		}

		res.Orphans = append(res.Orphans, Orphan{Line: lineNo, Text: line})
	}

	flush()
	res.Blocks = append(res.Blocks, Block{Kind: KindEndOfDocument, Line: len(lines)})
	return res
}

// variableStart reports whether the line opens a variable block: the name
// token shape must match and a metadata line must follow within the
// lookahead window (or share the line). The window skips blank lines.
func (s *TextSegmenter) variableStart(raw, line string, rest []string) (string, bool) {
	if !s.allowIndented && len(raw) > 0 && (raw[0] == ' ' || raw[0] == '\t') {
		return "", false
	}

	var name string
	if m := varDescRe.FindStringSubmatch(line); m != nil {
		name = m[1]
	} else if IsVarName(line) {
		name = line
	} else {
		return "", false
	}

	if s.hasMeta(line) {
		return name, true
	}
	seen := 0
	for _, next := range rest {
		trimmed := strings.TrimSpace(next)
		if trimmed == "" {
			continue
		}
		if s.hasMeta(trimmed) {
			return name, true
		}
		seen++
		if seen >= s.metaLookahead {
			break
		}
	}
	return "", false
}

// hasMeta reports whether a line is a variable metadata line. Values are
// not validated here; the variable block parser rejects bad ones.
func (s *TextSegmenter) hasMeta(line string) bool {
	if s.requireFullMeta {
		return strings.Contains(line, "Section:") && strings.Contains(line, "Type:")
	}
	return strings.Contains(line, "Type:") || strings.Contains(line, "Width:")
}

// looksLikeSection flags lines that start a section marker but do not
// parse, e.g. a numeric section code.
func looksLikeSection(line string) bool {
	lower := strings.ToLower(line)
	return strings.HasPrefix(lower, "section ") &&
		strings.Contains(line, ":") &&
		!sectionRe.MatchString(line)
}
