package parse

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hrstools/codebook/model"
	"github.com/hrstools/codebook/naming"
	"github.com/hrstools/codebook/segment"
)

// ErrRejected marks a variable block that failed a required-field check.
// The block is dropped and reported; the document keeps parsing.
var ErrRejected = errors.New("variable rejected")

// VariableParser turns one segmented variable block into a Variable
// record. It owns the metadata grammar and delegates the value table to
// the ValueParser and name decomposition to the naming codec.
type VariableParser struct {
	codec  *naming.Codec
	values *ValueParser
}

// NewVariableParser builds a parser over the given codec and value
// parser.
func NewVariableParser(codec *naming.Codec, values *ValueParser) *VariableParser {
	return &VariableParser{codec: codec, values: values}
}

// blockMeta is the parsed metadata line of one variable block.
type blockMeta struct {
	section  string
	level    string
	typ      string
	width    string
	decimals string
	found    bool
}

var (
	metaKeyRe   = regexp.MustCompile(`\b(Section|Level|Type|Width|Decimals):`)
	varDescRe   = regexp.MustCompile(`^([A-Z][A-Z0-9_]{1,7})\s{2,}(\S.*)$`)
	assignRe    = regexp.MustCompile(`(?i)^assign(?:ment)?s?\s*:`)
	referenceRe = regexp.MustCompile(`(?i)^ref(?:erence)?s?\s*:`)
)

// Parse builds the Variable for a block. Name, type, and width are
// required; a missing field or a non-numeric width/decimals returns a
// wrapped ErrRejected. Values are never coerced.
func (p *VariableParser) Parse(block *segment.Block, year int, report *Report) (*model.Variable, error) {
	if block.VarName == "" {
		return nil, fmt.Errorf("%w: missing name", ErrRejected)
	}

	v := &model.Variable{
		Name: block.VarName,
		Year: year,
	}
	v.Prefix, v.BaseName = p.codec.Decompose(v.Name)

	var meta blockMeta
	var valueLines []string
	var valueRows [][]string
	valueStart := block.Line

	lines := block.Lines
	table := len(block.Rows) > 0
	if table {
		lines, valueRows = p.splitRows(block, v)
	}

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		switch {
		case assignRe.MatchString(line):
			v.Assignments = append(v.Assignments, model.Assignment{Expression: line})
		case referenceRe.MatchString(line):
			v.References = append(v.References, model.Reference{Reference: line})
		case !meta.found && parseMetaLine(line, &meta):
			if !table {
				valueStart = block.Line + i + 1
			}
		case !meta.found && !table:
			p.describe(v, line)
		case !table:
			valueLines = append(valueLines, raw)
		}
	}

	if err := p.apply(v, &meta, table); err != nil {
		return nil, err
	}

	if table {
		v.ValueCodes = p.values.ParseHTMLRows(valueRows, block.Line+1, report, v.Name)
	} else {
		v.ValueCodes = p.values.ParseTextLines(valueLines, valueStart, report, v.Name)
	}

	return v, nil
}

// splitRows extracts the description from a table block's opening row
// and separates metadata and assignment rows (returned as text lines)
// from the value-code rows.
func (p *VariableParser) splitRows(block *segment.Block, v *model.Variable) (lines []string, valueRows [][]string) {
	head := block.Rows[0]
	if len(head) > 1 {
		v.Description = strings.TrimSpace(strings.Join(head[1:], " "))
	}
	for _, row := range block.Rows[1:] {
		joined := strings.TrimSpace(strings.Join(row, "  "))
		if metaKeyRe.MatchString(joined) || assignRe.MatchString(joined) || referenceRe.MatchString(joined) {
			lines = append(lines, joined)
			continue
		}
		valueRows = append(valueRows, row)
	}
	return lines, valueRows
}

// describe sets or extends the description. The first line after the
// name is the label; later pre-metadata lines are wrapped label text.
func (p *VariableParser) describe(v *model.Variable, line string) {
	if m := varDescRe.FindStringSubmatch(line); m != nil && m[1] == v.Name {
		line = m[2]
	}
	if line == v.Name {
		return
	}
	if v.Description == "" {
		v.Description = line
	} else {
		v.Description += " " + line
	}
}

// apply validates and installs the metadata. Exit-track table blocks
// interleave metadata with value rows inconsistently across releases, so
// a table block missing the metadata row defaults to a character type of
// unknown width instead of rejecting.
func (p *VariableParser) apply(v *model.Variable, meta *blockMeta, table bool) error {
	if !meta.found {
		if table {
			v.Type = model.TypeCharacter
			return nil
		}
		return fmt.Errorf("%w: %s: no metadata line", ErrRejected, v.Name)
	}

	switch {
	case strings.EqualFold(meta.typ, "Character"), strings.EqualFold(meta.typ, "Char"):
		v.Type = model.TypeCharacter
	case strings.EqualFold(meta.typ, "Numeric"), strings.EqualFold(meta.typ, "Num"):
		v.Type = model.TypeNumeric
	case meta.typ == "":
		return fmt.Errorf("%w: %s: missing type", ErrRejected, v.Name)
	default:
		return fmt.Errorf("%w: %s: unknown type %q", ErrRejected, v.Name, meta.typ)
	}

	if meta.width == "" {
		return fmt.Errorf("%w: %s: missing width", ErrRejected, v.Name)
	}
	width, err := strconv.Atoi(meta.width)
	if err != nil {
		return fmt.Errorf("%w: %s: non-numeric width %q", ErrRejected, v.Name, meta.width)
	}
	v.Width = width

	if meta.decimals != "" {
		decimals, err := strconv.Atoi(meta.decimals)
		if err != nil {
			return fmt.Errorf("%w: %s: non-numeric decimals %q", ErrRejected, v.Name, meta.decimals)
		}
		v.Decimals = decimals
	}

	v.Section = strings.ToUpper(meta.section)
	if meta.level != "" {
		v.Level = segment.ParseLevel(meta.level)
	}
	return nil
}

// parseMetaLine splits a "Section: A Level: Respondent Type: ..." line
// into its fields. Values run from one key to the next, so multi-word
// levels survive.
func parseMetaLine(line string, meta *blockMeta) bool {
	locs := metaKeyRe.FindAllStringSubmatchIndex(line, -1)
	if len(locs) == 0 {
		return false
	}

	for i, loc := range locs {
		key := line[loc[2]:loc[3]]
		end := len(line)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		value := strings.TrimSpace(line[loc[1]:end])

		switch key {
		case "Section":
			meta.section = value
		case "Level":
			meta.level = value
		case "Type":
			meta.typ = value
		case "Width":
			meta.width = value
		case "Decimals":
			meta.decimals = value
		}
	}
	meta.found = true
	return true
}
