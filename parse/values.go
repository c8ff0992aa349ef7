package parse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hrstools/codebook/config"
	"github.com/hrstools/codebook/model"
)

// ValueParser parses the coded-value table of a variable block. Missing
// markers come from configuration, never from inference: a code is
// missing because the marker list says so.
type ValueParser struct {
	missingCodes  map[string]bool
	missingLabels map[string]bool
}

// NewValueParser builds a parser over the configured marker lists.
func NewValueParser(markers config.MarkerConfig) *ValueParser {
	p := &ValueParser{
		missingCodes:  make(map[string]bool, len(markers.MissingCodes)),
		missingLabels: make(map[string]bool, len(markers.MissingLabels)),
	}
	for _, c := range markers.MissingCodes {
		p.missingCodes[strings.ToLower(c)] = true
	}
	for _, l := range markers.MissingLabels {
		p.missingLabels[strings.ToLower(l)] = true
	}
	return p
}

var (
	intRe   = regexp.MustCompile(`^-?\d+$`)
	rangeRe = regexp.MustCompile(`^\d+\s*-\s*\d+$`)

	// parenFreqRe matches a trailing parenthesized count, thousands
	// separators allowed: "Yes (1,204)".
	parenFreqRe = regexp.MustCompile(`\s*\((\d{1,3}(?:,\d{3})*|\d+)\)$`)

	// leaderRe matches the dotted ruler line above a value table.
	leaderRe = regexp.MustCompile(`^[.\s]+$`)
)

// ParseTextLines parses value-code rows from a text block. A row is a
// line whose first code-shaped token opens it; non-row lines extend the
// previous row's label (labels wrap in the fixed-width layout). A
// non-row line with no previous row is unparseable and dropped.
//
// A leading integer column is a frequency only when the token after it
// ends with the "." code terminator. Otherwise the integer is the code
// itself.
func (p *ValueParser) ParseTextLines(lines []string, startLine int, report *Report, variable string) []model.ValueCode {
	var codes []model.ValueCode

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || leaderRe.MatchString(line) {
			continue
		}

		vc, ok := p.parseTextRow(line)
		if !ok {
			if len(codes) > 0 {
				p.extendLabel(&codes[len(codes)-1], line)
				continue
			}
			if report != nil {
				report.Add(EntryUnparseableValueCodeRow, startLine+i, variable, line)
			}
			continue
		}
		codes = append(codes, vc)
	}
	return codes
}

func (p *ValueParser) parseTextRow(line string) (model.ValueCode, bool) {
	tokens := strings.Fields(line)

	var freq *int
	if len(tokens) >= 2 && intRe.MatchString(tokens[0]) && strings.HasSuffix(tokens[1], ".") {
		n, err := strconv.Atoi(tokens[0])
		if err == nil {
			freq = &n
			tokens = tokens[1:]
		}
	}

	code, ok := codeToken(tokens[0])
	if !ok {
		return model.ValueCode{}, false
	}
	label := strings.Join(tokens[1:], " ")

	return p.finish(code, label, freq), true
}

// ParseHTMLRows parses value-code rows from an exit-track table block.
// Cell boundaries replace column positions: a two-cell row is
// (code, label) and a three-cell row with a leading integer is
// (frequency, code, label). Single-cell rows extend the previous label.
func (p *ValueParser) ParseHTMLRows(rows [][]string, startRow int, report *Report, variable string) []model.ValueCode {
	var codes []model.ValueCode

	for i, row := range rows {
		cells := nonEmptyCells(row)
		if len(cells) == 0 {
			continue
		}

		if len(cells) == 1 {
			if len(codes) > 0 {
				p.extendLabel(&codes[len(codes)-1], cells[0])
				continue
			}
			if report != nil {
				report.Add(EntryUnparseableValueCodeRow, startRow+i, variable, cells[0])
			}
			continue
		}

		var freq *int
		if len(cells) >= 3 && intRe.MatchString(cells[0]) {
			n, err := strconv.Atoi(cells[0])
			if err == nil {
				freq = &n
				cells = cells[1:]
			}
		}

		code := strings.TrimSuffix(cells[0], ".")
		label := strings.Join(cells[1:], " ")
		codes = append(codes, p.finish(code, label, freq))
	}
	return codes
}

// finish applies the shared row semantics: trailing parenthesized
// frequency, marker-list missing flags, and range detection.
func (p *ValueParser) finish(code, label string, freq *int) model.ValueCode {
	label = strings.TrimSpace(label)

	if freq == nil {
		if m := parenFreqRe.FindStringSubmatch(label); m != nil {
			n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
			if err == nil {
				freq = &n
				label = strings.TrimSpace(label[:len(label)-len(m[0])])
			}
		}
	}

	return model.ValueCode{
		Code:      code,
		Label:     label,
		Frequency: freq,
		IsMissing: p.missingCodes[strings.ToLower(code)] || p.missingLabels[strings.ToLower(label)],
		IsRange:   rangeRe.MatchString(code),
	}
}

func (p *ValueParser) extendLabel(vc *model.ValueCode, text string) {
	if vc.Label == "" {
		vc.Label = text
	} else {
		vc.Label += " " + text
	}
	if p.missingLabels[strings.ToLower(vc.Label)] {
		vc.IsMissing = true
	}
}

// codeToken validates and strips a row's leading code token. Codes are
// dot-terminated in the fixed-width layout; bare integers and ranges are
// accepted without the terminator.
func codeToken(token string) (string, bool) {
	if strings.HasSuffix(token, ".") && len(token) > 1 {
		return strings.TrimSuffix(token, "."), true
	}
	if intRe.MatchString(token) || rangeRe.MatchString(token) {
		return token, true
	}
	return "", false
}

func nonEmptyCells(row []string) []string {
	var out []string
	for _, c := range row {
		c = strings.TrimSpace(c)
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}
