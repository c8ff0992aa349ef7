// Package parse turns segmented codebook documents into Codebook
// records. Parsing is total per document: malformed blocks, rejected
// variables, and unparseable rows are recorded on the run report and
// skipped, never fatal.
package parse

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/hrstools/codebook/config"
	"github.com/hrstools/codebook/model"
	"github.com/hrstools/codebook/naming"
	"github.com/hrstools/codebook/segment"
)

// Parser assembles codebooks from raw documents. It wires the grammar
// registry, the variable parser, and the naming codec from one Config.
type Parser struct {
	registry  *segment.Registry
	variables *VariableParser
	log       *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithRegistry overrides the grammar registry.
func WithRegistry(r *segment.Registry) Option {
	return func(p *Parser) { p.registry = r }
}

// WithLogger sets the parser's logger.
func WithLogger(log *slog.Logger) Option {
	return func(p *Parser) { p.log = log }
}

// New builds a Parser from configuration. A nil config uses the
// defaults.
func New(cfg *config.Config, opts ...Option) *Parser {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	codec := naming.NewCodec(cfg.WaveTable)
	p := &Parser{
		registry:  segment.DefaultRegistry,
		variables: NewVariableParser(codec, NewValueParser(cfg.Markers)),
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var releaseRe = regexp.MustCompile(`(?i)\b((?:final|early|preliminary)\s+(?:post[- ]?exit|exit|core)?\s*release|final\s+exit|final\s+post[- ]?exit)\b`)

// Parse runs the full pipeline for one document: segment, parse each
// block, and assemble the Codebook. The returned report always carries
// the run outcome; the error is non-nil only for whole-document
// failures such as an unknown track.
func (p *Parser) Parse(source string, track model.Track, year int, content string) (*model.Codebook, *Report, error) {
	report := NewReport(source, year)
	defer report.Finish()

	res, err := p.registry.Segment(track, content)
	if err != nil {
		return nil, report, fmt.Errorf("segment %s %d: %w", source, year, err)
	}

	b := newBuilder(source, track, year)
	b.cb.ReleaseType = extractReleaseType(content)

	for i := range res.Blocks {
		block := &res.Blocks[i]
		switch block.Kind {
		case segment.KindSectionHeader:
			b.openSection(block)
		case segment.KindVariable:
			v, err := p.variables.Parse(block, year, report)
			if err != nil {
				if errors.Is(err, ErrRejected) {
					report.Add(EntryRejectedVariable, block.Line, block.VarName, err.Error())
					continue
				}
				return nil, report, err
			}
			b.addVariable(v)
		case segment.KindMalformed:
			report.Add(EntryMalformedBlock, block.Line, "", block.Reason)
		case segment.KindEndOfDocument:
			// Terminator; nothing to close, sections close eagerly.
		}
	}

	for _, o := range res.Orphans {
		report.Add(EntryOrphanLine, o.Line, "", o.Text)
	}

	cb := b.finish()
	report.EmptyCodebook = cb.TotalVariables == 0

	p.log.Debug("parsed codebook",
		"source", source,
		"year", year,
		"variables", cb.TotalVariables,
		"sections", cb.TotalSections,
		"report_entries", len(report.Entries))

	return cb, report, nil
}

// builder accumulates a codebook in document order. Sections are keyed
// by (code, level) and created on first sight, whether that sight is a
// header block or a variable's own metadata. Sections are tracked by
// index because the backing slice grows while building.
type builder struct {
	cb      *model.Codebook
	track   model.Track
	current int
	index   map[string]int
	levels  map[model.Level]bool
}

func newBuilder(source string, track model.Track, year int) *builder {
	return &builder{
		cb: &model.Codebook{
			Source: source,
			Year:   year,
		},
		track:   track,
		current: -1,
		index:   make(map[string]int),
		levels:  make(map[model.Level]bool),
	}
}

func sectionKey(code string, level model.Level) string {
	return code + "\x00" + string(level)
}

func (b *builder) section(code string, level model.Level, name string) int {
	key := sectionKey(code, level)
	if i, ok := b.index[key]; ok {
		if b.cb.Sections[i].Name == "" && name != "" {
			b.cb.Sections[i].Name = name
		}
		return i
	}
	b.cb.Sections = append(b.cb.Sections, model.Section{
		Code:  code,
		Name:  name,
		Level: level,
		Year:  b.cb.Year,
	})
	i := len(b.cb.Sections) - 1
	b.index[key] = i
	return i
}

func (b *builder) openSection(block *segment.Block) {
	b.current = b.section(block.Code, block.Level, block.Name)
}

// addVariable places the variable in its section. The variable's own
// metadata wins over the open header; a variable naming a section no
// header announced creates that section. With neither, exit documents
// fall back to a synthetic Exit section so no variable is homeless.
func (b *builder) addVariable(v *model.Variable) {
	var idx int
	switch {
	case v.Section != "":
		if v.Level == "" {
			if b.current >= 0 && b.cb.Sections[b.current].Code == v.Section {
				v.Level = b.cb.Sections[b.current].Level
			} else {
				v.Level = model.LevelRespondent
			}
		}
		idx = b.section(v.Section, v.Level, "")
	case b.current >= 0:
		idx = b.current
	case b.track == model.TrackExit:
		idx = b.section("EX", model.LevelRespondent, "Exit")
	default:
		idx = b.section("UNSECTIONED", model.LevelRespondent, "Unsectioned")
	}

	s := &b.cb.Sections[idx]
	v.Section = s.Code
	if v.Level == "" {
		v.Level = s.Level
	}

	s.Variables = append(s.Variables, v.Name)
	s.VariableCount++

	if !b.levels[v.Level] {
		b.levels[v.Level] = true
		b.cb.Levels = append(b.cb.Levels, v.Level)
	}
	b.cb.Variables = append(b.cb.Variables, *v)
}

func (b *builder) finish() *model.Codebook {
	b.cb.TotalVariables = len(b.cb.Variables)
	b.cb.TotalSections = len(b.cb.Sections)
	return b.cb
}

// extractReleaseType scans the document preamble for a release banner
// such as "Final Release" or "Final Post Exit".
func extractReleaseType(content string) string {
	head := content
	if len(head) > 4096 {
		head = head[:4096]
	}
	m := releaseRe.FindString(head)
	if m == "" {
		return ""
	}
	words := strings.Fields(strings.ToLower(m))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
