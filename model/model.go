// Package model defines the canonical record types produced by the
// codebook parsing pipeline: codebooks, sections, variables, value codes,
// and the cross-year catalog entries derived from them.
package model

// Level is the unit of observation a variable is measured at.
// Levels are free-form labels in the source documents; the constants below
// cover the labels that appear across the known releases.
type Level string

// Known measurement levels.
const (
	LevelHousehold  Level = "Household"
	LevelRespondent Level = "Respondent"
	LevelJobs       Level = "Jobs"
	LevelPension    Level = "Pension"
	LevelSiblings   Level = "Siblings"
	LevelHHMember   Level = "HH Member Child"
	LevelToChild    Level = "To Child"
	LevelFromChild  Level = "From Child"
	LevelHelper     Level = "Helper"
)

// VarType is the declared data type of a variable.
type VarType string

// Declared variable types.
const (
	TypeCharacter VarType = "Character"
	TypeNumeric   VarType = "Numeric"
)

// Track identifies one of the source document families. Each track has its
// own layout grammar and release cadence.
type Track string

// Source tracks.
const (
	TrackCore     Track = "core"
	TrackExit     Track = "exit"
	TrackPostExit Track = "post-exit"
)

// Valid reports whether the track is one of the known document families.
func (t Track) Valid() bool {
	switch t {
	case TrackCore, TrackExit, TrackPostExit:
		return true
	}
	return false
}

// ValueCode is one row of a variable's coded-value table.
type ValueCode struct {
	// Code is the raw coded value: a single number, a range such as
	// "010003-959738", or a symbolic token such as "Blank".
	Code string `json:"code"`

	// Label is the human-readable meaning of the code.
	Label string `json:"label"`

	// Frequency is the observed count for the code, when the source
	// document reports one. Nil when absent.
	Frequency *int `json:"frequency,omitempty"`

	// IsMissing marks reserved missing/inapplicable/refused codes, as
	// flagged by the source grammar's marker list.
	IsMissing bool `json:"is_missing"`

	// IsRange marks numeric range codes.
	IsRange bool `json:"is_range"`
}

// Assignment is a conditional-logic expression reproduced verbatim from
// the source document.
type Assignment struct {
	Expression string `json:"expression"`
}

// Reference is a citation line reproduced verbatim from the source
// document.
type Reference struct {
	Reference string `json:"reference"`
}

// Variable is the atomic unit of a codebook.
type Variable struct {
	// Name is the source-exact, possibly wave-prefixed spelling.
	Name string `json:"name"`

	// Description is the variable's free-text label.
	Description string `json:"description"`

	// Year is the survey year of the owning codebook.
	Year int `json:"year"`

	// Section is the owning section code (e.g. "PR", "A").
	Section string `json:"section"`

	// Level is the owning section's measurement level.
	Level Level `json:"level"`

	// Type is the declared data type.
	Type VarType `json:"type"`

	// Width is the declared field width.
	Width int `json:"width"`

	// Decimals is the declared number of decimal places.
	Decimals int `json:"decimals"`

	// ValueCodes is the ordered coded-value table.
	ValueCodes []ValueCode `json:"value_codes,omitempty"`

	// Assignments holds verbatim assignment expressions.
	Assignments []Assignment `json:"assignments,omitempty"`

	// References holds verbatim citation lines.
	References []Reference `json:"references,omitempty"`

	// BaseName is the wave-invariant identity derived by the naming
	// codec. Equal to Name when Prefix is empty.
	BaseName string `json:"base_name"`

	// Prefix is the wave letter stripped from Name; empty for
	// unprefixed (wave-1-style) names.
	Prefix string `json:"prefix"`
}

// HasValueCodes reports whether the variable carries a coded-value table.
func (v *Variable) HasValueCodes() bool {
	return len(v.ValueCodes) > 0
}

// Section is a named subdivision of a codebook. Section codes may repeat
// across levels, so a section is identified by the (Code, Level) pair.
type Section struct {
	// Code is the short section token (e.g. "PR", "A").
	Code string `json:"code"`

	// Name is the human section name (e.g. "PRELOAD").
	Name string `json:"name"`

	// Level is the measurement level of the section's variables.
	Level Level `json:"level,omitempty"`

	// Year is the survey year of the owning codebook.
	Year int `json:"year"`

	// VariableCount is the number of variables in the section.
	VariableCount int `json:"variable_count"`

	// Variables lists the member variable names in document order.
	Variables []string `json:"variables"`
}

// Codebook is the complete parsed record for one (year, source-track)
// release. Codebooks are immutable after construction; re-parsing
// supersedes a codebook rather than mutating it.
type Codebook struct {
	// Source is the source identifier (e.g. "hrs_core_codebook").
	Source string `json:"source"`

	// Year is the survey year.
	Year int `json:"year"`

	// ReleaseType is the free-form release label from the document
	// header (e.g. "Final Release"), when present.
	ReleaseType string `json:"release_type,omitempty"`

	// Sections in document order.
	Sections []Section `json:"sections"`

	// Variables in document order.
	Variables []Variable `json:"variables"`

	// TotalVariables is len(Variables).
	TotalVariables int `json:"total_variables"`

	// TotalSections is len(Sections).
	TotalSections int `json:"total_sections"`

	// Levels lists the distinct levels present, in first-appearance
	// order.
	Levels []Level `json:"levels"`
}

// SectionFor returns the section owning the given code and level, or nil.
// When no section carries the level, the code alone is matched, so
// documents that omit level labels still resolve.
func (c *Codebook) SectionFor(code string, level Level) *Section {
	var codeOnly *Section
	for i := range c.Sections {
		s := &c.Sections[i]
		if s.Code != code {
			continue
		}
		if s.Level == level {
			return s
		}
		if codeOnly == nil {
			codeOnly = s
		}
	}
	return codeOnly
}

// CatalogEntry tracks one base name across years. Entries are derived
// views over the per-year variables; they are recomputed, never stored as
// the source of truth.
type CatalogEntry struct {
	// BaseName is the wave-invariant variable identity.
	BaseName string `json:"base_name"`

	// Years in which a variable with this base name appears, sorted.
	Years []int `json:"years"`

	// YearPrefixes maps each contributing year to the prefix observed
	// on that year's variable record.
	YearPrefixes map[int]string `json:"year_prefixes"`

	// FirstYear and LastYear bound the Years slice.
	FirstYear int `json:"first_year"`
	LastYear  int `json:"last_year"`

	// ConsistentMetadata is true when type, width, decimals, and
	// section code are identical across all contributing years.
	ConsistentMetadata bool `json:"consistent_metadata"`

	// ConsistentValues is true when the set of (code, label) pairs is
	// identical across all contributing years, ignoring order and
	// frequency.
	ConsistentValues bool `json:"consistent_values"`
}
