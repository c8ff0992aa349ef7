// Package categorize buckets parsed variables along several independent
// dimensions: section, level, type, base name, and a set of special
// classes (identifiers, derived variables, value-code presence, prefix
// presence). Buckets are derived views over the variable records and
// carry no state of their own.
package categorize

import (
	"sort"
	"strings"

	"github.com/hrstools/codebook/config"
	"github.com/hrstools/codebook/model"
)

// Bucket is one named group of variables.
type Bucket struct {
	// Name is the bucket key within its dimension.
	Name string `json:"name"`

	// Description says what membership means.
	Description string `json:"description"`

	// Count is len(VariableNames).
	Count int `json:"count"`

	// Years lists the distinct contributing years, sorted.
	Years []int `json:"years"`

	// VariableNames lists the member variables in input order.
	VariableNames []string `json:"variable_names"`
}

// Result is the full categorization of one variable set. Within each
// dimension every variable lands in exactly one bucket, so the dimension
// counts each sum to TotalVariables.
type Result struct {
	TotalVariables int `json:"total_variables"`

	BySection  []Bucket `json:"by_section"`
	ByLevel    []Bucket `json:"by_level"`
	ByType     []Bucket `json:"by_type"`
	ByBaseName []Bucket `json:"by_base_name"`

	// Identifiers and Derived are marker-list classes; a variable may be
	// in neither.
	Identifiers Bucket `json:"identifiers"`
	Derived     Bucket `json:"derived"`

	// Value-code presence and prefix presence each partition the set.
	WithValueCodes    Bucket `json:"with_value_codes"`
	WithoutValueCodes Bucket `json:"without_value_codes"`
	YearPrefixed      Bucket `json:"year_prefixed"`
	NoPrefix          Bucket `json:"no_prefix"`
}

// Categorizer buckets variables using the configured marker lists.
// Identifier and derived membership is list-driven, never inferred.
type Categorizer struct {
	identifiers    map[string]bool
	derivedMarkers []string
}

// New builds a categorizer over the given marker configuration.
func New(markers config.MarkerConfig) *Categorizer {
	c := &Categorizer{
		identifiers: make(map[string]bool, len(markers.IdentifierNames)),
	}
	for _, name := range markers.IdentifierNames {
		c.identifiers[strings.ToUpper(name)] = true
	}
	for _, m := range markers.DerivedMarkers {
		c.derivedMarkers = append(c.derivedMarkers, strings.ToUpper(m))
	}
	return c
}

// Categorize buckets the variables. The input is not mutated and the
// result is deterministic: dimension buckets are sorted by name, member
// lists keep input order.
func (c *Categorizer) Categorize(vars []model.Variable) *Result {
	bySection := newDimension("variables in section %s")
	byLevel := newDimension("variables at level %s")
	byType := newDimension("variables of type %s")
	byBase := newDimension("spellings of base name %s")

	res := &Result{
		TotalVariables:    len(vars),
		Identifiers:       namedBucket("identifiers", "household and respondent identifier variables"),
		Derived:           namedBucket("derived", "derived, imputed, or otherwise computed variables"),
		WithValueCodes:    namedBucket("with_value_codes", "variables carrying a coded-value table"),
		WithoutValueCodes: namedBucket("without_value_codes", "variables with no coded-value table"),
		YearPrefixed:      namedBucket("year_prefixed", "variables with a wave letter prefix"),
		NoPrefix:          namedBucket("no_prefix", "variables without a wave letter prefix"),
	}

	for i := range vars {
		v := &vars[i]

		bySection.add(v.Section, v)
		byLevel.add(string(v.Level), v)
		byType.add(string(v.Type), v)
		byBase.add(v.BaseName, v)

		if c.IsIdentifier(v) {
			res.Identifiers.add(v)
		}
		if c.IsDerived(v) {
			res.Derived.add(v)
		}

		if v.HasValueCodes() {
			res.WithValueCodes.add(v)
		} else {
			res.WithoutValueCodes.add(v)
		}

		if v.Prefix != "" {
			res.YearPrefixed.add(v)
		} else {
			res.NoPrefix.add(v)
		}
	}

	res.BySection = bySection.build()
	res.ByLevel = byLevel.build()
	res.ByType = byType.build()
	res.ByBaseName = byBase.build()
	return res
}

// IsIdentifier reports whether the variable's name or base name is on
// the identifier list. Base names are checked as well because the
// codec's mechanical decomposition strips wave letters from identifier
// names too (HHID decomposes to H + HID).
func (c *Categorizer) IsIdentifier(v *model.Variable) bool {
	return c.identifiers[strings.ToUpper(v.Name)] || c.identifiers[strings.ToUpper(v.BaseName)]
}

// IsDerived reports whether the variable's description carries a derived
// marker.
func (c *Categorizer) IsDerived(v *model.Variable) bool {
	desc := strings.ToUpper(v.Description)
	for _, m := range c.derivedMarkers {
		if strings.Contains(desc, m) {
			return true
		}
	}
	return false
}

func namedBucket(name, description string) Bucket {
	return Bucket{Name: name, Description: description}
}

func (b *Bucket) add(v *model.Variable) {
	b.VariableNames = append(b.VariableNames, v.Name)
	b.Count++
	b.Years = insertYear(b.Years, v.Year)
}

func insertYear(years []int, year int) []int {
	i := sort.SearchInts(years, year)
	if i < len(years) && years[i] == year {
		return years
	}
	years = append(years, 0)
	copy(years[i+1:], years[i:])
	years[i] = year
	return years
}

// dimension collects one keyed bucket family.
type dimension struct {
	format  string
	buckets map[string]*Bucket
}

func newDimension(format string) *dimension {
	return &dimension{format: format, buckets: make(map[string]*Bucket)}
}

func (d *dimension) add(key string, v *model.Variable) {
	b, ok := d.buckets[key]
	if !ok {
		b = &Bucket{
			Name:        key,
			Description: strings.Replace(d.format, "%s", key, 1),
		}
		d.buckets[key] = b
	}
	b.add(v)
}

func (d *dimension) build() []Bucket {
	out := make([]Bucket, 0, len(d.buckets))
	for _, b := range d.buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
