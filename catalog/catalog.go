// Package catalog builds the cross-year variable catalog: one entry per
// wave-invariant base name, tracking which years carry the variable and
// whether its metadata and coded values stayed consistent across them.
// The catalog is a derived view; it is recomputed from the per-year
// records, never stored as the source of truth.
package catalog

import (
	"sort"

	"github.com/hrstools/codebook/model"
)

// Builder accumulates variables across years and emits catalog entries.
// The zero value is not usable; construct with New.
type Builder struct {
	groups map[string][]model.Variable
}

// New returns an empty Builder.
func New() *Builder {
	return &Builder{groups: make(map[string][]model.Variable)}
}

// Add feeds one codebook's variables into the builder. Prefixes and base
// names are taken from the records as the parser wrote them, not
// recomputed here.
func (b *Builder) Add(cb *model.Codebook) {
	for _, v := range cb.Variables {
		b.groups[v.BaseName] = append(b.groups[v.BaseName], v)
	}
}

// AddVariables feeds loose variable records into the builder.
func (b *Builder) AddVariables(vars []model.Variable) {
	for _, v := range vars {
		b.groups[v.BaseName] = append(b.groups[v.BaseName], v)
	}
}

// Build emits the catalog sorted by base name. The result is independent
// of insertion order, so interleaving years or re-adding the same
// codebooks in a different order produces the same catalog.
func (b *Builder) Build() []model.CatalogEntry {
	entries := make([]model.CatalogEntry, 0, len(b.groups))
	for base, vars := range b.groups {
		entries = append(entries, buildEntry(base, vars))
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].BaseName < entries[j].BaseName
	})
	return entries
}

// Entry builds the catalog entry for a single base name, or false when
// the builder has never seen it.
func (b *Builder) Entry(baseName string) (model.CatalogEntry, bool) {
	vars, ok := b.groups[baseName]
	if !ok {
		return model.CatalogEntry{}, false
	}
	return buildEntry(baseName, vars), true
}

func buildEntry(base string, vars []model.Variable) model.CatalogEntry {
	e := model.CatalogEntry{
		BaseName:     base,
		YearPrefixes: make(map[int]string, len(vars)),
	}

	seen := make(map[int]bool, len(vars))
	for _, v := range vars {
		if !seen[v.Year] {
			seen[v.Year] = true
			e.Years = append(e.Years, v.Year)
		}
		e.YearPrefixes[v.Year] = v.Prefix
	}
	sort.Ints(e.Years)
	e.FirstYear = e.Years[0]
	e.LastYear = e.Years[len(e.Years)-1]

	e.ConsistentMetadata = consistentMetadata(vars)
	e.ConsistentValues = consistentValues(vars)
	return e
}

// consistentMetadata reports whether type, width, decimals, and section
// code are identical across every contributing record.
func consistentMetadata(vars []model.Variable) bool {
	first := vars[0]
	for _, v := range vars[1:] {
		if v.Type != first.Type || v.Width != first.Width ||
			v.Decimals != first.Decimals || v.Section != first.Section {
			return false
		}
	}
	return true
}

// consistentValues reports whether the set of (code, label) pairs is
// identical across every contributing record. Order and frequency are
// presentation detail and do not count.
func consistentValues(vars []model.Variable) bool {
	first := valueSet(vars[0].ValueCodes)
	for _, v := range vars[1:] {
		set := valueSet(v.ValueCodes)
		if len(set) != len(first) {
			return false
		}
		for pair := range set {
			if !first[pair] {
				return false
			}
		}
	}
	return true
}

type codeLabel struct {
	code  string
	label string
}

func valueSet(codes []model.ValueCode) map[codeLabel]bool {
	set := make(map[codeLabel]bool, len(codes))
	for _, vc := range codes {
		set[codeLabel{vc.Code, vc.Label}] = true
	}
	return set
}
