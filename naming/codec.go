// Package naming implements the variable-naming codec: the bidirectional
// mapping between a variable's prefixed name, its wave-invariant base name,
// the survey year, and the wave number.
//
// The survey runs on a fixed biennial cadence anchored at 1992 (wave 1).
// Each wave carries a historical letter prefix prepended to variable base
// names; the assignment is not arithmetic (waves 1-2 have no prefix and
// the letter O is skipped), so the wave→prefix table is configuration
// data, not derived control flow.
package naming

import (
	"errors"
	"fmt"
	"sort"
)

// FirstWaveYear is the survey year of wave 1.
const FirstWaveYear = 1992

// Codec failures. All codec misses are surfaced to the caller; the codec
// never maps an unknown year, wave, or prefix to a default.
var (
	ErrInvalidYear   = errors.New("year is not on the survey cadence")
	ErrUnknownWave   = errors.New("wave has no table entry")
	ErrUnknownPrefix = errors.New("prefix has no table entry")
)

// Table maps wave numbers to their historical letter prefixes. Waves 1
// and 2 conventionally have an empty prefix.
type Table map[int]string

// DefaultTable returns the historical wave→prefix assignment through
// wave 16 (2022). Note the gaps: waves 1-2 are unprefixed and the letter
// O was never assigned (wave 13 is P).
func DefaultTable() Table {
	return Table{
		1: "", 2: "",
		3: "E", 4: "F", 5: "G", 6: "H", 7: "I", 8: "J",
		9: "K", 10: "L", 11: "M", 12: "N", 13: "P", 14: "Q",
		15: "R", 16: "S",
	}
}

// Codec performs name decomposition and wave/year/prefix lookups against
// a fixed wave table. All methods are pure; a Codec is safe for
// concurrent use.
type Codec struct {
	table    Table
	byPrefix map[string]int

	// prefixes holds the non-empty prefix tokens sorted longest first,
	// so a two-letter prefix is never shadowed by a one-letter one.
	prefixes []string
}

// NewCodec builds a codec over the given wave table. A nil table uses
// DefaultTable.
func NewCodec(table Table) *Codec {
	if table == nil {
		table = DefaultTable()
	}
	c := &Codec{
		table:    table,
		byPrefix: make(map[string]int, len(table)),
	}
	for wave, prefix := range table {
		if prefix == "" {
			continue
		}
		c.byPrefix[prefix] = wave
		c.prefixes = append(c.prefixes, prefix)
	}
	sort.Slice(c.prefixes, func(i, j int) bool {
		if len(c.prefixes[i]) != len(c.prefixes[j]) {
			return len(c.prefixes[i]) > len(c.prefixes[j])
		}
		return c.prefixes[i] < c.prefixes[j]
	})
	return c
}

// Decompose splits a variable name into its wave prefix and base name.
// Prefixes are matched longest first against the table's known tokens;
// a name with no known prefix decomposes to ("", name). The remainder
// after a prefix must be non-empty and start with an uppercase letter,
// digit, or underscore, otherwise the match is rejected.
func (c *Codec) Decompose(name string) (prefix, baseName string) {
	for _, p := range c.prefixes {
		if len(name) <= len(p) || name[:len(p)] != p {
			continue
		}
		rest := name[len(p):]
		if !validBaseStart(rest[0]) {
			continue
		}
		return p, rest
	}
	return "", name
}

// Compose is the inverse of Decompose: it concatenates prefix and base
// name. For any (prefix, base) pair Decompose can produce,
// Decompose(Compose(base, prefix)) round-trips.
func (c *Codec) Compose(baseName, prefix string) string {
	return prefix + baseName
}

// WaveForYear returns the wave number for a survey year. Years before
// the first wave or off the biennial cadence fail with ErrInvalidYear.
func (c *Codec) WaveForYear(year int) (int, error) {
	if year < FirstWaveYear || (year-FirstWaveYear)%2 != 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidYear, year)
	}
	return (year-FirstWaveYear)/2 + 1, nil
}

// YearForWave returns the survey year for a wave number.
func (c *Codec) YearForWave(wave int) (int, error) {
	if wave < 1 {
		return 0, fmt.Errorf("%w: %d", ErrUnknownWave, wave)
	}
	return FirstWaveYear + (wave-1)*2, nil
}

// PrefixForWave looks up the letter prefix for a wave. The empty prefix
// of waves 1-2 is a valid result, not a miss.
func (c *Codec) PrefixForWave(wave int) (string, error) {
	prefix, ok := c.table[wave]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnknownWave, wave)
	}
	return prefix, nil
}

// WaveForPrefix looks up the wave for a non-empty letter prefix.
func (c *Codec) WaveForPrefix(prefix string) (int, error) {
	wave, ok := c.byPrefix[prefix]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownPrefix, prefix)
	}
	return wave, nil
}

// YearForPrefix composes WaveForPrefix with the wave→year arithmetic.
func (c *Codec) YearForPrefix(prefix string) (int, error) {
	wave, err := c.WaveForPrefix(prefix)
	if err != nil {
		return 0, err
	}
	return c.YearForWave(wave)
}

// PrefixForYear returns the prefix used by the given survey year.
func (c *Codec) PrefixForYear(year int) (string, error) {
	wave, err := c.WaveForYear(year)
	if err != nil {
		return "", err
	}
	return c.PrefixForWave(wave)
}

// ComposeForYear builds the year-specific spelling of a base name.
func (c *Codec) ComposeForYear(baseName string, year int) (string, error) {
	prefix, err := c.PrefixForYear(year)
	if err != nil {
		return "", err
	}
	return c.Compose(baseName, prefix), nil
}

func validBaseStart(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '_'
}
