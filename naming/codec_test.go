package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_Decompose(t *testing.T) {
	c := NewCodec(nil)

	tests := []struct {
		name       string
		wantPrefix string
		wantBase   string
	}{
		{"RSUBHH", "R", "SUBHH"},
		{"QSUBHH", "Q", "SUBHH"},
		{"ESUBHH", "E", "SUBHH"},
		{"HHID", "H", "HID"}, // H is a known wave prefix
		{"ZSUBHH", "", "ZSUBHH"},
		{"R", "", "R"}, // bare prefix letter is not a prefixed name
	}

	for _, tt := range tests {
		prefix, base := c.Decompose(tt.name)
		assert.Equal(t, tt.wantPrefix, prefix, "prefix of %s", tt.name)
		assert.Equal(t, tt.wantBase, base, "base of %s", tt.name)
	}
}

func TestCodec_Decompose_RejectsLowercaseRemainder(t *testing.T) {
	c := NewCodec(nil)

	prefix, base := c.Decompose("Rsubhh")
	assert.Empty(t, prefix)
	assert.Equal(t, "Rsubhh", base)
}

func TestCodec_RoundTrip(t *testing.T) {
	c := NewCodec(nil)

	for _, prefix := range c.prefixes {
		name := c.Compose("SUBHH", prefix)
		gotPrefix, gotBase := c.Decompose(name)
		assert.Equal(t, prefix, gotPrefix)
		assert.Equal(t, "SUBHH", gotBase)
	}
}

func TestCodec_LongestMatchFirst(t *testing.T) {
	// A two-letter prefix must win over a one-letter prefix sharing the
	// same first byte.
	c := NewCodec(Table{3: "E", 4: "EX"})

	prefix, base := c.Decompose("EXDATE")
	assert.Equal(t, "EX", prefix)
	assert.Equal(t, "DATE", base)
}

func TestCodec_WaveForYear(t *testing.T) {
	c := NewCodec(nil)

	wave, err := c.WaveForYear(1992)
	require.NoError(t, err)
	assert.Equal(t, 1, wave)

	wave, err = c.WaveForYear(2020)
	require.NoError(t, err)
	assert.Equal(t, 15, wave)

	_, err = c.WaveForYear(2021)
	assert.ErrorIs(t, err, ErrInvalidYear)

	_, err = c.WaveForYear(1990)
	assert.ErrorIs(t, err, ErrInvalidYear)
}

func TestCodec_WaveArithmetic(t *testing.T) {
	// wave_for_year(year_for_prefix(p)) == wave_for_prefix(p) for every
	// table-known prefix.
	c := NewCodec(nil)

	for prefix := range c.byPrefix {
		year, err := c.YearForPrefix(prefix)
		require.NoError(t, err)

		fromYear, err := c.WaveForYear(year)
		require.NoError(t, err)

		fromPrefix, err := c.WaveForPrefix(prefix)
		require.NoError(t, err)

		assert.Equal(t, fromPrefix, fromYear, "prefix %s", prefix)
	}
}

func TestCodec_KnownWave15(t *testing.T) {
	c := NewCodec(nil)

	wave, err := c.WaveForPrefix("R")
	require.NoError(t, err)
	assert.Equal(t, 15, wave)

	year, err := c.YearForPrefix("R")
	require.NoError(t, err)
	assert.Equal(t, 2020, year)

	name, err := c.ComposeForYear("SUBHH", 2020)
	require.NoError(t, err)
	assert.Equal(t, "RSUBHH", name)
}

func TestCodec_LookupMisses(t *testing.T) {
	c := NewCodec(nil)

	_, err := c.PrefixForWave(99)
	assert.ErrorIs(t, err, ErrUnknownWave)

	_, err = c.WaveForPrefix("Z")
	assert.ErrorIs(t, err, ErrUnknownPrefix)

	_, err = c.WaveForPrefix("")
	assert.ErrorIs(t, err, ErrUnknownPrefix)
}

func TestCodec_EmptyPrefixWaves(t *testing.T) {
	c := NewCodec(nil)

	prefix, err := c.PrefixForWave(1)
	require.NoError(t, err)
	assert.Empty(t, prefix)

	name, err := c.ComposeForYear("HHID", 1992)
	require.NoError(t, err)
	assert.Equal(t, "HHID", name)
}
