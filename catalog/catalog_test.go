package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrstools/codebook/model"
)

func variable(name, base, prefix string, year int) model.Variable {
	return model.Variable{
		Name:     name,
		BaseName: base,
		Prefix:   prefix,
		Year:     year,
		Section:  "A",
		Type:     model.TypeCharacter,
		Width:    1,
	}
}

func TestBuilder_GroupsByBaseName(t *testing.T) {
	b := New()
	b.AddVariables([]model.Variable{
		variable("QSUBHH", "SUBHH", "Q", 2018),
		variable("RSUBHH", "SUBHH", "R", 2020),
		variable("SSUBHH", "SUBHH", "S", 2022),
		variable("RB000", "B000", "R", 2020),
	})

	entries := b.Build()
	require.Len(t, entries, 2)

	// Sorted by base name.
	assert.Equal(t, "B000", entries[0].BaseName)
	assert.Equal(t, "SUBHH", entries[1].BaseName)

	subhh := entries[1]
	assert.Equal(t, []int{2018, 2020, 2022}, subhh.Years)
	assert.Equal(t, 2018, subhh.FirstYear)
	assert.Equal(t, 2022, subhh.LastYear)
	assert.Equal(t, map[int]string{2018: "Q", 2020: "R", 2022: "S"}, subhh.YearPrefixes)
	assert.True(t, subhh.ConsistentMetadata)
	assert.True(t, subhh.ConsistentValues)
}

func TestBuilder_OrderIndependent(t *testing.T) {
	vars := []model.Variable{
		variable("QSUBHH", "SUBHH", "Q", 2018),
		variable("RSUBHH", "SUBHH", "R", 2020),
		variable("RB000", "B000", "R", 2020),
	}

	forward := New()
	forward.AddVariables(vars)

	backward := New()
	for i := len(vars) - 1; i >= 0; i-- {
		backward.AddVariables(vars[i : i+1])
	}

	assert.Equal(t, forward.Build(), backward.Build())
}

func TestBuilder_MetadataFlip(t *testing.T) {
	a := variable("QSUBHH", "SUBHH", "Q", 2018)
	b := variable("RSUBHH", "SUBHH", "R", 2020)
	b.Width = 2 // widened between waves

	builder := New()
	builder.AddVariables([]model.Variable{a, b})

	entry, ok := builder.Entry("SUBHH")
	require.True(t, ok)
	assert.False(t, entry.ConsistentMetadata)
	assert.True(t, entry.ConsistentValues)
}

func TestBuilder_ValueFlipIgnoresOrderAndFrequency(t *testing.T) {
	freq := 100
	a := variable("QB000", "B000", "Q", 2018)
	a.ValueCodes = []model.ValueCode{
		{Code: "1", Label: "Yes", Frequency: &freq},
		{Code: "5", Label: "No"},
	}

	b := variable("RB000", "B000", "R", 2020)
	b.ValueCodes = []model.ValueCode{
		{Code: "5", Label: "No"}, // reordered, no frequency
		{Code: "1", Label: "Yes"},
	}

	builder := New()
	builder.AddVariables([]model.Variable{a, b})

	entry, ok := builder.Entry("B000")
	require.True(t, ok)
	assert.True(t, entry.ConsistentValues)

	// A relabeled code flips the flag.
	c := variable("SB000", "B000", "S", 2022)
	c.ValueCodes = []model.ValueCode{
		{Code: "1", Label: "Yes"},
		{Code: "5", Label: "Never"},
	}
	builder.AddVariables([]model.Variable{c})

	entry, ok = builder.Entry("B000")
	require.True(t, ok)
	assert.False(t, entry.ConsistentValues)
	assert.True(t, entry.ConsistentMetadata)
}

func TestBuilder_UnprefixedFirstWave(t *testing.T) {
	builder := New()
	builder.AddVariables([]model.Variable{
		variable("SUBHH", "SUBHH", "", 1992),
		variable("ESUBHH", "SUBHH", "E", 1996),
	})

	entry, ok := builder.Entry("SUBHH")
	require.True(t, ok)
	assert.Equal(t, "", entry.YearPrefixes[1992])
	assert.Equal(t, "E", entry.YearPrefixes[1996])
}

func TestBuilder_AddCodebook(t *testing.T) {
	cb := &model.Codebook{
		Year:      2020,
		Variables: []model.Variable{variable("RSUBHH", "SUBHH", "R", 2020)},
	}

	builder := New()
	builder.Add(cb)

	_, ok := builder.Entry("SUBHH")
	assert.True(t, ok)

	_, ok = builder.Entry("NOPE")
	assert.False(t, ok)
}
