package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrack_Valid(t *testing.T) {
	assert.True(t, TrackCore.Valid())
	assert.True(t, TrackExit.Valid())
	assert.True(t, TrackPostExit.Valid())
	assert.False(t, Track("fax").Valid())
	assert.False(t, Track("").Valid())
}

func TestCodebook_SectionFor(t *testing.T) {
	cb := &Codebook{
		Sections: []Section{
			{Code: "A", Level: LevelRespondent, Name: "COVERSCREEN"},
			{Code: "A", Level: LevelHousehold, Name: "COVERSCREEN HH"},
			{Code: "B", Level: LevelRespondent, Name: "HEALTH"},
		},
	}

	s := cb.SectionFor("A", LevelHousehold)
	require.NotNil(t, s)
	assert.Equal(t, "COVERSCREEN HH", s.Name)

	// Section codes repeat across levels; an unmatched level falls back
	// to the first section carrying the code.
	s = cb.SectionFor("A", LevelJobs)
	require.NotNil(t, s)
	assert.Equal(t, "COVERSCREEN", s.Name)

	assert.Nil(t, cb.SectionFor("Z", LevelRespondent))
}

func TestVariable_HasValueCodes(t *testing.T) {
	v := Variable{Name: "RSUBHH"}
	assert.False(t, v.HasValueCodes())

	v.ValueCodes = []ValueCode{{Code: "0", Label: "Original"}}
	assert.True(t, v.HasValueCodes())
}
