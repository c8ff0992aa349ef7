package parse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrstools/codebook/model"
)

const coreDoc = `2018 HRS Core Final Release

Section A: COVERSCREEN (Respondent)

RSUBHH     2018 SUB-HOUSEHOLD IDENTIFICATION NUMBER
           Section: A    Level: Respondent      Type: Character  Width: 1   Decimals: 0

           .................................................................
           42153          0.  Original sample household
             321          1.  Split household

==============================================================================
RPN_SP     2018 SPOUSE/PARTNER PERSON NUMBER
           Section: A    Level: Respondent      Type: Character  Width: 3   Decimals: 0

==============================================================================
Section B: HEALTH (Household)

RB000      HEALTH STATUS
           Section: B    Level: Household       Type: Numeric    Width: 2   Decimals: 0

                8.  DK (Don't Know)
                9.  RF (Refused)
                1.  Yes (1,204)

==============================================================================
`

func TestParser_ParseCoreDocument(t *testing.T) {
	p := New(nil)
	cb, report, err := p.Parse("hrs_core_codebook", model.TrackCore, 2018, coreDoc)
	require.NoError(t, err)

	assert.Equal(t, "hrs_core_codebook", cb.Source)
	assert.Equal(t, 2018, cb.Year)
	assert.Equal(t, "Final Release", cb.ReleaseType)
	assert.Equal(t, 3, cb.TotalVariables)
	assert.Equal(t, 2, cb.TotalSections)
	assert.Equal(t, []model.Level{model.LevelRespondent, model.LevelHousehold}, cb.Levels)
	assert.False(t, report.EmptyCodebook)
	assert.NotEmpty(t, report.RunID)

	rsubhh := cb.Variables[0]
	assert.Equal(t, "RSUBHH", rsubhh.Name)
	assert.Equal(t, "SUBHH", rsubhh.BaseName)
	assert.Equal(t, "R", rsubhh.Prefix)
	assert.Equal(t, "2018 SUB-HOUSEHOLD IDENTIFICATION NUMBER", rsubhh.Description)
	assert.Equal(t, "A", rsubhh.Section)
	assert.Equal(t, model.TypeCharacter, rsubhh.Type)
	assert.Equal(t, 1, rsubhh.Width)
	require.Len(t, rsubhh.ValueCodes, 2)
	require.NotNil(t, rsubhh.ValueCodes[0].Frequency)
	assert.Equal(t, 42153, *rsubhh.ValueCodes[0].Frequency)

	sec := cb.SectionFor("A", model.LevelRespondent)
	require.NotNil(t, sec)
	assert.Equal(t, "COVERSCREEN", sec.Name)
	assert.Equal(t, 2, sec.VariableCount)
	assert.Equal(t, []string{"RSUBHH", "RPN_SP"}, sec.Variables)
}

func TestParser_ValueCodeFrequencies(t *testing.T) {
	p := New(nil)
	cb, _, err := p.Parse("hrs_core_codebook", model.TrackCore, 2018, coreDoc)
	require.NoError(t, err)

	rb000 := cb.Variables[2]
	require.Len(t, rb000.ValueCodes, 3)

	assert.Nil(t, rb000.ValueCodes[0].Frequency)
	assert.True(t, rb000.ValueCodes[0].IsMissing)
	assert.Nil(t, rb000.ValueCodes[1].Frequency)
	assert.True(t, rb000.ValueCodes[1].IsMissing)
	require.NotNil(t, rb000.ValueCodes[2].Frequency)
	assert.Equal(t, 1204, *rb000.ValueCodes[2].Frequency)
	assert.False(t, rb000.ValueCodes[2].IsMissing)
}

func TestParser_Idempotent(t *testing.T) {
	p := New(nil)

	first, _, err := p.Parse("hrs_core_codebook", model.TrackCore, 2018, coreDoc)
	require.NoError(t, err)
	second, _, err := p.Parse("hrs_core_codebook", model.TrackCore, 2018, coreDoc)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestParser_PartialFailureContainment(t *testing.T) {
	corrupt := strings.Replace(coreDoc,
		"Type: Character  Width: 3", "Type: Character  Width: three", 1)

	p := New(nil)
	cb, report, err := p.Parse("hrs_core_codebook", model.TrackCore, 2018, corrupt)
	require.NoError(t, err)

	// RPN_SP is rejected for its non-numeric width; the rest survive.
	assert.Equal(t, 2, cb.TotalVariables)
	require.Equal(t, 1, report.Count(EntryRejectedVariable))

	var names []string
	for _, v := range cb.Variables {
		names = append(names, v.Name)
	}
	assert.Equal(t, []string{"RSUBHH", "RB000"}, names)

	for _, e := range report.Entries {
		if e.Kind == EntryRejectedVariable {
			assert.Equal(t, "RPN_SP", e.Variable)
			assert.Contains(t, e.Detail, "width")
		}
	}
}

func TestParser_EmptyDocument(t *testing.T) {
	p := New(nil)
	cb, report, err := p.Parse("hrs_core_codebook", model.TrackCore, 2018, "")
	require.NoError(t, err)

	assert.Zero(t, cb.TotalVariables)
	assert.True(t, report.EmptyCodebook)
}

func TestParser_UnknownTrack(t *testing.T) {
	p := New(nil)
	_, _, err := p.Parse("x", model.Track("fax"), 2018, "")
	assert.Error(t, err)
}

func TestParser_SectionFromVariableMetadata(t *testing.T) {
	// No section header anywhere; the variable's own metadata creates
	// the section.
	doc := `RSUBHH     SUB-HOUSEHOLD ID
           Section: A    Level: Respondent      Type: Character  Width: 1   Decimals: 0
`
	p := New(nil)
	cb, _, err := p.Parse("hrs_core_codebook", model.TrackCore, 2018, doc)
	require.NoError(t, err)

	require.Equal(t, 1, cb.TotalSections)
	assert.Equal(t, "A", cb.Sections[0].Code)
	assert.Equal(t, []string{"RSUBHH"}, cb.Sections[0].Variables)
}

func TestParser_OrphanLinesReported(t *testing.T) {
	doc := "some preamble text outside any block\n"
	p := New(nil)
	_, report, err := p.Parse("hrs_core_codebook", model.TrackCore, 2018, doc)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Count(EntryOrphanLine))
}

const exitDoc = `<html><head><title>2016 Final Exit</title></head><body>
<h2>Section A: COVERSCREEN</h2>
<table>
<tr><td>XSUBHH</td><td>2016 SUB-HOUSEHOLD IDENTIFICATION NUMBER</td></tr>
<tr><td>Section: A  Level: Respondent  Type: Character  Width: 1  Decimals: 0</td></tr>
<tr><td>42153</td><td>0</td><td>Original sample household</td></tr>
<tr><td>8</td><td>Don't Know</td></tr>
</table>
</body></html>`

func TestParser_ParseExitDocument(t *testing.T) {
	p := New(nil)
	cb, report, err := p.Parse("hrs_exit_codebook", model.TrackExit, 2016, exitDoc)
	require.NoError(t, err)

	assert.Equal(t, "Final Exit", cb.ReleaseType)
	require.Equal(t, 1, cb.TotalVariables)
	assert.Empty(t, report.Entries)

	v := cb.Variables[0]
	assert.Equal(t, "XSUBHH", v.Name)
	assert.Equal(t, "A", v.Section)
	assert.Equal(t, model.TypeCharacter, v.Type)
	assert.Equal(t, 1, v.Width)
	require.Len(t, v.ValueCodes, 2)
	assert.True(t, v.ValueCodes[1].IsMissing)
}

func TestParser_ExitFallbackSection(t *testing.T) {
	// No header and no metadata row: exit variables land in the
	// synthetic Exit section rather than going homeless.
	doc := `<table>
<tr><td>XA001</td><td>FIRST VARIABLE</td></tr>
<tr><td>1</td><td>Yes</td></tr>
</table>`

	p := New(nil)
	cb, _, err := p.Parse("hrs_exit_codebook", model.TrackExit, 2016, doc)
	require.NoError(t, err)

	require.Equal(t, 1, cb.TotalVariables)
	assert.Equal(t, "EX", cb.Variables[0].Section)
	require.Equal(t, 1, cb.TotalSections)
	assert.Equal(t, "Exit", cb.Sections[0].Name)
}

func TestParser_AssignmentsAndReferences(t *testing.T) {
	doc := `RSUBHH     SUB-HOUSEHOLD ID
           Section: A    Level: Respondent      Type: Character  Width: 1   Decimals: 0
           ASSIGN: RSUBHH = Z078 if Z078 > 0
           Ref: SecA.BR001_
`
	p := New(nil)
	cb, _, err := p.Parse("hrs_core_codebook", model.TrackCore, 2018, doc)
	require.NoError(t, err)

	require.Equal(t, 1, cb.TotalVariables)
	v := cb.Variables[0]
	require.Len(t, v.Assignments, 1)
	assert.Contains(t, v.Assignments[0].Expression, "Z078")
	require.Len(t, v.References, 1)
	assert.Contains(t, v.References[0].Reference, "SecA")
}
