package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrstools/codebook/model"
)

const exitSample = `<html><head><title>2016 Exit Codebook</title></head><body>
<h2>Section A: COVERSCREEN</h2>
<table>
<tr><td>XSUBHH</td><td>2016 SUB-HOUSEHOLD IDENTIFICATION NUMBER</td></tr>
<tr><td>42153</td><td>0</td><td>Original sample household</td></tr>
<tr><td>321</td><td>1</td><td>Split household</td></tr>
</table>
<table>
<tr><td>Section B: HEALTH (Household)</td></tr>
<tr><td>XC001</td><td>RATE HEALTH</td></tr>
<tr><td></td><td>8</td><td>Don't Know</td></tr>
</table>
</body></html>`

func TestExitHTML_Segment(t *testing.T) {
	s := NewExitHTML()
	res := s.Segment(exitSample)

	require.Len(t, res.Blocks, 5)

	assert.Equal(t, KindSectionHeader, res.Blocks[0].Kind)
	assert.Equal(t, "A", res.Blocks[0].Code)
	assert.Equal(t, "COVERSCREEN", res.Blocks[0].Name)
	assert.Equal(t, model.LevelRespondent, res.Blocks[0].Level)

	assert.Equal(t, KindVariable, res.Blocks[1].Kind)
	assert.Equal(t, "XSUBHH", res.Blocks[1].VarName)
	require.Len(t, res.Blocks[1].Rows, 3)
	assert.Equal(t, []string{"42153", "0", "Original sample household"}, res.Blocks[1].Rows[1])

	assert.Equal(t, KindSectionHeader, res.Blocks[2].Kind)
	assert.Equal(t, "B", res.Blocks[2].Code)
	assert.Equal(t, model.LevelHousehold, res.Blocks[2].Level)

	assert.Equal(t, KindVariable, res.Blocks[3].Kind)
	assert.Equal(t, "XC001", res.Blocks[3].VarName)
	require.Len(t, res.Blocks[3].Rows, 2)

	assert.Equal(t, KindEndOfDocument, res.Blocks[4].Kind)
	assert.Empty(t, res.Orphans)
}

func TestExitHTML_LastBlockFlushed(t *testing.T) {
	s := NewExitHTML()
	res := s.Segment(exitSample)

	// The final variable block must be emitted before end-of-document.
	assert.Equal(t, KindVariable, res.Blocks[len(res.Blocks)-2].Kind)
	assert.Equal(t, "XC001", res.Blocks[len(res.Blocks)-2].VarName)
}

func TestExitHTML_OrphanRows(t *testing.T) {
	s := NewExitHTML()
	content := `<table>
<tr><td>loose text</td><td>before any variable</td></tr>
<tr><td>XA001</td><td>FIRST VARIABLE</td></tr>
</table>`

	res := s.Segment(content)

	require.Len(t, res.Orphans, 1)
	assert.Contains(t, res.Orphans[0].Text, "loose text")
}

func TestExitHTML_TagSoupStillSegments(t *testing.T) {
	s := NewExitHTML()

	// Unclosed cells and a missing tbody; the parser repairs the tree.
	content := `<table><tr><td>XA001<td>FIRST VARIABLE<tr><td>1<td>2<td>Yes`
	res := s.Segment(content)

	require.Len(t, res.Blocks, 2)
	assert.Equal(t, KindVariable, res.Blocks[0].Kind)
	assert.Equal(t, "XA001", res.Blocks[0].VarName)
	require.Len(t, res.Blocks[0].Rows, 2)
}

func TestExitHTML_EmptyDocument(t *testing.T) {
	s := NewExitHTML()
	res := s.Segment("")

	require.Len(t, res.Blocks, 1)
	assert.Equal(t, KindEndOfDocument, res.Blocks[0].Kind)
}

func TestExitHTML_NestedMarkupInCells(t *testing.T) {
	s := NewExitHTML()
	content := `<table>
<tr><td><b>XA001</b></td><td><i>FIRST</i> VARIABLE</td></tr>
</table>`

	res := s.Segment(content)

	require.Len(t, res.Blocks, 2)
	assert.Equal(t, "XA001", res.Blocks[0].VarName)
	assert.Equal(t, "FIRST VARIABLE", res.Blocks[0].Rows[0][1])
}
