package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeOpenPosition(t *testing.T) {
	g := mustParse(t,
		".......",
		".......",
		".......",
		".......",
		".......",
		"XXX.OO.",
	)
	before := g.String()
	a := Analyze(g, Player2)

	assert.Equal(t, Player2, a.Perspective)
	assert.Equal(t, NoPlayer, a.Winner)
	assert.Equal(t, 3, a.Choice)
	assert.Equal(t, Evaluate(g, Player2), a.Evaluation)
	assert.Equal(t, before, g.String())

	require.Len(t, a.Runs, 2)
	for _, r := range a.Runs {
		assert.Equal(t, "east", r.Direction)
		switch r.Owner {
		case Player1:
			assert.Len(t, r.Cells, 3)
			assert.True(t, r.Imminent)
			assert.False(t, r.Locked)
		case Player2:
			assert.Len(t, r.Cells, 2)
		}
	}
}

func TestAnalyzeFinishedPosition(t *testing.T) {
	g := mustParse(t,
		".......",
		".......",
		".......",
		".......",
		"OOO....",
		"XXXX...",
	)
	a := Analyze(g, Player2)
	assert.Equal(t, Player1, a.Winner)
	assert.Equal(t, -1, a.Choice)
	assert.Equal(t, -1, a.Decision.Column)
}

func TestAnalyzeEmptyGridHasNoRuns(t *testing.T) {
	a := Analyze(NewDefaultGrid(), Player1)
	assert.NotNil(t, a.Runs)
	assert.Empty(t, a.Runs)
	assert.GreaterOrEqual(t, a.Choice, 0)
}
