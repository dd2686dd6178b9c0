package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchHumanVersusHuman(t *testing.T) {
	m := NewMatch(NewDefaultGrid(), NewHuman(Player1), NewHuman(Player2))

	assert.ErrorIs(t, m.Play(Player1, 0), ErrNotStarted)

	var turns []PlayerID
	m.PlayerChanged().Subscribe(func(p PlayerID) { turns = append(turns, p) })
	var started []PlayerID
	m.Started().Subscribe(func(p PlayerID) { started = append(started, p) })

	m.Start()
	assert.Equal(t, []PlayerID{Player1}, started)
	assert.Equal(t, StatusActive, m.Status())
	assert.Equal(t, Player1, m.Current())

	require.NoError(t, m.Play(Player1, 3))
	assert.Equal(t, Player2, m.Current())
	assert.ErrorIs(t, m.Play(Player1, 3), ErrInvalidTurn)
	assert.ErrorIs(t, m.Play(Player2, 7), ErrInvalidCol)
	assert.ErrorIs(t, m.Play(Player2, -1), ErrInvalidCol)

	require.NoError(t, m.Play(Player2, 3))
	assert.Equal(t, []PlayerID{Player2, Player1}, turns)
	assert.Equal(t, 2, m.Turns())
}

func TestMatchRejectsFullColumn(t *testing.T) {
	m := NewMatch(NewDefaultGrid(), NewHuman(Player1), NewHuman(Player2))
	m.Start()
	p := Player1
	for i := 0; i < DefaultRows; i++ {
		require.NoError(t, m.Play(p, 0))
		p = p.Opponent()
	}
	err := m.Play(p, 0)
	assert.ErrorIs(t, err, ErrColumnFull)
	assert.Equal(t, p, m.Current())
}

func TestMatchEndsWithWinner(t *testing.T) {
	m := NewMatch(NewDefaultGrid(), NewHuman(Player1), NewHuman(Player2))
	var results []Result
	m.Ended().Subscribe(func(r Result) { results = append(results, r) })
	m.Start()

	for i := 0; i < 3; i++ {
		require.NoError(t, m.Play(Player1, 0))
		require.NoError(t, m.Play(Player2, 1))
	}
	require.NoError(t, m.Play(Player1, 0))

	assert.Equal(t, StatusWon, m.Status())
	assert.Equal(t, Player1, m.Winner())
	assert.Equal(t, NoPlayer, m.Current())
	require.Len(t, results, 1)
	assert.Equal(t, Player1, results[0].Winner)
	assert.ElementsMatch(t, []Coordinate{{0, 2}, {0, 3}, {0, 4}, {0, 5}}, results[0].Winning)

	assert.ErrorIs(t, m.Play(Player2, 1), ErrGameFinished)
}

func TestMatchDrawOnFullBoard(t *testing.T) {
	g, err := NewGrid(2, 2)
	require.NoError(t, err)
	m := NewMatch(g, NewHuman(Player1), NewHuman(Player2))
	var results []Result
	m.Ended().Subscribe(func(r Result) { results = append(results, r) })
	m.Start()

	require.NoError(t, m.Play(Player1, 0))
	require.NoError(t, m.Play(Player2, 0))
	require.NoError(t, m.Play(Player1, 1))
	require.NoError(t, m.Play(Player2, 1))

	assert.Equal(t, StatusDraw, m.Status())
	assert.Equal(t, NoPlayer, m.Winner())
	require.Len(t, results, 1)
	assert.Equal(t, StatusDraw, results[0].Status)
}

func TestMatchBotRepliesImmediately(t *testing.T) {
	bot := NewBot(Player2)
	m := NewMatch(NewDefaultGrid(), NewHuman(Player1), bot)
	var decisions []Decision
	m.Decided().Subscribe(func(d Decision) { decisions = append(decisions, d) })
	m.Start()

	require.NoError(t, m.Play(Player1, 3))
	assert.Equal(t, Player1, m.Current())
	assert.Equal(t, 2, m.Turns())
	assert.Equal(t, 2, m.Grid().Tokens())
	require.Len(t, decisions, 1)
	assert.Equal(t, Player2, decisions[0].Player)
	assert.Equal(t, bot.LastDecision(), decisions[0].Stats)
}

func TestMatchBotOpens(t *testing.T) {
	m := NewMatch(NewDefaultGrid(), NewBot(Player1), NewHuman(Player2))
	m.Start()
	assert.Equal(t, 1, m.Turns())
	assert.Equal(t, Player2, m.Current())
}

func TestMatchBotVersusBotTerminates(t *testing.T) {
	m := NewMatch(NewDefaultGrid(), NewBot(Player1), NewBot(Player2))
	m.Start()
	assert.True(t, m.Status().Finished())
	assert.LessOrEqual(t, m.Turns(), DefaultColumns*DefaultRows)
	if m.Status() == StatusWon {
		assert.Equal(t, m.Winner(), m.Grid().Winner())
	} else {
		assert.True(t, m.Grid().IsFull())
	}
}

func TestMatchAbandon(t *testing.T) {
	m := NewMatch(NewDefaultGrid(), NewHuman(Player1), NewHuman(Player2))
	var results []Result
	m.Ended().Subscribe(func(r Result) { results = append(results, r) })
	m.Start()
	m.Abandon()
	m.Abandon()

	assert.Equal(t, StatusAbandoned, m.Status())
	assert.Len(t, results, 1)
	assert.ErrorIs(t, m.Play(Player1, 0), ErrGameFinished)
}

func TestMatchRendererCanListenFirst(t *testing.T) {
	m := NewMatch(NewDefaultGrid(), NewHuman(Player1), NewHuman(Player2))
	var order []string
	m.PlayerChanged().Subscribe(func(PlayerID) { order = append(order, "dispatcher") })
	m.PlayerChanged().SubscribeFirst(func(PlayerID) { order = append(order, "renderer") })
	m.Start()
	require.NoError(t, m.Play(Player1, 0))
	assert.Equal(t, []string{"renderer", "dispatcher"}, order)
}
