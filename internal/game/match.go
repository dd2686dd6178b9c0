package game

import (
	"github.com/pkg/errors"
)

type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusActive    Status = "active"
	StatusWon       Status = "won"
	StatusDraw      Status = "draw"
	StatusAbandoned Status = "abandoned"
)

func (s Status) Finished() bool {
	return s == StatusWon || s == StatusDraw || s == StatusAbandoned
}

var (
	ErrColumnFull   = errors.New("column is full")
	ErrInvalidTurn  = errors.New("not your turn")
	ErrInvalidCol   = errors.New("invalid column")
	ErrGameFinished = errors.New("game already finished")
	ErrNotStarted   = errors.New("game not started")
)

// Result is published once when a match ends.
type Result struct {
	Status  Status       `json:"status"`
	Winner  PlayerID     `json:"winner"`
	Winning []Coordinate `json:"winning,omitempty"`
}

// Decision is published after an automated participant commits a move.
type Decision struct {
	Player PlayerID      `json:"player"`
	Stats  DecisionStats `json:"stats"`
}

// Match sequences turns on one authoritative grid. Player1 moves first.
// When the player to move is automated, Match asks it for a column and
// commits it before returning control.
type Match struct {
	grid         *Grid
	participants map[PlayerID]Participant
	current      PlayerID
	status       Status
	winner       PlayerID
	winning      []Coordinate
	turns        int

	started       EventSource[PlayerID]
	playerChanged EventSource[PlayerID]
	decided       EventSource[Decision]
	ended         EventSource[Result]
}

func NewMatch(grid *Grid, first, second Participant) *Match {
	return &Match{
		grid: grid,
		participants: map[PlayerID]Participant{
			first.ID():  first,
			second.ID(): second,
		},
		current: Player1,
		status:  StatusWaiting,
	}
}

func (m *Match) Grid() *Grid { return m.grid }

func (m *Match) Current() PlayerID { return m.current }

func (m *Match) Status() Status { return m.status }

func (m *Match) Winner() PlayerID { return m.winner }

// Winning lists the cells of the winning run once the match is won.
func (m *Match) Winning() []Coordinate {
	return append([]Coordinate(nil), m.winning...)
}

// Turns counts committed drops.
func (m *Match) Turns() int { return m.turns }

func (m *Match) Participant(p PlayerID) Participant { return m.participants[p] }

// Started fires with the first player when Start is called.
func (m *Match) Started() *EventSource[PlayerID] { return &m.started }

// PlayerChanged fires with the player now to move.
func (m *Match) PlayerChanged() *EventSource[PlayerID] { return &m.playerChanged }

func (m *Match) Decided() *EventSource[Decision] { return &m.decided }

func (m *Match) Ended() *EventSource[Result] { return &m.ended }

// Start opens the match and lets an automated first player move.
func (m *Match) Start() {
	if m.status != StatusWaiting {
		return
	}
	m.status = StatusActive
	m.started.Notify(m.current)
	if m.grid.IsFull() {
		m.finish(StatusDraw, nil)
		return
	}
	m.runAutomated()
}

// Play drops a token for player and then lets any automated opponent reply.
func (m *Match) Play(player PlayerID, column int) error {
	switch {
	case m.status == StatusWaiting:
		return ErrNotStarted
	case m.status.Finished():
		return ErrGameFinished
	case player != m.current:
		return errors.Wrapf(ErrInvalidTurn, "%s to move", m.current)
	case column < 0 || column >= m.grid.Columns():
		return errors.Wrapf(ErrInvalidCol, "column %d", column)
	}
	if !m.grid.Drop(column, player) {
		return errors.Wrapf(ErrColumnFull, "column %d", column)
	}
	m.turns++
	m.advance()
	m.runAutomated()
	return nil
}

// Abandon ends an unfinished match without a winner.
func (m *Match) Abandon() {
	if m.status.Finished() {
		return
	}
	m.finish(StatusAbandoned, nil)
}

func (m *Match) runAutomated() {
	for m.status == StatusActive {
		p := m.participants[m.current]
		if p == nil {
			return
		}
		col, ok := p.DecideMove(m.grid)
		if !ok {
			return
		}
		if !m.grid.Drop(col, m.current) {
			return
		}
		m.turns++
		if r, isReporter := p.(StatsReporter); isReporter {
			m.decided.Notify(Decision{Player: m.current, Stats: r.LastDecision()})
		}
		m.advance()
	}
}

func (m *Match) advance() {
	if run := winningRun(m.grid); run != nil {
		m.finish(StatusWon, run)
		return
	}
	if m.grid.IsFull() {
		m.finish(StatusDraw, nil)
		return
	}
	m.current = m.current.Opponent()
	m.playerChanged.Notify(m.current)
}

func (m *Match) finish(status Status, run *Run) {
	m.status = status
	if run != nil {
		m.winner = run.Owner()
		m.winning = run.Positions()
	}
	m.current = NoPlayer
	m.ended.Notify(Result{Status: m.status, Winner: m.winner, Winning: m.Winning()})
}

func winningRun(g *Grid) *Run {
	runs := FindRuns(g, WinningLength, true)
	if len(runs) == 0 {
		return nil
	}
	return runs[0]
}
