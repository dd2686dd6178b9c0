package game

// Participant is one side of a match. DecideMove returns false when the
// participant has no automated decision and waits for external input.
type Participant interface {
	ID() PlayerID
	DecideMove(g *Grid) (column int, ok bool)
}

// Human moves only through Match.Play.
type Human struct {
	Player PlayerID
}

func NewHuman(player PlayerID) *Human {
	return &Human{Player: player}
}

func (h *Human) ID() PlayerID { return h.Player }

func (h *Human) DecideMove(*Grid) (int, bool) { return -1, false }

// StatsReporter is implemented by participants that expose decision stats.
type StatsReporter interface {
	LastDecision() DecisionStats
}
