package game

// RunView is a run flattened for display.
type RunView struct {
	Owner     PlayerID     `json:"owner"`
	Direction string       `json:"direction"`
	Cells     []Coordinate `json:"cells"`
	Locked    bool         `json:"locked"`
	Imminent  bool         `json:"imminent"`
}

// Analysis describes a position from one player's point of view.
type Analysis struct {
	Perspective PlayerID      `json:"perspective"`
	Winner      PlayerID      `json:"winner"`
	Evaluation  int           `json:"evaluation"`
	Runs        []RunView     `json:"runs"`
	Choice      int           `json:"choice"`
	Decision    DecisionStats `json:"decision"`
}

// Analyze lists every run of two or more tokens, scores the position for
// perspective and asks a fresh bot for perspective's move. g is not
// modified. Choice is -1 when the position is already won or the grid is
// full.
func Analyze(g *Grid, perspective PlayerID) Analysis {
	a := Analysis{
		Perspective: perspective,
		Winner:      g.Winner(),
		Evaluation:  Evaluate(g, perspective),
		Runs:        []RunView{},
		Choice:      -1,
	}
	for _, r := range FindRuns(g, evaluationMinLength, true) {
		a.Runs = append(a.Runs, RunView{
			Owner:     r.Owner(),
			Direction: r.Direction().String(),
			Cells:     r.Positions(),
			Locked:    r.IsLocked(),
			Imminent:  isImminent(r),
		})
	}
	if a.Winner != NoPlayer {
		a.Decision.Column = -1
		return a
	}
	bot := NewBot(perspective)
	if col, ok := bot.ChooseMove(g); ok {
		a.Choice = col
	}
	a.Decision = bot.LastDecision()
	return a
}
