package game

import (
	"time"
)

// Evaluation weights.
const (
	winScore      = 10000
	imminentScore = 4000
	cellScore     = 100

	// Single tokens can never be imminent, so evaluation starts at pairs.
	evaluationMinLength = 2
)

// DecisionStats describes the bot's most recent decision.
type DecisionStats struct {
	Column           int           `json:"column"`
	Duration         time.Duration `json:"duration"`
	RepliesEvaluated int           `json:"repliesEvaluated"`
	// Average is the chosen column's mean reply score; zero when Immediate
	// or Fallback is set.
	Average int `json:"average"`
	// Immediate is set when Column wins on the spot.
	Immediate bool `json:"immediate"`
	// Fallback is set when every open column hands the opponent a win.
	Fallback bool `json:"fallback"`
}

// Bot looks one move ahead: it tries every column, answers it with every
// opponent reply, and keeps the column with the best average position that
// does not let the opponent win next turn.
type Bot struct {
	Player PlayerID

	scratch *Grid
	last    DecisionStats
	now     func() time.Time
}

func NewBot(player PlayerID) *Bot {
	return &Bot{Player: player, now: time.Now}
}

func (b *Bot) ID() PlayerID { return b.Player }

// DecideMove implements Participant.
func (b *Bot) DecideMove(g *Grid) (int, bool) {
	return b.ChooseMove(g)
}

// LastDecision returns the stats of the latest ChooseMove call.
func (b *Bot) LastDecision() DecisionStats { return b.last }

// ChooseMove picks a column for b.Player on g without modifying g. It
// returns false when every column is full.
func (b *Bot) ChooseMove(g *Grid) (int, bool) {
	start := b.now()
	scratch := b.prepareScratch(g)
	stats := DecisionStats{Column: -1}
	col, ok := b.choose(scratch, &stats)
	stats.Column = col
	stats.Duration = b.now().Sub(start)
	b.last = stats
	return col, ok
}

func (b *Bot) prepareScratch(g *Grid) *Grid {
	if b.scratch == nil || b.scratch.CopyFrom(g) != nil {
		b.scratch = g.Clone()
	}
	return b.scratch
}

func (b *Bot) choose(scratch *Grid, stats *DecisionStats) (int, bool) {
	me, opponent := b.Player, b.Player.Opponent()
	columns := scratch.Columns()

	chosen, firstOpen := -1, -1
	bestAverage := 0

	for col := 0; col < columns; col++ {
		if !scratch.Drop(col, me) {
			continue
		}
		if firstOpen == -1 {
			firstOpen = col
		}

		if scratch.Winner() == me {
			scratch.lift(col)
			stats.Immediate = true
			return col, true
		}

		sum := 0
		unsafe := false
		for reply := 0; reply < columns; reply++ {
			if !scratch.Drop(reply, opponent) {
				continue
			}
			stats.RepliesEvaluated++
			if scratch.Winner() == opponent {
				unsafe = true
			} else {
				sum += Evaluate(scratch, me)
			}
			scratch.lift(reply)
		}

		// Averaged over every column, open or not.
		average := sum / columns
		if !unsafe && (chosen == -1 || average > bestAverage) {
			chosen = col
			bestAverage = average
		}

		scratch.lift(col)
	}

	if chosen == -1 {
		if firstOpen == -1 {
			return -1, false
		}
		stats.Fallback = true
		return firstOpen, true
	}
	stats.Average = bestAverage
	return chosen, true
}

// Evaluate scores g from perspective's point of view: its run total minus
// the opponent's.
func Evaluate(g *Grid, perspective PlayerID) int {
	totals := map[PlayerID]int{}
	for _, run := range FindRuns(g, evaluationMinLength, true) {
		if run.IsLocked() && run.Len() < WinningLength {
			continue
		}
		totals[run.Owner()] += runScore(run)
	}
	return totals[perspective] - totals[perspective.Opponent()]
}

func runScore(r *Run) int {
	switch {
	case r.Len() >= WinningLength:
		return winScore
	case isImminent(r):
		return imminentScore
	default:
		return cellScore * r.Len()
	}
}

// isImminent reports whether one more token completes four: an open end on
// a run of three, or an open end followed by an own token on a run of two.
func isImminent(r *Run) bool {
	if r.Len() < 2 || r.IsLocked() {
		return false
	}
	forward, backward := r.NextForward(), r.NextBackward()

	switch r.Len() {
	case 3:
		return open(forward) || open(backward)
	case 2:
		owner := r.Owner()
		if open(forward) && ownedBy(forward.Neighbor(r.Direction()), owner) {
			return true
		}
		if open(backward) && ownedBy(backward.Neighbor(r.Direction().Opposite()), owner) {
			return true
		}
	}
	return false
}

func open(c *Cell) bool {
	return c != nil && c.IsEmpty()
}

func ownedBy(c *Cell, p PlayerID) bool {
	return c != nil && c.Owner() == p
}
