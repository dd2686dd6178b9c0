package game

// PlayerID tags a cell owner or a participant. The zero value marks an empty
// cell.
type PlayerID int

const (
	NoPlayer PlayerID = iota
	Player1
	Player2
)

// Opponent returns the other player. NoPlayer has no opponent.
func (p PlayerID) Opponent() PlayerID {
	switch p {
	case Player1:
		return Player2
	case Player2:
		return Player1
	default:
		return NoPlayer
	}
}

func (p PlayerID) Valid() bool {
	return p == Player1 || p == Player2
}

func (p PlayerID) String() string {
	switch p {
	case Player1:
		return "Player 1"
	case Player2:
		return "Player 2"
	default:
		return "None"
	}
}
