package game

import "fmt"

// Coordinate is a (column, row) position or offset on a grid. Row 0 is the
// top of the grid.
type Coordinate struct {
	Column int `json:"column"`
	Row    int `json:"row"`
}

// Origin is the zero coordinate.
var Origin = Coordinate{}

func (c Coordinate) Add(o Coordinate) Coordinate {
	return Coordinate{Column: c.Column + o.Column, Row: c.Row + o.Row}
}

func (c Coordinate) Subtract(o Coordinate) Coordinate {
	return Coordinate{Column: c.Column - o.Column, Row: c.Row - o.Row}
}

func (c Coordinate) Scale(k int) Coordinate {
	return Coordinate{Column: c.Column * k, Row: c.Row * k}
}

// IsPositive splits every non-zero coordinate into exactly one of two halves:
// column > 0, or column == 0 and row > 0. Origin is neither.
func (c Coordinate) IsPositive() bool {
	if c.Column != 0 {
		return c.Column > 0
	}
	return c.Row > 0
}

// IsNegative reports whether -c is positive.
func (c Coordinate) IsNegative() bool {
	return c != Origin && !c.IsPositive()
}

// Compare orders coordinates by the sign of their difference.
func (c Coordinate) Compare(o Coordinate) int {
	delta := c.Subtract(o)
	switch {
	case delta == Origin:
		return 0
	case delta.IsPositive():
		return 1
	default:
		return -1
	}
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.Column, c.Row)
}
