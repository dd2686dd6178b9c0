package game

// Direction is one of the eight compass neighbours of a cell, or None.
type Direction int

const (
	None Direction = iota
	North
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
)

// North points at row 0, the top of the grid.
var offsets = [...]Coordinate{
	None:      {0, 0},
	North:     {0, -1},
	NorthEast: {1, -1},
	East:      {1, 0},
	SouthEast: {1, 1},
	South:     {0, 1},
	SouthWest: {-1, 1},
	West:      {-1, 0},
	NorthWest: {-1, -1},
}

var directionNames = [...]string{
	None:      "none",
	North:     "north",
	NorthEast: "northeast",
	East:      "east",
	SouthEast: "southeast",
	South:     "south",
	SouthWest: "southwest",
	West:      "west",
	NorthWest: "northwest",
}

// Directions lists every direction except None in declaration order.
var Directions = []Direction{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest}

var positiveDirections, negativeDirections = partitionDirections()

func partitionDirections() (positive, negative []Direction) {
	for _, d := range Directions {
		if d.Offset().IsPositive() {
			positive = append(positive, d)
		} else {
			negative = append(negative, d)
		}
	}
	return positive, negative
}

func (d Direction) valid() bool {
	return d >= None && int(d) < len(offsets)
}

// Offset returns the unit step for d. Unknown values behave like None.
func (d Direction) Offset() Coordinate {
	if !d.valid() {
		return Origin
	}
	return offsets[d]
}

// Opposite returns the direction with the negated offset; None for None.
func (d Direction) Opposite() Direction {
	return DirectionFromOffset(d.Offset().Scale(-1))
}

// IsPositive reports whether d is one of the four canonical scan directions.
func (d Direction) IsPositive() bool {
	return d.Offset().IsPositive()
}

func (d Direction) String() string {
	if !d.valid() {
		return "unknown"
	}
	return directionNames[d]
}

// DirectionFromOffset resolves a unit offset back to its direction. Any
// offset that is not a unit step maps to None.
func DirectionFromOffset(offset Coordinate) Direction {
	for _, d := range Directions {
		if offsets[d] == offset {
			return d
		}
	}
	return None
}

// PositiveDirections returns NorthEast, East, SouthEast and South.
func PositiveDirections() []Direction {
	return append([]Direction(nil), positiveDirections...)
}

// NegativeDirections returns the opposites of PositiveDirections.
func NegativeDirections() []Direction {
	return append([]Direction(nil), negativeDirections...)
}
