package game

// Cell is one slot of a Grid. Cells are created with their grid and live as
// long as it does.
type Cell struct {
	grid  *Grid
	pos   Coordinate
	owner PlayerID
}

func (c *Cell) Position() Coordinate { return c.pos }

func (c *Cell) Owner() PlayerID { return c.owner }

func (c *Cell) IsEmpty() bool { return c.owner == NoPlayer }

// Neighbor returns the adjacent cell in direction d, or nil when d is None or
// the step leaves the grid.
func (c *Cell) Neighbor(d Direction) *Cell {
	if d == None {
		return nil
	}
	return c.grid.CellAt(c.pos.Add(d.Offset()))
}

func (c *Cell) setOwner(p PlayerID) {
	c.owner = p
}
