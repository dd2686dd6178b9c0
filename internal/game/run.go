package game

import "strings"

// Run is a contiguous line of same-owner cells along one positive direction,
// ordered from its backward end to its forward end.
type Run struct {
	direction Direction
	cells     []*Cell
}

// NewRun seeds a run at seed and extends it forward until blocked. An empty
// seed yields a run of just that cell.
func NewRun(seed *Cell, d Direction) *Run {
	r := &Run{direction: d, cells: []*Cell{seed}}
	if seed.IsEmpty() {
		return r
	}
	for r.ExtendForward() {
	}
	return r
}

func (r *Run) Direction() Direction { return r.direction }

func (r *Run) Len() int { return len(r.cells) }

// Cells returns the run's cells, backward end first.
func (r *Run) Cells() []*Cell {
	return append([]*Cell(nil), r.cells...)
}

func (r *Run) Positions() []Coordinate {
	out := make([]Coordinate, len(r.cells))
	for i, c := range r.cells {
		out[i] = c.Position()
	}
	return out
}

// Owner is the owner of the first cell, or NoPlayer for an empty run.
func (r *Run) Owner() PlayerID {
	if len(r.cells) == 0 {
		return NoPlayer
	}
	return r.cells[0].Owner()
}

// NextForward is the cell just past the forward end, or nil off-grid.
func (r *Run) NextForward() *Cell {
	if len(r.cells) == 0 {
		return nil
	}
	return r.cells[len(r.cells)-1].Neighbor(r.direction)
}

// NextBackward is the cell just before the backward end, or nil off-grid.
func (r *Run) NextBackward() *Cell {
	if len(r.cells) == 0 {
		return nil
	}
	return r.cells[0].Neighbor(r.direction.Opposite())
}

func (r *Run) ExtendForward() bool {
	next := r.NextForward()
	if next == nil || next.Owner() != r.Owner() {
		return false
	}
	r.cells = append(r.cells, next)
	return true
}

func (r *Run) ExtendBackward() bool {
	prev := r.NextBackward()
	if prev == nil || prev.Owner() != r.Owner() {
		return false
	}
	r.cells = append([]*Cell{prev}, r.cells...)
	return true
}

// IsLocked reports whether neither end can take another token: each end
// neighbour is off-grid or occupied, whoever owns it.
func (r *Run) IsLocked() bool {
	return blocked(r.NextForward()) && blocked(r.NextBackward())
}

func blocked(c *Cell) bool {
	return c == nil || !c.IsEmpty()
}

func (r *Run) String() string {
	parts := make([]string, len(r.cells))
	for i, c := range r.cells {
		parts[i] = c.Position().String()
	}
	return strings.Join(parts, ",")
}
