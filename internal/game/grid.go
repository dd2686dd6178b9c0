package game

import (
	"strings"

	"github.com/pkg/errors"
)

const (
	DefaultColumns = 7
	DefaultRows    = 6

	// WinningLength is the run length that wins the game.
	WinningLength = 4
)

var (
	ErrInvalidDimensions = errors.New("invalid grid dimensions")
	ErrDimensionMismatch = errors.New("grid dimensions differ")
	ErrInvalidBoard      = errors.New("invalid board layout")
)

// CellChange is published by a Grid after every successful drop.
type CellChange struct {
	Column int      `json:"column"`
	Row    int      `json:"row"`
	Owner  PlayerID `json:"owner"`
}

// Grid owns a fixed rectangle of cells. Row 0 is the top; tokens settle at
// the highest free row index of a column.
type Grid struct {
	columns int
	rows    int
	cells   []Cell // column-major

	changed EventSource[CellChange]
}

func NewGrid(columns, rows int) (*Grid, error) {
	if columns < 1 || rows < 1 {
		return nil, errors.Wrapf(ErrInvalidDimensions, "%dx%d", columns, rows)
	}
	g := &Grid{
		columns: columns,
		rows:    rows,
		cells:   make([]Cell, columns*rows),
	}
	for col := 0; col < columns; col++ {
		for row := 0; row < rows; row++ {
			g.cells[g.index(col, row)] = Cell{grid: g, pos: Coordinate{Column: col, Row: row}}
		}
	}
	return g, nil
}

// NewDefaultGrid returns an empty 7x6 grid.
func NewDefaultGrid() *Grid {
	g, _ := NewGrid(DefaultColumns, DefaultRows)
	return g
}

func (g *Grid) index(col, row int) int {
	return col*g.rows + row
}

func (g *Grid) Columns() int { return g.columns }

func (g *Grid) Rows() int { return g.rows }

// Changed is the cell-changed notification channel.
func (g *Grid) Changed() *EventSource[CellChange] { return &g.changed }

func (g *Grid) Contains(pos Coordinate) bool {
	return pos.Column >= 0 && pos.Column < g.columns && pos.Row >= 0 && pos.Row < g.rows
}

// Cell returns the cell at (col, row), or nil when out of range.
func (g *Grid) Cell(col, row int) *Cell {
	return g.CellAt(Coordinate{Column: col, Row: row})
}

func (g *Grid) CellAt(pos Coordinate) *Cell {
	if !g.Contains(pos) {
		return nil
	}
	return &g.cells[g.index(pos.Column, pos.Row)]
}

// CanDrop reports whether column exists and its top cell is free.
func (g *Grid) CanDrop(column int) bool {
	top := g.Cell(column, 0)
	return top != nil && top.IsEmpty()
}

// Drop places a token for player at the lowest free row of column. It
// returns false without touching the grid when the column is full or out of
// range, or when player is NoPlayer.
func (g *Grid) Drop(column int, player PlayerID) bool {
	if !player.Valid() || !g.CanDrop(column) {
		return false
	}

	row := 0
	for row+1 < g.rows && g.Cell(column, row+1).IsEmpty() {
		row++
	}

	g.Cell(column, row).setOwner(player)
	g.changed.Notify(CellChange{Column: column, Row: row, Owner: player})
	return true
}

// lift clears the topmost token of column without notifying listeners. It
// undoes hypothetical drops on scratch grids.
func (g *Grid) lift(column int) bool {
	top := g.TopOccupied(column)
	if top == nil {
		return false
	}
	top.setOwner(NoPlayer)
	return true
}

// TopOccupied returns the highest non-empty cell of column, or nil.
func (g *Grid) TopOccupied(column int) *Cell {
	if column < 0 || column >= g.columns {
		return nil
	}
	for row := 0; row < g.rows; row++ {
		if c := g.Cell(column, row); !c.IsEmpty() {
			return c
		}
	}
	return nil
}

// Winner returns the owner of the first run of WinningLength or more, or
// NoPlayer.
func (g *Grid) Winner() PlayerID {
	if run := winningRun(g); run != nil {
		return run.Owner()
	}
	return NoPlayer
}

// IsFull reports whether no column accepts another token.
func (g *Grid) IsFull() bool {
	for col := 0; col < g.columns; col++ {
		if g.CanDrop(col) {
			return false
		}
	}
	return true
}

func (g *Grid) OpenColumns() []int {
	open := make([]int, 0, g.columns)
	for col := 0; col < g.columns; col++ {
		if g.CanDrop(col) {
			open = append(open, col)
		}
	}
	return open
}

// Tokens counts occupied cells.
func (g *Grid) Tokens() int {
	n := 0
	for i := range g.cells {
		if !g.cells[i].IsEmpty() {
			n++
		}
	}
	return n
}

// Clone returns an independent copy of the cell owners. Listeners are not
// copied.
func (g *Grid) Clone() *Grid {
	c, _ := NewGrid(g.columns, g.rows)
	for i := range g.cells {
		c.cells[i].owner = g.cells[i].owner
	}
	return c
}

// CopyFrom overwrites every owner with those of src without notifying.
func (g *Grid) CopyFrom(src *Grid) error {
	if src.columns != g.columns || src.rows != g.rows {
		return errors.Wrapf(ErrDimensionMismatch, "%dx%d into %dx%d", src.columns, src.rows, g.columns, g.rows)
	}
	for i := range src.cells {
		g.cells[i].owner = src.cells[i].owner
	}
	return nil
}

// Snapshot returns owners indexed [row][column], row 0 first.
func (g *Grid) Snapshot() [][]PlayerID {
	out := make([][]PlayerID, g.rows)
	for row := range out {
		out[row] = make([]PlayerID, g.columns)
		for col := range out[row] {
			out[row][col] = g.Cell(col, row).Owner()
		}
	}
	return out
}

// String renders one line per row, top first: '.' empty, 'X' Player1,
// 'O' Player2.
func (g *Grid) String() string {
	var b strings.Builder
	for row := 0; row < g.rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		for col := 0; col < g.columns; col++ {
			b.WriteByte(ownerSymbol(g.Cell(col, row).Owner()))
		}
	}
	return b.String()
}

func ownerSymbol(p PlayerID) byte {
	switch p {
	case Player1:
		return 'X'
	case Player2:
		return 'O'
	default:
		return '.'
	}
}

func parseSymbol(ch byte) (PlayerID, bool) {
	switch ch {
	case '.', ' ', '0':
		return NoPlayer, true
	case 'X', 'x', '1':
		return Player1, true
	case 'O', 'o', '2':
		return Player2, true
	default:
		return NoPlayer, false
	}
}

// ParseGrid builds a grid from rows in the String format, top row first.
// Tokens must rest on the bottom or on another token.
func ParseGrid(rows []string) (*Grid, error) {
	if len(rows) == 0 {
		return nil, errors.Wrap(ErrInvalidDimensions, "no rows")
	}
	// The grid is only allocated once the text has proven rectangular.
	columns := len(rows[0])
	for row, line := range rows {
		if len(line) != columns {
			return nil, errors.Wrapf(ErrInvalidBoard, "row %d has %d columns, want %d", row, len(line), columns)
		}
	}
	g, err := NewGrid(columns, len(rows))
	if err != nil {
		return nil, err
	}
	for row, line := range rows {
		for col := 0; col < g.columns; col++ {
			p, ok := parseSymbol(line[col])
			if !ok {
				return nil, errors.Wrapf(ErrInvalidBoard, "unknown symbol %q at %s", line[col], Coordinate{col, row})
			}
			g.Cell(col, row).setOwner(p)
		}
	}
	for col := 0; col < g.columns; col++ {
		for row := 0; row+1 < g.rows; row++ {
			if !g.Cell(col, row).IsEmpty() && g.Cell(col, row+1).IsEmpty() {
				return nil, errors.Wrapf(ErrInvalidBoard, "floating token at %s", Coordinate{col, row})
			}
		}
	}
	return g, nil
}
