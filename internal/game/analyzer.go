package game

// FindRuns returns every maximal run of at least minLength cells, scanning
// cells column by column and each cell along the positive directions only.
// Locked runs are dropped unless includeLocked is set.
func FindRuns(g *Grid, minLength int, includeLocked bool) []*Run {
	var runs []*Run
	for col := 0; col < g.Columns(); col++ {
		for row := 0; row < g.Rows(); row++ {
			cell := g.Cell(col, row)
			if cell.IsEmpty() {
				continue
			}
			for _, d := range positiveDirections {
				if continuesRun(cell, d) {
					continue
				}
				run := NewRun(cell, d)
				if run.Len() < minLength {
					continue
				}
				if includeLocked || !run.IsLocked() {
					runs = append(runs, run)
				}
			}
		}
	}
	return runs
}

// FindUnlockedRuns is FindRuns without locked runs.
func FindUnlockedRuns(g *Grid, minLength int) []*Run {
	return FindRuns(g, minLength, false)
}

// continuesRun reports whether the cell behind c along d has c's owner, in
// which case the line through c is reported from that earlier cell.
func continuesRun(c *Cell, d Direction) bool {
	prev := c.Neighbor(d.Opposite())
	return prev != nil && prev.Owner() == c.Owner()
}
