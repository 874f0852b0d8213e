// Package matrix buckets risks into the 3x3 probability/impact grid and
// holds the severity palette shared by the preview and the export.
package matrix

import (
	"github.com/wudi/riskmatrix/risk"
	"github.com/wudi/riskmatrix/scale"
)

const (
	Rows    = len(scale.ProbabilityLevels)
	Columns = len(scale.ImpactLevels)
)

// Grid rows are indexed by probability (High first), columns by impact
// (Low first). Each cell keeps its risks in input order.
type Grid struct {
	cells [Rows][Columns][]risk.Risk
}

// Distribute places every risk in exactly one cell. Unrecognised levels
// fall back to Medium on that axis.
func Distribute(risks []risk.Risk) *Grid {
	g := &Grid{}
	for _, r := range risks {
		row := r.ProbabilityLevel().Index()
		col := r.ImpactLevel().Index()
		g.cells[row][col] = append(g.cells[row][col], r)
	}
	return g
}

// Cell returns the risks at (row, col), or nil outside the grid.
func (g *Grid) Cell(row, col int) []risk.Risk {
	if row < 0 || row >= Rows || col < 0 || col >= Columns {
		return nil
	}
	return g.cells[row][col]
}

// At is Cell addressed by level.
func (g *Grid) At(p scale.Probability, i scale.Impact) []risk.Risk {
	return g.Cell(p.Index(), i.Index())
}

func (g *Grid) Count(row, col int) int { return len(g.Cell(row, col)) }

// Total is the number of risks across all cells.
func (g *Grid) Total() int {
	n := 0
	for row := range g.cells {
		for col := range g.cells[row] {
			n += len(g.cells[row][col])
		}
	}
	return n
}

// Counts returns the per-cell risk counts.
func (g *Grid) Counts() [Rows][Columns]int {
	var out [Rows][Columns]int
	for row := range g.cells {
		for col := range g.cells[row] {
			out[row][col] = len(g.cells[row][col])
		}
	}
	return out
}
