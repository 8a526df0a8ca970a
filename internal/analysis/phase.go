package analysis

import (
	"strings"

	"github.com/san-kum/musclesim/internal/sim"
)

type Point struct{ X, Y float64 }

// PhasePortrait pairs joint angle (X) with angular velocity (Y).
type PhasePortrait struct {
	Points []Point
}

func NewPhasePortrait(history sim.TimeHistory) *PhasePortrait {
	p := &PhasePortrait{Points: make([]Point, len(history))}
	for i, s := range history {
		p.Points[i] = Point{X: s.Theta, Y: s.Omega}
	}
	return p
}

// Crossings returns the interpolated times at which data rises through
// threshold.
func Crossings(times, data []float64, threshold float64) []float64 {
	n := min(len(times), len(data))
	out := make([]float64, 0)
	for i := 1; i < n; i++ {
		prev, curr := data[i-1], data[i]
		if prev < threshold && curr >= threshold {
			frac := (threshold - prev) / (curr - prev)
			out = append(out, times[i-1]+frac*(times[i]-times[i-1]))
		}
	}
	return out
}

// ASCII draws the portrait on a width x height grid with axes where zero is
// in view.
func (p *PhasePortrait) ASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := p.Points[0].X, p.Points[0].X
	minY, maxY := p.Points[0].Y, p.Points[0].Y
	for _, pt := range p.Points {
		minX, maxX = min(minX, pt.X), max(maxX, pt.X)
		minY, maxY = min(minY, pt.Y), max(maxY, pt.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	toCol := func(x float64) int { return int((x - minX) / rangeX * float64(width-1)) }
	toRow := func(y float64) int { return height - 1 - int((y-minY)/rangeY*float64(height-1)) }

	if minX <= 0 && maxX >= 0 {
		col := toCol(0)
		for row := range grid {
			grid[row][col] = '│'
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := toRow(0)
		for col := range grid[row] {
			if grid[row][col] == '│' {
				grid[row][col] = '┼'
			} else {
				grid[row][col] = '─'
			}
		}
	}

	for _, pt := range p.Points {
		row, col := toRow(pt.Y), toCol(pt.X)
		if row >= 0 && row < height && col >= 0 && col < width {
			grid[row][col] = '•'
		}
	}

	var sb strings.Builder
	for _, row := range grid {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
