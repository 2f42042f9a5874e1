package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/particlesim/internal/dynamo"
)

// PhasePortrait2D holds one particle's path projected on two axes.
type PhasePortrait2D struct {
	Particle     int
	XAxis, YAxis int
	Points       []struct{ X, Y float64 }
}

// PhasePortrait projects particle's recorded positions on the x-y plane.
func PhasePortrait(positions [][]mgl64.Vec3, particle int) (*PhasePortrait2D, error) {
	return Projection(positions, particle, 0, 1)
}

// Projection projects particle's recorded positions on axes (xAxis, yAxis).
func Projection(positions [][]mgl64.Vec3, particle, xAxis, yAxis int) (*PhasePortrait2D, error) {
	xs, err := Component(positions, particle, xAxis)
	if err != nil {
		return nil, err
	}
	ys, err := Component(positions, particle, yAxis)
	if err != nil {
		return nil, err
	}
	if len(xs) == 0 {
		return nil, fmt.Errorf("%w: no samples", dynamo.ErrParameterBounds)
	}

	portrait := &PhasePortrait2D{
		Particle: particle,
		XAxis:    xAxis,
		YAxis:    yAxis,
		Points:   make([]struct{ X, Y float64 }, len(xs)),
	}
	for i := range xs {
		portrait.Points[i].X = xs[i]
		portrait.Points[i].Y = ys[i]
	}
	return portrait, nil
}

// PhasePortraitToASCII renders the portrait on a width x height character grid.
// Axes are drawn where zero lies inside the padded bounds.
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range portrait.Points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	minX, maxX = pad(minX, maxX)
	minY, maxY = pad(minY, maxY)

	col := func(x float64) int { return int((x - minX) / (maxX - minX) * float64(width-1)) }
	row := func(y float64) int { return height - 1 - int((y-minY)/(maxY-minY)*float64(height-1)) }

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range portrait.Points {
		r, c := row(p.Y), col(p.X)
		if r >= 0 && r < height && c >= 0 && c < width {
			canvas[r][c] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		c := col(0)
		for r := range canvas {
			if canvas[r][c] == ' ' {
				canvas[r][c] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		r := row(0)
		for c := range canvas[r] {
			if canvas[r][c] == ' ' {
				canvas[r][c] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, line := range canvas {
		sb.WriteString(string(line))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// pad widens [lo, hi] by 10% on each side; a degenerate range becomes unit width.
func pad(lo, hi float64) (float64, float64) {
	span := hi - lo
	if span == 0 {
		span = 1
	}
	return lo - 0.1*span, hi + 0.1*span
}
