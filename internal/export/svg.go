package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/particlesim/internal/analysis"
)

const svgHeader = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`

// viewport maps the x-y plane onto a width x height image, y up, with 10%
// padding around the data bounds.
type viewport struct {
	minX, minY     float64
	rangeX, rangeY float64
	width, height  float64
}

func fit(xs, ys []float64, width, height int) viewport {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for i := range xs {
		minX, maxX = math.Min(minX, xs[i]), math.Max(maxX, xs[i])
		minY, maxY = math.Min(minY, ys[i]), math.Max(maxY, ys[i])
	}

	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	return viewport{
		minX:   minX - rangeX*0.1,
		minY:   minY - rangeY*0.1,
		rangeX: rangeX * 1.2,
		rangeY: rangeY * 1.2,
		width:  float64(width),
		height: float64(height),
	}
}

func (v viewport) project(x, y float64) (float64, float64) {
	return (x - v.minX) / v.rangeX * v.width, v.height - (y-v.minY)/v.rangeY*v.height
}

// FrameSVG draws one snapshot: each link as a line between two particles and
// each particle as a dot. Particles marked in pinned are drawn in red.
func FrameSVG(positions []mgl64.Vec3, links [][2]int, pinned []bool, width, height int) string {
	if len(positions) == 0 {
		return ""
	}

	xs := make([]float64, len(positions))
	ys := make([]float64, len(positions))
	for i, p := range positions {
		xs[i], ys[i] = p.X(), p.Y()
	}
	vp := fit(xs, ys, width, height)

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, width, height, width, height)

	sb.WriteString(`<g stroke="#3a7bd5" stroke-width="1">` + "\n")
	for _, l := range links {
		if l[0] < 0 || l[0] >= len(positions) || l[1] < 0 || l[1] >= len(positions) {
			continue
		}
		x1, y1 := vp.project(xs[l[0]], ys[l[0]])
		x2, y2 := vp.project(xs[l[1]], ys[l[1]])
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n", x1, y1, x2, y2)
	}
	sb.WriteString("</g>\n")

	for i := range positions {
		fill := "#00ff00"
		if i < len(pinned) && pinned[i] {
			fill = "#ff4040"
		}
		cx, cy := vp.project(xs[i], ys[i])
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="3" fill="%s"/>`+"\n", cx, cy, fill)
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// TrajectoryToSVG draws a phase portrait as a single polyline.
func TrajectoryToSVG(portrait *analysis.PhasePortrait2D, width, height int, strokeColor string) string {
	if portrait == nil || len(portrait.Points) < 2 {
		return ""
	}

	xs := make([]float64, len(portrait.Points))
	ys := make([]float64, len(portrait.Points))
	for i, p := range portrait.Points {
		xs[i], ys[i] = p.X, p.Y
	}
	vp := fit(xs, ys, width, height)

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, width, height, width, height)
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor)

	for i := range xs {
		x, y := vp.project(xs[i], ys[i])
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
