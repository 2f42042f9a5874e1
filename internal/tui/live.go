package tui

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/particlesim/internal/dynamo"
)

const (
	width       = 70
	height      = 20
	trailLen    = 40
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))

type cell struct{ x, y int }

// LiveRenderer draws the x-y projection of a particle system to a terminal
// as the simulation runs. It satisfies sim.Observer.
type LiveRenderer struct {
	out      io.Writer
	title    string
	interval time.Duration
	last     time.Time
	now      func() time.Time

	canvas [][]rune
	links  [][2]int
	pinned []bool

	// Viewport only ever grows so the picture does not jitter.
	minX, maxX, minY, maxY float64
	bounded                bool

	tracked int
	trail   []cell
	frames  int
}

// NewLiveRenderer limits output to frameRate frames per second of wall time.
// A non-positive frameRate draws every step.
func NewLiveRenderer(out io.Writer, title string, frameRate int) *LiveRenderer {
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
	}
	var interval time.Duration
	if frameRate > 0 {
		interval = time.Second / time.Duration(frameRate)
	}
	return &LiveRenderer{
		out:      out,
		title:    title,
		interval: interval,
		now:      time.Now,
		canvas:   canvas,
		tracked:  -1,
		trail:    make([]cell, 0, trailLen),
	}
}

// SetLinks sets the particle pairs drawn as lines and which particles are pinned.
func (r *LiveRenderer) SetLinks(links [][2]int, pinned []bool) {
	r.links = links
	r.pinned = pinned
}

// Track leaves a fading trail behind one particle.
func (r *LiveRenderer) Track(particle int) { r.tracked = particle }

// Frames reports how many frames have been drawn.
func (r *LiveRenderer) Frames() int { return r.frames }

func (r *LiveRenderer) OnStep(x dynamo.State, t float64) {
	now := r.now()
	if r.interval > 0 && now.Sub(r.last) < r.interval {
		return
	}
	r.last = now

	if !r.draw(x) {
		return
	}
	fmt.Fprint(r.out, clearScreen+r.frame(x, t))
	r.frames++
}

// draw rasterizes x onto the canvas. It reports false for an empty state.
func (r *LiveRenderer) draw(x dynamo.State) bool {
	n := x.NumParticles()
	if n == 0 {
		return false
	}
	r.grow(x, n)
	r.clear()

	for _, l := range r.links {
		if l[0] < 0 || l[1] < 0 || l[0] >= n || l[1] >= n {
			continue
		}
		a, okA := r.project(x.Position(l[0]))
		b, okB := r.project(x.Position(l[1]))
		if okA && okB {
			r.line(a.x, a.y, b.x, b.y, '.')
		}
	}

	if r.tracked >= 0 && r.tracked < n {
		if c, ok := r.project(x.Position(r.tracked)); ok {
			r.trail = append(r.trail, c)
			if len(r.trail) > trailLen {
				r.trail = r.trail[1:]
			}
		}
		for _, c := range r.trail {
			r.set(c.x, c.y, '*')
		}
	}

	for i := 0; i < n; i++ {
		c, ok := r.project(x.Position(i))
		if !ok {
			continue
		}
		if i < len(r.pinned) && r.pinned[i] {
			r.set(c.x, c.y, '+')
		} else {
			r.set(c.x, c.y, 'O')
		}
	}

	return true
}

func (r *LiveRenderer) grow(x dynamo.State, n int) {
	for i := 0; i < n; i++ {
		p := x.Position(i)
		if !finiteXY(p) {
			continue
		}
		if !r.bounded {
			r.minX, r.maxX, r.minY, r.maxY = p[0], p[0], p[1], p[1]
			r.bounded = true
			continue
		}
		r.minX = math.Min(r.minX, p[0])
		r.maxX = math.Max(r.maxX, p[0])
		r.minY = math.Min(r.minY, p[1])
		r.maxY = math.Max(r.maxY, p[1])
	}
}

func finiteXY(p mgl64.Vec3) bool {
	return !math.IsNaN(p[0]) && !math.IsNaN(p[1]) && !math.IsInf(p[0], 0) && !math.IsInf(p[1], 0)
}

// project maps p into canvas cells. Points off the canvas land within one
// canvas size of it so lines through them stay short. It reports false for a
// non-finite point.
func (r *LiveRenderer) project(p mgl64.Vec3) (cell, bool) {
	if !finiteXY(p) {
		return cell{}, false
	}
	fx := fraction(p[0], r.minX, r.maxX)
	fy := fraction(-p[1], -r.maxY, -r.minY)
	if math.IsNaN(fx) || math.IsNaN(fy) {
		return cell{}, false
	}
	cx := int(math.Round(clamp(fx, -1, 2) * float64(width-1)))
	cy := int(math.Round(clamp(fy, -1, 2) * float64(height-1)))
	return cell{cx, cy}, true
}

// fraction locates v in [lo, hi] as 0..1. Halves keep the span finite for
// coordinates near the float64 limit.
func fraction(v, lo, hi float64) float64 {
	span := hi/2 - lo/2
	if span < 5e-10 {
		span = 0.5
	}
	return (v/2 - lo/2) / span
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func (r *LiveRenderer) clear() {
	for y := range r.canvas {
		for x := range r.canvas[y] {
			r.canvas[y][x] = ' '
		}
	}
}

func (r *LiveRenderer) set(x, y int, c rune) {
	if x >= 0 && x < width && y >= 0 && y < height {
		r.canvas[y][x] = c
	}
}

func (r *LiveRenderer) line(x1, y1, x2, y2 int, c rune) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	for {
		r.set(x1, y1, c)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func (r *LiveRenderer) frame(x dynamo.State, t float64) string {
	var b strings.Builder
	b.WriteString("  " + headerStyle.Render(fmt.Sprintf("%s  t=%.2fs", r.title, t)) + "\n")
	b.WriteString("  " + strings.Repeat("-", width) + "\n")

	for _, row := range r.canvas {
		b.WriteString("  ")
		b.WriteString(string(row))
		b.WriteString("\n")
	}

	b.WriteString("  " + strings.Repeat("-", width) + "\n")
	fmt.Fprintf(&b, "  x=[%.2f, %.2f] y=[%.2f, %.2f] particles=%d\n",
		r.minX, r.maxX, r.minY, r.maxY, x.NumParticles())
	return b.String()
}

func (r *LiveRenderer) Start() { fmt.Fprint(r.out, hideCursor) }
func (r *LiveRenderer) Stop() { fmt.Fprint(r.out, showCursor) }

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
