package tui

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/particlesim/internal/dynamo"
	"github.com/san-kum/particlesim/internal/sim"
)

var (
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

const (
	historyLen = 60
	minSpeed   = 0.25
	maxSpeed   = 16
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(16*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Linker exposes the spring topology of a system for drawing.
type Linker func(sys dynamo.ParticleSystem) (links [][2]int, pinned []bool)

// Watch is a bubbletea model that steps a particle system on every frame
// and draws it. Keys: space/p pause, n single step while paused, r rebuild,
// +/- speed, 0 normal speed, q quit.
type Watch struct {
	title     string
	newSystem sim.SystemFactory
	stepper   dynamo.Stepper
	linker    Linker
	dt        float64

	sys     dynamo.ParticleSystem
	energy  dynamo.Energetic
	canvas  *LiveRenderer
	simTime float64
	steps   int
	paused  bool
	speed   float64
	pending float64
	history []float64
	err     error
}

// NewWatch builds the first system instance. linker may be nil.
func NewWatch(title string, newSystem sim.SystemFactory, st dynamo.Stepper, dt float64, linker Linker) (Watch, error) {
	if !(dt > 0) {
		return Watch{}, fmt.Errorf("%w: dt must be positive, got %g", dynamo.ErrParameterBounds, dt)
	}
	w := Watch{
		title:     title,
		newSystem: newSystem,
		stepper:   st,
		linker:    linker,
		dt:        dt,
	}
	if err := w.reset(); err != nil {
		return Watch{}, err
	}
	return w, nil
}

func (w *Watch) reset() error {
	sys, err := w.newSystem()
	if err != nil {
		return err
	}
	w.sys = sys
	w.energy, _ = sys.(dynamo.Energetic)
	w.canvas = NewLiveRenderer(io.Discard, w.title, 0)
	if w.linker != nil {
		w.canvas.SetLinks(w.linker(sys))
	}
	w.canvas.Track(sys.NumParticles() - 1)
	w.simTime = 0
	w.steps = 0
	w.speed = 1
	w.pending = 0
	w.history = make([]float64, 0, historyLen)
	w.err = nil
	w.record()
	return nil
}

func (w *Watch) record() {
	x := w.sys.State()
	w.canvas.draw(x)
	if w.energy == nil {
		return
	}
	w.history = append(w.history, w.energy.Energy(x))
	if len(w.history) > historyLen {
		w.history = w.history[1:]
	}
}

func (w *Watch) step() {
	w.stepper.TakeStep(w.sys, w.dt)
	w.steps++
	w.simTime = float64(w.steps) * w.dt
	x := w.sys.State()
	if !x.IsValid() {
		w.err = &dynamo.SimulationError{Step: w.steps - 1, Time: w.simTime, State: x, Wrapped: dynamo.ErrUnstable}
		w.paused = true
		return
	}
	w.record()
}

// Time returns the simulated time.
func (w Watch) Time() float64 { return w.simTime }

// Paused reports whether stepping is suspended.
func (w Watch) Paused() bool { return w.paused }

// Speed is the number of steps taken per frame.
func (w Watch) Speed() float64 { return w.speed }

// Err returns the divergence that paused the run, if any.
func (w Watch) Err() error { return w.err }

func (w Watch) Init() tea.Cmd { return tick() }

func (w Watch) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return w.handleKey(msg)
	case tickMsg:
		if !w.paused {
			w.pending += w.speed
			for w.pending >= 1 && w.err == nil {
				w.step()
				w.pending--
			}
		}
		return w, tick()
	}
	return w, nil
}

func (w Watch) handleKey(msg tea.KeyMsg) (Watch, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return w, tea.Quit
	case " ", "p":
		if w.err == nil {
			w.paused = !w.paused
		}
	case "n":
		if w.paused && w.err == nil {
			w.step()
		}
	case "r":
		if err := w.reset(); err != nil {
			w.err = err
			w.paused = true
		}
	case "+", "=":
		w.speed = math.Min(w.speed*2, maxSpeed)
	case "-", "_":
		w.speed = math.Max(w.speed/2, minSpeed)
	case "0":
		w.speed = 1
	}
	return w, nil
}

func (w Watch) View() string {
	var b strings.Builder
	b.WriteString(w.canvas.frame(w.sys.State(), w.simTime))

	status := fmt.Sprintf("  %s  speed x%g  steps %d", w.stepper.Name(), w.speed, w.steps)
	if w.paused {
		status += "  " + yellow.Render("paused")
	}
	b.WriteString(status + "\n")
	if w.err != nil {
		b.WriteString("  " + red.Render(w.err.Error()) + "\n")
	}

	if len(w.history) > 1 {
		b.WriteString("\n")
		b.WriteString(asciigraph.Plot(w.history,
			asciigraph.Height(4),
			asciigraph.Width(width-10),
			asciigraph.Offset(4),
			asciigraph.Caption("total energy"),
		))
		b.WriteString("\n")
	}

	b.WriteString("\n  " + dim.Render("space pause · n step · r reset · +/- speed · q quit") + "\n")
	return b.String()
}
