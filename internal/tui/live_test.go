package tui

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/particlesim/internal/dynamo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoParticles(free mgl64.Vec3) dynamo.State {
	return dynamo.State{{0, 0, 0}, {0, 0, 0}, free, {0, 0, 0}}
}

func TestLiveRenderer_DrawsParticlesAndLinks(t *testing.T) {
	var buf bytes.Buffer
	r := NewLiveRenderer(&buf, "spring", 0)
	r.SetLinks([][2]int{{0, 1}, {0, 7}}, []bool{true, false})

	r.OnStep(twoParticles(mgl64.Vec3{1, 0, 0}), 0.5)

	out := buf.String()
	require.Equal(t, 1, r.Frames())
	assert.Contains(t, out, "spring  t=0.50s")
	assert.Equal(t, 1, strings.Count(out, "+"), "one pinned particle")
	assert.Equal(t, 1, strings.Count(out, "O"), "one free particle")
	assert.Contains(t, out, "particles=2")

	lines := strings.Split(out, "\n")
	// header, rule, then the first canvas row holds both particles
	assert.Contains(t, lines[2], "+.....")
}

func TestLiveRenderer_FrameRateLimit(t *testing.T) {
	var buf bytes.Buffer
	clock := time.Unix(100, 0)
	r := NewLiveRenderer(&buf, "limited", 10)
	r.now = func() time.Time { return clock }

	x := twoParticles(mgl64.Vec3{1, 1, 0})
	r.OnStep(x, 0)
	r.OnStep(x, 0.01)
	assert.Equal(t, 1, r.Frames())

	clock = clock.Add(150 * time.Millisecond)
	r.OnStep(x, 0.02)
	assert.Equal(t, 2, r.Frames())
}

func TestLiveRenderer_ViewportOnlyGrows(t *testing.T) {
	var buf bytes.Buffer
	r := NewLiveRenderer(&buf, "grow", 0)
	r.Track(1)

	r.OnStep(twoParticles(mgl64.Vec3{-3, 2, 0}), 0)
	r.OnStep(twoParticles(mgl64.Vec3{1, 1, 0}), 0.1)

	assert.Equal(t, -3.0, r.minX)
	assert.Equal(t, 2.0, r.maxY)
	assert.Len(t, r.trail, 2)
}

func TestLiveRenderer_IgnoresNonFinitePositions(t *testing.T) {
	var buf bytes.Buffer
	r := NewLiveRenderer(&buf, "nan", 0)
	r.OnStep(twoParticles(mgl64.Vec3{2, 2, 0}), 0)

	bad := twoParticles(mgl64.Vec3{0, 0, 0})
	bad[2][0] = math.Inf(1)
	r.OnStep(bad, 0.1)

	assert.Equal(t, 2.0, r.maxX)
	assert.Equal(t, 2, r.Frames())
}

func TestStartStop(t *testing.T) {
	var buf bytes.Buffer
	r := NewLiveRenderer(&buf, "cursor", 0)
	r.Start()
	r.Stop()
	assert.Equal(t, hideCursor+showCursor, buf.String())
}

// drawWithin fails the test instead of hanging when a frame never finishes.
func drawWithin(t *testing.T, r *LiveRenderer, x dynamo.State) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		r.OnStep(x, 0)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("frame did not finish")
	}
}

func TestLiveRenderer_NaNPositionIsSkipped(t *testing.T) {
	var buf bytes.Buffer
	r := NewLiveRenderer(&buf, "nan", 0)
	r.SetLinks([][2]int{{0, 1}}, []bool{true, false})
	r.Track(1)

	x := twoParticles(mgl64.Vec3{math.NaN(), 1, 0})
	drawWithin(t, r, x)

	assert.Equal(t, 1, r.Frames())
	assert.Equal(t, 1, strings.Count(buf.String(), "+"))
	assert.Zero(t, strings.Count(buf.String(), "O"))
	assert.Empty(t, r.trail)
}

func TestLiveRenderer_HugeFiniteSpan(t *testing.T) {
	var buf bytes.Buffer
	r := NewLiveRenderer(&buf, "wide", 0)
	r.SetLinks([][2]int{{0, 1}}, nil)

	x := dynamo.State{{-1.5e308, 0, 0}, {}, {1.5e308, 0, 0}, {}}
	require.True(t, x.IsValid())
	drawWithin(t, r, x)

	require.Equal(t, 1, r.Frames())
	row := r.canvas[0]
	assert.Equal(t, 'O', row[0])
	assert.Equal(t, 'O', row[width-1])
	assert.Equal(t, '.', row[width/2])
}

func TestLiveRenderer_OffCanvasLinkStaysBounded(t *testing.T) {
	var buf bytes.Buffer
	r := NewLiveRenderer(&buf, "far", 0)
	r.SetLinks([][2]int{{0, 1}}, nil)

	r.OnStep(twoParticles(mgl64.Vec3{1, 1, 0}), 0)
	c, ok := r.project(mgl64.Vec3{1e300, -1e300, 0})
	require.True(t, ok)
	assert.LessOrEqual(t, c.x, 2*(width-1))
	assert.LessOrEqual(t, c.y, 2*(height-1))

	_, ok = r.project(mgl64.Vec3{0, math.Inf(-1), 0})
	assert.False(t, ok)
}
