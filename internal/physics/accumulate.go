package physics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/particlesim/internal/dynamo"
)

// minSpringsPerWorker keeps small systems on the serial path.
const minSpringsPerWorker = 64

// accumulateSprings adds every spring's force into forces, indexed by particle.
func accumulateSprings(x dynamo.State, springs []Spring, forces []mgl64.Vec3, workers int) {
	chunks := dynamo.Partition(len(springs), minSpringsPerWorker, workers)
	if len(chunks) <= 1 {
		springsSerial(x, springs, forces)
		return
	}

	// Each spring touches two particles that other springs may also touch, so
	// workers write private buffers that are reduced afterwards.
	local := make([][]mgl64.Vec3, len(chunks))
	dynamo.ParallelFor(chunks, func(w int, c dynamo.Chunk) {
		buf := make([]mgl64.Vec3, len(forces))
		springsSerial(x, springs[c.Start:c.End], buf)
		local[w] = buf
	})

	for _, buf := range local {
		for i := range forces {
			forces[i] = forces[i].Add(buf[i])
		}
	}
}

func springsSerial(x dynamo.State, springs []Spring, forces []mgl64.Vec3) {
	for _, sp := range springs {
		f := HookeForce(x[2*sp.A], x[2*sp.B], sp.RestLength, sp.Stiffness)
		forces[sp.A] = forces[sp.A].Add(f)
		forces[sp.B] = forces[sp.B].Sub(f)
	}
}
