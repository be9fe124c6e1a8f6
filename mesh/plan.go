package mesh

import (
	"math"

	"github.com/paulmach/orb"
)

// PlanRing returns the closed, counter-clockwise outline of a primitive seen
// from above, in world X (orb x) and Z (orb y). Parented primitives are
// placed through their pivot's position and rotation. Pivots have no
// outline and return nil.
func (br *BuildResult) PlanRing(p MeshPrimitive) orb.Ring {
	if p.Shape == ShapePivot {
		return nil
	}

	hx, hz := p.Size[0]/2, p.Size[2]/2
	local := [4]orb.Point{
		{p.Position[0] - hx, p.Position[2] - hz},
		{p.Position[0] + hx, p.Position[2] - hz},
		{p.Position[0] + hx, p.Position[2] + hz},
		{p.Position[0] - hx, p.Position[2] + hz},
	}

	var origin orb.Point
	angle := p.RotationY
	if p.Parent != "" {
		if parent, ok := br.Lookup(p.Parent); ok {
			origin = orb.Point{parent.Position[0], parent.Position[2]}
			angle += parent.RotationY
		}
	}

	sin, cos := math.Sincos(angle)
	ring := make(orb.Ring, 0, 5)
	for _, c := range local {
		// rotation about +Y maps (x, z) to (x cos + z sin, -x sin + z cos)
		x := c[0]*cos + c[1]*sin
		z := -c[0]*sin + c[1]*cos
		ring = append(ring, orb.Point{origin[0] + x, origin[1] + z})
	}
	ring = append(ring, ring[0])

	if ring.Orientation() != orb.CCW {
		ring.Reverse()
	}
	return ring
}

// FloorBound returns the plan bounds of everything emitted on a floor. A
// floor with nothing drawable returns the zero bound and false.
func (br *BuildResult) FloorBound(floor int) (orb.Bound, bool) {
	var b orb.Bound
	found := false
	for _, p := range br.PrimitivesOnFloor(floor) {
		ring := br.PlanRing(p)
		if ring == nil {
			continue
		}
		if !found {
			b = ring.Bound()
			found = true
			continue
		}
		b = b.Union(ring.Bound())
	}
	return b, found
}

// Elevation returns the world heights spanned by a primitive. Parented
// primitives are offset by their pivot.
func (br *BuildResult) Elevation(p MeshPrimitive) (bottom, top float64) {
	y := p.Position[1]
	if p.Parent != "" {
		if parent, ok := br.Lookup(p.Parent); ok {
			y += parent.Position[1]
		}
	}
	return y - p.Size[1]/2, y + p.Size[1]/2
}

// FloorCount returns how many floors the result holds
func (br *BuildResult) FloorCount() int {
	return len(br.FloorPlanes)
}
