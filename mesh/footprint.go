package mesh

import "math"

// Footprint is the resolved rectangle of one floor and the transform that
// moves the floor's primitives onto it.
type Footprint struct {
	Source    Rect         `json:"source"`    // tight or image rect in floor-local meters
	Resolved  Rect         `json:"resolved"`  // centered rect the floor is built against
	Transform AffineMatrix `json:"transform"` // floor-local meters to resolved frame
}

// TightRect returns the bounding box of the walls clamped to the image
// rectangle. Floors without walls, or whose walls lie entirely outside the
// image, fall back to the image rectangle.
func TightRect(walls []WallSegment, image Rect) Rect {
	if len(walls) == 0 {
		return image
	}

	b := walls[0].Bound().Bound
	for _, w := range walls[1:] {
		b = b.Union(w.Bound().Bound)
	}

	minX := math.Max(b.Min[0], image.MinX())
	maxX := math.Min(b.Max[0], image.MaxX())
	minZ := math.Max(b.Min[1], image.MinZ())
	maxZ := math.Min(b.Max[1], image.MaxZ())
	if minX >= maxX || minZ >= maxZ {
		return image
	}
	return NewRect(minX, maxX, minZ, maxZ)
}

// Center returns a rectangle of the same size centered on the origin
func Center(r Rect) Rect {
	w, d := r.Width(), r.Depth()
	return NewRect(-w/2, w/2, -d/2, d/2)
}

// SyncTransform returns the affine map that sends src onto dst. With uniform
// scaling a single factor, the smaller of the width and depth ratios, is used
// for both axes. When src equals dst the result is the identity.
func SyncTransform(src, dst Rect, uniform bool) AffineMatrix {
	sx := dst.Width() / src.Width()
	sz := dst.Depth() / src.Depth()
	if uniform {
		s := math.Min(sx, sz)
		sx, sz = s, s
	}

	sc, dc := src.CenterPoint(), dst.CenterPoint()
	return MultiplyMatrices(
		Translation(dc.X, dc.Z),
		MultiplyMatrices(Scale(sx, sz), Translation(-sc.X, -sc.Z)),
	)
}

// ResolveFootprints computes every floor's resolved rectangle in floor order.
//
// Without sync each floor is re-centered on its own source rectangle. With
// sync every floor is re-centered and then scaled onto the base floor's
// centered rectangle, so all floors share one footprint. An out of range
// base index falls back to floor 0.
func ResolveFootprints(sources []Rect, sync bool, baseIndex int, uniform bool) []Footprint {
	out := make([]Footprint, len(sources))
	if len(sources) == 0 {
		return out
	}

	if baseIndex < 0 || baseIndex >= len(sources) {
		baseIndex = 0
	}
	base := Center(sources[baseIndex])

	for k, src := range sources {
		c := src.CenterPoint()
		toOrigin := Translation(-c.X, -c.Z)
		centered := Center(src)

		if !sync {
			out[k] = Footprint{Source: src, Resolved: centered, Transform: toOrigin}
			continue
		}

		out[k] = Footprint{
			Source:    src,
			Resolved:  base,
			Transform: MultiplyMatrices(SyncTransform(centered, base, uniform), toOrigin),
		}
	}
	return out
}

// TransformWall maps a wall segment through a scale + translation transform,
// keeping its orientation. Thickness scales with the cross axis.
func TransformWall(w WallSegment, m AffineMatrix) WallSegment {
	sx, sz := ScaleFactors(m)
	out := w
	if w.Orientation == Horizontal {
		a := TransformPoint(Point{X: w.Start, Z: w.Pos}, m)
		b := TransformPoint(Point{X: w.End, Z: w.Pos}, m)
		out.Start, out.End = math.Min(a.X, b.X), math.Max(a.X, b.X)
		out.Pos = a.Z
		out.Thickness = math.Max(w.Thickness*sz, minWallThickness)
		return out
	}

	a := TransformPoint(Point{X: w.Pos, Z: w.Start}, m)
	b := TransformPoint(Point{X: w.Pos, Z: w.End}, m)
	out.Start, out.End = math.Min(a.Z, b.Z), math.Max(a.Z, b.Z)
	out.Pos = a.X
	out.Thickness = math.Max(w.Thickness*sx, minWallThickness)
	return out
}

// TransformWalls maps every wall, returning a new slice
func TransformWalls(walls []WallSegment, m AffineMatrix) []WallSegment {
	out := make([]WallSegment, len(walls))
	for i, w := range walls {
		out[i] = TransformWall(w, m)
	}
	return out
}

// TransformOpenings maps every opening's box, returning a new slice
func TransformOpenings(openings []Opening, m AffineMatrix) []Opening {
	out := make([]Opening, len(openings))
	for i, o := range openings {
		o.Box = TransformRect(o.Box, m)
		out[i] = o
	}
	return out
}
