package mesh

import "math"

// TransformPoint applies an affine transform to a point
// x' = a*x + b*z + tx
// z' = c*x + d*z + tz
func TransformPoint(p Point, m AffineMatrix) Point {
	return Point{
		X: m.A*p.X + m.B*p.Z + m.Tx,
		Z: m.C*p.X + m.D*p.Z + m.Tz,
	}
}

// TransformRect maps both corners of r and returns their bounding rectangle.
// Plan transforms here are scale + translation, so the result stays exact.
func TransformRect(r Rect, m AffineMatrix) Rect {
	a := TransformPoint(Point{X: r.MinX(), Z: r.MinZ()}, m)
	b := TransformPoint(Point{X: r.MaxX(), Z: r.MaxZ()}, m)
	return NewRect(a.X, b.X, a.Z, b.Z)
}

// MultiplyMatrices composes two affine transforms: result = m1 * m2
// Applying result is equivalent to applying m2 first, then m1
func MultiplyMatrices(m1, m2 AffineMatrix) AffineMatrix {
	return AffineMatrix{
		A:  m1.A*m2.A + m1.B*m2.C,
		B:  m1.A*m2.B + m1.B*m2.D,
		Tx: m1.A*m2.Tx + m1.B*m2.Tz + m1.Tx,
		C:  m1.C*m2.A + m1.D*m2.C,
		D:  m1.C*m2.B + m1.D*m2.D,
		Tz: m1.C*m2.Tx + m1.D*m2.Tz + m1.Tz,
	}
}

// Translation creates a translation-only transform
func Translation(tx, tz float64) AffineMatrix {
	return AffineMatrix{A: 1, B: 0, Tx: tx, C: 0, D: 1, Tz: tz}
}

// Scale creates a scaling transform
func Scale(sx, sz float64) AffineMatrix {
	return AffineMatrix{A: sx, B: 0, Tx: 0, C: 0, D: sz, Tz: 0}
}

// IsIdentity reports whether m is the identity within tol
func IsIdentity(m AffineMatrix, tol float64) bool {
	id := Identity()
	return math.Abs(m.A-id.A) <= tol && math.Abs(m.B) <= tol && math.Abs(m.Tx) <= tol &&
		math.Abs(m.C) <= tol && math.Abs(m.D-id.D) <= tol && math.Abs(m.Tz) <= tol
}

// ScaleFactors returns the x and z scale of a scale + translation transform
func ScaleFactors(m AffineMatrix) (sx, sz float64) {
	return math.Hypot(m.A, m.C), math.Hypot(m.B, m.D)
}
