package mesh

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
)

const (
	minTouchDistance = 0.18
	touchThickness   = 1.1
	minAxisOverlap   = 0.005

	scorePerp      = 3.0
	scoreThickness = 4.0
	scoreOverhang  = 1.5
	scoreOverlap   = 1.0
)

// Attachment is the outcome of assigning openings to walls
type Attachment struct {
	// ByWall lists the openings hosted by each wall, indexed like the walls
	// slice, in opening order.
	ByWall [][]Opening
	// Unattached holds openings that touch no wall
	Unattached []Opening
}

// OpeningsFromPrimitives collects door and window primitives as openings
func OpeningsFromPrimitives(prims []Primitive) []Opening {
	var out []Opening
	for _, p := range prims {
		if p.Kind != KindDoor && p.Kind != KindWindow {
			continue
		}
		out = append(out, Opening{Index: len(out), Kind: p.Kind, Box: p.Box, Room: p.Room})
	}
	return out
}

// touchDistance is how far an opening's center may sit from a wall's centerline
func touchDistance(w WallSegment) float64 {
	return math.Max(minTouchDistance, w.Thickness*touchThickness)
}

// ProjectOpening returns the opening's raw extent along the wall's major axis
func ProjectOpening(w WallSegment, o Opening) (a, b float64) {
	if w.Orientation == Horizontal {
		return o.Box.MinX(), o.Box.MaxX()
	}
	return o.Box.MinZ(), o.Box.MaxZ()
}

// perpendicularDistance from the opening's center to the wall's centerline
func perpendicularDistance(w WallSegment, o Opening) float64 {
	c := o.Center()
	if w.Orientation == Horizontal {
		return math.Abs(c.Z - w.Pos)
	}
	return math.Abs(c.X - w.Pos)
}

// axisOverlap is the length shared by the opening's projection and the span
func axisOverlap(w WallSegment, o Opening) float64 {
	a, b := ProjectOpening(w, o)
	return math.Max(0, math.Min(b, w.End)-math.Max(a, w.Start))
}

// Touches reports whether an opening is close enough to a wall to belong to it
func Touches(w WallSegment, o Opening) bool {
	return perpendicularDistance(w, o) <= touchDistance(w)+geomEps &&
		axisOverlap(w, o) >= minAxisOverlap
}

// Score rates how well a wall fits an opening; lower is better. It favours
// walls that are close, whose thickness matches the opening's short side and
// whose span contains the opening.
func Score(w WallSegment, o Opening) float64 {
	overlap := axisOverlap(w, o)
	return scorePerp*perpendicularDistance(w, o) +
		scoreThickness*math.Abs(o.ShortSide()-w.Thickness) +
		scoreOverhang*math.Max(0, o.LongSide()-overlap) -
		scoreOverlap*overlap
}

// wallZone is a wall's touch zone stored in the R-tree
type wallZone struct {
	index int
	rect  rtreego.Rect
}

func (z *wallZone) Bounds() rtreego.Rect {
	return z.rect
}

// newRTreeRect builds an rtreego rectangle from a plan rect, padding zero
// extents since rtreego rejects them.
func newRTreeRect(minX, maxX, minZ, maxZ float64) rtreego.Rect {
	rect, _ := rtreego.NewRect(
		rtreego.Point{minX, minZ},
		[]float64{math.Max(maxX-minX, 1e-6), math.Max(maxZ-minZ, 1e-6)},
	)
	return rect
}

func zoneRect(w WallSegment) rtreego.Rect {
	d := touchDistance(w)
	if w.Orientation == Horizontal {
		return newRTreeRect(w.Start, w.End, w.Pos-d, w.Pos+d)
	}
	return newRTreeRect(w.Pos-d, w.Pos+d, w.Start, w.End)
}

// AttachOpenings assigns each opening to its best-scoring touching wall.
//
// The assignment is greedy per opening with no backtracking; several
// openings may pick the same wall. Equal scores resolve to the wall that
// comes first in the walls slice. Openings that touch nothing are returned
// in Unattached rather than dropped.
func AttachOpenings(walls []WallSegment, openings []Opening) Attachment {
	att := Attachment{ByWall: make([][]Opening, len(walls))}
	if len(openings) == 0 {
		return att
	}
	if len(walls) == 0 {
		att.Unattached = append(att.Unattached, openings...)
		return att
	}

	tree := rtreego.NewTree(2, 4, 16)
	for i, w := range walls {
		tree.Insert(&wallZone{index: i, rect: zoneRect(w)})
	}

	for _, o := range openings {
		query := newRTreeRect(o.Box.MinX(), o.Box.MaxX(), o.Box.MinZ(), o.Box.MaxZ())
		hits := tree.SearchIntersect(query)

		candidates := make([]int, 0, len(hits))
		for _, h := range hits {
			candidates = append(candidates, h.(*wallZone).index)
		}
		sort.Ints(candidates)

		best, bestScore := -1, math.Inf(1)
		for _, i := range candidates {
			if !Touches(walls[i], o) {
				continue
			}
			if s := Score(walls[i], o); s < bestScore {
				best, bestScore = i, s
			}
		}

		if best < 0 {
			att.Unattached = append(att.Unattached, o)
			continue
		}
		att.ByWall[best] = append(att.ByWall[best], o)
	}
	return att
}

// AttachedCount returns how many openings were assigned to some wall
func (a Attachment) AttachedCount() int {
	n := 0
	for _, hosted := range a.ByWall {
		n += len(hosted)
	}
	return n
}
