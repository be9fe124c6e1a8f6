package mesh

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

const (
	// minWallThickness is the thinnest wall the builder will emit
	minWallThickness = 0.08

	// geomEps absorbs float noise in tolerance comparisons
	geomEps = 1e-9
)

// WallFromPrimitive turns a wall box into a segment along its dominant axis
func WallFromPrimitive(p Primitive) WallSegment {
	w, d := p.Box.Width(), p.Box.Depth()
	if w >= d {
		return WallSegment{
			Orientation: Horizontal,
			Thickness:   math.Max(d, minWallThickness),
			Start:       p.Box.MinX(),
			End:         p.Box.MaxX(),
			Pos:         (p.Box.MinZ() + p.Box.MaxZ()) / 2,
			Room:        p.Room,
		}
	}
	return WallSegment{
		Orientation: Vertical,
		Thickness:   math.Max(w, minWallThickness),
		Start:       p.Box.MinZ(),
		End:         p.Box.MaxZ(),
		Pos:         (p.Box.MinX() + p.Box.MaxX()) / 2,
		Room:        p.Room,
	}
}

// WallsFromPrimitives converts every wall-kind primitive into a segment
func WallsFromPrimitives(prims []Primitive) []WallSegment {
	var walls []WallSegment
	for _, p := range prims {
		if p.Kind == KindWall {
			walls = append(walls, WallFromPrimitive(p))
		}
	}
	return walls
}

// MergeWalls fuses fragmented, colinear wall detections into continuous runs.
//
// Segments of the same orientation share a bucket when their cross-axis
// positions are within posTol of each other (single linkage, so chains
// join). Within a bucket, runs sorted by start are merged whenever they
// overlap or the gap between them is at most gapTol. Merged thickness is the
// maximum of the inputs, the room is the first non-empty one, and the
// position is the span-weighted mean.
//
// The input slice is not modified. Output order is horizontal walls first,
// then vertical, each sorted by position and then start, so merging a
// merged list yields the same list even when chained buckets split apart.
func MergeWalls(walls []WallSegment, posTol, gapTol float64) []WallSegment {
	out := make([]WallSegment, 0, len(walls))
	for _, orient := range []Orientation{Horizontal, Vertical} {
		var group []WallSegment
		for _, w := range walls {
			if w.Orientation == orient {
				group = append(group, w)
			}
		}
		var merged []WallSegment
		for _, bucket := range bucketByPosition(group, posTol) {
			merged = append(merged, sweepMerge(bucket, gapTol)...)
		}
		sort.SliceStable(merged, func(i, j int) bool {
			if merged[i].Pos != merged[j].Pos {
				return merged[i].Pos < merged[j].Pos
			}
			return merged[i].Start < merged[j].Start
		})
		out = append(out, merged...)
	}
	return out
}

// bucketByPosition clusters segments whose positions chain within posTol.
// Buckets come back in first-seen order.
func bucketByPosition(walls []WallSegment, posTol float64) [][]WallSegment {
	if len(walls) == 0 {
		return nil
	}

	uf := newUnionFind(len(walls))
	for i := 0; i < len(walls); i++ {
		for j := i + 1; j < len(walls); j++ {
			if math.Abs(walls[i].Pos-walls[j].Pos) <= posTol+geomEps {
				uf.union(i, j)
			}
		}
	}

	groups := make(map[int][]WallSegment)
	var roots []int
	for i, w := range walls {
		root := uf.find(i)
		if _, ok := groups[root]; !ok {
			roots = append(roots, root)
		}
		groups[root] = append(groups[root], w)
	}

	buckets := make([][]WallSegment, 0, len(roots))
	for _, r := range roots {
		buckets = append(buckets, groups[r])
	}
	return buckets
}

// sweepMerge merges runs of one bucket left to right
func sweepMerge(bucket []WallSegment, gapTol float64) []WallSegment {
	sorted := make([]WallSegment, len(bucket))
	copy(sorted, bucket)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	var out []WallSegment
	cur := sorted[0]
	weight := spanWeight(cur)
	posSum := cur.Pos * weight

	flush := func() {
		cur.Pos = posSum / weight
		out = append(out, cur)
	}

	for _, next := range sorted[1:] {
		if next.Start-cur.End <= gapTol+geomEps {
			cur.End = math.Max(cur.End, next.End)
			cur.Thickness = math.Max(cur.Thickness, next.Thickness)
			if cur.Room == "" {
				cur.Room = next.Room
			}
			w := spanWeight(next)
			posSum += next.Pos * w
			weight += w
			continue
		}
		flush()
		cur = next
		weight = spanWeight(cur)
		posSum = cur.Pos * weight
	}
	flush()
	return out
}

// spanWeight keeps zero-length fragments from dividing by zero
func spanWeight(w WallSegment) float64 {
	return math.Max(w.Length(), 1e-6)
}

// TotalWallLength sums the span lengths of all segments
func TotalWallLength(walls []WallSegment) float64 {
	lengths := make([]float64, len(walls))
	for i, w := range walls {
		lengths[i] = w.Length()
	}
	return floats.Sum(lengths)
}

// unionFind implements a disjoint-set data structure with path compression.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return &unionFind{parent: p}
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

// union keeps the smaller index as root so bucket order follows input order
func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if ra < rb {
		uf.parent[rb] = ra
	} else {
		uf.parent[ra] = rb
	}
}
