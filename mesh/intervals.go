package mesh

import (
	"math"
	"sort"
)

const (
	// wallNib is the wall length always kept at each end of a wall
	wallNib = 0.05
	// maxOpenPad caps the padding added around a projected opening
	maxOpenPad = 0.25
	// padPerThickness scales padding with wall thickness
	padPerThickness = 1.2

	minAverageDoor = 0.6
	maxAverageDoor = 1.2
)

// ShapeParams are the tolerances used when shaping opening intervals
type ShapeParams struct {
	OpenPad        float64
	MinOpening     float64
	SnapEndTol     float64
	BarSnapTol     float64
	DoorSnapFactor float64
	// AverageDoor is the floor's typical door width in meters; 0 means unknown
	AverageDoor float64
}

// ShapeParamsFromConfig extracts shaping parameters; averageDoor is meters
func ShapeParamsFromConfig(cfg BuildConfig, averageDoor float64) ShapeParams {
	return ShapeParams{
		OpenPad:        cfg.OpenPad,
		MinOpening:     cfg.MinOpening,
		SnapEndTol:     cfg.SnapEndTol,
		BarSnapTol:     cfg.BarSnapTol,
		DoorSnapFactor: cfg.DoorSnapFactor,
		AverageDoor:    averageDoor,
	}
}

// ClampAverageDoor bounds a door width statistic to [0.6, 1.2] meters.
// Non-positive input means no statistic and stays 0.
func ClampAverageDoor(avg float64) float64 {
	if avg <= 0 {
		return 0
	}
	return math.Min(math.Max(avg, minAverageDoor), maxAverageDoor)
}

// OpeningPad returns the padding applied to each side of an opening
func OpeningPad(w WallSegment, openPad float64) float64 {
	return math.Min(math.Max(openPad, w.Thickness*padPerThickness), maxOpenPad)
}

// ShapeIntervals turns the openings hosted by a wall into sorted, disjoint
// intervals inside the wall's span.
//
// Each projected opening is padded, clamped so a nib of wall survives at
// both ends, widened to the door snap width (doors only, when the floor
// has an average door width), and grown to the minimum opening length.
// The sweep then snaps the first and last interval flush to the wall ends
// when close, and merges neighbours separated by less than BarSnapTol.
func ShapeIntervals(w WallSegment, openings []Opening, p ShapeParams) []Interval {
	if len(openings) == 0 {
		return nil
	}

	pad := OpeningPad(w, p.OpenPad)
	avgDoor := ClampAverageDoor(p.AverageDoor)

	lo, hi := w.Start+wallNib, w.End-wallNib
	if hi < lo {
		mid := w.Mid()
		lo, hi = mid, mid
	}

	ivs := make([]Interval, 0, len(openings))
	for i := range openings {
		o := openings[i]
		a, b := ProjectOpening(w, o)
		a, b = a-pad, b+pad
		a, b = clamp(a, lo, hi), clamp(b, lo, hi)

		if o.Kind == KindDoor && avgDoor > 0 {
			target := p.DoorSnapFactor * avgDoor
			if b-a < target {
				a, b = growTo(a, b, target, w.Start, w.End)
			}
		}
		a, b = growTo(a, b, p.MinOpening, w.Start, w.End)

		ivs = append(ivs, Interval{A: a, B: b, Opening: &o})
	}

	return sweepIntervals(w, ivs, p)
}

// sweepIntervals snaps intervals to the wall ends and merges close neighbours
func sweepIntervals(w WallSegment, ivs []Interval, p ShapeParams) []Interval {
	sort.SliceStable(ivs, func(i, j int) bool {
		if ivs[i].A != ivs[j].A {
			return ivs[i].A < ivs[j].A
		}
		return ivs[i].B < ivs[j].B
	})

	if ivs[0].A-w.Start <= p.SnapEndTol+geomEps {
		ivs[0].A = w.Start
	}
	last := len(ivs) - 1
	if w.End-ivs[last].B <= p.SnapEndTol+geomEps {
		ivs[last].B = w.End
	}

	merged := make([]Interval, 0, len(ivs))
	cur := ivs[0]
	for _, next := range ivs[1:] {
		if next.A-cur.B <= p.BarSnapTol+geomEps {
			cur.B = math.Max(cur.B, next.B)
			if cur.Opening == nil {
				cur.Opening = next.Opening
			}
			continue
		}
		merged = append(merged, cur)
		cur = next
	}
	merged = append(merged, cur)

	for i := range merged {
		merged[i].A, merged[i].B = growTo(merged[i].A, merged[i].B, p.MinOpening, w.Start, w.End)
	}

	// regrowth may push an interval into its neighbour
	out := merged[:1]
	for _, iv := range merged[1:] {
		prev := &out[len(out)-1]
		if iv.A < prev.B {
			prev.B = math.Max(prev.B, iv.B)
			if prev.Opening == nil {
				prev.Opening = iv.Opening
			}
			continue
		}
		out = append(out, iv)
	}
	return out
}

// growTo widens [a,b] symmetrically to at least length, shifting it back
// inside [lo,hi] when it spills over and cutting it only when the range
// itself is shorter than length.
func growTo(a, b, length, lo, hi float64) (float64, float64) {
	if b-a >= length {
		return a, b
	}
	c := (a + b) / 2
	a, b = c-length/2, c+length/2
	if a < lo {
		b += lo - a
		a = lo
	}
	if b > hi {
		a -= b - hi
		b = hi
	}
	return math.Max(a, lo), b
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
