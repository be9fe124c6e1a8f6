package mesh

import (
	"math"

	"github.com/ungerik/go3d/float64/vec3"
)

// NeedsPerimeter decides whether a floor gets an exterior perimeter.
//
// With cross-floor sync every floor gets one unless the mode is off. Without
// sync the legacy rule applies: only floors whose merged walls cover less
// than PerimeterCoverage of the rectangle's perimeter get one.
func NeedsPerimeter(cfg BuildConfig, merged []WallSegment, rect Rect) bool {
	if cfg.PerimeterMode == PerimeterOff {
		return false
	}
	if cfg.SyncFloors {
		return true
	}
	return TotalWallLength(merged) < cfg.PerimeterCoverage*rect.Perimeter()
}

// emitPerimeter emits four walls lying just inside r: south (min Z), north,
// west (min X), east. The north and south runs span the full width; west and
// east fill between them.
func (e *emitter) emitPerimeter(r Rect) {
	h := e.cfg.WallHeight()
	t := e.cfg.PerimeterThickness
	t = math.Min(t, math.Min(r.Width(), r.Depth())/2)
	if t <= 0 {
		return
	}

	c := r.CenterPoint()
	cy := e.elev + h/2
	inner := math.Max(r.Depth()-2*t, 0)

	sides := []struct {
		pos, size vec3.T
	}{
		{vec3.T{c.X, cy, r.MinZ() + t/2}, vec3.T{r.Width(), h, t}},
		{vec3.T{c.X, cy, r.MaxZ() - t/2}, vec3.T{r.Width(), h, t}},
		{vec3.T{r.MinX() + t/2, cy, c.Z}, vec3.T{t, h, inner}},
		{vec3.T{r.MaxX() - t/2, cy, c.Z}, vec3.T{t, h, inner}},
	}
	for _, s := range sides {
		if s.size[0] <= minBarLength || s.size[2] <= minBarLength {
			continue
		}
		e.add(MeshPrimitive{
			Kind: MeshPerimeterWall, Shape: ShapeBox, Role: RolePerimeter,
			Position: s.pos, Size: s.size, Color: DefaultPerimeterColor, Collider: true,
		})
	}
}
