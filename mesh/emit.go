package mesh

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/ungerik/go3d/float64/vec3"
)

const (
	// DoorHeight is the fixed height of door leaves and lintel undersides
	DoorHeight = 2.1
	// DoorSwing is how far door leaves are drawn open
	DoorSwing = math.Pi / 10
	// DoorLeafThickness is the thickness of an emitted door leaf
	DoorLeafThickness = 0.05

	// minPieceHeight drops sills/headers that round to nothing
	minPieceHeight = 1e-3
	// minBarLength drops bars that are only float noise
	minBarLength = 1e-6

	bandThicknessRatio = 0.3
	minBandThickness   = 0.02
)

// meshNamespace seeds the name-based primitive ids so equal builds produce
// equal ids
var meshNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/kwv/planmesh/mesh"))

// windowMaterial is used for translucent window bands and window inserts
var windowMaterial = Material{Opacity: 0.35, DoubleSided: true, DepthWrite: false, RenderOrder: 1}

// emitter collects the primitives of one floor
type emitter struct {
	floor   int
	elev    float64
	cfg     BuildConfig
	palette *RoomPalette
	prims   []MeshPrimitive
	seq     int
}

func newEmitter(floor int, cfg BuildConfig, palette *RoomPalette) *emitter {
	return &emitter{
		floor:   floor,
		elev:    float64(floor) * cfg.FloorHeight,
		cfg:     cfg,
		palette: palette,
	}
}

// add assigns an id to p, records it and returns the id
func (e *emitter) add(p MeshPrimitive) string {
	p.Floor = e.floor
	p.ID = uuid.NewSHA1(meshNamespace, []byte(fmt.Sprintf("%d/%s/%s/%d", e.floor, p.Kind, p.Role, e.seq))).String()
	e.seq++
	if p.Material == (Material{}) {
		p.Material = opaqueMaterial
	}
	e.prims = append(e.prims, p)
	return p.ID
}

// wallColor returns the room tint for a wall when room coloring is on
func (e *emitter) wallColor(room string) string {
	if e.cfg.RoomColors && e.palette != nil {
		return e.palette.Color(room)
	}
	return DefaultWallColor
}

// wallBox places a box covering [a,b] of the wall's axis between heights
// y0 and y1 (relative to the floor), with the given thickness.
func (e *emitter) wallBox(w WallSegment, a, b, y0, y1, thickness float64) (pos, size vec3.T) {
	mid := (a + b) / 2
	cy := e.elev + (y0+y1)/2
	h := y1 - y0
	if w.Orientation == Horizontal {
		return vec3.T{mid, cy, w.Pos}, vec3.T{b - a, h, thickness}
	}
	return vec3.T{w.Pos, cy, mid}, vec3.T{thickness, h, b - a}
}

// Bars returns the solid runs of a wall left after removing the intervals.
// Intervals must be sorted, disjoint and inside the span, as produced by
// ShapeIntervals.
func Bars(w WallSegment, intervals []Interval) []Interval {
	var bars []Interval
	cursor := w.Start
	for _, iv := range intervals {
		if iv.A-cursor > minBarLength {
			bars = append(bars, Interval{A: cursor, B: iv.A})
		}
		cursor = math.Max(cursor, iv.B)
	}
	if w.End-cursor > minBarLength {
		bars = append(bars, Interval{A: cursor, B: w.End})
	}
	return bars
}

// emitWall emits a wall's bars and the geometry of each of its openings
func (e *emitter) emitWall(w WallSegment, intervals []Interval) {
	h := e.cfg.WallHeight()
	color := e.wallColor(w.Room)

	for _, bar := range Bars(w, intervals) {
		pos, size := e.wallBox(w, bar.A, bar.B, 0, h, w.Thickness)
		e.add(MeshPrimitive{
			Kind: MeshWall, Shape: ShapeBox, Role: RoleBar,
			Position: pos, Size: size, Room: w.Room, Color: color, Collider: true,
		})
	}

	for _, iv := range intervals {
		if iv.Opening == nil {
			continue
		}
		switch iv.Opening.Kind {
		case KindDoor:
			e.emitDoor(w, iv, color)
		case KindWindow:
			e.emitWindow(w, iv, color)
		}
	}
}

// HingeSide returns the interval end nearest the wall's midpoint and the
// direction (+1 or -1) from the hinge toward the other end. Ties hinge on A.
func HingeSide(w WallSegment, iv Interval) (hinge, dir float64) {
	m := w.Mid()
	if math.Abs(iv.B-m) < math.Abs(iv.A-m) {
		return iv.B, -1
	}
	return iv.A, 1
}

// SwingAngle returns the pivot rotation for a door hinged as dir on a wall.
// Positive angles turn counter-clockwise seen from above.
func SwingAngle(w WallSegment, dir float64) float64 {
	sign := dir
	if w.Orientation == Vertical {
		sign = -sign
	}
	return sign * DoorSwing
}

func (e *emitter) emitDoor(w WallSegment, iv Interval, color string) {
	h := e.cfg.WallHeight()
	if h > DoorHeight {
		pos, size := e.wallBox(w, iv.A, iv.B, DoorHeight, h, w.Thickness)
		e.add(MeshPrimitive{
			Kind: MeshWall, Shape: ShapeBox, Role: RoleLintel,
			Position: pos, Size: size, Room: w.Room, Color: color, Collider: true,
		})
	}

	hinge, dir := HingeSide(w, iv)
	var pivot vec3.T
	if w.Orientation == Horizontal {
		pivot = vec3.T{hinge, e.elev, w.Pos}
	} else {
		pivot = vec3.T{w.Pos, e.elev, hinge}
	}
	leafColor := DefaultDoorColor
	if room := iv.Opening.Room; room != "" && e.cfg.RoomColors && e.palette != nil {
		leafColor = e.palette.Color(room)
	}
	pivotID := e.add(MeshPrimitive{
		Kind: MeshDoor, Shape: ShapePivot, Role: RoleHinge,
		Position: pivot, RotationY: SwingAngle(w, dir), Room: iv.Opening.Room, Color: leafColor,
	})

	width := iv.Length()
	leafH := math.Min(DoorHeight, h)
	var local, size vec3.T
	if w.Orientation == Horizontal {
		local = vec3.T{dir * width / 2, leafH / 2, 0}
		size = vec3.T{width, leafH, DoorLeafThickness}
	} else {
		local = vec3.T{0, leafH / 2, dir * width / 2}
		size = vec3.T{DoorLeafThickness, leafH, width}
	}
	e.add(MeshPrimitive{
		Kind: MeshDoor, Shape: ShapeBox, Role: RoleLeaf,
		Position: local, Size: size, Parent: pivotID, Room: iv.Opening.Room, Color: leafColor,
	})
}

// WindowLayout splits a wall's height into sill, band and header heights.
// The band sits at sill height. When sill + band + header would exceed the
// wall, the sill and header shrink evenly down to the nib first and the band
// shrinks last.
func WindowLayout(wallHeight, sill, band float64) (bottom, bandOut, top float64) {
	bottom = math.Max(sill, 0)
	bandOut = math.Max(band, 0)
	top = math.Max(wallHeight-bottom-bandOut, wallNib)

	excess := bottom + bandOut + top - wallHeight
	if excess > 0 {
		slackB := math.Max(bottom-wallNib, 0)
		slackT := math.Max(top-wallNib, 0)
		half := excess / 2
		db := math.Min(half, slackB)
		dt := math.Min(half, slackT)
		rest := excess - db - dt

		extra := math.Min(rest, slackB-db)
		db += extra
		rest -= extra
		extra = math.Min(rest, slackT-dt)
		dt += extra
		rest -= extra

		bottom -= db
		top -= dt
		bandOut = math.Max(bandOut-rest, 0)
	}

	// walls lower than two nibs: split what there is
	if total := bottom + bandOut + top; total > wallHeight && bottom+top > 0 {
		f := wallHeight / (bottom + top)
		bottom, top, bandOut = bottom*f, top*f, 0
	}
	return bottom, bandOut, top
}

func bandThickness(w WallSegment) float64 {
	return math.Max(w.Thickness*bandThicknessRatio, minBandThickness)
}

func (e *emitter) emitWindow(w WallSegment, iv Interval, color string) {
	h := e.cfg.WallHeight()
	bottom, band, top := WindowLayout(h, e.cfg.SillHeight, e.cfg.WindowBand)

	if bottom > minPieceHeight {
		pos, size := e.wallBox(w, iv.A, iv.B, 0, bottom, w.Thickness)
		e.add(MeshPrimitive{
			Kind: MeshWall, Shape: ShapeBox, Role: RoleSill,
			Position: pos, Size: size, Room: w.Room, Color: color, Collider: true,
		})
	}
	if top > minPieceHeight {
		pos, size := e.wallBox(w, iv.A, iv.B, h-top, h, w.Thickness)
		e.add(MeshPrimitive{
			Kind: MeshWall, Shape: ShapeBox, Role: RoleHeader,
			Position: pos, Size: size, Room: w.Room, Color: color, Collider: true,
		})
	}
	if band > minPieceHeight {
		pos, size := e.wallBox(w, iv.A, iv.B, bottom, bottom+band, bandThickness(w))
		e.add(MeshPrimitive{
			Kind: MeshWindow, Shape: ShapeBand, Role: RoleBand,
			Position: pos, Size: size, Room: iv.Opening.Room, Color: DefaultWindowColor, Material: windowMaterial,
		})
	}
}

// emitInsert places an opening that found no wall at its detected box
func (e *emitter) emitInsert(o Opening) {
	h := e.cfg.WallHeight()
	c := o.Center()

	var y0, y1 float64
	prim := MeshPrimitive{Shape: ShapeBox, Role: RoleInsert, Room: o.Room}
	switch o.Kind {
	case KindDoor:
		y0, y1 = 0, math.Min(DoorHeight, h)
		prim.Kind, prim.Color = MeshDoor, DefaultDoorColor
	default:
		bottom, band, _ := WindowLayout(h, e.cfg.SillHeight, e.cfg.WindowBand)
		y0, y1 = bottom, bottom+band
		prim.Kind, prim.Color, prim.Material = MeshWindow, DefaultWindowColor, windowMaterial
	}

	prim.Position = vec3.T{c.X, e.elev + (y0+y1)/2, c.Z}
	prim.Size = vec3.T{o.Box.Width(), y1 - y0, o.Box.Depth()}
	e.add(prim)
}

// emitPlate emits the floor plane and the slab above the walls; it returns
// the floor plane's id
func (e *emitter) emitPlate(r Rect) string {
	c := r.CenterPoint()
	id := e.add(MeshPrimitive{
		Kind: MeshFloor, Shape: ShapePlane, Role: RolePlate,
		Position: vec3.T{c.X, e.elev, c.Z}, Size: vec3.T{r.Width(), 0, r.Depth()},
		Color: DefaultFloorColor, Material: Material{Opacity: 1, DoubleSided: true, DepthWrite: true},
	})

	if slab := e.cfg.SlabThickness; slab > 0 {
		h := e.cfg.WallHeight()
		e.add(MeshPrimitive{
			Kind: MeshSlab, Shape: ShapeBox, Role: RoleSlab,
			Position: vec3.T{c.X, e.elev + h + slab/2, c.Z}, Size: vec3.T{r.Width(), slab, r.Depth()},
			Color: DefaultSlabColor,
		})
	}
	return id
}
