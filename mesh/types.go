package mesh

import (
	"encoding/json"
	"math"

	"github.com/paulmach/orb"
	"github.com/ungerik/go3d/float64/vec3"
)

// Kind is the normalized class of a detection box
type Kind string

const (
	KindWall   Kind = "wall"
	KindDoor   Kind = "door"
	KindWindow Kind = "window"
)

// MeshKind tags an emitted mesh primitive for the consuming viewer
type MeshKind string

const (
	MeshWall          MeshKind = "wall"
	MeshDoor          MeshKind = "door"
	MeshWindow        MeshKind = "window"
	MeshFloor         MeshKind = "floor"
	MeshSlab          MeshKind = "slab"
	MeshPerimeterWall MeshKind = "perimeter-wall"
)

// Shape is the geometric form of a mesh primitive
type Shape string

const (
	ShapeBox   Shape = "box"
	ShapePlane Shape = "plane"
	ShapeBand  Shape = "band"
	ShapePivot Shape = "pivot" // transform only, no geometry
)

// Role describes what part of the building a primitive represents
type Role string

const (
	RoleBar       Role = "bar"
	RoleLintel    Role = "lintel"
	RoleSill      Role = "sill"
	RoleHeader    Role = "header"
	RoleHinge     Role = "hinge"
	RoleLeaf      Role = "leaf"
	RoleBand      Role = "band"
	RoleInsert    Role = "insert"
	RolePlate     Role = "plate"
	RoleSlab      Role = "slab"
	RolePerimeter Role = "perimeter"
)

// Orientation of a wall segment's major axis
type Orientation string

const (
	Horizontal Orientation = "horizontal" // major axis X
	Vertical   Orientation = "vertical"   // major axis Z
)

// DetectionBox is one axis-aligned detection in image pixels
type DetectionBox struct {
	X1   float64 `json:"x1"`
	Y1   float64 `json:"y1"`
	X2   float64 `json:"x2"`
	Y2   float64 `json:"y2"`
	Room string  `json:"room,omitempty"`
}

// FloorRecord is the detection output for one floor image.
// Width/Height keys are matched case-insensitively, so the detection
// service's "Width"/"Height" decode as well.
type FloorRecord struct {
	Width       float64        `json:"width"`
	Height      float64        `json:"height"`
	Points      []DetectionBox `json:"points"`
	Classes     []Label        `json:"classes"`
	AverageDoor *float64       `json:"averageDoor,omitempty"`
	Furniture   []FurnitureBox `json:"furniture,omitempty"`
}

// FurnitureBox is a furniture detection attached to a floor record by the
// furnishing service. It is carried through parsing but not meshed.
type FurnitureBox struct {
	X1         float64 `json:"x1"`
	Y1         float64 `json:"y1"`
	X2         float64 `json:"x2"`
	Y2         float64 `json:"y2"`
	Type       string  `json:"type"`
	Room       string  `json:"room,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Point is a plan-view coordinate in meters (X east, Z south)
type Point struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// AffineMatrix for 2D plan transforms: x' = ax + bz + tx, z' = cx + dz + tz
type AffineMatrix struct {
	A  float64 `json:"a"`
	B  float64 `json:"b"`
	Tx float64 `json:"tx"`
	C  float64 `json:"c"`
	D  float64 `json:"d"`
	Tz float64 `json:"tz"`
}

// Identity returns an identity matrix (no transformation)
func Identity() AffineMatrix {
	return AffineMatrix{A: 1, B: 0, Tx: 0, C: 0, D: 1, Tz: 0}
}

// minRectExtent is the smallest width or depth a Rect may have
const minRectExtent = 0.01

// Rect is an axis-aligned plan rectangle in meters. Plan X is the bound's
// first coordinate and plan Z its second.
type Rect struct {
	orb.Bound
}

// NewRect builds a Rect from its extents, ordering and clamping them so the
// result always has at least minRectExtent in each direction.
func NewRect(minX, maxX, minZ, maxZ float64) Rect {
	if maxX < minX {
		minX, maxX = maxX, minX
	}
	if maxZ < minZ {
		minZ, maxZ = maxZ, minZ
	}
	if maxX-minX < minRectExtent {
		c := (minX + maxX) / 2
		minX, maxX = c-minRectExtent/2, c+minRectExtent/2
	}
	if maxZ-minZ < minRectExtent {
		c := (minZ + maxZ) / 2
		minZ, maxZ = c-minRectExtent/2, c+minRectExtent/2
	}
	return Rect{orb.Bound{Min: orb.Point{minX, minZ}, Max: orb.Point{maxX, maxZ}}}
}

func (r Rect) MinX() float64  { return r.Min[0] }
func (r Rect) MaxX() float64  { return r.Max[0] }
func (r Rect) MinZ() float64  { return r.Min[1] }
func (r Rect) MaxZ() float64  { return r.Max[1] }
func (r Rect) Width() float64 { return r.Max[0] - r.Min[0] }
func (r Rect) Depth() float64 { return r.Max[1] - r.Min[1] }

// CenterPoint returns the rectangle center as a plan point
func (r Rect) CenterPoint() Point {
	c := r.Center()
	return Point{X: c[0], Z: c[1]}
}

// Perimeter returns the rectangle's boundary length
func (r Rect) Perimeter() float64 {
	return 2 * (r.Width() + r.Depth())
}

// ApproxEqual reports whether both rectangles match within tol on every edge
func (r Rect) ApproxEqual(o Rect, tol float64) bool {
	return math.Abs(r.MinX()-o.MinX()) <= tol &&
		math.Abs(r.MaxX()-o.MaxX()) <= tol &&
		math.Abs(r.MinZ()-o.MinZ()) <= tol &&
		math.Abs(r.MaxZ()-o.MaxZ()) <= tol
}

type rectJSON struct {
	MinX float64 `json:"minX"`
	MaxX float64 `json:"maxX"`
	MinZ float64 `json:"minZ"`
	MaxZ float64 `json:"maxZ"`
}

// MarshalJSON writes the rectangle in {minX,maxX,minZ,maxZ} form
func (r Rect) MarshalJSON() ([]byte, error) {
	return json.Marshal(rectJSON{MinX: r.MinX(), MaxX: r.MaxX(), MinZ: r.MinZ(), MaxZ: r.MaxZ()})
}

// UnmarshalJSON reads the {minX,maxX,minZ,maxZ} form
func (r *Rect) UnmarshalJSON(data []byte) error {
	var rj rectJSON
	if err := json.Unmarshal(data, &rj); err != nil {
		return err
	}
	*r = NewRect(rj.MinX, rj.MaxX, rj.MinZ, rj.MaxZ)
	return nil
}

// Primitive is a classified detection box in floor-local meters
type Primitive struct {
	Kind Kind   `json:"kind"`
	Box  Rect   `json:"box"`
	Room string `json:"room,omitempty"`
}

// WallSegment is a wall run along one major axis.
// Pos is the fixed cross-axis coordinate of the wall's centerline.
type WallSegment struct {
	Orientation Orientation `json:"orientation"`
	Thickness   float64     `json:"thickness"`
	Start       float64     `json:"start"`
	End         float64     `json:"end"`
	Pos         float64     `json:"pos"`
	Room        string      `json:"room,omitempty"`
}

// Length returns the span length of the wall
func (w WallSegment) Length() float64 {
	return w.End - w.Start
}

// Mid returns the midpoint of the wall's span
func (w WallSegment) Mid() float64 {
	return (w.Start + w.End) / 2
}

// Bound returns the wall's plan footprint
func (w WallSegment) Bound() Rect {
	half := w.Thickness / 2
	if w.Orientation == Horizontal {
		return NewRect(w.Start, w.End, w.Pos-half, w.Pos+half)
	}
	return NewRect(w.Pos-half, w.Pos+half, w.Start, w.End)
}

// Opening is a door or window detection in floor-local meters
type Opening struct {
	Index int    `json:"index"` // position among the floor's openings
	Kind  Kind   `json:"kind"`
	Box   Rect   `json:"box"`
	Room  string `json:"room,omitempty"`
}

// Center returns the opening's plan center
func (o Opening) Center() Point {
	return o.Box.CenterPoint()
}

// ShortSide returns the smaller of the opening's extents
func (o Opening) ShortSide() float64 {
	return math.Min(o.Box.Width(), o.Box.Depth())
}

// LongSide returns the larger of the opening's extents
func (o Opening) LongSide() float64 {
	return math.Max(o.Box.Width(), o.Box.Depth())
}

// Interval is a range along a wall's major axis, optionally owned by an opening
type Interval struct {
	A       float64  `json:"a"`
	B       float64  `json:"b"`
	Opening *Opening `json:"opening,omitempty"`
}

// Length returns the interval length
func (iv Interval) Length() float64 {
	return iv.B - iv.A
}

// Material describes how a primitive should be drawn
type Material struct {
	Opacity     float64 `json:"opacity"`
	DoubleSided bool    `json:"doubleSided,omitempty"`
	DepthWrite  bool    `json:"depthWrite"`
	RenderOrder int     `json:"renderOrder,omitempty"`
}

// opaqueMaterial is the default material for solid geometry
var opaqueMaterial = Material{Opacity: 1, DepthWrite: true}

// MeshPrimitive is one emitted piece of geometry.
// Position is the center of the shape in world meters (Y up), except for
// primitives with a Parent, whose Position is relative to the parent pivot.
type MeshPrimitive struct {
	ID        string   `json:"id"`
	Kind      MeshKind `json:"kind"`
	Shape     Shape    `json:"shape"`
	Role      Role     `json:"role"`
	Floor     int      `json:"floor"`
	Position  vec3.T   `json:"position"`
	Size      vec3.T   `json:"size"`
	RotationY float64  `json:"rotationY,omitempty"`
	Parent    string   `json:"parent,omitempty"`
	Room      string   `json:"room,omitempty"`
	Color     string   `json:"color"`
	Material  Material `json:"material"`
	Collider  bool     `json:"collider,omitempty"`
}

// FloorStats are the per-floor detection vs emission counters
type FloorStats struct {
	Floor       int `json:"floor"`
	InWalls     int `json:"inWalls"`
	InDoors     int `json:"inDoors"`
	InWindows   int `json:"inWindows"`
	OutWalls    int `json:"outWalls"`
	OutDoors    int `json:"outDoors"`
	OutWindows  int `json:"outWindows"`
	MergedWalls int `json:"mergedWalls"`
	Unattached  int `json:"unattached"`
}

// BuildResult owns everything emitted for one building
type BuildResult struct {
	Primitives  []MeshPrimitive `json:"primitives"`
	Colliders   []string        `json:"colliders"`
	FloorPlanes []string        `json:"floorPlanes"`
	Footprints  []Rect          `json:"footprints"`
	TotalHeight float64         `json:"totalHeight"`
	Stats       []FloorStats    `json:"stats"`
}

// Lookup returns the primitive with the given id
func (br *BuildResult) Lookup(id string) (*MeshPrimitive, bool) {
	for i := range br.Primitives {
		if br.Primitives[i].ID == id {
			return &br.Primitives[i], true
		}
	}
	return nil, false
}

// PrimitivesOnFloor returns the primitives emitted for a floor, in order
func (br *BuildResult) PrimitivesOnFloor(floor int) []MeshPrimitive {
	var out []MeshPrimitive
	for _, p := range br.Primitives {
		if p.Floor == floor {
			out = append(out, p)
		}
	}
	return out
}
