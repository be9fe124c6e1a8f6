package mesh

import (
	"encoding/json"

	"github.com/paulmach/orb"
)

// GeometryType represents the GeoJSON geometry type
type GeometryType string

const (
	GeometryPolygon GeometryType = "Polygon"
)

// Geometry represents a GeoJSON geometry object
type Geometry struct {
	Type        GeometryType    `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Feature represents a GeoJSON feature with geometry and properties
type Feature struct {
	Type       string                 `json:"type"`
	Geometry   *Geometry              `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
	ID         interface{}            `json:"id,omitempty"`
}

// FeatureCollection represents a GeoJSON FeatureCollection
type FeatureCollection struct {
	Type     string     `json:"type"`
	Features []*Feature `json:"features"`
}

// NewFeatureCollection creates a new empty FeatureCollection
func NewFeatureCollection() *FeatureCollection {
	return &FeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]*Feature, 0),
	}
}

// AddFeature appends a feature to the collection
func (fc *FeatureCollection) AddFeature(f *Feature) {
	fc.Features = append(fc.Features, f)
}

// NewFeature creates a Feature with the given geometry and properties
func NewFeature(geom *Geometry, props map[string]interface{}) *Feature {
	if props == nil {
		props = make(map[string]interface{})
	}
	return &Feature{
		Type:       "Feature",
		Geometry:   geom,
		Properties: props,
	}
}

// PolygonGeometry converts an orb polygon to a GeoJSON Polygon geometry.
// Coordinates are plan meters: world X then world Z.
func PolygonGeometry(poly orb.Polygon) *Geometry {
	coordsJSON, _ := json.Marshal(poly)
	return &Geometry{
		Type:        GeometryPolygon,
		Coordinates: coordsJSON,
	}
}

// PrimitiveToFeature converts one primitive to a plan polygon feature.
// Pivots have no footprint and yield nil.
func PrimitiveToFeature(br *BuildResult, p MeshPrimitive) *Feature {
	ring := br.PlanRing(p)
	if ring == nil {
		return nil
	}

	bottom, top := br.Elevation(p)
	props := map[string]interface{}{
		"kind":   string(p.Kind),
		"role":   string(p.Role),
		"shape":  string(p.Shape),
		"floor":  p.Floor,
		"color":  p.Color,
		"bottom": bottom,
		"top":    top,
	}
	if p.Room != "" {
		props["room"] = p.Room
	}
	if p.Collider {
		props["collider"] = true
	}
	if p.Material.Opacity < 1 {
		props["opacity"] = p.Material.Opacity
	}

	f := NewFeature(PolygonGeometry(orb.Polygon{ring}), props)
	f.ID = p.ID
	return f
}

// ToFeatureCollection exports every drawable primitive of a build as plan
// polygons, in emission order
func ToFeatureCollection(br *BuildResult) *FeatureCollection {
	fc := NewFeatureCollection()
	if br == nil {
		return fc
	}
	for _, p := range br.Primitives {
		if f := PrimitiveToFeature(br, p); f != nil {
			fc.AddFeature(f)
		}
	}
	return fc
}

// FloorFeatureCollection exports one floor, plus its resolved footprint as a
// feature with role "footprint"
func FloorFeatureCollection(br *BuildResult, floor int) *FeatureCollection {
	fc := NewFeatureCollection()
	if br == nil {
		return fc
	}

	if floor >= 0 && floor < len(br.Footprints) {
		fp := br.Footprints[floor]
		f := NewFeature(PolygonGeometry(fp.ToPolygon()), map[string]interface{}{
			"role":  "footprint",
			"floor": floor,
			"width": fp.Width(),
			"depth": fp.Depth(),
		})
		fc.AddFeature(f)
	}

	for _, p := range br.PrimitivesOnFloor(floor) {
		if f := PrimitiveToFeature(br, p); f != nil {
			fc.AddFeature(f)
		}
	}
	return fc
}
