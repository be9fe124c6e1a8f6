package mesh

import (
	"gonum.org/v1/gonum/stat"
)

// Builder turns floor records into a BuildResult
type Builder struct {
	Config BuildConfig
	// Palette colors rooms; nil gives every build a fresh palette
	Palette *RoomPalette
	// Logf receives progress and degradation notes; nil is silent
	Logf func(format string, args ...any)
}

// Build runs the reconstruction with the given config and palette.
// Callers should start from DefaultBuildConfig and override fields: the
// boolean switches cannot be told apart from unset ones, so only an
// entirely zero BuildConfig is replaced by the defaults.
func Build(floors []FloorRecord, cfg BuildConfig, palette *RoomPalette) *BuildResult {
	b := &Builder{Config: cfg, Palette: palette}
	return b.Build(floors)
}

// floorPlan is one floor after classification and merging, in floor-local
// meters, before it is moved onto its footprint
type floorPlan struct {
	walls       []WallSegment
	openings    []Opening
	source      Rect
	averageDoor float64
	stats       FloorStats
}

func (b *Builder) logf(format string, args ...any) {
	if b.Logf != nil {
		b.Logf(format, args...)
	}
}

// Build reconstructs every floor in ascending order. It never fails:
// malformed input only lowers fidelity, which the per-floor stats expose.
func (b *Builder) Build(floors []FloorRecord) *BuildResult {
	cfg := b.Config
	switch {
	case cfg == (BuildConfig{}):
		cfg = DefaultBuildConfig()
		b.logf("[BUILD] empty config, using defaults")
	case !cfg.SyncFloors && !cfg.UniformScale && !cfg.RoomColors:
		b.logf("[BUILD] floor sync, uniform scale and room colors are all off; start from DefaultBuildConfig to keep them")
	}
	cfg = cfg.Normalize()
	palette := b.Palette
	if palette == nil {
		palette = NewRoomPalette()
	}

	plans := make([]floorPlan, len(floors))
	sources := make([]Rect, len(floors))
	for k, fr := range floors {
		plans[k] = b.planFloor(k, fr, cfg)
		sources[k] = plans[k].source
	}
	footprints := ResolveFootprints(sources, cfg.SyncFloors, cfg.BaseFloor, cfg.UniformScale)

	result := &BuildResult{
		Primitives:  []MeshPrimitive{},
		Colliders:   []string{},
		FloorPlanes: make([]string, 0, len(floors)),
		Footprints:  make([]Rect, 0, len(floors)),
		TotalHeight: float64(len(floors)) * cfg.FloorHeight,
		Stats:       make([]FloorStats, 0, len(floors)),
	}

	for k := range plans {
		e := newEmitter(k, cfg, palette)
		plane, stats := b.buildFloor(e, plans[k], footprints[k], cfg)

		result.Primitives = append(result.Primitives, e.prims...)
		for _, p := range e.prims {
			if p.Collider {
				result.Colliders = append(result.Colliders, p.ID)
			}
		}
		result.FloorPlanes = append(result.FloorPlanes, plane)
		result.Footprints = append(result.Footprints, footprints[k].Resolved)
		result.Stats = append(result.Stats, stats)

		b.logf("[BUILD] floor %d: walls %d->%d (merged %d), doors %d->%d, windows %d->%d, unattached %d",
			k, stats.InWalls, stats.OutWalls, stats.MergedWalls,
			stats.InDoors, stats.OutDoors, stats.InWindows, stats.OutWindows, stats.Unattached)
	}
	return result
}

// planFloor classifies and merges one floor and picks its source rectangle
func (b *Builder) planFloor(k int, fr FloorRecord, cfg BuildConfig) floorPlan {
	prims := ClassifyFloor(fr, cfg.UnitPerPx)
	walls, doors, windows := CountKinds(prims)

	merged := MergeWalls(WallsFromPrimitives(prims), cfg.PosTol, cfg.GapTol)
	image := fr.ImageRect(cfg.UnitPerPx)

	source := TightRect(merged, image)
	if cfg.PerimeterMode == PerimeterImage {
		source = image
	}

	openings := OpeningsFromPrimitives(prims)
	avg := b.averageDoor(k, fr, openings, cfg)

	return floorPlan{
		walls:       merged,
		openings:    openings,
		source:      source,
		averageDoor: avg,
		stats: FloorStats{
			Floor:       k,
			InWalls:     walls,
			InDoors:     doors,
			InWindows:   windows,
			MergedWalls: len(merged),
		},
	}
}

// averageDoor returns the floor's door width statistic in meters, or 0
func (b *Builder) averageDoor(k int, fr FloorRecord, openings []Opening, cfg BuildConfig) float64 {
	if fr.AverageDoor != nil && *fr.AverageDoor > 0 {
		return *fr.AverageDoor * cfg.UnitPerPx
	}
	if !cfg.EstimateDoorWidth {
		return 0
	}
	var widths []float64
	for _, o := range openings {
		if o.Kind == KindDoor {
			widths = append(widths, o.LongSide())
		}
	}
	if len(widths) == 0 {
		return 0
	}
	avg := stat.Mean(widths, nil)
	b.logf("[BUILD] floor %d: estimated door width %.2fm from %d doors", k, avg, len(widths))
	return avg
}

// buildFloor moves a planned floor onto its footprint and emits it. It
// returns the floor plane id and the completed stats.
func (b *Builder) buildFloor(e *emitter, plan floorPlan, fp Footprint, cfg BuildConfig) (string, FloorStats) {
	walls := TransformWalls(plan.walls, fp.Transform)
	openings := TransformOpenings(plan.openings, fp.Transform)

	att := AttachOpenings(walls, openings)
	params := ShapeParamsFromConfig(cfg, plan.averageDoor)
	for i, w := range walls {
		e.emitWall(w, ShapeIntervals(w, att.ByWall[i], params))
	}

	for _, o := range att.Unattached {
		e.emitInsert(o)
	}
	if len(att.Unattached) > 0 {
		b.logf("[BUILD] floor %d: %d openings touch no wall, emitted as inserts", e.floor, len(att.Unattached))
	}

	if NeedsPerimeter(cfg, plan.walls, fp.Resolved) {
		e.emitPerimeter(fp.Resolved)
	}
	plane := e.emitPlate(fp.Resolved)

	stats := plan.stats
	stats.Unattached = len(att.Unattached)
	for _, p := range e.prims {
		switch {
		case p.Role == RoleBar:
			stats.OutWalls++
		case p.Kind == MeshDoor && (p.Role == RoleLeaf || p.Role == RoleInsert):
			stats.OutDoors++
		case p.Kind == MeshWindow && (p.Role == RoleBand || p.Role == RoleInsert):
			stats.OutWindows++
		}
	}
	return plane, stats
}
