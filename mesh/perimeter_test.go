package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ungerik/go3d/float64/vec3"
)

func TestNeedsPerimeter(t *testing.T) {
	rect := NewRect(0, 10, 0, 8) // perimeter 36, 30% is 10.8
	sparse := []WallSegment{hwall(0, 10, 4, 0.2)}
	dense := []WallSegment{hwall(0, 10, 0, 0.2), vwall(0, 8, 0, 0.2)}

	tests := []struct {
		name   string
		mode   PerimeterMode
		sync   bool
		walls  []WallSegment
		expect bool
	}{
		{"OffWins", PerimeterOff, true, nil, false},
		{"SyncAlways", PerimeterFootprint, true, dense, true},
		{"SyncImageMode", PerimeterImage, true, dense, true},
		{"LegacySparse", PerimeterFootprint, false, sparse, true},
		{"LegacyDense", PerimeterFootprint, false, dense, false},
		{"LegacyNoWalls", PerimeterImage, false, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultBuildConfig()
			cfg.PerimeterMode = tt.mode
			cfg.SyncFloors = tt.sync
			assert.Equal(t, tt.expect, NeedsPerimeter(cfg, tt.walls, rect))
		})
	}
}

func TestEmitPerimeter(t *testing.T) {
	e := newEmitter(0, DefaultBuildConfig(), nil)
	e.emitPerimeter(NewRect(-5, 5, -4, 4))
	require.Len(t, e.prims, 4)

	want := []struct {
		pos, size vec3.T
	}{
		{vec3.T{0, 1.425, -3.9}, vec3.T{10, 2.85, 0.2}},
		{vec3.T{0, 1.425, 3.9}, vec3.T{10, 2.85, 0.2}},
		{vec3.T{-4.9, 1.425, 0}, vec3.T{0.2, 2.85, 7.6}},
		{vec3.T{4.9, 1.425, 0}, vec3.T{0.2, 2.85, 7.6}},
	}
	for i, p := range e.prims {
		assert.Equal(t, MeshPerimeterWall, p.Kind)
		assert.Equal(t, RolePerimeter, p.Role)
		assert.True(t, p.Collider)
		assertVec(t, want[i].pos, p.Position, "side %d", i)
		assertVec(t, want[i].size, p.Size, "side %d", i)
	}
}

func TestEmitPerimeter_ThicknessClamped(t *testing.T) {
	e := newEmitter(0, DefaultBuildConfig(), nil)
	e.emitPerimeter(NewRect(0, 0.3, 0, 10))
	require.Len(t, e.prims, 4)
	assert.InDelta(t, 0.15, e.prims[0].Size[2], 1e-12, "half the narrow side")
	assert.InDelta(t, 9.7, e.prims[2].Size[2], 1e-9)
}

func TestEmitPerimeter_FlatRect(t *testing.T) {
	e := newEmitter(0, DefaultBuildConfig(), nil)
	e.emitPerimeter(NewRect(0, 10, 0, 0.4))
	assert.Len(t, e.prims, 2, "west and east have no room between north and south")
}
