package mesh

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ungerik/go3d/float64/vec3"
)

func assertVec(t *testing.T, want, got vec3.T, msgAndArgs ...any) {
	t.Helper()
	for i := range want {
		if math.Abs(want[i]-got[i]) > 1e-9 {
			assert.Fail(t, fmt.Sprintf("vector mismatch: want %v, got %v", want, got), msgAndArgs...)
			return
		}
	}
}

func roles(prims []MeshPrimitive) []Role {
	out := make([]Role, len(prims))
	for i, p := range prims {
		out[i] = p.Role
	}
	return out
}

func TestBars(t *testing.T) {
	w := hwall(0, 10, 0, 0.2)

	tests := []struct {
		name      string
		intervals []Interval
		want      []Interval
	}{
		{"NoOpenings", nil, []Interval{{A: 0, B: 10}}},
		{"Middle", []Interval{{A: 2, B: 3}, {A: 5, B: 6}}, []Interval{{A: 0, B: 2}, {A: 3, B: 5}, {A: 6, B: 10}}},
		{"FlushStart", []Interval{{A: 0, B: 1}}, []Interval{{A: 1, B: 10}}},
		{"WholeWall", []Interval{{A: 0, B: 10}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Bars(w, tt.intervals)
			assert.Equal(t, tt.want, got)

			covered := 0.0
			for _, iv := range append(got, tt.intervals...) {
				covered += iv.Length()
			}
			assert.InDelta(t, w.Length(), covered, 1e-9, "bars and openings must cover the span")
		})
	}
}

func TestWindowLayout(t *testing.T) {
	tests := []struct {
		name                 string
		h, sill, band        float64
		bottom, bandOut, top float64
	}{
		{"Fits", 2.85, 0.9, 1.2, 0.9, 1.2, 0.75},
		{"SillGivesFirst", 2.0, 0.9, 1.2, 0.75, 1.2, 0.05},
		{"BandGivesLast", 1.0, 0.9, 1.2, 0.05, 0.9, 0.05},
		{"LowerThanTwoNibs", 0.08, 0.9, 1.2, 0.04, 0, 0.04},
		{"NoWindow", 3.0, 0, 0, 0, 0, 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, band, top := WindowLayout(tt.h, tt.sill, tt.band)
			assert.InDelta(t, tt.bottom, b, 1e-9, "bottom")
			assert.InDelta(t, tt.bandOut, band, 1e-9, "band")
			assert.InDelta(t, tt.top, top, 1e-9, "top")
			assert.LessOrEqual(t, b+band+top, tt.h+1e-9)
		})
	}
}

func TestHingeSide(t *testing.T) {
	w := hwall(0, 10, 0, 0.2)

	tests := []struct {
		name      string
		iv        Interval
		hinge     float64
		direction float64
	}{
		{"LeftOfMiddle", Interval{A: 2, B: 4}, 4, -1},
		{"RightOfMiddle", Interval{A: 6, B: 8}, 6, 1},
		{"CenteredTiesToA", Interval{A: 4, B: 6}, 4, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hinge, dir := HingeSide(w, tt.iv)
			assert.Equal(t, tt.hinge, hinge)
			assert.Equal(t, tt.direction, dir)
		})
	}
}

func TestSwingAngle(t *testing.T) {
	assert.InDelta(t, DoorSwing, SwingAngle(hwall(0, 1, 0, 0.1), 1), 1e-12)
	assert.InDelta(t, -DoorSwing, SwingAngle(hwall(0, 1, 0, 0.1), -1), 1e-12)
	assert.InDelta(t, -DoorSwing, SwingAngle(vwall(0, 1, 0, 0.1), 1), 1e-12)
	assert.InDelta(t, DoorSwing, SwingAngle(vwall(0, 1, 0, 0.1), -1), 1e-12)
}

func TestEmitWall_Door(t *testing.T) {
	e := newEmitter(0, DefaultBuildConfig(), NewRoomPalette())
	w := hwall(-5, 5, 0, 0.2)
	w.Room = "hall"
	o := door(0, -0.5, 0.5, -0.1, 0.1)

	e.emitWall(w, []Interval{{A: -0.74, B: 0.74, Opening: &o}})
	require.Equal(t, []Role{RoleBar, RoleBar, RoleLintel, RoleHinge, RoleLeaf}, roles(e.prims))

	hallColor := NewRoomPalette().Color("hall")
	left, right := e.prims[0], e.prims[1]
	assertVec(t, vec3.T{-2.87, 1.425, 0}, left.Position)
	assertVec(t, vec3.T{4.26, 2.85, 0.2}, left.Size)
	assertVec(t, vec3.T{2.87, 1.425, 0}, right.Position)
	assert.Equal(t, hallColor, left.Color)
	assert.True(t, left.Collider)

	lintel := e.prims[2]
	assert.Equal(t, MeshWall, lintel.Kind)
	assertVec(t, vec3.T{0, 2.475, 0}, lintel.Position)
	assertVec(t, vec3.T{1.48, 0.75, 0.2}, lintel.Size)
	assert.True(t, lintel.Collider)

	pivot, leaf := e.prims[3], e.prims[4]
	assert.Equal(t, ShapePivot, pivot.Shape)
	assertVec(t, vec3.T{-0.74, 0, 0}, pivot.Position, "hinged on the A side")
	assert.InDelta(t, DoorSwing, pivot.RotationY, 1e-12)
	assert.False(t, pivot.Collider)

	assert.Equal(t, pivot.ID, leaf.Parent)
	assert.Equal(t, MeshDoor, leaf.Kind)
	assertVec(t, vec3.T{0.74, 1.05, 0}, leaf.Position, "leaf is local to the pivot")
	assertVec(t, vec3.T{1.48, DoorHeight, DoorLeafThickness}, leaf.Size, "leaf fills the shaped interval")
	assert.Equal(t, DefaultDoorColor, leaf.Color, "door without a room")
	assert.False(t, leaf.Collider)
}

func TestEmitWall_VerticalDoor(t *testing.T) {
	e := newEmitter(1, DefaultBuildConfig(), NewRoomPalette())
	w := vwall(0, 4, 2, 0.1)
	o := door(0, 1.95, 2.05, 1, 2)
	o.Room = "study"

	e.emitWall(w, []Interval{{A: 1, B: 2, Opening: &o}})
	require.Equal(t, []Role{RoleBar, RoleBar, RoleLintel, RoleHinge, RoleLeaf}, roles(e.prims))

	pivot, leaf := e.prims[3], e.prims[4]
	assertVec(t, vec3.T{2, 3, 2}, pivot.Position, "hinge at the end nearest the middle, at floor 1 elevation")
	assert.InDelta(t, DoorSwing, pivot.RotationY, 1e-12)
	assertVec(t, vec3.T{0, 1.05, -0.5}, leaf.Position)
	assertVec(t, vec3.T{DoorLeafThickness, DoorHeight, 1}, leaf.Size)
	assert.Equal(t, NewRoomPalette().Color("study"), leaf.Color)
	assert.Equal(t, leaf.Color, pivot.Color)
}

func TestEmitWall_LowWallHasNoLintel(t *testing.T) {
	cfg := DefaultBuildConfig()
	cfg.FloorHeight = 2.0
	e := newEmitter(0, cfg, nil)
	o := door(0, 4.5, 5.5, -0.1, 0.1)

	e.emitWall(hwall(0, 10, 0, 0.2), []Interval{{A: 4.5, B: 5.5, Opening: &o}})
	assert.Equal(t, []Role{RoleBar, RoleBar, RoleHinge, RoleLeaf}, roles(e.prims))
	assert.InDelta(t, 1.85, e.prims[3].Size[1], 1e-9, "leaf clipped to the wall")
	assert.Equal(t, DefaultWallColor, e.prims[0].Color, "no palette")
}

func TestEmitWall_Window(t *testing.T) {
	e := newEmitter(0, DefaultBuildConfig(), NewRoomPalette())
	o := window(0, 3, 4, -0.1, 0.1)

	e.emitWall(hwall(0, 10, 0, 0.2), []Interval{{A: 2.76, B: 4.24, Opening: &o}})
	require.Equal(t, []Role{RoleBar, RoleBar, RoleSill, RoleHeader, RoleBand}, roles(e.prims))

	sill, header, band := e.prims[2], e.prims[3], e.prims[4]
	assertVec(t, vec3.T{3.5, 0.45, 0}, sill.Position)
	assertVec(t, vec3.T{1.48, 0.9, 0.2}, sill.Size)
	assert.True(t, sill.Collider)

	assertVec(t, vec3.T{3.5, 2.475, 0}, header.Position)
	assertVec(t, vec3.T{1.48, 0.75, 0.2}, header.Size)

	assert.Equal(t, MeshWindow, band.Kind)
	assert.Equal(t, ShapeBand, band.Shape)
	assertVec(t, vec3.T{3.5, 1.5, 0}, band.Position)
	assertVec(t, vec3.T{1.48, 1.2, 0.06}, band.Size)
	assert.Equal(t, windowMaterial, band.Material)
	assert.False(t, band.Collider)
}

func TestEmitWall_RoomColorsOff(t *testing.T) {
	cfg := DefaultBuildConfig()
	cfg.RoomColors = false
	palette := NewRoomPalette()
	e := newEmitter(0, cfg, palette)
	w := hwall(0, 10, 0, 0.2)
	w.Room = "kitchen"

	e.emitWall(w, nil)
	require.Len(t, e.prims, 1)
	assert.Equal(t, DefaultWallColor, e.prims[0].Color)
	assert.Equal(t, "kitchen", e.prims[0].Room)
	assert.Zero(t, palette.Len(), "palette untouched")
}

func TestEmitInsert(t *testing.T) {
	e := newEmitter(0, DefaultBuildConfig(), nil)
	e.emitInsert(door(0, 1, 2, 3, 3.2))
	e.emitInsert(window(1, 5, 6, 3, 3.2))
	require.Len(t, e.prims, 2)

	d, w := e.prims[0], e.prims[1]
	assert.Equal(t, MeshDoor, d.Kind)
	assert.Equal(t, RoleInsert, d.Role)
	assertVec(t, vec3.T{1.5, 1.05, 3.1}, d.Position)
	assertVec(t, vec3.T{1, 2.1, 0.2}, d.Size)
	assert.Equal(t, opaqueMaterial, d.Material)

	assert.Equal(t, MeshWindow, w.Kind)
	assertVec(t, vec3.T{5.5, 1.5, 3.1}, w.Position)
	assertVec(t, vec3.T{1, 1.2, 0.2}, w.Size)
	assert.Equal(t, windowMaterial, w.Material)
	assert.False(t, d.Collider || w.Collider)
}

func TestEmitPlate(t *testing.T) {
	e := newEmitter(1, DefaultBuildConfig(), nil)
	id := e.emitPlate(NewRect(-5, 5, -4, 4))
	require.Len(t, e.prims, 2)

	plate, slab := e.prims[0], e.prims[1]
	assert.Equal(t, id, plate.ID)
	assert.Equal(t, ShapePlane, plate.Shape)
	assertVec(t, vec3.T{0, 3, 0}, plate.Position)
	assertVec(t, vec3.T{10, 0, 8}, plate.Size)
	assert.True(t, plate.Material.DoubleSided)

	assert.Equal(t, MeshSlab, slab.Kind)
	assertVec(t, vec3.T{0, 5.925, 0}, slab.Position, "slab sits on top of the walls")
	assertVec(t, vec3.T{10, 0.15, 8}, slab.Size)
}

func TestEmitPlate_NoSlab(t *testing.T) {
	cfg := DefaultBuildConfig()
	cfg.SlabThickness = 0
	e := newEmitter(0, cfg, nil)
	e.emitPlate(NewRect(0, 1, 0, 1))
	assert.Len(t, e.prims, 1)
}

func TestEmitter_IDs(t *testing.T) {
	emit := func() []MeshPrimitive {
		e := newEmitter(2, DefaultBuildConfig(), nil)
		e.emitWall(hwall(0, 10, 0, 0.2), nil)
		e.emitWall(hwall(0, 10, 5, 0.2), nil)
		e.emitPlate(NewRect(0, 10, 0, 5))
		return e.prims
	}

	a, b := emit(), emit()
	seen := map[string]bool{}
	for i := range a {
		assert.Equal(t, a[i].ID, b[i].ID, "ids must be reproducible")
		assert.False(t, seen[a[i].ID], "duplicate id %s", a[i].ID)
		seen[a[i].ID] = true
		assert.Equal(t, 2, a[i].Floor)
	}
}
