package mesh

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestHasDrawableContent(t *testing.T) {
	// Case 1: no result
	r := NewPlanRenderer(nil, 0)
	if r.HasDrawableContent() {
		t.Fatalf("expected no drawable content without a result")
	}

	// Case 2: result without primitives
	r = NewPlanRenderer(&BuildResult{}, 0)
	if r.HasDrawableContent() {
		t.Fatalf("expected no drawable content for an empty result")
	}

	// Case 3: floor that was not built
	result := Build([]FloorRecord{scenarioFloor()}, DefaultBuildConfig(), nil)
	r = NewPlanRenderer(result, 3)
	if r.HasDrawableContent() {
		t.Fatalf("expected no drawable content on a missing floor")
	}

	// Case 4: built floor
	r = NewPlanRenderer(result, 0)
	if !r.HasDrawableContent() {
		t.Fatalf("expected drawable content on floor 0")
	}
}

func TestPlanRenderer_Render(t *testing.T) {
	result := Build([]FloorRecord{scenarioFloor()}, DefaultBuildConfig(), nil)
	r := NewPlanRenderer(result, 0)
	img := r.Render()

	bounds := img.Bounds()
	if bounds.Dx() <= legendWidth+2*r.Padding {
		t.Fatalf("image too narrow for the plan: %v", bounds)
	}

	// the west bar covers world (-3, 0); the plan starts at x=-5
	b, _ := result.FloorBound(0)
	px := int((-3-b.Min[0])*r.PixelsPerMeter) + r.Padding
	py := int((0-b.Min[1])*r.PixelsPerMeter) + r.Padding
	if img.RGBAAt(px, py) == (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("expected wall pixel at (%d, %d)", px, py)
	}

	// corner padding stays background
	if img.RGBAAt(1, 1) != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("expected white background, got %v", img.RGBAAt(1, 1))
	}
}

func TestPlanRenderer_TopOfImageIsTopOfPlan(t *testing.T) {
	cfg := DefaultBuildConfig()
	cfg.PerimeterMode = PerimeterOff
	fr := FloorRecord{
		Width:  1000,
		Height: 800,
		Points: []DetectionBox{
			{X1: 0, Y1: 100, X2: 1000, Y2: 120},
			{X1: 0, Y1: 680, X2: 200, Y2: 700},
		},
		Classes: []Label{StringLabel("wall"), StringLabel("wall")},
	}
	result := Build([]FloorRecord{fr}, cfg, nil)
	r := NewPlanRenderer(result, 0)
	img := r.Render()

	b, ok := result.FloorBound(0)
	if !ok {
		t.Fatal("expected a floor bound")
	}
	var long MeshPrimitive
	for _, p := range byRole(result.Primitives, RoleBar) {
		if p.Size[0] > long.Size[0] {
			long = p
		}
	}
	if !almostEqual(long.Position[2]-long.Size[2]/2, b.Min[1]) {
		t.Fatalf("long wall should sit on the low Z edge, got z=%v bound=%v", long.Position[2], b)
	}

	pixel := func(x, z float64) color.RGBA {
		px := int((x-b.Min[0])*r.PixelsPerMeter) + r.Padding
		py := int((z-b.Min[1])*r.PixelsPerMeter) + r.Padding
		return img.RGBAAt(px, py)
	}
	east := b.Max[0] - 0.5
	mirrored := b.Min[1] + b.Max[1] - long.Position[2]
	middle := (b.Min[1] + b.Max[1]) / 2

	if py := int((long.Position[2]-b.Min[1])*r.PixelsPerMeter) + r.Padding; py > img.Bounds().Dy()/2 {
		t.Errorf("low Z wall drawn at row %d, expected the upper half", py)
	}
	if pixel(east, long.Position[2]) == pixel(east, middle) {
		t.Errorf("expected wall color at the top of the plan")
	}
	if pixel(east, mirrored) != pixel(east, middle) {
		t.Errorf("mirrored row should only show the floor plate")
	}
}

func TestPlanRenderer_RenderEmpty(t *testing.T) {
	img := NewPlanRenderer(nil, 0).Render()
	if img.Bounds().Dx() != legendWidth+40 {
		t.Errorf("width = %d, want %d", img.Bounds().Dx(), legendWidth+40)
	}
}

func TestPlanRenderer_SizeLimit(t *testing.T) {
	result := Build([]FloorRecord{scenarioFloor()}, DefaultBuildConfig(), nil)
	r := NewPlanRenderer(result, 0)
	r.PixelsPerMeter = 10000

	img := r.Render()
	if w := img.Bounds().Dx() - legendWidth - 2*r.Padding; w > maxRasterSize+1 {
		t.Errorf("plan width %d exceeds limit", w)
	}
}

func TestPlanRenderer_SavePNG(t *testing.T) {
	result := Build([]FloorRecord{scenarioFloor()}, DefaultBuildConfig(), nil)
	path := filepath.Join(t.TempDir(), "plan.png")

	if err := NewPlanRenderer(result, 0).SavePNG(path); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()
	if _, err := png.Decode(f); err != nil {
		t.Errorf("output is not a PNG: %v", err)
	}

	if err := NewPlanRenderer(result, 0).SavePNG(filepath.Join(t.TempDir(), "missing", "plan.png")); err == nil {
		t.Error("expected error for a missing directory")
	}
}

func TestLegendLines(t *testing.T) {
	lines := LegendLines(FloorStats{
		Floor: 2, InWalls: 12, OutWalls: 9, InDoors: 3, OutDoors: 3,
		InWindows: 4, OutWindows: 2, MergedWalls: 7, Unattached: 2,
	})

	want := []string{
		"floor 2",
		"walls   in  12  out   9",
		"doors   in   3  out   3",
		"windows in   4  out   2",
		"merged 7  unattached 2",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d", len(lines), len(want))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestPrimitiveNRGBA(t *testing.T) {
	c := primitiveNRGBA(MeshPrimitive{Color: "#9fd3ff", Material: windowMaterial})
	if c.R != 0x9f || c.G != 0xd3 || c.B != 0xff {
		t.Errorf("color = %v", c)
	}
	if c.A != 89 {
		t.Errorf("alpha = %d, want 89", c.A)
	}
}

func TestBlendColors(t *testing.T) {
	white := color.RGBA{255, 255, 255, 255}

	if got := blendColors(white, color.NRGBA{0, 0, 0, 255}); got != (color.NRGBA{0, 0, 0, 255}) {
		t.Errorf("opaque foreground should win, got %v", got)
	}
	if got := blendColors(white, color.NRGBA{0, 0, 0, 0}); got != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("transparent foreground should keep background, got %v", got)
	}
	got := blendColors(white, color.NRGBA{0, 0, 0, 128})
	if got.R < 120 || got.R > 135 {
		t.Errorf("half blend = %v", got)
	}
}
