package mesh

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	maxRasterSize = 4000
	legendWidth   = 230
	legendLine    = 16
)

// PlanRenderer rasterizes one floor of a build with a legend of the floor's
// detection vs emission counters
type PlanRenderer struct {
	Result         *BuildResult
	Floor          int
	PixelsPerMeter float64
	Padding        int // pixels
}

// NewPlanRenderer creates a raster plan renderer with default settings
func NewPlanRenderer(result *BuildResult, floor int) *PlanRenderer {
	return &PlanRenderer{
		Result:         result,
		Floor:          floor,
		PixelsPerMeter: 50,
		Padding:        20,
	}
}

// HasDrawableContent reports whether the floor has anything to draw
func (r *PlanRenderer) HasDrawableContent() bool {
	if r.Result == nil {
		return false
	}
	_, ok := r.Result.FloorBound(r.Floor)
	return ok
}

// Render draws the floor plan. Plan Z grows downward like the source image.
func (r *PlanRenderer) Render() *image.RGBA {
	var b orb.Bound
	if r.Result != nil {
		b, _ = r.Result.FloorBound(r.Floor)
	}

	scale := r.PixelsPerMeter
	if scale <= 0 {
		scale = DefaultOutputConfig().PixelsPerMeter
	}
	planW := (b.Max[0] - b.Min[0]) * scale
	planH := (b.Max[1] - b.Min[1]) * scale

	// Limit size
	if biggest := math.Max(planW, planH); biggest > maxRasterSize {
		scale *= maxRasterSize / biggest
		planW = (b.Max[0] - b.Min[0]) * scale
		planH = (b.Max[1] - b.Min[1]) * scale
	}

	width := int(math.Ceil(planW)) + 2*r.Padding + legendWidth
	height := int(math.Ceil(planH)) + 2*r.Padding
	if minH := 6*legendLine + 2*r.Padding; height < minH {
		height = minH
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{255, 255, 255, 255})
		}
	}

	if r.Result != nil {
		toWorld := func(px, py int) orb.Point {
			return orb.Point{
				b.Min[0] + (float64(px-r.Padding)+0.5)/scale,
				b.Min[1] + (float64(py-r.Padding)+0.5)/scale,
			}
		}
		toImage := func(p orb.Point) (int, int) {
			return int((p[0]-b.Min[0])*scale) + r.Padding, int((p[1]-b.Min[1])*scale) + r.Padding
		}

		prims := r.Result.PrimitivesOnFloor(r.Floor)
		for layer := 0; layer <= 3; layer++ {
			for _, p := range prims {
				if planLayer(p) != layer {
					continue
				}
				if ring := r.Result.PlanRing(p); ring != nil {
					fillRing(img, ring, primitiveNRGBA(p), toWorld, toImage)
				}
			}
		}

		for _, p := range prims {
			if p.Role == RoleHinge {
				ix, iy := toImage(orb.Point{p.Position[0], p.Position[2]})
				drawCircle(img, ix, iy, 3, color.RGBA{0, 0, 0, 255})
			}
		}
	}

	r.drawLegend(img, width-legendWidth+10)
	return img
}

// primitiveNRGBA returns the primitive's color with its opacity as alpha
func primitiveNRGBA(p MeshPrimitive) color.NRGBA {
	c := parseHexColor(p.Color)
	alpha := math.Max(0, math.Min(1, p.Material.Opacity))
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(math.Round(alpha * 255))}
}

// fillRing blends every pixel whose center lies inside the ring
func fillRing(img *image.RGBA, ring orb.Ring, c color.NRGBA,
	toWorld func(int, int) orb.Point, toImage func(orb.Point) (int, int)) {
	rb := ring.Bound()
	x0, y0 := toImage(rb.Min)
	x1, y1 := toImage(rb.Max)

	bounds := img.Bounds()
	for py := max(y0-1, 0); py <= min(y1+1, bounds.Max.Y-1); py++ {
		for px := max(x0-1, 0); px <= min(x1+1, bounds.Max.X-1); px++ {
			if !planar.RingContains(ring, toWorld(px, py)) {
				continue
			}
			img.Set(px, py, blendColors(img.RGBAAt(px, py), c))
		}
	}
}

// SavePNG saves the plan image to a file
func (r *PlanRenderer) SavePNG(path string) error {
	img := r.Render()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	return png.Encode(f, img)
}

// blendColors performs alpha blending of two colors
func blendColors(bg color.RGBA, fg color.NRGBA) color.NRGBA {
	// Convert RGBA background to NRGBA for proper blending
	// RGBA is premultiplied, so we need to un-premultiply it first
	var bgNRGBA color.NRGBA
	switch bg.A {
	case 0:
		bgNRGBA = color.NRGBA{0, 0, 0, 0}
	case 255:
		bgNRGBA = color.NRGBA{bg.R, bg.G, bg.B, 255}
	default:
		// Un-premultiply: divide RGB by alpha
		alpha32 := uint32(bg.A)
		bgNRGBA = color.NRGBA{
			R: uint8((uint32(bg.R) * 255) / alpha32),
			G: uint8((uint32(bg.G) * 255) / alpha32),
			B: uint8((uint32(bg.B) * 255) / alpha32),
			A: bg.A,
		}
	}

	alpha := float64(fg.A) / 255.0
	invAlpha := 1.0 - alpha

	return color.NRGBA{
		R: uint8(float64(fg.R)*alpha + float64(bgNRGBA.R)*invAlpha),
		G: uint8(float64(fg.G)*alpha + float64(bgNRGBA.G)*invAlpha),
		B: uint8(float64(fg.B)*alpha + float64(bgNRGBA.B)*invAlpha),
		A: 255,
	}
}

// drawCircle draws a filled circle
func drawCircle(img *image.RGBA, cx, cy, radius int, c color.RGBA) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				x, y := cx+dx, cy+dy
				if x >= 0 && x < img.Bounds().Max.X && y >= 0 && y < img.Bounds().Max.Y {
					img.Set(x, y, c)
				}
			}
		}
	}
}

// LegendLines returns the legend text for a floor's counters
func LegendLines(s FloorStats) []string {
	return []string{
		fmt.Sprintf("floor %d", s.Floor),
		fmt.Sprintf("walls   in %3d  out %3d", s.InWalls, s.OutWalls),
		fmt.Sprintf("doors   in %3d  out %3d", s.InDoors, s.OutDoors),
		fmt.Sprintf("windows in %3d  out %3d", s.InWindows, s.OutWindows),
		fmt.Sprintf("merged %d  unattached %d", s.MergedWalls, s.Unattached),
	}
}

// drawLegend writes the floor's counters in a column starting at x
func (r *PlanRenderer) drawLegend(img *image.RGBA, x int) {
	if r.Result == nil || r.Floor < 0 || r.Floor >= len(r.Result.Stats) {
		return
	}
	y := r.Padding + legendLine
	for _, line := range LegendLines(r.Result.Stats[r.Floor]) {
		drawText(img, x, y, line, color.RGBA{0, 0, 0, 255})
		y += legendLine
	}
}

// drawText renders text onto an image at the specified position
func drawText(img *image.RGBA, x, y int, text string, c color.RGBA) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}
