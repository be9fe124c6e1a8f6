package mesh

import (
	"fmt"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/paulmach/orb"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"github.com/tdewolff/canvas/renderers/svg"
)

// nrgbaToRGBA converts color.NRGBA to color.RGBA by premultiplying alpha
// This is needed for the canvas library which expects premultiplied RGBA
func nrgbaToRGBA(c color.NRGBA) color.RGBA {
	if c.A == 0 {
		return color.RGBA{0, 0, 0, 0}
	}
	if c.A == 255 {
		return color.RGBA{c.R, c.G, c.B, 255}
	}
	// Premultiply: multiply RGB by alpha
	alpha32 := uint32(c.A)
	return color.RGBA{
		R: uint8((uint32(c.R) * alpha32) / 255),
		G: uint8((uint32(c.G) * alpha32) / 255),
		B: uint8((uint32(c.B) * alpha32) / 255),
		A: c.A,
	}
}

// primitiveColor returns a primitive's color with its material opacity
func primitiveColor(p MeshPrimitive) color.RGBA {
	return nrgbaToRGBA(primitiveNRGBA(p))
}

// VectorRenderer draws one floor of a build as a plan, seen from above
type VectorRenderer struct {
	Result      *BuildResult
	Floor       int
	Scale       float64           // canvas millimeters per plan meter
	Padding     float64           // padding in meters
	Resolution  canvas.Resolution // Resolution for PNG output
	GridSpacing float64           // Grid line spacing in meters; 0 disables
}

// NewVectorRenderer creates a vector renderer with default settings
func NewVectorRenderer(result *BuildResult, floor int) *VectorRenderer {
	return &VectorRenderer{
		Result:      result,
		Floor:       floor,
		Scale:       20.0, // 1:50
		Padding:     0.5,
		Resolution:  canvas.DPI(150),
		GridSpacing: 1.0,
	}
}

// canvasRenderer is an interface that both svg and rasterizer renderers implement
type canvasRenderer interface {
	RenderPath(path *canvas.Path, style canvas.Style, m canvas.Matrix)
}

// planBounds returns the floor's bounds and the canvas size in millimeters
func (r *VectorRenderer) planBounds() (orb.Bound, float64, float64, error) {
	if r.Result == nil {
		return orb.Bound{}, 0, 0, fmt.Errorf("no build result to render")
	}
	b, ok := r.Result.FloorBound(r.Floor)
	if !ok {
		return orb.Bound{}, 0, 0, fmt.Errorf("floor %d has nothing to draw", r.Floor)
	}
	b = b.Pad(r.Padding)
	return b, (b.Max[0] - b.Min[0]) * r.Scale, (b.Max[1] - b.Min[1]) * r.Scale, nil
}

// RenderToSVG writes the floor plan as an SVG to the provided writer
func (r *VectorRenderer) RenderToSVG(w io.Writer) error {
	b, width, height, err := r.planBounds()
	if err != nil {
		return err
	}

	svgRenderer := svg.New(w, width, height, nil)
	r.renderToCanvas(svgRenderer, b, width, height)

	if err := svgRenderer.Close(); err != nil {
		return fmt.Errorf("closing svg: %w", err)
	}
	return nil
}

// RenderToPNG writes the floor plan as a PNG to the provided writer
func (r *VectorRenderer) RenderToPNG(w io.Writer) error {
	b, width, height, err := r.planBounds()
	if err != nil {
		return err
	}

	rast := rasterizer.New(width, height, r.Resolution, canvas.DefaultColorSpace)
	r.renderToCanvas(rast, b, width, height)

	// Rasterizer implements draw.Image interface, which embeds image.Image
	return png.Encode(w, rast)
}

// planLayer orders primitives bottom to top in the drawing
func planLayer(p MeshPrimitive) int {
	switch p.Kind {
	case MeshFloor:
		return 0
	case MeshWall, MeshPerimeterWall:
		return 1
	case MeshWindow:
		return 2
	case MeshDoor:
		return 3
	}
	return -1
}

// renderToCanvas draws the floor (shared logic for SVG and PNG)
func (r *VectorRenderer) renderToCanvas(renderer canvasRenderer, b orb.Bound, width, height float64) {
	bgStyle := canvas.DefaultStyle
	bgStyle.Fill = canvas.Paint{Color: canvas.White}
	renderer.RenderPath(canvas.Rectangle(width, height), bgStyle, canvas.Identity)

	// plan Z grows downward like the source image
	toCanvas := func(x, z float64) (float64, float64) {
		return (x - b.Min[0]) * r.Scale, (b.Max[1] - z) * r.Scale
	}

	prims := r.Result.PrimitivesOnFloor(r.Floor)
	for layer := 0; layer <= 3; layer++ {
		for _, p := range prims {
			if planLayer(p) != layer {
				continue
			}
			ring := r.Result.PlanRing(p)
			if ring == nil {
				continue
			}

			cp := &canvas.Path{}
			for i, pt := range ring {
				cx, cy := toCanvas(pt[0], pt[1])
				if i == 0 {
					cp.MoveTo(cx, cy)
				} else {
					cp.LineTo(cx, cy)
				}
			}
			cp.Close()

			style := canvas.DefaultStyle
			style.Fill = canvas.Paint{Color: primitiveColor(p)}
			style.Stroke = canvas.Paint{Color: canvas.Transparent}
			if p.Kind != MeshFloor {
				style.Stroke = canvas.Paint{Color: canvas.Black}
				style.StrokeWidth = 0.2
			}
			renderer.RenderPath(cp, style, canvas.Identity)
		}
	}

	// Hinges
	hingeStyle := canvas.DefaultStyle
	hingeStyle.Fill = canvas.Paint{Color: canvas.Black}
	for _, p := range prims {
		if p.Role != RoleHinge {
			continue
		}
		cx, cy := toCanvas(p.Position[0], p.Position[2])
		renderer.RenderPath(canvas.Circle(0.06*r.Scale).Translate(cx, cy), hingeStyle, canvas.Identity)
	}

	if r.GridSpacing > 0 {
		gridStyle := canvas.DefaultStyle
		gridStyle.Fill = canvas.Paint{Color: canvas.Transparent}
		gridStyle.Stroke = canvas.Paint{Color: canvas.Gray}
		gridStyle.StrokeWidth = 0.1
		gridStyle.Dashes = []float64{1.0, 1.0}

		// Vertical grid lines
		for x := math.Ceil(b.Min[0]/r.GridSpacing) * r.GridSpacing; x <= b.Max[0]; x += r.GridSpacing {
			gridPath := &canvas.Path{}
			x1, y1 := toCanvas(x, b.Min[1])
			x2, y2 := toCanvas(x, b.Max[1])
			gridPath.MoveTo(x1, y1)
			gridPath.LineTo(x2, y2)
			renderer.RenderPath(gridPath, gridStyle, canvas.Identity)
		}

		// Horizontal grid lines
		for z := math.Ceil(b.Min[1]/r.GridSpacing) * r.GridSpacing; z <= b.Max[1]; z += r.GridSpacing {
			gridPath := &canvas.Path{}
			x1, y1 := toCanvas(b.Min[0], z)
			x2, y2 := toCanvas(b.Max[0], z)
			gridPath.MoveTo(x1, y1)
			gridPath.LineTo(x2, y2)
			renderer.RenderPath(gridPath, gridStyle, canvas.Identity)
		}
	}
}
