package mesh

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/tdewolff/canvas"
)

func renderedBuild() *BuildResult {
	fr := scenarioFloor()
	fr.Points = append(fr.Points, DetectionBox{X1: 200, Y1: 392, X2: 320, Y2: 408})
	fr.Classes = append(fr.Classes, StringLabel("window"))
	return Build([]FloorRecord{fr}, DefaultBuildConfig(), nil)
}

func TestVectorRenderer_RenderToSVG(t *testing.T) {
	r := NewVectorRenderer(renderedBuild(), 0)

	var buf bytes.Buffer
	err := r.RenderToSVG(&buf)
	if err != nil {
		t.Fatalf("Failed to render to SVG: %v", err)
	}

	svgContent := buf.String()
	if len(svgContent) == 0 {
		t.Fatal("SVG output is empty")
	}

	// Basic check for SVG tags
	if !bytes.Contains(buf.Bytes(), []byte("<svg")) {
		t.Errorf("Output does not contain <svg tag")
	}
	if !bytes.Contains(buf.Bytes(), []byte("path")) {
		t.Errorf("Output does not contain path elements")
	}

	t.Logf("Generated SVG length: %d", len(svgContent))
}

func TestVectorRenderer_RenderToPNG(t *testing.T) {
	r := NewVectorRenderer(renderedBuild(), 0)

	var buf bytes.Buffer
	if err := r.RenderToPNG(&buf); err != nil {
		t.Fatalf("Failed to render to PNG: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("Failed to decode PNG: %v", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		t.Errorf("PNG has zero dimensions: %dx%d", bounds.Dx(), bounds.Dy())
	}
	t.Logf("Generated PNG: %dx%d pixels", bounds.Dx(), bounds.Dy())
}

func TestVectorRenderer_PNGWithCustomResolution(t *testing.T) {
	result := renderedBuild()

	sizeAt := func(dpi float64) int {
		r := NewVectorRenderer(result, 0)
		r.Resolution = canvas.DPI(dpi)

		var buf bytes.Buffer
		if err := r.RenderToPNG(&buf); err != nil {
			t.Fatalf("Failed to render at %v DPI: %v", dpi, err)
		}
		img, err := png.Decode(&buf)
		if err != nil {
			t.Fatalf("Failed to decode PNG: %v", err)
		}
		return img.Bounds().Dx()
	}

	low, high := sizeAt(72), sizeAt(300)
	if high <= low {
		t.Errorf("Expected 300 DPI (%d px) to be wider than 72 DPI (%d px)", high, low)
	}
}

func TestVectorRenderer_Errors(t *testing.T) {
	var buf bytes.Buffer

	if err := NewVectorRenderer(nil, 0).RenderToSVG(&buf); err == nil {
		t.Error("expected error for nil result")
	}
	if err := NewVectorRenderer(renderedBuild(), 4).RenderToPNG(&buf); err == nil {
		t.Error("expected error for a floor with nothing to draw")
	}
}

func TestVectorRenderer_GridOff(t *testing.T) {
	result := renderedBuild()

	render := func(spacing float64) int {
		r := NewVectorRenderer(result, 0)
		r.GridSpacing = spacing
		var buf bytes.Buffer
		if err := r.RenderToSVG(&buf); err != nil {
			t.Fatalf("RenderToSVG: %v", err)
		}
		return bytes.Count(buf.Bytes(), []byte("<path"))
	}

	if with, without := render(1), render(0); with <= without {
		t.Errorf("grid should add paths: %d with, %d without", with, without)
	}
}

func TestPlanLayer(t *testing.T) {
	tests := []struct {
		kind MeshKind
		want int
	}{
		{MeshFloor, 0},
		{MeshWall, 1},
		{MeshPerimeterWall, 1},
		{MeshWindow, 2},
		{MeshDoor, 3},
		{MeshSlab, -1},
	}
	for _, tt := range tests {
		if got := planLayer(MeshPrimitive{Kind: tt.kind}); got != tt.want {
			t.Errorf("planLayer(%s) = %d, want %d", tt.kind, got, tt.want)
		}
	}
}
