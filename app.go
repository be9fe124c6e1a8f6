package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/kwv/planmesh/mesh"
	"github.com/tdewolff/canvas"
)

// App encapsulates the application state and dependencies
type App struct {
	Config  *mesh.Config
	Palette *mesh.RoomPalette
	Out     io.Writer

	// CLI Flags (effectively dependencies)
	ConfigFile   string
	InputFile    string
	OutputFile   string
	RenderFormat string
	VectorFormat string
	GridSpacing  float64
	Floor        int
	Verbose      bool
}

// NewApp creates a new App instance writing human output to out
func NewApp(out io.Writer) *App {
	return &App{
		Palette: mesh.NewRoomPalette(),
		Out:     out,
		Floor:   -1,
	}
}

// ApplyOptions applies CLI options to the App instance
func (a *App) ApplyOptions(opts AppOptions) {
	a.ConfigFile = opts.ConfigFile
	a.InputFile = opts.InputFile
	a.OutputFile = opts.OutputFile
	a.RenderFormat = opts.RenderFormat
	a.VectorFormat = opts.VectorFormat
	a.GridSpacing = opts.GridSpacing
	a.Floor = opts.Floor
	a.Verbose = opts.Verbose
}

func (a *App) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.Out, format, args...)
}

// loadConfig reads the config file once. A missing file means defaults.
func (a *App) loadConfig() (*mesh.Config, error) {
	if a.Config != nil {
		return a.Config, nil
	}

	if a.ConfigFile == "" {
		cfg := mesh.DefaultConfig()
		a.Config = &cfg
		return a.Config, nil
	}
	if _, err := os.Stat(a.ConfigFile); os.IsNotExist(err) {
		log.Printf("Config %s not found, using defaults", a.ConfigFile)
		cfg := mesh.DefaultConfig()
		a.Config = &cfg
		return a.Config, nil
	}

	cfg, err := mesh.LoadConfig(a.ConfigFile)
	if err != nil {
		return nil, err
	}
	a.Config = cfg
	return a.Config, nil
}

func (a *App) loadFloors() ([]mesh.FloorRecord, error) {
	floors, err := mesh.ParseFloorsFile(a.InputFile)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", a.InputFile, err)
	}
	if len(floors) == 0 {
		return nil, fmt.Errorf("no floor records in %s", a.InputFile)
	}
	return floors, nil
}

// build loads config and input and runs the reconstruction
func (a *App) build() (*mesh.BuildResult, *mesh.Config, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	floors, err := a.loadFloors()
	if err != nil {
		return nil, nil, err
	}

	b := &mesh.Builder{Config: cfg.Build, Palette: a.Palette}
	if a.Verbose {
		b.Logf = log.Printf
	}
	result := b.Build(floors)
	a.printf("Built %d floor(s): %d primitives, %d colliders, height %.2fm\n",
		len(floors), len(result.Primitives), len(result.Colliders), result.TotalHeight)
	return result, cfg, nil
}

// floors returns the floor indices selected by the --floor flag
func (a *App) floors(result *mesh.BuildResult) ([]int, error) {
	n := result.FloorCount()
	if a.Floor >= 0 {
		if a.Floor >= n {
			return nil, fmt.Errorf("floor %d out of range (have %d)", a.Floor, n)
		}
		return []int{a.Floor}, nil
	}
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out, nil
}

// outputPath returns the output file, falling back to def. When a build
// writes several floors, the floor index is added before the extension.
func (a *App) outputPath(def, ext string, floor int, many bool) string {
	path := a.OutputFile
	if path == "" {
		path = def
	}
	if ext != "" {
		path = strings.TrimSuffix(path, filepath.Ext(path)) + ext
	}
	if many {
		e := filepath.Ext(path)
		path = fmt.Sprintf("%s-floor%d%s", strings.TrimSuffix(path, e), floor, e)
	}
	return path
}

// writeJSON writes v to path, or to the app's output when path is "-"
func (a *App) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if path == "-" {
		_, err := a.Out.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	a.printf("Created %s\n", path)
	return nil
}

// RunSummary prints a summary of every floor record
func (a *App) RunSummary() error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	floors, err := a.loadFloors()
	if err != nil {
		return err
	}

	a.printf("Found %d floor record(s) in %s\n\n", len(floors), a.InputFile)
	for i, fr := range floors {
		s := mesh.Summarize(fr)
		a.printf("=== Floor %d ===\n", i)
		a.printf("Image Size: %.0fx%.0f px (%.2fx%.2f m)\n",
			s.Width, s.Height, s.Width*cfg.Build.UnitPerPx, s.Height*cfg.Build.UnitPerPx)
		a.printf("Boxes: %d (walls %d, doors %d, windows %d)\n", s.Boxes, s.Walls, s.Doors, s.Windows)
		if len(s.Rooms) > 0 {
			a.printf("Rooms: %s\n", strings.Join(s.Rooms, ", "))
		}
		if s.HasAverage {
			a.printf("Average Door: %.1f px\n", s.AverageDoor)
		}
		if s.Furniture > 0 {
			a.printf("Furniture: %d (not meshed)\n", s.Furniture)
		}
		a.printf("\n")
	}
	return nil
}

// RunBuild writes the BuildResult as JSON
func (a *App) RunBuild() error {
	result, _, err := a.build()
	if err != nil {
		return err
	}
	return a.writeJSON(a.outputPath("building.json", "", 0, false), result)
}

// RunGeoJSON writes a GeoJSON plan of the whole build, or one file per
// selected floor when --floor is set
func (a *App) RunGeoJSON() error {
	result, _, err := a.build()
	if err != nil {
		return err
	}

	if a.Floor < 0 {
		return a.writeJSON(a.outputPath("building.geojson", "", 0, false), mesh.ToFeatureCollection(result))
	}
	floors, err := a.floors(result)
	if err != nil {
		return err
	}
	return a.writeJSON(a.outputPath("building.geojson", "", floors[0], false),
		mesh.FloorFeatureCollection(result, floors[0]))
}

// RunRender draws every selected floor as raster and/or vector plans
func (a *App) RunRender() error {
	format := a.RenderFormat
	if format != "raster" && format != "vector" && format != "both" {
		return fmt.Errorf("invalid format: %s (must be raster, vector, or both)", format)
	}
	if format != "raster" && a.VectorFormat != "svg" && a.VectorFormat != "png" {
		return fmt.Errorf("invalid vector format: %s (must be svg or png)", a.VectorFormat)
	}

	result, cfg, err := a.build()
	if err != nil {
		return err
	}
	floors, err := a.floors(result)
	if err != nil {
		return err
	}
	many := len(floors) > 1

	for _, floor := range floors {
		if format == "raster" || format == "both" {
			renderer := mesh.NewPlanRenderer(result, floor)
			renderer.PixelsPerMeter = cfg.Output.PixelsPerMeter

			outputPath := a.outputPath("plan.png", ".png", floor, many)
			if err := renderer.SavePNG(outputPath); err != nil {
				return fmt.Errorf("rendering raster: %w", err)
			}
			a.printf("Created raster: %s\n", outputPath)
		}

		if format == "vector" || format == "both" {
			if err := a.renderVector(result, cfg, floor, many, format == "both"); err != nil {
				return err
			}
		}
	}

	a.printf("Done!\n")
	return nil
}

func (a *App) renderVector(result *mesh.BuildResult, cfg *mesh.Config, floor int, many, both bool) error {
	vectorRenderer := mesh.NewVectorRenderer(result, floor)
	vectorRenderer.Resolution = canvas.DPI(cfg.Output.Resolution)
	vectorRenderer.GridSpacing = cfg.Output.GridSpacing
	if a.GridSpacing > 0 {
		vectorRenderer.GridSpacing = a.GridSpacing
	}

	ext := "." + a.VectorFormat
	if both && a.VectorFormat == "png" {
		// keep clear of the raster output
		ext = ".vector.png"
	}
	outputPath := a.outputPath("plan.png", ext, floor, many)

	outFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating output file %s: %w", outputPath, err)
	}
	defer func() {
		if err := outFile.Close(); err != nil {
			log.Printf("Warning: error closing output file %s: %v", outputPath, err)
		}
	}()

	if a.VectorFormat == "svg" {
		err = vectorRenderer.RenderToSVG(outFile)
	} else {
		err = vectorRenderer.RenderToPNG(outFile)
	}
	if err != nil {
		return fmt.Errorf("rendering vector %s: %w", a.VectorFormat, err)
	}
	a.printf("Created vector %s: %s\n", strings.ToUpper(a.VectorFormat), outputPath)
	return nil
}
