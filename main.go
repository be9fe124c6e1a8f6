package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
)

// Version is set at build time via -ldflags
var Version = "dev"

// AppOptions holds the parsed command line
type AppOptions struct {
	ConfigFile   string
	InputFile    string
	OutputFile   string
	Summary      bool
	Build        bool
	GeoJSON      bool
	Render       bool
	RenderFormat string
	VectorFormat string
	GridSpacing  float64
	Floor        int
	Verbose      bool
}

// Runner is what run dispatches to; App implements it
type Runner interface {
	ApplyOptions(opts AppOptions)
	RunSummary() error
	RunBuild() error
	RunGeoJSON() error
	RunRender() error
}

func main() {
	if err := run(os.Args[1:], os.Stdout, NewApp(os.Stdout)); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("Error: %v", err)
	}
}

// run parses args and dispatches to the selected mode
func run(args []string, out io.Writer, app Runner) error {
	fs := flag.NewFlagSet("planmesh", flag.ContinueOnError)
	fs.SetOutput(out)

	var opts AppOptions
	fs.StringVar(&opts.ConfigFile, "config", "config.yaml", "Path to configuration file")
	fs.StringVar(&opts.InputFile, "input", "floors.json", "Detection records: array, {\"floors\":[...]} or a single floor")
	fs.StringVar(&opts.OutputFile, "output", "", "Output file (default depends on mode, - for stdout)")
	fs.BoolVar(&opts.Summary, "summary", false, "Print a per-floor summary of the detections and exit")
	fs.BoolVar(&opts.Build, "build", false, "Build the 3-D model and write it as JSON")
	fs.BoolVar(&opts.GeoJSON, "geojson", false, "Build and write a GeoJSON plan of the model")
	fs.BoolVar(&opts.Render, "render", false, "Build and render floor plans")
	fs.StringVar(&opts.RenderFormat, "format", "raster", "Render format: raster, vector, or both")
	fs.StringVar(&opts.VectorFormat, "vector-format", "svg", "Vector output format: svg or png")
	fs.Float64Var(&opts.GridSpacing, "grid-spacing", 0, "Grid line spacing in meters (default from config)")
	fs.IntVar(&opts.Floor, "floor", -1, "Only export this floor (default all)")
	fs.BoolVar(&opts.Verbose, "v", false, "Log per-floor build details")

	if err := fs.Parse(args); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "planmesh version: %s\n", Version)
	app.ApplyOptions(opts)

	switch {
	case opts.Summary:
		return app.RunSummary()
	case opts.Build:
		return app.RunBuild()
	case opts.GeoJSON:
		return app.RunGeoJSON()
	case opts.Render:
		return app.RunRender()
	}

	_, _ = fmt.Fprintln(out, "Use --summary to inspect detection records")
	_, _ = fmt.Fprintln(out, "Use --build to write the 3-D model as JSON")
	_, _ = fmt.Fprintln(out, "Use --geojson to write a GeoJSON plan")
	_, _ = fmt.Fprintln(out, "Use --render to draw floor plans (--format raster|vector|both)")
	_, _ = fmt.Fprintln(out, "\nConfiguration:")
	_, _ = fmt.Fprintln(out, "  config.yaml - build tolerances and output settings")
	return nil
}
