package mesh

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// PerimeterMode selects which rectangle the exterior perimeter follows
type PerimeterMode string

const (
	PerimeterFootprint PerimeterMode = "footprint" // tight bounds of merged walls
	PerimeterImage     PerimeterMode = "image"     // full source image
	PerimeterOff       PerimeterMode = "off"
)

// BuildConfig holds every tunable of the reconstruction. Lengths are meters.
// Start from DefaultBuildConfig: Normalize restores numeric defaults but
// cannot tell a false switch from an unset one.
type BuildConfig struct {
	UnitPerPx          float64       `yaml:"unitPerPx" json:"unitPerPx"`
	FloorHeight        float64       `yaml:"floorHeight" json:"floorHeight"`
	SlabThickness      float64       `yaml:"slabThickness" json:"slabThickness"`
	SillHeight         float64       `yaml:"sillHeight" json:"sillHeight"`
	WindowBand         float64       `yaml:"windowBand" json:"windowBand"`
	RoomColors         bool          `yaml:"roomColors" json:"roomColors"`
	PerimeterMode      PerimeterMode `yaml:"perimeterMode" json:"perimeterMode"`
	PerimeterThickness float64       `yaml:"perimeterThickness" json:"perimeterThickness"`
	PerimeterCoverage  float64       `yaml:"perimeterCoverage" json:"perimeterCoverage"` // legacy sparse-wall threshold
	OpenPad            float64       `yaml:"openPad" json:"openPad"`
	MinOpening         float64       `yaml:"minOpening" json:"minOpening"`
	SnapEndTol         float64       `yaml:"snapEndTol" json:"snapEndTol"`
	BarSnapTol         float64       `yaml:"barSnapTol" json:"barSnapTol"`
	DoorSnapFactor     float64       `yaml:"doorSnapFactor" json:"doorSnapFactor"`
	PosTol             float64       `yaml:"posTol" json:"posTol"`
	GapTol             float64       `yaml:"gapTol" json:"gapTol"`
	SyncFloors         bool          `yaml:"syncFloors" json:"syncFloors"`
	BaseFloor          int           `yaml:"baseFloor" json:"baseFloor"`
	UniformScale       bool          `yaml:"uniformScale" json:"uniformScale"`
	EstimateDoorWidth  bool          `yaml:"estimateDoorWidth" json:"estimateDoorWidth"`
}

// OutputConfig controls the plan exports written by the CLI
type OutputConfig struct {
	GridSpacing    float64 `yaml:"gridSpacing,omitempty" json:"gridSpacing,omitempty"`       // meters between grid lines (default 1)
	Resolution     float64 `yaml:"resolution,omitempty" json:"resolution,omitempty"`         // vector PNG DPI (default 150)
	PixelsPerMeter float64 `yaml:"pixelsPerMeter,omitempty" json:"pixelsPerMeter,omitempty"` // raster scale (default 50)
}

// Config represents the full configuration file
type Config struct {
	Build  BuildConfig  `yaml:"build" json:"build"`
	Output OutputConfig `yaml:"output" json:"output"`
}

// DefaultBuildConfig returns the reconstruction defaults
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{
		UnitPerPx:          0.01,
		FloorHeight:        3.0,
		SlabThickness:      0.15,
		SillHeight:         0.9,
		WindowBand:         1.2,
		RoomColors:         true,
		PerimeterMode:      PerimeterFootprint,
		PerimeterThickness: 0.2,
		PerimeterCoverage:  0.3,
		OpenPad:            0.05,
		MinOpening:         0.5,
		SnapEndTol:         0.3,
		BarSnapTol:         0.22,
		DoorSnapFactor:     0.7,
		PosTol:             0.10,
		GapTol:             0.35,
		SyncFloors:         true,
		BaseFloor:          0,
		UniformScale:       true,
	}
}

// DefaultOutputConfig returns the export defaults
func DefaultOutputConfig() OutputConfig {
	return OutputConfig{GridSpacing: 1.0, Resolution: 150, PixelsPerMeter: 50}
}

// DefaultConfig returns a full configuration with every default filled in
func DefaultConfig() Config {
	return Config{Build: DefaultBuildConfig(), Output: DefaultOutputConfig()}
}

// Normalize replaces out-of-range values with defaults so a build never has
// to fail on configuration. Zero is allowed for pads and tolerances.
func (c BuildConfig) Normalize() BuildConfig {
	d := DefaultBuildConfig()
	positive := func(v *float64, def float64) {
		if *v <= 0 {
			*v = def
		}
	}
	nonNegative := func(v *float64, def float64) {
		if *v < 0 {
			*v = def
		}
	}

	positive(&c.UnitPerPx, d.UnitPerPx)
	positive(&c.FloorHeight, d.FloorHeight)
	nonNegative(&c.SlabThickness, d.SlabThickness)
	if c.SlabThickness >= c.FloorHeight {
		c.SlabThickness = d.SlabThickness
		if c.SlabThickness >= c.FloorHeight {
			c.SlabThickness = c.FloorHeight / 10
		}
	}
	nonNegative(&c.SillHeight, d.SillHeight)
	nonNegative(&c.WindowBand, d.WindowBand)
	positive(&c.PerimeterThickness, d.PerimeterThickness)
	nonNegative(&c.PerimeterCoverage, d.PerimeterCoverage)
	nonNegative(&c.OpenPad, d.OpenPad)
	nonNegative(&c.MinOpening, d.MinOpening)
	nonNegative(&c.SnapEndTol, d.SnapEndTol)
	nonNegative(&c.BarSnapTol, d.BarSnapTol)
	positive(&c.DoorSnapFactor, d.DoorSnapFactor)
	nonNegative(&c.PosTol, d.PosTol)
	nonNegative(&c.GapTol, d.GapTol)

	switch PerimeterMode(strings.ToLower(string(c.PerimeterMode))) {
	case PerimeterFootprint, "":
		c.PerimeterMode = PerimeterFootprint
	case PerimeterImage:
		c.PerimeterMode = PerimeterImage
	case PerimeterOff:
		c.PerimeterMode = PerimeterOff
	default:
		c.PerimeterMode = d.PerimeterMode
	}
	if c.BaseFloor < 0 {
		c.BaseFloor = 0
	}
	return c
}

// WallHeight is the clear height of walls between floor and slab
func (c BuildConfig) WallHeight() float64 {
	return c.FloorHeight - c.SlabThickness
}

// LoadConfig loads the configuration from a YAML file. Keys missing from the
// file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	// Validate fields a typo would silently change
	switch PerimeterMode(strings.ToLower(string(config.Build.PerimeterMode))) {
	case PerimeterFootprint, PerimeterImage, PerimeterOff:
	default:
		return nil, fmt.Errorf("build.perimeterMode must be footprint, image or off, got %q", config.Build.PerimeterMode)
	}
	if config.Build.UnitPerPx <= 0 {
		return nil, fmt.Errorf("build.unitPerPx must be positive")
	}
	if config.Build.FloorHeight <= config.Build.SlabThickness {
		return nil, fmt.Errorf("build.floorHeight must exceed build.slabThickness")
	}
	if config.Build.BaseFloor < 0 {
		return nil, fmt.Errorf("build.baseFloor must not be negative")
	}

	config.Build = config.Build.Normalize()
	if config.Output.GridSpacing <= 0 {
		config.Output.GridSpacing = DefaultOutputConfig().GridSpacing
	}
	if config.Output.Resolution <= 0 {
		config.Output.Resolution = DefaultOutputConfig().Resolution
	}
	if config.Output.PixelsPerMeter <= 0 {
		config.Output.PixelsPerMeter = DefaultOutputConfig().PixelsPerMeter
	}

	return &config, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling config YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
