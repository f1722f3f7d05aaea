// Package config handles meshgrid configuration loading and management.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/meshgrid/pkg/formats"
	"github.com/Faultbox/meshgrid/pkg/layout"
	"github.com/Faultbox/meshgrid/pkg/mesh"
)

// Config holds the settings of every job.
type Config struct {
	Rescale   RescaleConfig   `yaml:"rescale"`
	Arrange   ArrangeConfig   `yaml:"arrange"`
	Cylinders CylinderConfig  `yaml:"cylinders"`
	Translate TranslateConfig `yaml:"translate"`
	Assets    AssetsConfig    `yaml:"assets"`
	Export    ExportConfig    `yaml:"export"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// Vec3 is an x, y, z triple. In YAML it is written as [x, y, z], on the
// command line as x,y,z.
type Vec3 [3]float64

// ParseVec3 parses "x,y,z".
func ParseVec3(s string) (Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return Vec3{}, fmt.Errorf("expected x,y,z, got %q", s)
	}
	var v Vec3
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Vec3{}, fmt.Errorf("parsing %q: %w", s, err)
		}
		v[i] = f
	}
	return v, nil
}

// String formats v as x,y,z.
func (v Vec3) String() string {
	return strconv.FormatFloat(v[0], 'g', -1, 64) + "," +
		strconv.FormatFloat(v[1], 'g', -1, 64) + "," +
		strconv.FormatFloat(v[2], 'g', -1, 64)
}

// Vec converts v to an r3 vector.
func (v Vec3) Vec() r3.Vec {
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

// Box is a target bounding box.
type Box struct {
	Min Vec3 `yaml:"min"`
	Max Vec3 `yaml:"max"`
}

// Bounds converts b to mesh bounds.
func (b Box) Bounds() mesh.Bounds {
	return mesh.NewBounds(b.Min.Vec(), b.Max.Vec())
}

// OutputConfig names the file written for one grid mode.
type OutputConfig struct {
	Mode layout.Mode `yaml:"mode"`
	Path string      `yaml:"path"`
}

// RescaleConfig fits a single mesh into a box.
type RescaleConfig struct {
	Input   string `yaml:"input"`
	Output  string `yaml:"output"`
	Box     Box    `yaml:"box"`
	Normals bool   `yaml:"normals"`
}

// ArrangeConfig fits a loaded mesh into a box and lays out copies of it.
type ArrangeConfig struct {
	Input        string         `yaml:"input"`
	Box          Box            `yaml:"box"`
	Grid         layout.Grid    `yaml:"grid"`
	Outputs      []OutputConfig `yaml:"outputs"`
	Normals      bool           `yaml:"normals"`
	Simplify     float64        `yaml:"simplify"`      // Face ratio kept before instancing, 1 disables
	BoundsOutput string         `yaml:"bounds_output"` // Optional preview of the target box
}

// CylinderConfig lays out generated cylinders.
type CylinderConfig struct {
	Radius   float64        `yaml:"radius"`
	Height   float64        `yaml:"height"`
	Segments int            `yaml:"segments"`
	Grid     layout.Grid    `yaml:"grid"`
	Outputs  []OutputConfig `yaml:"outputs"`
	Normals  bool           `yaml:"normals"`
}

// TranslateJob is one input/output pair moved by the shared offset.
type TranslateJob struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
}

// TranslateConfig offsets meshes by a fixed vector.
type TranslateConfig struct {
	Offset  Vec3           `yaml:"offset"`
	Jobs    []TranslateJob `yaml:"jobs"`
	Normals bool           `yaml:"normals"`
}

// AssetsConfig controls where relative input paths are looked up.
type AssetsConfig struct {
	SearchPaths []string `yaml:"search_paths"` // Later entries take priority
}

// ExportConfig holds settings shared by every writer.
type ExportConfig struct {
	Atomic bool   `yaml:"atomic"` // Write through a temp file and rename
	Format string `yaml:"format"` // Empty picks the format from each output path
}

// OutputFormat returns the configured output format. FormatUnknown means
// the format follows the file extension.
func (e ExportConfig) OutputFormat() (formats.Format, error) {
	f, err := formats.ParseFormat(e.Format)
	if err != nil {
		return formats.FormatUnknown, err
	}
	if f != formats.FormatUnknown && !f.CanWrite() {
		return formats.FormatUnknown, fmt.Errorf("%w: cannot write %s", formats.ErrUnsupportedFormat, f)
	}
	return f, nil
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// branchingBox is the volume each coral model is fitted into.
var branchingBox = Box{
	Min: Vec3{0, 0, -0.002},
	Max: Vec3{0.04, 0.04, 0.035},
}

// Default returns a Config reproducing the reference coral layouts.
func Default() *Config {
	const (
		spacing        = 0.06
		cylinderHeight = 0.035
	)

	return &Config{
		Rescale: RescaleConfig{
			Input:   "obj/Madrepora_Formosa_wrap400.obj",
			Output:  "rescaled.obj",
			Box:     branchingBox,
			Normals: true,
		},
		Arrange: ArrangeConfig{
			Input: "obj/Madrepora_Formosa_wrap400.obj",
			Box:   branchingBox,
			Grid: layout.Grid{
				Rows:     12,
				Cols:     12,
				SpacingX: spacing,
				SpacingY: spacing,
				Stagger: layout.Stagger{
					Axis:     layout.AxisY,
					Driver:   layout.DriverColumn,
					Fraction: layout.DefaultStaggerFraction,
				},
			},
			Outputs: []OutputConfig{
				{Mode: layout.ModeSerial, Path: "branching_serial.obj"},
				{Mode: layout.ModeStaggered, Path: "branching_staggered.obj"},
			},
			Normals:  true,
			Simplify: 1,
		},
		Cylinders: CylinderConfig{
			Radius:   0.02,
			Height:   cylinderHeight,
			Segments: mesh.DefaultCylinderSegments,
			Grid: layout.Grid{
				Rows:     12,
				Cols:     12,
				SpacingX: spacing,
				SpacingY: spacing,
				ZOffset:  cylinderHeight / 2,
				Stagger: layout.Stagger{
					Axis:     layout.AxisX,
					Driver:   layout.DriverRow,
					Fraction: layout.DefaultStaggerFraction,
				},
			},
			Outputs: []OutputConfig{
				{Mode: layout.ModeSerial, Path: "serial_cylinders.stl"},
				{Mode: layout.ModeStaggered, Path: "staggered_cylinders.stl"},
			},
		},
		Translate: TranslateConfig{
			Offset: Vec3{0.06, 0.08, -0.002},
			Jobs: []TranslateJob{
				{Input: "shrinkwrap/serial.obj", Output: "cylinder_serial.obj"},
				{Input: "shrinkwrap/staggered.obj", Output: "cylinder_staggered.obj"},
			},
			Normals: true,
		},
		Assets: AssetsConfig{
			SearchPaths: []string{},
		},
		Export: ExportConfig{
			Atomic: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
