package config

import (
	"errors"
	"flag"
	"fmt"

	"github.com/Faultbox/meshgrid/pkg/layout"
)

// Command names understood by NewFlags.
const (
	CommandRescale   = "rescale"
	CommandArrange   = "arrange"
	CommandCylinders = "cylinders"
	CommandTranslate = "translate"
	CommandConfig    = "config"
)

// Flags holds the command-line overrides of one subcommand. Only flags that
// were given on the command line override the config.
type Flags struct {
	Command string

	Config  string
	Debug   bool
	LogFile string
	Direct  bool
	Format  string

	Input  string
	Output string
	BoxMin Vec3
	BoxMax Vec3

	Rows            int
	Cols            int
	SpacingX        float64
	SpacingY        float64
	ZOffset         float64
	Mode            string
	StaggerAxis     string
	StaggerDriver   string
	StaggerFraction float64
	Simplify        float64

	Radius   float64
	Height   float64
	Segments int

	Offset Vec3

	fs  *flag.FlagSet
	set map[string]bool
}

// Set parses "x,y,z" into v.
func (v *Vec3) Set(s string) error {
	parsed, err := ParseVec3(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// NewFlags registers the flags of command on a new flag set.
func NewFlags(command string) *Flags {
	f := &Flags{
		Command: command,
		fs:      flag.NewFlagSet(command, flag.ContinueOnError),
		set:     make(map[string]bool),
	}
	fs := f.fs

	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.LogFile, "log-file", "", "Also write logs to this file")
	if command == CommandConfig {
		return f
	}
	fs.BoolVar(&f.Direct, "direct", false, "Write output files in place instead of through a temp file")
	fs.StringVar(&f.Format, "format", "", "Output format (stl, obj or glb), overriding the file extension")

	switch command {
	case CommandRescale:
		f.bindIO()
		f.bindBox()
	case CommandArrange:
		f.bindIO()
		f.bindBox()
		f.bindGrid()
		fs.Float64Var(&f.Simplify, "simplify", 0, "Keep this fraction of the source faces before instancing")
	case CommandCylinders:
		fs.StringVar(&f.Output, "o", "", "Output file (requires -mode)")
		f.bindGrid()
		fs.Float64Var(&f.Radius, "radius", 0, "Cylinder radius")
		fs.Float64Var(&f.Height, "height", 0, "Cylinder height")
		fs.IntVar(&f.Segments, "segments", 0, "Radial segments per cylinder")
	case CommandTranslate:
		f.bindIO()
		fs.Var(&f.Offset, "offset", "Translation as x,y,z")
	}
	return f
}

func (f *Flags) bindIO() {
	f.fs.StringVar(&f.Input, "i", "", "Input mesh file")
	f.fs.StringVar(&f.Output, "o", "", "Output mesh file")
}

func (f *Flags) bindBox() {
	f.fs.Var(&f.BoxMin, "box-min", "Target box minimum corner as x,y,z")
	f.fs.Var(&f.BoxMax, "box-max", "Target box maximum corner as x,y,z")
}

func (f *Flags) bindGrid() {
	fs := f.fs
	fs.IntVar(&f.Rows, "rows", 0, "Grid rows")
	fs.IntVar(&f.Cols, "cols", 0, "Grid columns")
	fs.Float64Var(&f.SpacingX, "spacing-x", 0, "Spacing between columns")
	fs.Float64Var(&f.SpacingY, "spacing-y", 0, "Spacing between rows")
	fs.Float64Var(&f.ZOffset, "z-offset", 0, "Z offset of every instance")
	fs.StringVar(&f.Mode, "mode", "", "Only write this layout (serial or staggered)")
	fs.StringVar(&f.StaggerAxis, "stagger-axis", "", "Axis shifted in staggered mode (x or y)")
	fs.StringVar(&f.StaggerDriver, "stagger-driver", "", "Index whose parity triggers the shift (row or column)")
	fs.Float64Var(&f.StaggerFraction, "stagger-fraction", 0, "Shift as a fraction of the spacing")
}

// FlagSet returns the underlying flag set, for usage output.
func (f *Flags) FlagSet() *flag.FlagSet {
	return f.fs
}

// Parse parses args and records which flags were given.
func (f *Flags) Parse(args []string) error {
	if err := f.fs.Parse(args); err != nil {
		return err
	}
	f.fs.Visit(func(fl *flag.Flag) {
		f.set[fl.Name] = true
	})
	return nil
}

// IsSet reports whether name was given on the command line.
func (f *Flags) IsSet(name string) bool {
	return f.set[name]
}

// Args returns the positional arguments left after parsing.
func (f *Flags) Args() []string {
	return f.fs.Args()
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config, f *Flags) error {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.IsSet("log-file") {
		cfg.Logging.LogFile = f.LogFile
	}
	if f.Direct {
		cfg.Export.Atomic = false
	}
	f.applyString("format", &cfg.Export.Format, f.Format)

	switch f.Command {
	case CommandRescale:
		f.applyString("i", &cfg.Rescale.Input, f.Input)
		f.applyString("o", &cfg.Rescale.Output, f.Output)
		f.applyBox(&cfg.Rescale.Box)

	case CommandArrange:
		f.applyString("i", &cfg.Arrange.Input, f.Input)
		f.applyBox(&cfg.Arrange.Box)
		f.applyGrid(&cfg.Arrange.Grid)
		if f.IsSet("simplify") {
			cfg.Arrange.Simplify = f.Simplify
		}
		outputs, err := f.selectOutputs(cfg.Arrange.Outputs)
		if err != nil {
			return err
		}
		cfg.Arrange.Outputs = outputs

	case CommandCylinders:
		if f.IsSet("radius") {
			cfg.Cylinders.Radius = f.Radius
		}
		if f.IsSet("height") {
			cfg.Cylinders.Height = f.Height
			// Keep the cylinders standing on z = 0 unless told otherwise
			if !f.IsSet("z-offset") {
				cfg.Cylinders.Grid.ZOffset = f.Height / 2
			}
		}
		if f.IsSet("segments") {
			cfg.Cylinders.Segments = f.Segments
		}
		f.applyGrid(&cfg.Cylinders.Grid)
		outputs, err := f.selectOutputs(cfg.Cylinders.Outputs)
		if err != nil {
			return err
		}
		cfg.Cylinders.Outputs = outputs

	case CommandTranslate:
		if f.IsSet("offset") {
			cfg.Translate.Offset = f.Offset
		}
		if f.IsSet("i") != f.IsSet("o") {
			return errors.New("-i and -o must be given together")
		}
		if f.IsSet("i") {
			cfg.Translate.Jobs = []TranslateJob{{Input: f.Input, Output: f.Output}}
		}
	}
	return nil
}

func (f *Flags) applyString(name string, dst *string, value string) {
	if f.IsSet(name) {
		*dst = value
	}
}

func (f *Flags) applyBox(box *Box) {
	if f.IsSet("box-min") {
		box.Min = f.BoxMin
	}
	if f.IsSet("box-max") {
		box.Max = f.BoxMax
	}
}

func (f *Flags) applyGrid(g *layout.Grid) {
	if f.IsSet("rows") {
		g.Rows = f.Rows
	}
	if f.IsSet("cols") {
		g.Cols = f.Cols
	}
	if f.IsSet("spacing-x") {
		g.SpacingX = f.SpacingX
	}
	if f.IsSet("spacing-y") {
		g.SpacingY = f.SpacingY
	}
	if f.IsSet("z-offset") {
		g.ZOffset = f.ZOffset
	}
	if f.IsSet("stagger-axis") {
		g.Stagger.Axis = layout.Axis(f.StaggerAxis)
	}
	if f.IsSet("stagger-driver") {
		g.Stagger.Driver = layout.Driver(f.StaggerDriver)
	}
	if f.IsSet("stagger-fraction") {
		g.Stagger.Fraction = f.StaggerFraction
	}
}

// selectOutputs narrows outputs to the mode given by -mode, using -o as the
// path when set.
func (f *Flags) selectOutputs(outputs []OutputConfig) ([]OutputConfig, error) {
	if !f.IsSet("mode") {
		if f.IsSet("o") {
			return nil, errors.New("-o requires -mode")
		}
		return outputs, nil
	}

	mode, err := layout.ParseMode(f.Mode)
	if err != nil {
		return nil, err
	}
	if f.IsSet("o") {
		return []OutputConfig{{Mode: mode, Path: f.Output}}, nil
	}
	for _, out := range outputs {
		if out.Mode == mode {
			return []OutputConfig{out}, nil
		}
	}
	return nil, fmt.Errorf("no %s output configured, pass -o", mode)
}
