package layout

import (
	"fmt"
	gomath "math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Mode selects how instances are placed on the grid.
type Mode string

const (
	ModeSerial    Mode = "serial"
	ModeStaggered Mode = "staggered"
)

// Axis is the coordinate that staggering shifts.
type Axis string

const (
	AxisX Axis = "x"
	AxisY Axis = "y"
)

// Driver is the grid index whose parity triggers the stagger shift.
type Driver string

const (
	DriverRow    Driver = "row"
	DriverColumn Driver = "column"
)

// DefaultStaggerFraction shifts odd rows or columns by half a spacing.
const DefaultStaggerFraction = 0.5

// Stagger configures the shift applied in staggered mode.
type Stagger struct {
	Axis     Axis    `yaml:"axis"`
	Driver   Driver  `yaml:"driver"`
	Fraction float64 `yaml:"fraction"`
}

// Grid describes a rows x cols lattice of placements.
type Grid struct {
	Rows     int     `yaml:"rows"`
	Cols     int     `yaml:"cols"`
	SpacingX float64 `yaml:"spacing_x"`
	SpacingY float64 `yaml:"spacing_y"`
	ZOffset  float64 `yaml:"z_offset"`
	Mode     Mode    `yaml:"mode,omitempty"`
	Stagger  Stagger `yaml:"stagger"`
}

// ParseMode converts a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeSerial, ModeStaggered:
		return m, nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidGrid, s)
	}
}

// Validate checks the grid dimensions and stagger settings.
func (g Grid) Validate() error {
	if g.Rows < 1 || g.Cols < 1 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidGrid, g.Rows, g.Cols)
	}
	for _, v := range []float64{g.SpacingX, g.SpacingY, g.ZOffset} {
		if gomath.IsNaN(v) || gomath.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite spacing or offset", ErrInvalidGrid)
		}
	}

	switch g.Mode {
	case ModeSerial:
		return nil
	case ModeStaggered:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidGrid, g.Mode)
	}

	if g.Stagger.Axis != AxisX && g.Stagger.Axis != AxisY {
		return fmt.Errorf("%w: unknown stagger axis %q", ErrInvalidGrid, g.Stagger.Axis)
	}
	if g.Stagger.Driver != DriverRow && g.Stagger.Driver != DriverColumn {
		return fmt.Errorf("%w: unknown stagger driver %q", ErrInvalidGrid, g.Stagger.Driver)
	}
	if gomath.IsNaN(g.Stagger.Fraction) || gomath.IsInf(g.Stagger.Fraction, 0) {
		return fmt.Errorf("%w: non-finite stagger fraction", ErrInvalidGrid)
	}
	return nil
}

// Count returns the number of placements.
func (g Grid) Count() int {
	return g.Rows * g.Cols
}

// Offset returns the translation of the instance at (row, col):
// (col*SpacingX, row*SpacingY, ZOffset), plus the stagger shift on odd
// driver indices in staggered mode.
func (g Grid) Offset(row, col int) r3.Vec {
	off := r3.Vec{
		X: float64(col) * g.SpacingX,
		Y: float64(row) * g.SpacingY,
		Z: g.ZOffset,
	}
	if g.Mode != ModeStaggered {
		return off
	}

	idx := col
	if g.Stagger.Driver == DriverRow {
		idx = row
	}
	if idx%2 == 0 {
		return off
	}

	switch g.Stagger.Axis {
	case AxisX:
		off.X += g.Stagger.Fraction * g.SpacingX
	case AxisY:
		off.Y += g.Stagger.Fraction * g.SpacingY
	}
	return off
}

// WithMode returns a copy of g using mode.
func (g Grid) WithMode(mode Mode) Grid {
	g.Mode = mode
	return g
}
