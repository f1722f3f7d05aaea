package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/meshgrid/internal/logger"
	"github.com/Faultbox/meshgrid/pkg/layout"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Validate checks every section and returns the first problem found.
func (c *Config) Validate() error {
	return c.validateSections(sectionOrder...)
}

// ValidateCommand checks only what command uses: its own section plus the
// export and logging settings. Commands without a section of their own are
// checked like Validate.
func (c *Config) ValidateCommand(command string) error {
	switch command {
	case CommandRescale, CommandArrange, CommandCylinders, CommandTranslate:
		return c.validateSections(command, "export", "logging")
	default:
		return c.Validate()
	}
}

var sectionOrder = []string{
	CommandRescale, CommandArrange, CommandCylinders, CommandTranslate, "export", "logging",
}

func (c *Config) sections() map[string]func() error {
	return map[string]func() error{
		CommandRescale:   c.Rescale.validate,
		CommandArrange:   c.Arrange.validate,
		CommandCylinders: c.Cylinders.validate,
		CommandTranslate: c.Translate.validate,
		"export":         c.Export.validate,
		"logging":        c.Logging.validate,
	}
}

func (c *Config) validateSections(names ...string) error {
	checks := c.sections()
	for _, name := range names {
		if err := checks[name](); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, name, err)
		}
	}
	return nil
}

func (b Box) validate() error {
	for i := range b.Min {
		if !(b.Max[i] >= b.Min[i]) {
			return fmt.Errorf("box max %v below min %v", b.Max, b.Min)
		}
	}
	return nil
}

func (r RescaleConfig) validate() error {
	if r.Input == "" || r.Output == "" {
		return errors.New("input and output are required")
	}
	return r.Box.validate()
}

func (a ArrangeConfig) validate() error {
	if a.Input == "" {
		return errors.New("input is required")
	}
	if err := a.Box.validate(); err != nil {
		return err
	}
	if !(a.Simplify > 0) || a.Simplify > 1 {
		return fmt.Errorf("simplify must be in (0, 1], got %g", a.Simplify)
	}
	return validateOutputs(a.Grid, a.Outputs)
}

func (c CylinderConfig) validate() error {
	if !(c.Radius > 0) || !(c.Height > 0) {
		return fmt.Errorf("radius and height must be positive, got %g and %g", c.Radius, c.Height)
	}
	if c.Segments < 3 {
		return fmt.Errorf("segments must be at least 3, got %d", c.Segments)
	}
	return validateOutputs(c.Grid, c.Outputs)
}

func (t TranslateConfig) validate() error {
	if len(t.Jobs) == 0 {
		return errors.New("no jobs")
	}
	for i, job := range t.Jobs {
		if job.Input == "" || job.Output == "" {
			return fmt.Errorf("job %d: input and output are required", i)
		}
	}
	return nil
}

func (e ExportConfig) validate() error {
	_, err := e.OutputFormat()
	return err
}

func (l LoggingConfig) validate() error {
	_, err := logger.ParseLevel(l.Level)
	return err
}

func validateOutputs(grid layout.Grid, outputs []OutputConfig) error {
	if len(outputs) == 0 {
		return errors.New("no outputs")
	}
	for _, out := range outputs {
		if out.Path == "" {
			return fmt.Errorf("output for mode %q has no path", out.Mode)
		}
		if err := grid.WithMode(out.Mode).Validate(); err != nil {
			return err
		}
	}
	return nil
}
