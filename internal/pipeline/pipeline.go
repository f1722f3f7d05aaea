// Package pipeline runs the meshgrid batch jobs: load, transform, arrange
// and export.
package pipeline

import (
	"fmt"
	gomath "math"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/meshgrid/internal/assets"
	"github.com/Faultbox/meshgrid/internal/config"
	"github.com/Faultbox/meshgrid/internal/logger"
	"github.com/Faultbox/meshgrid/pkg/formats"
	"github.com/Faultbox/meshgrid/pkg/layout"
	"github.com/Faultbox/meshgrid/pkg/mesh"
	"github.com/Faultbox/meshgrid/pkg/scene"
)

// Output describes one written file.
type Output struct {
	Path      string
	Mode      layout.Mode // Empty for single-mesh jobs
	Instances int
	Vertices  int
	Faces     int
}

// Runner executes jobs against a loaded config.
type Runner struct {
	cfg     *config.Config
	library *assets.Library
}

// NewRunner creates a runner for cfg.
func NewRunner(cfg *config.Config) *Runner {
	return &Runner{
		cfg:     cfg,
		library: assets.NewLibrary(cfg.Assets.SearchPaths...),
	}
}

func (r *Runner) save(path string, m *mesh.Mesh, normals bool) error {
	format, err := r.cfg.Export.OutputFormat()
	if err != nil {
		return err
	}

	start := time.Now()
	err = formats.Save(path, m, formats.SaveOptions{
		Format:  format,
		Normals: normals,
		Atomic:  r.cfg.Export.Atomic,
	})
	if err != nil {
		return err
	}
	logger.Info("wrote mesh",
		zap.String("path", path),
		zap.Int("vertices", m.VertexCount()),
		zap.Int("faces", m.FaceCount()),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

func (r *Runner) load(path string) (*mesh.Mesh, error) {
	m, err := r.library.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded mesh",
		zap.String("path", path),
		zap.Int("vertices", m.VertexCount()),
		zap.Int("faces", m.FaceCount()),
	)
	return m, nil
}

func (r *Runner) logCacheStats() {
	hits, misses := r.library.Stats()
	logger.Debug("mesh cache", zap.Int("hits", hits), zap.Int("misses", misses))
}

// Rescale fits the configured mesh into the target box and writes it.
func (r *Runner) Rescale() (Output, error) {
	job := r.cfg.Rescale
	defer r.logCacheStats()

	src, err := r.load(job.Input)
	if err != nil {
		return Output{}, err
	}
	fitted, fit, err := layout.FitToBox(src, job.Box.Bounds())
	if err != nil {
		return Output{}, fmt.Errorf("rescaling %s: %w", job.Input, err)
	}
	logger.Debug("fitted mesh", zap.Float64("scale", fit.Scale), zap.Stringer("translation", vecString(fit.Translation)))

	if err := r.save(job.Output, fitted, job.Normals); err != nil {
		return Output{}, err
	}
	return Output{Path: job.Output, Instances: 1, Vertices: fitted.VertexCount(), Faces: fitted.FaceCount()}, nil
}

// Arrange fits the configured mesh into the target box and writes one
// grid per configured output.
func (r *Runner) Arrange() ([]Output, error) {
	job := r.cfg.Arrange
	defer r.logCacheStats()

	src, err := r.load(job.Input)
	if err != nil {
		return nil, err
	}
	if job.Simplify < 1 {
		before := src.FaceCount()
		src, err = mesh.Simplify(src, job.Simplify)
		if err != nil {
			return nil, err
		}
		logger.Info("simplified mesh", zap.Int("before", before), zap.Int("after", src.FaceCount()))
	}

	box := job.Box.Bounds()
	fitted, fit, err := layout.FitToBox(src, box)
	if err != nil {
		return nil, fmt.Errorf("rescaling %s: %w", job.Input, err)
	}
	logger.Debug("fitted mesh", zap.Float64("scale", fit.Scale), zap.Stringer("translation", vecString(fit.Translation)))

	if job.BoundsOutput != "" {
		preview, err := mesh.BoxMesh(box)
		if err != nil {
			return nil, err
		}
		if err := r.save(job.BoundsOutput, preview, false); err != nil {
			return nil, err
		}
	}

	return r.writeGrids(layout.MeshShape{Mesh: fitted}, job.Grid, job.Outputs, job.Normals)
}

// Cylinders lays out generated cylinders and writes one grid per
// configured output.
func (r *Runner) Cylinders() ([]Output, error) {
	job := r.cfg.Cylinders
	shape := layout.CylinderShape{
		Radius:   job.Radius,
		Height:   job.Height,
		Segments: job.Segments,
	}
	return r.writeGrids(shape, job.Grid, job.Outputs, job.Normals)
}

func (r *Runner) writeGrids(shape layout.Shape, grid layout.Grid, outputs []config.OutputConfig, normals bool) ([]Output, error) {
	var written []Output
	for _, out := range outputs {
		g := grid.WithMode(out.Mode)
		name := sceneName(out.Path)

		logger.Info("arranging grid",
			zap.String("mode", string(out.Mode)),
			zap.Int("rows", g.Rows),
			zap.Int("cols", g.Cols),
		)
		s, err := layout.ArrangeNamed(name, shape, g)
		if err != nil {
			return written, fmt.Errorf("arranging %s: %w", out.Path, err)
		}
		vertices, faces := s.Stats()
		bounds := s.Bounds()
		logger.Debug("arranged scene",
			zap.Int("instances", s.Len()),
			zap.Int("vertices", vertices),
			zap.Int("faces", faces),
			zap.Stringer("min", vecString(bounds.Min)),
			zap.Stringer("max", vecString(bounds.Max)),
		)
		if overlaps(s, g) {
			logger.Warn("grid spacing is smaller than the instance footprint, instances overlap",
				zap.String("path", out.Path),
				zap.Float64("spacing_x", g.SpacingX),
				zap.Float64("spacing_y", g.SpacingY),
			)
		}

		combined, err := s.Flatten(name)
		if err != nil {
			return written, err
		}
		if err := r.save(out.Path, combined, normals); err != nil {
			return written, err
		}

		written = append(written, Output{
			Path:      out.Path,
			Mode:      out.Mode,
			Instances: s.Len(),
			Vertices:  combined.VertexCount(),
			Faces:     combined.FaceCount(),
		})
	}
	return written, nil
}

// Translate moves every configured input by the shared offset.
func (r *Runner) Translate() ([]Output, error) {
	job := r.cfg.Translate
	offset := job.Offset.Vec()
	defer r.logCacheStats()

	var written []Output
	for _, tj := range job.Jobs {
		m, err := r.load(tj.Input)
		if err != nil {
			return written, err
		}
		m.Translate(offset)
		logger.Debug("translated mesh", zap.String("path", tj.Input), zap.Stringer("offset", job.Offset))

		if err := r.save(tj.Output, m, job.Normals); err != nil {
			return written, err
		}
		written = append(written, Output{Path: tj.Output, Instances: 1, Vertices: m.VertexCount(), Faces: m.FaceCount()})
	}
	return written, nil
}

// overlaps reports whether neighbouring instances of s intersect.
func overlaps(s *scene.Scene, g layout.Grid) bool {
	if s.Len() == 0 {
		return false
	}
	size := s.Instances[0].Mesh.Bounds().Size()
	return (g.Cols > 1 && gomath.Abs(g.SpacingX) < size.X) ||
		(g.Rows > 1 && gomath.Abs(g.SpacingY) < size.Y)
}

// sceneName derives instance names from an output path.
func sceneName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
