package layout

import (
	"go.uber.org/zap"

	"github.com/Faultbox/meshgrid/internal/logger"
	"github.com/Faultbox/meshgrid/pkg/scene"
)

// Arrange places grid.Count() copies of shape in row-major order, each
// translated by grid.Offset. Overlapping placements are not detected.
func Arrange(shape Shape, grid Grid) (*scene.Scene, error) {
	return ArrangeNamed("instance", shape, grid)
}

// ArrangeNamed is Arrange with a scene name used for instance names.
func ArrangeNamed(name string, shape Shape, grid Grid) (*scene.Scene, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}

	s := scene.New(name)
	s.Instances = make([]scene.Instance, 0, grid.Count())
	for i := 0; i < grid.Rows; i++ {
		for j := 0; j < grid.Cols; j++ {
			logger.Debug("generating instance", zap.Int("row", i), zap.Int("col", j))

			m, err := shape.Copy()
			if err != nil {
				return nil, err
			}
			off := grid.Offset(i, j)
			m.Translate(off)

			s.Add(scene.Instance{Row: i, Col: j, Offset: off, Mesh: m})
		}
	}
	return s, nil
}
