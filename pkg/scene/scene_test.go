package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/meshgrid/pkg/mesh"
)

func triangle(offset r3.Vec) *mesh.Mesh {
	m := mesh.New("tri",
		[]r3.Vec{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}},
		[][3]uint32{{0, 1, 2}},
	)
	return m.Translate(offset)
}

func TestAddNamesInstances(t *testing.T) {
	s := New("grid")
	s.Add(Instance{Row: 1, Col: 2, Mesh: triangle(r3.Vec{})})
	s.Add(Instance{Name: "custom", Mesh: triangle(r3.Vec{})})

	require.Equal(t, 2, s.Len())
	assert.Equal(t, "grid_r1_c2", s.Instances[0].Name)
	assert.Equal(t, "custom", s.Instances[1].Name)
}

func TestFlattenOffsetsIndices(t *testing.T) {
	s := New("grid")
	s.Add(Instance{Row: 0, Col: 0, Mesh: triangle(r3.Vec{})})
	s.Add(Instance{Row: 0, Col: 1, Offset: r3.Vec{X: 2}, Mesh: triangle(r3.Vec{X: 2})})
	s.Add(Instance{Row: 1, Col: 0, Offset: r3.Vec{Y: 2}, Mesh: triangle(r3.Vec{Y: 2})})

	m, err := s.Flatten("combined")
	require.NoError(t, err)
	require.NoError(t, m.Validate())

	assert.Equal(t, "combined", m.Name)
	assert.Equal(t, 9, m.VertexCount())
	assert.Equal(t, [][3]uint32{{0, 1, 2}, {3, 4, 5}, {6, 7, 8}}, m.Faces)
	assert.Equal(t, []mesh.Group{
		{Name: "grid_r0_c0", FaceStart: 0, FaceCount: 1},
		{Name: "grid_r0_c1", FaceStart: 1, FaceCount: 1},
		{Name: "grid_r1_c0", FaceStart: 2, FaceCount: 1},
	}, m.Groups)
	assert.Equal(t, r3.Vec{X: 3, Y: 0, Z: 0}, m.Vertices[4])

	v, f := s.Stats()
	assert.Equal(t, m.VertexCount(), v)
	assert.Equal(t, m.FaceCount(), f)
}

func TestFlattenDropsSourceGroups(t *testing.T) {
	src := triangle(r3.Vec{})
	src.Groups = []mesh.Group{{Name: "branch", FaceStart: 0, FaceCount: 1}}

	s := New("g")
	s.Add(Instance{Mesh: src})
	m, err := s.Flatten("out")
	require.NoError(t, err)

	assert.Equal(t, []mesh.Group{{Name: "g_r0_c0", FaceStart: 0, FaceCount: 1}}, m.Groups)
	// The instance mesh itself is untouched.
	assert.Equal(t, "tri", s.Instances[0].Mesh.Name)
	assert.Len(t, s.Instances[0].Mesh.Groups, 1)
}

func TestFlattenNormals(t *testing.T) {
	withNormals := triangle(r3.Vec{}).ComputeNormals()

	s := New("n")
	s.Add(Instance{Mesh: withNormals})
	s.Add(Instance{Col: 1, Mesh: withNormals.Clone()})
	m, err := s.Flatten("n")
	require.NoError(t, err)
	assert.True(t, m.HasNormals())

	s.Add(Instance{Col: 2, Mesh: triangle(r3.Vec{})})
	m, err = s.Flatten("n")
	require.NoError(t, err)
	assert.False(t, m.HasNormals())
}

func TestFlattenEmpty(t *testing.T) {
	_, err := New("empty").Flatten("x")
	assert.ErrorIs(t, err, mesh.ErrEmptyMesh)
}

func TestSceneBounds(t *testing.T) {
	s := New("b")
	s.Add(Instance{Mesh: triangle(r3.Vec{})})
	s.Add(Instance{Col: 1, Mesh: triangle(r3.Vec{X: 5, Z: 1})})

	b := s.Bounds()
	assert.Equal(t, r3.Vec{X: 0, Y: 0, Z: 0}, b.Min)
	assert.Equal(t, r3.Vec{X: 6, Y: 1, Z: 1}, b.Max)
}
