package formats

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/meshgrid/pkg/mesh"
)

func makeQuad() *mesh.Mesh {
	return mesh.New("quad",
		[]r3.Vec{
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
			{X: 1, Y: 1, Z: 0},
			{X: 0, Y: 1, Z: 0},
		},
		[][3]uint32{{0, 1, 2}, {0, 2, 3}},
	)
}

func makeCylinder(t *testing.T) *mesh.Mesh {
	t.Helper()
	m, err := mesh.Cylinder(0.02, 0.035, 16)
	require.NoError(t, err)
	return m
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"", FormatUnknown, false},
		{"stl", FormatSTL, false},
		{"STL", FormatSTL, false},
		{"stl-ascii", FormatUnknown, true},
		{"obj", FormatOBJ, false},
		{"glb", FormatGLB, false},
		{"gltf", FormatGLTF, false},
		{"ply", FormatUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.name, got, tt.want)
			}
			if err != nil && !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("expected ErrUnsupportedFormat, got %v", err)
			}
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"out/serial_cylinders.stl", FormatSTL},
		{"BRANCHING.OBJ", FormatOBJ},
		{"model.glb", FormatGLB},
		{"model.gltf", FormatGLTF},
	}
	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		if err != nil {
			t.Errorf("FormatFromPath(%q): %v", tt.path, err)
		}
		if got != tt.want {
			t.Errorf("FormatFromPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}

	if _, err := FormatFromPath("scene.3mf"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestFormatCanWrite(t *testing.T) {
	assert.True(t, FormatSTL.CanWrite())
	assert.True(t, FormatOBJ.CanWrite())
	assert.True(t, FormatGLB.CanWrite())
	assert.False(t, FormatGLTF.CanWrite())
	assert.False(t, FormatUnknown.CanWrite())
	assert.Equal(t, "glb", FormatGLB.String())
}

func TestSTLRoundTrip(t *testing.T) {
	src := makeCylinder(t)

	var buf bytes.Buffer
	require.NoError(t, WriteSTL(&buf, src))
	assert.Equal(t, stlHeaderSize+4+src.FaceCount()*stlFacetSize, buf.Len())

	got, err := ParseSTL(buf.Bytes())
	require.NoError(t, err)
	require.NoError(t, got.Validate())

	assert.Equal(t, src.FaceCount(), got.FaceCount())
	// Facets are welded back into shared vertices.
	assert.Equal(t, src.VertexCount(), got.VertexCount())

	sb, gb := src.Bounds(), got.Bounds()
	assert.InDelta(t, sb.Max.X, gb.Max.X, 1e-6)
	assert.InDelta(t, sb.Min.Z, gb.Min.Z, 1e-6)
}

func TestSTLKeepsStackedCopies(t *testing.T) {
	copies := make([]*mesh.Mesh, 4)
	for i := range copies {
		copies[i] = makeCylinder(t)
	}
	src := mesh.Concatenate("stack", copies...)

	var buf bytes.Buffer
	require.NoError(t, WriteSTL(&buf, src))
	got, err := ParseSTL(buf.Bytes())
	require.NoError(t, err)

	assert.Equal(t, src.VertexCount(), got.VertexCount())
	assert.Equal(t, src.FaceCount(), got.FaceCount())
}

func TestParseSTLErrors(t *testing.T) {
	_, err := ParseSTL([]byte("tiny"))
	assert.ErrorIs(t, err, ErrTruncatedSTL)

	// Header claims 10 facets but carries one.
	data := make([]byte, stlHeaderSize+4+stlFacetSize)
	data[stlHeaderSize] = 10
	_, err = ParseSTL(data)
	assert.ErrorIs(t, err, ErrTruncatedSTL)
}

func TestParseSTLRejectsNonFinite(t *testing.T) {
	for _, bad := range []float64{math.NaN(), math.Inf(1)} {
		m := makeQuad()
		m.Vertices[2].Y = bad

		var buf bytes.Buffer
		require.NoError(t, WriteSTL(&buf, m))
		_, err := ParseSTL(buf.Bytes())
		assert.ErrorIs(t, err, ErrCorruptMesh)
	}
}

func TestReadOBJ(t *testing.T) {
	src := `# test
o thing
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vn 0 0 1
g top
f 1/1/1 2/1/1 3/1/1 4/1/1
g back
f -4//1 -2//1 -3//1
`
	m, err := ReadOBJ(strings.NewReader(src))
	require.NoError(t, err)
	require.NoError(t, m.Validate())

	assert.Equal(t, "thing", m.Name)
	assert.Equal(t, 4, m.VertexCount())
	// Quad fan-triangulates into two faces, plus one triangle.
	assert.Equal(t, 3, m.FaceCount())
	assert.Equal(t, [3]uint32{0, 2, 3}, m.Faces[1])
	assert.Equal(t, [3]uint32{0, 2, 1}, m.Faces[2])

	assert.Equal(t, []mesh.Group{
		{Name: "top", FaceStart: 0, FaceCount: 2},
		{Name: "back", FaceStart: 2, FaceCount: 1},
	}, m.Groups)

	require.True(t, m.HasNormals())
	assert.Equal(t, r3.Vec{X: 0, Y: 0, Z: 1}, m.Normals[3])
}

func TestReadOBJWithoutNormals(t *testing.T) {
	m, err := ReadOBJ(strings.NewReader("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"))
	require.NoError(t, err)
	assert.False(t, m.HasNormals())
	assert.Empty(t, m.Groups)
}

func TestReadOBJSplitsVerticesPerNormal(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vn 0 0 1
vn 1 0 0
f 1//1 2//1 3//1
f 1//2 3//2 4//2
`
	m, err := ReadOBJ(strings.NewReader(src))
	require.NoError(t, err)
	require.NoError(t, m.Validate())

	// Vertices 1 and 3 appear with two normals each.
	assert.Equal(t, 6, m.VertexCount())
	require.True(t, m.HasNormals())

	up, side := r3.Vec{X: 0, Y: 0, Z: 1}, r3.Vec{X: 1, Y: 0, Z: 0}
	for _, idx := range m.Faces[0] {
		assert.Equal(t, up, m.Normals[idx])
	}
	for _, idx := range m.Faces[1] {
		assert.Equal(t, side, m.Normals[idx])
	}
	assert.Equal(t, m.Vertices[m.Faces[0][0]], m.Vertices[m.Faces[1][0]])
	assert.Equal(t, m.Vertices[m.Faces[0][2]], m.Vertices[m.Faces[1][1]])
	assert.Equal(t, [3]uint32{0, 1, 2}, m.Faces[0])
}

func TestReadOBJMixedNormalsDropsNormals(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nvn 0 0 1\nf 1//1 2//1 3//1\nf 1 3 2\n"
	m, err := ReadOBJ(strings.NewReader(src))
	require.NoError(t, err)
	require.NoError(t, m.Validate())

	// Corners without a normal get their own vertices.
	assert.Equal(t, 6, m.VertexCount())
	assert.False(t, m.HasNormals())
}

func TestReadOBJErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"short vertex", "v 1 2\n"},
		{"bad float", "v 1 2 x\n"},
		{"index out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 9\n"},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n"},
		{"two vertex face", "v 0 0 0\nv 1 0 0\nf 1 2\n"},
		{"missing normal", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1//1 2//1 3//1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadOBJ(strings.NewReader(tt.src))
			assert.ErrorIs(t, err, ErrCorruptMesh)
		})
	}
}

func TestOBJRoundTripKeepsGroupsAndNormals(t *testing.T) {
	a := makeQuad()
	a.Name = "inst_r0_c0"
	b := makeQuad().Translate(r3.Vec{X: 2})
	b.Name = "inst_r0_c1"
	src := mesh.Concatenate("grid", a, b).ComputeNormals()

	var buf bytes.Buffer
	require.NoError(t, WriteOBJ(&buf, src, true))
	assert.Contains(t, buf.String(), "f 1//1 2//2 3//3")

	got, err := ReadOBJ(&buf)
	require.NoError(t, err)

	assert.Equal(t, "grid", got.Name)
	assert.Equal(t, src.VertexCount(), got.VertexCount())
	assert.Equal(t, src.Faces, got.Faces)
	assert.Equal(t, src.Groups, got.Groups)
	require.True(t, got.HasNormals())
	assert.Equal(t, src.Normals, got.Normals)
}

func TestWriteOBJUngroupedTail(t *testing.T) {
	m := makeQuad()
	m.Groups = []mesh.Group{{Name: "first", FaceStart: 0, FaceCount: 1}}

	var buf bytes.Buffer
	require.NoError(t, WriteOBJ(&buf, m, false))

	got, err := ReadOBJ(&buf)
	require.NoError(t, err)
	assert.Equal(t, []mesh.Group{{Name: "first", FaceStart: 0, FaceCount: 1}}, got.Groups)
	assert.False(t, got.HasNormals())
}

func TestGLBRoundTrip(t *testing.T) {
	src := makeCylinder(t).ComputeNormals()

	var buf bytes.Buffer
	require.NoError(t, WriteGLB(&buf, src, true))

	got, err := ReadGLB(&buf)
	require.NoError(t, err)
	require.NoError(t, got.Validate())

	assert.Equal(t, "cylinder", got.Name)
	assert.Equal(t, src.VertexCount(), got.VertexCount())
	assert.Equal(t, src.Faces, got.Faces)
	assert.True(t, got.HasNormals())
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	src := makeCylinder(t)

	for _, name := range []string{"c.stl", "c.obj", "c.glb"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, "nested", name)
			require.NoError(t, Save(path, src, SaveOptions{Normals: true, Atomic: true}))

			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, src.VertexCount(), got.VertexCount())
			assert.Equal(t, src.FaceCount(), got.FaceCount())
		})
	}

	// Atomic writes leave no temp files behind.
	entries, err := os.ReadDir(filepath.Join(dir, "nested"))
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestSaveFormatOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.stl")
	require.NoError(t, Save(path, makeQuad(), SaveOptions{Format: FormatOBJ}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("# meshgrid\no quad\n")))
}

func TestSaveDoesNotMutateInput(t *testing.T) {
	src := makeQuad()
	require.NoError(t, Save(filepath.Join(t.TempDir(), "q.obj"), src, SaveOptions{Normals: true}))
	assert.False(t, src.HasNormals())
}

func TestSaveErrors(t *testing.T) {
	dir := t.TempDir()

	err := Save(filepath.Join(dir, "x.ply"), makeQuad(), SaveOptions{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	err = Save(filepath.Join(dir, "x.gltf"), makeQuad(), SaveOptions{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	// A regular file where a directory is expected makes the path unwritable.
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	for _, atomic := range []bool{true, false} {
		err = Save(filepath.Join(blocker, "out.stl"), makeQuad(), SaveOptions{Atomic: atomic})
		assert.ErrorIs(t, err, ErrWrite)
	}
}

func TestAtomicSaveKeepsOldFileOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keep.obj")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

	failing := errors.New("encoder exploded")
	err := writeFileAtomic(path, func(w io.Writer) error {
		w.Write([]byte("partial"))
		return failing
	})
	assert.ErrorIs(t, err, ErrWrite)
	assert.ErrorIs(t, err, failing)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.stl"))
	assert.ErrorIs(t, err, ErrRead)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = Load(filepath.Join(dir, "missing.glb"))
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = Load(filepath.Join(dir, "mesh.ply"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	bad := filepath.Join(dir, "bad.obj")
	require.NoError(t, os.WriteFile(bad, []byte("v 1 2\n"), 0644))
	_, err = Load(bad)
	assert.ErrorIs(t, err, ErrRead)
	assert.ErrorIs(t, err, ErrCorruptMesh)
}

func TestLoadNamesMeshAfterFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coral.obj")
	require.NoError(t, os.WriteFile(path, []byte("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"), 0644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "coral", m.Name)
}
