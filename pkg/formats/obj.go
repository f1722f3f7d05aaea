package formats

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/meshgrid/pkg/mesh"
)

// ReadOBJ parses a Wavefront OBJ stream. Polygons are fan-triangulated,
// "o" and "g" statements start groups, and "vn" normals are attached to the
// vertices that reference them. A vertex referenced with more than one
// normal is split so every face corner keeps its own normal. Texture
// coordinates and materials are skipped.
func ReadOBJ(r io.Reader) (*mesh.Mesh, error) {
	var (
		vs     []r3.Vec
		vns    []r3.Vec
		faces  [][3]uint32
		name   string
		groups []mesh.Group
		group  string
		start  int
	)
	corners := newCornerTable()

	closeGroup := func() {
		if group != "" && len(faces) > start {
			groups = append(groups, mesh.Group{Name: group, FaceStart: start, FaceCount: len(faces) - start})
		}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: vertex needs 3 coordinates", ErrCorruptMesh, lineNo)
			}
			v, err := parseVec(fields[1:4])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %w", ErrCorruptMesh, lineNo, err)
			}
			vs = append(vs, v)
			corners.grow(len(vs))
		case "vn":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: normal needs 3 coordinates", ErrCorruptMesh, lineNo)
			}
			n, err := parseVec(fields[1:4])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %w", ErrCorruptMesh, lineNo, err)
			}
			vns = append(vns, n)
		case "o", "g":
			label := strings.Join(fields[1:], " ")
			if fields[0] == "o" && name == "" {
				name = label
			}
			closeGroup()
			group, start = label, len(faces)
		case "f":
			args := fields[1:]
			if len(args) < 3 {
				return nil, fmt.Errorf("%w: line %d: face needs 3 vertices", ErrCorruptMesh, lineNo)
			}
			fvs := make([]uint32, len(args))
			for i, arg := range args {
				vi, ni, err := parseFaceVertex(arg, len(vs), len(vns))
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %w", ErrCorruptMesh, lineNo, err)
				}
				fvs[i] = corners.index(vi, ni)
			}
			for i := 1; i < len(fvs)-1; i++ {
				faces = append(faces, [3]uint32{fvs[0], fvs[i], fvs[i+1]})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	closeGroup()

	vertices, normalRefs := corners.vertices(vs)
	m := mesh.New(name, vertices, faces)
	if len(groups) > 0 {
		m.Groups = groups
	}
	m.Normals = resolveNormals(normalRefs, vns)
	return m, nil
}

const (
	noNormal  = -1 // corner given without a normal
	unclaimed = -2 // vertex not referenced by any face yet
)

// cornerTable maps (vertex, normal) pairs from face corners to mesh
// vertices. The first pair seen for a vertex keeps the vertex's own index,
// so files with one normal per vertex load without reindexing.
type cornerTable struct {
	// Normal index of the first corner seen per source vertex
	first []int
	extra map[[2]int]uint32
	// Source vertex and normal of each appended vertex
	splits [][2]int
}

func newCornerTable() *cornerTable {
	return &cornerTable{extra: make(map[[2]int]uint32)}
}

func (c *cornerTable) grow(n int) {
	for len(c.first) < n {
		c.first = append(c.first, unclaimed)
	}
}

func (c *cornerTable) index(vi, ni int) uint32 {
	switch c.first[vi] {
	case unclaimed:
		c.first[vi] = ni
		return uint32(vi)
	case ni:
		return uint32(vi)
	}
	key := [2]int{vi, ni}
	if idx, ok := c.extra[key]; ok {
		return idx
	}
	idx := uint32(len(c.first) + len(c.splits))
	c.extra[key] = idx
	c.splits = append(c.splits, key)
	return idx
}

// vertices returns the positions of every mesh vertex and the normal index
// each one carries.
func (c *cornerTable) vertices(vs []r3.Vec) ([]r3.Vec, []int) {
	positions := append([]r3.Vec(nil), vs...)
	refs := append([]int(nil), c.first...)
	for _, s := range c.splits {
		positions = append(positions, vs[s[0]])
		refs = append(refs, s[1])
	}
	return positions, refs
}

// resolveNormals returns per-vertex normals, or nil unless every vertex was
// referenced with a normal.
func resolveNormals(refs []int, vns []r3.Vec) []r3.Vec {
	if len(refs) == 0 {
		return nil
	}
	normals := make([]r3.Vec, len(refs))
	for i, ref := range refs {
		if ref < 0 {
			return nil
		}
		normals[i] = vns[ref]
	}
	return normals
}

// parseFaceVertex parses "v", "v/vt", "v//vn" or "v/vt/vn" and returns
// zero-based vertex and normal indices; the normal index is -1 when absent.
// Negative OBJ indices count back from the end of the current lists.
func parseFaceVertex(arg string, nv, nn int) (int, int, error) {
	parts := strings.Split(arg, "/")
	vi, err := resolveIndex(parts[0], nv)
	if err != nil {
		return 0, 0, fmt.Errorf("vertex index %q: %w", arg, err)
	}
	ni := -1
	if len(parts) > 2 && parts[2] != "" {
		ni, err = resolveIndex(parts[2], nn)
		if err != nil {
			return 0, 0, fmt.Errorf("normal index %q: %w", arg, err)
		}
	}
	return vi, ni, nil
}

func resolveIndex(value string, length int) (int, error) {
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	idx := parsed - 1
	if parsed < 0 {
		idx = length + parsed
	}
	if parsed == 0 || idx < 0 || idx >= length {
		return 0, fmt.Errorf("out of range (have %d)", length)
	}
	return idx, nil
}

// WriteOBJ writes m as OBJ. Each group becomes a "g" block; faces outside
// any group are written under the default group. When withNormals is set
// and the mesh has normals, faces use the v//vn form.
func WriteOBJ(w io.Writer, m *mesh.Mesh, withNormals bool) error {
	bw := bufio.NewWriter(w)
	normals := withNormals && m.HasNormals()

	bw.WriteString("# meshgrid\n")
	if m.Name != "" {
		fmt.Fprintf(bw, "o %s\n", m.Name)
	}
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "v %s\n", formatVec(v))
	}
	if normals {
		for _, n := range m.Normals {
			fmt.Fprintf(bw, "vn %s\n", formatVec(n))
		}
	}

	groups := append([]mesh.Group(nil), m.Groups...)
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].FaceStart < groups[j].FaceStart
	})

	next := 0
	end := -1
	for i, f := range m.Faces {
		if next < len(groups) && groups[next].FaceStart == i {
			fmt.Fprintf(bw, "g %s\n", groups[next].Name)
			end = i + groups[next].FaceCount
			next++
		} else if i == end {
			bw.WriteString("g\n")
		}

		a, b, c := f[0]+1, f[1]+1, f[2]+1
		if normals {
			fmt.Fprintf(bw, "f %d//%d %d//%d %d//%d\n", a, a, b, b, c, c)
		} else {
			fmt.Fprintf(bw, "f %d %d %d\n", a, b, c)
		}
	}
	return bw.Flush()
}

// parseVec parses three float fields.
func parseVec(fields []string) (r3.Vec, error) {
	var c [3]float64
	for i := range c {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return r3.Vec{}, err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return r3.Vec{}, fmt.Errorf("non-finite coordinate %q", fields[i])
		}
		c[i] = f
	}
	return r3.Vec{X: c[0], Y: c[1], Z: c[2]}, nil
}

func formatVec(v r3.Vec) string {
	return strconv.FormatFloat(v.X, 'g', -1, 64) + " " +
		strconv.FormatFloat(v.Y, 'g', -1, 64) + " " +
		strconv.FormatFloat(v.Z, 'g', -1, 64)
}
