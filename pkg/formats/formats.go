// Package formats reads and writes triangle mesh files.
//
// Supported formats: STL (binary written, binary and ASCII read), Wavefront
// OBJ (groups and vertex normals) and binary glTF (GLB). Text glTF files can
// be read but not written.
package formats

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/meshgrid/pkg/mesh"
)

// Format errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported mesh format")
	ErrRead              = errors.New("mesh read failed")
	ErrWrite             = errors.New("mesh write failed")
	ErrCorruptMesh       = errors.New("corrupt mesh data")
	ErrTruncatedSTL      = errors.New("truncated STL data")
)

// Format identifies a mesh file format.
type Format int

const (
	FormatUnknown Format = iota
	FormatSTL            // Binary STL (reading auto-detects ASCII)
	FormatOBJ            // Wavefront OBJ
	FormatGLB            // Binary glTF
	FormatGLTF           // Text glTF (read only)
)

// String returns the format name accepted by ParseFormat.
func (f Format) String() string {
	switch f {
	case FormatSTL:
		return "stl"
	case FormatOBJ:
		return "obj"
	case FormatGLB:
		return "glb"
	case FormatGLTF:
		return "gltf"
	default:
		return fmt.Sprintf("Unknown(%d)", int(f))
	}
}

// CanWrite reports whether Save supports the format.
func (f Format) CanWrite() bool {
	switch f {
	case FormatSTL, FormatOBJ, FormatGLB:
		return true
	default:
		return false
	}
}

// ParseFormat converts a format name to a Format. An empty name yields
// FormatUnknown, meaning "detect from the path".
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return FormatUnknown, nil
	case "stl":
		return FormatSTL, nil
	case "obj":
		return FormatOBJ, nil
	case "glb":
		return FormatGLB, nil
	case "gltf":
		return FormatGLTF, nil
	default:
		return FormatUnknown, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

const (
	stlHeaderSize = 80
	stlFacetSize  = 50 // normal + 3 vertices (12 float32) + attribute word
)

// isASCIISTL reports whether data starts with "solid" and is not a binary
// file whose header happens to start the same way.
func isASCIISTL(data []byte) bool {
	if !bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("solid")) {
		return false
	}
	return checkBinarySTL(data) != nil
}

// checkBinarySTL checks the facet count in the header against the data size.
func checkBinarySTL(data []byte) error {
	if len(data) < stlHeaderSize+4 {
		return fmt.Errorf("%w: %d bytes", ErrTruncatedSTL, len(data))
	}
	count := binary.LittleEndian.Uint32(data[stlHeaderSize:])
	need := stlHeaderSize + 4 + uint64(count)*stlFacetSize
	if uint64(len(data)) < need {
		return fmt.Errorf("%w: %d facets need %d bytes, have %d", ErrTruncatedSTL, count, need, len(data))
	}
	return nil
}

// FormatFromPath picks a format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".stl":
		return FormatSTL, nil
	case ".obj":
		return FormatOBJ, nil
	case ".glb":
		return FormatGLB, nil
	case ".gltf":
		return FormatGLTF, nil
	default:
		return FormatUnknown, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Load reads a mesh file, picking the decoder from the extension.
func Load(path string) (*mesh.Mesh, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	var m *mesh.Mesh
	if format == FormatGLTF || format == FormatGLB {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRead, err)
		}
		m, err = loadGLTF(path)
	} else {
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRead, err)
		}
		defer f.Close()
		m, err = Decode(bufio.NewReader(f), format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRead, path, err)
	}

	if m.Name == "" {
		m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return m, nil
}

// Decode reads a mesh in the given format from r.
func Decode(r io.Reader, format Format) (*mesh.Mesh, error) {
	switch format {
	case FormatSTL:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return ParseSTL(data)
	case FormatOBJ:
		return ReadOBJ(r)
	case FormatGLB, FormatGLTF:
		return ReadGLB(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// SaveOptions controls how a mesh is written.
type SaveOptions struct {
	Format  Format // FormatUnknown picks the format from the path
	Normals bool   // Write vertex normals, computing them when missing
	Atomic  bool   // Write to a temp file and rename into place
}

// Encode writes m to w in the given format.
func Encode(w io.Writer, m *mesh.Mesh, opts SaveOptions) error {
	if opts.Normals && !m.HasNormals() {
		m = m.Clone().ComputeNormals()
	}

	switch opts.Format {
	case FormatSTL:
		return WriteSTL(w, m)
	case FormatOBJ:
		return WriteOBJ(w, m, opts.Normals)
	case FormatGLB:
		return WriteGLB(w, m, opts.Normals)
	default:
		return fmt.Errorf("%w: cannot write %s", ErrUnsupportedFormat, opts.Format)
	}
}

// Save writes m to path. The parent directory is created when missing.
func Save(path string, m *mesh.Mesh, opts SaveOptions) error {
	if opts.Format == FormatUnknown {
		format, err := FormatFromPath(path)
		if err != nil {
			return err
		}
		opts.Format = format
	}
	if !opts.Format.CanWrite() {
		return fmt.Errorf("%w: cannot write %s", ErrUnsupportedFormat, opts.Format)
	}

	write := func(w io.Writer) error {
		return Encode(w, m, opts)
	}
	if opts.Atomic {
		return writeFileAtomic(path, write)
	}
	return writeFile(path, write)
}
