package assets

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/udhos/gwob"
)

// Mesh is an indexed triangle mesh
type Mesh struct {
	Name     string
	Vertices []mgl64.Vec3
	Faces    [][3]int
}

// Clone returns a deep copy of the mesh
func (m Mesh) Clone() Mesh {
	out := Mesh{Name: m.Name}
	out.Vertices = append([]mgl64.Vec3(nil), m.Vertices...)
	out.Faces = append([][3]int(nil), m.Faces...)
	return out
}

// Bounds returns the axis-aligned bounding box of the mesh
func (m Mesh) Bounds() (min, max mgl64.Vec3) {
	if len(m.Vertices) == 0 {
		return min, max
	}
	min, max = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		for k := 0; k < 3; k++ {
			if v[k] < min[k] {
				min[k] = v[k]
			}
			if v[k] > max[k] {
				max[k] = v[k]
			}
		}
	}
	return min, max
}

// LoadOBJ reads a Wavefront OBJ file
func LoadOBJ(path string) (Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return Mesh{}, err
	}
	defer f.Close()
	return readOBJ(path, f)
}

// ReadOBJ parses vertex positions and faces from Wavefront OBJ text. Faces
// must be triangles or quads; texture and normal indices are ignored.
// Vertices are numbered in the order faces first reference them and
// unreferenced vertices are dropped.
func ReadOBJ(r io.Reader) (Mesh, error) {
	return readOBJ("", r)
}

func readOBJ(source string, r io.Reader) (Mesh, error) {
	// the parser skips bad lines and reports them through the logger
	var problems []string
	options := &gwob.ObjParserOptions{
		IgnoreNormals: true,
		Logger: func(msg string) {
			if strings.HasPrefix(msg, "readLines:") || strings.HasPrefix(msg, "scanLines:") {
				problems = append(problems, strings.TrimSpace(msg))
			}
		},
	}

	obj, err := gwob.NewObjFromReader(source, r, options)
	if err != nil {
		return Mesh{}, err
	}
	if len(problems) > 0 {
		return Mesh{}, fmt.Errorf("invalid obj: %s", problems[0])
	}

	count := obj.NumberOfElements()
	if count == 0 {
		return Mesh{}, fmt.Errorf("no vertices")
	}
	if len(obj.Indices)%3 != 0 {
		return Mesh{}, fmt.Errorf("index count %d is not a multiple of 3", len(obj.Indices))
	}

	mesh := Mesh{Vertices: make([]mgl64.Vec3, count)}
	for _, g := range obj.Groups {
		if g.Name != "" {
			mesh.Name = g.Name
			break
		}
	}
	for i := range mesh.Vertices {
		x, y, z := obj.VertexCoordinates(i)
		mesh.Vertices[i] = mgl64.Vec3{float64(x), float64(y), float64(z)}
	}
	mesh.Faces = make([][3]int, 0, len(obj.Indices)/3)
	for i := 0; i < len(obj.Indices); i += 3 {
		mesh.Faces = append(mesh.Faces, [3]int{obj.Indices[i], obj.Indices[i+1], obj.Indices[i+2]})
	}
	return mesh, nil
}
