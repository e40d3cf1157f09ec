package assets

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrAssetUnavailable is returned when a template mesh cannot be loaded
var ErrAssetUnavailable = errors.New("asset unavailable")

// Template is read-only geometry shared by every instance placed from it
type Template struct {
	id   string
	path string
	mesh Mesh
}

// NewTemplate wraps a mesh as a template. The mesh is copied.
func NewTemplate(id, path string, mesh Mesh) *Template {
	return &Template{id: id, path: path, mesh: mesh.Clone()}
}

// ID returns the catalog ID (or file path) the template was loaded as
func (t *Template) ID() string { return t.id }

// Path returns the template's source file
func (t *Template) Path() string { return t.path }

// VertexCount returns the number of vertices in the template
func (t *Template) VertexCount() int { return len(t.mesh.Vertices) }

// FaceCount returns the number of triangles in the template
func (t *Template) FaceCount() int { return len(t.mesh.Faces) }

// Mesh returns a copy of the template geometry
func (t *Template) Mesh() Mesh { return t.mesh.Clone() }

// Instantiate returns a deep copy of the template with every vertex
// transformed by m
func (t *Template) Instantiate(m mgl64.Mat4) Mesh {
	out := t.mesh.Clone()
	for i, v := range out.Vertices {
		out.Vertices[i] = mgl64.TransformCoordinate(v, m)
	}
	return out
}
