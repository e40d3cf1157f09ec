package terrain

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Humphrey filter settings used by BuildMesh
const (
	SmoothAlpha      = 0.1
	SmoothBeta       = 0.5
	SmoothIterations = 10
)

// TerrainMesh is the triangulated height field. Faces are counter-clockwise
// seen from +z and Normals holds one unit normal per vertex.
type TerrainMesh struct {
	Resolution int
	Width      float64
	Depth      float64
	Vertices   []mgl64.Vec3
	Faces      [][3]int
	Normals    []mgl64.Vec3
	// SlopeScale is the uniform z factor applied by slope clamping, 1 when inactive
	SlopeScale float64
}

// Bounds returns the planar extent of the mesh
func (m *TerrainMesh) Bounds() Bounds {
	return BoundsFor(m.Width, m.Depth)
}

// BuildMesh lays the field over [-width/2, width/2] x [-depth/2, depth/2],
// triangulates it, clamps slopes steeper than maxAngle degrees and smooths
// the heights.
func BuildMesh(field HeightField, width, depth, maxAngle float64) (*TerrainMesh, error) {
	if err := field.Validate(); err != nil {
		return nil, err
	}
	if width <= 0 || depth <= 0 {
		return nil, fmt.Errorf("%w: extent %vx%v must be positive", ErrInvalidParameter, width, depth)
	}

	res := field.Resolution
	vertices := GridVertices(field, width, depth)
	faces := GridFaces(res)

	scale := ClampSlopes(vertices, res, maxAngle)
	SmoothHumphrey(vertices, faces, SmoothAlpha, SmoothBeta, SmoothIterations)

	return &TerrainMesh{
		Resolution: res,
		Width:      width,
		Depth:      depth,
		Vertices:   vertices,
		Faces:      faces,
		Normals:    VertexNormals(vertices, faces),
		SlopeScale: scale,
	}, nil
}

// GridVertices places sample (i, j) at x = -width/2 + j*width/(res-1),
// y = -depth/2 + i*depth/(res-1), z = sample.
func GridVertices(field HeightField, width, depth float64) []mgl64.Vec3 {
	res := field.Resolution
	stepX := width / float64(res-1)
	stepY := depth / float64(res-1)

	vertices := make([]mgl64.Vec3, 0, res*res)
	for i := 0; i < res; i++ {
		for j := 0; j < res; j++ {
			vertices = append(vertices, mgl64.Vec3{
				-width/2 + float64(j)*stepX,
				-depth/2 + float64(i)*stepY,
				field.At(i, j),
			})
		}
	}
	return vertices
}

// GridFaces returns two triangles per cell sharing the (i,j)-(i+1,j+1) diagonal
func GridFaces(res int) [][3]int {
	if res < 2 {
		return nil
	}
	faces := make([][3]int, 0, 2*(res-1)*(res-1))
	for i := 0; i < res-1; i++ {
		for j := 0; j < res-1; j++ {
			p1 := i*res + j
			p2 := p1 + 1
			p3 := (i+1)*res + j + 1
			p4 := (i+1)*res + j
			faces = append(faces, [3]int{p1, p2, p3}, [3]int{p1, p3, p4})
		}
	}
	return faces
}

// VertexNormals returns area-weighted unit vertex normals. Vertices touched
// only by degenerate faces get +z.
func VertexNormals(vertices []mgl64.Vec3, faces [][3]int) []mgl64.Vec3 {
	normals := make([]mgl64.Vec3, len(vertices))
	for _, f := range faces {
		a, b, c := vertices[f[0]], vertices[f[1]], vertices[f[2]]
		n := b.Sub(a).Cross(c.Sub(a))
		for _, idx := range f {
			normals[idx] = normals[idx].Add(n)
		}
	}
	for i, n := range normals {
		if l := n.Len(); l > 1e-12 {
			normals[i] = n.Mul(1 / l)
		} else {
			normals[i] = mgl64.Vec3{0, 0, 1}
		}
	}
	return normals
}
