package terrain

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// barycentricEpsilon lets points on a shared edge count as inside
const barycentricEpsilon = 1e-9

// SurfaceQuery answers height and orientation questions about a mesh. When
// several triangles contain a point the first one in face order wins.
type SurfaceQuery struct {
	mesh  *TerrainMesh
	index *bucketIndex
}

// NewSurfaceQuery wraps a mesh with a bucket index over its faces
func NewSurfaceQuery(mesh *TerrainMesh) *SurfaceQuery {
	return &SurfaceQuery{mesh: mesh, index: newBucketIndex(mesh)}
}

// NewLinearSurfaceQuery wraps a mesh and scans every face per query
func NewLinearSurfaceQuery(mesh *TerrainMesh) *SurfaceQuery {
	return &SurfaceQuery{mesh: mesh}
}

// Mesh returns the wrapped mesh
func (s *SurfaceQuery) Mesh() *TerrainMesh {
	return s.mesh
}

// HeightAt returns the surface z at (x, y), or false outside the mesh
func (s *SurfaceQuery) HeightAt(x, y float64) (float64, bool) {
	f, ok := s.Locate(x, y)
	if !ok {
		return 0, false
	}
	a, b, c := s.triangle(f)
	n := b.Sub(a).Cross(c.Sub(a))
	// Ax + By + Cz + D = 0 solved for z
	return a[2] - (n[0]*(x-a[0])+n[1]*(y-a[1]))/n[2], true
}

// NormalAt returns the upward unit normal of the triangle under (x, y)
func (s *SurfaceQuery) NormalAt(x, y float64) (mgl64.Vec3, bool) {
	f, ok := s.Locate(x, y)
	if !ok {
		return mgl64.Vec3{}, false
	}
	a, b, c := s.triangle(f)
	n := b.Sub(a).Cross(c.Sub(a)).Normalize()
	if n[2] < 0 {
		n = n.Mul(-1)
	}
	return n, true
}

// Locate returns the index of the first face whose planar projection
// contains (x, y)
func (s *SurfaceQuery) Locate(x, y float64) (int, bool) {
	if s.mesh == nil {
		return 0, false
	}
	if s.index != nil {
		for _, f := range s.index.candidates(x, y) {
			if s.contains(f, x, y) {
				return f, true
			}
		}
		return 0, false
	}
	for f := range s.mesh.Faces {
		if s.contains(f, x, y) {
			return f, true
		}
	}
	return 0, false
}

func (s *SurfaceQuery) triangle(f int) (a, b, c mgl64.Vec3) {
	face := s.mesh.Faces[f]
	return s.mesh.Vertices[face[0]], s.mesh.Vertices[face[1]], s.mesh.Vertices[face[2]]
}

// contains runs the barycentric test. Triangles with no projected area or a
// vertical plane never contain anything.
func (s *SurfaceQuery) contains(f int, x, y float64) bool {
	a, b, c := s.triangle(f)

	denom := (b[1]-c[1])*(a[0]-c[0]) + (c[0]-b[0])*(a[1]-c[1])
	if math.Abs(denom) < 1e-12 {
		return false
	}
	l1 := ((b[1]-c[1])*(x-c[0]) + (c[0]-b[0])*(y-c[1])) / denom
	l2 := ((c[1]-a[1])*(x-c[0]) + (a[0]-c[0])*(y-c[1])) / denom
	l3 := 1 - l1 - l2

	if l1 < -barycentricEpsilon || l2 < -barycentricEpsilon || l3 < -barycentricEpsilon {
		return false
	}

	n := b.Sub(a).Cross(c.Sub(a))
	return math.Abs(n[2]) > 1e-12
}

// bucketIndex is a uniform grid over the mesh's planar bounds. Each bucket
// lists, in ascending order, the faces whose padded bounding box touches it.
type bucketIndex struct {
	minX, minY   float64
	cellW, cellH float64
	nx, ny       int
	buckets      [][]int
}

func newBucketIndex(mesh *TerrainMesh) *bucketIndex {
	if mesh == nil || len(mesh.Faces) == 0 || len(mesh.Vertices) == 0 {
		return nil
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, v := range mesh.Vertices {
		minX, maxX = math.Min(minX, v[0]), math.Max(maxX, v[0])
		minY, maxY = math.Min(minY, v[1]), math.Max(maxY, v[1])
	}

	n := int(math.Sqrt(float64(len(mesh.Faces)) / 2))
	if n < 1 {
		n = 1
	}
	idx := &bucketIndex{
		minX:  minX,
		minY:  minY,
		nx:    n,
		ny:    n,
		cellW: math.Max((maxX-minX)/float64(n), 1e-12),
		cellH: math.Max((maxY-minY)/float64(n), 1e-12),
	}
	idx.buckets = make([][]int, n*n)

	pad := 1e-6*math.Max(maxX-minX, maxY-minY) + 1e-9
	for f, face := range mesh.Faces {
		a, b, c := mesh.Vertices[face[0]], mesh.Vertices[face[1]], mesh.Vertices[face[2]]
		x0, x1 := idx.col(math.Min(a[0], math.Min(b[0], c[0]))-pad), idx.col(math.Max(a[0], math.Max(b[0], c[0]))+pad)
		y0, y1 := idx.row(math.Min(a[1], math.Min(b[1], c[1]))-pad), idx.row(math.Max(a[1], math.Max(b[1], c[1]))+pad)
		for r := y0; r <= y1; r++ {
			for q := x0; q <= x1; q++ {
				idx.buckets[r*idx.nx+q] = append(idx.buckets[r*idx.nx+q], f)
			}
		}
	}
	return idx
}

func (b *bucketIndex) col(x float64) int {
	return clampIndex(int(math.Floor((x-b.minX)/b.cellW)), b.nx)
}

func (b *bucketIndex) row(y float64) int {
	return clampIndex(int(math.Floor((y-b.minY)/b.cellH)), b.ny)
}

func (b *bucketIndex) candidates(x, y float64) []int {
	if math.IsNaN(x) || math.IsNaN(y) {
		return nil
	}
	return b.buckets[b.row(y)*b.nx+b.col(x)]
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
