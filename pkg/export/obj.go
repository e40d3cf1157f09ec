package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/udhos/gwob"

	"terragen/pkg/terrain"
)

// WriteOBJ writes an indexed triangle mesh as Wavefront OBJ. Normals are
// optional; when present there must be one per vertex.
func WriteOBJ(w io.Writer, name string, vertices, normals []mgl64.Vec3, faces [][3]int) error {
	if len(normals) != 0 && len(normals) != len(vertices) {
		return fmt.Errorf("%d normals for %d vertices", len(normals), len(vertices))
	}

	obj := &gwob.Obj{
		StrideSize: 3 * 4,
		Groups:     []*gwob.Group{{Name: name, IndexCount: 3 * len(faces)}},
	}
	if len(normals) != 0 {
		obj.NormCoordFound = true
		obj.StrideOffsetNormal = obj.StrideSize
		obj.StrideSize += 3 * 4
	}

	obj.Coord = make([]float32, 0, len(vertices)*obj.StrideSize/4)
	for i, v := range vertices {
		obj.Coord = append(obj.Coord, float32(v[0]), float32(v[1]), float32(v[2]))
		if obj.NormCoordFound {
			n := normals[i]
			obj.Coord = append(obj.Coord, float32(n[0]), float32(n[1]), float32(n[2]))
		}
	}

	obj.Indices = make([]int, 0, 3*len(faces))
	for _, f := range faces {
		for _, idx := range f {
			if idx < 0 || idx >= len(vertices) {
				return fmt.Errorf("face index %d out of range", idx)
			}
			obj.Indices = append(obj.Indices, idx)
		}
	}

	bw := bufio.NewWriter(w)
	if err := obj.ToWriter(bw); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteTerrainOBJ writes the terrain mesh with its vertex normals
func WriteTerrainOBJ(w io.Writer, name string, mesh *terrain.TerrainMesh) error {
	if mesh == nil {
		return fmt.Errorf("%w: no mesh", terrain.ErrInvalidInput)
	}
	return WriteOBJ(w, name, mesh.Vertices, mesh.Normals, mesh.Faces)
}
