package terrain

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// SmoothHumphrey applies Humphrey's classes filter to the vertex heights in
// place. The uniform Laplacian averages each vertex over its face neighbours;
// alpha pulls toward the original heights and beta damps the correction.
// Only z moves, so the planar grid and its extent are preserved exactly.
func SmoothHumphrey(vertices []mgl64.Vec3, faces [][3]int, alpha, beta float64, iterations int) {
	if iterations <= 0 || len(vertices) == 0 {
		return
	}

	neighbours := adjacency(len(vertices), faces)

	original := make([]float64, len(vertices))
	q := make([]float64, len(vertices))
	for i, v := range vertices {
		original[i] = v[2]
		q[i] = v[2]
	}
	prev := make([]float64, len(q))
	b := make([]float64, len(q))
	lb := make([]float64, len(q))

	for it := 0; it < iterations; it++ {
		copy(prev, q)
		laplacian(neighbours, prev, q)
		for i := range b {
			b[i] = q[i] - (alpha*original[i] + (1-alpha)*prev[i])
		}
		laplacian(neighbours, b, lb)
		for i := range q {
			q[i] -= beta*b[i] + (1-beta)*lb[i]
		}
	}

	for i := range vertices {
		vertices[i][2] = q[i]
	}
}

// adjacency returns the sorted, deduplicated neighbour list of every vertex
func adjacency(n int, faces [][3]int) [][]int {
	sets := make([]map[int]struct{}, n)
	link := func(a, b int) {
		if sets[a] == nil {
			sets[a] = make(map[int]struct{})
		}
		sets[a][b] = struct{}{}
	}
	for _, f := range faces {
		for k := 0; k < 3; k++ {
			a, b := f[k], f[(k+1)%3]
			link(a, b)
			link(b, a)
		}
	}

	out := make([][]int, n)
	for i, s := range sets {
		for j := range s {
			out[i] = append(out[i], j)
		}
		// fixed order keeps the float sums reproducible
		sort.Ints(out[i])
	}
	return out
}

// laplacian writes the neighbour mean of in to out; isolated vertices keep their value
func laplacian(neighbours [][]int, in, out []float64) {
	for i, nb := range neighbours {
		if len(nb) == 0 {
			out[i] = in[i]
			continue
		}
		sum := 0.0
		for _, j := range nb {
			sum += in[j]
		}
		out[i] = sum / float64(len(nb))
	}
}
