package terrain

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"terragen/internal/util"
)

// forward neighbours of grid vertex (i, j): (i+1, j), (i, j+1), (i+1, j+1)
var forwardNeighbours = [3][2]int{{1, 0}, {0, 1}, {1, 1}}

// eachForwardEdge calls fn with the planar run and vertical rise of every
// edge from a vertex to a forward neighbour inside the grid
func eachForwardEdge(vertices []mgl64.Vec3, res int, fn func(run, rise float64)) {
	for i := 0; i < res; i++ {
		for j := 0; j < res; j++ {
			v := vertices[i*res+j]
			for _, d := range forwardNeighbours {
				ni, nj := i+d[0], j+d[1]
				if ni >= res || nj >= res {
					continue
				}
				n := vertices[ni*res+nj]
				run := util.Distance2D(v[0], v[1], n[0], n[1])
				if run == 0 {
					continue
				}
				fn(run, math.Abs(n[2]-v[2]))
			}
		}
	}
}

// SlopeScale returns the uniform z factor that brings the steepest forward
// edge down to maxAngle degrees, or 1 when no edge exceeds it
func SlopeScale(vertices []mgl64.Vec3, res int, maxAngle float64) float64 {
	if maxAngle >= 90 {
		return 1
	}
	if maxAngle < 0 {
		maxAngle = 0
	}
	limit := math.Tan(maxAngle * math.Pi / 180)

	factor := 1.0
	eachForwardEdge(vertices, res, func(run, rise float64) {
		allowed := run * limit
		if rise > allowed {
			factor = math.Min(factor, allowed/rise)
		}
	})
	return factor
}

// ClampSlopes rescales every z in place by SlopeScale and returns the factor.
// One steep edge flattens the whole field; the shape is kept.
func ClampSlopes(vertices []mgl64.Vec3, res int, maxAngle float64) float64 {
	factor := SlopeScale(vertices, res, maxAngle)
	if factor == 1 {
		return factor
	}
	for i := range vertices {
		vertices[i][2] *= factor
	}
	return factor
}

// MaxSlopeAngle returns the steepest forward edge angle in degrees
func MaxSlopeAngle(vertices []mgl64.Vec3, res int) float64 {
	steepest := 0.0
	eachForwardEdge(vertices, res, func(run, rise float64) {
		steepest = math.Max(steepest, math.Atan2(rise, run)*180/math.Pi)
	})
	return steepest
}
