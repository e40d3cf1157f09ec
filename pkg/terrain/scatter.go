package terrain

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"terragen/internal/util"
	"terragen/pkg/assets"
	"terragen/pkg/config"
)

// Category is the kind of object being scattered
type Category int

const (
	Rock Category = iota
	Tree
	Grass
)

var categoryNames = [...]string{"rock", "tree", "grass"}

// Categories lists every category in placement order
func Categories() []Category {
	return []Category{Rock, Tree, Grass}
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// ParseCategory converts a category name (case-insensitive)
func ParseCategory(s string) (Category, error) {
	for i, name := range categoryNames {
		if strings.EqualFold(s, name) {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown category %q", ErrInvalidParameter, s)
}

// Range is a closed interval for uniform draws
type Range struct {
	Min, Max float64
}

// Bounds is the planar rectangle positions are drawn from
type Bounds struct {
	XMin, XMax float64
	YMin, YMax float64
}

// BoundsFor returns [-width/2, width/2] x [-depth/2, depth/2]
func BoundsFor(width, depth float64) Bounds {
	return Bounds{XMin: -width / 2, XMax: width / 2, YMin: -depth / 2, YMax: depth / 2}
}

// PlacementSpec describes how many instances of a category to draw and the
// ranges their scale and rotation come from
type PlacementSpec struct {
	Category   Category
	Count      int
	ScaleRange Range
	AxisRange  [2]mgl64.Vec3
	AngleRange Range
	Template   *assets.Template
}

// SpecFromConfig builds a placement spec from a category's configured ranges
func SpecFromConfig(cat Category, count int, cc config.CategoryConfig) PlacementSpec {
	return PlacementSpec{
		Category:   cat,
		Count:      count,
		ScaleRange: Range{Min: cc.Scale.Min, Max: cc.Scale.Max},
		AxisRange: [2]mgl64.Vec3{
			{cc.AxisMin.X, cc.AxisMin.Y, cc.AxisMin.Z},
			{cc.AxisMax.X, cc.AxisMax.Y, cc.AxisMax.Z},
		},
		AngleRange: Range{Min: cc.Angle.Min, Max: cc.Angle.Max},
	}
}

// PlacedInstance is one scattered object. Template is shared and never modified.
type PlacedInstance struct {
	Category      Category
	Position      mgl64.Vec3
	Scale         float64
	RotationAxis  mgl64.Vec3
	RotationAngle float64 // radians
	Template      *assets.Template
}

// Rotation returns the rotation matrix, identity for a zero axis
func (p PlacedInstance) Rotation() mgl64.Mat4 {
	if p.RotationAxis.Len() < 1e-12 {
		return mgl64.Ident4()
	}
	return mgl64.HomogRotate3D(p.RotationAngle, p.RotationAxis.Normalize())
}

// Transform returns translate * scale * rotate
func (p PlacedInstance) Transform() mgl64.Mat4 {
	t := mgl64.Translate3D(p.Position[0], p.Position[1], p.Position[2])
	s := mgl64.Scale3D(p.Scale, p.Scale, p.Scale)
	return t.Mul4(s).Mul4(p.Rotation())
}

// Pose is a position with roll/pitch/yaw angles in radians
type Pose struct {
	Position         mgl64.Vec3
	Roll, Pitch, Yaw float64
}

// Pose decomposes the rotation as Rz(yaw) * Ry(pitch) * Rx(roll)
func (p PlacedInstance) Pose() Pose {
	r := p.Rotation()
	sp := util.Clamp(-r.At(2, 0), -1, 1)
	return Pose{
		Position: p.Position,
		Roll:     math.Atan2(r.At(2, 1), r.At(2, 2)),
		Pitch:    math.Asin(sp),
		Yaw:      math.Atan2(r.At(1, 0), r.At(0, 0)),
	}
}

// Geometry returns the template transformed into place, or false without a template
func (p PlacedInstance) Geometry() (assets.Mesh, bool) {
	if p.Template == nil {
		return assets.Mesh{}, false
	}
	return p.Template.Instantiate(p.Transform()), true
}

// HeightSampler resolves the surface height under a planar point
type HeightSampler interface {
	HeightAt(x, y float64) (float64, bool)
}

// ScatterPlacer draws placements from a single random stream
type ScatterPlacer struct {
	rng *rand.Rand
}

// NewScatterPlacer creates a placer that draws from rng
func NewScatterPlacer(rng *rand.Rand) *ScatterPlacer {
	return &ScatterPlacer{rng: rng}
}

// Place draws spec.Count independent instances. Per instance the draws are
// x, y, scale, axis x, y, z, angle; z comes from surface and defaults to 0
// off the mesh. Overlap is allowed.
func (p *ScatterPlacer) Place(spec PlacementSpec, bounds Bounds, surface HeightSampler) []PlacedInstance {
	if spec.Count <= 0 {
		return []PlacedInstance{}
	}

	out := make([]PlacedInstance, 0, spec.Count)
	for n := 0; n < spec.Count; n++ {
		x := util.RandomRange(p.rng, bounds.XMin, bounds.XMax)
		y := util.RandomRange(p.rng, bounds.YMin, bounds.YMax)

		z := 0.0
		if surface != nil {
			if h, ok := surface.HeightAt(x, y); ok {
				z = h
			}
		}

		scale := util.RandomRange(p.rng, spec.ScaleRange.Min, spec.ScaleRange.Max)
		var axis mgl64.Vec3
		for k := 0; k < 3; k++ {
			axis[k] = util.RandomRange(p.rng, spec.AxisRange[0][k], spec.AxisRange[1][k])
		}
		angle := util.RandomRange(p.rng, spec.AngleRange.Min, spec.AngleRange.Max)

		out = append(out, PlacedInstance{
			Category:      spec.Category,
			Position:      mgl64.Vec3{x, y, z},
			Scale:         scale,
			RotationAxis:  axis,
			RotationAngle: angle,
			Template:      spec.Template,
		})
	}
	return out
}

// ObstacleCounts splits total between rocks and trees by density. Halves
// round to even; negative, NaN or infinite densities count as zero and a zero
// density sum yields no obstacles.
func ObstacleCounts(total int, rockDensity, treeDensity float64) (rock, tree int) {
	if total <= 0 {
		return 0, 0
	}
	rockDensity = usableDensity(rockDensity)
	treeDensity = usableDensity(treeDensity)
	sum := rockDensity + treeDensity
	if sum <= 0 {
		return 0, 0
	}
	rock = int(math.RoundToEven(float64(total) * rockDensity / sum))
	return rock, total - rock
}

func usableDensity(d float64) float64 {
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return 0
	}
	return d
}
