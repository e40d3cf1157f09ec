package noise

import (
	"math"

	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// Generator evaluates a configured noise function at 2D coordinates.
// Every random choice is derived from Parameters.Seed, so two generators built
// from equal parameters return identical values.
type Generator struct {
	params  Parameters
	perlins map[int64]*perlin.Perlin
	simplex map[int64]opensimplex.Noise
}

// NewGenerator validates the parameters and creates a generator
func NewGenerator(params Parameters) (*Generator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Generator{
		params:  params,
		perlins: make(map[int64]*perlin.Perlin),
		simplex: make(map[int64]opensimplex.Noise),
	}, nil
}

// Parameters returns the parameters the generator was built with
func (g *Generator) Parameters() Parameters {
	return g.params
}

// Eval returns the noise value at (x, y). Coordinates are expected to be
// already scaled by the base frequency.
func (g *Generator) Eval(x, y float64) float64 {
	if g.params.Perturb.Enabled() {
		x, y = g.perturb(x, y)
	}
	return g.evalFamily(x, y)
}

// EvalUnwarped evaluates the family without any perturbation step
func (g *Generator) EvalUnwarped(x, y float64) float64 {
	return g.evalFamily(x, y)
}

func (g *Generator) evalFamily(x, y float64) float64 {
	family := g.params.Family
	if family.IsFractal() {
		return g.fractal(family.Base(), x, y)
	}
	return g.single(family, g.params.Seed, x, y)
}

// single evaluates one octave of a base family
func (g *Generator) single(family Family, seed int64, x, y float64) float64 {
	switch family {
	case Value:
		return Value2D(x, y, seed)
	case Perlin:
		return g.perlin(seed).Noise2D(x, y)
	case Simplex:
		return g.simplexNoise(seed).Eval2(x, y)
	case Cubic:
		return Cubic2D(x, y, seed)
	case WhiteNoise:
		return White2D(x, y, seed)
	case Cellular:
		return g.cellular(x, y, seed)
	}
	return 0
}

func (g *Generator) perlin(seed int64) *perlin.Perlin {
	p, ok := g.perlins[seed]
	if !ok {
		// alpha=1, beta=1, n=1 gives the raw single-octave gradient noise;
		// octaves are summed by fractal so every family shares one construction.
		p = perlin.NewPerlin(1, 1, 1, seed)
		g.perlins[seed] = p
	}
	return p
}

func (g *Generator) simplexNoise(seed int64) opensimplex.Noise {
	n, ok := g.simplex[seed]
	if !ok {
		n = opensimplex.New(seed)
		g.simplex[seed] = n
	}
	return n
}

// fractal sums Octaves layers of the base family. Octave k uses seed Seed+k,
// frequency lacunarity^k and amplitude gain^k.
func (g *Generator) fractal(base Family, x, y float64) float64 {
	fp := g.params.Fractal
	seed := g.params.Seed

	amplitude := 1.0
	bounding := 0.0
	sum := 0.0

	for i := 0; i < fp.Octaves; i++ {
		n := g.single(base, seed+int64(i), x, y)

		switch fp.Type {
		case Billow:
			n = math.Abs(n)*2 - 1
		case RigidMulti:
			n = 1 - math.Abs(n)
		}

		sum += n * amplitude
		bounding += amplitude

		amplitude *= fp.Gain
		x *= fp.Lacunarity
		y *= fp.Lacunarity
	}

	if bounding == 0 {
		return sum
	}
	return sum / bounding
}

// perturb warps (x, y) according to the perturb settings
func (g *Generator) perturb(x, y float64) (float64, float64) {
	pp := g.params.Perturb
	seed := g.params.Seed

	if pp.Type.gradient() {
		octaves := 1
		if pp.Type.fractal() {
			octaves = pp.Octaves
		}

		amp := pp.Amp
		freq := pp.Frequency
		for i := 0; i < octaves; i++ {
			dx, dy := gradientVector(x*freq, y*freq, seed+int64(i)+1013)
			x += dx * amp
			y += dy * amp
			amp *= pp.Gain
			freq *= pp.Lacunarity
		}
	}

	if pp.Type.normalise() {
		length := math.Sqrt(x*x + y*y)
		if length > 0 {
			s := pp.NormaliseLength / length
			x *= s
			y *= s
		}
	}

	return x, y
}

// cellular evaluates Worley noise with the configured distance function and return type
func (g *Generator) cellular(x, y float64, seed int64) float64 {
	cp := g.params.Cellular

	ix := int(math.Floor(x))
	iy := int(math.Floor(y))

	f1, f2 := math.Inf(1), math.Inf(1)
	var nearestX, nearestY float64
	var nearestCX, nearestCY int

	for nx := -1; nx <= 1; nx++ {
		for ny := -1; ny <= 1; ny++ {
			cx := ix + nx
			cy := iy + ny

			// Feature point inside the cell, pulled toward the centre as jitter drops
			px := float64(cx) + 0.5 + (hashToFloat(hash(cx, cy, 0, int(seed)))-0.5)*cp.Jitter
			py := float64(cy) + 0.5 + (hashToFloat(hash(cx, cy, 1, int(seed)))-0.5)*cp.Jitter

			d := distance(cp.DistanceFunction, px-x, py-y)
			if d < f1 {
				f2 = f1
				f1 = d
				nearestX, nearestY = px, py
				nearestCX, nearestCY = cx, cy
			} else if d < f2 {
				f2 = d
			}
		}
	}

	switch cp.ReturnType {
	case CellValue:
		return hashToFloat(hash(nearestCX, nearestCY, 2, int(seed)))*2 - 1
	case Distance:
		return f1
	case Distance2:
		return f2
	case Distance2Add:
		return (f2 + f1) * 0.5
	case Distance2Sub:
		return f2 - f1
	case Distance2Mul:
		return f2 * f1 * 0.5
	case Distance2Div:
		if f2 == 0 {
			return 0
		}
		return f1 / f2
	case NoiseLookup:
		return Value2D(nearestX*cp.LookupFrequency, nearestY*cp.LookupFrequency, seed+1)
	case Distance2Cave:
		if f2 == 0 {
			return 0
		}
		return math.Min(math.Max(f1/f2, 0), 1) - 1
	}
	return f1
}

func distance(fn DistanceFunction, dx, dy float64) float64 {
	switch fn {
	case Manhattan:
		return math.Abs(dx) + math.Abs(dy)
	case Natural:
		return math.Abs(dx) + math.Abs(dy) + math.Sqrt(dx*dx+dy*dy)
	default:
		return math.Sqrt(dx*dx + dy*dy)
	}
}

// Value2D generates 2D value noise in [-1, 1]
func Value2D(x, y float64, seed int64) float64 {
	x0 := math.Floor(x)
	y0 := math.Floor(y)
	ix, iy := int(x0), int(y0)

	sx := smoothstep(x - x0)
	sy := smoothstep(y - y0)

	v00 := latticeValue(ix, iy, seed)
	v10 := latticeValue(ix+1, iy, seed)
	v01 := latticeValue(ix, iy+1, seed)
	v11 := latticeValue(ix+1, iy+1, seed)

	return lerp(lerp(v00, v10, sx), lerp(v01, v11, sx), sy)
}

// Cubic2D generates 2D value noise with Catmull-Rom interpolation over a 4x4 lattice
func Cubic2D(x, y float64, seed int64) float64 {
	x0 := math.Floor(x)
	y0 := math.Floor(y)
	ix, iy := int(x0), int(y0)
	tx := x - x0
	ty := y - y0

	var rows [4]float64
	for j := -1; j <= 2; j++ {
		rows[j+1] = cubicLerp(
			latticeValue(ix-1, iy+j, seed),
			latticeValue(ix, iy+j, seed),
			latticeValue(ix+1, iy+j, seed),
			latticeValue(ix+2, iy+j, seed),
			tx,
		)
	}

	// Catmull-Rom overshoots by at most 1.5 per axis
	const bounding = 1 / (1.5 * 1.5)
	return cubicLerp(rows[0], rows[1], rows[2], rows[3], ty) * bounding
}

// White2D hashes the exact coordinates into a value in [-1, 1]
func White2D(x, y float64, seed int64) float64 {
	xb := math.Float64bits(x)
	yb := math.Float64bits(y)
	hx := int(int32(xb ^ (xb >> 32)))
	hy := int(int32(yb ^ (yb >> 32)))
	return hashToFloat(hash(hx, hy, 3, int(seed)))*2 - 1
}

// gradientVector interpolates random lattice vectors; used for domain warping
func gradientVector(x, y float64, seed int64) (float64, float64) {
	x0 := math.Floor(x)
	y0 := math.Floor(y)
	ix, iy := int(x0), int(y0)

	sx := smoothstep(x - x0)
	sy := smoothstep(y - y0)

	vec := func(cx, cy int) (float64, float64) {
		return hashToFloat(hash(cx, cy, 0, int(seed)))*2 - 1,
			hashToFloat(hash(cx, cy, 1, int(seed)))*2 - 1
	}

	ax0, ay0 := vec(ix, iy)
	ax1, ay1 := vec(ix+1, iy)
	bx0, by0 := vec(ix, iy+1)
	bx1, by1 := vec(ix+1, iy+1)

	dx := lerp(lerp(ax0, ax1, sx), lerp(bx0, bx1, sx), sy)
	dy := lerp(lerp(ay0, ay1, sx), lerp(by0, by1, sx), sy)
	return dx, dy
}

// Helper functions

func latticeValue(x, y int, seed int64) float64 {
	return hashToFloat(hash(x, y, 0, int(seed)))*2 - 1
}

// hash combines the coordinates and seed to create a unique hash
func hash(x, y, z, seed int) int {
	h := seed + x*374761393 + y*668265263 + z*2147483647
	h = (h ^ (h >> 13)) * 1274126177
	return h ^ (h >> 16)
}

// hashToFloat converts a hash to a float in range [0, 1)
func hashToFloat(h int) float64 {
	return float64(h&0xFFFFFF) / 16777216.0
}

// cubicLerp is Catmull-Rom interpolation between b and c
func cubicLerp(a, b, c, d, t float64) float64 {
	p := (d - c) - (a - b)
	return t*t*t*p + t*t*((a-b)-p) + t*(c-a) + b
}

// lerp performs linear interpolation
func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// smoothstep is the quintic fade 6t^5 - 15t^4 + 10t^3
func smoothstep(t float64) float64 {
	return t * t * t * (t*(t*6.0-15.0) + 10.0)
}
