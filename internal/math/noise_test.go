package noise

import (
	"math"
	"testing"

	"gopkg.in/yaml.v2"
)

func mustGenerator(t *testing.T, p Parameters) *Generator {
	t.Helper()
	g, err := NewGenerator(p)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	return g
}

func TestGeneratorDeterminism(t *testing.T) {
	for _, family := range Families() {
		p := DefaultParameters()
		p.Family = family
		p.Seed = 7
		g1 := mustGenerator(t, p)
		g2 := mustGenerator(t, p)

		for i := 0; i < 200; i++ {
			x := float64(i)*0.37 - 20
			y := float64(i)*0.53 + 3
			if a, b := g1.Eval(x, y), g2.Eval(x, y); a != b {
				t.Fatalf("%s not deterministic at (%f, %f): %v != %v", family, x, y, a, b)
			}
		}
	}
}

func TestFamiliesProduceFiniteValues(t *testing.T) {
	for _, family := range Families() {
		for _, rt := range []CellularReturnType{CellValue, Distance, Distance2, Distance2Add, Distance2Sub, Distance2Mul, Distance2Div, NoiseLookup, Distance2Cave} {
			p := DefaultParameters()
			p.Family = family
			p.Cellular.ReturnType = rt
			g := mustGenerator(t, p)
			for i := 0; i < 100; i++ {
				v := g.Eval(float64(i)*0.21, float64(i)*0.13)
				if math.IsNaN(v) || math.IsInf(v, 0) {
					t.Fatalf("%s/%s produced %v", family, rt, v)
				}
			}
			if family != Cellular {
				break
			}
		}
	}
}

func TestSingleOctaveFBMMatchesBaseFamily(t *testing.T) {
	pairs := map[Family]Family{
		ValueFractal:   Value,
		PerlinFractal:  Perlin,
		SimplexFractal: Simplex,
		CubicFractal:   Cubic,
	}
	for fractal, base := range pairs {
		pf := DefaultParameters()
		pf.Family = fractal
		pf.Fractal.Octaves = 1
		pf.Fractal.Type = FBM
		pb := pf
		pb.Family = base

		gf := mustGenerator(t, pf)
		gb := mustGenerator(t, pb)
		for i := 0; i < 50; i++ {
			x, y := float64(i)*0.17, float64(i)*0.29
			if a, b := gf.Eval(x, y), gb.Eval(x, y); math.Abs(a-b) > 1e-12 {
				t.Errorf("%s with one octave = %v, %s = %v", fractal, a, base, b)
			}
		}
	}
}

func TestPerturbDisabledMatchesUnwarped(t *testing.T) {
	p := DefaultParameters()
	p.Perturb.Type = NoPerturb
	g := mustGenerator(t, p)
	for i := 0; i < 50; i++ {
		x, y := float64(i)*0.11, float64(i)*0.07
		if g.Eval(x, y) != g.EvalUnwarped(x, y) {
			t.Fatalf("disabled perturbation changed the value at (%f, %f)", x, y)
		}
	}
}

func TestPerturbWarpsCoordinates(t *testing.T) {
	p := DefaultParameters()
	p.Family = Value
	p.Perturb.Type = GradientFractal
	p.Perturb.Amp = 2
	g := mustGenerator(t, p)

	differs := 0
	for i := 0; i < 50; i++ {
		x, y := float64(i)*0.31, float64(i)*0.23
		if g.Eval(x, y) != g.EvalUnwarped(x, y) {
			differs++
		}
	}
	if differs == 0 {
		t.Fatal("gradient perturbation had no effect")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Parameters)
	}{
		{"zero frequency", func(p *Parameters) { p.Frequency = 0 }},
		{"negative frequency", func(p *Parameters) { p.Frequency = -1 }},
		{"zero octaves", func(p *Parameters) { p.Fractal.Octaves = 0 }},
		{"jitter above one", func(p *Parameters) { p.Cellular.Jitter = 1.5 }},
		{"negative jitter", func(p *Parameters) { p.Cellular.Jitter = -0.1 }},
		{"NaN jitter", func(p *Parameters) { p.Cellular.Jitter = math.NaN() }},
		{"NaN frequency", func(p *Parameters) { p.Frequency = math.NaN() }},
		{"unknown family", func(p *Parameters) { p.Family = Family(99) }},
		{"perturb zero octaves", func(p *Parameters) {
			p.Perturb.Type = GradientFractal
			p.Perturb.Octaves = 0
		}},
	}
	for _, tc := range cases {
		p := DefaultParameters()
		tc.mutate(&p)
		if err := p.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
	if err := DefaultParameters().Validate(); err != nil {
		t.Fatalf("default parameters invalid: %v", err)
	}
}

func TestParseNames(t *testing.T) {
	if f, err := ParseFamily("perlinfractal"); err != nil || f != PerlinFractal {
		t.Errorf("ParseFamily = %v, %v", f, err)
	}
	if pt, err := ParsePerturbType("Gradient_Normalise"); err != nil || pt != GradientNormalise {
		t.Errorf("ParsePerturbType = %v, %v", pt, err)
	}
	if _, err := ParseFamily("Voronoi"); err == nil {
		t.Error("expected error for unknown family")
	}
	if _, err := ParseDistanceFunction("Chebyshev"); err == nil {
		t.Error("expected error for unknown distance function")
	}
}

func TestParametersYAML(t *testing.T) {
	p := DefaultParameters()
	p.Family = CubicFractal
	p.Fractal.Type = RigidMulti
	p.Perturb.Type = GradientFractalNormalise
	p.Cellular.ReturnType = Distance2Sub
	p.Cellular.DistanceFunction = Natural

	data, err := yaml.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Parameters
	if err := yaml.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != p {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", back, p)
	}

	bad := []byte("family: Voronoi\n")
	if err := yaml.Unmarshal(bad, &back); err == nil {
		t.Fatal("expected unknown family to fail at parse time")
	}
}
