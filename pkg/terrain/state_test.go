package terrain

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"testing"

	"terragen/internal/logger"
	noise "terragen/internal/math"
	"terragen/pkg/assets"
	"terragen/pkg/config"
)

type fakeLoader struct {
	fail  map[string]bool
	calls []string
}

func (f *fakeLoader) Load(ref string) (*assets.Template, error) {
	f.calls = append(f.calls, ref)
	if f.fail[ref] {
		return nil, fmt.Errorf("open %s: no such file", ref)
	}
	mesh, err := assets.ReadOBJ(strings.NewReader("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"))
	if err != nil {
		return nil, err
	}
	return assets.NewTemplate(ref, ref+".obj", mesh), nil
}

func smallConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Terrain.Resolution = 12
	cfg.Placement.TotalObstacles = 10
	cfg.Placement.TotalGrass = 20
	cfg.Placement.Seed = 3
	return cfg
}

func mustState(t *testing.T, cfg *config.Config, opts ...Option) *TerrainState {
	t.Helper()
	s, err := NewTerrainState(cfg, opts...)
	if err != nil {
		t.Fatalf("NewTerrainState: %v", err)
	}
	return s
}

func TestNewTerrainStateDefaults(t *testing.T) {
	s := mustState(t, nil)
	if s.Status() != Clean || s.Generation() != 1 {
		t.Fatalf("status %s, generation %d", s.Status(), s.Generation())
	}
	res := s.Config().Terrain.Resolution
	if len(s.Mesh().Vertices) != res*res || len(s.Field().Samples) != res*res {
		t.Fatalf("mesh/field sizes do not match resolution %d", res)
	}
	// one obstacle split evenly rounds to a single tree
	if r, tr := s.ObstacleCounts(); r != 0 || tr != 1 {
		t.Errorf("obstacle counts = (%d, %d)", r, tr)
	}
	if len(s.Placements(Grass)) != 100 {
		t.Errorf("%d grass placements", len(s.Placements(Grass)))
	}
}

func TestSettersRegenerateAndNotifyOnce(t *testing.T) {
	s := mustState(t, smallConfig())

	var fired []int
	s.OnRegenerate(func(snap Snapshot) {
		fired = append(fired, snap.Generation)
	})

	prevMesh := s.Mesh()
	steps := []func() error{
		func() error { return s.SetWidth(20) },
		func() error { return s.SetDepth(5) },
		func() error { return s.SetHeightMultiplier(3) },
		func() error { return s.SetResolution(6) },
		func() error { return s.SetMaxAngle(30) },
		func() error { return s.SetNoiseFamily(noise.SimplexFractal) },
		func() error { return s.SetSeed(9) },
		func() error { return s.SetFrequency(0.05) },
		func() error { return s.SetRockDensity(3) },
		func() error { return s.SetTreeDensity(1) },
		func() error { return s.SetTotalObstacles(4) },
		func() error { return s.SetTotalGrass(7) },
		func() error { return s.SetPlacementSeed(12) },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if len(fired) != i+1 {
			t.Fatalf("step %d: observer fired %d times in total", i, len(fired))
		}
		if s.Status() != Clean {
			t.Fatalf("step %d: status %s", i, s.Status())
		}
		if s.Mesh() == prevMesh {
			t.Fatalf("step %d: mesh was not replaced", i)
		}
		prevMesh = s.Mesh()
	}

	if len(s.Mesh().Vertices) != 36 {
		t.Errorf("%d vertices at resolution 6", len(s.Mesh().Vertices))
	}
	b := s.Mesh().Bounds()
	if b.XMax != 10 || b.YMax != 2.5 {
		t.Errorf("bounds = %+v", b)
	}
	if r, tr := s.ObstacleCounts(); r != 3 || tr != 1 {
		t.Errorf("obstacle counts = (%d, %d), want (3, 1)", r, tr)
	}
	if len(s.Placements(Rock)) != 3 || len(s.Placements(Tree)) != 1 || len(s.Placements(Grass)) != 7 {
		t.Errorf("placements: %d rocks, %d trees, %d grass",
			len(s.Placements(Rock)), len(s.Placements(Tree)), len(s.Placements(Grass)))
	}
	if len(s.AllPlacements()) != 11 {
		t.Errorf("%d placements in total", len(s.AllPlacements()))
	}
	if fired[len(fired)-1] != s.Generation() {
		t.Errorf("last notification for generation %d, state at %d", fired[len(fired)-1], s.Generation())
	}
}

func TestSettersClamp(t *testing.T) {
	s := mustState(t, smallConfig())
	if err := s.SetWidth(-4); err != nil {
		t.Fatal(err)
	}
	if err := s.SetResolution(0); err != nil {
		t.Fatal(err)
	}
	if err := s.SetMaxAngle(500); err != nil {
		t.Fatal(err)
	}
	if err := s.SetTotalGrass(-3); err != nil {
		t.Fatal(err)
	}
	cfg := s.Config()
	if cfg.Terrain.Width != 1 || cfg.Terrain.Resolution != 2 || cfg.Terrain.MaxAngle != 90 || cfg.Placement.TotalGrass != 0 {
		t.Fatalf("not clamped: %+v", cfg.Terrain)
	}
	if len(s.Mesh().Faces) != 2 || len(s.Placements(Grass)) != 0 {
		t.Fatalf("%d faces, %d grass", len(s.Mesh().Faces), len(s.Placements(Grass)))
	}
}

func TestHeightMultiplierScalesField(t *testing.T) {
	s := mustState(t, smallConfig())
	base := s.Field().Samples

	if err := s.SetHeightMultiplier(2.5); err != nil {
		t.Fatal(err)
	}
	for k, v := range s.Field().Samples {
		if v != base[k]*2.5 {
			t.Fatalf("sample %d = %v, want %v", k, v, base[k]*2.5)
		}
	}

	if err := s.SetHeightMultiplier(0); err != nil {
		t.Fatal(err)
	}
	for _, p := range s.AllPlacements() {
		if p.Position[2] != 0 {
			t.Fatalf("placement above a flat surface: %v", p.Position)
		}
	}
}

func TestFailedRegenerationKeepsState(t *testing.T) {
	s := mustState(t, smallConfig())
	fired := 0
	s.OnRegenerate(func(Snapshot) { fired++ })

	before := s.Snapshot()
	cfgBefore := s.Config()

	err := s.SetNoiseFamily(noise.Family(42))
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("err = %v, want ErrInvalidParameter", err)
	}
	if fired != 0 {
		t.Error("observer fired for a failed regeneration")
	}
	if s.Status() != Clean || s.Generation() != before.Generation {
		t.Errorf("status %s, generation %d", s.Status(), s.Generation())
	}
	if s.Mesh() != before.Mesh || !reflect.DeepEqual(s.Config(), cfgBefore) {
		t.Error("state changed after a failed regeneration")
	}

	if err := s.ApplySettings(config.Settings{"terrain.width": 9.0, "noise.family": "Voronoi"}); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("ApplySettings err = %v", err)
	}
	if s.Config().Terrain.Width != cfgBefore.Terrain.Width {
		t.Error("partial settings applied")
	}
}

func TestNonFiniteParametersRejected(t *testing.T) {
	s := mustState(t, smallConfig())
	fired := 0
	s.OnRegenerate(func(Snapshot) { fired++ })

	before := s.Snapshot()
	cfgBefore := s.Config()

	setters := map[string]func(float64) error{
		"width":             s.SetWidth,
		"depth":             s.SetDepth,
		"height_multiplier": s.SetHeightMultiplier,
		"max_angle":         s.SetMaxAngle,
		"frequency":         s.SetFrequency,
		"rock_density":      s.SetRockDensity,
		"tree_density":      s.SetTreeDensity,
	}
	for name, set := range setters {
		for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
			if err := set(v); !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("%s(%v): err = %v, want ErrInvalidParameter", name, v, err)
			}
		}
	}

	p := s.Config().Noise
	p.Cellular.Jitter = math.NaN()
	if err := s.SetNoiseParameters(p); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("NaN jitter: err = %v", err)
	}
	if err := s.ApplySettings(config.Settings{"terrain.width": "NaN"}); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("ApplySettings NaN: err = %v", err)
	}

	if fired != 0 || s.Generation() != before.Generation || s.Mesh() != before.Mesh {
		t.Error("rejected parameters triggered a regeneration")
	}
	if !reflect.DeepEqual(s.Config(), cfgBefore) {
		t.Error("rejected parameters changed the configuration")
	}
	for _, placed := range s.Snapshot().Placements {
		for _, inst := range placed {
			if math.IsNaN(inst.Position[0]) || math.IsNaN(inst.Scale) {
				t.Fatalf("non-finite placement %+v", inst)
			}
		}
	}
}

func TestSetConfigNil(t *testing.T) {
	s := mustState(t, smallConfig())
	if err := s.SetConfig(nil); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("err = %v, want ErrInvalidParameter", err)
	}
	if s.Generation() != 1 {
		t.Errorf("generation = %d", s.Generation())
	}
}

func TestSettingsRoundTripThroughState(t *testing.T) {
	a := mustState(t, smallConfig())
	p := noise.DefaultParameters()
	p.Family = noise.Cellular
	p.Cellular.ReturnType = noise.Distance2Add
	p.Perturb.Type = noise.Gradient
	p.Seed = 21
	if err := a.SetNoiseParameters(p); err != nil {
		t.Fatal(err)
	}
	if err := a.SetWidth(7); err != nil {
		t.Fatal(err)
	}

	b := mustState(t, nil)
	fired := 0
	b.OnRegenerate(func(Snapshot) { fired++ })
	if err := b.ApplySettings(a.Settings()); err != nil {
		t.Fatalf("ApplySettings: %v", err)
	}
	if fired != 1 {
		t.Errorf("batch apply regenerated %d times", fired)
	}

	if b.Config().Noise != a.Config().Noise || b.Config().Terrain != a.Config().Terrain {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", b.Config(), a.Config())
	}
	if !reflect.DeepEqual(a.Settings(), b.Settings()) {
		t.Error("flat settings differ after round trip")
	}
	if !reflect.DeepEqual(a.Field(), b.Field()) {
		t.Error("equal settings produced different fields")
	}
	if !reflect.DeepEqual(a.AllPlacements(), b.AllPlacements()) {
		t.Error("equal settings produced different placements")
	}
}

func TestPlacementsFollowSurface(t *testing.T) {
	s := mustState(t, smallConfig())
	for _, p := range s.AllPlacements() {
		z, ok := s.Surface().HeightAt(p.Position[0], p.Position[1])
		if !ok || z != p.Position[2] {
			t.Fatalf("placement %v: surface height %v, %v", p.Position, z, ok)
		}
	}
}

func TestAssetFailureIsIsolated(t *testing.T) {
	cfg := smallConfig()
	cfg.Assets = config.AssetsConfig{Rock: "rock", Tree: "tree", Grass: "grass"}

	ok := mustState(t, cfg, WithAssetLoader(&fakeLoader{}))

	var logs bytes.Buffer
	log := logger.NewLogger("warn")
	log.SetOutput(&logs)
	log.EnableColors(false)
	loader := &fakeLoader{fail: map[string]bool{"rock": true}}
	s := mustState(t, cfg, WithAssetLoader(loader), WithLogger(log))

	if s.Mesh() == nil || len(s.Mesh().Faces) == 0 {
		t.Fatal("mesh missing after an asset failure")
	}
	if err := s.Failures()[Rock]; !errors.Is(err, ErrAssetUnavailable) {
		t.Fatalf("rock failure = %v", err)
	}
	if len(s.Failures()) != 1 {
		t.Errorf("failures = %v", s.Failures())
	}
	if len(s.Placements(Rock)) != 0 {
		t.Errorf("%d rocks placed without a template", len(s.Placements(Rock)))
	}
	if r, _ := s.ObstacleCounts(); r != 5 {
		t.Errorf("rock count = %d", r)
	}
	if !strings.Contains(logs.String(), "No rock placements") {
		t.Errorf("failure not logged: %q", logs.String())
	}

	for _, cat := range []Category{Tree, Grass} {
		got, want := s.Placements(cat), ok.Placements(cat)
		if len(got) != len(want) || len(got) == 0 {
			t.Fatalf("%s: %d placements, want %d", cat, len(got), len(want))
		}
		for i := range got {
			if got[i].Position != want[i].Position || got[i].Template == nil {
				t.Fatalf("%s %d differs from the run without failures", cat, i)
			}
		}
	}
}

func TestAssetsLoadedOnlyWhenNeeded(t *testing.T) {
	cfg := smallConfig()
	cfg.Assets = config.AssetsConfig{Rock: "rock", Tree: "tree"}
	cfg.Placement.TotalObstacles = 0

	loader := &fakeLoader{}
	s := mustState(t, cfg, WithAssetLoader(loader))
	if len(loader.calls) != 0 {
		t.Fatalf("loaded %v with no obstacles", loader.calls)
	}
	for _, p := range s.Placements(Grass) {
		if p.Template != nil {
			t.Fatal("grass has a template without a configured asset")
		}
	}
}
