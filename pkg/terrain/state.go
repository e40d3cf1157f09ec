package terrain

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"terragen/internal/logger"
	noise "terragen/internal/math"
	"terragen/internal/util"
	"terragen/pkg/assets"
	"terragen/pkg/config"
)

// Status is the regeneration state of a TerrainState
type Status int

const (
	Clean Status = iota
	Dirty
)

func (s Status) String() string {
	if s == Dirty {
		return "dirty"
	}
	return "clean"
}

// AssetLoader resolves an asset reference to a template mesh
type AssetLoader interface {
	Load(ref string) (*assets.Template, error)
}

// Snapshot is the derived output of one regeneration. Its slices and mesh are
// replaced, never modified, by later regenerations.
type Snapshot struct {
	Generation int
	Field      HeightField
	Mesh       *TerrainMesh
	Placements map[Category][]PlacedInstance
	RockCount  int
	TreeCount  int
	Failures   map[Category]error
}

// Option configures a TerrainState
type Option func(*TerrainState)

// WithLogger sets the logger used for regeneration messages
func WithLogger(log *logger.Logger) Option {
	return func(s *TerrainState) {
		if log != nil {
			s.log = log
		}
	}
}

// WithAssetLoader sets where template meshes for placed objects come from.
// Without one, placements carry no template.
func WithAssetLoader(loader AssetLoader) Option {
	return func(s *TerrainState) {
		s.assets = loader
	}
}

// TerrainState owns the generation parameters and everything derived from
// them. Every setter clamps its input and synchronously rebuilds the whole
// pipeline; a failed rebuild leaves parameters and outputs untouched.
// It is not safe for concurrent use.
type TerrainState struct {
	cfg    *config.Config
	log    *logger.Logger
	assets AssetLoader
	status Status

	snap      Snapshot
	surface   *SurfaceQuery
	observers []func(Snapshot)
}

// NewTerrainState clamps a copy of cfg and runs the first regeneration
func NewTerrainState(cfg *config.Config, opts ...Option) (*TerrainState, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &TerrainState{
		log: logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}

	next := cfg.Clone()
	next.Clamp()
	snap, surface, err := s.build(next, 1)
	if err != nil {
		return nil, err
	}
	s.cfg = next
	s.snap = snap
	s.surface = surface
	return s, nil
}

// OnRegenerate registers fn to be called after every successful regeneration
func (s *TerrainState) OnRegenerate(fn func(Snapshot)) {
	s.observers = append(s.observers, fn)
}

// Regenerate rebuilds everything from the current parameters
func (s *TerrainState) Regenerate() error {
	return s.update(func(*config.Config) {})
}

// SetConfig replaces every parameter at once
func (s *TerrainState) SetConfig(cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: nil config", ErrInvalidParameter)
	}
	return s.update(func(c *config.Config) { *c = *cfg })
}

// SetWidth sets the terrain extent along x (min 1)
func (s *TerrainState) SetWidth(width float64) error {
	return s.update(func(c *config.Config) { c.Terrain.Width = width })
}

// SetDepth sets the terrain extent along y (min 1)
func (s *TerrainState) SetDepth(depth float64) error {
	return s.update(func(c *config.Config) { c.Terrain.Depth = depth })
}

// SetHeightMultiplier sets the factor applied to the noise field (min 0)
func (s *TerrainState) SetHeightMultiplier(k float64) error {
	return s.update(func(c *config.Config) { c.Terrain.HeightMultiplier = k })
}

// SetResolution sets the number of samples per side
func (s *TerrainState) SetResolution(res int) error {
	return s.update(func(c *config.Config) { c.Terrain.Resolution = res })
}

// SetMaxAngle sets the slope limit in degrees, clamped to [0, 90]
func (s *TerrainState) SetMaxAngle(deg float64) error {
	return s.update(func(c *config.Config) { c.Terrain.MaxAngle = deg })
}

// SetNoiseParameters replaces the noise parameters wholesale
func (s *TerrainState) SetNoiseParameters(p noise.Parameters) error {
	return s.update(func(c *config.Config) { c.Noise = p })
}

// SetNoiseFamily selects the base noise; unknown families are rejected
func (s *TerrainState) SetNoiseFamily(f noise.Family) error {
	return s.update(func(c *config.Config) { c.Noise.Family = f })
}

// SetSeed sets the noise seed; every value is valid
func (s *TerrainState) SetSeed(seed int64) error {
	return s.update(func(c *config.Config) { c.Noise.Seed = seed })
}

// SetFrequency sets the base noise frequency (min 1e-4)
func (s *TerrainState) SetFrequency(freq float64) error {
	return s.update(func(c *config.Config) { c.Noise.Frequency = freq })
}

// SetRockDensity sets the rock weight of the obstacle split (min 0)
func (s *TerrainState) SetRockDensity(d float64) error {
	return s.update(func(c *config.Config) { c.Placement.RockDensity = d })
}

// SetTreeDensity sets the tree weight of the obstacle split (min 0)
func (s *TerrainState) SetTreeDensity(d float64) error {
	return s.update(func(c *config.Config) { c.Placement.TreeDensity = d })
}

// SetTotalObstacles sets the combined rock and tree count (min 0)
func (s *TerrainState) SetTotalObstacles(n int) error {
	return s.update(func(c *config.Config) { c.Placement.TotalObstacles = n })
}

// SetTotalGrass sets the number of grass instances (min 0)
func (s *TerrainState) SetTotalGrass(n int) error {
	return s.update(func(c *config.Config) { c.Placement.TotalGrass = n })
}

// SetPlacementSeed sets the seed of the scatter random stream
func (s *TerrainState) SetPlacementSeed(seed int64) error {
	return s.update(func(c *config.Config) { c.Placement.Seed = seed })
}

// ApplySettings applies a flat settings map with a single regeneration
func (s *TerrainState) ApplySettings(flat config.Settings) error {
	next := s.cfg.Clone()
	if err := config.ApplySettings(next, flat); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	return s.update(func(c *config.Config) { *c = *next })
}

// Settings returns the current parameters as a flat map
func (s *TerrainState) Settings() config.Settings {
	return config.FlattenSettings(s.cfg)
}

func (s *TerrainState) update(mutate func(*config.Config)) error {
	next := s.cfg.Clone()
	mutate(next)
	if err := next.CheckFinite(); err != nil {
		s.log.Warnf("Rejected parameters: %v", err)
		return fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	next.Clamp()

	s.status = Dirty
	snap, surface, err := s.build(next, s.snap.Generation+1)
	s.status = Clean
	if err != nil {
		s.log.Errorf("Regeneration failed, keeping previous terrain: %v", err)
		return err
	}

	s.cfg = next
	s.snap = snap
	s.surface = surface
	for _, fn := range s.observers {
		fn(snap)
	}
	return nil
}

// build runs the full pipeline: field, height scale, mesh, surface, counts,
// then Rock, Tree and Grass placement from one random stream
func (s *TerrainState) build(cfg *config.Config, generation int) (Snapshot, *SurfaceQuery, error) {
	defer util.TimeTrack(time.Now(), "Regeneration", s.log.Debugf)

	field, err := GenerateHeightField(cfg.Terrain.Resolution, cfg.Noise)
	if err != nil {
		return Snapshot{}, nil, err
	}
	field = field.Scaled(cfg.Terrain.HeightMultiplier)
	field.Width = cfg.Terrain.Width
	field.Depth = cfg.Terrain.Depth

	mesh, err := BuildMesh(field, cfg.Terrain.Width, cfg.Terrain.Depth, cfg.Terrain.MaxAngle)
	if err != nil {
		return Snapshot{}, nil, err
	}
	if mesh.SlopeScale < 1 {
		s.log.Debugf("Slope clamp scaled heights by %.4f", mesh.SlopeScale)
	}
	surface := NewSurfaceQuery(mesh)

	rock, tree := ObstacleCounts(cfg.Placement.TotalObstacles, cfg.Placement.RockDensity, cfg.Placement.TreeDensity)
	counts := map[Category]int{Rock: rock, Tree: tree, Grass: cfg.Placement.TotalGrass}

	snap := Snapshot{
		Generation: generation,
		Field:      field,
		Mesh:       mesh,
		Placements: make(map[Category][]PlacedInstance, 3),
		RockCount:  rock,
		TreeCount:  tree,
		Failures:   make(map[Category]error),
	}

	placer := NewScatterPlacer(rand.New(rand.NewSource(cfg.Placement.Seed)))
	bounds := mesh.Bounds()
	for _, cat := range Categories() {
		spec := SpecFromConfig(cat, counts[cat], categoryConfig(cfg, cat))

		var loadErr error
		if spec.Count > 0 {
			spec.Template, loadErr = s.template(cfg, cat)
		}

		// drawn even on failure so later categories see the same stream
		placed := placer.Place(spec, bounds, surface)
		if loadErr != nil {
			s.log.Warnf("No %s placements: %v", cat, loadErr)
			snap.Failures[cat] = loadErr
			placed = []PlacedInstance{}
		}
		snap.Placements[cat] = placed
	}

	s.log.Debugf("Generation %d: %d vertices, %d faces, %d rocks, %d trees, %d grass",
		generation, len(mesh.Vertices), len(mesh.Faces),
		len(snap.Placements[Rock]), len(snap.Placements[Tree]), len(snap.Placements[Grass]))

	return snap, surface, nil
}

func (s *TerrainState) template(cfg *config.Config, cat Category) (*assets.Template, error) {
	ref := assetRef(cfg.Assets, cat)
	if s.assets == nil || ref == "" {
		return nil, nil
	}
	t, err := s.assets.Load(ref)
	if err != nil {
		if !errors.Is(err, ErrAssetUnavailable) {
			err = fmt.Errorf("%w: %v", ErrAssetUnavailable, err)
		}
		return nil, err
	}
	return t, nil
}

func categoryConfig(cfg *config.Config, cat Category) config.CategoryConfig {
	switch cat {
	case Tree:
		return cfg.Placement.Tree
	case Grass:
		return cfg.Placement.Grass
	default:
		return cfg.Placement.Rock
	}
}

func assetRef(a config.AssetsConfig, cat Category) string {
	switch cat {
	case Tree:
		return a.Tree
	case Grass:
		return a.Grass
	default:
		return a.Rock
	}
}

// Status returns Dirty while a regeneration is running, Clean otherwise
func (s *TerrainState) Status() Status { return s.status }

// Config returns a copy of the current parameters
func (s *TerrainState) Config() config.Config { return *s.cfg }

// Generation counts successful regenerations, starting at 1
func (s *TerrainState) Generation() int { return s.snap.Generation }

func (s *TerrainState) Field() HeightField { return s.snap.Field }

func (s *TerrainState) Mesh() *TerrainMesh { return s.snap.Mesh }

func (s *TerrainState) Surface() *SurfaceQuery { return s.surface }

// Placements returns the instances of one category
func (s *TerrainState) Placements(cat Category) []PlacedInstance {
	return s.snap.Placements[cat]
}

// AllPlacements returns rocks, then trees, then grass
func (s *TerrainState) AllPlacements() []PlacedInstance {
	var out []PlacedInstance
	for _, cat := range Categories() {
		out = append(out, s.snap.Placements[cat]...)
	}
	return out
}

// ObstacleCounts returns the rock and tree counts of the last regeneration
func (s *TerrainState) ObstacleCounts() (rock, tree int) {
	return s.snap.RockCount, s.snap.TreeCount
}

// Failures returns the per-category asset errors of the last regeneration
func (s *TerrainState) Failures() map[Category]error {
	out := make(map[Category]error, len(s.snap.Failures))
	for k, v := range s.snap.Failures {
		out[k] = v
	}
	return out
}

// Snapshot returns the derived outputs of the last regeneration
func (s *TerrainState) Snapshot() Snapshot { return s.snap }
