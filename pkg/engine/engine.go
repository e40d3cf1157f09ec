package engine

import (
	"fmt"
	"sync"

	"terragen/internal/logger"
	"terragen/pkg/assets"
	"terragen/pkg/config"
	"terragen/pkg/export"
	"terragen/pkg/terrain"
)

// Engine wires configuration, terrain state, template assets and the exporter
// together. Its methods are safe for concurrent use.
type Engine struct {
	mu       sync.Mutex
	config   *config.Config
	logger   *logger.Logger
	library  *assets.Library
	state    *terrain.TerrainState
	exporter *export.Exporter
}

// NewEngine creates the engine and runs the first regeneration
func NewEngine(cfg *config.Config, log *logger.Logger) (*Engine, error) {
	if log == nil {
		log = logger.Discard()
	}

	library, err := assets.NewLibraryFromConfig(cfg.Assets, log.WithComponent("assets"))
	if err != nil {
		log.Warnf("Asset catalog unavailable, treating asset references as paths: %v", err)
		library = assets.NewLibrary(nil, log.WithComponent("assets"))
	}

	state, err := terrain.NewTerrainState(cfg,
		terrain.WithLogger(log.WithComponent("terrain")),
		terrain.WithAssetLoader(library),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize terrain: %w", err)
	}

	e := &Engine{
		config:   cfg,
		logger:   log,
		library:  library,
		state:    state,
		exporter: export.NewExporter(cfg.Export, log.WithComponent("export")),
	}
	state.OnRegenerate(e.onRegenerate)
	return e, nil
}

func (e *Engine) onRegenerate(snap terrain.Snapshot) {
	e.logger.Infof("Terrain generation %d: %d faces, %d rocks, %d trees, %d grass",
		snap.Generation, len(snap.Mesh.Faces),
		len(snap.Placements[terrain.Rock]), len(snap.Placements[terrain.Tree]), len(snap.Placements[terrain.Grass]))
	for cat, err := range snap.Failures {
		e.logger.Warnf("%s placements unavailable: %v", cat, err)
	}
}

// Do runs fn with exclusive access to the terrain state
func (e *Engine) Do(fn func(*terrain.TerrainState) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.state)
}

// Snapshot returns the latest regeneration output
func (e *Engine) Snapshot() terrain.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Snapshot()
}

// Settings returns the current parameters as a flat map
func (e *Engine) Settings() config.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Settings()
}

// ApplySettings updates several parameters with one regeneration
func (e *Engine) ApplySettings(flat config.Settings) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.ApplySettings(flat)
}

// Export writes the current terrain and placements to the output directory
func (e *Engine) Export() (*export.Result, error) {
	snap := e.Snapshot()
	return e.exporter.Export(snap)
}

// ListPresets returns the names of the stored presets
func (e *Engine) ListPresets() ([]string, error) {
	return config.ListPresets(e.config.Presets.Dir)
}

// LoadPreset replaces the parameters with a stored preset
func (e *Engine) LoadPreset(name string) error {
	cfg, err := config.LoadPreset(e.config.Presets.Dir, name)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	// the preset only carries generation parameters
	next := e.state.Config()
	next.Terrain = cfg.Terrain
	next.Noise = cfg.Noise
	next.Placement = cfg.Placement
	if err := e.state.SetConfig(&next); err != nil {
		return err
	}
	e.logger.Infof("Loaded preset %s", name)
	return nil
}

// SavePreset stores the current parameters under name
func (e *Engine) SavePreset(name string) error {
	e.mu.Lock()
	cfg := e.state.Config()
	e.mu.Unlock()

	if err := config.SavePreset(e.config.Presets.Dir, name, &cfg); err != nil {
		return err
	}
	e.logger.Infof("Saved preset %s", name)
	return nil
}
