package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v2"

	noise "terragen/internal/math"
	"terragen/internal/util"
)

// Config represents the main configuration
type Config struct {
	Terrain   TerrainConfig    `yaml:"terrain"`
	Noise     noise.Parameters `yaml:"noise"`
	Placement PlacementConfig  `yaml:"placement"`
	Assets    AssetsConfig     `yaml:"assets"`
	Export    ExportConfig     `yaml:"export"`
	Presets   PresetsConfig    `yaml:"presets"`
	Server    ServerConfig     `yaml:"server"`
	Logging   LoggingConfig    `yaml:"logging"`
}

// TerrainConfig contains the height field and mesh dimensions
type TerrainConfig struct {
	Width            float64 `yaml:"width"`
	Depth            float64 `yaml:"depth"`
	HeightMultiplier float64 `yaml:"height_multiplier"`
	Resolution       int     `yaml:"resolution"`
	MaxAngle         float64 `yaml:"max_angle"` // degrees, 90 disables slope clamping
}

// Range is a closed interval used for uniform draws
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Vec3 is a plain three component vector for settings documents
type Vec3 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// CategoryConfig holds the draw ranges for one object category
type CategoryConfig struct {
	Scale   Range `yaml:"scale"`
	AxisMin Vec3  `yaml:"axis_min"`
	AxisMax Vec3  `yaml:"axis_max"`
	Angle   Range `yaml:"angle"` // radians
}

// PlacementConfig contains obstacle and ground-cover settings
type PlacementConfig struct {
	RockDensity    float64        `yaml:"rock_density"`
	TreeDensity    float64        `yaml:"tree_density"`
	TotalObstacles int            `yaml:"total_obstacles"`
	TotalGrass     int            `yaml:"total_grass"`
	Seed           int64          `yaml:"seed"`
	Rock           CategoryConfig `yaml:"rock"`
	Tree           CategoryConfig `yaml:"tree"`
	Grass          CategoryConfig `yaml:"grass"`
}

// AssetsConfig references the template meshes used for placed objects.
// Rock, Tree and Grass are catalog IDs, or file paths when no catalog is set.
type AssetsConfig struct {
	CatalogFile string `yaml:"catalog_file"`
	Rock        string `yaml:"rock"`
	Tree        string `yaml:"tree"`
	Grass       string `yaml:"grass"`
}

// RGBA is a colour with components in [0,1]
type RGBA struct {
	R float64 `yaml:"r"`
	G float64 `yaml:"g"`
	B float64 `yaml:"b"`
	A float64 `yaml:"a"`
}

// ExportConfig contains scene export settings
type ExportConfig struct {
	OutputDir   string `yaml:"output_dir"`
	ModelName   string `yaml:"model_name"`
	WorldName   string `yaml:"world_name"`
	MeshColor   RGBA   `yaml:"mesh_color"`
	PreviewSize int    `yaml:"preview_size"`
}

// PresetsConfig locates named settings documents
type PresetsConfig struct {
	Dir     string `yaml:"dir"`
	Default string `yaml:"default"`
}

// ServerConfig contains preview server settings
type ServerConfig struct {
	Address string `yaml:"address"`
}

// LoggingConfig contains logger settings
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Documented parameter ranges. Out-of-range numeric input is clamped.
const (
	MinExtent     = 1.0
	MinResolution = 2
	MaxResolution = 1024
	MaxAngle      = 90.0
	MinFrequency  = 1e-4
)

// DefaultConfig creates a default configuration
func DefaultConfig() *Config {
	return &Config{
		Terrain: TerrainConfig{
			Width:            10,
			Depth:            10,
			HeightMultiplier: 1,
			Resolution:       48,
			MaxAngle:         90,
		},
		Noise: noise.DefaultParameters(),
		Placement: PlacementConfig{
			RockDensity:    1,
			TreeDensity:    1,
			TotalObstacles: 1,
			TotalGrass:     100,
			Seed:           0,
			Rock: CategoryConfig{
				Scale:   Range{Min: 0.2, Max: 0.3},
				AxisMin: Vec3{X: -0.5, Y: -0.5, Z: -0.5},
				AxisMax: Vec3{X: 0.5, Y: 0.5, Z: 0.5},
				Angle:   Range{Min: 0, Max: 2 * math.Pi},
			},
			Tree: CategoryConfig{
				Scale:   Range{Min: 0.2, Max: 0.3},
				AxisMin: Vec3{X: -0.5, Y: -0.5, Z: 1},
				AxisMax: Vec3{X: 1, Y: 1, Z: 1},
				Angle:   Range{Min: 0, Max: 2 * math.Pi},
			},
			Grass: CategoryConfig{
				Scale:   Range{Min: 0.05, Max: 0.07},
				AxisMin: Vec3{X: 1, Y: -0.5, Z: 1},
				AxisMax: Vec3{X: 1, Y: 1, Z: 1},
				Angle:   Range{Min: math.Pi, Max: 2 * math.Pi},
			},
		},
		Assets: AssetsConfig{},
		Export: ExportConfig{
			OutputDir:   "export",
			ModelName:   "ground_mesh",
			WorldName:   "generated_world",
			MeshColor:   RGBA{R: 0, G: 128.0 / 255.0, B: 0, A: 1},
			PreviewSize: 512,
		},
		Presets: PresetsConfig{
			Dir:     "assets/setting-presets",
			Default: "Default.yml",
		},
		Server: ServerConfig{
			Address: ":3333",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Clone returns a deep copy of the configuration
func (c *Config) Clone() *Config {
	out := *c
	return &out
}

// floatFields lists the generation parameters stored as floats, keyed by
// their settings name
func (c *Config) floatFields() []namedFloat {
	fields := []namedFloat{
		{"terrain.width", &c.Terrain.Width},
		{"terrain.depth", &c.Terrain.Depth},
		{"terrain.height_multiplier", &c.Terrain.HeightMultiplier},
		{"terrain.max_angle", &c.Terrain.MaxAngle},
		{"noise.frequency", &c.Noise.Frequency},
		{"noise.fractal.gain", &c.Noise.Fractal.Gain},
		{"noise.fractal.lacunarity", &c.Noise.Fractal.Lacunarity},
		{"noise.perturb.amp", &c.Noise.Perturb.Amp},
		{"noise.perturb.frequency", &c.Noise.Perturb.Frequency},
		{"noise.perturb.gain", &c.Noise.Perturb.Gain},
		{"noise.perturb.lacunarity", &c.Noise.Perturb.Lacunarity},
		{"noise.perturb.normalise_length", &c.Noise.Perturb.NormaliseLength},
		{"noise.cellular.jitter", &c.Noise.Cellular.Jitter},
		{"noise.cellular.lookup_frequency", &c.Noise.Cellular.LookupFrequency},
		{"placement.rock_density", &c.Placement.RockDensity},
		{"placement.tree_density", &c.Placement.TreeDensity},
	}
	cats := []struct {
		name string
		cfg  *CategoryConfig
	}{{"rock", &c.Placement.Rock}, {"tree", &c.Placement.Tree}, {"grass", &c.Placement.Grass}}
	for _, cat := range cats {
		prefix := "placement." + cat.name + "."
		fields = append(fields,
			namedFloat{prefix + "scale.min", &cat.cfg.Scale.Min},
			namedFloat{prefix + "scale.max", &cat.cfg.Scale.Max},
			namedFloat{prefix + "axis_min.x", &cat.cfg.AxisMin.X},
			namedFloat{prefix + "axis_min.y", &cat.cfg.AxisMin.Y},
			namedFloat{prefix + "axis_min.z", &cat.cfg.AxisMin.Z},
			namedFloat{prefix + "axis_max.x", &cat.cfg.AxisMax.X},
			namedFloat{prefix + "axis_max.y", &cat.cfg.AxisMax.Y},
			namedFloat{prefix + "axis_max.z", &cat.cfg.AxisMax.Z},
			namedFloat{prefix + "angle.min", &cat.cfg.Angle.Min},
			namedFloat{prefix + "angle.max", &cat.cfg.Angle.Max},
		)
	}
	return fields
}

type namedFloat struct {
	name  string
	value *float64
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// CheckFinite returns an error naming the first generation parameter that is
// NaN or infinite
func (c *Config) CheckFinite() error {
	for _, f := range c.floatFields() {
		if !isFinite(*f.value) {
			return fmt.Errorf("%s must be a finite number, got %v", f.name, *f.value)
		}
	}
	return nil
}

// Clamp forces every numeric parameter into its documented range. NaN and
// infinite values are first replaced by their defaults.
func (c *Config) Clamp() {
	defaults := DefaultConfig().floatFields()
	for i, f := range c.floatFields() {
		if !isFinite(*f.value) {
			*f.value = *defaults[i].value
		}
	}

	t := &c.Terrain
	t.Width = math.Max(t.Width, MinExtent)
	t.Depth = math.Max(t.Depth, MinExtent)
	t.HeightMultiplier = math.Max(t.HeightMultiplier, 0)
	t.Resolution = util.ClampInt(t.Resolution, MinResolution, MaxResolution)
	t.MaxAngle = util.Clamp(t.MaxAngle, 0, MaxAngle)

	ClampNoise(&c.Noise)

	p := &c.Placement
	p.RockDensity = math.Max(p.RockDensity, 0)
	p.TreeDensity = math.Max(p.TreeDensity, 0)
	if p.TotalObstacles < 0 {
		p.TotalObstacles = 0
	}
	if p.TotalGrass < 0 {
		p.TotalGrass = 0
	}
	for _, cat := range []*CategoryConfig{&p.Rock, &p.Tree, &p.Grass} {
		cat.Scale.Min = math.Max(cat.Scale.Min, 0)
		cat.Scale.Max = math.Max(cat.Scale.Max, cat.Scale.Min)
		cat.Angle.Max = math.Max(cat.Angle.Max, cat.Angle.Min)
	}
}

// ClampNoise forces noise parameters into their valid ranges
func ClampNoise(n *noise.Parameters) {
	n.Frequency = math.Max(n.Frequency, MinFrequency)
	if n.Fractal.Octaves < 1 {
		n.Fractal.Octaves = 1
	}
	if n.Fractal.Lacunarity <= 0 {
		n.Fractal.Lacunarity = MinFrequency
	}
	if n.Perturb.Octaves < 1 {
		n.Perturb.Octaves = 1
	}
	n.Perturb.Frequency = math.Max(n.Perturb.Frequency, MinFrequency)
	n.Cellular.Jitter = util.Clamp(n.Cellular.Jitter, 0, 1)
	n.Cellular.LookupFrequency = math.Max(n.Cellular.LookupFrequency, MinFrequency)
}

// LoadConfig loads the configuration from a file. On error the returned config
// holds the defaults.
func LoadConfig(filePath string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(filePath)
	if err != nil {
		return config, fmt.Errorf("config file not found, using defaults: %w", err)
	}

	parsed := DefaultConfig()
	if err := yaml.Unmarshal(data, parsed); err != nil {
		return config, fmt.Errorf("error parsing config: %w", err)
	}

	return parsed, nil
}

// SaveConfig saves the configuration to a file
func SaveConfig(config *Config, filePath string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("error serializing config: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}
