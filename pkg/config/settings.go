package config

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	noise "terragen/internal/math"
)

// Settings is the flat key/value view of the generation parameters. Enumerated
// values are stored by name, numbers keep their Go type (float64, int, int64).
type Settings map[string]interface{}

// FlattenSettings converts the generation parameters to a flat map
func FlattenSettings(cfg *Config) Settings {
	result := make(Settings)

	// Terrain
	result["terrain.width"] = cfg.Terrain.Width
	result["terrain.depth"] = cfg.Terrain.Depth
	result["terrain.height_multiplier"] = cfg.Terrain.HeightMultiplier
	result["terrain.resolution"] = cfg.Terrain.Resolution
	result["terrain.max_angle"] = cfg.Terrain.MaxAngle

	// Noise
	n := cfg.Noise
	result["noise.family"] = n.Family.String()
	result["noise.seed"] = n.Seed
	result["noise.frequency"] = n.Frequency
	result["noise.fractal.type"] = n.Fractal.Type.String()
	result["noise.fractal.octaves"] = n.Fractal.Octaves
	result["noise.fractal.gain"] = n.Fractal.Gain
	result["noise.fractal.lacunarity"] = n.Fractal.Lacunarity
	result["noise.perturb.type"] = n.Perturb.Type.String()
	result["noise.perturb.amp"] = n.Perturb.Amp
	result["noise.perturb.frequency"] = n.Perturb.Frequency
	result["noise.perturb.gain"] = n.Perturb.Gain
	result["noise.perturb.octaves"] = n.Perturb.Octaves
	result["noise.perturb.lacunarity"] = n.Perturb.Lacunarity
	result["noise.perturb.normalise_length"] = n.Perturb.NormaliseLength
	result["noise.cellular.return_type"] = n.Cellular.ReturnType.String()
	result["noise.cellular.distance_function"] = n.Cellular.DistanceFunction.String()
	result["noise.cellular.jitter"] = n.Cellular.Jitter
	result["noise.cellular.lookup_frequency"] = n.Cellular.LookupFrequency

	// Placement
	result["placement.rock_density"] = cfg.Placement.RockDensity
	result["placement.tree_density"] = cfg.Placement.TreeDensity
	result["placement.total_obstacles"] = cfg.Placement.TotalObstacles
	result["placement.total_grass"] = cfg.Placement.TotalGrass
	result["placement.seed"] = cfg.Placement.Seed

	return result
}

// Keys returns the settings keys in sorted order
func (s Settings) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ApplySettings writes every key of flat into cfg. Unknown keys and values of
// the wrong kind are rejected before cfg is touched.
func ApplySettings(cfg *Config, flat Settings) error {
	next := *cfg
	for _, key := range flat.Keys() {
		if err := applySetting(&next, key, flat[key]); err != nil {
			return err
		}
	}
	*cfg = next
	return nil
}

func applySetting(cfg *Config, key string, value interface{}) error {
	var err error
	n := &cfg.Noise

	switch key {
	case "terrain.width":
		cfg.Terrain.Width, err = toFloat(value)
	case "terrain.depth":
		cfg.Terrain.Depth, err = toFloat(value)
	case "terrain.height_multiplier":
		cfg.Terrain.HeightMultiplier, err = toFloat(value)
	case "terrain.resolution":
		cfg.Terrain.Resolution, err = toInt(value)
	case "terrain.max_angle":
		cfg.Terrain.MaxAngle, err = toFloat(value)

	case "noise.family":
		var s string
		if s, err = toString(value); err == nil {
			n.Family, err = noise.ParseFamily(s)
		}
	case "noise.seed":
		n.Seed, err = toInt64(value)
	case "noise.frequency":
		n.Frequency, err = toFloat(value)
	case "noise.fractal.type":
		var s string
		if s, err = toString(value); err == nil {
			n.Fractal.Type, err = noise.ParseFractalType(s)
		}
	case "noise.fractal.octaves":
		n.Fractal.Octaves, err = toInt(value)
	case "noise.fractal.gain":
		n.Fractal.Gain, err = toFloat(value)
	case "noise.fractal.lacunarity":
		n.Fractal.Lacunarity, err = toFloat(value)
	case "noise.perturb.type":
		var s string
		if s, err = toString(value); err == nil {
			n.Perturb.Type, err = noise.ParsePerturbType(s)
		}
	case "noise.perturb.amp":
		n.Perturb.Amp, err = toFloat(value)
	case "noise.perturb.frequency":
		n.Perturb.Frequency, err = toFloat(value)
	case "noise.perturb.gain":
		n.Perturb.Gain, err = toFloat(value)
	case "noise.perturb.octaves":
		n.Perturb.Octaves, err = toInt(value)
	case "noise.perturb.lacunarity":
		n.Perturb.Lacunarity, err = toFloat(value)
	case "noise.perturb.normalise_length":
		n.Perturb.NormaliseLength, err = toFloat(value)
	case "noise.cellular.return_type":
		var s string
		if s, err = toString(value); err == nil {
			n.Cellular.ReturnType, err = noise.ParseCellularReturnType(s)
		}
	case "noise.cellular.distance_function":
		var s string
		if s, err = toString(value); err == nil {
			n.Cellular.DistanceFunction, err = noise.ParseDistanceFunction(s)
		}
	case "noise.cellular.jitter":
		n.Cellular.Jitter, err = toFloat(value)
	case "noise.cellular.lookup_frequency":
		n.Cellular.LookupFrequency, err = toFloat(value)

	case "placement.rock_density":
		cfg.Placement.RockDensity, err = toFloat(value)
	case "placement.tree_density":
		cfg.Placement.TreeDensity, err = toFloat(value)
	case "placement.total_obstacles":
		cfg.Placement.TotalObstacles, err = toInt(value)
	case "placement.total_grass":
		cfg.Placement.TotalGrass, err = toInt(value)
	case "placement.seed":
		cfg.Placement.Seed, err = toInt64(value)

	default:
		return fmt.Errorf("unknown setting %q", key)
	}

	if err != nil {
		return fmt.Errorf("setting %q: %w", key, err)
	}
	return nil
}

// Numbers decoded from JSON arrive as float64, from YAML as int. NaN and
// infinities are rejected.
func toFloat(v interface{}) (float64, error) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case string:
		parsed, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, err
		}
		f = parsed
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
	if !isFinite(f) {
		return 0, fmt.Errorf("expected a finite number, got %v", f)
	}
	return f, nil
}

func toInt64(v interface{}) (int64, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int64:
		return x, nil
	case float64:
		if !isFinite(x) || x != math.Trunc(x) {
			return 0, fmt.Errorf("expected an integer, got %v", x)
		}
		return int64(x), nil
	case string:
		return strconv.ParseInt(x, 10, 64)
	}
	return 0, fmt.Errorf("expected an integer, got %T", v)
}

func toInt(v interface{}) (int, error) {
	i, err := toInt64(v)
	return int(i), err
}

func toString(v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected a name, got %T", v)
	}
	return s, nil
}
