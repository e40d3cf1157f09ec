package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"terragen/internal/util"
)

const presetExt = ".yml"

// ListPresets returns the preset names found in dir, without extension
func ListPresets(dir string) ([]string, error) {
	files, err := util.ListFilesWithExt(dir, presetExt)
	if err != nil {
		return nil, fmt.Errorf("error listing presets: %w", err)
	}

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, util.GetFileNameWithoutExt(f))
	}
	return names, nil
}

// PresetPath returns the file a preset name is stored in
func PresetPath(dir, name string) string {
	if !strings.HasSuffix(strings.ToLower(name), presetExt) {
		name += presetExt
	}
	return filepath.Join(dir, filepath.Base(name))
}

// LoadPreset reads a named preset from dir
func LoadPreset(dir, name string) (*Config, error) {
	path := PresetPath(dir, name)
	if !util.FileExists(path) {
		return nil, fmt.Errorf("preset %q not found in %s", name, dir)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// SavePreset writes cfg as a named preset into dir, creating dir when needed
func SavePreset(dir, name string, cfg *Config) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("preset name cannot be empty")
	}
	if err := util.CreateDirIfNotExist(dir); err != nil {
		return err
	}
	return SaveConfig(cfg, PresetPath(dir, name))
}
