package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadPreset reads a YAML preset file, merges it over Default(), clamps the
// result, and returns it.
func LoadPreset(path string) (Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Params{}, fmt.Errorf("config: read preset %s: %w", path, err)
	}

	p := Default()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Params{}, fmt.Errorf("config: parse preset %s: %w", path, err)
	}
	p.Clamp()
	return p, nil
}

// SavePreset writes p to path as YAML.
func SavePreset(path string, p Params) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("config: marshal preset: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write preset %s: %w", path, err)
	}
	return nil
}
