// Package config loads and validates agency profiles.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Load reads and validates the profile at path.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes and validates a YAML profile.
func Parse(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	v := validator.New()
	if err := v.Struct(p); err != nil {
		return nil, err
	}
	seen := map[string]string{}
	for code := range p.Routes.ColorCodes {
		upper := strings.ToUpper(code)
		if other, ok := seen[upper]; ok {
			return nil, fmt.Errorf("color codes %q and %q differ only by case", other, code)
		}
		seen[upper] = code
	}
	return &p, nil
}
