package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk form of a custom policy:
//
//	extend_defaults: true
//	skip_collections:
//	  - render_cache
//	skip_paths:
//	  - particle_systems
//
// When extend_defaults is set, the listed entries are merged into the stock
// policy instead of replacing it.
type Config struct {
	ExtendDefaults  bool     `yaml:"extend_defaults"`
	SkipCollections []string `yaml:"skip_collections"`
	SkipPaths       []string `yaml:"skip_paths"`
}

// Load reads a policy config file and builds the resulting Policy.
func Load(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a Policy from YAML config bytes.
func Parse(data []byte) (*Policy, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse policy: %w", err)
	}

	collections := cfg.SkipCollections
	paths := cfg.SkipPaths
	if cfg.ExtendDefaults {
		def := Default()
		collections = append(collections, def.skipCollections...)
		paths = append(paths, def.skipPaths...)
	}
	return New(collections, paths), nil
}
