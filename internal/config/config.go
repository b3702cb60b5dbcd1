package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileNames are the config file names looked up in the analysis root, in
// order.
var FileNames = []string{"archlint.yml", "archlint.yaml"}

// ProjectConfig holds project-level settings loaded from archlint.yml.
type ProjectConfig struct {
	Exclude       []string `yaml:"exclude,omitempty"`
	Languages     []string `yaml:"languages,omitempty"`
	DisabledRules []string `yaml:"disabledRules,omitempty"`
	ParallelRules bool     `yaml:"parallelRules,omitempty"`
	Coupling      *bool    `yaml:"coupling,omitempty"`
	TopN          int      `yaml:"topN,omitempty"`

	// Rules is passed to every detector unmodified.
	Rules Options `yaml:"rules,omitempty"`
}

// CouplingEnabled reports whether coupling analysis runs. It defaults to
// true when the file does not say.
func (c *ProjectConfig) CouplingEnabled() bool {
	return c.Coupling == nil || *c.Coupling
}

// Load attempts to read archlint.yml or archlint.yaml from the given
// directory. Returns a zero-value config (not an error) if no config file
// exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return LoadFile(path)
	}
	return &ProjectConfig{}, nil
}

// LoadFile reads the config at path. Unlike Load, a missing file is an
// error.
func LoadFile(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return &cfg, nil
}
