package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// PycfgTomlConfig mirrors the on-disk shape of .pycfg.toml: a [build] and
// an [output] section. Pointer/zero-value fields distinguish "not set in
// this file" from an explicit zero so merging can leave defaults alone.
type PycfgTomlConfig struct {
	Build  BuildTomlConfig  `toml:"build"`
	Output OutputTomlConfig `toml:"output"`
}

// BuildTomlConfig represents the [build] section.
type BuildTomlConfig struct {
	IncludePatterns []string `toml:"include_patterns"`
	ExcludePatterns []string `toml:"exclude_patterns"`
	Recursive       *bool    `toml:"recursive"`
	FollowSymlinks  *bool    `toml:"follow_symlinks"`
	MaxWorkers      *int     `toml:"max_workers"`
}

// OutputTomlConfig represents the [output] section.
type OutputTomlConfig struct {
	Format      string `toml:"format"`
	ShowDetails *bool  `toml:"show_details"`
	Directory   string `toml:"directory"`
}

// PyprojectToml is the slice of pyproject.toml this package cares about.
type PyprojectToml struct {
	Tool struct {
		Pycfg PycfgTomlConfig `toml:"pycfg"`
	} `toml:"tool"`
}

// TomlConfigLoader loads Config from .pycfg.toml, falling back to
// pyproject.toml's [tool.pycfg] table, grounded on the same ruff-like
// search order and pointer-merge pattern the rest of this project's
// config tooling uses.
type TomlConfigLoader struct{}

// NewTomlConfigLoader creates a loader.
func NewTomlConfigLoader() *TomlConfigLoader {
	return &TomlConfigLoader{}
}

// LoadConfig searches upward from startDir for .pycfg.toml, then
// pyproject.toml, returning defaults if neither exists.
func (l *TomlConfigLoader) LoadConfig(startDir string) (*Config, error) {
	if startDir == "" {
		startDir = "."
	}

	if path, err := findUpward(startDir, ".pycfg.toml"); err == nil {
		return l.LoadFromFile(path)
	}

	if path, err := findUpward(startDir, "pyproject.toml"); err == nil {
		if cfg, err := l.loadFromPyproject(path); err == nil {
			return cfg, nil
		}
	}

	return DefaultConfig(), nil
}

// LoadFromFile loads a specific file, dispatching on its base name.
func (l *TomlConfigLoader) LoadFromFile(path string) (*Config, error) {
	if filepath.Base(path) == "pyproject.toml" {
		return l.loadFromPyproject(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed PycfgTomlConfig
	if err := toml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg := DefaultConfig()
	mergeBuildSection(cfg, &parsed.Build)
	mergeOutputSection(cfg, &parsed.Output)
	return cfg, nil
}

func (l *TomlConfigLoader) loadFromPyproject(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed PyprojectToml
	if err := toml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg := DefaultConfig()
	mergeBuildSection(cfg, &parsed.Tool.Pycfg.Build)
	mergeOutputSection(cfg, &parsed.Tool.Pycfg.Output)
	return cfg, nil
}

func toPycfgToml(cfg *Config) *PycfgTomlConfig {
	recursive := cfg.Build.Recursive
	followSymlinks := cfg.Build.FollowSymlinks
	maxWorkers := cfg.Build.MaxWorkers
	showDetails := cfg.Output.ShowDetails
	return &PycfgTomlConfig{
		Build: BuildTomlConfig{
			IncludePatterns: cfg.Build.IncludePatterns,
			ExcludePatterns: cfg.Build.ExcludePatterns,
			Recursive:       &recursive,
			FollowSymlinks:  &followSymlinks,
			MaxWorkers:      &maxWorkers,
		},
		Output: OutputTomlConfig{
			Format:      cfg.Output.Format,
			ShowDetails: &showDetails,
			Directory:   cfg.Output.Directory,
		},
	}
}

// findUpward walks from dir toward the filesystem root looking for name.
func findUpward(dir, name string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		abs = filepath.Dir(abs)
	}

	for {
		candidate := filepath.Join(abs, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			break
		}
		abs = parent
	}
	return "", os.ErrNotExist
}
