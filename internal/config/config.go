package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// BuildConfig controls how source files are discovered. It has no
// settings for the builder's desugaring.
type BuildConfig struct {
	// IncludePatterns are doublestar globs selecting source files.
	IncludePatterns []string `mapstructure:"include_patterns" toml:"include_patterns" yaml:"include_patterns"`

	// ExcludePatterns are doublestar globs pruned from the discovered set.
	ExcludePatterns []string `mapstructure:"exclude_patterns" toml:"exclude_patterns" yaml:"exclude_patterns"`

	// Recursive controls whether directories given on the command line are
	// walked recursively.
	Recursive bool `mapstructure:"recursive" toml:"recursive" yaml:"recursive"`

	// FollowSymlinks is loaded, merged and overridable from the
	// environment; file discovery does not read it.
	FollowSymlinks bool `mapstructure:"follow_symlinks" toml:"follow_symlinks" yaml:"follow_symlinks"`

	// MaxWorkers is loaded, validated (must be >= 0) and overridable from
	// the environment; the parse cache and the executor do not read it.
	MaxWorkers int `mapstructure:"max_workers" toml:"max_workers" yaml:"max_workers"`
}

// OutputConfig controls how a built CFG forest is rendered.
type OutputConfig struct {
	// Format is one of "text", "json", "yaml", "dot".
	Format string `mapstructure:"format" toml:"format" yaml:"format"`

	// ShowDetails controls whether per-block statement text is included.
	ShowDetails bool `mapstructure:"show_details" toml:"show_details" yaml:"show_details"`

	// Directory is where reports are written; empty means stdout.
	Directory string `mapstructure:"directory" toml:"directory" yaml:"directory"`
}

// Config is the root configuration loaded from .pycfg.toml, a
// [tool.pycfg] table in pyproject.toml, or defaults.
type Config struct {
	Build  BuildConfig  `mapstructure:"build" toml:"build" yaml:"build"`
	Output OutputConfig `mapstructure:"output" toml:"output" yaml:"output"`
}

// DefaultConfig returns the configuration used when no config file is
// found and no flags override it.
func DefaultConfig() *Config {
	return &Config{
		Build: BuildConfig{
			IncludePatterns: []string{"**/*.py"},
			ExcludePatterns: []string{"**/.venv/**", "**/venv/**", "**/__pycache__/**"},
			Recursive:       true,
			FollowSymlinks:  false,
			MaxWorkers:      0,
		},
		Output: OutputConfig{
			Format:      "text",
			ShowDetails: false,
			Directory:   "",
		},
	}
}

// Validate checks field values that would otherwise fail confusingly
// deep inside discovery or rendering.
func (c *Config) Validate() error {
	switch c.Output.Format {
	case "text", "json", "yaml", "dot":
	default:
		return fmt.Errorf("config: unsupported output format %q", c.Output.Format)
	}
	if c.Build.MaxWorkers < 0 {
		return fmt.Errorf("config: build.max_workers must be >= 0, got %d", c.Build.MaxWorkers)
	}
	return nil
}

// LoadConfig resolves configuration the same way the CLI does: an
// explicit path, if given, wins; otherwise look for .pycfg.toml and
// pyproject.toml walking up from targetPath; fall back to defaults. Once
// a file (or the defaults) is loaded, PYCFG_-prefixed environment
// variables are layered on top, below CLI flags but above everything else.
func LoadConfig(configPath string, targetPath string) (*Config, error) {
	loader := NewTomlConfigLoader()

	var cfg *Config
	var err error
	if configPath != "" {
		cfg, err = loader.LoadFromFile(configPath)
	} else {
		cfg, err = loader.LoadConfig(targetPath)
	}
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides layers PYCFG_-prefixed environment variables onto cfg
// using viper's env binding, the same mechanism the rest of this project's
// config tooling uses for its own settings. Only variables that are
// actually set in the environment take effect; everything else keeps
// whatever the file (or defaults) already supplied.
func applyEnvOverrides(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix("pycfg")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	bind := func(key string) {
		_ = v.BindEnv(key)
	}
	bind("output.format")
	bind("output.directory")
	bind("output.show_details")
	bind("build.recursive")
	bind("build.follow_symlinks")
	bind("build.max_workers")

	if v.IsSet("output.format") {
		cfg.Output.Format = v.GetString("output.format")
	}
	if v.IsSet("output.directory") {
		cfg.Output.Directory = v.GetString("output.directory")
	}
	if v.IsSet("output.show_details") {
		cfg.Output.ShowDetails = v.GetBool("output.show_details")
	}
	if v.IsSet("build.recursive") {
		cfg.Build.Recursive = v.GetBool("build.recursive")
	}
	if v.IsSet("build.follow_symlinks") {
		cfg.Build.FollowSymlinks = v.GetBool("build.follow_symlinks")
	}
	if v.IsSet("build.max_workers") {
		cfg.Build.MaxWorkers = v.GetInt("build.max_workers")
	}
}

// SaveConfig writes cfg as a .pycfg.toml-shaped TOML document. Used by
// `pycfg init` and by tests asserting round-trip fidelity.
func SaveConfig(cfg *Config, path string) error {
	data, err := toml.Marshal(toPycfgToml(cfg))
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
