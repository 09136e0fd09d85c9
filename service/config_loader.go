package service

import (
	"github.com/pycfg-go/pycfg/domain"
	"github.com/pycfg-go/pycfg/internal/config"
)

// ConfigurationLoaderImpl resolves a CFG build configuration from a file
// (or defaults), then layers CLI flags on top via a FlagTracker so an
// unset flag never clobbers a file-configured value.
type ConfigurationLoaderImpl struct{}

// NewConfigurationLoader creates a configuration loader service.
func NewConfigurationLoader() *ConfigurationLoaderImpl {
	return &ConfigurationLoaderImpl{}
}

// LoadConfig loads configuration starting the search from path (a file
// or a directory to search upward from).
func (c *ConfigurationLoaderImpl) LoadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadConfig("", path)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration file", err)
	}
	return cfg, nil
}

// LoadConfigFile loads a specific config file path, bypassing the
// upward search.
func (c *ConfigurationLoaderImpl) LoadConfigFile(explicitPath string) (*config.Config, error) {
	cfg, err := config.LoadConfig(explicitPath, "")
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration file", err)
	}
	return cfg, nil
}

// LoadDefaultConfig loads configuration for the current directory,
// falling back to hardcoded defaults on any error.
func (c *ConfigurationLoaderImpl) LoadDefaultConfig() *config.Config {
	if cfg, err := c.LoadConfig("."); err == nil {
		return cfg
	}
	return config.DefaultConfig()
}

// ApplyFlags layers explicitly-passed CLI flag values onto cfg using
// tracker to distinguish "not passed" from "passed as the zero value".
func (c *ConfigurationLoaderImpl) ApplyFlags(cfg *config.Config, tracker *config.FlagTracker, format, directory string, showDetails, recursive bool) {
	config.ApplyFlagOverrides(cfg, tracker, format, directory, showDetails, recursive)
}

// ValidateConfig validates a resolved configuration.
func (c *ConfigurationLoaderImpl) ValidateConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return domain.NewConfigError(err.Error(), nil)
	}
	return nil
}

// CreateConfigTemplate writes a default .pycfg.toml at path, for `pycfg
// init`.
func (c *ConfigurationLoaderImpl) CreateConfigTemplate(path string) error {
	return config.SaveConfig(config.DefaultConfig(), path)
}
