package config

// mergeBuildSection overlays a parsed [build] TOML section onto cfg,
// leaving fields the file didn't set (nil pointers, empty slices) at
// their default values.
func mergeBuildSection(cfg *Config, section *BuildTomlConfig) {
	if len(section.IncludePatterns) > 0 {
		cfg.Build.IncludePatterns = section.IncludePatterns
	}
	if len(section.ExcludePatterns) > 0 {
		cfg.Build.ExcludePatterns = section.ExcludePatterns
	}
	if section.Recursive != nil {
		cfg.Build.Recursive = *section.Recursive
	}
	if section.FollowSymlinks != nil {
		cfg.Build.FollowSymlinks = *section.FollowSymlinks
	}
	if section.MaxWorkers != nil {
		cfg.Build.MaxWorkers = *section.MaxWorkers
	}
}

// mergeOutputSection overlays a parsed [output] TOML section onto cfg.
func mergeOutputSection(cfg *Config, section *OutputTomlConfig) {
	if section.Format != "" {
		cfg.Output.Format = section.Format
	}
	if section.ShowDetails != nil {
		cfg.Output.ShowDetails = *section.ShowDetails
	}
	if section.Directory != "" {
		cfg.Output.Directory = section.Directory
	}
}

// ApplyFlagOverrides layers CLI-flag values onto cfg, but only for flags
// the tracker recorded as explicitly passed - an unset flag's zero value
// must never clobber a file-configured setting.
func ApplyFlagOverrides(cfg *Config, tracker *FlagTracker, format, directory string, showDetails bool, recursive bool) {
	cfg.Output.Format = tracker.MergeString(cfg.Output.Format, format, "format")
	cfg.Output.Directory = tracker.MergeString(cfg.Output.Directory, directory, "output-dir")
	cfg.Output.ShowDetails = tracker.MergeBool(cfg.Output.ShowDetails, showDetails, "details")
	cfg.Build.Recursive = tracker.MergeBool(cfg.Build.Recursive, recursive, "recursive")
}
