// Package config loads bean configuration from .bean/config.yml with
// environment variable overrides.
package config

// Config represents the complete bean configuration.
// It can be loaded from .bean/config.yml with environment variable overrides.
type Config struct {
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	Paths    PathsConfig    `yaml:"paths" mapstructure:"paths"`
	Diff     DiffConfig     `yaml:"diff" mapstructure:"diff"`
	Watch    WatchConfig    `yaml:"watch" mapstructure:"watch"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
}

// AnalysisConfig configures extraction.
type AnalysisConfig struct {
	Workers     int   `yaml:"workers" mapstructure:"workers"`             // 0 means one per CPU
	CacheSize   int   `yaml:"cache_size" mapstructure:"cache_size"`       // extraction cache entries, 0 disables
	MaxFileSize int64 `yaml:"max_file_size" mapstructure:"max_file_size"` // bytes, larger files are skipped
}

// PathsConfig defines which files to analyze and which to ignore.
type PathsConfig struct {
	Include []string `yaml:"include" mapstructure:"include"` // glob patterns, empty means all supported
	Exclude []string `yaml:"exclude" mapstructure:"exclude"` // glob patterns on top of the built-in excludes
}

// DiffConfig configures snapshot comparison.
type DiffConfig struct {
	RenameThreshold float64 `yaml:"rename_threshold" mapstructure:"rename_threshold"` // fingerprint similarity in (0, 1]
	BaseRef         string  `yaml:"base_ref" mapstructure:"base_ref"`                 // default base for bean diff
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	DebounceMs int `yaml:"debounce_ms" mapstructure:"debounce_ms"` // quiet period before re-analysis
}

// OutputConfig configures report rendering.
type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format"` // "text" or "json"
	Pretty bool   `yaml:"pretty" mapstructure:"pretty"` // indent JSON output
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Workers:     0,
			CacheSize:   4096,
			MaxFileSize: 2 << 20,
		},
		Paths: PathsConfig{
			Include: []string{},
			Exclude: []string{},
		},
		Diff: DiffConfig{
			RenameThreshold: 0.85,
			BaseRef:         "main",
		},
		Watch: WatchConfig{
			DebounceMs: 500,
		},
		Output: OutputConfig{
			Format: "text",
			Pretty: true,
		},
	}
}
