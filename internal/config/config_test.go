package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, root, content string) {
	t.Helper()
	dir := filepath.Join(root, ".bean")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(content), 0o644))
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfigFromDir(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Analysis.Workers)
	assert.Equal(t, 4096, cfg.Analysis.CacheSize)
	assert.Equal(t, int64(2<<20), cfg.Analysis.MaxFileSize)
	assert.InDelta(t, 0.85, cfg.Diff.RenameThreshold, 1e-9)
	assert.Equal(t, "main", cfg.Diff.BaseRef)
	assert.Equal(t, 500, cfg.Watch.DebounceMs)
	assert.Equal(t, "text", cfg.Output.Format)
}

func TestLoadFromFile(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeConfig(t, root, `
analysis:
  workers: 4
  cache_size: 128
paths:
  include:
    - "src/**/*.py"
  exclude:
    - "src/generated/**"
diff:
  rename_threshold: 0.7
  base_ref: develop
output:
  format: json
`)

	cfg, err := LoadConfigFromDir(root)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Analysis.Workers)
	assert.Equal(t, 128, cfg.Analysis.CacheSize)
	assert.Equal(t, []string{"src/**/*.py"}, cfg.Paths.Include)
	assert.Equal(t, []string{"src/generated/**"}, cfg.Paths.Exclude)
	assert.InDelta(t, 0.7, cfg.Diff.RenameThreshold, 1e-9)
	assert.Equal(t, "develop", cfg.Diff.BaseRef)
	assert.Equal(t, "json", cfg.Output.Format)

	// Unset keys keep their defaults.
	assert.Equal(t, 500, cfg.Watch.DebounceMs)
}

func TestEnvOverridesFile(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "diff:\n  rename_threshold: 0.7\n")
	t.Setenv("BEAN_DIFF_RENAME_THRESHOLD", "0.95")

	cfg, err := LoadConfigFromDir(root)
	require.NoError(t, err)
	assert.InDelta(t, 0.95, cfg.Diff.RenameThreshold, 1e-9)
}

func TestLoadInvalidYAML(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeConfig(t, root, "analysis: [unbalanced\n")

	_, err := LoadConfigFromDir(root)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"defaults are valid", func(c *Config) {}, nil},
		{"negative workers", func(c *Config) { c.Analysis.Workers = -1 }, ErrInvalidWorkers},
		{"negative cache", func(c *Config) { c.Analysis.CacheSize = -1 }, ErrInvalidCacheSize},
		{"zero max file size", func(c *Config) { c.Analysis.MaxFileSize = 0 }, ErrInvalidMaxFileSize},
		{"threshold too high", func(c *Config) { c.Diff.RenameThreshold = 1.5 }, ErrInvalidThreshold},
		{"threshold zero", func(c *Config) { c.Diff.RenameThreshold = 0 }, ErrInvalidThreshold},
		{"empty base ref", func(c *Config) { c.Diff.BaseRef = "  " }, ErrEmptyBaseRef},
		{"negative debounce", func(c *Config) { c.Watch.DebounceMs = -10 }, ErrInvalidDebounce},
		{"bad format", func(c *Config) { c.Output.Format = "xml" }, ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Analysis.Workers = -1
	cfg.Output.Format = "xml"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workers")
	assert.Contains(t, err.Error(), "xml")
}
