package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, uint(32), cfg.Storage.Shards)
	assert.Equal(t, 16, cfg.Storage.Databases)
	assert.Equal(t, DefaultGCConfig(), cfg.GC)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, []string{"stdout"}, cfg.Log.Output)
	assert.True(t, cfg.Scripting.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Scripting.TimeLimit)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFileAndEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := t.TempDir()

	yaml := `
storage:
  shards: 8
  databases: 4
gc:
  interval: 250ms
  samples_per_check: 50
  max_rounds: 2
log:
  level: debug
  format: console
scripting:
  enabled: false
  time_limit: 1500ms
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	t.Setenv("MOONDB_STORAGE_SHARDS", "16")
	t.Setenv("MOONDB_GC_MATCH_THRESHOLD", "0.5")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, uint(16), cfg.Storage.Shards, "env overrides the file")
	assert.Equal(t, 4, cfg.Storage.Databases)
	assert.Equal(t, 250*time.Millisecond, cfg.GC.Interval)
	assert.Equal(t, 50, cfg.GC.SamplesPerCheck)
	assert.Equal(t, 0.5, cfg.GC.MatchThreshold)
	assert.Equal(t, 2, cfg.GC.MaxRounds)
	assert.Equal(t, uint64(1000), cfg.GC.MutationTrigger)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.False(t, cfg.Scripting.Enabled)
	assert.Equal(t, 1500*time.Millisecond, cfg.Scripting.TimeLimit)
	assert.NoError(t, cfg.Validate())
}

func TestLoadBrokenFile(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("storage: [unclosed"), 0o600))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Storage: StorageConfig{Shards: 32, Databases: 16},
			GC:      DefaultGCConfig(),
			Log:     LogConfig{Level: "info", Format: "json"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"Defaults", func(c *Config) {}, false},
		{"Zero shards", func(c *Config) { c.Storage.Shards = 0 }, true},
		{"Shards not power of 2", func(c *Config) { c.Storage.Shards = 12 }, true},
		{"Too many shards", func(c *Config) { c.Storage.Shards = 128 }, true},
		{"Zero databases", func(c *Config) { c.Storage.Databases = 0 }, true},
		{"Too many databases", func(c *Config) { c.Storage.Databases = 17 }, true},
		{"Zero interval", func(c *Config) { c.GC.Interval = 0 }, true},
		{"Zero interval with gc disabled", func(c *Config) { c.GC.Enabled = false; c.GC.Interval = 0 }, false},
		{"Threshold above 1", func(c *Config) { c.GC.MatchThreshold = 1.5 }, true},
		{"No samples", func(c *Config) { c.GC.SamplesPerCheck = 0 }, true},
		{"No rounds", func(c *Config) { c.GC.MaxRounds = 0 }, true},
		{"Scripting without time limit", func(c *Config) { c.Scripting = ScriptingConfig{Enabled: true} }, true},
		{"Scripting with time limit", func(c *Config) { c.Scripting = ScriptingConfig{Enabled: true, TimeLimit: time.Second} }, false},
		{"Unknown log format", func(c *Config) { c.Log.Format = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}
