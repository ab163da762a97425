package config

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the root configuration structure for the application
type Config struct {
	Storage   StorageConfig   `mapstructure:"storage"`
	GC        GCConfig        `mapstructure:"gc"`
	Log       LogConfig       `mapstructure:"log"`
	Scripting ScriptingConfig `mapstructure:"scripting"`
}

// GCConfig defines the parameters for the background active expiration
type GCConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Interval        time.Duration `mapstructure:"interval"`          // how often to run the background check
	SamplesPerCheck int           `mapstructure:"samples_per_check"` // how many keys to check per shard in one round
	MatchThreshold  float64       `mapstructure:"match_threshold"`   // 0.0-1.0. if expired/scanned >= threshold, repeat immediately
	MaxRounds       int           `mapstructure:"max_rounds"`        // round budget of a cycle after a write burst
	MutationTrigger uint64        `mapstructure:"mutation_trigger"`  // writes since the previous cycle that count as a burst
}

// StorageConfig defines the internal structure of the storage engine
type StorageConfig struct {
	Shards    uint `mapstructure:"shards"`
	Databases int  `mapstructure:"databases"`
}

// LogConfig defines logging verbosity and output style
type LogConfig struct {
	Level  string   `mapstructure:"level"`  // debug, info, warn, error
	Format string   `mapstructure:"format"` // json, console
	Output []string `mapstructure:"output"` // stdout, stderr or file paths
}

// ScriptingConfig toggles the Lua commands
type ScriptingConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	TimeLimit time.Duration `mapstructure:"time_limit"` // a script running longer is aborted
}

// Load reads the configuration from a file and overrides it with environment variables
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.AddConfigPath(".")

	v.SetEnvPrefix("MOONDB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks value ranges before the core is built
func (c *Config) Validate() error {
	if c.Storage.Shards == 0 || c.Storage.Shards > 64 || bits.OnesCount(c.Storage.Shards) != 1 {
		return fmt.Errorf("storage.shards must be a power of 2 between 1 and 64, got %d", c.Storage.Shards)
	}
	if c.Storage.Databases < 1 || c.Storage.Databases > 16 {
		return fmt.Errorf("storage.databases must be between 1 and 16, got %d", c.Storage.Databases)
	}

	if c.GC.Enabled {
		if c.GC.Interval <= 0 {
			return fmt.Errorf("gc.interval must be positive, got %s", c.GC.Interval)
		}
		if c.GC.SamplesPerCheck < 1 {
			return fmt.Errorf("gc.samples_per_check must be positive, got %d", c.GC.SamplesPerCheck)
		}
		if c.GC.MatchThreshold <= 0 || c.GC.MatchThreshold > 1 {
			return fmt.Errorf("gc.match_threshold must be in (0, 1], got %g", c.GC.MatchThreshold)
		}
		if c.GC.MaxRounds < 1 {
			return fmt.Errorf("gc.max_rounds must be positive, got %d", c.GC.MaxRounds)
		}
	}

	if c.Scripting.Enabled && c.Scripting.TimeLimit <= 0 {
		return fmt.Errorf("scripting.time_limit must be positive, got %s", c.Scripting.TimeLimit)
	}

	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", c.Log.Format)
	}

	return nil
}

// setDefaults populates viper with fallback values if they are not provided via file or ENV
func setDefaults(v *viper.Viper) {
	// Storage
	v.SetDefault("storage.shards", 32)
	v.SetDefault("storage.databases", 16)

	// GC
	gc := DefaultGCConfig()
	v.SetDefault("gc.enabled", gc.Enabled)
	v.SetDefault("gc.interval", gc.Interval)
	v.SetDefault("gc.samples_per_check", gc.SamplesPerCheck)
	v.SetDefault("gc.match_threshold", gc.MatchThreshold)
	v.SetDefault("gc.max_rounds", gc.MaxRounds)
	v.SetDefault("gc.mutation_trigger", gc.MutationTrigger)

	// Logger
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", []string{"stdout"})

	// Scripting
	v.SetDefault("scripting.enabled", true)
	v.SetDefault("scripting.time_limit", 5*time.Second)
}
