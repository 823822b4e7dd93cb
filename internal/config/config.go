// Package config loads the run configuration: defaults, an optional
// YAML file, and FITBRIDGE_* environment overrides, in that order of
// precedence (lowest first). The loaded value is read-only for the
// rest of the run.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/fitbridge/fitbridge/internal/session"
)

// Config is the full run configuration.
type Config struct {
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Export   ExportConfig   `mapstructure:"export"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// PipelineConfig tunes session grouping.
type PipelineConfig struct {
	SessionSplitMinutes int `mapstructure:"session_split_minutes"`
	ChunkSize           int `mapstructure:"chunk_size"`
}

// SessionSplit returns the session gap as a duration.
func (p PipelineConfig) SessionSplit() time.Duration {
	return time.Duration(p.SessionSplitMinutes) * time.Minute
}

// ExportConfig holds output settings.
type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// Load reads configuration from the given file path (optional, empty
// skips the file) plus environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("FITBRIDGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("pipeline.session_split_minutes", int(session.DefaultSplit.Minutes()))
	v.SetDefault("pipeline.chunk_size", session.DefaultChunkSize)

	v.SetDefault("export.dir", "export")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")
}
