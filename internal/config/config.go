// Package config provides configuration loading from YAML files.
package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Library  LibraryConfig  `yaml:"library"`
	Playback PlaybackConfig `yaml:"playback"`
	Log      LogConfig      `yaml:"log"`
}

// LibraryConfig controls where and how tracks are discovered.
type LibraryConfig struct {
	Directory     string   `yaml:"directory" default:"."`
	Extensions    []string `yaml:"extensions" default:"[\".mp3\",\".ogg\",\".flac\",\".wav\"]"`
	IncludeHidden bool     `yaml:"include_hidden"`
}

// PlaybackConfig controls the audio engine and the progress poller.
type PlaybackConfig struct {
	Volume     float64 `yaml:"volume" default:"0.8" validate:"gte=0,lte=1"`
	TickRateHz int     `yaml:"tick_rate_hz" default:"30" validate:"gte=1,lte=120"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	Level string `yaml:"level" default:"info"`
	File  string `yaml:"file"`
}

// Load loads configuration from a YAML file. A missing file is not an
// error; defaults apply.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	case os.IsNotExist(err):
		// Defaults only.
	default:
		return nil, errors.Wrap(err, "failed to read config file")
	}

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}
