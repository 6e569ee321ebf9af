package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pshvedko/smfnotes/midi"
	"github.com/pshvedko/smfnotes/piano"
)

// RollConfig sizes the piano roll image
type RollConfig struct {
	Scale  float64 `json:"scale,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// Config is the main configuration structure. A MaxSize of 0 reads
// inputs of any size.
type Config struct {
	Window          int        `json:"window,omitempty"`
	MaxSize         int64      `json:"max_size"`
	Partial         bool       `json:"partial,omitempty"`
	ZeroVelocityOff bool       `json:"zero_velocity_off"`
	Track           int        `json:"track"`
	SampleRate      int        `json:"sample_rate,omitempty"`
	MaxSeconds      float64    `json:"max_seconds,omitempty"`
	Roll            RollConfig `json:"roll,omitempty"`
}

// Default returns a config with sensible defaults
func Default() *Config {
	return &Config{
		Window:          midi.DefaultWindow,
		MaxSize:         midi.DefaultMaxSize,
		ZeroVelocityOff: true,
		Track:           1,
		SampleRate:      44100,
		MaxSeconds:      piano.MaxSeconds,
		Roll: RollConfig{
			Scale:  32,
			Height: 4,
		},
	}
}

// Dir returns the config directory path
func Dir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "smfnotes"), nil
}

// Path returns the full path to config.json
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from path, or returns defaults if it does not
// exist. Fields missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrap(err, "read config")
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}

// Save writes the config to path
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Options builds decoder options logging to log
func (c *Config) Options(log logrus.FieldLogger) midi.Options {
	o := midi.DefaultOptions()
	if c.Window > 0 {
		o.Window = c.Window
	}
	o.MaxSize = c.MaxSize
	o.Partial = c.Partial
	o.ZeroVelocityOff = c.ZeroVelocityOff
	o.Logger = log
	return o
}
