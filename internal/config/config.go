// Package config loads application settings from YAML, layered over the
// embedded defaults.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Header layout, in window pixels.
const (
	HeaderX      = 20
	HeaderY      = 16
	XPBarHeight  = 6
	LineHeight   = 16
	CardHeight   = 44
	InputHeight  = 40
	InputMarginX = 20
)

// Config holds every tunable of the app.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Field   FieldConfig   `yaml:"field"`
	Oracle  OracleConfig  `yaml:"oracle"`
	Storage StorageConfig `yaml:"storage"`
	Haptics HapticsConfig `yaml:"haptics"`
	Ritual  RitualConfig  `yaml:"ritual"`
	Session SessionConfig `yaml:"session"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

// FieldConfig is the particle field look. Colors are CSS color strings;
// stage palettes override them at runtime.
type FieldConfig struct {
	Gap        float64 `yaml:"gap"`
	Radius     float64 `yaml:"radius"`
	Color      string  `yaml:"color"`
	GlowColor  string  `yaml:"glow_color"`
	Opacity    float64 `yaml:"opacity"`
	SpeedMin   float64 `yaml:"speed_min"`
	SpeedMax   float64 `yaml:"speed_max"`
	SpeedScale float64 `yaml:"speed_scale"`
}

// OracleConfig configures the classification service.
type OracleConfig struct {
	Model     string        `yaml:"model"`
	APIKeyEnv string        `yaml:"api_key_env"` // environment variable holding the key
	Timeout   time.Duration `yaml:"timeout"`
}

// APIKey reads the key from the configured environment variable, falling
// back to GEMINI_API_KEY.
func (o OracleConfig) APIKey() string {
	if o.APIKeyEnv != "" {
		if v := os.Getenv(o.APIKeyEnv); v != "" {
			return v
		}
	}
	return os.Getenv("GEMINI_API_KEY")
}

// StorageConfig locates the profile database.
type StorageConfig struct {
	Path string `yaml:"path"` // empty = user config dir
}

// HapticsConfig configures audio pulses.
type HapticsConfig struct {
	Enabled    bool    `yaml:"enabled"`
	SampleRate int     `yaml:"sample_rate"`
	Frequency  float64 `yaml:"frequency"`
}

// RitualConfig configures the focus timer.
type RitualConfig struct {
	Work     time.Duration `yaml:"work"`
	Break    time.Duration `yaml:"break"`
	RewardXP int           `yaml:"reward_xp"`
}

// SessionConfig holds UI effect timings.
type SessionConfig struct {
	Transition     time.Duration `yaml:"transition"`
	LevelUpFlash   time.Duration `yaml:"level_up_flash"`
	EvolutionBurst time.Duration `yaml:"evolution_burst"`
	XPPopup        time.Duration `yaml:"xp_popup"`
	HintRotation   time.Duration `yaml:"hint_rotation"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

func (c *Config) validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("config: window size must be positive")
	case c.Field.Gap <= 0:
		return fmt.Errorf("config: field.gap must be positive")
	case c.Field.SpeedMax < c.Field.SpeedMin:
		return fmt.Errorf("config: field.speed_max below speed_min")
	case c.Ritual.Work <= 0 || c.Ritual.Break <= 0:
		return fmt.Errorf("config: ritual durations must be positive")
	}
	return nil
}

// DatabasePath resolves the storage path, defaulting to the user config
// directory.
func (c *Config) DatabasePath() (string, error) {
	if c.Storage.Path != "" {
		return c.Storage.Path, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config dir: %w", err)
	}
	return filepath.Join(dir, "lifequest", "lifequest.db"), nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
