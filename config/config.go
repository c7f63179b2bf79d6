// Package config loads startup settings for go-soundboard.
// Board state (power, bank, volume) is never written back.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// AudioConfig controls sample loading and the output device
type AudioConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	SampleRate   int           `mapstructure:"sample_rate"`
	Buffer       time.Duration `mapstructure:"buffer"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
}

// MIDIConfig controls the optional control surface
type MIDIConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	OutputPort    string        `mapstructure:"output_port"`    // echo triggered pads here (optional)
	OutputChannel int           `mapstructure:"output_channel"` // 1-16
	PollInterval  time.Duration `mapstructure:"poll_interval"`
}

// ThemeConfig selects the palette
type ThemeConfig struct {
	// Palette is a path to a GIMP .gpl file. Empty uses the built-in palette.
	Palette string `mapstructure:"palette"`
}

// DebugConfig controls the debug log
type DebugConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	LogPath    string `mapstructure:"log_path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// Config is the main configuration structure
type Config struct {
	Audio AudioConfig `mapstructure:"audio"`
	MIDI  MIDIConfig  `mapstructure:"midi"`
	Theme ThemeConfig `mapstructure:"theme"`
	Debug DebugConfig `mapstructure:"debug"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Audio: AudioConfig{
			Enabled:      true,
			SampleRate:   44100,
			Buffer:       50 * time.Millisecond,
			FetchTimeout: 10 * time.Second,
			CacheTTL:     time.Hour,
		},
		MIDI: MIDIConfig{
			Enabled:       true,
			OutputChannel: 10,
			PollInterval:  time.Second,
		},
		Debug: DebugConfig{
			MaxSizeMB:  5,
			MaxBackups: 1,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-soundboard"), nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("audio.enabled", d.Audio.Enabled)
	v.SetDefault("audio.sample_rate", d.Audio.SampleRate)
	v.SetDefault("audio.buffer", d.Audio.Buffer)
	v.SetDefault("audio.fetch_timeout", d.Audio.FetchTimeout)
	v.SetDefault("audio.cache_ttl", d.Audio.CacheTTL)
	v.SetDefault("midi.enabled", d.MIDI.Enabled)
	v.SetDefault("midi.output_port", d.MIDI.OutputPort)
	v.SetDefault("midi.output_channel", d.MIDI.OutputChannel)
	v.SetDefault("midi.poll_interval", d.MIDI.PollInterval)
	v.SetDefault("theme.palette", d.Theme.Palette)
	v.SetDefault("debug.enabled", d.Debug.Enabled)
	v.SetDefault("debug.log_path", d.Debug.LogPath)
	v.SetDefault("debug.max_size_mb", d.Debug.MaxSizeMB)
	v.SetDefault("debug.max_backups", d.Debug.MaxBackups)
}

// New builds a viper instance. An empty path searches the config dir for
// config.yaml; a missing file there is not an error.
func New(path string) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("SOUNDBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := ConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}
	return v
}

// Load reads the config from disk, or returns defaults if none exists
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.Audio.SampleRate < 8000 || c.Audio.SampleRate > 192000 {
		return fmt.Errorf("audio.sample_rate: %d out of range 8000-192000", c.Audio.SampleRate)
	}
	if c.Audio.Buffer <= 0 {
		return fmt.Errorf("audio.buffer: must be positive")
	}
	if c.Audio.FetchTimeout <= 0 {
		return fmt.Errorf("audio.fetch_timeout: must be positive")
	}
	if c.MIDI.OutputChannel < 1 || c.MIDI.OutputChannel > 16 {
		return fmt.Errorf("midi.output_channel: %d out of range 1-16", c.MIDI.OutputChannel)
	}
	if c.MIDI.PollInterval <= 0 {
		return fmt.Errorf("midi.poll_interval: must be positive")
	}
	return nil
}

// Watch calls onChange with the reloaded config whenever the file changes.
// Invalid edits are reported through onError and otherwise ignored.
func Watch(v *viper.Viper, onChange func(*Config), onError func(error)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		var cfg Config
		if err := v.Unmarshal(&cfg); err != nil {
			onError(fmt.Errorf("reloading %s: %w", e.Name, err))
			return
		}
		if err := cfg.Validate(); err != nil {
			onError(fmt.Errorf("reloading %s: %w", e.Name, err))
			return
		}
		onChange(&cfg)
	})
	v.WatchConfig()
}
