package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Server    ServerConfig
	Recording RecordingConfig
	UI        UIConfig
}

// ServerConfig points at the translation backend.
type ServerConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	StaticPrefix string        `mapstructure:"static_prefix"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// RecordingConfig holds microphone capture settings.
type RecordingConfig struct {
	Format     string `mapstructure:"format"` // "wav" or "flac"
	SampleRate int    `mapstructure:"sample_rate"`
	Device     string `mapstructure:"device"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	NoticeTTL time.Duration `mapstructure:"notice_ttl"`
}

// Load reads configuration from file and env. Env var overrides use prefix SIGNBRIDGE_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("server.base_url", "http://localhost:5000")
	v.SetDefault("server.static_prefix", "/static/")
	v.SetDefault("server.timeout", "90s")
	v.SetDefault("recording.format", "wav")
	v.SetDefault("recording.sample_rate", 16000)
	v.SetDefault("recording.device", "")
	v.SetDefault("ui.notice_ttl", "5s")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("SIGNBRIDGE_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "signbridge"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("SIGNBRIDGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) validate() error {
	switch c.Recording.Format {
	case "wav", "flac":
	default:
		return fmt.Errorf("unknown recording format %q (use wav or flac)", c.Recording.Format)
	}
	if c.Server.BaseURL == "" {
		return fmt.Errorf("server.base_url must not be empty")
	}
	if c.Recording.SampleRate <= 0 {
		return fmt.Errorf("recording.sample_rate must be positive")
	}
	return nil
}
