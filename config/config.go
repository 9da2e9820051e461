// Package config loads sandbox settings from defaults, an optional file and
// VIDRIVE_ environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/lixenwraith/vi-drive/catalog"
	"github.com/lixenwraith/vi-drive/parameter"
)

// EnvPrefix prefixes environment overrides; nested keys use underscores (VIDRIVE_TELEMETRY_ENABLED)
const EnvPrefix = "VIDRIVE"

var ErrInvalidConfig = errors.New("invalid config")

type LogConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Level   string `mapstructure:"level"`
	Dir     string `mapstructure:"dir"`
	File    string `mapstructure:"file"`
}

type GraylogConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

type CameraConfig struct {
	Mode          string  `mapstructure:"mode"`
	Preset        string  `mapstructure:"preset"`
	Damping       bool    `mapstructure:"damping"`
	DampingFactor float64 `mapstructure:"dampingFactor"`
}

type AudioConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	Volume  float64 `mapstructure:"volume"`
}

type StoreConfig struct {
	// Driver is "sqlite", "postgres" or empty for no store
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
}

type InfluxConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	URL        string `mapstructure:"url"`
	Token      string `mapstructure:"token"`
	Org        string `mapstructure:"org"`
	Bucket     string `mapstructure:"bucket"`
	BackupPath string `mapstructure:"backupPath"`
}

type StreamConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	Enabled  bool         `mapstructure:"enabled"`
	SampleHz float64      `mapstructure:"sampleHz"`
	Store    StoreConfig  `mapstructure:"store"`
	Influx   InfluxConfig `mapstructure:"influx"`
	Stream   StreamConfig `mapstructure:"stream"`
}

// MetricsConfig controls the OpenTelemetry meter provider
// Enabled metrics are exported as JSON to File every Interval
type MetricsConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	File     string        `mapstructure:"file"`
	Interval time.Duration `mapstructure:"interval"`
	Endpoint string        `mapstructure:"endpoint"`
	Insecure bool          `mapstructure:"insecure"`
}

// Config is the full sandbox configuration
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Graylog GraylogConfig `mapstructure:"graylog"`

	TargetFPS int `mapstructure:"targetFPS"`

	// Vehicle is the profile driven at startup
	Vehicle string `mapstructure:"vehicle"`
	// ProfilesFile adds or overrides catalog profiles
	ProfilesFile string `mapstructure:"profilesFile"`
	AssetsDir    string `mapstructure:"assetsDir"`

	// KeyHoldWindow is how long a key counts as held after its last press or repeat
	KeyHoldWindow time.Duration `mapstructure:"keyHoldWindow"`
	// Bindings overrides action key lists, e.g. accelerate: [arrowup, w]
	Bindings map[string][]string `mapstructure:"bindings"`

	DevOverlay bool `mapstructure:"devOverlay"`

	Camera    CameraConfig    `mapstructure:"camera"`
	Audio     AudioConfig     `mapstructure:"audio"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.enabled", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.dir", "./logs")
	v.SetDefault("log.file", "vi-drive.log")

	v.SetDefault("graylog.enabled", false)
	v.SetDefault("graylog.address", "localhost:12201")

	v.SetDefault("targetFPS", parameter.DefaultTargetFPS)
	v.SetDefault("vehicle", catalog.DefaultID)
	v.SetDefault("profilesFile", "")
	v.SetDefault("assetsDir", ".")
	v.SetDefault("keyHoldWindow", parameter.DefaultKeyHoldWindow)
	v.SetDefault("bindings", map[string][]string{})
	v.SetDefault("devOverlay", true)

	v.SetDefault("camera.mode", "chase")
	v.SetDefault("camera.preset", "near")
	v.SetDefault("camera.damping", true)
	v.SetDefault("camera.dampingFactor", parameter.CameraDampingFactor)

	v.SetDefault("audio.enabled", true)
	v.SetDefault("audio.volume", 1.0)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.sampleHz", parameter.TelemetrySampleHz)
	v.SetDefault("telemetry.store.driver", "sqlite")
	v.SetDefault("telemetry.store.path", "./telemetry.db")
	v.SetDefault("telemetry.store.dsn", "")
	v.SetDefault("telemetry.influx.enabled", false)
	v.SetDefault("telemetry.influx.url", "http://localhost:8086")
	v.SetDefault("telemetry.influx.token", "")
	v.SetDefault("telemetry.influx.org", "vi-drive")
	v.SetDefault("telemetry.influx.bucket", "telemetry")
	v.SetDefault("telemetry.influx.backupPath", "./telemetry.lp.gz")
	v.SetDefault("telemetry.stream.enabled", false)
	v.SetDefault("telemetry.stream.addr", "127.0.0.1:8765")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.file", "./logs/metrics.json")
	v.SetDefault("metrics.interval", parameter.MetricsExportInterval)
	v.SetDefault("metrics.endpoint", "")
	v.SetDefault("metrics.insecure", false)
}

// Default returns the configuration with no file or environment applied
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var c Config
	// Defaults always decode
	_ = v.Unmarshal(&c)
	return c
}

// Load reads path (TOML, JSON or YAML by extension) over the defaults, then applies the environment
// An empty path skips the file
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects values the sandbox cannot run with
func (c Config) Validate() error {
	if c.TargetFPS < parameter.MinTargetFPS {
		return fmt.Errorf("%w: targetFPS %d", ErrInvalidConfig, c.TargetFPS)
	}
	if c.KeyHoldWindow < 0 {
		return fmt.Errorf("%w: negative keyHoldWindow", ErrInvalidConfig)
	}
	switch c.Telemetry.Store.Driver {
	case "", "sqlite", "postgres":
	default:
		return fmt.Errorf("%w: telemetry.store.driver %q", ErrInvalidConfig, c.Telemetry.Store.Driver)
	}
	if c.Telemetry.Enabled && !(c.Telemetry.SampleHz > 0) {
		return fmt.Errorf("%w: telemetry.sampleHz must be positive", ErrInvalidConfig)
	}
	if c.Metrics.Enabled && c.Metrics.Interval <= 0 {
		return fmt.Errorf("%w: metrics.interval must be positive", ErrInvalidConfig)
	}
	if c.Audio.Volume < 0 {
		return fmt.Errorf("%w: negative audio.volume", ErrInvalidConfig)
	}
	return nil
}
