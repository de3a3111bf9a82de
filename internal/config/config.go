package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Defaults mirror the device firmware's expectations.
const (
	defaultConfigDir  = "configs"
	defaultConfigName = "config"
	envPrefix         = "BELL"

	DefaultReconnectDelay  = 2 * time.Second
	DefaultRefreshInterval = 2 * time.Second
)

// Config is the full application configuration.
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Panel  PanelConfig  `mapstructure:"panel"`
	Device DeviceConfig `mapstructure:"device"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// PanelConfig configures the control panel.
type PanelConfig struct {
	Host             string        `mapstructure:"host"` // device host; gateway is ws://<host>/ws
	ReconnectDelay   time.Duration `mapstructure:"reconnect_delay"`
	RefreshInterval  time.Duration `mapstructure:"refresh_interval"`
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"` // 0 = no timeout
}

// DeviceConfig configures the bell-device simulator.
type DeviceConfig struct {
	Port         string        `mapstructure:"port"`
	DBPath       string        `mapstructure:"db_path"`
	Tick         time.Duration `mapstructure:"tick"`
	StopDuration time.Duration `mapstructure:"stop_duration"`
	RingDuration time.Duration `mapstructure:"ring_duration"`
	WSInterval   time.Duration `mapstructure:"ws_interval"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "bellpanel.log")

	v.SetDefault("panel.host", "localhost:8080")
	v.SetDefault("panel.reconnect_delay", DefaultReconnectDelay)
	v.SetDefault("panel.refresh_interval", DefaultRefreshInterval)
	v.SetDefault("panel.handshake_timeout", time.Duration(0))

	v.SetDefault("device.port", "8080")
	v.SetDefault("device.db_path", "bell.db")
	v.SetDefault("device.tick", time.Second)
	v.SetDefault("device.stop_duration", 3*time.Second)
	v.SetDefault("device.ring_duration", 30*time.Second)
	v.SetDefault("device.ws_interval", time.Second)
}

// New returns a viper instance with defaults and BELL_* env overrides.
// Callers may bind flags onto it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file (explicit path, or configs/config.yml when
// present) and decodes everything into a Config.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(defaultConfigDir)
		v.SetConfigName(defaultConfigName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the panel or simulator cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Panel.Host) == "" {
		return errors.New("panel.host must not be empty")
	}
	if c.Panel.ReconnectDelay <= 0 {
		return fmt.Errorf("panel.reconnect_delay must be positive, got %s", c.Panel.ReconnectDelay)
	}
	if c.Panel.RefreshInterval <= 0 {
		return fmt.Errorf("panel.refresh_interval must be positive, got %s", c.Panel.RefreshInterval)
	}
	if c.Device.Tick <= 0 || c.Device.WSInterval <= 0 {
		return errors.New("device.tick and device.ws_interval must be positive")
	}
	return nil
}
