// Package config loads the agent configuration from YAML with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full agent configuration.
type Config struct {
	Device     DeviceConfig     `yaml:"device"`
	Controller ControllerConfig `yaml:"controller"`
	Radio      RadioConfig      `yaml:"radio"`
	Console    ConsoleConfig    `yaml:"console"`
	Web        WebConfig        `yaml:"web"`
	Log        LogConfig        `yaml:"log"`
}

// DeviceConfig identifies the device to the controller.
type DeviceConfig struct {
	ID    string `yaml:"id"`
	Owner string `yaml:"owner"`
}

// ControllerConfig configures the stream link to the controller broker.
// An empty host enables mDNS discovery.
type ControllerConfig struct {
	Host          string        `yaml:"host"`
	Port          int           `yaml:"port"`
	CheckInterval time.Duration `yaml:"check_interval"`
}

// RadioConfig configures the wide-area radio join.
type RadioConfig struct {
	Activation  string        `yaml:"activation"` // otaa | abp
	DevEUI      string        `yaml:"dev_eui"`
	AppEUI      string        `yaml:"app_eui"`
	AppKey      string        `yaml:"app_key"`
	DevAddr     string        `yaml:"dev_addr"`
	NwkSKey     string        `yaml:"nwk_skey"`
	AppSKey     string        `yaml:"app_skey"`
	JoinTimeout time.Duration `yaml:"join_timeout"`
	DataRate    int           `yaml:"data_rate"`
	NanoGateway bool          `yaml:"nano_gateway"`
}

// ConsoleConfig gates the remote console capability.
type ConsoleConfig struct {
	Enabled bool `yaml:"enabled"`
}

// WebConfig configures the local status API.
type WebConfig struct {
	Enabled bool   `yaml:"enabled"`
	Bind    string `yaml:"bind"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads a configuration file, applies environment overrides and
// defaults, and validates the result.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if host := os.Getenv("TELELINK_HOST"); host != "" {
		c.Controller.Host = host
	}
	if id := os.Getenv("TELELINK_DEVICE_ID"); id != "" {
		c.Device.ID = id
	}
	if owner := os.Getenv("TELELINK_OWNER"); owner != "" {
		c.Device.Owner = owner
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
}

func (c *Config) applyDefaults() {
	if c.Controller.Port == 0 {
		c.Controller.Port = 1883
	}
	if c.Controller.CheckInterval == 0 {
		c.Controller.CheckInterval = 500 * time.Millisecond
	}
	if c.Radio.JoinTimeout == 0 {
		c.Radio.JoinTimeout = 15 * time.Second
	}
	if c.Web.Bind == "" {
		c.Web.Bind = "127.0.0.1:8573"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) validate() error {
	if c.Device.ID == "" {
		return fmt.Errorf("device id is required")
	}
	switch c.Radio.Activation {
	case "", "otaa", "abp":
	default:
		return fmt.Errorf("invalid radio activation %q", c.Radio.Activation)
	}
	return nil
}
