package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the daemon configuration. Values can come from a YAML file
// (-config) with individual flags overriding file settings.
type Config struct {
	// Device settings
	Device struct {
		Name     string `yaml:"name"`
		Tag      int    `yaml:"tag"`
		Capacity int    `yaml:"capacity"`
	} `yaml:"device"`

	// Listen address for the session gateway.
	Listen string `yaml:"listen"`

	// TLS settings. Both must be set to enable TLS.
	TLS struct {
		CertFile string `yaml:"cert"`
		KeyFile  string `yaml:"key"`
	} `yaml:"tls"`

	// ProtocolLog is the path of the CBOR protocol log file (empty disables).
	ProtocolLog string `yaml:"protocol_log"`

	// MDNS enables mDNS advertising of the device node.
	MDNS bool `yaml:"mdns"`

	// MDNSInterface restricts advertising to one network interface.
	MDNSInterface string `yaml:"mdns_interface"`

	// LogLevel is the console log level: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the daemon defaults.
func DefaultConfig() Config {
	var cfg Config
	cfg.Device.Name = "chardev"
	cfg.Device.Capacity = 1024
	cfg.Listen = ":9444"
	cfg.LogLevel = "info"
	return cfg
}

// LoadConfig reads a YAML configuration file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Device.Name == "" {
		return fmt.Errorf("device name must not be empty")
	}
	if c.Device.Capacity <= 0 {
		return fmt.Errorf("device capacity must be positive, got %d", c.Device.Capacity)
	}
	if (c.TLS.CertFile == "") != (c.TLS.KeyFile == "") {
		return fmt.Errorf("tls cert and key must be set together")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level: %s", c.LogLevel)
	}
	return nil
}
