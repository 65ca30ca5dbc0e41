package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config drives the demo binary. Every field can also be overridden by an
// NDIKIT_* environment variable (see main.go).
type Config struct {
	Mode   string `yaml:"mode"`   // find | monitor | beacon | demo
	Engine string `yaml:"engine"` // auto | ndi | loopback

	Source string `yaml:"source"` // monitor: source name to connect to
	Name   string `yaml:"name"`   // beacon: advertised source name

	StatusAddr string `yaml:"status_addr"` // HTTPS status endpoint, empty disables

	ScanTimeoutMS    int `yaml:"scan_timeout_ms"`
	CaptureTimeoutMS int `yaml:"capture_timeout_ms"`

	Width      int `yaml:"width"`
	Height     int `yaml:"height"`
	FrameRateN int `yaml:"frame_rate_n"`
	FrameRateD int `yaml:"frame_rate_d"`

	LogLevel string `yaml:"log_level"`
}

func defaultConfig() *Config {
	return &Config{
		Mode:             "find",
		Engine:           "auto",
		Name:             "ndikit-beacon",
		StatusAddr:       ":4446",
		ScanTimeoutMS:    2000,
		CaptureTimeoutMS: 1000,
		Width:            1280,
		Height:           720,
		FrameRateN:       30,
		FrameRateD:       1,
		LogLevel:         "info",
	}
}

// loadConfig reads the YAML file at path over the defaults. A missing file
// is not an error: the defaults apply.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Mode {
	case "find", "monitor", "beacon", "demo":
	default:
		return fmt.Errorf("invalid mode %q (must be find, monitor, beacon or demo)", c.Mode)
	}
	switch c.Engine {
	case "auto", "ndi", "loopback":
	default:
		return fmt.Errorf("invalid engine %q (must be auto, ndi or loopback)", c.Engine)
	}
	if c.Mode == "monitor" && c.Source == "" {
		return fmt.Errorf("monitor mode requires a source name")
	}
	if c.ScanTimeoutMS <= 0 || c.CaptureTimeoutMS <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if c.Width <= 0 || c.Height <= 0 || c.FrameRateN <= 0 || c.FrameRateD <= 0 {
		return fmt.Errorf("invalid beacon geometry %dx%d @ %d/%d",
			c.Width, c.Height, c.FrameRateN, c.FrameRateD)
	}
	return nil
}

func (c *Config) slogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
