package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the host-side configuration of the bench and tools.
type Config struct {
	Serial      SerialConfig      `yaml:"serial"`
	Store       StoreConfig       `yaml:"store"`
	Display     DisplayConfig     `yaml:"display"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Mock        MockConfig        `yaml:"mock"`
	Log         LogConfig         `yaml:"log"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// StoreConfig describes where and how the configuration record is kept.
type StoreConfig struct {
	Path          string `yaml:"path"`           // EEPROM image file
	Offset        int64  `yaml:"offset"`         // Record offset within the image
	Size          int    `yaml:"size"`           // Image size used by clear/dump
	SchemaVersion uint8  `yaml:"schema_version"` // 0 never persists
	Unit          string `yaml:"unit"`           // Build variant (SN1, SN2, SN3)
}

// DisplayConfig contains display update parameters.
type DisplayConfig struct {
	UpdateInterval time.Duration `yaml:"update_interval"`
	AverageSamples int           `yaml:"average_samples"` // Readings in the moving average (1 = disabled)
}

// CalibrationConfig contains calibration pacing.
type CalibrationConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	SettleDelay  time.Duration `yaml:"settle_delay"`
	ConfirmDelay time.Duration `yaml:"confirm_delay"`
	Step         float32       `yaml:"step"`
}

// MockConfig contains simulated board parameters.
type MockConfig struct {
	Ambient    float32       `yaml:"ambient"`     // Mean temperature (°F)
	Swing      float32       `yaml:"swing"`       // Amplitude of the slow temperature swing (°F)
	Period     time.Duration `yaml:"period"`      // Period of the swing
	NoiseLevel float32       `yaml:"noise_level"` // Peak noise (°F)
}

// LogConfig contains host logging parameters.
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // json or console
	File       string `yaml:"file"`   // Optional rotated log file
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "COM3", // Default for Windows, should be "/dev/ttyACM0" on Linux/Mac
			BaudRate: 115200,
		},
		Store: StoreConfig{
			Path:          "eeprom.bin",
			Offset:        0,
			Size:          256,
			SchemaVersion: 109,
			Unit:          "SN2",
		},
		Display: DisplayConfig{
			UpdateInterval: time.Second,
			AverageSamples: 4,
		},
		Calibration: CalibrationConfig{
			PollInterval: 200 * time.Millisecond,
			SettleDelay:  1000 * time.Millisecond,
			ConfirmDelay: 500 * time.Millisecond,
			Step:         2,
		},
		Mock: MockConfig{
			Ambient:    72,
			Swing:      6,
			Period:     2 * time.Minute,
			NoiseLevel: 0.2,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			File:       "",
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that required fields have default values if missing.
// SchemaVersion is left alone: 0 is a meaningful value.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Store.Path == "" {
		c.Store.Path = def.Store.Path
	}
	if c.Store.Size == 0 {
		c.Store.Size = def.Store.Size
	}
	if c.Store.Unit == "" {
		c.Store.Unit = def.Store.Unit
	}

	if c.Display.UpdateInterval == 0 {
		c.Display.UpdateInterval = def.Display.UpdateInterval
	}
	if c.Display.AverageSamples <= 0 {
		c.Display.AverageSamples = 1
	}

	if c.Calibration.PollInterval == 0 {
		c.Calibration.PollInterval = def.Calibration.PollInterval
	}
	if c.Calibration.SettleDelay == 0 {
		c.Calibration.SettleDelay = def.Calibration.SettleDelay
	}
	if c.Calibration.ConfirmDelay == 0 {
		c.Calibration.ConfirmDelay = def.Calibration.ConfirmDelay
	}
	if c.Calibration.Step == 0 {
		c.Calibration.Step = def.Calibration.Step
	}

	if c.Mock.Period == 0 {
		c.Mock.Period = def.Mock.Period
	}

	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
}
