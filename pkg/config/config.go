package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// BaudRates lists the serial speeds the application offers.
var BaudRates = []int{9600, 19200, 38400, 57600, 115200}

// ErrInvalidConfig is returned by Validate for out-of-range settings.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the application configuration.
type Config struct {
	Serial  SerialConfig  `yaml:"serial"`
	Plot    PlotConfig    `yaml:"plot"`
	Monitor MonitorConfig `yaml:"monitor"`
	Mock    MockConfig    `yaml:"mock"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port        string        `yaml:"port"`
	BaudRate    int           `yaml:"baud_rate"`
	ReadTimeout time.Duration `yaml:"read_timeout"` // No record within this bound is reported as an I/O error
}

// PlotConfig contains chart refresh and export settings.
type PlotConfig struct {
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	ExportDir       string        `yaml:"export_dir"`
}

// MonitorConfig contains connection health parameters.
type MonitorConfig struct {
	MalformedTolerance int           `yaml:"malformed_tolerance"` // Consecutive malformed records before the connection fails
	NoDataTimeout      time.Duration `yaml:"no_data_timeout"`     // Silence after which the data indicator reports no data
}

// MockConfig contains simulated device configuration.
type MockConfig struct {
	SampleRate     time.Duration `yaml:"sample_rate"`
	Period         time.Duration `yaml:"period"`          // Period of the simulated waveforms
	AmplitudeA     float64       `yaml:"amplitude_a"`     // Channel 1 amplitude
	AmplitudeB     float64       `yaml:"amplitude_b"`     // Channel 2 amplitude
	Offset         float64       `yaml:"offset"`          // DC offset added to both channels
	NoiseLevel     float64       `yaml:"noise_level"`     // Peak noise added to both channels
	MalformedEvery int           `yaml:"malformed_every"` // Emit a garbage line every N records (0 = never)
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:        "", // Picked from the enumerated ports at startup
			BaudRate:    9600,
			ReadTimeout: 2 * time.Second,
		},
		Plot: PlotConfig{
			RefreshInterval: 250 * time.Millisecond,
			ExportDir:       ".",
		},
		Monitor: MonitorConfig{
			MalformedTolerance: 3,
			NoDataTimeout:      time.Second,
		},
		Mock: MockConfig{
			SampleRate: 200 * time.Millisecond,
			Period:     4 * time.Second,
			AmplitudeA: 25.0,
			AmplitudeB: 10.0,
			Offset:     30.0,
			NoiseLevel: 0.5,
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
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %q: %w", filename, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", filename, err)
	}

	cfg.ensureDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

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

// Validate reports settings that cannot be used to run a session.
func (c *Config) Validate() error {
	if !ValidBaudRate(c.Serial.BaudRate) {
		return fmt.Errorf("%w: baud rate %d not in %v", ErrInvalidConfig, c.Serial.BaudRate, BaudRates)
	}
	if c.Serial.ReadTimeout <= 0 {
		return fmt.Errorf("%w: read timeout must be positive, got %s", ErrInvalidConfig, c.Serial.ReadTimeout)
	}
	if c.Plot.RefreshInterval <= 0 {
		return fmt.Errorf("%w: refresh interval must be positive", ErrInvalidConfig)
	}
	if c.Monitor.MalformedTolerance < 1 {
		return fmt.Errorf("%w: malformed tolerance must be at least 1", ErrInvalidConfig)
	}
	return nil
}

// ValidBaudRate reports whether rate is one of BaudRates.
func ValidBaudRate(rate int) bool {
	return slices.Contains(BaudRates, rate)
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}
	if c.Serial.ReadTimeout == 0 {
		c.Serial.ReadTimeout = def.Serial.ReadTimeout
	}

	if c.Plot.RefreshInterval == 0 {
		c.Plot.RefreshInterval = def.Plot.RefreshInterval
	}
	if c.Plot.ExportDir == "" {
		c.Plot.ExportDir = def.Plot.ExportDir
	}

	if c.Monitor.MalformedTolerance == 0 {
		c.Monitor.MalformedTolerance = def.Monitor.MalformedTolerance
	}
	if c.Monitor.NoDataTimeout == 0 {
		c.Monitor.NoDataTimeout = def.Monitor.NoDataTimeout
	}

	if c.Mock.SampleRate == 0 {
		c.Mock.SampleRate = def.Mock.SampleRate
	}
	if c.Mock.Period == 0 {
		c.Mock.Period = def.Mock.Period
	}
}
