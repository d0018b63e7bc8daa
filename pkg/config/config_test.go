package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, "", cfg.Serial.Port)
	assert.Equal(t, 9600, cfg.Serial.BaudRate)
	assert.Equal(t, 2*time.Second, cfg.Serial.ReadTimeout)
	assert.Equal(t, 250*time.Millisecond, cfg.Plot.RefreshInterval)
	assert.Equal(t, 3, cfg.Monitor.MalformedTolerance)
	assert.Equal(t, time.Second, cfg.Monitor.NoDataTimeout)
	assert.Equal(t, 200*time.Millisecond, cfg.Mock.SampleRate)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, 9600, cfg.Serial.BaudRate)
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
serial:
  port: "/dev/ttyACM0"
  baud_rate: 115200
  read_timeout: 1500ms

plot:
  refresh_interval: 500ms
  export_dir: /tmp/plots

monitor:
  malformed_tolerance: 5
  no_data_timeout: 3s

mock:
  sample_rate: 50ms
  amplitude_a: 1.5
  malformed_every: 7
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, 1500*time.Millisecond, cfg.Serial.ReadTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Plot.RefreshInterval)
	assert.Equal(t, "/tmp/plots", cfg.Plot.ExportDir)
	assert.Equal(t, 5, cfg.Monitor.MalformedTolerance)
	assert.Equal(t, 3*time.Second, cfg.Monitor.NoDataTimeout)
	assert.Equal(t, 50*time.Millisecond, cfg.Mock.SampleRate)
	assert.Equal(t, 1.5, cfg.Mock.AmplitudeA)
	assert.Equal(t, 7, cfg.Mock.MalformedEvery)
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("invalid: yaml: content: [")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_UnsupportedBaudRate(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("serial:\n  baud_rate: 4800\n")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Nil(t, cfg)
}

func TestLoad_NegativeReadTimeout(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("serial:\n  read_timeout: -1s\n")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Nil(t, cfg)
}

func TestLoad_PartialYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
serial:
  port: "/dev/ttyACM0"
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, 9600, cfg.Serial.BaudRate)                      // default
	assert.Equal(t, 250*time.Millisecond, cfg.Plot.RefreshInterval) // default
	assert.Equal(t, 3, cfg.Monitor.MalformedTolerance)              // default
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.Serial.Port = "/dev/ttyUSB0"
	cfg.Serial.BaudRate = 57600

	tmpfile, err := os.CreateTemp("", "test_save_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	err = cfg.Save(tmpfile.Name())
	require.NoError(t, err)

	loaded, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", loaded.Serial.Port)
	assert.Equal(t, 57600, loaded.Serial.BaudRate)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"115200 baud", func(c *Config) { c.Serial.BaudRate = 115200 }, false},
		{"4800 baud", func(c *Config) { c.Serial.BaudRate = 4800 }, true},
		{"zero baud", func(c *Config) { c.Serial.BaudRate = 0 }, true},
		{"negative read timeout", func(c *Config) { c.Serial.ReadTimeout = -time.Second }, true},
		{"zero read timeout", func(c *Config) { c.Serial.ReadTimeout = 0 }, true},
		{"zero refresh interval", func(c *Config) { c.Plot.RefreshInterval = 0 }, true},
		{"zero tolerance", func(c *Config) { c.Monitor.MalformedTolerance = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidBaudRate(t *testing.T) {
	for _, rate := range BaudRates {
		assert.True(t, ValidBaudRate(rate), "rate %d", rate)
	}
	assert.False(t, ValidBaudRate(4800))
	assert.False(t, ValidBaudRate(230400))
}
