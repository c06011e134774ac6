package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
node:
  name: "bench-node"
network:
  interface: "eth0"
board:
  driver: "sim"
  led_pin: "GPIO5"
  adc:
    max_value: 1023
    reference_volts: 5.0
api:
  host: "127.0.0.1"
  port: 8080
mqtt:
  enabled: true
  broker:
    host: "broker.local"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Node.Name != "bench-node" {
		t.Errorf("Node.Name = %q, want %q", cfg.Node.Name, "bench-node")
	}
	if cfg.Board.LEDPin != "GPIO5" {
		t.Errorf("Board.LEDPin = %q, want %q", cfg.Board.LEDPin, "GPIO5")
	}
	// Unset keys keep their compiled-in defaults.
	if cfg.Board.RelayPin != "GPIO27" {
		t.Errorf("Board.RelayPin = %q, want default %q", cfg.Board.RelayPin, "GPIO27")
	}
	if cfg.Board.ADC.MaxValue != 1023 {
		t.Errorf("Board.ADC.MaxValue = %d, want 1023", cfg.Board.ADC.MaxValue)
	}
	if cfg.MQTT.Broker.Host != "broker.local" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "broker.local")
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("MQTT.Broker.Port = %d, want default 1883", cfg.MQTT.Broker.Port)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v, want compiled-in defaults", err)
	}

	if cfg.Board.ADC.MaxValue != 4095 {
		t.Errorf("Board.ADC.MaxValue = %d, want 4095", cfg.Board.ADC.MaxValue)
	}
	if cfg.Board.ADC.ReferenceVolts != 3.3 {
		t.Errorf("Board.ADC.ReferenceVolts = %v, want 3.3", cfg.Board.ADC.ReferenceVolts)
	}
}

func TestLoad_UnreadablePath(t *testing.T) {
	// A directory cannot be read as a file.
	_, err := Load(t.TempDir())
	if err == nil {
		t.Error("Load() expected error for a directory path, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
board:
  driver: "arduino"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error for unknown board driver, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "missing node name",
			mutate:  func(c *Config) { c.Node.Name = "" },
			wantErr: true,
		},
		{
			name:    "missing interface",
			mutate:  func(c *Config) { c.Network.Interface = "" },
			wantErr: true,
		},
		{
			name:    "zero adc max",
			mutate:  func(c *Config) { c.Board.ADC.MaxValue = 0 },
			wantErr: true,
		},
		{
			name:    "zero sample interval",
			mutate:  func(c *Config) { c.Loop.SampleInterval = 0 },
			wantErr: true,
		},
		{
			name:    "invalid QoS",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: true,
		},
		{
			name:    "invalid port high",
			mutate:  func(c *Config) { c.API.Port = 70000 },
			wantErr: true,
		},
		{
			name: "websocket without ping interval",
			mutate: func(c *Config) {
				c.WebSocket.Enabled = true
				c.WebSocket.PingInterval = 0
			},
			wantErr: true,
		},
		{
			name: "database enabled without path",
			mutate: func(c *Config) {
				c.Database.Enabled = true
				c.Database.Path = ""
			},
			wantErr: true,
		},
		{
			name:    "influxdb enabled without url",
			mutate:  func(c *Config) { c.InfluxDB.Enabled = true },
			wantErr: true,
		},
		{
			name:    "sim driver upper case",
			mutate:  func(c *Config) { c.Board.Driver = "SIM" },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_GetDurations(t *testing.T) {
	cfg := defaultConfig()

	if got := cfg.GetSampleInterval(); got != 20*time.Millisecond {
		t.Errorf("GetSampleInterval() = %v, want 20ms", got)
	}
	if got := cfg.GetPublishInterval(); got != time.Second {
		t.Errorf("GetPublishInterval() = %v, want 1s", got)
	}
	if got := cfg.GetRetryDelay(); got != time.Second {
		t.Errorf("GetRetryDelay() = %v, want 1s", got)
	}
	if got := cfg.GetReadTimeout().Seconds(); got != 10 {
		t.Errorf("GetReadTimeout() = %v, want 10", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("GRAYLOGIC_NODE_NETWORK_SSID", "workshop")
	t.Setenv("GRAYLOGIC_NODE_NETWORK_PASSPHRASE", "hunter22")
	t.Setenv("GRAYLOGIC_NODE_BOARD_DRIVER", "sim")
	t.Setenv("GRAYLOGIC_NODE_API_PORT", "8081")
	t.Setenv("GRAYLOGIC_NODE_MQTT_HOST", "mqtt.example.com")
	t.Setenv("GRAYLOGIC_NODE_INFLUXDB_TOKEN", "secret-token")

	applyEnvOverrides(cfg)

	if cfg.Network.SSID != "workshop" {
		t.Errorf("Network.SSID = %q, want %q", cfg.Network.SSID, "workshop")
	}
	if cfg.Network.Passphrase != "hunter22" {
		t.Errorf("Network.Passphrase = %q, want %q", cfg.Network.Passphrase, "hunter22")
	}
	if cfg.Board.Driver != "sim" {
		t.Errorf("Board.Driver = %q, want %q", cfg.Board.Driver, "sim")
	}
	if cfg.API.Port != 8081 {
		t.Errorf("API.Port = %d, want 8081", cfg.API.Port)
	}
	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.example.com")
	}
	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "secret-token")
	}
}

func TestApplyEnvOverrides_BadPortIgnored(t *testing.T) {
	cfg := defaultConfig()
	t.Setenv("GRAYLOGIC_NODE_API_PORT", "eighty")

	applyEnvOverrides(cfg)

	if cfg.API.Port != 80 {
		t.Errorf("API.Port = %d, want default 80", cfg.API.Port)
	}
}
