package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for a Gray Logic Node.
//
// Every field has a compiled-in default (see defaultConfig), so a node boots
// without any file present. A YAML file and environment variables override
// the defaults.
type Config struct {
	Node      NodeConfig      `yaml:"node"`
	Network   NetworkConfig   `yaml:"network"`
	Board     BoardConfig     `yaml:"board"`
	Loop      LoopConfig      `yaml:"loop"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Database  DatabaseConfig  `yaml:"database"`
	Journal   JournalConfig   `yaml:"journal"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// NodeConfig identifies this node.
type NodeConfig struct {
	// Name is reported as the "device" field of /api/device/info.
	Name string `yaml:"name"`

	// ID overrides the MAC-derived node identifier when non-empty.
	ID string `yaml:"id"`
}

// NetworkConfig describes the network the node joins at boot.
type NetworkConfig struct {
	// Interface is the network interface whose address is served and reported.
	Interface string `yaml:"interface"`

	// SSID is the wireless network name. Empty means the interface is wired
	// or already associated, and boot only waits for an address.
	SSID string `yaml:"ssid"`

	// Passphrase is the WPA credential for SSID.
	Passphrase string `yaml:"passphrase"`

	// RetryDelay is the wait between association attempts (seconds).
	RetryDelay int `yaml:"retry_delay"`

	// JoinTimeout bounds a single association attempt (seconds).
	JoinTimeout int `yaml:"join_timeout"`
}

// BoardConfig maps logical I/O to physical pins.
type BoardConfig struct {
	// Driver selects the I/O implementation: "periph" or "sim".
	Driver string `yaml:"driver"`

	LEDPin    string `yaml:"led_pin"`
	RelayPin  string `yaml:"relay_pin"`
	ButtonPin string `yaml:"button_pin"`

	// ButtonActiveLow treats a low input level as "pressed" (pull-up wiring).
	ButtonActiveLow bool `yaml:"button_active_low"`

	// RelayActiveLow drives the relay pin low for "on".
	RelayActiveLow bool `yaml:"relay_active_low"`

	ADC ADCConfig `yaml:"adc"`
}

// ADCConfig describes the analog input.
type ADCConfig struct {
	// Path is the IIO sysfs raw value file for the analog channel.
	Path string `yaml:"path"`

	// MaxValue is the converter's full-scale reading (4095 for 12 bits).
	MaxValue int `yaml:"max_value"`

	// ReferenceVolts is the voltage corresponding to MaxValue.
	ReferenceVolts float64 `yaml:"reference_volts"`
}

// LoopConfig controls the cooperative main loop.
type LoopConfig struct {
	// SampleInterval is the delay between loop turns (milliseconds).
	SampleInterval int `yaml:"sample_interval_ms"`

	// PublishInterval is the minimum spacing of sample events (milliseconds).
	PublishInterval int `yaml:"publish_interval_ms"`

	// EventBuffer is the capacity of the event channel to observers.
	EventBuffer int `yaml:"event_buffer"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`

	// PanelDir serves index.html from disk instead of the embedded copy.
	PanelDir string `yaml:"panel_dir"`
}

// APITimeoutConfig contains HTTP timeout settings (seconds).
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	Enabled        bool `yaml:"enabled"`
	MaxMessageSize int  `yaml:"max_message_size"`
	PingInterval   int  `yaml:"ping_interval"`
	PongTimeout    int  `yaml:"pong_timeout"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// JournalConfig controls the actuation journal kept in the database.
type JournalConfig struct {
	// RetentionHours prunes older entries at startup. 0 keeps everything.
	RetentionHours int `yaml:"retention_hours"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	TLS  bool   `yaml:"tls"`
	// ClientID is a prefix; the node ID is appended to form the MQTT client ID.
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`

	// Output is "stdout", "stderr", or a path such as a serial console
	// device (/dev/ttyS0) or a log file.
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (compiled in)
//  2. YAML file values, when the file exists
//  3. Environment variables (override file values)
//
// A missing file is not an error: the compiled-in defaults describe the board.
// Environment variables follow the pattern GRAYLOGIC_NODE_SECTION_KEY.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// compiled-in defaults only
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the compiled-in configuration.
func Default() *Config {
	return defaultConfig()
}

// defaultConfig returns the board's compiled-in constants.
func defaultConfig() *Config {
	return &Config{
		Node: NodeConfig{
			Name: "graylogic-node",
		},
		Network: NetworkConfig{
			Interface:   "wlan0",
			RetryDelay:  1,
			JoinTimeout: 30,
		},
		Board: BoardConfig{
			Driver:          "periph",
			LEDPin:          "GPIO17",
			RelayPin:        "GPIO27",
			ButtonPin:       "GPIO22",
			ButtonActiveLow: true,
			ADC: ADCConfig{
				Path:           "/sys/bus/iio/devices/iio:device0/in_voltage0_raw",
				MaxValue:       4095,
				ReferenceVolts: 3.3,
			},
		},
		Loop: LoopConfig{
			SampleInterval:  20,
			PublishInterval: 1000,
			EventBuffer:     64,
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 80,
			Timeouts: APITimeoutConfig{
				Read:  10,
				Write: 10,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Enabled:        true,
			MaxMessageSize: 4096,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Database: DatabaseConfig{
			Enabled:     false,
			Path:        "./data/node.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Journal: JournalConfig{
			RetentionHours: 24 * 7,
		},
		MQTT: MQTTConfig{
			Enabled: false,
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "graylogic-node",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		InfluxDB: InfluxDBConfig{
			Enabled:       false,
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: GRAYLOGIC_NODE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Network credentials belong in the environment, not the file.
	if v := os.Getenv("GRAYLOGIC_NODE_NETWORK_INTERFACE"); v != "" {
		cfg.Network.Interface = v
	}
	if v := os.Getenv("GRAYLOGIC_NODE_NETWORK_SSID"); v != "" {
		cfg.Network.SSID = v
	}
	if v := os.Getenv("GRAYLOGIC_NODE_NETWORK_PASSPHRASE"); v != "" {
		cfg.Network.Passphrase = v
	}

	// Board
	if v := os.Getenv("GRAYLOGIC_NODE_BOARD_DRIVER"); v != "" {
		cfg.Board.Driver = v
	}

	// API
	if v := os.Getenv("GRAYLOGIC_NODE_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("GRAYLOGIC_NODE_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	// Database
	if v := os.Getenv("GRAYLOGIC_NODE_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("GRAYLOGIC_NODE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("GRAYLOGIC_NODE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("GRAYLOGIC_NODE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("GRAYLOGIC_NODE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Node.Name == "" {
		errs = append(errs, "node.name is required")
	}

	if c.Network.Interface == "" {
		errs = append(errs, "network.interface is required")
	}
	if c.Network.RetryDelay < 0 {
		errs = append(errs, "network.retry_delay must not be negative")
	}

	switch strings.ToLower(c.Board.Driver) {
	case "periph", "sim":
	default:
		errs = append(errs, fmt.Sprintf("board.driver %q must be periph or sim", c.Board.Driver))
	}
	if c.Board.ADC.MaxValue <= 0 {
		errs = append(errs, "board.adc.max_value must be positive")
	}
	if c.Board.ADC.ReferenceVolts <= 0 {
		errs = append(errs, "board.adc.reference_volts must be positive")
	}

	if c.Loop.SampleInterval <= 0 {
		errs = append(errs, "loop.sample_interval_ms must be positive")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.WebSocket.Enabled && (c.WebSocket.PingInterval <= 0 || c.WebSocket.PongTimeout <= 0) {
		errs = append(errs, "websocket.ping_interval and websocket.pong_timeout must be positive")
	}

	if c.Database.Enabled && c.Database.Path == "" {
		errs = append(errs, "database.path is required when the database is enabled")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetSampleInterval returns the loop cadence as a Duration.
func (c *Config) GetSampleInterval() time.Duration {
	return time.Duration(c.Loop.SampleInterval) * time.Millisecond
}

// GetPublishInterval returns the sample event spacing as a Duration.
func (c *Config) GetPublishInterval() time.Duration {
	return time.Duration(c.Loop.PublishInterval) * time.Millisecond
}

// GetRetryDelay returns the association retry delay as a Duration.
func (c *Config) GetRetryDelay() time.Duration {
	return time.Duration(c.Network.RetryDelay) * time.Second
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
