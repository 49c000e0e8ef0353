package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/KevinKickass/OpenRelayCore/internal/types"
	"github.com/spf13/viper"
)

const (
	DriverSimulated = "simulated"
	DriverMQTT      = "mqtt"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Device  DeviceConfig  `mapstructure:"device"`
	Relays  RelaysConfig  `mapstructure:"relays"`
	Output  OutputConfig  `mapstructure:"output"`
	MQTT    MQTTConfig    `mapstructure:"mqtt"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type ServerConfig struct {
	HTTPPort        int           `mapstructure:"http_port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	StatusInterval  time.Duration `mapstructure:"status_interval"`
}

type DeviceConfig struct {
	Name string `mapstructure:"name"`
	Type string `mapstructure:"type"`
}

// RelaysConfig selects the relay table. File wins over Definitions.
type RelaysConfig struct {
	File        string                  `mapstructure:"file"`
	Definitions []types.RelayDefinition `mapstructure:"definitions"`
}

type OutputConfig struct {
	Driver string `mapstructure:"driver"`
}

type MQTTConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Broker         string        `mapstructure:"broker"`
	ClientID       string        `mapstructure:"client_id"`
	Username       string        `mapstructure:"username"`
	Password       string        `mapstructure:"password"`
	TopicPrefix    string        `mapstructure:"topic_prefix"`
	QoS            byte          `mapstructure:"qos"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Load reads the YAML file at path on top of the built-in defaults and
// applies RELAY_* environment overrides. An empty path loads defaults only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("RELAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_port", 80)
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.status_interval", "10s")

	v.SetDefault("device.name", "ESP32-Relay-Controller")
	v.SetDefault("device.type", "2-Channel Relay")

	v.SetDefault("relays.file", "")
	v.SetDefault("relays.definitions", []map[string]any{
		{"pin": 18, "name": "Living Light", "description": "Living room main lighting"},
		{"pin": 19, "name": "Bedroom Light", "description": "Master bedroom tube light"},
	})

	v.SetDefault("output.driver", DriverSimulated)

	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.client_id", "openrelaycore")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.topic_prefix", "openrelaycore")
	v.SetDefault("mqtt.qos", 1)
	v.SetDefault("mqtt.connect_timeout", "10s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.development", false)
}

// Validate checks values viper cannot type-check.
func (c *Config) Validate() error {
	if c.Server.HTTPPort < 1 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid server.http_port: %d", c.Server.HTTPPort)
	}
	if c.Server.StatusInterval < 0 {
		return fmt.Errorf("invalid server.status_interval: %s", c.Server.StatusInterval)
	}

	switch c.Output.Driver {
	case DriverSimulated:
	case DriverMQTT:
		if !c.MQTT.Enabled {
			return fmt.Errorf("output.driver %q requires mqtt.enabled", DriverMQTT)
		}
	default:
		return fmt.Errorf("unknown output.driver: %q", c.Output.Driver)
	}

	if c.MQTT.Enabled {
		if c.MQTT.Broker == "" {
			return fmt.Errorf("mqtt.broker is required when mqtt is enabled")
		}
		if c.MQTT.QoS > 2 {
			return fmt.Errorf("invalid mqtt.qos: %d", c.MQTT.QoS)
		}
	}

	return nil
}
