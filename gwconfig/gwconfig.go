// Package gwconfig loads the gateway's YAML configuration file, the way
// dxcluster's own config package loads its server config: a flat struct
// per subsystem, os.ReadFile plus yaml.Unmarshal, with defaults applied
// after parsing rather than via struct tags.
package gwconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the complete gateway configuration.
type Config struct {
	Gateway     GatewayConfig     `yaml:"gateway"`
	Command     CommandConfig     `yaml:"command"`
	SourceStore SourceStoreConfig `yaml:"source_store"`
	Archive     ArchiveConfig     `yaml:"archive"`
	MQTT        MQTTConfig        `yaml:"mqtt"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// GatewayConfig controls the frame ingest loop.
type GatewayConfig struct {
	UDPPort     uint16  `yaml:"udp_port"`
	CRCEnabled  bool    `yaml:"crc_enabled"`
	RecordPath  string  `yaml:"record_path"`
	ReplayPath  string  `yaml:"replay_path"`
	ReplaySpeed float64 `yaml:"replay_speed"`
}

// CommandConfig controls the ASCII command channel.
type CommandConfig struct {
	Port int `yaml:"port"`
}

// SourceStoreConfig controls the optional Pebble-backed per-source
// snapshot store.
type SourceStoreConfig struct {
	Enabled                 bool   `yaml:"enabled"`
	Path                    string `yaml:"path"`
	SnapshotIntervalSeconds int    `yaml:"snapshot_interval_seconds"`
}

// ArchiveConfig controls the optional SQLite-backed event archive.
type ArchiveConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Path            string `yaml:"path"`
	QueueSize       int    `yaml:"queue_size"`
	BatchSize       int    `yaml:"batch_size"`
	BatchIntervalMS int    `yaml:"batch_interval_ms"`
}

// MQTTConfig controls the optional event-bus-to-MQTT sink.
type MQTTConfig struct {
	Enabled bool   `yaml:"enabled"`
	Broker  string `yaml:"broker"`
	Port    int    `yaml:"port"`
	Topic   string `yaml:"topic"`
}

// LoggingConfig controls the structured event logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

func defaults() Config {
	return Config{
		Gateway: GatewayConfig{
			UDPPort:     9700,
			CRCEnabled:  true,
			ReplaySpeed: 1.0,
		},
		Command: CommandConfig{
			Port: 9701,
		},
		SourceStore: SourceStoreConfig{
			SnapshotIntervalSeconds: 30,
		},
		Archive: ArchiveConfig{
			QueueSize:       4096,
			BatchSize:       100,
			BatchIntervalMS: 500,
		},
		MQTT: MQTTConfig{
			Topic: "sentrygate/events",
		},
		Logging: LoggingConfig{
			Level: "INFO",
		},
	}
}

// Load reads and parses the YAML config file at filename, applying
// defaults to any field the file left at its zero value.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("gwconfig: read %s: %w", filename, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("gwconfig: parse %s: %w", filename, err)
	}
	return &cfg, nil
}

// Print writes a short human-readable summary of the active configuration.
func (c *Config) Print() {
	fmt.Printf("gateway: udp_port=%d crc=%v\n", c.Gateway.UDPPort, c.Gateway.CRCEnabled)
	fmt.Printf("command: port=%d\n", c.Command.Port)
	if c.SourceStore.Enabled {
		fmt.Printf("source_store: path=%s snapshot_interval=%ds\n",
			c.SourceStore.Path, c.SourceStore.SnapshotIntervalSeconds)
	}
	if c.Archive.Enabled {
		fmt.Printf("archive: path=%s\n", c.Archive.Path)
	}
	if c.MQTT.Enabled {
		fmt.Printf("mqtt: %s:%d topic=%s\n", c.MQTT.Broker, c.MQTT.Port, c.MQTT.Topic)
	}
	fmt.Printf("logging: level=%s\n", c.Logging.Level)
}
