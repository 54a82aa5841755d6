package appconfig

import (
	"os"
	"path/filepath"
	"time"

	"pkt.systems/vtscope/schema"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int           `mapstructure:"config_version" yaml:"config_version"`
	StateDir      string        `mapstructure:"state_dir" yaml:"state_dir"`
	Session       SessionConfig `mapstructure:"session" yaml:"session"`
	HTTP          HTTPConfig    `mapstructure:"http" yaml:"http"`
	SSH           SSHConfig     `mapstructure:"ssh" yaml:"ssh"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// SessionConfig controls the decode pipeline.
type SessionConfig struct {
	FlushIntervalMs int    `mapstructure:"flush_interval_ms" yaml:"flush_interval_ms"`
	FlushBatchSize  int    `mapstructure:"flush_batch_size" yaml:"flush_batch_size"`
	SubscriberDepth int    `mapstructure:"subscriber_depth" yaml:"subscriber_depth"`
	EventLogFile    string `mapstructure:"event_log_file" yaml:"event_log_file"`
}

// Pipeline converts the session section into the pipeline's config type.
func (c SessionConfig) Pipeline() schema.SessionConfig {
	return schema.SessionConfig{
		EventLogFile:    c.EventLogFile,
		FlushInterval:   time.Duration(c.FlushIntervalMs) * time.Millisecond,
		FlushBatchSize:  c.FlushBatchSize,
		SubscriberDepth: c.SubscriberDepth,
	}
}

// HTTPConfig configures the HTTP viewer server.
type HTTPConfig struct {
	Addr             string `mapstructure:"addr" yaml:"addr"`
	OpenBrowser      bool   `mapstructure:"open_browser" yaml:"open_browser"`
	BacklogChunkSize int    `mapstructure:"backlog_chunk_size" yaml:"backlog_chunk_size"`
}

// SSHConfig configures the optional SSH event tail server.
type SSHConfig struct {
	Enabled     bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr        string `mapstructure:"addr" yaml:"addr"`
	HostKeyPath string `mapstructure:"host_key_path" yaml:"host_key_path"`
}

// DefaultBacklogChunkSize bounds the number of events packed into one
// backlog replay message.
const DefaultBacklogChunkSize = 100

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, err
	}
	return Config{
		ConfigVersion: CurrentConfigVersion,
		StateDir:      filepath.Join(home, ".vtscope"),
		Session: SessionConfig{
			FlushIntervalMs: int(schema.DefaultFlushInterval.Milliseconds()),
			FlushBatchSize:  schema.DefaultFlushBatchSize,
			SubscriberDepth: schema.DefaultSubscriberDepth,
			EventLogFile:    "",
		},
		HTTP: HTTPConfig{
			Addr:             "127.0.0.1:3000",
			OpenBrowser:      true,
			BacklogChunkSize: DefaultBacklogChunkSize,
		},
		SSH: SSHConfig{
			Enabled:     false,
			Addr:        "127.0.0.1:3022",
			HostKeyPath: filepath.Join(home, ".vtscope", "ssh_host_key"),
		},
	}, nil
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".vtscope", "config.yaml"), nil
}
