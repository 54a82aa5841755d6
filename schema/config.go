package schema

import (
	"strings"
	"time"
)

// SessionConfig carries the injected configuration for one session. The core
// performs no argument parsing itself; the CLI layer fills this in.
type SessionConfig struct {
	// Argv is the shell command and arguments to spawn under the pty.
	Argv []string
	// ReplayFile, when set, replays a raw capture instead of spawning Argv.
	ReplayFile string
	// RecordFile, when set, mirrors raw pty output to a capture file.
	RecordFile string
	// EventLogFile, when set, mirrors published events one per line.
	EventLogFile string

	// FlushInterval bounds coalescing latency.
	FlushInterval time.Duration
	// FlushBatchSize bounds the number of buffered events per batch.
	FlushBatchSize int
	// SubscriberDepth bounds each subscriber's delivery queue, in batches.
	SubscriberDepth int
}

// DefaultFlushInterval bounds how long a decoded event may sit unflushed.
const DefaultFlushInterval = 100 * time.Millisecond

// DefaultFlushBatchSize caps buffered events per batch.
const DefaultFlushBatchSize = 256

// DefaultSubscriberDepth is the per-subscriber queue depth in batches.
const DefaultSubscriberDepth = 256

// NormalizeSessionConfig validates and fills defaults.
func NormalizeSessionConfig(cfg SessionConfig) (SessionConfig, error) {
	if cfg.ReplayFile != "" && len(cfg.Argv) > 0 {
		return SessionConfig{}, ErrReplayAndCommand
	}
	if len(cfg.Argv) > 0 && strings.TrimSpace(cfg.Argv[0]) == "" {
		return SessionConfig{}, ErrNoShell
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = DefaultFlushInterval
	}
	if cfg.FlushBatchSize <= 0 {
		cfg.FlushBatchSize = DefaultFlushBatchSize
	}
	if cfg.SubscriberDepth <= 0 {
		cfg.SubscriberDepth = DefaultSubscriberDepth
	}
	return cfg, nil
}
