// Package eventlog appends published events to a JSONL file, one event per
// line in publish order. The file is a durable mirror for later inspection;
// nothing in the pipeline reads it back.
package eventlog

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"pkt.systems/pslog"

	"pkt.systems/vtscope/schema"
)

// Writer mirrors event batches to a file. It satisfies the pipeline's batch
// sink contract and must be closed after the session ends to flush the tail.
type Writer struct {
	mu     sync.Mutex
	file   *os.File
	buf    *bufio.Writer
	logger pslog.Logger
	failed bool
}

// Open creates or truncates path for appending events.
func Open(path string, logger pslog.Logger) (*Writer, error) {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	logger.Info("event log opened", "path", path)
	return &Writer{file: file, buf: bufio.NewWriter(file), logger: logger}, nil
}

// OnBatch appends every event in batch as one JSON line each. A write
// failure disables the mirror for the rest of the session; the pipeline
// itself is never failed by its sinks.
func (w *Writer) OnBatch(batch []schema.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failed {
		return
	}
	enc := json.NewEncoder(w.buf)
	for _, ev := range batch {
		if err := enc.Encode(ev); err != nil {
			w.fail(err)
			return
		}
	}
	if err := w.buf.Flush(); err != nil {
		w.fail(err)
	}
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf != nil {
		if err := w.buf.Flush(); err != nil && !w.failed {
			w.fail(err)
		}
	}
	return w.file.Close()
}

func (w *Writer) fail(err error) {
	w.failed = true
	w.logger.Error("event log write failed", "error", err)
}
