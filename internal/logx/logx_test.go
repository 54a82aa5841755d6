package logx

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"pkt.systems/pslog"
)

func TestWithViewerAddsField(t *testing.T) {
	capture := &logCapture{}
	logger := pslog.NewWithOptions(capture, pslog.Options{
		Mode:          pslog.ModeStructured,
		NoColor:       true,
		MinLevel:      pslog.InfoLevel,
		VerboseFields: true,
	})
	ctx := pslog.ContextWithLogger(context.Background(), logger)
	log := WithViewer(ctx, "127.0.0.1:51234")
	log.Info("hello")

	entry := capture.firstEntry(t)
	if entry["viewer"] != "127.0.0.1:51234" {
		t.Fatalf("expected viewer field, got %+v", entry)
	}
}

func TestWithViewerSkipsDuplicate(t *testing.T) {
	capture := &logCapture{}
	logger := pslog.NewWithOptions(capture, pslog.Options{
		Mode:          pslog.ModeStructured,
		NoColor:       true,
		MinLevel:      pslog.InfoLevel,
		VerboseFields: true,
	})
	ctx := ContextWithViewerLogger(context.Background(), logger, "10.0.0.1:9")
	log := WithViewer(ctx, "10.0.0.1:9")
	log.Info("hello")

	entry := capture.firstEntry(t)
	if _, ok := entry["viewer"]; ok {
		t.Fatalf("did not expect a second viewer field, got %+v", entry)
	}
}

func TestWithCommandAddsField(t *testing.T) {
	capture := &logCapture{}
	logger := pslog.NewWithOptions(capture, pslog.Options{
		Mode:          pslog.ModeStructured,
		NoColor:       true,
		MinLevel:      pslog.InfoLevel,
		VerboseFields: true,
	})
	log := WithCommand(logger, []string{"/bin/bash", "-l"})
	log.Info("hello")

	entry := capture.firstEntry(t)
	if entry["command"] != "/bin/bash" {
		t.Fatalf("expected command field, got %+v", entry)
	}
}

type logCapture struct {
	buf bytes.Buffer
}

func (c *logCapture) Write(p []byte) (int, error) {
	return c.buf.Write(p)
}

func (c *logCapture) firstEntry(t *testing.T) map[string]any {
	t.Helper()
	data := c.buf.Bytes()
	idx := bytes.IndexByte(data, '\n')
	if idx == -1 {
		idx = len(data)
	}
	line := bytes.TrimSpace(data[:idx])
	entry := map[string]any{}
	if err := json.Unmarshal(line, &entry); err != nil {
		t.Fatalf("parse log entry: %v", err)
	}
	return entry
}
