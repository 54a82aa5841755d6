package eventlog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"pkt.systems/vtscope/schema"
)

func TestWriterAppendsOneLinePerEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	w, err := Open(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	w.OnBatch([]schema.Event{
		{Type: schema.EventPrint, Text: "hi"},
		{Type: schema.EventLineBreak, Title: "LF"},
	})
	w.OnBatch([]schema.Event{{Type: schema.EventDisconnected}})
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer f.Close()

	var lines []schema.Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var ev schema.Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("line %d: %v", len(lines), err)
		}
		lines = append(lines, ev)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0].Type != schema.EventPrint || lines[0].Text != "hi" {
		t.Fatalf("unexpected first line: %+v", lines[0])
	}
	if lines[2].Type != schema.EventDisconnected {
		t.Fatalf("unexpected last line: %+v", lines[2])
	}
}

func TestWriterOpenFailure(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing", "events.jsonl"), nil); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}
