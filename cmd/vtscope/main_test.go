package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"pkt.systems/vtscope/schema"
)

func TestResolveArgvPrefersCommand(t *testing.T) {
	argv, err := resolveArgv([]string{"htop", "-d", "10"})
	if err != nil {
		t.Fatalf("resolveArgv: %v", err)
	}
	if len(argv) != 3 || argv[0] != "htop" {
		t.Fatalf("resolveArgv = %v, want [htop -d 10]", argv)
	}
}

func TestResolveArgvShellFallback(t *testing.T) {
	t.Setenv("SHELL", "/bin/zsh")
	argv, err := resolveArgv(nil)
	if err != nil {
		t.Fatalf("resolveArgv: %v", err)
	}
	if len(argv) != 1 || argv[0] != "/bin/zsh" {
		t.Fatalf("resolveArgv = %v, want [/bin/zsh]", argv)
	}
}

func TestResolveArgvNoShell(t *testing.T) {
	t.Setenv("SHELL", "")
	if _, err := resolveArgv(nil); !errors.Is(err, schema.ErrNoShell) {
		t.Fatalf("resolveArgv error = %v, want ErrNoShell", err)
	}
}

func TestViewerURL(t *testing.T) {
	if got := viewerURL("127.0.0.1:3000"); got != "http://127.0.0.1:3000" {
		t.Fatalf("viewerURL = %q", got)
	}
}

func TestRootHasSubcommands(t *testing.T) {
	root := newRootCmd()
	want := map[string]bool{"replay": false, "config": false, "version": false}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Fatalf("expected root command to include %s", name)
		}
	}
}

func TestReplayInheritsViewerFlags(t *testing.T) {
	root := newRootCmd()
	var replay *cobra.Command
	for _, cmd := range root.Commands() {
		if cmd.Name() == "replay" {
			replay = cmd
		}
	}
	if replay == nil {
		t.Fatalf("replay command not registered")
	}
	for _, name := range []string{"config", "addr", "event-log", "no-browser", "no-qr", "ssh"} {
		if replay.InheritedFlags().Lookup(name) == nil {
			t.Fatalf("replay is missing inherited flag --%s", name)
		}
	}
	if replay.InheritedFlags().Lookup("record") != nil {
		t.Fatalf("--record must stay on the run command only")
	}
}

func TestBuildSinkComposesEventLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	sink, closeSink, err := buildSink(schema.SessionConfig{EventLogFile: path}, nil)
	if err != nil {
		t.Fatalf("buildSink: %v", err)
	}
	if sink == nil {
		t.Fatalf("expected a composed sink for a configured event log")
	}
	sink.OnBatch([]schema.Event{{Type: schema.EventPrint, Text: "hi"}})
	closeSink()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read event log: %v", err)
	}
	if !strings.Contains(string(data), `"hi"`) {
		t.Fatalf("event log missing mirrored event: %s", data)
	}

	sink, closeSink, err = buildSink(schema.SessionConfig{}, nil)
	if err != nil {
		t.Fatalf("buildSink without event log: %v", err)
	}
	if sink != nil {
		t.Fatalf("expected no sink without a configured event log")
	}
	closeSink()
}

func TestConfigCommandWritesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cmd := newConfigCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config command: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(data), "config_version") {
		t.Fatalf("config file missing config_version: %s", data)
	}
	if !strings.Contains(out.String(), path) {
		t.Fatalf("output %q missing path", out.String())
	}
}

func TestConfigCommandRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("config_version: 1\n"), 0o600); err != nil {
		t.Fatalf("seed config: %v", err)
	}
	cmd := newConfigCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{path})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected overwrite refusal")
	}
}

func TestVersionCommandPrintsModule(t *testing.T) {
	cmd := newVersionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("version command: %v", err)
	}
	if !strings.Contains(out.String(), "pkt.systems/vtscope") {
		t.Fatalf("version output %q missing module path", out.String())
	}
}
