package appconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadRejectsUnsupportedConfigVersion(t *testing.T) {
	path := writeConfig(t, `
config_version: 2
http:
  addr: 127.0.0.1:3000
`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "unsupported config_version") {
		t.Fatalf("expected config_version error, got %v", err)
	}
}

func TestLoadRequiresConfigVersion(t *testing.T) {
	path := writeConfig(t, `
http:
  addr: 127.0.0.1:3000
`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "config_version is required") {
		t.Fatalf("expected config_version error, got %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr != "127.0.0.1:3000" {
		t.Fatalf("unexpected http addr: %q", cfg.HTTP.Addr)
	}
	if cfg.SSH.Enabled {
		t.Fatalf("ssh should be disabled by default")
	}
	if cfg.Session.FlushIntervalMs != 100 {
		t.Fatalf("unexpected flush interval: %d", cfg.Session.FlushIntervalMs)
	}
}

func TestLoadAppliesOverrides(t *testing.T) {
	path := writeConfig(t, `
config_version: 1
session:
  flush_interval_ms: 50
  flush_batch_size: 64
http:
  addr: 127.0.0.1:8080
  open_browser: false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Session.FlushIntervalMs != 50 || cfg.Session.FlushBatchSize != 64 {
		t.Fatalf("session overrides not applied: %+v", cfg.Session)
	}
	if cfg.HTTP.Addr != "127.0.0.1:8080" || cfg.HTTP.OpenBrowser {
		t.Fatalf("http overrides not applied: %+v", cfg.HTTP)
	}
	if cfg.Session.SubscriberDepth != 256 {
		t.Fatalf("default subscriber depth lost: %d", cfg.Session.SubscriberDepth)
	}
}

func TestLoadRejectsEmptyHTTPAddr(t *testing.T) {
	path := writeConfig(t, `
config_version: 1
http:
  addr: ""
`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "http.addr") {
		t.Fatalf("expected http.addr error, got %v", err)
	}
}

func TestLoadSSHRequiresHostKeyPath(t *testing.T) {
	path := writeConfig(t, `
config_version: 1
ssh:
  enabled: true
  host_key_path: ""
`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "ssh.host_key_path") {
		t.Fatalf("expected ssh.host_key_path error, got %v", err)
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("VTSCOPE_TEST_STATE", "/tmp/vtscope-state")
	path := writeConfig(t, `
config_version: 1
state_dir: $VTSCOPE_TEST_STATE
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StateDir != "/tmp/vtscope-state" {
		t.Fatalf("env not expanded: %q", cfg.StateDir)
	}
}

func TestWriteDefaultRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if _, err := WriteDefault(path, false); err != nil {
		t.Fatalf("write default: %v", err)
	}
	if _, err := WriteDefault(path, false); err == nil {
		t.Fatalf("expected overwrite refusal")
	}
	if _, err := WriteDefault(path, true); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load written default: %v", err)
	}
	if cfg.ConfigVersion != CurrentConfigVersion {
		t.Fatalf("unexpected config version: %d", cfg.ConfigVersion)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
