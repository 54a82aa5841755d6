package sshserver

import (
	"path/filepath"
	"testing"
)

func TestEnsureHostKeyCreatesAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "ssh_host_key")
	signer, err := EnsureHostKey(path)
	if err != nil {
		t.Fatalf("create host key: %v", err)
	}
	if signer.PublicKey().Type() != "ssh-ed25519" {
		t.Fatalf("unexpected key type: %s", signer.PublicKey().Type())
	}

	reloaded, err := EnsureHostKey(path)
	if err != nil {
		t.Fatalf("reload host key: %v", err)
	}
	if string(reloaded.PublicKey().Marshal()) != string(signer.PublicKey().Marshal()) {
		t.Fatalf("reloaded key differs from created key")
	}
}

func TestEnsureHostKeyRequiresPath(t *testing.T) {
	if _, err := EnsureHostKey("  "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
