package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cluster.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadValid(t *testing.T) {
	path := writeTemp(t, "id: \"0001\"\nport: 9000\npeers: [\"0000\", \"0002\"]\n")

	r, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.ID != "0001" || r.Port != 9000 || len(r.Peers) != 2 {
		t.Fatalf("unexpected config: %+v", r)
	}
}

func TestLoadMissingID(t *testing.T) {
	path := writeTemp(t, "port: 9000\npeers: [\"0000\"]\n")

	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for missing id")
	}
}

func TestLoadMissingPeers(t *testing.T) {
	path := writeTemp(t, "id: \"0001\"\nport: 9000\n")

	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for missing peers")
	}
}
