package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "helpdesk.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestIndexingCommandsRefuseMemoryStore(t *testing.T) {
	t.Setenv("DATABASE_DSN", "")
	path := writeConfig(t, "database:\n  driver: memory\n")

	for _, args := range [][]string{
		{"crawl", "https://example.com", "--config", path},
		{"ingest-pdf", "manual.pdf", "--config", path},
		{"crawl", "https://example.com", "--config", writeConfig(t, "server:\n  addr: \":9999\"\n")},
	} {
		cmd := rootCmd()
		cmd.SetArgs(args)
		cmd.SetOut(&bytes.Buffer{})
		if err := cmd.Execute(); !errors.Is(err, errMemoryStore) {
			t.Fatalf("%v: expected memory store refusal, got %v", args, err)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetArgs([]string{"version"})
	cmd.SetOut(&out)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out.String(), "helpdesk version "+Version) {
		t.Fatalf("unexpected output: %q", out.String())
	}
}
