package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()
	if cmd == nil {
		t.Fatal("NewRootCmd() returned nil")
	}
	if cmd.Use != "oscseq" {
		t.Fatalf("Use = %q, want %q", cmd.Use, "oscseq")
	}
}

func TestRunWritesExampleConfig(t *testing.T) {
	out := filepath.Join(t.TempDir(), "oscseq.yaml")
	var stdout, stderr bytes.Buffer

	if err := Run(context.Background(), []string{"generate", "config", "--output", out}, &stdout, &stderr); err != nil {
		t.Fatalf("Run() error: %v (stderr: %s)", err, stderr.String())
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("config not written: %v", err)
	}
}
