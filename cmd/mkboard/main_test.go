//go:build !tinygo

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rtx/app"
)

func TestRunRoundTripsConfig(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.yaml")
	out := filepath.Join(dir, "out.yaml")
	if err := os.WriteFile(in, []byte("memory:\n  blocks: 4\nstress:\n  enabled: false\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var buf bytes.Buffer
	if err := run(&buf, in, out, true); err != nil {
		t.Fatalf("run: %v", err)
	}

	cfg, err := app.LoadConfig(out)
	if err != nil {
		t.Fatalf("LoadConfig(out): %v", err)
	}
	if cfg.Memory.Blocks != 4 || cfg.Stress.Enabled {
		t.Fatalf("resolved config = %+v, want 4 blocks and stress off", cfg)
	}

	got := buf.String()
	for _, want := range []string{"pool: 4 blocks of 128 bytes", "stack: pid 0", "stack: pid 1", "payload: 112 bytes"} {
		if !strings.Contains(got, want) {
			t.Fatalf("map output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "stack: pid 2") {
		t.Fatalf("map output lists stress stacks with stress disabled:\n%s", got)
	}
}

func TestRunStdout(t *testing.T) {
	var buf bytes.Buffer
	if err := run(&buf, "", "-", false); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(buf.String(), "console: auto") {
		t.Fatalf("yaml output = %q, want the console key", buf.String())
	}
}
