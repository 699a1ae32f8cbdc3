package app

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"rtx/rtxos/kernel"
)

func TestParseConfigOverridesDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
console: serial
debug: true
memory:
  blocks: 8
stress:
  delay: 50
priorities:
  a: 3
`))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}

	if cfg.Console != ConsoleSerial {
		t.Fatalf("Console = %q, want %q", cfg.Console, ConsoleSerial)
	}
	if !cfg.Debug {
		t.Fatalf("Debug = false, want true")
	}
	if cfg.Memory.Blocks != 8 {
		t.Fatalf("Blocks = %d, want 8", cfg.Memory.Blocks)
	}
	if want := DefaultConfig().Memory.BlockSize; cfg.Memory.BlockSize != want {
		t.Fatalf("BlockSize = %d, want default %d", cfg.Memory.BlockSize, want)
	}
	if cfg.Stress.Delay != 50 || !cfg.Stress.Enabled {
		t.Fatalf("Stress = %+v, want enabled with delay 50", cfg.Stress)
	}
	if cfg.Priorities.A != kernel.PriorityLowest {
		t.Fatalf("priority a = %d, want %d", cfg.Priorities.A, kernel.PriorityLowest)
	}
	if cfg.Priorities.C != kernel.PriorityHigh {
		t.Fatalf("priority c = %d, want default %d", cfg.Priorities.C, kernel.PriorityHigh)
	}
}

func TestParseConfigEmpty(t *testing.T) {
	cfg, err := ParseConfig(nil)
	if err != nil {
		t.Fatalf("ParseConfig(nil): %v", err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("ParseConfig(nil) = %+v, want defaults", cfg)
	}
}

func TestParseConfigRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "unknown key", doc: "consol: serial\n"},
		{name: "console", doc: "console: lcd\n"},
		{name: "blocks", doc: "memory:\n  blocks: -1\n"},
		{name: "block size", doc: "memory:\n  block_size: 20\n"},
		{name: "unaligned", doc: "memory:\n  block_size: 66\n"},
		{name: "null priority", doc: "priorities:\n  b: 4\n"},
		{name: "delay", doc: "stress:\n  delay: -5\n"},
		{name: "syntax", doc: "memory: [\n"},
	}

	for _, tt := range tests {
		if _, err := ParseConfig([]byte(tt.doc)); !errors.Is(err, ErrBadConfig) {
			t.Fatalf("%s: err = %v, want %v", tt.name, err, ErrBadConfig)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil || cfg != DefaultConfig() {
		t.Fatalf("LoadConfig(\"\") = %+v, %v, want defaults", cfg, err)
	}

	path := filepath.Join(t.TempDir(), "board.yaml")
	if err := os.WriteFile(path, []byte("stress:\n  enabled: false\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err = LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Stress.Enabled {
		t.Fatalf("Stress.Enabled = true, want false")
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing file err = %v, want %v", err, os.ErrNotExist)
	}
}
