package app

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"rtx/rtxos/kernel"
	"rtx/rtxos/tasks/stress"

	"gopkg.in/yaml.v3"
)

// Console backends.
const (
	ConsoleAuto   = "auto"
	ConsoleSerial = "serial"
	ConsoleTerm   = "term"
)

// minPayload fits the longest text the demo processes send.
const minPayload = 32

var ErrBadConfig = errors.New("bad board config")

// Config is the board description. Zero-valued fields in a YAML file keep
// their defaults.
type Config struct {
	// Console selects where the console process prints: "serial", "term" or
	// "auto" (term when a framebuffer is available).
	Console string `yaml:"console"`
	Debug   bool   `yaml:"debug"`

	Memory     MemoryConfig   `yaml:"memory"`
	Stress     StressConfig   `yaml:"stress"`
	Priorities PriorityConfig `yaml:"priorities"`
}

type MemoryConfig struct {
	BlockSize uint32 `yaml:"block_size"`
	Blocks    int    `yaml:"blocks"`
}

type StressConfig struct {
	Enabled bool   `yaml:"enabled"`
	Delay   int    `yaml:"delay"`
	Every   uint32 `yaml:"every"`
}

type PriorityConfig struct {
	Console kernel.Priority `yaml:"console"`
	A       kernel.Priority `yaml:"a"`
	B       kernel.Priority `yaml:"b"`
	C       kernel.Priority `yaml:"c"`
}

func DefaultConfig() Config {
	return Config{
		Console: ConsoleAuto,
		Memory:  MemoryConfig{BlockSize: 128, Blocks: 32},
		Stress:  StressConfig{Enabled: true, Delay: stress.DefaultDelay, Every: stress.DefaultEvery},
		Priorities: PriorityConfig{
			Console: kernel.PriorityHigh,
			A:       kernel.PriorityLow,
			B:       kernel.PriorityMedium,
			C:       kernel.PriorityHigh,
		},
	}
}

// LoadConfig reads a YAML board file on top of DefaultConfig. An empty path
// returns the defaults.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := ParseConfig(b)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes a YAML board description. Unknown keys are rejected.
func ParseConfig(b []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %v", ErrBadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// KernelConfig returns the kernel memory settings for c.
func (c Config) KernelConfig(log kernel.Logger) kernel.Config {
	return kernel.Config{
		BlockSize: c.Memory.BlockSize,
		Blocks:    c.Memory.Blocks,
		Logger:    log,
		Debug:     c.Debug,
	}
}

func (c Config) Validate() error {
	switch c.Console {
	case ConsoleAuto, ConsoleSerial, ConsoleTerm:
	default:
		return fmt.Errorf("%w: console %q", ErrBadConfig, c.Console)
	}
	if c.Memory.Blocks <= 0 {
		return fmt.Errorf("%w: %d blocks", ErrBadConfig, c.Memory.Blocks)
	}
	if c.Memory.BlockSize < kernel.EnvelopeSize+minPayload || c.Memory.BlockSize%4 != 0 {
		return fmt.Errorf("%w: block size %d", ErrBadConfig, c.Memory.BlockSize)
	}
	for name, p := range map[string]kernel.Priority{
		"console": c.Priorities.Console,
		"a":       c.Priorities.A,
		"b":       c.Priorities.B,
		"c":       c.Priorities.C,
	} {
		if p < kernel.PriorityHigh || p > kernel.PriorityLowest {
			return fmt.Errorf("%w: %s priority %d", ErrBadConfig, name, p)
		}
	}
	if c.Stress.Delay < 0 {
		return fmt.Errorf("%w: stress delay %d", ErrBadConfig, c.Stress.Delay)
	}
	return nil
}
