//go:build !tinygo

// mkboard resolves a board config against the defaults, writes it back as
// YAML and prints the RAM map the kernel would boot with.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"rtx/app"
	"rtx/rtxos/kernel"

	"gopkg.in/yaml.v3"
)

func main() {
	var inPath string
	var outPath string
	var showMap bool
	flag.StringVar(&inPath, "config", "", "Board config to start from (default: built-in defaults).")
	flag.StringVar(&outPath, "out", "", "Write the resolved config here (- for stdout).")
	flag.BoolVar(&showMap, "map", true, "Print the RAM map.")
	flag.Parse()

	if err := run(os.Stdout, inPath, outPath, showMap); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(w io.Writer, inPath, outPath string, showMap bool) error {
	cfg, err := app.LoadConfig(inPath)
	if err != nil {
		return err
	}

	switch outPath {
	case "":
	case "-":
		if err := writeConfig(w, cfg); err != nil {
			return err
		}
	default:
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create %q: %w", outPath, err)
		}
		if err := writeConfig(f, cfg); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %q: %w", outPath, err)
		}
	}

	if !showMap {
		return nil
	}
	k, err := kernel.New(cfg.KernelConfig(nil), app.Procs(cfg, io.Discard, nil))
	if err != nil {
		return err
	}
	defer k.Halt()

	fmt.Fprintf(w, "payload: %d bytes per block\n", k.PayloadSize())
	for _, r := range k.MemoryMap() {
		fmt.Fprintln(w, r)
	}
	return nil
}

func writeConfig(w io.Writer, cfg app.Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}
