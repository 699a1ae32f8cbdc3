//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"rtx/app"
	"rtx/hal"
	"rtx/internal/buildinfo"
)

func main() {
	var hcfg hal.HeadlessConfig
	var headless, debug, version bool
	var configPath, console string
	flag.BoolVar(&headless, "headless", false, "Run without a window; the console prints to stdout.")
	flag.IntVar(&hcfg.Hz, "hz", 1000, "Clock polls per second in headless mode.")
	flag.Uint64Var(&hcfg.Ticks, "ticks", 0, "Stop after N polls in headless mode (0 = run forever).")
	flag.StringVar(&configPath, "config", "", "YAML board config file.")
	flag.StringVar(&console, "console", "", "Console backend: serial, term or auto (overrides the config file).")
	flag.BoolVar(&debug, "debug", false, "Log scheduler decisions.")
	flag.BoolVar(&version, "version", false, "Print version and exit.")
	flag.Parse()

	if version {
		fmt.Println(buildinfo.String())
		return
	}

	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if console != "" {
		cfg.Console = console
	}
	if debug {
		cfg.Debug = true
	}
	if headless && cfg.Console == app.ConsoleAuto {
		cfg.Console = app.ConsoleSerial
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	newApp := func(h hal.HAL) func() error {
		return app.NewWithConfig(h, cfg)
	}

	if headless {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := hal.RunHeadless(ctx, newApp, hcfg); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := hal.RunWindow(newApp); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
