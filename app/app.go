package app

import (
	"fmt"
	"io"

	"rtx/hal"
	"rtx/internal/buildinfo"
	"rtx/rtxos/kernel"
	"rtx/rtxos/services/console"
	"rtx/rtxos/services/term"
	"rtx/rtxos/tasks/stress"
)

// Process table.
const (
	PIDConsole kernel.PID = 1
	PIDStressA kernel.PID = 2
	PIDStressB kernel.PID = 3
	PIDStressC kernel.PID = 4
)

type system struct {
	k *kernel.Kernel
}

// New boots the kernel with the default config. The returned step func
// reports a fatal kernel error once the kernel has halted.
func New(h hal.HAL) func() error {
	return NewWithConfig(h, DefaultConfig())
}

// Run starts the OS and blocks forever (TinyGo/native entrypoint). A boot
// failure is written to the HAL logger first.
func Run(h hal.HAL) {
	if err := New(h)(); err != nil {
		logBootError(h, err)
	}
	select {}
}

func logBootError(h hal.HAL, err error) {
	if l := h.Logger(); l != nil {
		l.WriteLineString(fmt.Sprintf("rtx: boot failed: %v", err))
	}
}

func NewWithConfig(h hal.HAL, cfg Config) func() error {
	sys, err := newSystem(h, cfg)
	if err != nil {
		return func() error { return err }
	}
	return sys.step
}

func newSystem(h hal.HAL, cfg Config) (*system, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	out, err := consoleWriter(h, cfg.Console)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "%s\r\n", buildinfo.String())

	k, err := kernel.New(cfg.KernelConfig(h.Logger()), Procs(cfg, out, h.Logger()))
	if err != nil {
		return nil, err
	}
	installPanicHandler(h, k)

	if err := k.Start(); err != nil {
		return nil, err
	}

	if ht := h.Time(); ht != nil {
		if ch := ht.Ticks(); ch != nil {
			go pumpTicks(k, ch)
		}
	}

	return &system{k: k}, nil
}

// Procs returns the process table for cfg. The console prints to out.
func Procs(cfg Config, out io.Writer, log hal.Logger) []kernel.ProcInit {
	crt := console.New(out, log)
	procs := []kernel.ProcInit{
		{PID: PIDConsole, Priority: cfg.Priorities.Console, Entry: crt.Run},
	}
	if !cfg.Stress.Enabled {
		return procs
	}

	tasks := stress.New(stress.Config{
		A:         PIDStressA,
		B:         PIDStressB,
		C:         PIDStressC,
		Console:   PIDConsole,
		Registrar: PIDConsole,
		Delay:     cfg.Stress.Delay,
		Every:     cfg.Stress.Every,
		Logger:    log,
	})
	return append(procs, tasks.Procs(cfg.Priorities.A, cfg.Priorities.B, cfg.Priorities.C)...)
}

// pumpTicks raises one timer interrupt per tick sequence number, catching up
// on ticks the HAL dropped.
func pumpTicks(k *kernel.Kernel, ch <-chan uint64) {
	var last uint64
	for seq := range ch {
		if last == 0 || seq < last {
			last = seq - 1
		}
		for ; last < seq; last++ {
			if err := k.Tick(); err != nil {
				return
			}
		}
	}
}

func (s *system) step() error {
	if !s.k.Halted() {
		return nil
	}
	if err := s.k.Err(); err != nil {
		return err
	}
	return kernel.ErrHalted
}

func consoleWriter(h hal.HAL, backend string) (io.Writer, error) {
	if backend == ConsoleSerial {
		return serialWriter(h)
	}

	var fb hal.Framebuffer
	if d := h.Display(); d != nil {
		fb = d.Framebuffer()
	}
	t, err := term.New(fb)
	if err == nil {
		return t, nil
	}
	if backend == ConsoleTerm {
		return nil, err
	}
	return serialWriter(h)
}

func serialWriter(h hal.HAL) (io.Writer, error) {
	s := h.Serial()
	if s == nil {
		return nil, fmt.Errorf("console: %w", hal.ErrNotImplemented)
	}
	return s, nil
}
