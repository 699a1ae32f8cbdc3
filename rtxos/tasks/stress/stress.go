// Package stress is the A/B/C pipeline used to exercise memory exhaustion
// and delayed sends. A floods B with count reports, B forwards them to C,
// and C prints a line to the console on every twentieth report and then
// sleeps on a delayed wakeup while the pipeline backs up behind it.
package stress

import (
	"fmt"

	"rtx/rtxos/kernel"
	"rtx/rtxos/proto"
)

const (
	DefaultDelay = 10000
	DefaultEvery = 20

	// Command is the identifier A registers with the command dispatcher.
	Command = 'Z'
)

type Config struct {
	A, B, C kernel.PID
	Console kernel.PID

	// Registrar receives A's %Z registration. Zero skips registration.
	Registrar kernel.PID

	// Delay is C's sleep in ticks after each printed line.
	Delay int
	// Every is the report interval C prints on.
	Every uint32

	Logger kernel.Logger
}

func (c Config) withDefaults() Config {
	if c.Delay <= 0 {
		c.Delay = DefaultDelay
	}
	if c.Every == 0 {
		c.Every = DefaultEvery
	}
	return c
}

type Tasks struct {
	cfg Config
}

func New(cfg Config) *Tasks {
	return &Tasks{cfg: cfg.withDefaults()}
}

// Procs returns the process table entries for A, B and C. C should outrank
// B and B should outrank A, or C can end up blocked on memory with its own
// mailbox holding every block.
func (t *Tasks) Procs(a, b, c kernel.Priority) []kernel.ProcInit {
	return []kernel.ProcInit{
		{PID: t.cfg.A, Priority: a, Entry: t.RunA},
		{PID: t.cfg.B, Priority: b, Entry: t.RunB},
		{PID: t.cfg.C, Priority: c, Entry: t.RunC},
	}
}

// RunA sends an increasing count to B, one report per turn.
func (t *Tasks) RunA(ctx *kernel.Context) {
	if t.cfg.Registrar != 0 {
		m := ctx.RequestMemoryBlock()
		proto.Put(ctx.Bytes(m), proto.TypeKCDReg, proto.Registration(Command))
		if err := ctx.Send(t.cfg.Registrar, m); err != nil {
			t.logf("stress A: register: %v", err)
			t.release(ctx, m)
		}
	}

	var count uint32
	for {
		m := ctx.RequestMemoryBlock()
		proto.PutCountReport(ctx.Bytes(m), count)
		if err := ctx.Send(t.cfg.B, m); err != nil {
			t.logf("stress A: send: %v", err)
			t.release(ctx, m)
		}
		count++
		_ = ctx.ReleaseProcessor()
	}
}

// RunB forwards everything it receives to C.
func (t *Tasks) RunB(ctx *kernel.Context) {
	for {
		m, _ := ctx.Receive()
		if err := ctx.Send(t.cfg.C, m); err != nil {
			t.logf("stress B: send: %v", err)
			t.release(ctx, m)
		}
	}
}

// RunC prints on every report whose count is a multiple of Every, then waits
// for its own delayed wakeup. Messages that arrive meanwhile are kept in
// order and handled once it is awake.
func (t *Tasks) RunC(ctx *kernel.Context) {
	var backlog []kernel.Message
	for {
		var m kernel.Message
		if len(backlog) == 0 {
			m, _ = ctx.Receive()
		} else {
			m = backlog[0]
			backlog = backlog[1:]
		}

		if count, ok := proto.DecodeCountReport(ctx.Bytes(m)); ok && count%t.cfg.Every == 0 {
			proto.Put(ctx.Bytes(m), proto.TypeDefault, "Process C\r\n")
			if err := ctx.Send(t.cfg.Console, m); err != nil {
				t.logf("stress C: print: %v", err)
				t.release(ctx, m)
			}
			m = t.sleep(ctx, &backlog)
		}

		t.release(ctx, m)
		_ = ctx.ReleaseProcessor()
	}
}

// sleep delayed-sends a wakeup to C itself and queues everything else that
// arrives until it does. It returns the block to release afterwards.
func (t *Tasks) sleep(ctx *kernel.Context, backlog *[]kernel.Message) kernel.Message {
	wake := ctx.RequestMemoryBlock()
	proto.Put(ctx.Bytes(wake), proto.TypeWakeup10, "")
	if err := ctx.DelayedSend(ctx.PID(), wake, t.cfg.Delay); err != nil {
		t.logf("stress C: delayed send: %v", err)
		return wake
	}
	for {
		m, _ := ctx.Receive()
		if proto.TypeOf(ctx.Bytes(m)) == proto.TypeWakeup10 {
			return m
		}
		*backlog = append(*backlog, m)
	}
}

func (t *Tasks) release(ctx *kernel.Context, m kernel.Message) {
	if err := ctx.ReleaseMemoryBlock(m); err != nil {
		t.logf("stress: pid %d release: %v", ctx.PID(), err)
	}
}

func (t *Tasks) logf(format string, args ...any) {
	if t.cfg.Logger == nil {
		return
	}
	t.cfg.Logger.WriteLineString(fmt.Sprintf(format, args...))
}
