package stress

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"rtx/rtxos/kernel"
	"rtx/rtxos/services/console"
)

const (
	pidA kernel.PID = iota + 1
	pidB
	pidC
	pidConsole
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestPipelineSurvivesExhaustion(t *testing.T) {
	out := &syncBuffer{}
	crt := console.New(out, nil)
	tasks := New(Config{A: pidA, B: pidB, C: pidC, Console: pidConsole, Registrar: pidConsole, Delay: 3})

	procs := tasks.Procs(kernel.PriorityLow, kernel.PriorityMedium, kernel.PriorityHigh)
	procs = append(procs, kernel.ProcInit{PID: pidConsole, Priority: kernel.PriorityHigh, Entry: crt.Run})

	k, err := kernel.New(kernel.Config{Blocks: 8}, procs)
	if err != nil {
		t.Fatalf("kernel.New: %v", err)
	}
	defer k.Halt()
	if err := k.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	const wantLines = 3
	deadline := time.Now().Add(5 * time.Second)
	exhausted := false
	for strings.Count(out.String(), "Process C\r\n") < wantLines {
		if time.Now().After(deadline) {
			t.Fatalf("printed %d lines before timeout, want %d", strings.Count(out.String(), "Process C"), wantLines)
		}
		if st := k.Stats(); st.BlocksFree == 0 {
			exhausted = true
		}
		if err := k.Audit(); err != nil {
			t.Fatalf("Audit: %v", err)
		}
		if err := k.Tick(); err != nil {
			t.Fatalf("Tick: %v", err)
		}
		time.Sleep(time.Millisecond)
	}

	if !exhausted {
		t.Fatalf("pool never ran dry")
	}
	if pid, ok := crt.Owner(Command); !ok || pid != pidA {
		t.Fatalf("Owner(%q) = %d, %v, want %d, true", Command, pid, ok, pidA)
	}
	if err := k.Err(); err != nil {
		t.Fatalf("kernel error: %v", err)
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := New(Config{Delay: -1}).cfg
	if cfg.Delay != DefaultDelay {
		t.Fatalf("Delay = %d, want %d", cfg.Delay, DefaultDelay)
	}
	if cfg.Every != DefaultEvery {
		t.Fatalf("Every = %d, want %d", cfg.Every, DefaultEvery)
	}
}
