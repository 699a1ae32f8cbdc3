package kernel

import (
	"fmt"
	"runtime"
)

// dispatch hands the CPU to p. k.mu stays locked: p's goroutine now owns it
// and unlocks it when it leaves the kernel.
func (k *Kernel) dispatch(p *pcb) {
	if p.state == StateNew {
		p.state = StateRunning
		go k.launch(p)
		return
	}
	p.state = StateRunning
	p.resume <- struct{}{}
}

// park saves the outgoing process: its goroutine sleeps until the next
// dispatch. On halt the goroutine exits without touching kernel state.
func (k *Kernel) park(p *pcb) {
	select {
	case <-p.resume:
	case <-k.halt:
		p.exited = true
		runtime.Goexit()
	}
}

// launch is the first dispatch of a process: it leaves the kernel and enters
// the process body.
func (k *Kernel) launch(p *pcb) {
	defer func() {
		if r := recover(); r != nil {
			k.triggerPanic(PanicInfo{PID: p.pid, Value: r})
		}
	}()

	c := &Context{k: k, p: p}
	k.mu.Unlock()
	p.entry(c)
	k.triggerPanic(PanicInfo{PID: p.pid, Value: fmt.Errorf("pid %d: %w", p.pid, ErrProcExited)})
}
