package kernel

import "fmt"

// schedule puts the current process back on the queue its state calls for and
// takes the head of the best non-empty ready level. It returns nil only when
// nothing at all is ready.
func (k *Kernel) schedule() *pcb {
	if cur := k.proc(k.current); cur != nil && !cur.iproc {
		switch cur.state {
		case StateBlocked:
			k.blocked[cur.priority].push(&k.pcbs, cur.pid)
		case StateWaiting:
		default:
			cur.state = StateReady
			k.ready[cur.priority].push(&k.pcbs, cur.pid)
		}
	}

	for prio := range k.ready {
		if pid := k.ready[prio].pop(&k.pcbs); pid != noPID {
			return &k.pcbs[pid]
		}
	}
	return nil
}

// releaseProcessor runs a scheduling pass for the current process. When a
// different process is chosen the caller's goroutine parks until it is
// dispatched again. Must be called from process context with k.mu held.
func (k *Kernel) releaseProcessor() error {
	old := &k.pcbs[k.current]
	next := k.schedule()
	if next == nil {
		if old.state == StateBlocked {
			k.blocked[old.priority].remove(&k.pcbs, old.pid)
		}
		old.state = StateRunning
		k.logf("pid %d: %v", old.pid, ErrNoReadyProcess)
		return ErrNoReadyProcess
	}
	if next == old {
		old.state = StateRunning
		return nil
	}

	k.debugf("switch %d(%s) -> %d", old.pid, old.state, next.pid)
	k.current = next.pid
	k.dispatch(next)
	k.park(old)
	return nil
}

// block is releaseProcessor for callers that cannot continue without another
// process running first. Failing to find one is fatal.
func (k *Kernel) block(op string) {
	if err := k.releaseProcessor(); err != nil {
		panic(fmt.Errorf("%s: %w", op, err))
	}
}

func (k *Kernel) setPriority(p *pcb, prio Priority) {
	old := p.priority
	switch p.state {
	case StateNew, StateReady:
		k.ready[old].remove(&k.pcbs, p.pid)
		p.priority = prio
		k.ready[prio].push(&k.pcbs, p.pid)
	case StateBlocked:
		k.blocked[old].remove(&k.pcbs, p.pid)
		p.priority = prio
		k.blocked[prio].push(&k.pcbs, p.pid)
	default:
		p.priority = prio
	}
	k.debugf("pid %d priority %d -> %d", p.pid, old, prio)
}
