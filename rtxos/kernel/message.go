package kernel

import "fmt"

// checkDest rejects destinations without a PCB. The timer mailbox only takes
// delayed sends.
func (k *Kernel) checkDest(dest PID) error {
	if p := k.proc(dest); p == nil || p.pid == PIDTimer {
		return fmt.Errorf("pid %d: %w", dest, ErrInvalidPID)
	}
	return nil
}

// deliver stamps the envelope of m and appends it to the mailbox of dest. It
// returns the destination PCB if the delivery made it ready.
func (k *Kernel) deliver(sender, dest PID, m Message) (*pcb, error) {
	if err := k.checkDest(dest); err != nil {
		return nil, err
	}
	e := envelopeOf(m)
	if err := k.pool.owned(e); err != nil {
		return nil, err
	}

	k.mem.setHeader(e, header{sender: sender, dest: dest})
	p := &k.pcbs[dest]
	p.mbox.push(k.mem, e)
	k.pool.enqueue(e)
	if p.state != StateWaiting {
		return nil, nil
	}
	p.state = StateReady
	k.ready[p.priority].push(&k.pcbs, p.pid)
	return p, nil
}

func (k *Kernel) receiveNonBlocking(pid PID) (Message, bool) {
	p := k.proc(pid)
	if p == nil {
		return Message{}, false
	}
	e, ok := p.mbox.pop(k.mem)
	if !ok {
		return Message{}, false
	}
	k.pool.dequeue(e)
	return e.message(), true
}
