package kernel

import "fmt"

// IRQ is the kernel surface handed to an interrupt handler. It only exposes
// primitives that never block; scheduling is decided once the handler returns.
type IRQ struct {
	k *Kernel
	p *pcb

	// best is the highest priority readied by the handler.
	best Priority
}

// Interrupt runs fn as an interrupt on behalf of the i-process src, with
// interrupts masked. If fn readied a process that outranks the interrupted
// one, the interrupted process is preempted at its next kernel entry.
func (k *Kernel) Interrupt(src PID, fn func(*IRQ)) (err error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.halted.Load() {
		return ErrHalted
	}
	p := k.proc(src)
	if p == nil || !p.iproc {
		return fmt.Errorf("interrupt source %d: %w", src, ErrInvalidPID)
	}

	defer func() {
		if r := recover(); r != nil {
			k.triggerPanic(PanicInfo{PID: src, Value: r})
			err = k.Err()
		}
	}()

	irq := IRQ{k: k, p: p, best: NumPriorities}
	fn(&irq)
	k.epilogue(irq.best)
	return nil
}

func (k *Kernel) epilogue(best Priority) {
	if best >= NumPriorities {
		return
	}
	if cur := k.proc(k.current); cur != nil && best < cur.priority {
		k.preempt = true
	}
	select {
	case k.idle <- struct{}{}:
	default:
	}
}

func (irq *IRQ) readied(p Priority) {
	if p < irq.best {
		irq.best = p
	}
}

// PID returns the i-process the interrupt runs for.
func (irq *IRQ) PID() PID { return irq.p.pid }

// Ticks returns the timer tick count.
func (irq *IRQ) Ticks() uint32 { return irq.k.ticks }

// Bytes returns the payload of an allocated message.
func (irq *IRQ) Bytes(m Message) []byte { return irq.k.payload(m) }

// RequestMemoryBlock allocates a block. It reports false when the pool is
// empty.
func (irq *IRQ) RequestMemoryBlock() (Message, bool) {
	return irq.k.requestBlock()
}

// ReleaseMemoryBlock returns m to the pool.
func (irq *IRQ) ReleaseMemoryBlock(m Message) error {
	best, err := irq.k.releaseBlock(m)
	if err != nil {
		return err
	}
	irq.readied(best)
	return nil
}

// SendNonPreempt sends m to dest with the i-process as sender.
func (irq *IRQ) SendNonPreempt(dest PID, m Message) error {
	return irq.sendAs(irq.p.pid, dest, m)
}

func (irq *IRQ) sendAs(sender, dest PID, m Message) error {
	woken, err := irq.k.deliver(sender, dest, m)
	if err != nil {
		return err
	}
	if woken != nil {
		irq.readied(woken.priority)
	}
	return nil
}

// ReceiveNonBlocking takes the oldest message from the mailbox of pid. It
// reports false when the mailbox is empty.
func (irq *IRQ) ReceiveNonBlocking(pid PID) (Message, bool) {
	return irq.k.receiveNonBlocking(pid)
}
