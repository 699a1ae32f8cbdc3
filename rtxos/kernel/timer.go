package kernel

// Tick is the periodic timer interrupt. Delayed sends become due once their
// wake tick is strictly behind the counter.
func (k *Kernel) Tick() error {
	return k.Interrupt(PIDTimer, timerIRQ)
}

func timerIRQ(irq *IRQ) {
	k := irq.k
	k.ticks++

	pending := &irq.p.mbox
	for {
		e, ok := pending.pop(k.mem)
		if !ok {
			break
		}
		k.delayq.insertByWake(k.mem, e)
	}

	for !k.delayq.empty() {
		e := k.delayq.head
		h := k.mem.header(e)
		if !tickBefore(h.wake, k.ticks) {
			break
		}
		k.delayq.pop(k.mem)
		k.pool.dequeue(e)
		if err := irq.sendAs(h.sender, h.dest, e.message()); err != nil {
			k.logf("timer: drop delayed send %d -> %d: %v", h.sender, h.dest, err)
			_ = irq.ReleaseMemoryBlock(e.message())
		}
	}
}
