package kernel

import (
	"fmt"
	"runtime"
)

// maxDelay bounds DelayedSend so wake ticks stay comparable on the wrapping
// tick counter.
const maxDelay = 1 << 30

// Context provides process-local access to kernel operations. It is only valid
// on the goroutine of the process it was handed to.
type Context struct {
	k *Kernel
	p *pcb
}

// enter masks interrupts for a kernel call. A preemption requested by an
// interrupt handler is honoured here, before the call itself runs.
func (c *Context) enter() {
	k := c.k
	k.mu.Lock()
	if k.halted.Load() {
		k.mu.Unlock()
		c.p.exited = true
		runtime.Goexit()
	}
	if k.preempt {
		k.preempt = false
		k.debugf("preempt pid %d", c.p.pid)
		if err := k.releaseProcessor(); err != nil {
			k.mu.Unlock()
			panic(fmt.Errorf("preempt: %w", err))
		}
	}
}

func (c *Context) leave() {
	if c.p.exited {
		return
	}
	c.k.mu.Unlock()
}

// PID returns the calling process id.
func (c *Context) PID() PID { return c.p.pid }

// Ticks returns the timer tick count.
func (c *Context) Ticks() uint32 {
	c.enter()
	defer c.leave()
	return c.k.ticks
}

// Bytes returns the payload of an allocated message, or nil if m is not an
// allocated block.
func (c *Context) Bytes(m Message) []byte {
	c.enter()
	defer c.leave()
	return c.k.payload(m)
}

// RequestMemoryBlock allocates a block, blocking while the pool is empty.
func (c *Context) RequestMemoryBlock() Message {
	c.enter()
	defer c.leave()

	k := c.k
	for {
		if m, ok := k.requestBlock(); ok {
			return m
		}
		c.p.state = StateBlocked
		k.debugf("pid %d blocked on memory", c.p.pid)
		k.block("request memory block")
	}
}

// RequestMemoryBlockNonBlocking allocates a block. It reports false when the
// pool is empty.
func (c *Context) RequestMemoryBlockNonBlocking() (Message, bool) {
	c.enter()
	defer c.leave()
	return c.k.requestBlock()
}

// ReleaseMemoryBlock returns m to the pool. If processes were blocked on
// memory they all become ready and the caller yields.
func (c *Context) ReleaseMemoryBlock(m Message) error {
	c.enter()
	defer c.leave()

	k := c.k
	best, err := k.releaseBlock(m)
	if err != nil {
		return err
	}
	if best < NumPriorities {
		return k.releaseProcessor()
	}
	return nil
}

// Send appends m to the mailbox of dest. Ownership of m passes to dest unless
// an error is returned. If dest was waiting and outranks the caller, the caller
// is preempted before Send returns.
func (c *Context) Send(dest PID, m Message) error {
	c.enter()
	defer c.leave()

	k := c.k
	woken, err := k.deliver(c.p.pid, dest, m)
	if err != nil {
		return err
	}
	if woken != nil && woken.priority < c.p.priority {
		_ = k.releaseProcessor()
	}
	return nil
}

// Receive returns the oldest message in the caller's mailbox and its sender,
// waiting while the mailbox is empty.
func (c *Context) Receive() (Message, PID) {
	c.enter()
	defer c.leave()

	k := c.k
	for c.p.mbox.empty() {
		c.p.state = StateWaiting
		k.block("receive")
	}
	e, _ := c.p.mbox.pop(k.mem)
	k.pool.dequeue(e)
	return e.message(), k.mem.header(e).sender
}

// DelayedSend sends m to dest once delay ticks have fully elapsed. The caller
// is never preempted.
func (c *Context) DelayedSend(dest PID, m Message, delay int) error {
	c.enter()
	defer c.leave()

	k := c.k
	if delay < 0 || delay > maxDelay {
		return fmt.Errorf("delay %d: %w", delay, ErrInvalidDelay)
	}
	if err := k.checkDest(dest); err != nil {
		return err
	}
	e := envelopeOf(m)
	if err := k.pool.owned(e); err != nil {
		return err
	}
	k.mem.setHeader(e, header{sender: c.p.pid, dest: dest, wake: k.ticks + uint32(delay)})
	k.pcbs[PIDTimer].mbox.push(k.mem, e)
	k.pool.enqueue(e)
	return nil
}

// ReleaseProcessor yields to the best ready process. Equal-priority processes
// run in turn.
func (c *Context) ReleaseProcessor() error {
	c.enter()
	defer c.leave()
	return c.k.releaseProcessor()
}

// SetProcessPriority moves pid to prio and runs a scheduling pass if the
// priority changed. The null process and i-processes are fixed.
func (c *Context) SetProcessPriority(pid PID, prio Priority) error {
	c.enter()
	defer c.leave()

	k := c.k
	if prio < PriorityHigh || prio > PriorityLowest {
		return fmt.Errorf("priority %d: %w", prio, ErrInvalidPriority)
	}
	p := k.proc(pid)
	if p == nil || p.pid == PIDNull || p.iproc {
		return fmt.Errorf("pid %d: %w", pid, ErrInvalidPID)
	}
	if p.priority == prio {
		return nil
	}
	k.setPriority(p, prio)
	return k.releaseProcessor()
}

// GetProcessPriority returns the priority of pid.
func (c *Context) GetProcessPriority(pid PID) (Priority, error) {
	c.enter()
	defer c.leave()

	p := c.k.proc(pid)
	if p == nil {
		return 0, fmt.Errorf("pid %d: %w", pid, ErrInvalidPID)
	}
	return p.priority, nil
}

// waitForInterrupt sleeps until an interrupt handler readies a process.
func (c *Context) waitForInterrupt() {
	select {
	case <-c.k.idle:
	case <-c.k.halt:
		c.p.exited = true
		runtime.Goexit()
	}
}

func nullProc(c *Context) {
	for {
		_ = c.ReleaseProcessor()
		c.waitForInterrupt()
	}
}
