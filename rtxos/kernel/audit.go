package kernel

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// Audit checks block ownership and queue membership with interrupts masked:
// every pool block is owned by exactly one of the free list, a mailbox, the
// delay queue or a process, and every PCB sits in the queue its state calls
// for. It returns the first violation found.
func (k *Kernel) Audit() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if err := k.auditBlocks(); err != nil {
		return err
	}
	return k.auditQueues()
}

func (k *Kernel) auditBlocks() error {
	seen := bitset.New(uint(k.pool.total))
	walk := func(name string, c *chain, free bool) (int, error) {
		n := 0
		var err error
		c.each(k.mem, func(e envelope) bool {
			if err = k.pool.check(e); err != nil {
				return false
			}
			i := k.pool.index(e)
			if seen.Test(i) {
				err = fmt.Errorf("%s: block %#x owned twice: %w", name, uint32(e), ErrCorrupt)
				return false
			}
			seen.Set(i)
			if k.pool.used.Test(i) == free {
				err = fmt.Errorf("%s: block %#x allocation bit %v: %w", name, uint32(e), !free, ErrCorrupt)
				return false
			}
			if k.pool.queued.Test(i) == free {
				err = fmt.Errorf("%s: block %#x queued bit %v: %w", name, uint32(e), !free, ErrCorrupt)
				return false
			}
			n++
			return true
		})
		return n, err
	}

	nfree, err := walk("free list", &k.pool.free, true)
	if err != nil {
		return err
	}
	if nfree != k.pool.nfree {
		return fmt.Errorf("free list has %d blocks, counter says %d: %w", nfree, k.pool.nfree, ErrCorrupt)
	}
	if used := int(k.pool.used.Count()); used+nfree != k.pool.total {
		return fmt.Errorf("%d free + %d used != %d blocks: %w", nfree, used, k.pool.total, ErrCorrupt)
	}

	queued := 0
	for i := range k.pcbs {
		p := &k.pcbs[i]
		if !p.present {
			continue
		}
		n, err := walk(fmt.Sprintf("mailbox %d", p.pid), &p.mbox, false)
		if err != nil {
			return err
		}
		queued += n
	}
	n, err := walk("delay queue", &k.delayq, false)
	if err != nil {
		return err
	}
	queued += n
	if marked := int(k.pool.queued.Count()); marked != queued {
		return fmt.Errorf("%d blocks queued, %d marked queued: %w", queued, marked, ErrCorrupt)
	}

	var last uint32
	first := true
	k.delayq.each(k.mem, func(e envelope) bool {
		wake := k.mem.header(e).wake
		if !first && tickBefore(wake, last) {
			err = fmt.Errorf("delay queue out of order at %#x: %w", uint32(e), ErrCorrupt)
			return false
		}
		first = false
		last = wake
		return true
	})
	return err
}

func (k *Kernel) auditQueues() error {
	for i := range k.pcbs {
		p := &k.pcbs[i]
		if !p.present || p.iproc {
			continue
		}
		var inReady, inBlocked int
		for prio := range k.ready {
			if k.ready[prio].contains(&k.pcbs, p.pid) {
				inReady++
				if Priority(prio) != p.priority {
					return fmt.Errorf("pid %d ready at level %d, priority %d: %w", p.pid, prio, p.priority, ErrCorrupt)
				}
			}
			if k.blocked[prio].contains(&k.pcbs, p.pid) {
				inBlocked++
			}
		}

		want := [2]int{}
		switch p.state {
		case StateNew, StateReady:
			want[0] = 1
		case StateBlocked:
			want[1] = 1
		case StateRunning:
			if p.pid != k.current {
				return fmt.Errorf("pid %d running but current is %d: %w", p.pid, k.current, ErrCorrupt)
			}
		}
		if inReady != want[0] || inBlocked != want[1] {
			return fmt.Errorf("pid %d (%s) in %d ready and %d blocked queues: %w", p.pid, p.state, inReady, inBlocked, ErrCorrupt)
		}
	}
	return nil
}
