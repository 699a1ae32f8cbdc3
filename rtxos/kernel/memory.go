package kernel

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// pool is the fixed-size block allocator. Free blocks are reused in release
// order; used tracks ownership so a block is never freed twice. queued marks
// allocated blocks that sit in a mailbox or the delay queue: the kernel owns
// them until they are received or delivered.
type pool struct {
	mem   *ram
	base  uint32
	size  uint32
	total int

	free   chain
	nfree  int
	used   *bitset.BitSet
	queued *bitset.BitSet
}

func newPool(mem *ram, base, size uint32, n int) pool {
	p := pool{
		mem:   mem,
		base:  base,
		size:  size,
		total: n,
		used:   bitset.New(uint(n)),
		queued: bitset.New(uint(n)),
	}
	for i := 0; i < n; i++ {
		p.free.push(mem, envelope(base+uint32(i)*size))
	}
	p.nfree = n
	return p
}

func (p *pool) index(e envelope) uint {
	return uint((uint32(e) - p.base) / p.size)
}

func (p *pool) check(e envelope) error {
	a := uint32(e)
	end := p.base + p.size*uint32(p.total)
	if a < p.base || a >= end || (a-p.base)%p.size != 0 {
		return fmt.Errorf("block %#x: %w", a, ErrInvalidBlock)
	}
	return nil
}

// allocated reports whether e is a pool block currently owned by someone
// other than the free list.
func (p *pool) allocated(e envelope) error {
	if err := p.check(e); err != nil {
		return err
	}
	if !p.used.Test(p.index(e)) {
		return fmt.Errorf("block %#x is free: %w", uint32(e), ErrInvalidBlock)
	}
	return nil
}

// owned reports whether e is allocated and held by a process, so it may be
// sent or released.
func (p *pool) owned(e envelope) error {
	if err := p.allocated(e); err != nil {
		return err
	}
	if p.queued.Test(p.index(e)) {
		return fmt.Errorf("block %#x is queued: %w", uint32(e), ErrInvalidBlock)
	}
	return nil
}

func (p *pool) enqueue(e envelope) { p.queued.Set(p.index(e)) }

func (p *pool) dequeue(e envelope) { p.queued.Clear(p.index(e)) }

func (p *pool) alloc() (envelope, bool) {
	e, ok := p.free.pop(p.mem)
	if !ok {
		return nilEnvelope, false
	}
	p.nfree--
	p.used.Set(p.index(e))
	p.mem.setHeader(e, header{})
	return e, true
}

func (p *pool) release(e envelope) error {
	if err := p.check(e); err != nil {
		return err
	}
	idx := p.index(e)
	if !p.used.Test(idx) {
		return fmt.Errorf("block %#x: %w", uint32(e), ErrDoubleRelease)
	}
	if p.queued.Test(idx) {
		return fmt.Errorf("block %#x is queued: %w", uint32(e), ErrInvalidBlock)
	}
	p.used.Clear(idx)
	p.free.push(p.mem, e)
	p.nfree++
	return nil
}

// PayloadSize is the number of user bytes in every message.
func (k *Kernel) PayloadSize() int {
	return int(k.cfg.BlockSize - EnvelopeSize)
}

func (k *Kernel) requestBlock() (Message, bool) {
	e, ok := k.pool.alloc()
	if !ok {
		return Message{}, false
	}
	return e.message(), true
}

// releaseBlock frees m and readies every process blocked on memory, since any
// of them may now succeed. It returns the best priority readied, or
// NumPriorities if nobody was waiting.
func (k *Kernel) releaseBlock(m Message) (Priority, error) {
	if err := k.pool.release(envelopeOf(m)); err != nil {
		k.debugf("release %#x: %v", m.addr, err)
		return NumPriorities, err
	}
	return k.unblockMemory(), nil
}

func (k *Kernel) unblockMemory() Priority {
	best := Priority(NumPriorities)
	for prio := range k.blocked {
		q := &k.blocked[prio]
		for !q.empty() {
			p := &k.pcbs[q.pop(&k.pcbs)]
			p.state = StateReady
			k.ready[p.priority].push(&k.pcbs, p.pid)
			if p.priority < best {
				best = p.priority
			}
		}
	}
	return best
}

func (k *Kernel) payload(m Message) []byte {
	e := envelopeOf(m)
	if k.pool.allocated(e) != nil {
		return nil
	}
	return k.mem.slice(m.addr, k.cfg.BlockSize-EnvelopeSize)
}
