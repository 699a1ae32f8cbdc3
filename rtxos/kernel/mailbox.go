package kernel

// chain is a singly linked FIFO of blocks threaded through the next word of
// each block. It backs the free list, mailboxes and the delay queue; a block
// is on at most one chain at a time.
type chain struct {
	head envelope
	tail envelope
}

func (c *chain) empty() bool { return c.head == nilEnvelope }

func (c *chain) push(r *ram, e envelope) {
	r.setNext(e, nilEnvelope)
	if c.tail == nilEnvelope {
		c.head = e
		c.tail = e
		return
	}
	r.setNext(c.tail, e)
	c.tail = e
}

func (c *chain) pop(r *ram) (envelope, bool) {
	e := c.head
	if e == nilEnvelope {
		return nilEnvelope, false
	}
	c.head = r.next(e)
	if c.head == nilEnvelope {
		c.tail = nilEnvelope
	}
	r.setNext(e, nilEnvelope)
	return e, true
}

// insertByWake keeps the chain sorted by wake tick. e goes before the first
// entry with a strictly later wake tick, so equal ticks stay in arrival order.
func (c *chain) insertByWake(r *ram, e envelope) {
	wake := r.header(e).wake
	if c.head == nilEnvelope || tickBefore(wake, r.header(c.head).wake) {
		r.setNext(e, c.head)
		c.head = e
		if c.tail == nilEnvelope {
			c.tail = e
		}
		return
	}

	prev := c.head
	for cur := r.next(prev); cur != nilEnvelope; cur = r.next(cur) {
		if tickBefore(wake, r.header(cur).wake) {
			r.setNext(e, cur)
			r.setNext(prev, e)
			return
		}
		prev = cur
	}
	r.setNext(e, nilEnvelope)
	r.setNext(prev, e)
	c.tail = e
}

func (c *chain) len(r *ram) int {
	n := 0
	for e := c.head; e != nilEnvelope; e = r.next(e) {
		n++
	}
	return n
}

// each calls fn for every block until fn returns false.
func (c *chain) each(r *ram, fn func(envelope) bool) {
	for e := c.head; e != nilEnvelope; e = r.next(e) {
		if !fn(e) {
			return
		}
	}
}

// tickBefore reports a < b on the wrapping tick counter.
func tickBefore(a, b uint32) bool {
	return int32(a-b) < 0
}
