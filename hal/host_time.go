//go:build !tinygo

package hal

import "time"

// tickPeriod is the board timer period.
const tickPeriod = time.Millisecond

// hostTime turns wall-clock progress into timer interrupts. The runner calls
// step whenever it gets a chance; step emits one tick per elapsed period.
type hostTime struct {
	ch    chan uint64
	seq   uint64
	clock func() time.Time

	last time.Time
	acc  time.Duration
}

func newHostTime() *hostTime {
	return newHostTimeWithClock(time.Now)
}

func newHostTimeWithClock(clock func() time.Time) *hostTime {
	return &hostTime{ch: make(chan uint64, 1024), clock: clock}
}

func (t *hostTime) Ticks() <-chan uint64 { return t.ch }

func (t *hostTime) step() {
	now := t.clock()
	if t.last.IsZero() {
		t.last = now
		t.acc = 0
		t.stepN(1)
		return
	}

	t.acc += now.Sub(t.last)
	t.last = now

	ticks := uint64(t.acc / tickPeriod)
	if ticks == 0 {
		return
	}
	t.acc = t.acc % tickPeriod
	t.stepN(ticks)
}

func (t *hostTime) stepN(n uint64) {
	for i := uint64(0); i < n; i++ {
		t.seq++
		select {
		case t.ch <- t.seq:
		default:
		}
	}
}
