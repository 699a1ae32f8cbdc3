//go:build !tinygo

package hal

import (
	"testing"
	"time"
)

func drainTicks(ch <-chan uint64) (n int, last uint64) {
	for {
		select {
		case v := <-ch:
			n++
			last = v
		default:
			return n, last
		}
	}
}

func TestHostTimeStep(t *testing.T) {
	now := time.Unix(0, 0)
	clock := func() time.Time { return now }

	ht := newHostTimeWithClock(clock)
	ht.step()
	if n, last := drainTicks(ht.Ticks()); n != 1 || last != 1 {
		t.Fatalf("first step ticks = %d (last %d), want 1 (last 1)", n, last)
	}

	now = now.Add(1500 * time.Microsecond)
	ht.step()
	if n, last := drainTicks(ht.Ticks()); n != 1 || last != 2 {
		t.Fatalf("after 1.5ms ticks = %d (last %d), want 1 (last 2)", n, last)
	}

	// The half period left over carries into the next step.
	now = now.Add(500 * time.Microsecond)
	ht.step()
	if n, last := drainTicks(ht.Ticks()); n != 1 || last != 3 {
		t.Fatalf("after carry ticks = %d (last %d), want 1 (last 3)", n, last)
	}

	now = now.Add(300 * time.Microsecond)
	ht.step()
	if n, _ := drainTicks(ht.Ticks()); n != 0 {
		t.Fatalf("after 0.3ms ticks = %d, want 0", n)
	}
}

func TestHostTimeDropsWhenFull(t *testing.T) {
	ht := newHostTimeWithClock(time.Now)
	ht.stepN(uint64(cap(ht.ch)) + 10)

	n, last := drainTicks(ht.Ticks())
	if n != cap(ht.ch) {
		t.Fatalf("buffered ticks = %d, want %d", n, cap(ht.ch))
	}
	if last != uint64(cap(ht.ch)) {
		t.Fatalf("last buffered seq = %d, want %d", last, cap(ht.ch))
	}
	if ht.seq != uint64(cap(ht.ch))+10 {
		t.Fatalf("seq = %d, want %d", ht.seq, cap(ht.ch)+10)
	}
}
