package kernel

import "testing"

func queueOf(t *[MaxProcs]pcb, pids ...PID) pcbQueue {
	q := newPCBQueue()
	for _, pid := range pids {
		q.push(t, pid)
	}
	return q
}

func queuePIDs(t *[MaxProcs]pcb, q pcbQueue) []PID {
	var out []PID
	for cur := q.head; cur != noPID; cur = t[cur].next {
		out = append(out, cur)
	}
	return out
}

func TestPCBQueueRemove(t *testing.T) {
	tests := []struct {
		name   string
		pids   []PID
		remove PID
		want   []PID
		ok     bool
	}{
		{name: "single", pids: []PID{1}, remove: 1, want: nil, ok: true},
		{name: "head", pids: []PID{1, 2, 3}, remove: 1, want: []PID{2, 3}, ok: true},
		{name: "middle", pids: []PID{1, 2, 3}, remove: 2, want: []PID{1, 3}, ok: true},
		{name: "tail", pids: []PID{1, 2, 3}, remove: 3, want: []PID{1, 2}, ok: true},
		{name: "missing", pids: []PID{1, 2}, remove: 5, want: []PID{1, 2}, ok: false},
		{name: "empty", pids: nil, remove: 1, want: nil, ok: false},
	}

	for _, tt := range tests {
		var table [MaxProcs]pcb
		for i := range table {
			table[i].next = noPID
		}
		q := queueOf(&table, tt.pids...)

		if ok := q.remove(&table, tt.remove); ok != tt.ok {
			t.Fatalf("%s: remove ok = %v, want %v", tt.name, ok, tt.ok)
		}
		got := queuePIDs(&table, q)
		if len(got) != len(tt.want) {
			t.Fatalf("%s: queue = %v, want %v", tt.name, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Fatalf("%s: queue = %v, want %v", tt.name, got, tt.want)
			}
		}

		// The tail must still accept pushes after a removal.
		q.push(&table, 9)
		if q.tail != 9 || (len(tt.want) == 0 && q.head != 9) {
			t.Fatalf("%s: push after remove head=%d tail=%d", tt.name, q.head, q.tail)
		}
	}
}

func TestStateString(t *testing.T) {
	if got := StateWaiting.String(); got != "waiting" {
		t.Fatalf("StateWaiting.String() = %q, want %q", got, "waiting")
	}
	if got := State(42).String(); got != "unknown" {
		t.Fatalf("State(42).String() = %q, want %q", got, "unknown")
	}
}
