package kernel

// State is a process scheduling state.
type State uint8

const (
	StateNew State = iota
	StateReady
	StateRunning
	// StateBlocked means blocked on memory.
	StateBlocked
	// StateWaiting means blocked on an empty mailbox.
	StateWaiting
	// StateIProcess is used by i-processes, which are never scheduled.
	StateIProcess
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateBlocked:
		return "blocked"
	case StateWaiting:
		return "waiting"
	case StateIProcess:
		return "iproc"
	default:
		return "unknown"
	}
}

type pcb struct {
	pid      PID
	present  bool
	iproc    bool
	priority Priority
	state    State

	// next links the PCB into at most one pcbQueue.
	next PID
	mbox chain

	entry     func(*Context)
	stackTop  uint32
	stackSize uint32

	// resume is the saved context: a parked process goroutine waits on it.
	resume chan struct{}
	exited bool
}

// pcbQueue is an intrusive FIFO of PCBs linked by pid.
type pcbQueue struct {
	head PID
	tail PID
}

func newPCBQueue() pcbQueue {
	return pcbQueue{head: noPID, tail: noPID}
}

func (q *pcbQueue) empty() bool { return q.head == noPID }

func (q *pcbQueue) push(t *[MaxProcs]pcb, pid PID) {
	t[pid].next = noPID
	if q.tail == noPID {
		q.head = pid
		q.tail = pid
		return
	}
	t[q.tail].next = pid
	q.tail = pid
}

func (q *pcbQueue) pop(t *[MaxProcs]pcb) PID {
	pid := q.head
	if pid == noPID {
		return noPID
	}
	q.head = t[pid].next
	if q.head == noPID {
		q.tail = noPID
	}
	t[pid].next = noPID
	return pid
}

// remove unlinks pid from anywhere in the queue. It reports false if pid is
// not a member.
func (q *pcbQueue) remove(t *[MaxProcs]pcb, pid PID) bool {
	if q.head == noPID {
		return false
	}
	if q.head == pid {
		q.pop(t)
		return true
	}
	prev := q.head
	for cur := t[prev].next; cur != noPID; cur = t[cur].next {
		if cur == pid {
			t[prev].next = t[cur].next
			if q.tail == cur {
				q.tail = prev
			}
			t[cur].next = noPID
			return true
		}
		prev = cur
	}
	return false
}

func (q *pcbQueue) contains(t *[MaxProcs]pcb, pid PID) bool {
	for cur := q.head; cur != noPID; cur = t[cur].next {
		if cur == pid {
			return true
		}
	}
	return false
}

func (q *pcbQueue) len(t *[MaxProcs]pcb) int {
	n := 0
	for cur := q.head; cur != noPID; cur = t[cur].next {
		n++
		if n > MaxProcs {
			break
		}
	}
	return n
}
