package kernel

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

const (
	// MaxProcs is the size of the PCB table, including the null process and i-processes.
	MaxProcs = 16

	// NumPriorities is the number of scheduling levels, including the null level.
	NumPriorities = 5

	defaultRAMBase   = 0x10000000
	defaultBlockSize = 128
	defaultBlocks    = 32
	defaultStackSize = 0x100
)

// PID identifies a process. It is also the index into the PCB table.
type PID int32

const (
	// PIDNull is the idle process. It always exists and is always ready or running.
	PIDNull PID = 0

	// PIDTimer is the timer i-process. Its mailbox holds delayed sends that have not
	// been sorted into the delay queue yet.
	PIDTimer PID = MaxProcs - 1

	noPID PID = -1
)

// Priority is a scheduling level. Lower values run first.
type Priority int32

const (
	PriorityHigh Priority = iota
	PriorityMedium
	PriorityLow
	PriorityLowest

	// PriorityNull is reserved for the idle process.
	PriorityNull
)

var (
	ErrInvalidPID      = errors.New("invalid process id")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidBlock    = errors.New("invalid memory block")
	ErrDoubleRelease   = errors.New("memory block already free")
	ErrInvalidDelay    = errors.New("invalid delay")
	ErrNoReadyProcess  = errors.New("no ready process")
	ErrHalted          = errors.New("kernel halted")
	ErrStarted         = errors.New("kernel already started")
	ErrProcTable       = errors.New("bad process table")
	ErrProcExited      = errors.New("process entry returned")
	ErrCorrupt         = errors.New("kernel state corrupt")
)

// Logger receives kernel log lines. hal.Logger satisfies it.
type Logger interface {
	WriteLineString(s string)
}

// Config describes the simulated board memory and kernel diagnostics.
type Config struct {
	// RAMBase is the address of the first memory pool block. It must be non-zero:
	// address 0 terminates block chains.
	RAMBase uint32
	// BlockSize is the size of every pool block, envelope header included.
	BlockSize uint32
	// Blocks is the number of pool blocks.
	Blocks int

	Logger Logger
	Debug  bool
}

func (c Config) withDefaults() Config {
	if c.RAMBase == 0 {
		c.RAMBase = defaultRAMBase
	}
	if c.BlockSize == 0 {
		c.BlockSize = defaultBlockSize
	}
	if c.Blocks <= 0 {
		c.Blocks = defaultBlocks
	}
	return c
}

// ProcInit is one entry of the static process table.
type ProcInit struct {
	PID       PID
	Priority  Priority
	StackSize uint32

	// Entry is the process body. It must never return.
	Entry func(*Context)

	// IProcess marks an interrupt-context process: it owns a PCB and a mailbox
	// but is never scheduled. Entry must be nil.
	IProcess bool
}

// Kernel is the process-wide kernel state: RAM image, memory pool, PCB table,
// scheduling queues and the delay queue.
//
// mu stands in for the interrupt mask. A process holds it while inside a kernel
// call and it stays held across a context switch; the process that leaves the
// kernel releases it.
type Kernel struct {
	mu sync.Mutex

	cfg Config
	log Logger

	mem   *ram
	pool  pool
	stack uint32

	pcbs    [MaxProcs]pcb
	ready   [NumPriorities]pcbQueue
	blocked [NumPriorities]pcbQueue
	current PID

	ticks  uint32
	delayq chain

	preempt bool
	started bool

	idle     chan struct{}
	halt     chan struct{}
	halted   atomic.Bool
	haltOnce sync.Once

	panicOnce    sync.Once
	panicHandler atomic.Value // func(PanicInfo)
	fatal        atomic.Value // fatalError
}

// New builds the kernel state from the static process table. The null process
// and the timer i-process are added by the kernel.
func New(cfg Config, procs []ProcInit) (*Kernel, error) {
	cfg = cfg.withDefaults()
	if cfg.BlockSize <= EnvelopeSize || cfg.BlockSize%4 != 0 {
		return nil, fmt.Errorf("block size %d: %w", cfg.BlockSize, ErrProcTable)
	}

	k := &Kernel{
		cfg:     cfg,
		log:     cfg.Logger,
		current: noPID,
		idle:    make(chan struct{}, 1),
		halt:    make(chan struct{}),
	}
	for i := range k.ready {
		k.ready[i] = newPCBQueue()
		k.blocked[i] = newPCBQueue()
	}
	for i := range k.pcbs {
		k.pcbs[i] = pcb{pid: PID(i), next: noPID}
	}

	table := make([]ProcInit, 0, len(procs)+2)
	table = append(table, ProcInit{PID: PIDNull, Priority: PriorityNull, StackSize: defaultStackSize, Entry: nullProc})
	table = append(table, procs...)
	table = append(table, ProcInit{PID: PIDTimer, Priority: PriorityHigh, IProcess: true})

	var stackBytes uint32
	for _, pi := range table {
		if err := validateProc(pi, k); err != nil {
			return nil, err
		}
		k.pcbs[pi.PID].present = true
		stackBytes += alignStack(stackSize(pi))
	}

	poolBytes := cfg.BlockSize * uint32(cfg.Blocks)
	k.mem = newRAM(cfg.RAMBase, poolBytes+stackBytes)
	k.pool = newPool(k.mem, cfg.RAMBase, cfg.BlockSize, cfg.Blocks)
	k.stack = cfg.RAMBase + poolBytes + stackBytes

	for _, pi := range table {
		p := &k.pcbs[pi.PID]
		p.priority = pi.Priority
		p.entry = pi.Entry
		p.resume = make(chan struct{}, 1)
		if pi.IProcess {
			p.state = StateIProcess
			p.iproc = true
			continue
		}
		p.state = StateNew
		p.stackSize = alignStack(stackSize(pi))
		p.stackTop = k.allocStack(p.stackSize)
		k.ready[p.priority].push(&k.pcbs, p.pid)
	}

	k.debugf("boot: %d blocks of %d bytes at %#x, %d processes", cfg.Blocks, cfg.BlockSize, cfg.RAMBase, len(table))
	return k, nil
}

func validateProc(pi ProcInit, k *Kernel) error {
	if pi.PID < 0 || pi.PID >= MaxProcs {
		return fmt.Errorf("pid %d out of range: %w", pi.PID, ErrProcTable)
	}
	if k.pcbs[pi.PID].present {
		return fmt.Errorf("pid %d registered twice: %w", pi.PID, ErrProcTable)
	}
	if pi.IProcess {
		if pi.Entry != nil {
			return fmt.Errorf("i-process %d has an entry point: %w", pi.PID, ErrProcTable)
		}
		return nil
	}
	if pi.Entry == nil {
		return fmt.Errorf("pid %d has no entry point: %w", pi.PID, ErrProcTable)
	}
	if pi.PID == PIDNull {
		if pi.Priority != PriorityNull {
			return fmt.Errorf("null process priority %d: %w", pi.Priority, ErrProcTable)
		}
		return nil
	}
	if pi.Priority < PriorityHigh || pi.Priority > PriorityLowest {
		return fmt.Errorf("pid %d priority %d: %w", pi.PID, pi.Priority, ErrInvalidPriority)
	}
	return nil
}

func stackSize(pi ProcInit) uint32 {
	if pi.IProcess {
		return 0
	}
	if pi.StackSize == 0 {
		return defaultStackSize
	}
	return pi.StackSize
}

func alignStack(n uint32) uint32 {
	return (n + 7) &^ 7
}

// allocStack carves a stack from the top of RAM downwards and returns its
// initial (high) address. Stacks are never given back.
func (k *Kernel) allocStack(size uint32) uint32 {
	sp := k.stack
	k.stack -= alignStack(size)
	return sp
}

// Start dispatches the highest-priority process. The calling goroutine does not
// become a process; it returns once the first process owns the CPU.
func (k *Kernel) Start() error {
	k.mu.Lock()
	if k.halted.Load() {
		k.mu.Unlock()
		return ErrHalted
	}
	if k.started {
		k.mu.Unlock()
		return ErrStarted
	}
	k.started = true

	next := k.schedule()
	if next == nil {
		k.mu.Unlock()
		return ErrNoReadyProcess
	}
	k.logf("start: dispatch pid %d", next.pid)
	k.current = next.pid
	k.dispatch(next)
	return nil
}

// Halt stops every process goroutine. Parked processes exit immediately; the
// running process exits at its next kernel entry.
func (k *Kernel) Halt() {
	k.haltOnce.Do(func() {
		k.halted.Store(true)
		close(k.halt)
	})
}

// Halted reports whether Halt was called or a fatal error stopped the kernel.
func (k *Kernel) Halted() bool {
	return k.halted.Load()
}

// Err returns the fatal error that halted the kernel, if any.
func (k *Kernel) Err() error {
	if v, ok := k.fatal.Load().(fatalError); ok {
		return v.err
	}
	return nil
}

// Ticks returns the timer tick count.
func (k *Kernel) Ticks() uint32 {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.ticks
}

// Stats is a snapshot of kernel resource usage.
type Stats struct {
	Ticks       uint32
	BlocksTotal int
	BlocksFree  int
	BlocksUsed  int
	Delayed     int
	Current     PID
	States      [MaxProcs]State
}

// Stats returns a consistent snapshot taken with interrupts masked.
func (k *Kernel) Stats() Stats {
	k.mu.Lock()
	defer k.mu.Unlock()

	st := Stats{
		Ticks:       k.ticks,
		BlocksTotal: k.pool.total,
		BlocksFree:  k.pool.nfree,
		BlocksUsed:  int(k.pool.used.Count()),
		Delayed:     k.delayq.len(k.mem) + k.pcbs[PIDTimer].mbox.len(k.mem),
		Current:     k.current,
	}
	for i := range k.pcbs {
		st.States[i] = k.pcbs[i].state
	}
	return st
}

// proc returns the PCB for pid, or nil if no process owns that slot.
func (k *Kernel) proc(pid PID) *pcb {
	if pid < 0 || pid >= MaxProcs {
		return nil
	}
	p := &k.pcbs[pid]
	if !p.present {
		return nil
	}
	return p
}

func (k *Kernel) logf(format string, args ...any) {
	if k.log == nil {
		return
	}
	k.log.WriteLineString("rtx: " + fmt.Sprintf(format, args...))
}

func (k *Kernel) debugf(format string, args ...any) {
	if !k.cfg.Debug {
		return
	}
	k.logf(format, args...)
}
