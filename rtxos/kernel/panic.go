package kernel

import "fmt"

// PanicInfo contains details about a process panic or a process entry point
// that returned.
type PanicInfo struct {
	PID   PID
	Value any
	Stack []byte
}

type fatalError struct {
	err error
}

// SetPanicHandler installs the kernel panic handler.
//
// The handler is invoked at most once (on the first panic), before the kernel
// halts. It must not panic.
func (k *Kernel) SetPanicHandler(fn func(PanicInfo)) {
	k.panicHandler.Store(fn)
}

// InPanicMode reports whether a process panic stopped the kernel.
func (k *Kernel) InPanicMode() bool {
	return k.Err() != nil
}

func (k *Kernel) triggerPanic(info PanicInfo) {
	k.panicOnce.Do(func() {
		info.Stack = captureStack()
		err, ok := info.Value.(error)
		if !ok {
			err = fmt.Errorf("pid %d: panic: %v", info.PID, info.Value)
		}
		k.fatal.Store(fatalError{err: err})
		k.logf("panic: pid %d: %v", info.PID, info.Value)
		if v := k.panicHandler.Load(); v != nil {
			if fn, ok := v.(func(PanicInfo)); ok && fn != nil {
				fn(info)
			}
		}
	})
	k.Halt()
}
