//go:build !tinygo

package kernel

import "runtime"

// maxStackDump bounds the trace kept for the panic handler.
const maxStackDump = 16 << 10

func captureStack() []byte {
	buf := make([]byte, maxStackDump)
	return buf[:runtime.Stack(buf, false)]
}
