//go:build tinygo

package kernel

// TinyGo cannot format goroutine stacks.
func captureStack() []byte {
	return nil
}
