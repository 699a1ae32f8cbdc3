//go:build tinygo && baremetal

package hal

import (
	"machine"
	"sync"
	"time"
)

// boardHAL drives a Pico 2 (RP2350) with no panel: the console and the
// kernel log share UART0, and the board timer raises the tick.
type boardHAL struct {
	uart *lockedUART
	t    *boardTime
}

// New returns the board HAL.
//
// UART: UART0 on GP0 (TX) / GP1 (RX), 115200 8N1.
func New() HAL {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})

	return &boardHAL{
		uart: &lockedUART{uart: uart},
		t:    newBoardTime(),
	}
}

func (h *boardHAL) Logger() Logger { return h.uart }

// Display is nil: the console falls back to the UART.
func (h *boardHAL) Display() Display { return nil }
func (h *boardHAL) Time() Time       { return h.t }
func (h *boardHAL) Serial() Serial   { return h.uart }

// lockedUART keeps console writes and log lines from interleaving mid-line.
type lockedUART struct {
	mu   sync.Mutex
	uart *machine.UART
}

func (u *lockedUART) WriteLineString(s string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for i := 0; i < len(s); i++ {
		u.uart.WriteByte(s[i])
	}
	u.uart.WriteByte('\r')
	u.uart.WriteByte('\n')
}

func (u *lockedUART) WriteLineBytes(b []byte) {
	u.WriteLineString(string(b))
}

func (u *lockedUART) Read(p []byte) (int, error) {
	return u.uart.Read(p)
}

func (u *lockedUART) Write(p []byte) (int, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.uart.Write(p)
}

type boardTime struct {
	ch  chan uint64
	seq uint64
}

func newBoardTime() *boardTime {
	t := &boardTime{ch: make(chan uint64, 16)}
	go func() {
		ticker := time.NewTicker(time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			t.seq++
			select {
			case t.ch <- t.seq:
			default:
			}
		}
	}()
	return t
}

func (t *boardTime) Ticks() <-chan uint64 { return t.ch }
