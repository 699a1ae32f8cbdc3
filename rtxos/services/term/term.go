package term

import (
	"errors"
	"sync"

	"rtx/hal"

	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"
)

var ErrNoFramebuffer = errors.New("term: no RGB565 framebuffer")

const (
	fontHeight = 10
	fontOffset = 7
)

// Terminal is a VT100-style text console drawn on a framebuffer. It is the
// display-side writer for the console service.
type Terminal struct {
	mu sync.Mutex
	d  *fbDisplay
	t  *tinyterm.Terminal
}

// New clears fb and returns a terminal that draws on it.
func New(fb hal.Framebuffer) (*Terminal, error) {
	if fb == nil || fb.Format() != hal.PixelFormatRGB565 || fb.Buffer() == nil {
		return nil, ErrNoFramebuffer
	}

	d := newFBDisplay(fb)
	t := tinyterm.NewTerminal(d)
	t.Configure(&tinyterm.Config{
		Font:       &proggy.TinySZ8pt7b,
		FontHeight: fontHeight,
		FontOffset: fontOffset,
	})
	if err := d.Display(); err != nil {
		return nil, err
	}
	return &Terminal{d: d, t: t}, nil
}

// Write renders p and presents the frame.
func (t *Terminal) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, err := t.t.Write(p)
	if err != nil {
		return n, err
	}
	return n, t.d.Display()
}
