package term

import (
	"errors"
	"image/color"
	"testing"

	"rtx/hal"
)

type testFB struct {
	w, h     int
	buf      []byte
	presents int
}

func newTestFB(w, h int) *testFB {
	return &testFB{w: w, h: h, buf: make([]byte, w*h*2)}
}

func (f *testFB) Width() int              { return f.w }
func (f *testFB) Height() int             { return f.h }
func (f *testFB) Format() hal.PixelFormat { return hal.PixelFormatRGB565 }
func (f *testFB) StrideBytes() int        { return f.w * 2 }
func (f *testFB) Buffer() []byte          { return f.buf }
func (f *testFB) ClearRGB(r, g, b uint8)  {}
func (f *testFB) Present() error          { f.presents++; return nil }

func (f *testFB) pixel(x, y int) uint16 {
	off := (y*f.w + x) * 2
	return uint16(f.buf[off]) | uint16(f.buf[off+1])<<8
}

func TestDisplayAppliesScroll(t *testing.T) {
	fb := newTestFB(4, 4)
	d := newFBDisplay(fb)

	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	d.SetPixel(1, 0, white)
	if err := d.Display(); err != nil {
		t.Fatalf("Display: %v", err)
	}
	if got := fb.pixel(1, 0); got != 0xFFFF {
		t.Fatalf("pixel(1, 0) = %#04x, want 0xffff", got)
	}

	// Back row 0 ends up at the bottom once the top line is row 1.
	d.SetScroll(1)
	if err := d.Display(); err != nil {
		t.Fatalf("Display: %v", err)
	}
	if got := fb.pixel(1, 3); got != 0xFFFF {
		t.Fatalf("pixel(1, 3) after scroll = %#04x, want 0xffff", got)
	}
	if got := fb.pixel(1, 0); got != 0 {
		t.Fatalf("pixel(1, 0) after scroll = %#04x, want 0", got)
	}
	if fb.presents != 2 {
		t.Fatalf("presents = %d, want 2", fb.presents)
	}
}

func TestFillRectangleClips(t *testing.T) {
	fb := newTestFB(4, 4)
	d := newFBDisplay(fb)

	red := color.RGBA{R: 255, A: 255}
	if err := d.FillRectangle(2, 2, 10, 10, red); err != nil {
		t.Fatalf("FillRectangle: %v", err)
	}
	_ = d.Display()

	if got := fb.pixel(3, 3); got != 0xF800 {
		t.Fatalf("pixel(3, 3) = %#04x, want 0xf800", got)
	}
	if got := fb.pixel(1, 1); got != 0 {
		t.Fatalf("pixel(1, 1) = %#04x, want 0", got)
	}
}

func TestSetRotation(t *testing.T) {
	d := newFBDisplay(newTestFB(2, 2))
	if err := d.SetRotation(0); err != nil {
		t.Fatalf("SetRotation(0): %v", err)
	}
	if err := d.SetRotation(1); !errors.Is(err, hal.ErrNotImplemented) {
		t.Fatalf("SetRotation(1) err = %v, want %v", err, hal.ErrNotImplemented)
	}
}

func TestTerminalDrawsText(t *testing.T) {
	fb := newTestFB(160, 80)
	term, err := New(fb)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := term.Write([]byte("Process C\r\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	lit := 0
	for y := 0; y < fontHeight; y++ {
		for x := 0; x < fb.w; x++ {
			if fb.pixel(x, y) != 0 {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Fatalf("no pixels drawn on the first text row")
	}
}

func TestNewRequiresFramebuffer(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrNoFramebuffer) {
		t.Fatalf("New(nil) err = %v, want %v", err, ErrNoFramebuffer)
	}
}
