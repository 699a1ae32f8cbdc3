//go:build !tinygo

package hal

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestHostHALWiring(t *testing.T) {
	var log, out bytes.Buffer
	h := newHostHAL(&log, strings.NewReader("k"), &out)

	h.Logger().WriteLineString("rtx: boot")
	h.Logger().WriteLineBytes([]byte("second"))
	if got, want := log.String(), "rtx: boot\nsecond\n"; got != want {
		t.Fatalf("log = %q, want %q", got, want)
	}

	if _, err := h.Serial().Write([]byte("Process C\r\n")); err != nil {
		t.Fatalf("serial Write: %v", err)
	}
	if got := out.String(); got != "Process C\r\n" {
		t.Fatalf("serial out = %q", got)
	}
	buf := make([]byte, 4)
	if n, err := h.Serial().Read(buf); err != nil || n != 1 || buf[0] != 'k' {
		t.Fatalf("serial Read = %d, %v, %q", n, err, buf[:n])
	}

	fb := h.Display().Framebuffer()
	if fb.Width() != 320 || fb.Height() != 240 || fb.Format() != PixelFormatRGB565 {
		t.Fatalf("framebuffer %dx%d format %d", fb.Width(), fb.Height(), fb.Format())
	}
}

func TestHostSerialUnwired(t *testing.T) {
	s := &hostSerial{}
	if _, err := s.Write([]byte("x")); !errors.Is(err, ErrNotImplemented) {
		t.Fatalf("Write err = %v, want %v", err, ErrNotImplemented)
	}
	if _, err := s.Read(make([]byte, 1)); !errors.Is(err, ErrNotImplemented) {
		t.Fatalf("Read err = %v, want %v", err, ErrNotImplemented)
	}
}
