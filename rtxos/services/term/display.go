package term

import (
	"image/color"

	"rtx/hal"

	"tinygo.org/x/drivers"
)

// fbDisplay is a drivers.Displayer over a hal framebuffer with an emulated
// vertical scroll register: drawing goes to a back buffer, and Display copies
// it out starting at the scroll line, the way the panel controller would.
type fbDisplay struct {
	fb     hal.Framebuffer
	w, h   int
	back   []byte
	scroll int
}

func newFBDisplay(fb hal.Framebuffer) *fbDisplay {
	w, h := fb.Width(), fb.Height()
	return &fbDisplay{fb: fb, w: w, h: h, back: make([]byte, w*h*2)}
}

func (d *fbDisplay) Size() (x, y int16) {
	return int16(d.w), int16(d.h)
}

func (d *fbDisplay) SetPixel(x, y int16, c color.RGBA) {
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= d.w || iy < 0 || iy >= d.h {
		return
	}
	hal.PutRGB565(d.back, (iy*d.w+ix)*2, hal.RGB565(c.R, c.G, c.B))
}

func (d *fbDisplay) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	x0 := clampInt(int(x), 0, d.w)
	y0 := clampInt(int(y), 0, d.h)
	x1 := clampInt(int(x)+int(width), 0, d.w)
	y1 := clampInt(int(y)+int(height), 0, d.h)
	if x0 >= x1 || y0 >= y1 {
		return nil
	}

	pixel := hal.RGB565(c.R, c.G, c.B)
	lo := byte(pixel)
	hi := byte(pixel >> 8)
	for py := y0; py < y1; py++ {
		row := py * d.w * 2
		for px := x0; px < x1; px++ {
			d.back[row+px*2] = lo
			d.back[row+px*2+1] = hi
		}
	}
	return nil
}

// Display copies the back buffer to the framebuffer, rotated by the scroll
// line, and presents it.
func (d *fbDisplay) Display() error {
	buf := d.fb.Buffer()
	if buf == nil {
		return hal.ErrNotImplemented
	}
	stride := d.fb.StrideBytes()
	rowBytes := d.w * 2
	if rowBytes > stride {
		rowBytes = stride
	}
	for y := 0; y < d.h; y++ {
		src := ((y + d.scroll) % d.h) * d.w * 2
		dst := y * stride
		if dst+rowBytes > len(buf) {
			break
		}
		copy(buf[dst:dst+rowBytes], d.back[src:src+rowBytes])
	}
	return d.fb.Present()
}

func (d *fbDisplay) SetScroll(line int16) {
	if d.h == 0 {
		return
	}
	d.scroll = ((int(line) % d.h) + d.h) % d.h
}

func (d *fbDisplay) SetRotation(rotation drivers.Rotation) error {
	if rotation != drivers.Rotation0 {
		return hal.ErrNotImplemented
	}
	return nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
