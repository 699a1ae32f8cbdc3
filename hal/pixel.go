package hal

// RGB565 packs an 8-bit-per-channel color into the framebuffer format.
func RGB565(r, g, b uint8) uint16 {
	return uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
}

// PutRGB565 stores p at off in buf, low byte first. Out-of-range offsets are
// ignored.
func PutRGB565(buf []byte, off int, p uint16) {
	if off < 0 || off+1 >= len(buf) {
		return
	}
	buf[off] = byte(p)
	buf[off+1] = byte(p >> 8)
}

// rgb888From565 expands a framebuffer pixel back to full range, so white
// stays 255 on every channel.
func rgb888From565(p uint16) (r, g, b uint8) {
	rr := uint32(p>>11) & 0x1F
	gg := uint32(p>>5) & 0x3F
	bb := uint32(p) & 0x1F
	return uint8(rr * 255 / 31), uint8(gg * 255 / 63), uint8(bb * 255 / 31)
}
