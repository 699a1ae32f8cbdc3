package kernel

import "encoding/binary"

// EnvelopeSize is the size of the hidden header in front of every message.
//
// Layout (little-endian, offsets from the block address):
//   - u32 @0:  next block in the chain the envelope is on (0 = end)
//   - u32 @4:  sender pid
//   - u32 @8:  destination pid
//   - u32 @12: wake tick (delayed sends only)
const EnvelopeSize = 16

const (
	offNext   = 0
	offSender = 4
	offDest   = 8
	offWake   = 12
)

// Message is a handle to the user payload of an allocated memory block. The
// payload starts EnvelopeSize bytes after the block address.
type Message struct {
	addr uint32
}

// Addr returns the payload address.
func (m Message) Addr() uint32 { return m.addr }

// IsNil reports whether m refers to no block.
func (m Message) IsNil() bool { return m.addr == 0 }

// envelope is the address of a block. Free blocks use only the next word.
type envelope uint32

const nilEnvelope envelope = 0

func envelopeOf(m Message) envelope {
	if m.addr < EnvelopeSize {
		return nilEnvelope
	}
	return envelope(m.addr - EnvelopeSize)
}

func (e envelope) message() Message {
	return Message{addr: uint32(e) + EnvelopeSize}
}

type header struct {
	next   envelope
	sender PID
	dest   PID
	wake   uint32
}

// ram is the simulated board memory holding pool blocks and process stacks.
type ram struct {
	base uint32
	b    []byte
}

func newRAM(base, size uint32) *ram {
	return &ram{base: base, b: make([]byte, size)}
}

func (r *ram) slice(addr, n uint32) []byte {
	off := addr - r.base
	return r.b[off : off+n : off+n]
}

func (r *ram) word(addr uint32) uint32 {
	return binary.LittleEndian.Uint32(r.slice(addr, 4))
}

func (r *ram) setWord(addr, v uint32) {
	binary.LittleEndian.PutUint32(r.slice(addr, 4), v)
}

func (r *ram) next(e envelope) envelope {
	return envelope(r.word(uint32(e) + offNext))
}

func (r *ram) setNext(e, next envelope) {
	r.setWord(uint32(e)+offNext, uint32(next))
}

func (r *ram) header(e envelope) header {
	a := uint32(e)
	return header{
		next:   envelope(r.word(a + offNext)),
		sender: PID(r.word(a + offSender)),
		dest:   PID(r.word(a + offDest)),
		wake:   r.word(a + offWake),
	}
}

func (r *ram) setHeader(e envelope, h header) {
	a := uint32(e)
	r.setWord(a+offNext, uint32(h.next))
	r.setWord(a+offSender, uint32(h.sender))
	r.setWord(a+offDest, uint32(h.dest))
	r.setWord(a+offWake, h.wake)
}
