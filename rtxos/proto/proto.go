package proto

import (
	"bytes"
	"encoding/binary"
)

// Type is the message type stored at the start of every message payload.
type Type uint32

const (
	TypeDefault Type = 0
	// TypeKCDReg registers a command identifier with the command dispatcher.
	TypeKCDReg      Type = 1
	TypeWakeup10    Type = 10
	TypeCountReport Type = 999
)

func (t Type) String() string {
	switch t {
	case TypeDefault:
		return "default"
	case TypeKCDReg:
		return "kcd_reg"
	case TypeWakeup10:
		return "wakeup10"
	case TypeCountReport:
		return "count_report"
	default:
		return "unknown"
	}
}

// HeaderSize is the size of the type word in front of the message text.
const HeaderSize = 4

// Put encodes a text message into a message payload.
//
// Layout:
//   - u32: Type (little-endian)
//   - bytes: text, NUL-terminated when shorter than the payload
//
// It reports false if text does not fit.
func Put(b []byte, typ Type, text string) bool {
	if len(b) < HeaderSize || len(text) > len(b)-HeaderSize {
		return false
	}
	binary.LittleEndian.PutUint32(b[0:4], uint32(typ))
	n := copy(b[HeaderSize:], text)
	if HeaderSize+n < len(b) {
		b[HeaderSize+n] = 0
	}
	return true
}

// Decode returns the type and text of a payload written by Put. The text
// aliases b.
func Decode(b []byte) (typ Type, text []byte, ok bool) {
	if len(b) < HeaderSize {
		return 0, nil, false
	}
	typ = TypeOf(b)
	text = b[HeaderSize:]
	if i := bytes.IndexByte(text, 0); i >= 0 {
		text = text[:i]
	}
	return typ, text, true
}

// TypeOf returns the type word of a payload, or TypeDefault if b is too short.
func TypeOf(b []byte) Type {
	if len(b) < HeaderSize {
		return TypeDefault
	}
	return Type(binary.LittleEndian.Uint32(b[0:4]))
}

// SetType rewrites the type word in place and keeps the body.
func SetType(b []byte, typ Type) bool {
	if len(b) < HeaderSize {
		return false
	}
	binary.LittleEndian.PutUint32(b[0:4], uint32(typ))
	return true
}

// Registration is the text of a TypeKCDReg message binding the command %<id>.
func Registration(id byte) string {
	return string([]byte{'%', id})
}

// DecodeRegistration returns the command identifier of a registration text.
func DecodeRegistration(text []byte) (id byte, ok bool) {
	if len(text) < 2 || text[0] != '%' {
		return 0, false
	}
	return text[1], true
}

// PutCountReport encodes a TypeCountReport payload.
//
// Layout (little-endian):
//   - u32: TypeCountReport
//   - u32: count
func PutCountReport(b []byte, count uint32) bool {
	if len(b) < HeaderSize+4 {
		return false
	}
	binary.LittleEndian.PutUint32(b[0:4], uint32(TypeCountReport))
	binary.LittleEndian.PutUint32(b[4:8], count)
	return true
}

// DecodeCountReport decodes a PutCountReport payload.
func DecodeCountReport(b []byte) (count uint32, ok bool) {
	if len(b) < HeaderSize+4 || TypeOf(b) != TypeCountReport {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b[4:8]), true
}
