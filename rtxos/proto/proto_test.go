package proto

import "testing"

func TestPutDecode(t *testing.T) {
	b := make([]byte, 16)
	for i := range b {
		b[i] = 0xff
	}

	if ok := Put(b, TypeDefault, "hello"); !ok {
		t.Fatalf("Put() ok = false, want true")
	}
	typ, text, ok := Decode(b)
	if !ok || typ != TypeDefault || string(text) != "hello" {
		t.Fatalf("Decode() = %v, %q, %v, want default, hello, true", typ, text, ok)
	}
}

func TestPutExactFitHasNoTerminator(t *testing.T) {
	b := make([]byte, HeaderSize+3)
	if ok := Put(b, TypeKCDReg, "abc"); !ok {
		t.Fatalf("Put() ok = false, want true")
	}
	if _, text, _ := Decode(b); string(text) != "abc" {
		t.Fatalf("Decode() text = %q, want %q", text, "abc")
	}
	if ok := Put(b, TypeKCDReg, "abcd"); ok {
		t.Fatalf("Put() oversize ok = true, want false")
	}
}

func TestRegistration(t *testing.T) {
	b := make([]byte, 12)
	Put(b, TypeKCDReg, Registration('Z'))

	typ, text, _ := Decode(b)
	if typ != TypeKCDReg {
		t.Fatalf("type = %v, want %v", typ, TypeKCDReg)
	}
	id, ok := DecodeRegistration(text)
	if !ok || id != 'Z' {
		t.Fatalf("DecodeRegistration() = %q, %v, want 'Z', true", id, ok)
	}
	if _, ok := DecodeRegistration([]byte("Z")); ok {
		t.Fatalf("DecodeRegistration(Z) ok = true, want false")
	}
}

func TestCountReport(t *testing.T) {
	b := make([]byte, 8)
	PutCountReport(b, 40)
	n, ok := DecodeCountReport(b)
	if !ok || n != 40 {
		t.Fatalf("DecodeCountReport() = %d, %v, want 40, true", n, ok)
	}

	SetType(b, TypeWakeup10)
	if _, ok := DecodeCountReport(b); ok {
		t.Fatalf("DecodeCountReport() after SetType ok = true, want false")
	}
	if got := TypeOf(b).String(); got != "wakeup10" {
		t.Fatalf("TypeOf().String() = %q, want wakeup10", got)
	}
}
