package primitive

import (
	"testing"
	"unicode/utf16"

	"github.com/mtgatool/mtga-reader-sub000/internal/rawreader"
)

func TestScalarRoundTrip(t *testing.T) {
	f := rawreader.NewFake()
	base := rawreader.LowGuard
	f.Poke(base, []byte{0xff})
	f.PokeU32(base.Add(8), 0xcafef00d)
	f.PokeU64(base.Add(16), 0x1122334455667788)

	d := New(f, 8)
	if got := d.ReadI8(base); got != -1 {
		t.Errorf("ReadI8 = %d, want -1", got)
	}
	if got := d.ReadU32(base.Add(8)); got != 0xcafef00d {
		t.Errorf("ReadU32 = %#x, want 0xcafef00d", got)
	}
	if got := d.ReadU64(base.Add(16)); got != 0x1122334455667788 {
		t.Errorf("ReadU64 = %#x, want 0x1122334455667788", got)
	}
}

func TestReadPtrWidth(t *testing.T) {
	f := rawreader.NewFake()
	f.PokeU64(rawreader.LowGuard, 0x7fff00001000)

	d64 := New(f, 8)
	if got := d64.ReadPtr(rawreader.LowGuard); got != 0x7fff00001000 {
		t.Errorf("8-byte ReadPtr = %#x, want 0x7fff00001000", uint64(got))
	}

	f32 := rawreader.NewFake()
	f32.PokeU32(rawreader.LowGuard, 0x1000)
	d32 := New(f32, 4)
	if got := d32.ReadPtr(rawreader.LowGuard); got != 0x1000 {
		t.Errorf("4-byte ReadPtr = %#x, want 0x1000", uint64(got))
	}
}

func TestReadAsciiStopsAtNUL(t *testing.T) {
	f := rawreader.NewFake()
	base := rawreader.LowGuard
	for i, b := range []byte("hello\x00garbage") {
		f.Poke(base.Add(int64(i)), []byte{b})
	}
	d := New(f, 8)
	s, ok := d.ReadAscii(base)
	if !ok || s != "hello" {
		t.Fatalf("ReadAscii = %q, %v, want \"hello\", true", s, ok)
	}
}

func TestReadAsciiInvalidAddress(t *testing.T) {
	d := New(rawreader.NewFake(), 8)
	if _, ok := d.ReadAscii(0); ok {
		t.Fatal("ReadAscii(0) returned ok=true, want false")
	}
}

func TestReadManagedString(t *testing.T) {
	f := rawreader.NewFake()
	base := rawreader.LowGuard
	const lenOff, charsOff = 0x10, 0x14
	units := utf16.Encode([]rune("héllo"))
	f.PokeU32(base.Add(lenOff), uint32(len(units)))
	for i, u := range units {
		f.PokeU16(base.Add(charsOff+int64(i)*2), u)
	}

	d := New(f, 8)
	s, ok := d.ReadManagedString(base, lenOff, charsOff)
	if !ok || s != "héllo" {
		t.Fatalf("ReadManagedString = %q, %v, want \"héllo\", true", s, ok)
	}
}

func TestReadManagedStringRejectsOversizedLength(t *testing.T) {
	f := rawreader.NewFake()
	base := rawreader.LowGuard
	f.PokeU32(base.Add(0x10), stringCap+1)

	d := New(f, 8)
	if _, ok := d.ReadManagedString(base, 0x10, 0x14); ok {
		t.Fatal("ReadManagedString accepted a length above stringCap")
	}
}

func TestReadManagedStringEmpty(t *testing.T) {
	f := rawreader.NewFake()
	base := rawreader.LowGuard
	f.PokeU32(base.Add(0x10), 0)

	d := New(f, 8)
	s, ok := d.ReadManagedString(base, 0x10, 0x14)
	if !ok || s != "" {
		t.Fatalf("ReadManagedString(empty) = %q, %v, want \"\", true", s, ok)
	}
}
