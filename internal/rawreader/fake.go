package rawreader

import "encoding/binary"

// FakeReader is an in-memory Reader backing unit tests across every layer
// built on top of rawreader: it lets a test lay out bytes at chosen
// addresses without needing a real target process.
type FakeReader struct {
	base
	mem map[Address][]byte
}

// NewFake returns an empty FakeReader. Use Poke to populate it.
func NewFake() *FakeReader {
	return &FakeReader{mem: make(map[Address][]byte)}
}

// Poke stores data so that a later Read starting at addr, or at any
// address inside the poked range, returns it byte-for-byte (reads
// spanning multiple pokes are not supported; lay out each field with its
// own Poke at its own address).
func (f *FakeReader) Poke(addr Address, data []byte) {
	cp := make([]byte, len(data))
	copy(cp, data)
	f.mem[addr] = cp
}

func (f *FakeReader) Read(addr Address, buf []byte) {
	guardedRead(&f.base, addr, buf, func(addr Address, buf []byte) error {
		if data, ok := f.mem[addr]; ok && len(data) >= len(buf) {
			copy(buf, data)
			return nil
		}
		for start, data := range f.mem {
			if start <= addr && uint64(addr-start)+uint64(len(buf)) <= uint64(len(data)) {
				copy(buf, data[addr-start:])
				return nil
			}
		}
		return &LowGuardError{Addr: addr}
	})
}

func (f *FakeReader) Close() error { return nil }

// PokeU32 stores a little-endian uint32 at addr.
func (f *FakeReader) PokeU32(addr Address, v uint32) {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	f.Poke(addr, buf)
}

// PokeU64 stores a little-endian uint64 at addr.
func (f *FakeReader) PokeU64(addr Address, v uint64) {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)
	f.Poke(addr, buf)
}

// PokePtr stores an 8-byte pointer value at addr (every target this
// decoder supports is 64-bit, §3).
func (f *FakeReader) PokePtr(addr Address, v Address) {
	f.PokeU64(addr, uint64(v))
}

// PokeU16 stores a little-endian uint16 at addr.
func (f *FakeReader) PokeU16(addr Address, v uint16) {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, v)
	f.Poke(addr, buf)
}

// PokeString stores ascii/UTF-16-ready raw bytes at addr; a convenience
// for building managed-string or ascii fixtures.
func (f *FakeReader) PokeString(addr Address, s string) {
	f.Poke(addr, []byte(s))
}
