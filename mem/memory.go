// Package mem implements the emulator's linear physical memory: a flat 1 MiB
// byte store addressed like the 8086's 20-bit physical address space, with a
// movable cursor so the CPU can use it both as an instruction stream and as a
// random-access data store.
package mem

// Size is the full 20-bit physical address space of the emulated machine.
const Size = 1 << 20

// A Memory is the central (global) object that backs every read and write
// the Cpu performs. There is exactly one per emulated machine; unlike the
// NES's split CPU/PPU buses, the 8086 has a single unified address space.
type Memory struct {
	bytes  [Size]byte
	cursor uint32 // position in [0, Size)
}

// New returns a zeroed Memory with the cursor at 0.
func New() *Memory {
	return &Memory{}
}

func wrap(addr uint32) uint32 {
	return addr % Size
}

// SeekTo moves the cursor to an absolute address, wrapping at Size.
func (m *Memory) SeekTo(addr uint32) {
	m.cursor = wrap(addr)
}

// SeekBy moves the cursor by a relative (possibly negative) offset.
func (m *Memory) SeekBy(delta int64) {
	pos := int64(m.cursor) + delta
	pos %= int64(Size)
	if pos < 0 {
		pos += int64(Size)
	}
	m.cursor = uint32(pos)
}

// Pos returns the cursor's current absolute position.
func (m *Memory) Pos() uint32 {
	return m.cursor
}

// ReadU8 reads one byte at the cursor and advances it by one.
func (m *Memory) ReadU8() byte {
	b := m.bytes[m.cursor]
	m.cursor = wrap(m.cursor + 1)
	return b
}

// ReadI8 reads one byte at the cursor, sign-extended, and advances it by one.
func (m *Memory) ReadI8() int8 {
	return int8(m.ReadU8())
}

// ReadU16 reads a little-endian word at the cursor and advances it by two.
func (m *Memory) ReadU16() uint16 {
	lo := m.ReadU8()
	hi := m.ReadU8()
	return uint16(lo) | uint16(hi)<<8
}

// ReadI16 reads a little-endian word at the cursor, sign-extended.
func (m *Memory) ReadI16() int16 {
	return int16(m.ReadU16())
}

// WriteU8 writes one byte at the cursor and advances it by one.
func (m *Memory) WriteU8(b byte) {
	m.bytes[m.cursor] = b
	m.cursor = wrap(m.cursor + 1)
}

// WriteU16 writes a little-endian word at the cursor and advances it by two.
func (m *Memory) WriteU16(v uint16) {
	m.WriteU8(byte(v))
	m.WriteU8(byte(v >> 8))
}

// PeekU8 reads the byte at addr without disturbing the cursor.
func (m *Memory) PeekU8(addr uint32) byte {
	return m.bytes[wrap(addr)]
}

// ReadU8At saves the cursor, seeks to addr, reads a byte, and restores the
// cursor. This is the "operand access" pattern used by every instruction
// handler that touches a memory operand mid-decode: the decoder's own
// cursor (the instruction stream pointer) must not be disturbed.
func (m *Memory) ReadU8At(addr uint32) byte {
	saved := m.cursor
	m.SeekTo(addr)
	v := m.ReadU8()
	m.cursor = saved
	return v
}

// ReadU16At is the 16-bit form of ReadU8At.
func (m *Memory) ReadU16At(addr uint32) uint16 {
	saved := m.cursor
	m.SeekTo(addr)
	v := m.ReadU16()
	m.cursor = saved
	return v
}

// WriteU8At is the write counterpart of ReadU8At.
func (m *Memory) WriteU8At(addr uint32, b byte) {
	saved := m.cursor
	m.SeekTo(addr)
	m.WriteU8(b)
	m.cursor = saved
}

// WriteU16At is the 16-bit form of WriteU8At.
func (m *Memory) WriteU16At(addr uint32, v uint16) {
	saved := m.cursor
	m.SeekTo(addr)
	m.WriteU16(v)
	m.cursor = saved
}

// LoadImage copies program into memory starting at addr, truncating if the
// image would run past the end of the address space. It returns the number
// of bytes actually copied.
func (m *Memory) LoadImage(program []byte, addr uint32) int {
	n := copy(m.bytes[wrap(addr):], program)
	return n
}
