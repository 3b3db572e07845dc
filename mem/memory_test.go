package mem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCursorRoundTripI8(t *testing.T) {
	m := New()
	m.WriteU8(byte(int8(-5)))
	m.SeekTo(0)
	assert.Equal(t, int8(-5), m.ReadI8())
}

func TestCursorRoundTripI16(t *testing.T) {
	m := New()
	m.WriteU16(uint16(int16(-300)))
	m.SeekBy(-2)
	assert.Equal(t, int16(-300), m.ReadI16())
}

func TestSeekByWrapsNegative(t *testing.T) {
	m := New()
	m.SeekTo(0)
	m.SeekBy(-1)
	assert.Equal(t, uint32(Size-1), m.Pos())
}

func TestSeekToWrapsAtSize(t *testing.T) {
	m := New()
	m.SeekTo(Size + 5)
	assert.Equal(t, uint32(5), m.Pos())
}

func TestReadWriteAtPreservesCursor(t *testing.T) {
	m := New()
	m.SeekTo(10)
	m.WriteU16At(0x1234, 0xbeef)
	assert.Equal(t, uint32(10), m.Pos())
	assert.Equal(t, uint16(0xbeef), m.ReadU16At(0x1234))
	assert.Equal(t, uint32(10), m.Pos())
}

func TestLoadImageTruncatesAtEndOfAddressSpace(t *testing.T) {
	m := New()
	program := make([]byte, 16)
	for i := range program {
		program[i] = byte(i)
	}
	n := m.LoadImage(program, Size-8)
	assert.Equal(t, 8, n)
	assert.Equal(t, byte(0), m.PeekU8(Size-8))
	assert.Equal(t, byte(7), m.PeekU8(Size-1))
}

func TestLittleEndian(t *testing.T) {
	m := New()
	m.WriteU16(0x1234)
	assert.Equal(t, byte(0x34), m.PeekU8(0))
	assert.Equal(t, byte(0x12), m.PeekU8(1))
}
