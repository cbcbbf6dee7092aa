package test

import (
	"encoding/binary"
)

type endianness interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// Buffer builds binary fixtures for tests. Values are appended in the
// buffer's byte order, little-endian unless switched.
type Buffer struct {
	byteOrder endianness
	buffer    []byte
}

func NewBuffer() *Buffer {
	return &Buffer{
		byteOrder: binary.LittleEndian,
		buffer:    make([]byte, 0),
	}
}

// BigEndian switches the byte order for the values appended after it.
func (b *Buffer) BigEndian() *Buffer {
	b.byteOrder = binary.BigEndian

	return b
}

func (b *Buffer) WithString(value string) *Buffer {
	b.buffer = append(b.buffer, []byte(value)...)

	return b
}

func (b *Buffer) WithBytes(values ...byte) *Buffer {
	b.buffer = append(b.buffer, values...)

	return b
}

func (b *Buffer) WithUints16(values ...uint16) *Buffer {
	for _, value := range values {
		b.buffer = b.byteOrder.AppendUint16(b.buffer, value)
	}

	return b
}

func (b *Buffer) WithUints32(values ...uint32) *Buffer {
	for _, value := range values {
		b.buffer = b.byteOrder.AppendUint32(b.buffer, value)
	}

	return b
}

// PadTo appends zero bytes until the buffer is length bytes long, so that
// the next value lands at a known offset. It does nothing when the buffer
// is already there.
func (b *Buffer) PadTo(length int) *Buffer {
	for len(b.buffer) < length {
		b.buffer = append(b.buffer, 0)
	}

	return b
}

// Len returns the current buffer length, useful to record an offset while
// building a fixture.
func (b *Buffer) Len() int {
	return len(b.buffer)
}

func (b *Buffer) Bytes() []byte {
	return b.buffer
}
