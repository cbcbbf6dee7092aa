package tiff

import (
	"encoding/binary"
	"fmt"
)

// HeaderSize is the size of a TIFF header: byte-order marker, magic number,
// offset of the first IFD.
const HeaderSize = 8

// Header is a decoded TIFF header. Several vendor-specific formats conform
// to this structure with their own magic numbers (e.g. ORF, RW2).
type Header struct {
	Order       binary.ByteOrder
	MagicNumber uint16
	FirstOffset uint32 // offset of IFD #0, relative to the start of the header
}

// ReadHeader decodes the 8-byte header at the start of buf.
func ReadHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, fmt.Errorf("%w: %d bytes are too few for a header", ErrMalformed, len(buf))
	}

	byteOrder, err := readEndianness(buf[0:2])
	if err != nil {
		return Header{}, err
	}

	magicNumber := byteOrder.Uint16(buf[2:4])
	if err := validateMagicNumber(magicNumber); err != nil {
		return Header{}, err
	}

	offset := byteOrder.Uint32(buf[4:8])
	if offset < HeaderSize {
		return Header{}, fmt.Errorf("%w: first IFD offset %d overlaps the header", ErrMalformed, offset)
	}

	return Header{Order: byteOrder, MagicNumber: magicNumber, FirstOffset: offset}, nil
}

// ByteOrderOf returns the byte order declared by the two-byte marker at
// the start of buf, without validating the rest of the header.
func ByteOrderOf(buf []byte) (binary.ByteOrder, error) {
	if len(buf) < 2 {
		return nil, fmt.Errorf("%w: %d bytes are too few for a byte-order marker", ErrMalformed, len(buf))
	}
	return readEndianness(buf[0:2])
}

// readEndianness reads and returns the endianness of the metadata.
func readEndianness(buffer []byte) (binary.ByteOrder, error) {
	// Note: the value of these 2 bytes is endianness-independent, so I can use any byte order to read them.
	value := binary.LittleEndian.Uint16(buffer)
	switch value {
	case IntelByteOrder:
		return binary.LittleEndian, nil
	case MotorolaByteOrder:
		return binary.BigEndian, nil
	default:
		return nil, fmt.Errorf("unknown endianness: 0x%X", value)
	}
}

// validateMagicNumber validates the header by checking that its magic number
// conforms to one of the expected values.
func validateMagicNumber(magicNumber uint16) error {
	switch magicNumber {
	case MagicNumberBigEndian, MagicNumberLittleEndian,
		OrfMagicNumberBigEndian, OrfMagicNumberLittleEndian, OrfAltMagicNumber,
		Rw2MagicNumber:
		return nil
	}
	return fmt.Errorf("unknown magic number: 0x%X", magicNumber)
}
