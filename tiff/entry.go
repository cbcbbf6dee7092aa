package tiff

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/fedragon/exif-parser/tiff/entry"
)

// Entry is a decoded IFD entry. Data always holds the bytes as they appear
// in the file (either the inline value slot or the region the slot points
// to), never a re-encoding: accessors interpret those bytes on demand,
// widening across storage widths where the logical value allows it.
type Entry struct {
	ID       entry.ID
	DataType entry.DataType
	Length   uint32 // number of values, not bytes
	Data     []byte
	Group    Group
	Order    binary.ByteOrder
}

func (e Entry) String() string {
	return fmt.Sprintf("ID: 0x%X\nDataType: %s\nLength: %d\n", uint16(e.ID), e.DataType, e.Length)
}

// Bytes returns a copy of the entry's raw bytes. The copy detaches the value
// from the buffer the entry was parsed out of.
func (e Entry) Bytes() []byte {
	out := make([]byte, len(e.Data))
	copy(out, e.Data)
	return out
}

// Uint returns the i-th value as an unsigned 32-bit integer, whatever
// unsigned width it was stored with. Real files routinely store logically
// 32-bit fields (offsets, lengths) as shorts or even raw bytes.
func (e Entry) Uint(i int) (uint32, error) {
	if err := e.check(i); err != nil {
		return 0, err
	}
	switch e.DataType {
	case entry.DataType_UByte, entry.DataType_UByte_Sequence:
		return uint32(e.Data[i]), nil
	case entry.DataType_UShort:
		return uint32(e.Order.Uint16(e.Data[i*2:])), nil
	case entry.DataType_ULong, entry.DataType_Ifd:
		return e.Order.Uint32(e.Data[i*4:]), nil
	}
	return 0, fmt.Errorf("cannot read %s as unsigned integer", e.DataType)
}

// Uints returns all values as unsigned 32-bit integers, coercing as Uint does.
func (e Entry) Uints() ([]uint32, error) {
	out := make([]uint32, 0, e.Length)
	for i := 0; i < int(e.Length); i++ {
		v, err := e.Uint(i)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Int returns the i-th value as a signed 32-bit integer. Unsigned widths up
// to 16 bits coerce losslessly and are accepted too.
func (e Entry) Int(i int) (int32, error) {
	if err := e.check(i); err != nil {
		return 0, err
	}
	switch e.DataType {
	case entry.DataType_Byte:
		return int32(int8(e.Data[i])), nil
	case entry.DataType_Short:
		return int32(int16(e.Order.Uint16(e.Data[i*2:]))), nil
	case entry.DataType_Long:
		return int32(e.Order.Uint32(e.Data[i*4:])), nil
	case entry.DataType_UByte, entry.DataType_UByte_Sequence:
		return int32(e.Data[i]), nil
	case entry.DataType_UShort:
		return int32(e.Order.Uint16(e.Data[i*2:])), nil
	}
	return 0, fmt.Errorf("cannot read %s as signed integer", e.DataType)
}

// Text returns the entry's value as a string, trimmed at the first NUL
// terminator. A missing terminator is tolerated: the full length is used.
// Undefined-typed entries coerce, since vendors store text under that type.
func (e Entry) Text() (string, error) {
	switch e.DataType {
	case entry.DataType_String, entry.DataType_UByte_Sequence, entry.DataType_UByte:
	default:
		return "", fmt.Errorf("cannot read %s as string", e.DataType)
	}
	data := e.Data
	if i := bytes.IndexByte(data, 0x0); i >= 0 {
		data = data[:i]
	}
	return string(data), nil
}

// URational returns the i-th numerator/denominator pair. The pair is
// returned as stored; parsing already flagged zero denominators.
func (e Entry) URational(i int) (uint32, uint32, error) {
	if err := e.check(i); err != nil {
		return 0, 0, err
	}
	if e.DataType != entry.DataType_URational {
		return 0, 0, fmt.Errorf("cannot read %s as unsigned rational", e.DataType)
	}
	num := e.Order.Uint32(e.Data[i*8:])
	den := e.Order.Uint32(e.Data[i*8+4:])
	return num, den, nil
}

// SRational returns the i-th signed numerator/denominator pair.
func (e Entry) SRational(i int) (int32, int32, error) {
	if err := e.check(i); err != nil {
		return 0, 0, err
	}
	if e.DataType != entry.DataType_Rational {
		return 0, 0, fmt.Errorf("cannot read %s as signed rational", e.DataType)
	}
	num := int32(e.Order.Uint32(e.Data[i*8:]))
	den := int32(e.Order.Uint32(e.Data[i*8+4:]))
	return num, den, nil
}

// Float returns the i-th value of a single or double precision entry.
func (e Entry) Float(i int) (float64, error) {
	if err := e.check(i); err != nil {
		return 0, err
	}
	switch e.DataType {
	case entry.DataType_Single_Precision_IEEE_Format:
		return float64(math.Float32frombits(e.Order.Uint32(e.Data[i*4:]))), nil
	case entry.DataType_Double_Precision_IEEE_Format:
		return math.Float64frombits(e.Order.Uint64(e.Data[i*8:])), nil
	}
	return 0, fmt.Errorf("cannot read %s as float", e.DataType)
}

func (e Entry) check(i int) error {
	if e.Order == nil || len(e.Data) == 0 {
		return fmt.Errorf("empty entry")
	}
	if i < 0 || uint32(i) >= e.Length {
		return fmt.Errorf("index %d out of range, entry holds %d values", i, e.Length)
	}
	width := e.DataType.Size()
	if width == 0 {
		width = 1
	}
	if uint32(len(e.Data)) < (uint32(i)+1)*width {
		return fmt.Errorf("entry data truncated: %d bytes for %d values of %s", len(e.Data), e.Length, e.DataType)
	}
	return nil
}
