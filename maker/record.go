package maker

import (
	"encoding/binary"

	"github.com/fedragon/exif-parser/tiff"
	"github.com/fedragon/exif-parser/tiff/entry"
)

// RecordField names one value inside a fixed-layout binary record. Offset
// is in bytes from the record start; a negative offset counts back from the
// record's end, for fields that vendors anchor to the tail while growing
// the record between firmware revisions.
type RecordField struct {
	Name   string
	Offset int
	Type   entry.DataType
	Count  uint32 // 0 means 1
}

// Record is a fixed-layout decode table: a flat list of named fields at
// known positions, with no entry-count or pointer semantics. Vendors use
// this shape for tags whose value is a packed struct rather than a nested
// directory.
type Record struct {
	Name   string
	Fields []RecordField

	// Transform, when set, is applied to the raw bytes before any field is
	// read. Sony keeps some records behind a substitution cipher.
	Transform func([]byte) []byte
}

// Decode extracts the record's fields from data. Fields that fall outside
// the record are left out rather than reported: records legitimately vary
// in size across camera generations, and a short record is not a defect.
func (r Record) Decode(id entry.ID, data []byte, order binary.ByteOrder) map[string]tiff.Entry {
	out := make(map[string]tiff.Entry, len(r.Fields))
	if r.Transform != nil {
		data = r.Transform(data)
	}

	for _, f := range r.Fields {
		count := f.Count
		if count == 0 {
			count = 1
		}
		size := int(f.Type.Size()) * int(count)

		start := f.Offset
		if start < 0 {
			start = len(data) + f.Offset
		}
		if start < 0 || size <= 0 || start+size > len(data) {
			continue
		}

		out[r.Name+"."+f.Name] = tiff.Entry{
			ID:       id,
			DataType: f.Type,
			Length:   count,
			Data:     data[start : start+size],
			Group:    tiff.GroupMakerNote,
			Order:    order,
		}
	}

	return out
}

// wordField is a shorthand for the common vendor table shape where every
// field is a 16-bit word addressed by index.
func wordField(name string, index int, dataType entry.DataType) RecordField {
	return RecordField{Name: name, Offset: index * 2, Type: dataType}
}
