package maker

import (
	"github.com/fedragon/exif-parser/tiff"
	"github.com/fedragon/exif-parser/tiff/entry"
)

// DefaultRegistry lists the supported vendor families. Order matters for
// make strings naming two vendors: "PENTAX RICOH IMAGING" must select the
// Pentax rules.
//
// A zero-value Signature is the common bare shape: no label, directory at
// the region start, outer base and byte order.
var DefaultRegistry = []Variant{
	{
		Name:  "Apple",
		Match: []string{"apple"},
		Signatures: []Signature{
			{Prefix: []byte("Apple iOS\x00"), DirOffset: 14, Base: BaseRegion, Order: OrderMarker, MarkerAt: 12},
			{},
		},
	},
	{
		Name:        "Canon",
		Match:       []string{"canon"},
		Signatures:  []Signature{{}},
		Records:     canonRecords,
		TrimTrailer: true,
	},
	{
		Name:  "Nikon",
		Match: []string{"nikon"},
		Signatures: []Signature{
			// Early models: 8-byte label, then a directory with outer
			// offsets. Everything later: 10-byte label followed by a full
			// embedded TIFF block. Oldest Coolpix models wrote no label at
			// all, with a byte order that may differ from the outer one.
			{Prefix: []byte("Nikon\x00\x01\x00"), DirOffset: 8, Base: BaseOuter, Order: OrderOuter},
			{Prefix: []byte("Nikon\x00"), DirOffset: 10, Base: BaseEmbedded, Order: OrderEmbedded},
			{Order: OrderDetect},
		},
		SubIFDs: map[entry.ID]tiff.Group{
			0x0011: tiff.GroupMakerNote, // preview
			0x0e10: tiff.GroupMakerNote, // scanner settings
		},
	},
	{
		Name:  "Sony",
		Match: []string{"sony"},
		Signatures: []Signature{
			{Prefix: []byte("SONY CAM \x00\x00\x00"), DirOffset: 12, Base: BaseOuter, Order: OrderDetect, SkipNext: true},
			{Prefix: []byte("SONY DSC \x00\x00\x00"), DirOffset: 12, Base: BaseOuter, Order: OrderDetect, SkipNext: true},
			{Prefix: []byte("\x00\x00SONY PIC\x00\x00"), DirOffset: 12, Base: BaseOuter, Order: OrderDetect, SkipNext: true},
			{Prefix: []byte("SONY MOBILE\x00"), DirOffset: 12, Base: BaseOuter, Order: OrderDetect, SkipNext: true},
			// Olympus-style notes in some rebranded compacts.
			{Prefix: []byte("SONY PI\x00"), DirOffset: 12, Base: BaseOuter, Order: OrderDetect},
		},
		Records:    map[entry.ID]Record{0x2010: sonyTag2010},
		Enciphered: SonyEnciphered,
		Decipher:   DecipherSony,
	},
	{
		Name:  "Fujifilm",
		Match: []string{"fujifilm", "fuji"},
		Signatures: []Signature{
			// The label is followed by the second half of a TIFF header: a
			// 32-bit directory position, always little-endian, relative to
			// the region even when the outer block is big-endian.
			{Prefix: []byte("FUJIFILM"), DirOffsetAt: 8, Base: BaseRegion, Order: OrderLittle},
		},
	},
	{
		Name:  "Olympus",
		Match: []string{"olympus"},
		Signatures: []Signature{
			{Prefix: []byte("OLYMPUS\x00II"), DirOffset: 12, Base: BaseRegion, Order: OrderDetect},
			{Prefix: []byte("OLYMP\x00"), DirOffset: 8, Base: BaseOuter, Order: OrderDetect},
		},
		SubIFDs: map[entry.ID]tiff.Group{
			0x2010: tiff.GroupMakerNote, // equipment
			0x2020: tiff.GroupMakerNote, // camera settings
			0x2030: tiff.GroupMakerNote, // raw development
			0x2031: tiff.GroupMakerNote, // raw development 2
			0x2040: tiff.GroupMakerNote, // image processing
			0x2050: tiff.GroupMakerNote, // focus info, an opaque array in some models
		},
	},
	{
		Name:  "Panasonic",
		Match: []string{"panasonic"},
		Signatures: []Signature{
			{Prefix: []byte("Panasonic\x00\x00\x00"), DirOffset: 12, Base: BaseOuter, Order: OrderOuter, SkipNext: true},
		},
	},
	{
		Name:  "Pentax",
		Match: []string{"pentax", "asahi"},
		Signatures: []Signature{
			{Prefix: []byte("PENTAX \x00"), DirOffset: 10, Base: BaseRegion, Order: OrderMarker, MarkerAt: 8},
			{Prefix: []byte("AOC\x00"), DirOffset: 4, Base: BaseOuter, Order: OrderOuter},
			{},
		},
	},
	{
		Name:  "Ricoh",
		Match: []string{"ricoh"},
		Signatures: []Signature{
			{Prefix: []byte("Ricoh\x00\x00\x00"), DirOffset: 8, Base: BaseOuter, Order: OrderOuter},
			{Prefix: []byte("RICOH\x00\x00\x00"), DirOffset: 8, Base: BaseOuter, Order: OrderOuter},
			{},
		},
	},
	{
		Name:  "Leica",
		Match: []string{"leica"},
		Signatures: []Signature{
			{Prefix: []byte("LEIC"), DirOffset: 4, Base: BaseOuter, Order: OrderOuter},
			{Prefix: []byte("Leica"), DirOffset: 8, Base: BaseOuter, Order: OrderOuter},
			{},
		},
	},
	{
		Name:  "Samsung",
		Match: []string{"samsung"},
		Signatures: []Signature{
			{Prefix: []byte("STMN"), RecordName: "Type1", Layout: []RecordField{
				{Name: "MakerNoteVersion", Offset: 0, Type: entry.DataType_UByte_Sequence, Count: 8},
				{Name: "DeviceType", Offset: 8, Type: entry.DataType_ULong},
				{Name: "SamsungModelID", Offset: 12, Type: entry.DataType_ULong},
			}},
			{},
		},
	},
	{
		Name:  "Sigma",
		Match: []string{"sigma", "foveon"},
		Signatures: []Signature{
			{Prefix: []byte("SIGMA\x00\x00\x00\x00"), DirOffset: 10, Base: BaseOuter, Order: OrderOuter},
			{Prefix: []byte("FOVEON\x00\x00\x00"), DirOffset: 10, Base: BaseOuter, Order: OrderOuter},
			{},
		},
	},
	{
		Name:  "Hasselblad",
		Match: []string{"hasselblad"},
		Signatures: []Signature{
			// Hasselblad-branded Sony bodies write a Sony-style note.
			{Prefix: []byte("VHAB     \x00\x00\x00"), DirOffset: 12, Base: BaseOuter, Order: OrderDetect, SkipNext: true},
			{},
		},
	},
	{
		Name:  "Minolta",
		Match: []string{"minolta"},
		Signatures: []Signature{
			{Prefix: []byte("MINOL\x00"), DirOffset: 8, Base: BaseOuter, Order: OrderDetect},
			{},
		},
	},
	{
		// GoPro regions hold a GPMF stream, which is neither a directory
		// nor a fixed-layout record; the region stays opaque.
		Name:  "GoPro",
		Match: []string{"gopro"},
	},
	{
		Name:       "DJI",
		Match:      []string{"dji"},
		Signatures: []Signature{{}},
	},
}
