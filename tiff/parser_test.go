package tiff

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fedragon/exif-parser/test"
	"github.com/fedragon/exif-parser/tiff/entry"
)

func TestParseDirectory_InlineAndOffsetValues(t *testing.T) {
	// Three entries around the inline boundary: 4 bytes fit the value slot,
	// 5 bytes turn the slot into a pointer.
	buf := test.NewBuffer().
		WithString("II").WithUints16(0x002A).WithUints32(8).
		WithUints16(3).
		WithUints16(uint16(entry.ImageWidth), uint16(entry.DataType_UShort)).WithUints32(2).WithUints16(640, 480).
		WithUints16(uint16(entry.Make), uint16(entry.DataType_String)).WithUints32(5).WithUints32(50).
		WithUints16(uint16(entry.Software), uint16(entry.DataType_String)).WithUints32(4).WithString("Acm\x00").
		WithUints32(0).
		WithString("Acme\x00").
		Bytes()

	p, err := NewParser(buf)
	assert.NoError(t, err)

	dir, err := p.ParseDirectory(p.FirstOffset(), GroupIfd0)
	assert.NoError(t, err)
	assert.Len(t, dir.Entries, 3)

	width, ok := dir.Find(entry.ImageWidth)
	assert.True(t, ok)
	first, err := width.Uint(0)
	assert.NoError(t, err)
	assert.EqualValues(t, 640, first)
	second, err := width.Uint(1)
	assert.NoError(t, err)
	assert.EqualValues(t, 480, second)

	make_, ok := dir.Find(entry.Make)
	assert.True(t, ok)
	assert.Equal(t, GroupIfd0, make_.Group)
	text, err := make_.Text()
	assert.NoError(t, err)
	assert.Equal(t, "Acme", text)

	software, ok := dir.Find(entry.Software)
	assert.True(t, ok)
	text, err = software.Text()
	assert.NoError(t, err)
	assert.Equal(t, "Acm", text)
}

func TestParseDirectory_ByteOrderInvariance(t *testing.T) {
	build := func(big bool) []byte {
		b := test.NewBuffer()
		if big {
			b.BigEndian().WithString("MM")
		} else {
			b.WithString("II")
		}
		return b.
			WithUints16(0x002A).WithUints32(8).
			WithUints16(2).
			WithUints16(uint16(entry.ImageWidth), uint16(entry.DataType_ULong)).WithUints32(1).WithUints32(800).
			WithUints16(uint16(entry.ExposureTime), uint16(entry.DataType_URational)).WithUints32(1).WithUints32(38).
			WithUints32(0).
			WithUints32(1, 250).
			Bytes()
	}

	for _, tc := range []struct {
		name string
		big  bool
	}{
		{name: "LittleEndian", big: false},
		{name: "BigEndian", big: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewParser(build(tc.big))
			assert.NoError(t, err)

			dir, err := p.ParseDirectory(p.FirstOffset(), GroupIfd0)
			assert.NoError(t, err)

			width, ok := dir.Find(entry.ImageWidth)
			assert.True(t, ok)
			v, err := width.Uint(0)
			assert.NoError(t, err)
			assert.EqualValues(t, 800, v)

			exposure, ok := dir.Find(entry.ExposureTime)
			assert.True(t, ok)
			num, den, err := exposure.URational(0)
			assert.NoError(t, err)
			assert.EqualValues(t, 1, num)
			assert.EqualValues(t, 250, den)
		})
	}
}

func TestParseDirectory_SelfReferentialPointer(t *testing.T) {
	// The Exif pointer refers back to the directory that holds it. The
	// visited set must end the recursion with a warning, not a stack
	// overflow.
	buf := test.NewBuffer().
		WithString("II").WithUints16(0x002A).WithUints32(8).
		WithUints16(1).
		WithUints16(uint16(entry.Exif), uint16(entry.DataType_ULong)).WithUints32(1).WithUints32(8).
		WithUints32(0).
		Bytes()

	p, err := NewParser(buf)
	assert.NoError(t, err)

	dir, err := p.ParseDirectory(p.FirstOffset(), GroupIfd0)
	assert.True(t, errors.Is(err, ErrCycleDetected))
	assert.Len(t, dir.Entries, 1)
	assert.Len(t, dir.SubIFDs, 1)
	assert.Empty(t, dir.SubIFDs[0].Entries)
}

func TestParseDirectory_ChainCycleAcrossCalls(t *testing.T) {
	// A directory whose next pointer loops back to itself: the first parse
	// succeeds, following the pointer with the same parser trips the guard.
	buf := test.NewBuffer().
		WithString("II").WithUints16(0x002A).WithUints32(8).
		WithUints16(1).
		WithUints16(uint16(entry.ImageWidth), uint16(entry.DataType_UShort)).WithUints32(1).WithUints16(640, 0).
		WithUints32(8).
		Bytes()

	p, err := NewParser(buf)
	assert.NoError(t, err)

	dir, err := p.ParseDirectory(p.FirstOffset(), GroupIfd0)
	assert.NoError(t, err)
	assert.EqualValues(t, 8, dir.NextOffset)

	again, err := p.ParseDirectory(dir.NextOffset, GroupIfd1)
	assert.True(t, errors.Is(err, ErrCycleDetected))
	assert.Empty(t, again.Entries)
	assert.Zero(t, again.NextOffset)
}

func TestParseDirectory_TruncatedBuffer(t *testing.T) {
	full := test.NewBuffer().
		WithString("II").WithUints16(0x002A).WithUints32(8).
		WithUints16(2).
		WithUints16(uint16(entry.ImageWidth), uint16(entry.DataType_UShort)).WithUints32(1).WithUints16(640, 0).
		WithUints16(uint16(entry.Make), uint16(entry.DataType_String)).WithUints32(5).WithUints32(60).
		WithUints32(0).
		Bytes()

	// Cut mid-way through the second entry row.
	p, err := NewParser(full[:28])
	assert.NoError(t, err)

	dir, err := p.ParseDirectory(p.FirstOffset(), GroupIfd0)
	assert.True(t, errors.Is(err, ErrMalformed))
	assert.Len(t, dir.Entries, 1)
	assert.Zero(t, dir.NextOffset)

	width, ok := dir.Find(entry.ImageWidth)
	assert.True(t, ok)
	v, err := width.Uint(0)
	assert.NoError(t, err)
	assert.EqualValues(t, 640, v)
}

func TestParseDirectory_ImplausibleEntryCount(t *testing.T) {
	buf := test.NewBuffer().
		WithString("II").WithUints16(0x002A).WithUints32(8).
		WithUints16(0xFFFF).
		WithUints16(uint16(entry.ImageWidth), uint16(entry.DataType_UShort)).WithUints32(1).WithUints16(640, 0).
		Bytes()

	p, err := NewParser(buf)
	assert.NoError(t, err)

	dir, err := p.ParseDirectory(p.FirstOffset(), GroupIfd0)
	assert.True(t, errors.Is(err, ErrMalformed))
	assert.Len(t, dir.Entries, 1)
	assert.Zero(t, dir.NextOffset)
}

func TestParseDirectory_NextPointerSentinels(t *testing.T) {
	build := func(next uint32) []byte {
		return test.NewBuffer().
			WithString("II").WithUints16(0x002A).WithUints32(8).
			WithUints16(0).
			WithUints32(next).
			Bytes()
	}

	testCases := []struct {
		name string
		next uint32
		warn bool
	}{
		{name: "Zero", next: 0, warn: false},
		{name: "AllOnes", next: 0xFFFFFFFF, warn: false},
		{name: "BeyondBuffer", next: 0x5000, warn: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewParser(build(tc.next))
			assert.NoError(t, err)

			dir, err := p.ParseDirectory(p.FirstOffset(), GroupIfd0)
			if tc.warn {
				assert.True(t, errors.Is(err, ErrMalformed))
			} else {
				assert.NoError(t, err)
			}
			assert.Zero(t, dir.NextOffset)
		})
	}
}

func TestParseDirectory_ZeroDenominatorRational(t *testing.T) {
	buf := test.NewBuffer().
		WithString("II").WithUints16(0x002A).WithUints32(8).
		WithUints16(1).
		WithUints16(uint16(entry.ExposureTime), uint16(entry.DataType_URational)).WithUints32(1).WithUints32(26).
		WithUints32(0).
		WithUints32(1, 0).
		Bytes()

	p, err := NewParser(buf)
	assert.NoError(t, err)

	dir, err := p.ParseDirectory(p.FirstOffset(), GroupIfd0)
	assert.True(t, errors.Is(err, ErrMalformed))

	// The entry is kept: the defect is flagged, the value stays readable.
	exposure, ok := dir.Find(entry.ExposureTime)
	assert.True(t, ok)
	num, den, err := exposure.URational(0)
	assert.NoError(t, err)
	assert.EqualValues(t, 1, num)
	assert.EqualValues(t, 0, den)
}

func TestParseDirectory_InvalidTypeCode(t *testing.T) {
	// Orientation with a bogus type code falls back to the table's declared
	// type; an unknown tag with a bogus code falls back to raw bytes.
	buf := test.NewBuffer().
		WithString("II").WithUints16(0x002A).WithUints32(8).
		WithUints16(2).
		WithUints16(uint16(entry.Orientation), 200).WithUints32(1).WithUints16(6, 0).
		WithUints16(0x9999, 200).WithUints32(2).WithBytes(0xAB, 0xCD, 0, 0).
		WithUints32(0).
		Bytes()

	p, err := NewParser(buf)
	assert.NoError(t, err)

	dir, err := p.ParseDirectory(p.FirstOffset(), GroupIfd0)
	assert.NoError(t, err)

	orientation, ok := dir.Find(entry.Orientation)
	assert.True(t, ok)
	assert.Equal(t, entry.DataType_UShort, orientation.DataType)
	v, err := orientation.Uint(0)
	assert.NoError(t, err)
	assert.EqualValues(t, 6, v)

	unknown, ok := dir.Find(0x9999)
	assert.True(t, ok)
	assert.Equal(t, entry.DataType_UByte_Sequence, unknown.DataType)
	assert.Equal(t, []byte{0xAB, 0xCD}, unknown.Data)
}

func TestParseDirectory_OutOfBoundsValueOffset(t *testing.T) {
	buf := test.NewBuffer().
		WithString("II").WithUints16(0x002A).WithUints32(8).
		WithUints16(2).
		WithUints16(uint16(entry.ImageWidth), uint16(entry.DataType_UShort)).WithUints32(1).WithUints16(640, 0).
		WithUints16(uint16(entry.StripOffsets), uint16(entry.DataType_ULong)).WithUints32(100).WithUints32(0x4000).
		WithUints32(0).
		Bytes()

	p, err := NewParser(buf)
	assert.NoError(t, err)

	dir, err := p.ParseDirectory(p.FirstOffset(), GroupIfd0)
	assert.True(t, errors.Is(err, ErrMalformed))

	// The defective entry is skipped, the healthy one survives.
	assert.Len(t, dir.Entries, 1)
	_, ok := dir.Find(entry.StripOffsets)
	assert.False(t, ok)
	_, ok = dir.Find(entry.ImageWidth)
	assert.True(t, ok)
}

func TestParseDirectory_SubIFDNamespaces(t *testing.T) {
	buf := test.NewBuffer().
		WithString("II").WithUints16(0x002A).WithUints32(8).
		WithUints16(2).
		WithUints16(uint16(entry.Exif), uint16(entry.DataType_ULong)).WithUints32(1).WithUints32(38).
		WithUints16(uint16(entry.GPSInfo), uint16(entry.DataType_ULong)).WithUints32(1).WithUints32(56).
		WithUints32(0).
		// Exif IFD at 38
		WithUints16(1).
		WithUints16(uint16(entry.ISO), uint16(entry.DataType_UShort)).WithUints32(1).WithUints16(200, 0).
		WithUints32(0).
		// GPS IFD at 56
		WithUints16(1).
		WithUints16(uint16(entry.GPSLatitudeRef), uint16(entry.DataType_String)).WithUints32(2).WithString("N\x00\x00\x00").
		WithUints32(0).
		Bytes()

	p, err := NewParser(buf)
	assert.NoError(t, err)

	dir, err := p.ParseDirectory(p.FirstOffset(), GroupIfd0)
	assert.NoError(t, err)
	assert.Len(t, dir.Entries, 2)
	assert.Len(t, dir.SubIFDs, 2)

	exifDir := dir.SubIFDs[0]
	assert.Equal(t, GroupExif, exifDir.Group)
	iso, ok := exifDir.Find(entry.ISO)
	assert.True(t, ok)
	assert.Equal(t, GroupExif, iso.Group)
	v, err := iso.Uint(0)
	assert.NoError(t, err)
	assert.EqualValues(t, 200, v)

	gpsDir := dir.SubIFDs[1]
	assert.Equal(t, GroupGPSInfo, gpsDir.Group)
	ref, ok := gpsDir.Find(entry.GPSLatitudeRef)
	assert.True(t, ok)
	assert.Equal(t, GroupGPSInfo, ref.Group)
	text, err := ref.Text()
	assert.NoError(t, err)
	assert.Equal(t, "N", text)

	// The pointer tags themselves are collected as plain longs.
	pointer, ok := dir.Find(entry.Exif)
	assert.True(t, ok)
	assert.Equal(t, entry.DataType_ULong, pointer.DataType)
	target, err := pointer.Uint(0)
	assert.NoError(t, err)
	assert.EqualValues(t, 38, target)
}

func TestParseDirectory_SubImageDirectories(t *testing.T) {
	// The sub-image tag holds an array of directory offsets, not a single
	// pointer: both directories must be reached, under their own namespace.
	buf := test.NewBuffer().
		WithString("II").WithUints16(0x002A).WithUints32(8).
		WithUints16(1).
		WithUints16(uint16(entry.SubIFDs), uint16(entry.DataType_ULong)).WithUints32(2).WithUints32(26).
		WithUints32(0).
		// offset array at 26
		WithUints32(34, 52).
		// sub-image IFD at 34
		WithUints16(1).
		WithUints16(uint16(entry.ImageWidth), uint16(entry.DataType_UShort)).WithUints32(1).WithUints16(640, 0).
		WithUints32(0).
		// sub-image IFD at 52
		WithUints16(1).
		WithUints16(uint16(entry.ImageWidth), uint16(entry.DataType_UShort)).WithUints32(1).WithUints16(320, 0).
		WithUints32(0).
		Bytes()

	p, err := NewParser(buf)
	assert.NoError(t, err)

	dir, err := p.ParseDirectory(p.FirstOffset(), GroupIfd0)
	assert.NoError(t, err)
	assert.Len(t, dir.SubIFDs, 2)

	widths := make([]uint32, 0, 2)
	for _, sub := range dir.SubIFDs {
		assert.Equal(t, GroupSubImage, sub.Group)
		width, ok := sub.Find(entry.ImageWidth)
		assert.True(t, ok)
		v, err := width.Uint(0)
		assert.NoError(t, err)
		widths = append(widths, v)
	}
	assert.Equal(t, []uint32{640, 320}, widths)
}

func TestParseDirectory_DepthLimit(t *testing.T) {
	buf := test.NewBuffer().
		WithString("II").WithUints16(0x002A).WithUints32(8).
		WithUints16(1).
		WithUints16(uint16(entry.Exif), uint16(entry.DataType_ULong)).WithUints32(1).WithUints32(26).
		WithUints32(0).
		WithUints16(0).
		WithUints32(0).
		Bytes()

	p, err := NewParser(buf)
	assert.NoError(t, err)
	p.WithMaxDepth(1)

	dir, err := p.ParseDirectory(p.FirstOffset(), GroupIfd0)
	assert.True(t, errors.Is(err, ErrDepthExceeded))
	assert.Empty(t, dir.SubIFDs)

	// The pointer entry itself is still collected.
	_, ok := dir.Find(entry.Exif)
	assert.True(t, ok)
}

func TestParseDirectory_MakerNotePosition(t *testing.T) {
	buf := test.NewBuffer().
		WithString("II").WithUints16(0x002A).WithUints32(8).
		WithUints16(1).
		WithUints16(uint16(entry.Exif), uint16(entry.DataType_ULong)).WithUints32(1).WithUints32(26).
		WithUints32(0).
		// Exif IFD at 26
		WithUints16(1).
		WithUints16(uint16(entry.MakerNote), uint16(entry.DataType_UByte_Sequence)).WithUints32(8).WithUints32(44).
		WithUints32(0).
		// maker note region at 44
		WithString("VENDOR\x00\x00").
		Bytes()

	p, err := NewParser(buf)
	assert.NoError(t, err)

	dir, err := p.ParseDirectory(p.FirstOffset(), GroupIfd0)
	assert.NoError(t, err)
	assert.EqualValues(t, -1, dir.MakerNotePos)
	assert.Len(t, dir.SubIFDs, 1)

	exifDir := dir.SubIFDs[0]
	assert.EqualValues(t, 44, exifDir.MakerNotePos)

	note, ok := exifDir.Find(entry.MakerNote)
	assert.True(t, ok)
	assert.Equal(t, []byte("VENDOR\x00\x00"), note.Data)
}

func TestParseDirectory_Filter(t *testing.T) {
	buf := test.NewBuffer().
		WithString("II").WithUints16(0x002A).WithUints32(8).
		WithUints16(2).
		WithUints16(uint16(entry.Make), uint16(entry.DataType_String)).WithUints32(4).WithString("Ac\x00\x00").
		WithUints16(uint16(entry.Exif), uint16(entry.DataType_ULong)).WithUints32(1).WithUints32(38).
		WithUints32(0).
		// Exif IFD at 38
		WithUints16(1).
		WithUints16(uint16(entry.ISO), uint16(entry.DataType_UShort)).WithUints32(1).WithUints16(200, 0).
		WithUints32(0).
		Bytes()

	t.Run("StopsAfterHighestWanted", func(t *testing.T) {
		p, err := NewParser(buf)
		assert.NoError(t, err)
		p.WithFilter(entry.Make)

		dir, err := p.ParseDirectory(p.FirstOffset(), GroupIfd0)
		assert.NoError(t, err)
		assert.Len(t, dir.Entries, 1)
		assert.Empty(t, dir.SubIFDs)
	})

	t.Run("FollowsPointersToWanted", func(t *testing.T) {
		p, err := NewParser(buf)
		assert.NoError(t, err)
		p.WithFilter(entry.ISO)

		dir, err := p.ParseDirectory(p.FirstOffset(), GroupIfd0)
		assert.NoError(t, err)

		_, ok := dir.Find(entry.Make)
		assert.False(t, ok)
		assert.Len(t, dir.SubIFDs, 1)
		iso, ok := dir.SubIFDs[0].Find(entry.ISO)
		assert.True(t, ok)
		v, err := iso.Uint(0)
		assert.NoError(t, err)
		assert.EqualValues(t, 200, v)
	})
}

func TestParserAt_WrappedHeader(t *testing.T) {
	// The same directory bytes resolve against the header position, not the
	// buffer start, when the block is embedded mid-buffer.
	buf := test.NewBuffer().
		WithString("outer container ").
		WithString("II").WithUints16(0x002A).WithUints32(8).
		WithUints16(1).
		WithUints16(uint16(entry.Make), uint16(entry.DataType_String)).WithUints32(5).WithUints32(26).
		WithUints32(0).
		WithString("Acme\x00").
		Bytes()

	p, err := NewParserAt(buf, 16)
	assert.NoError(t, err)

	dir, err := p.ParseDirectory(p.FirstOffset(), GroupIfd0)
	assert.NoError(t, err)

	make_, ok := dir.Find(entry.Make)
	assert.True(t, ok)
	text, err := make_.Text()
	assert.NoError(t, err)
	assert.Equal(t, "Acme", text)
}
