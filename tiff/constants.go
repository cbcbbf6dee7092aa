package tiff

import "github.com/fedragon/exif-parser/tiff/entry"

type (
	// Group identifies the directory a tag was found in. Numerically
	// identical tag IDs from different groups never collide: merged results
	// are keyed by (Group, ID).
	Group uint8
)

const (
	GroupIfd0 Group = iota
	GroupIfd1
	GroupExif
	GroupGPSInfo
	GroupInterop
	GroupMakerNote
	GroupSubImage

	// IntelByteOrder is the TIFF standard value to indicate Intel byte ordering (aka little-endian)
	IntelByteOrder = 0x4949
	// MotorolaByteOrder is the TIFF standard value to indicate Motorola byte ordering (aka big-endian)
	MotorolaByteOrder = 0x4D4D

	// MagicNumberBigEndian is the TIFF standard value to indicate big-endian byte ordering
	MagicNumberBigEndian = 0x002A
	// MagicNumberLittleEndian is the TIFF standard value to indicate little-endian byte ordering
	MagicNumberLittleEndian = 0x2A00

	// OrfMagicNumberBigEndian is the ORF-specific value to indicate big-endian byte ordering
	OrfMagicNumberBigEndian = 0x4F52
	// OrfMagicNumberLittleEndian is the ORF-specific value to indicate little-endian byte ordering
	OrfMagicNumberLittleEndian = 0x524F
	// OrfAltMagicNumber is used by some Olympus models in place of 0x4F52
	OrfAltMagicNumber = 0x5352

	// Rw2MagicNumber is the RW2-specific replacement for the TIFF magic number
	Rw2MagicNumber = 0x0055

	// InlineValueSize is the width of the value slot in an IFD entry. Values
	// whose total size fits in the slot are stored inline; larger values are
	// reached through an offset stored in the slot instead.
	InlineValueSize = 4

	// NoNextIFD marks the end of an IFD chain together with a zero offset.
	NoNextIFD = 0xFFFFFFFF
)

func (g Group) String() string {
	switch g {
	case GroupIfd0:
		return "IFD0"
	case GroupIfd1:
		return "IFD1"
	case GroupExif:
		return "Exif"
	case GroupGPSInfo:
		return "GPSInfo"
	case GroupInterop:
		return "Interop"
	case GroupMakerNote:
		return "MakerNote"
	case GroupSubImage:
		return "SubImage"
	}
	return "Unknown"
}

// subIFDPointers is the structural override list: tags that point to
// sub-directories regardless of what a tag table (or the file itself)
// declares their data type to be. External tables are generated from
// third-party definitions and occasionally mark these as plain longs or
// strings, so the parser trusts this set over the table.
var subIFDPointers = map[entry.ID]Group{
	entry.Exif:    GroupExif,
	entry.GPSInfo: GroupGPSInfo,
	entry.Interop: GroupInterop,
}

// Defaults maps well-known entry IDs to the group they are conventionally
// found in. Callers that ask for entries by ID without specifying a group
// are resolved through this table.
var Defaults = map[entry.ID]Group{
	entry.ImageWidth:                GroupIfd0,
	entry.ImageHeight:               GroupIfd0,
	entry.BitsPerSample:             GroupIfd0,
	entry.Compression:               GroupIfd0,
	entry.PhotometricInterpretation: GroupIfd0,
	entry.ImageDescription:          GroupIfd0,
	entry.Make:                      GroupIfd0,
	entry.Model:                     GroupIfd0,
	entry.StripOffsets:              GroupIfd0,
	entry.Orientation:               GroupIfd0,
	entry.RowsPerStrip:              GroupIfd0,
	entry.StripByteCounts:           GroupIfd0,
	entry.XResolution:               GroupIfd0,
	entry.YResolution:               GroupIfd0,
	entry.ResolutionUnit:            GroupIfd0,
	entry.Software:                  GroupIfd0,
	entry.DateTime:                  GroupIfd0,
	entry.Artist:                    GroupIfd0,
	entry.SubIFDs:                   GroupIfd0,
	entry.Copyright:                 GroupIfd0,
	entry.Exif:                      GroupIfd0,
	entry.GPSInfo:                   GroupIfd0,
	entry.ExposureTime:              GroupExif,
	entry.FNumber:                   GroupExif,
	entry.ISO:                       GroupExif,
	entry.ExifVersion:               GroupExif,
	entry.DateTimeOriginal:          GroupExif,
	entry.DateTimeDigitized:         GroupExif,
	entry.OffsetTimeOriginal:        GroupExif,
	entry.Flash:                     GroupExif,
	entry.FocalLength:               GroupExif,
	entry.MakerNote:                 GroupExif,
	entry.UserComment:               GroupExif,
	entry.ColorSpace:                GroupExif,
	entry.PixelXDimension:           GroupExif,
	entry.PixelYDimension:           GroupExif,
	entry.Interop:                   GroupExif,
	entry.GPSVersionID:              GroupGPSInfo,
	entry.GPSLatitudeRef:            GroupGPSInfo,
	entry.GPSLatitude:               GroupGPSInfo,
	entry.GPSLongitudeRef:           GroupGPSInfo,
	entry.GPSLongitude:              GroupGPSInfo,
	entry.GPSAltitudeRef:            GroupGPSInfo,
	entry.GPSAltitude:               GroupGPSInfo,
	entry.GPSTimeStamp:              GroupGPSInfo,
	entry.GPSDateStamp:              GroupGPSInfo,
	entry.ThumbnailOffset:           GroupIfd1,
	entry.ThumbnailLength:           GroupIfd1,
}
