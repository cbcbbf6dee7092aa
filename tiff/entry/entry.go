package entry

type ID uint16
type DataType uint16

const (
	// Size of an IFD entry, in bytes
	Size = 12

	// IFD #0

	ImageWidth                ID = 0x100
	ImageHeight               ID = 0x101
	BitsPerSample             ID = 0x102
	Compression               ID = 0x103
	PhotometricInterpretation ID = 0x106
	ImageDescription          ID = 0x10e
	Make                      ID = 0x10f
	Model                     ID = 0x110
	StripOffsets              ID = 0x111
	Orientation               ID = 0x112
	RowsPerStrip              ID = 0x116
	StripByteCounts           ID = 0x117
	XResolution               ID = 0x11a
	YResolution               ID = 0x11b
	ResolutionUnit            ID = 0x128
	Software                  ID = 0x131
	DateTime                  ID = 0x132
	Artist                    ID = 0x13b
	SubIFDs                   ID = 0x14a
	JPEGInterchangeFormat     ID = 0x201
	JPEGInterchangeFormatLen  ID = 0x202
	YCbCrPositioning          ID = 0x213
	Copyright                 ID = 0x8298
	Exif                      ID = 0x8769
	GPSInfo                   ID = 0x8825
	DNGVersion                ID = 0xc612

	// Exif sub-IFD

	ExposureTime       ID = 0x829a
	FNumber            ID = 0x829d
	ISO                ID = 0x8827
	ExifVersion        ID = 0x9000
	DateTimeOriginal   ID = 0x9003
	DateTimeDigitized  ID = 0x9004
	OffsetTimeOriginal ID = 0x9011
	ShutterSpeedValue  ID = 0x9201
	ApertureValue      ID = 0x9202
	Flash              ID = 0x9209
	FocalLength        ID = 0x920a
	MakerNote          ID = 0x927c
	UserComment        ID = 0x9286
	ColorSpace         ID = 0xa001
	PixelXDimension    ID = 0xa002
	PixelYDimension    ID = 0xa003
	Interop            ID = 0xa005

	// GPSInfo sub-IFD

	GPSVersionID    ID = 0x0000
	GPSLatitudeRef  ID = 0x0001
	GPSLatitude     ID = 0x0002
	GPSLongitudeRef ID = 0x0003
	GPSLongitude    ID = 0x0004
	GPSAltitudeRef  ID = 0x0005
	GPSAltitude     ID = 0x0006
	GPSTimeStamp    ID = 0x0007
	GPSDateStamp    ID = 0x001d

	// Interoperability sub-IFD

	InteropIndex   ID = 0x0001
	InteropVersion ID = 0x0002

	// Position depends on actual format

	ThumbnailOffset ID = 0x0201 // in IFD #1 (PreviewImageStart if in IFD #0)
	ThumbnailLength ID = 0x0202 // in IFD #1 (PreviewImageLength if in IFD #0)
)

const (
	DataType_UByte DataType = iota + 1
	DataType_String
	DataType_UShort
	DataType_ULong
	DataType_URational
	DataType_Byte
	DataType_UByte_Sequence
	DataType_Short
	DataType_Long
	DataType_Rational
	DataType_Single_Precision_IEEE_Format
	DataType_Double_Precision_IEEE_Format
	DataType_Ifd
)

// sizes holds the width in bytes of a single value of each data type.
var sizes = map[DataType]uint32{
	DataType_UByte:                        1,
	DataType_String:                       1,
	DataType_UShort:                       2,
	DataType_ULong:                        4,
	DataType_URational:                    8,
	DataType_Byte:                         1,
	DataType_UByte_Sequence:               1,
	DataType_Short:                        2,
	DataType_Long:                         4,
	DataType_Rational:                     8,
	DataType_Single_Precision_IEEE_Format: 4,
	DataType_Double_Precision_IEEE_Format: 8,
	DataType_Ifd:                          4,
}

// Size returns the width in bytes of a single value of this data type, or 0
// if the data type is not one of the standard thirteen.
func (dt DataType) Size() uint32 {
	return sizes[dt]
}

// Valid reports whether the data type is one of the standard thirteen.
func (dt DataType) Valid() bool {
	return dt >= DataType_UByte && dt <= DataType_Ifd
}

// IsSigned reports whether the data type holds signed integers.
func (dt DataType) IsSigned() bool {
	return dt == DataType_Byte || dt == DataType_Short || dt == DataType_Long || dt == DataType_Rational
}

// IsIntegral reports whether the data type holds integers, signed or not.
func (dt DataType) IsIntegral() bool {
	switch dt {
	case DataType_UByte, DataType_UShort, DataType_ULong, DataType_Byte, DataType_Short, DataType_Long:
		return true
	}
	return false
}

// IsRational reports whether the data type holds numerator/denominator pairs.
func (dt DataType) IsRational() bool {
	return dt == DataType_URational || dt == DataType_Rational
}

func (dt DataType) String() string {
	switch dt {
	case DataType_UByte:
		return "unsigned byte"
	case DataType_String:
		return "string"
	case DataType_UShort:
		return "unsigned short 16bits"
	case DataType_ULong:
		return "unsigned long 32bits"
	case DataType_URational:
		return "unsigned rational"
	case DataType_Byte:
		return "signed byte"
	case DataType_UByte_Sequence:
		return "unsigned byte sequence"
	case DataType_Short:
		return "signed short 16bits"
	case DataType_Long:
		return "signed long 32bits"
	case DataType_Rational:
		return "signed rational"
	case DataType_Single_Precision_IEEE_Format:
		return "single precision (4 bytes) IEEE format"
	case DataType_Double_Precision_IEEE_Format:
		return "double precision (8 bytes) IEEE format"
	case DataType_Ifd:
		return "sub-IFD offset"
	}
	return "UNKNOWN"
}
