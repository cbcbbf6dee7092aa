package tiff

import "github.com/fedragon/exif-parser/tiff/entry"

// Key addresses a tag in a merged result: the same numeric ID may appear in
// several groups with unrelated meanings.
type Key struct {
	Group Group
	ID    entry.ID
}

// Definition describes a tag as declared by an external tag table. The
// declared data type is a fallback used when a file carries an invalid type
// code; the bytes in the file always win when the two disagree. Conversion
// is an opaque identifier consumed by a display-conversion layer outside
// this package.
type Definition struct {
	Name       string
	DataType   entry.DataType
	Conversion uint16
}

// Table is an immutable lookup of tag definitions. It is plain data: the
// parser consults it and degrades gracefully when an entry is missing, it
// never assumes the table is exhaustive or correct. Pass tables explicitly;
// the parser holds no table state of its own.
type Table map[Key]Definition

// Lookup returns the definition for a tag in a group, if the table has one.
func (t Table) Lookup(g Group, id entry.ID) (Definition, bool) {
	def, ok := t[Key{Group: g, ID: id}]
	return def, ok
}

// DefaultTable covers the baseline TIFF, Exif and GPS tags. Generated
// tables with vendor coverage can replace it wholesale through the parser
// options.
var DefaultTable = Table{
	{GroupIfd0, entry.ImageWidth}:                {Name: "ImageWidth", DataType: entry.DataType_ULong},
	{GroupIfd0, entry.ImageHeight}:               {Name: "ImageHeight", DataType: entry.DataType_ULong},
	{GroupIfd0, entry.BitsPerSample}:             {Name: "BitsPerSample", DataType: entry.DataType_UShort},
	{GroupIfd0, entry.Compression}:               {Name: "Compression", DataType: entry.DataType_UShort},
	{GroupIfd0, entry.PhotometricInterpretation}: {Name: "PhotometricInterpretation", DataType: entry.DataType_UShort},
	{GroupIfd0, entry.ImageDescription}:          {Name: "ImageDescription", DataType: entry.DataType_String},
	{GroupIfd0, entry.Make}:                      {Name: "Make", DataType: entry.DataType_String},
	{GroupIfd0, entry.Model}:                     {Name: "Model", DataType: entry.DataType_String},
	{GroupIfd0, entry.StripOffsets}:              {Name: "StripOffsets", DataType: entry.DataType_ULong},
	{GroupIfd0, entry.Orientation}:               {Name: "Orientation", DataType: entry.DataType_UShort},
	{GroupIfd0, entry.RowsPerStrip}:              {Name: "RowsPerStrip", DataType: entry.DataType_ULong},
	{GroupIfd0, entry.StripByteCounts}:           {Name: "StripByteCounts", DataType: entry.DataType_ULong},
	{GroupIfd0, entry.XResolution}:               {Name: "XResolution", DataType: entry.DataType_URational},
	{GroupIfd0, entry.YResolution}:               {Name: "YResolution", DataType: entry.DataType_URational},
	{GroupIfd0, entry.ResolutionUnit}:            {Name: "ResolutionUnit", DataType: entry.DataType_UShort},
	{GroupIfd0, entry.Software}:                  {Name: "Software", DataType: entry.DataType_String},
	{GroupIfd0, entry.DateTime}:                  {Name: "DateTime", DataType: entry.DataType_String},
	{GroupIfd0, entry.Artist}:                    {Name: "Artist", DataType: entry.DataType_String},
	{GroupIfd0, entry.Copyright}:                 {Name: "Copyright", DataType: entry.DataType_String},
	{GroupIfd0, entry.SubIFDs}:                   {Name: "SubIFDs", DataType: entry.DataType_ULong},
	{GroupIfd0, entry.Exif}:                      {Name: "ExifOffset", DataType: entry.DataType_ULong},
	{GroupIfd0, entry.GPSInfo}:                   {Name: "GPSInfoOffset", DataType: entry.DataType_ULong},

	{GroupIfd1, entry.Compression}:              {Name: "Compression", DataType: entry.DataType_UShort},
	{GroupIfd1, entry.ThumbnailOffset}:          {Name: "ThumbnailOffset", DataType: entry.DataType_ULong},
	{GroupIfd1, entry.ThumbnailLength}:          {Name: "ThumbnailLength", DataType: entry.DataType_ULong},
	{GroupIfd1, entry.XResolution}:              {Name: "XResolution", DataType: entry.DataType_URational},
	{GroupIfd1, entry.YResolution}:              {Name: "YResolution", DataType: entry.DataType_URational},
	{GroupIfd1, entry.ResolutionUnit}:           {Name: "ResolutionUnit", DataType: entry.DataType_UShort},

	{GroupExif, entry.ExposureTime}:       {Name: "ExposureTime", DataType: entry.DataType_URational},
	{GroupExif, entry.FNumber}:            {Name: "FNumber", DataType: entry.DataType_URational},
	{GroupExif, entry.ISO}:                {Name: "ISO", DataType: entry.DataType_UShort},
	{GroupExif, entry.ExifVersion}:        {Name: "ExifVersion", DataType: entry.DataType_UByte_Sequence},
	{GroupExif, entry.DateTimeOriginal}:   {Name: "DateTimeOriginal", DataType: entry.DataType_String},
	{GroupExif, entry.DateTimeDigitized}:  {Name: "DateTimeDigitized", DataType: entry.DataType_String},
	{GroupExif, entry.OffsetTimeOriginal}: {Name: "OffsetTimeOriginal", DataType: entry.DataType_String},
	{GroupExif, entry.ShutterSpeedValue}:  {Name: "ShutterSpeedValue", DataType: entry.DataType_Rational},
	{GroupExif, entry.ApertureValue}:      {Name: "ApertureValue", DataType: entry.DataType_URational},
	{GroupExif, entry.Flash}:              {Name: "Flash", DataType: entry.DataType_UShort},
	{GroupExif, entry.FocalLength}:        {Name: "FocalLength", DataType: entry.DataType_URational},
	{GroupExif, entry.MakerNote}:          {Name: "MakerNote", DataType: entry.DataType_UByte_Sequence},
	{GroupExif, entry.UserComment}:        {Name: "UserComment", DataType: entry.DataType_UByte_Sequence},
	{GroupExif, entry.ColorSpace}:         {Name: "ColorSpace", DataType: entry.DataType_UShort},
	{GroupExif, entry.PixelXDimension}:    {Name: "PixelXDimension", DataType: entry.DataType_ULong},
	{GroupExif, entry.PixelYDimension}:    {Name: "PixelYDimension", DataType: entry.DataType_ULong},
	{GroupExif, entry.Interop}:            {Name: "InteropOffset", DataType: entry.DataType_ULong},

	{GroupGPSInfo, entry.GPSVersionID}:    {Name: "GPSVersionID", DataType: entry.DataType_UByte},
	{GroupGPSInfo, entry.GPSLatitudeRef}:  {Name: "GPSLatitudeRef", DataType: entry.DataType_String},
	{GroupGPSInfo, entry.GPSLatitude}:     {Name: "GPSLatitude", DataType: entry.DataType_URational},
	{GroupGPSInfo, entry.GPSLongitudeRef}: {Name: "GPSLongitudeRef", DataType: entry.DataType_String},
	{GroupGPSInfo, entry.GPSLongitude}:    {Name: "GPSLongitude", DataType: entry.DataType_URational},
	{GroupGPSInfo, entry.GPSAltitudeRef}:  {Name: "GPSAltitudeRef", DataType: entry.DataType_UByte},
	{GroupGPSInfo, entry.GPSAltitude}:     {Name: "GPSAltitude", DataType: entry.DataType_URational},
	{GroupGPSInfo, entry.GPSTimeStamp}:    {Name: "GPSTimeStamp", DataType: entry.DataType_URational},
	{GroupGPSInfo, entry.GPSDateStamp}:    {Name: "GPSDateStamp", DataType: entry.DataType_String},

	{GroupInterop, entry.InteropIndex}:   {Name: "InteropIndex", DataType: entry.DataType_String},
	{GroupInterop, entry.InteropVersion}: {Name: "InteropVersion", DataType: entry.DataType_UByte_Sequence},
}
