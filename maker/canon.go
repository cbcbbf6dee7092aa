package maker

import (
	"github.com/fedragon/exif-parser/tiff/entry"
)

// Canon packs camera state into a handful of word-indexed records rather
// than giving each value its own tag. Indexes are in 16-bit words from the
// record start; entry 0 of each record holds the record's byte length and
// is not a field.

var canonCameraSettings = Record{Name: "CameraSettings", Fields: []RecordField{
	wordField("MacroMode", 1, entry.DataType_Short),
	wordField("SelfTimer", 2, entry.DataType_Short),
	wordField("Quality", 3, entry.DataType_Short),
	wordField("CanonFlashMode", 4, entry.DataType_Short),
	wordField("ContinuousDrive", 5, entry.DataType_Short),
	wordField("FocusMode", 7, entry.DataType_Short),
	wordField("ImageSize", 10, entry.DataType_Short),
	wordField("EasyMode", 11, entry.DataType_Short),
	wordField("DigitalZoom", 12, entry.DataType_Short),
	wordField("Contrast", 13, entry.DataType_Short),
	wordField("Saturation", 14, entry.DataType_Short),
	wordField("Sharpness", 15, entry.DataType_Short),
	wordField("CameraISO", 16, entry.DataType_Short),
	wordField("MeteringMode", 17, entry.DataType_Short),
	wordField("FocusRange", 18, entry.DataType_Short),
	wordField("AFPoint", 19, entry.DataType_Short),
	wordField("CanonExposureMode", 20, entry.DataType_Short),
	wordField("LensType", 22, entry.DataType_UShort),
}}

var canonFocalLength = Record{Name: "FocalLength", Fields: []RecordField{
	wordField("FocalType", 0, entry.DataType_UShort),
	wordField("FocalLength", 1, entry.DataType_UShort),
}}

// Distances are unsigned, everything else in ShotInfo is a signed word.
var canonShotInfo = Record{Name: "ShotInfo", Fields: []RecordField{
	wordField("AutoISO", 1, entry.DataType_Short),
	wordField("BaseISO", 2, entry.DataType_Short),
	wordField("MeasuredEV", 3, entry.DataType_Short),
	wordField("TargetAperture", 4, entry.DataType_Short),
	wordField("TargetExposureTime", 5, entry.DataType_Short),
	wordField("ExposureCompensation", 6, entry.DataType_Short),
	wordField("WhiteBalance", 7, entry.DataType_Short),
	wordField("SlowShutter", 8, entry.DataType_Short),
	wordField("SequenceNumber", 9, entry.DataType_Short),
	wordField("OpticalZoomCode", 10, entry.DataType_Short),
	wordField("CameraTemperature", 12, entry.DataType_Short),
	wordField("FlashGuideNumber", 13, entry.DataType_Short),
	wordField("AFPointsInFocus", 14, entry.DataType_Short),
	wordField("FlashExposureComp", 15, entry.DataType_Short),
	wordField("AutoExposureBracketing", 16, entry.DataType_Short),
	wordField("AEBBracketValue", 17, entry.DataType_Short),
	wordField("ControlMode", 18, entry.DataType_Short),
	wordField("FocusDistanceUpper", 19, entry.DataType_UShort),
	wordField("FocusDistanceLower", 20, entry.DataType_UShort),
	wordField("FNumber", 21, entry.DataType_Short),
	wordField("ExposureTime", 22, entry.DataType_Short),
	wordField("MeasuredEV2", 23, entry.DataType_Short),
	wordField("BulbDuration", 24, entry.DataType_Short),
	wordField("CameraType", 26, entry.DataType_Short),
	wordField("AutoRotate", 27, entry.DataType_Short),
	wordField("NDFilter", 28, entry.DataType_Short),
	wordField("SelfTimer2", 29, entry.DataType_Short),
	wordField("FlashOutput", 33, entry.DataType_Short),
}}

var canonRecords = map[entry.ID]Record{
	0x0001: canonCameraSettings,
	0x0002: canonFocalLength,
	0x0004: canonShotInfo,
}
