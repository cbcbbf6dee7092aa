package maker

import (
	"github.com/fedragon/exif-parser/tiff/entry"
)

// Sony enciphers tag 0x2010 and the whole 0x9000-0x9fff range with a byte
// substitution cipher: a plain byte b below 249 is stored as (b*b*b) % 249,
// bytes 249 and above are stored as themselves. The table below inverts
// that map.
var sonyDecipher = func() (t [256]byte) {
	for i := range t {
		t[i] = byte(i)
	}
	for b := 0; b < 249; b++ {
		t[b*b*b%249] = byte(b)
	}
	return
}()

// SonyEnciphered reports whether the values of this maker note tag are
// stored enciphered.
func SonyEnciphered(id entry.ID) bool {
	return id == 0x2010 || (id >= 0x9000 && id < 0xa000)
}

// DecipherSony reverses Sony's substitution cipher and returns the plain
// bytes as a new slice. Data written by a few tool versions went through
// the cipher twice; when a single pass still does not look like plain data
// a second pass is applied.
func DecipherSony(data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = sonyDecipher[b]
	}
	if doubleEnciphered(out) {
		for i, b := range out {
			out[i] = sonyDecipher[b]
		}
	}
	return out
}

// doubleEnciphered guesses whether a deciphering pass is still needed.
// Plain records open with small integers and ASCII, so a leading stretch
// dominated by high bytes means the first pass undid only half the damage.
func doubleEnciphered(data []byte) bool {
	n := len(data)
	if n == 0 {
		return false
	}
	if n > 16 {
		n = 16
	}
	plain := 0
	for _, b := range data[:n] {
		if b < 0x80 {
			plain++
		}
	}
	return plain*2 < n
}

// sonyTag2010 decodes the camera settings record stored under tag 0x2010.
// Deciphering happens at the entry level before record decoding, so the
// layout below reads plain bytes.
var sonyTag2010 = Record{
	Name: "Tag2010",
	Fields: []RecordField{
		wordField("SonyImageHeight", 0, entry.DataType_UShort),
		wordField("SonyImageWidth", 1, entry.DataType_UShort),
		wordField("SonyImageSize", 2, entry.DataType_ULong),
		wordField("SonyQuality", 4, entry.DataType_UShort),
		wordField("SonyFlashExposureComp", 6, entry.DataType_Short),
		wordField("SonyTeleConverter", 8, entry.DataType_UShort),
		wordField("SonyWhiteBalanceFineTune", 10, entry.DataType_Short),
		wordField("SonyCameraSettings", 12, entry.DataType_UShort),
		wordField("SonyWhiteBalance", 14, entry.DataType_UShort),
		wordField("SonyExtraInfo", 16, entry.DataType_UShort),
	},
}
