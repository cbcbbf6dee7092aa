package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fedragon/exif-parser/test"
	"github.com/fedragon/exif-parser/tiff/entry"
)

func TestClassify_Signatures(t *testing.T) {
	testCases := []struct {
		name   string
		prefix []byte
		ext    string
		kind   Kind
		conf   Confidence
	}{
		{
			name:   "JPEG",
			prefix: []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'},
			kind:   KindJPEG,
			conf:   ConfidenceStrong,
		},
		{
			name:   "PNG",
			prefix: []byte("\x89PNG\r\n\x1a\nrest"),
			kind:   KindPNG,
			conf:   ConfidenceStrong,
		},
		{
			name:   "GIF",
			prefix: []byte("GIF89a"),
			kind:   KindGIF,
			conf:   ConfidenceStrong,
		},
		{
			name:   "PSD",
			prefix: []byte("8BPS\x00\x01"),
			kind:   KindPSD,
			conf:   ConfidenceStrong,
		},
		{
			name:   "FLAC",
			prefix: []byte("fLaC\x00\x00\x00\x22"),
			kind:   KindFLAC,
			conf:   ConfidenceStrong,
		},
		{
			name:   "OGG",
			prefix: []byte("OggS\x00\x02"),
			kind:   KindOGG,
			conf:   ConfidenceStrong,
		},
		{
			name:   "GZIP",
			prefix: []byte{0x1F, 0x8B, 0x08, 0x00, 0x00, 0x00, 0x00, 0x00},
			kind:   KindGZIP,
			conf:   ConfidenceStrong,
		},
		{
			name:   "ZIP",
			prefix: []byte("PK\x03\x04\x14\x00"),
			kind:   KindZIP,
			conf:   ConfidenceStrong,
		},
		{
			name: "BMP",
			prefix: []byte{
				'B', 'M', 0x36, 0x10, 0x00, 0x00, 0x00, 0x00,
				0x00, 0x00, 0x36, 0x00, 0x00, 0x00, 0x28, 0x00,
				0x00, 0x00,
			},
			kind: KindBMP,
			conf: ConfidenceStrong,
		},
		{
			name:   "TextStartingWithBM",
			prefix: []byte("BMW sedans are not bitmaps, whatever the prefix says"),
			kind:   KindUnknown,
		},
		{
			name:   "WAV",
			prefix: []byte("RIFF\x24\x00\x00\x00WAVEfmt "),
			kind:   KindWAV,
			conf:   ConfidenceStrong,
		},
		{
			name:   "RF64",
			prefix: []byte("RF64\xFF\xFF\xFF\xFFWAVEds64"),
			kind:   KindWAV,
			conf:   ConfidenceStrong,
		},
		{
			name:   "AVI",
			prefix: []byte("RIFF\x24\x00\x00\x00AVI LIST"),
			kind:   KindAVI,
			conf:   ConfidenceStrong,
		},
		{
			name:   "WEBP",
			prefix: []byte("RIFF\x24\x00\x00\x00WEBPVP8 "),
			kind:   KindWEBP,
			conf:   ConfidenceStrong,
		},
		{
			name:   "AIFF",
			prefix: []byte("FORM\x00\x00\x10\x00AIFFCOMM"),
			kind:   KindAIFF,
			conf:   ConfidenceStrong,
		},
		{
			name:   "HEIC",
			prefix: []byte("\x00\x00\x00\x18ftypheic\x00\x00\x00\x00"),
			kind:   KindHEIC,
			conf:   ConfidenceStrong,
		},
		{
			name:   "HEIF",
			prefix: []byte("\x00\x00\x00\x18ftypmif1\x00\x00\x00\x00"),
			kind:   KindHEIF,
			conf:   ConfidenceStrong,
		},
		{
			name:   "AVIF",
			prefix: []byte("\x00\x00\x00\x18ftypavif\x00\x00\x00\x00"),
			kind:   KindAVIF,
			conf:   ConfidenceStrong,
		},
		{
			name:   "HEICAlternateBrand",
			prefix: []byte("\x00\x00\x00\x18ftyphevx\x00\x00\x00\x00"),
			kind:   KindHEIC,
			conf:   ConfidenceStrong,
		},
		{
			name:   "AVIFSequence",
			prefix: []byte("\x00\x00\x00\x18ftypavis\x00\x00\x00\x00"),
			kind:   KindAVIF,
			conf:   ConfidenceStrong,
		},
		{
			name:   "CR3",
			prefix: []byte("\x00\x00\x00\x18ftypcrx \x00\x00\x00\x01crx "),
			kind:   KindCR3,
			conf:   ConfidenceStrong,
		},
		{
			name:   "CanonRawMovie",
			prefix: []byte("\x00\x00\x00\x18ftypcrx \x00\x00\x00\x01crx vide"),
			kind:   KindMOV,
			conf:   ConfidenceStrong,
		},
		{
			name:   "QuickTime",
			prefix: []byte("\x00\x00\x00\x14ftypqt  \x00\x00\x00\x00"),
			kind:   KindMOV,
			conf:   ConfidenceStrong,
		},
		{
			name:   "MP4",
			prefix: []byte("\x00\x00\x00\x18ftypisom\x00\x00\x02\x00"),
			kind:   KindMP4,
			conf:   ConfidenceStrong,
		},
		{
			name:   "MP4ISOBase",
			prefix: []byte("\x00\x00\x00\x18ftypiso2\x00\x00\x00\x00"),
			kind:   KindMP4,
			conf:   ConfidenceStrong,
		},
		{
			name:   "ThreeGP",
			prefix: []byte("\x00\x00\x00\x18ftyp3gp5\x00\x00\x00\x00"),
			kind:   Kind3GP,
			conf:   ConfidenceStrong,
		},
		{
			name:   "ThreeG2",
			prefix: []byte("\x00\x00\x00\x18ftyp3g2a\x00\x00\x00\x00"),
			kind:   Kind3G2,
			conf:   ConfidenceStrong,
		},
		{
			name:   "UnknownBrandIsMOV",
			prefix: []byte("\x00\x00\x00\x18ftypxxxx\x00\x00\x00\x00"),
			kind:   KindMOV,
			conf:   ConfidenceStrong,
		},
		{
			name:   "MP3WithID3Tag",
			prefix: []byte("ID3\x04\x00\x00\x00\x00\x21\x76"),
			ext:    "mp3",
			kind:   KindMP3,
			conf:   ConfidenceWeak,
		},
		{
			name:   "MP3FrameHeader",
			prefix: []byte{0xFF, 0xFB, 0x90, 0x00},
			ext:    ".mp3",
			kind:   KindMP3,
			conf:   ConfidenceWeak,
		},
		{
			name:   "MP3FrameHeaderWithoutHint",
			prefix: []byte{0xFF, 0xFB, 0x90, 0x00},
			kind:   KindUnknown,
		},
		{
			name:   "ADTSFrameHeader",
			prefix: []byte{0xFF, 0xF1, 0x50, 0x80},
			ext:    ".aac",
			kind:   KindAAC,
			conf:   ConfidenceWeak,
		},
		{
			name:   "ADTSFrameHeaderWithoutHint",
			prefix: []byte{0xFF, 0xF1, 0x50, 0x80},
			kind:   KindUnknown,
		},
		{
			name:   "ExtensionFallback",
			prefix: []byte("nothing recognizable in here"),
			ext:    ".png",
			kind:   KindPNG,
			conf:   ConfidenceWeak,
		},
		{
			name:   "Unknown",
			prefix: []byte("plain text, no signature anywhere"),
			kind:   KindUnknown,
			conf:   ConfidenceNone,
		},
		{
			name:   "Empty",
			prefix: nil,
			kind:   KindUnknown,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := Classify(tc.prefix, tc.ext)
			assert.Equal(t, tc.kind, c.Kind)
			assert.Equal(t, tc.conf, c.Confidence)
		})
	}
}

// tiffPrefix builds a little-endian header plus a primary directory with
// the given entries, for the rules that have to peek inside.
func tiffPrefix(entries ...[]uint16) []byte {
	b := test.NewBuffer().
		WithString("II").WithUints16(0x002A).WithUints32(8).
		WithUints16(uint16(len(entries)))
	for _, e := range entries {
		b.WithUints16(e[0], e[1]).WithUints32(uint32(e[2])).WithUints16(e[3], e[4])
	}
	return b.WithUints32(0).Bytes()
}

func TestClassify_TIFFFamily(t *testing.T) {
	t.Run("PlainTIFF", func(t *testing.T) {
		c := Classify(tiffPrefix(), "")
		assert.Equal(t, KindTIFF, c.Kind)
		assert.Equal(t, ConfidenceStrong, c.Confidence)
		assert.Zero(t, c.BaseOffset)
	})

	t.Run("CR2", func(t *testing.T) {
		prefix := test.NewBuffer().
			WithString("II").WithUints16(0x002A).WithUints32(16).
			WithString("CR\x02\x00").
			WithUints32(0).
			WithUints16(0).WithUints32(0).
			Bytes()
		c := Classify(prefix, "")
		assert.Equal(t, KindCR2, c.Kind)
		assert.Equal(t, ConfidenceStrong, c.Confidence)
	})

	t.Run("RW2", func(t *testing.T) {
		prefix := test.NewBuffer().
			WithString("II").WithUints16(0x0055).WithUints32(0x18).
			WithBytes(
				0x88, 0xE7, 0x74, 0xD8, 0xF8, 0x25, 0x1D, 0x4D,
				0x94, 0x7A, 0x6E, 0x77, 0x82, 0x2B, 0x5D, 0x6A,
			).
			Bytes()
		c := Classify(prefix, "")
		assert.Equal(t, KindRW2, c.Kind)
		assert.Equal(t, ConfidenceStrong, c.Confidence)
	})

	t.Run("ORF", func(t *testing.T) {
		for _, magic := range []string{"RO", "OR", "RS"} {
			prefix := test.NewBuffer().
				WithString("II").WithString(magic).WithUints32(8).
				Bytes()
			c := Classify(prefix, "")
			assert.Equal(t, KindORF, c.Kind, magic)
			assert.Equal(t, ConfidenceStrong, c.Confidence)
		}
	})

	t.Run("DNGVersionWins", func(t *testing.T) {
		// A DNG written by a Nikon still classifies as DNG: the version tag
		// outranks the maker string.
		prefix := makerPrefix("NIKON CORPORATION", [][]uint16{
			{uint16(entry.DNGVersion), uint16(entry.DataType_UByte), 4, 0x0401, 0},
		})
		c := Classify(prefix, "")
		assert.Equal(t, KindDNG, c.Kind)
		assert.Equal(t, ConfidenceStrong, c.Confidence)
	})

	t.Run("ExtensionClaimsRAWFlavour", func(t *testing.T) {
		c := Classify(tiffPrefix(), ".arw")
		assert.Equal(t, KindARW, c.Kind)
		assert.Equal(t, ConfidenceWeak, c.Confidence)
	})

	t.Run("TIFFExtensionAddsNothing", func(t *testing.T) {
		c := Classify(tiffPrefix(), ".tif")
		assert.Equal(t, KindTIFF, c.Kind)
		assert.Equal(t, ConfidenceStrong, c.Confidence)
	})
}

// makerPrefix builds a little-endian header and a directory that carries a
// maker string at a value offset, plus any extra inline entries.
func makerPrefix(maker string, extra [][]uint16) []byte {
	count := 1 + len(extra)
	valueOffset := 8 + 2 + count*12 + 4

	b := test.NewBuffer().
		WithString("II").WithUints16(0x002A).WithUints32(8).
		WithUints16(uint16(count)).
		WithUints16(uint16(entry.Make), uint16(entry.DataType_String)).
		WithUints32(uint32(len(maker) + 1)).WithUints32(uint32(valueOffset))
	for _, e := range extra {
		b.WithUints16(e[0], e[1]).WithUints32(uint32(e[2])).WithUints16(e[3], e[4])
	}
	return b.WithUints32(0).WithString(maker).WithBytes(0).Bytes()
}

func TestClassify_MakerPeek(t *testing.T) {
	testCases := []struct {
		name  string
		maker string
		extra [][]uint16
		ext   string
		kind  Kind
		conf  Confidence
	}{
		{
			name:  "NikonWithoutCompression",
			maker: "NIKON CORPORATION",
			kind:  KindNEF,
			conf:  ConfidenceWeak,
		},
		{
			name:  "NikonWithNRWHint",
			maker: "NIKON",
			ext:   ".nrw",
			kind:  KindNRW,
			conf:  ConfidenceWeak,
		},
		{
			name:  "NikonJPEGCompressionIsNRW",
			maker: "NIKON CORPORATION",
			extra: [][]uint16{
				{uint16(entry.Compression), uint16(entry.DataType_UShort), 1, 6, 0},
			},
			kind: KindNRW,
			conf: ConfidenceStrong,
		},
		{
			name:  "NikonRawCompressionIsNEF",
			maker: "NIKON CORPORATION",
			extra: [][]uint16{
				{uint16(entry.Compression), uint16(entry.DataType_UShort), 1, 1, 0},
			},
			// A NEF renamed to .nrw stays NEF: bytes beat the extension.
			ext:  ".nrw",
			kind: KindNEF,
			conf: ConfidenceStrong,
		},
		{
			name:  "CanonWithoutCR2Signature",
			maker: "Canon",
			kind:  KindCR2,
			conf:  ConfidenceStrong,
		},
		{
			name:  "Sony",
			maker: "SONY",
			kind:  KindARW,
			conf:  ConfidenceStrong,
		},
		{
			name:  "Pentax",
			maker: "PENTAX Corporation",
			kind:  KindPEF,
			conf:  ConfidenceStrong,
		},
		{
			name:  "Hasselblad",
			maker: "Hasselblad",
			kind:  Kind3FR,
			conf:  ConfidenceStrong,
		},
		{
			name:  "PhaseOne",
			maker: "Phase One A/S",
			kind:  KindIIQ,
			conf:  ConfidenceStrong,
		},
		{
			name:  "Epson",
			maker: "SEIKO EPSON CORP.",
			kind:  KindERF,
			conf:  ConfidenceStrong,
		},
		{
			name:  "UnknownMakerIsTIFF",
			maker: "Acme Corp",
			kind:  KindTIFF,
			conf:  ConfidenceStrong,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := Classify(makerPrefix(tc.maker, tc.extra), tc.ext)
			assert.Equal(t, tc.kind, c.Kind)
			assert.Equal(t, tc.conf, c.Confidence)
		})
	}
}

func TestClassify_EmbeddedSignatures(t *testing.T) {
	t.Run("JPEGAfterForeignHeader", func(t *testing.T) {
		junk := make([]byte, 32)
		for i := range junk {
			junk[i] = 'x'
		}
		prefix := append(junk, 0xFF, 0xD8, 0xFF, 0xE1, 0x00, 0x10)

		c := Classify(prefix, "")
		assert.Equal(t, KindJPEG, c.Kind)
		assert.EqualValues(t, 32, c.BaseOffset)
		assert.Equal(t, ConfidenceWeak, c.Confidence)
	})

	t.Run("TIFFAfterForeignHeader", func(t *testing.T) {
		prefix := append([]byte("FUJIFILMCCD-RAW "), []byte("II*\x00\x08\x00\x00\x00")...)

		c := Classify(prefix, "")
		assert.Equal(t, KindTIFF, c.Kind)
		assert.EqualValues(t, 16, c.BaseOffset)
		assert.Equal(t, ConfidenceWeak, c.Confidence)
	})
}

func TestNormalizeExt(t *testing.T) {
	testCases := []struct {
		in  string
		out string
	}{
		{in: ".jpg", out: "JPEG"},
		{in: "jpe", out: "JPEG"},
		{in: "tif", out: "TIFF"},
		{in: ".3gp2", out: "3G2"},
		{in: "aif", out: "AIFF"},
		{in: ".HIF", out: "HEIF"},
		{in: "nef", out: "NEF"},
		{in: "", out: ""},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.out, normalizeExt(tc.in), tc.in)
	}
}
