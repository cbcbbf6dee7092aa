// Package detect classifies a file's container format from a byte prefix.
//
// Classification is rule-ordered: unambiguous signatures first, then
// containers whose outer signature is shared by several sub-types and needs
// a secondary code, then the byte-order-tagged directory family where the
// specific RAW flavour is only visible in the first directory's maker
// string, then weak signatures that an extension hint must back up. The
// extension alone is a last resort, followed by a scan for an embedded
// signature after a foreign header.
package detect

import (
	"bytes"
	"strings"

	"github.com/fedragon/exif-parser/tiff"
	"github.com/fedragon/exif-parser/tiff/entry"
)

// MagicTestLen is the conventional prefix length to hand to Classify.
// Every rule, including the directory peek, stays within it.
const MagicTestLen = 1024

// compressionJPEG in a Nikon primary directory marks the file as NRW
// rather than NEF.
const compressionJPEG = 6

// Classification is the outcome of one Classify call.
//
// BaseOffset is where directory parsing should begin. It is zero except
// for classifications recovered from an embedded signature, where it is
// the signature's position within the prefix.
type Classification struct {
	Kind       Kind
	BaseOffset uint32
	Confidence Confidence
}

// Classify inspects prefix and returns the container classification. The
// extension hint (with or without a leading dot, any case) is used only
// where byte-level rules cannot decide. An unrecognized prefix yields the
// zero Classification, not an error.
func Classify(prefix []byte, ext string) Classification {
	hint := normalizeExt(ext)

	if c, ok := classifySignature(prefix); ok {
		return c
	}
	if c, ok := classifyRIFF(prefix); ok {
		return c
	}
	if c, ok := classifyFtyp(prefix); ok {
		return c
	}
	if c, ok := classifyTIFF(prefix, hint); ok {
		return c
	}
	if c, ok := classifyWeak(prefix, hint); ok {
		return c
	}
	if kind, ok := extensionKinds[hint]; ok {
		return Classification{Kind: kind, Confidence: ConfidenceWeak}
	}
	if c, ok := scanEmbedded(prefix); ok {
		return c
	}

	return Classification{}
}

var signatures = []struct {
	sig  []byte
	kind Kind
}{
	{[]byte{0xff, 0xd8, 0xff}, KindJPEG},
	{[]byte("\x89PNG\r\n\x1a\n"), KindPNG},
	{[]byte("GIF8"), KindGIF},
	{[]byte("8BPS"), KindPSD},
	{[]byte("fLaC"), KindFLAC},
	{[]byte("OggS"), KindOGG},
	{[]byte{0x1f, 0x8b}, KindGZIP},
	{[]byte("PK\x03\x04"), KindZIP},
}

func classifySignature(prefix []byte) (Classification, bool) {
	for _, s := range signatures {
		if bytes.HasPrefix(prefix, s.sig) {
			return Classification{Kind: s.kind, Confidence: ConfidenceStrong}, true
		}
	}
	if isBMP(prefix) {
		return Classification{Kind: KindBMP, Confidence: ConfidenceStrong}, true
	}
	return Classification{}, false
}

// isBMP requires more than the two-letter "BM" prefix: the reserved words
// must be zero and the DIB header size must be one of the defined ones,
// otherwise any text starting with "BM" would pass.
func isBMP(prefix []byte) bool {
	if len(prefix) < 18 || prefix[0] != 'B' || prefix[1] != 'M' {
		return false
	}
	if prefix[6] != 0 || prefix[7] != 0 || prefix[8] != 0 || prefix[9] != 0 {
		return false
	}
	switch prefix[14] {
	case 0x0c, 0x28, 0x6c, 0x7c:
		return prefix[15] == 0 && prefix[16] == 0 && prefix[17] == 0
	}
	return false
}

// classifyRIFF resolves the RIFF outer signature through the format code at
// offset 8, and the FORM outer signature the same way for AIFF.
func classifyRIFF(prefix []byte) (Classification, bool) {
	if len(prefix) < 12 {
		return Classification{}, false
	}
	magic := prefix[0:4]
	code := prefix[8:12]

	if bytes.Equal(magic, []byte("RIFF")) || bytes.Equal(magic, []byte("RF64")) {
		switch {
		case bytes.Equal(code, []byte("WAVE")):
			return Classification{Kind: KindWAV, Confidence: ConfidenceStrong}, true
		case bytes.Equal(code, []byte("AVI ")):
			return Classification{Kind: KindAVI, Confidence: ConfidenceStrong}, true
		case bytes.Equal(code, []byte("WEBP")):
			return Classification{Kind: KindWEBP, Confidence: ConfidenceStrong}, true
		}
		return Classification{}, false
	}

	if bytes.Equal(magic, []byte("FORM")) {
		if bytes.Equal(code, []byte("AIFF")) || bytes.Equal(code, []byte("AIFC")) {
			return Classification{Kind: KindAIFF, Confidence: ConfidenceStrong}, true
		}
	}

	return Classification{}, false
}

// classifyFtyp resolves the ISO base-media family through the major brand.
// The "crx " brand is shared by Canon's RAW still and RAW movie formats;
// only the presence of a video track handler in the scanned window tells
// them apart.
func classifyFtyp(prefix []byte) (Classification, bool) {
	if len(prefix) < 12 || !bytes.Equal(prefix[4:8], []byte("ftyp")) {
		return Classification{}, false
	}
	brand := string(prefix[8:12])

	var kind Kind
	switch brand {
	case "heic", "heix", "hevc", "hevx":
		kind = KindHEIC
	case "mif1", "msf1", "heif":
		kind = KindHEIF
	case "avif", "avis":
		kind = KindAVIF
	case "crx ":
		if hasVideoTrack(prefix) {
			kind = KindMOV
		} else {
			kind = KindCR3
		}
	case "qt  ":
		kind = KindMOV
	case "mp41", "mp42", "mp4v", "isom", "iso2", "M4A ", "M4V ", "dash", "avc1":
		kind = KindMP4
	default:
		switch {
		case strings.HasPrefix(brand, "3g2"):
			kind = Kind3G2
		case strings.HasPrefix(brand, "3gp"):
			kind = Kind3GP
		default:
			kind = KindMOV
		}
	}

	return Classification{Kind: kind, Confidence: ConfidenceStrong}, true
}

func hasVideoTrack(prefix []byte) bool {
	return bytes.Contains(prefix, []byte("vide"))
}

var (
	cr2Signature    = []byte("CR\x02\x00")
	cr2AltSignature = []byte{0xba, 0xb0, 0xac, 0xbb}
	rw2Signature    = []byte{
		0x88, 0xe7, 0x74, 0xd8, 0xf8, 0x25, 0x1d, 0x4d,
		0x94, 0x7a, 0x6e, 0x77, 0x82, 0x2b, 0x5d, 0x6a,
	}
)

// classifyTIFF handles the byte-order-tagged directory family. A handful of
// RAW flavours declare themselves through a private magic number or a
// signature right after the header; the rest share the plain TIFF header
// and are only recognizable by the maker string inside the first directory.
func classifyTIFF(prefix []byte, hint string) (Classification, bool) {
	if len(prefix) < 8 {
		return Classification{}, false
	}
	order, err := tiff.ByteOrderOf(prefix)
	if err != nil {
		return Classification{}, false
	}

	magic := order.Uint16(prefix[2:4])
	first := order.Uint32(prefix[4:8])

	switch magic {
	case tiff.MagicNumberBigEndian:
		// the generic directory peek below decides
	case tiff.Rw2MagicNumber:
		if first >= 0x18 && len(prefix) >= 0x18 && bytes.Equal(prefix[8:0x18], rw2Signature) {
			return Classification{Kind: KindRW2, Confidence: ConfidenceStrong}, true
		}
		return Classification{}, false
	case tiff.OrfMagicNumberBigEndian, tiff.OrfMagicNumberLittleEndian, tiff.OrfAltMagicNumber:
		return Classification{Kind: KindORF, Confidence: ConfidenceStrong}, true
	default:
		return Classification{}, false
	}

	if first >= 16 && len(prefix) >= 12 {
		sig := prefix[8:12]
		if bytes.Equal(sig, cr2Signature) || bytes.Equal(sig, cr2AltSignature) {
			return Classification{Kind: KindCR2, Confidence: ConfidenceStrong}, true
		}
	}

	peek := peekIFD0(prefix)
	if peek.dng {
		return Classification{Kind: KindDNG, Confidence: ConfidenceStrong}, true
	}

	switch {
	case strings.HasPrefix(peek.make, "NIKON"):
		// NRW files carry a JPEG-compressed thumbnail in the primary
		// directory, plain NEF files do not.
		if peek.hasCompression {
			if peek.compression == compressionJPEG {
				return Classification{Kind: KindNRW, Confidence: ConfidenceStrong}, true
			}
			return Classification{Kind: KindNEF, Confidence: ConfidenceStrong}, true
		}
		if hint == "NRW" {
			return Classification{Kind: KindNRW, Confidence: ConfidenceWeak}, true
		}
		return Classification{Kind: KindNEF, Confidence: ConfidenceWeak}, true
	case strings.HasPrefix(peek.make, "SONY"):
		return Classification{Kind: KindARW, Confidence: ConfidenceStrong}, true
	case strings.HasPrefix(peek.make, "PENTAX"):
		return Classification{Kind: KindPEF, Confidence: ConfidenceStrong}, true
	case strings.HasPrefix(peek.make, "Hasselblad"):
		return Classification{Kind: Kind3FR, Confidence: ConfidenceStrong}, true
	case strings.HasPrefix(peek.make, "Phase One"):
		return Classification{Kind: KindIIQ, Confidence: ConfidenceStrong}, true
	case strings.HasPrefix(peek.make, "SEIKO EPSON"), strings.HasPrefix(peek.make, "EPSON"):
		return Classification{Kind: KindERF, Confidence: ConfidenceStrong}, true
	case strings.HasPrefix(peek.make, "Canon"):
		// Canon's earliest TIFF-based RAWs carry no CR2 signature after the
		// header; only the maker string gives them away.
		return Classification{Kind: KindCR2, Confidence: ConfidenceStrong}, true
	}

	// No maker string within reach. A RAW extension on a valid directory
	// header is still a reasonable claim, just not a proven one.
	if kind, ok := extensionKinds[hint]; ok && kind.TIFFBased() && kind != KindTIFF {
		return Classification{Kind: kind, Confidence: ConfidenceWeak}, true
	}

	return Classification{Kind: KindTIFF, Confidence: ConfidenceStrong}, true
}

type ifd0Peek struct {
	make           string
	compression    uint32
	hasCompression bool
	dng            bool
}

// peekIFD0 reads just enough of the primary directory to expose the maker
// string and the fields the RAW rules key on. The prefix is typically a
// truncated view of the file, so missing values are expected and ignored.
func peekIFD0(prefix []byte) ifd0Peek {
	var peek ifd0Peek

	p, err := tiff.NewParser(prefix)
	if err != nil {
		return peek
	}
	p.WithFilter(entry.Make, entry.Compression, entry.DNGVersion)

	dir, _ := p.ParseDirectory(p.FirstOffset(), tiff.GroupIfd0)

	if e, ok := dir.Find(entry.Make); ok {
		if text, err := e.Text(); err == nil {
			peek.make = text
		}
	}
	if e, ok := dir.Find(entry.Compression); ok {
		if v, err := e.Uint(0); err == nil {
			peek.compression = v
			peek.hasCompression = true
		}
	}
	if _, ok := dir.Find(entry.DNGVersion); ok {
		peek.dng = true
	}

	return peek
}

// classifyWeak accepts signatures too generic to trust on their own. They
// need a structural check and an agreeing extension hint.
func classifyWeak(prefix []byte, hint string) (Classification, bool) {
	if hint == "MP3" && isMP3(prefix) {
		return Classification{Kind: KindMP3, Confidence: ConfidenceWeak}, true
	}
	if hint == "AAC" && isADTS(prefix) {
		return Classification{Kind: KindAAC, Confidence: ConfidenceWeak}, true
	}
	return Classification{}, false
}

// isMP3 accepts an ID3 tag or a frame header whose sync, version and layer
// bits are all valid. The two-byte sync pattern alone matches far too much
// random binary data.
func isMP3(prefix []byte) bool {
	if bytes.HasPrefix(prefix, []byte("ID3")) {
		return true
	}
	if len(prefix) < 2 || prefix[0] != 0xff || prefix[1]&0xe0 != 0xe0 {
		return false
	}
	version := (prefix[1] >> 3) & 0x3
	layer := (prefix[1] >> 1) & 0x3
	return version != 1 && layer != 0
}

// isADTS accepts an ADTS frame header: twelve sync bits, the layer field
// that is always zero for AAC, and a defined sampling frequency index. An
// MPEG audio frame never passes (its layer field is nonzero), and vice
// versa.
func isADTS(prefix []byte) bool {
	if len(prefix) < 4 || prefix[0] != 0xFF || prefix[1]&0xF0 != 0xF0 {
		return false
	}
	if prefix[1]&0x06 != 0 {
		return false
	}
	return (prefix[2]>>2)&0x0F != 0x0F
}

// scanEmbedded is the last-ditch rule: some files hide a valid image after
// a foreign header. The returned base offset points at the recovered
// signature.
func scanEmbedded(prefix []byte) (Classification, bool) {
	if pos := bytes.Index(prefix, []byte{0xff, 0xd8, 0xff}); pos > 0 {
		return Classification{Kind: KindJPEG, BaseOffset: uint32(pos), Confidence: ConfidenceWeak}, true
	}

	le := bytes.Index(prefix, []byte("II*\x00"))
	be := bytes.Index(prefix, []byte("MM\x00*"))
	pos := le
	if pos < 0 || (be >= 0 && be < pos) {
		pos = be
	}
	if pos > 0 {
		return Classification{Kind: KindTIFF, BaseOffset: uint32(pos), Confidence: ConfidenceWeak}, true
	}

	return Classification{}, false
}

var extensionKinds = map[string]Kind{
	"JPEG": KindJPEG,
	"PNG":  KindPNG,
	"GIF":  KindGIF,
	"BMP":  KindBMP,
	"PSD":  KindPSD,
	"FLAC": KindFLAC,
	"OGG":  KindOGG,
	"MP3":  KindMP3,
	"AAC":  KindAAC,
	"AIFF": KindAIFF,
	"GZ":   KindGZIP,
	"ZIP":  KindZIP,
	"WAV":  KindWAV,
	"AVI":  KindAVI,
	"WEBP": KindWEBP,
	"HEIC": KindHEIC,
	"HEIF": KindHEIF,
	"AVIF": KindAVIF,
	"CR3":  KindCR3,
	"MOV":  KindMOV,
	"MP4":  KindMP4,
	"3GP":  Kind3GP,
	"3G2":  Kind3G2,
	"TIFF": KindTIFF,
	"DNG":  KindDNG,
	"CR2":  KindCR2,
	"NEF":  KindNEF,
	"NRW":  KindNRW,
	"ARW":  KindARW,
	"PEF":  KindPEF,
	"3FR":  Kind3FR,
	"IIQ":  KindIIQ,
	"ERF":  KindERF,
	"RW2":  KindRW2,
	"ORF":  KindORF,
}

// normalizeExt folds an extension hint into the canonical uppercase type
// name, resolving the historical aliases.
func normalizeExt(ext string) string {
	ext = strings.ToUpper(strings.TrimPrefix(ext, "."))
	switch ext {
	case "TIF":
		return "TIFF"
	case "JPG", "JPE":
		return "JPEG"
	case "3GP2":
		return "3G2"
	case "AIF":
		return "AIFF"
	case "HIF":
		return "HEIF"
	}
	return ext
}
