package detect

// Kind identifies a container format. The zero value means the prefix
// matched nothing the classifier knows about.
type Kind uint8

const (
	KindUnknown Kind = iota

	KindJPEG
	KindPNG
	KindGIF
	KindBMP
	KindPSD
	KindFLAC
	KindOGG
	KindMP3
	KindAAC
	KindAIFF
	KindGZIP
	KindZIP

	KindWAV
	KindAVI
	KindWEBP

	KindHEIC
	KindHEIF
	KindAVIF
	KindCR3
	KindMOV
	KindMP4
	Kind3GP
	Kind3G2

	KindTIFF
	KindDNG
	KindCR2
	KindNEF
	KindNRW
	KindARW
	KindPEF
	Kind3FR
	KindIIQ
	KindERF
	KindRW2
	KindORF
)

func (k Kind) String() string {
	switch k {
	case KindJPEG:
		return "JPEG"
	case KindPNG:
		return "PNG"
	case KindGIF:
		return "GIF"
	case KindBMP:
		return "BMP"
	case KindPSD:
		return "PSD"
	case KindFLAC:
		return "FLAC"
	case KindOGG:
		return "OGG"
	case KindMP3:
		return "MP3"
	case KindAAC:
		return "AAC"
	case KindAIFF:
		return "AIFF"
	case KindGZIP:
		return "GZIP"
	case KindZIP:
		return "ZIP"
	case KindWAV:
		return "WAV"
	case KindAVI:
		return "AVI"
	case KindWEBP:
		return "WEBP"
	case KindHEIC:
		return "HEIC"
	case KindHEIF:
		return "HEIF"
	case KindAVIF:
		return "AVIF"
	case KindCR3:
		return "CR3"
	case KindMOV:
		return "MOV"
	case KindMP4:
		return "MP4"
	case Kind3GP:
		return "3GP"
	case Kind3G2:
		return "3G2"
	case KindTIFF:
		return "TIFF"
	case KindDNG:
		return "DNG"
	case KindCR2:
		return "CR2"
	case KindNEF:
		return "NEF"
	case KindNRW:
		return "NRW"
	case KindARW:
		return "ARW"
	case KindPEF:
		return "PEF"
	case Kind3FR:
		return "3FR"
	case KindIIQ:
		return "IIQ"
	case KindERF:
		return "ERF"
	case KindRW2:
		return "RW2"
	case KindORF:
		return "ORF"
	default:
		return "unknown"
	}
}

// TIFFBased reports whether the format is a plain byte-order-tagged
// directory file, so that directory parsing can start right at its base
// offset without unwrapping a container first.
func (k Kind) TIFFBased() bool {
	switch k {
	case KindTIFF, KindDNG, KindCR2, KindNEF, KindNRW, KindARW,
		KindPEF, Kind3FR, KindIIQ, KindERF, KindRW2, KindORF:
		return true
	default:
		return false
	}
}

// MIME returns the media type conventionally used for the format, or
// application/octet-stream when there is no better answer.
func (k Kind) MIME() string {
	switch k {
	case KindJPEG:
		return "image/jpeg"
	case KindPNG:
		return "image/png"
	case KindGIF:
		return "image/gif"
	case KindBMP:
		return "image/bmp"
	case KindPSD:
		return "application/vnd.adobe.photoshop"
	case KindFLAC:
		return "audio/flac"
	case KindOGG:
		return "audio/ogg"
	case KindMP3:
		return "audio/mpeg"
	case KindAAC:
		return "audio/aac"
	case KindAIFF:
		return "audio/aiff"
	case KindGZIP:
		return "application/gzip"
	case KindZIP:
		return "application/zip"
	case KindWAV:
		return "audio/x-wav"
	case KindAVI:
		return "video/x-msvideo"
	case KindWEBP:
		return "image/webp"
	case KindHEIC:
		return "image/heic"
	case KindHEIF:
		return "image/heif"
	case KindAVIF:
		return "image/avif"
	case KindCR3:
		return "image/x-canon-cr3"
	case KindMOV:
		return "video/quicktime"
	case KindMP4:
		return "video/mp4"
	case Kind3GP:
		return "video/3gpp"
	case Kind3G2:
		return "video/3gpp2"
	case KindTIFF:
		return "image/tiff"
	case KindDNG:
		return "image/x-adobe-dng"
	case KindCR2:
		return "image/x-canon-cr2"
	case KindNEF:
		return "image/x-nikon-nef"
	case KindNRW:
		return "image/x-nikon-nrw"
	case KindARW:
		return "image/x-sony-arw"
	case KindPEF:
		return "image/x-pentax-pef"
	case Kind3FR:
		return "image/x-hasselblad-3fr"
	case KindIIQ:
		return "image/x-raw"
	case KindERF:
		return "image/x-epson-erf"
	case KindRW2:
		return "image/x-panasonic-rw2"
	case KindORF:
		return "image/x-olympus-orf"
	default:
		return "application/octet-stream"
	}
}

// Confidence expresses how the classification was reached: a Strong match
// comes from an unambiguous byte signature, a Weak one from an extension
// hint or a recovered embedded signature.
type Confidence uint8

const (
	ConfidenceNone Confidence = iota
	ConfidenceWeak
	ConfidenceStrong
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceWeak:
		return "weak"
	case ConfidenceStrong:
		return "strong"
	default:
		return "none"
	}
}
