package exif

import (
	"github.com/fedragon/exif-parser/tiff"
	"github.com/fedragon/exif-parser/tiff/entry"
)

// PayloadBase selects what a payload's stored offset is relative to. The
// rule depends on the container the directory came from, not on the tags,
// and mixing them up reads plausible garbage instead of failing loudly.
type PayloadBase uint8

const (
	// BaseFileStart resolves offsets against the start of the buffer.
	BaseFileStart PayloadBase = iota
	// BaseContainer resolves offsets against the TIFF header, wherever the
	// container put it. For a standalone TIFF file the two coincide; for a
	// JPEG-wrapped block they do not.
	BaseContainer
	// BaseMarker resolves offsets against a caller-supplied position, the
	// way multi-picture segments anchor to their own marker.
	BaseMarker
)

// PayloadDescriptor names the offset/length tag pair that bounds a binary
// payload and the base rule to resolve the offset with.
type PayloadDescriptor struct {
	OffsetID entry.ID
	LengthID entry.ID
	Group    tiff.Group
	Base     PayloadBase
	Marker   int64 // BaseMarker only: the anchor position within the buffer

	// JPEG requires the extracted bytes to look like a compressed image:
	// start marker first, end marker within bounded trailing padding.
	JPEG bool
}

// Thumbnail bounds the compressed preview conventionally stored in the
// second directory of the chain.
var Thumbnail = PayloadDescriptor{
	OffsetID: entry.ThumbnailOffset,
	LengthID: entry.ThumbnailLength,
	Group:    tiff.GroupIfd1,
	Base:     BaseContainer,
	JPEG:     true,
}

// PreviewStrip bounds the primary directory's image data when it is stored
// as a single strip, the common layout for embedded RAW previews.
var PreviewStrip = PayloadDescriptor{
	OffsetID: entry.StripOffsets,
	LengthID: entry.StripByteCounts,
	Group:    tiff.GroupIfd0,
	Base:     BaseContainer,
}

// trailingPadLimit bounds how far before the payload end the closing image
// marker may sit. Writers round payload lengths up and pad with zeros.
const trailingPadLimit = 64

// Payload extracts the byte slice bounded by a descriptor's offset/length
// pair. Any unresolvable or out-of-range reference yields nil rather than
// an error: absence of a payload is an ordinary outcome, not a defect.
func (r *Result) Payload(desc PayloadDescriptor) []byte {
	offset, err := r.UintValue(desc.Group, desc.OffsetID)
	if err != nil {
		return nil
	}
	length, err := r.UintValue(desc.Group, desc.LengthID)
	if err != nil || length == 0 {
		return nil
	}

	var base int64
	switch desc.Base {
	case BaseContainer:
		base = int64(r.base)
	case BaseMarker:
		base = desc.Marker
	}
	start := base + int64(offset)
	end := start + int64(length)
	if start < 0 || end > int64(len(r.buf)) || start >= end {
		return nil
	}
	data := r.buf[start:end]
	if desc.JPEG && !jpegShaped(data) {
		return nil
	}
	return data
}

// jpegShaped reports whether data looks like a complete compressed image:
// the start marker up front and the end marker no further than the padding
// allowance from the end.
func jpegShaped(data []byte) bool {
	if len(data) < 4 || data[0] != markerPrefix || data[1] != markerSOI {
		return false
	}
	floor := len(data) - 2 - trailingPadLimit
	if floor < 0 {
		floor = 0
	}
	for i := len(data) - 2; i >= floor; i-- {
		if data[i] == markerPrefix && data[i+1] == markerEOI {
			return true
		}
	}
	return false
}

// Thumbnail returns the embedded preview image and its compression code
// (6 is a compressed image, 1 uncompressed strips). Files that predate the
// offset/length pair store the thumbnail as strip data instead; both
// layouts are tried. A missing thumbnail yields nil bytes.
func (r *Result) Thumbnail() ([]byte, uint32) {
	compression, err := r.UintValue(tiff.GroupIfd1, entry.Compression)
	if err != nil {
		compression = 0
	}
	if data := r.Payload(Thumbnail); data != nil {
		return data, compression
	}
	strips := PayloadDescriptor{
		OffsetID: entry.StripOffsets,
		LengthID: entry.StripByteCounts,
		Group:    tiff.GroupIfd1,
		Base:     BaseContainer,
	}
	return r.Payload(strips), compression
}
