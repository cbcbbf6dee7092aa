package exif

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/fedragon/exif-parser/tiff"
)

const (
	markerPrefix = 0xFF
	markerTEM    = 0x01
	markerSOI    = 0xD8
	markerRST0   = 0xD0
	markerRST7   = 0xD7
	markerEOI    = 0xD9
	markerSOS    = 0xDA
	markerAPP1   = 0xE1
)

// exifHeader opens the APP1 payload that carries a TIFF block. Other APP1
// payloads (XMP most commonly) start differently and are skipped.
var exifHeader = []byte("Exif\x00\x00")

// exifSegment walks the JPEG segment list starting at the image marker and
// returns the position of the TIFF header inside the Exif APP1 segment.
// The walk stops at the entropy-coded data: segments after it cannot be
// located without decoding the image itself.
func exifSegment(buf []byte, soi uint32) (uint32, error) {
	pos := int64(soi)
	if pos+2 > int64(len(buf)) || buf[pos] != markerPrefix || buf[pos+1] != markerSOI {
		return 0, fmt.Errorf("%w: no image start marker at %d", tiff.ErrMalformed, pos)
	}
	pos += 2
	for pos+4 <= int64(len(buf)) {
		if buf[pos] != markerPrefix {
			return 0, fmt.Errorf("%w: segment stream desynchronized at %d", tiff.ErrMalformed, pos)
		}
		marker := buf[pos+1]
		switch {
		case marker == markerPrefix:
			// fill byte before the real marker
			pos++
			continue
		case marker == markerSOS || marker == markerEOI:
			return 0, errors.New("jpeg carries no Exif segment")
		case marker == markerTEM || (marker >= markerRST0 && marker <= markerRST7):
			// standalone markers carry no length
			pos += 2
			continue
		}
		length := int64(binary.BigEndian.Uint16(buf[pos+2:]))
		if length < 2 || pos+2+length > int64(len(buf)) {
			return 0, fmt.Errorf("%w: segment 0x%02X at %d claims %d bytes beyond the buffer", tiff.ErrMalformed, marker, pos, length)
		}
		if marker == markerAPP1 && bytes.HasPrefix(buf[pos+4:pos+2+length], exifHeader) {
			return uint32(pos) + 4 + uint32(len(exifHeader)), nil
		}
		pos += 2 + length
	}
	return 0, errors.New("jpeg carries no Exif segment")
}
