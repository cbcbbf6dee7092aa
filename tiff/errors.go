package tiff

import (
	"errors"
	"fmt"

	"github.com/fedragon/exif-parser/tiff/entry"
)

// Sentinel errors for the non-fatal defect classes recorded while parsing.
// They are wrapped with positional detail and accumulated into the warning
// list of the directory being parsed; none of them aborts a parse.
var (
	// ErrMalformed marks a structurally invalid entry or region: truncated
	// data, an out-of-bounds value offset, a zero-denominator rational.
	ErrMalformed = errors.New("malformed entry")
	// ErrDepthExceeded marks a sub-directory that was not followed because
	// the recursion limit was reached.
	ErrDepthExceeded = errors.New("directory depth exceeded")
	// ErrCycleDetected marks a directory offset that was already visited
	// during this parse.
	ErrCycleDetected = errors.New("directory cycle detected")
	// ErrUnsupportedVariant marks a maker note whose vendor or signature is
	// not recognized; its bytes are preserved untouched.
	ErrUnsupportedVariant = errors.New("unsupported maker note variant")
)

type ErrNotFound struct {
	message string
}

func (e ErrNotFound) Error() string {
	return e.message
}

// NotFound builds the error returned when a lookup misses: there is no
// entry with the given ID in the given group.
func NotFound(group Group, id entry.ID) ErrNotFound {
	return ErrNotFound{message: fmt.Sprintf("not found: no entry 0x%04X in %s", uint16(id), group)}
}
