package exif

import (
	"encoding/binary"

	"github.com/hashicorp/go-multierror"

	"github.com/fedragon/exif-parser/detect"
	"github.com/fedragon/exif-parser/maker"
	"github.com/fedragon/exif-parser/tiff"
	"github.com/fedragon/exif-parser/tiff/entry"
)

// Result is the merged outcome of one Parse call. Tags collects every
// decoded entry keyed by (group, id), so identical numeric ids from
// different directories never collide. Warnings accumulates everything
// non-fatal that happened along the way; a Result with warnings still
// holds all the data that could be salvaged.
type Result struct {
	Classification detect.Classification
	Order          binary.ByteOrder
	Tags           map[tiff.Key]tiff.Entry
	Records        map[string]tiff.Entry
	MakerNote      *maker.Note
	Warnings       error

	buf  []byte
	base uint32 // position of the TIFF header inside buf
}

func newResult(c detect.Classification, buf []byte) *Result {
	return &Result{
		Classification: c,
		Tags:           map[tiff.Key]tiff.Entry{},
		Records:        map[string]tiff.Entry{},
		buf:            buf,
	}
}

func (r *Result) warn(err error) {
	if err != nil {
		r.Warnings = multierror.Append(r.Warnings, err)
	}
}

// merge folds a directory and its sub-directories into Tags. The first
// entry decoded for a key wins; later duplicates are dropped so that a
// directory reached twice through a defective chain cannot overwrite data.
func (r *Result) merge(dir *tiff.Directory) {
	if dir == nil {
		return
	}
	for _, e := range dir.Entries {
		k := tiff.Key{Group: e.Group, ID: e.ID}
		if _, dup := r.Tags[k]; !dup {
			r.Tags[k] = e
		}
	}
	for _, sub := range dir.SubIFDs {
		r.merge(sub)
	}
}

func (r *Result) mergeNote(note *maker.Note) {
	if note == nil {
		return
	}
	r.MakerNote = note
	r.merge(note.Dir)
	for name, e := range note.Records {
		if _, dup := r.Records[name]; !dup {
			r.Records[name] = e
		}
	}
}

// Find returns the entry stored under a group and id, if any.
func (r *Result) Find(group tiff.Group, id entry.ID) (tiff.Entry, bool) {
	e, ok := r.Tags[tiff.Key{Group: group, ID: id}]
	return e, ok
}

// Lookup finds an entry by id alone, resolving the group through the
// conventional location of well-known tags.
func (r *Result) Lookup(id entry.ID) (tiff.Entry, bool) {
	group, ok := tiff.Defaults[id]
	if !ok {
		return tiff.Entry{}, false
	}
	return r.Find(group, id)
}

// UintValue returns the first value of an entry as an unsigned 32-bit
// integer, coercing across whatever width the file stored. Real files mix
// byte, short and long encodings for the same logical field.
func (r *Result) UintValue(group tiff.Group, id entry.ID) (uint32, error) {
	e, ok := r.Find(group, id)
	if !ok {
		return 0, tiff.NotFound(group, id)
	}
	return e.Uint(0)
}

// Text returns an entry's value as a string, tolerating a missing
// terminator and Undefined-typed storage.
func (r *Result) Text(group tiff.Group, id entry.ID) (string, error) {
	e, ok := r.Find(group, id)
	if !ok {
		return "", tiff.NotFound(group, id)
	}
	return e.Text()
}

// Bytes returns an entry's raw value bytes.
func (r *Result) Bytes(group tiff.Group, id entry.ID) ([]byte, error) {
	e, ok := r.Find(group, id)
	if !ok {
		return nil, tiff.NotFound(group, id)
	}
	return e.Bytes(), nil
}
