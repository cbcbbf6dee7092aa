// Package maker decodes manufacturer-specific "maker note" regions. Each
// supported vendor family is described by a data-only Variant: how its
// region announces itself, what the offsets inside it are relative to,
// which byte order applies, and which of its tags hide sub-directories or
// fixed-layout records. Adding a vendor means adding a Variant, not new
// control flow.
package maker

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/fedragon/exif-parser/tiff"
	"github.com/fedragon/exif-parser/tiff/entry"
)

// BaseRule determines what directory offsets inside a note are relative to.
// Picking the wrong one reads valid-looking values from the wrong bytes,
// which is why it is part of the per-vendor data rather than a global.
type BaseRule uint8

const (
	// BaseOuter resolves offsets against the outer TIFF header, the way
	// standard EXIF offsets work.
	BaseOuter BaseRule = iota
	// BaseRegion resolves offsets against the start of the note region.
	BaseRegion
	// BaseEmbedded means the region carries its own TIFF header and offsets
	// are relative to it.
	BaseEmbedded
)

// OrderRule determines the byte order of the note's directory.
type OrderRule uint8

const (
	// OrderOuter reuses the outer directory's byte order.
	OrderOuter OrderRule = iota
	// OrderLittle is fixed little-endian regardless of the outer order.
	OrderLittle
	// OrderMarker reads an II/MM pair at a fixed position in the region
	// header.
	OrderMarker
	// OrderEmbedded takes the byte order from the embedded TIFF header.
	OrderEmbedded
	// OrderDetect compares the entry count read both ways and keeps the
	// plausible one. Some vendors are simply inconsistent across models.
	OrderDetect
)

// Signature is one way a vendor introduces its region. Variants list theirs
// in order of preference; an empty Prefix matches anything and usually
// closes the list as the bare-directory fallback.
type Signature struct {
	Prefix    []byte
	DirOffset uint32 // where the directory, embedded header or record starts
	Base      BaseRule
	Order     OrderRule
	MarkerAt  int  // OrderMarker: position of the II/MM pair
	SkipNext  bool // directory has no trailing next-IFD pointer

	// DirOffsetAt, when positive, is the position of a 32-bit pointer inside
	// the region that holds the real directory offset; DirOffset is ignored
	// then. Fujifilm stores its directory position this way.
	DirOffsetAt int

	// RecordName and Layout turn the signature into a record-shaped decode:
	// the region is a single fixed-layout record, not a directory.
	RecordName string
	Layout     []RecordField
}

// Variant describes one vendor family.
type Variant struct {
	Name       string
	Match      []string // case-insensitive substrings matched against the make string
	Signatures []Signature

	// SubIFDs are the vendor's own sub-directory pointer tags. They are only
	// followed when the target plausibly is a directory, because the same
	// tag can hold an opaque blob in older models.
	SubIFDs map[entry.ID]tiff.Group

	// Records maps directory tags whose value is a packed binary record to
	// the table that decodes it.
	Records map[entry.ID]Record

	// Enciphered reports tags whose value bytes are scrambled; Decipher
	// restores them. Deciphering runs on the parsed entries before record
	// decoding, so the records see plain bytes. Sony is the only vendor
	// that needs this.
	Enciphered func(entry.ID) bool
	Decipher   func([]byte) []byte

	// TrimTrailer strips an 8-byte TIFF-header-shaped trailer from the
	// region before parsing and, when the trailer's recorded position
	// disagrees with where the region actually sits, shifts the offset base
	// by the difference. Canon writes this trailer; editors that move the
	// note without rewriting it are the reason the shift matters.
	TrimTrailer bool
}

// Input carries everything a dispatch needs. Buf and Pos locate the region
// inside the outer buffer so that outer-relative offsets can be resolved;
// when Buf is nil those vendors degrade to region-relative parsing.
type Input struct {
	Make   string
	Region []byte
	Buf    []byte
	Pos    int64  // absolute position of Region within Buf
	Base   uint32 // the outer parser's base within Buf
	Order  binary.ByteOrder

	Table    tiff.Table // nil for the default table
	MaxDepth int        // 0 for the default depth
}

// Note is the outcome of a dispatch. The raw region is always retained in
// Opaque, whatever else could be decoded; an unsupported vendor yields a
// Note with only Opaque set.
type Note struct {
	Vendor  string
	Dir     *tiff.Directory
	Records map[string]tiff.Entry
	Opaque  []byte
}

// Dispatch matches the make string against variants (the default registry
// when nil) and decodes the region by the matched variant's rules. The
// returned error accumulates non-fatal warnings; an unknown vendor is not
// a warning, the region is simply kept opaque.
func Dispatch(in Input, variants []Variant) (*Note, error) {
	note := &Note{Opaque: in.Region}
	if len(in.Region) == 0 {
		return note, nil
	}
	if in.Order == nil {
		in.Order = binary.LittleEndian
	}
	if variants == nil {
		variants = DefaultRegistry
	}

	variant, ok := matchVariant(in.Make, variants)
	if !ok {
		return note, nil
	}

	sig, ok := variant.signature(in.Region)
	if !ok {
		return note, fmt.Errorf("%w: %s maker note has an unrecognized signature", tiff.ErrUnsupportedVariant, variant.Name)
	}

	region := in.Region
	baseFix := int64(0)
	if variant.TrimTrailer {
		region, baseFix = trimTrailer(in, region)
	}
	if int64(sig.DirOffset) >= int64(len(region)) {
		return note, fmt.Errorf("%w: %s maker note is shorter than its own header", tiff.ErrMalformed, variant.Name)
	}

	if sig.Layout != nil {
		note.Vendor = variant.Name
		rec := Record{Name: sig.RecordName, Fields: sig.Layout}
		fields := rec.Decode(entry.MakerNote, region, in.Order)
		if len(fields) > 0 {
			note.Records = fields
		}
		return note, shortRecordWarning(rec, len(fields))
	}

	dir, err := parseDirectory(in, variant, sig, region, baseFix)
	if dir == nil {
		return note, err
	}

	note.Vendor = variant.Name
	note.Dir = dir

	if variant.Enciphered != nil && variant.Decipher != nil {
		decipherEntries(dir, variant.Enciphered, variant.Decipher)
	}

	records, recordErr := decodeRecords(variant, dir)
	note.Records = records
	if recordErr != nil {
		err = multierror.Append(err, recordErr)
	}
	return note, err
}

func matchVariant(make string, variants []Variant) (Variant, bool) {
	lower := strings.ToLower(make)
	for _, v := range variants {
		for _, m := range v.Match {
			if strings.Contains(lower, m) {
				return v, true
			}
		}
	}
	return Variant{}, false
}

func (v Variant) signature(region []byte) (Signature, bool) {
	for _, sig := range v.Signatures {
		if bytes.HasPrefix(region, sig.Prefix) {
			return sig, true
		}
	}
	return Signature{}, false
}

// trailer is the tail-anchored layout of Canon's 8-byte footer: a byte
// order marker, the TIFF magic, and the offset the note was originally
// written at.
var trailer = Record{Name: "Trailer", Fields: []RecordField{
	{Name: "Order", Offset: -8, Type: entry.DataType_UByte_Sequence, Count: 2},
	{Name: "NoteOffset", Offset: -4, Type: entry.DataType_ULong, Count: 1},
}}

func trimTrailer(in Input, region []byte) ([]byte, int64) {
	fields := trailer.Decode(entry.MakerNote, region, binary.LittleEndian)
	marker, ok := fields["Trailer.Order"]
	if !ok {
		return region, 0
	}

	var order binary.ByteOrder
	switch {
	case bytes.Equal(marker.Data, []byte("II")):
		order = binary.LittleEndian
	case bytes.Equal(marker.Data, []byte("MM")):
		order = binary.BigEndian
	default:
		return region, 0
	}
	if order.Uint16(region[len(region)-6:]) != tiff.MagicNumberBigEndian {
		return region, 0
	}

	var fix int64
	offsetField := trailer.Decode(entry.MakerNote, region, order)["Trailer.NoteOffset"]
	if stored, err := offsetField.Uint(0); err == nil && stored != 0 {
		actual := in.Pos - int64(in.Base)
		if int64(stored) != actual {
			fix = actual - int64(stored)
		}
	}

	return region[:len(region)-8], fix
}

func parseDirectory(in Input, v Variant, sig Signature, region []byte, baseFix int64) (*tiff.Directory, error) {
	base := sig.Base
	if base == BaseOuter && in.Buf == nil {
		base = BaseRegion
	}

	var p *tiff.Parser
	var offset uint32

	if base == BaseEmbedded {
		embedded, err := tiff.NewParser(region[sig.DirOffset:])
		if err != nil {
			return nil, fmt.Errorf("%w: %s maker note declares an embedded header it does not have: %v",
				tiff.ErrUnsupportedVariant, v.Name, err)
		}
		p = embedded
		offset = p.FirstOffset()
	} else {
		probe := int64(sig.DirOffset)
		buf := region
		if base == BaseOuter {
			probe += in.Pos
			buf = in.Buf
		}
		order, err := noteOrder(in, sig, buf, probe)
		if err != nil {
			return nil, err
		}

		dirOffset := sig.DirOffset
		if sig.DirOffsetAt > 0 {
			if sig.DirOffsetAt+4 > len(region) {
				return nil, fmt.Errorf("%w: %s maker note is shorter than its directory pointer", tiff.ErrMalformed, v.Name)
			}
			dirOffset = order.Uint32(region[sig.DirOffsetAt:])
		}

		if base == BaseRegion {
			p = tiff.NewBareParser(region, 0, order)
			offset = dirOffset
		} else {
			outerBase := int64(in.Base) + baseFix
			p = tiff.NewBareParser(in.Buf, outerBase, order)
			offset = uint32(in.Pos + int64(dirOffset) - outerBase)
		}
	}

	p.WithSubIFDs(v.SubIFDs).WithTable(in.Table).WithMaxDepth(in.MaxDepth)
	if sig.SkipNext {
		p.WithoutNextPointer()
	}

	dir, warns := p.ParseDirectory(offset, tiff.GroupMakerNote)
	return dir, warns
}

// noteOrder resolves the byte order for a directory starting at pos within
// buf, according to the signature's rule.
func noteOrder(in Input, sig Signature, buf []byte, pos int64) (binary.ByteOrder, error) {
	switch sig.Order {
	case OrderLittle:
		return binary.LittleEndian, nil
	case OrderMarker:
		if sig.MarkerAt+2 > len(in.Region) {
			return nil, fmt.Errorf("%w: maker note is too short for its byte-order marker", tiff.ErrMalformed)
		}
		switch string(in.Region[sig.MarkerAt : sig.MarkerAt+2]) {
		case "II":
			return binary.LittleEndian, nil
		case "MM":
			return binary.BigEndian, nil
		}
		return nil, fmt.Errorf("%w: maker note byte-order marker is neither II nor MM", tiff.ErrUnsupportedVariant)
	case OrderDetect:
		return detectOrder(buf, pos, in.Order), nil
	default:
		return in.Order, nil
	}
}

// detectOrder reads the entry count both ways and keeps the interpretation
// that fits the space after it, preferring the smaller count when both do.
func detectOrder(buf []byte, pos int64, fallback binary.ByteOrder) binary.ByteOrder {
	if pos < 0 || pos+2 > int64(len(buf)) {
		return fallback
	}
	le := binary.LittleEndian.Uint16(buf[pos:])
	be := binary.BigEndian.Uint16(buf[pos:])
	space := (int64(len(buf)) - pos - 2) / entry.Size

	leFits := le > 0 && int64(le) <= space
	beFits := be > 0 && int64(be) <= space
	switch {
	case leFits && !beFits:
		return binary.LittleEndian
	case beFits && !leFits:
		return binary.BigEndian
	case leFits && beFits:
		if le <= be {
			return binary.LittleEndian
		}
		return binary.BigEndian
	}
	return fallback
}

func decipherEntries(dir *tiff.Directory, enciphered func(entry.ID) bool, decipher func([]byte) []byte) {
	for i := range dir.Entries {
		if enciphered(dir.Entries[i].ID) {
			dir.Entries[i].Data = decipher(dir.Entries[i].Data)
		}
	}
	for _, sub := range dir.SubIFDs {
		decipherEntries(sub, enciphered, decipher)
	}
}

func decodeRecords(v Variant, dir *tiff.Directory) (map[string]tiff.Entry, error) {
	if len(v.Records) == 0 {
		return nil, nil
	}
	out := map[string]tiff.Entry{}
	var warns *multierror.Error
	for id, rec := range v.Records {
		e, ok := dir.Find(id)
		if !ok {
			continue
		}
		fields := rec.Decode(id, e.Data, e.Order)
		if w := shortRecordWarning(rec, len(fields)); w != nil {
			warns = multierror.Append(warns, w)
		}
		for name, field := range fields {
			out[name] = field
		}
	}
	if len(out) == 0 {
		out = nil
	}
	return out, warns.ErrorOrNil()
}

// shortRecordWarning reports fields lost to a record shorter than its
// layout. Records legitimately grow across camera generations, so this is
// a warning about missing fields, not a decode failure.
func shortRecordWarning(rec Record, decoded int) error {
	if decoded >= len(rec.Fields) {
		return nil
	}
	return fmt.Errorf("%w: %s record holds %d of %d fields, the rest fall outside it",
		tiff.ErrMalformed, rec.Name, decoded, len(rec.Fields))
}
