package tiff

import (
	"encoding/binary"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/fedragon/exif-parser/tiff/entry"
)

// DefaultMaxDepth bounds sub-directory recursion. Conformant files nest two
// or three levels; anything deeper is either exotic or adversarial.
const DefaultMaxDepth = 8

// Directory is a parsed IFD: its entries, the sub-directories reached
// through its structural pointer tags, and the offset of the next directory
// in its chain (0 when the chain ends). A Directory is created by one parse
// call and never mutated afterwards.
type Directory struct {
	Group      Group
	Order      binary.ByteOrder
	Offset     uint32 // where this directory was parsed, relative to the parser's base
	Entries    []Entry
	SubIFDs    []*Directory
	NextOffset uint32

	// MakerNotePos is the absolute buffer position of the maker note region
	// when this directory contains one (-1 otherwise). The region itself is
	// kept as an Undefined entry; a dispatcher decodes it separately because
	// vendor offset rules need the position, not just the bytes.
	MakerNotePos int64
}

// Find returns the entry with the given ID, if the directory holds one.
func (d *Directory) Find(id entry.ID) (Entry, bool) {
	for _, e := range d.Entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Parser reads IFDs out of a byte buffer. It never panics on malformed
// input: defective entries are skipped and recorded as warnings, and a
// parse always returns whatever could be decoded.
//
// A Parser is not safe for concurrent use; independent traversals over the
// same buffer should each use their own Parser.
type Parser struct {
	data        []byte
	base        int64 // directory and value offsets are relative to this
	order       binary.ByteOrder
	firstOffset uint32
	table       Table
	filter      *wanted
	subIFDs     map[entry.ID]Group // vendor extensions to the structural pointer set
	maxDepth    int
	skipNext    bool
	log         zerolog.Logger

	visited  map[int64]struct{}
	warnings *multierror.Error
}

// NewParser validates the TIFF header at the start of buf and returns a
// parser whose offsets are relative to it.
func NewParser(buf []byte) (*Parser, error) {
	return NewParserAt(buf, 0)
}

// NewParserAt validates a TIFF header located at base within buf. Wrapped
// containers (e.g. a JPEG APP1 segment) embed the header mid-buffer and
// resolve all directory offsets relative to it.
func NewParserAt(buf []byte, base uint32) (*Parser, error) {
	if int64(base) >= int64(len(buf)) {
		return nil, fmt.Errorf("%w: header offset %d beyond buffer", ErrMalformed, base)
	}
	header, err := ReadHeader(buf[base:])
	if err != nil {
		return nil, err
	}
	p := newParser(buf, int64(base), header.Order)
	p.firstOffset = header.FirstOffset
	return p, nil
}

// NewBareParser returns a parser for a region that starts directly with an
// IFD, without any header. Maker notes are the usual case: the byte order
// and base come from vendor rules rather than from the region itself, and
// the base may even be negative when a vendor's offsets assume the region
// sits somewhere it does not.
func NewBareParser(buf []byte, base int64, order binary.ByteOrder) *Parser {
	return newParser(buf, base, order)
}

func newParser(buf []byte, base int64, order binary.ByteOrder) *Parser {
	return &Parser{
		data:     buf,
		base:     base,
		order:    order,
		table:    DefaultTable,
		maxDepth: DefaultMaxDepth,
		log:      zerolog.Nop(),
		visited:  map[int64]struct{}{},
	}
}

// FirstOffset returns the offset of IFD #0 as declared by the header, or 0
// for bare parsers.
func (p *Parser) FirstOffset() uint32 {
	return p.firstOffset
}

// Order returns the byte order every read goes through.
func (p *Parser) Order() binary.ByteOrder {
	return p.order
}

// WithTable replaces the default tag table.
func (p *Parser) WithTable(t Table) *Parser {
	if t != nil {
		p.table = t
	}
	return p
}

// WithLogger attaches a logger; the default discards everything.
func (p *Parser) WithLogger(log zerolog.Logger) *Parser {
	p.log = log
	return p
}

// WithMaxDepth bounds sub-directory recursion.
func (p *Parser) WithMaxDepth(depth int) *Parser {
	if depth > 0 {
		p.maxDepth = depth
	}
	return p
}

// WithFilter restricts collection to the given IDs. Structural pointers are
// still followed, but scanning stops early once the highest wanted ID has
// been passed: entries are written in ascending ID order in conformant
// files, so there is no point in looking further.
func (p *Parser) WithFilter(ids ...entry.ID) *Parser {
	p.filter = newWanted(ids...)
	return p
}

// WithSubIFDs extends the structural pointer set with vendor-specific tags,
// e.g. a maker note's own sub-directory pointers.
func (p *Parser) WithSubIFDs(pointers map[entry.ID]Group) *Parser {
	p.subIFDs = pointers
	return p
}

// WithVisited marks directory offsets as already parsed, so a traversal
// that starts elsewhere in the same buffer cycle-detects instead of
// re-reading them. Independent parsers share no other state.
func (p *Parser) WithVisited(offsets ...uint32) *Parser {
	for _, off := range offsets {
		p.visited[p.base+int64(off)] = struct{}{}
	}
	return p
}

// WithoutNextPointer declares that directories in this buffer end after
// their last entry, with no trailing next-IFD pointer. Some vendor regions
// (Panasonic, Sony) are laid out this way and reading four bytes past the
// entries would misinterpret unrelated data.
func (p *Parser) WithoutNextPointer() *Parser {
	p.skipNext = true
	return p
}

// ParseDirectory parses the IFD at offset (relative to the parser's base)
// and everything reachable from it. It returns as much as could be decoded
// even when the returned error is non-nil: the error accumulates the
// non-fatal defects encountered along the way and callers are expected to
// treat it as a warning list.
func (p *Parser) ParseDirectory(offset uint32, group Group) (*Directory, error) {
	p.warnings = nil
	dir := p.parseDir(offset, group, p.maxDepth)
	return dir, p.warnings.ErrorOrNil()
}

func (p *Parser) warn(err error) {
	p.warnings = multierror.Append(p.warnings, err)
}

func (p *Parser) parseDir(offset uint32, group Group, depth int) *Directory {
	dir := &Directory{Group: group, Order: p.order, Offset: offset, MakerNotePos: -1}
	pos := p.base + int64(offset)
	size := int64(len(p.data))

	if _, seen := p.visited[pos]; seen {
		p.warn(fmt.Errorf("%w: %s IFD at %d was already parsed", ErrCycleDetected, group, pos))
		return dir
	}
	p.visited[pos] = struct{}{}

	if pos < 0 || pos+2 > size {
		p.warn(fmt.Errorf("%w: cannot read %s IFD entry count at %d", ErrMalformed, group, pos))
		return dir
	}

	count := int64(p.order.Uint16(p.data[pos:]))
	p.log.Debug().Stringer("group", group).Int64("pos", pos).Int64("entries", count).Msg("parsing directory")

	// An implausible entry count must not make us read (or allocate) past
	// the buffer: cap it to what actually fits and keep going.
	readNext := true
	if pos+2+count*entry.Size > size {
		capped := (size - pos - 2) / entry.Size
		if capped < 0 {
			capped = 0
		}
		p.warn(fmt.Errorf("%w: %s IFD at %d declares %d entries but only %d fit the buffer", ErrMalformed, group, pos, count, capped))
		count = capped
		readNext = false
	}

	dir.Entries = make([]Entry, 0, count)
	for i := int64(0); i < count; i++ {
		id := p.parseEntry(dir, pos+2+i*entry.Size, group, depth)

		// Entries are laid out in ascending ID order, so once the highest
		// wanted ID has been passed nothing further can match.
		if !p.filter.Empty() && id >= p.filter.Max() {
			break
		}
	}

	if readNext && !p.skipNext {
		dir.NextOffset = p.readNextOffset(pos+2+count*entry.Size, group)
	}

	return dir
}

// readNextOffset reads and normalizes the trailing next-IFD pointer. Zero
// and all-ones both terminate a chain; so does a pointer outside the buffer.
func (p *Parser) readNextOffset(pos int64, group Group) uint32 {
	if pos+4 > int64(len(p.data)) {
		return 0
	}
	next := p.order.Uint32(p.data[pos:])
	if next == 0 || next == NoNextIFD {
		return 0
	}
	if p.base+int64(next) >= int64(len(p.data)) {
		p.warn(fmt.Errorf("%w: next pointer of %s IFD points at %d, beyond the buffer", ErrMalformed, group, next))
		return 0
	}
	return next
}

func (p *Parser) parseEntry(dir *Directory, pos int64, group Group, depth int) entry.ID {
	id := entry.ID(p.order.Uint16(p.data[pos:]))
	dataType := entry.DataType(p.order.Uint16(p.data[pos+2:]))
	length := p.order.Uint32(p.data[pos+4:])
	slot := p.data[pos+8 : pos+12]

	// Structural pointers override whatever data type the file or the table
	// declares for their tags, and are followed even under a filter; the
	// wanted IDs may live behind them. Vendor pointer tags are only trusted
	// when the target actually looks like a directory: the same tag ID can
	// hold a plain binary blob in older models.
	if sub, ok := p.subIFDPointer(id, group); ok {
		target := p.order.Uint32(slot)
		if group != GroupMakerNote || p.looksLikeIFD(p.base+int64(target)) {
			dir.Entries = append(dir.Entries, Entry{
				ID: id, DataType: entry.DataType_ULong, Length: 1,
				Data: slot, Group: group, Order: p.order,
			})
			p.recurse(dir, id, target, sub, depth)
			return id
		}
	}

	if !p.filter.Contains(id) {
		return id
	}

	effective := p.effectiveType(id, dataType, group)
	byteSize := uint64(effective.Size()) * uint64(length)

	var data []byte
	if byteSize <= InlineValueSize {
		data = slot[:byteSize]
	} else {
		valueOffset := p.order.Uint32(slot)
		start := p.base + int64(valueOffset)
		if start < 0 || start+int64(byteSize) > int64(len(p.data)) {
			p.warn(fmt.Errorf("%w: skipping entry 0x%04X in %s IFD, %d bytes at offset %d fall outside the buffer",
				ErrMalformed, uint16(id), group, byteSize, valueOffset))
			return id
		}
		data = p.data[start : start+int64(byteSize)]
		if id == entry.MakerNote && group == GroupExif {
			dir.MakerNotePos = start
		}
	}

	e := Entry{ID: id, DataType: effective, Length: length, Data: data, Group: group, Order: p.order}

	if effective.IsRational() {
		p.checkRationals(e, group)
	}

	dir.Entries = append(dir.Entries, e)

	// The sub-image pointer tag holds an array of directory offsets, one per
	// reduced or full-resolution image, so it cannot go through the single-
	// pointer recursion above. RAW files lean on it heavily.
	if id == entry.SubIFDs && (group == GroupIfd0 || group == GroupSubImage) {
		if offsets, err := e.Uints(); err == nil {
			for _, sub := range offsets {
				p.recurse(dir, id, sub, GroupSubImage, depth)
			}
		}
	}
	return id
}

// effectiveType resolves the data type to decode with. The type code found
// in the file governs; a code outside the standard thirteen falls back to
// the table's declared type and, failing that, to an opaque byte sequence.
// Some vendors (notably Olympus) are known to write invalid codes.
func (p *Parser) effectiveType(id entry.ID, dataType entry.DataType, group Group) entry.DataType {
	if dataType.Valid() {
		return dataType
	}
	if def, ok := p.table.Lookup(group, id); ok && def.DataType.Valid() {
		p.log.Debug().Uint16("id", uint16(id)).Uint16("code", uint16(dataType)).Stringer("fallback", def.DataType).Msg("invalid type code, using table declaration")
		return def.DataType
	}
	p.log.Debug().Uint16("id", uint16(id)).Uint16("code", uint16(dataType)).Msg("invalid type code, treating value as raw bytes")
	return entry.DataType_UByte_Sequence
}

func (p *Parser) checkRationals(e Entry, group Group) {
	for i := 0; i < int(e.Length); i++ {
		if len(e.Data) < (i+1)*8 {
			break
		}
		if den := e.Order.Uint32(e.Data[i*8+4:]); den == 0 {
			p.warn(fmt.Errorf("%w: entry 0x%04X in %s IFD holds a zero-denominator rational", ErrMalformed, uint16(e.ID), group))
			break
		}
	}
}

// subIFDPointer reports whether id is a structural sub-directory pointer in
// the given group, and which group the pointed-to directory belongs to.
func (p *Parser) subIFDPointer(id entry.ID, group Group) (Group, bool) {
	switch group {
	case GroupIfd0, GroupIfd1:
		if sub, ok := subIFDPointers[id]; ok && id != entry.Interop {
			return sub, true
		}
	case GroupExif:
		if id == entry.Interop {
			return GroupInterop, true
		}
	case GroupMakerNote:
		if sub, ok := p.subIFDs[id]; ok {
			return sub, true
		}
	}
	return 0, false
}

func (p *Parser) recurse(dir *Directory, id entry.ID, offset uint32, group Group, depth int) {
	if depth <= 1 {
		p.warn(fmt.Errorf("%w: not following the %s pointer of tag 0x%04X", ErrDepthExceeded, group, uint16(id)))
		return
	}
	sub := p.parseDir(offset, group, depth-1)
	dir.SubIFDs = append(dir.SubIFDs, sub)
}

// looksLikeIFD checks whether the bytes at pos are plausibly a directory:
// a nonzero entry count that fits the buffer, with valid data types in the
// first few entries.
func (p *Parser) looksLikeIFD(pos int64) bool {
	if pos < 0 || pos+2 > int64(len(p.data)) {
		return false
	}
	count := int64(p.order.Uint16(p.data[pos:]))
	if count == 0 || pos+2+count*entry.Size > int64(len(p.data)) {
		return false
	}
	probe := count
	if probe > 3 {
		probe = 3
	}
	for i := int64(0); i < probe; i++ {
		dataType := entry.DataType(p.order.Uint16(p.data[pos+2+i*entry.Size+2:]))
		if !dataType.Valid() {
			return false
		}
	}
	return true
}
