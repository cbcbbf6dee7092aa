// Package exif ties the pieces together: classify the container, locate
// the TIFF header, parse the directory tree, dispatch the maker note and
// merge everything into one namespaced Result.
package exif

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/fedragon/exif-parser/detect"
	"github.com/fedragon/exif-parser/maker"
	"github.com/fedragon/exif-parser/tiff"
	"github.com/fedragon/exif-parser/tiff/entry"
)

// ErrUnrecognized is the only hard failure Parse returns: nothing in the
// buffer matched a known container. Every defect below that level is
// accumulated as a warning next to a best-effort Result instead.
var ErrUnrecognized = errors.New("unrecognized file format")

// Options tune a Parse call. The zero value is ready to use: built-in tag
// table, default depth limit, built-in vendor registry, sequential
// traversal, no logging.
type Options struct {
	// Table replaces the built-in tag table.
	Table tiff.Table
	// MaxDepth replaces the sub-directory recursion limit.
	MaxDepth int
	// Variants replaces the built-in maker note registry.
	Variants []maker.Variant
	// Logger receives per-entry parse diagnostics.
	Logger *zerolog.Logger
	// Hint is the file extension, if known. Classification consults it only
	// where byte-level rules cannot decide.
	Hint string
	// Concurrent parses the thumbnail chain and the maker note on their own
	// goroutines once the primary directory is done. An optimization only:
	// the two traversals are independent reads and the merge order is fixed
	// either way.
	Concurrent bool
}

// Parse decodes the metadata directories in buf and merges them into a
// single Result. The buffer is never written to and no reference to it
// escapes beyond the returned Result.
func Parse(buf []byte, opts Options) (*Result, error) {
	head := buf
	if len(head) > detect.MagicTestLen {
		head = head[:detect.MagicTestLen]
	}
	c := detect.Classify(head, opts.Hint)
	if c.Kind == detect.KindUnknown {
		return nil, ErrUnrecognized
	}
	r := newResult(c, buf)

	base, err := headerPosition(buf, c)
	if err != nil {
		r.warn(err)
		return r, nil
	}
	r.base = base

	p, err := tiff.NewParserAt(buf, base)
	if err != nil {
		r.warn(err)
		return r, nil
	}
	configure(p, opts)
	r.Order = p.Order()

	ifd0, werr := p.ParseDirectory(p.FirstOffset(), tiff.GroupIfd0)
	r.warn(werr)

	var chain []*tiff.Directory
	var note *maker.Note
	if opts.Concurrent {
		var chainErr, noteErr error
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			q := tiff.NewBareParser(buf, int64(base), p.Order())
			configure(q, opts)
			// A fresh parser does not remember IFD0, so a next pointer
			// looping back there must be marked off up front to keep the
			// result identical to the sequential path.
			q.WithVisited(p.FirstOffset())
			chain, chainErr = thumbnailChain(q, ifd0.NextOffset)
		}()
		go func() {
			defer wg.Done()
			note, noteErr = dispatchMakerNote(buf, base, ifd0, opts)
		}()
		wg.Wait()
		r.warn(chainErr)
		r.warn(noteErr)
	} else {
		chain, werr = thumbnailChain(p, ifd0.NextOffset)
		r.warn(werr)
		note, werr = dispatchMakerNote(buf, base, ifd0, opts)
		r.warn(werr)
	}

	r.merge(ifd0)
	for _, dir := range chain {
		r.merge(dir)
	}
	r.mergeNote(note)
	return r, nil
}

// headerPosition locates the TIFF header for the classified container.
// Directory-family files start with it; a JPEG wraps it in a segment that
// has to be found first; everything else has no directory tree to offer.
func headerPosition(buf []byte, c detect.Classification) (uint32, error) {
	switch {
	case c.Kind == detect.KindJPEG:
		return exifSegment(buf, c.BaseOffset)
	case c.Kind.TIFFBased():
		return c.BaseOffset, nil
	}
	return 0, fmt.Errorf("%s holds no tag directories", c.Kind)
}

func configure(p *tiff.Parser, opts Options) {
	p.WithTable(opts.Table).WithMaxDepth(opts.MaxDepth)
	if opts.Logger != nil {
		p.WithLogger(*opts.Logger)
	}
}

// thumbnailChain walks the next-IFD pointers starting from the primary
// directory's. The first hop is conventionally the thumbnail directory;
// anything chained after it is decoded under the same namespace. The
// parser's visited set ends the walk if a pointer loops back.
func thumbnailChain(p *tiff.Parser, next uint32) ([]*tiff.Directory, error) {
	var dirs []*tiff.Directory
	var warnings *multierror.Error
	for next != 0 {
		dir, err := p.ParseDirectory(next, tiff.GroupIfd1)
		warnings = multierror.Append(warnings, err)
		dirs = append(dirs, dir)
		next = dir.NextOffset
	}
	return dirs, warnings.ErrorOrNil()
}

// dispatchMakerNote locates the maker note region under the primary
// directory and runs the vendor dispatch against it. A tree without an
// Exif sub-directory, or one without a maker note, yields (nil, nil).
func dispatchMakerNote(buf []byte, base uint32, ifd0 *tiff.Directory, opts Options) (*maker.Note, error) {
	exifDir := findGroup(ifd0, tiff.GroupExif)
	if exifDir == nil {
		return nil, nil
	}
	region, ok := exifDir.Find(entry.MakerNote)
	if !ok || len(region.Data) == 0 {
		return nil, nil
	}
	var makeText string
	if e, found := ifd0.Find(entry.Make); found {
		makeText, _ = e.Text()
	}
	in := maker.Input{
		Make:     makeText,
		Region:   region.Data,
		Buf:      buf,
		Pos:      exifDir.MakerNotePos,
		Base:     base,
		Order:    region.Order,
		Table:    opts.Table,
		MaxDepth: opts.MaxDepth,
	}
	if in.Pos < 0 {
		// Inline value slot: nothing outer-relative can resolve against it.
		in.Buf, in.Pos = nil, 0
	}
	return maker.Dispatch(in, opts.Variants)
}

func findGroup(dir *tiff.Directory, group tiff.Group) *tiff.Directory {
	if dir == nil {
		return nil
	}
	if dir.Group == group {
		return dir
	}
	for _, sub := range dir.SubIFDs {
		if found := findGroup(sub, group); found != nil {
			return found
		}
	}
	return nil
}
