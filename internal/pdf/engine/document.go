// Package engine adapts github.com/ledongthuc/pdf to the extraction pipeline:
// document loading, metadata coercion, page geometry, text layout input and
// vector path rendering.
package engine

import (
	"io"
	"os"
	"sort"

	"github.com/a3tai/pdf2msgpack/internal/pdf/errors"
	"github.com/a3tai/pdf2msgpack/internal/pdf/layout"
	"github.com/ledongthuc/pdf"
)

// Placeholders used when an Info value cannot be rendered as text
const (
	MissingValue   = "<nil>"
	NonStringValue = "<not string>"
)

// Source is the random-access input a Document is read from
type Source interface {
	io.ReaderAt
	io.ReadSeeker
}

// Options configures how pages are interpreted
type Options struct {
	Layout layout.Config
}

// DefaultOptions returns the default page interpretation options
func DefaultOptions() Options {
	return Options{Layout: layout.DefaultConfig()}
}

// Document is a loaded PDF
type Document struct {
	reader   *pdf.Reader
	closer   io.Closer
	numPages int
	opts     Options
}

// InfoEntry is one key of the document Info dictionary with its value
// coerced to text
type InfoEntry struct {
	Key   string
	Value string
}

// OpenFile opens the input file for reading. Failures are reported as
// ErrorTypeOpenFile.
func OpenFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeOpenFile, "failed to open "+path, err)
	}
	return f, nil
}

// Load parses src and, when v is not nil, validates it. The returned
// Document closes src when closed if src implements io.Closer.
//
// A structurally invalid document yields ErrorTypeInvalidDocument; a failure
// to build the document object at all yields ErrorTypeConstruct.
func Load(src Source, v *Validator, opts Options) (doc *Document, err error) {
	defer errors.RecoverTo(errors.ErrorTypeConstruct, "problem loading document", &err)

	size, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeConstruct, "problem loading document", err)
	}

	reader, err := pdf.NewReader(src, size)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeInvalidDocument, "failed to open", err)
	}
	if reader.Trailer().Key("Root").Kind() != pdf.Dict {
		return nil, errors.New(errors.ErrorTypeInvalidDocument, "failed to open: missing document catalog")
	}

	if err := v.Validate(src); err != nil {
		return nil, err
	}

	doc = &Document{
		reader:   reader,
		numPages: reader.NumPage(),
		opts:     opts,
	}
	if c, ok := src.(io.Closer); ok {
		doc.closer = c
	}
	return doc, nil
}

// NumPages returns the page count recorded in the page tree
func (d *Document) NumPages() int {
	return d.numPages
}

// Info returns the Info dictionary entries sorted by key. Values that are
// missing render as MissingValue and values that are not strings as
// NonStringValue.
func (d *Document) Info() []InfoEntry {
	info := d.reader.Trailer().Key("Info")
	if info.Kind() != pdf.Dict {
		return nil
	}

	keys := info.Keys()
	sort.Strings(keys)
	entries := make([]InfoEntry, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, InfoEntry{Key: key, Value: coerceText(info, key)})
	}
	return entries
}

func coerceText(dict pdf.Value, key string) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = MissingValue
		}
	}()

	v := dict.Key(key)
	switch v.Kind() {
	case pdf.Null:
		return MissingValue
	case pdf.String:
		return v.Text()
	default:
		return NonStringValue
	}
}

// Page returns page n, counting from 1.
func (d *Document) Page(n int) (p *Page, err error) {
	defer errors.RecoverTo(errors.ErrorTypeMalformedPage, "read page", &err)

	if n < 1 || n > d.numPages {
		return nil, errors.Newf(errors.ErrorTypeRange, "invalid page number %d (document has %d pages)", n, d.numPages)
	}
	page := d.reader.Page(n)
	if page.V.IsNull() {
		return nil, errors.New(errors.ErrorTypeMalformedPage, "page not found in page tree").WithPage(n)
	}
	return &Page{number: n, page: page, opts: d.opts}, nil
}

// Close releases the underlying input
func (d *Document) Close() error {
	if d.closer == nil {
		return nil
	}
	err := d.closer.Close()
	d.closer = nil
	return err
}
