package extract

import (
	"github.com/a3tai/pdf2msgpack/internal/pdf/engine"
	"github.com/a3tai/pdf2msgpack/internal/stream"
)

// PagesKey is the synthetic metadata entry holding the page count
const PagesKey = "Pages"

// Document is the part of a loaded document the metadata writer reads
type Document interface {
	NumPages() int
	Info() []engine.InfoEntry
}

// WriteMetadata writes the document metadata map: the page count under
// PagesKey followed by every Info entry. Keys are PDF names and are written
// verbatim; only values go through the text encoding.
func WriteMetadata(enc *stream.Encoder, doc Document) error {
	info := doc.Info()
	if err := enc.WriteMapHeader(len(info) + 1); err != nil {
		return err
	}

	if err := enc.WriteString(PagesKey); err != nil {
		return err
	}
	if err := enc.WriteInt(doc.NumPages()); err != nil {
		return err
	}

	for _, entry := range info {
		if err := enc.WriteString(entry.Key); err != nil {
			return err
		}
		if err := enc.WriteText(entry.Value); err != nil {
			return err
		}
	}
	return nil
}
