package extract

import (
	"log"

	"github.com/a3tai/pdf2msgpack/internal/pdf/layout"
	"github.com/a3tai/pdf2msgpack/internal/pdf/paths"
	"github.com/a3tai/pdf2msgpack/internal/stream"
)

// Page map keys, written in this order
const (
	SizeKey   = "Size"
	GlyphsKey = "Glyphs"
	PathsKey  = "Paths"
	BitmapKey = "Bitmap"
)

// Page is the part of a loaded page the page writer reads
type Page interface {
	Number() int
	Size() (width, height float64)
	TextPage() (*layout.TextPage, error)
	RenderPaths(sink paths.Sink) error
}

// PageOptions selects optional page entries
type PageOptions struct {
	// Bitmap adds a Bitmap entry. Rasterization is not supported, so its
	// value is always nil.
	Bitmap bool
}

// WritePage writes one page map. Text and paths are read before anything
// is written; a part that cannot be read is logged and written empty so the
// page keeps its shape.
func WritePage(enc *stream.Encoder, page Page, opts PageOptions) error {
	var lines []layout.Line
	if tp, err := page.TextPage(); err != nil {
		log.Printf("warning: page %d: skipping text: %v", page.Number(), err)
	} else {
		lines = tp.Lines
	}

	var rec paths.Recorder
	if err := page.RenderPaths(&rec); err != nil {
		log.Printf("warning: page %d: skipping paths: %v", page.Number(), err)
		rec.Reset()
	}

	entries := 3
	if opts.Bitmap {
		entries++
	}
	if err := enc.WriteMapHeader(entries); err != nil {
		return err
	}

	if err := writeSize(enc, page); err != nil {
		return err
	}

	if err := enc.WriteString(GlyphsKey); err != nil {
		return err
	}
	if err := WriteGlyphs(enc, lines); err != nil {
		return err
	}

	if err := enc.WriteString(PathsKey); err != nil {
		return err
	}
	if err := rec.Encode(enc); err != nil {
		return err
	}

	if opts.Bitmap {
		if err := enc.WriteString(BitmapKey); err != nil {
			return err
		}
		return enc.WriteNil()
	}
	return nil
}

func writeSize(enc *stream.Encoder, page Page) error {
	width, height := page.Size()
	if err := enc.WriteString(SizeKey); err != nil {
		return err
	}
	if err := enc.WriteArrayHeader(2); err != nil {
		return err
	}
	if err := enc.WriteFloat(width); err != nil {
		return err
	}
	return enc.WriteFloat(height)
}
