// Package p2m reads the stream written by pdf2msgpack.
//
// A stream is the output format version, one metadata map, and then one map
// per extracted page:
//
//	r, err := p2m.NewReader(os.Stdin)
//	...
//	var page p2m.Page
//	for {
//		if err := r.Next(&page); err == io.EOF {
//			break
//		} else if err != nil {
//			return err
//		}
//		fmt.Println(page.Number, page.Text())
//	}
package p2m

import (
	"fmt"
	"io"
	"strings"

	"github.com/tinylib/msgp/msgp"
)

// SupportedVersion is the output format version this package decodes
const SupportedVersion = 0

// Reader reads a pdf2msgpack stream
type Reader struct {
	Version int
	Meta    Meta

	r      *msgp.Reader
	number int
}

// Meta holds the document metadata
type Meta struct {
	// Pages is the number of pages in the document, not in the stream
	Pages int
	// Info holds the document Info dictionary
	Info map[string]string
}

// Page is one decoded page
type Page struct {
	Number    int // one based, counted from the first page in the stream
	Size      [2]float64
	Glyphs    []Glyph
	Paths     []Path
	HasBitmap bool
}

// Glyph is a character or synthesized space with its bounding box
type Glyph struct {
	Rect Rect
	Text string
}

// Rect is a box in device space: origin top left, y growing downward
type Rect struct {
	X1, Y1, X2, Y2 float64
}

// PathType identifies a path record
type PathType uint8

const (
	PathTypeEoFill         PathType = 10
	PathTypeStroke         PathType = 11
	PathTypeFill           PathType = 12
	PathTypeSetStrokeColor PathType = 13
	PathTypeSetStrokeWidth PathType = 14
	PathTypeSetFillColor   PathType = 15
)

// SegmentKind identifies a path segment
type SegmentKind uint8

const (
	SegmentMoveTo SegmentKind = iota
	SegmentLineTo
	SegmentCurveTo
	SegmentClose
)

// Segment is one path segment with its flattened point coordinates
type Segment struct {
	Kind   SegmentKind
	Coords []float64
}

// Path is one path record. Only the fields matching Type are set.
type Path struct {
	Type     PathType
	Segments []Segment
	Color    struct{ R, G, B uint8 }
	Width    float64
}

// NewReader reads the version and metadata from r. Call Next until it
// returns io.EOF to read the pages.
func NewReader(r io.Reader) (*Reader, error) {
	reader := &Reader{r: msgp.NewReader(r)}

	var err error
	reader.Version, err = reader.r.ReadInt()
	if err != nil {
		return nil, fmt.Errorf("read version: %w", err)
	}
	if reader.Version != SupportedVersion {
		return nil, fmt.Errorf("unsupported output format version %d", reader.Version)
	}

	if err := reader.Meta.DecodeMsg(reader.r); err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	return reader, nil
}

// Next decodes the next page into p. It returns io.EOF when the stream
// holds no more pages.
func (r *Reader) Next(p *Page) error {
	if _, err := r.r.NextType(); err != nil {
		return err
	}
	r.number++
	*p = Page{Number: r.number}
	if err := p.DecodeMsg(r.r); err != nil {
		return fmt.Errorf("read page %d: %w", r.number, err)
	}
	return nil
}

// Text returns the page text in glyph order
func (p *Page) Text() string {
	var b strings.Builder
	for _, g := range p.Glyphs {
		b.WriteString(g.Text)
	}
	return b.String()
}

// DecodeMsg implements msgp.Decodable
func (m *Meta) DecodeMsg(dc *msgp.Reader) error {
	n, err := dc.ReadMapHeader()
	if err != nil {
		return err
	}

	m.Info = make(map[string]string, n)
	for i := uint32(0); i < n; i++ {
		key, err := dc.ReadString()
		if err != nil {
			return err
		}
		// The page count comes first. A later Info entry may reuse its key.
		if i == 0 && key == "Pages" {
			if m.Pages, err = dc.ReadInt(); err != nil {
				return fmt.Errorf("read page count: %w", err)
			}
			continue
		}
		if m.Info[key], err = dc.ReadString(); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

// DecodeMsg implements msgp.Decodable. Number is left unchanged.
func (p *Page) DecodeMsg(dc *msgp.Reader) error {
	n, err := dc.ReadMapHeader()
	if err != nil {
		return err
	}

	for range n {
		key, err := dc.ReadString()
		if err != nil {
			return err
		}
		switch key {
		case "Size":
			err = p.decodeSize(dc)
		case "Glyphs":
			p.Glyphs, err = decodeGlyphs(dc)
		case "Paths":
			p.Paths, err = decodePaths(dc)
		case "Bitmap":
			p.HasBitmap = true
			err = dc.Skip()
		default:
			err = dc.Skip()
		}
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

func (p *Page) decodeSize(dc *msgp.Reader) error {
	if err := expectArray(dc, 2); err != nil {
		return err
	}
	for i := range p.Size {
		f, err := dc.ReadFloat64()
		if err != nil {
			return err
		}
		p.Size[i] = f
	}
	return nil
}

func decodeGlyphs(dc *msgp.Reader) ([]Glyph, error) {
	n, err := dc.ReadArrayHeader()
	if err != nil {
		return nil, err
	}

	glyphs := make([]Glyph, n)
	for i := range glyphs {
		g := &glyphs[i]
		if err := expectArray(dc, 2); err != nil {
			return nil, err
		}
		if err := expectArray(dc, 4); err != nil {
			return nil, err
		}
		for _, f := range []*float64{&g.Rect.X1, &g.Rect.Y1, &g.Rect.X2, &g.Rect.Y2} {
			if *f, err = dc.ReadFloat64(); err != nil {
				return nil, err
			}
		}
		if g.Text, err = dc.ReadString(); err != nil {
			return nil, err
		}
	}
	return glyphs, nil
}

func decodePaths(dc *msgp.Reader) ([]Path, error) {
	n, err := dc.ReadArrayHeader()
	if err != nil {
		return nil, err
	}

	records := make([]Path, n)
	for i := range records {
		if err := decodePath(dc, &records[i]); err != nil {
			return nil, fmt.Errorf("path %d: %w", i, err)
		}
	}
	return records, nil
}

func decodePath(dc *msgp.Reader, p *Path) error {
	if err := expectArray(dc, 2); err != nil {
		return err
	}
	t, err := dc.ReadUint8()
	if err != nil {
		return err
	}
	p.Type = PathType(t)

	switch p.Type {
	case PathTypeEoFill, PathTypeStroke, PathTypeFill:
		p.Segments, err = decodeSegments(dc)
		return err
	case PathTypeSetStrokeColor, PathTypeSetFillColor:
		if err := expectArray(dc, 3); err != nil {
			return err
		}
		for _, c := range []*uint8{&p.Color.R, &p.Color.G, &p.Color.B} {
			if *c, err = dc.ReadUint8(); err != nil {
				return err
			}
		}
		return nil
	case PathTypeSetStrokeWidth:
		p.Width, err = dc.ReadFloat64()
		return err
	default:
		return fmt.Errorf("unknown path type %d", t)
	}
}

func decodeSegments(dc *msgp.Reader) ([]Segment, error) {
	n, err := dc.ReadArrayHeader()
	if err != nil {
		return nil, err
	}

	segments := make([]Segment, n)
	for i := range segments {
		sz, err := dc.ReadArrayHeader()
		if err != nil {
			return nil, err
		}
		if sz == 0 {
			return nil, fmt.Errorf("segment %d is empty", i)
		}
		kind, err := dc.ReadFloat64()
		if err != nil {
			return nil, err
		}
		segments[i].Kind = SegmentKind(kind)
		segments[i].Coords = make([]float64, sz-1)
		for j := range segments[i].Coords {
			if segments[i].Coords[j], err = dc.ReadFloat64(); err != nil {
				return nil, err
			}
		}
	}
	return segments, nil
}

func expectArray(dc *msgp.Reader, want uint32) error {
	n, err := dc.ReadArrayHeader()
	if err != nil {
		return err
	}
	if n != want {
		return fmt.Errorf("array of %d elements, want %d", n, want)
	}
	return nil
}
