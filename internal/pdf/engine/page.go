package engine

import (
	"log"
	"math"

	"github.com/a3tai/pdf2msgpack/internal/pdf/errors"
	"github.com/a3tai/pdf2msgpack/internal/pdf/layout"
	"github.com/ledongthuc/pdf"
	"golang.org/x/image/math/f64"
)

// US Letter, used when a page carries no usable MediaBox
var defaultMediaBox = Box{LLX: 0, LLY: 0, URX: 612, URY: 792}

// Glyph extents above and below the baseline as a fraction of the font size.
// The engine reports only advance widths, so the vertical extent is fixed.
const (
	glyphAscent  = 0.8
	glyphDescent = 0.2
)

// Page is one page of a Document
type Page struct {
	number int
	page   pdf.Page
	opts   Options
}

// Number returns the 1-based page number
func (p *Page) Number() int {
	return p.number
}

// MediaBox returns the page's (possibly inherited) media box
func (p *Page) MediaBox() Box {
	if box, ok := p.inheritedBox("MediaBox"); ok {
		return box
	}
	log.Printf("warning: page %d: no valid MediaBox, using default dimensions", p.number)
	return defaultMediaBox
}

// CropBox returns the visible region of the page, defaulting to the media box
func (p *Page) CropBox() Box {
	if box, ok := p.inheritedBox("CropBox"); ok {
		return box
	}
	return p.MediaBox()
}

// Size returns the media box width and height in points
func (p *Page) Size() (width, height float64) {
	box := p.MediaBox()
	return box.Width(), box.Height()
}

// inheritedBox looks key up on the page and then on its ancestors in the
// page tree.
func (p *Page) inheritedBox(key string) (box Box, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("warning: page %d: panic reading %s: %v", p.number, key, r)
			box, ok = Box{}, false
		}
	}()

	for v := p.page.V; !v.IsNull(); v = v.Key("Parent") {
		if b := v.Key(key); !b.IsNull() {
			return parseBox(b)
		}
	}
	return Box{}, false
}

func parseBox(v pdf.Value) (Box, bool) {
	if v.Kind() != pdf.Array || v.Len() != 4 {
		return Box{}, false
	}

	var coords [4]float64
	for i := range coords {
		c := v.Index(i)
		if c.Kind() != pdf.Integer && c.Kind() != pdf.Real {
			return Box{}, false
		}
		coords[i] = c.Float64()
	}

	box := Box{
		LLX: math.Min(coords[0], coords[2]),
		LLY: math.Min(coords[1], coords[3]),
		URX: math.Max(coords[0], coords[2]),
		URY: math.Max(coords[1], coords[3]),
	}
	if box.Width() == 0 || box.Height() == 0 {
		return Box{}, false
	}
	return box, true
}

// TextPage lays out all text shown on the page. Coordinates are device
// space relative to the crop box.
func (p *Page) TextPage() (tp *layout.TextPage, err error) {
	defer errors.RecoverTo(errors.ErrorTypeMalformedPage, "read text", &err)

	device := p.CropBox().deviceMatrix()
	content := p.page.Content()

	chars := make([]layout.Char, 0, len(content.Text))
	for _, t := range content.Text {
		chars = append(chars, toChar(device, t))
	}
	return layout.Build(chars, p.opts.Layout), nil
}

// toChar maps one engine text run to a device-space char. The vertical
// extent is an approximation from the font size, not the font's own ascent
// and descent metrics.
func toChar(device f64.Aff3, t pdf.Text) layout.Char {
	size := math.Abs(t.FontSize)
	x1, baseline := apply(device, t.X, t.Y)
	x2, _ := apply(device, t.X+t.W, t.Y)

	return layout.Char{
		BBox: layout.Rect{
			X1: math.Min(x1, x2),
			Y1: baseline - glyphAscent*size,
			X2: math.Max(x1, x2),
			Y2: baseline + glyphDescent*size,
		},
		Text:     t.S,
		Baseline: baseline,
		Size:     size,
	}
}
