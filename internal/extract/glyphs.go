// Package extract serializes document metadata and page content.
package extract

import (
	"fmt"
	"iter"

	"github.com/a3tai/pdf2msgpack/internal/pdf/layout"
	"github.com/a3tai/pdf2msgpack/internal/stream"
)

// SpaceText is the text of a synthesized inter-word glyph
const SpaceText = " "

// Glyph is one character, or synthesized space, with its device-space box
type Glyph struct {
	BBox layout.Rect
	Text string
}

// Glyphs yields the glyph records of lines in reading order: every
// character of every word, and after each word except the last on its line
// a space spanning the gap to the next word. The space takes its vertical
// extent from the preceding word.
func Glyphs(lines []layout.Line) iter.Seq[Glyph] {
	return func(yield func(Glyph) bool) {
		for _, line := range lines {
			words := line.Words
			for i, word := range words {
				for _, c := range word.Chars {
					if !yield(Glyph{BBox: c.BBox, Text: c.Text}) {
						return
					}
				}
				if i == len(words)-1 {
					continue
				}
				cur, next := word.BBox(), words[i+1].BBox()
				space := Glyph{
					BBox: layout.Rect{X1: cur.X2, Y1: cur.Y1, X2: next.X1, Y2: cur.Y2},
					Text: SpaceText,
				}
				if !yield(space) {
					return
				}
			}
		}
	}
}

// CountGlyphs returns the number of records Glyphs yields for lines.
func CountGlyphs(lines []layout.Line) int {
	n := 0
	for range Glyphs(lines) {
		n++
	}
	return n
}

// WriteGlyphs writes lines as an array of [[x1, y1, x2, y2], text] records.
// The array length is taken from a counting pass over the same traversal
// that produces the records.
func WriteGlyphs(enc *stream.Encoder, lines []layout.Line) error {
	declared := CountGlyphs(lines)
	if err := enc.WriteArrayHeader(declared); err != nil {
		return err
	}

	emitted := 0
	for g := range Glyphs(lines) {
		if err := writeGlyph(enc, g); err != nil {
			return err
		}
		emitted++
	}

	if emitted != declared {
		panic(fmt.Sprintf("extract: declared %d glyphs but emitted %d", declared, emitted))
	}
	return nil
}

func writeGlyph(enc *stream.Encoder, g Glyph) error {
	if err := enc.WriteArrayHeader(2); err != nil {
		return err
	}
	if err := enc.WriteArrayHeader(4); err != nil {
		return err
	}
	for _, v := range [...]float64{g.BBox.X1, g.BBox.Y1, g.BBox.X2, g.BBox.Y2} {
		if err := enc.WriteFloat(v); err != nil {
			return err
		}
	}
	// Glyph text is always UTF-8; the text encoding applies to metadata only.
	return enc.WriteString(g.Text)
}
