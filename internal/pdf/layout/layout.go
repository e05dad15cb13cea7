// Package layout groups positioned characters into words and lines.
//
// Coordinates are device space: x grows to the right, y grows downward and
// (X1, Y1) is the top-left corner of a box.
package layout

import (
	"math"
	"sort"
	"strings"
)

// Rect is an axis-aligned box in device space
type Rect struct {
	X1, Y1, X2, Y2 float64
}

// Width returns the horizontal extent of the box
func (r Rect) Width() float64 { return r.X2 - r.X1 }

// Height returns the vertical extent of the box
func (r Rect) Height() float64 { return r.Y2 - r.Y1 }

// Union returns the smallest box containing both r and o
func (r Rect) Union(o Rect) Rect {
	return Rect{
		X1: math.Min(r.X1, o.X1),
		Y1: math.Min(r.Y1, o.Y1),
		X2: math.Max(r.X2, o.X2),
		Y2: math.Max(r.Y2, o.Y2),
	}
}

// Char is one shown character with its box
type Char struct {
	BBox Rect
	Text string

	// Baseline is the y coordinate of the text baseline
	Baseline float64

	// Size is the effective font size in device units
	Size float64
}

// Word is a run of characters with no whitespace between them
type Word struct {
	Chars []Char
}

// BBox returns the union of the character boxes. An empty word has a zero box.
func (w Word) BBox() Rect {
	if len(w.Chars) == 0 {
		return Rect{}
	}
	box := w.Chars[0].BBox
	for _, c := range w.Chars[1:] {
		box = box.Union(c.BBox)
	}
	return box
}

// Text returns the concatenated character text
func (w Word) Text() string {
	var b strings.Builder
	for _, c := range w.Chars {
		b.WriteString(c.Text)
	}
	return b.String()
}

func (w Word) baseline() float64 {
	if len(w.Chars) == 0 {
		return 0
	}
	return w.Chars[0].Baseline
}

func (w Word) size() float64 {
	if len(w.Chars) == 0 {
		return 0
	}
	return w.Chars[0].Size
}

// Line is a sequence of words sharing a baseline, in reading order
type Line struct {
	Words []Word
}

// Text returns the words joined by single spaces
func (l Line) Text() string {
	parts := make([]string, len(l.Words))
	for i, w := range l.Words {
		parts[i] = w.Text()
	}
	return strings.Join(parts, " ")
}

// TextPage is the text layout of one page, lines top to bottom
type TextPage struct {
	Lines []Line
}

// Text returns the page text, one line per row
func (p *TextPage) Text() string {
	parts := make([]string, len(p.Lines))
	for i, l := range p.Lines {
		parts[i] = l.Text()
	}
	return strings.Join(parts, "\n")
}

// Config holds the tolerances used to split words and lines
type Config struct {
	// LineTolerance is the baseline distance, as a fraction of the font
	// size, under which two characters share a line (default: 0.5)
	LineTolerance float64

	// WordGap is the horizontal gap, as a fraction of the font size, above
	// which a new word starts even without a space character (default: 0.15)
	WordGap float64
}

// DefaultConfig returns the default tolerances
func DefaultConfig() Config {
	return Config{
		LineTolerance: 0.5,
		WordGap:       0.15,
	}
}

// Build lays out chars, given in content-stream order, as a TextPage.
func Build(chars []Char, cfg Config) *TextPage {
	return &TextPage{Lines: groupLines(splitWords(chars, cfg), cfg)}
}

func splitWords(chars []Char, cfg Config) []Word {
	var (
		words []Word
		cur   Word
	)
	flush := func() {
		if len(cur.Chars) > 0 {
			words = append(words, cur)
			cur = Word{}
		}
	}

	for _, c := range chars {
		if strings.TrimSpace(c.Text) == "" {
			flush()
			continue
		}
		if n := len(cur.Chars); n > 0 && breaksWord(cur.Chars[n-1], c, cfg) {
			flush()
		}
		cur.Chars = append(cur.Chars, c)
	}
	flush()

	return words
}

func breaksWord(prev, next Char, cfg Config) bool {
	size := math.Max(math.Max(prev.Size, next.Size), 1)
	if math.Abs(next.Baseline-prev.Baseline) > cfg.LineTolerance*size {
		return true
	}
	gap := next.BBox.X1 - prev.BBox.X2
	if gap > cfg.WordGap*size {
		return true
	}
	// Text moved back to the left of the previous character
	return next.BBox.X1 < prev.BBox.X1-cfg.WordGap*size
}

func groupLines(words []Word, cfg Config) []Line {
	type row struct {
		baseline float64
		size     float64
		words    []Word
	}
	var rows []*row

	for _, w := range words {
		var target *row
		for _, r := range rows {
			tol := cfg.LineTolerance * math.Max(math.Max(r.size, w.size()), 1)
			if math.Abs(r.baseline-w.baseline()) <= tol {
				target = r
				break
			}
		}
		if target == nil {
			target = &row{baseline: w.baseline(), size: w.size()}
			rows = append(rows, target)
		}
		target.words = append(target.words, w)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].baseline < rows[j].baseline
	})

	lines := make([]Line, len(rows))
	for i, r := range rows {
		sort.SliceStable(r.words, func(a, b int) bool {
			return r.words[a].BBox().X1 < r.words[b].BBox().X1
		})
		lines[i] = Line{Words: r.words}
	}
	return lines
}
