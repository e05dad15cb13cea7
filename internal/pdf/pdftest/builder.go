// Package pdftest generates small, well-formed PDF files for tests.
package pdftest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// Page describes one generated page
type Page struct {
	// Content is the raw content stream. Font /F1 is Helvetica with
	// WinAnsiEncoding and every glyph 500 units wide.
	Content string

	// MediaBox is written on the page when set
	MediaBox []float64

	// CropBox is written on the page when set
	CropBox []float64

	// Forms are Form XObjects listed in the page resources by name
	Forms map[string]Form
}

// Form is a Form XObject. It has no resources of its own, so names it uses
// resolve in the page resources.
type Form struct {
	Content string

	// Matrix is written when set
	Matrix []float64
}

// Document describes a generated PDF
type Document struct {
	Pages []Page

	// Info entries map keys to raw PDF object syntax, e.g. "(Title)" or "42"
	Info map[string]string

	// MediaBox is written on the page tree root and inherited by pages that
	// carry none of their own
	MediaBox []float64
}

// Letter is the US Letter media box
var Letter = []float64{0, 0, 612, 792}

// Bytes serializes the document with an exact cross-reference table.
func (d Document) Bytes() []byte {
	var b strings.Builder
	var offsets []int

	obj := func(body string) int {
		offsets = append(offsets, b.Len())
		num := len(offsets)
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", num, body)
		return num
	}

	b.WriteString("%PDF-1.4\n")

	// Objects 1-3 are fixed; page objects follow
	const (
		catalogNum = 1
		pagesNum   = 2
		fontNum    = 3
	)
	firstPage := fontNum + 1
	if len(d.Info) > 0 {
		firstPage++
	}

	kids := make([]string, len(d.Pages))
	for i := range d.Pages {
		kids[i] = fmt.Sprintf("%d 0 R", firstPage+2*i)
	}

	obj(fmt.Sprintf("<<\n/Type /Catalog\n/Pages %d 0 R\n>>", pagesNum))

	pages := fmt.Sprintf("<<\n/Type /Pages\n/Kids [%s]\n/Count %d\n", strings.Join(kids, " "), len(d.Pages))
	if d.MediaBox != nil {
		pages += "/MediaBox " + array(d.MediaBox) + "\n"
	}
	obj(pages + ">>")

	widths := strings.TrimSpace(strings.Repeat("500 ", 95))
	obj("<<\n/Type /Font\n/Subtype /Type1\n/BaseFont /Helvetica\n/Encoding /WinAnsiEncoding\n" +
		"/FirstChar 32\n/LastChar 126\n/Widths [" + widths + "]\n>>")

	infoNum := 0
	if len(d.Info) > 0 {
		keys := make([]string, 0, len(d.Info))
		for k := range d.Info {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var info strings.Builder
		info.WriteString("<<\n")
		for _, k := range keys {
			fmt.Fprintf(&info, "/%s %s\n", k, d.Info[k])
		}
		info.WriteString(">>")
		infoNum = obj(info.String())
	}

	// Forms follow the pages, numbered in page order and then by name
	var forms []Form
	nextForm := firstPage + 2*len(d.Pages)

	for i, p := range d.Pages {
		contentNum := firstPage + 2*i + 1
		xobjects := ""
		if len(p.Forms) > 0 {
			names := make([]string, 0, len(p.Forms))
			for name := range p.Forms {
				names = append(names, name)
			}
			sort.Strings(names)

			xobjects = "/XObject <<\n"
			for _, name := range names {
				xobjects += fmt.Sprintf("/%s %d 0 R\n", name, nextForm)
				forms = append(forms, p.Forms[name])
				nextForm++
			}
			xobjects += ">>\n"
		}
		page := fmt.Sprintf("<<\n/Type /Page\n/Parent %d 0 R\n/Contents %d 0 R\n/Resources <<\n/Font <<\n/F1 %d 0 R\n>>\n%s>>\n",
			pagesNum, contentNum, fontNum, xobjects)
		if p.MediaBox != nil {
			page += "/MediaBox " + array(p.MediaBox) + "\n"
		}
		if p.CropBox != nil {
			page += "/CropBox " + array(p.CropBox) + "\n"
		}
		obj(page + ">>")
		obj(fmt.Sprintf("<<\n/Length %d\n>>\nstream\n%sendstream", len(p.Content), p.Content))
	}

	for _, f := range forms {
		form := "<<\n/Type /XObject\n/Subtype /Form\n/BBox [0 0 612 792]\n"
		if f.Matrix != nil {
			form += "/Matrix " + array(f.Matrix) + "\n"
		}
		obj(fmt.Sprintf("%s/Length %d\n>>\nstream\n%sendstream", form, len(f.Content), f.Content))
	}

	xrefStart := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}

	fmt.Fprintf(&b, "trailer\n<<\n/Size %d\n/Root %d 0 R\n", len(offsets)+1, catalogNum)
	if infoNum > 0 {
		fmt.Fprintf(&b, "/Info %d 0 R\n", infoNum)
	}
	fmt.Fprintf(&b, ">>\nstartxref\n%d\n%%%%EOF\n", xrefStart)

	return []byte(b.String())
}

// WriteFile writes the document into a temporary directory and returns its path.
func (d Document) WriteFile(t testing.TB) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.pdf")
	if err := os.WriteFile(path, d.Bytes(), 0o600); err != nil {
		t.Fatalf("write test PDF: %v", err)
	}
	return path
}

// Text returns a content stream showing each string on its own line,
// 10pt, starting at (72, 700) and 20pt apart.
func Text(lines ...string) string {
	var b strings.Builder
	b.WriteString("BT\n/F1 10 Tf\n72 700 Td\n")
	for i, l := range lines {
		if i > 0 {
			b.WriteString("0 -20 Td\n")
		}
		fmt.Fprintf(&b, "(%s) Tj\n", l)
	}
	b.WriteString("ET\n")
	return b.String()
}

// HelloWorld is a content stream showing "Hello" and "World" on one line
// with a 15pt gap between them.
const HelloWorld = "BT\n/F1 10 Tf\n72 700 Td\n(Hello) Tj\n40 0 Td\n(World) Tj\nET\n"

func array(v []float64) string {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = fmt.Sprintf("%g", f)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
