package engine

import (
	"math"

	"github.com/a3tai/pdf2msgpack/internal/pdf/errors"
	"github.com/a3tai/pdf2msgpack/internal/pdf/paths"
	"github.com/ledongthuc/pdf"
	"golang.org/x/image/math/f64"
)

// graphicsState is the subset of the PDF graphics state that affects the
// reported paths
type graphicsState struct {
	ctm         f64.Aff3
	strokeColor paths.RGB
	fillColor   paths.RGB
	lineWidth   float64
}

// maxFormDepth bounds Form XObject nesting, which also stops forms that
// draw themselves.
const maxFormDepth = 12

// renderer walks a content stream and reports painted paths to a sink
type renderer struct {
	sink  paths.Sink
	gs    graphicsState
	stack []graphicsState
	// Q never pops below floor; a form's content cannot restore the state
	// its caller saved
	floor int

	resources pdf.Value
	depth     int

	path    paths.Path
	start   paths.Point // start of the current subpath, user space
	current paths.Point // current point, user space
}

// RenderPaths interprets the page's content stream and reports every
// painted path, plus stroke/fill color and line width changes, to sink in
// drawing order. Coordinates are device space relative to the crop box.
func (p *Page) RenderPaths(sink paths.Sink) (err error) {
	defer errors.RecoverTo(errors.ErrorTypeMalformedPage, "render paths", &err)

	contents := p.page.V.Key("Contents")
	if contents.IsNull() {
		return nil
	}

	r := newRenderer(sink, p.CropBox().deviceMatrix(), p.page.Resources())
	pdf.Interpret(contents, r.do)
	return nil
}

func newRenderer(sink paths.Sink, device f64.Aff3, resources pdf.Value) *renderer {
	return &renderer{
		sink:      sink,
		resources: resources,
		gs: graphicsState{
			ctm:       device,
			lineWidth: 1,
		},
	}
}

func (r *renderer) do(stk *pdf.Stack, op string) {
	n := stk.Len()
	args := make([]pdf.Value, n)
	for i := n - 1; i >= 0; i-- {
		args[i] = stk.Pop()
	}

	switch op {
	// Graphics state operators
	case "q":
		r.stack = append(r.stack, r.gs)
	case "Q":
		r.restore()
	case "cm":
		if len(args) == 6 {
			f := floats(args)
			r.gs.ctm = concat(r.gs.ctm, operandMatrix(f[0], f[1], f[2], f[3], f[4], f[5]))
		}
	case "w":
		if len(args) == 1 {
			r.gs.lineWidth = args[0].Float64()
			r.sink.UpdateLineWidth(r.deviceLineWidth())
		}

	// Color operators
	case "RG", "G", "K":
		if c, ok := deviceColor(floats(args)); ok {
			r.setStrokeColor(c)
		}
	case "rg", "g", "k":
		if c, ok := deviceColor(floats(args)); ok {
			r.setFillColor(c)
		}
	case "SC", "SCN":
		if c, ok := deviceColor(numeric(args)); ok {
			r.setStrokeColor(c)
		}
	case "sc", "scn":
		if c, ok := deviceColor(numeric(args)); ok {
			r.setFillColor(c)
		}
	case "CS":
		r.setStrokeColor(paths.RGB{})
	case "cs":
		r.setFillColor(paths.RGB{})

	// Path construction operators
	case "m":
		if len(args) == 2 {
			r.moveTo(args[0].Float64(), args[1].Float64())
		}
	case "l":
		if len(args) == 2 {
			r.lineTo(args[0].Float64(), args[1].Float64())
		}
	case "c":
		if len(args) == 6 {
			f := floats(args)
			r.curveTo(f[0], f[1], f[2], f[3], f[4], f[5])
		}
	case "v":
		if len(args) == 4 {
			f := floats(args)
			r.curveTo(r.current.X, r.current.Y, f[0], f[1], f[2], f[3])
		}
	case "y":
		if len(args) == 4 {
			f := floats(args)
			r.curveTo(f[0], f[1], f[2], f[3], f[2], f[3])
		}
	case "h":
		r.closePath()
	case "re":
		if len(args) == 4 {
			f := floats(args)
			x, y, w, h := f[0], f[1], f[2], f[3]
			r.moveTo(x, y)
			r.lineTo(x+w, y)
			r.lineTo(x+w, y+h)
			r.lineTo(x, y+h)
			r.closePath()
		}

	// Path painting operators
	case "S":
		r.paint(r.sink.Stroke)
	case "s":
		r.closePath()
		r.paint(r.sink.Stroke)
	case "f", "F":
		r.paint(r.sink.Fill)
	case "f*":
		r.paint(r.sink.EoFill)
	case "B":
		r.paint(r.sink.Fill, r.sink.Stroke)
	case "B*":
		r.paint(r.sink.EoFill, r.sink.Stroke)
	case "b":
		r.closePath()
		r.paint(r.sink.Fill, r.sink.Stroke)
	case "b*":
		r.closePath()
		r.paint(r.sink.EoFill, r.sink.Stroke)
	case "n":
		r.path = nil

	// XObjects
	case "Do":
		if len(args) == 1 && args[0].Kind() == pdf.Name {
			r.drawForm(args[0].Name())
		}
	}
}

// drawForm paints the Form XObject called name in the current resources.
// Image XObjects carry no paths and are skipped.
func (r *renderer) drawForm(name string) {
	form := r.resources.Key("XObject").Key(name)
	if form.Kind() != pdf.Stream || form.Key("Subtype").Name() != "Form" {
		return
	}
	if r.depth >= maxFormDepth {
		return
	}

	base, floor, resources := len(r.stack), r.floor, r.resources
	r.stack = append(r.stack, r.gs)
	r.floor = base + 1
	if res := form.Key("Resources"); res.Kind() == pdf.Dict {
		r.resources = res
	}
	if m := form.Key("Matrix"); m.Kind() == pdf.Array && m.Len() == 6 {
		f := make([]float64, 6)
		for i := range f {
			f[i] = m.Index(i).Float64()
		}
		r.gs.ctm = concat(r.gs.ctm, operandMatrix(f[0], f[1], f[2], f[3], f[4], f[5]))
	}
	r.path = nil

	r.depth++
	pdf.Interpret(form, r.do)
	r.depth--

	r.stack = r.stack[:base+1]
	r.floor, r.resources = floor, resources
	r.path = nil
	r.restore()
}

func (r *renderer) restore() {
	n := len(r.stack)
	if n <= r.floor {
		return
	}
	prev := r.gs
	r.gs = r.stack[n-1]
	r.stack = r.stack[:n-1]

	if r.gs.strokeColor != prev.strokeColor {
		r.sink.UpdateStrokeColor(r.gs.strokeColor)
	}
	if r.gs.fillColor != prev.fillColor {
		r.sink.UpdateFillColor(r.gs.fillColor)
	}
	if r.gs.lineWidth != prev.lineWidth || lengthScale(r.gs.ctm) != lengthScale(prev.ctm) {
		r.sink.UpdateLineWidth(r.deviceLineWidth())
	}
}

func (r *renderer) setStrokeColor(c paths.RGB) {
	r.gs.strokeColor = c
	r.sink.UpdateStrokeColor(c)
}

func (r *renderer) setFillColor(c paths.RGB) {
	r.gs.fillColor = c
	r.sink.UpdateFillColor(c)
}

func (r *renderer) deviceLineWidth() float64 {
	return r.gs.lineWidth * lengthScale(r.gs.ctm)
}

func (r *renderer) devicePoint(x, y float64) paths.Point {
	dx, dy := apply(r.gs.ctm, x, y)
	return paths.Point{X: dx, Y: dy}
}

func (r *renderer) moveTo(x, y float64) {
	r.start = paths.Point{X: x, Y: y}
	r.current = r.start
	r.path = append(r.path, paths.Segment{Kind: paths.MoveTo, Points: []paths.Point{r.devicePoint(x, y)}})
}

func (r *renderer) lineTo(x, y float64) {
	r.current = paths.Point{X: x, Y: y}
	r.path = append(r.path, paths.Segment{Kind: paths.LineTo, Points: []paths.Point{r.devicePoint(x, y)}})
}

func (r *renderer) curveTo(x1, y1, x2, y2, x3, y3 float64) {
	r.current = paths.Point{X: x3, Y: y3}
	r.path = append(r.path, paths.Segment{Kind: paths.CurveTo, Points: []paths.Point{
		r.devicePoint(x1, y1),
		r.devicePoint(x2, y2),
		r.devicePoint(x3, y3),
	}})
}

func (r *renderer) closePath() {
	if len(r.path) == 0 {
		return
	}
	r.current = r.start
	r.path = append(r.path, paths.Segment{Kind: paths.Close})
}

// paint hands the current path to each painter in turn and ends the path.
// An empty path paints nothing.
func (r *renderer) paint(painters ...func(paths.Path)) {
	p := r.path
	r.path = nil
	if len(p) == 0 {
		return
	}
	for _, paint := range painters {
		paint(p)
	}
}

func floats(args []pdf.Value) []float64 {
	out := make([]float64, len(args))
	for i, a := range args {
		out[i] = a.Float64()
	}
	return out
}

// numeric returns the numeric operands, dropping a trailing pattern name
func numeric(args []pdf.Value) []float64 {
	out := make([]float64, 0, len(args))
	for _, a := range args {
		if a.Kind() == pdf.Integer || a.Kind() == pdf.Real {
			out = append(out, a.Float64())
		}
	}
	return out
}

// deviceColor interprets 1, 3 or 4 components as gray, RGB or CMYK
func deviceColor(c []float64) (paths.RGB, bool) {
	switch len(c) {
	case 1:
		g := floatToUint8(c[0])
		return paths.RGB{R: g, G: g, B: g}, true
	case 3:
		return paths.RGB{R: floatToUint8(c[0]), G: floatToUint8(c[1]), B: floatToUint8(c[2])}, true
	case 4:
		red, green, blue := cmykToRGB(c[0], c[1], c[2], c[3])
		return paths.RGB{R: floatToUint8(red), G: floatToUint8(green), B: floatToUint8(blue)}, true
	default:
		return paths.RGB{}, false
	}
}

// cmykToRGB converts CMYK to RGB (approximate conversion)
func cmykToRGB(c, m, y, k float64) (r, g, b float64) {
	r = (1 - c) * (1 - k)
	g = (1 - m) * (1 - k)
	b = (1 - y) * (1 - k)
	return
}

// floatToUint8 converts a color component in [0, 1] to 0-255
func floatToUint8(f float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, f)) * 255))
}
