package engine

import (
	"testing"

	"github.com/a3tai/pdf2msgpack/internal/pdf/errors"
	"github.com/a3tai/pdf2msgpack/internal/pdf/paths"
	"github.com/a3tai/pdf2msgpack/internal/pdf/pdftest"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/math/f64"
)

func renderPage(t *testing.T, content string) []paths.Event {
	t.Helper()
	doc := loadDoc(t, pdftest.Document{
		MediaBox: pdftest.Letter,
		Pages:    []pdftest.Page{{Content: content}},
	})
	page, err := doc.Page(1)
	require.NoError(t, err)

	var rec paths.Recorder
	require.NoError(t, page.RenderPaths(&rec))
	return rec.Events()
}

func pt(x, y float64) []paths.Point {
	return []paths.Point{{X: x, Y: y}}
}

func TestRenderPaths_StrokeAndFill(t *testing.T) {
	events := renderPage(t, "1 0 0 RG\n2 w\n10 10 m\n20 10 l\nS\n0 0 1 rg\n0 0 100 50 re\nf\n")

	want := []paths.Event{
		{Type: paths.EventStrokeColor, Color: paths.RGB{R: 255}},
		{Type: paths.EventStrokeWidth, Width: 2},
		{Type: paths.EventStroke, Path: paths.Path{
			{Kind: paths.MoveTo, Points: pt(10, 782)},
			{Kind: paths.LineTo, Points: pt(20, 782)},
		}},
		{Type: paths.EventFillColor, Color: paths.RGB{B: 255}},
		{Type: paths.EventFill, Path: paths.Path{
			{Kind: paths.MoveTo, Points: pt(0, 792)},
			{Kind: paths.LineTo, Points: pt(100, 792)},
			{Kind: paths.LineTo, Points: pt(100, 742)},
			{Kind: paths.LineTo, Points: pt(0, 742)},
			{Kind: paths.Close},
		}},
	}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderPaths_FillAndStrokeOperators(t *testing.T) {
	tests := []struct {
		op   string
		want []paths.EventType
	}{
		{"S", []paths.EventType{paths.EventStroke}},
		{"s", []paths.EventType{paths.EventStroke}},
		{"f", []paths.EventType{paths.EventFill}},
		{"F", []paths.EventType{paths.EventFill}},
		{"f*", []paths.EventType{paths.EventEoFill}},
		{"B", []paths.EventType{paths.EventFill, paths.EventStroke}},
		{"B*", []paths.EventType{paths.EventEoFill, paths.EventStroke}},
		{"b", []paths.EventType{paths.EventFill, paths.EventStroke}},
		{"b*", []paths.EventType{paths.EventEoFill, paths.EventStroke}},
		{"n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			events := renderPage(t, "0 0 m\n10 0 l\n10 10 l\n"+tt.op+"\n")
			var got []paths.EventType
			for _, ev := range events {
				got = append(got, ev.Type)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderPaths_ClosingOperatorsAppendClose(t *testing.T) {
	events := renderPage(t, "0 0 m\n10 0 l\ns\n")
	require.Len(t, events, 1)
	p := events[0].Path
	require.Len(t, p, 3)
	assert.Equal(t, paths.Close, p[2].Kind)
}

func TestRenderPaths_TransformAndCurves(t *testing.T) {
	events := renderPage(t, "q\n2 0 0 2 100 100 cm\n0 0 m\n1 1 2 2 3 3 c\n4 4 5 5 v\n6 6 7 7 y\nS\nQ\n")
	require.Len(t, events, 2)

	want := paths.Path{
		{Kind: paths.MoveTo, Points: pt(100, 692)},
		{Kind: paths.CurveTo, Points: []paths.Point{{X: 102, Y: 690}, {X: 104, Y: 688}, {X: 106, Y: 686}}},
		{Kind: paths.CurveTo, Points: []paths.Point{{X: 106, Y: 686}, {X: 108, Y: 684}, {X: 110, Y: 682}}},
		{Kind: paths.CurveTo, Points: []paths.Point{{X: 112, Y: 680}, {X: 114, Y: 678}, {X: 114, Y: 678}}},
	}
	if diff := cmp.Diff(want, events[0].Path); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}

	// restoring the unscaled CTM changes the device line width back
	assert.Equal(t, paths.Event{Type: paths.EventStrokeWidth, Width: 1}, events[1])
}

func TestRenderPaths_RestoreReportsStateChanges(t *testing.T) {
	events := renderPage(t, "q\n0.5 g\n3 w\nQ\n")

	want := []paths.Event{
		{Type: paths.EventFillColor, Color: paths.RGB{R: 128, G: 128, B: 128}},
		{Type: paths.EventStrokeWidth, Width: 3},
		{Type: paths.EventFillColor, Color: paths.RGB{}},
		{Type: paths.EventStrokeWidth, Width: 1},
	}
	assert.Equal(t, want, events)
}

func TestRenderPaths_LineWidthScalesWithCTM(t *testing.T) {
	events := renderPage(t, "3 0 0 3 0 0 cm\n2 w\n")
	require.Len(t, events, 1)
	assert.InDelta(t, 6.0, events[0].Width, 1e-9)
}

func TestRenderPaths_Colors(t *testing.T) {
	events := renderPage(t, "1 G\n0 0 0 1 k\n1 0 0 0 K\n/CS0 cs\n0.2 0.4 0.6 scn\n/P1 scn\n")

	want := []paths.RGB{
		{R: 255, G: 255, B: 255},
		{},
		{R: 0, G: 255, B: 255},
		{},
		{R: 51, G: 102, B: 153},
	}
	var got []paths.RGB
	for _, ev := range events {
		got = append(got, ev.Color)
	}
	assert.Equal(t, want, got)
}

func renderForms(t *testing.T, content string, forms map[string]pdftest.Form) []paths.Event {
	t.Helper()
	doc := loadDoc(t, pdftest.Document{
		MediaBox: pdftest.Letter,
		Pages:    []pdftest.Page{{Content: content, Forms: forms}},
	})
	page, err := doc.Page(1)
	require.NoError(t, err)

	var rec paths.Recorder
	require.NoError(t, page.RenderPaths(&rec))
	return rec.Events()
}

func TestRenderPaths_FormXObject(t *testing.T) {
	events := renderForms(t, "q\n1 0 0 1 100 0 cm\n/Fm1 Do\nQ\n", map[string]pdftest.Form{
		"Fm1": {Content: "0 0 10 20 re\nf\n", Matrix: []float64{2, 0, 0, 2, 0, 0}},
	})

	want := []paths.Event{
		{Type: paths.EventFill, Path: paths.Path{
			{Kind: paths.MoveTo, Points: pt(100, 792)},
			{Kind: paths.LineTo, Points: pt(120, 792)},
			{Kind: paths.LineTo, Points: pt(120, 752)},
			{Kind: paths.LineTo, Points: pt(100, 752)},
			{Kind: paths.Close},
		}},
		// leaving the scaled form restores the unscaled line width
		{Type: paths.EventStrokeWidth, Width: 1},
	}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderPaths_FormStateIsRestored(t *testing.T) {
	// The form's extra Q cannot pop the caller's state, and its color and
	// width changes are undone after it.
	events := renderForms(t, "/Fm1 Do\n0 0 m\n1 0 l\nS\n", map[string]pdftest.Form{
		"Fm1": {Content: "Q\n1 0 0 RG\n4 w\n"},
	})

	want := []paths.EventType{
		paths.EventStrokeColor, paths.EventStrokeWidth,
		paths.EventStrokeColor, paths.EventStrokeWidth,
		paths.EventStroke,
	}
	var got []paths.EventType
	for _, ev := range events {
		got = append(got, ev.Type)
	}
	assert.Equal(t, want, got)
	assert.Equal(t, paths.RGB{}, events[2].Color)
	assert.Equal(t, 1.0, events[3].Width)
}

func TestRenderPaths_SelfReferencingForm(t *testing.T) {
	events := renderForms(t, "/Fm1 Do\n", map[string]pdftest.Form{
		"Fm1": {Content: "/Fm1 Do\n0 0 m\n1 1 l\nS\n"},
	})
	assert.Len(t, events, maxFormDepth)
}

func TestRenderPaths_UnknownXObject(t *testing.T) {
	assert.Empty(t, renderPage(t, "/Missing Do\n"))
}

func TestRenderPaths_TextOnlyPage(t *testing.T) {
	assert.Empty(t, renderPage(t, pdftest.HelloWorld))
}

func TestRenderPaths_NoContents(t *testing.T) {
	assert.Empty(t, renderPage(t, ""))
}

func TestRenderPaths_UnbalancedRestore(t *testing.T) {
	events := renderPage(t, "Q\n0 0 m\n1 1 l\nS\n")
	require.Len(t, events, 1)
	assert.Equal(t, paths.EventStroke, events[0].Type)
}

func TestRenderPaths_MalformedStream(t *testing.T) {
	doc := loadDoc(t, pdftest.Document{
		MediaBox: pdftest.Letter,
		Pages:    []pdftest.Page{{Content: "0 0 m\n1 1 l\n]\nS\n"}},
	})
	page, err := doc.Page(1)
	require.NoError(t, err)

	var rec paths.Recorder
	err = page.RenderPaths(&rec)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeMalformedPage, errors.TypeOf(err))
}

func TestConcat(t *testing.T) {
	scale := operandMatrix(2, 0, 0, 2, 0, 0)
	shift := operandMatrix(1, 0, 0, 1, 10, 20)

	// scale first, then shift
	m := concat(shift, scale)
	x, y := apply(m, 1, 1)
	assert.Equal(t, 12.0, x)
	assert.Equal(t, 22.0, y)

	assert.Equal(t, f64.Aff3{2, 0, 0, 0, 2, 0}, concat(identity, scale))
	assert.Equal(t, 2.0, lengthScale(scale))
}
