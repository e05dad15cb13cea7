// Package paths records the vector drawing operations of a page.
package paths

import (
	"fmt"

	"github.com/a3tai/pdf2msgpack/internal/stream"
)

// EventType tags a recorded drawing event on the wire
type EventType uint8

const (
	EventEoFill      EventType = 10
	EventStroke      EventType = 11
	EventFill        EventType = 12
	EventStrokeColor EventType = 13
	EventStrokeWidth EventType = 14
	EventFillColor   EventType = 15
)

// String returns a string representation of the event type
func (t EventType) String() string {
	switch t {
	case EventEoFill:
		return "eofill"
	case EventStroke:
		return "stroke"
	case EventFill:
		return "fill"
	case EventStrokeColor:
		return "stroke_color"
	case EventStrokeWidth:
		return "stroke_width"
	case EventFillColor:
		return "fill_color"
	default:
		return fmt.Sprintf("event(%d)", uint8(t))
	}
}

// SegmentKind identifies a path construction operator
type SegmentKind uint8

const (
	MoveTo SegmentKind = iota
	LineTo
	CurveTo
	Close
)

// Segment is one path construction step. Points holds 1 point for MoveTo
// and LineTo, 3 for CurveTo and none for Close.
type Segment struct {
	Kind   SegmentKind
	Points []Point
}

// Point is a device-space coordinate
type Point struct {
	X, Y float64
}

// Path is a sequence of segments
type Path []Segment

// RGB is an 8-bit per channel color
type RGB struct {
	R, G, B uint8
}

// Sink receives drawing operations as a page is rendered.
type Sink interface {
	Stroke(p Path)
	Fill(p Path)
	EoFill(p Path)
	UpdateStrokeColor(c RGB)
	UpdateFillColor(c RGB)
	UpdateLineWidth(w float64)
}

// Event is one recorded drawing operation. Only the field matching Type is set.
type Event struct {
	Type  EventType
	Path  Path
	Color RGB
	Width float64
}

// Recorder is a Sink that keeps every event in call order.
type Recorder struct {
	events []Event
}

var _ Sink = (*Recorder)(nil)

// Stroke records a stroked path
func (r *Recorder) Stroke(p Path) {
	r.events = append(r.events, Event{Type: EventStroke, Path: p})
}

// Fill records a nonzero-winding fill
func (r *Recorder) Fill(p Path) {
	r.events = append(r.events, Event{Type: EventFill, Path: p})
}

// EoFill records an even-odd fill
func (r *Recorder) EoFill(p Path) {
	r.events = append(r.events, Event{Type: EventEoFill, Path: p})
}

// UpdateStrokeColor records a stroke color change
func (r *Recorder) UpdateStrokeColor(c RGB) {
	r.events = append(r.events, Event{Type: EventStrokeColor, Color: c})
}

// UpdateFillColor records a fill color change
func (r *Recorder) UpdateFillColor(c RGB) {
	r.events = append(r.events, Event{Type: EventFillColor, Color: c})
}

// UpdateLineWidth records a line width change
func (r *Recorder) UpdateLineWidth(w float64) {
	r.events = append(r.events, Event{Type: EventStrokeWidth, Width: w})
}

// Len returns the number of recorded events
func (r *Recorder) Len() int {
	return len(r.events)
}

// Events returns the recorded events
func (r *Recorder) Events() []Event {
	return r.events
}

// Reset drops every recorded event
func (r *Recorder) Reset() {
	r.events = r.events[:0]
}

// Encode writes the events as one array of [type, payload] records.
func (r *Recorder) Encode(enc *stream.Encoder) error {
	if err := enc.WriteArrayHeader(len(r.events)); err != nil {
		return err
	}
	for _, ev := range r.events {
		if err := encodeEvent(enc, ev); err != nil {
			return err
		}
	}
	return nil
}

func encodeEvent(enc *stream.Encoder, ev Event) error {
	if err := enc.WriteArrayHeader(2); err != nil {
		return err
	}
	if err := enc.WriteUint8(uint8(ev.Type)); err != nil {
		return err
	}

	switch ev.Type {
	case EventStroke, EventFill, EventEoFill:
		return encodePath(enc, ev.Path)
	case EventStrokeColor, EventFillColor:
		if err := enc.WriteArrayHeader(3); err != nil {
			return err
		}
		for _, v := range [...]uint8{ev.Color.R, ev.Color.G, ev.Color.B} {
			if err := enc.WriteUint8(v); err != nil {
				return err
			}
		}
		return nil
	case EventStrokeWidth:
		return enc.WriteFloat(ev.Width)
	default:
		return fmt.Errorf("paths: unknown event type %d", ev.Type)
	}
}

func encodePath(enc *stream.Encoder, p Path) error {
	if err := enc.WriteArrayHeader(len(p)); err != nil {
		return err
	}
	for _, seg := range p {
		if err := enc.WriteArrayHeader(1 + 2*len(seg.Points)); err != nil {
			return err
		}
		if err := enc.WriteFloat(float64(seg.Kind)); err != nil {
			return err
		}
		for _, pt := range seg.Points {
			if err := enc.WriteFloat(pt.X); err != nil {
				return err
			}
			if err := enc.WriteFloat(pt.Y); err != nil {
				return err
			}
		}
	}
	return nil
}
