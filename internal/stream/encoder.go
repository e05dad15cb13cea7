// Package stream writes the tool's output as a sequence of MessagePack values.
//
// Every MessagePack map and array header carries its element count before
// the elements themselves, and the Encoder never seeks back to patch a
// header. Callers must therefore know each aggregate's size before opening
// it. The Encoder tracks open aggregates so that a caller that declares one
// count and writes another is detected at Close.
package stream

import (
	"errors"
	"fmt"
	"io"

	"github.com/tinylib/msgp/msgp"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// ErrIncomplete is returned by Close when an aggregate header was written
// but fewer elements than it declared followed.
var ErrIncomplete = errors.New("stream: aggregate left incomplete")

// Encoder writes MessagePack values to an underlying writer.
type Encoder struct {
	w    *msgp.Writer
	text *encoding.Encoder
	// remaining element slots of every open aggregate, innermost last
	open []uint32
	err  error
}

// NewEncoder returns an Encoder writing to w. Document strings passed to
// WriteText are transcoded to textEnc; a nil textEnc or UTF-8 passes them
// through unchanged.
func NewEncoder(w io.Writer, textEnc encoding.Encoding) *Encoder {
	e := &Encoder{w: msgp.NewWriter(w)}
	if textEnc != nil && textEnc != unicode.UTF8 {
		e.text = encoding.ReplaceUnsupported(textEnc.NewEncoder())
	}
	return e
}

// WriteMapHeader opens a map of n key/value pairs.
func (e *Encoder) WriteMapHeader(n int) error {
	return e.aggregate(2*n, func() error { return e.w.WriteMapHeader(uint32(n)) })
}

// WriteArrayHeader opens an array of n elements.
func (e *Encoder) WriteArrayHeader(n int) error {
	return e.aggregate(n, func() error { return e.w.WriteArrayHeader(uint32(n)) })
}

// WriteString writes s verbatim. Use it for keys, fixed strings and glyph text.
func (e *Encoder) WriteString(s string) error {
	return e.scalar(func() error { return e.w.WriteString(s) })
}

// WriteText writes a document-derived string in the configured text encoding.
// Characters the encoding cannot represent are replaced.
func (e *Encoder) WriteText(s string) error {
	if e.text != nil {
		out, err := e.text.String(s)
		if err != nil {
			return e.fail(fmt.Errorf("transcode text: %w", err))
		}
		s = out
	}
	return e.WriteString(s)
}

// WriteInt writes a signed integer using the smallest representation.
func (e *Encoder) WriteInt(i int) error {
	return e.scalar(func() error { return e.w.WriteInt(i) })
}

// WriteUint8 writes a small unsigned integer.
func (e *Encoder) WriteUint8(u uint8) error {
	return e.scalar(func() error { return e.w.WriteUint8(u) })
}

// WriteFloat writes a 64-bit float.
func (e *Encoder) WriteFloat(f float64) error {
	return e.scalar(func() error { return e.w.WriteFloat64(f) })
}

// WriteNil writes the nil value.
func (e *Encoder) WriteNil() error {
	return e.scalar(e.w.WriteNil)
}

// Depth returns the number of aggregates still waiting for elements.
func (e *Encoder) Depth() int {
	return len(e.open)
}

// Err returns the first error the Encoder encountered.
func (e *Encoder) Err() error {
	return e.err
}

// Flush writes buffered data to the underlying writer.
func (e *Encoder) Flush() error {
	if e.err != nil {
		return e.err
	}
	return e.fail(e.w.Flush())
}

// Close flushes the Encoder and reports ErrIncomplete if any aggregate is
// still open.
func (e *Encoder) Close() error {
	if err := e.Flush(); err != nil {
		return err
	}
	if len(e.open) > 0 {
		return fmt.Errorf("%w: %d aggregate(s) open", ErrIncomplete, len(e.open))
	}
	return nil
}

func (e *Encoder) scalar(write func() error) error {
	if e.err != nil {
		return e.err
	}
	if err := e.fail(write()); err != nil {
		return err
	}
	e.consume()
	return nil
}

func (e *Encoder) aggregate(items int, write func() error) error {
	if e.err != nil {
		return e.err
	}
	if items < 0 {
		return e.fail(fmt.Errorf("stream: negative aggregate size %d", items))
	}
	if err := e.fail(write()); err != nil {
		return err
	}
	e.consume()
	if items > 0 {
		e.open = append(e.open, uint32(items))
	}
	return nil
}

// consume takes one element slot from the innermost open aggregate and
// closes every aggregate that has received all its elements.
func (e *Encoder) consume() {
	if n := len(e.open); n > 0 {
		e.open[n-1]--
	}
	for n := len(e.open); n > 0 && e.open[n-1] == 0; n-- {
		e.open = e.open[:n-1]
	}
}

func (e *Encoder) fail(err error) error {
	if err != nil && e.err == nil {
		e.err = err
	}
	return err
}
