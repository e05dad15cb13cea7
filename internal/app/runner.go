// Package app drives one extraction run from sandbox installation to the
// last page of output.
package app

import (
	"fmt"
	"io"
	"log"

	"github.com/a3tai/pdf2msgpack/internal/config"
	"github.com/a3tai/pdf2msgpack/internal/extract"
	"github.com/a3tai/pdf2msgpack/internal/pdf/engine"
	"github.com/a3tai/pdf2msgpack/internal/pdf/errors"
	"github.com/a3tai/pdf2msgpack/internal/pdf/layout"
	"github.com/a3tai/pdf2msgpack/internal/pdf/paths"
	"github.com/a3tai/pdf2msgpack/internal/stream"
	"golang.org/x/text/encoding"
)

// OutputFormatVersion is written first in every stream. Increment it
// whenever the output changes in a way that breaks existing readers.
const OutputFormatVersion = 0

// State is a step of a run. A Runner only moves forward.
type State int

const (
	StateUnopened State = iota
	StateSandboxed
	StateLoaded
	StateRangeValidated
	StateEmitting
	StateDone
)

func (s State) String() string {
	switch s {
	case StateUnopened:
		return "Unopened"
	case StateSandboxed:
		return "Sandboxed"
	case StateLoaded:
		return "Loaded"
	case StateRangeValidated:
		return "RangeValidated"
	case StateEmitting:
		return "Emitting"
	case StateDone:
		return "Done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Runner performs one run for a configuration
type Runner struct {
	cfg       *config.Config
	out       io.Writer
	install   func() error
	validator *engine.Validator

	state   State
	textEnc encoding.Encoding
	doc     *engine.Document
}

// NewRunner prepares a run writing to out. install restricts the process
// before the input is opened. The document validator is set up here, ahead
// of the sandbox.
func NewRunner(cfg *config.Config, out io.Writer, install func() error) *Runner {
	return &Runner{
		cfg:       cfg,
		out:       out,
		install:   install,
		validator: engine.NewValidator(engine.ValidationMode(cfg.Validation)),
	}
}

// State returns the current step
func (r *Runner) State() State {
	return r.state
}

// Run performs every step in order and releases the document.
func (r *Runner) Run() error {
	defer r.Close()

	if err := r.Sandbox(); err != nil {
		return err
	}
	if err := r.Load(); err != nil {
		return err
	}
	if err := r.ValidateRange(); err != nil {
		return err
	}
	return r.Emit()
}

// Sandbox installs the syscall filter.
func (r *Runner) Sandbox() error {
	r.expect(StateUnopened)

	if err := r.install(); err != nil {
		return errors.Wrap(errors.ErrorTypeSandbox, "failed to install syscall filter", err)
	}
	r.state = StateSandboxed
	return nil
}

// Load opens the input, resolves the output text encoding and parses the
// document.
func (r *Runner) Load() error {
	r.expect(StateSandboxed)

	f, err := engine.OpenFile(r.cfg.Filename)
	if err != nil {
		return err
	}

	textEnc, err := stream.LookupTextEncoding(r.cfg.Encoding)
	if err != nil {
		_ = f.Close()
		return errors.Wrap(errors.ErrorTypeEncoding, "text encoding unavailable", err)
	}

	doc, err := engine.Load(f, r.validator, engine.DefaultOptions())
	if err != nil {
		_ = f.Close()
		return err
	}

	r.textEnc = textEnc
	r.doc = doc
	r.state = StateLoaded
	if r.cfg.IsDebug() {
		log.Printf("loaded %s: %d pages", r.cfg.Filename, doc.NumPages())
	}
	return nil
}

// ValidateRange checks the requested pages against the document length.
func (r *Runner) ValidateRange() error {
	r.expect(StateLoaded)

	if err := r.cfg.CheckPageCount(r.doc.NumPages()); err != nil {
		return errors.New(errors.ErrorTypeRange, err.Error())
	}
	r.state = StateRangeValidated
	return nil
}

// Emit writes the version, the metadata and, unless only metadata was
// requested, every selected page.
func (r *Runner) Emit() error {
	r.expect(StateRangeValidated)
	r.state = StateEmitting

	enc := stream.NewEncoder(r.out, r.textEnc)
	if err := r.emit(enc); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return errors.Wrap(errors.ErrorTypeOutput, "write output", err)
	}

	r.state = StateDone
	return nil
}

func (r *Runner) emit(enc *stream.Encoder) error {
	if err := enc.WriteInt(OutputFormatVersion); err != nil {
		return errors.Wrap(errors.ErrorTypeOutput, "write version", err)
	}
	if err := extract.WriteMetadata(enc, r.doc); err != nil {
		return errors.Wrap(errors.ErrorTypeOutput, "write metadata", err)
	}
	if r.cfg.MetaOnly {
		return nil
	}

	opts := extract.PageOptions{Bitmap: r.cfg.Bitmap}
	total := r.doc.NumPages()
	first, last := r.cfg.PageSpan(total)
	for n := first; n <= last; n++ {
		if r.cfg.IsDebug() {
			log.Printf("page %d/%d", n, total)
		}

		var page extract.Page
		if p, err := r.doc.Page(n); err != nil {
			page = unreadablePage{number: n, err: err}
		} else {
			page = p
		}

		if err := extract.WritePage(enc, page, opts); err != nil {
			return errors.Wrap(errors.ErrorTypeOutput, fmt.Sprintf("write page %d", n), err)
		}
	}
	return nil
}

// Close releases the document. It is safe to call more than once.
func (r *Runner) Close() error {
	if r.doc == nil {
		return nil
	}
	err := r.doc.Close()
	r.doc = nil
	return err
}

func (r *Runner) expect(s State) {
	if r.state != s {
		panic(fmt.Sprintf("app: step requires state %s, runner is in %s", s, r.state))
	}
}

// unreadablePage stands in for a page the page tree cannot produce, so the
// stream still carries one map per selected page.
type unreadablePage struct {
	number int
	err    error
}

func (p unreadablePage) Number() int { return p.number }

func (p unreadablePage) Size() (float64, float64) { return 0, 0 }

func (p unreadablePage) TextPage() (*layout.TextPage, error) { return nil, p.err }

func (p unreadablePage) RenderPaths(paths.Sink) error { return p.err }
