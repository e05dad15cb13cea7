package engine

import (
	"fmt"
	"io"

	"github.com/a3tai/pdf2msgpack/internal/pdf/errors"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ValidationMode selects how strictly documents are checked before extraction
type ValidationMode string

const (
	ValidationOff     ValidationMode = "off"
	ValidationRelaxed ValidationMode = "relaxed"
	ValidationStrict  ValidationMode = "strict"
)

// ParseValidationMode converts a configuration string to a ValidationMode
func ParseValidationMode(s string) (ValidationMode, error) {
	switch m := ValidationMode(s); m {
	case ValidationOff, ValidationRelaxed, ValidationStrict:
		return m, nil
	default:
		return "", fmt.Errorf("invalid validation mode: %s (must be one of: off, relaxed, strict)", s)
	}
}

// Validator checks document structure with pdfcpu. A nil *Validator accepts
// every document.
type Validator struct {
	mode ValidationMode
	conf *model.Configuration
}

// NewValidator prepares a validator for mode. It touches the filesystem only
// to disable pdfcpu's configuration directory, so it must be called before
// the sandbox is installed. ValidationOff yields a nil Validator.
func NewValidator(mode ValidationMode) *Validator {
	if mode == ValidationOff {
		return nil
	}

	api.DisableConfigDir()
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if mode == ValidationStrict {
		conf.ValidationMode = model.ValidationStrict
	}

	return &Validator{mode: mode, conf: conf}
}

// Mode returns the validation mode, ValidationOff for a nil Validator
func (v *Validator) Mode() ValidationMode {
	if v == nil {
		return ValidationOff
	}
	return v.mode
}

// Validate reads the whole document from rs and checks its object graph.
// Failures are reported as ErrorTypeInvalidDocument.
func (v *Validator) Validate(rs io.ReadSeeker) (err error) {
	if v == nil {
		return nil
	}
	defer errors.RecoverTo(errors.ErrorTypeInvalidDocument, "validate document", &err)

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return errors.Wrap(errors.ErrorTypeConstruct, "rewind input", err)
	}

	ctx, err := api.ReadContext(rs, v.conf)
	if err != nil {
		return errors.Wrap(errors.ErrorTypeInvalidDocument, "failed to read PDF context", err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return errors.Wrap(errors.ErrorTypeInvalidDocument, fmt.Sprintf("%s validation failed", v.mode), err)
	}
	return nil
}
