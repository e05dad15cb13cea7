package errors

import (
	"fmt"
	"runtime/debug"
)

// RecoverTo converts a panic raised by the PDF engine into a PDFError of the
// given type stored in *errp. It must be deferred directly:
//
//	defer errors.RecoverTo(errors.ErrorTypeMalformedPage, "read text", &err)
//
// The engine signals malformed input by panicking, so every call into it on
// untrusted data goes through here.
func RecoverTo(errorType ErrorType, op string, errp *error) {
	r := recover()
	if r == nil {
		return
	}
	*errp = &PDFError{
		Type:    errorType,
		Message: op,
		Err:     &PanicError{Value: r, Stack: string(debug.Stack())},
	}
}

// PanicError carries a recovered panic value
type PanicError struct {
	Value any
	Stack string
}

func (p *PanicError) Error() string {
	if err, ok := p.Value.(error); ok {
		return "panic: " + err.Error()
	}
	return fmt.Sprintf("panic: %v", p.Value)
}

// Unwrap exposes the panic value when it was itself an error
func (p *PanicError) Unwrap() error {
	if err, ok := p.Value.(error); ok {
		return err
	}
	return nil
}
