package errors

import (
	"errors"
	"fmt"
)

// Process exit codes. The numeric values are part of the tool's external
// contract and must not change.
const (
	ExitOK                = 0
	ExitUsage             = 1
	ExitOpenFile          = 5
	ExitInvalidDocument   = 63
	ExitConstructDocument = 64
	ExitInternal          = 70
	ExitOutput            = 74
	ExitSandbox           = 99
	ExitEncoding          = 127
)

// PDFError is an error raised while turning a PDF into the output stream.
// The Type selects the process exit code.
type PDFError struct {
	Type    ErrorType
	Message string
	Page    int
	Err     error
}

// ErrorType represents different categories of failures
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeUsage
	ErrorTypeRange
	ErrorTypeOpenFile
	ErrorTypeInvalidDocument
	ErrorTypeConstruct
	ErrorTypeSandbox
	ErrorTypeEncoding
	ErrorTypeOutput
	ErrorTypeMalformedPage
	ErrorTypeInternal
)

// Error implements the error interface
func (e *PDFError) Error() string {
	msg := e.Message
	if e.Page > 0 {
		msg = fmt.Sprintf("page %d: %s", e.Page, msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *PDFError) Unwrap() error {
	return e.Err
}

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeUsage:
		return "USAGE"
	case ErrorTypeRange:
		return "PAGE_RANGE"
	case ErrorTypeOpenFile:
		return "OPEN_FILE"
	case ErrorTypeInvalidDocument:
		return "INVALID_DOCUMENT"
	case ErrorTypeConstruct:
		return "CONSTRUCT_DOCUMENT"
	case ErrorTypeSandbox:
		return "SANDBOX"
	case ErrorTypeEncoding:
		return "ENCODING"
	case ErrorTypeOutput:
		return "OUTPUT"
	case ErrorTypeMalformedPage:
		return "MALFORMED_PAGE"
	case ErrorTypeInternal:
		return "INTERNAL"
	default:
		return "UNKNOWN"
	}
}

// ExitCode maps an error type to the process exit status
func (et ErrorType) ExitCode() int {
	switch et {
	case ErrorTypeUsage, ErrorTypeRange:
		return ExitUsage
	case ErrorTypeOpenFile:
		return ExitOpenFile
	case ErrorTypeInvalidDocument:
		return ExitInvalidDocument
	case ErrorTypeConstruct:
		return ExitConstructDocument
	case ErrorTypeSandbox:
		return ExitSandbox
	case ErrorTypeEncoding:
		return ExitEncoding
	case ErrorTypeOutput:
		return ExitOutput
	default:
		return ExitInternal
	}
}

// IsRecoverable reports whether processing may continue after an error of
// this type. Only per-page content failures are recoverable; everything else
// aborts the run.
func (et ErrorType) IsRecoverable() bool {
	return et == ErrorTypeMalformedPage
}

// New creates a PDFError without an underlying cause
func New(errorType ErrorType, message string) *PDFError {
	return &PDFError{Type: errorType, Message: message}
}

// Newf creates a PDFError with a formatted message
func Newf(errorType ErrorType, format string, args ...any) *PDFError {
	return &PDFError{Type: errorType, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps err as a PDFError of the given type. A nil err yields nil.
func Wrap(errorType ErrorType, message string, err error) error {
	if err == nil {
		return nil
	}
	return &PDFError{Type: errorType, Message: message, Err: err}
}

// WithPage adds page number information to an existing PDFError
func (e *PDFError) WithPage(pageNumber int) *PDFError {
	e.Page = pageNumber
	return e
}

// TypeOf returns the ErrorType carried by err, or ErrorTypeUnknown.
func TypeOf(err error) ErrorType {
	var pe *PDFError
	if errors.As(err, &pe) {
		return pe.Type
	}
	return ErrorTypeUnknown
}

// Is reports whether err carries a PDFError of the given type.
func Is(err error, errorType ErrorType) bool {
	return err != nil && TypeOf(err) == errorType
}

// ExitCodeOf returns the process exit status for err. nil maps to ExitOK and
// errors without a PDFError in their chain map to ExitInternal.
func ExitCodeOf(err error) int {
	if err == nil {
		return ExitOK
	}
	return TypeOf(err).ExitCode()
}
