package stream

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// DefaultTextEncoding is the encoding used for document strings unless
// configured otherwise.
const DefaultTextEncoding = "UTF-8"

// LookupTextEncoding resolves an IANA charset name. Names that are registered
// but have no implementation are reported as unavailable.
func LookupTextEncoding(name string) (encoding.Encoding, error) {
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("text encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("text encoding %q is not available", name)
	}
	return enc, nil
}
