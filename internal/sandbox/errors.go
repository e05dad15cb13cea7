package sandbox

import "errors"

// ErrUnsupported is returned by Install where no filter exists for the platform.
var ErrUnsupported = errors.New("sandbox: unsupported platform")
