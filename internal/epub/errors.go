package epub

import "errors"

// Structural errors returned while opening an archive. All of them wrap
// ErrInvalidEPUB so callers can classify them with a single errors.Is check.
var (
	ErrInvalidEPUB = errors.New("invalid EPUB")

	ErrInvalidMimetype    = invalidf("invalid mimetype: must be 'application/epub+zip'")
	ErrMimetypeCompressed = invalidf("mimetype must not be compressed")
	ErrMimetypeNotFound   = invalidf("mimetype file not found")
	ErrContainerNotFound  = invalidf("META-INF/container.xml not found")
	ErrOPFPathNotFound    = invalidf("OPF path not found in container.xml")
	ErrDRMProtected       = invalidf("file is DRM protected")
)

type invalidError struct {
	msg string
}

func invalidf(msg string) error {
	return &invalidError{msg: msg}
}

func (e *invalidError) Error() string { return e.msg }

func (e *invalidError) Unwrap() error { return ErrInvalidEPUB }
