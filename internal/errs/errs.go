package errs

import "errors"

// Domain sentinel errors, mapped to HTTP status codes in handlers.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrEmptyImage      = errors.New("empty image buffer")
	ErrImageDecode     = errors.New("image decode failed")
)
