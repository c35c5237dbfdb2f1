package catalog

import "errors"

// Sentinel kinds for catalog errors.
var (
	ErrRunNotFound = errors.New("run not found")
	ErrClosed      = errors.New("catalog is closed")
)
