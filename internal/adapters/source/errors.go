package source

import "errors"

// Sentinel kinds for source errors.
var (
	ErrUnknownSubject = errors.New("unknown subject")
	ErrUnknownTrial   = errors.New("unknown trial")
	ErrMalformedTrial = errors.New("malformed trial")
)
