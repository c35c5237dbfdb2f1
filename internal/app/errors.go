package service

import "errors"

// Sentinel kinds for pipeline errors.
var (
	ErrNotConfigured = errors.New("service dependency not configured")
	ErrUnknownMode   = errors.New("unknown run mode")
)
