package stride

import "errors"

// Sentinel error kinds for stride segmentation.
var (
	ErrUnknownKey     = errors.New("unknown gait event key")
	ErrLengthMismatch = errors.New("labels and values differ in length")
)
