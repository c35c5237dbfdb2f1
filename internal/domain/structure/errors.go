package structure

import "errors"

// Sentinel error kinds for this package.
var (
	ErrEmptyLeaf      = errors.New("dataset leaf has no strides")
	ErrRaggedLeaf     = errors.New("strides of one leaf differ in length")
	ErrCorpusMismatch = errors.New("corpus data and label rows differ in count")
)
