package repository

import "os"

// Default store configuration constants.
const (
	defaultDirMode  os.FileMode = 0o755
	defaultFileMode os.FileMode = 0o644
	defaultExt                  = ".npy"
)

// Option applies a configuration option to the NpyStore.
type Option func(*NpyStore)

// WithDirMode sets the permission bits of created directories.
func WithDirMode(mode os.FileMode) Option {
	return func(s *NpyStore) {
		if mode != 0 {
			s.dirMode = mode
		}
	}
}

// WithFileMode sets the permission bits of written arrays.
func WithFileMode(mode os.FileMode) Option {
	return func(s *NpyStore) {
		if mode != 0 {
			s.fileMode = mode
		}
	}
}
