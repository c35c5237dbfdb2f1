// Package worker runs subject jobs concurrently and provides the barrier the
// pipeline waits on before grouped outlier filtering.
package worker

import (
	"github.com/okian/gaitprep/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithErrorHandler receives every failed job.
func WithErrorHandler(fn func(job Job, err error)) Option {
	return withErrorSink(fn)
}

func withErrorSink(fn func(job Job, err error)) Option {
	return func(w *InMemoryWorker) {
		if fn == nil {
			return
		}
		prev := w.onError
		w.onError = func(job Job, err error) {
			if prev != nil {
				prev(job, err)
			}
			fn(job, err)
		}
	}
}
