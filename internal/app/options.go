package service

import (
	"github.com/okian/gaitprep/internal/adapters/catalog"
	"github.com/okian/gaitprep/internal/adapters/repository"
	"github.com/okian/gaitprep/internal/adapters/source"
	"github.com/okian/gaitprep/internal/domain/model"
	"github.com/okian/gaitprep/internal/domain/outlier"
	"github.com/okian/gaitprep/internal/domain/resample"
	"github.com/okian/gaitprep/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSource sets where raw trials are read from.
func WithSource(src source.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithNormalizedStore sets the store of the normalized dataset.
func WithNormalizedStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.normalized = store
		}
	}
}

// WithCleanStore sets the store of the clean dataset.
func WithCleanStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.clean = store
		}
	}
}

// WithResampler sets the stride resampler.
func WithResampler(r *resample.Resampler) Option {
	return func(s *Service) {
		if r != nil {
			s.resampler = r
		}
	}
}

// WithFilter sets the outlier filter.
func WithFilter(f *outlier.Filter) Option {
	return func(s *Service) {
		if f != nil {
			s.filter = f
		}
	}
}

// WithGaitEventKey selects the stride start event: "hs" or "to".
func WithGaitEventKey(key string) Option {
	return func(s *Service) {
		if key != "" {
			s.gaitKey = key
		}
	}
}

// WithAxis selects the angle component used for stride vectors.
func WithAxis(axis model.Axis) Option {
	return func(s *Service) {
		if axis >= model.AxisX && axis <= model.AxisZ {
			s.axis = axis
		}
	}
}

// WithWorkerCount sets the number of subject workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize bounds the subject job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithFlatCorpusPath enables the parquet export of the unfiltered corpus.
func WithFlatCorpusPath(path string) Option {
	return func(s *Service) {
		s.flatCorpusPath = path
	}
}

// WithCatalog records runs and artifacts.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Service) {
		s.catalog = c
	}
}

// WithSettings sets the value stored with each catalogued run.
func WithSettings(settings any) Option {
	return func(s *Service) {
		s.settings = settings
	}
}

// WithMetricsTextfile enables a Prometheus textfile dump after each run.
func WithMetricsTextfile(path string) Option {
	return func(s *Service) {
		s.metricsTextfile = path
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
