// Package service runs the gait preparation pipeline: stride generation per
// subject, then grouped outlier filtering and dataset structuring.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/gaitprep/internal/adapters/catalog"
	"github.com/okian/gaitprep/internal/adapters/repository"
	"github.com/okian/gaitprep/internal/adapters/source"
	"github.com/okian/gaitprep/internal/config"
	"github.com/okian/gaitprep/internal/domain/model"
	"github.com/okian/gaitprep/internal/domain/outlier"
	"github.com/okian/gaitprep/internal/domain/resample"
	"github.com/okian/gaitprep/internal/domain/stride"
	"github.com/okian/gaitprep/internal/domain/structure"
	"github.com/okian/gaitprep/pkg/logger"
	"github.com/okian/gaitprep/pkg/metrics"
)

// Dataset variants, used as metric and catalog labels.
const (
	VariantNormalized = "normalized"
	VariantClean      = "clean"
)

const (
	defaultGaitKey   = "hs"
	defaultQueueSize = 64
)

// Service orchestrates both pipeline stages.
type Service struct {
	source     source.Source
	normalized repository.Store
	clean      repository.Store
	resampler  *resample.Resampler
	filter     *outlier.Filter
	catalog    *catalog.Catalog

	gaitKey         string
	axis            model.Axis
	workerCount     int
	queueSize       int
	flatCorpusPath  string
	metricsTextfile string
	settings        any

	// runID is set for the duration of Run when a catalog is attached.
	runID string

	logger logger.Logger
}

// Summary reports one Run.
type Summary struct {
	RunID    string
	Mode     string
	RowsIn   int
	RowsOut  int
	Duration time.Duration
}

// New constructs a Service. Without options the resampler uses K=50 cubic
// interpolation and the filter an isolation forest seeded with 42.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		gaitKey:     defaultGaitKey,
		axis:        model.Sagittal,
		workerCount: 1,
		queueSize:   defaultQueueSize,
	}
	for _, opt := range opts {
		opt(s)
	}

	if _, err := stride.Key(model.SideRight, s.gaitKey); err != nil {
		return nil, err
	}
	if s.resampler == nil {
		r, err := resample.New()
		if err != nil {
			return nil, err
		}
		s.resampler = r
	}
	if s.filter == nil {
		d, err := outlier.New(outlier.IsolationForest)
		if err != nil {
			return nil, err
		}
		s.filter = outlier.NewFilter(d)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger = s.logger.Named("pipeline")
	return s, nil
}

// Run executes the stages selected by mode: all (normalize then clean in
// memory), normalize, or clean (reload the normalized dataset, then clean).
func (s *Service) Run(ctx context.Context, mode string) (summary Summary, err error) {
	start := time.Now()
	summary.Mode = mode

	switch mode {
	case config.ModeAll, config.ModeNormalize, config.ModeClean:
	default:
		return summary, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	if s.catalog != nil {
		run, berr := s.catalog.BeginRun(ctx, mode, s.settings)
		if berr != nil {
			return summary, berr
		}
		s.runID = run.ID
		summary.RunID = run.ID
		defer func() {
			status := catalog.StatusDone
			if err != nil {
				status = catalog.StatusFailed
			}
			if ferr := s.catalog.FinishRun(context.WithoutCancel(ctx), run.ID, status, summary.RowsIn, summary.RowsOut); ferr != nil {
				err = errors.Join(err, ferr)
			}
			s.runID = ""
		}()
	}

	s.logger.Info(ctx, "pipeline run started", logger.String("mode", mode), logger.String("run_id", summary.RunID))

	var corpus model.Corpus
	if mode == config.ModeClean {
		corpus, err = s.LoadCorpus(ctx)
	} else {
		corpus, err = s.Normalize(ctx)
	}
	if err != nil {
		return summary, err
	}
	summary.RowsIn = corpus.Len()
	summary.RowsOut = corpus.Len()

	if s.flatCorpusPath != "" {
		if err := repository.WriteCorpus(s.flatCorpusPath, corpus); err != nil {
			return summary, err
		}
		s.logger.Info(ctx, "flat corpus exported",
			logger.String("path", s.flatCorpusPath),
			logger.Int("rows", corpus.Len()),
		)
	}

	if mode != config.ModeNormalize {
		ds, err := s.Clean(ctx, corpus)
		if err != nil {
			return summary, err
		}
		summary.RowsOut = ds.Rows()
	}

	summary.Duration = time.Since(start)
	s.logger.Info(ctx, "pipeline run finished",
		logger.String("mode", mode),
		logger.Int("rows_in", summary.RowsIn),
		logger.Int("rows_out", summary.RowsOut),
		logger.Duration("elapsed", summary.Duration),
	)

	if s.metricsTextfile != "" {
		if err := metrics.WriteTextfile(s.metricsTextfile); err != nil {
			return summary, err
		}
	}
	return summary, nil
}

// Close releases the catalog, if any.
func (s *Service) Close() error {
	if s.catalog == nil {
		return nil
	}
	return s.catalog.Close()
}

// persist writes every leaf of ds to store and records each artifact.
func (s *Service) persist(ctx context.Context, variant string, store repository.Store, ds structure.Dataset) error {
	if store == nil {
		return fmt.Errorf("%w: %s store", ErrNotConfigured, variant)
	}

	pather, _ := store.(interface{ Path(repository.Key) string })
	var catalogErr error

	err := repository.PutLeaves(ctx, store, ds.Leaves(), func(leaf structure.Leaf) {
		metrics.RecordArtifactWritten(variant)
		rows, cols := leaf.Strides.Dims()
		path := ""
		if pather != nil {
			path = pather.Path(repository.Key{Subject: leaf.Subject, Joint: leaf.Joint, Label: leaf.Label})
		}
		s.logger.Debug(ctx, "artifact written",
			logger.String("variant", variant),
			logger.String("subject", leaf.Subject),
			logger.String("joint", string(leaf.Joint)),
			logger.String("label", string(leaf.Label)),
			logger.Int("rows", rows),
		)
		if s.catalog == nil || s.runID == "" || catalogErr != nil {
			return
		}
		catalogErr = s.catalog.RecordArtifact(ctx, catalog.Artifact{
			RunID:   s.runID,
			Variant: variant,
			Subject: leaf.Subject,
			Joint:   string(leaf.Joint),
			Label:   string(leaf.Label),
			Rows:    rows,
			Cols:    cols,
			Path:    path,
		})
	})
	if err != nil {
		return err
	}
	return catalogErr
}
