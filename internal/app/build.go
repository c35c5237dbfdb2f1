package service

import (
	"context"

	"github.com/okian/gaitprep/internal/adapters/catalog"
	"github.com/okian/gaitprep/internal/adapters/repository"
	"github.com/okian/gaitprep/internal/adapters/source"
	"github.com/okian/gaitprep/internal/config"
	"github.com/okian/gaitprep/internal/domain/model"
	"github.com/okian/gaitprep/internal/domain/outlier"
	"github.com/okian/gaitprep/internal/domain/resample"
)

// FromConfig wires a Service from cfg: file source, .npy stores, resampler,
// outlier filter and the optional catalog. Extra options are applied last.
// Unknown strategy or interpolation names fail here, before any data flows.
func FromConfig(ctx context.Context, cfg *config.Config, opts ...Option) (*Service, error) {
	r, err := resample.New(
		resample.WithSamples(cfg.Samples),
		resample.WithMethod(cfg.Interpolation),
		resample.WithMinLength(cfg.MinStrideSamples),
	)
	if err != nil {
		return nil, err
	}

	detector, err := outlier.New(cfg.OutlierStrategy, outlier.WithSeed(cfg.OutlierSeed))
	if err != nil {
		return nil, err
	}

	base := []Option{
		WithSource(source.NewFileSource(cfg.DatasetRoot, source.WithSampleRate(cfg.SampleRateHz))),
		WithNormalizedStore(repository.NewNpyStore(cfg.NormalizedDir)),
		WithCleanStore(repository.NewNpyStore(cfg.CleanDir)),
		WithResampler(r),
		WithFilter(outlier.NewFilter(detector, outlier.WithMinGroup(cfg.OutlierMinGroup))),
		WithGaitEventKey(cfg.GaitEventKey),
		WithAxis(model.Axis(cfg.Axis)),
		WithWorkerCount(cfg.WorkerCount),
		WithQueueSize(cfg.QueueSize),
		WithFlatCorpusPath(cfg.FlatCorpusPath),
		WithMetricsTextfile(cfg.MetricsTextfile),
		WithSettings(cfg),
	}

	var cat *catalog.Catalog
	if cfg.CatalogPath != "" {
		cat, err = catalog.Open(ctx, cfg.CatalogPath)
		if err != nil {
			return nil, err
		}
		base = append(base, WithCatalog(cat))
	}

	svc, err := New(append(base, opts...)...)
	if err != nil {
		if cat != nil {
			_ = cat.Close()
		}
		return nil, err
	}
	return svc, nil
}
