package service

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/gaitprep/internal/adapters/repository"
	"github.com/okian/gaitprep/internal/domain/model"
	"github.com/okian/gaitprep/internal/domain/structure"
	"github.com/okian/gaitprep/pkg/logger"
	"github.com/okian/gaitprep/pkg/metrics"
)

// Outlier group outcomes recorded as metric labels.
const (
	groupExempt    = "exempt"
	groupEvaluated = "evaluated"
)

// LoadCorpus rebuilds the flat corpus from the normalized store, walking
// subjects, joints and labels in lexical order. A missing or unreadable
// artifact fails the load.
func (s *Service) LoadCorpus(ctx context.Context) (model.Corpus, error) {
	if s.normalized == nil {
		return model.Corpus{}, fmt.Errorf("%w: normalized store", ErrNotConfigured)
	}
	leaves, err := repository.LoadLeaves(ctx, s.normalized)
	if err != nil {
		return model.Corpus{}, fmt.Errorf("load normalized dataset: %w", err)
	}
	corpus := structure.Flatten(leaves)
	s.logger.Info(ctx, "normalized dataset loaded",
		logger.Int("leaves", len(leaves)),
		logger.Int("strides", corpus.Len()),
	)
	return corpus, nil
}

// Clean filters outliers group by group, structures the survivors and
// persists the clean dataset.
func (s *Service) Clean(ctx context.Context, corpus model.Corpus) (structure.Dataset, error) {
	start := time.Now()
	strategy := s.filter.Detector().Name()

	filtered, reports, err := s.filter.Apply(corpus)
	if err != nil {
		return nil, fmt.Errorf("filter outliers: %w", err)
	}

	removed := 0
	for _, r := range reports {
		if r.Exempt {
			metrics.RecordOutlierGroup(groupExempt)
		} else {
			metrics.RecordOutlierGroup(groupEvaluated)
			metrics.RecordOutliersRemoved(strategy, string(r.Key.Joint), r.Removed)
		}
		removed += r.Removed
		s.logger.Debug(ctx, "outlier group",
			logger.String("joint", string(r.Key.Joint)),
			logger.String("label", string(r.Key.Label)),
			logger.Int("members", r.Members),
			logger.Int("removed", r.Removed),
			logger.Any("exempt", r.Exempt),
		)
	}
	metrics.UpdateCorpusRows(VariantClean, filtered.Len())
	s.logger.Info(ctx, "outliers removed",
		logger.String("strategy", strategy),
		logger.Int("groups", len(reports)),
		logger.Int("removed", removed),
		logger.Int("remaining", filtered.Len()),
	)

	ds, err := structure.Build(filtered)
	if err != nil {
		return nil, fmt.Errorf("structure clean corpus: %w", err)
	}
	if err := s.persist(ctx, VariantClean, s.clean, ds); err != nil {
		return nil, err
	}

	metrics.RecordStageDuration(VariantClean, time.Since(start).Seconds())
	return ds, nil
}
