package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/okian/gaitprep/internal/adapters/mq/queue"
	"github.com/okian/gaitprep/internal/adapters/mq/worker"
	"github.com/okian/gaitprep/internal/adapters/source"
	"github.com/okian/gaitprep/internal/domain/labeling"
	"github.com/okian/gaitprep/internal/domain/model"
	"github.com/okian/gaitprep/internal/domain/resample"
	"github.com/okian/gaitprep/internal/domain/stride"
	"github.com/okian/gaitprep/internal/domain/structure"
	"github.com/okian/gaitprep/pkg/logger"
	"github.com/okian/gaitprep/pkg/metrics"
)

// Rejection and drop reasons recorded as metric labels.
const (
	reasonInvalid     = "invalid"
	reasonMalformed   = "malformed"
	reasonGapSpanning = "gap_spanning"
	reasonTooShort    = "too_short"
)

// NormalizedSubject names the index-th subject (0-based) of the normalized
// dataset: AB01, AB02, ...
func NormalizedSubject(index int) string {
	return fmt.Sprintf("AB%02d", index+1)
}

// collector gathers per-subject corpora from concurrent workers.
type collector struct {
	mu      sync.Mutex
	results map[int]model.Corpus
	failed  []string
}

func (c *collector) fail(subject string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failed = append(c.failed, subject)
}

// failures returns the failed subjects in lexical order.
func (c *collector) failures() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Sorted(slices.Values(c.failed))
}

func (c *collector) put(index int, corpus model.Corpus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[index] = corpus
}

// merge concatenates the results in subject order.
func (c *collector) merge(n int) model.Corpus {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out model.Corpus
	for i := 0; i < n; i++ {
		out.Merge(c.results[i])
	}
	return out
}

// Normalize turns every subject's trials into resampled, labeled strides,
// waits for all subjects, then persists the normalized dataset. The returned
// corpus is the flat, unfiltered stride corpus.
func (s *Service) Normalize(ctx context.Context) (model.Corpus, error) {
	if s.source == nil {
		return model.Corpus{}, fmt.Errorf("%w: trial source", ErrNotConfigured)
	}
	start := time.Now()

	subjects, err := s.source.Subjects(ctx)
	if err != nil {
		return model.Corpus{}, fmt.Errorf("list subjects: %w", err)
	}
	s.logger.Info(ctx, "normalizing subjects",
		logger.Int("subjects", len(subjects)),
		logger.Int("workers", s.workerCount),
	)

	results := &collector{results: make(map[int]model.Corpus, len(subjects))}
	q := queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	pool := worker.NewPool(s.workerCount, q, worker.ProcessorFunc(func(ctx context.Context, job worker.Job) error {
		corpus, err := s.processSubject(ctx, job)
		if err != nil {
			return err
		}
		results.put(job.Index, corpus)
		return nil
	}), worker.WithLogger(s.logger), worker.WithErrorHandler(func(job worker.Job, _ error) {
		results.fail(job.Subject)
	}))
	pool.Start(ctx)

	for i, subject := range subjects {
		if err := q.EnqueueWait(ctx, model.SubjectJob{Index: i, Subject: subject}); err != nil {
			_ = pool.Shutdown(context.WithoutCancel(ctx))
			return model.Corpus{}, err
		}
	}
	_ = q.Close()

	// Barrier: grouped filtering needs every subject's strides.
	if err := pool.Wait(ctx); err != nil {
		if failed := results.failures(); len(failed) > 0 {
			s.logger.Error(ctx, "normalization aborted",
				logger.Any("failed_subjects", failed),
				logger.Error(err),
			)
		}
		return model.Corpus{}, err
	}

	corpus := results.merge(len(subjects))
	metrics.UpdateCorpusRows(VariantNormalized, corpus.Len())

	ds, err := structure.Build(corpus)
	if err != nil {
		return model.Corpus{}, fmt.Errorf("structure normalized corpus: %w", err)
	}
	if err := s.persist(ctx, VariantNormalized, s.normalized, ds); err != nil {
		return model.Corpus{}, err
	}

	metrics.RecordStageDuration(VariantNormalized, time.Since(start).Seconds())
	s.logger.Info(ctx, "normalized dataset written",
		logger.Int("subjects", len(subjects)),
		logger.Int("strides", corpus.Len()),
		logger.Duration("elapsed", time.Since(start)),
	)
	return corpus, nil
}

// processSubject loads and processes every trial of one subject. Invalid
// trials are skipped; I/O failures abort the subject.
func (s *Service) processSubject(ctx context.Context, job model.SubjectJob) (model.Corpus, error) {
	name := NormalizedSubject(job.Index)
	log := s.logger.With(logger.String("subject", job.Subject), logger.String("normalized", name))

	trials, err := s.source.Trials(ctx, job.Subject)
	if err != nil {
		return model.Corpus{}, fmt.Errorf("list trials: %w", err)
	}

	var corpus model.Corpus
	for _, id := range trials {
		if err := ctx.Err(); err != nil {
			return model.Corpus{}, err
		}
		trial, err := s.source.Load(ctx, job.Subject, id)
		if err != nil {
			if rejectable(err) {
				s.reject(ctx, log, id, reasonMalformed, err)
				continue
			}
			return model.Corpus{}, err
		}
		out, err := s.processTrial(ctx, log, name, trial)
		if err != nil {
			if rejectable(err) {
				s.reject(ctx, log, id, reasonInvalid, err)
				continue
			}
			return model.Corpus{}, err
		}
		metrics.RecordTrialProcessed()
		corpus.Merge(out)
	}

	log.Debug(ctx, "subject normalized",
		logger.Int("trials", len(trials)),
		logger.Int("strides", corpus.Len()),
	)
	return corpus, nil
}

func rejectable(err error) bool {
	return errors.Is(err, labeling.ErrValidation) ||
		errors.Is(err, source.ErrMalformedTrial) ||
		errors.Is(err, stride.ErrLengthMismatch)
}

func (s *Service) reject(ctx context.Context, log logger.Logger, trial, reason string, err error) {
	metrics.RecordTrialRejected(reason)
	log.Warn(ctx, "trial skipped",
		logger.String("trial", trial),
		logger.String("reason", reason),
		logger.Error(err),
	)
}

// processTrial runs label assignment, segmentation, resampling and stride
// labeling for every joint of one trial.
func (s *Service) processTrial(ctx context.Context, log logger.Logger, subject string, trial model.RawTrial) (model.Corpus, error) {
	n := trial.Len()
	labels, err := labeling.Assign(trial.Events, n)
	if err != nil {
		return model.Corpus{}, err
	}

	log.Debug(ctx, "trial labeled",
		logger.String("trial", trial.Trial),
		logger.Int("samples", n),
		logger.Float64("sample_rate_hz", trial.SampleRate),
		logger.Int("cycles", len(trial.Events.Cycles)),
	)

	var corpus model.Corpus
	for _, joint := range model.Joints {
		series, ok := trial.Angles[joint]
		if !ok {
			return model.Corpus{}, fmt.Errorf("%w: %s has no %s series", source.ErrMalformedTrial, trial.Trial, joint)
		}
		side := joint.Side()
		key, err := stride.Key(side, s.gaitKey)
		if err != nil {
			return model.Corpus{}, err
		}

		seg, err := stride.Segment(labels, series.Component(s.axis), side, key)
		if err != nil {
			return model.Corpus{}, fmt.Errorf("%s: %w", joint, err)
		}
		metrics.RecordStridesSegmented(string(joint), len(seg.Strides))
		if seg.GapSpanning > 0 {
			metrics.RecordStridesDropped(reasonGapSpanning, seg.GapSpanning)
			log.Debug(ctx, "gap-spanning strides dropped",
				logger.String("trial", trial.Trial),
				logger.String("joint", string(joint)),
				logger.Int("count", seg.GapSpanning),
			)
		}

		for i, st := range seg.Strides {
			began := time.Now()
			values, err := s.resampler.Resample(st.Values)
			if err != nil {
				if errors.Is(err, resample.ErrInsufficientData) {
					metrics.RecordStridesDropped(reasonTooShort, 1)
					log.Warn(ctx, "stride skipped",
						logger.String("trial", trial.Trial),
						logger.String("joint", string(joint)),
						logger.Int("stride", i),
						logger.Int("samples", st.Len()),
						logger.Error(err),
					)
					continue
				}
				return model.Corpus{}, fmt.Errorf("%s stride %d: %w", joint, i, err)
			}
			metrics.RecordResampleLatency(float64(time.Since(began).Microseconds()))
			metrics.RecordStrideResampled()

			corpus.Append(model.CorpusLabel{
				Subject: subject,
				Joint:   joint,
				Label:   stride.FinalLabel(st.Activities),
			}, values)
		}
	}
	return corpus, nil
}
