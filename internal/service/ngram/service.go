package ngram

import (
	"context"
	"errors"
	"fmt"

	"lm-go/internal/model/ngram"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

const defaultCacheSize = 8

// TrainRequest describes one model to build from a token sequence
type TrainRequest struct {
	Name     string
	N        int
	Strategy Strategy
	Tokens   []string
}

// TrainResult is a trained model together with its smoothing summary
type TrainResult struct {
	Model     *Model
	Windows   int64
	Smoothing SmoothingReport
}

// Service trains, stores and evaluates n-gram models. Loaded models are
// kept in an LRU cache keyed by name.
type Service struct {
	store     Store
	evaluator *Evaluator
	cache     *lru.Cache[string, *Model]
	logger    *zap.Logger
}

// NewService creates a service over store. cacheSize <= 0 uses the default.
func NewService(store Store, evaluator *Evaluator, cacheSize int, logger *zap.Logger) (*Service, error) {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	cache, err := lru.New[string, *Model](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create model cache: %w", err)
	}
	if evaluator == nil {
		evaluator = NewEvaluator(MatchExact, logger)
	}
	return &Service{
		store:     store,
		evaluator: evaluator,
		cache:     cache,
		logger:    logger,
	}, nil
}

// Store returns the backing store
func (s *Service) Store() Store {
	return s.store
}

// Evaluator returns the evaluator used by Evaluate
func (s *Service) Evaluator() *Evaluator {
	return s.evaluator
}

// Train counts, smooths and persists a model. It fails with
// ErrInvalidConfiguration for n < 2 or an unusable strategy.
func (s *Service) Train(ctx context.Context, req TrainRequest) (*TrainResult, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("model name is required: %w", ngram.ErrInvalidConfiguration)
	}
	counter, err := NewCounter(req.N, s.logger)
	if err != nil {
		return nil, err
	}

	table := counter.Count(req.Tokens)
	report, err := Smooth(table, req.Strategy, s.logger)
	if err != nil {
		return nil, err
	}

	model := NewModelFromTable(req.Name, table, req.Strategy)
	if err := s.store.Save(ctx, model); err != nil {
		return nil, fmt.Errorf("failed to save model %s: %w", req.Name, err)
	}
	s.cache.Add(req.Name, model)

	s.logger.Info("Trained n-gram model",
		zap.String("model", req.Name),
		zap.Int("n", req.N),
		zap.String("strategy", req.Strategy.String()),
		zap.Int("tokens", len(req.Tokens)),
		zap.Int("records", model.Len()),
		zap.String("backend", s.store.Backend()))

	return &TrainResult{Model: model, Windows: table.Windows(), Smoothing: report}, nil
}

// Load returns the model stored under name, from cache when possible.
// n == 0 accepts whatever order is stored.
func (s *Service) Load(ctx context.Context, name string, n int) (*Model, error) {
	if model, ok := s.cache.Get(name); ok && (n == 0 || model.N == n) {
		return model, nil
	}

	model, report, err := s.store.Load(ctx, name, n)
	if err != nil {
		return nil, err
	}
	if report.Skipped > 0 {
		s.logger.Warn("Model loaded with skipped records",
			zap.String("model", name),
			zap.Int("skipped", report.Skipped))
	}
	s.cache.Add(name, model)
	return model, nil
}

// TrainOrLoad loads the stored model unless rebuild is set or nothing is
// stored yet, in which case it trains from req.
func (s *Service) TrainOrLoad(ctx context.Context, req TrainRequest, rebuild bool) (*Model, error) {
	if !rebuild && s.store.Exists(ctx, req.Name) {
		model, err := s.Load(ctx, req.Name, req.N)
		if err == nil {
			return model, nil
		}
		if errors.Is(err, ngram.ErrInvalidConfiguration) {
			return nil, err
		}
		s.logger.Warn("Failed to load stored model, retraining",
			zap.String("model", req.Name),
			zap.Error(err))
	}

	result, err := s.Train(ctx, req)
	if err != nil {
		return nil, err
	}
	return result.Model, nil
}

// Evaluate scores tokens against the named model
func (s *Service) Evaluate(ctx context.Context, name string, n int, tokens []string) (Report, error) {
	model, err := s.Load(ctx, name, n)
	if err != nil {
		return Report{}, err
	}
	return s.evaluator.Evaluate(model, tokens), nil
}

// Predict returns up to k next-word candidates after the n-1 word prefix
func (s *Service) Predict(ctx context.Context, name string, prefix ngram.Words, k int) ([]Prediction, error) {
	model, err := s.Load(ctx, name, 0)
	if err != nil {
		return nil, err
	}
	if len(prefix) != model.N-1 {
		return nil, fmt.Errorf("prefix of %d words for a %d-gram model: %w", len(prefix), model.N, ngram.ErrInvalidConfiguration)
	}
	return model.Predict(prefix, k), nil
}

// Stats returns summary statistics for the named model
func (s *Service) Stats(ctx context.Context, name string) (ModelStats, error) {
	model, err := s.Load(ctx, name, 0)
	if err != nil {
		return ModelStats{}, err
	}
	return model.Stats(), nil
}

// Delete removes the model from the store and the cache
func (s *Service) Delete(ctx context.Context, name string) error {
	s.cache.Remove(name)
	return s.store.Delete(ctx, name)
}

// Close closes the backing store
func (s *Service) Close() error {
	s.cache.Purge()
	return s.store.Close()
}
