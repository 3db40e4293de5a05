package metrics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	feedbackRepo "repairhub/database/repository/feedback"
	requestRepo "repairhub/database/repository/request"
	"repairhub/models"
)

const DefaultReviewLimit = 3

var (
	ErrInvalidGranularity = errors.New("period must be one of day, week, month, year")
	ErrStoreUnavailable   = errors.New("metrics source unavailable")
)

type MetricsService interface {
	GetPerformanceRollup(ctx context.Context, providerID string, granularity models.PeriodGranularity) (*models.PerformanceRollup, error)
	GetEarningsSummary(ctx context.Context, providerID string) (*models.EarningsSummary, error)
	GetLatestReviews(ctx context.Context, providerID string, limit int) ([]models.ProviderFeedbackRecord, error)
}

// DefaultMetricsService fetches a provider's history and hands it to the pure
// aggregation functions. Cache is optional.
type DefaultMetricsService struct {
	Requests requestRepo.RequestStore
	Feedback feedbackRepo.FeedbackSource
	Cache    RollupCache
	Location *time.Location
	Now      func() time.Time
	Logger   *zap.Logger
}

func NewDefaultMetricsService(requests requestRepo.RequestStore, feedback feedbackRepo.FeedbackSource, cache RollupCache, loc *time.Location, logger *zap.Logger) (*DefaultMetricsService, error) {
	if requests == nil || feedback == nil {
		return nil, fmt.Errorf("metrics service initialization error: request or feedback source is nil")
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultMetricsService{
		Requests: requests,
		Feedback: feedback,
		Cache:    cache,
		Location: loc,
		Now:      time.Now,
		Logger:   logger,
	}, nil
}

func (s *DefaultMetricsService) GetPerformanceRollup(ctx context.Context, providerID string, granularity models.PeriodGranularity) (*models.PerformanceRollup, error) {
	if granularity == "" {
		granularity = models.PeriodMonth
	}
	if !granularity.Valid() {
		return nil, ErrInvalidGranularity
	}
	logger := s.logger().With(zap.String("providerId", providerID), zap.String("period", string(granularity)))

	// The generation is taken before the stores are read; see RollupCache.
	cache := s.Cache
	var generation int64
	if cache != nil {
		gen, err := cache.Generation(ctx, providerID)
		if err != nil {
			logger.Warn("rollup cache unavailable", zap.Error(err))
			cache = nil
		} else {
			generation = gen
		}
	}
	if cache != nil {
		cached, ok, err := cache.Get(ctx, providerID, granularity)
		if err != nil {
			logger.Warn("rollup cache read failed", zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	requests, err := s.Requests.QueryCompletedByProvider(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	feedback, err := s.Feedback.QueryByProvider(ctx, providerID, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	rollup := Aggregate(providerID, requests, feedback, granularity, s.Location)

	if cache != nil {
		err := cache.Set(ctx, rollup, generation)
		switch {
		case errors.Is(err, ErrStaleGeneration):
			logger.Debug("rollup not cached, provider invalidated during read")
		case err != nil:
			logger.Warn("rollup cache write failed", zap.Error(err))
		}
	}
	return &rollup, nil
}

func (s *DefaultMetricsService) GetEarningsSummary(ctx context.Context, providerID string) (*models.EarningsSummary, error) {
	requests, err := s.Requests.QueryCompletedByProvider(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	summary := SummarizeEarnings(providerID, requests, s.now(), s.Location)
	return &summary, nil
}

func (s *DefaultMetricsService) GetLatestReviews(ctx context.Context, providerID string, limit int) ([]models.ProviderFeedbackRecord, error) {
	if limit <= 0 {
		limit = DefaultReviewLimit
	}
	reviews, err := s.Feedback.QueryByProvider(ctx, providerID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if reviews == nil {
		reviews = []models.ProviderFeedbackRecord{}
	}
	return reviews, nil
}

// InvalidateProvider drops cached rollups after the provider completes a request.
// It is called synchronously on the completion path and again by the event worker.
func (s *DefaultMetricsService) InvalidateProvider(ctx context.Context, providerID string) error {
	if s.Cache == nil {
		return nil
	}
	return s.Cache.Invalidate(ctx, providerID)
}

func (s *DefaultMetricsService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultMetricsService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}
