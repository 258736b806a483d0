package summary

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"

	"salesdash/internal/constants"
	"salesdash/internal/logger"
	"salesdash/internal/sales"
	pkgerrors "salesdash/pkg/errors"
	"salesdash/pkg/metrics"
)

// Service turns summarizer outcomes into user-facing text. Concurrent
// requests for the same record set share one upstream call.
type Service struct {
	summarizer Summarizer
	cache      Cache
	cacheTTL   time.Duration
	timeout    time.Duration
	logger     logger.Logger
	group      singleflight.Group
}

type ServiceOption func(*Service)

func WithCache(cache Cache, ttl time.Duration) ServiceOption {
	return func(s *Service) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

func WithTimeout(timeout time.Duration) ServiceOption {
	return func(s *Service) {
		s.timeout = timeout
	}
}

func NewService(summarizer Summarizer, log logger.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		summarizer: summarizer,
		cacheTTL:   constants.DefaultTTLSeconds * time.Second,
		timeout:    constants.DefaultSummaryTimeout,
		logger:     log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type flightResult struct {
	text   string
	cached bool
}

func (s *Service) Summary(ctx context.Context, records []sales.SaleRecord) Result {
	start := time.Now()
	items := Simplify(records)

	key, err := CacheKey(items)
	if err != nil {
		return s.finish(ctx, start, "", false, err)
	}

	v, err, shared := s.group.Do(key, func() (interface{}, error) {
		return s.generate(ctx, key, items)
	})
	if shared {
		s.logger.DebugwCtx(ctx, "Summary request coalesced", "key", key)
	}

	var res flightResult
	if r, ok := v.(flightResult); ok {
		res = r
	}
	return s.finish(ctx, start, res.text, res.cached, err)
}

func (s *Service) generate(ctx context.Context, key string, items []Item) (flightResult, error) {
	if s.cache != nil {
		text, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			metrics.IncSummaryCache("error")
			s.logger.WarnwCtx(ctx, "Summary cache lookup failed", "error", err)
		case ok:
			metrics.IncSummaryCache("hit")
			return flightResult{text: text, cached: true}, nil
		default:
			metrics.IncSummaryCache("miss")
		}
	}

	// The shared call outlives any single caller's cancellation.
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	text, err := s.summarizer.Summarize(callCtx, items)
	if err != nil {
		return flightResult{}, err
	}

	if s.cache != nil && text != "" {
		if err := s.cache.Set(callCtx, key, text, s.cacheTTL); err != nil {
			s.logger.WarnwCtx(ctx, "Failed to cache summary", "error", err)
		}
	}
	return flightResult{text: text}, nil
}

func (s *Service) finish(ctx context.Context, start time.Time, text string, cached bool, err error) Result {
	var res Result
	switch {
	case err == nil && text == "":
		res = Result{Text: MessageEmpty, Status: StatusEmpty}
	case err == nil:
		res = Result{Text: text, Status: StatusOK, Cached: cached}
	case isMissingKey(err):
		res = Result{Text: MessageMissingKey, Status: StatusMissingKey}
	default:
		s.logger.ErrorwCtx(ctx, "Summary generation failed",
			"error", err,
			"error_code", pkgerrors.ToErrorResponse(err).ErrorCode,
		)
		res = Result{Text: MessageFailure, Status: StatusFailed}
	}

	metrics.IncSummaryRequest(string(res.Status))
	metrics.ObserveSummaryDuration(string(res.Status), time.Since(start))
	return res
}

func isMissingKey(err error) bool {
	var appErr *pkgerrors.Error
	if !errors.As(err, &appErr) || !pkgerrors.IsAuth(err) {
		return false
	}
	reason, _ := appErr.Details["reason"].(string)
	return reason == reasonMissingKey
}
