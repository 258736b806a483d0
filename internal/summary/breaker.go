package summary

import (
	"context"

	"salesdash/pkg/circuitbreaker"
	pkgerrors "salesdash/pkg/errors"
)

// BreakerSummarizer stops calling the upstream after repeated failures.
// Credential errors do not count as failures.
type BreakerSummarizer struct {
	next Summarizer
	cb   *circuitbreaker.Wrapper
}

func NewBreakerSummarizer(next Summarizer, cfg circuitbreaker.Config) *BreakerSummarizer {
	cfg.IsSuccessful = func(err error) bool {
		return err == nil || pkgerrors.IsAuth(err)
	}
	return &BreakerSummarizer{
		next: next,
		cb:   circuitbreaker.NewWrapper(cfg),
	}
}

func (b *BreakerSummarizer) Summarize(ctx context.Context, items []Item) (string, error) {
	text, err := circuitbreaker.Call(ctx, b.cb, func(ctx context.Context) (string, error) {
		return b.next.Summarize(ctx, items)
	})
	if err != nil && circuitbreaker.IsRejection(err) {
		return "", pkgerrors.ErrServiceUnavailable.
			WithMessage("summary upstream temporarily disabled").
			WithCause(err).
			WithDetail("circuit_breaker", b.cb.Name())
	}
	return text, err
}

func (b *BreakerSummarizer) State() string {
	return b.cb.State().String()
}
