package llm

import (
	"context"

	"gbp-backend/internal/profile"
)

// Model tiers selectable per request.
const (
	TierFlash = "flash"
	TierPro   = "pro"
)

// NormalizeTier maps arbitrary input onto a known tier, defaulting to
// the fast one.
func NormalizeTier(tier string) string {
	if tier == TierPro {
		return TierPro
	}
	return TierFlash
}

// Client produces a narrative summary for an analyzed profile. Summarize
// must not fail: implementations return fixed fallback text on any
// internal error.
type Client interface {
	Summarize(ctx context.Context, record *profile.Record, score float64, tier string) string
}

// Placeholder is a stub used when no summarizer is configured.
type Placeholder struct{}

// Summarize returns the unavailability fallback.
func (Placeholder) Summarize(ctx context.Context, record *profile.Record, score float64, tier string) string {
	_ = ctx
	_ = record
	_ = score
	_ = tier
	return FallbackUnavailable
}

// Fallback sentences returned when summarization cannot run.
const (
	FallbackUnavailable = "LLM analysis is currently unavailable (could not initialize model)."
	FallbackAPIError    = "Failed to generate detailed analysis due to an API error."
)
