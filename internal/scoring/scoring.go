package scoring

import (
	"github.com/subwise/outreach-bot/internal/config"
	"github.com/subwise/outreach-bot/internal/models"
)

// Scored pairs a discovered profile with its computed score and the context
// that produced it. The score is final: it is computed exactly once and
// carried unchanged through dedup, ranking, and queue insertion.
type Scored struct {
	Profile   models.Profile
	Bucket    models.Bucket
	Score     float64
	Rationale string
	Query     string
	Insights  *models.TimelineInsights
	Snippet   string // a recent tweet used to personalize the draft
}

// UserSignals are the user-bucket inputs to UserScore
type UserSignals struct {
	PainPoints []string
	Brands     []string
	Niches     []string
}

// AmplifierScore computes the small-account-boosting component of the collab
// score from the configured weights
func AmplifierScore(signals models.AmplifierSignals, w config.CollabWeights) float64 {
	score := signals.RTSmallRatio*w.RTSmall + signals.QTSmallRatio*w.QTSmall
	if len(signals.BioTerms) > 0 {
		score += w.BioTerms
	}
	if signals.RepliesToSmallLast7d {
		score += w.ReplyRateSmall
	}
	return score
}

// AccessibilityScore computes how reachable a collab prospect is
func AccessibilityScore(signals models.AmplifierSignals, dmOpen *bool, w config.CollabWeights) float64 {
	score := 0.0
	if dmOpen != nil && *dmOpen {
		score += w.DMOpen
	}
	if signals.RepliesToSmallLast7d {
		score++
	}
	return score
}

// CollabScore is the composite collab-bucket score: 70% amplifier behavior,
// 30% accessibility
func CollabScore(signals models.AmplifierSignals, dmOpen *bool, w config.CollabWeights) float64 {
	return AmplifierScore(signals, w)*0.7 + AccessibilityScore(signals, dmOpen, w)*0.3
}

// UserScore is the composite user-bucket score from brand, pain, activity,
// and niche-fit signals
func UserScore(signals UserSignals, lastTweetAgeDays int, w config.UserWeights) float64 {
	score := 0.0
	if len(signals.Brands) > 0 {
		score += w.Brand
	}
	if len(signals.PainPoints) > 0 {
		score += w.Pain
	}
	if lastTweetAgeDays <= 14 {
		score += w.Activity
	}
	if len(signals.Niches) > 0 {
		score += w.Fit
	}
	return score
}
