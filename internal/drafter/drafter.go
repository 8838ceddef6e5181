package drafter

import (
	"context"
	"strings"

	"github.com/subwise/outreach-bot/internal/models"
)

// Request carries everything a drafting strategy may use to personalize a
// message
type Request struct {
	Profile         models.Profile
	Bucket          models.Bucket
	Rationale       string
	Query           string // the search query/keyword that surfaced the profile
	TimelineSummary string
	TweetSnippet    string
}

// Drafter produces an icebreaker and DM body for an accepted candidate.
// Implementations must return an error rather than fabricate text when they
// cannot produce a draft.
type Drafter interface {
	Draft(ctx context.Context, req Request) (*models.Draft, error)
}

// jargonTerms are disallowed in outreach copy
var jargonTerms = []string{"leverage", "solution", "platform", "ecosystem", "synergy", "utilize"}

// CheckStyle validates outreach copy against the style contract: no
// corporate jargon and at most two sentences. It returns the violations
// found, empty when the text passes.
func CheckStyle(text string) []string {
	var violations []string

	lower := strings.ToLower(text)
	for _, term := range jargonTerms {
		if strings.Contains(lower, term) {
			violations = append(violations, "contains jargon: "+term)
		}
	}

	if n := sentenceCount(text); n > 2 {
		violations = append(violations, "more than two sentences")
	}

	return violations
}

func sentenceCount(text string) int {
	count := 0
	for _, r := range text {
		switch r {
		case '.', '!', '?':
			count++
		}
	}
	if count == 0 && strings.TrimSpace(text) != "" {
		count = 1
	}
	return count
}
