package analysis

import "strings"

// Sentiment labels returned by ClassifySentiment
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// ClassifySentiment counts lexicon matches in the text. Negative wins only
// when it strictly outnumbers positive, and vice versa; otherwise neutral.
func ClassifySentiment(text string) string {
	lower := strings.ToLower(text)

	negative := 0
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			negative++
		}
	}

	positive := 0
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			positive++
		}
	}

	switch {
	case negative > positive:
		return SentimentNegative
	case positive > negative:
		return SentimentPositive
	default:
		return SentimentNeutral
	}
}

// IsComplaint reports whether the text matches any complaint pattern
// (cancellation, renewal, overcharge, or frustration phrasing)
func IsComplaint(text string) bool {
	for _, p := range complaintPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// IsPainPoint reports whether the text contains subscription, budget, or
// overwhelm vocabulary
func IsPainPoint(text string) bool {
	lower := strings.ToLower(text)
	for _, term := range painTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// ExtractToolMentions returns the deduplicated set of known subscription
// services mentioned in the text
func ExtractToolMentions(text string) []string {
	lower := strings.ToLower(text)
	var tools []string
	seen := make(map[string]bool)

	for _, tool := range toolCatalog {
		if strings.Contains(lower, tool) && !seen[tool] {
			seen[tool] = true
			tools = append(tools, tool)
		}
	}

	return tools
}

// ExtractHashtags returns the lower-cased hashtag tokens in the text
func ExtractHashtags(text string) []string {
	matches := hashtagPattern.FindAllStringSubmatch(text, -1)
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, strings.ToLower(m[1]))
	}
	return tags
}

// ExtractMentions returns the lower-cased @mention tokens in the text
func ExtractMentions(text string) []string {
	matches := mentionPattern.FindAllStringSubmatch(text, -1)
	mentions := make([]string, 0, len(matches))
	for _, m := range matches {
		mentions = append(mentions, strings.ToLower(m[1]))
	}
	return mentions
}

// ExtractBioTerms returns the collab keyword matches found in a profile bio
func ExtractBioTerms(bio string) []string {
	lower := strings.ToLower(bio)
	var terms []string
	for _, kw := range collabBioTerms {
		if strings.Contains(lower, kw) {
			terms = append(terms, kw)
		}
	}
	return terms
}
