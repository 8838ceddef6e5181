package twitter

import "github.com/subwise/outreach-bot/internal/models"

// ExtractUniqueAuthors returns the authoring profiles from a batch of tweets,
// deduplicated by twitter ID. First occurrence wins.
func ExtractUniqueAuthors(tweets []models.Tweet) []models.Profile {
	seen := make(map[string]bool)
	var profiles []models.Profile

	for _, tweet := range tweets {
		if tweet.Author == nil || tweet.Author.TwitterID == "" {
			continue
		}
		if seen[tweet.Author.TwitterID] {
			continue
		}
		seen[tweet.Author.TwitterID] = true
		profiles = append(profiles, *tweet.Author)
	}

	return profiles
}

// DedupeProfiles deduplicates directly-returned profiles by twitter ID,
// first occurrence wins
func DedupeProfiles(profiles []models.Profile) []models.Profile {
	seen := make(map[string]bool)
	var unique []models.Profile

	for _, p := range profiles {
		if p.TwitterID == "" || seen[p.TwitterID] {
			continue
		}
		seen[p.TwitterID] = true
		unique = append(unique, p)
	}

	return unique
}
