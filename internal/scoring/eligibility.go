package scoring

import (
	"fmt"
	"strings"

	"github.com/subwise/outreach-bot/internal/config"
	"github.com/subwise/outreach-bot/internal/models"
)

// PassesFollowerBand reports whether the follower count falls inside the
// inclusive eligibility band
func PassesFollowerBand(followers int, band config.FollowerBand) bool {
	return followers >= band.Min && followers <= band.Max
}

// CheckCollabEligibility applies the collab-bucket predicates: follower band
// and a non-trivial bio. The returned reason is empty when eligible.
func CheckCollabEligibility(profile models.Profile, cfg *config.Config) (bool, string) {
	if !PassesFollowerBand(profile.Followers, cfg.CollabBand) {
		return false, fmt.Sprintf("followers %d outside band %d-%d", profile.Followers, cfg.CollabBand.Min, cfg.CollabBand.Max)
	}
	if len(strings.TrimSpace(profile.Bio)) < cfg.MinBioLength {
		return false, "bio too short"
	}
	return true, ""
}

// CheckUserEligibility applies the user-bucket predicates: follower band and
// a minimum tweet history
func CheckUserEligibility(profile models.Profile, cfg *config.Config) (bool, string) {
	if !PassesFollowerBand(profile.Followers, cfg.UserBand) {
		return false, fmt.Sprintf("followers %d outside band %d-%d", profile.Followers, cfg.UserBand.Min, cfg.UserBand.Max)
	}
	if profile.TweetCount < cfg.MinTweetHistory {
		return false, fmt.Sprintf("tweet history %d below minimum %d", profile.TweetCount, cfg.MinTweetHistory)
	}
	return true, ""
}
