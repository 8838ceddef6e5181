package analysis

import (
	"fmt"
	"strings"
	"time"

	"github.com/subwise/outreach-bot/internal/models"
)

const (
	recentWindow      = 7 * 24 * time.Hour
	activityThreshold = 3  // tweets within the window to count as active
	maxTopicClusters  = 10 // hashtags kept per timeline
)

// AnalyzeTimeline derives aggregate insights from a profile's recent tweets.
// Empty input yields empty collections and IsActive=false; it never fails.
func AnalyzeTimeline(tweets []models.Tweet, now time.Time) models.TimelineInsights {
	contexts := make([]models.TweetContext, 0, len(tweets))
	for _, t := range tweets {
		contexts = append(contexts, models.TweetContext{
			Text:        t.Text,
			CreatedAt:   t.CreatedAt,
			Type:        tweetType(t),
			Engagement:  t.Engagement(),
			Sentiment:   ClassifySentiment(t.Text),
			IsComplaint: IsComplaint(t.Text),
			IsPainPoint: IsPainPoint(t.Text),
			Mentions:    ExtractMentions(t.Text),
			Hashtags:    ExtractHashtags(t.Text),
		})
	}

	insights := models.TimelineInsights{
		PainPoints:    derivePainPoints(contexts),
		Tools:         aggregateTools(contexts),
		TopicClusters: topicClusters(contexts),
	}
	insights.Interests = deriveInterests(insights.TopicClusters)

	cutoff := now.Add(-recentWindow)
	for _, c := range contexts {
		if c.CreatedAt.After(cutoff) {
			insights.RecentActivity = append(insights.RecentActivity, c)
		}
	}

	insights.EngagementPattern = engagementPattern(contexts, len(insights.RecentActivity))

	return insights
}

func tweetType(t models.Tweet) string {
	switch {
	case t.IsRetweet:
		return "retweet"
	case t.IsReply:
		return "reply"
	default:
		return "original"
	}
}

// derivePainPoints maps complaint tweets to named pain-point labels,
// deduplicated across the timeline
func derivePainPoints(contexts []models.TweetContext) []string {
	var points []string
	seen := make(map[string]bool)

	for _, c := range contexts {
		if !c.IsComplaint {
			continue
		}
		lower := strings.ToLower(c.Text)
		for _, family := range painLabels {
			if seen[family.label] {
				continue
			}
			for _, term := range family.terms {
				if strings.Contains(lower, term) {
					seen[family.label] = true
					points = append(points, family.label)
					break
				}
			}
		}
	}

	return points
}

func aggregateTools(contexts []models.TweetContext) []string {
	var tools []string
	seen := make(map[string]bool)
	for _, c := range contexts {
		for _, tool := range ExtractToolMentions(c.Text) {
			if !seen[tool] {
				seen[tool] = true
				tools = append(tools, tool)
			}
		}
	}
	return tools
}

func topicClusters(contexts []models.TweetContext) []string {
	var clusters []string
	seen := make(map[string]bool)
	for _, c := range contexts {
		for _, tag := range c.Hashtags {
			if !seen[tag] {
				seen[tag] = true
				clusters = append(clusters, tag)
			}
			if len(clusters) >= maxTopicClusters {
				return clusters
			}
		}
	}
	return clusters
}

// deriveInterests buckets hashtags into the fixed interest taxonomy
func deriveInterests(clusters []string) []string {
	var interests []string
	for _, bucket := range interestTaxonomy {
		for _, tag := range clusters {
			if bucket.tags[tag] {
				interests = append(interests, bucket.name)
				break
			}
		}
	}
	return interests
}

func engagementPattern(contexts []models.TweetContext, recentCount int) models.EngagementPattern {
	pattern := models.EngagementPattern{
		IsActive: recentCount >= activityThreshold,
	}
	if len(contexts) == 0 {
		return pattern
	}

	originals, replies, retweets := 0, 0, 0
	totalEngagement := 0
	for _, c := range contexts {
		switch c.Type {
		case "original":
			originals++
			totalEngagement += c.Engagement
		case "reply":
			replies++
		case "retweet":
			retweets++
		}
	}

	if originals > 0 {
		pattern.AvgEngagement = float64(totalEngagement) / float64(originals)
	}
	pattern.RepliesRatio = float64(replies) / float64(len(contexts))
	pattern.RetweetsRatio = float64(retweets) / float64(len(contexts))

	return pattern
}

// SummarizeInsights renders a compact one-line summary used to personalize
// DM generation prompts
func SummarizeInsights(insights models.TimelineInsights) string {
	var parts []string

	if len(insights.PainPoints) > 0 {
		parts = append(parts, "Pain points: "+strings.Join(insights.PainPoints, ", "))
	}
	if len(insights.Tools) > 0 {
		tools := insights.Tools
		if len(tools) > 5 {
			tools = tools[:5]
		}
		parts = append(parts, "Uses: "+strings.Join(tools, ", "))
	}
	if len(insights.Interests) > 0 {
		parts = append(parts, "Interests: "+strings.Join(insights.Interests, ", "))
	}
	if insights.EngagementPattern.IsActive {
		parts = append(parts, "Active user (tweets regularly)")
	}
	if n := insights.ComplaintCount(); n > 0 {
		parts = append(parts, fmt.Sprintf("Recent complaints: %d", n))
	}

	return strings.Join(parts, " | ")
}
