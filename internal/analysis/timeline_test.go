package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/subwise/outreach-bot/internal/models"
)

func TestAnalyzeTimeline_ComplaintProfile(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	tweets := []models.Tweet{
		{Text: "ugh forgot to cancel Netflix again", CreatedAt: now.Add(-2 * time.Hour)},
		{Text: "another price increase from Spotify, seriously?", CreatedAt: now.Add(-24 * time.Hour)},
		{Text: "trying out #notion for my workflow", CreatedAt: now.Add(-48 * time.Hour)},
	}

	insights := AnalyzeTimeline(tweets, now)

	assert.Contains(t, insights.PainPoints, "Forgets to cancel subscriptions")
	assert.Contains(t, insights.PainPoints, "Frustrated by price increases")
	assert.Contains(t, insights.Tools, "netflix")
	assert.Contains(t, insights.Tools, "spotify")
	assert.Contains(t, insights.Interests, "productivity")
	assert.Equal(t, 2, insights.ComplaintCount())
	assert.True(t, insights.EngagementPattern.IsActive)
	assert.Len(t, insights.RecentActivity, 3)
}

func TestAnalyzeTimeline_Empty(t *testing.T) {
	insights := AnalyzeTimeline(nil, time.Now())

	assert.Empty(t, insights.PainPoints)
	assert.Empty(t, insights.Tools)
	assert.Empty(t, insights.RecentActivity)
	assert.False(t, insights.EngagementPattern.IsActive)
	assert.Zero(t, insights.EngagementPattern.AvgEngagement)
}

func TestAnalyzeTimeline_RecentWindow(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	tweets := []models.Tweet{
		{Text: "fresh tweet", CreatedAt: now.Add(-1 * time.Hour)},
		{Text: "old tweet", CreatedAt: now.Add(-30 * 24 * time.Hour)},
		{Text: "ancient tweet", CreatedAt: now.Add(-60 * 24 * time.Hour)},
	}

	insights := AnalyzeTimeline(tweets, now)

	assert.Len(t, insights.RecentActivity, 1)
	// One recent tweet is below the activity threshold
	assert.False(t, insights.EngagementPattern.IsActive)
}

func TestAnalyzeTimeline_EngagementPattern(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	tweets := []models.Tweet{
		{Text: "original one", CreatedAt: now.Add(-1 * time.Hour), LikeCount: 10},
		{Text: "original two", CreatedAt: now.Add(-2 * time.Hour), LikeCount: 20, ReplyCount: 10},
		{Text: "a reply", CreatedAt: now.Add(-3 * time.Hour), IsReply: true},
		{Text: "a retweet", CreatedAt: now.Add(-4 * time.Hour), IsRetweet: true},
	}

	insights := AnalyzeTimeline(tweets, now)
	pattern := insights.EngagementPattern

	// Average engagement counts originals only: (10 + 30) / 2
	assert.InDelta(t, 20.0, pattern.AvgEngagement, 0.001)
	assert.InDelta(t, 0.25, pattern.RepliesRatio, 0.001)
	assert.InDelta(t, 0.25, pattern.RetweetsRatio, 0.001)
	assert.True(t, pattern.IsActive)
}

func TestSummarizeInsights(t *testing.T) {
	insights := models.TimelineInsights{
		PainPoints: []string{"Forgets to cancel subscriptions"},
		Tools:      []string{"netflix", "spotify"},
		Interests:  []string{"productivity"},
		RecentActivity: []models.TweetContext{
			{IsComplaint: true},
		},
		EngagementPattern: models.EngagementPattern{IsActive: true},
	}

	summary := SummarizeInsights(insights)

	assert.Contains(t, summary, "Pain points: Forgets to cancel subscriptions")
	assert.Contains(t, summary, "Uses: netflix, spotify")
	assert.Contains(t, summary, "Interests: productivity")
	assert.Contains(t, summary, "Active user (tweets regularly)")
	assert.Contains(t, summary, "Recent complaints: 1")
}

func TestSummarizeInsights_Empty(t *testing.T) {
	assert.Equal(t, "", SummarizeInsights(models.TimelineInsights{}))
}
