package drafter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/subwise/outreach-bot/internal/models"
)

func TestBuildDraftPrompt_Collab(t *testing.T) {
	prompt := buildDraftPrompt(Request{
		Profile:   models.Profile{Name: "Alice", Handle: "alice"},
		Bucket:    models.BucketCollab,
		Rationale: "maker search",
	})

	assert.Contains(t, prompt, "@alice")
	assert.Contains(t, prompt, "RT exchange")
	assert.Contains(t, prompt, "Why reaching out: maker search")
	assert.NotContains(t, prompt, "SubWise")
}

func TestBuildDraftPrompt_User(t *testing.T) {
	prompt := buildDraftPrompt(Request{
		Profile:         models.Profile{Name: "Bob", Handle: "bob"},
		Bucket:          models.BucketUser,
		Rationale:       "subscription search",
		TimelineSummary: "Pain points: Forgets to cancel subscriptions",
		TweetSnippet:    "ugh forgot to cancel Netflix",
	})

	assert.Contains(t, prompt, "@bob")
	assert.Contains(t, prompt, "SubWise")
	assert.Contains(t, prompt, "Timeline insights: Pain points: Forgets to cancel subscriptions")
	assert.Contains(t, prompt, `"ugh forgot to cancel Netflix"`)
	assert.Contains(t, prompt, "FREE web app")
}
