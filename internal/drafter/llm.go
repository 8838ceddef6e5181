package drafter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sirupsen/logrus"

	"github.com/subwise/outreach-bot/internal/models"
)

const dmGeneratorSystemPrompt = `You write genuine, conversational cold DMs that actually get responses.

**Style Guide:**
- Sound like a real person, not a bot or marketer
- Start with specific observation about their content (quote it!)
- NO corporate jargon: "leverage", "solution", "platform", "ecosystem"
- YES casual language: "Hey", "noticed", "built", "works"
- Keep it SHORT - 2 sentences max
- End with low-pressure question, not hard sell

**Bad Example:**
"I noticed your interest in productivity solutions. Our platform leverages AI to optimize subscription management."

**Good Example:**
"Saw your tweet about forgetting to cancel Hulu again - literally same thing happened to me last month. Built a tracker that catches this stuff before renewal. Want to see it?"

Return JSON ONLY with two fields: icebreaker and dm.`

// AnthropicDrafter generates personalized drafts with a Claude model. On any
// failure it returns an error so the pipeline can fall back to the template
// strategy instead of fabricating text.
type AnthropicDrafter struct {
	client sdk.Client
	model  string
}

// Ensure AnthropicDrafter implements Drafter
var _ Drafter = (*AnthropicDrafter)(nil)

func NewAnthropicDrafter(apiKey, model string) *AnthropicDrafter {
	return &AnthropicDrafter{
		client: sdk.NewClient(option.WithAPIKey(apiKey), option.WithMaxRetries(2)),
		model:  model,
	}
}

func (d *AnthropicDrafter) Draft(ctx context.Context, req Request) (*models.Draft, error) {
	msg, err := d.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(d.model),
		MaxTokens: 512,
		System: []sdk.TextBlockParam{
			{Text: dmGeneratorSystemPrompt},
		},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(buildDraftPrompt(req))),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("draft request failed for @%s: %w", req.Profile.Handle, err)
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON in draft response for @%s", req.Profile.Handle)
	}

	var draft models.Draft
	if err := json.Unmarshal([]byte(text[start:end+1]), &draft); err != nil {
		return nil, fmt.Errorf("failed to parse draft response for @%s: %w", req.Profile.Handle, err)
	}
	if draft.DM == "" {
		return nil, fmt.Errorf("empty draft for @%s", req.Profile.Handle)
	}

	if violations := CheckStyle(draft.DM); len(violations) > 0 {
		logrus.Warnf("Draft for @%s violates style contract: %s", req.Profile.Handle, strings.Join(violations, "; "))
	}

	return &draft, nil
}

func buildDraftPrompt(req Request) string {
	var b strings.Builder

	if req.Bucket == models.BucketCollab {
		fmt.Fprintf(&b, "Write a casual DM to %s (@%s) for a potential RT exchange.\n\n", req.Profile.Name, req.Profile.Handle)
	} else {
		fmt.Fprintf(&b, "Write a casual DM to %s (@%s) about SubWise (subscription tracker).\n\n", req.Profile.Name, req.Profile.Handle)
	}

	b.WriteString("**Context:**\n")
	fmt.Fprintf(&b, "- Why reaching out: %s\n", req.Rationale)
	if req.TimelineSummary != "" {
		fmt.Fprintf(&b, "- Timeline insights: %s\n", req.TimelineSummary)
	}
	if req.TweetSnippet != "" {
		fmt.Fprintf(&b, "- Recent tweet: %q\n", req.TweetSnippet)
	}

	if req.Bucket == models.BucketCollab {
		b.WriteString(`
**Instructions:**
1. Be AUTHENTIC - don't claim specific things about their content
2. Simply say "I post content you might relate to" or "I share stuff about building/shipping"
3. Offer mutual support - you'll RT their stuff too
4. Keep it SHORT and genuine
`)
	} else {
		b.WriteString(`- SubWise is a FREE web app (works on mobile too)

**Instructions:**
1. Reference their SPECIFIC pain point from timeline (use exact details!)
2. Mention SubWise solves exactly that problem
3. Naturally mention it's free and works everywhere
4. Keep it 2 sentences max, empathetic and human
`)
	}

	b.WriteString(`
Return JSON:
{
  "icebreaker": "Brief, authentic connection point",
  "dm": "Personalized message (2 sentences max)"
}`)

	return b.String()
}
