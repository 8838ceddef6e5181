package classifier

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

// Classifier augments heuristic signals with a semantic bucket-membership
// judgment. A nil result (with or without an error) means the profile is
// excluded from classifier-dependent scoring for this run.
type Classifier interface {
	Classify(ctx context.Context, profile models.Profile, recentTweets []models.Tweet, insights *models.TimelineInsights) (*models.Classification, error)
	IsEnabled() bool
}

// AnthropicClassifier classifies profiles with a small Claude model
type AnthropicClassifier struct {
	client sdk.Client
	model  string
}

// Ensure AnthropicClassifier implements Classifier
var _ Classifier = (*AnthropicClassifier)(nil)

// NewAnthropicClassifier creates a classifier backed by the Anthropic API.
// With an empty API key the classifier reports disabled and returns nil
// judgments.
func NewAnthropicClassifier(apiKey, model string) *AnthropicClassifier {
	return &AnthropicClassifier{
		client: sdk.NewClient(option.WithAPIKey(apiKey), option.WithMaxRetries(2)),
		model:  model,
	}
}

func (c *AnthropicClassifier) IsEnabled() bool {
	return c.model != ""
}

// Classify sends the profile, recent tweets, and optional timeline insights
// to the model and parses the structured judgment from its reply
func (c *AnthropicClassifier) Classify(ctx context.Context, profile models.Profile, recentTweets []models.Tweet, insights *models.TimelineInsights) (*models.Classification, error) {
	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: 1024,
		System: []sdk.TextBlockParam{
			{Text: classifierSystemPrompt},
		},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(buildClassifierPrompt(profile, recentTweets, insights))),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("classifier request failed for @%s: %w", profile.Handle, err)
	}

	text := firstText(msg)
	if text == "" {
		return nil, fmt.Errorf("classifier returned no text for @%s", profile.Handle)
	}

	payload, ok := extractJSON(text)
	if !ok {
		logrus.Warnf("Classifier response for @%s contained no JSON object", profile.Handle)
		return nil, fmt.Errorf("no JSON in classifier response for @%s", profile.Handle)
	}

	var result models.Classification
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("failed to parse classifier response for @%s: %w", profile.Handle, err)
	}
	return &result, nil
}

func firstText(msg *sdk.Message) string {
	if msg == nil {
		return ""
	}
	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text
		}
	}
	return ""
}

// extractJSON pulls the outermost JSON object out of a model reply that may
// wrap it in prose or a code fence
func extractJSON(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
