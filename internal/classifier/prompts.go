package classifier

import (
	"fmt"
	"strings"

	"github.com/subwise/outreach-bot/internal/analysis"
	"github.com/subwise/outreach-bot/internal/models"
)

const classifierSystemPrompt = `You triage X (Twitter) profiles into two buckets:

1. COLLAB_CREATOR: Creators/builders in the indie maker/startup space who might share relevant content
2. POTENTIAL_USER: Any active individual on X (EVERYONE has subscriptions!)

**DEFAULT TO YES - BE EXTREMELY LENIENT:**
- POTENTIAL_USER should be TRUE for 95%+ of individual accounts
- If you see even 1 weak signal, classify as TRUE
- When in doubt, classify as TRUE (we filter later)
- Only set FALSE if you're 100% certain it's a brand/bot/spam

**SubWise Context:** Personal subscription tracker for managing:
- Streaming: Netflix, Spotify, YouTube Premium, Disney+
- Productivity: Notion, Figma, Adobe, ChatGPT, Claude
- Gaming: Xbox Game Pass, PlayStation Plus
- Cloud: iCloud, Dropbox, Google Drive, Office 365

**COLLAB_CREATOR = TRUE if (SPECIFICALLY indie makers/builders in tech):**
- Bio MUST mention tech/building terms: indie maker, indie hacker, founder, building, shipping, SaaS, startup, developer, solopreneur
- Recent tweets show ACTUAL building activity: product launches, feature updates, tech discussions, #buildinpublic
- NOT just gamers, musicians, artists, or content creators in other niches
- Has 500+ followers (shows some community engagement)

**POTENTIAL_USER = TRUE unless they meet exclusion criteria:**
Exclusions (ONLY set FALSE if):
1. Business/brand: Profile name has LLC/Inc/Corp/Ltd, or bio says "Official account of [Company]"
2. Completely inactive: No tweets AND no visible activity signs in 30+ days
3. Bot/spam: Suspicious patterns, no real bio, auto-generated username

**CRITICAL: "reason" field:**
- Must quote EXACT text from bio OR tweet (in quotes)
- Be specific about what signal you detected

Return JSON ONLY - no explanation.`

// buildClassifierPrompt assembles the per-profile user prompt, pre-extracting
// bio keywords so the model does not have to
func buildClassifierPrompt(profile models.Profile, recentTweets []models.Tweet, insights *models.TimelineInsights) string {
	var b strings.Builder

	bio := profile.Bio
	if bio == "" {
		bio = "No bio"
	}
	url := profile.URL
	if url == "" {
		url = "None"
	}

	fmt.Fprintf(&b, "Classify this profile:\n\n**Profile:**\n")
	fmt.Fprintf(&b, "- Name: %s\n- Handle: @%s\n- Bio: %q\n- Followers: %d\n- URL: %s\n",
		profile.Name, profile.Handle, bio, profile.Followers, url)

	if bioTerms := analysis.ExtractBioTerms(profile.Bio); len(bioTerms) > 0 {
		fmt.Fprintf(&b, "- Bio contains COLLAB keywords: %s\n", strings.Join(bioTerms, ", "))
	}

	if insights != nil {
		b.WriteString("\n**Timeline Insights:**\n")
		if len(insights.PainPoints) > 0 {
			fmt.Fprintf(&b, "- Pain points detected: %s\n", strings.Join(insights.PainPoints, ", "))
		}
		if len(insights.Tools) > 0 {
			tools := insights.Tools
			if len(tools) > 8 {
				tools = tools[:8]
			}
			fmt.Fprintf(&b, "- Uses these tools: %s\n", strings.Join(tools, ", "))
		}
		if len(insights.Interests) > 0 {
			fmt.Fprintf(&b, "- Interests: %s\n", strings.Join(insights.Interests, ", "))
		}
		if n := insights.ComplaintCount(); n > 0 {
			fmt.Fprintf(&b, "- Has %d complaint tweets recently\n", n)
		}
		if insights.EngagementPattern.IsActive {
			b.WriteString("- Active user (tweets regularly)\n")
		} else {
			b.WriteString("- Less active\n")
		}
	}

	b.WriteString("\n**Recent Tweets:**\n")
	if len(recentTweets) == 0 {
		b.WriteString("No recent tweets found\n")
	}
	for i, t := range recentTweets {
		fmt.Fprintf(&b, "%d. %q\n", i+1, t.Text)
	}

	b.WriteString(`
Return ONLY valid JSON:
{
  "is_collab_creator": boolean,
  "is_potential_user": boolean,
  "amplifier_signals": {
    "rt_small_ratio": 0.3,
    "qt_small_ratio": 0.2,
    "replies_to_small_last7d": false
  } | null,
  "dm_open": null,
  "pain_points": ["forgot to cancel", "too many subs"],
  "brands": ["netflix", "spotify"],
  "niches": ["student", "gamer", "creator", "tech"],
  "reason": "Tweet: 'exact quote from their content' shows [specific behavior]"
}`)

	return b.String()
}
