package drafter

import (
	"context"

	"github.com/subwise/outreach-bot/internal/models"
)

// templateRule maps a matched search keyword to a message template. Rules
// are evaluated in order; the first match wins and a default applies when
// none match.
type templateRule struct {
	keyword  string
	template int
}

var collabRules = []templateRule{
	{"building in public", 0},
	{"shipped", 0},
	{"launched", 0},
	{"indie hacker", 1},
	{"solopreneur", 1},
	{"bootstrapped", 1},
	{"startup founder", 2},
	{"founder", 1},
	{"maker", 2},
	{"side project", 2},
}

const defaultCollabTemplate = 0

var collabTemplates = []string{
	"Hey! I'm building my SaaS in public and documenting the journey on my profile. If it resonates, would you mind RTing my posts?",
	"Hey! Indie hacking a SaaS and sharing everything on my profile. If you vibe with the content, down to RT my updates?",
	"Hey! Building a side project and posting the whole journey. If it clicks with you, would appreciate RTs on my posts!",
}

var userRules = []templateRule{
	{"cancel subscription", 0},
	{"forgot to cancel", 0},
	{"recurring charge", 0},
	{"auto renew", 0},
	{"Netflix", 1},
	{"Spotify", 1},
	{"Disney+", 1},
	{"subscription cost", 2},
	{"monthly payment", 2},
	{"subscription", 2},
}

const defaultUserTemplate = 2

var userTemplates = []string{
	"Hey! Built a free tracker that catches forgotten subs before they renew. usesubwise.app - check it out?",
	"Hey! Made a free tool for tracking Netflix/Spotify/etc renewals. usesubwise.app - takes 30 sec to set up. Worth a look?",
	"Hey! Built SubWise (free) - tracks all your subs and alerts before renewals. usesubwise.app - interested?",
}

// TemplateDrafter picks a pre-written message by matching the originating
// search keyword against an ordered rule table. It is fully deterministic
// and never fails.
type TemplateDrafter struct{}

// Ensure TemplateDrafter implements Drafter
var _ Drafter = (*TemplateDrafter)(nil)

func NewTemplateDrafter() *TemplateDrafter {
	return &TemplateDrafter{}
}

func (d *TemplateDrafter) Draft(_ context.Context, req Request) (*models.Draft, error) {
	rules, templates, fallback := userRules, userTemplates, defaultUserTemplate
	if req.Bucket == models.BucketCollab {
		rules, templates, fallback = collabRules, collabTemplates, defaultCollabTemplate
	}

	idx := fallback
	for _, rule := range rules {
		if rule.keyword == req.Query {
			idx = rule.template
			break
		}
	}

	return &models.Draft{
		Icebreaker: req.Query,
		DM:         templates[idx],
	}, nil
}
