package twitter

import (
	"time"

	"github.com/subwise/outreach-bot/internal/models"
)

// The search surface aliases several fields inconsistently across endpoints
// (userName vs screen_name, followers vs followers_count, and so on). This
// file is the single place those aliases are reconciled into the canonical
// Profile and Tweet shapes.

type rawUser struct {
	ID             string  `json:"id"`
	UserName       string  `json:"userName"`
	ScreenName     string  `json:"screen_name"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	ProfileBio     *rawBio `json:"profile_bio"`
	ProfilePicture string  `json:"profilePicture"`
	ProfileImage   string  `json:"profile_image_url_https"`
	URL            string  `json:"url"`
	Followers      int     `json:"followers"`
	FollowersCount int     `json:"followers_count"`
	Following      int     `json:"following"`
	FriendsCount   int     `json:"friends_count"`
	StatusesCount  int     `json:"statusesCount"`
	StatusesAlias  int     `json:"statuses_count"`
	IsBlueVerified bool    `json:"isBlueVerified"`
	Verified       bool    `json:"verified"`
	CanDM          *bool   `json:"canDm"`
	CanDMAlias     *bool   `json:"can_dm"`
	Lang           string  `json:"lang"`
	CreatedAt      string  `json:"createdAt"`
	CreatedAtAlias string  `json:"created_at"`
}

type rawBio struct {
	Description string `json:"description"`
}

type rawTweet struct {
	ID           string   `json:"id"`
	Text         string   `json:"text"`
	CreatedAt    string   `json:"createdAt"`
	Author       *rawUser `json:"author"`
	RetweetCount int      `json:"retweetCount"`
	ReplyCount   int      `json:"replyCount"`
	LikeCount    int      `json:"likeCount"`
	QuoteCount   int      `json:"quoteCount"`
	IsReply      bool     `json:"isReply"`
	IsRetweet    bool     `json:"isRetweet"`
	Lang         string   `json:"lang"`
}

func (u rawUser) normalize() models.Profile {
	profile := models.Profile{
		TwitterID:  u.ID,
		Handle:     firstNonEmpty(u.UserName, u.ScreenName),
		Name:       u.Name,
		Bio:        u.Description,
		URL:        u.URL,
		AvatarURL:  firstNonEmpty(u.ProfilePicture, u.ProfileImage),
		Followers:  firstNonZero(u.Followers, u.FollowersCount),
		Following:  firstNonZero(u.Following, u.FriendsCount),
		TweetCount: firstNonZero(u.StatusesCount, u.StatusesAlias),
		Verified:   u.IsBlueVerified || u.Verified,
		Lang:       firstNonEmpty(u.Lang, "en"),
		DMOpen:     u.CanDM,
	}
	if profile.Bio == "" && u.ProfileBio != nil {
		profile.Bio = u.ProfileBio.Description
	}
	if profile.DMOpen == nil {
		profile.DMOpen = u.CanDMAlias
	}
	if created := parseTwitterTime(firstNonEmpty(u.CreatedAt, u.CreatedAtAlias)); !created.IsZero() {
		profile.LastActiveAt = created
	}
	return profile
}

func (t rawTweet) normalize() models.Tweet {
	tweet := models.Tweet{
		ID:           t.ID,
		Text:         t.Text,
		CreatedAt:    parseTwitterTime(t.CreatedAt),
		RetweetCount: t.RetweetCount,
		ReplyCount:   t.ReplyCount,
		LikeCount:    t.LikeCount,
		QuoteCount:   t.QuoteCount,
		IsReply:      t.IsReply,
		IsRetweet:    t.IsRetweet,
		Lang:         t.Lang,
	}
	if t.Author != nil {
		author := t.Author.normalize()
		tweet.Author = &author
	}
	return tweet
}

// parseTwitterTime accepts both RFC3339 and the legacy Twitter timestamp
// format. Unparseable timestamps become the zero time rather than an error.
func parseTwitterTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, time.RubyDate} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonZero(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
