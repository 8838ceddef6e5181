package models

import "time"

// Bucket identifies one of the two prospect categories
type Bucket string

const (
	BucketCollab Bucket = "collab" // amplifiers/creators who might RT our content
	BucketUser   Bucket = "user"   // potential SubWise users
)

// Candidate status values. "queued" is the initial state; "sent" and
// "skipped" are terminal and only set by review actions, never by the pipeline.
const (
	StatusQueued  = "queued"
	StatusSent    = "sent"
	StatusSkipped = "skipped"
)

// Profile represents a discovered X/Twitter account
type Profile struct {
	TwitterID       string    `json:"twitter_id"` // stable external identity
	Handle          string    `json:"handle"`
	Name            string    `json:"name"`
	Bio             string    `json:"bio"`
	Followers       int       `json:"followers"`
	Following       int       `json:"following"`
	TweetCount      int       `json:"tweet_count"`
	URL             string    `json:"url,omitempty"`
	AvatarURL       string    `json:"avatar_url,omitempty"`
	LastActiveAt    time.Time `json:"last_active_at"`
	Lang            string    `json:"lang"`
	DMOpen          *bool     `json:"dm_open"` // nil = unknown
	Verified        bool      `json:"verified"`
	DiscoveryBucket Bucket    `json:"discovery_bucket,omitempty"`
}

// Tweet represents a single piece of content produced by a profile.
// Tweets are consumed to derive signals and insights; they are never persisted.
type Tweet struct {
	ID           string    `json:"id"`
	Text         string    `json:"text"`
	CreatedAt    time.Time `json:"created_at"`
	Author       *Profile  `json:"author,omitempty"`
	RetweetCount int       `json:"retweet_count"`
	ReplyCount   int       `json:"reply_count"`
	LikeCount    int       `json:"like_count"`
	QuoteCount   int       `json:"quote_count"`
	IsReply      bool      `json:"is_reply"`
	IsRetweet    bool      `json:"is_retweet"`
	Lang         string    `json:"lang,omitempty"`
}

// Engagement is the sum of the tweet's interaction counts
func (t Tweet) Engagement() int {
	return t.RetweetCount + t.LikeCount + t.ReplyCount
}

// AmplifierSignals describe small-account boosting behavior, used for the
// collab bucket score
type AmplifierSignals struct {
	RTSmallRatio         float64  `json:"rt_small_ratio"`
	QTSmallRatio         float64  `json:"qt_small_ratio"`
	RepliesToSmallLast7d bool     `json:"replies_to_small_last7d"`
	BioTerms             []string `json:"bio_terms"`
}

// TweetContext is the per-tweet analysis produced while aggregating a timeline
type TweetContext struct {
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
	Type        string    `json:"type"`      // "original", "reply", "retweet"
	Engagement  int       `json:"engagement"`
	Sentiment   string    `json:"sentiment"` // "positive", "negative", "neutral"
	IsComplaint bool      `json:"is_complaint"`
	IsPainPoint bool      `json:"is_pain_point"`
	Mentions    []string  `json:"mentions"`
	Hashtags    []string  `json:"hashtags"`
}

// EngagementPattern summarizes how a profile engages over its recent timeline
type EngagementPattern struct {
	AvgEngagement float64 `json:"avg_engagement"`
	RepliesRatio  float64 `json:"replies_ratio"`
	RetweetsRatio float64 `json:"retweets_ratio"`
	IsActive      bool    `json:"is_active"` // 3+ tweets in the last 7 days
}

// TimelineInsights are the aggregate features derived from a profile's
// recent tweets, used for the user bucket
type TimelineInsights struct {
	PainPoints        []string          `json:"pain_points"`
	Interests         []string          `json:"interests"`
	Tools             []string          `json:"tools"`
	RecentActivity    []TweetContext    `json:"recent_activity"` // last 7 days
	EngagementPattern EngagementPattern `json:"engagement_pattern"`
	TopicClusters     []string          `json:"topic_clusters"`
}

// ComplaintCount returns how many recent tweets were complaints
func (t TimelineInsights) ComplaintCount() int {
	n := 0
	for _, c := range t.RecentActivity {
		if c.IsComplaint {
			n++
		}
	}
	return n
}

// Classification is the semantic judgment returned by the LLM classifier
type Classification struct {
	IsCollabCreator  bool              `json:"is_collab_creator"`
	IsPotentialUser  bool              `json:"is_potential_user"`
	AmplifierSignals *AmplifierSignals `json:"amplifier_signals"` // nil when not estimable
	DMOpen           *bool             `json:"dm_open"`           // nil = unknown
	PainPoints       []string          `json:"pain_points"`
	Brands           []string          `json:"brands"`
	Niches           []string          `json:"niches"`
	Reason           string            `json:"reason"`
}

// Draft is the generated outreach message for a candidate
type Draft struct {
	Icebreaker string `json:"icebreaker"`
	DM         string `json:"dm"`
}

// Candidate is a scored, queued outreach unit referencing a stored Profile.
// The score is fixed at scoring time and never recomputed after insertion.
type Candidate struct {
	ID         string    `json:"id"`
	TwitterID  string    `json:"twitter_id"`
	Bucket     Bucket    `json:"bucket"`
	Score      float64   `json:"score"`
	Rationale  string    `json:"rationale"`
	Icebreaker string    `json:"icebreaker"`
	DMDraft    string    `json:"dm_draft"`
	QueuedFor  string    `json:"queued_for"` // calendar day, YYYY-MM-DD (UTC)
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`

	// Populated on reads that join the profile, never written back
	Profile *Profile `json:"profile,omitempty"`
}

// Suppression excludes a profile from candidacy, permanently or until a time
type Suppression struct {
	TwitterID string     `json:"twitter_id"`
	Until     *time.Time `json:"until"` // nil = permanent blacklist
	Reason    string     `json:"reason,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Active reports whether the suppression applies at the given time
func (s Suppression) Active(now time.Time) bool {
	return s.Until == nil || s.Until.After(now)
}

// RunReport summarizes one pipeline run for notifications and metrics
type RunReport struct {
	Bucket      Bucket         `json:"bucket"`
	RunDate     string         `json:"run_date"` // YYYY-MM-DD (UTC)
	StartedAt   time.Time      `json:"started_at"`
	Duration    string         `json:"duration"`
	Discovered  int            `json:"discovered"`
	Eligible    int            `json:"eligible"`
	Queued      int            `json:"queued"`
	ErrorCount  int            `json:"error_count"`
	QueryCounts map[string]int `json:"query_counts,omitempty"`
	Candidates  []Candidate    `json:"candidates,omitempty"`
}
