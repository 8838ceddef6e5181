package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Re-contact policies controlling the prior-queue history check
const (
	RecontactNever    = "never"    // a profile is outreached at most once, ever
	RecontactCooldown = "cooldown" // re-queue allowed after RecontactCooldownDays
	RecontactAlways   = "always"   // no history check
)

// Drafter strategies
const (
	DrafterTemplate = "template"
	DrafterLLM      = "llm"
)

// FollowerBand is the inclusive follower-count range gating candidacy
type FollowerBand struct {
	Min int
	Max int
}

// CollabWeights are the scoring weights for the collab bucket
type CollabWeights struct {
	RTSmall        float64
	QTSmall        float64
	BioTerms       float64
	ReplyRateSmall float64
	DMOpen         float64
}

// UserWeights are the scoring weights for the user bucket
type UserWeights struct {
	Brand    float64
	Pain     float64
	Activity float64
	Fit      float64
}

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port  string
	Debug bool

	// Schedule configuration
	ScheduleEnabled bool
	RunHourUTC      int

	// SQLite store
	DBPath string

	// Optional blob archive for raw run snapshots
	StorageAccount   string
	StorageContainer string

	// Notification configuration
	WebhookURL        string
	NotificationEmail string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string

	// API keys and endpoints
	TwitterAPIKey     string
	TwitterAPIBaseURL string
	AnthropicAPIKey   string
	ClassifierModel   string
	DrafterModel      string

	// Search queries per bucket
	CollabQueries []string
	UserQueries   []string

	// Daily quotas
	CollabQuota int
	UserQuota   int

	// Eligibility
	CollabBand      FollowerBand
	UserBand        FollowerBand
	MinBioLength    int
	MinTweetHistory int

	// Scoring weights
	CollabWeights CollabWeights
	UserWeights   UserWeights

	// Collection pacing
	ResultsPerQuery int
	PageDelay       time.Duration
	LLMCallDelay    time.Duration
	MaxRetries      int
	RetryWait       time.Duration

	// Pipeline policies
	RecontactPolicy       string
	RecontactCooldownDays int
	RequireClassifier     bool
	DrafterStrategy       string
	ClearQueueBeforeRun   bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:  getEnv("PORT", "8080"),
		Debug: getBoolEnv("DEBUG", false),

		ScheduleEnabled: getBoolEnv("SCHEDULE_ENABLED", true),
		RunHourUTC:      getIntEnv("RUN_HOUR_UTC", 9),

		DBPath: getEnv("SQLITE_PATH", "./outreach.db"),

		StorageAccount:   getEnv("AZURE_STORAGE_ACCOUNT", ""),
		StorageContainer: getEnv("AZURE_STORAGE_CONTAINER", "outreach-runs"),

		WebhookURL:        getEnv("WEBHOOK_URL", ""),
		NotificationEmail: getEnv("NOTIFICATION_EMAIL", ""),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getIntEnv("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),

		TwitterAPIKey:     getEnv("TWITTER_API_KEY", ""),
		TwitterAPIBaseURL: getEnv("TWITTER_API_BASE_URL", "https://api.twitterapi.io"),
		AnthropicAPIKey:   getEnv("ANTHROPIC_API_KEY", ""),
		ClassifierModel:   getEnv("CLASSIFIER_MODEL", "claude-3-5-haiku-20241022"),
		DrafterModel:      getEnv("DRAFTER_MODEL", "claude-3-7-sonnet-20250219"),

		CollabQueries: getSliceEnv("COLLAB_QUERIES", []string{
			"building in public",
			"indie hacker",
			"solopreneur",
			"maker",
			"bootstrapped",
			"shipped",
			"launched",
			"founder",
			"startup founder",
			"side project",
		}),
		UserQueries: getSliceEnv("USER_QUERIES", []string{
			"subscription",
			"Netflix",
			"Spotify",
			"Disney+",
			"monthly payment",
			"cancel subscription",
			"forgot to cancel",
			"recurring charge",
			"auto renew",
			"subscription cost",
		}),

		CollabQuota: getIntEnv("COLLAB_QUOTA", 10),
		UserQuota:   getIntEnv("USER_QUOTA", 20),

		CollabBand: FollowerBand{
			Min: getIntEnv("COLLAB_FOLLOWERS_MIN", 500),
			Max: getIntEnv("COLLAB_FOLLOWERS_MAX", 250000),
		},
		UserBand: FollowerBand{
			Min: getIntEnv("USER_FOLLOWERS_MIN", 1),
			Max: getIntEnv("USER_FOLLOWERS_MAX", 100000),
		},
		MinBioLength:    getIntEnv("MIN_BIO_LENGTH", 10),
		MinTweetHistory: getIntEnv("MIN_TWEET_HISTORY", 5),

		CollabWeights: CollabWeights{
			RTSmall:        getFloatEnv("WEIGHT_RT_SMALL", 0.5),
			QTSmall:        getFloatEnv("WEIGHT_QT_SMALL", 0.5),
			BioTerms:       getFloatEnv("WEIGHT_BIO_TERMS", 2),
			ReplyRateSmall: getFloatEnv("WEIGHT_REPLY_RATE_SMALL", 2),
			DMOpen:         getFloatEnv("WEIGHT_DM_OPEN", 1),
		},
		UserWeights: UserWeights{
			Brand:    getFloatEnv("WEIGHT_BRAND", 1),
			Pain:     getFloatEnv("WEIGHT_PAIN", 5),
			Activity: getFloatEnv("WEIGHT_ACTIVITY", 2),
			Fit:      getFloatEnv("WEIGHT_FIT", 3),
		},

		ResultsPerQuery: getIntEnv("RESULTS_PER_QUERY", 20),
		PageDelay:       getDurationEnv("PAGE_DELAY", 500*time.Millisecond),
		LLMCallDelay:    getDurationEnv("LLM_CALL_DELAY", 200*time.Millisecond),
		MaxRetries:      getIntEnv("MAX_RETRIES", 2),
		RetryWait:       getDurationEnv("RETRY_WAIT", 1*time.Second),

		RecontactPolicy:       getEnv("RECONTACT_POLICY", RecontactNever),
		RecontactCooldownDays: getIntEnv("RECONTACT_COOLDOWN_DAYS", 30),
		RequireClassifier:     getBoolEnv("REQUIRE_CLASSIFIER", false),
		DrafterStrategy:       getEnv("DRAFTER_STRATEGY", DrafterTemplate),
		ClearQueueBeforeRun:   getBoolEnv("CLEAR_QUEUE_BEFORE_RUN", true),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.CollabQuota <= 0 || c.UserQuota <= 0 {
		return fmt.Errorf("COLLAB_QUOTA and USER_QUOTA must be positive")
	}

	if c.CollabBand.Min > c.CollabBand.Max {
		return fmt.Errorf("COLLAB_FOLLOWERS_MIN must not exceed COLLAB_FOLLOWERS_MAX")
	}
	if c.UserBand.Min > c.UserBand.Max {
		return fmt.Errorf("USER_FOLLOWERS_MIN must not exceed USER_FOLLOWERS_MAX")
	}

	switch c.RecontactPolicy {
	case RecontactNever, RecontactCooldown, RecontactAlways:
	default:
		return fmt.Errorf("RECONTACT_POLICY must be 'never', 'cooldown', or 'always'")
	}

	if c.RecontactPolicy == RecontactCooldown && c.RecontactCooldownDays <= 0 {
		return fmt.Errorf("RECONTACT_COOLDOWN_DAYS must be positive when RECONTACT_POLICY is 'cooldown'")
	}

	switch c.DrafterStrategy {
	case DrafterTemplate, DrafterLLM:
	default:
		return fmt.Errorf("DRAFTER_STRATEGY must be 'template' or 'llm'")
	}

	if c.DrafterStrategy == DrafterLLM && c.AnthropicAPIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required when DRAFTER_STRATEGY is 'llm'")
	}

	if c.RunHourUTC < 0 || c.RunHourUTC > 23 {
		return fmt.Errorf("RUN_HOUR_UTC must be between 0 and 23")
	}

	if c.NotificationEmail != "" {
		if c.SMTPHost == "" || c.SMTPUsername == "" || c.SMTPPassword == "" {
			return fmt.Errorf("SMTP configuration is required when NOTIFICATION_EMAIL is set")
		}
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
