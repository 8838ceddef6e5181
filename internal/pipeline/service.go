package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/subwise/outreach-bot/internal/analysis"
	"github.com/subwise/outreach-bot/internal/archive"
	"github.com/subwise/outreach-bot/internal/classifier"
	"github.com/subwise/outreach-bot/internal/config"
	"github.com/subwise/outreach-bot/internal/drafter"
	"github.com/subwise/outreach-bot/internal/models"
	"github.com/subwise/outreach-bot/internal/notifications"
	"github.com/subwise/outreach-bot/internal/scoring"
	"github.com/subwise/outreach-bot/internal/store"
	"github.com/subwise/outreach-bot/internal/twitter"
)

// timelineFetchCount is how many recent tweets are pulled per profile for
// timeline analysis
const timelineFetchCount = 20

// Service orchestrates the daily outreach pipeline: discover profiles per
// bucket, filter, score once, dedupe, rank, draft, and queue. External
// failures (search, classifier, drafter) degrade the run; store failures
// abort it.
type Service struct {
	config     *config.Config
	store      store.Store
	search     twitter.SearchClient
	classifier classifier.Classifier
	drafter    drafter.Drafter
	fallback   drafter.Drafter
	notifier   notifications.Notifier
	archive    archive.Archive
	llmLimiter *rate.Limiter
	metrics    *Metrics
	mu         sync.RWMutex
}

// NewService creates the pipeline service. The archive may be nil, in which
// case run snapshots are skipped.
func NewService(
	cfg *config.Config,
	st store.Store,
	search twitter.SearchClient,
	cls classifier.Classifier,
	primary drafter.Drafter,
	notifier notifications.Notifier,
	arch archive.Archive,
) *Service {
	return &Service{
		config:     cfg,
		store:      st,
		search:     search,
		classifier: cls,
		drafter:    primary,
		fallback:   drafter.NewTemplateDrafter(),
		notifier:   notifier,
		archive:    arch,
		llmLimiter: rate.NewLimiter(rate.Every(cfg.LLMCallDelay), 1),
		metrics:    newMetrics(),
	}
}

// RunBoth runs the collab pipeline followed by the user pipeline. A failed
// collab run does not prevent the user run; both errors are reported.
func (s *Service) RunBoth(ctx context.Context) error {
	var errs []string

	if _, err := s.RunCollab(ctx); err != nil {
		logrus.Errorf("Collab run failed: %v", err)
		errs = append(errs, fmt.Sprintf("collab: %v", err))
	}
	if _, err := s.RunUser(ctx); err != nil {
		logrus.Errorf("User run failed: %v", err)
		errs = append(errs, fmt.Sprintf("user: %v", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("pipeline run failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// RunCollab discovers creator/amplifier prospects via user search and queues
// up to the collab quota
func (s *Service) RunCollab(ctx context.Context) (*models.RunReport, error) {
	return s.run(ctx, models.BucketCollab, s.config.CollabQueries, s.config.CollabQuota)
}

// RunUser discovers potential-user prospects via tweet search and queues up
// to the user quota
func (s *Service) RunUser(ctx context.Context) (*models.RunReport, error) {
	return s.run(ctx, models.BucketUser, s.config.UserQueries, s.config.UserQuota)
}

func (s *Service) run(ctx context.Context, bucket models.Bucket, queries []string, quota int) (*models.RunReport, error) {
	start := time.Now().UTC()
	runDate := start.Format("2006-01-02")

	logrus.Infof("Starting %s run for %s (%d queries, quota %d)", bucket, runDate, len(queries), quota)

	report := &models.RunReport{
		Bucket:      bucket,
		RunDate:     runDate,
		StartedAt:   start,
		QueryCounts: make(map[string]int),
	}

	if s.config.ClearQueueBeforeRun {
		removed, err := s.store.DeleteQueuedForDate(ctx, runDate, bucket)
		if err != nil {
			return nil, fmt.Errorf("failed to clear stale queue for %s: %w", runDate, err)
		}
		if removed > 0 {
			logrus.Infof("Cleared %d stale queued candidates for %s/%s", removed, runDate, bucket)
		}
	}

	scored, err := s.discover(ctx, bucket, queries, report)
	if err != nil {
		return nil, err
	}

	deduped := scoring.DedupeByScore(scored)
	top := scoring.RankTop(deduped, quota)
	logrus.Infof("%s run: %d discovered, %d eligible, %d after dedupe, %d ranked into queue",
		bucket, report.Discovered, report.Eligible, len(deduped), len(top))

	candidates := s.draftAll(ctx, top, bucket, runDate, start, report)

	for _, c := range top {
		if err := s.store.UpsertProfile(ctx, c.Profile); err != nil {
			return nil, fmt.Errorf("failed to upsert profile @%s: %w", c.Profile.Handle, err)
		}
	}

	queued, err := s.store.InsertCandidates(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("failed to queue candidates: %w", err)
	}

	report.Queued = queued
	report.Duration = time.Since(start).String()
	report.Candidates = candidates

	s.updateMetrics(report)
	s.snapshot(report)

	if s.notifier != nil {
		if err := s.notifier.SendRunReport(report); err != nil {
			logrus.Errorf("Failed to send run report: %v", err)
		}
	}

	logrus.Infof("%s run completed in %v: queued %d candidates", bucket, time.Since(start), queued)
	return report, nil
}

// discover walks the bucket's queries sequentially and returns scored,
// eligible profiles. Search degradation surfaces as short query counts, never
// as an error; store errors abort.
func (s *Service) discover(ctx context.Context, bucket models.Bucket, queries []string, report *models.RunReport) ([]scoring.Scored, error) {
	var scored []scoring.Scored
	now := time.Now().UTC()

	for _, query := range queries {
		var profiles []models.Profile
		snippets := make(map[string]string)

		switch bucket {
		case models.BucketCollab:
			profiles = twitter.DedupeProfiles(s.search.SearchUsers(ctx, query, s.config.ResultsPerQuery))
		case models.BucketUser:
			tweets := s.search.SearchTweets(ctx, query, s.config.ResultsPerQuery)
			profiles = twitter.ExtractUniqueAuthors(tweets)
			for _, t := range tweets {
				if t.Author != nil {
					if _, ok := snippets[t.Author.TwitterID]; !ok {
						snippets[t.Author.TwitterID] = t.Text
					}
				}
			}
		}

		report.QueryCounts[query] = len(profiles)
		report.Discovered += len(profiles)
		logrus.Debugf("Query %q returned %d profiles", query, len(profiles))

		for _, profile := range profiles {
			profile.DiscoveryBucket = bucket

			ok, reason, err := s.admit(ctx, profile, bucket, now)
			if err != nil {
				return nil, err
			}
			if !ok {
				logrus.Debugf("Rejected @%s: %s", profile.Handle, reason)
				continue
			}
			report.Eligible++

			candidate, ok := s.evaluate(ctx, profile, bucket, query, snippets[profile.TwitterID], now, report)
			if ok {
				scored = append(scored, candidate)
			}
		}
	}

	return scored, nil
}

// admit applies the cheap gates that need no timeline fetch: follower band
// and profile shape, suppression, and the re-contact policy
func (s *Service) admit(ctx context.Context, profile models.Profile, bucket models.Bucket, now time.Time) (bool, string, error) {
	var eligible bool
	var reason string
	switch bucket {
	case models.BucketCollab:
		eligible, reason = scoring.CheckCollabEligibility(profile, s.config)
	case models.BucketUser:
		eligible, reason = scoring.CheckUserEligibility(profile, s.config)
	}
	if !eligible {
		return false, reason, nil
	}

	suppressed, err := s.store.IsSuppressed(ctx, profile.TwitterID, now)
	if err != nil {
		return false, "", fmt.Errorf("suppression check failed for @%s: %w", profile.Handle, err)
	}
	if suppressed {
		return false, "suppressed", nil
	}

	ok, err := s.historyOK(ctx, profile.TwitterID, now)
	if err != nil {
		return false, "", err
	}
	if !ok {
		return false, "already contacted", nil
	}

	return true, "", nil
}

// historyOK enforces the re-contact policy against the profile's last queue
// date
func (s *Service) historyOK(ctx context.Context, twitterID string, now time.Time) (bool, error) {
	if s.config.RecontactPolicy == config.RecontactAlways {
		return true, nil
	}

	last, err := s.store.LastQueuedDate(ctx, twitterID)
	if err != nil {
		return false, fmt.Errorf("history lookup failed for %s: %w", twitterID, err)
	}
	if last == "" {
		return true, nil
	}

	if s.config.RecontactPolicy == config.RecontactNever {
		return false, nil
	}

	lastDay, err := time.Parse("2006-01-02", last)
	if err != nil {
		// Unparseable history is treated as recent contact
		return false, nil
	}
	cooldown := time.Duration(s.config.RecontactCooldownDays) * 24 * time.Hour
	return now.Sub(lastDay) >= cooldown, nil
}

// evaluate fetches the profile's timeline, runs the optional classifier, and
// computes the bucket score exactly once. It returns ok=false when the
// profile is vetoed or required signals are missing.
func (s *Service) evaluate(ctx context.Context, profile models.Profile, bucket models.Bucket, query, snippet string, now time.Time, report *models.RunReport) (scoring.Scored, bool) {
	tweets := s.search.GetUserTweets(ctx, profile.Handle, timelineFetchCount)
	insights := analysis.AnalyzeTimeline(tweets, now)

	classification := s.classify(ctx, profile, tweets, &insights, report)
	if classification == nil && s.config.RequireClassifier {
		logrus.Debugf("Skipping @%s: classifier required but unavailable", profile.Handle)
		return scoring.Scored{}, false
	}
	if classification != nil && !classification.IsCollabCreator && !classification.IsPotentialUser {
		logrus.Debugf("Skipping @%s: classifier vetoed both buckets", profile.Handle)
		return scoring.Scored{}, false
	}

	var score float64
	switch bucket {
	case models.BucketCollab:
		signals := deriveAmplifierSignals(profile, insights)
		dmOpen := profile.DMOpen
		if classification != nil {
			if classification.AmplifierSignals != nil {
				signals = *classification.AmplifierSignals
			}
			if classification.DMOpen != nil {
				dmOpen = classification.DMOpen
			}
		}
		score = scoring.CollabScore(signals, dmOpen, s.config.CollabWeights)
	case models.BucketUser:
		signals := scoring.UserSignals{
			PainPoints: insights.PainPoints,
			Brands:     insights.Tools,
			Niches:     insights.Interests,
		}
		if classification != nil {
			if len(classification.PainPoints) > 0 {
				signals.PainPoints = classification.PainPoints
			}
			if len(classification.Brands) > 0 {
				signals.Brands = classification.Brands
			}
			if len(classification.Niches) > 0 {
				signals.Niches = classification.Niches
			}
		}
		score = scoring.UserScore(signals, lastTweetAgeDays(tweets, now), s.config.UserWeights)
	}

	rationale := query + " search"
	if classification != nil && classification.Reason != "" {
		rationale += "; " + classification.Reason
	}

	return scoring.Scored{
		Profile:   profile,
		Bucket:    bucket,
		Score:     score,
		Rationale: rationale,
		Query:     query,
		Insights:  &insights,
		Snippet:   snippet,
	}, true
}

// classify runs the rate-limited LLM classifier. Any failure degrades to a
// nil judgment and bumps the error count.
func (s *Service) classify(ctx context.Context, profile models.Profile, tweets []models.Tweet, insights *models.TimelineInsights, report *models.RunReport) *models.Classification {
	if s.classifier == nil || !s.classifier.IsEnabled() {
		return nil
	}

	if err := s.llmLimiter.Wait(ctx); err != nil {
		return nil
	}

	classification, err := s.classifier.Classify(ctx, profile, tweets, insights)
	if err != nil {
		logrus.Warnf("Classifier failed for @%s, continuing with heuristics: %v", profile.Handle, err)
		report.ErrorCount++
		return nil
	}
	return classification
}

// draftAll produces outreach drafts for the ranked candidates. A failed
// primary draft falls back to the template drafter, so a candidate never
// loses its queue slot to a drafting error.
func (s *Service) draftAll(ctx context.Context, top []scoring.Scored, bucket models.Bucket, runDate string, now time.Time, report *models.RunReport) []models.Candidate {
	candidates := make([]models.Candidate, 0, len(top))

	for _, c := range top {
		req := drafter.Request{
			Profile:      c.Profile,
			Bucket:       bucket,
			Rationale:    c.Rationale,
			Query:        c.Query,
			TweetSnippet: c.Snippet,
		}
		if c.Insights != nil {
			req.TimelineSummary = analysis.SummarizeInsights(*c.Insights)
		}

		draft := s.draftOne(ctx, req, report)

		candidates = append(candidates, models.Candidate{
			TwitterID:  c.Profile.TwitterID,
			Bucket:     bucket,
			Score:      c.Score,
			Rationale:  c.Rationale,
			Icebreaker: draft.Icebreaker,
			DMDraft:    draft.DM,
			QueuedFor:  runDate,
			Status:     models.StatusQueued,
			CreatedAt:  now,
		})
	}

	return candidates
}

func (s *Service) draftOne(ctx context.Context, req drafter.Request, report *models.RunReport) *models.Draft {
	if s.drafter != nil {
		if err := s.llmLimiter.Wait(ctx); err == nil {
			draft, err := s.drafter.Draft(ctx, req)
			if err == nil {
				return draft
			}
			logrus.Warnf("Drafter failed for @%s, falling back to template: %v", req.Profile.Handle, err)
			report.ErrorCount++
		}
	}

	draft, _ := s.fallback.Draft(ctx, req)
	return draft
}

// snapshot archives the raw run report when an archive is configured
// SnapshotName is the archive blob name for a run's snapshot
func SnapshotName(runDate string, bucket models.Bucket) string {
	return fmt.Sprintf("runs/%s-%s.json", runDate, bucket)
}

func (s *Service) snapshot(report *models.RunReport) {
	if s.archive == nil {
		return
	}

	data, err := json.Marshal(report)
	if err != nil {
		logrus.Errorf("Failed to marshal run snapshot: %v", err)
		return
	}

	name := SnapshotName(report.RunDate, report.Bucket)
	if err := s.archive.Store(name, data); err != nil {
		logrus.Errorf("Failed to archive run snapshot %s: %v", name, err)
	}
}

// deriveAmplifierSignals approximates amplifier behavior from the profile
// and timeline when no classifier judgment is available
func deriveAmplifierSignals(profile models.Profile, insights models.TimelineInsights) models.AmplifierSignals {
	return models.AmplifierSignals{
		RTSmallRatio:         insights.EngagementPattern.RetweetsRatio,
		QTSmallRatio:         0,
		RepliesToSmallLast7d: insights.EngagementPattern.RepliesRatio >= 0.2 && insights.EngagementPattern.IsActive,
		BioTerms:             analysis.ExtractBioTerms(profile.Bio),
	}
}

// lastTweetAgeDays returns whole days since the most recent tweet, or a
// large value when the timeline is empty
func lastTweetAgeDays(tweets []models.Tweet, now time.Time) int {
	var latest time.Time
	for _, t := range tweets {
		if t.CreatedAt.After(latest) {
			latest = t.CreatedAt
		}
	}
	if latest.IsZero() {
		return 9999
	}
	return int(now.Sub(latest).Hours() / 24)
}
