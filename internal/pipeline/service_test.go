package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/subwise/outreach-bot/internal/config"
	"github.com/subwise/outreach-bot/internal/models"
)

// MockStore is a mock implementation of the store interface
type MockStore struct {
	mock.Mock
}

func (m *MockStore) UpsertProfile(ctx context.Context, profile models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockStore) GetProfile(ctx context.Context, twitterID string) (*models.Profile, error) {
	args := m.Called(ctx, twitterID)
	if p := args.Get(0); p != nil {
		return p.(*models.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) InsertCandidates(ctx context.Context, candidates []models.Candidate) (int, error) {
	args := m.Called(ctx, candidates)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) CandidatesForDate(ctx context.Context, date string, bucket models.Bucket) ([]models.Candidate, error) {
	args := m.Called(ctx, date, bucket)
	return args.Get(0).([]models.Candidate), args.Error(1)
}

func (m *MockStore) CandidatesByStatusRange(ctx context.Context, start, end, status string) ([]models.Candidate, error) {
	args := m.Called(ctx, start, end, status)
	return args.Get(0).([]models.Candidate), args.Error(1)
}

func (m *MockStore) MarkStatus(ctx context.Context, id, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockStore) DeleteCandidate(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) DeleteQueuedForDate(ctx context.Context, date string, bucket models.Bucket) (int, error) {
	args := m.Called(ctx, date, bucket)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) LastQueuedDate(ctx context.Context, twitterID string) (string, error) {
	args := m.Called(ctx, twitterID)
	return args.String(0), args.Error(1)
}

func (m *MockStore) SentCountForProfile(ctx context.Context, twitterID string) (int, error) {
	args := m.Called(ctx, twitterID)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) AddSuppression(ctx context.Context, s models.Suppression) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockStore) IsSuppressed(ctx context.Context, twitterID string, now time.Time) (bool, error) {
	args := m.Called(ctx, twitterID, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockSearchClient is a mock implementation of the search surface
type MockSearchClient struct {
	mock.Mock
}

func (m *MockSearchClient) SearchTweets(ctx context.Context, query string, maxResults int) []models.Tweet {
	args := m.Called(ctx, query, maxResults)
	if t := args.Get(0); t != nil {
		return t.([]models.Tweet)
	}
	return nil
}

func (m *MockSearchClient) SearchUsers(ctx context.Context, query string, maxResults int) []models.Profile {
	args := m.Called(ctx, query, maxResults)
	if p := args.Get(0); p != nil {
		return p.([]models.Profile)
	}
	return nil
}

func (m *MockSearchClient) GetUserTweets(ctx context.Context, handle string, count int) []models.Tweet {
	args := m.Called(ctx, handle, count)
	if t := args.Get(0); t != nil {
		return t.([]models.Tweet)
	}
	return nil
}

func (m *MockSearchClient) GetUser(ctx context.Context, handle string) (*models.Profile, error) {
	args := m.Called(ctx, handle)
	if p := args.Get(0); p != nil {
		return p.(*models.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSearchClient) IsEnabled() bool {
	args := m.Called()
	return args.Bool(0)
}

// MockClassifier is a mock implementation of the classifier
type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Classify(ctx context.Context, profile models.Profile, recentTweets []models.Tweet, insights *models.TimelineInsights) (*models.Classification, error) {
	args := m.Called(ctx, profile, recentTweets, insights)
	if c := args.Get(0); c != nil {
		return c.(*models.Classification), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClassifier) IsEnabled() bool {
	args := m.Called()
	return args.Bool(0)
}

// MockNotifier is a mock implementation of the notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendRunReport(report *models.RunReport) error {
	args := m.Called(report)
	return args.Error(0)
}

func pipelineTestConfig() *config.Config {
	return &config.Config{
		CollabQueries:   []string{"maker"},
		UserQueries:     []string{"subscription"},
		CollabQuota:     10,
		UserQuota:       2,
		CollabBand:      config.FollowerBand{Min: 500, Max: 250000},
		UserBand:        config.FollowerBand{Min: 1, Max: 100000},
		MinBioLength:    10,
		MinTweetHistory: 5,
		CollabWeights: config.CollabWeights{
			RTSmall: 0.5, QTSmall: 0.5, BioTerms: 2, ReplyRateSmall: 2, DMOpen: 1,
		},
		UserWeights: config.UserWeights{
			Brand: 1, Pain: 5, Activity: 2, Fit: 3,
		},
		ResultsPerQuery:     20,
		LLMCallDelay:        time.Microsecond,
		RecontactPolicy:     config.RecontactNever,
		ClearQueueBeforeRun: true,
		DrafterStrategy:     config.DrafterTemplate,
	}
}

func userTweet(id, authorID, text string, age time.Duration) models.Tweet {
	return models.Tweet{
		ID:        id,
		Text:      text,
		CreatedAt: time.Now().UTC().Add(-age),
		Author: &models.Profile{
			TwitterID:  authorID,
			Handle:     "user" + authorID,
			Followers:  50,
			TweetCount: 100,
		},
	}
}

func freshStoreMocks(mockStore *MockStore) {
	mockStore.On("DeleteQueuedForDate", mock.Anything, mock.Anything, mock.Anything).Return(0, nil)
	mockStore.On("IsSuppressed", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	mockStore.On("LastQueuedDate", mock.Anything, mock.Anything).Return("", nil)
	mockStore.On("UpsertProfile", mock.Anything, mock.Anything).Return(nil)
}

func TestRunUser_QueuesComplainers(t *testing.T) {
	cfg := pipelineTestConfig()
	mockStore := &MockStore{}
	mockSearch := &MockSearchClient{}
	mockNotifier := &MockNotifier{}

	freshStoreMocks(mockStore)

	complaint := "ugh forgot to cancel Netflix again"
	mockSearch.On("SearchTweets", mock.Anything, "subscription", 20).Return([]models.Tweet{
		userTweet("t1", "1", complaint, time.Hour),
	})
	mockSearch.On("GetUserTweets", mock.Anything, "user1", timelineFetchCount).Return([]models.Tweet{
		{ID: "t1", Text: complaint, CreatedAt: time.Now().UTC().Add(-time.Hour)},
	})

	var inserted []models.Candidate
	mockStore.On("InsertCandidates", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		inserted = args.Get(1).([]models.Candidate)
	}).Return(1, nil)
	mockNotifier.On("SendRunReport", mock.Anything).Return(nil)

	svc := NewService(cfg, mockStore, mockSearch, nil, nil, mockNotifier, nil)
	report, err := svc.RunUser(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, report.Discovered)
	assert.Equal(t, 1, report.Eligible)
	assert.Equal(t, 1, report.Queued)

	require.Len(t, inserted, 1)
	c := inserted[0]
	assert.Equal(t, "1", c.TwitterID)
	assert.Equal(t, models.BucketUser, c.Bucket)
	assert.Equal(t, models.StatusQueued, c.Status)
	// brand 1 + pain 5 + activity 2 = 8 (no niche signal)
	assert.InDelta(t, 8.0, c.Score, 0.001)
	assert.Contains(t, c.Rationale, "subscription search")
	assert.NotEmpty(t, c.DMDraft)
	mockNotifier.AssertCalled(t, "SendRunReport", mock.Anything)
}

func TestRunUser_QuotaCap(t *testing.T) {
	cfg := pipelineTestConfig()
	mockStore := &MockStore{}
	mockSearch := &MockSearchClient{}

	freshStoreMocks(mockStore)

	var tweets []models.Tweet
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("%d", i+1)
		tweets = append(tweets, userTweet("t"+id, id, "too many subscriptions, seriously? charged again", time.Hour))
	}
	mockSearch.On("SearchTweets", mock.Anything, "subscription", 20).Return(tweets)
	for i := 0; i < 5; i++ {
		handle := fmt.Sprintf("user%d", i+1)
		mockSearch.On("GetUserTweets", mock.Anything, handle, timelineFetchCount).Return([]models.Tweet{
			{Text: "too many subscriptions to track", CreatedAt: time.Now().UTC().Add(-time.Hour)},
		})
	}

	mockStore.On("InsertCandidates", mock.Anything, mock.MatchedBy(func(cs []models.Candidate) bool {
		return len(cs) == 2 // quota is a hard cap
	})).Return(2, nil)

	svc := NewService(cfg, mockStore, mockSearch, nil, nil, nil, nil)
	report, err := svc.RunUser(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 5, report.Discovered)
	assert.Equal(t, 2, report.Queued)
	mockStore.AssertExpectations(t)
}

func TestRunCollab_EligibilityAndScoring(t *testing.T) {
	cfg := pipelineTestConfig()
	mockStore := &MockStore{}
	mockSearch := &MockSearchClient{}

	freshStoreMocks(mockStore)

	dmOpen := true
	mockSearch.On("SearchUsers", mock.Anything, "maker", 20).Return([]models.Profile{
		{TwitterID: "1", Handle: "smallfry", Followers: 100, Bio: "Indie maker shipping things"},
		{TwitterID: "2", Handle: "creator", Followers: 5000, Bio: "Indie maker shipping things", DMOpen: &dmOpen},
	})
	mockSearch.On("GetUserTweets", mock.Anything, "creator", timelineFetchCount).Return([]models.Tweet{
		{Text: "just shipped a feature", CreatedAt: time.Now().UTC().Add(-time.Hour)},
	})

	var inserted []models.Candidate
	mockStore.On("InsertCandidates", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		inserted = args.Get(1).([]models.Candidate)
	}).Return(1, nil)

	svc := NewService(cfg, mockStore, mockSearch, nil, nil, nil, nil)
	report, err := svc.RunCollab(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, report.Discovered)
	assert.Equal(t, 1, report.Eligible) // smallfry fails the follower band

	require.Len(t, inserted, 1)
	assert.Equal(t, "2", inserted[0].TwitterID)
	assert.Greater(t, inserted[0].Score, 0.0)
	mockSearch.AssertNotCalled(t, "GetUserTweets", mock.Anything, "smallfry", mock.Anything)
}

func TestRunCollab_DedupesRepeatedProfiles(t *testing.T) {
	cfg := pipelineTestConfig()
	mockStore := &MockStore{}
	mockSearch := &MockSearchClient{}

	freshStoreMocks(mockStore)

	// User search can return the same account on multiple pages of one query.
	// It must be evaluated once, not fetched and scored per occurrence.
	repeat := models.Profile{TwitterID: "2", Handle: "creator", Followers: 5000, Bio: "Indie maker shipping things"}
	mockSearch.On("SearchUsers", mock.Anything, "maker", 20).Return([]models.Profile{repeat, repeat, repeat})
	mockSearch.On("GetUserTweets", mock.Anything, "creator", timelineFetchCount).Return([]models.Tweet{
		{Text: "just shipped a feature", CreatedAt: time.Now().UTC().Add(-time.Hour)},
	})

	mockStore.On("InsertCandidates", mock.Anything, mock.MatchedBy(func(cs []models.Candidate) bool {
		return len(cs) == 1
	})).Return(1, nil)

	svc := NewService(cfg, mockStore, mockSearch, nil, nil, nil, nil)
	report, err := svc.RunCollab(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, report.Discovered)
	assert.Equal(t, 1, report.Eligible)
	assert.Equal(t, 1, report.Queued)
	mockSearch.AssertNumberOfCalls(t, "GetUserTweets", 1)
	mockStore.AssertExpectations(t)
}

func TestRun_SuppressedProfileSkipped(t *testing.T) {
	cfg := pipelineTestConfig()
	mockStore := &MockStore{}
	mockSearch := &MockSearchClient{}

	mockStore.On("DeleteQueuedForDate", mock.Anything, mock.Anything, mock.Anything).Return(0, nil)
	mockStore.On("IsSuppressed", mock.Anything, "1", mock.Anything).Return(true, nil)
	mockStore.On("InsertCandidates", mock.Anything, mock.Anything).Return(0, nil)

	mockSearch.On("SearchUsers", mock.Anything, "maker", 20).Return([]models.Profile{
		{TwitterID: "1", Handle: "blocked", Followers: 5000, Bio: "Indie maker shipping things"},
	})

	svc := NewService(cfg, mockStore, mockSearch, nil, nil, nil, nil)
	report, err := svc.RunCollab(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, report.Eligible)
	mockStore.AssertNotCalled(t, "LastQueuedDate", mock.Anything, mock.Anything)
}

func TestRun_RecontactNeverSkipsHistory(t *testing.T) {
	cfg := pipelineTestConfig()
	mockStore := &MockStore{}
	mockSearch := &MockSearchClient{}

	mockStore.On("DeleteQueuedForDate", mock.Anything, mock.Anything, mock.Anything).Return(0, nil)
	mockStore.On("IsSuppressed", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	mockStore.On("LastQueuedDate", mock.Anything, "1").Return("2026-01-15", nil)
	mockStore.On("InsertCandidates", mock.Anything, mock.Anything).Return(0, nil)

	mockSearch.On("SearchUsers", mock.Anything, "maker", 20).Return([]models.Profile{
		{TwitterID: "1", Handle: "repeat", Followers: 5000, Bio: "Indie maker shipping things"},
	})

	svc := NewService(cfg, mockStore, mockSearch, nil, nil, nil, nil)
	report, err := svc.RunCollab(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, report.Eligible)
}

func TestRun_CooldownPolicy(t *testing.T) {
	cfg := pipelineTestConfig()
	cfg.RecontactPolicy = config.RecontactCooldown
	cfg.RecontactCooldownDays = 30

	mockStore := &MockStore{}
	mockSearch := &MockSearchClient{}

	mockStore.On("DeleteQueuedForDate", mock.Anything, mock.Anything, mock.Anything).Return(0, nil)
	mockStore.On("IsSuppressed", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	mockStore.On("UpsertProfile", mock.Anything, mock.Anything).Return(nil)
	// Contacted long ago: past the cooldown window
	mockStore.On("LastQueuedDate", mock.Anything, "1").Return("2020-01-15", nil)
	mockStore.On("InsertCandidates", mock.Anything, mock.MatchedBy(func(cs []models.Candidate) bool {
		return len(cs) == 1
	})).Return(1, nil)

	mockSearch.On("SearchUsers", mock.Anything, "maker", 20).Return([]models.Profile{
		{TwitterID: "1", Handle: "repeat", Followers: 5000, Bio: "Indie maker shipping things"},
	})
	mockSearch.On("GetUserTweets", mock.Anything, "repeat", timelineFetchCount).Return(nil)

	svc := NewService(cfg, mockStore, mockSearch, nil, nil, nil, nil)
	report, err := svc.RunCollab(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, report.Eligible)
	mockStore.AssertExpectations(t)
}

func TestRun_ClassifierVeto(t *testing.T) {
	cfg := pipelineTestConfig()
	mockStore := &MockStore{}
	mockSearch := &MockSearchClient{}
	mockClassifier := &MockClassifier{}

	freshStoreMocks(mockStore)
	mockStore.On("InsertCandidates", mock.Anything, mock.MatchedBy(func(cs []models.Candidate) bool {
		return len(cs) == 0
	})).Return(0, nil)

	mockSearch.On("SearchUsers", mock.Anything, "maker", 20).Return([]models.Profile{
		{TwitterID: "1", Handle: "botfarm", Followers: 5000, Bio: "Indie maker shipping things"},
	})
	mockSearch.On("GetUserTweets", mock.Anything, "botfarm", timelineFetchCount).Return(nil)

	mockClassifier.On("IsEnabled").Return(true)
	mockClassifier.On("Classify", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(&models.Classification{
		IsCollabCreator: false,
		IsPotentialUser: false,
		Reason:          "spam account",
	}, nil)

	svc := NewService(cfg, mockStore, mockSearch, mockClassifier, nil, nil, nil)
	report, err := svc.RunCollab(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, report.Queued)
}

func TestRun_ClassifierFailureDegradesToHeuristics(t *testing.T) {
	cfg := pipelineTestConfig()
	mockStore := &MockStore{}
	mockSearch := &MockSearchClient{}
	mockClassifier := &MockClassifier{}

	freshStoreMocks(mockStore)
	mockStore.On("InsertCandidates", mock.Anything, mock.MatchedBy(func(cs []models.Candidate) bool {
		return len(cs) == 1
	})).Return(1, nil)

	mockSearch.On("SearchUsers", mock.Anything, "maker", 20).Return([]models.Profile{
		{TwitterID: "1", Handle: "creator", Followers: 5000, Bio: "Indie maker shipping things"},
	})
	mockSearch.On("GetUserTweets", mock.Anything, "creator", timelineFetchCount).Return(nil)

	mockClassifier.On("IsEnabled").Return(true)
	mockClassifier.On("Classify", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("model overloaded"))

	svc := NewService(cfg, mockStore, mockSearch, mockClassifier, nil, nil, nil)
	report, err := svc.RunCollab(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, report.Queued)
	assert.Equal(t, 1, report.ErrorCount)
	mockStore.AssertExpectations(t)
}

func TestRun_RequireClassifierSkipsUnjudged(t *testing.T) {
	cfg := pipelineTestConfig()
	cfg.RequireClassifier = true

	mockStore := &MockStore{}
	mockSearch := &MockSearchClient{}
	mockClassifier := &MockClassifier{}

	freshStoreMocks(mockStore)
	mockStore.On("InsertCandidates", mock.Anything, mock.MatchedBy(func(cs []models.Candidate) bool {
		return len(cs) == 0
	})).Return(0, nil)

	mockSearch.On("SearchUsers", mock.Anything, "maker", 20).Return([]models.Profile{
		{TwitterID: "1", Handle: "creator", Followers: 5000, Bio: "Indie maker shipping things"},
	})
	mockSearch.On("GetUserTweets", mock.Anything, "creator", timelineFetchCount).Return(nil)

	mockClassifier.On("IsEnabled").Return(true)
	mockClassifier.On("Classify", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("model overloaded"))

	svc := NewService(cfg, mockStore, mockSearch, mockClassifier, nil, nil, nil)
	report, err := svc.RunCollab(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, report.Queued)
}

func TestRun_StoreErrorAbortsRun(t *testing.T) {
	cfg := pipelineTestConfig()
	mockStore := &MockStore{}
	mockSearch := &MockSearchClient{}

	mockStore.On("DeleteQueuedForDate", mock.Anything, mock.Anything, mock.Anything).
		Return(0, errors.New("disk full"))

	svc := NewService(cfg, mockStore, mockSearch, nil, nil, nil, nil)
	_, err := svc.RunCollab(context.Background())

	assert.Error(t, err)
	mockSearch.AssertNotCalled(t, "SearchUsers", mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_InsertErrorPropagates(t *testing.T) {
	cfg := pipelineTestConfig()
	mockStore := &MockStore{}
	mockSearch := &MockSearchClient{}

	freshStoreMocks(mockStore)
	mockStore.On("InsertCandidates", mock.Anything, mock.Anything).Return(0, errors.New("constraint violation"))

	mockSearch.On("SearchUsers", mock.Anything, "maker", 20).Return([]models.Profile{
		{TwitterID: "1", Handle: "creator", Followers: 5000, Bio: "Indie maker shipping things"},
	})
	mockSearch.On("GetUserTweets", mock.Anything, "creator", timelineFetchCount).Return(nil)

	svc := NewService(cfg, mockStore, mockSearch, nil, nil, nil, nil)
	_, err := svc.RunCollab(context.Background())

	assert.Error(t, err)
}

func TestRun_EmptySearchResults(t *testing.T) {
	cfg := pipelineTestConfig()
	mockStore := &MockStore{}
	mockSearch := &MockSearchClient{}

	mockStore.On("DeleteQueuedForDate", mock.Anything, mock.Anything, mock.Anything).Return(0, nil)
	mockStore.On("InsertCandidates", mock.Anything, mock.Anything).Return(0, nil)

	mockSearch.On("SearchUsers", mock.Anything, "maker", 20).Return(nil)

	svc := NewService(cfg, mockStore, mockSearch, nil, nil, nil, nil)
	report, err := svc.RunCollab(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, report.Discovered)
	assert.Equal(t, 0, report.Queued)
}

func TestDeriveAmplifierSignals(t *testing.T) {
	profile := models.Profile{Bio: "Indie maker shipping daily"}
	insights := models.TimelineInsights{
		EngagementPattern: models.EngagementPattern{
			RetweetsRatio: 0.4,
			RepliesRatio:  0.3,
			IsActive:      true,
		},
	}

	signals := deriveAmplifierSignals(profile, insights)

	assert.InDelta(t, 0.4, signals.RTSmallRatio, 0.001)
	assert.True(t, signals.RepliesToSmallLast7d)
	assert.NotEmpty(t, signals.BioTerms)
}

func TestLastTweetAgeDays(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 9999, lastTweetAgeDays(nil, now))

	tweets := []models.Tweet{
		{CreatedAt: now.Add(-72 * time.Hour)},
		{CreatedAt: now.Add(-24 * time.Hour)},
	}
	assert.Equal(t, 1, lastTweetAgeDays(tweets, now))
}

func TestGetMetrics(t *testing.T) {
	svc := NewService(pipelineTestConfig(), &MockStore{}, &MockSearchClient{}, nil, nil, nil, nil)

	svc.updateMetrics(&models.RunReport{
		Bucket:      models.BucketUser,
		Queued:      5,
		Discovered:  40,
		QueryCounts: map[string]int{"subscription": 40},
	})

	metrics := svc.GetMetrics()
	assert.Contains(t, metrics, `"queued": 5`)
	assert.Contains(t, metrics, `"subscription": 40`)
}
