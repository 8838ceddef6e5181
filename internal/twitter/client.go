package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/subwise/outreach-bot/internal/models"
)

// pageSize is the fixed result count per API page
const pageSize = 20

// SearchClient is the search-surface contract consumed by the pipeline
type SearchClient interface {
	SearchTweets(ctx context.Context, query string, maxResults int) []models.Tweet
	SearchUsers(ctx context.Context, query string, maxResults int) []models.Profile
	GetUserTweets(ctx context.Context, handle string, count int) []models.Tweet
	GetUser(ctx context.Context, handle string) (*models.Profile, error)
	IsEnabled() bool
}

// Client talks to a twitterapi.io-style search surface
type Client struct {
	baseURL   string
	apiKey    string
	client    *resty.Client
	pageDelay time.Duration
}

// Ensure Client implements SearchClient
var _ SearchClient = (*Client)(nil)

// NewClient creates a new search client. Transient failures (429 and 5xx)
// are retried a bounded number of times with backoff before the page is
// given up on.
func NewClient(baseURL, apiKey string, pageDelay time.Duration, maxRetries int, retryWait time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: resty.New().
			SetTimeout(30*time.Second).
			SetHeader("User-Agent", "SubWise-Outreach-Bot/1.0").
			SetHeader("X-API-Key", apiKey).
			SetRetryCount(maxRetries).
			SetRetryWaitTime(retryWait).
			SetRetryMaxWaitTime(10 * time.Second).
			AddRetryCondition(func(r *resty.Response, err error) bool {
				return err != nil || r.StatusCode() == 429 || r.StatusCode() >= 500
			}),
		pageDelay: pageDelay,
	}
}

func (c *Client) IsEnabled() bool {
	return c.apiKey != ""
}

type tweetSearchResponse struct {
	Tweets     []rawTweet `json:"tweets"`
	NextCursor string     `json:"next_cursor"`
}

type userSearchResponse struct {
	Users      []rawUser `json:"users"`
	NextCursor string    `json:"next_cursor"`
}

type userTweetsResponse struct {
	Status string     `json:"status"`
	Tweets []rawTweet `json:"tweets"`
}

type userInfoResponse struct {
	Status string   `json:"status"`
	Data   *rawUser `json:"data"`
}

// SearchTweets runs one content query, paginating until maxResults tweets are
// accumulated or the surface is exhausted. Errors degrade to whatever was
// collected so far; this never fails the caller.
func (c *Client) SearchTweets(ctx context.Context, query string, maxResults int) []models.Tweet {
	var all []models.Tweet
	cursor := ""

	for page := 0; len(all) < maxResults; page++ {
		if page > 0 && !c.interPageDelay(ctx) {
			break
		}

		var result tweetSearchResponse
		ok := c.getPage(ctx, "/twitter/tweet/advanced_search", map[string]string{
			"query":     query,
			"queryType": "Latest",
		}, cursor, &result)
		if !ok || len(result.Tweets) == 0 {
			break
		}

		for _, raw := range result.Tweets {
			all = append(all, raw.normalize())
		}

		if result.NextCursor == "" {
			break
		}
		cursor = result.NextCursor
	}

	if len(all) > maxResults {
		all = all[:maxResults]
	}
	return all
}

// SearchUsers runs one actor query against the user search endpoint, with the
// same pagination and degradation rules as SearchTweets
func (c *Client) SearchUsers(ctx context.Context, query string, maxResults int) []models.Profile {
	var all []models.Profile
	cursor := ""

	for page := 0; len(all) < maxResults; page++ {
		if page > 0 && !c.interPageDelay(ctx) {
			break
		}

		var result userSearchResponse
		ok := c.getPage(ctx, "/twitter/user/search", map[string]string{
			"query": query,
		}, cursor, &result)
		if !ok || len(result.Users) == 0 {
			break
		}

		for _, raw := range result.Users {
			all = append(all, raw.normalize())
		}

		if result.NextCursor == "" {
			break
		}
		cursor = result.NextCursor
	}

	if len(all) > maxResults {
		all = all[:maxResults]
	}
	return all
}

// GetUserTweets fetches a profile's most recent tweets for timeline analysis
func (c *Client) GetUserTweets(ctx context.Context, handle string, count int) []models.Tweet {
	var result userTweetsResponse
	ok := c.getPage(ctx, "/twitter/user/last_tweets", map[string]string{
		"userName": handle,
	}, "", &result)
	if !ok || result.Status != "success" {
		return nil
	}

	tweets := make([]models.Tweet, 0, len(result.Tweets))
	for _, raw := range result.Tweets {
		tweets = append(tweets, raw.normalize())
	}
	if len(tweets) > count {
		tweets = tweets[:count]
	}
	return tweets
}

// GetUser fetches a single profile by handle
func (c *Client) GetUser(ctx context.Context, handle string) (*models.Profile, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("userName", handle).
		Get(c.baseURL + "/twitter/user/info")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %s: %w", handle, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("user info returned status %d", resp.StatusCode())
	}

	var result userInfoResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse user info response: %w", err)
	}
	if result.Status != "success" || result.Data == nil {
		return nil, fmt.Errorf("user %s not found", handle)
	}

	profile := result.Data.normalize()
	return &profile, nil
}

// getPage fetches and decodes one page. A false return means the surface is
// exhausted for this query: non-success statuses, network errors, and decode
// errors are all logged and treated as "no more data", never raised.
func (c *Client) getPage(ctx context.Context, path string, params map[string]string, cursor string, out interface{}) bool {
	req := c.client.R().SetContext(ctx).SetQueryParams(params)
	if cursor != "" {
		req.SetQueryParam("cursor", cursor)
	}

	resp, err := req.Get(c.baseURL + path)
	if err != nil {
		logrus.Errorf("Search surface request failed for %s: %v", path, err)
		return false
	}

	if resp.StatusCode() != 200 {
		logrus.Errorf("Search surface returned status %d for %s: %s", resp.StatusCode(), path, string(resp.Body()))
		return false
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		logrus.Errorf("Failed to parse search surface response for %s: %v", path, err)
		return false
	}

	return true
}

// interPageDelay waits the fixed inter-page delay, aborting on context cancellation
func (c *Client) interPageDelay(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(c.pageDelay):
		return true
	}
}
