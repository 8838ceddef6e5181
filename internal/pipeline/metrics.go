package pipeline

import (
	"encoding/json"
	"time"

	"github.com/subwise/outreach-bot/internal/models"
)

// Metrics holds cumulative pipeline metrics exposed on /metrics
type Metrics struct {
	LastRun         time.Time      `json:"last_run"`
	LastRunDuration string         `json:"last_run_duration"`
	LastRunBucket   string         `json:"last_run_bucket"`
	Discovered      int            `json:"discovered"`
	Eligible        int            `json:"eligible"`
	Queued          int            `json:"queued"`
	ErrorCount      int            `json:"error_count"`
	QueryCounts     map[string]int `json:"query_counts"`
	BucketQueued    map[string]int `json:"bucket_queued"`
}

func newMetrics() *Metrics {
	return &Metrics{
		QueryCounts:  make(map[string]int),
		BucketQueued: make(map[string]int),
	}
}

func (s *Service) updateMetrics(report *models.RunReport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.LastRun = time.Now().UTC()
	s.metrics.LastRunDuration = report.Duration
	s.metrics.LastRunBucket = string(report.Bucket)
	s.metrics.Discovered = report.Discovered
	s.metrics.Eligible = report.Eligible
	s.metrics.Queued = report.Queued
	s.metrics.ErrorCount = report.ErrorCount

	s.metrics.QueryCounts = make(map[string]int, len(report.QueryCounts))
	for query, count := range report.QueryCounts {
		s.metrics.QueryCounts[query] = count
	}
	s.metrics.BucketQueued[string(report.Bucket)] = report.Queued
}

// GetMetrics returns current metrics as indented JSON
func (s *Service) GetMetrics() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, _ := json.MarshalIndent(s.metrics, "", "  ")
	return string(data)
}
