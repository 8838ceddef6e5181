package notifications

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subwise/outreach-bot/internal/config"
	"github.com/subwise/outreach-bot/internal/models"
)

func testReport() *models.RunReport {
	return &models.RunReport{
		Bucket:     models.BucketUser,
		RunDate:    "2026-08-29",
		Discovered: 40,
		Eligible:   12,
		Queued:     5,
		Duration:   "42s",
	}
}

func TestSendRunReport_Webhook(t *testing.T) {
	var received webhookMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := NewService(&config.Config{WebhookURL: server.URL})
	err := svc.SendRunReport(testReport())

	require.NoError(t, err)
	assert.Contains(t, received.Title, "2026-08-29")
	assert.Contains(t, received.Text, "5 candidates")
	assert.NotEmpty(t, received.Facts)
}

func TestSendRunReport_WebhookFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := NewService(&config.Config{WebhookURL: server.URL})
	assert.Error(t, svc.SendRunReport(testReport()))
}

func TestSendRunReport_NoChannelsConfigured(t *testing.T) {
	svc := NewService(&config.Config{})
	assert.NoError(t, svc.SendRunReport(testReport()))
}

func TestEmailTemplate_Renders(t *testing.T) {
	report := testReport()
	report.Candidates = []models.Candidate{
		{
			TwitterID: "1",
			Score:     8,
			Rationale: "subscription search",
			Profile:   &models.Profile{Handle: "alice"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, emailTemplate.Execute(&buf, report))

	out := buf.String()
	assert.Contains(t, out, "2026-08-29")
	assert.Contains(t, out, "@alice")
	assert.Contains(t, out, "8.00")
}
