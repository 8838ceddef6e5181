package notifications

import "github.com/subwise/outreach-bot/internal/models"

// Notifier delivers run summaries to the configured channels. Notification
// failures never fail a pipeline run.
type Notifier interface {
	SendRunReport(report *models.RunReport) error
}
