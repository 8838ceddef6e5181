package notifications

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/subwise/outreach-bot/internal/config"
	"github.com/subwise/outreach-bot/internal/models"
)

// Service sends run summaries via webhook and/or email
type Service struct {
	config *config.Config
	client *resty.Client
}

// Ensure Service implements Notifier
var _ Notifier = (*Service)(nil)

// webhookMessage is a simple card payload accepted by Teams/Slack-style
// incoming webhooks
type webhookMessage struct {
	Title string        `json:"title"`
	Text  string        `json:"text"`
	Facts []webhookFact `json:"facts,omitempty"`
}

type webhookFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewService creates a new notification service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		client: resty.New().SetTimeout(30 * time.Second),
	}
}

// SendRunReport sends the run summary to every configured channel and
// reports a combined error if any of them failed
func (s *Service) SendRunReport(report *models.RunReport) error {
	var errs []string

	if s.config.WebhookURL != "" {
		if err := s.sendWebhook(report); err != nil {
			logrus.Errorf("Failed to send webhook notification: %v", err)
			errs = append(errs, fmt.Sprintf("webhook: %v", err))
		} else {
			logrus.Info("Successfully sent run report to webhook")
		}
	}

	if s.config.NotificationEmail != "" {
		if err := s.sendEmail(report); err != nil {
			logrus.Errorf("Failed to send email notification: %v", err)
			errs = append(errs, fmt.Sprintf("email: %v", err))
		} else {
			logrus.Info("Successfully sent run report via email")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notification failures: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (s *Service) sendWebhook(report *models.RunReport) error {
	msg := webhookMessage{
		Title: fmt.Sprintf("Outreach queue ready: %s (%s)", report.RunDate, report.Bucket),
		Text:  fmt.Sprintf("%d candidates queued for review", report.Queued),
		Facts: []webhookFact{
			{Name: "Bucket", Value: string(report.Bucket)},
			{Name: "Discovered", Value: fmt.Sprintf("%d", report.Discovered)},
			{Name: "Eligible", Value: fmt.Sprintf("%d", report.Eligible)},
			{Name: "Queued", Value: fmt.Sprintf("%d", report.Queued)},
			{Name: "Errors", Value: fmt.Sprintf("%d", report.ErrorCount)},
			{Name: "Duration", Value: report.Duration},
		},
	}

	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(msg).
		Post(s.config.WebhookURL)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	if resp.StatusCode() >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode())
	}
	return nil
}

var emailTemplate = template.Must(template.New("report").Parse(`
<h2>SubWise outreach queue: {{.RunDate}} ({{.Bucket}})</h2>
<p>{{.Queued}} candidates queued for review.</p>
<ul>
	<li>Discovered: {{.Discovered}}</li>
	<li>Eligible after filtering: {{.Eligible}}</li>
	<li>Errors during run: {{.ErrorCount}}</li>
	<li>Duration: {{.Duration}}</li>
</ul>
{{if .Candidates}}
<h3>Queued candidates</h3>
<table border="1" cellpadding="4" cellspacing="0">
	<tr><th>Handle</th><th>Score</th><th>Rationale</th></tr>
	{{range .Candidates}}
	<tr><td>@{{if .Profile}}{{.Profile.Handle}}{{else}}{{.TwitterID}}{{end}}</td><td>{{printf "%.2f" .Score}}</td><td>{{.Rationale}}</td></tr>
	{{end}}
</table>
{{end}}
`))

func (s *Service) sendEmail(report *models.RunReport) error {
	var body bytes.Buffer
	if err := emailTemplate.Execute(&body, report); err != nil {
		return fmt.Errorf("failed to render email body: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.SMTPUsername)
	m.SetHeader("To", s.config.NotificationEmail)
	m.SetHeader("Subject", fmt.Sprintf("Outreach queue %s: %d %s candidates", report.RunDate, report.Queued, report.Bucket))
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUsername, s.config.SMTPPassword)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
