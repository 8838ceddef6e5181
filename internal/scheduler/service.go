package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/subwise/outreach-bot/internal/config"
	"github.com/subwise/outreach-bot/internal/pipeline"
)

// Service schedules the daily outreach pipeline run
type Service struct {
	config   *config.Config
	pipeline *pipeline.Service
	cron     *cron.Cron
}

// NewService creates a new scheduler service
func NewService(cfg *config.Config, pipelineService *pipeline.Service) *Service {
	return &Service{
		config:   cfg,
		pipeline: pipelineService,
		cron:     cron.New(cron.WithSeconds()),
	}
}

// Start begins the daily schedule at the configured UTC hour
func (s *Service) Start() error {
	cronExpression := fmt.Sprintf("0 0 %d * * *", s.config.RunHourUTC)

	_, err := s.cron.AddFunc(cronExpression, func() {
		logrus.Info("Starting scheduled outreach run")
		if err := s.pipeline.RunBoth(context.Background()); err != nil {
			logrus.Errorf("Scheduled outreach run failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	logrus.Infof("Scheduler started: daily run at %02d:00 UTC", s.config.RunHourUTC)
	return nil
}

// Stop stops the scheduler
func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		logrus.Info("Scheduler stopped")
	}
}
