package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DefaultCleanupSchedule runs the cleanup every day at 3 AM.
// Cron format: second minute hour day month weekday
const DefaultCleanupSchedule = "0 0 3 * * *"

// CleanupResult reports how many rows one cleanup run removed
type CleanupResult struct {
	RateLimits int64 `json:"rate_limits"`
	AuditLogs  int64 `json:"audit_logs"`
}

// CronService manages scheduled background jobs
type CronService struct {
	cron           *cron.Cron
	rateLimit      *RateLimitService
	audit          *AuditService
	auditRetention time.Duration
	logger         logrus.FieldLogger
}

// NewCronService creates a new CronService
func NewCronService(rateLimit *RateLimitService, audit *AuditService, auditRetention time.Duration, logger logrus.FieldLogger) *CronService {
	return &CronService{
		cron:           cron.New(cron.WithSeconds()),
		rateLimit:      rateLimit,
		audit:          audit,
		auditRetention: auditRetention,
		logger:         logger,
	}
}

// Start schedules the cleanup job and starts the scheduler
func (s *CronService) Start(schedule string) error {
	if schedule == "" {
		schedule = DefaultCleanupSchedule
	}

	if _, err := s.cron.AddFunc(schedule, s.cleanupJob); err != nil {
		return fmt.Errorf("failed to schedule cleanup job: %w", err)
	}

	s.cron.Start()
	s.logger.WithField("schedule", schedule).Info("Cron service started")
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron service stopped")
}

func (s *CronService) cleanupJob() {
	if _, err := s.RunCleanupNow(); err != nil {
		s.logger.WithError(err).Error("Cleanup job failed")
	}
}

// RunCleanupNow deletes expired rate limit records and audit logs past retention.
// Both steps run even when one fails.
func (s *CronService) RunCleanupNow() (CleanupResult, error) {
	start := time.Now()
	var result CleanupResult
	var errs []error

	rateLimits, err := s.rateLimit.CleanupExpiredRateLimits()
	if err != nil {
		errs = append(errs, err)
	}
	result.RateLimits = rateLimits

	if s.auditRetention > 0 {
		auditLogs, err := s.audit.CleanupOldAuditLogs(s.auditRetention)
		if err != nil {
			errs = append(errs, err)
		}
		result.AuditLogs = auditLogs
	}

	s.logger.WithFields(logrus.Fields{
		"rate_limits": result.RateLimits,
		"audit_logs":  result.AuditLogs,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Cleanup finished")

	return result, errors.Join(errs...)
}

// GetJobStatus returns the status of scheduled jobs
func (s *CronService) GetJobStatus() map[string]interface{} {
	entries := s.cron.Entries()

	jobs := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		jobs = append(jobs, map[string]interface{}{
			"id":       entry.ID,
			"next_run": entry.Next,
			"prev_run": entry.Prev,
		})
	}

	return map[string]interface{}{
		"running":   len(entries) > 0,
		"job_count": len(entries),
		"jobs":      jobs,
	}
}
