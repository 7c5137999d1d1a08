// Package scheduler runs recurring maintenance jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// CleanupRunner starts one audit retention pass. The task queue client
// implements it by enqueueing a durable task.
type CleanupRunner interface {
	EnqueueAuditCleanup(ctx context.Context, retentionDays int) error
}

// AuditCleaner deletes audit events past their retention.
type AuditCleaner interface {
	DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error)
}

// InlineCleanup runs the retention pass in the scheduler goroutine. It is
// used when the task queue is disabled.
type InlineCleanup struct {
	Cleaner AuditCleaner
}

func (c InlineCleanup) EnqueueAuditCleanup(ctx context.Context, retentionDays int) error {
	deleted, err := c.Cleaner.DeleteOldEvents(ctx, time.Duration(retentionDays)*24*time.Hour)
	if err != nil {
		return err
	}
	log.Printf("Audit cleanup: removed %d events older than %d days", deleted, retentionDays)
	return nil
}

// AuditCleanupScheduler periodically triggers audit event retention.
type AuditCleanupScheduler struct {
	runner        CleanupRunner
	schedule      string
	retentionDays int

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewAuditCleanupScheduler creates a new scheduler instance.
func NewAuditCleanupScheduler(runner CleanupRunner, schedule string, retentionDays int) *AuditCleanupScheduler {
	return &AuditCleanupScheduler{
		runner:        runner,
		schedule:      schedule,
		retentionDays: retentionDays,
		cron:          cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := cron.ParseStandard(schedule)
	return err
}

// Start registers the cleanup job and starts the cron loop. The scheduler
// stops itself when ctx is cancelled.
func (s *AuditCleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if s.retentionDays <= 0 {
		log.Printf("Audit cleanup scheduler: retention disabled")
		return nil
	}

	if err := ValidateSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.runCleanup()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule cleanup job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Audit cleanup scheduler: started with schedule '%s'. Next run: %v",
		s.schedule, s.cron.Entry(entryID).Next)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running job and stops the scheduler.
func (s *AuditCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.cron.Remove(s.entryID)
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Audit cleanup scheduler: stopped")
}

// RunNow triggers an immediate cleanup.
func (s *AuditCleanupScheduler) RunNow() {
	s.runCleanup()
}

// IsRunning returns whether the scheduler is active.
func (s *AuditCleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns the next scheduled run, or the zero time when stopped.
func (s *AuditCleanupScheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isRunning {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

func (s *AuditCleanupScheduler) runCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.runner.EnqueueAuditCleanup(ctx, s.retentionDays); err != nil {
		log.Printf("Audit cleanup scheduler: run failed: %v", err)
	}
}
