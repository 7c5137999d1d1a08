package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/Akshat120/Book-Review-API/internal/entities"
)

const (
	recordAuditQueue  = "record_audit_event"
	cleanupAuditQueue = "cleanup_audit_events"

	defaultAuditRetentionDays = 30
)

var (
	errNoWriter  = errors.New("audit event writer not configured")
	errNoCleaner = errors.New("audit event cleaner not configured")
)

// AuditEventWriter persists a single audit event.
type AuditEventWriter interface {
	Log(ctx context.Context, event *entities.AuditEvent) error
}

// AuditEventCleaner deletes audit events past their retention.
type AuditEventCleaner interface {
	DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error)
}

// RecordAuditEventTask carries one audit event from a request handler to a
// worker so the request never waits on the audit write.
type RecordAuditEventTask struct {
	Event entities.AuditEvent `json:"event"`
}

func (RecordAuditEventTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        recordAuditQueue,
		MaxAttempts: 5,
		Backoff:     10 * time.Second,
		Timeout:     30 * time.Second,
		Retention:   keepFailures(time.Hour, true),
	}
}

// CleanupAuditEventsTask deletes events older than RetentionDays.
type CleanupAuditEventsTask struct {
	RetentionDays int `json:"retention_days"`
}

func (CleanupAuditEventsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        cleanupAuditQueue,
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention:   keepFailures(24*time.Hour, false),
	}
}

// keepFailures retains finished tasks for d; payloads are kept only for
// failed runs since audit payloads carry client addresses.
func keepFailures(d time.Duration, onlyFailed bool) *backlite.Retention {
	return &backlite.Retention{
		Duration:   d,
		OnlyFailed: onlyFailed,
		Data:       &backlite.RetainData{OnlyFailed: true},
	}
}

func RecordAuditEventProcessor(writer AuditEventWriter) backlite.QueueProcessor[RecordAuditEventTask] {
	return func(ctx context.Context, task RecordAuditEventTask) error {
		if writer == nil {
			return errNoWriter
		}

		event := task.Event
		// A retried attempt must not carry the id assigned by a failed insert.
		event.ID = 0
		if err := writer.Log(ctx, &event); err != nil {
			return fmt.Errorf("record audit event %q: %w", event.Action, err)
		}
		return nil
	}
}

func CleanupAuditEventsProcessor(cleaner AuditEventCleaner) backlite.QueueProcessor[CleanupAuditEventsTask] {
	return func(ctx context.Context, task CleanupAuditEventsTask) error {
		if cleaner == nil {
			return errNoCleaner
		}

		days := task.RetentionDays
		if days <= 0 {
			days = defaultAuditRetentionDays
		}

		deleted, err := cleaner.DeleteOldEvents(ctx, time.Duration(days)*24*time.Hour)
		if err != nil {
			return fmt.Errorf("cleanup audit events: %w", err)
		}
		log.Printf("Audit cleanup: removed %d events older than %d days", deleted, days)
		return nil
	}
}

func NewRecordAuditEventQueue(writer AuditEventWriter) backlite.Queue {
	return backlite.NewQueue(RecordAuditEventProcessor(writer))
}

func NewCleanupAuditEventsQueue(cleaner AuditEventCleaner) backlite.Queue {
	return backlite.NewQueue(CleanupAuditEventsProcessor(cleaner))
}

// EnqueueAuditEvent hands an audit event to the record queue.
func (c *Client) EnqueueAuditEvent(ctx context.Context, event entities.AuditEvent) error {
	_, err := c.Add(RecordAuditEventTask{Event: event}).Ctx(ctx).Save()
	return err
}

// EnqueueAuditCleanup schedules a one-off retention pass.
func (c *Client) EnqueueAuditCleanup(ctx context.Context, retentionDays int) error {
	_, err := c.Add(CleanupAuditEventsTask{RetentionDays: retentionDays}).Ctx(ctx).Save()
	return err
}
