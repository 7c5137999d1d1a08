package audit

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Akshat120/Book-Review-API/internal/entities"
)

const (
	ActionSignup       = "signup"
	ActionLogin        = "login"
	ActionLogout       = "logout"
	ActionBookCreate   = "book_create"
	ActionReviewCreate = "review_create"
	ActionReviewUpdate = "review_update"
	ActionReviewDelete = "review_delete"
)

// asyncWriteTimeout bounds a background write that has lost its request context.
const asyncWriteTimeout = 10 * time.Second

// Repository is the persistence the audit service needs.
type Repository interface {
	LogEvent(ctx context.Context, event *entities.AuditEvent) error
	GetEvents(ctx context.Context, userID uint, limit, offset int) ([]entities.AuditEvent, int64, error)
	DeleteOldEvents(ctx context.Context, olderThan time.Time) (int64, error)
}

// Enqueuer hands events to a durable queue instead of writing them inline.
type Enqueuer interface {
	EnqueueAuditEvent(ctx context.Context, event entities.AuditEvent) error
}

// Service provides high-level audit logging functionality.
type Service struct {
	repo     Repository
	enqueuer Enqueuer
	now      func() time.Time

	wg sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// SetEnqueuer routes subsequent events through the task queue. Passing nil
// restores background writes.
func (s *Service) SetEnqueuer(e Enqueuer) {
	s.enqueuer = e
}

// Log records an audit event synchronously.
func (s *Service) Log(ctx context.Context, event *entities.AuditEvent) error {
	return s.repo.LogEvent(ctx, event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), asyncWriteTimeout)
		defer cancel()
		if err := s.repo.LogEvent(ctx, event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// Wait blocks until every background write started by LogAsync has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// record stamps the event and dispatches it to the queue, falling back to a
// background write when the queue rejects it.
func (s *Service) record(event *entities.AuditEvent) {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.now()
	}

	if s.enqueuer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), asyncWriteTimeout)
		defer cancel()
		err := s.enqueuer.EnqueueAuditEvent(ctx, *event)
		if err == nil {
			return
		}
		log.Printf("Failed to enqueue audit event, writing directly: %v", err)
	}

	s.LogAsync(event)
}

// LogAuth records a signup, login or logout attempt. userID is zero when the
// caller could not be identified.
func (s *Service) LogAuth(userID uint, action, ipAddr, userAgent string, err error) {
	event := &entities.AuditEvent{
		UserID:     userID,
		EventType:  entities.AuditEventAuth,
		Action:     action,
		EntityType: "user",
		IPAddress:  ipAddr,
		UserAgent:  truncate(userAgent, 500),
		Status:     entities.AuditStatusSuccess,
	}
	if userID > 0 {
		event.EntityID = &userID
	}
	applyError(event, err)

	s.record(event)
}

// LogBookCreate records a newly created book.
func (s *Service) LogBookCreate(userID, bookID uint, title, ipAddr, userAgent string) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventBook,
		Action:      ActionBookCreate,
		Description: truncate("Created book: "+title, 500),
		EntityType:  "book",
		EntityID:    &bookID,
		IPAddress:   ipAddr,
		UserAgent:   truncate(userAgent, 500),
		Status:      entities.AuditStatusSuccess,
	}

	s.record(event)
}

// LogReview records a review mutation attempt. reviewID is zero when no
// review row was identified (a rejected create).
func (s *Service) LogReview(userID uint, action string, reviewID uint, description, ipAddr, userAgent string, err error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventReview,
		Action:      action,
		Description: truncate(description, 500),
		EntityType:  "review",
		IPAddress:   ipAddr,
		UserAgent:   truncate(userAgent, 500),
		Status:      entities.AuditStatusSuccess,
	}
	if reviewID > 0 {
		event.EntityID = &reviewID
	}
	applyError(event, err)

	s.record(event)
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(ctx context.Context, userID uint, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(ctx, userID, limit, offset)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := s.now().Add(-retention)
	return s.repo.DeleteOldEvents(ctx, cutoff)
}

func applyError(event *entities.AuditEvent, err error) {
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
