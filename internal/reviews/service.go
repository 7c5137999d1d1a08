// Package reviews enforces the rules around writing reviews: one review per
// user per book, ratings between 1 and 5, and only the author may change or
// remove a review.
package reviews

import (
	"context"
	"errors"
	"fmt"

	"github.com/Akshat120/Book-Review-API/internal/database"
	reviewsdb "github.com/Akshat120/Book-Review-API/internal/database/reviews"
	"github.com/Akshat120/Book-Review-API/internal/entities"
)

var (
	ErrDuplicateReview = errors.New("User already have review for this book.")
	ErrInvalidRating   = errors.New("Rating must be an integer between 1 and 5.")
	ErrEmptyUpdate     = errors.New("Nothing to update: provide rating or description.")
	ErrBookNotFound    = errors.New("Book not found.")
	ErrUnauthorized    = errors.New("not the author of this review")
	ErrNotFound        = errors.New("review not found")
)

// Patch lists the review fields to overwrite. Nil fields are left untouched.
type Patch = reviewsdb.Patch

// Store is the persistence the service depends on.
type Store interface {
	CreateReview(ctx context.Context, userID, bookID uint, rating int, description *string) (*entities.Review, error)
	FindReview(ctx context.Context, userID, bookID uint) (*entities.Review, error)
	GetReviewOwner(ctx context.Context, reviewID uint) (uint, error)
	UpdateReview(ctx context.Context, reviewID uint, patch reviewsdb.Patch) (int64, error)
	DeleteReview(ctx context.Context, reviewID uint) (int64, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

type CreateInput struct {
	UserID      uint
	BookID      uint
	Rating      int
	Description *string
}

// Create adds the caller's review of a book. The pre-check gives a fast
// answer; the unique index decides when two requests race.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entities.Review, error) {
	if !entities.ValidRating(in.Rating) {
		return nil, ErrInvalidRating
	}

	_, err := s.store.FindReview(ctx, in.UserID, in.BookID)
	if err == nil {
		return nil, ErrDuplicateReview
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}

	review, err := s.store.CreateReview(ctx, in.UserID, in.BookID, in.Rating, in.Description)
	switch {
	case err == nil:
		return review, nil
	case errors.Is(err, database.ErrConstraintViolation):
		return nil, ErrDuplicateReview
	case errors.Is(err, database.ErrForeignKeyViolation):
		return nil, ErrBookNotFound
	case errors.Is(err, database.ErrCheckViolation):
		return nil, ErrInvalidRating
	default:
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
}

// Update applies patch to a review written by callerID.
func (s *Service) Update(ctx context.Context, callerID, reviewID uint, patch Patch) error {
	if patch.Rating != nil && !entities.ValidRating(*patch.Rating) {
		return ErrInvalidRating
	}
	if patch.IsEmpty() {
		return ErrEmptyUpdate
	}

	if err := s.checkOwner(ctx, callerID, reviewID); err != nil {
		return err
	}

	rows, err := s.store.UpdateReview(ctx, reviewID, patch)
	if err != nil {
		if errors.Is(err, database.ErrCheckViolation) {
			return ErrInvalidRating
		}
		return fmt.Errorf("failed to update review: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a review written by callerID.
func (s *Service) Delete(ctx context.Context, callerID, reviewID uint) error {
	if err := s.checkOwner(ctx, callerID, reviewID); err != nil {
		return err
	}

	rows, err := s.store.DeleteReview(ctx, reviewID)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// checkOwner fails with ErrUnauthorized when the review exists and belongs to
// someone else. A missing review passes; the mutation then affects no rows
// and reports ErrNotFound.
func (s *Service) checkOwner(ctx context.Context, callerID, reviewID uint) error {
	owner, err := s.store.GetReviewOwner(ctx, reviewID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to look up review owner: %w", err)
	}
	if owner != callerID {
		return ErrUnauthorized
	}
	return nil
}
