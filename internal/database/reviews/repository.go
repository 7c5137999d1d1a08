// Package reviews provides database operations for book reviews.
//
// Every method is a single statement. The (book_id, user_id) unique index is
// the only guard against duplicate reviews; callers translate the resulting
// database.ErrConstraintViolation into a domain error.
package reviews

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Akshat120/Book-Review-API/internal/database"
	"github.com/Akshat120/Book-Review-API/internal/entities"
)

// Patch lists the review fields to overwrite. Nil fields are left untouched.
type Patch struct {
	Rating      *int
	Description *string
}

func (p Patch) IsEmpty() bool {
	return p.Rating == nil && p.Description == nil
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateReview inserts a review for (userID, bookID).
// Returns database.ErrConstraintViolation if the pair already has a review and
// database.ErrForeignKeyViolation if the book or user does not exist.
func (r *Repository) CreateReview(ctx context.Context, userID, bookID uint, rating int, description *string) (*entities.Review, error) {
	review := &entities.Review{
		UserID:      userID,
		BookID:      bookID,
		Rating:      rating,
		Description: description,
	}

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(review).Error; err != nil {
		return nil, fmt.Errorf("create review: %w", database.TranslateError(err))
	}
	return review, nil
}

// FilterReviewsByBook returns one page of a book's reviews in insertion order.
func (r *Repository) FilterReviewsByBook(ctx context.Context, bookID uint, page, pageSize int) ([]entities.Review, error) {
	reviews := make([]entities.Review, 0, pageSize)
	err := r.db.WithContext(ctx).
		Where("book_id = ?", bookID).
		Order("id ASC").
		Scopes(database.Paginate(page, pageSize)).
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("filter reviews for book %d: %w", bookID, database.TranslateError(err))
	}
	return reviews, nil
}

// FindReview returns the review userID wrote for bookID.
func (r *Repository) FindReview(ctx context.Context, userID, bookID uint) (*entities.Review, error) {
	var review entities.Review
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		First(&review).Error
	if err != nil {
		return nil, fmt.Errorf("find review: %w", database.TranslateError(err))
	}
	return &review, nil
}

// GetReviewOwner returns the ID of the user who wrote the review.
func (r *Repository) GetReviewOwner(ctx context.Context, reviewID uint) (uint, error) {
	var review entities.Review
	err := r.db.WithContext(ctx).Select("id", "user_id").First(&review, reviewID).Error
	if err != nil {
		return 0, fmt.Errorf("get owner of review %d: %w", reviewID, database.TranslateError(err))
	}
	return review.UserID, nil
}

// UpdateReview writes the non-nil patch fields and returns the number of rows
// changed, which is 0 when the review does not exist.
func (r *Repository) UpdateReview(ctx context.Context, reviewID uint, patch Patch) (int64, error) {
	updates := make(map[string]interface{}, 2)
	if patch.Rating != nil {
		updates["rating"] = *patch.Rating
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if len(updates) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).
		Model(&entities.Review{}).
		Where("id = ?", reviewID).
		Updates(updates)
	if result.Error != nil {
		return 0, fmt.Errorf("update review %d: %w", reviewID, database.TranslateError(result.Error))
	}
	return result.RowsAffected, nil
}

// DeleteReview removes the review and returns the number of rows deleted.
func (r *Repository) DeleteReview(ctx context.Context, reviewID uint) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&entities.Review{}, reviewID)
	if result.Error != nil {
		return 0, fmt.Errorf("delete review %d: %w", reviewID, database.TranslateError(result.Error))
	}
	return result.RowsAffected, nil
}
