// Package users provides database operations for user accounts.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.FindUserByUsername(ctx, "reader42")
package users

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Akshat120/Book-Review-API/internal/database"
	"github.com/Akshat120/Book-Review-API/internal/entities"
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser stores a new account. The password must already be hashed.
// Returns database.ErrConstraintViolation when the username is taken.
func (r *Repository) CreateUser(ctx context.Context, name, username, passwordHash string) (*entities.User, error) {
	user := &entities.User{
		Name:         name,
		Username:     username,
		PasswordHash: passwordHash,
	}

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", database.TranslateError(err))
	}

	return user, nil
}

// FindUserByUsername retrieves a user by username.
func (r *Repository) FindUserByUsername(ctx context.Context, username string) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, fmt.Errorf("find user %q: %w", username, database.TranslateError(err))
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(ctx context.Context, id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, database.TranslateError(err))
	}
	return &user, nil
}
