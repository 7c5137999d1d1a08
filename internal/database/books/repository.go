// Package books provides database operations for the book catalog.
package books

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Akshat120/Book-Review-API/internal/database"
	"github.com/Akshat120/Book-Review-API/internal/entities"
)

// Filter narrows a book listing. Empty fields are ignored.
type Filter struct {
	Author string
	Genre  string
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateBook stores a new book owned by creatorID.
// Returns database.ErrForeignKeyViolation if the creator does not exist.
func (r *Repository) CreateBook(ctx context.Context, title, author string, genre *string, creatorID uint) (*entities.Book, error) {
	book := &entities.Book{
		Title:     title,
		Author:    author,
		Genre:     genre,
		CreatedBy: creatorID,
	}

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(book).Error; err != nil {
		return nil, fmt.Errorf("create book: %w", database.TranslateError(err))
	}

	return book, nil
}

// FilterBooks returns one page of books in insertion order, matching the
// non-empty fields of filter exactly.
func (r *Repository) FilterBooks(ctx context.Context, page int, filter Filter, pageSize int) ([]entities.Book, error) {
	books := make([]entities.Book, 0, pageSize)

	query := r.db.WithContext(ctx).Model(&entities.Book{})
	if filter.Author != "" {
		query = query.Where("author = ?", filter.Author)
	}
	if filter.Genre != "" {
		query = query.Where("genre = ?", filter.Genre)
	}

	err := query.Order("id ASC").Scopes(database.Paginate(page, pageSize)).Find(&books).Error
	if err != nil {
		return nil, fmt.Errorf("filter books: %w", database.TranslateError(err))
	}
	return books, nil
}

// GetBookByID retrieves a book by ID.
func (r *Repository) GetBookByID(ctx context.Context, id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).First(&book, id).Error
	if err != nil {
		return nil, fmt.Errorf("get book %d: %w", id, database.TranslateError(err))
	}
	return &book, nil
}
