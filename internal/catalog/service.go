// Package catalog covers book creation, paginated listing and the book
// detail view with its on-read average rating.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/Akshat120/Book-Review-API/internal/database"
	booksdb "github.com/Akshat120/Book-Review-API/internal/database/books"
	"github.com/Akshat120/Book-Review-API/internal/entities"
)

var (
	ErrMissingFields = errors.New("All fields (title, author) are required.")
	ErrInvalidPage   = errors.New("Bad Page Number!")
)

// Filter narrows a book listing. Empty fields are ignored.
type Filter = booksdb.Filter

type BookStore interface {
	CreateBook(ctx context.Context, title, author string, genre *string, creatorID uint) (*entities.Book, error)
	FilterBooks(ctx context.Context, page int, filter booksdb.Filter, pageSize int) ([]entities.Book, error)
	GetBookByID(ctx context.Context, id uint) (*entities.Book, error)
}

type ReviewLister interface {
	FilterReviewsByBook(ctx context.Context, bookID uint, page, pageSize int) ([]entities.Review, error)
}

type Service struct {
	books    BookStore
	reviews  ReviewLister
	pageSize int
}

func NewService(books BookStore, reviews ReviewLister, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = database.DefaultPageSize
	}
	return &Service{books: books, reviews: reviews, pageSize: pageSize}
}

type CreateBookInput struct {
	Title     string
	Author    string
	Genre     *string
	CreatorID uint
}

// BookDetail is a book together with one page of its reviews.
type BookDetail struct {
	Book      *entities.Book    `json:"book"`
	AvgRating float64           `json:"avgRating"`
	Reviews   []entities.Review `json:"reviews"`
}

func (s *Service) CreateBook(ctx context.Context, in CreateBookInput) (*entities.Book, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Author) == "" {
		return nil, ErrMissingFields
	}

	genre := in.Genre
	if genre != nil && strings.TrimSpace(*genre) == "" {
		genre = nil
	}

	book, err := s.books.CreateBook(ctx, in.Title, in.Author, genre, in.CreatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}
	return book, nil
}

// ListBooks returns the requested page of books, oldest first.
func (s *Service) ListBooks(ctx context.Context, page int, filter Filter) ([]entities.Book, error) {
	if page < 1 {
		return nil, ErrInvalidPage
	}

	books, err := s.books.FilterBooks(ctx, page, filter, s.pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	if books == nil {
		books = []entities.Book{}
	}
	return books, nil
}

// GetBookDetail loads a book and one page of its reviews. A missing book is
// reported as a nil Book rather than an error. AvgRating covers only the
// reviews on the requested page.
func (s *Service) GetBookDetail(ctx context.Context, bookID uint, page int) (*BookDetail, error) {
	if page < 1 {
		return nil, ErrInvalidPage
	}

	book, err := s.books.GetBookByID(ctx, bookID)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("failed to load book: %w", err)
		}
		book = nil
	}

	reviews, err := s.reviews.FilterReviewsByBook(ctx, bookID, page, s.pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load reviews: %w", err)
	}
	if reviews == nil {
		reviews = []entities.Review{}
	}

	return &BookDetail{
		Book:      book,
		AvgRating: AverageRating(reviews),
		Reviews:   reviews,
	}, nil
}

// AverageRating is the arithmetic mean of the ratings, or 0 for no reviews.
func AverageRating(reviews []entities.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := lo.SumBy(reviews, func(r entities.Review) int { return r.Rating })
	return float64(sum) / float64(len(reviews))
}
