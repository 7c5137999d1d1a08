package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Akshat120/Book-Review-API/internal/audit"
	"github.com/Akshat120/Book-Review-API/internal/auth"
	"github.com/Akshat120/Book-Review-API/internal/catalog"
	"github.com/Akshat120/Book-Review-API/internal/entities"
	"github.com/Akshat120/Book-Review-API/internal/metrics"
)

const msgBadBookID = "Wrong book ID!"

// CatalogService defines the book operations exposed over HTTP.
type CatalogService interface {
	CreateBook(ctx context.Context, in catalog.CreateBookInput) (*entities.Book, error)
	ListBooks(ctx context.Context, page int, filter catalog.Filter) ([]entities.Book, error)
	GetBookDetail(ctx context.Context, bookID uint, page int) (*catalog.BookDetail, error)
}

type BooksController struct {
	catalog      CatalogService
	auditService *audit.Service
}

func NewBooksController(catalog CatalogService, auditService *audit.Service) *BooksController {
	return &BooksController{
		catalog:      catalog,
		auditService: auditService,
	}
}

type createBookRequest struct {
	Title  string  `json:"title" binding:"max=255"`
	Author string  `json:"author" binding:"max=255"`
	Genre  *string `json:"genre" binding:"omitempty,max=100"`
}

type createBookResponse struct {
	Message string         `json:"message"`
	Book    *entities.Book `json:"book"`
}

// CreateBook adds a book owned by the caller
// POST /api/books
func (bc *BooksController) CreateBook(c *gin.Context) {
	var req createBookRequest
	if !bindJSON(c, &req) {
		return
	}

	userID := auth.GetUserID(c)
	book, err := bc.catalog.CreateBook(c.Request.Context(), catalog.CreateBookInput{
		Title:     req.Title,
		Author:    req.Author,
		Genre:     req.Genre,
		CreatorID: userID,
	})
	if err != nil {
		if errors.Is(err, catalog.ErrMissingFields) {
			respondBadRequest(c, err.Error())
			return
		}
		respondInternalError(c, err, "create book")
		return
	}

	metrics.RecordBookCreated()
	if bc.auditService != nil {
		ip, ua := clientInfo(c)
		bc.auditService.LogBookCreate(userID, book.ID, book.Title, ip, ua)
	}

	respondCreated(c, createBookResponse{Message: "Book created successfully", Book: book})
}

// ListBooks returns one page of books, optionally filtered by author and genre
// GET /api/books?page=1&author=&genre=
func (bc *BooksController) ListBooks(c *gin.Context) {
	page, ok := parsePageQuery(c)
	if !ok {
		return
	}

	books, err := bc.catalog.ListBooks(c.Request.Context(), page, catalog.Filter{
		Author: c.Query("author"),
		Genre:  c.Query("genre"),
	})
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidPage) {
			respondBadRequest(c, msgBadPage)
			return
		}
		respondInternalError(c, err, "list books")
		return
	}

	c.JSON(http.StatusOK, books)
}

// GetBook returns a book with one page of its reviews and their average rating
// GET /api/books/:bookId?page=1
func (bc *BooksController) GetBook(c *gin.Context) {
	bookID, ok := parseIDParam(c, "bookId", msgBadBookID)
	if !ok {
		return
	}
	page, ok := parsePageQuery(c)
	if !ok {
		return
	}

	detail, err := bc.catalog.GetBookDetail(c.Request.Context(), bookID, page)
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidPage) {
			respondBadRequest(c, msgBadPage)
			return
		}
		respondInternalError(c, err, "get book")
		return
	}

	c.JSON(http.StatusOK, detail)
}
