package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Akshat120/Book-Review-API/internal/auth"
	"github.com/Akshat120/Book-Review-API/internal/catalog"
	"github.com/Akshat120/Book-Review-API/internal/entities"
	"github.com/Akshat120/Book-Review-API/internal/reviews"
)

type mockAuthService struct {
	signupErr error
	loginErr  error
	user      *entities.User
	token     auth.Token

	signups []auth.SignupInput
}

func (m *mockAuthService) Signup(_ context.Context, in auth.SignupInput) (*entities.User, error) {
	m.signups = append(m.signups, in)
	if m.signupErr != nil {
		return nil, m.signupErr
	}
	return &entities.User{ID: 1, Name: in.Name, Username: in.Username}, nil
}

func (m *mockAuthService) Login(_ context.Context, _ auth.LoginInput) (*auth.LoginResult, error) {
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return &auth.LoginResult{User: m.user, Token: m.token}, nil
}

type mockCatalog struct {
	createErr error
	listErr   error
	detail    *catalog.BookDetail
	detailErr error
	books     []entities.Book

	lastPage   int
	lastFilter catalog.Filter
	created    []catalog.CreateBookInput
}

func (m *mockCatalog) CreateBook(_ context.Context, in catalog.CreateBookInput) (*entities.Book, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = append(m.created, in)
	return &entities.Book{ID: 10, Title: in.Title, Author: in.Author, Genre: in.Genre, CreatedBy: in.CreatorID}, nil
}

func (m *mockCatalog) ListBooks(_ context.Context, page int, filter catalog.Filter) ([]entities.Book, error) {
	m.lastPage, m.lastFilter = page, filter
	if m.listErr != nil {
		return nil, m.listErr
	}
	if m.books == nil {
		return []entities.Book{}, nil
	}
	return m.books, nil
}

func (m *mockCatalog) GetBookDetail(_ context.Context, _ uint, page int) (*catalog.BookDetail, error) {
	m.lastPage = page
	return m.detail, m.detailErr
}

type mockReviewService struct {
	err error

	created  []reviews.CreateInput
	patches  []reviews.Patch
	callerID uint
}

func (m *mockReviewService) Create(_ context.Context, in reviews.CreateInput) (*entities.Review, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.created = append(m.created, in)
	return &entities.Review{ID: 5, BookID: in.BookID, UserID: in.UserID, Rating: in.Rating, Description: in.Description}, nil
}

func (m *mockReviewService) Update(_ context.Context, callerID, _ uint, patch reviews.Patch) error {
	m.callerID = callerID
	m.patches = append(m.patches, patch)
	return m.err
}

func (m *mockReviewService) Delete(_ context.Context, callerID, _ uint) error {
	m.callerID = callerID
	return m.err
}

// withUser stands in for the auth middleware.
func withUser(id uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(auth.ContextKeyUserID, id)
		c.Next()
	}
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
