package reviews

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akshat120/Book-Review-API/internal/config"
	"github.com/Akshat120/Book-Review-API/internal/database"
	"github.com/Akshat120/Book-Review-API/internal/database/books"
	"github.com/Akshat120/Book-Review-API/internal/database/users"
)

type fixture struct {
	repo   *Repository
	alice  uint
	bob    uint
	bookID uint
}

func setupTestDB(t *testing.T) fixture {
	t.Helper()
	db, err := database.NewDatabase(config.Database{
		Driver:       database.DriverSQLite,
		Path:         filepath.Join(t.TempDir(), "reviews.db"),
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	userRepo := users.NewRepository(db.DB)
	alice, err := userRepo.CreateUser(ctx, "Alice", "alice", "hash")
	require.NoError(t, err)
	bob, err := userRepo.CreateUser(ctx, "Bob", "bob", "hash")
	require.NoError(t, err)

	book, err := books.NewRepository(db.DB).CreateBook(ctx, "Dune", "Frank Herbert", nil, alice.ID)
	require.NoError(t, err)

	return fixture{repo: NewRepository(db.DB), alice: alice.ID, bob: bob.ID, bookID: book.ID}
}

func intPtr(i int) *int { return &i }
func strPtr(s string) *string { return &s }

func TestRepository_CreateReview(t *testing.T) {
	f := setupTestDB(t)

	review, err := f.repo.CreateReview(context.Background(), f.alice, f.bookID, 5, strPtr("Loved it"))

	require.NoError(t, err)
	assert.NotZero(t, review.ID)
	assert.Equal(t, f.alice, review.UserID)
	assert.Equal(t, f.bookID, review.BookID)
	assert.Equal(t, 5, review.Rating)
	assert.Equal(t, "Loved it", *review.Description)
}

func TestRepository_CreateReview_Duplicate(t *testing.T) {
	f := setupTestDB(t)
	ctx := context.Background()

	_, err := f.repo.CreateReview(ctx, f.alice, f.bookID, 4, nil)
	require.NoError(t, err)

	_, err = f.repo.CreateReview(ctx, f.alice, f.bookID, 2, nil)

	assert.ErrorIs(t, err, database.ErrConstraintViolation)
}

func TestRepository_CreateReview_DifferentUsersSameBook(t *testing.T) {
	f := setupTestDB(t)
	ctx := context.Background()

	_, err := f.repo.CreateReview(ctx, f.alice, f.bookID, 4, nil)
	require.NoError(t, err)
	_, err = f.repo.CreateReview(ctx, f.bob, f.bookID, 2, nil)
	require.NoError(t, err)
}

func TestRepository_CreateReview_UnknownBook(t *testing.T) {
	f := setupTestDB(t)

	_, err := f.repo.CreateReview(context.Background(), f.alice, 9999, 3, nil)

	assert.ErrorIs(t, err, database.ErrForeignKeyViolation)
}

func TestRepository_CreateReview_RatingOutOfRange(t *testing.T) {
	f := setupTestDB(t)

	_, err := f.repo.CreateReview(context.Background(), f.alice, f.bookID, 6, nil)

	assert.ErrorIs(t, err, database.ErrCheckViolation)
}

func TestRepository_FindReview(t *testing.T) {
	f := setupTestDB(t)
	ctx := context.Background()

	created, err := f.repo.CreateReview(ctx, f.alice, f.bookID, 3, nil)
	require.NoError(t, err)

	found, err := f.repo.FindReview(ctx, f.alice, f.bookID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = f.repo.FindReview(ctx, f.bob, f.bookID)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRepository_FilterReviewsByBook(t *testing.T) {
	f := setupTestDB(t)
	ctx := context.Background()

	_, err := f.repo.CreateReview(ctx, f.alice, f.bookID, 5, nil)
	require.NoError(t, err)
	_, err = f.repo.CreateReview(ctx, f.bob, f.bookID, 3, nil)
	require.NoError(t, err)

	reviews, err := f.repo.FilterReviewsByBook(ctx, f.bookID, 1, database.DefaultPageSize)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, f.alice, reviews[0].UserID)
	assert.Equal(t, f.bob, reviews[1].UserID)

	empty, err := f.repo.FilterReviewsByBook(ctx, f.bookID, 2, database.DefaultPageSize)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRepository_GetReviewOwner(t *testing.T) {
	f := setupTestDB(t)
	ctx := context.Background()

	review, err := f.repo.CreateReview(ctx, f.bob, f.bookID, 3, nil)
	require.NoError(t, err)

	owner, err := f.repo.GetReviewOwner(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, f.bob, owner)

	_, err = f.repo.GetReviewOwner(ctx, 9999)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRepository_UpdateReview(t *testing.T) {
	f := setupTestDB(t)
	ctx := context.Background()

	review, err := f.repo.CreateReview(ctx, f.alice, f.bookID, 3, strPtr("Okay"))
	require.NoError(t, err)

	t.Run("rating only keeps description", func(t *testing.T) {
		rows, err := f.repo.UpdateReview(ctx, review.ID, Patch{Rating: intPtr(5)})
		require.NoError(t, err)
		assert.Equal(t, int64(1), rows)

		found, err := f.repo.FindReview(ctx, f.alice, f.bookID)
		require.NoError(t, err)
		assert.Equal(t, 5, found.Rating)
		assert.Equal(t, "Okay", *found.Description)
	})

	t.Run("empty description overwrites", func(t *testing.T) {
		rows, err := f.repo.UpdateReview(ctx, review.ID, Patch{Description: strPtr("")})
		require.NoError(t, err)
		assert.Equal(t, int64(1), rows)

		found, err := f.repo.FindReview(ctx, f.alice, f.bookID)
		require.NoError(t, err)
		assert.Equal(t, 5, found.Rating)
		require.NotNil(t, found.Description)
		assert.Equal(t, "", *found.Description)
	})

	t.Run("missing review affects nothing", func(t *testing.T) {
		rows, err := f.repo.UpdateReview(ctx, 9999, Patch{Rating: intPtr(2)})
		require.NoError(t, err)
		assert.Zero(t, rows)
	})

	t.Run("empty patch is a no-op", func(t *testing.T) {
		rows, err := f.repo.UpdateReview(ctx, review.ID, Patch{})
		require.NoError(t, err)
		assert.Zero(t, rows)
	})
}

func TestRepository_DeleteReview(t *testing.T) {
	f := setupTestDB(t)
	ctx := context.Background()

	review, err := f.repo.CreateReview(ctx, f.alice, f.bookID, 3, nil)
	require.NoError(t, err)

	rows, err := f.repo.DeleteReview(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	rows, err = f.repo.DeleteReview(ctx, review.ID)
	require.NoError(t, err)
	assert.Zero(t, rows)

	// The pair is free again once the review is gone.
	_, err = f.repo.CreateReview(ctx, f.alice, f.bookID, 4, nil)
	assert.NoError(t, err)
}

func TestPatch_IsEmpty(t *testing.T) {
	assert.True(t, Patch{}.IsEmpty())
	assert.False(t, Patch{Rating: intPtr(1)}.IsEmpty())
	assert.False(t, Patch{Description: strPtr("")}.IsEmpty())
}
