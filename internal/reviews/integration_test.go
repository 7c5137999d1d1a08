package reviews

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akshat120/Book-Review-API/internal/config"
	"github.com/Akshat120/Book-Review-API/internal/database"
	"github.com/Akshat120/Book-Review-API/internal/database/books"
	reviewsdb "github.com/Akshat120/Book-Review-API/internal/database/reviews"
	"github.com/Akshat120/Book-Review-API/internal/database/users"
)

type sqliteFixture struct {
	svc    *Service
	repo   *reviewsdb.Repository
	owner  uint
	other  uint
	bookID uint
}

func setupSQLite(t *testing.T) sqliteFixture {
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
	owner, err := userRepo.CreateUser(ctx, "Owner", "owner", "hash")
	require.NoError(t, err)
	other, err := userRepo.CreateUser(ctx, "Other", "other", "hash")
	require.NoError(t, err)
	book, err := books.NewRepository(db.DB).CreateBook(ctx, "Dune", "Frank Herbert", nil, owner.ID)
	require.NoError(t, err)

	repo := reviewsdb.NewRepository(db.DB)
	return sqliteFixture{svc: NewService(repo), repo: repo, owner: owner.ID, other: other.ID, bookID: book.ID}
}

func TestService_ConcurrentCreate_ExactlyOneWins(t *testing.T) {
	f := setupSQLite(t)
	const attempts = 10

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(rating int) {
			defer wg.Done()
			<-start
			_, err := f.svc.Create(context.Background(), CreateInput{
				UserID: f.owner,
				BookID: f.bookID,
				Rating: rating,
			})
			results <- err
		}(i%5 + 1)
	}
	close(start)
	wg.Wait()
	close(results)

	var successes int
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		assert.ErrorIs(t, err, ErrDuplicateReview)
	}
	assert.Equal(t, 1, successes)

	page, err := f.repo.FilterReviewsByBook(context.Background(), f.bookID, 1, database.DefaultPageSize)
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestService_OwnershipAgainstSQLite(t *testing.T) {
	f := setupSQLite(t)
	ctx := context.Background()

	review, err := f.svc.Create(ctx, CreateInput{UserID: f.owner, BookID: f.bookID, Rating: 4})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Update(ctx, f.other, review.ID, Patch{Rating: intPtr(1)}), ErrUnauthorized)
	assert.ErrorIs(t, f.svc.Delete(ctx, f.other, review.ID), ErrUnauthorized)

	stored, err := f.repo.FindReview(ctx, f.owner, f.bookID)
	require.NoError(t, err)
	assert.Equal(t, 4, stored.Rating)

	assert.ErrorIs(t, f.svc.Update(ctx, f.owner, 9999, Patch{Rating: intPtr(2)}), ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, f.owner, 9999), ErrNotFound)

	require.NoError(t, f.svc.Delete(ctx, f.owner, review.ID))
}

func TestService_CreateForMissingBook(t *testing.T) {
	f := setupSQLite(t)

	_, err := f.svc.Create(context.Background(), CreateInput{UserID: f.owner, BookID: 4242, Rating: 3})

	assert.ErrorIs(t, err, ErrBookNotFound)
}
