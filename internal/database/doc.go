// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, driver selection, migrations
//	├── errors.go        # Driver error classification
//	├── paginate.go      # Page window scope shared by list queries
//	├── users/           # Account creation and lookup
//	├── books/           # Book creation and filtered listing
//	├── reviews/         # Review CRUD and ownership lookups
//	└── audit/           # Audit trail persistence
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.NewDatabase(cfg.Database)
//
//	booksRepo := books.NewRepository(db.DB)
//	reviewsRepo := reviews.NewRepository(db.DB)
//
//	page, err := booksRepo.FilterBooks(ctx, 1, books.Filter{Author: "Tolkien"}, database.DefaultPageSize)
//
// # Errors
//
// Repositories pass raw driver errors through TranslateError, so callers can
// test for ErrNotFound, ErrConstraintViolation and ErrForeignKeyViolation with
// errors.Is regardless of whether SQLite or PostgreSQL is in use.
//
// # Concurrency
//
// Every operation is a single statement. Uniqueness of usernames and of
// (book_id, user_id) review pairs is enforced by indexes, never by
// application-level locking.
package database
