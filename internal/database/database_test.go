package database

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Akshat120/Book-Review-API/internal/config"
	"github.com/Akshat120/Book-Review-API/internal/entities"
)

func setupTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(config.Database{
		Driver:       DriverSQLite,
		Path:         filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewDatabase_MigratesSchema(t *testing.T) {
	db := setupTestDB(t)

	for _, table := range []string{"users", "books", "reviews", "audit_events"} {
		assert.True(t, db.DB.Migrator().HasTable(table), "missing table %s", table)
	}
	assert.True(t, db.DB.Migrator().HasIndex(&entities.Review{}, "idx_reviews_book_user"))
	assert.Equal(t, DriverSQLite, db.Driver)
}

func TestNewDatabase_EnforcesForeignKeys(t *testing.T) {
	db := setupTestDB(t)

	var enabled int
	require.NoError(t, db.DB.Raw("PRAGMA foreign_keys").Scan(&enabled).Error)
	assert.Equal(t, 1, enabled)
}

func TestNewDatabase_UnsupportedDriver(t *testing.T) {
	_, err := NewDatabase(config.Database{Driver: "oracle"})
	assert.Error(t, err)
}

func TestNewDatabase_PostgresRequiresDSN(t *testing.T) {
	_, err := NewDatabase(config.Database{Driver: DriverPostgres})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_DSN")
}

func TestDatabase_Ping(t *testing.T) {
	db := setupTestDB(t)
	assert.NoError(t, db.Ping(context.Background()))
}

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "./books.db?"+sqliteParams, sqliteDSN("./books.db"))
	assert.Equal(t, "file:test.db?cache=shared&"+sqliteParams, sqliteDSN("file:test.db?cache=shared"))
}

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"record not found", gorm.ErrRecordNotFound, ErrNotFound},
		{"gorm duplicated key", gorm.ErrDuplicatedKey, ErrConstraintViolation},
		{"sqlite unique", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, ErrConstraintViolation},
		{"sqlite primary key", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey}, ErrConstraintViolation},
		{"sqlite foreign key", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}, ErrForeignKeyViolation},
		{"sqlite check", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintCheck}, ErrCheckViolation},
		{"postgres unique", &pgconn.PgError{Code: "23505"}, ErrConstraintViolation},
		{"postgres foreign key", &pgconn.PgError{Code: "23503"}, ErrForeignKeyViolation},
		{"postgres check", &pgconn.PgError{Code: "23514"}, ErrCheckViolation},
		{"wrapped sqlite unique", fmt.Errorf("insert: %w", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}), ErrConstraintViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TranslateError(tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestTranslateError_Passthrough(t *testing.T) {
	assert.NoError(t, TranslateError(nil))

	other := errors.New("disk on fire")
	assert.Equal(t, other, TranslateError(other))

	busy := sqlite3.Error{Code: sqlite3.ErrBusy}
	assert.Equal(t, error(busy), TranslateError(busy))
}

func TestPaginate(t *testing.T) {
	db := setupTestDB(t)

	stmt := db.DB.Session(&gorm.Session{DryRun: true}).Model(&entities.Book{}).Scopes(Paginate(3, 10)).Find(&[]entities.Book{}).Statement
	assert.Contains(t, stmt.SQL.String(), "LIMIT 10 OFFSET 20")

	stmt = db.DB.Session(&gorm.Session{DryRun: true}).Model(&entities.Book{}).Scopes(Paginate(0, 0)).Find(&[]entities.Book{}).Statement
	assert.Contains(t, stmt.SQL.String(), "LIMIT 10")
	assert.NotContains(t, stmt.SQL.String(), "OFFSET")
}
