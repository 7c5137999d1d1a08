package database

import "gorm.io/gorm"

// DefaultPageSize is the number of rows returned per page by list queries.
const DefaultPageSize = 10

// Paginate is a gorm scope selecting the 1-based page of pageSize rows.
// Pages below 1 are clamped to the first page; callers are expected to
// reject them before reaching storage.
func Paginate(page, pageSize int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page < 1 {
			page = 1
		}
		if pageSize <= 0 {
			pageSize = DefaultPageSize
		}
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}
