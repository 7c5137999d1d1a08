package config

const (
	// DefaultDatabasePath is the default path for the SQLite database.
	DefaultDatabasePath = "./books.db"

	// DefaultCookieName is the cookie that carries the session token.
	DefaultCookieName = "jwt"

	// DefaultPageSize is the number of books or reviews per page.
	DefaultPageSize = 10
)
