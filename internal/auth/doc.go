// Package auth provides signup, login and request authentication.
//
// Sessions are represented by tokens minted through the TokenIssuer
// capability. Two implementations exist:
//   - JWTIssuer: HS256-signed, self-contained tokens (default)
//   - StoreIssuer: opaque tokens persisted with scs in the SQLite sessions table
//
// # Configuration
//
//	AUTH_SESSION_BACKEND=jwt   # jwt or store
//	JWT_SECRET=<random>        # Auto-generated if empty (tokens won't survive restarts)
//	AUTH_TOKEN_TTL=1h          # Token and cookie lifetime (alias JWT_EXPIRES_IN)
//	AUTH_COOKIE_NAME=jwt       # Cookie carrying the token
//	AUTH_BCRYPT_COST=10        # bcrypt cost factor (alias BCRYPT_ROUNDS)
//	AUTH_SECURE_COOKIES=true   # HTTPS-only cookies
//
// # Usage
//
//	issuer, _ := auth.NewJWTIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
//	authService := auth.NewService(users.NewRepository(db.DB), issuer, cfg.Auth)
//	authMiddleware := auth.NewMiddleware(issuer, cfg.Auth.CookieName)
//	api.POST("/books", authMiddleware.RequireAuth(), booksController.Create)
//
// Extract the caller in handlers:
//
//	userID := auth.GetUserID(c)
package auth
