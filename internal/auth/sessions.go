package auth

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// Session data keys
const (
	SessionKeyUserID   = "user_id"
	SessionKeyUsername = "username"
	SessionKeyLoginAt  = "login_at"
)

// sessionCleanupInterval controls how often expired rows are purged from
// the sessions table.
const sessionCleanupInterval = 5 * time.Minute

// StoreIssuer issues opaque session tokens persisted in the sessions table.
// Unlike JWTs they can be revoked server-side.
type StoreIssuer struct {
	manager *scs.SessionManager
	store   *sqlite3store.SQLite3Store
}

// NewStoreIssuer creates a store-backed issuer. The sqlDB parameter should be
// the underlying *sql.DB from GORM and must be a SQLite database.
func NewStoreIssuer(sqlDB *sql.DB, lifetime time.Duration) (*StoreIssuer, error) {
	_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		return nil, fmt.Errorf("create sessions table: %w", err)
	}

	if lifetime <= 0 {
		lifetime = time.Hour
	}

	store := sqlite3store.NewWithCleanupInterval(sqlDB, sessionCleanupInterval)

	sm := scs.New()
	sm.Store = store
	sm.Lifetime = lifetime

	return &StoreIssuer{manager: sm, store: store}, nil
}

func (i *StoreIssuer) Issue(ctx context.Context, identity Identity) (Token, error) {
	ctx, err := i.manager.Load(ctx, "")
	if err != nil {
		return Token{}, fmt.Errorf("load session: %w", err)
	}

	// Store user ID as int to match GetInt() retrieval
	i.manager.Put(ctx, SessionKeyUserID, int(identity.UserID))
	i.manager.Put(ctx, SessionKeyUsername, identity.Username)
	i.manager.Put(ctx, SessionKeyLoginAt, time.Now().Unix())

	token, expiry, err := i.manager.Commit(ctx)
	if err != nil {
		return Token{}, fmt.Errorf("commit session: %w", err)
	}
	return Token{Value: token, ExpiresAt: expiry}, nil
}

func (i *StoreIssuer) Verify(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrTokenInvalid
	}

	// Unknown and expired tokens both load as a fresh, empty session.
	ctx, err := i.manager.Load(ctx, token)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	userID := i.manager.GetInt(ctx, SessionKeyUserID)
	if userID <= 0 {
		return Identity{}, ErrTokenInvalid
	}

	return Identity{
		UserID:   uint(userID),
		Username: i.manager.GetString(ctx, SessionKeyUsername),
	}, nil
}

// Revoke deletes the session behind token.
func (i *StoreIssuer) Revoke(_ context.Context, token string) error {
	return i.store.Delete(token)
}

// Close stops the background cleanup of expired sessions.
func (i *StoreIssuer) Close() {
	i.store.StopCleanup()
}
