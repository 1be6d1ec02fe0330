// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"
)

// UserRepository persists account credentials.
type UserRepository interface {
	// Create inserts a user. A taken username yields [ErrUsernameTaken].
	Create(context context.Context, user *User) error

	FindByUsername(context context.Context, username string) (*User, error)
	FindByID(context context.Context, id string) (*User, error)

	UpdatePassword(context context.Context, userID, hash string) error

	// TouchLogin records a successful login.
	TouchLogin(context context.Context, userID string, at time.Time) error
}

// SessionRepository persists refresh sessions.
type SessionRepository interface {
	Create(context context.Context, session *Session) error

	// FindActive returns an unrevoked, unexpired session by token hash.
	FindActive(context context.Context, tokenHash string) (*Session, error)

	// Revoke reports whether the session was still active. Two concurrent
	// refreshes of one token see true exactly once.
	Revoke(context context.Context, sessionID string) (bool, error)

	RevokeOthers(context context.Context, userID, keepSessionID string) error
	RevokeAll(context context.Context, userID string) error

	// DeleteExpired removes sessions past expiry and returns how many went.
	DeleteExpired(context context.Context) (int64, error)
}
