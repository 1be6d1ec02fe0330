// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"time"
)

// Repository persists profiles and exposes their sessions.
type Repository interface {
	FindByID(context context.Context, id string) (*Profile, error)

	// PasswordHash returns the stored hash, used to confirm destructive actions.
	PasswordHash(context context.Context, id string) (string, error)

	// Update writes username, birth date and hide-adult flag.
	Update(context context.Context, profile *Profile) error

	// Delete removes the account; sessions, readings and memberships cascade.
	Delete(context context.Context, id string) error

	ListSessions(context context.Context, userID string) ([]SessionInfo, error)

	// RevokeSession reports whether an active session of userID was revoked.
	RevokeSession(context context.Context, userID, sessionID string) (bool, error)
}

// ViewerCache keeps viewer profiles for a bounded time.
type ViewerCache interface {
	Get(context context.Context, userID string) (*ViewerProfile, bool, error)
	Set(context context.Context, userID string, profile *ViewerProfile, ttl time.Duration) error
	Delete(context context.Context, userID string) error
}
