// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package wishlist

import "context"

// Repository persists wishlist memberships.
type Repository interface {
	// Add reports whether a new membership was stored.
	Add(context context.Context, userID, bookID string) (bool, error)
	// Remove reports whether a membership was deleted.
	Remove(context context.Context, userID, bookID string) (bool, error)
	Contains(context context.Context, userID, bookID string) (bool, error)
}
