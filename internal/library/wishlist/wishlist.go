// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package wishlist keeps the books a reader wants to read some day.
//
// Membership is a plain (user, book) pair. Adding and removing are
// idempotent, and the listing goes through the catalogue engine so the
// adult visibility rules apply unchanged.
package wishlist

// Membership describes the state of one book in a reader's wishlist.
type Membership struct {
	BookID     string `json:"book_id"`
	InWishlist bool   `json:"in_wishlist"`
	Message    string `json:"message,omitempty"`
}

const (
	MessageAdded          = "Book added to your wishlist"
	MessageAlreadyPresent = "Book is already in your wishlist"
	MessageRemoved        = "Book removed from your wishlist"
	MessageNotPresent     = "Book was not in your wishlist"
)
