// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"

	"github.com/taibuivan/librio/pkg/pagination"
)

// Repository persists books and their author and tag associations.
type Repository interface {

	/*
		List returns the page of books matching plan, ordered by title.

		Returns:
		  - []*Book: Books with authors and tags loaded
		  - int: Total number of matching books
		  - error: Storage errors
	*/
	List(context context.Context, plan Plan, page pagination.Params) ([]*Book, int, error)

	// FindByID returns a book with its authors and tags.
	FindByID(context context.Context, id string) (*Book, error)

	// AverageRating returns the mean of the non-null reading ratings, or nil.
	AverageRating(context context.Context, id string) (*float64, error)

	/*
		Create inserts the book and its associations atomically.

		Returns:
		  - error: Unprocessable when an author or tag does not exist
	*/
	Create(context context.Context, book *Book, authorIDs, tagIDs []int) error

	// Update writes scalar fields and, when non-nil, replaces associations.
	Update(context context.Context, book *Book, authorIDs, tagIDs []int) error

	// SetCoverKey stores a new cover key and returns the previous one.
	SetCoverKey(context context.Context, id, key string) (string, error)

	// Delete removes a book; readings and wishlist entries cascade.
	Delete(context context.Context, id string) error
}
