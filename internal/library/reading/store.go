// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reading

import (
	"context"

	"github.com/taibuivan/librio/internal/core/book"
)

// Repository persists reading records. Every read loads the record's book.
type Repository interface {

	// Create inserts a record; a second record for the same pair yields [ErrReadingExists].
	Create(context context.Context, reading *Reading) error

	FindByID(context context.Context, id string) (*Reading, error)
	FindByReaderBook(context context.Context, readerID, bookID string) (*Reading, error)

	/*
		ListByReader returns a reader's records whose books satisfy plan,
		ordered by book title.

		Parameters:
		  - readerID: string (owner)
		  - plan: book.Plan (visibility and title filter)
		  - status: Status (empty keeps every status)
	*/
	ListByReader(context context.Context, readerID string, plan book.Plan, status Status) ([]*Reading, error)

	// Update writes only the named fields of reading.
	Update(context context.Context, reading *Reading, fields ...string) error

	Delete(context context.Context, id string) error
}
