// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package wishlist

import (
	"context"
	"log/slog"

	"github.com/taibuivan/librio/internal/core/book"
	"github.com/taibuivan/librio/pkg/pagination"
	"github.com/taibuivan/librio/pkg/uuid"
)

// Catalog is the part of the book service the wishlist relies on.
type Catalog interface {
	Gate(context context.Context, viewer book.Viewer, id string) (*book.Book, error)
	ListBooks(context context.Context, viewer book.Viewer, query book.Query, page pagination.Params) ([]*book.Book, int, error)
}

type Service struct {
	repo    Repository
	catalog Catalog
	logger  *slog.Logger
}

func NewService(repo Repository, catalog Catalog, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		catalog: catalog,
		logger:  logger,
	}
}

/*
Add saves a book to the viewer's wishlist.

Adding a book twice is not an error; the membership message tells the
two cases apart.

Returns:
  - *Membership: Always InWishlist on success
  - error: Gate errors (404 unknown book, 403 adult book for an ineligible viewer)
*/
func (service *Service) Add(context context.Context, viewer book.Viewer, bookID string) (*Membership, error) {
	b, err := service.catalog.Gate(context, viewer, bookID)
	if err != nil {
		return nil, err
	}

	added, err := service.repo.Add(context, viewer.UserID, b.ID)
	if err != nil {
		return nil, err
	}

	if !added {
		return &Membership{BookID: b.ID, InWishlist: true, Message: MessageAlreadyPresent}, nil
	}

	service.logger.Info("wishlist_added", slog.String("user_id", viewer.UserID), slog.String("book_id", b.ID))
	return &Membership{BookID: b.ID, InWishlist: true, Message: MessageAdded}, nil
}

// Remove drops a book from the viewer's wishlist. Removing an absent book succeeds.
func (service *Service) Remove(context context.Context, viewer book.Viewer, bookID string) (*Membership, error) {
	if !uuid.Valid(bookID) {
		return nil, book.ErrBookNotFound
	}

	removed, err := service.repo.Remove(context, viewer.UserID, bookID)
	if err != nil {
		return nil, err
	}

	if !removed {
		return &Membership{BookID: bookID, Message: MessageNotPresent}, nil
	}

	service.logger.Info("wishlist_removed", slog.String("user_id", viewer.UserID), slog.String("book_id", bookID))
	return &Membership{BookID: bookID, Message: MessageRemoved}, nil
}

// Contains reports whether the book is in the viewer's wishlist.
func (service *Service) Contains(context context.Context, viewer book.Viewer, bookID string) (*Membership, error) {
	if !uuid.Valid(bookID) {
		return nil, book.ErrBookNotFound
	}

	found, err := service.repo.Contains(context, viewer.UserID, bookID)
	if err != nil {
		return nil, err
	}
	return &Membership{BookID: bookID, InWishlist: found}, nil
}

// List returns the wishlist as a catalogue page. Adult books stay hidden
// from viewers who may not see them, even when they were saved earlier.
func (service *Service) List(context context.Context, viewer book.Viewer, text string, page pagination.Params) ([]*book.Book, int, error) {
	return service.catalog.ListBooks(context, viewer, book.Query{Text: text, WishlistOf: viewer.UserID}, page)
}
