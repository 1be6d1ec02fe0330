// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taibuivan/librio/internal/platform/constants"
	"github.com/taibuivan/librio/internal/platform/metrics"
	"github.com/taibuivan/librio/internal/platform/storage"
	"github.com/taibuivan/librio/internal/platform/validate"
	"github.com/taibuivan/librio/pkg/pagination"
	"github.com/taibuivan/librio/pkg/pointer"
	"github.com/taibuivan/librio/pkg/slice"
	"github.com/taibuivan/librio/pkg/uuid"
)

// coverExtensions maps accepted sniffed content types to file extensions.
var coverExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Service implements the catalogue use cases.
type Service struct {
	repo   Repository
	covers storage.ObjectStore
	logger *slog.Logger
}

// NewService constructs a new [Service].
func NewService(repo Repository, covers storage.ObjectStore, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		covers: covers,
		logger: logger,
	}
}

// # Reads

/*
ListBooks returns the page of books the viewer may see that match query.

The repository evaluates the plan in SQL; every returned row is re-checked
against the same plan before it leaves the service.

Parameters:
  - context: context.Context
  - viewer: Viewer (resolved from the request)
  - query: Query (text, tags, author, wishlist owner)
  - page: pagination.Params

Returns:
  - []*Book: Matching books, authors and tags loaded
  - int: Total count for pagination
  - error: Storage failures
*/
func (service *Service) ListBooks(context context.Context, viewer Viewer, query Query, page pagination.Params) ([]*Book, int, error) {
	plan := NewPlan(viewer, query)

	books, total, err := service.repo.List(context, plan, page)
	if err != nil {
		return nil, 0, err
	}
	metrics.RecordCatalogQuery(viewer.CanSeeAdult())

	visible := slice.Filter(books, plan.Match)
	if visible == nil {
		visible = []*Book{}
	}
	if dropped := len(books) - len(visible); dropped > 0 {
		service.logger.Warn("catalog_plan_mismatch",
			slog.Int("dropped", dropped),
			slog.Bool("hides_adult", plan.HidesAdult()),
		)
		total -= dropped
	}

	for _, book := range visible {
		service.attachCoverURL(context, book)
	}
	return visible, total, nil
}

/*
Gate loads a book and applies the single-book visibility rule.

Returns:
  - *Book: The book, when the viewer may see it
  - error: ErrBookNotFound, or ErrAdultContent (403)
*/
func (service *Service) Gate(context context.Context, viewer Viewer, id string) (*Book, error) {
	if !uuid.Valid(id) {
		return nil, ErrBookNotFound
	}

	book, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if !CanView(viewer, book) {
		metrics.AdultGateDeniedTotal.Inc()
		service.logger.Info("adult_gate_denied",
			slog.String("book_id", id),
			slog.Bool("authenticated", viewer.Authenticated),
		)
		return nil, ErrAdultContent
	}
	return book, nil
}

// GetBook returns a gated book with its average rating and cover URL.
func (service *Service) GetBook(context context.Context, viewer Viewer, id string) (*Book, error) {
	book, err := service.Gate(context, viewer, id)
	if err != nil {
		return nil, err
	}

	average, err := service.repo.AverageRating(context, id)
	if err != nil {
		return nil, err
	}
	book.AverageRating = average

	service.attachCoverURL(context, book)
	return book, nil
}

// # Writes

/*
CreateBook validates and stores a new book.

Returns:
  - *Book: The stored book with its associations
  - error: Validation errors, or Unprocessable for unknown authors or tags
*/
func (service *Service) CreateBook(context context.Context, input CreateInput) (*Book, error) {
	book := &Book{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(input.Title),
		Synopsis:    strings.TrimSpace(input.Synopsis),
		PageCount:   input.PageCount,
		Edition:     strings.TrimSpace(input.Edition),
		ISBN:        NormalizeISBN(input.ISBN),
		ReleaseDate: input.ReleaseDate,
	}
	authorIDs := slice.Unique(input.AuthorIDs)
	tagIDs := slice.Unique(input.TagIDs)

	if err := validateBook(book, authorIDs, tagIDs, true); err != nil {
		return nil, err
	}

	if err := service.repo.Create(context, book, authorIDs, tagIDs); err != nil {
		return nil, err
	}

	service.logger.Info("book_created", slog.String("book_id", book.ID), slog.String("title", book.Title))
	return service.repo.FindByID(context, book.ID)
}

/*
UpdateBook applies a partial update to a book the viewer may see.

Returns:
  - *Book: The updated book
  - error: ErrAdultContent, ErrBookNotFound or validation errors
*/
func (service *Service) UpdateBook(context context.Context, viewer Viewer, id string, input UpdateInput) (*Book, error) {
	book, err := service.Gate(context, viewer, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		book.Title = strings.TrimSpace(*input.Title)
	}
	if input.Synopsis != nil {
		book.Synopsis = strings.TrimSpace(*input.Synopsis)
	}
	book.PageCount = pointer.Or(input.PageCount, book.PageCount)
	if input.Edition != nil {
		book.Edition = strings.TrimSpace(*input.Edition)
	}
	if input.ISBN != nil {
		book.ISBN = NormalizeISBN(*input.ISBN)
	}
	if input.ReleaseDate != nil {
		book.ReleaseDate = input.ReleaseDate
	}
	if input.ClearReleaseDate {
		book.ReleaseDate = nil
	}

	var authorIDs, tagIDs []int
	if input.AuthorIDs != nil {
		authorIDs = slice.Unique(input.AuthorIDs)
	}
	if input.TagIDs != nil {
		tagIDs = slice.Unique(input.TagIDs)
	}

	if err := validateBook(book, authorIDs, tagIDs, false); err != nil {
		return nil, err
	}

	if err := service.repo.Update(context, book, authorIDs, tagIDs); err != nil {
		return nil, err
	}

	service.logger.Info("book_updated", slog.String("book_id", id))
	return service.repo.FindByID(context, id)
}

// DeleteBook removes a book and, best effort, its cover object.
func (service *Service) DeleteBook(context context.Context, id string) error {
	if !uuid.Valid(id) {
		return ErrBookNotFound
	}

	book, err := service.repo.FindByID(context, id)
	if err != nil {
		return err
	}

	if err := service.repo.Delete(context, id); err != nil {
		return err
	}
	service.removeCover(context, book.CoverKey)

	service.logger.Warn("book_deleted", slog.String("book_id", id))
	return nil
}

/*
UploadCover stores a new cover image for a book the viewer may see.

The content type is sniffed from the bytes, not trusted from the client.
The previous cover object is removed once the new key is recorded.

Parameters:
  - context: context.Context
  - viewer: Viewer
  - id: string (book UUID)
  - file: io.Reader (image bytes)

Returns:
  - *Book: The book with a fresh cover URL
  - error: Validation errors for size or format, gate errors
*/
func (service *Service) UploadCover(context context.Context, viewer Viewer, id string, file io.Reader) (*Book, error) {
	book, err := service.Gate(context, viewer, id)
	if err != nil {
		return nil, err
	}

	content, err := io.ReadAll(io.LimitReader(file, constants.MaxCoverSize+1))
	if err != nil {
		return nil, validate.FieldError(FieldCover, "Could not read the uploaded file")
	}
	if len(content) == 0 {
		return nil, validate.FieldError(FieldCover, "This field is required")
	}
	if len(content) > constants.MaxCoverSize {
		return nil, validate.FieldError(FieldCover, fmt.Sprintf("Maximum size is %d MiB", constants.MaxCoverSize>>20))
	}

	contentType := http.DetectContentType(content)
	extension, ok := coverExtensions[contentType]
	if !ok {
		return nil, validate.FieldError(FieldCover, "Must be a JPEG, PNG or WebP image")
	}

	key := fmt.Sprintf("covers/%s/%s%s", book.ID, uuid.New(), extension)
	if err := service.covers.Put(context, key, bytes.NewReader(content), int64(len(content)), contentType); err != nil {
		return nil, err
	}

	previous, err := service.repo.SetCoverKey(context, book.ID, key)
	if err != nil {
		service.removeCover(context, key)
		return nil, err
	}
	service.removeCover(context, previous)

	book.CoverKey = key
	service.attachCoverURL(context, book)

	service.logger.Info("book_cover_uploaded",
		slog.String("book_id", book.ID),
		slog.String("content_type", contentType),
		slog.Int("size", len(content)),
	)
	return book, nil
}

// # Helpers

// validateBook checks a complete book. Association lists are checked when
// present; creating makes them mandatory.
func validateBook(book *Book, authorIDs, tagIDs []int, creating bool) error {
	validator := &validate.Validator{}

	validator.Required(FieldTitle, book.Title).MaxLen(FieldTitle, book.Title, maxTitleLength)
	validator.Min(FieldPageCount, book.PageCount, 1)
	validator.MaxLen(FieldEdition, book.Edition, maxEditionLength)
	validator.ISBN(FieldISBN, book.ISBN).MaxLen(FieldISBN, book.ISBN, maxISBNLength)

	if authorIDs != nil || creating {
		validator.NotEmpty(FieldAuthorIDs, len(authorIDs))
	}
	if tagIDs != nil || creating {
		validator.NotEmpty(FieldTagIDs, len(tagIDs))
	}

	return validator.Err()
}

func (service *Service) attachCoverURL(context context.Context, book *Book) {
	if book.CoverKey == "" {
		return
	}

	url, err := service.covers.PresignGet(context, book.CoverKey, constants.CoverURLTTL)
	if err != nil {
		service.logger.Warn("cover_presign_failed", slog.String("book_id", book.ID), slog.Any("error", err))
		return
	}
	book.CoverURL = url
}

func (service *Service) removeCover(context context.Context, key string) {
	if key == "" {
		return
	}

	if err := service.covers.Delete(context, key); err != nil {
		service.logger.Warn("cover_delete_failed", slog.String("key", key), slog.Any("error", err))
	}
}
