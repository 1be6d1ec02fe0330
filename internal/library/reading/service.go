// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reading

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/librio/internal/core/book"
	"github.com/taibuivan/librio/internal/platform/apperr"
	"github.com/taibuivan/librio/internal/platform/metrics"
	"github.com/taibuivan/librio/internal/platform/validate"
	"github.com/taibuivan/librio/pkg/uuid"
)

// BookGate loads a book only when the viewer may see it.
type BookGate interface {
	Gate(context context.Context, viewer book.Viewer, id string) (*book.Book, error)
}

type Service struct {
	repo   Repository
	books  BookGate
	logger *slog.Logger
}

func NewService(repo Repository, books BookGate, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		books:  books,
		logger: logger,
	}
}

// # Lifecycle

/*
Add puts a book on the viewer's "to-read" shelf.

Parameters:
  - context: context.Context
  - viewer: book.Viewer (authenticated)
  - bookID: string (UUID)

Returns:
  - *Reading: The new record
  - error: Gate errors, or ErrReadingExists (409) when the pair already has a record
*/
func (service *Service) Add(context context.Context, viewer book.Viewer, bookID string) (*Reading, error) {
	b, err := service.books.Gate(context, viewer, bookID)
	if err != nil {
		return nil, err
	}

	r := &Reading{
		ID:       uuid.New(),
		ReaderID: viewer.UserID,
		BookID:   b.ID,
		Status:   StatusToRead,
	}

	if err := service.repo.Create(context, r); err != nil {
		if errors.Is(err, ErrReadingExists) {
			metrics.RecordReadingEvent("conflict")
			service.logger.Info("reading_conflict", slog.String("reader_id", viewer.UserID), slog.String("book_id", b.ID))
		}
		return nil, err
	}

	metrics.RecordReadingEvent("created")
	service.logger.Info("reading_created", slog.String("reading_id", r.ID), slog.String("book_id", b.ID))

	r.Book = b
	r.fillRemainingPages()
	return r, nil
}

// Get returns one of the viewer's records.
func (service *Service) Get(context context.Context, viewer book.Viewer, id string) (*Reading, error) {
	return service.owned(context, viewer, id)
}

// GetForBook returns the viewer's record for a book, or ErrReadingNotFound.
func (service *Service) GetForBook(context context.Context, viewer book.Viewer, bookID string) (*Reading, error) {
	if !uuid.Valid(bookID) {
		return nil, ErrReadingNotFound
	}

	r, err := service.repo.FindByReaderBook(context, viewer.UserID, bookID)
	if err != nil {
		return nil, err
	}
	if !book.CanView(viewer, r.Book) {
		return nil, book.ErrAdultContent
	}

	r.fillRemainingPages()
	return r, nil
}

/*
Library returns the viewer's records grouped by status.

Books the viewer may not see are left out, exactly as in the catalogue.
*/
func (service *Service) Library(context context.Context, viewer book.Viewer, filter Filter) (*Library, error) {
	if filter.Status != "" {
		validator := (&validate.Validator{}).OneOf(FieldStatus, string(filter.Status), statusValues()...)
		if err := validator.Err(); err != nil {
			return nil, err
		}
	}

	plan := book.NewPlan(viewer, book.Query{Text: filter.Text})
	readings, err := service.repo.ListByReader(context, viewer.UserID, plan, filter.Status)
	if err != nil {
		return nil, err
	}

	shelves := make(map[Status][]*Reading, len(Statuses))
	total := 0
	for _, r := range readings {
		if !plan.Match(r.Book) {
			continue
		}
		r.fillRemainingPages()
		shelves[r.Status] = append(shelves[r.Status], r)
		total++
	}

	library := &Library{Total: total, Shelves: make([]Shelf, 0, len(Statuses))}
	for _, status := range Statuses {
		if filter.Status != "" && status != filter.Status {
			continue
		}
		shelf := Shelf{Status: status, Readings: shelves[status]}
		if shelf.Readings == nil {
			shelf.Readings = []*Reading{}
		}
		library.Shelves = append(library.Shelves, shelf)
	}
	return library, nil
}

// Update applies the full edit form.
func (service *Service) Update(context context.Context, viewer book.Viewer, id string, input UpdateInput) (*Reading, error) {
	r, err := service.owned(context, viewer, id)
	if err != nil {
		return nil, err
	}

	r.Status = input.Status
	r.StartDate = input.StartDate
	r.EndDate = input.EndDate
	r.Bookmark = input.Bookmark
	r.Rating = input.Rating
	r.Comment = strings.TrimSpace(input.Comment)

	if err := validateReading(r, "Validation failed", allFields...); err != nil {
		return nil, err
	}

	if err := service.repo.Update(context, r, allFields...); err != nil {
		return nil, err
	}

	metrics.RecordReadingEvent("updated")
	service.logger.Info("reading_updated", slog.String("reading_id", id))
	r.fillRemainingPages()
	return r, nil
}

// Delete removes one of the viewer's records.
//
// Only ownership is checked: a reader who now hides adult content can still
// remove a record for an adult book.
func (service *Service) Delete(context context.Context, viewer book.Viewer, id string) error {
	if _, err := service.find(context, viewer, id); err != nil {
		return err
	}

	if err := service.repo.Delete(context, id); err != nil {
		return err
	}

	metrics.RecordReadingEvent("deleted")
	service.logger.Info("reading_deleted", slog.String("reading_id", id))
	return nil
}

// # Single-Field Updates

func (service *Service) UpdateStatus(context context.Context, viewer book.Viewer, id string, status Status) (*Result, error) {
	return service.patch(context, viewer, id, FieldStatus, MessageStatusUpdated, errorStatus, func(r *Reading) {
		r.Status = status
	})
}

func (service *Service) UpdateBookmark(context context.Context, viewer book.Viewer, id string, bookmark *int) (*Result, error) {
	return service.patch(context, viewer, id, FieldBookmark, MessageBookmarkUpdated, errorBookmark, func(r *Reading) {
		r.Bookmark = bookmark
	})
}

func (service *Service) UpdateStartDate(context context.Context, viewer book.Viewer, id string, startDate *time.Time) (*Result, error) {
	return service.patch(context, viewer, id, FieldStartDate, MessageStartDateUpdated, errorStartDate, func(r *Reading) {
		r.StartDate = startDate
	})
}

func (service *Service) UpdateEndDate(context context.Context, viewer book.Viewer, id string, endDate *time.Time) (*Result, error) {
	return service.patch(context, viewer, id, FieldEndDate, MessageEndDateUpdated, errorEndDate, func(r *Reading) {
		r.EndDate = endDate
	})
}

func (service *Service) UpdateRating(context context.Context, viewer book.Viewer, id string, rating *int) (*Result, error) {
	return service.patch(context, viewer, id, FieldRating, MessageRatingUpdated, errorRating, func(r *Reading) {
		r.Rating = rating
	})
}

func (service *Service) UpdateComment(context context.Context, viewer book.Viewer, id string, comment string) (*Result, error) {
	return service.patch(context, viewer, id, FieldComment, MessageCommentUpdated, errorComment, func(r *Reading) {
		r.Comment = strings.TrimSpace(comment)
	})
}

// patch loads an owned record, applies one change, validates that field
// and writes it back. Other stored fields are neither checked nor written.
func (service *Service) patch(context context.Context, viewer book.Viewer, id, field, success, failure string, apply func(*Reading)) (*Result, error) {
	r, err := service.owned(context, viewer, id)
	if err != nil {
		return nil, err
	}

	apply(r)
	if err := validateReading(r, failure, field); err != nil {
		return nil, err
	}

	if err := service.repo.Update(context, r, field); err != nil {
		return nil, err
	}

	metrics.RecordReadingEvent("updated")
	service.logger.Info("reading_field_updated", slog.String("reading_id", id), slog.String("field", field))

	r.fillRemainingPages()
	return &Result{Message: success, Reading: r}, nil
}

// # Helpers

// owned loads a record the viewer owns and whose book the viewer may see.
func (service *Service) owned(context context.Context, viewer book.Viewer, id string) (*Reading, error) {
	r, err := service.find(context, viewer, id)
	if err != nil {
		return nil, err
	}

	if !book.CanView(viewer, r.Book) {
		return nil, book.ErrAdultContent
	}

	r.fillRemainingPages()
	return r, nil
}

// find loads a record and checks ownership only.
func (service *Service) find(context context.Context, viewer book.Viewer, id string) (*Reading, error) {
	if !uuid.Valid(id) {
		return nil, ErrReadingNotFound
	}

	r, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if r.ReaderID != viewer.UserID {
		service.logger.Warn("reading_not_owner", slog.String("reading_id", id), slog.String("user_id", viewer.UserID))
		return nil, ErrNotOwner
	}
	return r, nil
}

// validateReading checks the named fields of r; message heads the
// validation error. Either date field also checks the date order.
func validateReading(r *Reading, message string, fields ...string) error {
	validator := &validate.Validator{}
	datesChecked := false

	for _, field := range fields {
		switch field {
		case FieldStatus:
			validator.OneOf(FieldStatus, string(r.Status), statusValues()...)
		case FieldBookmark:
			if r.Bookmark != nil {
				pageCount := 0
				if r.Book != nil {
					pageCount = r.Book.PageCount
				}
				validator.Range(FieldBookmark, *r.Bookmark, 0, pageCount)
			}
		case FieldRating:
			if r.Rating != nil {
				validator.Range(FieldRating, *r.Rating, minRating, maxRating)
			}
		case FieldStartDate, FieldEndDate:
			if !datesChecked {
				validator.DateOrder(FieldEndDate, r.StartDate, r.EndDate)
				datesChecked = true
			}
		case FieldComment:
			validator.MaxLen(FieldComment, r.Comment, maxCommentLength)
		}
	}

	if err := validator.Err(); err != nil {
		appErr := apperr.As(err)
		return apperr.ValidationError(message, appErr.Details...)
	}
	return nil
}
