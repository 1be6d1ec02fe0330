// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package reading tracks what each reader does with a book: a single record
per (reader, book) carrying a status, reading dates, a bookmark, a rating
and a comment.

A record is created once, always as "to-read"; a second creation for the
same pair fails with a conflict enforced by the database. Afterwards the
status moves freely, and only the owning reader may read, change or delete
the record.
*/
package reading

import (
	"time"

	"github.com/taibuivan/librio/internal/core/book"
	"github.com/taibuivan/librio/internal/platform/apperr"
)

// Status is the reader's progress on a book.
type Status string

const (
	StatusToRead    Status = "to-read"
	StatusReading   Status = "reading"
	StatusRead      Status = "read"
	StatusAbandoned Status = "abandoned"
	StatusPaused    Status = "paused"
)

// Statuses lists every status in shelf order.
var Statuses = []Status{StatusToRead, StatusReading, StatusRead, StatusAbandoned, StatusPaused}

func statusValues() []string {
	values := make([]string, len(Statuses))
	for i, status := range Statuses {
		values[i] = string(status)
	}
	return values
}

// Reading is one reader's record for one book.
type Reading struct {
	ID        string     `json:"id"`
	ReaderID  string     `json:"reader_id"`
	BookID    string     `json:"book_id"`
	Status    Status     `json:"status"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Bookmark  *int       `json:"bookmark,omitempty"`
	Rating    *int       `json:"rating,omitempty"`
	Comment   string     `json:"comment"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Book is loaded with every read.
	Book *book.Book `json:"book,omitempty"`

	// RemainingPages is derived from the bookmark and the page count.
	RemainingPages *int `json:"remaining_pages,omitempty"`
}

// fillRemainingPages derives RemainingPages; it never goes below zero.
func (r *Reading) fillRemainingPages() {
	r.RemainingPages = nil
	if r.Bookmark == nil || r.Book == nil {
		return
	}
	remaining := max(r.Book.PageCount-*r.Bookmark, 0)
	r.RemainingPages = &remaining
}

// Filter narrows the library view.
type Filter struct {
	// Text is matched against book titles, case-insensitive.
	Text string
	// Status keeps a single shelf when set.
	Status Status
}

// Shelf groups a reader's records by status.
type Shelf struct {
	Status   Status     `json:"status"`
	Readings []*Reading `json:"readings"`
}

// Library is the reader's records grouped into shelves.
type Library struct {
	Total   int     `json:"total"`
	Shelves []Shelf `json:"shelves"`
}

// UpdateInput is the full edit form of a record.
type UpdateInput struct {
	Status    Status
	StartDate *time.Time
	EndDate   *time.Time
	Bookmark  *int
	Rating    *int
	Comment   string
}

// Result is the answer to a single-field update.
type Result struct {
	Message string   `json:"message"`
	Reading *Reading `json:"reading"`
}

// # Errors

var (
	ErrReadingNotFound = apperr.NotFound("Reading")
	ErrReadingExists   = apperr.Conflict("This book is already in your library")
	ErrNotOwner        = apperr.Forbidden("This reading record belongs to another reader")
)

// # Field Identifiers

// Field names double as the column selectors of partial updates.
const (
	FieldStatus    = "status"
	FieldStartDate = "start_date"
	FieldEndDate   = "end_date"
	FieldBookmark  = "bookmark"
	FieldRating    = "rating"
	FieldComment   = "comment"
)

// allFields is written by the full edit form.
var allFields = []string{FieldStatus, FieldStartDate, FieldEndDate, FieldBookmark, FieldRating, FieldComment}

const (
	minRating        = 1
	maxRating        = 5
	maxCommentLength = 5000
)

// # Messages

const (
	MessageStatusUpdated    = "Reading status updated successfully"
	MessageBookmarkUpdated  = "Bookmark updated successfully"
	MessageStartDateUpdated = "Reading start date updated successfully"
	MessageEndDateUpdated   = "Reading end date updated successfully"
	MessageRatingUpdated    = "Rating updated successfully"
	MessageCommentUpdated   = "Comment updated successfully"

	errorStatus    = "Error while updating the reading status"
	errorBookmark  = "Error while updating the bookmark"
	errorStartDate = "Error while updating the reading start date"
	errorEndDate   = "Error while updating the reading end date"
	errorRating    = "Error while updating the rating"
	errorComment   = "Error while updating the comment"
)
