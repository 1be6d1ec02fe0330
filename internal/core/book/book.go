// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package book is the Librio catalogue: books with their authors and tags,
the adult-content visibility rules, and the query engine that lists books
for a given viewer.

A book is adult when any of its tags is adult. Adult books are hidden from
every listing and rejected by every detail or edit flow unless the viewer
is an authenticated adult who has not chosen to hide adult content.
*/
package book

import (
	"strings"
	"time"

	"github.com/taibuivan/librio/internal/platform/apperr"
)

// # Errors

var (
	// ErrBookNotFound is returned when a book ID does not resolve.
	ErrBookNotFound = apperr.NotFound("Book")

	// ErrAdultContent is returned when the viewer may not see an adult book.
	ErrAdultContent = apperr.Forbidden("This book is restricted to adult readers")
)

// # Catalogue Entities

// Book is a catalogue entry with its authors and tags eager-loaded.
type Book struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Synopsis    string     `json:"synopsis"`
	PageCount   int        `json:"page_count"`
	Edition     string     `json:"edition,omitempty"`
	ISBN        string     `json:"isbn,omitempty"`
	ReleaseDate *time.Time `json:"release_date,omitempty"`

	// CoverKey is the object storage key; clients receive CoverURL instead.
	CoverKey string `json:"-"`
	CoverURL string `json:"cover_url,omitempty"`

	Authors []AuthorRef `json:"authors"`
	Tags    []TagRef    `json:"tags"`

	// AverageRating is only populated on detail reads.
	AverageRating *float64 `json:"average_rating,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuthorRef is the author summary embedded in a book.
type AuthorRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// TagRef is the tag summary embedded in a book.
type TagRef struct {
	ID      int    `json:"id"`
	Label   string `json:"label"`
	Slug    string `json:"slug"`
	IsAdult bool   `json:"is_adult"`
}

// IsAdult reports whether any of the book's tags is adult.
func (b *Book) IsAdult() bool {
	for _, tag := range b.Tags {
		if tag.IsAdult {
			return true
		}
	}
	return false
}

// HasTag reports whether the book carries the tag.
func (b *Book) HasTag(tagID int) bool {
	for _, tag := range b.Tags {
		if tag.ID == tagID {
			return true
		}
	}
	return false
}

// HasAuthor reports whether the author is credited on the book.
func (b *Book) HasAuthor(authorID int) bool {
	for _, author := range b.Authors {
		if author.ID == authorID {
			return true
		}
	}
	return false
}

// # Commands

// CreateInput carries the fields of a new book.
type CreateInput struct {
	Title       string
	Synopsis    string
	PageCount   int
	Edition     string
	ISBN        string
	ReleaseDate *time.Time
	AuthorIDs   []int
	TagIDs      []int
}

// UpdateInput carries a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Title       *string
	Synopsis    *string
	PageCount   *int
	Edition     *string
	ISBN        *string
	ReleaseDate *time.Time
	AuthorIDs   []int
	TagIDs      []int

	// ClearReleaseDate removes the release date when true.
	ClearReleaseDate bool
}

// # Field Identifiers

const (
	FieldTitle       = "title"
	FieldSynopsis    = "synopsis"
	FieldPageCount   = "page_count"
	FieldEdition     = "edition"
	FieldISBN        = "isbn"
	FieldReleaseDate = "release_date"
	FieldAuthorIDs   = "author_ids"
	FieldTagIDs      = "tag_ids"
	FieldCover       = "cover"
)

// Limits on stored text.
const (
	maxTitleLength   = 255
	maxEditionLength = 255
	maxISBNLength    = 13
)

var isbnCleaner = strings.NewReplacer("-", "", " ", "")

// NormalizeISBN strips separators so ISBNs are stored as bare digits.
func NormalizeISBN(isbn string) string {
	return isbnCleaner.Replace(strings.ToUpper(strings.TrimSpace(isbn)))
}
