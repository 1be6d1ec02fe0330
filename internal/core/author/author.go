// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package author manages the writers credited on books.
package author

import (
	"time"

	"github.com/taibuivan/librio/internal/core/book"
	"github.com/taibuivan/librio/internal/platform/apperr"
)

// Author is a writer credited on one or more books.
type Author struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	DeathDate *time.Time `json:"death_date,omitempty"`
	Biography string     `json:"biography"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Detail is an author with the books the viewer may see.
type Detail struct {
	*Author
	Books []*book.Book `json:"books"`
}

// Input carries the writable fields of an author.
type Input struct {
	Name      string
	BirthDate *time.Time
	DeathDate *time.Time
	Biography string
}

// Filter holds the parameters for a paginated author search.
type Filter struct {
	Query string // Case-insensitive substring of the name
}

var ErrAuthorNotFound = apperr.NotFound("Author")

// Global field names for validation
const (
	FieldName      = "name"
	FieldBirthDate = "birth_date"
	FieldDeathDate = "death_date"
	FieldBiography = "biography"
)

const (
	maxNameLength      = 200
	maxBiographyLength = 5000
)
